package middleware

import (
	"compress/gzip"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// MaxRequestBody caps the size of a request body after decoding.
const MaxRequestBody = 1 << 20

// DecompressRequest decodes gzip request bodies and caps every body at
// MaxRequestBody bytes. Other content encodings are rejected with 415.
func DecompressRequest() gin.HandlerFunc {
	return func(c *gin.Context) {
		body := c.Request.Body
		if body == nil || body == http.NoBody {
			c.Next()
			return
		}

		switch encoding := strings.ToLower(strings.TrimSpace(c.GetHeader("Content-Encoding"))); encoding {
		case "", "identity":
			c.Request.Body = http.MaxBytesReader(c.Writer, body, MaxRequestBody)
		case "gzip", "x-gzip":
			reader, err := gzip.NewReader(body)
			if err != nil {
				c.AbortWithStatus(http.StatusBadRequest)
				return
			}
			c.Request.Body = http.MaxBytesReader(c.Writer, readCloser{Reader: reader, closers: []io.Closer{reader, body}}, MaxRequestBody)
			c.Request.Header.Del("Content-Encoding")
			c.Request.ContentLength = -1
		default:
			c.AbortWithStatus(http.StatusUnsupportedMediaType)
			return
		}
		c.Next()
	}
}

type readCloser struct {
	io.Reader
	closers []io.Closer
}

func (r readCloser) Close() error {
	var first error
	for _, c := range r.closers {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
