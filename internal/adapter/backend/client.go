package backend

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"path"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/sethvargo/go-retry"

	domainErrors "github.com/polkiloo/ordertrack/internal/domain/errors"
	"github.com/polkiloo/ordertrack/internal/domain/model"
	"github.com/polkiloo/ordertrack/internal/normalize"
)

const (
	defaultRetryAfter = 5 * time.Second
	maxRetryAfter     = 30 * time.Second
	retryBase         = 200 * time.Millisecond
)

// StatusError reports a non-success backend response.
type StatusError struct {
	Method string
	Path   string
	Code   int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s: backend returned %d", e.Method, e.Path, e.Code)
}

// Unwrap maps well-known status codes onto domain errors.
func (e *StatusError) Unwrap() error {
	switch e.Code {
	case http.StatusUnauthorized:
		return domainErrors.ErrNoSession
	case http.StatusNotFound:
		return domainErrors.ErrNotFound
	}
	return nil
}

// TooManyRequestsError represents a rate limiting signal from the backend.
type TooManyRequestsError struct {
	RetryAfter time.Duration
}

func (e TooManyRequestsError) Error() string {
	return fmt.Sprintf("too many requests, retry after %s", e.RetryAfter)
}

// Session is the identity returned by a successful login.
type Session struct {
	Token string
	User  model.User
}

// Client talks to the food ordering REST backend. Reads are retried with
// exponential backoff; writes are sent once.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
	normalizer *normalize.Normalizer
	retries    uint64
	logger     *slog.Logger

	mu    sync.RWMutex
	token string
}

// NewClient creates a backend client.
func NewClient(baseURL string, timeout time.Duration, retries int, normalizer *normalize.Normalizer, logger *slog.Logger) (*Client, error) {
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse backend url: %w", err)
	}
	if !parsed.IsAbs() {
		return nil, fmt.Errorf("backend url must be absolute")
	}
	if retries < 0 {
		retries = 0
	}
	return &Client{
		baseURL:    parsed,
		normalizer: normalizer,
		retries:    uint64(retries),
		logger:     logger,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}, nil
}

// SetToken sets the bearer token sent with every request; empty clears it.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

// Token returns the current bearer token.
func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// Login exchanges credentials for a backend session. The token is not stored;
// the caller decides when the session becomes active.
func (c *Client) Login(ctx context.Context, creds model.Credentials) (Session, error) {
	body := map[string]string{"email": creds.Email, "password": creds.Password}
	raw, err := c.send(ctx, http.MethodPost, "/auth/login", nil, body)
	if err != nil {
		var se *StatusError
		if errors.As(err, &se) && (se.Code == http.StatusUnauthorized || se.Code == http.StatusBadRequest) {
			return Session{}, domainErrors.ErrInvalidCredentials
		}
		return Session{}, fmt.Errorf("login: %w", err)
	}
	return parseSession(raw)
}

// FetchOrder loads one order.
func (c *Client) FetchOrder(ctx context.Context, id string) (model.Order, error) {
	raw, err := c.get(ctx, path.Join("/orders", url.PathEscape(id)), nil)
	if err != nil {
		return model.Order{}, err
	}
	order, err := c.normalizer.Order(raw)
	if err != nil {
		return model.Order{}, fmt.Errorf("order %s: %w", id, err)
	}
	return order, nil
}

// FetchOrderList loads the order list for scope.
func (c *Client) FetchOrderList(ctx context.Context, scope model.Scope) ([]model.Order, error) {
	var (
		p     string
		query url.Values
	)
	switch scope {
	case model.ScopeMine:
		p = "/orders"
	case model.ScopeRider:
		p = "/rider/orders"
	case model.ScopeAdmin:
		p = "/admin/orders"
	case model.ScopeAvailable:
		p = "/orders"
		query = url.Values{"status": {string(model.StatusReadyForPickup)}}
	default:
		return nil, fmt.Errorf("unknown order scope %q", scope)
	}
	raw, err := c.get(ctx, p, query)
	if err != nil {
		return nil, err
	}
	return c.normalizer.Orders(raw), nil
}

// UpdateOrderStatus sets the status of an order.
func (c *Client) UpdateOrderStatus(ctx context.Context, orderID, status string) error {
	p := path.Join("/orders", url.PathEscape(orderID), "status")
	_, err := c.send(ctx, http.MethodPut, p, nil, map[string]string{"status": status})
	return err
}

// AssignRider assigns a rider to an order.
func (c *Client) AssignRider(ctx context.Context, orderID, riderID string) error {
	p := path.Join("/orders", url.PathEscape(orderID), "assign-rider")
	_, err := c.send(ctx, http.MethodPut, p, nil, map[string]string{"riderId": riderID})
	return err
}

// get performs a GET with retries on transport errors, 5xx and 429.
func (c *Client) get(ctx context.Context, p string, query url.Values) (any, error) {
	backoff := retry.WithMaxRetries(c.retries, retry.WithJitterPercent(10, retry.NewExponential(retryBase)))

	var result any
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		raw, err := c.send(ctx, http.MethodGet, p, query, nil)
		if err == nil {
			result = raw
			return nil
		}
		if !retryable(err) {
			return err
		}
		var tooMany TooManyRequestsError
		if errors.As(err, &tooMany) {
			if werr := wait(ctx, tooMany.RetryAfter); werr != nil {
				return werr
			}
		}
		c.logger.Debug("retry backend read", slog.String("path", p), slog.String("error", err.Error()))
		return retry.RetryableError(err)
	})
	if err != nil {
		return nil, fmt.Errorf("GET %s: %w: %w", p, domainErrors.ErrFetchFailure, err)
	}
	return result, nil
}

func retryable(err error) bool {
	var se *StatusError
	if errors.As(err, &se) {
		return se.Code >= http.StatusInternalServerError
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	return true
}

func wait(ctx context.Context, d time.Duration) error {
	if d > maxRetryAfter {
		d = maxRetryAfter
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (c *Client) send(ctx context.Context, method, p string, query url.Values, body any) (any, error) {
	endpoint := *c.baseURL
	endpoint.Path = path.Join(endpoint.Path, p)
	endpoint.RawQuery = query.Encode()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint.String(), reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, TooManyRequestsError{RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After"))}
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		c.logger.Error("backend request failed",
			slog.String("method", method),
			slog.String("path", p),
			slog.Int("status", resp.StatusCode),
			slog.String("body", string(data)),
		)
		return nil, &StatusError{Method: method, Path: p, Code: resp.StatusCode, Body: string(data)}
	}

	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw any
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode %s %s response: %w", method, p, err)
	}
	return raw, nil
}

func parseRetryAfter(header string) time.Duration {
	if header == "" {
		return defaultRetryAfter
	}
	if seconds, err := strconv.Atoi(header); err == nil {
		return time.Duration(seconds) * time.Second
	}
	if t, err := http.ParseTime(header); err == nil {
		return time.Until(t)
	}
	return defaultRetryAfter
}

func parseSession(raw any) (Session, error) {
	m, ok := normalize.Unwrap(raw).(map[string]any)
	if !ok {
		return Session{}, fmt.Errorf("login response is %T: %w", raw, domainErrors.ErrInvalidCredentials)
	}
	token := normalize.String(m["token"])
	user, _ := m["user"].(map[string]any)
	if token == "" || user == nil {
		return Session{}, fmt.Errorf("login response without user and token: %w", domainErrors.ErrInvalidCredentials)
	}

	id := normalize.String(user["_id"])
	if id == "" {
		id = normalize.String(user["id"])
	}
	return Session{
		Token: token,
		User: model.User{
			ID:    id,
			Name:  normalize.String(user["name"]),
			Email: normalize.String(user["email"]),
			Role:  model.Role(strings.ToLower(normalize.String(user["role"]))),
		},
	}, nil
}
