package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	domainErrors "github.com/polkiloo/ordertrack/internal/domain/errors"
	"github.com/polkiloo/ordertrack/internal/domain/model"
	"github.com/polkiloo/ordertrack/internal/server/http/dto"
)

// RiderHandler serves the rider desk.
type RiderHandler struct {
	facade RiderFacade
}

// NewRiderHandler constructs RiderHandler.
func NewRiderHandler(facade RiderFacade) *RiderHandler {
	return &RiderHandler{facade: facade}
}

// Available handles GET /api/rider/available.
func (h *RiderHandler) Available(c *gin.Context) {
	entries, err := h.facade.Available(c.Request.Context())
	stale := false
	if err != nil {
		if !errors.Is(err, domainErrors.ErrFetchFailure) {
			writeError(c, err)
			return
		}
		stale = true
	}
	c.JSON(http.StatusOK, dto.OrderListResponse{
		Scope:  string(model.ScopeAvailable),
		Orders: toOrderList(entries),
		Stale:  stale,
	})
}

// Prompts handles GET /api/rider/prompts.
func (h *RiderHandler) Prompts(c *gin.Context) {
	prompts, err := h.facade.Prompts()
	if err != nil {
		writeError(c, err)
		return
	}
	resp := make([]dto.PromptResponse, 0, len(prompts))
	for _, p := range prompts {
		resp = append(resp, dto.PromptResponse{Order: toOrderResponse(p.Order), CreatedAt: p.CreatedAt})
	}
	c.JSON(http.StatusOK, resp)
}

// Accept handles POST /api/rider/prompts/:id/accept.
func (h *RiderHandler) Accept(c *gin.Context) {
	if err := h.facade.Accept(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Decline handles POST /api/rider/prompts/:id/decline.
func (h *RiderHandler) Decline(c *gin.Context) {
	if err := h.facade.Decline(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
