package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	domainErrors "github.com/polkiloo/ordertrack/internal/domain/errors"
	"github.com/polkiloo/ordertrack/internal/domain/model"
	"github.com/polkiloo/ordertrack/internal/server/http/dto"
)

// OrderHandler serves list and detail views.
type OrderHandler struct {
	facade OrderFacade
}

// NewOrderHandler constructs OrderHandler.
func NewOrderHandler(facade OrderFacade) *OrderHandler {
	return &OrderHandler{facade: facade}
}

// List handles GET /api/orders.
func (h *OrderHandler) List(c *gin.Context) {
	scope, ok := model.ParseScope(c.Query("scope"))
	if !ok {
		c.Status(http.StatusBadRequest)
		return
	}
	entries, err := h.facade.Orders(c.Request.Context(), scope)
	h.respondList(c, scope, entries, err)
}

// Refresh handles POST /api/orders/refresh.
func (h *OrderHandler) Refresh(c *gin.Context) {
	scope, ok := model.ParseScope(c.Query("scope"))
	if !ok {
		c.Status(http.StatusBadRequest)
		return
	}
	entries, err := h.facade.RefreshOrders(c.Request.Context(), scope)
	h.respondList(c, scope, entries, err)
}

func (h *OrderHandler) respondList(c *gin.Context, scope model.Scope, entries []model.ListEntry, err error) {
	stale := false
	if err != nil {
		if !errors.Is(err, domainErrors.ErrFetchFailure) {
			writeError(c, err)
			return
		}
		stale = true
	}
	c.JSON(http.StatusOK, dto.OrderListResponse{
		Scope:  string(scope),
		Orders: toOrderList(entries),
		Stale:  stale,
	})
}

// Detail handles GET /api/orders/:id.
func (h *OrderHandler) Detail(c *gin.Context) {
	detail, err := h.facade.Order(c.Request.Context(), c.Param("id"))
	stale := false
	if err != nil {
		if !errors.Is(err, domainErrors.ErrFetchFailure) || detail.Order.ID == "" {
			writeError(c, err)
			return
		}
		stale = true
	}

	resp := dto.OrderDetailResponse{
		Order:  toOrderResponse(detail.Order),
		Stages: make([]dto.StageResponse, 0, len(detail.Stages)),
		Stale:  stale,
	}
	for _, s := range detail.Stages {
		resp.Stages = append(resp.Stages, dto.StageResponse{
			Status:    string(s.Status),
			Label:     s.Label,
			Completed: s.Completed,
			Current:   s.Current,
		})
	}
	c.JSON(http.StatusOK, resp)
}

// Close handles DELETE /api/orders/:id/view.
func (h *OrderHandler) Close(c *gin.Context) {
	if !h.facade.CloseOrder(c.Param("id")) {
		c.Status(http.StatusNotFound)
		return
	}
	c.Status(http.StatusNoContent)
}
