package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/polkiloo/ordertrack/internal/server/http/dto"
)

// FeedHandler serves notices and notifications.
type FeedHandler struct {
	facade FeedFacade
}

// NewFeedHandler constructs FeedHandler.
func NewFeedHandler(facade FeedFacade) *FeedHandler {
	return &FeedHandler{facade: facade}
}

// Notices handles GET /api/notices.
func (h *FeedHandler) Notices(c *gin.Context) {
	notices := h.facade.Notices()
	resp := make([]dto.NoticeResponse, 0, len(notices))
	for _, n := range notices {
		resp = append(resp, dto.NoticeResponse{ID: n.ID, OrderID: n.OrderID, Message: n.Message, CreatedAt: n.CreatedAt})
	}
	c.JSON(http.StatusOK, resp)
}

// DismissNotice handles DELETE /api/notices/:id.
func (h *FeedHandler) DismissNotice(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.Status(http.StatusBadRequest)
		return
	}
	if !h.facade.DismissNotice(id) {
		c.Status(http.StatusNotFound)
		return
	}
	c.Status(http.StatusNoContent)
}

// Notifications handles GET /api/notifications.
func (h *FeedHandler) Notifications(c *gin.Context) {
	items, unread := h.facade.Notifications()
	resp := dto.NotificationListResponse{
		Notifications: make([]dto.NotificationResponse, 0, len(items)),
		Unread:        unread,
	}
	for _, n := range items {
		resp.Notifications = append(resp.Notifications, dto.NotificationResponse{
			ID:        n.ID,
			Type:      n.Type,
			Message:   n.Message,
			OrderID:   n.OrderID,
			Status:    n.Status,
			Read:      n.Read,
			CreatedAt: n.CreatedAt,
		})
	}
	c.JSON(http.StatusOK, resp)
}

// MarkRead handles POST /api/notifications/:id/read.
func (h *FeedHandler) MarkRead(c *gin.Context) {
	if !h.facade.MarkNotificationRead(c.Param("id")) {
		c.Status(http.StatusNotFound)
		return
	}
	c.Status(http.StatusNoContent)
}

// MarkAllRead handles POST /api/notifications/read.
func (h *FeedHandler) MarkAllRead(c *gin.Context) {
	h.facade.MarkAllNotificationsRead()
	c.Status(http.StatusNoContent)
}

// Remove handles DELETE /api/notifications/:id.
func (h *FeedHandler) Remove(c *gin.Context) {
	if !h.facade.RemoveNotification(c.Param("id")) {
		c.Status(http.StatusNotFound)
		return
	}
	c.Status(http.StatusNoContent)
}

// Clear handles DELETE /api/notifications.
func (h *FeedHandler) Clear(c *gin.Context) {
	h.facade.ClearNotifications()
	c.Status(http.StatusNoContent)
}
