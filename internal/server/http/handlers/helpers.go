package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	domainErrors "github.com/polkiloo/ordertrack/internal/domain/errors"
	"github.com/polkiloo/ordertrack/internal/domain/model"
	"github.com/polkiloo/ordertrack/internal/server/http/dto"
	"github.com/polkiloo/ordertrack/internal/server/http/middleware"
	"github.com/polkiloo/ordertrack/internal/status"
)

// CurrentUser extracts the authenticated user from context.
func CurrentUser(c *gin.Context) (model.User, bool) {
	val, ok := c.Get(middleware.UserContextKey)
	if !ok {
		return model.User{}, false
	}
	user, ok := val.(model.User)
	return user, ok
}

func writeError(c *gin.Context, err error) {
	var partial *domainErrors.PartialActionError
	switch {
	case errors.As(err, &partial):
		c.JSON(http.StatusBadGateway, dto.ErrorResponse{Error: err.Error(), Step: partial.Step})
	case errors.Is(err, domainErrors.ErrNoSession), errors.Is(err, domainErrors.ErrInvalidCredentials):
		c.Status(http.StatusUnauthorized)
	case errors.Is(err, domainErrors.ErrNotFound):
		c.Status(http.StatusNotFound)
	case errors.Is(err, domainErrors.ErrViewClosed):
		c.Status(http.StatusConflict)
	case errors.Is(err, domainErrors.ErrFetchFailure):
		c.JSON(http.StatusBadGateway, dto.ErrorResponse{Error: err.Error()})
	default:
		c.Status(http.StatusInternalServerError)
	}
}

func toOrderResponse(order model.Order) dto.OrderResponse {
	resp := dto.OrderResponse{
		ID:          order.ID,
		ShortID:     order.ShortID(),
		Status:      order.Status,
		StatusLabel: status.Label(order.Status),
		TotalAmount: order.TotalAmount,
		Items:       make([]dto.ItemResponse, 0, len(order.Items)),
		RiderID:     order.RiderID,
		Restaurant: dto.RestaurantResponse{
			ID:          order.Restaurant.ID,
			Name:        order.Restaurant.Name,
			Image:       order.Restaurant.Image,
			Description: order.Restaurant.Description,
		},
		Customer:        order.Customer,
		DeliveryAddress: order.DeliveryAddress,
	}
	for _, item := range order.Items {
		resp.Items = append(resp.Items, dto.ItemResponse{Name: item.Name, Quantity: item.Quantity, Price: item.Price})
	}
	if order.Rider != nil {
		resp.Rider = &dto.RiderResponse{ID: order.Rider.ID, Name: order.Rider.Name, Phone: order.Rider.Phone}
	}
	if !order.CreatedAt.IsZero() {
		created := order.CreatedAt.UTC().Truncate(time.Second)
		resp.CreatedAt = &created
	}
	return resp
}

func toOrderList(entries []model.ListEntry) []dto.OrderResponse {
	out := make([]dto.OrderResponse, 0, len(entries))
	for _, e := range entries {
		o := toOrderResponse(e.Order)
		o.Optimistic = e.Optimistic
		out = append(out, o)
	}
	return out
}
