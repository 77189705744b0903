package dto

import "time"

// ItemResponse is one order line.
type ItemResponse struct {
	Name     string  `json:"name"`
	Quantity int     `json:"quantity"`
	Price    float64 `json:"price"`
}

// RiderResponse describes the rider of an order.
type RiderResponse struct {
	ID    string `json:"id,omitempty"`
	Name  string `json:"name,omitempty"`
	Phone string `json:"phone,omitempty"`
}

// RestaurantResponse carries restaurant display fields.
type RestaurantResponse struct {
	ID          string `json:"id,omitempty"`
	Name        string `json:"name"`
	Image       string `json:"image"`
	Description string `json:"description"`
}

// OrderResponse is a normalized order.
type OrderResponse struct {
	ID              string             `json:"id"`
	ShortID         string             `json:"shortId"`
	Status          string             `json:"status"`
	StatusLabel     string             `json:"statusLabel"`
	TotalAmount     float64            `json:"totalAmount"`
	Items           []ItemResponse     `json:"items"`
	RiderID         string             `json:"riderId,omitempty"`
	Rider           *RiderResponse     `json:"rider,omitempty"`
	Restaurant      RestaurantResponse `json:"restaurant"`
	Customer        string             `json:"customer,omitempty"`
	DeliveryAddress string             `json:"deliveryAddress,omitempty"`
	CreatedAt       *time.Time         `json:"createdAt,omitempty"`
	Optimistic      bool               `json:"optimistic,omitempty"`
}

// OrderListResponse is the content of a list view. Stale is set when the
// last refresh failed and the orders are the previous snapshot.
type OrderListResponse struct {
	Scope  string          `json:"scope"`
	Orders []OrderResponse `json:"orders"`
	Stale  bool            `json:"stale,omitempty"`
}

// StageResponse is one step of the progress indicator.
type StageResponse struct {
	Status    string `json:"status"`
	Label     string `json:"label"`
	Completed bool   `json:"completed"`
	Current   bool   `json:"current"`
}

// OrderDetailResponse is the content of a detail view.
type OrderDetailResponse struct {
	Order  OrderResponse   `json:"order"`
	Stages []StageResponse `json:"stages"`
	Stale  bool            `json:"stale,omitempty"`
}

// PromptResponse asks the rider to accept or decline an order.
type PromptResponse struct {
	Order     OrderResponse `json:"order"`
	CreatedAt time.Time     `json:"createdAt"`
}

// ErrorResponse reports a failed action.
type ErrorResponse struct {
	Error string `json:"error"`
	Step  string `json:"step,omitempty"`
}
