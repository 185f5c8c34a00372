package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/AliXAbdullah03/nge-brain/internal/domain/model"
)

// CreateOrderRequest describes a new order. Customer details are used when
// customerId is absent.
type CreateOrderRequest struct {
	CustomerID    *int64            `json:"customerId"`
	FirstName     string            `json:"firstName"`
	LastName      string            `json:"lastName"`
	Phone         string            `json:"phone"`
	Email         string            `json:"email"`
	Address       string            `json:"address"`
	City          string            `json:"city"`
	Country       string            `json:"country"`
	BranchID      *int64            `json:"branchId"`
	Items         []model.OrderItem `json:"items"`
	TotalAmount   *decimal.Decimal  `json:"totalAmount"`
	Currency      string            `json:"currency"`
	PaymentStatus string            `json:"paymentStatus"`
	DepartureDate string            `json:"departureDate"`
	Notes         string            `json:"notes"`
}

// StatusRequest asks for a status change.
type StatusRequest struct {
	Status   string `json:"status"`
	Location string `json:"location"`
	Notes    string `json:"notes"`
}

// OrderResponse is the JSON view of an order.
type OrderResponse struct {
	ID            int64             `json:"id"`
	OrderNumber   string            `json:"orderNumber"`
	TrackingID    string            `json:"trackingId"`
	CustomerID    int64             `json:"customerId"`
	BranchID      *int64            `json:"branchId,omitempty"`
	Items         []model.OrderItem `json:"items"`
	TotalAmount   decimal.Decimal   `json:"totalAmount"`
	Currency      string            `json:"currency"`
	DepartureDate *time.Time        `json:"departureDate,omitempty"`
	ShipmentID    *int64            `json:"shipmentId,omitempty"`
	BatchNumber   *string           `json:"batchNumber,omitempty"`
	Status        string            `json:"status"`
	PaymentStatus string            `json:"paymentStatus"`
	Notes         string            `json:"notes,omitempty"`
	CreatedAt     time.Time         `json:"createdAt"`
	UpdatedAt     time.Time         `json:"updatedAt"`
}

// TrackResponse is the result of a public tracking lookup.
type TrackResponse struct {
	Type     string             `json:"type"`
	Order    *OrderResponse     `json:"order,omitempty"`
	Shipment *ShipmentResponse  `json:"shipment,omitempty"`
	Batch    []ShipmentResponse `json:"batch,omitempty"`
}
