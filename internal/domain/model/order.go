package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus is a step of the order delivery pipeline.
type OrderStatus string

const (
	OrderStatusReceived       OrderStatus = "Shipment Received"
	OrderStatusProcessing     OrderStatus = "Shipment Processing"
	OrderStatusDeparted       OrderStatus = "Departed from Manila"
	OrderStatusInTransit      OrderStatus = "In Transit going to Dubai Airport"
	OrderStatusArrived        OrderStatus = "Arrived at Dubai Airport"
	OrderStatusClearance      OrderStatus = "Shipment Clearance"
	OrderStatusOutForDelivery OrderStatus = "Out for Delivery"
	OrderStatusDelivered      OrderStatus = "Delivered"
)

// DefaultCurrency applies when an order names none.
const DefaultCurrency = "USD"

// PaymentStatus tracks settlement of an order.
type PaymentStatus string

const (
	PaymentStatusUnpaid   PaymentStatus = "unpaid"
	PaymentStatusPaid     PaymentStatus = "paid"
	PaymentStatusRefunded PaymentStatus = "refunded"
)

// OrderItem is a line of an order.
type OrderItem struct {
	Description string           `json:"description"`
	Quantity    int              `json:"quantity"`
	Price       *decimal.Decimal `json:"price,omitempty"`
}

// Order is a customer order travelling inside a shipment batch.
type Order struct {
	ID            int64
	OrderNumber   string
	TrackingID    string
	CustomerID    int64
	BranchID      *int64
	Items         []OrderItem
	TotalAmount   decimal.Decimal
	Currency      string
	DepartureDate *time.Time
	ShipmentID    *int64
	BatchNumber   *string
	Status        OrderStatus
	PaymentStatus PaymentStatus
	Notes         string
	CreatedBy     *int64
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// OrderFilter narrows order listings.
type OrderFilter struct {
	Statuses   []OrderStatus
	CustomerID *int64
	Limit      int
}
