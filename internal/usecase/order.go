package usecase

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	domainErrors "github.com/AliXAbdullah03/nge-brain/internal/domain/errors"
	"github.com/AliXAbdullah03/nge-brain/internal/domain/model"
	"github.com/AliXAbdullah03/nge-brain/internal/domain/repository"
	"github.com/AliXAbdullah03/nge-brain/internal/domain/status"
)

// Identifier shapes accepted by Track.
var (
	orderNumberPattern = regexp.MustCompile(`^NGE\d{9}$`)
	trackingIDPattern  = regexp.MustCompile(`^NGE\d{8}$`)
	batchNumberPattern = regexp.MustCompile(`^BCH-\d{4}-\d+$`)
	numericPattern     = regexp.MustCompile(`^\d+$`)

	phoneFormatting = strings.NewReplacer(" ", "", "\t", "", "-", "", "(", "", ")", "", ".", "")
)

// TrackKind tells which record a tracking lookup resolved to.
type TrackKind string

const (
	TrackOrder    TrackKind = "order"
	TrackShipment TrackKind = "shipment"
	TrackBatch    TrackKind = "batch"
)

// TrackResult is the outcome of an identifier lookup. Order lookups carry the
// shipment the order travels in, when there is one.
type TrackResult struct {
	Kind     TrackKind
	Order    *model.Order
	Shipment *model.Shipment
	Batch    []model.Shipment
}

// CustomerInput identifies an existing customer or describes a new one.
type CustomerInput struct {
	ID        int64
	FirstName string
	LastName  string
	Phone     string
	Email     string
	Address   string
	City      string
	Country   string
}

// CreateOrderInput carries the fields accepted when an order is placed.
type CreateOrderInput struct {
	Customer      CustomerInput
	BranchID      *int64
	Items         []model.OrderItem
	TotalAmount   *decimal.Decimal
	Currency      string
	PaymentStatus string
	DepartureDate *time.Time
	Notes         string
}

// OrderUseCase encapsulates order lifecycle logic.
type OrderUseCase struct {
	orders    repository.OrderRepository
	shipments repository.ShipmentRepository
	customers repository.CustomerRepository
	ids       *IdentifierGenerator
	batches   *BatchResolver
}

// NewOrderUseCase constructs OrderUseCase.
func NewOrderUseCase(orders repository.OrderRepository, shipments repository.ShipmentRepository, customers repository.CustomerRepository, ids *IdentifierGenerator, batches *BatchResolver) *OrderUseCase {
	return &OrderUseCase{orders: orders, shipments: shipments, customers: customers, ids: ids, batches: batches}
}

// Create places a new order and, when it carries a departure date, attaches it
// to that day's shipment batch.
func (u *OrderUseCase) Create(ctx context.Context, in CreateOrderInput, actor model.Actor) (*model.Order, error) {
	total, err := orderTotal(in.Items, in.TotalAmount)
	if err != nil {
		return nil, err
	}
	payment, err := parsePaymentStatus(in.PaymentStatus)
	if err != nil {
		return nil, err
	}
	customer, err := u.resolveCustomer(ctx, in.Customer)
	if err != nil {
		return nil, err
	}

	currency := strings.ToUpper(strings.TrimSpace(in.Currency))
	if currency == "" {
		currency = model.DefaultCurrency
	}

	draft := &model.Order{
		CustomerID:    customer.ID,
		BranchID:      in.BranchID,
		Items:         in.Items,
		TotalAmount:   total,
		Currency:      currency,
		DepartureDate: in.DepartureDate,
		Status:        model.OrderStatusReceived,
		PaymentStatus: payment,
		Notes:         strings.TrimSpace(in.Notes),
		CreatedBy:     actor.Ref(),
	}

	var created *model.Order
	for attempt := 1; ; attempt++ {
		number, err := u.ids.NextOrderNumber(ctx)
		if err != nil {
			return nil, err
		}
		draft.OrderNumber = number
		draft.TrackingID = number

		created, err = u.orders.Create(ctx, draft)
		if err == nil {
			break
		}
		if !errors.Is(err, domainErrors.ErrAlreadyExists) || attempt == createAttempts {
			return nil, err
		}
	}

	if created.DepartureDate != nil {
		if _, _, err := u.batches.AttachOrderToDateBatch(ctx, created, *created.DepartureDate, actor); err != nil {
			return nil, fmt.Errorf("attach order %s to batch: %w", created.OrderNumber, err)
		}
	}
	return u.orders.GetByID(ctx, created.ID)
}

// Get returns an order by id.
func (u *OrderUseCase) Get(ctx context.Context, id int64) (*model.Order, error) {
	order, err := u.orders.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "order", id)
	}
	return order, nil
}

// List returns orders matching the comma separated status filter. Drivers see
// orders out for delivery unless they ask for something else.
func (u *OrderUseCase) List(ctx context.Context, statusFilter string, actor model.Actor) ([]model.Order, error) {
	filter := model.OrderFilter{Statuses: status.ParseOrderFilter(statusFilter)}
	if len(filter.Statuses) == 0 && strings.TrimSpace(statusFilter) != "" {
		return nil, fmt.Errorf("%w: %q", domainErrors.ErrInvalidStatus, statusFilter)
	}
	if len(filter.Statuses) == 0 && actor.IsDriver() {
		filter.Statuses = []model.OrderStatus{model.OrderStatusOutForDelivery}
	}
	return u.orders.List(ctx, filter)
}

// Track resolves a public identifier: a numeric id, an order number, a
// shipment tracking id or a batch number.
func (u *OrderUseCase) Track(ctx context.Context, identifier string) (*TrackResult, error) {
	identifier = strings.ToUpper(strings.TrimSpace(identifier))
	switch {
	case identifier == "":
		return nil, fmt.Errorf("%w: empty identifier", domainErrors.ErrMalformedIdentifier)
	case numericPattern.MatchString(identifier):
		return u.trackNumeric(ctx, identifier)
	case orderNumberPattern.MatchString(identifier):
		order, err := u.orders.GetByNumber(ctx, identifier)
		if err != nil {
			return nil, trackMiss(err, identifier)
		}
		return u.orderResult(ctx, order)
	case trackingIDPattern.MatchString(identifier):
		shipment, err := u.shipments.GetByTrackingID(ctx, identifier)
		if err != nil {
			return nil, trackMiss(err, identifier)
		}
		return &TrackResult{Kind: TrackShipment, Shipment: shipment}, nil
	case batchNumberPattern.MatchString(identifier):
		list, err := u.shipments.ListByBatch(ctx, identifier)
		if err != nil {
			return nil, err
		}
		if len(list) == 0 {
			return nil, domainErrors.NewNotFoundError("batch", identifier)
		}
		return &TrackResult{Kind: TrackBatch, Batch: list}, nil
	default:
		return nil, fmt.Errorf("%w: %q", domainErrors.ErrMalformedIdentifier, identifier)
	}
}

func (u *OrderUseCase) trackNumeric(ctx context.Context, identifier string) (*TrackResult, error) {
	id, err := strconv.ParseInt(identifier, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", domainErrors.ErrMalformedIdentifier, identifier)
	}

	order, err := u.orders.GetByID(ctx, id)
	switch {
	case err == nil:
		return u.orderResult(ctx, order)
	case !errors.Is(err, domainErrors.ErrNotFound):
		return nil, err
	}

	shipment, err := u.shipments.GetByID(ctx, id)
	if err != nil {
		return nil, trackMiss(err, identifier)
	}
	return &TrackResult{Kind: TrackShipment, Shipment: shipment}, nil
}

func (u *OrderUseCase) orderResult(ctx context.Context, order *model.Order) (*TrackResult, error) {
	res := &TrackResult{Kind: TrackOrder, Order: order}
	if order.ShipmentID == nil {
		return res, nil
	}
	shipment, err := u.shipments.GetByID(ctx, *order.ShipmentID)
	switch {
	case err == nil:
		res.Shipment = shipment
	case !errors.Is(err, domainErrors.ErrNotFound):
		return nil, err
	}
	return res, nil
}

func (u *OrderUseCase) resolveCustomer(ctx context.Context, in CustomerInput) (*model.Customer, error) {
	if in.ID > 0 {
		customer, err := u.customers.GetByID(ctx, in.ID)
		if err != nil {
			return nil, notFound(err, "customer", in.ID)
		}
		return customer, nil
	}

	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)
	in.Phone = NormalizePhone(in.Phone)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))

	verr := domainErrors.NewValidationError("customerId or customer details (firstName, lastName, phone) are required")
	if in.FirstName == "" {
		verr.WithField("firstName", "required")
	}
	if in.LastName == "" {
		verr.WithField("lastName", "required")
	}
	if in.Phone == "" {
		verr.WithField("phone", "required")
	}
	if len(verr.Fields) > 0 {
		return nil, verr
	}

	existing, err := u.customers.FindByContact(ctx, in.Phone, in.Email)
	switch {
	case err == nil:
		return existing, nil
	case !errors.Is(err, domainErrors.ErrNotFound):
		return nil, err
	}

	return u.customers.Create(ctx, &model.Customer{
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Phone:     in.Phone,
		Email:     in.Email,
		Address:   strings.TrimSpace(in.Address),
		City:      strings.TrimSpace(in.City),
		Country:   strings.TrimSpace(in.Country),
		Status:    "active",
	})
}

// NormalizePhone strips formatting characters so equal numbers compare equal.
func NormalizePhone(phone string) string {
	return phoneFormatting.Replace(strings.TrimSpace(phone))
}

func orderTotal(items []model.OrderItem, total *decimal.Decimal) (decimal.Decimal, error) {
	if len(items) == 0 {
		return decimal.Zero, domainErrors.NewValidationError("items must be a non-empty array").WithField("items", "required")
	}
	sum := decimal.Zero
	for i, item := range items {
		field := fmt.Sprintf("items[%d]", i)
		if strings.TrimSpace(item.Description) == "" {
			return decimal.Zero, domainErrors.NewValidationError("item description is required").WithField(field+".description", "required")
		}
		if item.Quantity < 1 {
			return decimal.Zero, domainErrors.NewValidationError("item quantity must be at least 1").WithField(field+".quantity", "must be >= 1")
		}
		if item.Price != nil {
			if item.Price.IsNegative() {
				return decimal.Zero, domainErrors.NewValidationError("item price must not be negative").WithField(field+".price", "must be >= 0")
			}
			sum = sum.Add(item.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
		}
	}

	if total == nil {
		return sum, nil
	}
	if total.IsNegative() {
		return decimal.Zero, domainErrors.NewValidationError("totalAmount must not be negative").WithField("totalAmount", "must be >= 0")
	}
	return *total, nil
}

func parsePaymentStatus(raw string) (model.PaymentStatus, error) {
	switch p := model.PaymentStatus(strings.ToLower(strings.TrimSpace(raw))); p {
	case "":
		return model.PaymentStatusUnpaid, nil
	case model.PaymentStatusUnpaid, model.PaymentStatusPaid, model.PaymentStatusRefunded:
		return p, nil
	default:
		return "", domainErrors.NewValidationError("unknown payment status %q", raw).WithField("paymentStatus", "invalid")
	}
}

func trackMiss(err error, identifier string) error {
	var typed *domainErrors.NotFoundError
	if errors.Is(err, domainErrors.ErrNotFound) && !errors.As(err, &typed) {
		return domainErrors.NewNotFoundError("tracking", identifier)
	}
	return err
}
