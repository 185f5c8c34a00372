package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sort"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	domainErrors "github.com/AliXAbdullah03/nge-brain/internal/domain/errors"
	"github.com/AliXAbdullah03/nge-brain/internal/domain/model"
	"github.com/AliXAbdullah03/nge-brain/internal/domain/repository"
)

const (
	dayKeyLayout = "2006-01-02"

	// createAttempts bounds identifier regeneration after a duplicate insert.
	createAttempts = 3
	// attachAttempts bounds re-resolution when a concurrent merge deletes the
	// chosen canonical batch.
	attachAttempts = 5

	locationOriginFacility   = "Origin Facility"
	locationProcessingCenter = "Processing Center"
)

// BatchResolver keeps exactly one shipment batch per departure day. It finds or
// creates the batch, folds duplicates left behind by racing creators into the
// earliest one and attaches orders to it.
type BatchResolver struct {
	orders    repository.OrderRepository
	shipments repository.ShipmentRepository
	ids       *IdentifierGenerator
	logger    *slog.Logger

	loc    *time.Location
	now    func() time.Time
	tracer trace.Tracer
	merges metric.Int64Counter
}

// BatchOption customizes a BatchResolver.
type BatchOption func(*BatchResolver)

// WithBatchLocation sets the time zone that decides where a departure day starts.
func WithBatchLocation(loc *time.Location) BatchOption {
	return func(r *BatchResolver) {
		if loc != nil {
			r.loc = loc
		}
	}
}

// WithBatchClock replaces the clock used for history timestamps.
func WithBatchClock(now func() time.Time) BatchOption {
	return func(r *BatchResolver) {
		r.now = now
	}
}

// WithBatchTracer injects a tracer.
func WithBatchTracer(tr trace.Tracer) BatchOption {
	return func(r *BatchResolver) {
		if tr != nil {
			r.tracer = tr
		}
	}
}

// WithBatchMeter injects the meter used for the merge counter.
func WithBatchMeter(m metric.Meter) BatchOption {
	return func(r *BatchResolver) {
		if m != nil {
			r.merges = int64Counter(m, "batch_resolver.merges", "Duplicate shipments merged into a canonical batch")
		}
	}
}

// NewBatchResolver constructs BatchResolver.
func NewBatchResolver(orders repository.OrderRepository, shipments repository.ShipmentRepository, ids *IdentifierGenerator, logger *slog.Logger, opts ...BatchOption) *BatchResolver {
	r := &BatchResolver{
		orders:    orders,
		shipments: shipments,
		ids:       ids,
		logger:    logger,
		loc:       time.UTC,
		now:       time.Now,
		tracer:    noopTracer(),
		merges:    int64Counter(noopMeter(), "batch_resolver.merges", ""),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

// DayRange returns the [start, end) bounds of the departure day containing t.
func (r *BatchResolver) DayRange(t time.Time) (time.Time, time.Time) {
	local := t.In(r.loc)
	start := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, r.loc)
	return start, start.AddDate(0, 0, 1)
}

// DayKey formats the departure day containing t as YYYY-MM-DD.
func (r *BatchResolver) DayKey(t time.Time) string {
	start, _ := r.DayRange(t)
	return start.Format(dayKeyLayout)
}

// AttachOrderToDateBatch places the order into the batch of its departure day,
// creating the batch when none exists. It reports whether a batch was created.
func (r *BatchResolver) AttachOrderToDateBatch(ctx context.Context, order *model.Order, departure time.Time, actor model.Actor) (*model.Shipment, bool, error) {
	if order == nil {
		return nil, false, domainErrors.NewValidationError("order is required")
	}
	ctx, span := r.tracer.Start(ctx, "BatchResolver.AttachOrderToDateBatch",
		trace.WithAttributes(attribute.Int64("order.id", order.ID), attribute.String("departure.day", r.DayKey(departure))))
	defer span.End()

	shipment, created, err := r.attach(ctx, []model.Order{*order}, departure, actor)
	if err != nil {
		recordSpanError(span, err)
		return nil, false, err
	}
	return shipment, created, nil
}

// CreateFromOrders batches the given orders together. All orders must depart on
// the same day; override, when set, replaces the first order's date as the
// reference day.
func (r *BatchResolver) CreateFromOrders(ctx context.Context, orderIDs []int64, override *time.Time, actor model.Actor) (*model.Shipment, bool, error) {
	ctx, span := r.tracer.Start(ctx, "BatchResolver.CreateFromOrders", trace.WithAttributes(attribute.Int("orders.requested", len(orderIDs))))
	defer span.End()

	orders, departure, err := r.loadSameDayOrders(ctx, orderIDs, override)
	if err != nil {
		recordSpanError(span, err)
		return nil, false, err
	}

	shipment, created, err := r.attach(ctx, orders, departure, actor)
	if err != nil {
		recordSpanError(span, err)
		return nil, false, err
	}
	return shipment, created, nil
}

// ReconcileDuplicates merges duplicate batches on every departure day holding
// more than one shipment and returns the number of days merged.
func (r *BatchResolver) ReconcileDuplicates(ctx context.Context) (int, error) {
	ctx, span := r.tracer.Start(ctx, "BatchResolver.ReconcileDuplicates")
	defer span.End()

	days, err := r.shipments.ListDuplicateDays(ctx, r.loc)
	if err != nil {
		recordSpanError(span, err)
		return 0, fmt.Errorf("list duplicate days: %w", err)
	}

	merged := 0
	for _, day := range days {
		start, end := r.DayRange(day)
		list, err := r.shipments.FindByDepartureRange(ctx, start, end)
		if err != nil {
			recordSpanError(span, err)
			return merged, fmt.Errorf("find shipments for %s: %w", start.Format(dayKeyLayout), err)
		}
		if len(list) < 2 {
			continue
		}
		if _, err := r.collapse(ctx, list); err != nil {
			recordSpanError(span, err)
			return merged, err
		}
		merged++
	}
	span.SetAttributes(attribute.Int("days.merged", merged))
	return merged, nil
}

// DayBatch is the set of unbatched orders departing on one day.
type DayBatch struct {
	Day    string
	Orders []model.Order
}

// PendingDays groups up to limit unbatched orders by departure day, earliest day first.
func (r *BatchResolver) PendingDays(ctx context.Context, limit int) ([]DayBatch, error) {
	pending, err := r.orders.ListUnbatched(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("list unbatched orders: %w", err)
	}

	groups := make(map[string][]model.Order)
	var keys []string
	for _, o := range pending {
		if o.DepartureDate == nil {
			continue
		}
		key := r.DayKey(*o.DepartureDate)
		if _, ok := groups[key]; !ok {
			keys = append(keys, key)
		}
		groups[key] = append(groups[key], o)
	}
	sort.Strings(keys)

	days := make([]DayBatch, 0, len(keys))
	for _, key := range keys {
		days = append(days, DayBatch{Day: key, Orders: groups[key]})
	}
	return days, nil
}

// AttachDay attaches every order of the day batch as the system actor and
// returns the number of orders attached.
func (r *BatchResolver) AttachDay(ctx context.Context, day DayBatch) (int, error) {
	if len(day.Orders) == 0 || day.Orders[0].DepartureDate == nil {
		return 0, nil
	}
	ctx, span := r.tracer.Start(ctx, "BatchResolver.AttachDay",
		trace.WithAttributes(attribute.String("departure.day", day.Day), attribute.Int("orders", len(day.Orders))))
	defer span.End()

	if _, _, err := r.attach(ctx, day.Orders, *day.Orders[0].DepartureDate, model.SystemActor); err != nil {
		recordSpanError(span, err)
		return 0, fmt.Errorf("batch %s: %w", day.Day, err)
	}
	return len(day.Orders), nil
}

// AutoBatch attaches up to limit unbatched orders to their day batches and
// returns the number of orders attached. A failing day is logged and skipped.
func (r *BatchResolver) AutoBatch(ctx context.Context, limit int) (int, error) {
	ctx, span := r.tracer.Start(ctx, "BatchResolver.AutoBatch")
	defer span.End()

	days, err := r.PendingDays(ctx, limit)
	if err != nil {
		recordSpanError(span, err)
		return 0, err
	}

	attached := 0
	var errs []error
	for _, day := range days {
		n, err := r.AttachDay(ctx, day)
		if err != nil {
			r.logger.Error("auto batch failed", slog.String("day", day.Day), slog.String("error", err.Error()))
			errs = append(errs, err)
			continue
		}
		attached += n
	}
	span.SetAttributes(attribute.Int("orders.attached", attached))
	return attached, errors.Join(errs...)
}

func (r *BatchResolver) loadSameDayOrders(ctx context.Context, orderIDs []int64, override *time.Time) ([]model.Order, time.Time, error) {
	ids := uniqueIDs(orderIDs)
	if len(ids) == 0 {
		return nil, time.Time{}, domainErrors.NewValidationError("orderIds must be a non-empty array")
	}

	found, err := r.orders.GetByIDs(ctx, ids)
	if err != nil {
		return nil, time.Time{}, err
	}
	byID := make(map[int64]model.Order, len(found))
	for _, o := range found {
		byID[o.ID] = o
	}
	orders := make([]model.Order, 0, len(ids))
	var missing []string
	for _, id := range ids {
		o, ok := byID[id]
		if !ok {
			missing = append(missing, strconv.FormatInt(id, 10))
			continue
		}
		orders = append(orders, o)
	}
	if len(missing) > 0 {
		return nil, time.Time{}, domainErrors.NewValidationError("order ids not found: %s", strings.Join(missing, ", "))
	}

	var departure time.Time
	switch {
	case override != nil:
		departure = *override
	case orders[0].DepartureDate != nil:
		departure = *orders[0].DepartureDate
	default:
		return nil, time.Time{}, domainErrors.NewValidationError("departureDate is required (in request or on orders)")
	}

	key := r.DayKey(departure)
	var mismatched []string
	for _, o := range orders {
		if o.DepartureDate == nil || r.DayKey(*o.DepartureDate) != key {
			mismatched = append(mismatched, o.OrderNumber)
		}
	}
	if len(mismatched) > 0 {
		return nil, time.Time{}, domainErrors.NewValidationError("all orders must have the same departureDate: %s", strings.Join(mismatched, ", "))
	}
	return orders, departure, nil
}

// attach resolves the canonical batch of the day and links orders to it. A
// canonical shipment deleted by a concurrent merge before the orders land in it
// sends the call back to resolve.
func (r *BatchResolver) attach(ctx context.Context, orders []model.Order, departure time.Time, actor model.Actor) (*model.Shipment, bool, error) {
	start, end := r.DayRange(departure)
	ids := make([]int64, 0, len(orders))
	for _, o := range orders {
		ids = append(ids, o.ID)
	}

	var created []int64
	var lastErr error
	for attempt := 0; attempt < attachAttempts; attempt++ {
		canonical, createdID, err := r.resolve(ctx, orders[0], start, end, actor)
		if createdID != 0 {
			created = append(created, createdID)
		}
		if err == nil {
			var fresh *model.Shipment
			fresh, err = r.link(ctx, canonical, ids)
			if err == nil {
				return fresh, slices.Contains(created, fresh.ID), nil
			}
		}
		if !errors.Is(err, domainErrors.ErrNotFound) {
			return nil, false, err
		}
		r.logger.Info("canonical batch vanished, resolving again",
			slog.String("day", start.Format(dayKeyLayout)),
			slog.Int("attempt", attempt+1),
			slog.String("error", err.Error()))
		lastErr = err
	}
	return nil, false, fmt.Errorf("attach orders to batch %s: %w", start.Format(dayKeyLayout), lastErr)
}

func (r *BatchResolver) link(ctx context.Context, canonical *model.Shipment, ids []int64) (*model.Shipment, error) {
	if err := r.shipments.AddOrders(ctx, canonical.ID, ids); err != nil {
		return nil, fmt.Errorf("add orders to shipment %d: %w", canonical.ID, err)
	}
	if err := r.orders.AssignShipment(ctx, ids, canonical.ID, canonical.BatchNumber); err != nil {
		return nil, fmt.Errorf("assign orders to shipment %d: %w", canonical.ID, err)
	}
	fresh, err := r.shipments.GetByID(ctx, canonical.ID)
	if err != nil {
		return nil, fmt.Errorf("reload shipment %d: %w", canonical.ID, err)
	}
	return fresh, nil
}

// resolve returns the canonical shipment of [start, end), creating one when the
// day is empty. After creating it looks again so that a batch created
// concurrently by another caller is merged right away. createdID is the id of
// the shipment created by this call, or 0.
func (r *BatchResolver) resolve(ctx context.Context, first model.Order, start, end time.Time, actor model.Actor) (*model.Shipment, int64, error) {
	list, err := r.shipments.FindByDepartureRange(ctx, start, end)
	if err != nil {
		return nil, 0, fmt.Errorf("find shipments for %s: %w", start.Format(dayKeyLayout), err)
	}
	if len(list) > 0 {
		canonical, err := r.collapse(ctx, list)
		return canonical, 0, err
	}

	created, err := r.create(ctx, first, start, actor)
	if err != nil {
		return nil, 0, err
	}
	r.logger.Info("shipment batch created",
		slog.Int64("shipment_id", created.ID),
		slog.String("batch_number", created.BatchNumber),
		slog.String("day", start.Format(dayKeyLayout)))

	list, err = r.shipments.FindByDepartureRange(ctx, start, end)
	if err != nil {
		return nil, 0, fmt.Errorf("find shipments for %s: %w", start.Format(dayKeyLayout), err)
	}
	if len(list) == 0 {
		return created, created.ID, nil
	}
	canonical, err := r.collapse(ctx, list)
	return canonical, created.ID, err
}

// collapse keeps the earliest shipment of list and merges the rest into it.
// list must be ordered by creation.
func (r *BatchResolver) collapse(ctx context.Context, list []model.Shipment) (*model.Shipment, error) {
	canonical := list[0]
	if len(list) == 1 {
		return &canonical, nil
	}

	duplicates := make([]int64, 0, len(list)-1)
	for _, s := range list[1:] {
		duplicates = append(duplicates, s.ID)
	}
	if err := r.shipments.MergeInto(ctx, &canonical, duplicates); err != nil {
		return nil, fmt.Errorf("merge duplicate shipments into %d: %w", canonical.ID, err)
	}

	r.merges.Add(ctx, int64(len(duplicates)))
	r.logger.Info("merged duplicate shipment batches",
		slog.Int64("shipment_id", canonical.ID),
		slog.String("batch_number", canonical.BatchNumber),
		slog.Any("duplicate_ids", duplicates))
	return &canonical, nil
}

func (r *BatchResolver) create(ctx context.Context, first model.Order, dayStart time.Time, actor model.Actor) (*model.Shipment, error) {
	location := locationProcessingCenter
	if first.BranchID != nil {
		location = locationOriginFacility
	}
	var customer *int64
	if first.CustomerID != 0 {
		id := first.CustomerID
		customer = &id
	}

	var lastErr error
	for attempt := 0; attempt < createAttempts; attempt++ {
		batchNumber, err := r.ids.NextBatchNumber(ctx)
		if err != nil {
			return nil, fmt.Errorf("generate batch number: %w", err)
		}
		trackingID, err := r.ids.NextTrackingID(ctx)
		if err != nil {
			return nil, fmt.Errorf("generate tracking id: %w", err)
		}

		shipment := &model.Shipment{
			TrackingID:     trackingID,
			BatchNumber:    batchNumber,
			DepartureDate:  dayStart,
			CurrentStatus:  model.ShipmentStatusProcessing,
			OriginBranchID: first.BranchID,
			ShipperID:      customer,
			ReceiverID:     customer,
			OrderIDs:       []int64{},
			History: []model.HistoryEntry{{
				Status:    model.ShipmentStatusProcessing,
				Location:  location,
				Notes:     "Shipment batch created for " + dayStart.Format(dayKeyLayout),
				Timestamp: r.now(),
				UpdatedBy: actor.Ref(),
			}},
			WeightUnit:   model.DefaultWeightUnit,
			ShippingCost: first.TotalAmount,
			CreatedBy:    actor.Ref(),
		}

		created, err := r.shipments.Create(ctx, shipment)
		if err == nil {
			return created, nil
		}
		if !errors.Is(err, domainErrors.ErrAlreadyExists) {
			return nil, fmt.Errorf("create shipment: %w", err)
		}
		lastErr = err
	}
	return nil, fmt.Errorf("create shipment: %w", lastErr)
}

func uniqueIDs(ids []int64) []int64 {
	out := make([]int64, 0, len(ids))
	seen := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
