package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	domainErrors "github.com/AliXAbdullah03/nge-brain/internal/domain/errors"
	"github.com/AliXAbdullah03/nge-brain/internal/domain/model"
	"github.com/AliXAbdullah03/nge-brain/internal/domain/repository"
	"github.com/AliXAbdullah03/nge-brain/internal/domain/status"
)

const defaultBulkParallelism = 4

// AuditSink receives a record of every successful status change.
type AuditSink interface {
	Record(ctx context.Context, changes ...model.StatusChange) error
}

// StatusUpdate is a requested shipment status change.
type StatusUpdate struct {
	Status   string
	Location string
	Notes    string
}

// ShipmentTransition is the outcome of a shipment status change.
type ShipmentTransition struct {
	Shipment *model.Shipment
	// CascadedOrders counts member orders rewritten to the mapped order status.
	CascadedOrders int64
}

// BulkFailure explains why one shipment of a bulk request was not updated.
type BulkFailure struct {
	ShipmentID int64
	Reason     string
}

// BulkResult summarizes a batch or bulk status update.
type BulkResult struct {
	Requested      int
	Updated        int
	CascadedOrders int64
	Failed         []BulkFailure
}

// StatusEngine validates and applies order and shipment status transitions.
// Every write is read back and compared before it is reported as done.
type StatusEngine struct {
	orders    repository.OrderRepository
	shipments repository.ShipmentRepository
	sink      AuditSink
	logger    *slog.Logger

	now         func() time.Time
	parallelism int
	tracer      trace.Tracer
	transitions metric.Int64Counter
	rejections  metric.Int64Counter
}

// EngineOption customizes a StatusEngine.
type EngineOption func(*StatusEngine)

// WithEngineClock replaces the clock used for history and audit timestamps.
func WithEngineClock(now func() time.Time) EngineOption {
	return func(e *StatusEngine) {
		e.now = now
	}
}

// WithBulkParallelism bounds how many shipments a bulk update processes at once.
func WithBulkParallelism(n int) EngineOption {
	return func(e *StatusEngine) {
		if n > 0 {
			e.parallelism = n
		}
	}
}

// WithEngineTracer injects a tracer.
func WithEngineTracer(tr trace.Tracer) EngineOption {
	return func(e *StatusEngine) {
		if tr != nil {
			e.tracer = tr
		}
	}
}

// WithEngineMeter injects the meter used for transition and rejection counters.
func WithEngineMeter(m metric.Meter) EngineOption {
	return func(e *StatusEngine) {
		if m != nil {
			e.transitions = int64Counter(m, "status_engine.transitions", "Applied status transitions")
			e.rejections = int64Counter(m, "status_engine.rejections", "Rejected status transitions")
		}
	}
}

// NewStatusEngine constructs StatusEngine.
func NewStatusEngine(orders repository.OrderRepository, shipments repository.ShipmentRepository, sink AuditSink, logger *slog.Logger, opts ...EngineOption) *StatusEngine {
	e := &StatusEngine{
		orders:      orders,
		shipments:   shipments,
		sink:        sink,
		logger:      logger,
		now:         time.Now,
		parallelism: defaultBulkParallelism,
		tracer:      noopTracer(),
		transitions: int64Counter(noopMeter(), "status_engine.transitions", ""),
		rejections:  int64Counter(noopMeter(), "status_engine.rejections", ""),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}
	return e
}

// TransitionOrder moves an order one step along the pipeline.
func (e *StatusEngine) TransitionOrder(ctx context.Context, orderID int64, requested string, actor model.Actor) (*model.Order, error) {
	ctx, span := e.tracer.Start(ctx, "StatusEngine.TransitionOrder", trace.WithAttributes(
		attribute.Int64("order.id", orderID),
		attribute.String("status.requested", requested),
		attribute.String("actor.role", string(actor.Role)),
	))
	defer span.End()

	target, err := e.orderTarget(requested, actor)
	if err != nil {
		return nil, e.reject(ctx, span, err)
	}

	order, err := e.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, e.reject(ctx, span, notFound(err, "order", orderID))
	}
	current := status.OrderStatusFromStored(string(order.Status))
	if !status.CanTransition(current, target) {
		return nil, e.reject(ctx, span, &domainErrors.TransitionError{From: string(current), To: string(target)})
	}

	if err := e.orders.UpdateStatus(ctx, orderID, target); err != nil {
		return nil, e.reject(ctx, span, notFound(err, "order", orderID))
	}
	stored, err := e.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, e.reject(ctx, span, notFound(err, "order", orderID))
	}
	if stored.Status != target {
		return nil, e.reject(ctx, span, e.integrityFailure(ctx, model.EntityOrder, orderID, string(target), string(stored.Status)))
	}

	e.transitions.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", string(model.EntityOrder)), attribute.String("status", string(target))))
	e.audit(ctx, model.StatusChange{
		Entity:     model.EntityOrder,
		EntityID:   orderID,
		Reference:  stored.OrderNumber,
		OldStatus:  string(current),
		NewStatus:  string(target),
		ActorID:    actor.ID,
		ActorRole:  actor.Role,
		OccurredAt: e.now(),
	})
	return stored, nil
}

// TransitionShipment moves a shipment to the requested status, appends a
// history entry and cascades the mapped status onto every member order. The
// cascade skips per-order validation.
func (e *StatusEngine) TransitionShipment(ctx context.Context, shipmentID int64, update StatusUpdate, actor model.Actor) (*ShipmentTransition, error) {
	ctx, span := e.tracer.Start(ctx, "StatusEngine.TransitionShipment", trace.WithAttributes(
		attribute.Int64("shipment.id", shipmentID),
		attribute.String("status.requested", update.Status),
		attribute.String("actor.role", string(actor.Role)),
	))
	defer span.End()

	target, err := e.shipmentTarget(update.Status, actor)
	if err != nil {
		return nil, e.reject(ctx, span, err)
	}
	result, err := e.applyShipment(ctx, shipmentID, target, update, actor)
	if err != nil {
		return nil, e.reject(ctx, span, err)
	}
	span.SetAttributes(attribute.Int64("orders.cascaded", result.CascadedOrders))
	return result, nil
}

// CheckShipmentTransition reports whether update would be accepted for the
// shipment without writing anything.
func (e *StatusEngine) CheckShipmentTransition(ctx context.Context, shipmentID int64, update StatusUpdate, actor model.Actor) error {
	target, err := e.shipmentTarget(update.Status, actor)
	if err != nil {
		return err
	}
	shipment, err := e.shipments.GetByID(ctx, shipmentID)
	if err != nil {
		return notFound(err, "shipment", shipmentID)
	}
	current := status.ShipmentStatusFromStored(string(shipment.CurrentStatus))
	if !status.CanTransitionShipment(current, target) {
		return &domainErrors.TransitionError{From: string(current), To: string(target)}
	}
	return nil
}

// UpdateBatchStatus applies update to every shipment of the batch.
func (e *StatusEngine) UpdateBatchStatus(ctx context.Context, batchNumber string, update StatusUpdate, actor model.Actor) (BulkResult, error) {
	ctx, span := e.tracer.Start(ctx, "StatusEngine.UpdateBatchStatus", trace.WithAttributes(
		attribute.String("batch.number", batchNumber),
		attribute.String("status.requested", update.Status),
	))
	defer span.End()

	target, err := e.shipmentTarget(update.Status, actor)
	if err != nil {
		return BulkResult{}, e.reject(ctx, span, err)
	}
	batchNumber = strings.TrimSpace(batchNumber)
	if batchNumber == "" {
		return BulkResult{}, e.reject(ctx, span, domainErrors.NewValidationError("batch number is required"))
	}

	list, err := e.shipments.ListByBatch(ctx, batchNumber)
	if err != nil {
		return BulkResult{}, e.reject(ctx, span, err)
	}
	if len(list) == 0 {
		return BulkResult{}, e.reject(ctx, span, domainErrors.NewNotFoundError("batch", batchNumber))
	}

	ids := make([]int64, 0, len(list))
	for _, s := range list {
		ids = append(ids, s.ID)
	}
	return e.applyBulk(ctx, span, ids, target, update, actor), nil
}

// UpdateBulkStatus applies update to each listed shipment. Every id must exist
// before anything is written.
func (e *StatusEngine) UpdateBulkStatus(ctx context.Context, shipmentIDs []int64, update StatusUpdate, actor model.Actor) (BulkResult, error) {
	ctx, span := e.tracer.Start(ctx, "StatusEngine.UpdateBulkStatus", trace.WithAttributes(
		attribute.Int("shipments.requested", len(shipmentIDs)),
		attribute.String("status.requested", update.Status),
	))
	defer span.End()

	ids := uniqueIDs(shipmentIDs)
	if len(ids) == 0 {
		return BulkResult{}, e.reject(ctx, span, domainErrors.NewValidationError("shipmentIds must be a non-empty array"))
	}
	target, err := e.shipmentTarget(update.Status, actor)
	if err != nil {
		return BulkResult{}, e.reject(ctx, span, err)
	}

	found, err := e.shipments.GetByIDs(ctx, ids)
	if err != nil {
		return BulkResult{}, e.reject(ctx, span, err)
	}
	present := make(map[int64]struct{}, len(found))
	for _, s := range found {
		present[s.ID] = struct{}{}
	}
	var missing []string
	for _, id := range ids {
		if _, ok := present[id]; !ok {
			missing = append(missing, strconv.FormatInt(id, 10))
		}
	}
	if len(missing) > 0 {
		return BulkResult{}, e.reject(ctx, span, domainErrors.NewNotFoundError("shipment", missing...))
	}

	return e.applyBulk(ctx, span, ids, target, update, actor), nil
}

func (e *StatusEngine) applyBulk(ctx context.Context, span trace.Span, ids []int64, target model.ShipmentStatus, update StatusUpdate, actor model.Actor) BulkResult {
	type outcome struct {
		cascaded int64
		err      error
	}
	outcomes := make([]outcome, len(ids))

	var g errgroup.Group
	g.SetLimit(e.parallelism)
	for i, id := range ids {
		g.Go(func() error {
			res, err := e.applyShipment(ctx, id, target, update, actor)
			if err != nil {
				e.rejections.Add(ctx, 1, reasonAttr(err))
				outcomes[i] = outcome{err: err}
				return nil
			}
			outcomes[i] = outcome{cascaded: res.CascadedOrders}
			return nil
		})
	}
	_ = g.Wait()

	result := BulkResult{Requested: len(ids)}
	for i, o := range outcomes {
		if o.err != nil {
			result.Failed = append(result.Failed, BulkFailure{ShipmentID: ids[i], Reason: o.err.Error()})
			continue
		}
		result.Updated++
		result.CascadedOrders += o.cascaded
	}
	span.SetAttributes(attribute.Int("shipments.updated", result.Updated), attribute.Int("shipments.failed", len(result.Failed)))
	return result
}

func (e *StatusEngine) applyShipment(ctx context.Context, shipmentID int64, target model.ShipmentStatus, update StatusUpdate, actor model.Actor) (*ShipmentTransition, error) {
	shipment, err := e.shipments.GetByID(ctx, shipmentID)
	if err != nil {
		return nil, notFound(err, "shipment", shipmentID)
	}
	current := status.ShipmentStatusFromStored(string(shipment.CurrentStatus))
	if !status.CanTransitionShipment(current, target) {
		return nil, &domainErrors.TransitionError{From: string(current), To: string(target)}
	}

	location := strings.TrimSpace(update.Location)
	if location == "" {
		location = model.DefaultHistoryLocation
	}
	entry := model.HistoryEntry{
		Status:    target,
		Location:  location,
		Notes:     strings.TrimSpace(update.Notes),
		Timestamp: e.now(),
		UpdatedBy: actor.Ref(),
	}
	if err := e.shipments.UpdateStatus(ctx, shipmentID, target, entry); err != nil {
		return nil, notFound(err, "shipment", shipmentID)
	}

	stored, err := e.shipments.GetByID(ctx, shipmentID)
	if err != nil {
		return nil, notFound(err, "shipment", shipmentID)
	}
	if stored.CurrentStatus != target {
		return nil, e.integrityFailure(ctx, model.EntityShipment, shipmentID, string(target), string(stored.CurrentStatus))
	}

	e.transitions.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", string(model.EntityShipment)), attribute.String("status", string(target))))
	changes := []model.StatusChange{{
		Entity:     model.EntityShipment,
		EntityID:   shipmentID,
		Reference:  stored.TrackingID,
		OldStatus:  string(current),
		NewStatus:  string(target),
		ActorID:    actor.ID,
		ActorRole:  actor.Role,
		OccurredAt: entry.Timestamp,
	}}

	cascaded, orderChanges, err := e.cascade(ctx, stored, target, actor)
	e.audit(ctx, append(changes, orderChanges...)...)
	if err != nil {
		return nil, err
	}
	return &ShipmentTransition{Shipment: stored, CascadedOrders: cascaded}, nil
}

// cascade writes the order status mapped from target onto every member order
// and returns the changes to audit.
func (e *StatusEngine) cascade(ctx context.Context, shipment *model.Shipment, target model.ShipmentStatus, actor model.Actor) (int64, []model.StatusChange, error) {
	ids := shipment.MemberOrderIDs()
	if len(ids) == 0 {
		return 0, nil, nil
	}
	orderStatus := status.OrderStatusForShipment(target)

	before, err := e.orders.GetByIDs(ctx, ids)
	if err != nil {
		return 0, nil, fmt.Errorf("load member orders of shipment %d: %w", shipment.ID, err)
	}
	n, err := e.orders.SetStatusForIDs(ctx, ids, orderStatus)
	if err != nil {
		e.logger.Error("status cascade failed",
			slog.Int64("shipment_id", shipment.ID),
			slog.String("order_status", string(orderStatus)),
			slog.String("error", err.Error()))
		return 0, nil, fmt.Errorf("cascade status to orders of shipment %d: %w", shipment.ID, err)
	}

	at := e.now()
	changes := make([]model.StatusChange, 0, len(before))
	for _, o := range before {
		if o.Status == orderStatus {
			continue
		}
		changes = append(changes, model.StatusChange{
			Entity:     model.EntityOrder,
			EntityID:   o.ID,
			Reference:  o.OrderNumber,
			OldStatus:  string(o.Status),
			NewStatus:  string(orderStatus),
			ActorID:    actor.ID,
			ActorRole:  actor.Role,
			Cascaded:   true,
			OccurredAt: at,
		})
	}
	return n, changes, nil
}

func (e *StatusEngine) orderTarget(requested string, actor model.Actor) (model.OrderStatus, error) {
	target, ok := status.ParseOrderStatus(requested)
	if !ok {
		return "", fmt.Errorf("%w: %q", domainErrors.ErrInvalidStatus, requested)
	}
	if actor.IsDriver() && !status.DriverMayTarget(string(target)) {
		return "", fmt.Errorf("%w: drivers may only set %q or %q", domainErrors.ErrPermissionDenied,
			model.OrderStatusOutForDelivery, model.OrderStatusDelivered)
	}
	return target, nil
}

func (e *StatusEngine) shipmentTarget(requested string, actor model.Actor) (model.ShipmentStatus, error) {
	target, ok := status.ParseShipmentStatus(requested)
	if !ok {
		return "", fmt.Errorf("%w: %q", domainErrors.ErrInvalidStatus, requested)
	}
	if actor.IsDriver() && !status.DriverMayTarget(string(target)) {
		return "", fmt.Errorf("%w: drivers may only set %q or %q", domainErrors.ErrPermissionDenied,
			model.ShipmentStatusOutForDelivery, model.ShipmentStatusDelivered)
	}
	return target, nil
}

func (e *StatusEngine) integrityFailure(ctx context.Context, entity model.EntityKind, id int64, expected, actual string) error {
	err := &domainErrors.IntegrityError{Entity: string(entity), ID: id, Expected: expected, Actual: actual}
	e.logger.ErrorContext(ctx, "status write verification failed",
		slog.String("entity", string(entity)),
		slog.Int64("id", id),
		slog.String("expected", expected),
		slog.String("actual", actual))
	return err
}

func (e *StatusEngine) audit(ctx context.Context, changes ...model.StatusChange) {
	if e.sink == nil || len(changes) == 0 {
		return
	}
	if err := e.sink.Record(ctx, changes...); err != nil {
		e.logger.Warn("audit sink failed",
			slog.String("entity", string(changes[0].Entity)),
			slog.Int64("id", changes[0].EntityID),
			slog.Int("changes", len(changes)),
			slog.String("error", err.Error()))
	}
}

func (e *StatusEngine) reject(ctx context.Context, span trace.Span, err error) error {
	e.rejections.Add(ctx, 1, reasonAttr(err))
	recordSpanError(span, err)
	return err
}

// notFound names the missing entity when err is a bare store not-found.
func notFound(err error, resource string, id int64) error {
	var typed *domainErrors.NotFoundError
	if errors.Is(err, domainErrors.ErrNotFound) && !errors.As(err, &typed) {
		return domainErrors.NewNotFoundError(resource, strconv.FormatInt(id, 10))
	}
	return err
}
