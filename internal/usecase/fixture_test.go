package usecase

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"math/rand/v2"
	"sync"
	"testing"
	"time"

	"github.com/AliXAbdullah03/nge-brain/internal/domain/model"
	testhelpers "github.com/AliXAbdullah03/nge-brain/internal/test"
)

var fixedNow = time.Date(2024, time.March, 15, 9, 30, 0, 0, time.UTC)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

type recordingSink struct {
	mu      sync.Mutex
	changes []model.StatusChange
	calls   int
	err     error
}

func (s *recordingSink) Record(_ context.Context, changes ...model.StatusChange) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.err != nil {
		return s.err
	}
	s.changes = append(s.changes, changes...)
	return nil
}

func (s *recordingSink) recordCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func (s *recordingSink) recorded() []model.StatusChange {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.StatusChange(nil), s.changes...)
}

type fixture struct {
	store     *testhelpers.MemoryStore
	sink      *recordingSink
	ids       *IdentifierGenerator
	batches   *BatchResolver
	engine    *StatusEngine
	orders    *OrderUseCase
	shipments *ShipmentUseCase
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	store := testhelpers.NewMemoryStore()
	sink := &recordingSink{}
	clock := func() time.Time { return fixedNow }

	ids := NewIdentifierGenerator(store.Orders(), store.Shipments(),
		WithRandSource(rand.NewPCG(7, 11)),
		WithIdentifierClock(clock))
	batches := NewBatchResolver(store.Orders(), store.Shipments(), ids, discardLogger(), WithBatchClock(clock))
	engine := NewStatusEngine(store.Orders(), store.Shipments(), sink, discardLogger(), WithEngineClock(clock))

	return &fixture{
		store:     store,
		sink:      sink,
		ids:       ids,
		batches:   batches,
		engine:    engine,
		orders:    NewOrderUseCase(store.Orders(), store.Shipments(), store.Customers(), ids, batches),
		shipments: NewShipmentUseCase(store.Shipments(), engine),
	}
}

// seedOrder stores an order at status departing on departure, which may be zero.
func (f *fixture) seedOrder(number string, status model.OrderStatus, departure time.Time) model.Order {
	o := model.Order{OrderNumber: number, TrackingID: number, Status: status, CustomerID: 1}
	if !departure.IsZero() {
		d := departure
		o.DepartureDate = &d
	}
	return f.store.PutOrder(o)
}

// seedShipment stores a shipment at status holding orders.
func (f *fixture) seedShipment(tracking, batch string, status model.ShipmentStatus, departure time.Time, orders ...model.Order) model.Shipment {
	ids := make([]int64, 0, len(orders))
	for _, o := range orders {
		ids = append(ids, o.ID)
	}
	sh := f.store.PutShipment(model.Shipment{
		TrackingID:    tracking,
		BatchNumber:   batch,
		DepartureDate: departure,
		CurrentStatus: status,
		OrderIDs:      ids,
	})
	for _, o := range orders {
		sid, b := sh.ID, sh.BatchNumber
		o.ShipmentID = &sid
		o.BatchNumber = &b
		f.store.PutOrder(o)
	}
	return sh
}

var errBoom = errors.New("boom")
