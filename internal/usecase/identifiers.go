package usecase

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/AliXAbdullah03/nge-brain/internal/domain/repository"
)

const (
	identifierPrefix = "NGE"
	batchPrefix      = "BCH"

	orderNumberMin = 100000000
	orderNumberMax = 999999999
	trackingMin    = 10000000
	trackingMax    = 99999999
)

// IdentifierGenerator issues order numbers, shipment tracking ids and batch
// numbers. Uniqueness is checked against the store before a value is returned;
// two concurrent callers may still draw the same value, which the unique
// indexes then reject.
type IdentifierGenerator struct {
	orders    repository.OrderRepository
	shipments repository.ShipmentRepository

	mu  sync.Mutex
	rnd *rand.Rand
	now func() time.Time
}

// IdentifierOption customizes an IdentifierGenerator.
type IdentifierOption func(*IdentifierGenerator)

// WithRandSource replaces the random source.
func WithRandSource(src rand.Source) IdentifierOption {
	return func(g *IdentifierGenerator) {
		g.rnd = rand.New(src)
	}
}

// WithIdentifierClock replaces the clock that decides the batch year.
func WithIdentifierClock(now func() time.Time) IdentifierOption {
	return func(g *IdentifierGenerator) {
		g.now = now
	}
}

// NewIdentifierGenerator constructs IdentifierGenerator.
func NewIdentifierGenerator(orders repository.OrderRepository, shipments repository.ShipmentRepository, opts ...IdentifierOption) *IdentifierGenerator {
	g := &IdentifierGenerator{
		orders:    orders,
		shipments: shipments,
		rnd:       rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
		now:       time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(g)
		}
	}
	return g
}

// NextOrderNumber returns NGE followed by nine digits, unused as either an
// order number or an order tracking id.
func (g *IdentifierGenerator) NextOrderNumber(ctx context.Context) (string, error) {
	for {
		candidate := g.draw(orderNumberMin, orderNumberMax)
		exists, err := g.orders.NumberExists(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !exists {
			return candidate, nil
		}
	}
}

// NextTrackingID returns NGE followed by eight digits, unused as a shipment tracking id.
func (g *IdentifierGenerator) NextTrackingID(ctx context.Context) (string, error) {
	for {
		candidate := g.draw(trackingMin, trackingMax)
		exists, err := g.shipments.TrackingIDExists(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !exists {
			return candidate, nil
		}
	}
}

// NextBatchNumber returns BCH-<year>-<seq> where seq follows the highest
// sequence used this year. Sequences below 1000 are padded to three digits.
func (g *IdentifierGenerator) NextBatchNumber(ctx context.Context) (string, error) {
	prefix := fmt.Sprintf("%s-%d-", batchPrefix, g.now().Year())
	last, err := g.shipments.MaxBatchSequence(ctx, prefix)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s%03d", prefix, last+1), nil
}

func (g *IdentifierGenerator) draw(lo, hi int64) string {
	g.mu.Lock()
	n := lo + g.rnd.Int64N(hi-lo+1)
	g.mu.Unlock()
	return fmt.Sprintf("%s%d", identifierPrefix, n)
}
