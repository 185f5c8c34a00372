// Package status canonicalizes free-form status strings and encodes the
// legal transitions of orders and shipments.
package status

import (
	"regexp"
	"strings"

	"github.com/AliXAbdullah03/nge-brain/internal/domain/model"
)

var separators = regexp.MustCompile(`[_\s-]`)

// Pipeline is the ordered order status sequence.
var Pipeline = []model.OrderStatus{
	model.OrderStatusReceived,
	model.OrderStatusProcessing,
	model.OrderStatusDeparted,
	model.OrderStatusInTransit,
	model.OrderStatusArrived,
	model.OrderStatusClearance,
	model.OrderStatusOutForDelivery,
	model.OrderStatusDelivered,
}

var canonical = map[string]model.OrderStatus{
	"pending":    model.OrderStatusReceived,
	"processing": model.OrderStatusProcessing,
	"confirmed":  model.OrderStatusProcessing,
	"intransit":  model.OrderStatusInTransit,
	"completed":  model.OrderStatusDelivered,
	"cancelled":  model.OrderStatusReceived,
	"canceled":   model.OrderStatusReceived,
}

var index = make(map[model.OrderStatus]int, len(Pipeline))

func init() {
	for i, s := range Pipeline {
		index[s] = i
		canonical[Normalize(string(s))] = s
	}
}

// Normalize lowercases raw and strips spaces, underscores and hyphens.
func Normalize(raw string) string {
	return separators.ReplaceAllString(strings.ToLower(raw), "")
}

// ToCanonical resolves a normalized key to a pipeline status.
func ToCanonical(key string) (model.OrderStatus, bool) {
	s, ok := canonical[key]
	return s, ok
}

// ParseOrderStatus normalizes raw and resolves it. Unknown input is rejected.
func ParseOrderStatus(raw string) (model.OrderStatus, bool) {
	if strings.TrimSpace(raw) == "" {
		return "", false
	}
	return ToCanonical(Normalize(raw))
}

// OrderStatusFromStored reads a persisted status, defaulting to the first
// pipeline step when the value is empty or unrecognized.
func OrderStatusFromStored(raw string) model.OrderStatus {
	if s, ok := ParseOrderStatus(raw); ok {
		return s
	}
	return Pipeline[0]
}

// Index returns the position of s in the pipeline or -1.
func Index(s model.OrderStatus) int {
	i, ok := index[s]
	if !ok {
		return -1
	}
	return i
}

// IsForwardTransition reports whether to does not precede from in the pipeline.
func IsForwardTransition(from, to model.OrderStatus) bool {
	fi, ti := Index(from), Index(to)
	if fi < 0 || ti < 0 {
		return false
	}
	return ti >= fi
}

// AllowedNext lists the statuses reachable from s in one step.
func AllowedNext(s model.OrderStatus) []model.OrderStatus {
	i := Index(s)
	if i < 0 || i == len(Pipeline)-1 {
		return nil
	}
	return []model.OrderStatus{Pipeline[i+1]}
}

// CanTransition reports whether an order may move from one status to another.
// Only the immediate successor is accepted.
func CanTransition(from, to model.OrderStatus) bool {
	for _, next := range AllowedNext(from) {
		if next == to {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no transition leaves s.
func IsTerminal(s model.OrderStatus) bool {
	return s == model.OrderStatusDelivered
}

// ParseOrderFilter parses a comma separated status filter, dropping unknown entries.
func ParseOrderFilter(csv string) []model.OrderStatus {
	var out []model.OrderStatus
	seen := make(map[model.OrderStatus]struct{})
	for _, part := range strings.Split(csv, ",") {
		s, ok := ParseOrderStatus(strings.TrimSpace(part))
		if !ok {
			continue
		}
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

// MatchesFilter reports whether stored satisfies filter. An empty filter matches everything.
func MatchesFilter(stored string, filter []model.OrderStatus) bool {
	if len(filter) == 0 {
		return true
	}
	s, ok := ParseOrderStatus(stored)
	if !ok {
		return false
	}
	for _, f := range filter {
		if f == s {
			return true
		}
	}
	return false
}
