package test

import (
	"context"
	"slices"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	domainErrors "github.com/AliXAbdullah03/nge-brain/internal/domain/errors"
	"github.com/AliXAbdullah03/nge-brain/internal/domain/model"
	"github.com/AliXAbdullah03/nge-brain/internal/domain/repository"
)

// Operation names accepted by MemoryStore.FailOn.
const (
	OpOrderCreate           = "orders.Create"
	OpOrderUpdateStatus     = "orders.UpdateStatus"
	OpOrderSetStatusForIDs  = "orders.SetStatusForIDs"
	OpOrderAssignShipment   = "orders.AssignShipment"
	OpOrderListUnbatched    = "orders.ListUnbatched"
	OpShipmentCreate        = "shipments.Create"
	OpShipmentUpdateStatus  = "shipments.UpdateStatus"
	OpShipmentAddOrders     = "shipments.AddOrders"
	OpShipmentMergeInto     = "shipments.MergeInto"
	OpShipmentFindByRange   = "shipments.FindByDepartureRange"
	OpShipmentDuplicateDays = "shipments.ListDuplicateDays"
	OpUserGetByLogin        = "users.GetByLogin"
	OpCustomerCreate        = "customers.Create"
)

// MemoryStore is a mutex guarded in-memory implementation of repository.Factory.
// Ordering and merge semantics follow the PostgreSQL adapter.
type MemoryStore struct {
	mu sync.Mutex

	users     map[int64]model.User
	customers map[int64]model.Customer
	orders    map[int64]model.Order
	shipments map[int64]model.Shipment
	nextID    int64
	tick      time.Time

	// FailOn makes the named operation return the error.
	FailOn map[string]error
	// BeforeFindByDepartureRange runs outside the lock before every range query.
	BeforeFindByDepartureRange func(from, to time.Time)
	// BeforeAddOrders runs outside the lock before every AddOrders call.
	BeforeAddOrders func(shipmentID int64)
	// DropStatusWrites makes status updates report success without writing.
	DropStatusWrites bool
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:     make(map[int64]model.User),
		customers: make(map[int64]model.Customer),
		orders:    make(map[int64]model.Order),
		shipments: make(map[int64]model.Shipment),
		tick:      time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC),
		FailOn:    make(map[string]error),
	}
}

// Users returns the user repository.
func (s *MemoryStore) Users() repository.UserRepository { return memUsers{s} }

// Customers returns the customer repository.
func (s *MemoryStore) Customers() repository.CustomerRepository { return memCustomers{s} }

// Orders returns the order repository.
func (s *MemoryStore) Orders() repository.OrderRepository { return memOrders{s} }

// Shipments returns the shipment repository.
func (s *MemoryStore) Shipments() repository.ShipmentRepository { return memShipments{s} }

// Fail registers err for op.
func (s *MemoryStore) Fail(op string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.FailOn[op] = err
}

// PutOrder stores o as is, assigning an id when it has none.
func (s *MemoryStore) PutOrder(o model.Order) model.Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	if o.ID == 0 {
		o.ID = s.newID()
	}
	if o.CreatedAt.IsZero() {
		o.CreatedAt = s.now()
	}
	s.orders[o.ID] = cloneOrder(o)
	return o
}

// PutShipment stores sh as is, assigning an id when it has none.
func (s *MemoryStore) PutShipment(sh model.Shipment) model.Shipment {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sh.ID == 0 {
		sh.ID = s.newID()
	}
	if sh.CreatedAt.IsZero() {
		sh.CreatedAt = s.now()
	}
	s.shipments[sh.ID] = cloneShipment(sh)
	return sh
}

// AllShipments returns every stored shipment ordered by creation.
func (s *MemoryStore) AllShipments() []model.Shipment {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sortedShipments(func(model.Shipment) bool { return true })
}

// Order returns a stored order or false.
func (s *MemoryStore) Order(id int64) (model.Order, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[id]
	return cloneOrder(o), ok
}

func (s *MemoryStore) newID() int64 {
	s.nextID++
	return s.nextID
}

// now advances a synthetic clock so creation order is strict.
func (s *MemoryStore) now() time.Time {
	s.tick = s.tick.Add(time.Millisecond)
	return s.tick
}

func (s *MemoryStore) failure(op string) error {
	return s.FailOn[op]
}

func (s *MemoryStore) sortedShipments(keep func(model.Shipment) bool) []model.Shipment {
	var out []model.Shipment
	for _, sh := range s.shipments {
		if keep(sh) {
			out = append(out, cloneShipment(sh))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

type memUsers struct{ s *MemoryStore }

func (r memUsers) Create(ctx context.Context, login, passwordHash string, role model.Role) (*model.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.Login == login {
			return nil, domainErrors.ErrAlreadyExists
		}
	}
	u := model.User{ID: r.s.newID(), Login: login, PasswordHash: passwordHash, Role: role, Status: model.UserStatusActive, CreatedAt: r.s.now()}
	r.s.users[u.ID] = u
	return &u, nil
}

func (r memUsers) GetByLogin(ctx context.Context, login string) (*model.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.failure(OpUserGetByLogin); err != nil {
		return nil, err
	}
	for _, u := range r.s.users {
		if u.Login == login {
			return &u, nil
		}
	}
	return nil, domainErrors.ErrNotFound
}

func (r memUsers) GetByID(ctx context.Context, id int64) (*model.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, domainErrors.ErrNotFound
	}
	return &u, nil
}

// SetUserStatus flips the status of a stored user.
func (s *MemoryStore) SetUserStatus(id int64, status model.UserStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.users[id]; ok {
		u.Status = status
		s.users[id] = u
	}
}

type memCustomers struct{ s *MemoryStore }

func (r memCustomers) Create(ctx context.Context, c *model.Customer) (*model.Customer, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.failure(OpCustomerCreate); err != nil {
		return nil, err
	}
	created := *c
	created.ID = r.s.newID()
	created.CreatedAt = r.s.now()
	r.s.customers[created.ID] = created
	return &created, nil
}

func (r memCustomers) GetByID(ctx context.Context, id int64) (*model.Customer, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.customers[id]
	if !ok {
		return nil, domainErrors.ErrNotFound
	}
	return &c, nil
}

func (r memCustomers) FindByContact(ctx context.Context, phone, email string) (*model.Customer, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var byEmail *model.Customer
	ids := make([]int64, 0, len(r.s.customers))
	for id := range r.s.customers {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	for _, id := range ids {
		c := r.s.customers[id]
		if phone != "" && c.Phone == phone {
			return &c, nil
		}
		if byEmail == nil && email != "" && strings.EqualFold(c.Email, email) {
			byEmail = &c
		}
	}
	if byEmail != nil {
		return byEmail, nil
	}
	return nil, domainErrors.ErrNotFound
}

type memOrders struct{ s *MemoryStore }

func (r memOrders) Create(ctx context.Context, o *model.Order) (*model.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.failure(OpOrderCreate); err != nil {
		return nil, err
	}
	for _, existing := range r.s.orders {
		if existing.OrderNumber == o.OrderNumber {
			return nil, domainErrors.ErrAlreadyExists
		}
	}
	created := cloneOrder(*o)
	created.ID = r.s.newID()
	created.CreatedAt = r.s.now()
	created.UpdatedAt = created.CreatedAt
	r.s.orders[created.ID] = created
	out := cloneOrder(created)
	return &out, nil
}

func (r memOrders) GetByID(ctx context.Context, id int64) (*model.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	o, ok := r.s.orders[id]
	if !ok {
		return nil, domainErrors.ErrNotFound
	}
	out := cloneOrder(o)
	return &out, nil
}

func (r memOrders) GetByIDs(ctx context.Context, ids []int64) ([]model.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []model.Order
	for _, id := range sortedUnique(ids) {
		if o, ok := r.s.orders[id]; ok {
			out = append(out, cloneOrder(o))
		}
	}
	return out, nil
}

func (r memOrders) GetByNumber(ctx context.Context, number string) (*model.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, o := range r.s.orders {
		if o.OrderNumber == number || o.TrackingID == number {
			out := cloneOrder(o)
			return &out, nil
		}
	}
	return nil, domainErrors.ErrNotFound
}

func (r memOrders) NumberExists(ctx context.Context, number string) (bool, error) {
	_, err := r.GetByNumber(ctx, number)
	if err != nil {
		return false, nil
	}
	return true, nil
}

func (r memOrders) List(ctx context.Context, filter model.OrderFilter) ([]model.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []model.Order
	for _, o := range r.s.orders {
		if len(filter.Statuses) > 0 && !slices.Contains(filter.Statuses, o.Status) {
			continue
		}
		if filter.CustomerID != nil && o.CustomerID != *filter.CustomerID {
			continue
		}
		out = append(out, cloneOrder(o))
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (r memOrders) ListUnbatched(ctx context.Context, limit int) ([]model.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.failure(OpOrderListUnbatched); err != nil {
		return nil, err
	}
	var out []model.Order
	for _, o := range r.s.orders {
		if o.DepartureDate != nil && o.ShipmentID == nil {
			out = append(out, cloneOrder(o))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].DepartureDate.Equal(*out[j].DepartureDate) {
			return out[i].DepartureDate.Before(*out[j].DepartureDate)
		}
		return out[i].ID < out[j].ID
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r memOrders) UpdateStatus(ctx context.Context, id int64, status model.OrderStatus) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.failure(OpOrderUpdateStatus); err != nil {
		return err
	}
	o, ok := r.s.orders[id]
	if !ok {
		return domainErrors.ErrNotFound
	}
	if r.s.DropStatusWrites {
		return nil
	}
	o.Status = status
	o.UpdatedAt = r.s.now()
	r.s.orders[id] = o
	return nil
}

func (r memOrders) SetStatusForIDs(ctx context.Context, ids []int64, status model.OrderStatus) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.failure(OpOrderSetStatusForIDs); err != nil {
		return 0, err
	}
	var n int64
	for _, id := range sortedUnique(ids) {
		o, ok := r.s.orders[id]
		if !ok {
			continue
		}
		o.Status = status
		o.UpdatedAt = r.s.now()
		r.s.orders[id] = o
		n++
	}
	return n, nil
}

func (r memOrders) AssignShipment(ctx context.Context, ids []int64, shipmentID int64, batchNumber string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.failure(OpOrderAssignShipment); err != nil {
		return err
	}
	if _, ok := r.s.shipments[shipmentID]; !ok {
		return domainErrors.ErrNotFound
	}
	for _, id := range ids {
		o, ok := r.s.orders[id]
		if !ok {
			continue
		}
		sid, batch := shipmentID, batchNumber
		o.ShipmentID = &sid
		o.BatchNumber = &batch
		o.UpdatedAt = r.s.now()
		r.s.orders[id] = o
	}
	return nil
}

type memShipments struct{ s *MemoryStore }

func (r memShipments) Create(ctx context.Context, sh *model.Shipment) (*model.Shipment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.failure(OpShipmentCreate); err != nil {
		return nil, err
	}
	for _, existing := range r.s.shipments {
		if existing.TrackingID == sh.TrackingID {
			return nil, domainErrors.ErrAlreadyExists
		}
	}
	created := cloneShipment(*sh)
	if created.OrderIDs == nil {
		created.OrderIDs = []int64{}
	}
	if created.WeightUnit == "" {
		created.WeightUnit = model.DefaultWeightUnit
	}
	created.ID = r.s.newID()
	created.CreatedAt = r.s.now()
	created.UpdatedAt = created.CreatedAt
	r.s.shipments[created.ID] = created
	out := cloneShipment(created)
	return &out, nil
}

func (r memShipments) GetByID(ctx context.Context, id int64) (*model.Shipment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	sh, ok := r.s.shipments[id]
	if !ok {
		return nil, domainErrors.ErrNotFound
	}
	out := cloneShipment(sh)
	return &out, nil
}

func (r memShipments) GetByIDs(ctx context.Context, ids []int64) ([]model.Shipment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []model.Shipment
	for _, id := range sortedUnique(ids) {
		if sh, ok := r.s.shipments[id]; ok {
			out = append(out, cloneShipment(sh))
		}
	}
	return out, nil
}

func (r memShipments) GetByTrackingID(ctx context.Context, trackingID string) (*model.Shipment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, sh := range r.s.shipments {
		if sh.TrackingID == trackingID {
			out := cloneShipment(sh)
			return &out, nil
		}
	}
	return nil, domainErrors.ErrNotFound
}

func (r memShipments) ListByBatch(ctx context.Context, batchNumber string) ([]model.Shipment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.sortedShipments(func(sh model.Shipment) bool { return sh.BatchNumber == batchNumber }), nil
}

func (r memShipments) FindByDepartureRange(ctx context.Context, from, to time.Time) ([]model.Shipment, error) {
	if hook := r.hook(); hook != nil {
		hook(from, to)
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.failure(OpShipmentFindByRange); err != nil {
		return nil, err
	}
	return r.s.sortedShipments(func(sh model.Shipment) bool {
		return !sh.DepartureDate.Before(from) && sh.DepartureDate.Before(to)
	}), nil
}

func (r memShipments) hook() func(from, to time.Time) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.BeforeFindByDepartureRange
}

func (r memShipments) ListDuplicateDays(ctx context.Context, loc *time.Location) ([]time.Time, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.failure(OpShipmentDuplicateDays); err != nil {
		return nil, err
	}
	counts := make(map[time.Time]int)
	for _, sh := range r.s.shipments {
		local := sh.DepartureDate.In(loc)
		day := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
		counts[day]++
	}
	var days []time.Time
	for day, n := range counts {
		if n > 1 {
			days = append(days, day)
		}
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })
	return days, nil
}

func (r memShipments) TrackingIDExists(ctx context.Context, trackingID string) (bool, error) {
	_, err := r.GetByTrackingID(ctx, trackingID)
	return err == nil, nil
}

func (r memShipments) MaxBatchSequence(ctx context.Context, prefix string) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	maxSeq := 0
	for _, sh := range r.s.shipments {
		rest, ok := strings.CutPrefix(sh.BatchNumber, prefix)
		if !ok {
			continue
		}
		if n, err := strconv.Atoi(rest); err == nil && n > maxSeq {
			maxSeq = n
		}
	}
	return maxSeq, nil
}

func (r memShipments) AddOrders(ctx context.Context, id int64, orderIDs []int64) error {
	r.s.mu.Lock()
	before := r.s.BeforeAddOrders
	r.s.mu.Unlock()
	if before != nil {
		before(id)
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.failure(OpShipmentAddOrders); err != nil {
		return err
	}
	sh, ok := r.s.shipments[id]
	if !ok {
		return domainErrors.ErrNotFound
	}
	sh.OrderIDs = unite(sh.OrderIDs, orderIDs)
	sh.UpdatedAt = r.s.now()
	r.s.shipments[id] = sh
	return nil
}

func (r memShipments) MergeInto(ctx context.Context, canonical *model.Shipment, duplicateIDs []int64) error {
	if len(duplicateIDs) == 0 {
		return nil
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.failure(OpShipmentMergeInto); err != nil {
		return err
	}
	target, ok := r.s.shipments[canonical.ID]
	if !ok {
		return domainErrors.ErrNotFound
	}

	dups := r.s.sortedShipments(func(sh model.Shipment) bool { return slices.Contains(duplicateIDs, sh.ID) })
	var members []int64
	for _, d := range dups {
		members = append(members, d.OrderIDs...)
		if d.LegacyOrderID != nil {
			members = append(members, *d.LegacyOrderID)
		}
	}
	target.OrderIDs = unite(target.OrderIDs, members)
	target.UpdatedAt = r.s.now()
	r.s.shipments[target.ID] = target

	for id, o := range r.s.orders {
		if (o.ShipmentID != nil && slices.Contains(duplicateIDs, *o.ShipmentID)) || slices.Contains(members, id) {
			sid, batch := target.ID, target.BatchNumber
			o.ShipmentID = &sid
			o.BatchNumber = &batch
			r.s.orders[id] = o
		}
	}
	for _, id := range duplicateIDs {
		delete(r.s.shipments, id)
	}
	return nil
}

func (r memShipments) UpdateStatus(ctx context.Context, id int64, status model.ShipmentStatus, entry model.HistoryEntry) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.failure(OpShipmentUpdateStatus); err != nil {
		return err
	}
	sh, ok := r.s.shipments[id]
	if !ok {
		return domainErrors.ErrNotFound
	}
	if r.s.DropStatusWrites {
		return nil
	}
	sh.CurrentStatus = status
	sh.History = append(sh.History, entry)
	sh.UpdatedAt = r.s.now()
	r.s.shipments[id] = sh
	return nil
}

func (r memShipments) Update(ctx context.Context, id int64, patch model.ShipmentPatch) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	sh, ok := r.s.shipments[id]
	if !ok {
		return domainErrors.ErrNotFound
	}
	if patch.EstimatedDeliveryDate != nil {
		eta := *patch.EstimatedDeliveryDate
		sh.EstimatedDeliveryDate = &eta
	}
	if patch.DestinationBranchID != nil {
		v := *patch.DestinationBranchID
		sh.DestinationBranchID = &v
	}
	if patch.ReceiverID != nil {
		v := *patch.ReceiverID
		sh.ReceiverID = &v
	}
	if patch.Parcels != nil {
		sh.Parcels = slices.Clone(patch.Parcels)
	}
	if patch.TotalWeight != nil {
		sh.TotalWeight = *patch.TotalWeight
	}
	if patch.ShippingCost != nil {
		sh.ShippingCost = *patch.ShippingCost
	}
	if patch.InsuranceAmount != nil {
		sh.InsuranceAmount = *patch.InsuranceAmount
	}
	sh.UpdatedAt = r.s.now()
	r.s.shipments[id] = sh
	return nil
}

func (r memShipments) Delete(ctx context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.shipments[id]; !ok {
		return domainErrors.ErrNotFound
	}
	for oid, o := range r.s.orders {
		if o.ShipmentID != nil && *o.ShipmentID == id {
			o.ShipmentID = nil
			o.BatchNumber = nil
			r.s.orders[oid] = o
		}
	}
	delete(r.s.shipments, id)
	return nil
}

// unite appends ids missing from base, keeping first-seen order.
func unite(base, ids []int64) []int64 {
	out := slices.Clone(base)
	for _, id := range ids {
		if !slices.Contains(out, id) {
			out = append(out, id)
		}
	}
	return out
}

func sortedUnique(ids []int64) []int64 {
	out := slices.Clone(ids)
	slices.Sort(out)
	return slices.Compact(out)
}

func cloneOrder(o model.Order) model.Order {
	o.Items = slices.Clone(o.Items)
	return o
}

func cloneShipment(sh model.Shipment) model.Shipment {
	sh.OrderIDs = slices.Clone(sh.OrderIDs)
	sh.Parcels = slices.Clone(sh.Parcels)
	sh.History = slices.Clone(sh.History)
	return sh
}

var _ repository.Factory = (*MemoryStore)(nil)
