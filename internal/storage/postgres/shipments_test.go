package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	pgxmockv3 "github.com/pashagolub/pgxmock/v3"
	"github.com/shopspring/decimal"

	domainErrors "github.com/AliXAbdullah03/nge-brain/internal/domain/errors"
	"github.com/AliXAbdullah03/nge-brain/internal/domain/model"
)

var shipmentRowColumns = []string{
	"id", "tracking_id", "batch_number", "departure_date", "estimated_delivery_date", "current_status",
	"origin_branch_id", "destination_branch_id", "shipper_id", "receiver_id", "order_ids", "order_id", "parcels",
	"history", "total_weight", "weight_unit", "shipping_cost", "insurance_amount", "created_by", "created_at",
	"updated_at",
}

func shipmentRows(now time.Time, ids ...int64) *pgxmockv3.Rows {
	rows := pgxmockv3.NewRows(shipmentRowColumns)
	for _, id := range ids {
		legacy := int64(99)
		rows.AddRow(id, "NGE10000001", "BCH-2024-001", now, nil, "In Transit",
			nil, nil, nil, nil, []int64{1, 2}, &legacy, []model.Parcel{},
			[]model.HistoryEntry{{Status: model.ShipmentStatusProcessing, Location: "Origin Facility", Timestamp: now}},
			decimal.NewFromInt(3), "kg", decimal.Zero, decimal.Zero, nil, now, now)
	}
	return rows
}

func TestShipmentRepositoryCreate(t *testing.T) {
	storage, mock := newMockStorage(t)
	defer mock.Close()
	repo := &shipmentRepository{storage: storage}
	now := time.Now()

	any17 := make([]any, 17)
	for i := range any17 {
		any17[i] = pgxmockv3.AnyArg()
	}

	mock.ExpectQuery("INSERT INTO shipments").WithArgs(any17...).WillReturnRows(
		pgxmockv3.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(int64(4), now, now))
	created, err := repo.Create(context.Background(), &model.Shipment{
		TrackingID:    "NGE10000001",
		BatchNumber:   "BCH-2024-001",
		DepartureDate: now,
		CurrentStatus: model.ShipmentStatusProcessing,
	})
	if err != nil || created.ID != 4 {
		t.Fatalf("unexpected result: %+v err=%v", created, err)
	}
	if created.WeightUnit != "kg" || created.OrderIDs == nil || created.Parcels == nil || created.History == nil {
		t.Fatalf("defaults not applied: %+v", created)
	}

	mock.ExpectQuery("INSERT INTO shipments").WithArgs(any17...).WillReturnError(errors.New("boom"))
	if _, err := repo.Create(context.Background(), &model.Shipment{}); err == nil {
		t.Fatal("expected error")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations not met: %v", err)
	}
}

func TestShipmentRepositoryReads(t *testing.T) {
	storage, mock := newMockStorage(t)
	defer mock.Close()
	repo := &shipmentRepository{storage: storage}
	now := time.Now()

	mock.ExpectQuery("FROM shipments WHERE id=").WithArgs(int64(4)).WillReturnRows(shipmentRows(now, 4))
	s, err := repo.GetByID(context.Background(), 4)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.CurrentStatus != model.ShipmentStatusInTransit || len(s.OrderIDs) != 2 || s.LegacyOrderID == nil || len(s.History) != 1 {
		t.Fatalf("unexpected shipment: %+v", s)
	}

	mock.ExpectQuery("FROM shipments WHERE id=").WithArgs(int64(5)).WillReturnError(pgx.ErrNoRows)
	if _, err := repo.GetByID(context.Background(), 5); !errors.Is(err, domainErrors.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	mock.ExpectQuery("FROM shipments WHERE id = ANY").WithArgs([]int64{4, 6}).WillReturnRows(shipmentRows(now, 4, 6))
	if list, err := repo.GetByIDs(context.Background(), []int64{4, 6}); err != nil || len(list) != 2 {
		t.Fatalf("unexpected result: %v err=%v", list, err)
	}

	mock.ExpectQuery("FROM shipments WHERE tracking_id=").WithArgs("NGE10000001").WillReturnRows(shipmentRows(now, 4))
	if _, err := repo.GetByTrackingID(context.Background(), "NGE10000001"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	mock.ExpectQuery("FROM shipments WHERE batch_number=").WithArgs("BCH-2024-001").WillReturnRows(shipmentRows(now, 4))
	if list, err := repo.ListByBatch(context.Background(), "BCH-2024-001"); err != nil || len(list) != 1 {
		t.Fatalf("unexpected result: %v err=%v", list, err)
	}

	from := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 0, 1)
	mock.ExpectQuery("WHERE departure_date >= ").WithArgs(from, to).WillReturnRows(shipmentRows(now, 4, 6))
	if list, err := repo.FindByDepartureRange(context.Background(), from, to); err != nil || len(list) != 2 {
		t.Fatalf("unexpected result: %v err=%v", list, err)
	}

	mock.ExpectQuery("WHERE departure_date >= ").WithArgs(from, to).WillReturnError(errors.New("query"))
	if _, err := repo.FindByDepartureRange(context.Background(), from, to); err == nil {
		t.Fatal("expected error")
	}

	mock.ExpectQuery("SELECT EXISTS").WithArgs("NGE10000001").WillReturnRows(pgxmockv3.NewRows([]string{"exists"}).AddRow(false))
	if exists, err := repo.TrackingIDExists(context.Background(), "NGE10000001"); err != nil || exists {
		t.Fatalf("unexpected result: %v err=%v", exists, err)
	}

	mock.ExpectQuery("SELECT COALESCE").WithArgs("BCH-2024-").WillReturnRows(pgxmockv3.NewRows([]string{"max"}).AddRow(7))
	if seq, err := repo.MaxBatchSequence(context.Background(), "BCH-2024-"); err != nil || seq != 7 {
		t.Fatalf("unexpected result: %d err=%v", seq, err)
	}

	mock.ExpectQuery("SELECT COALESCE").WithArgs("BCH-2025-").WillReturnError(errors.New("boom"))
	if _, err := repo.MaxBatchSequence(context.Background(), "BCH-2025-"); err == nil {
		t.Fatal("expected error")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations not met: %v", err)
	}
}

func TestShipmentRepositoryListDuplicateDays(t *testing.T) {
	storage, mock := newMockStorage(t)
	defer mock.Close()
	repo := &shipmentRepository{storage: storage}

	loc, err := time.LoadLocation("Asia/Dubai")
	if err != nil {
		t.Skipf("timezone data unavailable: %v", err)
	}

	mock.ExpectQuery("HAVING COUNT").WithArgs("Asia/Dubai").WillReturnRows(
		pgxmockv3.NewRows([]string{"day"}).AddRow(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)))
	days, err := repo.ListDuplicateDays(context.Background(), loc)
	if err != nil || len(days) != 1 {
		t.Fatalf("unexpected result: %v err=%v", days, err)
	}
	if !days[0].Equal(time.Date(2024, 3, 1, 0, 0, 0, 0, loc)) {
		t.Fatalf("day must start at local midnight, got %v", days[0])
	}

	mock.ExpectQuery("HAVING COUNT").WithArgs("Asia/Dubai").WillReturnError(errors.New("boom"))
	if _, err := repo.ListDuplicateDays(context.Background(), loc); err == nil {
		t.Fatal("expected error")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations not met: %v", err)
	}
}

func TestShipmentRepositoryWrites(t *testing.T) {
	storage, mock := newMockStorage(t)
	defer mock.Close()
	repo := &shipmentRepository{storage: storage}

	mock.ExpectExec("UPDATE shipments SET order_ids = ARRAY").WithArgs(int64(4), []int64{7}).WillReturnResult(pgxmockv3.NewResult("UPDATE", 1))
	if err := repo.AddOrders(context.Background(), 4, []int64{7}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	mock.ExpectExec("UPDATE shipments SET order_ids = ARRAY").WithArgs(int64(5), []int64{7}).WillReturnResult(pgxmockv3.NewResult("UPDATE", 0))
	if err := repo.AddOrders(context.Background(), 5, []int64{7}); !errors.Is(err, domainErrors.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	mock.ExpectExec("UPDATE shipments SET current_status=").WithArgs("Delivered", pgxmockv3.AnyArg(), int64(4)).WillReturnResult(pgxmockv3.NewResult("UPDATE", 1))
	if err := repo.UpdateStatus(context.Background(), 4, model.ShipmentStatusDelivered, model.HistoryEntry{Status: model.ShipmentStatusDelivered, Location: "N/A"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	eta := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
	cost := decimal.NewFromInt(120)
	mock.ExpectExec(`UPDATE shipments SET estimated_delivery_date=\$1, shipping_cost=\$2, updated_at=NOW\(\) WHERE id=\$3`).
		WithArgs(eta, cost, int64(4)).WillReturnResult(pgxmockv3.NewResult("UPDATE", 1))
	if err := repo.Update(context.Background(), 4, model.ShipmentPatch{EstimatedDeliveryDate: &eta, ShippingCost: &cost}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := repo.Update(context.Background(), 4, model.ShipmentPatch{}); err != nil {
		t.Fatalf("empty patch must be a no-op, got %v", err)
	}

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE orders SET shipment_id=NULL").WithArgs(int64(4)).WillReturnResult(pgxmockv3.NewResult("UPDATE", 2))
	mock.ExpectExec("DELETE FROM shipments WHERE id=").WithArgs(int64(4)).WillReturnResult(pgxmockv3.NewResult("DELETE", 1))
	mock.ExpectCommit()
	if err := repo.Delete(context.Background(), 4); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE orders SET shipment_id=NULL").WithArgs(int64(8)).WillReturnResult(pgxmockv3.NewResult("UPDATE", 0))
	mock.ExpectExec("DELETE FROM shipments WHERE id=").WithArgs(int64(8)).WillReturnResult(pgxmockv3.NewResult("DELETE", 0))
	mock.ExpectRollback()
	if err := repo.Delete(context.Background(), 8); !errors.Is(err, domainErrors.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations not met: %v", err)
	}
}

func TestShipmentRepositoryMergeInto(t *testing.T) {
	storage, mock := newMockStorage(t)
	defer mock.Close()
	repo := &shipmentRepository{storage: storage}
	canonical := &model.Shipment{ID: 1, BatchNumber: "BCH-2024-001"}

	legacy := int64(30)
	mock.ExpectBegin()
	mock.ExpectQuery("SELECT order_ids, order_id FROM shipments").WithArgs([]int64{2, 3}).WillReturnRows(
		pgxmockv3.NewRows([]string{"order_ids", "order_id"}).
			AddRow([]int64{10, 11}, nil).
			AddRow([]int64{12}, &legacy))
	mock.ExpectExec("UPDATE shipments SET order_ids = ARRAY").WithArgs(int64(1), []int64{10, 11, 12, 30}).WillReturnResult(pgxmockv3.NewResult("UPDATE", 1))
	mock.ExpectExec("UPDATE orders SET shipment_id=").WithArgs(int64(1), "BCH-2024-001", []int64{2, 3}, []int64{10, 11, 12, 30}).WillReturnResult(pgxmockv3.NewResult("UPDATE", 4))
	mock.ExpectExec("DELETE FROM shipments WHERE id = ANY").WithArgs([]int64{2, 3}).WillReturnResult(pgxmockv3.NewResult("DELETE", 2))
	mock.ExpectCommit()
	if err := repo.MergeInto(context.Background(), canonical, []int64{2, 3}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := repo.MergeInto(context.Background(), canonical, nil); err != nil {
		t.Fatalf("no duplicates must be a no-op, got %v", err)
	}

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT order_ids, order_id FROM shipments").WithArgs([]int64{2}).WillReturnRows(
		pgxmockv3.NewRows([]string{"order_ids", "order_id"}).AddRow([]int64{10}, nil))
	mock.ExpectExec("UPDATE shipments SET order_ids = ARRAY").WithArgs(int64(1), []int64{10}).WillReturnResult(pgxmockv3.NewResult("UPDATE", 1))
	mock.ExpectExec("UPDATE orders SET shipment_id=").WithArgs(int64(1), "BCH-2024-001", []int64{2}, []int64{10}).WillReturnError(errors.New("repoint"))
	mock.ExpectRollback()
	if err := repo.MergeInto(context.Background(), canonical, []int64{2}); err == nil {
		t.Fatal("expected error")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations not met: %v", err)
	}
}

func TestShipmentRepositoryMergeRowsError(t *testing.T) {
	tx := &rowsErrorTx{rows: &errorRows{err: errors.New("rows err")}}
	storage := &Storage{pool: &rowsErrorTxPool{tx: tx}}
	repo := &shipmentRepository{storage: storage}

	err := repo.MergeInto(context.Background(), &model.Shipment{ID: 1}, []int64{2})
	if err == nil || err.Error() != "rows err" {
		t.Fatalf("expected rows err, got %v", err)
	}
}
