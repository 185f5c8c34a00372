package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/AliXAbdullah03/nge-brain/internal/domain/model"
)

const shipmentColumns = `id, tracking_id, batch_number, departure_date, estimated_delivery_date, current_status,
       origin_branch_id, destination_branch_id, shipper_id, receiver_id, order_ids, order_id, parcels, history,
       total_weight, weight_unit, shipping_cost, insurance_amount, created_by, created_at, updated_at`

// appendOrderIDs unites order_ids with $2 keeping first-seen order.
const appendOrderIDs = `ARRAY(
            SELECT x FROM unnest(order_ids || $2::bigint[]) WITH ORDINALITY AS t(x, n)
            GROUP BY x ORDER BY MIN(n))`

func (r *shipmentRepository) Create(ctx context.Context, s *model.Shipment) (*model.Shipment, error) {
	const query = `INSERT INTO shipments (tracking_id, batch_number, departure_date, estimated_delivery_date,
                       current_status, origin_branch_id, destination_branch_id, shipper_id, receiver_id, order_ids,
                       parcels, history, total_weight, weight_unit, shipping_cost, insurance_amount, created_by)
                   VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
                   RETURNING id, created_at, updated_at`
	created := *s
	if created.OrderIDs == nil {
		created.OrderIDs = []int64{}
	}
	if created.Parcels == nil {
		created.Parcels = []model.Parcel{}
	}
	if created.History == nil {
		created.History = []model.HistoryEntry{}
	}
	if created.WeightUnit == "" {
		created.WeightUnit = model.DefaultWeightUnit
	}
	err := r.storage.pool.QueryRow(ctx, query,
		created.TrackingID, created.BatchNumber, created.DepartureDate, created.EstimatedDeliveryDate,
		string(created.CurrentStatus), created.OriginBranchID, created.DestinationBranchID, created.ShipperID,
		created.ReceiverID, created.OrderIDs, created.Parcels, created.History, created.TotalWeight,
		created.WeightUnit, created.ShippingCost, created.InsuranceAmount, created.CreatedBy,
	).Scan(&created.ID, &created.CreatedAt, &created.UpdatedAt)
	if err != nil {
		return nil, mapError(err)
	}
	return &created, nil
}

func (r *shipmentRepository) GetByID(ctx context.Context, id int64) (*model.Shipment, error) {
	const query = `SELECT ` + shipmentColumns + ` FROM shipments WHERE id=$1`
	return scanShipment(r.storage.pool.QueryRow(ctx, query, id))
}

func (r *shipmentRepository) GetByIDs(ctx context.Context, ids []int64) ([]model.Shipment, error) {
	const query = `SELECT ` + shipmentColumns + ` FROM shipments WHERE id = ANY($1) ORDER BY id`
	return listShipments(ctx, r.storage.pool, query, ids)
}

func (r *shipmentRepository) GetByTrackingID(ctx context.Context, trackingID string) (*model.Shipment, error) {
	const query = `SELECT ` + shipmentColumns + ` FROM shipments WHERE tracking_id=$1`
	return scanShipment(r.storage.pool.QueryRow(ctx, query, trackingID))
}

func (r *shipmentRepository) ListByBatch(ctx context.Context, batchNumber string) ([]model.Shipment, error) {
	const query = `SELECT ` + shipmentColumns + ` FROM shipments WHERE batch_number=$1 ORDER BY created_at, id`
	return listShipments(ctx, r.storage.pool, query, batchNumber)
}

func (r *shipmentRepository) FindByDepartureRange(ctx context.Context, from, to time.Time) ([]model.Shipment, error) {
	const query = `SELECT ` + shipmentColumns + ` FROM shipments
                   WHERE departure_date >= $1 AND departure_date < $2
                   ORDER BY created_at, id`
	return listShipments(ctx, r.storage.pool, query, from, to)
}

func (r *shipmentRepository) ListDuplicateDays(ctx context.Context, loc *time.Location) ([]time.Time, error) {
	const query = `SELECT (departure_date AT TIME ZONE $1)::date AS day
                   FROM shipments
                   GROUP BY day
                   HAVING COUNT(*) > 1
                   ORDER BY day`
	rows, err := r.storage.pool.Query(ctx, query, loc.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var days []time.Time
	for rows.Next() {
		var day time.Time
		if err := rows.Scan(&day); err != nil {
			return nil, err
		}
		days = append(days, time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, loc))
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return days, nil
}

func (r *shipmentRepository) TrackingIDExists(ctx context.Context, trackingID string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM shipments WHERE tracking_id=$1)`
	var exists bool
	if err := r.storage.pool.QueryRow(ctx, query, trackingID).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func (r *shipmentRepository) MaxBatchSequence(ctx context.Context, prefix string) (int, error) {
	const query = `SELECT COALESCE(MAX(CAST(substr(batch_number, char_length($1) + 1) AS INTEGER)), 0)
                   FROM shipments
                   WHERE batch_number LIKE $1 || '%'
                     AND substr(batch_number, char_length($1) + 1) ~ '^[0-9]+$'`
	var seq int
	if err := r.storage.pool.QueryRow(ctx, query, prefix).Scan(&seq); err != nil {
		return 0, err
	}
	return seq, nil
}

func (r *shipmentRepository) AddOrders(ctx context.Context, id int64, orderIDs []int64) error {
	const query = `UPDATE shipments SET order_ids = ` + appendOrderIDs + `, updated_at=NOW() WHERE id=$1`
	return requireAffected(r.storage.pool.Exec(ctx, query, id, orderIDs))
}

func (r *shipmentRepository) MergeInto(ctx context.Context, canonical *model.Shipment, duplicateIDs []int64) error {
	if len(duplicateIDs) == 0 {
		return nil
	}
	const (
		selectMembers = `SELECT order_ids, order_id FROM shipments WHERE id = ANY($1) ORDER BY created_at, id FOR UPDATE`
		unite         = `UPDATE shipments SET order_ids = ` + appendOrderIDs + `, updated_at=NOW() WHERE id=$1`
		repoint       = `UPDATE orders SET shipment_id=$1, batch_number=$2, updated_at=NOW()
                         WHERE shipment_id = ANY($3) OR id = ANY($4)`
		deleteDups = `DELETE FROM shipments WHERE id = ANY($1)`
	)

	return r.storage.WithinTransaction(ctx, func(tx pgx.Tx) error {
		members, err := collectMembers(ctx, tx, selectMembers, duplicateIDs)
		if err != nil {
			return err
		}
		if err := requireAffected(tx.Exec(ctx, unite, canonical.ID, members)); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, repoint, canonical.ID, canonical.BatchNumber, duplicateIDs, members); err != nil {
			return err
		}
		_, err = tx.Exec(ctx, deleteDups, duplicateIDs)
		return err
	})
}

func collectMembers(ctx context.Context, q querier, query string, ids []int64) ([]int64, error) {
	rows, err := q.Query(ctx, query, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	members := []int64{}
	for rows.Next() {
		var (
			orderIDs []int64
			legacy   *int64
		)
		if err := rows.Scan(&orderIDs, &legacy); err != nil {
			return nil, err
		}
		members = append(members, orderIDs...)
		if legacy != nil {
			members = append(members, *legacy)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return members, nil
}

func (r *shipmentRepository) UpdateStatus(ctx context.Context, id int64, status model.ShipmentStatus, entry model.HistoryEntry) error {
	const query = `UPDATE shipments SET current_status=$1, history = history || $2::jsonb, updated_at=NOW() WHERE id=$3`
	return requireAffected(r.storage.pool.Exec(ctx, query, string(status), []model.HistoryEntry{entry}, id))
}

func (r *shipmentRepository) Update(ctx context.Context, id int64, patch model.ShipmentPatch) error {
	var (
		sets []string
		args []any
	)
	set := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s=$%d", column, len(args)))
	}
	if patch.EstimatedDeliveryDate != nil {
		set("estimated_delivery_date", *patch.EstimatedDeliveryDate)
	}
	if patch.DestinationBranchID != nil {
		set("destination_branch_id", *patch.DestinationBranchID)
	}
	if patch.ReceiverID != nil {
		set("receiver_id", *patch.ReceiverID)
	}
	if patch.Parcels != nil {
		set("parcels", patch.Parcels)
	}
	if patch.TotalWeight != nil {
		set("total_weight", *patch.TotalWeight)
	}
	if patch.ShippingCost != nil {
		set("shipping_cost", *patch.ShippingCost)
	}
	if patch.InsuranceAmount != nil {
		set("insurance_amount", *patch.InsuranceAmount)
	}
	if len(sets) == 0 {
		return nil
	}

	args = append(args, id)
	query := fmt.Sprintf(`UPDATE shipments SET %s, updated_at=NOW() WHERE id=$%d`, strings.Join(sets, ", "), len(args))
	return requireAffected(r.storage.pool.Exec(ctx, query, args...))
}

func (r *shipmentRepository) Delete(ctx context.Context, id int64) error {
	const (
		clearOrders    = `UPDATE orders SET shipment_id=NULL, batch_number=NULL, updated_at=NOW() WHERE shipment_id=$1`
		deleteShipment = `DELETE FROM shipments WHERE id=$1`
	)
	return r.storage.WithinTransaction(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, clearOrders, id); err != nil {
			return err
		}
		return requireAffected(tx.Exec(ctx, deleteShipment, id))
	})
}

func listShipments(ctx context.Context, q querier, query string, args ...any) ([]model.Shipment, error) {
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []model.Shipment
	for rows.Next() {
		s, err := scanShipment(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func scanShipment(row rowScanner) (*model.Shipment, error) {
	var (
		s      model.Shipment
		status string
	)
	err := row.Scan(&s.ID, &s.TrackingID, &s.BatchNumber, &s.DepartureDate, &s.EstimatedDeliveryDate, &status,
		&s.OriginBranchID, &s.DestinationBranchID, &s.ShipperID, &s.ReceiverID, &s.OrderIDs, &s.LegacyOrderID,
		&s.Parcels, &s.History, &s.TotalWeight, &s.WeightUnit, &s.ShippingCost, &s.InsuranceAmount,
		&s.CreatedBy, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, mapError(err)
	}
	s.CurrentStatus = model.ShipmentStatus(status)
	return &s, nil
}
