package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/AliXAbdullah03/nge-brain/internal/domain/model"
)

const orderColumns = `id, order_number, tracking_id, customer_id, branch_id, items, total_amount, currency,
       departure_date, shipment_id, batch_number, status, payment_status, notes, created_by, created_at, updated_at`

func (r *orderRepository) Create(ctx context.Context, o *model.Order) (*model.Order, error) {
	const query = `INSERT INTO orders (order_number, tracking_id, customer_id, branch_id, items, total_amount, currency,
                       departure_date, status, payment_status, notes, created_by)
                   VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
                   RETURNING id, created_at, updated_at`
	created := *o
	if created.Items == nil {
		created.Items = []model.OrderItem{}
	}
	err := r.storage.pool.QueryRow(ctx, query,
		created.OrderNumber, created.TrackingID, created.CustomerID, created.BranchID, created.Items,
		created.TotalAmount, created.Currency, created.DepartureDate, string(created.Status),
		string(created.PaymentStatus), created.Notes, created.CreatedBy,
	).Scan(&created.ID, &created.CreatedAt, &created.UpdatedAt)
	if err != nil {
		return nil, mapError(err)
	}
	return &created, nil
}

func (r *orderRepository) GetByID(ctx context.Context, id int64) (*model.Order, error) {
	const query = `SELECT ` + orderColumns + ` FROM orders WHERE id=$1`
	return scanOrder(r.storage.pool.QueryRow(ctx, query, id))
}

func (r *orderRepository) GetByIDs(ctx context.Context, ids []int64) ([]model.Order, error) {
	const query = `SELECT ` + orderColumns + ` FROM orders WHERE id = ANY($1) ORDER BY id`
	return r.list(ctx, query, ids)
}

func (r *orderRepository) GetByNumber(ctx context.Context, number string) (*model.Order, error) {
	const query = `SELECT ` + orderColumns + ` FROM orders WHERE order_number=$1 OR tracking_id=$1 LIMIT 1`
	return scanOrder(r.storage.pool.QueryRow(ctx, query, number))
}

func (r *orderRepository) NumberExists(ctx context.Context, number string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM orders WHERE order_number=$1 OR tracking_id=$1)`
	var exists bool
	if err := r.storage.pool.QueryRow(ctx, query, number).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func (r *orderRepository) List(ctx context.Context, filter model.OrderFilter) ([]model.Order, error) {
	var (
		conditions []string
		args       []any
	)
	if len(filter.Statuses) > 0 {
		statuses := make([]string, len(filter.Statuses))
		for i, s := range filter.Statuses {
			statuses[i] = string(s)
		}
		args = append(args, statuses)
		conditions = append(conditions, fmt.Sprintf("status = ANY($%d)", len(args)))
	}
	if filter.CustomerID != nil {
		args = append(args, *filter.CustomerID)
		conditions = append(conditions, fmt.Sprintf("customer_id = $%d", len(args)))
	}

	query := `SELECT ` + orderColumns + ` FROM orders`
	if len(conditions) > 0 {
		query += ` WHERE ` + strings.Join(conditions, " AND ")
	}
	query += ` ORDER BY created_at DESC, id DESC`
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	return r.list(ctx, query, args...)
}

func (r *orderRepository) ListUnbatched(ctx context.Context, limit int) ([]model.Order, error) {
	const query = `SELECT ` + orderColumns + ` FROM orders
                   WHERE departure_date IS NOT NULL AND shipment_id IS NULL
                   ORDER BY departure_date, id
                   LIMIT $1`
	return r.list(ctx, query, limit)
}

func (r *orderRepository) UpdateStatus(ctx context.Context, id int64, status model.OrderStatus) error {
	const query = `UPDATE orders SET status=$1, updated_at=NOW() WHERE id=$2`
	return requireAffected(r.storage.pool.Exec(ctx, query, string(status), id))
}

func (r *orderRepository) SetStatusForIDs(ctx context.Context, ids []int64, status model.OrderStatus) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	const query = `UPDATE orders SET status=$1, updated_at=NOW() WHERE id = ANY($2)`
	tag, err := r.storage.pool.Exec(ctx, query, string(status), ids)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *orderRepository) AssignShipment(ctx context.Context, ids []int64, shipmentID int64, batchNumber string) error {
	if len(ids) == 0 {
		return nil
	}
	const query = `UPDATE orders SET shipment_id=$1, batch_number=$2, updated_at=NOW() WHERE id = ANY($3)`
	if _, err := r.storage.pool.Exec(ctx, query, shipmentID, batchNumber, ids); err != nil {
		return mapError(err)
	}
	return nil
}

func (r *orderRepository) list(ctx context.Context, query string, args ...any) ([]model.Order, error) {
	rows, err := r.storage.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []model.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func scanOrder(row rowScanner) (*model.Order, error) {
	var (
		o                     model.Order
		status, paymentStatus string
	)
	err := row.Scan(&o.ID, &o.OrderNumber, &o.TrackingID, &o.CustomerID, &o.BranchID, &o.Items, &o.TotalAmount,
		&o.Currency, &o.DepartureDate, &o.ShipmentID, &o.BatchNumber, &status, &paymentStatus, &o.Notes,
		&o.CreatedBy, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return nil, mapError(err)
	}
	o.Status = model.OrderStatus(status)
	o.PaymentStatus = model.PaymentStatus(paymentStatus)
	return &o, nil
}
