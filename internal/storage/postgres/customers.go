package postgres

import (
	"context"

	"github.com/AliXAbdullah03/nge-brain/internal/domain/model"
)

const customerColumns = `id, first_name, last_name, phone, email, address, city, country, postal_code, status, created_at`

func (r *customerRepository) Create(ctx context.Context, c *model.Customer) (*model.Customer, error) {
	const query = `INSERT INTO customers (first_name, last_name, phone, email, address, city, country, postal_code, status)
                   VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
                   RETURNING id, created_at`
	created := *c
	if created.Status == "" {
		created.Status = "active"
	}
	err := r.storage.pool.QueryRow(ctx, query,
		created.FirstName, created.LastName, created.Phone, created.Email,
		created.Address, created.City, created.Country, created.PostalCode, created.Status,
	).Scan(&created.ID, &created.CreatedAt)
	if err != nil {
		return nil, mapError(err)
	}
	return &created, nil
}

func (r *customerRepository) GetByID(ctx context.Context, id int64) (*model.Customer, error) {
	const query = `SELECT ` + customerColumns + ` FROM customers WHERE id=$1`
	return scanCustomer(r.storage.pool.QueryRow(ctx, query, id))
}

func (r *customerRepository) FindByContact(ctx context.Context, phone, email string) (*model.Customer, error) {
	const query = `SELECT ` + customerColumns + ` FROM customers
                   WHERE ($1 <> '' AND phone=$1) OR ($2 <> '' AND lower(email)=lower($2))
                   ORDER BY (phone=$1) DESC, id
                   LIMIT 1`
	return scanCustomer(r.storage.pool.QueryRow(ctx, query, phone, email))
}

func scanCustomer(row rowScanner) (*model.Customer, error) {
	var c model.Customer
	err := row.Scan(&c.ID, &c.FirstName, &c.LastName, &c.Phone, &c.Email,
		&c.Address, &c.City, &c.Country, &c.PostalCode, &c.Status, &c.CreatedAt)
	if err != nil {
		return nil, mapError(err)
	}
	return &c, nil
}
