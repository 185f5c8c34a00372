package repository

import (
	"context"

	"github.com/AliXAbdullah03/nge-brain/internal/domain/model"
)

// CustomerRepository stores the customers orders belong to.
type CustomerRepository interface {
	Create(ctx context.Context, customer *model.Customer) (*model.Customer, error)
	GetByID(ctx context.Context, id int64) (*model.Customer, error)
	// FindByContact matches on phone first, then on email.
	FindByContact(ctx context.Context, phone, email string) (*model.Customer, error)
}
