package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/iyhunko/hifi-storefront/internal/model"
)

var (
	// ErrNotFound is returned when no record matches the given id.
	ErrNotFound = errors.New("resource not found")

	// ErrDuplicateName is returned when a product with the same name (ignoring case) exists.
	ErrDuplicateName = errors.New("product already exists")

	// ErrCorruptData is wrapped by StorageError when a stored collection cannot be decoded.
	ErrCorruptData = errors.New("stored data is malformed")
)

// ProductRepository manages the product catalog.
type ProductRepository interface {
	List(ctx context.Context) ([]model.Product, error)
	Search(ctx context.Context, query string) ([]model.Product, error)
	FindByID(ctx context.Context, id int64) (*model.Product, error)
	Add(ctx context.Context, candidate model.ProductCandidate) (*model.Product, error)
	// Delete removes the product and every order placed for it.
	Delete(ctx context.Context, id int64) error
}

// OrderRepository manages orders.
type OrderRepository interface {
	List(ctx context.Context) ([]model.Order, error)
	Add(ctx context.Context, product model.Product) (*model.Order, error)
	// AddForProduct looks the product up and places the order in one step.
	AddForProduct(ctx context.Context, productID int64) (*model.Order, error)
	Delete(ctx context.Context, id string) error
	DeleteByProductID(ctx context.Context, productID int64) (int, error)
}

// EventRepository manages the outbox of catalog events.
type EventRepository interface {
	Create(ctx context.Context, event *model.Event) (*model.Event, error)
	ListPending(ctx context.Context, limit int) ([]model.Event, error)
	DeleteByID(ctx context.Context, id uuid.UUID) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status model.EventStatus) error
}

// StorageError reports a failed read or write of a stored collection.
type StorageError struct {
	Op  string
	Key string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s %q: %v", e.Op, e.Key, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}
