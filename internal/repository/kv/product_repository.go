package kv

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/iyhunko/hifi-storefront/internal/kvstore"
	"github.com/iyhunko/hifi-storefront/internal/model"
	"github.com/iyhunko/hifi-storefront/internal/repository"
)

// ProductRepository stores the catalog under ProductsKey.
type ProductRepository struct {
	products collection[model.Product]
	orders   *OrderRepository
	store    kvstore.Store
	mu       *sync.Mutex
	clock    func() time.Time
}

var _ repository.ProductRepository = (*ProductRepository)(nil)

// List returns every product in insertion order.
func (r *ProductRepository) List(ctx context.Context) ([]model.Product, error) {
	return r.products.load(ctx)
}

// Search returns the products whose name contains query, ignoring case.
// An empty query matches everything.
func (r *ProductRepository) Search(ctx context.Context, query string) ([]model.Product, error) {
	products, err := r.products.load(ctx)
	if err != nil {
		return nil, err
	}
	if query == "" {
		return products, nil
	}

	needle := strings.ToLower(query)
	matched := make([]model.Product, 0, len(products))
	for _, p := range products {
		if strings.Contains(strings.ToLower(p.Name), needle) {
			matched = append(matched, p)
		}
	}
	return matched, nil
}

// FindByID returns the product with the given id or repository.ErrNotFound.
func (r *ProductRepository) FindByID(ctx context.Context, id int64) (*model.Product, error) {
	products, err := r.products.load(ctx)
	if err != nil {
		return nil, err
	}
	for _, p := range products {
		if p.ID == id {
			return &p, nil
		}
	}
	return nil, fmt.Errorf("product %d: %w", id, repository.ErrNotFound)
}

// Add validates candidate, assigns it an id and appends it to the catalog.
func (r *ProductRepository) Add(ctx context.Context, candidate model.ProductCandidate) (*model.Product, error) {
	if err := candidate.Validate(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	products, err := r.products.load(ctx)
	if err != nil {
		return nil, err
	}
	for _, p := range products {
		if strings.EqualFold(p.Name, candidate.Name) {
			return nil, fmt.Errorf("%w: %q", repository.ErrDuplicateName, candidate.Name)
		}
	}

	id := r.clock().UnixMilli()
	for _, p := range products {
		if p.ID >= id {
			id = p.ID + 1
		}
	}

	product := candidate.Build(id)
	if err := r.products.save(ctx, append(products, product)); err != nil {
		return nil, err
	}
	return &product, nil
}

// Delete removes the product and every order placed for it.
//
// When the store implements kvstore.Batcher both collections are written in
// one batch. Otherwise the products are written first and restored if the
// orders cannot be written.
func (r *ProductRepository) Delete(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	products, err := r.products.load(ctx)
	if err != nil {
		return err
	}
	remaining := slices.DeleteFunc(slices.Clone(products), func(p model.Product) bool {
		return p.ID == id
	})
	if len(remaining) == len(products) {
		return fmt.Errorf("product %d: %w", id, repository.ErrNotFound)
	}

	if batcher, ok := r.store.(kvstore.Batcher); ok {
		return r.deleteBatch(ctx, batcher, id, remaining)
	}

	if err := r.products.save(ctx, remaining); err != nil {
		return err
	}
	if _, err := r.orders.deleteByProductID(ctx, id); err != nil {
		slog.Error("failed to delete orders of removed product, restoring it",
			slog.Int64("product_id", id), slog.Any("err", err))
		if restoreErr := r.products.save(ctx, products); restoreErr != nil {
			slog.Error("failed to restore product", slog.Int64("product_id", id), slog.Any("err", restoreErr))
			return errors.Join(err, fmt.Errorf("failed to restore product %d: %w", id, restoreErr))
		}
		return err
	}
	return nil
}

func (r *ProductRepository) deleteBatch(ctx context.Context, batcher kvstore.Batcher, id int64, remaining []model.Product) error {
	orders, err := r.orders.orders.load(ctx)
	if err != nil {
		return err
	}
	kept := ordersWithout(orders, id)

	productsOp, err := r.products.setOp(remaining)
	if err != nil {
		return err
	}
	ops := []kvstore.Op{productsOp}
	if len(kept) != len(orders) {
		ordersOp, err := r.orders.orders.setOp(kept)
		if err != nil {
			return err
		}
		ops = append(ops, ordersOp)
	}

	if err := batcher.Apply(ctx, ops...); err != nil {
		return &repository.StorageError{Op: "write", Key: ProductsKey + "," + OrdersKey, Err: err}
	}
	return nil
}
