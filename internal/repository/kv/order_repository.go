package kv

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"sync"
	"time"

	"github.com/iyhunko/hifi-storefront/internal/model"
	"github.com/iyhunko/hifi-storefront/internal/repository"
)

// OrderRepository stores orders under OrdersKey.
type OrderRepository struct {
	orders   collection[model.Order]
	products collection[model.Product]
	mu       *sync.Mutex
	clock    func() time.Time
}

var _ repository.OrderRepository = (*OrderRepository)(nil)

// List returns every order in the order they were placed.
func (r *OrderRepository) List(ctx context.Context) ([]model.Order, error) {
	return r.orders.load(ctx)
}

// Add places an order for product. The product is not looked up.
func (r *OrderRepository) Add(ctx context.Context, product model.Product) (*model.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.add(ctx, product)
}

// AddForProduct places an order for the stored product with the given id.
// The lookup and the write happen under one lock, so a concurrent product
// delete either runs first and yields repository.ErrNotFound, or runs after
// and removes the new order with the rest.
func (r *OrderRepository) AddForProduct(ctx context.Context, productID int64) (*model.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	products, err := r.products.load(ctx)
	if err != nil {
		return nil, err
	}
	i := slices.IndexFunc(products, func(p model.Product) bool {
		return p.ID == productID
	})
	if i < 0 {
		return nil, fmt.Errorf("product %d: %w", productID, repository.ErrNotFound)
	}
	return r.add(ctx, products[i])
}

// add expects the caller to hold r.mu.
func (r *OrderRepository) add(ctx context.Context, product model.Product) (*model.Order, error) {
	orders, err := r.orders.load(ctx)
	if err != nil {
		return nil, err
	}

	now := r.clock()
	id := now.UnixMilli()
	for _, o := range orders {
		if n, err := strconv.ParseInt(o.ID, 10, 64); err == nil && n >= id {
			id = n + 1
		}
	}

	order := model.NewOrder(strconv.FormatInt(id, 10), product, now)
	if err := r.orders.save(ctx, append(orders, order)); err != nil {
		return nil, err
	}
	return &order, nil
}

// Delete removes the order with the given id.
func (r *OrderRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	orders, err := r.orders.load(ctx)
	if err != nil {
		return err
	}
	kept := slices.DeleteFunc(slices.Clone(orders), func(o model.Order) bool {
		return o.ID == id
	})
	if len(kept) == len(orders) {
		return fmt.Errorf("order %s: %w", id, repository.ErrNotFound)
	}
	return r.orders.save(ctx, kept)
}

// DeleteByProductID removes every order placed for the product and returns
// how many were removed.
func (r *OrderRepository) DeleteByProductID(ctx context.Context, productID int64) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.deleteByProductID(ctx, productID)
}

// deleteByProductID expects the caller to hold r.mu.
func (r *OrderRepository) deleteByProductID(ctx context.Context, productID int64) (int, error) {
	orders, err := r.orders.load(ctx)
	if err != nil {
		return 0, err
	}
	kept := ordersWithout(orders, productID)
	removed := len(orders) - len(kept)
	if removed == 0 {
		return 0, nil
	}
	if err := r.orders.save(ctx, kept); err != nil {
		return 0, err
	}
	return removed, nil
}

func ordersWithout(orders []model.Order, productID int64) []model.Order {
	return slices.DeleteFunc(slices.Clone(orders), func(o model.Order) bool {
		return o.ProductID == productID
	})
}
