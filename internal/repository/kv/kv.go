// Package kv implements the repositories on top of a kvstore.Store. Every
// collection lives under one key as a JSON array and every mutation rewrites
// the whole array.
package kv

import (
	"sync"
	"time"

	"github.com/iyhunko/hifi-storefront/internal/kvstore"
	"github.com/iyhunko/hifi-storefront/internal/model"
)

// Storage keys.
const (
	ProductsKey = "products"
	OrdersKey   = "orders"
	EventsKey   = "outbox"
)

// Option configures the repositories created by New.
type Option func(*options)

// DefaultFailedEventLimit is how many failed events the outbox keeps.
const DefaultFailedEventLimit = 100

type options struct {
	clock       func() time.Time
	lenient     bool
	failedLimit int
}

// WithClock replaces time.Now as the source of ids and order dates.
func WithClock(clock func() time.Time) Option {
	return func(o *options) {
		o.clock = clock
	}
}

// WithLenientDecode makes a collection that cannot be decoded read as empty
// instead of failing with ErrCorruptData.
func WithLenientDecode() Option {
	return func(o *options) {
		o.lenient = true
	}
}

// WithFailedEventLimit caps the failed events kept in the outbox. Older ones
// are dropped when another event fails.
func WithFailedEventLimit(limit int) Option {
	return func(o *options) {
		o.failedLimit = limit
	}
}

// Repositories bundles the repositories that share one store.
//
// Mutations of all collections are serialized by a single lock, so a
// read-modify-write never interleaves with another one in this process.
// Writers in other processes sharing the same store are not coordinated.
type Repositories struct {
	Products *ProductRepository
	Orders   *OrderRepository
	Events   *EventRepository
}

// New creates the product, order and event repositories over store.
func New(store kvstore.Store, opts ...Option) *Repositories {
	o := options{clock: time.Now, failedLimit: DefaultFailedEventLimit}
	for _, opt := range opts {
		opt(&o)
	}

	mu := &sync.Mutex{}
	productColl := newCollection[model.Product](store, ProductsKey, o.lenient)
	orders := &OrderRepository{
		orders:   newCollection[model.Order](store, OrdersKey, o.lenient),
		products: productColl,
		mu:       mu,
		clock:    o.clock,
	}
	products := &ProductRepository{
		products: productColl,
		orders:   orders,
		store:    store,
		mu:       mu,
		clock:    o.clock,
	}
	events := &EventRepository{
		events:      newCollection[model.Event](store, EventsKey, o.lenient),
		mu:          mu,
		clock:       o.clock,
		failedLimit: o.failedLimit,
	}

	return &Repositories{
		Products: products,
		Orders:   orders,
		Events:   events,
	}
}
