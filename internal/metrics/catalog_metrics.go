package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ProductsCreated counts products added to the catalog.
	ProductsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "storefront_products_created_total",
		Help: "The total number of products created",
	})

	// ProductsDeleted counts products removed from the catalog.
	ProductsDeleted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "storefront_products_deleted_total",
		Help: "The total number of products deleted",
	})

	// OrdersCreated counts placed orders.
	OrdersCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "storefront_orders_created_total",
		Help: "The total number of orders placed",
	})

	// OrdersDeleted counts cancelled orders.
	OrdersDeleted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "storefront_orders_deleted_total",
		Help: "The total number of orders deleted",
	})

	// Logins counts login attempts by result.
	Logins = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "storefront_logins_total",
		Help: "The total number of login attempts",
	}, []string{"result"})

	// EventsPublished counts outbox events by publishing result.
	EventsPublished = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "storefront_events_published_total",
		Help: "The total number of outbox events handed to the queue",
	}, []string{"result"})
)
