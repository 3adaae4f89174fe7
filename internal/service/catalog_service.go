package service

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/iyhunko/hifi-storefront/internal/metrics"
	"github.com/iyhunko/hifi-storefront/internal/model"
	"github.com/iyhunko/hifi-storefront/internal/repository"
)

// CatalogService runs the storefront use cases on top of the repositories.
// When an event repository is set, every change is also recorded in the
// outbox for the OutboxWorker to publish.
type CatalogService struct {
	products repository.ProductRepository
	orders   repository.OrderRepository
	events   repository.EventRepository
}

// NewCatalogService creates a CatalogService. events may be nil.
func NewCatalogService(products repository.ProductRepository, orders repository.OrderRepository, events repository.EventRepository) *CatalogService {
	return &CatalogService{
		products: products,
		orders:   orders,
		events:   events,
	}
}

type productEvent struct {
	ID       int64       `json:"id"`
	Name     string      `json:"name,omitempty"`
	Price    model.Price `json:"price,omitempty"`
	ImageURI string      `json:"imageUri,omitempty"`
}

type orderEvent struct {
	ID          string      `json:"id"`
	ProductID   int64       `json:"productId,omitempty"`
	ProductName string      `json:"productName,omitempty"`
	Price       model.Price `json:"price,omitempty"`
}

func (s *CatalogService) CreateProduct(ctx context.Context, candidate model.ProductCandidate) (*model.Product, error) {
	product, err := s.products.Add(ctx, candidate)
	if err != nil {
		return nil, err
	}

	metrics.ProductsCreated.Inc()
	s.recordEvent(ctx, model.EventProductCreated, productEvent{
		ID:       product.ID,
		Name:     product.Name,
		Price:    product.Price,
		ImageURI: product.ImageURI,
	})

	return product, nil
}

func (s *CatalogService) GetProduct(ctx context.Context, id int64) (*model.Product, error) {
	return s.products.FindByID(ctx, id)
}

// DeleteProduct removes the product together with its orders.
func (s *CatalogService) DeleteProduct(ctx context.Context, id int64) error {
	if err := s.products.Delete(ctx, id); err != nil {
		return err
	}

	metrics.ProductsDeleted.Inc()
	s.recordEvent(ctx, model.EventProductDeleted, productEvent{ID: id})

	return nil
}

// ProductPage is one page of a product listing.
type ProductPage struct {
	Products []model.Product
	// Next is the cursor of the following page, nil on the last one.
	Next     *repository.Paginator
	// Total counts every product matching the search, not just this page.
	Total    int
}

// ListProducts returns one page of the products matching query.
func (s *CatalogService) ListProducts(ctx context.Context, query repository.Query) (*ProductPage, error) {
	products, err := s.products.Search(ctx, query.Search)
	if err != nil {
		return nil, err
	}

	page, next := repository.Paginate(products, query)
	return &ProductPage{
		Products: page,
		Next:     next,
		Total:    len(products),
	}, nil
}

// PlaceOrder orders the product with the given id. repository.ErrNotFound is
// returned when the product does not exist.
func (s *CatalogService) PlaceOrder(ctx context.Context, productID int64) (*model.Order, error) {
	order, err := s.orders.AddForProduct(ctx, productID)
	if err != nil {
		return nil, err
	}

	metrics.OrdersCreated.Inc()
	s.recordEvent(ctx, model.EventOrderCreated, orderEvent{
		ID:          order.ID,
		ProductID:   order.ProductID,
		ProductName: order.ProductName,
		Price:       order.Price,
	})

	return order, nil
}

func (s *CatalogService) ListOrders(ctx context.Context) ([]model.Order, error) {
	return s.orders.List(ctx)
}

func (s *CatalogService) CancelOrder(ctx context.Context, id string) error {
	if err := s.orders.Delete(ctx, id); err != nil {
		return err
	}

	metrics.OrdersDeleted.Inc()
	s.recordEvent(ctx, model.EventOrderDeleted, orderEvent{ID: id})

	return nil
}

// recordEvent puts a change into the outbox. Failures are logged and do not
// fail the request that caused the change.
func (s *CatalogService) recordEvent(ctx context.Context, eventType string, payload any) {
	if s.events == nil {
		return
	}

	data, err := json.Marshal(payload)
	if err != nil {
		slog.Error("Failed to marshal event data", slog.Any("err", err), slog.String("event_type", eventType))
		return
	}

	if _, err := s.events.Create(ctx, &model.Event{EventType: eventType, EventData: data}); err != nil {
		slog.Error("Failed to record event", slog.Any("err", err), slog.String("event_type", eventType))
	}
}
