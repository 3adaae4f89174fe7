package repository

import (
	"log/slog"

	"github.com/iyhunko/hifi-storefront/internal/model"
)

// Query describes a page of the product catalog.
type Query struct {
	Search string

	Limit int

	Paginator *Paginator
}

func NewQuery() *Query {
	return &Query{}
}

// WithSearch filters the page by a case-insensitive name fragment.
func (q *Query) WithSearch(search string) *Query {
	q.Search = search
	return q
}

func (q *Query) ApplyPagination(limit int32, token string) error {
	queryLimit := DefaultPaginationLimit
	if limit > 0 {
		queryLimit = min(maxPaginationLimit, int(limit))
	}
	q.Limit = queryLimit

	if token == "" {
		return nil
	}

	paginator, err := DecodePageToken(token)
	if err != nil {
		slog.Error("failed to decode page token", slog.Any("err", err), slog.String("token", token))
		return ErrInvalidPaginationToken
	}
	q.Paginator = paginator
	return nil
}

// Paginate cuts one page out of products. next is nil on the last page.
func Paginate(products []model.Product, q Query) (page []model.Product, next *Paginator) {
	start := 0
	if q.Paginator != nil {
		start = len(products)
		for i, p := range products {
			if p.ID == q.Paginator.LastID {
				start = i + 1
				break
			}
			if p.ID > q.Paginator.LastID {
				start = i
				break
			}
		}
	}

	limit := q.Limit
	if limit <= 0 {
		limit = DefaultPaginationLimit
	}
	end := min(len(products), start+limit)

	page = products[start:end]
	if end < len(products) && len(page) > 0 {
		next = &Paginator{LastID: page[len(page)-1].ID}
	}
	return page, next
}
