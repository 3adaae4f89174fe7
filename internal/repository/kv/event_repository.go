package kv

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/iyhunko/hifi-storefront/internal/model"
	"github.com/iyhunko/hifi-storefront/internal/repository"
)

// EventRepository keeps the outbox of catalog events under EventsKey.
type EventRepository struct {
	events      collection[model.Event]
	mu          *sync.Mutex
	clock       func() time.Time
	failedLimit int
}

var _ repository.EventRepository = (*EventRepository)(nil)

// Create appends event to the outbox, assigning its id and creation time.
func (r *EventRepository) Create(ctx context.Context, event *model.Event) (*model.Event, error) {
	event.InitMeta()
	event.CreatedAt = r.clock()

	r.mu.Lock()
	defer r.mu.Unlock()

	events, err := r.events.load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load events: %w", err)
	}
	if err := r.events.save(ctx, append(events, *event)); err != nil {
		return nil, fmt.Errorf("failed to create event: %w", err)
	}
	return event, nil
}

// ListPending returns up to limit pending events, oldest first.
func (r *EventRepository) ListPending(ctx context.Context, limit int) ([]model.Event, error) {
	events, err := r.events.load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending events: %w", err)
	}
	if limit <= 0 {
		return []model.Event{}, nil
	}

	pending := make([]model.Event, 0, min(limit, len(events)))
	for _, e := range events {
		if len(pending) >= limit {
			break
		}
		if e.Status == model.EventStatusPending {
			pending = append(pending, e)
		}
	}
	return pending, nil
}

// DeleteByID removes the event from the outbox.
func (r *EventRepository) DeleteByID(ctx context.Context, id uuid.UUID) error {
	return r.update(ctx, id, func(events []model.Event, i int) []model.Event {
		return append(events[:i], events[i+1:]...)
	})
}

// UpdateStatus sets the status of the event and stamps its processing time.
// Only the newest failed events are kept, up to the configured limit.
func (r *EventRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status model.EventStatus) error {
	return r.update(ctx, id, func(events []model.Event, i int) []model.Event {
		processedAt := r.clock()
		events[i].Status = status
		events[i].ProcessedAt = &processedAt
		if status != model.EventStatusFailed {
			return events
		}
		return dropOldestFailed(events, r.failedLimit)
	})
}

func dropOldestFailed(events []model.Event, limit int) []model.Event {
	failed := 0
	for _, e := range events {
		if e.Status == model.EventStatusFailed {
			failed++
		}
	}
	excess := failed - limit
	if excess <= 0 {
		return events
	}
	return slices.DeleteFunc(events, func(e model.Event) bool {
		if e.Status == model.EventStatusFailed && excess > 0 {
			excess--
			return true
		}
		return false
	})
}

func (r *EventRepository) update(ctx context.Context, id uuid.UUID, apply func([]model.Event, int) []model.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	events, err := r.events.load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load events: %w", err)
	}
	for i, e := range events {
		if e.ID == id {
			if err := r.events.save(ctx, apply(events, i)); err != nil {
				return fmt.Errorf("failed to update event %s: %w", id, err)
			}
			return nil
		}
	}
	return fmt.Errorf("event %s: %w", id, repository.ErrNotFound)
}
