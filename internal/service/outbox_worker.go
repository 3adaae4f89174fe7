package service

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/iyhunko/hifi-storefront/internal/metrics"
	"github.com/iyhunko/hifi-storefront/internal/model"
	"github.com/iyhunko/hifi-storefront/internal/repository"
	"github.com/iyhunko/hifi-storefront/internal/sqs"
)

const outboxBatchSize = 100

// Publisher sends catalog messages to the queue.
type Publisher interface {
	Publish(ctx context.Context, msg sqs.CatalogMessage) error
}

// OutboxWorker polls the outbox and publishes pending events
type OutboxWorker struct {
	eventRepo repository.EventRepository
	publisher Publisher
	interval  time.Duration
	stopChan  chan struct{}
	stopOnce  sync.Once
}

// NewOutboxWorker creates a new OutboxWorker
func NewOutboxWorker(eventRepo repository.EventRepository, publisher Publisher, interval time.Duration) *OutboxWorker {
	return &OutboxWorker{
		eventRepo: eventRepo,
		publisher: publisher,
		interval:  interval,
		stopChan:  make(chan struct{}),
	}
}

// Start processes the outbox every interval until ctx is done or Stop is called.
func (w *OutboxWorker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	slog.Info("Outbox worker started", slog.Duration("interval", w.interval))

	for {
		select {
		case <-ctx.Done():
			slog.Info("Outbox worker stopped by context")
			return
		case <-w.stopChan:
			slog.Info("Outbox worker stopped")
			return
		case <-ticker.C:
			w.ProcessEvents(ctx)
		}
	}
}

// Stop stops the outbox worker. It is safe to call more than once.
func (w *OutboxWorker) Stop() {
	w.stopOnce.Do(func() {
		close(w.stopChan)
	})
}

// ProcessEvents publishes one batch of pending events. Published events are
// removed from the outbox, events that could not be published are marked failed.
func (w *OutboxWorker) ProcessEvents(ctx context.Context) {
	events, err := w.eventRepo.ListPending(ctx, outboxBatchSize)
	if err != nil {
		slog.Error("Failed to retrieve pending events", slog.Any("err", err))
		return
	}

	if len(events) == 0 {
		return
	}

	slog.Info("Processing pending events", slog.Int("count", len(events)))

	for _, event := range events {
		if err := w.publisher.Publish(ctx, toMessage(event)); err != nil {
			metrics.EventsPublished.WithLabelValues("failed").Inc()
			slog.Error("Failed to process event",
				slog.String("event_id", event.ID.String()),
				slog.String("event_type", event.EventType),
				slog.Any("err", err))

			if updateErr := w.eventRepo.UpdateStatus(ctx, event.ID, model.EventStatusFailed); updateErr != nil {
				slog.Error("Failed to update event status to failed",
					slog.String("event_id", event.ID.String()),
					slog.Any("err", updateErr))
			}
			continue
		}

		metrics.EventsPublished.WithLabelValues("published").Inc()
		if deleteErr := w.eventRepo.DeleteByID(ctx, event.ID); deleteErr != nil {
			slog.Error("Failed to remove published event",
				slog.String("event_id", event.ID.String()),
				slog.Any("err", deleteErr))
			continue
		}
		slog.Info("Event processed successfully",
			slog.String("event_id", event.ID.String()),
			slog.String("event_type", event.EventType))
	}
}

func toMessage(event model.Event) sqs.CatalogMessage {
	return sqs.CatalogMessage{
		EventID:    event.ID.String(),
		Type:       event.EventType,
		Data:       event.EventData,
		OccurredAt: event.CreatedAt,
	}
}
