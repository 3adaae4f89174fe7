package sqs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"github.com/iyhunko/hifi-storefront/internal/model"
)

// ErrUnknownEventType is returned for messages whose type is not a catalog event.
var ErrUnknownEventType = errors.New("unknown catalog event type")

// ConsumerAPI defines the interface for SQS operations used by Consumer.
type ConsumerAPI interface {
	ReceiveMessage(ctx context.Context, params *sqs.ReceiveMessageInput, optFns ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error)
	DeleteMessage(ctx context.Context, params *sqs.DeleteMessageInput, optFns ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error)
}

// Notification is a catalog event rendered for the people watching the store.
type Notification struct {
	EventID    string
	Type       string
	Summary    string
	OccurredAt time.Time
}

// NotifyFunc delivers a notification. A message whose notification fails stays
// on the queue and is received again after its visibility timeout.
type NotifyFunc func(ctx context.Context, n Notification) error

// LogNotification writes the notification to the default logger.
func LogNotification(_ context.Context, n Notification) error {
	slog.Info("Catalog notification",
		slog.String("event_id", n.EventID),
		slog.String("type", n.Type),
		slog.String("summary", n.Summary),
		slog.Time("occurred_at", n.OccurredAt),
	)
	return nil
}

// Consumer receives catalog events from SQS and turns them into notifications.
type Consumer struct {
	client   ConsumerAPI
	queueURL string
	notify   NotifyFunc
}

// NewConsumer creates a Consumer. A nil notify logs every notification.
func NewConsumer(client ConsumerAPI, queueURL string, notify NotifyFunc) *Consumer {
	if notify == nil {
		notify = LogNotification
	}
	return &Consumer{
		client:   client,
		queueURL: queueURL,
		notify:   notify,
	}
}

// Start begins consuming messages from the SQS queue until the context is cancelled.
func (c *Consumer) Start(ctx context.Context) error {
	slog.Info("Starting SQS consumer", slog.String("queueURL", c.queueURL))

	for {
		select {
		case <-ctx.Done():
			slog.Info("Stopping SQS consumer")
			return ctx.Err()
		default:
			if err := c.receiveMessages(ctx); err != nil {
				slog.Error("Error receiving messages", slog.Any("err", err))
			}
		}
	}
}

func (c *Consumer) receiveMessages(ctx context.Context) error {
	result, err := c.client.ReceiveMessage(ctx, &sqs.ReceiveMessageInput{
		QueueUrl:            aws.String(c.queueURL),
		MaxNumberOfMessages: 10,
		WaitTimeSeconds:     20,
		MessageAttributeNames: []string{
			eventTypeAttribute,
		},
	})
	if err != nil {
		return fmt.Errorf("failed to receive messages: %w", err)
	}

	for _, message := range result.Messages {
		if err := c.handle(ctx, message); err != nil {
			slog.Error("Error handling catalog event",
				slog.String("message_id", aws.ToString(message.MessageId)),
				slog.Any("err", err),
			)
			continue
		}

		if err := c.deleteMessage(ctx, message); err != nil {
			slog.Error("Error deleting message", slog.Any("err", err))
		}
	}

	return nil
}

func (c *Consumer) handle(ctx context.Context, message types.Message) error {
	if message.Body == nil {
		return fmt.Errorf("message body is nil")
	}

	var msg CatalogMessage
	if err := json.Unmarshal([]byte(*message.Body), &msg); err != nil {
		return fmt.Errorf("failed to unmarshal message: %w", err)
	}

	n, err := describe(msg)
	if err != nil {
		return err
	}
	if err := c.notify(ctx, n); err != nil {
		return fmt.Errorf("failed to notify about event %s: %w", msg.EventID, err)
	}
	return nil
}

// catalogPayload covers the product and order payloads written by the catalog service.
type catalogPayload struct {
	ID          json.RawMessage `json:"id"`
	Name        string          `json:"name"`
	ProductID   int64           `json:"productId"`
	ProductName string          `json:"productName"`
	Price       model.Price     `json:"price"`
}

func describe(msg CatalogMessage) (Notification, error) {
	var p catalogPayload
	if len(msg.Data) > 0 {
		if err := json.Unmarshal(msg.Data, &p); err != nil {
			return Notification{}, fmt.Errorf("failed to decode %s payload: %w", msg.Type, err)
		}
	}
	id := string(p.ID)
	var unquoted string
	if json.Unmarshal(p.ID, &unquoted) == nil {
		id = unquoted
	}

	var summary string
	switch msg.Type {
	case model.EventProductCreated:
		summary = fmt.Sprintf("product %q added at %s", p.Name, p.Price)
	case model.EventProductDeleted:
		summary = fmt.Sprintf("product %s removed together with its orders", id)
	case model.EventOrderCreated:
		summary = fmt.Sprintf("order %s placed for %q at %s", id, p.ProductName, p.Price)
	case model.EventOrderDeleted:
		summary = fmt.Sprintf("order %s cancelled", id)
	case "":
		return Notification{}, fmt.Errorf("event %s has no type", msg.EventID)
	default:
		return Notification{}, fmt.Errorf("%w: %q", ErrUnknownEventType, msg.Type)
	}

	return Notification{
		EventID:    msg.EventID,
		Type:       msg.Type,
		Summary:    summary,
		OccurredAt: msg.OccurredAt,
	}, nil
}

func (c *Consumer) deleteMessage(ctx context.Context, message types.Message) error {
	_, err := c.client.DeleteMessage(ctx, &sqs.DeleteMessageInput{
		QueueUrl:      aws.String(c.queueURL),
		ReceiptHandle: message.ReceiptHandle,
	})
	if err != nil {
		return fmt.Errorf("failed to delete message: %w", err)
	}
	return nil
}
