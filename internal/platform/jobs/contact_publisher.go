package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"cloud.google.com/go/pubsub"
	"go.uber.org/zap"

	"github.com/floorhouse/site/internal/services"
)

// PubSubContactPublisher publishes contact submissions to a Pub/Sub topic.
type PubSubContactPublisher struct {
	topic   *pubsub.Topic
	marshal func(any) ([]byte, error)
}

// NewPubSubContactPublisher constructs a Pub/Sub backed contact publisher.
func NewPubSubContactPublisher(topic *pubsub.Topic) (*PubSubContactPublisher, error) {
	if topic == nil {
		return nil, errors.New("pubsub contact publisher: topic is required")
	}
	return &PubSubContactPublisher{
		topic:   topic,
		marshal: json.Marshal,
	}, nil
}

// PublishContact enqueues the submission and waits for the server message id.
func (p *PubSubContactPublisher) PublishContact(ctx context.Context, message services.ContactMessage) (string, error) {
	if p == nil || p.topic == nil {
		return "", errors.New("pubsub contact publisher: not initialised")
	}

	data, err := p.marshal(message)
	if err != nil {
		return "", fmt.Errorf("marshal contact message: %w", err)
	}

	attrs := map[string]string{"kind": "contact"}
	setAttr(attrs, "submissionId", message.ID)
	setAttr(attrs, "locale", message.Locale)
	setAttr(attrs, "productSku", message.ProductSKU)

	result := p.topic.Publish(ctx, &pubsub.Message{
		Data:       data,
		Attributes: attrs,
	})

	id, err := result.Get(ctx)
	if err != nil {
		return "", fmt.Errorf("publish contact message: %w", err)
	}
	return id, nil
}

// LogContactPublisher records submissions in the log only. Used when no
// topic is configured, typically in local development.
type LogContactPublisher struct {
	logger *zap.Logger
}

// NewLogContactPublisher returns a publisher that logs submissions.
func NewLogContactPublisher(logger *zap.Logger) *LogContactPublisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogContactPublisher{logger: logger.Named("contact")}
}

// PublishContact logs the submission and returns a synthetic message ID
// derived from the submission ID.
func (p *LogContactPublisher) PublishContact(_ context.Context, message services.ContactMessage) (string, error) {
	p.logger.Info("contact submission logged",
		zap.String("submission_id", message.ID),
		zap.String("locale", message.Locale),
		zap.String("product_sku", message.ProductSKU),
	)
	return "log-" + message.ID, nil
}

func setAttr(attrs map[string]string, key string, value string) {
	if v := strings.TrimSpace(value); v != "" {
		attrs[key] = v
	}
}
