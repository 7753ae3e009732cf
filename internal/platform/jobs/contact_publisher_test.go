package jobs

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"cloud.google.com/go/pubsub"
	"cloud.google.com/go/pubsub/pstest"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"google.golang.org/api/option"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/floorhouse/site/internal/services"
)

func TestPubSubContactPublisherPublishesMessage(t *testing.T) {
	ctx := context.Background()
	srv := pstest.NewServer()
	defer srv.Close()

	client, err := pubsub.NewClient(ctx, "test-project",
		option.WithEndpoint(srv.Addr),
		option.WithoutAuthentication(),
		option.WithGRPCDialOption(grpc.WithTransportCredentials(insecure.NewCredentials())),
	)
	if err != nil {
		t.Fatalf("pubsub.NewClient: %v", err)
	}
	defer func() {
		_ = client.Close()
	}()

	topic, err := client.CreateTopic(ctx, "contact-submissions")
	if err != nil {
		t.Fatalf("CreateTopic: %v", err)
	}

	publisher, err := NewPubSubContactPublisher(topic)
	if err != nil {
		t.Fatalf("NewPubSubContactPublisher: %v", err)
	}

	msg := services.ContactMessage{
		ID:          "01JCONTACT",
		Name:        "Maria",
		Email:       "maria@example.com",
		Message:     "Please send a sample of the smoked plank.",
		ProductSKU:  "FLR-1002",
		Locale:      "bg",
		SubmittedAt: time.Date(2026, 10, 1, 9, 0, 0, 0, time.UTC),
	}

	id, err := publisher.PublishContact(ctx, msg)
	if err != nil {
		t.Fatalf("PublishContact: %v", err)
	}
	if id == "" {
		t.Fatalf("expected server message id")
	}

	messages := srv.Messages()
	if len(messages) != 1 {
		t.Fatalf("expected 1 message, got %d", len(messages))
	}

	var payload services.ContactMessage
	if err := json.Unmarshal(messages[0].Data, &payload); err != nil {
		t.Fatalf("unmarshal payload: %v", err)
	}
	if payload.ID != msg.ID || payload.Email != msg.Email || !payload.SubmittedAt.Equal(msg.SubmittedAt) {
		t.Fatalf("unexpected payload %#v", payload)
	}
	attrs := messages[0].Attributes
	if attrs["kind"] != "contact" || attrs["locale"] != "bg" || attrs["submissionId"] != "01JCONTACT" || attrs["productSku"] != "FLR-1002" {
		t.Fatalf("unexpected attributes %#v", attrs)
	}
}

func TestPubSubContactPublisherRequiresTopic(t *testing.T) {
	if _, err := NewPubSubContactPublisher(nil); err == nil {
		t.Fatalf("expected error for nil topic")
	}
}

func TestLogContactPublisher(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	publisher := NewLogContactPublisher(zap.New(core))

	id, err := publisher.PublishContact(context.Background(), services.ContactMessage{ID: "01JLOG", Locale: "en"})
	if err != nil {
		t.Fatalf("PublishContact: %v", err)
	}
	if id != "log-01JLOG" {
		t.Fatalf("unexpected id %q", id)
	}
	entries := logs.FilterMessage("contact submission logged").All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 log entry, got %d", len(entries))
	}
	if got := entries[0].ContextMap()["submission_id"]; got != "01JLOG" {
		t.Fatalf("unexpected submission_id %v", got)
	}
}
