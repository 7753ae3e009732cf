package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockContactPublisher struct {
	mock.Mock
}

func (m *mockContactPublisher) PublishContact(ctx context.Context, msg ContactMessage) (string, error) {
	args := m.Called(ctx, msg)
	return args.String(0), args.Error(1)
}

func newContactService(t *testing.T, publisher ContactPublisher) ContactService {
	t.Helper()
	svc, err := NewContactService(ContactServiceDeps{
		Publisher: publisher,
		Catalog:   embeddedService(t),
		Clock:     func() time.Time { return time.Date(2026, 10, 1, 9, 30, 0, 0, time.UTC) },
		IDGen:     func() string { return "01JTESTCONTACT" },
	})
	require.NoError(t, err)
	return svc
}

func TestContactSubmitPublishesSanitizedMessage(t *testing.T) {
	t.Parallel()

	publisher := &mockContactPublisher{}
	publisher.On("PublishContact", mock.Anything, mock.MatchedBy(func(msg ContactMessage) bool {
		return msg.ID == "01JTESTCONTACT" &&
			msg.Message == "Do you ship to Plovdiv & Varna?" &&
			msg.ProductName == "Natural Oak Plank" &&
			msg.Locale == "en"
	})).Return("msg-1", nil).Once()

	svc := newContactService(t, publisher)
	receipt, err := svc.Submit(context.Background(), ContactCommand{
		Name:       "  Maria Ivanova ",
		Email:      "maria@example.com",
		Message:    "<b>Do you ship</b> to Plovdiv & Varna?<script>alert(1)</script>",
		ProductSKU: "FLR-1001",
	})
	require.NoError(t, err)
	assert.Equal(t, "01JTESTCONTACT", receipt.ID)
	assert.Equal(t, "msg-1", receipt.MessageID)
	assert.Equal(t, time.Date(2026, 10, 1, 9, 30, 0, 0, time.UTC), receipt.SubmittedAt)
	publisher.AssertExpectations(t)
}

func TestContactSubmitRejectsInvalidInput(t *testing.T) {
	t.Parallel()

	publisher := &mockContactPublisher{}
	svc := newContactService(t, publisher)

	_, err := svc.Submit(context.Background(), ContactCommand{
		Email:   "not-an-email",
		Message: "short",
		Locale:  "de",
	})
	require.ErrorIs(t, err, ErrContactInvalid)
	var vErr *ContactValidationError
	require.True(t, errors.As(err, &vErr))
	assert.Equal(t, map[string]string{
		"name":    "required",
		"email":   "email",
		"message": "min",
		"locale":  "oneof",
	}, vErr.Fields)
	publisher.AssertNotCalled(t, "PublishContact", mock.Anything, mock.Anything)
}

func TestContactSubmitRejectsUnknownProduct(t *testing.T) {
	t.Parallel()

	svc := newContactService(t, &mockContactPublisher{})
	_, err := svc.Submit(context.Background(), ContactCommand{
		Name:       "Ivan",
		Email:      "ivan@example.com",
		Message:    "Is this still available?",
		ProductSKU: "FLR-0000",
	})
	var vErr *ContactValidationError
	require.True(t, errors.As(err, &vErr))
	assert.Equal(t, "unknown", vErr.Fields["product_sku"])
}

func TestContactSubmitWrapsPublishError(t *testing.T) {
	t.Parallel()

	publisher := &mockContactPublisher{}
	publisher.On("PublishContact", mock.Anything, mock.Anything).Return("", errors.New("topic gone"))

	svc := newContactService(t, publisher)
	_, err := svc.Submit(context.Background(), ContactCommand{
		Name:    "Ivan",
		Email:   "ivan@example.com",
		Message: "Please call me back about samples.",
		Locale:  "bg",
	})
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrContactInvalid)
	assert.Contains(t, err.Error(), "topic gone")
}

func TestNewContactServiceRequiresPublisher(t *testing.T) {
	t.Parallel()

	_, err := NewContactService(ContactServiceDeps{})
	assert.ErrorIs(t, err, ErrContactPublisherMissing)
}
