package services

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"

	domain "github.com/floorhouse/site/internal/domain"
)

var (
	// ErrContactPublisherMissing indicates the publisher dependency is absent.
	ErrContactPublisherMissing = errors.New("contact service: publisher is not configured")
	// ErrContactInvalid marks input rejected by validation.
	ErrContactInvalid = errors.New("contact service: invalid input")
)

// ContactCommand is a contact form submission as received from the client.
type ContactCommand struct {
	Name       string `json:"name" validate:"required,max=120"`
	Email      string `json:"email" validate:"required,email,max=254"`
	Phone      string `json:"phone" validate:"omitempty,max=40"`
	Message    string `json:"message" validate:"required,min=10,max=4000"`
	ProductSKU string `json:"product_sku" validate:"omitempty,max=40"`
	Locale     string `json:"locale" validate:"omitempty,oneof=en bg"`
}

// ContactMessage is the sanitized record handed to the publisher.
type ContactMessage struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	Phone       string    `json:"phone,omitempty"`
	Message     string    `json:"message"`
	ProductSKU  string    `json:"product_sku,omitempty"`
	ProductName string    `json:"product_name,omitempty"`
	Locale      string    `json:"locale"`
	SubmittedAt time.Time `json:"submitted_at"`
}

// ContactReceipt acknowledges an accepted submission.
type ContactReceipt struct {
	ID          string
	MessageID   string
	SubmittedAt time.Time
}

// ContactValidationError lists the rejected fields.
type ContactValidationError struct {
	Fields map[string]string
}

func (e *ContactValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	return fmt.Sprintf("contact service: invalid fields %s", strings.Join(names, ", "))
}

func (e *ContactValidationError) Unwrap() error { return ErrContactInvalid }

// ContactPublisher delivers accepted submissions.
type ContactPublisher interface {
	PublishContact(ctx context.Context, msg ContactMessage) (string, error)
}

// ContactServiceDeps bundles constructor inputs for the contact service.
type ContactServiceDeps struct {
	Publisher ContactPublisher
	Catalog   CatalogService
	Logger    *zap.Logger
	Clock     func() time.Time
	IDGen     func() string
}

type contactService struct {
	publisher ContactPublisher
	catalog   CatalogService
	logger    *zap.Logger
	validate  *validator.Validate
	policy    *bluemonday.Policy
	clock     func() time.Time
	newID     func() string
}

// NewContactService constructs the contact form service.
func NewContactService(deps ContactServiceDeps) (ContactService, error) {
	if deps.Publisher == nil {
		return nil, ErrContactPublisherMissing
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	newID := deps.IDGen
	if newID == nil {
		newID = func() string { return ulid.Make().String() }
	}
	return &contactService{
		publisher: deps.Publisher,
		catalog:   deps.Catalog,
		logger:    logger,
		validate:  validator.New(validator.WithRequiredStructEnabled()),
		policy:    bluemonday.StrictPolicy(),
		clock:     func() time.Time { return clock().UTC() },
		newID:     newID,
	}, nil
}

func (s *contactService) Submit(ctx context.Context, cmd ContactCommand) (ContactReceipt, error) {
	cmd = ContactCommand{
		Name:       strings.TrimSpace(cmd.Name),
		Email:      strings.TrimSpace(cmd.Email),
		Phone:      strings.TrimSpace(cmd.Phone),
		Message:    strings.TrimSpace(cmd.Message),
		ProductSKU: strings.TrimSpace(cmd.ProductSKU),
		Locale:     strings.TrimSpace(cmd.Locale),
	}
	if err := s.validate.Struct(cmd); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) {
			fields := make(map[string]string, len(fieldErrs))
			for _, fe := range fieldErrs {
				fields[jsonFieldName(fe.Field())] = fe.Tag()
			}
			return ContactReceipt{}, &ContactValidationError{Fields: fields}
		}
		return ContactReceipt{}, fmt.Errorf("contact service: validate: %w", err)
	}

	locale := domain.Locale(cmd.Locale)
	if locale == "" {
		locale = domain.DefaultLocale
	}

	msg := ContactMessage{
		ID:          s.newID(),
		Name:        s.plainText(cmd.Name),
		Email:       cmd.Email,
		Phone:       s.plainText(cmd.Phone),
		Message:     s.plainText(cmd.Message),
		ProductSKU:  cmd.ProductSKU,
		Locale:      string(locale),
		SubmittedAt: s.clock(),
	}
	if cmd.ProductSKU != "" && s.catalog != nil {
		product, ok := s.catalog.FindProductBySku(cmd.ProductSKU)
		if !ok {
			return ContactReceipt{}, &ContactValidationError{Fields: map[string]string{"product_sku": "unknown"}}
		}
		if content, ok := product.Content(locale); ok {
			msg.ProductName = content.Name
		}
	}

	messageID, err := s.publisher.PublishContact(ctx, msg)
	if err != nil {
		return ContactReceipt{}, fmt.Errorf("contact service: publish: %w", err)
	}
	s.logger.Info("contact submission accepted",
		zap.String("submission_id", msg.ID),
		zap.String("locale", msg.Locale),
		zap.Bool("has_product", msg.ProductSKU != ""),
	)
	return ContactReceipt{ID: msg.ID, MessageID: messageID, SubmittedAt: msg.SubmittedAt}, nil
}

// plainText strips markup and leaves the text content unescaped.
func (s *contactService) plainText(value string) string {
	return strings.TrimSpace(html.UnescapeString(s.policy.Sanitize(value)))
}

func jsonFieldName(field string) string {
	switch field {
	case "ProductSKU":
		return "product_sku"
	default:
		return strings.ToLower(field)
	}
}
