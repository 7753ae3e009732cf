package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/floorhouse/site/internal/platform/httpx"
	"github.com/floorhouse/site/internal/platform/requestctx"
	"github.com/floorhouse/site/internal/services"
)

const maxFormBodyBytes = 16 << 10

// FormHandlers accepts contact submissions and assistant questions.
type FormHandlers struct {
	contact          services.ContactService
	assistant        services.AssistantService
	contactLimiter   rateLimiter
	assistantLimiter rateLimiter
	limits           formLimits
	clock            func() time.Time
}

type formLimits struct {
	contactPerMinute   int
	assistantPerMinute int
	burst              int
}

// FormOption customises construction of FormHandlers.
type FormOption func(*FormHandlers)

// WithContactService injects the contact service dependency.
func WithContactService(svc services.ContactService) FormOption {
	return func(h *FormHandlers) {
		h.contact = svc
	}
}

// WithAssistantService injects the assistant service dependency.
func WithAssistantService(svc services.AssistantService) FormOption {
	return func(h *FormHandlers) {
		h.assistant = svc
	}
}

// WithFormRateLimits limits each client IP per minute for contact and
// assistant requests. Zero disables the limit.
func WithFormRateLimits(contactPerMinute, assistantPerMinute, burst int) FormOption {
	return func(h *FormHandlers) {
		h.limits = formLimits{contactPerMinute: contactPerMinute, assistantPerMinute: assistantPerMinute, burst: burst}
	}
}

// WithFormClock injects a custom clock for the rate limiters.
func WithFormClock(clock func() time.Time) FormOption {
	return func(h *FormHandlers) {
		if clock != nil {
			h.clock = clock
		}
	}
}

// NewFormHandlers constructs the form endpoints.
func NewFormHandlers(opts ...FormOption) *FormHandlers {
	h := &FormHandlers{clock: time.Now}
	for _, opt := range opts {
		if opt != nil {
			opt(h)
		}
	}
	h.contactLimiter = newVisitorLimiter(h.limits.contactPerMinute, h.limits.burst, h.clock)
	h.assistantLimiter = newVisitorLimiter(h.limits.assistantPerMinute, h.limits.burst, h.clock)
	return h
}

// Routes registers the form endpoints.
func (h *FormHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	r.Post("/contact", h.submitContact)
	r.Post("/assistant", h.askAssistant)
}

type contactResponse struct {
	ID          string `json:"id"`
	SubmittedAt string `json:"submittedAt"`
}

func (h *FormHandlers) submitContact(w http.ResponseWriter, r *http.Request) {
	if h.contact == nil {
		httpx.WriteError(r.Context(), w, httpx.NewError("contact_unavailable", "contact service is unavailable", http.StatusServiceUnavailable))
		return
	}
	if !allowRequest(h.contactLimiter, r) {
		writeRateLimited(w, r)
		return
	}

	var cmd services.ContactCommand
	if err := decodeJSONBody(r, &cmd); err != nil {
		httpx.WriteError(r.Context(), w, httpx.NewError("invalid_request", err.Error(), http.StatusBadRequest))
		return
	}
	if strings.TrimSpace(cmd.Locale) == "" {
		cmd.Locale = string(requestctx.Locale(r.Context()))
	}

	receipt, err := h.contact.Submit(r.Context(), cmd)
	if err != nil {
		var vErr *services.ContactValidationError
		if errors.As(err, &vErr) {
			httpx.WriteError(r.Context(), w, httpx.NewError("invalid_request", "contact form is invalid", http.StatusUnprocessableEntity).
				WithDetails(map[string]any{"fields": vErr.Fields}))
			return
		}
		requestctx.Logger(r.Context()).Error("contact submission failed", zap.Error(err))
		httpx.WriteError(r.Context(), w, httpx.NewError("contact_failed", "could not accept the message", http.StatusBadGateway))
		return
	}
	httpx.WriteJSON(w, http.StatusAccepted, contactResponse{
		ID:          receipt.ID,
		SubmittedAt: receipt.SubmittedAt.UTC().Format(time.RFC3339),
	})
}

type assistantResponse struct {
	Answer   string                    `json:"answer,omitempty"`
	Products []services.AssistantMatch `json:"products"`
}

func (h *FormHandlers) askAssistant(w http.ResponseWriter, r *http.Request) {
	if h.assistant == nil {
		httpx.WriteError(r.Context(), w, httpx.NewError("assistant_unavailable", "assistant is unavailable", http.StatusServiceUnavailable))
		return
	}
	if !allowRequest(h.assistantLimiter, r) {
		writeRateLimited(w, r)
		return
	}

	var question services.AssistantQuestion
	if err := decodeJSONBody(r, &question); err != nil {
		httpx.WriteError(r.Context(), w, httpx.NewError("invalid_request", err.Error(), http.StatusBadRequest))
		return
	}
	if strings.TrimSpace(question.Locale) == "" {
		question.Locale = string(requestctx.Locale(r.Context()))
	}

	answer, err := h.assistant.Ask(r.Context(), question)
	if err != nil {
		if errors.Is(err, services.ErrAssistantInvalid) {
			httpx.WriteError(r.Context(), w, httpx.NewError("invalid_question", "question must be 1 to 1000 characters", http.StatusUnprocessableEntity))
			return
		}
		requestctx.Logger(r.Context()).Error("assistant answer failed", zap.Error(err))
		httpx.WriteError(r.Context(), w, httpx.NewError("assistant_failed", "assistant could not answer", http.StatusBadGateway))
		return
	}
	products := answer.Products
	if products == nil {
		products = []services.AssistantMatch{}
	}
	httpx.WriteJSON(w, http.StatusOK, assistantResponse{Answer: answer.Answer, Products: products})
}

func decodeJSONBody(r *http.Request, dst any) error {
	if r.Body == nil {
		return errors.New("request body is required")
	}
	dec := json.NewDecoder(io.LimitReader(r.Body, maxFormBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("request body is required")
		}
		return errors.New("request body must be a valid JSON object")
	}
	return nil
}

func writeRateLimited(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Retry-After", "60")
	httpx.WriteError(r.Context(), w, httpx.ErrTooManyRequests)
}
