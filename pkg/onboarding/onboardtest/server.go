// Package onboardtest provides an in-process mock of the onboarding HTTP
// contract with the same canned catalog and per-step business checks the
// real backend applies. It backs the package tests and the runnable
// examples; nothing in it is meant for production use.
package onboardtest

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/goliatone/go-storefront/internal/hydrate"
	"github.com/goliatone/go-storefront/pkg/onboarding"
)

// maxRequestBodySize limits POST body sizes.
const maxRequestBodySize = 1 << 20 // 1 MB

// DefaultSteps is the canned five-step catalog served by GET /status.
func DefaultSteps() []onboarding.Step {
	return []onboarding.Step{
		{ID: 1, Title: "Welcome to Baddie Thrift Store", Description: "Learn about our platform features", Completed: true},
		{ID: 2, Title: "Set up your store profile", Description: "Add your store name, description, and branding"},
		{ID: 3, Title: "Configure payment methods", Description: "Connect Stripe, PayPal, or other payment providers"},
		{ID: 4, Title: "Set up shipping options", Description: "Configure shipping rates and carriers"},
		{ID: 5, Title: "Add your first product", Description: "List your first item for sale"},
	}
}

// Server is the mock onboarding API. It tracks step completion in memory so
// repeated status calls reflect prior updates, and applies the step-specific
// business rules on POST step/{id}.
type Server struct {
	mu        sync.Mutex
	steps     []onboarding.Step
	completed bool
	logger    *slog.Logger
	now       func() time.Time

	profileDecoder  *hydrate.Decoder[onboarding.StoreProfile]
	paymentDecoder  *hydrate.Decoder[onboarding.PaymentSetup]
	shippingDecoder *hydrate.Decoder[shippingPayload]
	productDecoder  *hydrate.Decoder[onboarding.ProductData]
}

type shippingPayload struct {
	ShippingOptions []onboarding.ShippingOption `json:"shippingOptions"`
}

// ServerOption configures the mock server.
type ServerOption func(*Server)

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) ServerOption {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithSteps seeds a non-default step catalog.
func WithSteps(steps []onboarding.Step) ServerOption {
	return func(s *Server) {
		if len(steps) > 0 {
			s.steps = append([]onboarding.Step{}, steps...)
		}
	}
}

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) ServerOption {
	return func(s *Server) {
		if now != nil {
			s.now = now
		}
	}
}

// NewServer constructs the mock API.
func NewServer(opts ...ServerOption) *Server {
	s := &Server{
		steps:           DefaultSteps(),
		logger:          slog.Default(),
		now:             time.Now,
		profileDecoder:  hydrate.NewDecoder[onboarding.StoreProfile](),
		paymentDecoder:  hydrate.NewDecoder[onboarding.PaymentSetup](),
		shippingDecoder: hydrate.NewDecoder[shippingPayload](),
		productDecoder:  hydrate.NewDecoder[onboarding.ProductData](),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// RegisterHTTPHandlers registers the contract under the given prefix.
// The prefix should be the path segment without a trailing slash
// (e.g. "api/onboarding"). Handlers are registered as:
//
//	GET  <prefix>/status
//	POST <prefix>/step/{stepId}
//	POST <prefix>/complete
//	POST <prefix>/skip
func (s *Server) RegisterHTTPHandlers(prefix string, mux *http.ServeMux) {
	if !strings.HasPrefix(prefix, "/") {
		prefix = "/" + prefix
	}
	if !strings.HasSuffix(prefix, "/") {
		prefix = prefix + "/"
	}

	mux.HandleFunc(prefix+"status", s.handleStatus)
	mux.HandleFunc(prefix+"step/", s.handleStep)
	mux.HandleFunc(prefix+"complete", s.handleComplete)
	mux.HandleFunc(prefix+"skip", s.handleSkip)
}

// Handler returns the mock API mounted at /api/onboarding on a fresh mux.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	s.RegisterHTTPHandlers("api/onboarding", mux)
	return mux
}

// Status returns the current status the way GET /status reports it.
func (s *Server) Status() onboarding.Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.statusLocked()
}

func (s *Server) statusLocked() onboarding.Status {
	steps := make([]onboarding.Step, len(s.steps))
	copy(steps, s.steps)

	current := len(steps)
	allDone := len(steps) > 0
	for _, step := range steps {
		if !step.Completed {
			current = step.ID
			allDone = false
			break
		}
	}
	return onboarding.Status{
		Completed:   s.completed || allDone,
		CurrentStep: current,
		TotalSteps:  len(steps),
		Steps:       steps,
	}
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	s.mu.Lock()
	status := s.statusLocked()
	s.mu.Unlock()

	s.logger.Debug("onboarding status requested", "user_id", r.Header.Get("user-id"))
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"data":    status,
	})
}

type stepRequest struct {
	Completed bool           `json:"completed"`
	Data      map[string]any `json:"data"`
}

func (s *Server) handleStep(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	idSegment := r.URL.Path[strings.LastIndex(r.URL.Path, "/")+1:]
	stepID, err := strconv.Atoi(idSegment)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid step id")
		return
	}

	var req stepRequest
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBodySize))
	if err := decoder.Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if message, ok := s.checkStep(stepID, req.Data); !ok {
		s.logger.Info("onboarding step rejected", "step", stepID, "reason", message)
		writeJSONError(w, http.StatusBadRequest, message)
		return
	}

	s.mu.Lock()
	for i := range s.steps {
		if s.steps[i].ID == stepID {
			s.steps[i].Completed = req.Completed
		}
	}
	s.mu.Unlock()

	nextStep := stepID
	if req.Completed {
		nextStep = stepID + 1
	}
	s.logger.Info("onboarding step updated", "step", stepID, "completed", req.Completed)
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": s.successMessage(stepID),
		"data": map[string]any{
			"stepId":    stepID,
			"completed": req.Completed,
			"nextStep":  nextStep,
		},
	})
}

// checkStep applies the per-step business rule. Steps without a rule accept
// any payload.
func (s *Server) checkStep(stepID int, data map[string]any) (string, bool) {
	if data == nil {
		data = map[string]any{}
	}
	ctx := hydrate.Context{Step: stepID}

	switch stepID {
	case onboarding.StepStoreProfile:
		profile, err := s.profileDecoder.Decode(ctx, data)
		if err != nil || strings.TrimSpace(profile.StoreName) == "" || strings.TrimSpace(profile.Description) == "" {
			return "Store name and description are required", false
		}
	case onboarding.StepPayment:
		payment, err := s.paymentDecoder.Decode(ctx, data)
		if err != nil || strings.TrimSpace(payment.PaymentProvider) == "" {
			return "Payment provider selection is required", false
		}
	case onboarding.StepShipping:
		shipping, err := s.shippingDecoder.Decode(ctx, data)
		if err != nil || len(shipping.ShippingOptions) == 0 {
			return "At least one shipping option is required", false
		}
	case onboarding.StepProduct:
		product, err := s.productDecoder.Decode(ctx, data)
		if err != nil || strings.TrimSpace(product.ProductTitle) == "" || product.Price == 0 {
			return "Product title and price are required", false
		}
	}
	return "", true
}

func (s *Server) successMessage(stepID int) string {
	switch stepID {
	case onboarding.StepStoreProfile:
		return "Store profile saved successfully"
	case onboarding.StepPayment:
		return "Payment method configured successfully"
	case onboarding.StepShipping:
		return "Shipping options configured successfully"
	case onboarding.StepProduct:
		return "First product added successfully"
	default:
		return "Step updated"
	}
}

func (s *Server) handleComplete(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	s.mu.Lock()
	s.completed = true
	s.mu.Unlock()

	s.logger.Info("onboarding completed", "user_id", r.Header.Get("user-id"))
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Onboarding completed successfully! Welcome to Baddie Thrift Store.",
		"data": map[string]any{
			"completedAt": s.now().UTC().Format(time.RFC3339),
		},
	})
}

func (s *Server) handleSkip(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	s.mu.Lock()
	s.completed = true
	s.mu.Unlock()

	s.logger.Info("onboarding skipped", "user_id", r.Header.Get("user-id"))
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Onboarding skipped. You can complete it later from your settings.",
		"data": map[string]any{
			"skippedAt": s.now().UTC().Format(time.RFC3339),
		},
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{"error": message})
}
