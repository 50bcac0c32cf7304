package onboarding

import (
	"context"
	"time"
)

// Step is one discrete stage of the onboarding wizard. IDs are fixed,
// contiguous and start at 1.
type Step struct {
	ID          int    `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Completed   bool   `json:"completed"`
}

// Status is the whole-wizard state as reported by the remote contract.
// It is always replaced as a unit after a transition, never patched.
type Status struct {
	Completed   bool   `json:"completed"`
	CurrentStep int    `json:"currentStep"`
	TotalSteps  int    `json:"totalSteps"`
	Steps       []Step `json:"steps"`
}

// Clone returns a deep copy so callers can hand out status snapshots without
// sharing the steps slice.
func (s Status) Clone() Status {
	out := s
	out.Steps = make([]Step, len(s.Steps))
	copy(out.Steps, s.Steps)
	return out
}

// firstIncomplete returns the lowest incomplete step id, or TotalSteps when
// every step is complete.
func (s Status) firstIncomplete() int {
	for _, step := range s.Steps {
		if !step.Completed {
			return step.ID
		}
	}
	return s.TotalSteps
}

// StoreProfile is the draft for the store profile step.
type StoreProfile struct {
	StoreName   string `json:"storeName"`
	Description string `json:"description"`
	Logo        string `json:"logo,omitempty"`
	Banner      string `json:"banner,omitempty"`
}

// Payment providers accepted by the payment setup step.
const (
	ProviderStripe = "stripe"
	ProviderPayPal = "paypal"
	ProviderBoth   = "both"
)

// PaymentSetup is the draft for the payment configuration step.
type PaymentSetup struct {
	PaymentProvider  string `json:"paymentProvider"`
	StripeAccountID  string `json:"stripeAccountId,omitempty"`
	PayPalMerchantID string `json:"paypalMerchantId,omitempty"`
}

// ShippingOption is one carrier entry in the shipping setup step.
type ShippingOption struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	Price         float64 `json:"price"`
	EstimatedDays string  `json:"estimatedDays"`
}

// shippingDraft wraps the shipping options in the wire envelope the step
// contract expects.
type shippingDraft struct {
	ShippingOptions []ShippingOption `json:"shippingOptions"`
}

// ProductData is the draft for the first-product step.
type ProductData struct {
	ProductTitle string   `json:"productTitle"`
	Description  string   `json:"description"`
	Price        float64  `json:"price"`
	Images       []string `json:"images,omitempty"`
	Category     string   `json:"category"`
}

// StepResult is the remote acknowledgement of a step update.
type StepResult struct {
	StepID    int  `json:"stepId"`
	Completed bool `json:"completed"`
	NextStep  int  `json:"nextStep"`
}

// CompletionResult is the remote acknowledgement of finishing the wizard.
type CompletionResult struct {
	CompletedAt time.Time `json:"completedAt"`
}

// SkipResult is the remote acknowledgement of skipping the wizard.
type SkipResult struct {
	SkippedAt time.Time `json:"skippedAt"`
}

// Service is the remote onboarding contract the engine drives. Each call is a
// single attempt; retry policy belongs to the caller.
type Service interface {
	Status(ctx context.Context) (Status, error)
	UpdateStep(ctx context.Context, stepID int, completed bool, data map[string]any) (StepResult, error)
	Complete(ctx context.Context) (CompletionResult, error)
	Skip(ctx context.Context) (SkipResult, error)
}
