package onboarding

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/goliatone/go-storefront/pkg/activity"
	"github.com/google/uuid"
)

// Engine drives the onboarding wizard state machine: current step, per-step
// completion, step drafts and the transitions against the remote Service.
// Transitions fire only on explicit calls, never on a timer. All onboarding
// state is session-only; nothing here touches snapshot persistence.
type Engine struct {
	mu      sync.Mutex
	svc     Service
	gates   map[int]*Gate
	emitter *activity.Emitter
	actorID string
	clock   func() time.Time

	preserveOnRevisit bool

	status   *Status
	retired  bool
	cursor   int
	profile  *StoreProfile
	payment  *PaymentSetup
	shipping []ShippingOption
	product  *ProductData
	loading  bool
	lastErr  string
}

// EngineOption configures engine construction.
type EngineOption func(*Engine)

// EngineWithGates replaces the default validation gates.
func EngineWithGates(gates map[int]*Gate) EngineOption {
	return func(e *Engine) {
		if gates != nil {
			e.gates = gates
		}
	}
}

// EngineWithActivityHooks fans successful transitions out to hooks.
func EngineWithActivityHooks(hooks activity.Hooks) EngineOption {
	return func(e *Engine) {
		e.emitter = activity.NewEmitter(hooks, activity.Config{Enabled: true})
	}
}

// EngineWithActor sets the caller identity attached to emitted events.
func EngineWithActor(actorID string) EngineOption {
	return func(e *Engine) {
		e.actorID = actorID
	}
}

// EngineWithClock overrides the timestamp source, mainly for tests.
func EngineWithClock(clock func() time.Time) EngineOption {
	return func(e *Engine) {
		if clock != nil {
			e.clock = clock
		}
	}
}

// PreserveCompletionOnRevisit controls what navigating backwards means. When
// false (the default), going back re-opens the previous step as incomplete
// through the remote contract, which can regress the current step. When true,
// navigation only moves the local cursor and completion survives until the
// user actively resubmits the step.
func PreserveCompletionOnRevisit(preserve bool) EngineOption {
	return func(e *Engine) {
		e.preserveOnRevisit = preserve
	}
}

// NewEngine constructs an engine bound to the remote service.
func NewEngine(svc Service, opts ...EngineOption) (*Engine, error) {
	if svc == nil {
		return nil, fmt.Errorf("onboarding: service is required")
	}
	e := &Engine{svc: svc, clock: time.Now}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}
	if e.gates == nil {
		gates, err := DefaultGates()
		if err != nil {
			return nil, err
		}
		e.gates = gates
	}
	return e, nil
}

// Status returns a copy of the last known wizard status.
func (e *Engine) Status() (Status, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.status == nil {
		return Status{}, false
	}
	return e.status.Clone(), true
}

// ActiveStep is the step currently shown to the user. It tracks CurrentStep
// except while revisiting under PreserveCompletionOnRevisit.
func (e *Engine) ActiveStep() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.cursor
}

// IsLoading reports whether a service call is in flight. The UI is expected
// to disable the triggering control while true; in-flight calls cannot be
// aborted by later user actions.
func (e *Engine) IsLoading() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.loading
}

// LastError returns the error message surfaced by the most recent failed
// transition, empty after a success.
func (e *Engine) LastError() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.lastErr
}

// FetchStatus loads the wizard status from the remote contract, replacing
// local state verbatim. On failure the status stays nil so the UI can show a
// retry affordance.
func (e *Engine) FetchStatus(ctx context.Context) error {
	e.mu.Lock()
	e.loading = true
	e.lastErr = ""
	e.mu.Unlock()

	status, err := e.svc.Status(ctx)

	e.mu.Lock()
	defer e.mu.Unlock()
	e.loading = false
	if err != nil {
		e.lastErr = err.Error()
		return err
	}
	next := status.Clone()
	e.status = &next
	e.cursor = next.CurrentStep
	return nil
}

// Advance commits a step transition through the remote contract. On success
// the whole status is recomputed and replaced; on rejection or transport
// failure local state is untouched and the error message is recorded.
func (e *Engine) Advance(ctx context.Context, stepID int, completed bool, data map[string]any) error {
	e.mu.Lock()
	if err := e.guardTransition(stepID); err != nil {
		e.mu.Unlock()
		return err
	}
	e.loading = true
	e.lastErr = ""
	e.mu.Unlock()

	_, err := e.svc.UpdateStep(ctx, stepID, completed, data)

	e.mu.Lock()
	e.loading = false
	if err != nil {
		e.lastErr = err.Error()
		e.mu.Unlock()
		return err
	}

	next := e.status.Clone()
	for i := range next.Steps {
		if next.Steps[i].ID == stepID {
			next.Steps[i].Completed = completed
		}
	}
	next.CurrentStep = next.firstIncomplete()
	next.Completed = allComplete(next.Steps)
	e.status = &next
	e.cursor = next.CurrentStep
	e.mu.Unlock()

	verb := activity.VerbStepCompleted
	if !completed {
		verb = activity.VerbStepReopened
	}
	e.emit(ctx, verb, strconv.Itoa(stepID), map[string]any{
		"currentStep": next.CurrentStep,
		"completed":   next.Completed,
	})
	return nil
}

// Submit runs the step's validation gate over its current draft and, only
// when the gate passes, advances with the normalized payload. Gate failures
// never reach the network.
func (e *Engine) Submit(ctx context.Context, stepID int) (Result, error) {
	e.mu.Lock()
	gate := e.gates[stepID]
	draft := e.draftFor(stepID)
	e.mu.Unlock()

	if gate == nil {
		return Result{}, e.Advance(ctx, stepID, true, nil)
	}
	result, err := gate.Check(draft)
	if err != nil {
		return Result{}, err
	}
	if !result.Valid() {
		return result, nil
	}
	return result, e.Advance(ctx, stepID, true, result.Payload)
}

// Retreat navigates to the previous step. Under the default configuration
// this re-opens that step as incomplete through the remote contract.
func (e *Engine) Retreat(ctx context.Context) error {
	e.mu.Lock()
	if e.status == nil {
		e.mu.Unlock()
		return ErrNoStatus
	}
	if e.retired {
		e.mu.Unlock()
		return ErrWizardRetired
	}
	active := e.cursor
	if active <= 1 {
		e.mu.Unlock()
		return ErrAtFirstStep
	}
	if e.preserveOnRevisit {
		e.cursor = active - 1
		e.mu.Unlock()
		return nil
	}
	e.mu.Unlock()
	return e.Advance(ctx, active-1, false, nil)
}

// GoToStep revisits an already reachable step (the wizard's step-dot
// navigation). Skipping ahead past the first incomplete step is rejected.
func (e *Engine) GoToStep(ctx context.Context, stepID int) error {
	e.mu.Lock()
	if err := e.guardTransition(stepID); err != nil {
		e.mu.Unlock()
		return err
	}
	if e.preserveOnRevisit || stepID == e.cursor {
		e.cursor = stepID
		e.mu.Unlock()
		return nil
	}
	e.mu.Unlock()
	return e.Advance(ctx, stepID, false, nil)
}

// Complete finishes the wizard. Completion is absorbing: afterwards every
// transition returns ErrWizardRetired and drafts are discarded.
func (e *Engine) Complete(ctx context.Context) error {
	if err := e.beginTerminal(); err != nil {
		return err
	}

	result, err := e.svc.Complete(ctx)

	if err := e.finishTerminal(err); err != nil {
		return err
	}
	e.emit(ctx, activity.VerbOnboardCompleted, "wizard", map[string]any{
		"completedAt": result.CompletedAt,
	})
	return nil
}

// Skip abandons the wizard. Like Complete it is absorbing and discards all
// step drafts.
func (e *Engine) Skip(ctx context.Context) error {
	if err := e.beginTerminal(); err != nil {
		return err
	}

	result, err := e.svc.Skip(ctx)

	if err := e.finishTerminal(err); err != nil {
		return err
	}
	e.emit(ctx, activity.VerbOnboardSkipped, "wizard", map[string]any{
		"skippedAt": result.SkippedAt,
	})
	return nil
}

// Reset tears the engine back to its pre-mount state.
func (e *Engine) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.status = nil
	e.retired = false
	e.cursor = 0
	e.loading = false
	e.lastErr = ""
	e.clearDraftsLocked()
}

// SetStoreProfile stores the working draft for the store profile step.
func (e *Engine) SetStoreProfile(profile StoreProfile) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.profile = &profile
}

// SetPaymentSetup stores the working draft for the payment step.
func (e *Engine) SetPaymentSetup(payment PaymentSetup) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.payment = &payment
}

// SetShippingOptions stores the working draft for the shipping step,
// assigning ids to options that lack one.
func (e *Engine) SetShippingOptions(options []ShippingOption) {
	normalized := make([]ShippingOption, len(options))
	copy(normalized, options)
	for i := range normalized {
		if normalized[i].ID == "" {
			normalized[i].ID = uuid.NewString()
		}
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.shipping = normalized
}

// SetProductData stores the working draft for the first-product step.
func (e *Engine) SetProductData(product ProductData) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.product = &product
}

// StoreProfile returns the current store profile draft.
func (e *Engine) StoreProfile() (StoreProfile, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.profile == nil {
		return StoreProfile{}, false
	}
	return *e.profile, true
}

// PaymentSetup returns the current payment draft.
func (e *Engine) PaymentSetup() (PaymentSetup, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.payment == nil {
		return PaymentSetup{}, false
	}
	return *e.payment, true
}

// ShippingOptions returns a copy of the current shipping draft.
func (e *Engine) ShippingOptions() []ShippingOption {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]ShippingOption, len(e.shipping))
	copy(out, e.shipping)
	return out
}

// ProductData returns the current first-product draft.
func (e *Engine) ProductData() (ProductData, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.product == nil {
		return ProductData{}, false
	}
	return *e.product, true
}

// guardTransition enforces the transition preconditions. Callers hold e.mu.
// Note Status.Completed alone is not a guard: the contract reports it once
// every step is done, while step transitions stay legal until Complete or
// Skip retires the wizard.
func (e *Engine) guardTransition(stepID int) error {
	if e.status == nil {
		return ErrNoStatus
	}
	if e.retired {
		return ErrWizardRetired
	}
	if stepID < 1 || stepID > e.status.TotalSteps {
		return fmt.Errorf("%w: step %d out of range 1..%d", ErrStepLocked, stepID, e.status.TotalSteps)
	}
	reachable := e.status.CurrentStep
	if first := e.status.firstIncomplete(); first > reachable {
		reachable = first
	}
	if stepID > reachable {
		return fmt.Errorf("%w: step %d, first reachable is %d", ErrStepLocked, stepID, reachable)
	}
	return nil
}

func (e *Engine) beginTerminal() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.status == nil {
		return ErrNoStatus
	}
	if e.retired {
		return ErrWizardRetired
	}
	e.loading = true
	e.lastErr = ""
	return nil
}

func (e *Engine) finishTerminal(err error) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.loading = false
	if err != nil {
		e.lastErr = err.Error()
		return err
	}
	next := e.status.Clone()
	next.Completed = true
	e.status = &next
	e.retired = true
	e.clearDraftsLocked()
	return nil
}

func (e *Engine) clearDraftsLocked() {
	e.profile = nil
	e.payment = nil
	e.shipping = nil
	e.product = nil
}

func (e *Engine) draftFor(stepID int) any {
	switch stepID {
	case StepStoreProfile:
		if e.profile == nil {
			return nil
		}
		return *e.profile
	case StepPayment:
		if e.payment == nil {
			return nil
		}
		return *e.payment
	case StepShipping:
		return shippingDraft{ShippingOptions: e.shipping}
	case StepProduct:
		if e.product == nil {
			return nil
		}
		return *e.product
	default:
		return nil
	}
}

func (e *Engine) emit(ctx context.Context, verb, objectID string, metadata map[string]any) {
	if !e.emitter.Enabled() {
		return
	}
	_ = e.emitter.Emit(ctx, activity.Event{
		Verb:       verb,
		ActorID:    e.actorID,
		ObjectType: "onboarding",
		ObjectID:   objectID,
		Metadata:   metadata,
		OccurredAt: e.clock(),
	})
}

func allComplete(steps []Step) bool {
	for _, step := range steps {
		if !step.Completed {
			return false
		}
	}
	return len(steps) > 0
}
