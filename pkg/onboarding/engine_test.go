package onboarding_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/goliatone/go-storefront/pkg/activity"
	"github.com/goliatone/go-storefront/pkg/onboarding"
)

type stepCall struct {
	stepID    int
	completed bool
	data      map[string]any
}

// fakeService scripts the remote onboarding contract for engine tests.
type fakeService struct {
	status    onboarding.Status
	statusErr error

	stepCalls []stepCall
	stepErr   error

	completeCalls int
	completeErr   error
	skipCalls     int

	completedAt time.Time
}

func newFakeService() *fakeService {
	return &fakeService{
		status: onboarding.Status{
			CurrentStep: 1,
			TotalSteps:  onboarding.TotalSteps,
			Steps: []onboarding.Step{
				{ID: 1, Title: "Welcome", Completed: true},
				{ID: 2, Title: "Store Profile"},
				{ID: 3, Title: "Payment Setup"},
				{ID: 4, Title: "Shipping"},
				{ID: 5, Title: "First Product"},
			},
		},
		completedAt: time.Date(2024, 5, 20, 10, 0, 0, 0, time.UTC),
	}
}

func (s *fakeService) Status(context.Context) (onboarding.Status, error) {
	if s.statusErr != nil {
		return onboarding.Status{}, s.statusErr
	}
	return s.status.Clone(), nil
}

func (s *fakeService) UpdateStep(_ context.Context, stepID int, completed bool, data map[string]any) (onboarding.StepResult, error) {
	if s.stepErr != nil {
		return onboarding.StepResult{}, s.stepErr
	}
	s.stepCalls = append(s.stepCalls, stepCall{stepID: stepID, completed: completed, data: data})
	next := stepID
	if completed {
		next = stepID + 1
	}
	return onboarding.StepResult{StepID: stepID, Completed: completed, NextStep: next}, nil
}

func (s *fakeService) Complete(context.Context) (onboarding.CompletionResult, error) {
	s.completeCalls++
	if s.completeErr != nil {
		return onboarding.CompletionResult{}, s.completeErr
	}
	return onboarding.CompletionResult{CompletedAt: s.completedAt}, nil
}

func (s *fakeService) Skip(context.Context) (onboarding.SkipResult, error) {
	s.skipCalls++
	return onboarding.SkipResult{SkippedAt: s.completedAt}, nil
}

func newTestEngine(t *testing.T, svc onboarding.Service, opts ...onboarding.EngineOption) *onboarding.Engine {
	t.Helper()
	engine, err := onboarding.NewEngine(svc, opts...)
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	return engine
}

func fetchStatus(t *testing.T, engine *onboarding.Engine) {
	t.Helper()
	if err := engine.FetchStatus(context.Background()); err != nil {
		t.Fatalf("fetch status: %v", err)
	}
}

func TestEngineFetchStatus(t *testing.T) {
	svc := newFakeService()
	engine := newTestEngine(t, svc)

	if _, ok := engine.Status(); ok {
		t.Fatalf("expected no status before the first fetch")
	}

	fetchStatus(t, engine)

	status, ok := engine.Status()
	if !ok {
		t.Fatalf("expected a status after fetch")
	}
	if status.CurrentStep != 1 || status.TotalSteps != onboarding.TotalSteps {
		t.Fatalf("unexpected status: %+v", status)
	}
	if got := engine.ActiveStep(); got != 1 {
		t.Fatalf("expected active step 1, got %d", got)
	}
}

func TestEngineFetchStatusFailure(t *testing.T) {
	svc := newFakeService()
	svc.statusErr = errors.New("connection refused")
	engine := newTestEngine(t, svc)

	if err := engine.FetchStatus(context.Background()); err == nil {
		t.Fatalf("expected the fetch error")
	}
	if _, ok := engine.Status(); ok {
		t.Fatalf("expected status to stay unset after a failed fetch")
	}
	if engine.LastError() == "" {
		t.Fatalf("expected the failure message to be recorded")
	}
}

func TestEngineAdvanceRequiresStatus(t *testing.T) {
	engine := newTestEngine(t, newFakeService())

	err := engine.Advance(context.Background(), 2, true, nil)
	if !errors.Is(err, onboarding.ErrNoStatus) {
		t.Fatalf("expected ErrNoStatus, got %v", err)
	}
}

func TestEngineAdvanceRecomputesStatus(t *testing.T) {
	svc := newFakeService()
	engine := newTestEngine(t, svc)
	fetchStatus(t, engine)

	if err := engine.Advance(context.Background(), 2, true, map[string]any{"storeName": "Baddie's"}); err != nil {
		t.Fatalf("advance: %v", err)
	}

	status, _ := engine.Status()
	if status.CurrentStep != 3 {
		t.Fatalf("expected current step to move to 3, got %d", status.CurrentStep)
	}
	if status.Completed {
		t.Fatalf("wizard must not be complete yet")
	}
	if len(svc.stepCalls) != 1 || svc.stepCalls[0].stepID != 2 || !svc.stepCalls[0].completed {
		t.Fatalf("unexpected remote calls: %+v", svc.stepCalls)
	}
}

func TestEngineAdvanceRejectsLockedStep(t *testing.T) {
	engine := newTestEngine(t, newFakeService())
	fetchStatus(t, engine)

	for _, stepID := range []int{3, 4, 5} {
		err := engine.Advance(context.Background(), stepID, true, nil)
		if !errors.Is(err, onboarding.ErrStepLocked) {
			t.Fatalf("step %d: expected ErrStepLocked, got %v", stepID, err)
		}
	}

	if err := engine.Advance(context.Background(), 0, true, nil); !errors.Is(err, onboarding.ErrStepLocked) {
		t.Fatalf("expected out-of-range step to be locked, got %v", err)
	}
	if err := engine.Advance(context.Background(), 6, true, nil); !errors.Is(err, onboarding.ErrStepLocked) {
		t.Fatalf("expected out-of-range step to be locked, got %v", err)
	}
}

func TestEngineRejectionLeavesStateUntouched(t *testing.T) {
	svc := newFakeService()
	engine := newTestEngine(t, svc)
	fetchStatus(t, engine)
	before, _ := engine.Status()

	svc.stepErr = &onboarding.RejectionError{Message: "Store name and description are required"}
	err := engine.Advance(context.Background(), 2, true, nil)

	var rejection *onboarding.RejectionError
	if !errors.As(err, &rejection) {
		t.Fatalf("expected a RejectionError, got %v", err)
	}
	after, _ := engine.Status()
	if after.CurrentStep != before.CurrentStep || after.Completed != before.Completed {
		t.Fatalf("expected status untouched, before=%+v after=%+v", before, after)
	}
	if engine.LastError() == "" {
		t.Fatalf("expected the rejection message to be recorded")
	}
	if engine.IsLoading() {
		t.Fatalf("expected loading to be cleared after a failure")
	}
}

func TestEngineSubmitBlocksInvalidDraftLocally(t *testing.T) {
	svc := newFakeService()
	engine := newTestEngine(t, svc)
	fetchStatus(t, engine)

	engine.SetStoreProfile(onboarding.StoreProfile{StoreName: "B"})
	result, err := engine.Submit(context.Background(), onboarding.StepStoreProfile)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if result.Valid() {
		t.Fatalf("expected validation errors")
	}
	if len(svc.stepCalls) != 0 {
		t.Fatalf("gate failures must never reach the network, got %+v", svc.stepCalls)
	}
}

func TestEngineSubmitSendsNormalizedPayload(t *testing.T) {
	svc := newFakeService()
	engine := newTestEngine(t, svc)
	fetchStatus(t, engine)

	engine.SetStoreProfile(onboarding.StoreProfile{
		StoreName:   "  Baddie's Vintage Finds  ",
		Description: "Curated vintage streetwear and thrift treasures.",
	})
	result, err := engine.Submit(context.Background(), onboarding.StepStoreProfile)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if !result.Valid() {
		t.Fatalf("expected a pass, got %v", result.Errors)
	}
	if len(svc.stepCalls) != 1 {
		t.Fatalf("expected one remote call, got %d", len(svc.stepCalls))
	}
	if got := svc.stepCalls[0].data["storeName"]; got != "Baddie's Vintage Finds" {
		t.Fatalf("expected the trimmed payload on the wire, got %v", got)
	}
}

func TestEngineSubmitGatelessStep(t *testing.T) {
	svc := newFakeService()
	engine := newTestEngine(t, svc)
	fetchStatus(t, engine)

	if _, err := engine.Submit(context.Background(), onboarding.StepWelcome); err != nil {
		t.Fatalf("submit welcome: %v", err)
	}
	if len(svc.stepCalls) != 1 || svc.stepCalls[0].data != nil {
		t.Fatalf("expected a bare step update, got %+v", svc.stepCalls)
	}
}

func TestEngineRetreatDefaultReopens(t *testing.T) {
	svc := newFakeService()
	engine := newTestEngine(t, svc)
	fetchStatus(t, engine)

	if err := engine.Advance(context.Background(), 2, true, nil); err != nil {
		t.Fatalf("advance: %v", err)
	}
	if err := engine.Retreat(context.Background()); err != nil {
		t.Fatalf("retreat: %v", err)
	}

	last := svc.stepCalls[len(svc.stepCalls)-1]
	if last.stepID != 2 || last.completed {
		t.Fatalf("expected retreat to re-open step 2, got %+v", last)
	}
	status, _ := engine.Status()
	if status.CurrentStep != 2 {
		t.Fatalf("expected current step 2 after re-opening, got %d", status.CurrentStep)
	}
}

func TestEngineRetreatAtFirstStep(t *testing.T) {
	engine := newTestEngine(t, newFakeService())
	fetchStatus(t, engine)

	if err := engine.Retreat(context.Background()); !errors.Is(err, onboarding.ErrAtFirstStep) {
		t.Fatalf("expected ErrAtFirstStep, got %v", err)
	}
}

func TestEngineRetreatPreservesCompletion(t *testing.T) {
	svc := newFakeService()
	engine := newTestEngine(t, svc, onboarding.PreserveCompletionOnRevisit(true))
	fetchStatus(t, engine)

	if err := engine.Advance(context.Background(), 2, true, nil); err != nil {
		t.Fatalf("advance: %v", err)
	}
	calls := len(svc.stepCalls)

	if err := engine.Retreat(context.Background()); err != nil {
		t.Fatalf("retreat: %v", err)
	}

	if len(svc.stepCalls) != calls {
		t.Fatalf("preserving retreat must stay local, got %+v", svc.stepCalls)
	}
	if got := engine.ActiveStep(); got != 2 {
		t.Fatalf("expected cursor on step 2, got %d", got)
	}
	status, _ := engine.Status()
	if status.CurrentStep != 3 {
		t.Fatalf("expected remote progress to survive, got %d", status.CurrentStep)
	}
	if !status.Steps[1].Completed {
		t.Fatalf("expected step 2 to stay completed")
	}
}

func TestEngineGoToStepGuard(t *testing.T) {
	svc := newFakeService()
	engine := newTestEngine(t, svc)
	fetchStatus(t, engine)

	if err := engine.GoToStep(context.Background(), 4); !errors.Is(err, onboarding.ErrStepLocked) {
		t.Fatalf("expected forward jumps to be rejected, got %v", err)
	}
	if err := engine.GoToStep(context.Background(), 1); err != nil {
		t.Fatalf("go to reachable step: %v", err)
	}
}

func TestEngineCompleteIsAbsorbing(t *testing.T) {
	svc := newFakeService()
	engine := newTestEngine(t, svc)
	fetchStatus(t, engine)
	engine.SetStoreProfile(onboarding.StoreProfile{StoreName: "Baddie's"})

	if err := engine.Complete(context.Background()); err != nil {
		t.Fatalf("complete: %v", err)
	}

	status, _ := engine.Status()
	if !status.Completed {
		t.Fatalf("expected the wizard to be complete")
	}
	if _, ok := engine.StoreProfile(); ok {
		t.Fatalf("expected drafts to be discarded on completion")
	}

	if err := engine.Advance(context.Background(), 2, true, nil); !errors.Is(err, onboarding.ErrWizardRetired) {
		t.Fatalf("expected ErrWizardRetired, got %v", err)
	}
	if err := engine.Complete(context.Background()); !errors.Is(err, onboarding.ErrWizardRetired) {
		t.Fatalf("expected repeated completion to be rejected, got %v", err)
	}
	if svc.completeCalls != 1 {
		t.Fatalf("expected exactly one remote completion, got %d", svc.completeCalls)
	}
}

func TestEngineSkipIsAbsorbing(t *testing.T) {
	svc := newFakeService()
	engine := newTestEngine(t, svc)
	fetchStatus(t, engine)

	if err := engine.Skip(context.Background()); err != nil {
		t.Fatalf("skip: %v", err)
	}
	if err := engine.Skip(context.Background()); !errors.Is(err, onboarding.ErrWizardRetired) {
		t.Fatalf("expected ErrWizardRetired, got %v", err)
	}
	if svc.skipCalls != 1 {
		t.Fatalf("expected exactly one remote skip, got %d", svc.skipCalls)
	}
}

func TestEngineCompleteFailureIsRetryable(t *testing.T) {
	svc := newFakeService()
	svc.completeErr = errors.New("gateway timeout")
	engine := newTestEngine(t, svc)
	fetchStatus(t, engine)

	if err := engine.Complete(context.Background()); err == nil {
		t.Fatalf("expected the completion failure")
	}
	status, _ := engine.Status()
	if status.Completed {
		t.Fatalf("a failed completion must not retire the wizard")
	}

	svc.completeErr = nil
	if err := engine.Complete(context.Background()); err != nil {
		t.Fatalf("retry complete: %v", err)
	}
}

func TestEngineResetReturnsToPreMount(t *testing.T) {
	engine := newTestEngine(t, newFakeService())
	fetchStatus(t, engine)
	engine.SetPaymentSetup(onboarding.PaymentSetup{PaymentProvider: onboarding.ProviderStripe})

	engine.Reset()

	if _, ok := engine.Status(); ok {
		t.Fatalf("expected status to be cleared")
	}
	if _, ok := engine.PaymentSetup(); ok {
		t.Fatalf("expected drafts to be cleared")
	}
	if err := engine.Advance(context.Background(), 1, true, nil); !errors.Is(err, onboarding.ErrNoStatus) {
		t.Fatalf("expected ErrNoStatus after reset, got %v", err)
	}
}

func TestEngineEmitsActivity(t *testing.T) {
	svc := newFakeService()
	hook := &captureHook{}
	engine := newTestEngine(t, svc,
		onboarding.EngineWithActor("user-1"),
		onboarding.EngineWithActivityHooks(activity.Hooks{hook}),
	)
	fetchStatus(t, engine)

	if err := engine.Advance(context.Background(), 2, true, nil); err != nil {
		t.Fatalf("advance: %v", err)
	}
	if err := engine.Complete(context.Background()); err != nil {
		t.Fatalf("complete: %v", err)
	}

	want := []string{activity.VerbStepCompleted, activity.VerbOnboardCompleted}
	if len(hook.events) != len(want) {
		t.Fatalf("expected verbs %v, got %+v", want, hook.events)
	}
	for i := range want {
		if hook.events[i].Verb != want[i] {
			t.Fatalf("expected verbs %v, got %+v", want, hook.events)
		}
	}
	if hook.events[0].ActorID != "user-1" || hook.events[0].ObjectID != "2" {
		t.Fatalf("unexpected event: %+v", hook.events[0])
	}
}

type captureHook struct {
	events []activity.Event
}

func (h *captureHook) Notify(_ context.Context, event activity.Event) error {
	h.events = append(h.events, event)
	return nil
}

func TestEngineFullWizardRun(t *testing.T) {
	svc := newFakeService()
	engine := newTestEngine(t, svc)
	fetchStatus(t, engine)

	engine.SetStoreProfile(onboarding.StoreProfile{
		StoreName:   "Baddie's Vintage Finds",
		Description: "Curated vintage streetwear and thrift treasures.",
	})
	engine.SetPaymentSetup(onboarding.PaymentSetup{PaymentProvider: onboarding.ProviderStripe})
	engine.SetShippingOptions([]onboarding.ShippingOption{
		{Name: "Standard", Price: 4.99, EstimatedDays: "3-5"},
	})
	engine.SetProductData(onboarding.ProductData{
		ProductTitle: "90s Leather Jacket",
		Description:  "Buttery soft vintage leather jacket from the 90s.",
		Price:        45,
		Category:     "jackets",
	})

	for _, stepID := range []int{2, 3, 4, 5} {
		result, err := engine.Submit(context.Background(), stepID)
		if err != nil {
			t.Fatalf("submit step %d: %v", stepID, err)
		}
		if !result.Valid() {
			t.Fatalf("step %d rejected: %v", stepID, result.Errors)
		}
	}

	status, _ := engine.Status()
	if !status.Completed {
		t.Fatalf("expected every step complete, got %+v", status)
	}

	if err := engine.Complete(context.Background()); err != nil {
		t.Fatalf("complete: %v", err)
	}

	shipping := svc.stepCalls[2]
	options, ok := shipping.data["shippingOptions"].([]any)
	if !ok || len(options) != 1 {
		t.Fatalf("expected the shipping payload on the wire, got %+v", shipping.data)
	}
	option, _ := options[0].(map[string]any)
	if option["id"] == "" || option["id"] == nil {
		t.Fatalf("expected a generated shipping option id, got %+v", option)
	}
}
