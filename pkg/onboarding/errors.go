package onboarding

import "errors"

var (
	// ErrNoStatus is returned when a transition runs before FetchStatus
	// succeeded.
	ErrNoStatus = errors.New("onboarding: status not loaded")

	// ErrStepLocked is returned when a transition targets a step beyond the
	// first incomplete step.
	ErrStepLocked = errors.New("onboarding: step not yet reachable")

	// ErrWizardRetired is returned for transitions attempted after the wizard
	// reached its absorbing completed state.
	ErrWizardRetired = errors.New("onboarding: wizard already completed")

	// ErrAtFirstStep is returned when Retreat is called on step one.
	ErrAtFirstStep = errors.New("onboarding: already at first step")
)

// RejectionError carries a server-side business-rule rejection (HTTP 400).
// Local step state is never mutated when one is returned.
type RejectionError struct {
	Message string
}

func (e *RejectionError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return "onboarding: step rejected: " + e.Message
}
