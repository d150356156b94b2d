package service

import (
	"fmt"

	"github.com/borealfin/portal/internal/portal/domain"
)

// Portal route targets.
const (
	RoutePortal    = "/portal"
	RouteResume    = "/resume"
	RouteFirstStep = "/apply/step-1"
)

// ResolveBootRoute picks the landing route on startup: a submitted profile
// beats an in-progress application beats a first visit. Connectivity is
// deliberately not an input here; the chosen route degrades on its own.
func ResolveBootRoute(hasSubmitted, hasCached bool) string {
	switch {
	case hasSubmitted:
		return RoutePortal
	case hasCached:
		return RouteResume
	default:
		return RouteFirstStep
	}
}

// NextStepAction is where a freshly verified client should land.
type NextStepAction string

const (
	// NextStepStart begins a new application.
	NextStepStart NextStepAction = "start"
	// NextStepResume continues an in-progress application.
	NextStepResume NextStepAction = "resume"
	// NextStepPortal views a submitted application's status.
	NextStepPortal NextStepAction = "portal"
)

// NextStep pairs the action with the token it applies to (empty for start).
type NextStep struct {
	Action NextStepAction `json:"action"`
	Token  string         `json:"token,omitempty"`
}

// ResolveOTPNextStep routes a client after one-time-code verification. A
// submitted token wins over an in-progress one; with neither, start fresh.
func ResolveOTPNextStep(profile domain.ClientProfile) NextStep {
	if token := profile.LatestSubmittedToken(); token != "" {
		return NextStep{Action: NextStepPortal, Token: token}
	}
	if token := profile.LatestToken(); token != "" {
		return NextStep{Action: NextStepResume, Token: token}
	}
	return NextStep{Action: NextStepStart}
}

// ResumeRoute returns the wizard route for an in-progress application,
// clamping the stored step into the valid range. A missing or nonsense
// step lands on step 1.
func ResumeRoute(app domain.Application) string {
	step := app.CurrentStep
	if step < 1 {
		step = 1
	}
	if step > domain.MaxWizardStep {
		step = domain.MaxWizardStep
	}
	return fmt.Sprintf("/apply/step-%d", step)
}
