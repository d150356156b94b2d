package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/borealfin/portal/internal/portal/domain"
	"github.com/borealfin/portal/internal/portal/store"
	"github.com/borealfin/portal/pkg/idx"
	"github.com/borealfin/portal/pkg/slogx"
)

var (
	// ErrMissingDocuments blocks submission while required documents are
	// absent and the client has not opted to defer them.
	ErrMissingDocuments = errors.New("missing_required_documents")

	// ErrApplicationReadOnly mirrors store.ErrReadOnly for callers of the
	// service layer.
	ErrApplicationReadOnly = errors.New("application_read_only")
)

// StaffBackend receives the finished submission. Opaque: the portal depends
// only on success/failure and the returned application identifier.
type StaffBackend interface {
	SubmitApplication(ctx context.Context, token, idempotencyKey string, payload SubmissionPayload) (applicationID string, err error)
}

// ApplicationService owns the wizard snapshots: create, autosave, fetch,
// and the final submission hand-off to the staff backend.
type ApplicationService struct {
	Store    store.Store
	Profiles *ProfileService
	Linked   *LinkedService
	Sessions *SessionService
	Backend  StaffBackend

	// Now is the clock, overridable in tests. Defaults to time.Now.
	Now func() time.Time
}

func (s *ApplicationService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// Create mints a fresh draft application with a new token and persists its
// initial snapshot. When a phone is given the token is merged into that
// client's profile.
func (s *ApplicationService) Create(ctx context.Context, phone string) (domain.Application, error) {
	app := domain.Application{
		ApplicationToken: idx.New().String(),
		CurrentStep:      1,
		Stage:            domain.StageDraft,
		UpdatedAt:        s.now(),
	}
	app.Normalize()

	if err := s.Store.Applications().PutSnapshot(ctx, app); err != nil {
		return domain.Application{}, fmt.Errorf("create application: %w", err)
	}

	if phone != "" {
		if _, err := s.Profiles.Upsert(ctx, phone, app.ApplicationToken); err != nil && !errors.Is(err, ErrEmptyPhone) {
			slogx.FromContext(ctx).Warn("profile merge on create failed", "error", err)
		}
	}
	return app, nil
}

// Get returns the snapshot for token, normalized.
func (s *ApplicationService) Get(ctx context.Context, token string) (domain.Application, error) {
	return s.Store.Applications().GetSnapshot(ctx, token)
}

// Save autosaves the wizard state. Terminal-stage applications are frozen
// and reject writes.
func (s *ApplicationService) Save(ctx context.Context, app domain.Application) error {
	if app.ApplicationToken == "" {
		return errors.New("empty application token")
	}
	app.Normalize()
	app.UpdatedAt = s.now()
	err := s.Store.Applications().PutSnapshot(ctx, app)
	if errors.Is(err, store.ErrReadOnly) {
		return ErrApplicationReadOnly
	}
	return err
}

// Delete drops the snapshot for token.
func (s *ApplicationService) Delete(ctx context.Context, token string) error {
	return s.Store.Applications().DeleteSnapshot(ctx, token)
}

// HasAnySnapshot reports whether any in-progress application exists.
// Storage failures degrade to false with a warning.
func (s *ApplicationService) HasAnySnapshot(ctx context.Context) bool {
	ok, err := s.Store.Applications().HasAnySnapshot(ctx)
	if err != nil {
		slogx.FromContext(ctx).Warn("snapshot existence check failed", "error", err)
		return false
	}
	return ok
}

// SubmitResult is the outcome of a successful submission.
type SubmitResult struct {
	ApplicationID string
	Redirect      string
}

// Submit finalizes the application for token: validates documents, builds
// the payload, hands it to the staff backend under a fresh idempotency key,
// then records the submission on the client's profile. A closing-costs
// child application is spawned and linked when the client asked for one.
func (s *ApplicationService) Submit(ctx context.Context, phone, token string) (SubmitResult, error) {
	app, err := s.Store.Applications().GetSnapshot(ctx, token)
	if err != nil {
		return SubmitResult{}, fmt.Errorf("load application: %w", err)
	}
	if app.Stage.Terminal() || app.Stage == domain.StageSubmitted {
		return SubmitResult{}, ErrApplicationReadOnly
	}

	if ShouldBlockForMissingDocuments(app) {
		return SubmitResult{}, ErrMissingDocuments
	}

	payload, err := BuildSubmissionPayload(app)
	if err != nil {
		return SubmitResult{}, err
	}

	applicationID, err := s.Backend.SubmitApplication(ctx, token, uuid.NewString(), payload)
	if err != nil {
		return SubmitResult{}, fmt.Errorf("submit upstream: %w", err)
	}

	app.ApplicationID = applicationID
	app.Stage = domain.StageSubmitted
	app.UpdatedAt = s.now()
	if err := s.Store.Applications().PutSnapshot(ctx, app); err != nil {
		slogx.FromContext(ctx).Warn("post-submit snapshot save failed", "error", err)
	}

	if phone != "" {
		if _, err := s.Profiles.MarkSubmitted(ctx, phone, token); err != nil {
			slogx.FromContext(ctx).Warn("profile submit mark failed", "error", err)
		}
	}

	if app.RequiresClosingCostFunding {
		if err := s.spawnClosingCosts(ctx, app, phone); err != nil {
			slogx.FromContext(ctx).Warn("closing-costs spawn failed", "error", err)
		}
	}

	return SubmitResult{
		ApplicationID: applicationID,
		Redirect:      PostSubmitRedirect(token, applicationID, s.Sessions.HasSession(ctx, token)),
	}, nil
}

// spawnClosingCosts creates and links the child application that funds
// closing costs for a just-submitted parent.
func (s *ApplicationService) spawnClosingCosts(ctx context.Context, parent domain.Application, phone string) error {
	child := domain.Application{
		ApplicationToken: idx.New().String(),
		Business:         parent.Business,
		Applicant:        parent.Applicant,
		CurrentStep:      1,
		Stage:            domain.StageDraft,
		UpdatedAt:        s.now(),
	}
	child.Normalize()

	if err := s.Store.Applications().PutSnapshot(ctx, child); err != nil {
		return err
	}
	if err := s.Linked.Link(ctx, parent.ApplicationToken, child.ApplicationToken, domain.LinkClosingCosts); err != nil {
		return err
	}
	if phone != "" {
		if _, err := s.Profiles.Upsert(ctx, phone, child.ApplicationToken); err != nil && !errors.Is(err, ErrEmptyPhone) {
			return err
		}
	}
	return nil
}
