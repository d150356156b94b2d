package store

import (
	"context"
	"errors"
	"time"

	"github.com/borealfin/portal/internal/portal/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
	// ErrReadOnly reports a write against an application frozen in a
	// terminal stage.
	ErrReadOnly = errors.New("store: application is read-only")
)

// Store is the root durable data access interface. Concrete drivers (sqlite)
// implement this. It exposes sub-repositories to keep concerns tidy and
// testable, and transactions for the multi-step profile merges.
type Store interface {
	Profiles() Profiles
	OTPs() OTPs
	Sessions() Sessions
	Applications() Applications
	Links() Links

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx executes fn within a transaction, rolling back when fn errors
	// and committing otherwise. This is the recommended entry point for
	// atomic multi-step operations (e.g., profile token merges).
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	// Close releases any underlying resources.
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store. It embeds the same repos but adds Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Profiles interface {
	// GetProfile returns the profile stored under a normalized phone key.
	GetProfile(ctx context.Context, normalizedPhone string) (domain.ClientProfile, error)

	// PutProfile writes the full profile record under its normalized key,
	// creating or replacing it.
	PutProfile(ctx context.Context, p domain.ClientProfile) error

	// HasAnyProfile reports whether any profile exists.
	HasAnyProfile(ctx context.Context) (bool, error)

	// HasSubmittedProfile reports whether any profile carries a submitted token.
	HasSubmittedProfile(ctx context.Context) (bool, error)

	// GetLastUsedPhone returns the display phone most recently upserted,
	// used for entry-form prefill. Empty string when never set.
	GetLastUsedPhone(ctx context.Context) (string, error)

	// SetLastUsedPhone records the display phone for prefill.
	SetLastUsedPhone(ctx context.Context, phone string) error
}

type OTPs interface {
	// PutPendingOTP stores the pending code, overwriting any prior pending
	// code. At most one pending code exists process-wide.
	PutPendingOTP(ctx context.Context, o domain.PendingOTP) error

	// GetPendingOTP returns the single pending code record.
	GetPendingOTP(ctx context.Context) (domain.PendingOTP, error)

	// DeletePendingOTP removes the pending code.
	DeletePendingOTP(ctx context.Context) error

	// DeleteExpiredOTPs removes pending codes past their window (housekeeping)
	// and reports how many were removed.
	DeleteExpiredOTPs(ctx context.Context, now time.Time) (int64, error)
}

type Sessions interface {
	// ListSessions returns all stored portal sessions, newest first.
	ListSessions(ctx context.Context) ([]domain.PortalSession, error)

	// ReplaceSessions overwrites the stored session set.
	ReplaceSessions(ctx context.Context, sessions []domain.PortalSession) error

	// ClearSessions removes every stored session.
	ClearSessions(ctx context.Context) error

	// DeleteExpiredSessions removes sessions past expiry (housekeeping) and
	// reports how many were removed.
	DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error)
}

type Applications interface {
	// GetSnapshot returns the stored wizard snapshot for a token.
	GetSnapshot(ctx context.Context, token string) (domain.Application, error)

	// PutSnapshot creates or replaces the snapshot for its token.
	// Writes against a snapshot already in a terminal stage fail with
	// ErrReadOnly.
	PutSnapshot(ctx context.Context, app domain.Application) error

	// DeleteSnapshot removes the snapshot for a token.
	DeleteSnapshot(ctx context.Context, token string) error

	// HasAnySnapshot reports whether any in-progress snapshot exists.
	HasAnySnapshot(ctx context.Context) (bool, error)

	// DeleteStaleSnapshots removes draft snapshots not touched since the
	// cutoff (housekeeping) and reports how many were removed.
	// Terminal-stage snapshots are kept as portal history.
	DeleteStaleSnapshots(ctx context.Context, cutoff time.Time) (int64, error)
}

type Links interface {
	// ListByParent returns the linked applications for a parent token in
	// insertion order.
	ListByParent(ctx context.Context, parentToken string) ([]domain.LinkedApplication, error)

	// Append adds a linked application unless its child token already
	// exists under the parent, in which case it is a no-op.
	Append(ctx context.Context, link domain.LinkedApplication) error
}
