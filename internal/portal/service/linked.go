package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/borealfin/portal/internal/portal/domain"
	"github.com/borealfin/portal/internal/portal/store"
	"github.com/borealfin/portal/pkg/slogx"
)

// ErrBadLinkReason rejects a link whose reason is outside the known set.
var ErrBadLinkReason = errors.New("bad_link_reason")

// LinkedService tracks child applications spawned from a parent, such as a
// closing-costs application raised alongside the main one.
type LinkedService struct {
	Store store.Store

	// Now is the clock, overridable in tests. Defaults to time.Now.
	Now func() time.Time
}

func (s *LinkedService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// Link records child token under parent token. Linking an already known
// child is a no-op. The link list per parent keeps insertion order.
func (s *LinkedService) Link(ctx context.Context, parentToken, token string, reason domain.LinkReason) error {
	if parentToken == "" || token == "" {
		return errors.New("empty link token")
	}
	if !reason.Valid() {
		return fmt.Errorf("%w: %q", ErrBadLinkReason, reason)
	}
	return s.Store.Links().Append(ctx, domain.LinkedApplication{
		ParentToken: parentToken,
		Token:       token,
		Reason:      reason,
		CreatedAt:   s.now(),
	})
}

// List returns the linked applications for a parent, oldest first. Storage
// failures degrade to an empty list with a warning.
func (s *LinkedService) List(ctx context.Context, parentToken string) []domain.LinkedApplication {
	links, err := s.Store.Links().ListByParent(ctx, parentToken)
	if err != nil {
		slogx.FromContext(ctx).Warn("linked application read failed", "error", err)
		return nil
	}
	return links
}
