package service

import (
	"context"
	"sync"

	"github.com/borealfin/portal/pkg/slogx"
)

// DefaultRetryQueueCap bounds the upload retry queue. Overflow drops the
// oldest entry; a client with this many failed uploads has bigger problems
// than the dropped one.
const DefaultRetryQueueCap = 32

// FailedUpload is one document upload that did not reach the backend.
type FailedUpload struct {
	Token        string
	DocumentType string
	Attempts     int
}

// UploadFunc retries a single failed upload.
type UploadFunc func(ctx context.Context, item FailedUpload) error

// UploadRetryQueue collects failed document uploads for a later drain. It
// has no scheduler: drains happen only when explicitly asked for, on user
// action or a connectivity change.
type UploadRetryQueue struct {
	Cap int

	mu    sync.Mutex
	items []FailedUpload
}

func (q *UploadRetryQueue) cap() int {
	if q.Cap > 0 {
		return q.Cap
	}
	return DefaultRetryQueueCap
}

// Enqueue adds a failed upload. When the queue is full the oldest entry is
// dropped to make room.
func (q *UploadRetryQueue) Enqueue(item FailedUpload) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.items) >= q.cap() {
		q.items = q.items[1:]
	}
	q.items = append(q.items, item)
}

// Len reports how many uploads are waiting.
func (q *UploadRetryQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Drain retries every queued upload once, in order. Items that fail again
// are re-queued with their attempt counter bumped. Returns how many
// succeeded.
func (q *UploadRetryQueue) Drain(ctx context.Context, upload UploadFunc) int {
	q.mu.Lock()
	pending := q.items
	q.items = nil
	q.mu.Unlock()

	succeeded := 0
	for _, item := range pending {
		if err := upload(ctx, item); err != nil {
			item.Attempts++
			slogx.FromContext(ctx).Warn("upload retry failed",
				"document_type", item.DocumentType,
				"attempts", item.Attempts,
				"error", err)
			q.Enqueue(item)
			continue
		}
		succeeded++
	}
	return succeeded
}
