package http

import (
	"net/http"

	"github.com/borealfin/portal/internal/portal/metrics"
	"github.com/borealfin/portal/internal/portal/service"
	"github.com/borealfin/portal/pkg/httpx"
)

type SessionHandler struct {
	Refresh *service.RefreshCoordinator
}

type refreshResponse struct {
	Refreshed bool `json:"refreshed"`

	// Latched reports that a prior refresh failed and further attempts are
	// suppressed until the next login.
	Latched bool `json:"latched,omitempty"`
}

// HandleRefresh godoc
//
//	@Summary		Refresh Client Session
//	@Description	Refreshes the upstream session. Concurrent callers share a single
//	@Description	in-flight refresh; after the first failure all attempts short-circuit
//	@Description	until a fresh one-time-code login.
//	@Tags			Session
//	@Produce		json
//	@Success		200	{object}	refreshResponse	"refreshed"
//	@Router			/v1/session/refresh [post].
func (h *SessionHandler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	ok := h.Refresh.RefreshOnce(r.Context())
	if ok {
		metrics.SessionRefreshes.WithLabelValues("success").Inc()
	} else {
		metrics.SessionRefreshes.WithLabelValues("failure").Inc()
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, refreshResponse{
		Refreshed: ok,
		Latched:   !ok && h.Refresh.Failed(),
	})
}
