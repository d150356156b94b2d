package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/borealfin/portal/internal/portal/service"
	"github.com/borealfin/portal/internal/portal/store"
	"github.com/borealfin/portal/pkg/httpx"
)

type RoutingHandler struct {
	Profiles     *service.ProfileService
	Applications *service.ApplicationService
	Sessions     *service.SessionService
	Guard        *service.GuardService
}

type bootResponse struct {
	Route string `json:"route"`
}

// HandleBoot godoc
//
//	@Summary		Resolve Boot Route
//	@Description	Picks the landing route: the portal for clients with a submitted
//	@Description	application, the resume page for an in-progress one, the first
//	@Description	wizard step otherwise.
//	@Tags			Routing
//	@Produce		json
//	@Success		200	{object}	bootResponse	"route"
//	@Router			/v1/boot [get].
func (h *RoutingHandler) HandleBoot(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	route := service.ResolveBootRoute(
		h.Profiles.HasSubmittedProfile(ctx),
		h.Applications.HasAnySnapshot(ctx),
	)
	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, bootResponse{Route: route})
}

// HandleResume godoc
//
//	@Summary		Resolve Resume Route
//	@Description	Returns the wizard route for an in-progress application, clamped to
//	@Description	a valid step. Unknown tokens resume at step 1.
//	@Tags			Routing
//	@Produce		json
//	@Param			token	path		string			true	"application token"
//	@Success		200		{object}	bootResponse	"route"
//	@Router			/v1/resume/{token} [get].
func (h *RoutingHandler) HandleResume(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	app, err := h.Applications.Get(ctx, r.PathValue("token"))
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		httpx.WriteError(w, http.StatusInternalServerError, "server_error", "could not load application")
		return
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, bootResponse{Route: service.ResumeRoute(app)})
}

type guardBody struct {
	Offline       bool   `json:"offline"`
	Authenticated bool   `json:"authenticated"`
	Path          string `json:"path"`
}

type guardResponse struct {
	Action      service.GuardAction `json:"action"`
	Requirement string              `json:"requirement,omitempty"`
}

// HandleGuard godoc
//
//	@Summary		Resolve Session Guard Action
//	@Description	Decides what an unauthenticated navigation gets: proceed, one reload
//	@Description	to let async auth state land, or a redirect to the login entry.
//	@Tags			Routing
//	@Accept			json
//	@Produce		json
//	@Param			body	body		guardBody		true	"offline, authenticated, path"
//	@Success		200		{object}	guardResponse	"action"
//	@Failure		400		{object}	httpx.ErrorResponse	"error, error_description"
//	@Router			/v1/guard [post].
func (h *RoutingHandler) HandleGuard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var body guardBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	action := h.Guard.Resolve(ctx, service.GuardInput{
		Offline:       body.Offline,
		Authenticated: body.Authenticated,
	})

	resp := guardResponse{Action: action}
	if body.Path != "" {
		req, _ := service.RouteAuthRequirement(body.Path, r.URL.Query())
		switch req {
		case service.RequirePortalSession:
			resp.Requirement = "portal_session"
		case service.RequireCachedApplication:
			resp.Requirement = "cached_application"
		}
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, resp)
}

type statusResponse struct {
	Token      string `json:"token"`
	Stage      string `json:"stage"`
	SignStatus string `json:"signStatus,omitempty"`
	UpdatedAt  string `json:"updatedAt,omitempty"`
}

// HandleStatus godoc
//
//	@Summary		Application Status
//	@Description	Returns the lifecycle stage for a submitted application. Requires a
//	@Description	verified portal session covering the token in the query string.
//	@Tags			Routing
//	@Produce		json
//	@Param			token	query		string			true	"application token"
//	@Success		200		{object}	statusResponse	"token, stage"
//	@Failure		401		{object}	httpx.ErrorResponse	"error, error_description"
//	@Failure		404		{object}	httpx.ErrorResponse	"error, error_description"
//	@Router			/v1/status [get].
func (h *RoutingHandler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	token := r.URL.Query().Get("token")
	if token == "" {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "token is required")
		return
	}
	if !h.Sessions.HasSession(ctx, token) {
		httpx.WriteError(w, http.StatusUnauthorized, "session_required", "no verified portal session for this token")
		return
	}

	app, err := h.Applications.Get(ctx, token)
	if errors.Is(err, store.ErrNotFound) {
		httpx.WriteError(w, http.StatusNotFound, "not_found", "unknown application token")
		return
	}
	if err != nil {
		httpx.WriteError(w, http.StatusInternalServerError, "server_error", "could not load application")
		return
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, statusResponse{
		Token:      token,
		Stage:      string(app.Stage),
		SignStatus: string(app.SignStatus),
		UpdatedAt:  app.UpdatedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
	})
}
