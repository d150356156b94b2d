package http

import (
	"errors"
	"net/http"

	"github.com/borealfin/portal/internal/portal/service"
	"github.com/borealfin/portal/internal/portal/store"
	"github.com/borealfin/portal/pkg/httpx"
)

type ProfileHandler struct {
	Profiles *service.ProfileService
}

type profileResponse struct {
	Phone              string   `json:"phone"`
	ApplicationTokens  []string `json:"applicationTokens"`
	LastActiveToken    string   `json:"lastActiveToken,omitempty"`
	SubmittedTokens    []string `json:"submittedTokens,omitempty"`
	LastSubmittedToken string   `json:"lastSubmittedToken,omitempty"`
}

// HandleGet godoc
//
//	@Summary		Fetch Client Profile
//	@Description	Returns the authenticated client's profile: every application token
//	@Description	they have touched, newest first, and which ones were submitted.
//	@Tags			Profile
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{object}	profileResponse		"profile"
//	@Failure		401	{object}	httpx.ErrorResponse	"error, error_description"
//	@Failure		404	{object}	httpx.ErrorResponse	"error, error_description"
//	@Router			/v1/profile [get].
func (h *ProfileHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	phone := httpx.PhoneFromCtx(ctx)
	if phone == "" {
		httpx.WriteError(w, http.StatusUnauthorized, "invalid_token", "no phone bound to session")
		return
	}

	profile, err := h.Profiles.Get(ctx, phone)
	if errors.Is(err, store.ErrNotFound) {
		httpx.WriteError(w, http.StatusNotFound, "not_found", "no profile for this phone")
		return
	}
	if err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "unusable phone")
		return
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, profileResponse{
		Phone:              profile.Phone,
		ApplicationTokens:  profile.ApplicationTokens,
		LastActiveToken:    profile.LastActiveToken,
		SubmittedTokens:    profile.SubmittedTokens,
		LastSubmittedToken: profile.LastSubmittedToken,
	})
}

type prefillResponse struct {
	Phone string `json:"phone"`
}

// HandlePrefill godoc
//
//	@Summary		Last Used Phone
//	@Description	Returns the display phone from the most recent profile write, for
//	@Description	prefilling the login form. Empty when no client has been seen yet.
//	@Tags			Profile
//	@Produce		json
//	@Success		200	{object}	prefillResponse	"phone"
//	@Router			/v1/profile/prefill [get].
func (h *ProfileHandler) HandlePrefill(w http.ResponseWriter, r *http.Request) {
	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, prefillResponse{
		Phone: h.Profiles.LastUsedPhone(r.Context()),
	})
}
