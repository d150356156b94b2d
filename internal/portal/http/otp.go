package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/borealfin/portal/internal/portal/metrics"
	"github.com/borealfin/portal/internal/portal/service"
	"github.com/borealfin/portal/internal/portal/store"
	"github.com/borealfin/portal/pkg/httpx"
	"github.com/borealfin/portal/pkg/phonex"
	"github.com/borealfin/portal/pkg/slogx"
)

type OTPHandler struct {
	OTPs     *service.OTPService
	Profiles *service.ProfileService
	Sessions *service.SessionService
	Refresh  *service.RefreshCoordinator
}

type otpRequestBody struct {
	Phone string `json:"phone"`
}

type otpRequestResponse struct {
	Sent bool `json:"sent"`

	// Code is only populated when the dev echo shortcut is enabled.
	Code string `json:"code,omitempty"`
}

// HandleRequest godoc
//
//	@Summary		Request One-Time Code
//	@Description	Issues a fresh 6-digit code for the given phone and delivers it out of band.
//	@Description	A new request replaces any previously pending code.
//	@Tags			OTP
//	@Accept			json
//	@Produce		json
//	@Param			body	body		otpRequestBody		true	"phone"
//	@Success		200		{object}	otpRequestResponse	"sent"
//	@Failure		400		{object}	httpx.ErrorResponse	"error, error_description"
//	@Failure		500		{object}	httpx.ErrorResponse	"error, error_description"
//	@Router			/v1/otp/request [post].
func (h *OTPHandler) HandleRequest(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var body otpRequestBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	code, err := h.OTPs.Request(ctx, body.Phone)
	if errors.Is(err, service.ErrEmptyPhone) {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "phone must contain digits")
		return
	}
	if err != nil {
		log.Error("one-time code request failed", "error", err)
		httpx.WriteError(w, http.StatusInternalServerError, "server_error", "could not issue code")
		return
	}

	metrics.OTPRequests.Inc()
	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, otpRequestResponse{Sent: true, Code: code})
}

type otpVerifyBody struct {
	Phone string `json:"phone"`
	Code  string `json:"code"`
}

type otpVerifyResponse struct {
	Verified    bool             `json:"verified"`
	AccessToken string           `json:"accessToken,omitempty"`
	NextStep    service.NextStep `json:"nextStep"`
}

// HandleVerify godoc
//
//	@Summary		Verify One-Time Code
//	@Description	Checks the submitted code against the pending one. On success the
//	@Description	matching application token gains a verified portal session, a portal
//	@Description	access token is minted, and the client is told where to go next.
//	@Tags			OTP
//	@Accept			json
//	@Produce		json
//	@Param			body	body		otpVerifyBody		true	"phone, code"
//	@Success		200		{object}	otpVerifyResponse	"verified, accessToken, nextStep"
//	@Failure		400		{object}	httpx.ErrorResponse	"error, error_description"
//	@Failure		401		{object}	otpVerifyResponse	"verified=false"
//	@Router			/v1/otp/verify [post].
func (h *OTPHandler) HandleVerify(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var body otpVerifyBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if !phonex.IsNormalizable(body.Phone) || body.Code == "" {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "phone and code are required")
		return
	}

	if !h.OTPs.Verify(ctx, body.Phone, body.Code) {
		metrics.OTPVerifications.WithLabelValues("failure").Inc()
		httpx.NoCache(w)
		httpx.WriteJSON(w, http.StatusUnauthorized, otpVerifyResponse{Verified: false})
		return
	}
	metrics.OTPVerifications.WithLabelValues("success").Inc()

	// Fresh login: a previously latched refresh failure no longer applies.
	h.Refresh.Reset()

	profile, err := h.Profiles.Get(ctx, body.Phone)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		log.Warn("profile lookup after verify failed", "error", err)
	}
	next := service.ResolveOTPNextStep(profile)

	resp := otpVerifyResponse{Verified: true, NextStep: next}
	if next.Token != "" {
		token, err := h.Sessions.MarkVerified(ctx, body.Phone, next.Token)
		if err != nil {
			log.Error("portal session mint failed", "error", err)
			httpx.WriteError(w, http.StatusInternalServerError, "server_error", "could not establish session")
			return
		}
		resp.AccessToken = token
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, resp)
}
