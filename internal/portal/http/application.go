package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/borealfin/portal/internal/portal/domain"
	"github.com/borealfin/portal/internal/portal/metrics"
	"github.com/borealfin/portal/internal/portal/service"
	"github.com/borealfin/portal/internal/portal/store"
	"github.com/borealfin/portal/internal/portal/upstream"
	"github.com/borealfin/portal/pkg/httpx"
	"github.com/borealfin/portal/pkg/slogx"
)

type ApplicationHandler struct {
	Applications *service.ApplicationService
	Linked       *service.LinkedService
	Retries      *service.UploadRetryQueue
	ESign        *upstream.ESignClient
}

type createApplicationBody struct {
	Phone string `json:"phone,omitempty"`
}

type createApplicationResponse struct {
	Token string `json:"token"`
}

// HandleCreate godoc
//
//	@Summary		Create Application
//	@Description	Mints a fresh draft application and returns its token. When a phone
//	@Description	is supplied the token is merged into that client's profile.
//	@Tags			Applications
//	@Accept			json
//	@Produce		json
//	@Param			body	body		createApplicationBody		false	"phone"
//	@Success		201		{object}	createApplicationResponse	"token"
//	@Failure		500		{object}	httpx.ErrorResponse			"error, error_description"
//	@Router			/v1/applications [post].
func (h *ApplicationHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var body createApplicationBody
	if r.Body != nil {
		// Body is optional; a decode failure just means no phone.
		_ = json.NewDecoder(r.Body).Decode(&body)
	}

	app, err := h.Applications.Create(ctx, body.Phone)
	if err != nil {
		slogx.FromContext(ctx).Error("application create failed", "error", err)
		httpx.WriteError(w, http.StatusInternalServerError, "server_error", "could not create application")
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, createApplicationResponse{Token: app.ApplicationToken})
}

// HandleGet godoc
//
//	@Summary		Fetch Application
//	@Description	Returns the stored wizard snapshot for a token.
//	@Tags			Applications
//	@Produce		json
//	@Param			token	path		string				true	"application token"
//	@Success		200		{object}	domain.Application	"snapshot"
//	@Failure		404		{object}	httpx.ErrorResponse	"error, error_description"
//	@Router			/v1/applications/{token} [get].
func (h *ApplicationHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	app, err := h.Applications.Get(ctx, r.PathValue("token"))
	if errors.Is(err, store.ErrNotFound) {
		httpx.WriteError(w, http.StatusNotFound, "not_found", "unknown application token")
		return
	}
	if err != nil {
		httpx.WriteError(w, http.StatusInternalServerError, "server_error", "could not load application")
		return
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, app)
}

// HandleSave godoc
//
//	@Summary		Autosave Application
//	@Description	Replaces the wizard snapshot for a token. Applications in a terminal
//	@Description	stage are read-only portal history and reject writes.
//	@Tags			Applications
//	@Accept			json
//	@Produce		json
//	@Param			token	path		string				true	"application token"
//	@Param			body	body		domain.Application	true	"snapshot"
//	@Success		204		"saved"
//	@Failure		400		{object}	httpx.ErrorResponse	"error, error_description"
//	@Failure		409		{object}	httpx.ErrorResponse	"error, error_description"
//	@Router			/v1/applications/{token} [put].
func (h *ApplicationHandler) HandleSave(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var app domain.Application
	if err := json.NewDecoder(r.Body).Decode(&app); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	app.ApplicationToken = r.PathValue("token")

	err := h.Applications.Save(ctx, app)
	if errors.Is(err, service.ErrApplicationReadOnly) {
		httpx.WriteError(w, http.StatusConflict, "read_only", "application is in a terminal stage")
		return
	}
	if err != nil {
		slogx.FromContext(ctx).Error("application save failed", "error", err)
		httpx.WriteError(w, http.StatusInternalServerError, "server_error", "could not save application")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type missingDocumentsResponse struct {
	Missing []domain.DocumentRequirement `json:"missing"`
	Blocked bool                         `json:"blocked"`
}

// HandleMissingDocuments godoc
//
//	@Summary		Missing Required Documents
//	@Description	Lists the required document types the application has not satisfied,
//	@Description	after the funding-amount bracket filter, and whether submission is blocked.
//	@Tags			Applications
//	@Produce		json
//	@Param			token	path		string						true	"application token"
//	@Success		200		{object}	missingDocumentsResponse	"missing, blocked"
//	@Failure		404		{object}	httpx.ErrorResponse			"error, error_description"
//	@Router			/v1/applications/{token}/missing-documents [get].
func (h *ApplicationHandler) HandleMissingDocuments(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	app, err := h.Applications.Get(ctx, r.PathValue("token"))
	if errors.Is(err, store.ErrNotFound) {
		httpx.WriteError(w, http.StatusNotFound, "not_found", "unknown application token")
		return
	}
	if err != nil {
		httpx.WriteError(w, http.StatusInternalServerError, "server_error", "could not load application")
		return
	}

	missing := service.MissingRequiredDocs(app)
	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, missingDocumentsResponse{
		Missing: missing,
		Blocked: service.ShouldBlockForMissingDocuments(app),
	})
}

type submitResponse struct {
	ApplicationID string `json:"applicationId,omitempty"`
	Redirect      string `json:"redirect"`
}

// HandleSubmit godoc
//
//	@Summary		Submit Application
//	@Description	Finalizes the application: validates documents, builds the submission
//	@Description	payload and hands it to the staff backend under a fresh idempotency key.
//	@Tags			Applications
//	@Produce		json
//	@Security		BearerAuth
//	@Param			token	path		string				true	"application token"
//	@Success		200		{object}	submitResponse		"applicationId, redirect"
//	@Failure		404		{object}	httpx.ErrorResponse	"error, error_description"
//	@Failure		409		{object}	httpx.ErrorResponse	"error, error_description"
//	@Failure		422		{object}	httpx.ErrorResponse	"error, error_description"
//	@Failure		502		{object}	httpx.ErrorResponse	"error, error_description"
//	@Router			/v1/applications/{token}/submit [post].
func (h *ApplicationHandler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	token := r.PathValue("token")
	result, err := h.Applications.Submit(ctx, httpx.PhoneFromCtx(ctx), token)
	switch {
	case errors.Is(err, store.ErrNotFound):
		metrics.Submissions.WithLabelValues("failure").Inc()
		httpx.WriteError(w, http.StatusNotFound, "not_found", "unknown application token")
		return
	case errors.Is(err, service.ErrApplicationReadOnly):
		metrics.Submissions.WithLabelValues("failure").Inc()
		httpx.WriteError(w, http.StatusConflict, "read_only", "application was already submitted")
		return
	case errors.Is(err, service.ErrMissingDocuments):
		metrics.Submissions.WithLabelValues("blocked").Inc()
		httpx.WriteError(w, http.StatusUnprocessableEntity, "missing_documents", "required documents are missing")
		return
	case errors.Is(err, service.ErrNoProductSelected):
		metrics.Submissions.WithLabelValues("failure").Inc()
		httpx.WriteError(w, http.StatusUnprocessableEntity, "no_product_selected", "a product must be selected before submitting")
		return
	case err != nil:
		metrics.Submissions.WithLabelValues("failure").Inc()
		log.Error("application submit failed", "error", err)
		httpx.WriteError(w, http.StatusBadGateway, "upstream_error", "submission could not be delivered")
		return
	}

	metrics.Submissions.WithLabelValues("success").Inc()
	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, submitResponse{
		ApplicationID: result.ApplicationID,
		Redirect:      result.Redirect,
	})
}

type linksResponse struct {
	Links []domain.LinkedApplication `json:"links"`
}

// HandleListLinks godoc
//
//	@Summary		List Linked Applications
//	@Description	Returns the child applications spawned from a parent token, oldest first.
//	@Tags			Applications
//	@Produce		json
//	@Param			token	path		string			true	"parent application token"
//	@Success		200		{object}	linksResponse	"links"
//	@Router			/v1/applications/{token}/links [get].
func (h *ApplicationHandler) HandleListLinks(w http.ResponseWriter, r *http.Request) {
	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, linksResponse{
		Links: h.Linked.List(r.Context(), r.PathValue("token")),
	})
}

type addLinkBody struct {
	Token  string `json:"token"`
	Reason string `json:"reason"`
}

// HandleAddLink godoc
//
//	@Summary		Link Child Application
//	@Description	Records a child application under a parent. Linking an already known
//	@Description	child is a no-op.
//	@Tags			Applications
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			token	path	string		true	"parent application token"
//	@Param			body	body	addLinkBody	true	"token, reason"
//	@Success		204		"linked"
//	@Failure		400		{object}	httpx.ErrorResponse	"error, error_description"
//	@Router			/v1/applications/{token}/links [post].
func (h *ApplicationHandler) HandleAddLink(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var body addLinkBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	err := h.Linked.Link(ctx, r.PathValue("token"), body.Token, domain.LinkReason(body.Reason))
	if errors.Is(err, service.ErrBadLinkReason) {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "unknown link reason")
		return
	}
	if err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "could not record link")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type signingURLResponse struct {
	SigningURL string `json:"signingUrl"`
}

// HandleSigningURL godoc
//
//	@Summary		Obtain Signing URL
//	@Description	Fetches the embedded e-signature URL for an application.
//	@Tags			Applications
//	@Produce		json
//	@Security		BearerAuth
//	@Param			token	path		string				true	"application token"
//	@Success		200		{object}	signingURLResponse	"signingUrl"
//	@Failure		502		{object}	httpx.ErrorResponse	"error, error_description"
//	@Router			/v1/applications/{token}/signing-url [post].
func (h *ApplicationHandler) HandleSigningURL(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	url, err := h.ESign.SigningURL(ctx, r.PathValue("token"))
	if err != nil {
		slogx.FromContext(ctx).Error("signing url fetch failed", "error", err)
		httpx.WriteError(w, http.StatusBadGateway, "upstream_error", "could not obtain signing url")
		return
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, signingURLResponse{SigningURL: url})
}

type signStatusResponse struct {
	Status string `json:"status"`
}

// HandleSignStatus godoc
//
//	@Summary		Poll Signing Status
//	@Description	Returns the e-signature provider's status for an application:
//	@Description	not_initiated, signed or failed.
//	@Tags			Applications
//	@Produce		json
//	@Param			token	path		string				true	"application token"
//	@Success		200		{object}	signStatusResponse	"status"
//	@Failure		502		{object}	httpx.ErrorResponse	"error, error_description"
//	@Router			/v1/applications/{token}/sign-status [get].
func (h *ApplicationHandler) HandleSignStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	status, err := h.ESign.SignStatus(ctx, r.PathValue("token"))
	if err != nil {
		slogx.FromContext(ctx).Error("sign status poll failed", "error", err)
		httpx.WriteError(w, http.StatusBadGateway, "upstream_error", "could not poll signing status")
		return
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, signStatusResponse{Status: string(status)})
}

type retryUploadsResponse struct {
	Retried   int `json:"retried"`
	Remaining int `json:"remaining"`
}

// HandleRetryUploads godoc
//
//	@Summary		Drain Upload Retry Queue
//	@Description	Retries every queued failed document upload once. Items failing again
//	@Description	are re-queued with their attempt counter bumped.
//	@Tags			Applications
//	@Produce		json
//	@Success		200	{object}	retryUploadsResponse	"retried, remaining"
//	@Router			/v1/uploads/retry [post].
func (h *ApplicationHandler) HandleRetryUploads(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	retried := h.Retries.Drain(ctx, h.retryUpload)

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, retryUploadsResponse{
		Retried:   retried,
		Remaining: h.Retries.Len(),
	})
}

// retryUpload re-attaches a failed document by re-saving the snapshot it
// belongs to; the snapshot already carries the document content.
func (h *ApplicationHandler) retryUpload(ctx context.Context, item service.FailedUpload) error {
	app, err := h.Applications.Get(ctx, item.Token)
	if err != nil {
		metrics.UploadRetries.WithLabelValues("failure").Inc()
		return err
	}
	if err := h.Applications.Save(ctx, app); err != nil {
		metrics.UploadRetries.WithLabelValues("failure").Inc()
		return err
	}
	metrics.UploadRetries.WithLabelValues("success").Inc()
	return nil
}
