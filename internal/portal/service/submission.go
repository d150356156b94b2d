package service

import (
	"errors"
	"fmt"
	"sort"

	"github.com/borealfin/portal/internal/portal/domain"
)

// ErrNoProductSelected rejects a submission build without a chosen product;
// the payload is keyed by the lender product and cannot exist without one.
var ErrNoProductSelected = errors.New("no_product_selected")

// MissingRequiredDocs returns the required document types the application
// has not satisfied. The requirement list keyed "aggregated" wins over the
// selected product's own list; with neither key nothing is required.
// Requirements outside the applicant's funding-amount bracket do not count.
func MissingRequiredDocs(app domain.Application) []domain.DocumentRequirement {
	reqs, ok := app.ProductRequirements[domain.AggregatedRequirementsKey]
	if !ok {
		reqs, ok = app.ProductRequirements[app.SelectedProductID]
	}
	if !ok {
		return nil
	}

	var missing []domain.DocumentRequirement
	for _, req := range reqs {
		if !req.Required || !req.AppliesToAmount(app.FundingAmount) {
			continue
		}
		if _, uploaded := app.Documents[req.DocumentType]; uploaded {
			continue
		}
		missing = append(missing, req)
	}
	return missing
}

// ShouldBlockForMissingDocuments reports whether submission must be held
// back for documents. An explicit defer opt-out always clears the block.
func ShouldBlockForMissingDocuments(app domain.Application) bool {
	if app.DocumentsDeferred {
		return false
	}
	return len(MissingRequiredDocs(app)) > 0
}

// SubmissionDocument is one flattened uploaded document in the payload.
type SubmissionDocument struct {
	DocumentType string `json:"document_type"`
	Name         string `json:"name"`
	Category     string `json:"category,omitempty"`
	ProductID    string `json:"product_id,omitempty"`
	Status       string `json:"status,omitempty"`
}

// SubmissionSignature carries the applicant's sign-off.
type SubmissionSignature struct {
	TypedSignature       string `json:"typed_signature,omitempty"`
	CoApplicantSignature string `json:"co_applicant_signature,omitempty"`
	SignatureDate        string `json:"signature_date,omitempty"`
	TermsAccepted        bool   `json:"terms_accepted"`
}

// SubmissionPayload is the single object handed to the staff backend,
// keyed by the chosen lender product.
type SubmissionPayload struct {
	LenderProductID string  `json:"lender_product_id"`
	ProductType     string  `json:"product_type,omitempty"`
	FundingAmount   float64 `json:"funding_amount,omitempty"`

	RequiresClosingCostFunding bool `json:"requires_closing_cost_funding,omitempty"`

	Business  map[string]string `json:"business"`
	Applicant map[string]string `json:"applicant"`
	Partner   map[string]string `json:"partner,omitempty"`
	KYC       map[string]string `json:"kyc"`

	Signature SubmissionSignature  `json:"signature"`
	Documents []SubmissionDocument `json:"documents"`
}

// BuildSubmissionPayload flattens the wizard state into the submission
// object. Fails with ErrNoProductSelected when no product was chosen.
func BuildSubmissionPayload(app domain.Application) (SubmissionPayload, error) {
	if app.SelectedProductID == "" {
		return SubmissionPayload{}, fmt.Errorf("build submission payload: %w", ErrNoProductSelected)
	}

	docs := make([]SubmissionDocument, 0, len(app.Documents))
	for docType, doc := range app.Documents {
		docs = append(docs, SubmissionDocument{
			DocumentType: docType,
			Name:         doc.Name,
			Category:     doc.Category,
			ProductID:    doc.ProductID,
			Status:       string(doc.Status),
		})
	}
	// Map iteration order is random; keep the wire payload stable.
	sort.Slice(docs, func(i, j int) bool { return docs[i].DocumentType < docs[j].DocumentType })

	return SubmissionPayload{
		LenderProductID:            app.SelectedProductID,
		ProductType:                app.SelectedProductType,
		FundingAmount:              app.FundingAmount,
		RequiresClosingCostFunding: app.RequiresClosingCostFunding,
		Business:                   app.Business,
		Applicant:                  app.Applicant,
		Partner:                    app.Partner,
		KYC:                        app.KYC,
		Signature: SubmissionSignature{
			TypedSignature:       app.TypedSignature,
			CoApplicantSignature: app.CoApplicantSignature,
			SignatureDate:        app.SignatureDate,
			TermsAccepted:        app.TermsAccepted,
		},
		Documents: docs,
	}, nil
}

// PostSubmitRedirect picks where the client lands after submitting: the
// application view when the backend returned an id, the status page when a
// verified portal session covers the token, otherwise the portal entry.
func PostSubmitRedirect(token, applicationID string, hasSession bool) string {
	if applicationID != "" {
		return "/application/" + applicationID
	}
	if token != "" && hasSession {
		return "/status?token=" + token
	}
	return RoutePortal
}

// SubmitPreconditions are the gates on the final submit action.
type SubmitPreconditions struct {
	Online               bool
	IdempotencyKey       string
	TermsAccepted        bool
	SignaturePresent     bool
	SignatureDatePresent bool
	MissingIDDocs        int
	MissingRequiredDocs  int
	DocumentsDeferred    bool
	DocumentsAccepted    bool
	ProcessingComplete   bool
	NotAlreadySubmitting bool
}

// CanSubmitApplication is the single source of truth for enabling the final
// submit action: every precondition must hold.
func CanSubmitApplication(p SubmitPreconditions) bool {
	docsSatisfied := p.DocumentsDeferred || p.MissingRequiredDocs == 0
	return p.Online &&
		p.IdempotencyKey != "" &&
		p.TermsAccepted &&
		p.SignaturePresent &&
		p.SignatureDatePresent &&
		p.MissingIDDocs == 0 &&
		docsSatisfied &&
		p.DocumentsAccepted &&
		p.ProcessingComplete &&
		p.NotAlreadySubmitting
}
