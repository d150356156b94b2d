package domain

import "time"

// MaxWizardStep is the last step of the application wizard. Resume routing
// clamps into [1, MaxWizardStep].
const MaxWizardStep = 6

// Stage is the server-assigned lifecycle stage of an application.
type Stage string

const (
	StageDraft     Stage = "DRAFT"
	StageSubmitted Stage = "SUBMITTED"
	StageInReview  Stage = "IN_REVIEW"
	StageAccepted  Stage = "ACCEPTED"
	StageRejected  Stage = "REJECTED"
	StageWithdrawn Stage = "WITHDRAWN"
)

// Terminal reports whether the stage freezes the application: once terminal,
// the record is read-only portal history and updates are rejected.
func (s Stage) Terminal() bool {
	switch s {
	case StageAccepted, StageRejected, StageWithdrawn:
		return true
	}
	return false
}

// DocumentStatus tracks a single uploaded document through review.
type DocumentStatus string

const (
	DocumentUploaded DocumentStatus = "uploaded"
	DocumentAccepted DocumentStatus = "accepted"
	DocumentRejected DocumentStatus = "rejected"
)

// Document is one uploaded file slotted under a document type.
type Document struct {
	Name      string         `json:"name"`
	Content   string         `json:"content,omitempty"`
	Category  string         `json:"category,omitempty"`
	ProductID string         `json:"productId,omitempty"`
	Status    DocumentStatus `json:"status,omitempty"`
}

// SignStatus is the e-signature provider's view of the envelope.
type SignStatus string

const (
	SignNotInitiated SignStatus = "not_initiated"
	SignSigned       SignStatus = "signed"
	SignFailed       SignStatus = "failed"
)

// Application is the in-progress or submitted wizard state. It is persisted
// as an offline snapshot per token and normalized on hydration.
type Application struct {
	ApplicationToken string `json:"applicationToken,omitempty"`
	ApplicationID    string `json:"applicationId,omitempty"`

	Business  map[string]string `json:"business,omitempty"`
	Applicant map[string]string `json:"applicant,omitempty"`
	Partner   map[string]string `json:"partner,omitempty"`
	KYC       map[string]string `json:"kyc,omitempty"`

	// FundingAmount drives the amount-bracket filter on document requirements.
	FundingAmount float64 `json:"fundingAmount,omitempty"`

	SelectedProductID   string `json:"selectedProductId,omitempty"`
	SelectedProductType string `json:"selectedProductType,omitempty"`

	// RequiresClosingCostFunding triggers a linked closing-costs application.
	RequiresClosingCostFunding bool `json:"requiresClosingCostFunding,omitempty"`

	// Documents maps document type to the uploaded file in that slot.
	Documents map[string]Document `json:"documents,omitempty"`

	// ProductRequirements maps a product id (or the aggregated sentinel key)
	// to its ordered requirement list.
	ProductRequirements map[string][]DocumentRequirement `json:"productRequirements,omitempty"`

	// DocumentsDeferred is the client's explicit opt-out of providing
	// documents before submission.
	DocumentsDeferred bool `json:"documentsDeferred,omitempty"`

	CurrentStep   int  `json:"currentStep,omitempty"`
	TermsAccepted bool `json:"termsAccepted,omitempty"`

	TypedSignature       string `json:"typedSignature,omitempty"`
	CoApplicantSignature string `json:"coApplicantSignature,omitempty"`
	SignatureDate        string `json:"signatureDate,omitempty"`

	SignStatus SignStatus `json:"signStatus,omitempty"`
	Stage      Stage      `json:"stage,omitempty"`

	UpdatedAt time.Time `json:"updatedAt,omitempty"`
}

// Normalize fills the maps a partially stored snapshot may lack, so callers
// never touch nil maps after hydration.
func (a *Application) Normalize() {
	if a.Business == nil {
		a.Business = map[string]string{}
	}
	if a.Applicant == nil {
		a.Applicant = map[string]string{}
	}
	if a.Partner == nil {
		a.Partner = map[string]string{}
	}
	if a.KYC == nil {
		a.KYC = map[string]string{}
	}
	if a.Documents == nil {
		a.Documents = map[string]Document{}
	}
	if a.ProductRequirements == nil {
		a.ProductRequirements = map[string][]DocumentRequirement{}
	}
	if a.SignStatus == "" {
		a.SignStatus = SignNotInitiated
	}
	if a.Stage == "" {
		a.Stage = StageDraft
	}
	for key, doc := range a.Documents {
		if doc.Name == "" {
			doc.Name = key
		}
		if doc.Category == "" {
			doc.Category = key
		}
		a.Documents[key] = doc
	}
}
