package service

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/borealfin/portal/internal/portal/domain"
)

func fptr(v float64) *float64 { return &v }

func TestMissingRequiredDocs(t *testing.T) {
	t.Parallel()

	t.Run("no requirement lists means nothing missing", func(t *testing.T) {
		require.Empty(t, MissingRequiredDocs(domain.Application{}))
	})

	t.Run("aggregated list wins over the product list", func(t *testing.T) {
		app := domain.Application{
			SelectedProductID: "prod-1",
			ProductRequirements: map[string][]domain.DocumentRequirement{
				domain.AggregatedRequirementsKey: {
					{DocumentType: "bank_statements", Required: true},
				},
				"prod-1": {
					{DocumentType: "tax_returns", Required: true},
				},
			},
		}
		missing := MissingRequiredDocs(app)
		require.Len(t, missing, 1)
		require.Equal(t, "bank_statements", missing[0].DocumentType)
	})

	t.Run("falls back to the selected product list", func(t *testing.T) {
		app := domain.Application{
			SelectedProductID: "prod-1",
			ProductRequirements: map[string][]domain.DocumentRequirement{
				"prod-1": {{DocumentType: "tax_returns", Required: true}},
			},
		}
		missing := MissingRequiredDocs(app)
		require.Len(t, missing, 1)
		require.Equal(t, "tax_returns", missing[0].DocumentType)
	})

	t.Run("uploaded documents satisfy requirements", func(t *testing.T) {
		app := domain.Application{
			SelectedProductID: "prod-1",
			Documents: map[string]domain.Document{
				"tax_returns": {Name: "tax_returns.pdf"},
			},
			ProductRequirements: map[string][]domain.DocumentRequirement{
				"prod-1": {
					{DocumentType: "tax_returns", Required: true},
					{DocumentType: "bank_statements", Required: true},
				},
			},
		}
		missing := MissingRequiredDocs(app)
		require.Len(t, missing, 1)
		require.Equal(t, "bank_statements", missing[0].DocumentType)
	})

	t.Run("optional requirements never count", func(t *testing.T) {
		app := domain.Application{
			SelectedProductID: "prod-1",
			ProductRequirements: map[string][]domain.DocumentRequirement{
				"prod-1": {{DocumentType: "voided_check", Required: false}},
			},
		}
		require.Empty(t, MissingRequiredDocs(app))
	})

	t.Run("amount bracket filters requirements", func(t *testing.T) {
		app := domain.Application{
			SelectedProductID: "prod-1",
			FundingAmount:     50000,
			ProductRequirements: map[string][]domain.DocumentRequirement{
				"prod-1": {
					{DocumentType: "small_loan_doc", Required: true, MaxAmount: fptr(25000)},
					{DocumentType: "mid_loan_doc", Required: true, MinAmount: fptr(25000), MaxAmount: fptr(100000)},
					{DocumentType: "big_loan_doc", Required: true, MinAmount: fptr(100000)},
					{DocumentType: "always_doc", Required: true},
				},
			},
		}
		missing := MissingRequiredDocs(app)
		require.Len(t, missing, 2)
		require.Equal(t, "mid_loan_doc", missing[0].DocumentType)
		require.Equal(t, "always_doc", missing[1].DocumentType)
	})
}

func TestShouldBlockForMissingDocuments(t *testing.T) {
	t.Parallel()

	app := domain.Application{
		SelectedProductID: "prod-1",
		ProductRequirements: map[string][]domain.DocumentRequirement{
			"prod-1": {{DocumentType: "tax_returns", Required: true}},
		},
	}

	require.True(t, ShouldBlockForMissingDocuments(app))

	t.Run("deferring documents clears the block", func(t *testing.T) {
		deferred := app
		deferred.DocumentsDeferred = true
		require.False(t, ShouldBlockForMissingDocuments(deferred))
	})

	t.Run("nothing missing means no block", func(t *testing.T) {
		require.False(t, ShouldBlockForMissingDocuments(domain.Application{}))
	})
}

func TestBuildSubmissionPayload(t *testing.T) {
	t.Parallel()

	t.Run("fails without a selected product", func(t *testing.T) {
		_, err := BuildSubmissionPayload(domain.Application{})
		require.ErrorIs(t, err, ErrNoProductSelected)
	})

	t.Run("flattens documents and nests sections", func(t *testing.T) {
		app := domain.Application{
			SelectedProductID:   "prod-1",
			SelectedProductType: "term_loan",
			FundingAmount:       75000,
			Business:            map[string]string{"legal_name": "Acme Widgets"},
			Applicant:           map[string]string{"first_name": "Jo"},
			KYC:                 map[string]string{"id_type": "licence"},
			TypedSignature:      "Jo Smith",
			SignatureDate:       "2026-03-01",
			TermsAccepted:       true,
			Documents: map[string]domain.Document{
				"tax_returns":     {Name: "returns.pdf", Category: "financial", Status: domain.DocumentAccepted},
				"bank_statements": {Name: "statements.pdf", Category: "banking"},
			},
		}

		payload, err := BuildSubmissionPayload(app)
		require.NoError(t, err)

		require.Equal(t, "prod-1", payload.LenderProductID)
		require.Equal(t, "term_loan", payload.ProductType)
		require.Equal(t, float64(75000), payload.FundingAmount)
		require.Equal(t, "Acme Widgets", payload.Business["legal_name"])
		require.Equal(t, "Jo Smith", payload.Signature.TypedSignature)
		require.True(t, payload.Signature.TermsAccepted)

		require.Len(t, payload.Documents, 2)
		// Stable order regardless of map iteration.
		require.Equal(t, "bank_statements", payload.Documents[0].DocumentType)
		require.Equal(t, "tax_returns", payload.Documents[1].DocumentType)
		require.Equal(t, "accepted", payload.Documents[1].Status)
	})
}

func TestPostSubmitRedirect(t *testing.T) {
	t.Parallel()

	require.Equal(t, "/application/app-42", PostSubmitRedirect("tok-1", "app-42", true))
	require.Equal(t, "/application/app-42", PostSubmitRedirect("tok-1", "app-42", false))
	require.Equal(t, "/status?token=tok-1", PostSubmitRedirect("tok-1", "", true))
	require.Equal(t, "/portal", PostSubmitRedirect("tok-1", "", false))
	require.Equal(t, "/portal", PostSubmitRedirect("", "", true))
}

func TestCanSubmitApplication(t *testing.T) {
	t.Parallel()

	ready := SubmitPreconditions{
		Online:               true,
		IdempotencyKey:       "key-1",
		TermsAccepted:        true,
		SignaturePresent:     true,
		SignatureDatePresent: true,
		DocumentsAccepted:    true,
		ProcessingComplete:   true,
		NotAlreadySubmitting: true,
	}
	require.True(t, CanSubmitApplication(ready))

	t.Run("any failed precondition blocks", func(t *testing.T) {
		mutations := map[string]func(*SubmitPreconditions){
			"offline":             func(p *SubmitPreconditions) { p.Online = false },
			"no idempotency key":  func(p *SubmitPreconditions) { p.IdempotencyKey = "" },
			"terms not accepted":  func(p *SubmitPreconditions) { p.TermsAccepted = false },
			"no signature":        func(p *SubmitPreconditions) { p.SignaturePresent = false },
			"no signature date":   func(p *SubmitPreconditions) { p.SignatureDatePresent = false },
			"missing id docs":     func(p *SubmitPreconditions) { p.MissingIDDocs = 1 },
			"missing required":    func(p *SubmitPreconditions) { p.MissingRequiredDocs = 2 },
			"docs not accepted":   func(p *SubmitPreconditions) { p.DocumentsAccepted = false },
			"still processing":    func(p *SubmitPreconditions) { p.ProcessingComplete = false },
			"already submitting":  func(p *SubmitPreconditions) { p.NotAlreadySubmitting = false },
		}
		for name, mutate := range mutations {
			p := ready
			mutate(&p)
			require.False(t, CanSubmitApplication(p), name)
		}
	})

	t.Run("deferral excuses missing required docs only", func(t *testing.T) {
		p := ready
		p.MissingRequiredDocs = 3
		p.DocumentsDeferred = true
		require.True(t, CanSubmitApplication(p))

		p.MissingIDDocs = 1
		require.False(t, CanSubmitApplication(p))
	})
}
