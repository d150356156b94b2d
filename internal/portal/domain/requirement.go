package domain

// AggregatedRequirementsKey indexes the merged requirement list spanning all
// matched products, as opposed to a single product's own key. When present it
// takes precedence over the selected product's list.
const AggregatedRequirementsKey = "aggregated"

// DocumentRequirement is one entry of a product's required-document list.
// Amount bounds are optional; a nil bound is unbounded on that side.
type DocumentRequirement struct {
	DocumentType string   `json:"document_type"`
	Required     bool     `json:"required"`
	MinAmount    *float64 `json:"min_amount,omitempty"`
	MaxAmount    *float64 `json:"max_amount,omitempty"`
}

// AppliesToAmount reports whether the requirement is in force for the given
// funding amount, i.e. the amount falls inside [MinAmount, MaxAmount] with
// missing bounds treated as unbounded.
func (r DocumentRequirement) AppliesToAmount(amount float64) bool {
	if r.MinAmount != nil && amount < *r.MinAmount {
		return false
	}
	if r.MaxAmount != nil && amount > *r.MaxAmount {
		return false
	}
	return true
}
