package domain

import "time"

// LinkReason explains why a child application was spawned from a parent.
type LinkReason string

const (
	LinkClosingCosts    LinkReason = "closing_costs"
	LinkStaffTriggered  LinkReason = "staff_triggered"
	LinkClientInitiated LinkReason = "client_initiated"
)

// Valid reports whether the reason is one of the known values.
func (r LinkReason) Valid() bool {
	switch r {
	case LinkClosingCosts, LinkStaffTriggered, LinkClientInitiated:
		return true
	}
	return false
}

// LinkedApplication records a child application spawned from a parent token.
// Per-parent sequences are deduplicated by child token, order preserved.
type LinkedApplication struct {
	ParentToken string     `json:"parentToken"`
	Token       string     `json:"token"`
	Reason      LinkReason `json:"reason"`
	CreatedAt   time.Time  `json:"createdAt"`
}

// MergeLinkedApplications appends record to list unless its child token is
// already present, in which case the original list is returned unchanged.
func MergeLinkedApplications(list []LinkedApplication, record LinkedApplication) []LinkedApplication {
	for _, existing := range list {
		if existing.Token == record.Token {
			return list
		}
	}
	return append(list, record)
}
