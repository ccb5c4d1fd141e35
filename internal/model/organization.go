package model

import "github.com/google/uuid"

type Organization struct {
	ID        uuid.UUID
	LegalName string
	Active    bool
	// Qualified is the current eligibility status for multi-phase staffing
	// opportunities. It is re-checked at submission time, not cached on the
	// proposal.
	Qualified bool
}
