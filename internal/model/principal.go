package model

import "github.com/google/uuid"

type Role string

const (
	RoleVendor     Role = "VENDOR"
	RoleGovernment Role = "GOVERNMENT"
	RoleAdmin      Role = "ADMIN"
)

func ParseRole(raw string) (Role, bool) {
	switch Role(raw) {
	case RoleVendor, RoleGovernment, RoleAdmin:
		return Role(raw), true
	default:
		return "", false
	}
}

// Principal is the authenticated actor extracted from the access token.
// OrgIDs holds the organizations the actor owns or administers.
type Principal struct {
	UserID uuid.UUID
	Role   Role
	OrgIDs []uuid.UUID
}

func (p Principal) IsVendor() bool     { return p.Role == RoleVendor }
func (p Principal) IsGovernment() bool { return p.Role == RoleGovernment }
func (p Principal) IsAdmin() bool      { return p.Role == RoleAdmin }

// IsEvaluator reports whether the actor may act on the evaluation side of the
// lifecycle (screening, scoring, award, disqualification).
func (p Principal) IsEvaluator() bool {
	return p.Role == RoleGovernment || p.Role == RoleAdmin
}

func (p Principal) OwnsOrg(id uuid.UUID) bool {
	for _, orgID := range p.OrgIDs {
		if orgID == id {
			return true
		}
	}
	return false
}
