package model

import (
	"time"

	"github.com/google/uuid"
)

type PhaseKind string

const (
	PhaseInception      PhaseKind = "INCEPTION"
	PhasePrototype      PhaseKind = "PROTOTYPE"
	PhaseImplementation PhaseKind = "IMPLEMENTATION"
)

type Proposal struct {
	ID             uuid.UUID
	OpportunityID  uuid.UUID
	OrganizationID *uuid.UUID // nil until the vendor picks an organization
	Status         Status
	Version        int

	InceptionPhase      *Phase
	PrototypePhase      *Phase
	ImplementationPhase *Phase

	References            []Reference
	TeamQuestionResponses []QuestionResponse
	AttachmentIDs         []uuid.UUID

	QuestionScores     []QuestionScore
	QuestionsScore     *float64
	CodeChallengeScore *float64
	TeamScenarioScore  *float64
	PriceScore         *float64

	History []StatusRecord

	CreatedBy   uuid.UUID
	CreatedAt   time.Time
	UpdatedBy   uuid.UUID
	UpdatedAt   time.Time
	SubmittedAt *time.Time
}

// Phase is one of up to three proposal sub-structures, each with its own team
// and proposed cost.
type Phase struct {
	Kind         PhaseKind
	Members      []PhaseMember
	ProposedCost float64
}

type PhaseMember struct {
	UserID      uuid.UUID
	ScrumMaster bool
	Pending     bool
}

// Member is a directory record for a proposed team member: their organization
// affiliations and claimed capabilities, as read from the user directory.
type Member struct {
	UserID       uuid.UUID
	OrgIDs       []uuid.UUID
	Capabilities []string
}

func (m Member) BelongsTo(orgID uuid.UUID) bool {
	for _, id := range m.OrgIDs {
		if id == orgID {
			return true
		}
	}
	return false
}

type Reference struct {
	Name    string
	Company string
	Phone   string
	Email   string
	Order   int
}

type QuestionResponse struct {
	Response string
	Order    int
}

type QuestionScore struct {
	Order int
	Score float64
}

// StatusRecord is one entry of the proposal's append-only transition history.
type StatusRecord struct {
	Status    Status
	Note      string
	CreatedBy uuid.UUID
	CreatedAt time.Time
}

// TotalProposedCost sums the proposed costs of all present phases. Absent
// phases count as zero.
func (p *Proposal) TotalProposedCost() float64 {
	total := 0.0
	for _, phase := range []*Phase{p.InceptionPhase, p.PrototypePhase, p.ImplementationPhase} {
		if phase != nil {
			total += phase.ProposedCost
		}
	}
	return total
}

// Phases returns the present phases in chain order.
func (p *Proposal) Phases() []*Phase {
	phases := make([]*Phase, 0, 3)
	for _, phase := range []*Phase{p.InceptionPhase, p.PrototypePhase, p.ImplementationPhase} {
		if phase != nil {
			phases = append(phases, phase)
		}
	}
	return phases
}

// VisibleTo reports whether the proposal may be read by the actor. Vendors see
// proposals of organizations they own; evaluators see proposals once they have
// left the vendor's hands. Draft and Withdrawn proposals without an
// organization are visible to their author only.
func (p *Proposal) VisibleTo(principal Principal) bool {
	if principal.IsAdmin() {
		return true
	}
	if principal.IsGovernment() {
		return p.Status != StatusDraft
	}
	if p.CreatedBy == principal.UserID {
		return true
	}
	return p.OrganizationID != nil && principal.OwnsOrg(*p.OrganizationID)
}
