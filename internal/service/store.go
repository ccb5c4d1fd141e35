package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/nurpe/procure-proposals/internal/model"
)

// Store is the persistence contract the lifecycle service depends on. Reads
// return ErrNotFound for missing records; version-conditioned writes return
// ErrConflict when the stored version no longer matches; any other failure is
// wrapped in ErrUnavailable by the implementation.
type Store interface {
	Opportunity(ctx context.Context, id uuid.UUID) (*model.Opportunity, error)
	Organization(ctx context.Context, id uuid.UUID) (*model.Organization, error)
	Proposal(ctx context.Context, id uuid.UUID) (*model.Proposal, error)
	// ProposalForOrganization finds the organization's proposal for an
	// opportunity, if one exists.
	ProposalForOrganization(ctx context.Context, opportunityID, organizationID uuid.UUID) (*model.Proposal, error)
	// Members resolves directory records for the given user ids. Unknown ids
	// are simply absent from the result.
	Members(ctx context.Context, userIDs []uuid.UUID) (map[uuid.UUID]model.Member, error)
	// Organizations resolves the given organization ids. Unknown ids are
	// absent from the result.
	Organizations(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]model.Organization, error)
	// MissingAttachments returns the subset of ids with no stored file.
	MissingAttachments(ctx context.Context, ids []uuid.UUID) ([]uuid.UUID, error)

	ListOwn(ctx context.Context, userID uuid.UUID, orgIDs []uuid.UUID) ([]model.Proposal, error)
	ListForOpportunity(ctx context.Context, opportunityID uuid.UUID) ([]model.Proposal, error)

	CreateProposal(ctx context.Context, cmd CreateCommand) (*model.Proposal, error)
	UpdateContent(ctx context.Context, cmd UpdateCommand) (*model.Proposal, error)
	UpdateStatus(ctx context.Context, cmd StatusCommand) (*model.Proposal, error)
	UpdateQuestionScores(ctx context.Context, cmd QuestionScoresCommand) (*model.Proposal, error)
	UpdateCodeChallengeScore(ctx context.Context, cmd ScoreCommand) (*model.Proposal, error)
	// UpdateTeamScenarioScore records the scenario score and derives the
	// price score from the lowest total proposed cost among the opportunity's
	// scored proposals, in the same transaction.
	UpdateTeamScenarioScore(ctx context.Context, cmd ScoreCommand) (*model.Proposal, error)
	DeleteProposal(ctx context.Context, id uuid.UUID) error
}

// Event names a lifecycle milestone worth announcing outside the engine.
type Event string

const (
	EventSubmitted    Event = "submitted"
	EventAwarded      Event = "awarded"
	EventNotAwarded   Event = "not-awarded"
	EventDisqualified Event = "disqualified"
	EventWithdrawn    Event = "withdrawn"
)

// Notifier announces lifecycle events after the owning transaction has
// committed. Publication is fire-and-forget: implementations absorb their own
// failures and the triggering mutation stands regardless.
type Notifier interface {
	Publish(ctx context.Context, event Event, proposal *model.Proposal, actorID uuid.UUID)
}

// Content is the validated, normalized shape of a proposal's vendor-editable
// fields, ready to persist.
type Content struct {
	OrganizationID        *uuid.UUID
	InceptionPhase        *model.Phase
	PrototypePhase        *model.Phase
	ImplementationPhase   *model.Phase
	References            []model.Reference
	TeamQuestionResponses []model.QuestionResponse
	AttachmentIDs         []uuid.UUID
}

type CreateCommand struct {
	OpportunityID uuid.UUID
	Content       Content
	Status        model.Status
	ActorID       uuid.UUID
}

type UpdateCommand struct {
	ProposalID uuid.UUID
	Version    int
	Content    Content
	ActorID    uuid.UUID
}

type StatusCommand struct {
	ProposalID uuid.UUID
	Version    int
	Status     model.Status
	Note       string
	ActorID    uuid.UUID
}

type QuestionScoresCommand struct {
	ProposalID uuid.UUID
	Version    int
	Scores     []model.QuestionScore
	Status     model.Status
	Note       string
	ActorID    uuid.UUID
}

type ScoreCommand struct {
	ProposalID uuid.UUID
	Version    int
	Score      float64
	Status     model.Status
	Note       string
	ActorID    uuid.UUID
}
