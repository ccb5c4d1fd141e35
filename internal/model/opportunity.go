package model

import (
	"time"

	"github.com/google/uuid"
)

// EvaluationStage is the opportunity-level indicator of which assessment step
// is currently active. Proposal status transitions are legal only while the
// opportunity is in the matching stage.
type EvaluationStage string

const (
	StageNotStarted    EvaluationStage = "NOT_STARTED"
	StageTeamQuestions EvaluationStage = "TEAM_QUESTIONS"
	StageCodeChallenge EvaluationStage = "CODE_CHALLENGE"
	StageTeamScenario  EvaluationStage = "TEAM_SCENARIO"
)

type Opportunity struct {
	ID               uuid.UUID
	Title            string
	TotalMaxBudget   float64
	ProposalDeadline time.Time
	Stage            EvaluationStage

	InceptionPhase      *OpportunityPhase // nil if the opportunity does not define it
	PrototypePhase      *OpportunityPhase
	ImplementationPhase *OpportunityPhase // always defined

	TeamQuestions []TeamQuestion
}

// OpportunityPhase defines what a proposal phase must satisfy: a budget
// ceiling and the capabilities its team must collectively cover.
type OpportunityPhase struct {
	Kind                 PhaseKind
	MaxBudget            float64
	RequiredCapabilities []string
}

type TeamQuestion struct {
	Order     int
	Question  string
	WordLimit int
	MaxScore  float64
}

// PhaseDefinition returns the opportunity's definition for a phase kind, or
// nil if the opportunity does not include that phase.
func (o *Opportunity) PhaseDefinition(kind PhaseKind) *OpportunityPhase {
	switch kind {
	case PhaseInception:
		return o.InceptionPhase
	case PhasePrototype:
		return o.PrototypePhase
	case PhaseImplementation:
		return o.ImplementationPhase
	default:
		return nil
	}
}

// RequiredCapabilities returns the union of capabilities required across all
// defined phases, preserving first-seen order.
func (o *Opportunity) RequiredCapabilities() []string {
	seen := make(map[string]struct{})
	var union []string
	for _, phase := range []*OpportunityPhase{o.InceptionPhase, o.PrototypePhase, o.ImplementationPhase} {
		if phase == nil {
			continue
		}
		for _, capability := range phase.RequiredCapabilities {
			if _, ok := seen[capability]; ok {
				continue
			}
			seen[capability] = struct{}{}
			union = append(union, capability)
		}
	}
	return union
}

// Question returns the opportunity question with the given order, if any.
func (o *Opportunity) Question(order int) *TeamQuestion {
	for i := range o.TeamQuestions {
		if o.TeamQuestions[i].Order == order {
			return &o.TeamQuestions[i]
		}
	}
	return nil
}
