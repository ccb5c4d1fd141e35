package model

import "github.com/google/uuid"

// ProposalDocument bundles everything the PDF renderer needs for a single
// proposal summary.
type ProposalDocument struct {
	Proposal     Proposal
	Opportunity  Opportunity
	Organization *Organization // nil for drafts without one
}

// Scoresheet is the evaluation snapshot of one opportunity, one row per
// non-draft proposal.
type Scoresheet struct {
	Opportunity Opportunity
	Rows        []ScoresheetRow
}

type ScoresheetRow struct {
	ProposalID         uuid.UUID
	Organization       string
	Status             Status
	TotalProposedCost  float64
	QuestionsScore     *float64
	CodeChallengeScore *float64
	TeamScenarioScore  *float64
	PriceScore         *float64
	TotalScore         *float64
}

// Total sums the four component scores, or returns nil until all of them have
// been recorded.
func (r ScoresheetRow) Total() *float64 {
	if r.QuestionsScore == nil || r.CodeChallengeScore == nil || r.TeamScenarioScore == nil || r.PriceScore == nil {
		return nil
	}
	total := *r.QuestionsScore + *r.CodeChallengeScore + *r.TeamScenarioScore + *r.PriceScore
	return &total
}
