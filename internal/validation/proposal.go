package validation

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/nurpe/procure-proposals/internal/model"
)

const (
	maxNoteLength      = 5000
	defaultWordLimit   = 500
	maxScore           = 100
	scoreDecimalPlaces = 2
	maxReferenceOrder  = 2
)

// Phase validates one proposal phase against the opportunity's definition of
// that phase. A nil definition means the opportunity does not include the
// phase; a nil phase with a non-nil definition is reported as missing so that
// "required but absent" stays distinguishable from "present but invalid".
// The members directory is keyed by user id and must cover every proposed
// member.
func Phase(phase *model.Phase, def *model.OpportunityPhase, orgID *uuid.UUID, directory map[uuid.UUID]model.Member) Errors {
	errs := Errors{}
	if def == nil {
		if phase != nil {
			errs.Add("phase", "This opportunity does not include this phase.")
		}
		return errs
	}
	if phase == nil {
		errs.Add("phase", "This phase is required for this opportunity.")
		return errs
	}
	if len(phase.Members) == 0 {
		errs.Add("members", "Please select at least one team member.")
	}
	for i, member := range phase.Members {
		record, ok := directory[member.UserID]
		if !ok {
			errs.Add(fmt.Sprintf("members.%d", i), "This team member could not be found.")
			continue
		}
		if orgID == nil || !record.BelongsTo(*orgID) {
			errs.Add(fmt.Sprintf("members.%d", i), "This team member is not part of the proposing organization.")
		}
	}
	if phase.ProposedCost <= 0 {
		errs.Add("proposedCost", "Proposed cost must be a positive amount.")
	} else {
		errs.Add("proposedCost", NumberRange(phase.ProposedCost, "Proposed cost", 0, def.MaxBudget)...)
	}
	return errs
}

// TeamComposition checks that the members proposed across all phases
// collectively cover the opportunity's required capability set, naming each
// missing capability on failure.
func TeamComposition(opportunity *model.Opportunity, team []model.Member) Errors {
	errs := Errors{}
	covered := make(map[string]struct{})
	for _, member := range team {
		for _, capability := range member.Capabilities {
			covered[capability] = struct{}{}
		}
	}
	var missing []string
	for _, capability := range opportunity.RequiredCapabilities() {
		if _, ok := covered[capability]; !ok {
			missing = append(missing, capability)
		}
	}
	if len(missing) > 0 {
		errs.Add("team", fmt.Sprintf(
			"The proposed team does not cover the required capabilities: %s.",
			strings.Join(missing, ", ")))
	}
	return errs
}

// TotalCost checks the summed phase costs against the opportunity's total
// maximum budget. Absent phases count as zero. This runs alongside, not
// instead of, each phase's own budget ceiling.
func TotalCost(inceptionCost, prototypeCost, implementationCost, totalMaxBudget float64) Errors {
	errs := Errors{}
	total := inceptionCost + prototypeCost + implementationCost
	if total > totalMaxBudget {
		errs.Add("totalProposedCost", "The total proposed cost exceeds the maximum budget for this opportunity.")
	}
	return errs
}

// QuestionResponses checks that exactly one response addresses each
// opportunity question, within that question's word limit.
func QuestionResponses(responses []model.QuestionResponse, questions []model.TeamQuestion) Errors {
	errs := Errors{}
	answered := make(map[int]bool)
	for i, response := range responses {
		question := questionByOrder(questions, response.Order)
		if question == nil {
			errs.Add(fmt.Sprintf("teamQuestionResponses.%d.order", i), "No matching opportunity question.")
			continue
		}
		if answered[response.Order] {
			errs.Add(fmt.Sprintf("teamQuestionResponses.%d.order", i), "This question has more than one response.")
			continue
		}
		answered[response.Order] = true
		limit := question.WordLimit
		if limit <= 0 {
			limit = defaultWordLimit
		}
		errs.Add(fmt.Sprintf("teamQuestionResponses.%d.response", i),
			WordCount(response.Response, "Response", 1, limit)...)
	}
	for _, question := range questions {
		if !answered[question.Order] {
			errs.Add("teamQuestionResponses", fmt.Sprintf("Question %d has no response.", question.Order+1))
		}
	}
	return errs
}

// References checks presence and well-formedness of each reference contact,
// preserving submitted order.
func References(references []model.Reference) Errors {
	errs := Errors{}
	for i, reference := range references {
		prefix := fmt.Sprintf("references.%d", i)
		errs.Add(prefix+".name", StringLength(reference.Name, "Name", 1, 100)...)
		errs.Add(prefix+".company", StringLength(reference.Company, "Company", 1, 100)...)
		errs.Add(prefix+".phone", Phone(reference.Phone)...)
		errs.Add(prefix+".email", Email(reference.Email)...)
		if reference.Order < 0 || reference.Order > maxReferenceOrder {
			errs.Add(prefix+".order", fmt.Sprintf("Order must be between 0 and %d.", maxReferenceOrder))
		}
	}
	return errs
}

// QuestionScores checks one score per opportunity question, each within that
// question's maximum.
func QuestionScores(scores []model.QuestionScore, questions []model.TeamQuestion) Errors {
	errs := Errors{}
	if len(scores) != len(questions) {
		errs.Add("questionScores", "Please provide the correct number of team question scores.")
		return errs
	}
	for i, score := range scores {
		question := questionByOrder(questions, score.Order)
		if question == nil {
			errs.Add(fmt.Sprintf("questionScores.%d.order", i), "No matching opportunity question.")
			continue
		}
		errs.Add(fmt.Sprintf("questionScores.%d.score", i),
			NumberPrecision(score.Score, "Score", 0, question.MaxScore, scoreDecimalPlaces)...)
	}
	return errs
}

func CodeChallengeScore(score float64) Errors {
	errs := Errors{}
	errs.Add("score", NumberPrecision(score, "Code challenge score", 0, maxScore, scoreDecimalPlaces)...)
	return errs
}

func TeamScenarioScore(score float64) Errors {
	errs := Errors{}
	errs.Add("score", NumberPrecision(score, "Team scenario score", 0, maxScore, scoreDecimalPlaces)...)
	return errs
}

// Note validates free text attached to a transition. Notes may be empty.
func Note(note string) Errors {
	errs := Errors{}
	errs.Add("note", StringLength(note, "Note", 0, maxNoteLength)...)
	return errs
}

// DisqualificationReason validates the rationale required to disqualify a
// proposal. Unlike notes, the reason must not be empty.
func DisqualificationReason(reason string) Errors {
	errs := Errors{}
	errs.Add("note", StringLength(reason, "Disqualification reason", 1, maxNoteLength)...)
	return errs
}

func questionByOrder(questions []model.TeamQuestion, order int) *model.TeamQuestion {
	for i := range questions {
		if questions[i].Order == order {
			return &questions[i]
		}
	}
	return nil
}
