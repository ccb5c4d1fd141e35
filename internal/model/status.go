package model

import "time"

type Status string

const (
	StatusDraft                    Status = "DRAFT"
	StatusSubmitted                Status = "SUBMITTED"
	StatusUnderReviewTeamQuestions Status = "UNDER_REVIEW_QUESTIONS"
	StatusEvaluatedTeamQuestions   Status = "EVALUATED_QUESTIONS"
	StatusUnderReviewCodeChallenge Status = "UNDER_REVIEW_CODE_CHALLENGE"
	StatusEvaluatedCodeChallenge   Status = "EVALUATED_CODE_CHALLENGE"
	StatusUnderReviewTeamScenario  Status = "UNDER_REVIEW_TEAM_SCENARIO"
	StatusEvaluatedTeamScenario    Status = "EVALUATED_TEAM_SCENARIO"
	StatusAwarded                  Status = "AWARDED"
	StatusDisqualified             Status = "DISQUALIFIED"
	StatusWithdrawn                Status = "WITHDRAWN"
)

func ParseStatus(raw string) (Status, bool) {
	switch Status(raw) {
	case StatusDraft, StatusSubmitted,
		StatusUnderReviewTeamQuestions, StatusEvaluatedTeamQuestions,
		StatusUnderReviewCodeChallenge, StatusEvaluatedCodeChallenge,
		StatusUnderReviewTeamScenario, StatusEvaluatedTeamScenario,
		StatusAwarded, StatusDisqualified, StatusWithdrawn:
		return Status(raw), true
	default:
		return "", false
	}
}

func (s Status) Terminal() bool {
	switch s {
	case StatusAwarded, StatusDisqualified, StatusWithdrawn:
		return true
	default:
		return false
	}
}

// evaluationStatuses are the post-submission, pre-disposition statuses.
var evaluationStatuses = []Status{
	StatusSubmitted,
	StatusUnderReviewTeamQuestions,
	StatusEvaluatedTeamQuestions,
	StatusUnderReviewCodeChallenge,
	StatusEvaluatedCodeChallenge,
	StatusUnderReviewTeamScenario,
	StatusEvaluatedTeamScenario,
}

func statusIn(s Status, set ...Status) bool {
	for _, candidate := range set {
		if s == candidate {
			return true
		}
	}
	return false
}

// IsValidStatusChange encodes the legal proposal transition table. The set is
// closed: any pair not enumerated here is illegal. Opportunity evaluation-stage
// matching is enforced by the caller since it depends on opportunity state.
//
// Screen-outs land one checkpoint back in the chain: a proposal screened out
// of the code challenge returns to EvaluatedTeamQuestions, one screened out of
// the team scenario returns to EvaluatedCodeChallenge.
func IsValidStatusChange(from, to Status, role Role, proposalDeadline time.Time) bool {
	deadlinePassed := proposalDeadline.Before(time.Now())
	switch to {
	case StatusSubmitted:
		if !statusIn(from, StatusDraft, StatusWithdrawn) {
			return false
		}
		// Admins may submit past the deadline as a corrective action.
		if role == RoleAdmin {
			return true
		}
		return role == RoleVendor && !deadlinePassed
	case StatusUnderReviewTeamQuestions:
		return statusIn(from, StatusSubmitted) && role != RoleVendor
	case StatusEvaluatedTeamQuestions:
		return statusIn(from, StatusUnderReviewTeamQuestions, StatusUnderReviewCodeChallenge) && role != RoleVendor
	case StatusUnderReviewCodeChallenge:
		return statusIn(from, StatusEvaluatedTeamQuestions) && role != RoleVendor
	case StatusEvaluatedCodeChallenge:
		return statusIn(from, StatusUnderReviewCodeChallenge, StatusUnderReviewTeamScenario) && role != RoleVendor
	case StatusUnderReviewTeamScenario:
		return statusIn(from, StatusEvaluatedCodeChallenge) && role != RoleVendor
	case StatusEvaluatedTeamScenario:
		return statusIn(from, StatusUnderReviewTeamScenario) && role != RoleVendor
	case StatusAwarded:
		return statusIn(from, StatusEvaluatedTeamScenario) && role != RoleVendor
	case StatusDisqualified:
		return statusIn(from, evaluationStatuses...) && role != RoleVendor
	case StatusWithdrawn:
		return statusIn(from, evaluationStatuses...) && role == RoleVendor
	default:
		return false
	}
}
