package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestIsValidStatusChangeEvaluatorChain(t *testing.T) {
	deadline := time.Now().Add(-time.Hour)

	allowed := []struct {
		from Status
		to   Status
	}{
		{StatusSubmitted, StatusUnderReviewTeamQuestions},
		{StatusUnderReviewTeamQuestions, StatusEvaluatedTeamQuestions},
		{StatusEvaluatedTeamQuestions, StatusUnderReviewCodeChallenge},
		{StatusUnderReviewCodeChallenge, StatusEvaluatedCodeChallenge},
		{StatusEvaluatedCodeChallenge, StatusUnderReviewTeamScenario},
		{StatusUnderReviewTeamScenario, StatusEvaluatedTeamScenario},
		{StatusEvaluatedTeamScenario, StatusAwarded},
		// Screen-outs land one checkpoint back.
		{StatusUnderReviewCodeChallenge, StatusEvaluatedTeamQuestions},
		{StatusUnderReviewTeamScenario, StatusEvaluatedCodeChallenge},
	}
	for _, tc := range allowed {
		assert.True(t, IsValidStatusChange(tc.from, tc.to, RoleGovernment, deadline),
			"%s -> %s should be legal for government", tc.from, tc.to)
		assert.True(t, IsValidStatusChange(tc.from, tc.to, RoleAdmin, deadline),
			"%s -> %s should be legal for admin", tc.from, tc.to)
		assert.False(t, IsValidStatusChange(tc.from, tc.to, RoleVendor, deadline),
			"%s -> %s should be illegal for vendor", tc.from, tc.to)
	}
}

func TestIsValidStatusChangeClosedSet(t *testing.T) {
	deadline := time.Now().Add(time.Hour)

	illegal := []struct {
		from Status
		to   Status
	}{
		{StatusDraft, StatusUnderReviewTeamQuestions},
		{StatusDraft, StatusAwarded},
		{StatusSubmitted, StatusEvaluatedTeamQuestions},
		{StatusSubmitted, StatusUnderReviewCodeChallenge},
		{StatusEvaluatedTeamQuestions, StatusUnderReviewTeamScenario},
		{StatusEvaluatedCodeChallenge, StatusAwarded},
		{StatusAwarded, StatusDisqualified},
		{StatusDisqualified, StatusSubmitted},
		{StatusWithdrawn, StatusWithdrawn},
		{StatusDraft, StatusDraft},
	}
	for _, tc := range illegal {
		for _, role := range []Role{RoleVendor, RoleGovernment, RoleAdmin} {
			assert.False(t, IsValidStatusChange(tc.from, tc.to, role, deadline),
				"%s -> %s should be illegal for %s", tc.from, tc.to, role)
		}
	}
}

func TestIsValidStatusChangeSubmission(t *testing.T) {
	open := time.Now().Add(time.Hour)
	passed := time.Now().Add(-time.Hour)

	assert.True(t, IsValidStatusChange(StatusDraft, StatusSubmitted, RoleVendor, open))
	assert.True(t, IsValidStatusChange(StatusWithdrawn, StatusSubmitted, RoleVendor, open))
	assert.False(t, IsValidStatusChange(StatusDraft, StatusSubmitted, RoleVendor, passed))
	assert.False(t, IsValidStatusChange(StatusDraft, StatusSubmitted, RoleGovernment, open))
	// Admins may correct a submission after the deadline.
	assert.True(t, IsValidStatusChange(StatusDraft, StatusSubmitted, RoleAdmin, passed))
}

func TestIsValidStatusChangeDispositions(t *testing.T) {
	deadline := time.Now().Add(time.Hour)

	for _, from := range evaluationStatuses {
		assert.True(t, IsValidStatusChange(from, StatusWithdrawn, RoleVendor, deadline),
			"vendor should withdraw from %s", from)
		assert.False(t, IsValidStatusChange(from, StatusWithdrawn, RoleGovernment, deadline))
		assert.True(t, IsValidStatusChange(from, StatusDisqualified, RoleGovernment, deadline),
			"government should disqualify from %s", from)
		assert.False(t, IsValidStatusChange(from, StatusDisqualified, RoleVendor, deadline))
	}

	for _, terminal := range []Status{StatusAwarded, StatusDisqualified, StatusWithdrawn} {
		assert.True(t, terminal.Terminal())
		assert.False(t, IsValidStatusChange(terminal, StatusDisqualified, RoleAdmin, deadline))
	}
	assert.False(t, IsValidStatusChange(StatusDraft, StatusWithdrawn, RoleVendor, deadline),
		"a draft has nothing to withdraw from")
}
