package validation

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nurpe/procure-proposals/internal/model"
)

func testOpportunity() *model.Opportunity {
	return &model.Opportunity{
		ID:             uuid.New(),
		Title:          "Test Opportunity",
		TotalMaxBudget: 100000,
		InceptionPhase: &model.OpportunityPhase{
			Kind:                 model.PhaseInception,
			MaxBudget:            30000,
			RequiredCapabilities: []string{"Agile Coaching", "Delivery Management"},
		},
		ImplementationPhase: &model.OpportunityPhase{
			Kind:                 model.PhaseImplementation,
			MaxBudget:            70000,
			RequiredCapabilities: []string{"Backend Development"},
		},
		TeamQuestions: []model.TeamQuestion{
			{Order: 0, Question: "Describe your process.", WordLimit: 300, MaxScore: 5},
			{Order: 1, Question: "Describe your team.", WordLimit: 0, MaxScore: 10},
		},
	}
}

func TestPhase(t *testing.T) {
	orgID := uuid.New()
	memberID := uuid.New()
	directory := map[uuid.UUID]model.Member{
		memberID: {UserID: memberID, OrgIDs: []uuid.UUID{orgID}},
	}
	def := &model.OpportunityPhase{Kind: model.PhaseInception, MaxBudget: 30000}

	t.Run("valid", func(t *testing.T) {
		errs := Phase(&model.Phase{
			Kind:         model.PhaseInception,
			Members:      []model.PhaseMember{{UserID: memberID}},
			ProposedCost: 25000,
		}, def, &orgID, directory)
		assert.True(t, errs.Empty())
	})

	t.Run("required but absent", func(t *testing.T) {
		errs := Phase(nil, def, &orgID, directory)
		require.Contains(t, errs, "phase")
		assert.Contains(t, errs["phase"][0], "required")
	})

	t.Run("present but undefined", func(t *testing.T) {
		errs := Phase(&model.Phase{Kind: model.PhasePrototype, ProposedCost: 1}, nil, &orgID, directory)
		require.Contains(t, errs, "phase")
		assert.Contains(t, errs["phase"][0], "does not include")
	})

	t.Run("member outside organization", func(t *testing.T) {
		outsider := uuid.New()
		dir := map[uuid.UUID]model.Member{
			outsider: {UserID: outsider, OrgIDs: []uuid.UUID{uuid.New()}},
		}
		errs := Phase(&model.Phase{
			Kind:         model.PhaseInception,
			Members:      []model.PhaseMember{{UserID: outsider}},
			ProposedCost: 100,
		}, def, &orgID, dir)
		assert.Contains(t, errs, "members.0")
	})

	t.Run("cost over phase ceiling", func(t *testing.T) {
		errs := Phase(&model.Phase{
			Kind:         model.PhaseInception,
			Members:      []model.PhaseMember{{UserID: memberID}},
			ProposedCost: 40000,
		}, def, &orgID, directory)
		assert.Contains(t, errs, "proposedCost")
	})

	t.Run("cost must be positive", func(t *testing.T) {
		errs := Phase(&model.Phase{
			Kind:         model.PhaseInception,
			Members:      []model.PhaseMember{{UserID: memberID}},
			ProposedCost: 0,
		}, def, &orgID, directory)
		assert.Contains(t, errs, "proposedCost")
	})
}

func TestTeamComposition(t *testing.T) {
	opportunity := testOpportunity()

	t.Run("missing capabilities are named", func(t *testing.T) {
		team := []model.Member{
			{UserID: uuid.New(), Capabilities: []string{"Agile Coaching"}},
		}
		errs := TeamComposition(opportunity, team)
		require.Contains(t, errs, "team")
		assert.Contains(t, errs["team"][0], "Delivery Management")
		assert.Contains(t, errs["team"][0], "Backend Development")
		assert.NotContains(t, errs["team"][0], "Agile Coaching")
	})

	t.Run("union across members suffices", func(t *testing.T) {
		team := []model.Member{
			{UserID: uuid.New(), Capabilities: []string{"Agile Coaching", "Backend Development"}},
			{UserID: uuid.New(), Capabilities: []string{"Delivery Management"}},
		}
		assert.True(t, TeamComposition(opportunity, team).Empty())
	})
}

func TestTotalCost(t *testing.T) {
	assert.True(t, TotalCost(30000, 0, 70000, 100000).Empty())

	errs := TotalCost(30000, 0, 70001, 100000)
	assert.Contains(t, errs, "totalProposedCost")
}

func TestQuestionResponses(t *testing.T) {
	questions := testOpportunity().TeamQuestions

	t.Run("valid", func(t *testing.T) {
		errs := QuestionResponses([]model.QuestionResponse{
			{Order: 0, Response: "We use scrum and iterate."},
			{Order: 1, Response: "Our team is small."},
		}, questions)
		assert.True(t, errs.Empty())
	})

	t.Run("missing response", func(t *testing.T) {
		errs := QuestionResponses([]model.QuestionResponse{
			{Order: 0, Response: "Just one answer."},
		}, questions)
		require.Contains(t, errs, "teamQuestionResponses")
		assert.Contains(t, errs["teamQuestionResponses"][0], "Question 2")
	})

	t.Run("duplicate response", func(t *testing.T) {
		errs := QuestionResponses([]model.QuestionResponse{
			{Order: 0, Response: "First."},
			{Order: 0, Response: "Again."},
			{Order: 1, Response: "Fine."},
		}, questions)
		assert.Contains(t, errs, "teamQuestionResponses.1.order")
	})

	t.Run("unmatched order", func(t *testing.T) {
		errs := QuestionResponses([]model.QuestionResponse{
			{Order: 7, Response: "For a question that does not exist."},
		}, questions)
		assert.Contains(t, errs, "teamQuestionResponses.0.order")
	})
}

func TestReferences(t *testing.T) {
	valid := model.Reference{
		Name:    "Sam Doe",
		Company: "Acme",
		Phone:   "250-555-0199",
		Email:   "sam@acme.example",
		Order:   0,
	}
	assert.True(t, References([]model.Reference{valid}).Empty())

	bad := valid
	bad.Email = "not-an-email"
	bad.Phone = "abc"
	bad.Order = 5
	errs := References([]model.Reference{bad})
	assert.Contains(t, errs, "references.0.email")
	assert.Contains(t, errs, "references.0.phone")
	assert.Contains(t, errs, "references.0.order")
}

func TestQuestionScores(t *testing.T) {
	questions := testOpportunity().TeamQuestions

	t.Run("valid", func(t *testing.T) {
		errs := QuestionScores([]model.QuestionScore{
			{Order: 0, Score: 4.5},
			{Order: 1, Score: 10},
		}, questions)
		assert.True(t, errs.Empty())
	})

	t.Run("wrong count", func(t *testing.T) {
		errs := QuestionScores([]model.QuestionScore{{Order: 0, Score: 4}}, questions)
		assert.Contains(t, errs, "questionScores")
	})

	t.Run("over question maximum", func(t *testing.T) {
		errs := QuestionScores([]model.QuestionScore{
			{Order: 0, Score: 5.5},
			{Order: 1, Score: 10},
		}, questions)
		assert.Contains(t, errs, "questionScores.0.score")
	})

	t.Run("too many decimal places", func(t *testing.T) {
		errs := QuestionScores([]model.QuestionScore{
			{Order: 0, Score: 4.123},
			{Order: 1, Score: 10},
		}, questions)
		assert.Contains(t, errs, "questionScores.0.score")
	})
}

func TestNoteAndReason(t *testing.T) {
	assert.True(t, Note("").Empty())
	assert.True(t, Note("all good").Empty())

	assert.False(t, DisqualificationReason("").Empty())
	assert.True(t, DisqualificationReason("failed reference checks").Empty())
}
