package pdf

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nurpe/procure-proposals/internal/model"
)

func TestGenerate(t *testing.T) {
	generator, err := NewGenerator()
	require.NoError(t, err)

	score := 85.5
	submitted := time.Now()
	doc := model.ProposalDocument{
		Proposal: model.Proposal{
			ID:     uuid.New(),
			Status: model.StatusEvaluatedTeamScenario,
			InceptionPhase: &model.Phase{
				Kind:         model.PhaseInception,
				Members:      []model.PhaseMember{{UserID: uuid.New()}},
				ProposedCost: 25000,
			},
			ImplementationPhase: &model.Phase{
				Kind:         model.PhaseImplementation,
				Members:      []model.PhaseMember{{UserID: uuid.New()}},
				ProposedCost: 60000,
			},
			References: []model.Reference{
				{Name: "Sam Doe", Company: "Acme", Phone: "250-555-0199", Email: "sam@acme.example"},
			},
			History: []model.StatusRecord{
				{Status: model.StatusSubmitted, CreatedAt: submitted},
			},
			TeamScenarioScore: &score,
			SubmittedAt:       &submitted,
		},
		Opportunity: model.Opportunity{
			Title:          "Case Management Modernization",
			TotalMaxBudget: 100000,
		},
		Organization: &model.Organization{LegalName: "Example Systems Ltd."},
	}

	content, err := generator.Generate(doc)
	require.NoError(t, err)
	require.NotEmpty(t, content)
	assert.Equal(t, "%PDF", string(content[:4]))
}

func TestGenerateWithoutOrganization(t *testing.T) {
	generator, err := NewGenerator()
	require.NoError(t, err)

	content, err := generator.Generate(model.ProposalDocument{
		Proposal:    model.Proposal{ID: uuid.New(), Status: model.StatusDraft},
		Opportunity: model.Opportunity{Title: "Draft Only"},
	})
	require.NoError(t, err)
	assert.NotEmpty(t, content)
}
