package excel

import (
	"bytes"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/nurpe/procure-proposals/internal/model"
)

func TestGenerate(t *testing.T) {
	generator := NewGenerator()

	questions := 12.5
	codeChallenge := 80.0
	scenario := 75.0
	price := 100.0
	total := questions + codeChallenge + scenario + price

	sheet := model.Scoresheet{
		Opportunity: model.Opportunity{
			ID:    uuid.New(),
			Title: "Case Management Modernization",
			Stage: model.StageTeamScenario,
		},
		Rows: []model.ScoresheetRow{
			{
				ProposalID:         uuid.New(),
				Organization:       "Example Systems Ltd.",
				Status:             model.StatusEvaluatedTeamScenario,
				TotalProposedCost:  85000,
				QuestionsScore:     &questions,
				CodeChallengeScore: &codeChallenge,
				TeamScenarioScore:  &scenario,
				PriceScore:         &price,
				TotalScore:         &total,
			},
			{
				ProposalID:   uuid.New(),
				Organization: "Example Systems Ltd.",
				Status:       model.StatusUnderReviewTeamScenario,
			},
		},
	}

	content, err := generator.Generate(sheet)
	require.NoError(t, err)

	file, err := excelize.OpenReader(bytes.NewReader(content))
	require.NoError(t, err)
	defer file.Close()

	title, err := file.GetCellValue("Summary", "B1")
	require.NoError(t, err)
	assert.Equal(t, "Case Management Modernization", title)

	organization, err := file.GetCellValue("Summary", "A6")
	require.NoError(t, err)
	assert.Equal(t, "Example Systems Ltd.", organization)

	totalCell, err := file.GetCellValue("Summary", "H6")
	require.NoError(t, err)
	assert.Equal(t, "267.50", totalCell)

	// Duplicate organization names still get distinct detail sheets.
	sheets := file.GetSheetList()
	assert.Len(t, sheets, 3)
}

func TestGenerateEmpty(t *testing.T) {
	generator := NewGenerator()

	content, err := generator.Generate(model.Scoresheet{
		Opportunity: model.Opportunity{Title: "No Proposals Yet"},
	})
	require.NoError(t, err)
	assert.NotEmpty(t, content)
}
