package excel

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"github.com/nurpe/procure-proposals/internal/model"
)

type Generator struct{}

func NewGenerator() *Generator {
	return &Generator{}
}

func (g *Generator) Generate(sheet model.Scoresheet) ([]byte, error) {
	file := excelize.NewFile()

	summarySheet := "Summary"
	file.SetSheetName("Sheet1", summarySheet)
	if err := g.writeSummary(file, summarySheet, sheet); err != nil {
		return nil, err
	}

	usedNames := map[string]struct{}{summarySheet: {}}
	for _, row := range sheet.Rows {
		sheetName := buildSheetName(row.Organization, row.ProposalID, usedNames)
		usedNames[sheetName] = struct{}{}

		file.NewSheet(sheetName)
		if err := g.writeDetail(file, sheetName, sheet.Opportunity, row); err != nil {
			return nil, err
		}
	}

	file.SetActiveSheet(0)
	buf, err := file.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (g *Generator) writeSummary(file *excelize.File, sheet string, scoresheet model.Scoresheet) error {
	set := func(cell string, value interface{}) {
		_ = file.SetCellValue(sheet, cell, value)
	}

	set("A1", "Opportunity")
	set("B1", scoresheet.Opportunity.Title)
	set("A2", "Evaluation stage")
	set("B2", string(scoresheet.Opportunity.Stage))
	set("A3", "Proposals")
	set("B3", len(scoresheet.Rows))

	tableRow := 5
	headers := []string{
		"Organization",
		"Status",
		"Proposed cost",
		"Team questions",
		"Code challenge",
		"Team scenario",
		"Price",
		"Total",
	}
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, tableRow)
		set(cell, header)
	}

	for i, row := range scoresheet.Rows {
		line := tableRow + 1 + i
		set(fmt.Sprintf("A%d", line), formatOrganization(row))
		set(fmt.Sprintf("B%d", line), string(row.Status))
		set(fmt.Sprintf("C%d", line), fmt.Sprintf("%.2f", row.TotalProposedCost))
		set(fmt.Sprintf("D%d", line), formatScore(row.QuestionsScore))
		set(fmt.Sprintf("E%d", line), formatScore(row.CodeChallengeScore))
		set(fmt.Sprintf("F%d", line), formatScore(row.TeamScenarioScore))
		set(fmt.Sprintf("G%d", line), formatScore(row.PriceScore))
		set(fmt.Sprintf("H%d", line), formatScore(row.TotalScore))
	}

	_ = file.SetColWidth(sheet, "A", "A", 40)
	_ = file.SetColWidth(sheet, "B", "B", 28)
	_ = file.SetColWidth(sheet, "C", "H", 16)
	return nil
}

func (g *Generator) writeDetail(file *excelize.File, sheet string, opportunity model.Opportunity, row model.ScoresheetRow) error {
	set := func(cell string, value interface{}) {
		_ = file.SetCellValue(sheet, cell, value)
	}

	set("A1", "Opportunity")
	set("B1", opportunity.Title)
	set("A2", "Organization")
	set("B2", formatOrganization(row))
	set("A3", "Status")
	set("B3", string(row.Status))
	set("A4", "Total proposed cost")
	set("B4", fmt.Sprintf("%.2f", row.TotalProposedCost))

	tableRow := 6
	set(fmt.Sprintf("A%d", tableRow), "Checkpoint")
	set(fmt.Sprintf("B%d", tableRow), "Score")

	checkpoints := []struct {
		label string
		score *float64
	}{
		{"Team questions", row.QuestionsScore},
		{"Code challenge", row.CodeChallengeScore},
		{"Team scenario", row.TeamScenarioScore},
		{"Price", row.PriceScore},
		{"Total", row.TotalScore},
	}
	for i, checkpoint := range checkpoints {
		line := tableRow + 1 + i
		set(fmt.Sprintf("A%d", line), checkpoint.label)
		set(fmt.Sprintf("B%d", line), formatScore(checkpoint.score))
	}

	_ = file.SetColWidth(sheet, "A", "A", 28)
	_ = file.SetColWidth(sheet, "B", "B", 16)
	return nil
}

func buildSheetName(name string, id uuid.UUID, used map[string]struct{}) string {
	base := strings.TrimSpace(name)
	if base == "" {
		base = id.String()
	}
	base = sanitizeSheetName(base)

	if len(base) > 31 {
		base = base[:31]
	}

	nameCandidate := base
	counter := 2
	for {
		if _, exists := used[nameCandidate]; !exists {
			return nameCandidate
		}
		suffix := fmt.Sprintf("-%d", counter)
		trimmed := base
		if len(trimmed)+len(suffix) > 31 {
			trimmed = trimmed[:31-len(suffix)]
		}
		nameCandidate = trimmed + suffix
		counter++
	}
}

func sanitizeSheetName(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return "Sheet"
	}

	replacer := strings.NewReplacer(
		"[", "-",
		"]", "-",
		":", "-",
		"*", "-",
		"?", "-",
		"/", "-",
		"\\", "-",
	)
	value = replacer.Replace(value)
	value = strings.TrimSpace(value)
	if value == "" {
		return "Sheet"
	}
	return value
}

func formatOrganization(row model.ScoresheetRow) string {
	if strings.TrimSpace(row.Organization) == "" {
		return row.ProposalID.String()
	}
	return row.Organization
}

func formatScore(value *float64) string {
	if value == nil {
		return ""
	}
	return fmt.Sprintf("%.2f", *value)
}
