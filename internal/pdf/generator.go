package pdf

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/nurpe/procure-proposals/internal/model"
)

type Generator struct {
	fontName string
}

func NewGenerator() (*Generator, error) {
	return &Generator{fontName: "Helvetica"}, nil
}

func (g *Generator) Generate(doc model.ProposalDocument) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.AddPage()

	pdf.SetFont(g.fontName, "B", 14)
	pdf.CellFormat(0, 10, "Proposal Summary", "", 1, "C", false, 0, "")

	pdf.SetFont(g.fontName, "", 11)
	pdf.CellFormat(0, 6, fmt.Sprintf("Opportunity: %s", doc.Opportunity.Title), "", 1, "C", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont(g.fontName, "B", 12)
	pdf.CellFormat(0, 8, "Proposal", "", 1, "L", false, 0, "")
	pdf.SetFont(g.fontName, "", 10)
	orgName := "—"
	if doc.Organization != nil {
		orgName = doc.Organization.LegalName
	}
	lines := []string{
		fmt.Sprintf("Proposal ID: %s", doc.Proposal.ID),
		fmt.Sprintf("Organization: %s", orgName),
		fmt.Sprintf("Status: %s", doc.Proposal.Status),
		fmt.Sprintf("Submitted: %s", formatDate(doc.Proposal.SubmittedAt)),
	}
	for _, line := range lines {
		pdf.MultiCell(0, 5, line, "", "L", false)
	}
	pdf.Ln(2)

	pdf.SetFont(g.fontName, "B", 12)
	pdf.CellFormat(0, 8, "Phases", "", 1, "L", false, 0, "")

	headers := []string{"Phase", "Team members", "Proposed cost"}
	colWidths := []float64{70, 50, 60}
	drawTableRow(pdf, g.fontName, headers, colWidths, true)
	for _, phase := range doc.Proposal.Phases() {
		drawTableRow(pdf, g.fontName, []string{
			phaseLabel(phase.Kind),
			fmt.Sprintf("%d", len(phase.Members)),
			formatAmount(phase.ProposedCost),
		}, colWidths, false)
	}
	drawTableRow(pdf, g.fontName, []string{
		"Total",
		"",
		formatAmount(doc.Proposal.TotalProposedCost()),
	}, colWidths, false)
	pdf.Ln(2)

	pdf.SetFont(g.fontName, "", 10)
	pdf.CellFormat(0, 6, fmt.Sprintf("Opportunity budget ceiling: %s", formatAmount(doc.Opportunity.TotalMaxBudget)), "", 1, "L", false, 0, "")
	pdf.Ln(2)

	if hasScores(doc.Proposal) {
		pdf.SetFont(g.fontName, "B", 12)
		pdf.CellFormat(0, 8, "Evaluation", "", 1, "L", false, 0, "")
		pdf.SetFont(g.fontName, "", 10)
		scoreLines := []string{
			fmt.Sprintf("Team questions: %s", formatScore(doc.Proposal.QuestionsScore)),
			fmt.Sprintf("Code challenge: %s", formatScore(doc.Proposal.CodeChallengeScore)),
			fmt.Sprintf("Team scenario: %s", formatScore(doc.Proposal.TeamScenarioScore)),
			fmt.Sprintf("Price: %s", formatScore(doc.Proposal.PriceScore)),
		}
		for _, line := range scoreLines {
			pdf.CellFormat(0, 5, line, "", 1, "L", false, 0, "")
		}
		pdf.Ln(2)
	}

	if len(doc.Proposal.References) > 0 {
		pdf.SetFont(g.fontName, "B", 12)
		pdf.CellFormat(0, 8, "References", "", 1, "L", false, 0, "")
		refHeaders := []string{"Name", "Company", "Phone", "Email"}
		refWidths := []float64{45, 45, 40, 50}
		drawTableRow(pdf, g.fontName, refHeaders, refWidths, true)
		for _, reference := range doc.Proposal.References {
			drawTableRow(pdf, g.fontName, []string{
				reference.Name,
				reference.Company,
				reference.Phone,
				reference.Email,
			}, refWidths, false)
		}
		pdf.Ln(2)
	}

	if len(doc.Proposal.History) > 0 {
		pdf.SetFont(g.fontName, "B", 12)
		pdf.CellFormat(0, 8, "Status history", "", 1, "L", false, 0, "")
		pdf.SetFont(g.fontName, "", 10)
		for _, record := range doc.Proposal.History {
			line := fmt.Sprintf("%s — %s", record.CreatedAt.Format("2006-01-02 15:04"), record.Status)
			if strings.TrimSpace(record.Note) != "" {
				line += fmt.Sprintf(": %s", record.Note)
			}
			pdf.MultiCell(0, 5, line, "", "L", false)
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func drawTableRow(pdf *gofpdf.Fpdf, fontName string, cols []string, widths []float64, header bool) {
	style := ""
	if header {
		style = "B"
	}
	pdf.SetFont(fontName, style, 10)
	for i, col := range cols {
		align := "L"
		if i > 0 {
			align = "R"
		}
		pdf.CellFormat(widths[i], 8, col, "1", 0, align, false, 0, "")
	}
	pdf.Ln(-1)
}

func phaseLabel(kind model.PhaseKind) string {
	switch kind {
	case model.PhaseInception:
		return "Inception"
	case model.PhasePrototype:
		return "Proof of Concept"
	case model.PhaseImplementation:
		return "Implementation"
	default:
		return string(kind)
	}
}

func hasScores(p model.Proposal) bool {
	return p.QuestionsScore != nil || p.CodeChallengeScore != nil ||
		p.TeamScenarioScore != nil || p.PriceScore != nil
}

func formatScore(value *float64) string {
	if value == nil {
		return "—"
	}
	return fmt.Sprintf("%.2f", *value)
}

func formatAmount(value float64) string {
	return fmt.Sprintf("$%.2f", value)
}

func formatDate(t *time.Time) string {
	if t == nil || t.IsZero() {
		return "—"
	}
	return t.Format("2006-01-02")
}
