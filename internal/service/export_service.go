package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/nurpe/procure-proposals/internal/model"
)

type PDFGenerator interface {
	Generate(doc model.ProposalDocument) ([]byte, error)
}

type ExcelGenerator interface {
	Generate(sheet model.Scoresheet) ([]byte, error)
}

// ExportService renders read-only artifacts: a PDF summary of one proposal
// and an Excel scoresheet for an opportunity's evaluation. It reuses the
// lifecycle service's visibility rules, so an export never reveals more than
// the equivalent read would.
type ExportService struct {
	store Store
	pdf   PDFGenerator
	excel ExcelGenerator
}

func NewExportService(store Store, pdf PDFGenerator, excel ExcelGenerator) *ExportService {
	return &ExportService{
		store: store,
		pdf:   pdf,
		excel: excel,
	}
}

type ExportResult struct {
	FileName string
	Content  []byte
}

// ProposalPDF renders a proposal summary for anyone the proposal is visible
// to.
func (s *ExportService) ProposalPDF(ctx context.Context, id uuid.UUID, actor model.Principal) (*ExportResult, error) {
	proposal, err := s.store.Proposal(ctx, id)
	if err != nil {
		return nil, err
	}
	if !proposal.VisibleTo(actor) {
		return nil, ErrNotFound
	}
	opportunity, err := s.store.Opportunity(ctx, proposal.OpportunityID)
	if err != nil {
		return nil, err
	}

	doc := model.ProposalDocument{
		Proposal:    *proposal,
		Opportunity: *opportunity,
	}
	if proposal.OrganizationID != nil {
		org, err := s.store.Organization(ctx, *proposal.OrganizationID)
		if err != nil && !isNotFound(err) {
			return nil, err
		}
		doc.Organization = org
	}

	content, err := s.pdf.Generate(doc)
	if err != nil {
		return nil, fmt.Errorf("%w: render proposal pdf: %v", ErrUnavailable, err)
	}
	return &ExportResult{
		FileName: fmt.Sprintf("proposal-%s.pdf", proposal.ID),
		Content:  content,
	}, nil
}

// Scoresheet renders the evaluation scoresheet for an opportunity. Evaluators
// only; drafts never appear.
func (s *ExportService) Scoresheet(ctx context.Context, opportunityID uuid.UUID, actor model.Principal) (*ExportResult, error) {
	if !actor.IsEvaluator() {
		return nil, ErrPermissionDenied
	}
	opportunity, err := s.store.Opportunity(ctx, opportunityID)
	if err != nil {
		return nil, err
	}
	proposals, err := s.store.ListForOpportunity(ctx, opportunityID)
	if err != nil {
		return nil, err
	}

	orgIDs := make([]uuid.UUID, 0, len(proposals))
	for _, proposal := range proposals {
		if proposal.OrganizationID != nil {
			orgIDs = append(orgIDs, *proposal.OrganizationID)
		}
	}
	orgs, err := s.store.Organizations(ctx, orgIDs)
	if err != nil {
		return nil, err
	}

	sheet := model.Scoresheet{Opportunity: *opportunity}
	for _, proposal := range proposals {
		if !proposal.VisibleTo(actor) {
			continue
		}
		row := model.ScoresheetRow{
			ProposalID:         proposal.ID,
			Status:             proposal.Status,
			TotalProposedCost:  proposal.TotalProposedCost(),
			QuestionsScore:     proposal.QuestionsScore,
			CodeChallengeScore: proposal.CodeChallengeScore,
			TeamScenarioScore:  proposal.TeamScenarioScore,
			PriceScore:         proposal.PriceScore,
		}
		if proposal.OrganizationID != nil {
			if org, ok := orgs[*proposal.OrganizationID]; ok {
				row.Organization = org.LegalName
			}
		}
		row.TotalScore = row.Total()
		sheet.Rows = append(sheet.Rows, row)
	}

	content, err := s.excel.Generate(sheet)
	if err != nil {
		return nil, fmt.Errorf("%w: render scoresheet: %v", ErrUnavailable, err)
	}
	return &ExportResult{
		FileName: fmt.Sprintf("scoresheet-%s.xlsx", opportunity.ID),
		Content:  content,
	}, nil
}
