package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/nurpe/procure-proposals/internal/model"
	"github.com/nurpe/procure-proposals/internal/validation"
)

// ProposalService orchestrates the proposal lifecycle: it authorizes the
// actor, consults the transition table, matches the opportunity's evaluation
// stage, runs the validators and only then asks the store to persist. Each
// operation maps to exactly one store command, so a failed check leaves
// nothing half-applied.
type ProposalService struct {
	store    Store
	notifier Notifier
}

func NewProposalService(store Store, notifier Notifier) *ProposalService {
	return &ProposalService{
		store:    store,
		notifier: notifier,
	}
}

// PhaseInput is one phase of a proposal as received from the vendor.
type PhaseInput struct {
	Members      []model.PhaseMember
	ProposedCost float64
}

// ProposalInput carries the vendor-editable fields of a proposal.
type ProposalInput struct {
	OrganizationID        *uuid.UUID
	InceptionPhase        *PhaseInput
	PrototypePhase        *PhaseInput
	ImplementationPhase   *PhaseInput
	References            []model.Reference
	TeamQuestionResponses []model.QuestionResponse
	AttachmentIDs         []uuid.UUID
}

type CreateInput struct {
	OpportunityID uuid.UUID
	// Status is either DRAFT or SUBMITTED. Submitting at creation runs the
	// full validation suite; saving a draft runs only referential checks.
	Status string
	ProposalInput
}

// Create starts a new proposal for an opportunity. Vendors only. A draft may
// be structurally incomplete; creating directly as submitted is held to the
// same checks as Submit.
func (s *ProposalService) Create(ctx context.Context, input CreateInput, actor model.Principal) (*model.Proposal, error) {
	if !actor.IsVendor() {
		return nil, fmt.Errorf("%w: only vendors can create proposals", ErrPermissionDenied)
	}
	status, ok := model.ParseStatus(input.Status)
	if !ok || (status != model.StatusDraft && status != model.StatusSubmitted) {
		return nil, invalidField("status", "A new proposal must be saved as a draft or submitted.")
	}

	opportunity, err := s.store.Opportunity(ctx, input.OpportunityID)
	if err != nil {
		return nil, err
	}

	content := input.ProposalInput.content()
	if err := s.checkOrganization(ctx, content.OrganizationID, actor); err != nil {
		return nil, err
	}
	if content.OrganizationID != nil {
		if err := s.checkUniqueness(ctx, opportunity.ID, *content.OrganizationID, uuid.Nil); err != nil {
			return nil, err
		}
	}
	if err := s.checkAttachments(ctx, content.AttachmentIDs); err != nil {
		return nil, err
	}

	if status == model.StatusSubmitted {
		if !model.IsValidStatusChange(model.StatusDraft, model.StatusSubmitted, actor.Role, opportunity.ProposalDeadline) {
			return nil, fmt.Errorf("%w: the proposal deadline has passed", ErrPermissionDenied)
		}
		if err := s.checkSubmittable(ctx, opportunity, content, actor); err != nil {
			return nil, err
		}
	}

	proposal, err := s.store.CreateProposal(ctx, CreateCommand{
		OpportunityID: opportunity.ID,
		Content:       content,
		Status:        status,
		ActorID:       actor.UserID,
	})
	if err != nil {
		return nil, err
	}
	if status == model.StatusSubmitted {
		s.notifier.Publish(ctx, EventSubmitted, proposal, actor.UserID)
	}
	return proposal, nil
}

// Edit replaces the vendor-editable content of a proposal. Drafts accept
// incomplete content; a submitted proposal must remain fully valid, and its
// organization cannot change outside Draft and Withdrawn.
func (s *ProposalService) Edit(ctx context.Context, id uuid.UUID, input ProposalInput, actor model.Principal) (*model.Proposal, error) {
	proposal, err := s.getProposal(ctx, id, actor)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeVendorWrite(proposal, actor); err != nil {
		return nil, err
	}
	if !statusEditable(proposal.Status) {
		return nil, fmt.Errorf("%w: the proposal can no longer be edited", ErrPermissionDenied)
	}

	opportunity, err := s.store.Opportunity(ctx, proposal.OpportunityID)
	if err != nil {
		return nil, err
	}

	content := input.content()
	if proposal.Status != model.StatusDraft && proposal.Status != model.StatusWithdrawn &&
		!sameOrganization(proposal.OrganizationID, content.OrganizationID) {
		return nil, invalidField("organization", "The organization cannot be changed once the proposal has been submitted.")
	}
	if err := s.checkOrganization(ctx, content.OrganizationID, actor); err != nil {
		return nil, err
	}
	if content.OrganizationID != nil {
		if err := s.checkUniqueness(ctx, opportunity.ID, *content.OrganizationID, proposal.ID); err != nil {
			return nil, err
		}
	}
	if err := s.checkAttachments(ctx, content.AttachmentIDs); err != nil {
		return nil, err
	}
	if proposal.Status != model.StatusDraft {
		errs, err := s.validateContent(ctx, opportunity, content)
		if err != nil {
			return nil, err
		}
		if !errs.Empty() {
			return nil, invalid(errs)
		}
	}

	return s.store.UpdateContent(ctx, UpdateCommand{
		ProposalID: proposal.ID,
		Version:    proposal.Version,
		Content:    content,
		ActorID:    actor.UserID,
	})
}

// Submit moves a draft or withdrawn proposal into the evaluation pipeline.
// The stored content is re-validated in full and the organization's
// qualification is re-checked at this moment, regardless of what held when
// the draft was saved.
func (s *ProposalService) Submit(ctx context.Context, id uuid.UUID, note string, actor model.Principal) (*model.Proposal, error) {
	proposal, err := s.getProposal(ctx, id, actor)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeVendorWrite(proposal, actor); err != nil {
		return nil, err
	}
	opportunity, err := s.store.Opportunity(ctx, proposal.OpportunityID)
	if err != nil {
		return nil, err
	}
	if !model.IsValidStatusChange(proposal.Status, model.StatusSubmitted, actor.Role, opportunity.ProposalDeadline) {
		return nil, fmt.Errorf("%w: the proposal cannot be submitted", ErrPermissionDenied)
	}
	if err := s.checkSubmittable(ctx, opportunity, contentOf(proposal), actor); err != nil {
		return nil, err
	}
	if errs := validation.Note(note); !errs.Empty() {
		return nil, invalid(errs)
	}

	updated, err := s.store.UpdateStatus(ctx, StatusCommand{
		ProposalID: proposal.ID,
		Version:    proposal.Version,
		Status:     model.StatusSubmitted,
		Note:       note,
		ActorID:    actor.UserID,
	})
	if err != nil {
		return nil, err
	}
	s.notifier.Publish(ctx, EventSubmitted, updated, actor.UserID)
	return updated, nil
}

// ScoreQuestions records per-question scores and marks the team questions
// checkpoint evaluated. Re-scoring an already evaluated proposal is allowed
// while the opportunity remains in the team questions stage.
func (s *ProposalService) ScoreQuestions(ctx context.Context, id uuid.UUID, scores []model.QuestionScore, note string, actor model.Principal) (*model.Proposal, error) {
	proposal, opportunity, err := s.getForEvaluation(ctx, id, actor)
	if err != nil {
		return nil, err
	}
	if err := s.checkScorable(proposal, opportunity, model.StatusUnderReviewTeamQuestions, model.StatusEvaluatedTeamQuestions, model.StageTeamQuestions); err != nil {
		return nil, err
	}
	errs := validation.Join(
		validation.QuestionScores(scores, opportunity.TeamQuestions),
		validation.Note(note),
	)
	if !errs.Empty() {
		return nil, invalid(errs)
	}
	return s.store.UpdateQuestionScores(ctx, QuestionScoresCommand{
		ProposalID: proposal.ID,
		Version:    proposal.Version,
		Scores:     scores,
		Status:     model.StatusEvaluatedTeamQuestions,
		Note:       note,
		ActorID:    actor.UserID,
	})
}

// ScoreCodeChallenge records the code challenge score and marks that
// checkpoint evaluated.
func (s *ProposalService) ScoreCodeChallenge(ctx context.Context, id uuid.UUID, score float64, note string, actor model.Principal) (*model.Proposal, error) {
	proposal, opportunity, err := s.getForEvaluation(ctx, id, actor)
	if err != nil {
		return nil, err
	}
	if err := s.checkScorable(proposal, opportunity, model.StatusUnderReviewCodeChallenge, model.StatusEvaluatedCodeChallenge, model.StageCodeChallenge); err != nil {
		return nil, err
	}
	errs := validation.Join(validation.CodeChallengeScore(score), validation.Note(note))
	if !errs.Empty() {
		return nil, invalid(errs)
	}
	return s.store.UpdateCodeChallengeScore(ctx, ScoreCommand{
		ProposalID: proposal.ID,
		Version:    proposal.Version,
		Score:      score,
		Status:     model.StatusEvaluatedCodeChallenge,
		Note:       note,
		ActorID:    actor.UserID,
	})
}

// ScoreTeamScenario records the scenario score and marks the final checkpoint
// evaluated. The store derives price scores for the opportunity's scored
// proposals in the same transaction.
func (s *ProposalService) ScoreTeamScenario(ctx context.Context, id uuid.UUID, score float64, note string, actor model.Principal) (*model.Proposal, error) {
	proposal, opportunity, err := s.getForEvaluation(ctx, id, actor)
	if err != nil {
		return nil, err
	}
	if err := s.checkScorable(proposal, opportunity, model.StatusUnderReviewTeamScenario, model.StatusEvaluatedTeamScenario, model.StageTeamScenario); err != nil {
		return nil, err
	}
	errs := validation.Join(validation.TeamScenarioScore(score), validation.Note(note))
	if !errs.Empty() {
		return nil, invalid(errs)
	}
	return s.store.UpdateTeamScenarioScore(ctx, ScoreCommand{
		ProposalID: proposal.ID,
		Version:    proposal.Version,
		Score:      score,
		Status:     model.StatusEvaluatedTeamScenario,
		Note:       note,
		ActorID:    actor.UserID,
	})
}

// ScreenInToCodeChallenge advances a proposal that cleared the team questions
// checkpoint into code challenge review.
func (s *ProposalService) ScreenInToCodeChallenge(ctx context.Context, id uuid.UUID, note string, actor model.Principal) (*model.Proposal, error) {
	return s.screen(ctx, id, model.StatusUnderReviewCodeChallenge, note, actor,
		model.StageTeamQuestions)
}

// ScreenOutFromCodeChallenge returns a proposal to the team questions
// checkpoint.
func (s *ProposalService) ScreenOutFromCodeChallenge(ctx context.Context, id uuid.UUID, note string, actor model.Principal) (*model.Proposal, error) {
	return s.screen(ctx, id, model.StatusEvaluatedTeamQuestions, note, actor,
		model.StageTeamQuestions, model.StageCodeChallenge)
}

// ScreenInToTeamScenario advances a proposal that cleared the code challenge
// checkpoint into team scenario review.
func (s *ProposalService) ScreenInToTeamScenario(ctx context.Context, id uuid.UUID, note string, actor model.Principal) (*model.Proposal, error) {
	return s.screen(ctx, id, model.StatusUnderReviewTeamScenario, note, actor,
		model.StageCodeChallenge)
}

// ScreenOutFromTeamScenario returns a proposal to the code challenge
// checkpoint.
func (s *ProposalService) ScreenOutFromTeamScenario(ctx context.Context, id uuid.UUID, note string, actor model.Principal) (*model.Proposal, error) {
	return s.screen(ctx, id, model.StatusEvaluatedCodeChallenge, note, actor,
		model.StageCodeChallenge, model.StageTeamScenario)
}

// Award marks the winning proposal. Notification of the winner and the
// unsuccessful proponents is triggered here but carried out elsewhere.
func (s *ProposalService) Award(ctx context.Context, id uuid.UUID, note string, actor model.Principal) (*model.Proposal, error) {
	proposal, opportunity, err := s.getForEvaluation(ctx, id, actor)
	if err != nil {
		return nil, err
	}
	if !model.IsValidStatusChange(proposal.Status, model.StatusAwarded, actor.Role, opportunity.ProposalDeadline) {
		return nil, fmt.Errorf("%w: the proposal cannot be awarded", ErrPermissionDenied)
	}
	if opportunity.Stage != model.StageTeamScenario {
		return nil, errStageMismatch()
	}
	if errs := validation.Note(note); !errs.Empty() {
		return nil, invalid(errs)
	}
	updated, err := s.store.UpdateStatus(ctx, StatusCommand{
		ProposalID: proposal.ID,
		Version:    proposal.Version,
		Status:     model.StatusAwarded,
		Note:       note,
		ActorID:    actor.UserID,
	})
	if err != nil {
		return nil, err
	}
	s.notifier.Publish(ctx, EventAwarded, updated, actor.UserID)
	if siblings, err := s.store.ListForOpportunity(ctx, proposal.OpportunityID); err == nil {
		for i := range siblings {
			if siblings[i].ID == updated.ID || siblings[i].Status.Terminal() {
				continue
			}
			s.notifier.Publish(ctx, EventNotAwarded, &siblings[i], actor.UserID)
		}
	}
	return updated, nil
}

// Disqualify removes a proposal from evaluation for cause. A written reason
// is mandatory. No evaluation-stage match is required.
func (s *ProposalService) Disqualify(ctx context.Context, id uuid.UUID, reason string, actor model.Principal) (*model.Proposal, error) {
	proposal, opportunity, err := s.getForEvaluation(ctx, id, actor)
	if err != nil {
		return nil, err
	}
	if !model.IsValidStatusChange(proposal.Status, model.StatusDisqualified, actor.Role, opportunity.ProposalDeadline) {
		return nil, fmt.Errorf("%w: the proposal cannot be disqualified", ErrPermissionDenied)
	}
	if errs := validation.DisqualificationReason(reason); !errs.Empty() {
		return nil, invalid(errs)
	}
	updated, err := s.store.UpdateStatus(ctx, StatusCommand{
		ProposalID: proposal.ID,
		Version:    proposal.Version,
		Status:     model.StatusDisqualified,
		Note:       reason,
		ActorID:    actor.UserID,
	})
	if err != nil {
		return nil, err
	}
	s.notifier.Publish(ctx, EventDisqualified, updated, actor.UserID)
	return updated, nil
}

// Withdraw takes a proposal out of evaluation at the vendor's request. A
// withdrawn proposal may be edited and resubmitted while the deadline allows.
func (s *ProposalService) Withdraw(ctx context.Context, id uuid.UUID, note string, actor model.Principal) (*model.Proposal, error) {
	proposal, err := s.getProposal(ctx, id, actor)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeVendorWrite(proposal, actor); err != nil {
		return nil, err
	}
	opportunity, err := s.store.Opportunity(ctx, proposal.OpportunityID)
	if err != nil {
		return nil, err
	}
	if !model.IsValidStatusChange(proposal.Status, model.StatusWithdrawn, actor.Role, opportunity.ProposalDeadline) {
		return nil, fmt.Errorf("%w: the proposal cannot be withdrawn", ErrPermissionDenied)
	}
	if errs := validation.Note(note); !errs.Empty() {
		return nil, invalid(errs)
	}
	updated, err := s.store.UpdateStatus(ctx, StatusCommand{
		ProposalID: proposal.ID,
		Version:    proposal.Version,
		Status:     model.StatusWithdrawn,
		Note:       note,
		ActorID:    actor.UserID,
	})
	if err != nil {
		return nil, err
	}
	s.notifier.Publish(ctx, EventWithdrawn, updated, actor.UserID)
	return updated, nil
}

// Delete removes a proposal permanently. Only drafts can be deleted; anything
// later in the lifecycle is part of the procurement record.
func (s *ProposalService) Delete(ctx context.Context, id uuid.UUID, actor model.Principal) error {
	proposal, err := s.getProposal(ctx, id, actor)
	if err != nil {
		return err
	}
	if err := s.authorizeVendorWrite(proposal, actor); err != nil {
		return err
	}
	if proposal.Status != model.StatusDraft {
		return invalidField("status", "Only draft proposals can be deleted.")
	}
	return s.store.DeleteProposal(ctx, proposal.ID)
}

// Get returns a single proposal if it is visible to the actor.
func (s *ProposalService) Get(ctx context.Context, id uuid.UUID, actor model.Principal) (*model.Proposal, error) {
	return s.getProposal(ctx, id, actor)
}

// ListOwn returns the proposals the vendor authored or that belong to their
// organizations.
func (s *ProposalService) ListOwn(ctx context.Context, actor model.Principal) ([]model.Proposal, error) {
	if !actor.IsVendor() {
		return nil, fmt.Errorf("%w: only vendors have their own proposals", ErrPermissionDenied)
	}
	return s.store.ListOwn(ctx, actor.UserID, actor.OrgIDs)
}

// ListForOpportunity returns an opportunity's proposals as seen by an
// evaluator. Drafts never appear.
func (s *ProposalService) ListForOpportunity(ctx context.Context, opportunityID uuid.UUID, actor model.Principal) ([]model.Proposal, error) {
	if !actor.IsEvaluator() {
		return nil, ErrPermissionDenied
	}
	if _, err := s.store.Opportunity(ctx, opportunityID); err != nil {
		return nil, err
	}
	proposals, err := s.store.ListForOpportunity(ctx, opportunityID)
	if err != nil {
		return nil, err
	}
	visible := make([]model.Proposal, 0, len(proposals))
	for _, proposal := range proposals {
		if proposal.VisibleTo(actor) {
			visible = append(visible, proposal)
		}
	}
	return visible, nil
}

func (s *ProposalService) screen(ctx context.Context, id uuid.UUID, to model.Status, note string, actor model.Principal, stages ...model.EvaluationStage) (*model.Proposal, error) {
	proposal, opportunity, err := s.getForEvaluation(ctx, id, actor)
	if err != nil {
		return nil, err
	}
	if !model.IsValidStatusChange(proposal.Status, to, actor.Role, opportunity.ProposalDeadline) {
		return nil, fmt.Errorf("%w: the proposal cannot move to this step", ErrPermissionDenied)
	}
	if !stageIn(opportunity.Stage, stages...) {
		return nil, errStageMismatch()
	}
	if errs := validation.Note(note); !errs.Empty() {
		return nil, invalid(errs)
	}
	return s.store.UpdateStatus(ctx, StatusCommand{
		ProposalID: proposal.ID,
		Version:    proposal.Version,
		Status:     to,
		Note:       note,
		ActorID:    actor.UserID,
	})
}

// getProposal loads a proposal and hides its existence from actors it is not
// visible to.
func (s *ProposalService) getProposal(ctx context.Context, id uuid.UUID, actor model.Principal) (*model.Proposal, error) {
	proposal, err := s.store.Proposal(ctx, id)
	if err != nil {
		return nil, err
	}
	if !proposal.VisibleTo(actor) {
		return nil, ErrNotFound
	}
	return proposal, nil
}

func (s *ProposalService) getForEvaluation(ctx context.Context, id uuid.UUID, actor model.Principal) (*model.Proposal, *model.Opportunity, error) {
	if !actor.IsEvaluator() {
		return nil, nil, ErrPermissionDenied
	}
	proposal, err := s.getProposal(ctx, id, actor)
	if err != nil {
		return nil, nil, err
	}
	opportunity, err := s.store.Opportunity(ctx, proposal.OpportunityID)
	if err != nil {
		return nil, nil, err
	}
	return proposal, opportunity, nil
}

// checkScorable admits a proposal under review at the matching checkpoint, or
// one already evaluated there so a score can be corrected while the stage is
// still open. Exactly those two statuses qualify; a proposal that has moved on
// to a later checkpoint only comes back through a screen-out.
func (s *ProposalService) checkScorable(proposal *model.Proposal, opportunity *model.Opportunity, underReview, evaluated model.Status, stage model.EvaluationStage) error {
	if proposal.Status != underReview && proposal.Status != evaluated {
		return fmt.Errorf("%w: the proposal is not under review at this step", ErrPermissionDenied)
	}
	if opportunity.Stage != stage {
		return errStageMismatch()
	}
	return nil
}

func (s *ProposalService) authorizeVendorWrite(proposal *model.Proposal, actor model.Principal) error {
	if actor.IsAdmin() {
		return nil
	}
	if !actor.IsVendor() {
		return ErrPermissionDenied
	}
	if proposal.CreatedBy == actor.UserID {
		return nil
	}
	if proposal.OrganizationID != nil && actor.OwnsOrg(*proposal.OrganizationID) {
		return nil
	}
	return ErrPermissionDenied
}

// checkOrganization verifies that a referenced organization exists, is active
// and is owned by the actor. Qualification is deliberately not checked here;
// that happens at submission.
func (s *ProposalService) checkOrganization(ctx context.Context, orgID *uuid.UUID, actor model.Principal) error {
	if orgID == nil {
		return nil
	}
	if !actor.IsAdmin() && !actor.OwnsOrg(*orgID) {
		return fmt.Errorf("%w: the organization is not yours to propose with", ErrPermissionDenied)
	}
	org, err := s.store.Organization(ctx, *orgID)
	if err != nil {
		if isNotFound(err) {
			return invalidField("organization", "This organization could not be found.")
		}
		return err
	}
	if !org.Active {
		return invalidField("organization", "This organization is no longer active.")
	}
	return nil
}

// checkUniqueness enforces one proposal per organization per opportunity.
func (s *ProposalService) checkUniqueness(ctx context.Context, opportunityID, organizationID, selfID uuid.UUID) error {
	existing, err := s.store.ProposalForOrganization(ctx, opportunityID, organizationID)
	if err != nil {
		if isNotFound(err) {
			return nil
		}
		return err
	}
	if existing.ID != selfID {
		return fmt.Errorf("%w: this organization already has a proposal for this opportunity", ErrConflict)
	}
	return nil
}

func (s *ProposalService) checkAttachments(ctx context.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	missing, err := s.store.MissingAttachments(ctx, ids)
	if err != nil {
		return err
	}
	if len(missing) > 0 {
		return invalidField("attachments", "One or more attachments could not be found.")
	}
	return nil
}

// checkSubmittable runs the submission-grade checks: a qualified organization
// and fully valid content.
func (s *ProposalService) checkSubmittable(ctx context.Context, opportunity *model.Opportunity, content Content, actor model.Principal) error {
	if content.OrganizationID == nil {
		return invalidField("organization", "Please select an organization before submitting.")
	}
	if !actor.IsAdmin() && !actor.OwnsOrg(*content.OrganizationID) {
		return fmt.Errorf("%w: the organization is not yours to submit with", ErrPermissionDenied)
	}
	org, err := s.store.Organization(ctx, *content.OrganizationID)
	if err != nil {
		return err
	}
	if !org.Active || !org.Qualified {
		return fmt.Errorf("%w: the organization is not qualified for this opportunity", ErrPermissionDenied)
	}
	errs, err := s.validateContent(ctx, opportunity, content)
	if err != nil {
		return err
	}
	if !errs.Empty() {
		return invalid(errs)
	}
	return nil
}

// validateContent runs the full entity suite against an opportunity. Every
// validator runs; the combined error set is returned in one pass.
func (s *ProposalService) validateContent(ctx context.Context, opportunity *model.Opportunity, content Content) (validation.Errors, error) {
	directory, err := s.memberDirectory(ctx, content)
	if err != nil {
		return nil, err
	}

	errs := validation.Errors{}
	errs.Extend("inceptionPhase", validation.Phase(content.InceptionPhase, opportunity.InceptionPhase, content.OrganizationID, directory))
	errs.Extend("prototypePhase", validation.Phase(content.PrototypePhase, opportunity.PrototypePhase, content.OrganizationID, directory))
	errs.Extend("implementationPhase", validation.Phase(content.ImplementationPhase, opportunity.ImplementationPhase, content.OrganizationID, directory))

	team := make([]model.Member, 0, len(directory))
	for _, member := range directory {
		team = append(team, member)
	}
	errs.Extend("", validation.TeamComposition(opportunity, team))
	errs.Extend("", validation.TotalCost(
		phaseCost(content.InceptionPhase),
		phaseCost(content.PrototypePhase),
		phaseCost(content.ImplementationPhase),
		opportunity.TotalMaxBudget))
	errs.Extend("", validation.QuestionResponses(content.TeamQuestionResponses, opportunity.TeamQuestions))
	errs.Extend("", validation.References(content.References))
	return errs, nil
}

func (s *ProposalService) memberDirectory(ctx context.Context, content Content) (map[uuid.UUID]model.Member, error) {
	seen := make(map[uuid.UUID]struct{})
	var ids []uuid.UUID
	for _, phase := range []*model.Phase{content.InceptionPhase, content.PrototypePhase, content.ImplementationPhase} {
		if phase == nil {
			continue
		}
		for _, member := range phase.Members {
			if _, ok := seen[member.UserID]; ok {
				continue
			}
			seen[member.UserID] = struct{}{}
			ids = append(ids, member.UserID)
		}
	}
	if len(ids) == 0 {
		return map[uuid.UUID]model.Member{}, nil
	}
	return s.store.Members(ctx, ids)
}

func (in ProposalInput) content() Content {
	return Content{
		OrganizationID:        in.OrganizationID,
		InceptionPhase:        in.InceptionPhase.phase(model.PhaseInception),
		PrototypePhase:        in.PrototypePhase.phase(model.PhasePrototype),
		ImplementationPhase:   in.ImplementationPhase.phase(model.PhaseImplementation),
		References:            in.References,
		TeamQuestionResponses: in.TeamQuestionResponses,
		AttachmentIDs:         in.AttachmentIDs,
	}
}

func (in *PhaseInput) phase(kind model.PhaseKind) *model.Phase {
	if in == nil {
		return nil
	}
	return &model.Phase{
		Kind:         kind,
		Members:      in.Members,
		ProposedCost: in.ProposedCost,
	}
}

func contentOf(p *model.Proposal) Content {
	return Content{
		OrganizationID:        p.OrganizationID,
		InceptionPhase:        p.InceptionPhase,
		PrototypePhase:        p.PrototypePhase,
		ImplementationPhase:   p.ImplementationPhase,
		References:            p.References,
		TeamQuestionResponses: p.TeamQuestionResponses,
		AttachmentIDs:         p.AttachmentIDs,
	}
}

func statusEditable(s model.Status) bool {
	return s == model.StatusDraft || s == model.StatusSubmitted || s == model.StatusWithdrawn
}

func sameOrganization(a, b *uuid.UUID) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func phaseCost(phase *model.Phase) float64 {
	if phase == nil {
		return 0
	}
	return phase.ProposedCost
}

func stageIn(stage model.EvaluationStage, set ...model.EvaluationStage) bool {
	for _, candidate := range set {
		if stage == candidate {
			return true
		}
	}
	return false
}

func errStageMismatch() error {
	return fmt.Errorf("%w: the opportunity is not in the correct evaluation stage for this action", ErrPermissionDenied)
}

func isNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
