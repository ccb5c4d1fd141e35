package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nurpe/procure-proposals/internal/model"
)

type fakeStore struct {
	opportunities map[uuid.UUID]*model.Opportunity
	organizations map[uuid.UUID]*model.Organization
	members       map[uuid.UUID]model.Member
	files         map[uuid.UUID]struct{}
	proposals     map[uuid.UUID]*model.Proposal
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		opportunities: map[uuid.UUID]*model.Opportunity{},
		organizations: map[uuid.UUID]*model.Organization{},
		members:       map[uuid.UUID]model.Member{},
		files:         map[uuid.UUID]struct{}{},
		proposals:     map[uuid.UUID]*model.Proposal{},
	}
}

func (s *fakeStore) Opportunity(_ context.Context, id uuid.UUID) (*model.Opportunity, error) {
	opportunity, ok := s.opportunities[id]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *opportunity
	return &copied, nil
}

func (s *fakeStore) Organization(_ context.Context, id uuid.UUID) (*model.Organization, error) {
	org, ok := s.organizations[id]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *org
	return &copied, nil
}

func (s *fakeStore) Organizations(_ context.Context, ids []uuid.UUID) (map[uuid.UUID]model.Organization, error) {
	result := map[uuid.UUID]model.Organization{}
	for _, id := range ids {
		if org, ok := s.organizations[id]; ok {
			result[id] = *org
		}
	}
	return result, nil
}

func (s *fakeStore) Proposal(_ context.Context, id uuid.UUID) (*model.Proposal, error) {
	proposal, ok := s.proposals[id]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *proposal
	return &copied, nil
}

func (s *fakeStore) ProposalForOrganization(_ context.Context, opportunityID, organizationID uuid.UUID) (*model.Proposal, error) {
	for _, proposal := range s.proposals {
		if proposal.OpportunityID == opportunityID &&
			proposal.OrganizationID != nil && *proposal.OrganizationID == organizationID {
			copied := *proposal
			return &copied, nil
		}
	}
	return nil, ErrNotFound
}

func (s *fakeStore) Members(_ context.Context, userIDs []uuid.UUID) (map[uuid.UUID]model.Member, error) {
	result := map[uuid.UUID]model.Member{}
	for _, id := range userIDs {
		if member, ok := s.members[id]; ok {
			result[id] = member
		}
	}
	return result, nil
}

func (s *fakeStore) MissingAttachments(_ context.Context, ids []uuid.UUID) ([]uuid.UUID, error) {
	var missing []uuid.UUID
	for _, id := range ids {
		if _, ok := s.files[id]; !ok {
			missing = append(missing, id)
		}
	}
	return missing, nil
}

func (s *fakeStore) ListOwn(_ context.Context, userID uuid.UUID, orgIDs []uuid.UUID) ([]model.Proposal, error) {
	var result []model.Proposal
	for _, proposal := range s.proposals {
		if proposal.CreatedBy == userID {
			result = append(result, *proposal)
			continue
		}
		for _, orgID := range orgIDs {
			if proposal.OrganizationID != nil && *proposal.OrganizationID == orgID {
				result = append(result, *proposal)
				break
			}
		}
	}
	return result, nil
}

func (s *fakeStore) ListForOpportunity(_ context.Context, opportunityID uuid.UUID) ([]model.Proposal, error) {
	var result []model.Proposal
	for _, proposal := range s.proposals {
		if proposal.OpportunityID == opportunityID && proposal.Status != model.StatusDraft {
			result = append(result, *proposal)
		}
	}
	return result, nil
}

func (s *fakeStore) CreateProposal(_ context.Context, cmd CreateCommand) (*model.Proposal, error) {
	now := time.Now()
	proposal := &model.Proposal{
		ID:            uuid.New(),
		OpportunityID: cmd.OpportunityID,
		Status:        cmd.Status,
		Version:       1,
		CreatedBy:     cmd.ActorID,
		CreatedAt:     now,
		UpdatedBy:     cmd.ActorID,
		UpdatedAt:     now,
		History: []model.StatusRecord{
			{Status: cmd.Status, CreatedBy: cmd.ActorID, CreatedAt: now},
		},
	}
	applyContent(proposal, cmd.Content)
	if cmd.Status == model.StatusSubmitted {
		proposal.SubmittedAt = &now
	}
	s.proposals[proposal.ID] = proposal
	copied := *proposal
	return &copied, nil
}

func (s *fakeStore) UpdateContent(_ context.Context, cmd UpdateCommand) (*model.Proposal, error) {
	proposal, err := s.locked(cmd.ProposalID, cmd.Version)
	if err != nil {
		return nil, err
	}
	applyContent(proposal, cmd.Content)
	proposal.UpdatedBy = cmd.ActorID
	copied := *proposal
	return &copied, nil
}

func (s *fakeStore) UpdateStatus(_ context.Context, cmd StatusCommand) (*model.Proposal, error) {
	proposal, err := s.locked(cmd.ProposalID, cmd.Version)
	if err != nil {
		return nil, err
	}
	s.applyStatus(proposal, cmd.Status, cmd.Note, cmd.ActorID)
	copied := *proposal
	return &copied, nil
}

func (s *fakeStore) UpdateQuestionScores(_ context.Context, cmd QuestionScoresCommand) (*model.Proposal, error) {
	proposal, err := s.locked(cmd.ProposalID, cmd.Version)
	if err != nil {
		return nil, err
	}
	total := 0.0
	for _, score := range cmd.Scores {
		total += score.Score
	}
	proposal.QuestionScores = cmd.Scores
	proposal.QuestionsScore = &total
	s.applyStatus(proposal, cmd.Status, cmd.Note, cmd.ActorID)
	copied := *proposal
	return &copied, nil
}

func (s *fakeStore) UpdateCodeChallengeScore(_ context.Context, cmd ScoreCommand) (*model.Proposal, error) {
	proposal, err := s.locked(cmd.ProposalID, cmd.Version)
	if err != nil {
		return nil, err
	}
	score := cmd.Score
	proposal.CodeChallengeScore = &score
	s.applyStatus(proposal, cmd.Status, cmd.Note, cmd.ActorID)
	copied := *proposal
	return &copied, nil
}

func (s *fakeStore) UpdateTeamScenarioScore(_ context.Context, cmd ScoreCommand) (*model.Proposal, error) {
	proposal, err := s.locked(cmd.ProposalID, cmd.Version)
	if err != nil {
		return nil, err
	}
	score := cmd.Score
	proposal.TeamScenarioScore = &score
	s.applyStatus(proposal, cmd.Status, cmd.Note, cmd.ActorID)

	lowest := 0.0
	for _, sibling := range s.proposals {
		if sibling.OpportunityID != proposal.OpportunityID || sibling.TeamScenarioScore == nil {
			continue
		}
		total := sibling.TotalProposedCost()
		if total > 0 && (lowest == 0 || total < lowest) {
			lowest = total
		}
	}
	for _, sibling := range s.proposals {
		if sibling.OpportunityID != proposal.OpportunityID || sibling.TeamScenarioScore == nil {
			continue
		}
		total := sibling.TotalProposedCost()
		priceScore := 0.0
		if total > 0 {
			priceScore = lowest / total * 100
		}
		sibling.PriceScore = &priceScore
	}
	copied := *proposal
	return &copied, nil
}

func (s *fakeStore) DeleteProposal(_ context.Context, id uuid.UUID) error {
	if _, ok := s.proposals[id]; !ok {
		return ErrNotFound
	}
	delete(s.proposals, id)
	return nil
}

func (s *fakeStore) locked(id uuid.UUID, version int) (*model.Proposal, error) {
	proposal, ok := s.proposals[id]
	if !ok {
		return nil, ErrNotFound
	}
	if proposal.Version != version {
		return nil, ErrConflict
	}
	proposal.Version++
	proposal.UpdatedAt = time.Now()
	return proposal, nil
}

func (s *fakeStore) applyStatus(proposal *model.Proposal, status model.Status, note string, actorID uuid.UUID) {
	proposal.Status = status
	proposal.UpdatedBy = actorID
	now := time.Now()
	if status == model.StatusSubmitted {
		proposal.SubmittedAt = &now
	}
	proposal.History = append(proposal.History, model.StatusRecord{
		Status:    status,
		Note:      note,
		CreatedBy: actorID,
		CreatedAt: now,
	})
}

func applyContent(proposal *model.Proposal, content Content) {
	proposal.OrganizationID = content.OrganizationID
	proposal.InceptionPhase = content.InceptionPhase
	proposal.PrototypePhase = content.PrototypePhase
	proposal.ImplementationPhase = content.ImplementationPhase
	proposal.References = content.References
	proposal.TeamQuestionResponses = content.TeamQuestionResponses
	proposal.AttachmentIDs = content.AttachmentIDs
}

type fakeNotifier struct {
	events []Event
}

func (n *fakeNotifier) Publish(_ context.Context, event Event, _ *model.Proposal, _ uuid.UUID) {
	n.events = append(n.events, event)
}

type fixture struct {
	store     *fakeStore
	notifier  *fakeNotifier
	service   *ProposalService
	vendor    model.Principal
	gov       model.Principal
	orgID     uuid.UUID
	oppID     uuid.UUID
	memberID  uuid.UUID
	member2ID uuid.UUID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := newFakeStore()
	notifier := &fakeNotifier{}

	orgID := uuid.New()
	oppID := uuid.New()
	memberID := uuid.New()
	member2ID := uuid.New()

	store.opportunities[oppID] = &model.Opportunity{
		ID:               oppID,
		Title:            "Case Management Modernization",
		TotalMaxBudget:   100000,
		ProposalDeadline: time.Now().Add(24 * time.Hour),
		Stage:            model.StageNotStarted,
		InceptionPhase: &model.OpportunityPhase{
			Kind:                 model.PhaseInception,
			MaxBudget:            30000,
			RequiredCapabilities: []string{"Agile Coaching"},
		},
		ImplementationPhase: &model.OpportunityPhase{
			Kind:                 model.PhaseImplementation,
			MaxBudget:            70000,
			RequiredCapabilities: []string{"Backend Development"},
		},
		TeamQuestions: []model.TeamQuestion{
			{Order: 0, Question: "Describe your process.", WordLimit: 300, MaxScore: 5},
			{Order: 1, Question: "Describe your team.", WordLimit: 300, MaxScore: 10},
		},
	}
	store.organizations[orgID] = &model.Organization{
		ID:        orgID,
		LegalName: "Example Systems Ltd.",
		Active:    true,
		Qualified: true,
	}
	store.members[memberID] = model.Member{
		UserID:       memberID,
		OrgIDs:       []uuid.UUID{orgID},
		Capabilities: []string{"Agile Coaching", "Backend Development"},
	}
	store.members[member2ID] = model.Member{
		UserID:       member2ID,
		OrgIDs:       []uuid.UUID{orgID},
		Capabilities: []string{"Backend Development"},
	}

	return &fixture{
		store:    store,
		notifier: notifier,
		service:  NewProposalService(store, notifier),
		vendor: model.Principal{
			UserID: uuid.New(),
			Role:   model.RoleVendor,
			OrgIDs: []uuid.UUID{orgID},
		},
		gov: model.Principal{
			UserID: uuid.New(),
			Role:   model.RoleGovernment,
		},
		orgID:     orgID,
		oppID:     oppID,
		memberID:  memberID,
		member2ID: member2ID,
	}
}

func (f *fixture) validInput() ProposalInput {
	orgID := f.orgID
	return ProposalInput{
		OrganizationID: &orgID,
		InceptionPhase: &PhaseInput{
			Members:      []model.PhaseMember{{UserID: f.memberID, ScrumMaster: true}},
			ProposedCost: 25000,
		},
		ImplementationPhase: &PhaseInput{
			Members:      []model.PhaseMember{{UserID: f.member2ID}},
			ProposedCost: 60000,
		},
		TeamQuestionResponses: []model.QuestionResponse{
			{Order: 0, Response: "We work in short iterations."},
			{Order: 1, Response: "Two senior developers and a coach."},
		},
	}
}

// seedProposal stores a proposal with fully valid content in the given
// status, bypassing the service.
func (f *fixture) seedProposal(status model.Status) *model.Proposal {
	orgID := f.orgID
	now := time.Now()
	proposal := &model.Proposal{
		ID:             uuid.New(),
		OpportunityID:  f.oppID,
		OrganizationID: &orgID,
		Status:         status,
		Version:        1,
		InceptionPhase: &model.Phase{
			Kind:         model.PhaseInception,
			Members:      []model.PhaseMember{{UserID: f.memberID, ScrumMaster: true}},
			ProposedCost: 25000,
		},
		ImplementationPhase: &model.Phase{
			Kind:         model.PhaseImplementation,
			Members:      []model.PhaseMember{{UserID: f.member2ID}},
			ProposedCost: 60000,
		},
		TeamQuestionResponses: []model.QuestionResponse{
			{Order: 0, Response: "We work in short iterations."},
			{Order: 1, Response: "Two senior developers and a coach."},
		},
		CreatedBy: f.vendor.UserID,
		CreatedAt: now,
		UpdatedBy: f.vendor.UserID,
		UpdatedAt: now,
	}
	f.store.proposals[proposal.ID] = proposal
	return proposal
}

func (f *fixture) setStage(stage model.EvaluationStage) {
	f.store.opportunities[f.oppID].Stage = stage
}

func TestCreateDraftAllowsIncompleteContent(t *testing.T) {
	f := newFixture(t)

	proposal, err := f.service.Create(context.Background(), CreateInput{
		OpportunityID: f.oppID,
		Status:        string(model.StatusDraft),
	}, f.vendor)
	require.NoError(t, err)
	assert.Equal(t, model.StatusDraft, proposal.Status)
	assert.Nil(t, proposal.OrganizationID)
	assert.Empty(t, f.notifier.events)
}

func TestCreateSubmittedRunsFullSuite(t *testing.T) {
	f := newFixture(t)

	input := f.validInput()
	input.ImplementationPhase = nil
	_, err := f.service.Create(context.Background(), CreateInput{
		OpportunityID: f.oppID,
		Status:        string(model.StatusSubmitted),
		ProposalInput: input,
	}, f.vendor)

	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Contains(t, validationErr.Fields, "implementationPhase.phase")
}

func TestCreateRejectsEvaluators(t *testing.T) {
	f := newFixture(t)

	_, err := f.service.Create(context.Background(), CreateInput{
		OpportunityID: f.oppID,
		Status:        string(model.StatusDraft),
	}, f.gov)
	assert.ErrorIs(t, err, ErrPermissionDenied)
}

func TestCreateEnforcesOneProposalPerOrganization(t *testing.T) {
	f := newFixture(t)
	f.seedProposal(model.StatusDraft)

	_, err := f.service.Create(context.Background(), CreateInput{
		OpportunityID: f.oppID,
		Status:        string(model.StatusDraft),
		ProposalInput: f.validInput(),
	}, f.vendor)
	assert.ErrorIs(t, err, ErrConflict)
}

func TestSubmitValidDraft(t *testing.T) {
	f := newFixture(t)
	seeded := f.seedProposal(model.StatusDraft)

	updated, err := f.service.Submit(context.Background(), seeded.ID, "ready", f.vendor)
	require.NoError(t, err)
	assert.Equal(t, model.StatusSubmitted, updated.Status)
	assert.NotNil(t, updated.SubmittedAt)
	assert.Equal(t, []Event{EventSubmitted}, f.notifier.events)

	require.NotEmpty(t, updated.History)
	last := updated.History[len(updated.History)-1]
	assert.Equal(t, model.StatusSubmitted, last.Status)
	assert.Equal(t, "ready", last.Note)
}

func TestSubmitRevalidatesStoredContent(t *testing.T) {
	f := newFixture(t)
	seeded := f.seedProposal(model.StatusDraft)
	seeded.ImplementationPhase = nil

	_, err := f.service.Submit(context.Background(), seeded.ID, "", f.vendor)

	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Contains(t, validationErr.Fields, "implementationPhase.phase")
}

func TestSubmitTotalCostOverrun(t *testing.T) {
	f := newFixture(t)
	seeded := f.seedProposal(model.StatusDraft)
	seeded.InceptionPhase.ProposedCost = 30000
	seeded.ImplementationPhase.ProposedCost = 70001

	_, err := f.service.Submit(context.Background(), seeded.ID, "", f.vendor)

	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Contains(t, validationErr.Fields, "totalProposedCost")
}

func TestSubmitAfterDeadline(t *testing.T) {
	f := newFixture(t)
	f.store.opportunities[f.oppID].ProposalDeadline = time.Now().Add(-time.Hour)
	seeded := f.seedProposal(model.StatusDraft)

	_, err := f.service.Submit(context.Background(), seeded.ID, "", f.vendor)
	assert.ErrorIs(t, err, ErrPermissionDenied)

	admin := model.Principal{UserID: uuid.New(), Role: model.RoleAdmin}
	updated, err := f.service.Submit(context.Background(), seeded.ID, "late correction", admin)
	require.NoError(t, err)
	assert.Equal(t, model.StatusSubmitted, updated.Status)
}

func TestSubmitRechecksQualification(t *testing.T) {
	f := newFixture(t)
	seeded := f.seedProposal(model.StatusDraft)
	f.store.organizations[f.orgID].Qualified = false

	_, err := f.service.Submit(context.Background(), seeded.ID, "", f.vendor)
	assert.ErrorIs(t, err, ErrPermissionDenied)
}

func TestWithdrawTwice(t *testing.T) {
	f := newFixture(t)
	seeded := f.seedProposal(model.StatusSubmitted)

	_, err := f.service.Withdraw(context.Background(), seeded.ID, "", f.vendor)
	require.NoError(t, err)
	assert.Equal(t, []Event{EventWithdrawn}, f.notifier.events)

	_, err = f.service.Withdraw(context.Background(), seeded.ID, "", f.vendor)
	assert.ErrorIs(t, err, ErrPermissionDenied)
}

func TestDeleteOnlyDrafts(t *testing.T) {
	f := newFixture(t)
	draft := f.seedProposal(model.StatusDraft)

	require.NoError(t, f.service.Delete(context.Background(), draft.ID, f.vendor))
	_, err := f.service.Get(context.Background(), draft.ID, f.vendor)
	assert.ErrorIs(t, err, ErrNotFound)

	f2 := newFixture(t)
	submitted := f2.seedProposal(model.StatusSubmitted)
	err = f2.service.Delete(context.Background(), submitted.ID, f2.vendor)

	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Contains(t, validationErr.Fields, "status")
}

func TestDeleteByOrganizationOwner(t *testing.T) {
	f := newFixture(t)
	draft := f.seedProposal(model.StatusDraft)

	owner := model.Principal{UserID: uuid.New(), Role: model.RoleVendor, OrgIDs: []uuid.UUID{f.orgID}}
	require.NoError(t, f.service.Delete(context.Background(), draft.ID, owner))

	_, err := f.service.Get(context.Background(), draft.ID, f.vendor)
	assert.ErrorIs(t, err, ErrNotFound)
}

// staleStore serves reads whose version is already behind the stored row, as
// happens when another writer commits between a read and its write.
type staleStore struct {
	*fakeStore
}

func (s *staleStore) Proposal(ctx context.Context, id uuid.UUID) (*model.Proposal, error) {
	proposal, err := s.fakeStore.Proposal(ctx, id)
	if err != nil {
		return nil, err
	}
	proposal.Version--
	return proposal, nil
}

func TestStaleVersionConflicts(t *testing.T) {
	f := newFixture(t)
	seeded := f.seedProposal(model.StatusDraft)

	stale := NewProposalService(&staleStore{f.store}, f.notifier)
	_, err := stale.Submit(context.Background(), seeded.ID, "", f.vendor)
	assert.ErrorIs(t, err, ErrConflict)
}

func TestScoreQuestions(t *testing.T) {
	f := newFixture(t)
	seeded := f.seedProposal(model.StatusUnderReviewTeamQuestions)
	f.setStage(model.StageTeamQuestions)

	scores := []model.QuestionScore{
		{Order: 0, Score: 4},
		{Order: 1, Score: 8.5},
	}
	updated, err := f.service.ScoreQuestions(context.Background(), seeded.ID, scores, "", f.gov)
	require.NoError(t, err)
	assert.Equal(t, model.StatusEvaluatedTeamQuestions, updated.Status)
	require.NotNil(t, updated.QuestionsScore)
	assert.InDelta(t, 12.5, *updated.QuestionsScore, 0.001)
}

func TestScoreQuestionsStageMismatch(t *testing.T) {
	f := newFixture(t)
	seeded := f.seedProposal(model.StatusUnderReviewTeamQuestions)
	f.setStage(model.StageCodeChallenge)

	_, err := f.service.ScoreQuestions(context.Background(), seeded.ID, []model.QuestionScore{
		{Order: 0, Score: 4},
		{Order: 1, Score: 8},
	}, "", f.gov)
	assert.ErrorIs(t, err, ErrPermissionDenied)
}

func TestScoreRejectsLaterCheckpoints(t *testing.T) {
	// A proposal screened into the code challenge keeps its place even while
	// the opportunity still sits at the team questions stage. Scoring it there
	// again must fail; the only way back is a screen-out.
	f := newFixture(t)
	seeded := f.seedProposal(model.StatusUnderReviewCodeChallenge)
	f.setStage(model.StageTeamQuestions)

	_, err := f.service.ScoreQuestions(context.Background(), seeded.ID, []model.QuestionScore{
		{Order: 0, Score: 4},
		{Order: 1, Score: 8},
	}, "", f.gov)
	assert.ErrorIs(t, err, ErrPermissionDenied)

	unchanged, err := f.service.Get(context.Background(), seeded.ID, f.gov)
	require.NoError(t, err)
	assert.Equal(t, model.StatusUnderReviewCodeChallenge, unchanged.Status)

	f2 := newFixture(t)
	scenario := f2.seedProposal(model.StatusUnderReviewTeamScenario)
	f2.setStage(model.StageCodeChallenge)

	_, err = f2.service.ScoreCodeChallenge(context.Background(), scenario.ID, 70, "", f2.gov)
	assert.ErrorIs(t, err, ErrPermissionDenied)
}

func TestScoreQuestionsRejectsVendors(t *testing.T) {
	f := newFixture(t)
	seeded := f.seedProposal(model.StatusUnderReviewTeamQuestions)
	f.setStage(model.StageTeamQuestions)

	_, err := f.service.ScoreQuestions(context.Background(), seeded.ID, nil, "", f.vendor)
	assert.ErrorIs(t, err, ErrPermissionDenied)
}

func TestScreenOutLandsOneCheckpointBack(t *testing.T) {
	f := newFixture(t)
	seeded := f.seedProposal(model.StatusUnderReviewCodeChallenge)
	f.setStage(model.StageCodeChallenge)

	updated, err := f.service.ScreenOutFromCodeChallenge(context.Background(), seeded.ID, "not enough depth", f.gov)
	require.NoError(t, err)
	assert.Equal(t, model.StatusEvaluatedTeamQuestions, updated.Status)

	f2 := newFixture(t)
	scenario := f2.seedProposal(model.StatusUnderReviewTeamScenario)
	f2.setStage(model.StageTeamScenario)

	updated, err = f2.service.ScreenOutFromTeamScenario(context.Background(), scenario.ID, "", f2.gov)
	require.NoError(t, err)
	assert.Equal(t, model.StatusEvaluatedCodeChallenge, updated.Status)
}

func TestScreenInRequiresMatchingStage(t *testing.T) {
	f := newFixture(t)
	seeded := f.seedProposal(model.StatusEvaluatedTeamQuestions)
	f.setStage(model.StageTeamScenario)

	_, err := f.service.ScreenInToCodeChallenge(context.Background(), seeded.ID, "", f.gov)
	assert.ErrorIs(t, err, ErrPermissionDenied)

	f.setStage(model.StageTeamQuestions)
	updated, err := f.service.ScreenInToCodeChallenge(context.Background(), seeded.ID, "", f.gov)
	require.NoError(t, err)
	assert.Equal(t, model.StatusUnderReviewCodeChallenge, updated.Status)
}

func TestScoreTeamScenarioDerivesPriceScore(t *testing.T) {
	f := newFixture(t)
	seeded := f.seedProposal(model.StatusUnderReviewTeamScenario)
	f.setStage(model.StageTeamScenario)

	updated, err := f.service.ScoreTeamScenario(context.Background(), seeded.ID, 80, "", f.gov)
	require.NoError(t, err)
	assert.Equal(t, model.StatusEvaluatedTeamScenario, updated.Status)

	stored := f.store.proposals[seeded.ID]
	require.NotNil(t, stored.PriceScore)
	// Sole scored proposal holds the lowest cost, so it earns full marks.
	assert.InDelta(t, 100, *stored.PriceScore, 0.001)
}

func TestAward(t *testing.T) {
	f := newFixture(t)
	seeded := f.seedProposal(model.StatusEvaluatedTeamScenario)
	f.setStage(model.StageTeamScenario)

	f.seedProposal(model.StatusEvaluatedTeamScenario)
	f.seedProposal(model.StatusWithdrawn)

	updated, err := f.service.Award(context.Background(), seeded.ID, "strongest overall", f.gov)
	require.NoError(t, err)
	assert.Equal(t, model.StatusAwarded, updated.Status)

	// The winner is announced and the remaining active proponent is told the
	// outcome. Terminal siblings hear nothing.
	assert.Equal(t, []Event{EventAwarded, EventNotAwarded}, f.notifier.events)
}

func TestAwardRequiresFinalStage(t *testing.T) {
	f := newFixture(t)
	seeded := f.seedProposal(model.StatusEvaluatedTeamScenario)
	f.setStage(model.StageCodeChallenge)

	_, err := f.service.Award(context.Background(), seeded.ID, "", f.gov)
	assert.ErrorIs(t, err, ErrPermissionDenied)
}

func TestDisqualifyRequiresReason(t *testing.T) {
	f := newFixture(t)
	seeded := f.seedProposal(model.StatusSubmitted)

	_, err := f.service.Disqualify(context.Background(), seeded.ID, "", f.gov)
	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)

	updated, err := f.service.Disqualify(context.Background(), seeded.ID, "failed reference checks", f.gov)
	require.NoError(t, err)
	assert.Equal(t, model.StatusDisqualified, updated.Status)
	assert.Equal(t, []Event{EventDisqualified}, f.notifier.events)
}

func TestGetHidesForeignProposals(t *testing.T) {
	f := newFixture(t)
	seeded := f.seedProposal(model.StatusDraft)

	stranger := model.Principal{UserID: uuid.New(), Role: model.RoleVendor}
	_, err := f.service.Get(context.Background(), seeded.ID, stranger)
	assert.ErrorIs(t, err, ErrNotFound)

	// Evaluators cannot see drafts either.
	_, err = f.service.Get(context.Background(), seeded.ID, f.gov)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestEditOrganizationLockedAfterSubmission(t *testing.T) {
	f := newFixture(t)
	seeded := f.seedProposal(model.StatusSubmitted)

	otherOrg := uuid.New()
	f.store.organizations[otherOrg] = &model.Organization{
		ID: otherOrg, LegalName: "Other Org", Active: true, Qualified: true,
	}
	vendor := f.vendor
	vendor.OrgIDs = append(vendor.OrgIDs, otherOrg)

	input := f.validInput()
	input.OrganizationID = &otherOrg
	_, err := f.service.Edit(context.Background(), seeded.ID, input, vendor)

	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Contains(t, validationErr.Fields, "organization")
}

func TestEditTerminalProposal(t *testing.T) {
	f := newFixture(t)
	seeded := f.seedProposal(model.StatusAwarded)

	_, err := f.service.Edit(context.Background(), seeded.ID, f.validInput(), f.vendor)
	assert.ErrorIs(t, err, ErrPermissionDenied)
}

func TestListForOpportunityExcludesDrafts(t *testing.T) {
	f := newFixture(t)
	f.seedProposal(model.StatusDraft)

	proposals, err := f.service.ListForOpportunity(context.Background(), f.oppID, f.gov)
	require.NoError(t, err)
	assert.Empty(t, proposals)

	_, err = f.service.ListForOpportunity(context.Background(), f.oppID, f.vendor)
	assert.ErrorIs(t, err, ErrPermissionDenied)
}

func TestRescoreWhileStageOpen(t *testing.T) {
	f := newFixture(t)
	seeded := f.seedProposal(model.StatusEvaluatedTeamQuestions)
	f.setStage(model.StageTeamQuestions)

	updated, err := f.service.ScoreQuestions(context.Background(), seeded.ID, []model.QuestionScore{
		{Order: 0, Score: 5},
		{Order: 1, Score: 9},
	}, "corrected", f.gov)
	require.NoError(t, err)
	require.NotNil(t, updated.QuestionsScore)
	assert.InDelta(t, 14, *updated.QuestionsScore, 0.001)
}

func TestUnknownProposal(t *testing.T) {
	f := newFixture(t)

	_, err := f.service.Get(context.Background(), uuid.New(), f.vendor)
	assert.True(t, errors.Is(err, ErrNotFound))
}
