package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nurpe/procure-proposals/internal/model"
	"github.com/nurpe/procure-proposals/internal/service"
)

// ProposalRepository persists proposals and reads the surrounding records
// (opportunities, organizations, the user directory, stored files) from the
// shared database. Mutations run in a single transaction and condition on the
// proposal's version, so a stale writer gets a conflict instead of silently
// overwriting a newer state.
type ProposalRepository struct {
	db *gorm.DB
}

func NewProposalRepository(db *gorm.DB) *ProposalRepository {
	return &ProposalRepository{db: db}
}

func (r *ProposalRepository) Opportunity(ctx context.Context, id uuid.UUID) (*model.Opportunity, error) {
	var row struct {
		ID               uuid.UUID
		Title            string
		TotalMaxBudget   float64
		ProposalDeadline time.Time
		EvaluationStage  string
	}
	if err := r.db.WithContext(ctx).Raw(`
		SELECT id, title, total_max_budget, proposal_deadline, evaluation_stage
		FROM opportunities
		WHERE id = ?
		LIMIT 1
	`, id).Scan(&row).Error; err != nil {
		return nil, unavailable("load opportunity", err)
	}
	if row.ID == uuid.Nil {
		return nil, service.ErrNotFound
	}

	opportunity := &model.Opportunity{
		ID:               row.ID,
		Title:            row.Title,
		TotalMaxBudget:   row.TotalMaxBudget,
		ProposalDeadline: row.ProposalDeadline,
		Stage:            model.EvaluationStage(row.EvaluationStage),
	}

	var phases []struct {
		Kind      string
		MaxBudget float64
	}
	if err := r.db.WithContext(ctx).Raw(`
		SELECT kind, max_budget
		FROM opportunity_phases
		WHERE opportunity_id = ?
	`, id).Scan(&phases).Error; err != nil {
		return nil, unavailable("load opportunity phases", err)
	}
	var capabilities []struct {
		Kind       string
		Capability string
	}
	if err := r.db.WithContext(ctx).Raw(`
		SELECT kind, capability
		FROM opportunity_phase_capabilities
		WHERE opportunity_id = ?
		ORDER BY capability ASC
	`, id).Scan(&capabilities).Error; err != nil {
		return nil, unavailable("load opportunity capabilities", err)
	}
	for _, phase := range phases {
		def := &model.OpportunityPhase{
			Kind:      model.PhaseKind(phase.Kind),
			MaxBudget: phase.MaxBudget,
		}
		for _, capability := range capabilities {
			if capability.Kind == phase.Kind {
				def.RequiredCapabilities = append(def.RequiredCapabilities, capability.Capability)
			}
		}
		switch def.Kind {
		case model.PhaseInception:
			opportunity.InceptionPhase = def
		case model.PhasePrototype:
			opportunity.PrototypePhase = def
		case model.PhaseImplementation:
			opportunity.ImplementationPhase = def
		}
	}

	if err := r.db.WithContext(ctx).Raw(`
		SELECT ord AS "order", question, word_limit, max_score
		FROM opportunity_questions
		WHERE opportunity_id = ?
		ORDER BY ord ASC
	`, id).Scan(&opportunity.TeamQuestions).Error; err != nil {
		return nil, unavailable("load opportunity questions", err)
	}
	return opportunity, nil
}

func (r *ProposalRepository) Organization(ctx context.Context, id uuid.UUID) (*model.Organization, error) {
	var org model.Organization
	if err := r.db.WithContext(ctx).Raw(`
		SELECT id, legal_name, active, qualified
		FROM organizations
		WHERE id = ?
		LIMIT 1
	`, id).Scan(&org).Error; err != nil {
		return nil, unavailable("load organization", err)
	}
	if org.ID == uuid.Nil {
		return nil, service.ErrNotFound
	}
	return &org, nil
}

func (r *ProposalRepository) Organizations(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]model.Organization, error) {
	result := make(map[uuid.UUID]model.Organization, len(ids))
	if len(ids) == 0 {
		return result, nil
	}
	var orgs []model.Organization
	if err := r.db.WithContext(ctx).Raw(`
		SELECT id, legal_name, active, qualified
		FROM organizations
		WHERE id = ANY(?)
	`, ids).Scan(&orgs).Error; err != nil {
		return nil, unavailable("load organizations", err)
	}
	for _, org := range orgs {
		result[org.ID] = org
	}
	return result, nil
}

func (r *ProposalRepository) Members(ctx context.Context, userIDs []uuid.UUID) (map[uuid.UUID]model.Member, error) {
	result := make(map[uuid.UUID]model.Member, len(userIDs))
	if len(userIDs) == 0 {
		return result, nil
	}

	var users []struct {
		ID uuid.UUID
	}
	if err := r.db.WithContext(ctx).Raw(`
		SELECT id FROM users WHERE id = ANY(?)
	`, userIDs).Scan(&users).Error; err != nil {
		return nil, unavailable("load users", err)
	}
	for _, user := range users {
		result[user.ID] = model.Member{UserID: user.ID}
	}

	var memberships []struct {
		UserID         uuid.UUID
		OrganizationID uuid.UUID
	}
	if err := r.db.WithContext(ctx).Raw(`
		SELECT user_id, organization_id
		FROM organization_members
		WHERE user_id = ANY(?)
	`, userIDs).Scan(&memberships).Error; err != nil {
		return nil, unavailable("load organization members", err)
	}
	for _, membership := range memberships {
		member, ok := result[membership.UserID]
		if !ok {
			continue
		}
		member.OrgIDs = append(member.OrgIDs, membership.OrganizationID)
		result[membership.UserID] = member
	}

	var capabilities []struct {
		UserID     uuid.UUID
		Capability string
	}
	if err := r.db.WithContext(ctx).Raw(`
		SELECT user_id, capability
		FROM user_capabilities
		WHERE user_id = ANY(?)
		ORDER BY capability ASC
	`, userIDs).Scan(&capabilities).Error; err != nil {
		return nil, unavailable("load user capabilities", err)
	}
	for _, capability := range capabilities {
		member, ok := result[capability.UserID]
		if !ok {
			continue
		}
		member.Capabilities = append(member.Capabilities, capability.Capability)
		result[capability.UserID] = member
	}
	return result, nil
}

func (r *ProposalRepository) MissingAttachments(ctx context.Context, ids []uuid.UUID) ([]uuid.UUID, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var found []uuid.UUID
	if err := r.db.WithContext(ctx).Raw(`
		SELECT id FROM files WHERE id = ANY(?)
	`, ids).Scan(&found).Error; err != nil {
		return nil, unavailable("load files", err)
	}
	present := make(map[uuid.UUID]struct{}, len(found))
	for _, id := range found {
		present[id] = struct{}{}
	}
	var missing []uuid.UUID
	for _, id := range ids {
		if _, ok := present[id]; !ok {
			missing = append(missing, id)
		}
	}
	return missing, nil
}

func (r *ProposalRepository) Proposal(ctx context.Context, id uuid.UUID) (*model.Proposal, error) {
	proposals, err := r.loadMany(ctx, r.db, []uuid.UUID{id})
	if err != nil {
		return nil, err
	}
	if len(proposals) == 0 {
		return nil, service.ErrNotFound
	}
	return &proposals[0], nil
}

func (r *ProposalRepository) ProposalForOrganization(ctx context.Context, opportunityID, organizationID uuid.UUID) (*model.Proposal, error) {
	var row struct {
		ID uuid.UUID
	}
	if err := r.db.WithContext(ctx).Raw(`
		SELECT id
		FROM proposals
		WHERE opportunity_id = ? AND organization_id = ?
		LIMIT 1
	`, opportunityID, organizationID).Scan(&row).Error; err != nil {
		return nil, unavailable("find organization proposal", err)
	}
	if row.ID == uuid.Nil {
		return nil, service.ErrNotFound
	}
	return r.Proposal(ctx, row.ID)
}

func (r *ProposalRepository) ListOwn(ctx context.Context, userID uuid.UUID, orgIDs []uuid.UUID) ([]model.Proposal, error) {
	query := `SELECT id FROM proposals WHERE created_by = ?`
	args := []interface{}{userID}
	if len(orgIDs) > 0 {
		query += ` OR organization_id = ANY(?)`
		args = append(args, orgIDs)
	}
	query += ` ORDER BY created_at DESC`

	var ids []uuid.UUID
	if err := r.db.WithContext(ctx).Raw(query, args...).Scan(&ids).Error; err != nil {
		return nil, unavailable("list own proposals", err)
	}
	return r.loadMany(ctx, r.db, ids)
}

func (r *ProposalRepository) ListForOpportunity(ctx context.Context, opportunityID uuid.UUID) ([]model.Proposal, error) {
	var ids []uuid.UUID
	if err := r.db.WithContext(ctx).Raw(`
		SELECT id
		FROM proposals
		WHERE opportunity_id = ? AND status <> ?
		ORDER BY created_at ASC
	`, opportunityID, model.StatusDraft).Scan(&ids).Error; err != nil {
		return nil, unavailable("list opportunity proposals", err)
	}
	return r.loadMany(ctx, r.db, ids)
}

func (r *ProposalRepository) CreateProposal(ctx context.Context, cmd service.CreateCommand) (*model.Proposal, error) {
	var id uuid.UUID
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row struct {
			ID uuid.UUID
		}
		err := tx.Raw(`
			INSERT INTO proposals (
				opportunity_id,
				organization_id,
				status,
				version,
				created_by,
				updated_by,
				submitted_at
			) VALUES (?, ?, ?, 1, ?, ?, CASE WHEN ?::text = ? THEN now() ELSE NULL END)
			RETURNING id
		`,
			cmd.OpportunityID,
			cmd.Content.OrganizationID,
			cmd.Status,
			cmd.ActorID,
			cmd.ActorID,
			string(cmd.Status),
			string(model.StatusSubmitted),
		).Scan(&row).Error
		if err != nil {
			return unavailable("insert proposal", err)
		}
		id = row.ID

		if err := insertContent(tx, id, cmd.Content); err != nil {
			return err
		}
		return insertHistory(tx, id, cmd.Status, "", cmd.ActorID)
	})
	if err != nil {
		return nil, err
	}
	return r.Proposal(ctx, id)
}

func (r *ProposalRepository) UpdateContent(ctx context.Context, cmd service.UpdateCommand) (*model.Proposal, error) {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := bumpVersion(tx, `
			UPDATE proposals
			SET organization_id = ?, version = version + 1, updated_by = ?, updated_at = now()
			WHERE id = ? AND version = ?
		`, cmd.Content.OrganizationID, cmd.ActorID, cmd.ProposalID, cmd.Version); err != nil {
			return err
		}
		if err := deleteContent(tx, cmd.ProposalID); err != nil {
			return err
		}
		return insertContent(tx, cmd.ProposalID, cmd.Content)
	})
	if err != nil {
		return nil, err
	}
	return r.Proposal(ctx, cmd.ProposalID)
}

func (r *ProposalRepository) UpdateStatus(ctx context.Context, cmd service.StatusCommand) (*model.Proposal, error) {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := bumpVersion(tx, `
			UPDATE proposals
			SET status = ?,
				version = version + 1,
				updated_by = ?,
				updated_at = now(),
				submitted_at = CASE WHEN ?::text = ? THEN now() ELSE submitted_at END
			WHERE id = ? AND version = ?
		`, cmd.Status, cmd.ActorID, string(cmd.Status), string(model.StatusSubmitted), cmd.ProposalID, cmd.Version); err != nil {
			return err
		}
		return insertHistory(tx, cmd.ProposalID, cmd.Status, cmd.Note, cmd.ActorID)
	})
	if err != nil {
		return nil, err
	}
	return r.Proposal(ctx, cmd.ProposalID)
}

func (r *ProposalRepository) UpdateQuestionScores(ctx context.Context, cmd service.QuestionScoresCommand) (*model.Proposal, error) {
	total := 0.0
	for _, score := range cmd.Scores {
		total += score.Score
	}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := bumpVersion(tx, `
			UPDATE proposals
			SET status = ?, questions_score = ?, version = version + 1, updated_by = ?, updated_at = now()
			WHERE id = ? AND version = ?
		`, cmd.Status, total, cmd.ActorID, cmd.ProposalID, cmd.Version); err != nil {
			return err
		}
		if err := tx.Exec(`
			DELETE FROM proposal_question_scores WHERE proposal_id = ?
		`, cmd.ProposalID).Error; err != nil {
			return unavailable("clear question scores", err)
		}
		for _, score := range cmd.Scores {
			if err := tx.Exec(`
				INSERT INTO proposal_question_scores (proposal_id, ord, score)
				VALUES (?, ?, ?)
			`, cmd.ProposalID, score.Order, score.Score).Error; err != nil {
				return unavailable("insert question score", err)
			}
		}
		return insertHistory(tx, cmd.ProposalID, cmd.Status, cmd.Note, cmd.ActorID)
	})
	if err != nil {
		return nil, err
	}
	return r.Proposal(ctx, cmd.ProposalID)
}

func (r *ProposalRepository) UpdateCodeChallengeScore(ctx context.Context, cmd service.ScoreCommand) (*model.Proposal, error) {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := bumpVersion(tx, `
			UPDATE proposals
			SET status = ?, code_challenge_score = ?, version = version + 1, updated_by = ?, updated_at = now()
			WHERE id = ? AND version = ?
		`, cmd.Status, cmd.Score, cmd.ActorID, cmd.ProposalID, cmd.Version); err != nil {
			return err
		}
		return insertHistory(tx, cmd.ProposalID, cmd.Status, cmd.Note, cmd.ActorID)
	})
	if err != nil {
		return nil, err
	}
	return r.Proposal(ctx, cmd.ProposalID)
}

func (r *ProposalRepository) UpdateTeamScenarioScore(ctx context.Context, cmd service.ScoreCommand) (*model.Proposal, error) {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := bumpVersion(tx, `
			UPDATE proposals
			SET status = ?, team_scenario_score = ?, version = version + 1, updated_by = ?, updated_at = now()
			WHERE id = ? AND version = ?
		`, cmd.Status, cmd.Score, cmd.ActorID, cmd.ProposalID, cmd.Version); err != nil {
			return err
		}
		// Price scores are relative: the lowest total proposed cost among the
		// opportunity's scenario-scored proposals earns 100, the rest earn
		// lowest/total * 100. Every scored sibling is refreshed so the
		// ordering stays consistent as scores arrive.
		if err := tx.Exec(`
			WITH totals AS (
				SELECT p.id, COALESCE(SUM(ph.proposed_cost), 0) AS total
				FROM proposals p
				LEFT JOIN proposal_phases ph ON ph.proposal_id = p.id
				WHERE p.opportunity_id = (SELECT opportunity_id FROM proposals WHERE id = ?)
					AND p.team_scenario_score IS NOT NULL
				GROUP BY p.id
			),
			lowest AS (
				SELECT MIN(total) AS min_total FROM totals WHERE total > 0
			)
			UPDATE proposals
			SET price_score = CASE
				WHEN t.total > 0 THEN (l.min_total / t.total) * 100
				ELSE 0
			END
			FROM totals t, lowest l
			WHERE proposals.id = t.id
		`, cmd.ProposalID).Error; err != nil {
			return unavailable("derive price scores", err)
		}
		return insertHistory(tx, cmd.ProposalID, cmd.Status, cmd.Note, cmd.ActorID)
	})
	if err != nil {
		return nil, err
	}
	return r.Proposal(ctx, cmd.ProposalID)
}

func (r *ProposalRepository) DeleteProposal(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Exec(`DELETE FROM proposals WHERE id = ?`, id)
	if result.Error != nil {
		return unavailable("delete proposal", result.Error)
	}
	if result.RowsAffected == 0 {
		return service.ErrNotFound
	}
	return nil
}

func bumpVersion(tx *gorm.DB, query string, args ...interface{}) error {
	result := tx.Exec(query, args...)
	if result.Error != nil {
		return unavailable("update proposal", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: the proposal was changed by someone else", service.ErrConflict)
	}
	return nil
}

func insertContent(tx *gorm.DB, proposalID uuid.UUID, content service.Content) error {
	for _, phase := range []*model.Phase{content.InceptionPhase, content.PrototypePhase, content.ImplementationPhase} {
		if phase == nil {
			continue
		}
		if err := tx.Exec(`
			INSERT INTO proposal_phases (proposal_id, kind, proposed_cost)
			VALUES (?, ?, ?)
		`, proposalID, phase.Kind, phase.ProposedCost).Error; err != nil {
			return unavailable("insert phase", err)
		}
		for _, member := range phase.Members {
			if err := tx.Exec(`
				INSERT INTO proposal_phase_members (proposal_id, kind, user_id, scrum_master, pending)
				VALUES (?, ?, ?, ?, ?)
			`, proposalID, phase.Kind, member.UserID, member.ScrumMaster, member.Pending).Error; err != nil {
				return unavailable("insert phase member", err)
			}
		}
	}
	for _, reference := range content.References {
		if err := tx.Exec(`
			INSERT INTO proposal_references (proposal_id, name, company, phone, email, ord)
			VALUES (?, ?, ?, ?, ?, ?)
		`, proposalID, reference.Name, reference.Company, reference.Phone, reference.Email, reference.Order).Error; err != nil {
			return unavailable("insert reference", err)
		}
	}
	for _, response := range content.TeamQuestionResponses {
		if err := tx.Exec(`
			INSERT INTO proposal_responses (proposal_id, ord, response)
			VALUES (?, ?, ?)
		`, proposalID, response.Order, response.Response).Error; err != nil {
			return unavailable("insert response", err)
		}
	}
	for _, fileID := range content.AttachmentIDs {
		if err := tx.Exec(`
			INSERT INTO proposal_attachments (proposal_id, file_id)
			VALUES (?, ?)
		`, proposalID, fileID).Error; err != nil {
			return unavailable("insert attachment", err)
		}
	}
	return nil
}

func deleteContent(tx *gorm.DB, proposalID uuid.UUID) error {
	for _, table := range []string{
		"proposal_phase_members",
		"proposal_phases",
		"proposal_references",
		"proposal_responses",
		"proposal_attachments",
	} {
		if err := tx.Exec(fmt.Sprintf(`DELETE FROM %s WHERE proposal_id = ?`, table), proposalID).Error; err != nil {
			return unavailable("clear proposal content", err)
		}
	}
	return nil
}

func insertHistory(tx *gorm.DB, proposalID uuid.UUID, status model.Status, note string, actorID uuid.UUID) error {
	if err := tx.Exec(`
		INSERT INTO proposal_status_history (proposal_id, status, note, created_by)
		VALUES (?, ?, ?, ?)
	`, proposalID, status, note, actorID).Error; err != nil {
		return unavailable("insert status history", err)
	}
	return nil
}

func (r *ProposalRepository) loadMany(ctx context.Context, db *gorm.DB, ids []uuid.UUID) ([]model.Proposal, error) {
	if len(ids) == 0 {
		return []model.Proposal{}, nil
	}

	var rows []struct {
		ID                 uuid.UUID
		OpportunityID      uuid.UUID
		OrganizationID     *uuid.UUID
		Status             string
		Version            int
		QuestionsScore     *float64
		CodeChallengeScore *float64
		TeamScenarioScore  *float64
		PriceScore         *float64
		CreatedBy          uuid.UUID
		CreatedAt          time.Time
		UpdatedBy          uuid.UUID
		UpdatedAt          time.Time
		SubmittedAt        *time.Time
	}
	if err := db.WithContext(ctx).Raw(`
		SELECT
			id,
			opportunity_id,
			organization_id,
			status,
			version,
			questions_score,
			code_challenge_score,
			team_scenario_score,
			price_score,
			created_by,
			created_at,
			updated_by,
			updated_at,
			submitted_at
		FROM proposals
		WHERE id = ANY(?)
	`, ids).Scan(&rows).Error; err != nil {
		return nil, unavailable("load proposals", err)
	}

	index := make(map[uuid.UUID]int, len(rows))
	proposals := make([]model.Proposal, 0, len(rows))
	for _, row := range rows {
		proposal := model.Proposal{
			ID:                 row.ID,
			OpportunityID:      row.OpportunityID,
			OrganizationID:     row.OrganizationID,
			Status:             model.Status(row.Status),
			Version:            row.Version,
			QuestionsScore:     row.QuestionsScore,
			CodeChallengeScore: row.CodeChallengeScore,
			TeamScenarioScore:  row.TeamScenarioScore,
			PriceScore:         row.PriceScore,
			CreatedBy:          row.CreatedBy,
			CreatedAt:          row.CreatedAt,
			UpdatedBy:          row.UpdatedBy,
			UpdatedAt:          row.UpdatedAt,
		}
		proposal.SubmittedAt = row.SubmittedAt
		proposals = append(proposals, proposal)
		index[row.ID] = len(proposals) - 1
	}

	var phases []struct {
		ProposalID   uuid.UUID
		Kind         string
		ProposedCost float64
	}
	if err := db.WithContext(ctx).Raw(`
		SELECT proposal_id, kind, proposed_cost
		FROM proposal_phases
		WHERE proposal_id = ANY(?)
	`, ids).Scan(&phases).Error; err != nil {
		return nil, unavailable("load phases", err)
	}
	for _, row := range phases {
		pos, ok := index[row.ProposalID]
		if !ok {
			continue
		}
		phase := &model.Phase{
			Kind:         model.PhaseKind(row.Kind),
			ProposedCost: row.ProposedCost,
		}
		switch phase.Kind {
		case model.PhaseInception:
			proposals[pos].InceptionPhase = phase
		case model.PhasePrototype:
			proposals[pos].PrototypePhase = phase
		case model.PhaseImplementation:
			proposals[pos].ImplementationPhase = phase
		}
	}

	var members []struct {
		ProposalID  uuid.UUID
		Kind        string
		UserID      uuid.UUID
		ScrumMaster bool
		Pending     bool
	}
	if err := db.WithContext(ctx).Raw(`
		SELECT proposal_id, kind, user_id, scrum_master, pending
		FROM proposal_phase_members
		WHERE proposal_id = ANY(?)
		ORDER BY user_id ASC
	`, ids).Scan(&members).Error; err != nil {
		return nil, unavailable("load phase members", err)
	}
	for _, row := range members {
		pos, ok := index[row.ProposalID]
		if !ok {
			continue
		}
		var phase *model.Phase
		switch model.PhaseKind(row.Kind) {
		case model.PhaseInception:
			phase = proposals[pos].InceptionPhase
		case model.PhasePrototype:
			phase = proposals[pos].PrototypePhase
		case model.PhaseImplementation:
			phase = proposals[pos].ImplementationPhase
		}
		if phase == nil {
			continue
		}
		phase.Members = append(phase.Members, model.PhaseMember{
			UserID:      row.UserID,
			ScrumMaster: row.ScrumMaster,
			Pending:     row.Pending,
		})
	}

	var references []struct {
		ProposalID uuid.UUID
		Name       string
		Company    string
		Phone      string
		Email      string
		Ord        int
	}
	if err := db.WithContext(ctx).Raw(`
		SELECT proposal_id, name, company, phone, email, ord
		FROM proposal_references
		WHERE proposal_id = ANY(?)
		ORDER BY ord ASC
	`, ids).Scan(&references).Error; err != nil {
		return nil, unavailable("load references", err)
	}
	for _, row := range references {
		pos, ok := index[row.ProposalID]
		if !ok {
			continue
		}
		proposals[pos].References = append(proposals[pos].References, model.Reference{
			Name:    row.Name,
			Company: row.Company,
			Phone:   row.Phone,
			Email:   row.Email,
			Order:   row.Ord,
		})
	}

	var responses []struct {
		ProposalID uuid.UUID
		Ord        int
		Response   string
	}
	if err := db.WithContext(ctx).Raw(`
		SELECT proposal_id, ord, response
		FROM proposal_responses
		WHERE proposal_id = ANY(?)
		ORDER BY ord ASC
	`, ids).Scan(&responses).Error; err != nil {
		return nil, unavailable("load responses", err)
	}
	for _, row := range responses {
		pos, ok := index[row.ProposalID]
		if !ok {
			continue
		}
		proposals[pos].TeamQuestionResponses = append(proposals[pos].TeamQuestionResponses, model.QuestionResponse{
			Response: row.Response,
			Order:    row.Ord,
		})
	}

	var attachments []struct {
		ProposalID uuid.UUID
		FileID     uuid.UUID
	}
	if err := db.WithContext(ctx).Raw(`
		SELECT proposal_id, file_id
		FROM proposal_attachments
		WHERE proposal_id = ANY(?)
	`, ids).Scan(&attachments).Error; err != nil {
		return nil, unavailable("load attachments", err)
	}
	for _, row := range attachments {
		pos, ok := index[row.ProposalID]
		if !ok {
			continue
		}
		proposals[pos].AttachmentIDs = append(proposals[pos].AttachmentIDs, row.FileID)
	}

	var scores []struct {
		ProposalID uuid.UUID
		Ord        int
		Score      float64
	}
	if err := db.WithContext(ctx).Raw(`
		SELECT proposal_id, ord, score
		FROM proposal_question_scores
		WHERE proposal_id = ANY(?)
		ORDER BY ord ASC
	`, ids).Scan(&scores).Error; err != nil {
		return nil, unavailable("load question scores", err)
	}
	for _, row := range scores {
		pos, ok := index[row.ProposalID]
		if !ok {
			continue
		}
		proposals[pos].QuestionScores = append(proposals[pos].QuestionScores, model.QuestionScore{
			Order: row.Ord,
			Score: row.Score,
		})
	}

	var history []struct {
		ProposalID uuid.UUID
		Status     string
		Note       string
		CreatedBy  uuid.UUID
		CreatedAt  time.Time
	}
	if err := db.WithContext(ctx).Raw(`
		SELECT proposal_id, status, note, created_by, created_at
		FROM proposal_status_history
		WHERE proposal_id = ANY(?)
		ORDER BY created_at ASC, id ASC
	`, ids).Scan(&history).Error; err != nil {
		return nil, unavailable("load status history", err)
	}
	for _, row := range history {
		pos, ok := index[row.ProposalID]
		if !ok {
			continue
		}
		proposals[pos].History = append(proposals[pos].History, model.StatusRecord{
			Status:    model.Status(row.Status),
			Note:      row.Note,
			CreatedBy: row.CreatedBy,
			CreatedAt: row.CreatedAt,
		})
	}

	// Preserve the order of the requested ids.
	ordered := make([]model.Proposal, 0, len(proposals))
	for _, id := range ids {
		if pos, ok := index[id]; ok {
			ordered = append(ordered, proposals[pos])
		}
	}
	return ordered, nil
}

func unavailable(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", service.ErrUnavailable, op, err)
}
