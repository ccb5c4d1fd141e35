package db

import (
	"fmt"

	"gorm.io/gorm"
)

var migrationStatements = []string{
	`CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`,
	`CREATE EXTENSION IF NOT EXISTS "pgcrypto";`,
	`DO $$
	BEGIN
		IF NOT EXISTS (SELECT 1 FROM pg_type WHERE typname = 'proposal_status') THEN
			CREATE TYPE proposal_status AS ENUM (
				'DRAFT',
				'SUBMITTED',
				'UNDER_REVIEW_QUESTIONS',
				'EVALUATED_QUESTIONS',
				'UNDER_REVIEW_CODE_CHALLENGE',
				'EVALUATED_CODE_CHALLENGE',
				'UNDER_REVIEW_TEAM_SCENARIO',
				'EVALUATED_TEAM_SCENARIO',
				'AWARDED',
				'DISQUALIFIED',
				'WITHDRAWN'
			);
		END IF;
	END
	$$;`,
	`CREATE TABLE IF NOT EXISTS proposals (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		opportunity_id UUID NOT NULL REFERENCES opportunities(id),
		organization_id UUID REFERENCES organizations(id),
		status proposal_status NOT NULL DEFAULT 'DRAFT',
		version INTEGER NOT NULL DEFAULT 1,
		questions_score NUMERIC(8,2),
		code_challenge_score NUMERIC(8,2),
		team_scenario_score NUMERIC(8,2),
		price_score NUMERIC(8,2),
		created_by UUID NOT NULL REFERENCES users(id),
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_by UUID NOT NULL REFERENCES users(id),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		submitted_at TIMESTAMPTZ
	);`,
	`CREATE UNIQUE INDEX IF NOT EXISTS uq_proposals_opportunity_org
		ON proposals (opportunity_id, organization_id)
		WHERE organization_id IS NOT NULL;`,
	`CREATE INDEX IF NOT EXISTS idx_proposals_opportunity_id ON proposals (opportunity_id);`,
	`CREATE INDEX IF NOT EXISTS idx_proposals_created_by ON proposals (created_by);`,
	`CREATE INDEX IF NOT EXISTS idx_proposals_status ON proposals (status);`,
	`CREATE TABLE IF NOT EXISTS proposal_phases (
		proposal_id UUID NOT NULL REFERENCES proposals(id) ON DELETE CASCADE,
		kind VARCHAR(32) NOT NULL,
		proposed_cost NUMERIC(18,2) NOT NULL,
		PRIMARY KEY (proposal_id, kind)
	);`,
	`CREATE TABLE IF NOT EXISTS proposal_phase_members (
		proposal_id UUID NOT NULL REFERENCES proposals(id) ON DELETE CASCADE,
		kind VARCHAR(32) NOT NULL,
		user_id UUID NOT NULL REFERENCES users(id),
		scrum_master BOOLEAN NOT NULL DEFAULT FALSE,
		pending BOOLEAN NOT NULL DEFAULT FALSE,
		PRIMARY KEY (proposal_id, kind, user_id)
	);`,
	`CREATE TABLE IF NOT EXISTS proposal_references (
		proposal_id UUID NOT NULL REFERENCES proposals(id) ON DELETE CASCADE,
		name VARCHAR(100) NOT NULL,
		company VARCHAR(100) NOT NULL,
		phone VARCHAR(32) NOT NULL,
		email VARCHAR(254) NOT NULL,
		ord INTEGER NOT NULL,
		PRIMARY KEY (proposal_id, ord)
	);`,
	`CREATE TABLE IF NOT EXISTS proposal_responses (
		proposal_id UUID NOT NULL REFERENCES proposals(id) ON DELETE CASCADE,
		ord INTEGER NOT NULL,
		response TEXT NOT NULL,
		PRIMARY KEY (proposal_id, ord)
	);`,
	`CREATE TABLE IF NOT EXISTS proposal_attachments (
		proposal_id UUID NOT NULL REFERENCES proposals(id) ON DELETE CASCADE,
		file_id UUID NOT NULL REFERENCES files(id),
		PRIMARY KEY (proposal_id, file_id)
	);`,
	`CREATE TABLE IF NOT EXISTS proposal_question_scores (
		proposal_id UUID NOT NULL REFERENCES proposals(id) ON DELETE CASCADE,
		ord INTEGER NOT NULL,
		score NUMERIC(8,2) NOT NULL,
		PRIMARY KEY (proposal_id, ord)
	);`,
	`CREATE TABLE IF NOT EXISTS proposal_status_history (
		id BIGSERIAL PRIMARY KEY,
		proposal_id UUID NOT NULL REFERENCES proposals(id) ON DELETE CASCADE,
		status proposal_status NOT NULL,
		note TEXT NOT NULL DEFAULT '',
		created_by UUID NOT NULL REFERENCES users(id),
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE INDEX IF NOT EXISTS idx_proposal_status_history_proposal_id
		ON proposal_status_history (proposal_id);`,
}

func runMigrations(db *gorm.DB) error {
	for i, stmt := range migrationStatements {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}
	return nil
}
