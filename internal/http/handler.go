package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/nurpe/procure-proposals/internal/http/middleware"
	"github.com/nurpe/procure-proposals/internal/model"
	"github.com/nurpe/procure-proposals/internal/service"
)

type Handler struct {
	proposals *service.ProposalService
	exports   *service.ExportService
	log       zerolog.Logger
}

func NewHandler(proposals *service.ProposalService, exports *service.ExportService, log zerolog.Logger) *Handler {
	return &Handler{proposals: proposals, exports: exports, log: log}
}

func (h *Handler) Register(router *gin.Engine, authMiddleware gin.HandlerFunc) {
	protected := router.Group("/")
	protected.Use(authMiddleware)
	protected.POST("/proposals", h.createProposal)
	protected.GET("/proposals", h.listProposals)
	protected.GET("/proposals/:id", h.getProposal)
	protected.PATCH("/proposals/:id", h.updateProposal)
	protected.DELETE("/proposals/:id", h.deleteProposal)
	protected.GET("/proposals/:id/pdf", h.exportProposalPDF)
	protected.GET("/opportunities/:id/scoresheet", h.exportScoresheet)
}

type phaseMemberPayload struct {
	UserID      string `json:"userId" binding:"required"`
	ScrumMaster bool   `json:"scrumMaster"`
	Pending     bool   `json:"pending"`
}

type phasePayload struct {
	Members      []phaseMemberPayload `json:"members"`
	ProposedCost float64              `json:"proposedCost"`
}

type referencePayload struct {
	Name    string `json:"name"`
	Company string `json:"company"`
	Phone   string `json:"phone"`
	Email   string `json:"email"`
	Order   int    `json:"order"`
}

type responsePayload struct {
	Response string `json:"response"`
	Order    int    `json:"order"`
}

type proposalPayload struct {
	OrganizationID        *string            `json:"organizationId"`
	InceptionPhase        *phasePayload      `json:"inceptionPhase"`
	PrototypePhase        *phasePayload      `json:"prototypePhase"`
	ImplementationPhase   *phasePayload      `json:"implementationPhase"`
	References            []referencePayload `json:"references"`
	TeamQuestionResponses []responsePayload  `json:"teamQuestionResponses"`
	Attachments           []string           `json:"attachments"`
}

type createProposalRequest struct {
	OpportunityID string `json:"opportunityId" binding:"required"`
	Status        string `json:"status" binding:"required"`
	proposalPayload
}

func (h *Handler) createProposal(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}

	var req createProposalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	opportunityID, err := uuid.Parse(strings.TrimSpace(req.OpportunityID))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid opportunityId"})
		return
	}
	input, err := req.proposalPayload.toInput()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	proposal, err := h.proposals.Create(c.Request.Context(), service.CreateInput{
		OpportunityID: opportunityID,
		Status:        req.Status,
		ProposalInput: input,
	}, principal)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toProposalResponse(proposal))
}

func (h *Handler) listProposals(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}

	var (
		proposals []model.Proposal
		err       error
	)
	if raw := strings.TrimSpace(c.Query("opportunity")); raw != "" {
		opportunityID, parseErr := uuid.Parse(raw)
		if parseErr != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid opportunity"})
			return
		}
		proposals, err = h.proposals.ListForOpportunity(c.Request.Context(), opportunityID, principal)
	} else {
		proposals, err = h.proposals.ListOwn(c.Request.Context(), principal)
	}
	if err != nil {
		h.handleError(c, err)
		return
	}

	responses := make([]proposalResponse, 0, len(proposals))
	for i := range proposals {
		responses = append(responses, toProposalResponse(&proposals[i]))
	}
	c.JSON(http.StatusOK, responses)
}

func (h *Handler) getProposal(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid proposal id"})
		return
	}
	proposal, err := h.proposals.Get(c.Request.Context(), id, principal)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, toProposalResponse(proposal))
}

type updateProposalRequest struct {
	Tag   string          `json:"tag" binding:"required"`
	Value json.RawMessage `json:"value"`
}

type notePayload struct {
	Note string `json:"note"`
}

type questionScoresPayload struct {
	Scores []struct {
		Order int     `json:"order"`
		Score float64 `json:"score"`
	} `json:"scores"`
	Note string `json:"note"`
}

type scorePayload struct {
	Score float64 `json:"score"`
	Note  string  `json:"note"`
}

// updateProposal dispatches on the request's tag. The set of tags is closed;
// anything unrecognized is rejected before any work happens.
func (h *Handler) updateProposal(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid proposal id"})
		return
	}

	var req updateProposalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx := c.Request.Context()
	var proposal *model.Proposal
	switch req.Tag {
	case "edit":
		var payload proposalPayload
		if err := unmarshalValue(req.Value, &payload); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		input, err := payload.toInput()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		proposal, err = h.proposals.Edit(ctx, id, input, principal)
		if err != nil {
			h.handleError(c, err)
			return
		}
	case "submit":
		proposal = h.withNote(c, req.Value, func(note string) (*model.Proposal, error) {
			return h.proposals.Submit(ctx, id, note, principal)
		})
	case "scoreQuestions":
		var payload questionScoresPayload
		if err := unmarshalValue(req.Value, &payload); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		scores := make([]model.QuestionScore, 0, len(payload.Scores))
		for _, score := range payload.Scores {
			scores = append(scores, model.QuestionScore{Order: score.Order, Score: score.Score})
		}
		proposal, err = h.proposals.ScoreQuestions(ctx, id, scores, payload.Note, principal)
		if err != nil {
			h.handleError(c, err)
			return
		}
	case "scoreCodeChallenge":
		proposal = h.withScore(c, req.Value, func(score float64, note string) (*model.Proposal, error) {
			return h.proposals.ScoreCodeChallenge(ctx, id, score, note, principal)
		})
	case "scoreTeamScenario":
		proposal = h.withScore(c, req.Value, func(score float64, note string) (*model.Proposal, error) {
			return h.proposals.ScoreTeamScenario(ctx, id, score, note, principal)
		})
	case "screenInToCodeChallenge":
		proposal = h.withNote(c, req.Value, func(note string) (*model.Proposal, error) {
			return h.proposals.ScreenInToCodeChallenge(ctx, id, note, principal)
		})
	case "screenOutFromCodeChallenge":
		proposal = h.withNote(c, req.Value, func(note string) (*model.Proposal, error) {
			return h.proposals.ScreenOutFromCodeChallenge(ctx, id, note, principal)
		})
	case "screenInToTeamScenario":
		proposal = h.withNote(c, req.Value, func(note string) (*model.Proposal, error) {
			return h.proposals.ScreenInToTeamScenario(ctx, id, note, principal)
		})
	case "screenOutFromTeamScenario":
		proposal = h.withNote(c, req.Value, func(note string) (*model.Proposal, error) {
			return h.proposals.ScreenOutFromTeamScenario(ctx, id, note, principal)
		})
	case "award":
		proposal = h.withNote(c, req.Value, func(note string) (*model.Proposal, error) {
			return h.proposals.Award(ctx, id, note, principal)
		})
	case "disqualify":
		proposal = h.withNote(c, req.Value, func(note string) (*model.Proposal, error) {
			return h.proposals.Disqualify(ctx, id, note, principal)
		})
	case "withdraw":
		proposal = h.withNote(c, req.Value, func(note string) (*model.Proposal, error) {
			return h.proposals.Withdraw(ctx, id, note, principal)
		})
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "unrecognized update tag"})
		return
	}
	if proposal == nil {
		return
	}
	c.JSON(http.StatusOK, toProposalResponse(proposal))
}

func (h *Handler) withNote(c *gin.Context, raw json.RawMessage, run func(note string) (*model.Proposal, error)) *model.Proposal {
	var payload notePayload
	if err := unmarshalValue(raw, &payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return nil
	}
	proposal, err := run(payload.Note)
	if err != nil {
		h.handleError(c, err)
		return nil
	}
	return proposal
}

func (h *Handler) withScore(c *gin.Context, raw json.RawMessage, run func(score float64, note string) (*model.Proposal, error)) *model.Proposal {
	var payload scorePayload
	if err := unmarshalValue(raw, &payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return nil
	}
	proposal, err := run(payload.Score, payload.Note)
	if err != nil {
		h.handleError(c, err)
		return nil
	}
	return proposal
}

func (h *Handler) deleteProposal(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid proposal id"})
		return
	}
	if err := h.proposals.Delete(c.Request.Context(), id, principal); err != nil {
		h.handleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) exportProposalPDF(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid proposal id"})
		return
	}
	result, err := h.exports.ProposalPDF(c.Request.Context(), id, principal)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.Header("Content-Disposition", "attachment; filename=\""+result.FileName+"\"")
	c.Data(http.StatusOK, "application/pdf", result.Content)
}

func (h *Handler) exportScoresheet(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid opportunity id"})
		return
	}
	result, err := h.exports.Scoresheet(c.Request.Context(), id, principal)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.Header("Content-Disposition", "attachment; filename=\""+result.FileName+"\"")
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", result.Content)
}

// handleError maps the service taxonomy to HTTP. Permission and not-found
// responses stay generic so a caller cannot distinguish "exists but not
// yours" from "does not exist".
func (h *Handler) handleError(c *gin.Context, err error) {
	var validationErr *service.ValidationError
	switch {
	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, gin.H{"errors": validationErr.Fields})
	case errors.Is(err, service.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrPermissionDenied):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "You do not have permission to perform this action."})
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "The requested resource could not be found."})
	case errors.Is(err, service.ErrUnavailable):
		h.log.Error().Err(err).Msg("upstream failure")
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "The service is temporarily unavailable."})
	default:
		h.log.Error().Err(err).Msg("request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func unmarshalValue(raw json.RawMessage, target interface{}) error {
	if len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, target); err != nil {
		return errors.New("invalid update value")
	}
	return nil
}

func (p proposalPayload) toInput() (service.ProposalInput, error) {
	input := service.ProposalInput{}
	if p.OrganizationID != nil {
		orgID, err := uuid.Parse(strings.TrimSpace(*p.OrganizationID))
		if err != nil {
			return input, errors.New("invalid organizationId")
		}
		input.OrganizationID = &orgID
	}

	var err error
	if input.InceptionPhase, err = p.InceptionPhase.toInput(); err != nil {
		return input, err
	}
	if input.PrototypePhase, err = p.PrototypePhase.toInput(); err != nil {
		return input, err
	}
	if input.ImplementationPhase, err = p.ImplementationPhase.toInput(); err != nil {
		return input, err
	}

	for _, reference := range p.References {
		input.References = append(input.References, model.Reference{
			Name:    reference.Name,
			Company: reference.Company,
			Phone:   reference.Phone,
			Email:   reference.Email,
			Order:   reference.Order,
		})
	}
	for _, response := range p.TeamQuestionResponses {
		input.TeamQuestionResponses = append(input.TeamQuestionResponses, model.QuestionResponse{
			Response: response.Response,
			Order:    response.Order,
		})
	}
	for _, raw := range p.Attachments {
		fileID, err := uuid.Parse(strings.TrimSpace(raw))
		if err != nil {
			return input, errors.New("invalid attachment id")
		}
		input.AttachmentIDs = append(input.AttachmentIDs, fileID)
	}
	return input, nil
}

func (p *phasePayload) toInput() (*service.PhaseInput, error) {
	if p == nil {
		return nil, nil
	}
	phase := &service.PhaseInput{ProposedCost: p.ProposedCost}
	for _, member := range p.Members {
		userID, err := uuid.Parse(strings.TrimSpace(member.UserID))
		if err != nil {
			return nil, errors.New("invalid phase member id")
		}
		phase.Members = append(phase.Members, model.PhaseMember{
			UserID:      userID,
			ScrumMaster: member.ScrumMaster,
			Pending:     member.Pending,
		})
	}
	return phase, nil
}

type phaseMemberResponse struct {
	UserID      uuid.UUID `json:"userId"`
	ScrumMaster bool      `json:"scrumMaster"`
	Pending     bool      `json:"pending"`
}

type phaseResponse struct {
	Kind         model.PhaseKind       `json:"kind"`
	Members      []phaseMemberResponse `json:"members"`
	ProposedCost float64               `json:"proposedCost"`
}

type statusRecordResponse struct {
	Status    model.Status `json:"status"`
	Note      string       `json:"note"`
	CreatedBy uuid.UUID    `json:"createdBy"`
	CreatedAt time.Time    `json:"createdAt"`
}

type proposalResponse struct {
	ID                    uuid.UUID              `json:"id"`
	OpportunityID         uuid.UUID              `json:"opportunityId"`
	OrganizationID        *uuid.UUID             `json:"organizationId,omitempty"`
	Status                model.Status           `json:"status"`
	Version               int                    `json:"version"`
	InceptionPhase        *phaseResponse         `json:"inceptionPhase,omitempty"`
	PrototypePhase        *phaseResponse         `json:"prototypePhase,omitempty"`
	ImplementationPhase   *phaseResponse         `json:"implementationPhase,omitempty"`
	References            []referencePayload     `json:"references"`
	TeamQuestionResponses []responsePayload      `json:"teamQuestionResponses"`
	Attachments           []uuid.UUID            `json:"attachments"`
	QuestionsScore        *float64               `json:"questionsScore,omitempty"`
	CodeChallengeScore    *float64               `json:"codeChallengeScore,omitempty"`
	TeamScenarioScore     *float64               `json:"teamScenarioScore,omitempty"`
	PriceScore            *float64               `json:"priceScore,omitempty"`
	TotalProposedCost     float64                `json:"totalProposedCost"`
	History               []statusRecordResponse `json:"history"`
	CreatedAt             time.Time              `json:"createdAt"`
	UpdatedAt             time.Time              `json:"updatedAt"`
	SubmittedAt           *time.Time             `json:"submittedAt,omitempty"`
}

func toProposalResponse(p *model.Proposal) proposalResponse {
	response := proposalResponse{
		ID:                  p.ID,
		OpportunityID:       p.OpportunityID,
		OrganizationID:      p.OrganizationID,
		Status:              p.Status,
		Version:             p.Version,
		InceptionPhase:      toPhaseResponse(p.InceptionPhase),
		PrototypePhase:      toPhaseResponse(p.PrototypePhase),
		ImplementationPhase: toPhaseResponse(p.ImplementationPhase),
		Attachments:         p.AttachmentIDs,
		QuestionsScore:      p.QuestionsScore,
		CodeChallengeScore:  p.CodeChallengeScore,
		TeamScenarioScore:   p.TeamScenarioScore,
		PriceScore:          p.PriceScore,
		TotalProposedCost:   p.TotalProposedCost(),
		CreatedAt:           p.CreatedAt,
		UpdatedAt:           p.UpdatedAt,
		SubmittedAt:         p.SubmittedAt,
	}
	for _, reference := range p.References {
		response.References = append(response.References, referencePayload{
			Name:    reference.Name,
			Company: reference.Company,
			Phone:   reference.Phone,
			Email:   reference.Email,
			Order:   reference.Order,
		})
	}
	for _, questionResponse := range p.TeamQuestionResponses {
		response.TeamQuestionResponses = append(response.TeamQuestionResponses, responsePayload{
			Response: questionResponse.Response,
			Order:    questionResponse.Order,
		})
	}
	for _, record := range p.History {
		response.History = append(response.History, statusRecordResponse{
			Status:    record.Status,
			Note:      record.Note,
			CreatedBy: record.CreatedBy,
			CreatedAt: record.CreatedAt,
		})
	}
	return response
}

func toPhaseResponse(phase *model.Phase) *phaseResponse {
	if phase == nil {
		return nil
	}
	response := &phaseResponse{
		Kind:         phase.Kind,
		ProposedCost: phase.ProposedCost,
	}
	for _, member := range phase.Members {
		response.Members = append(response.Members, phaseMemberResponse{
			UserID:      member.UserID,
			ScrumMaster: member.ScrumMaster,
			Pending:     member.Pending,
		})
	}
	return response
}
