// Package notify announces proposal lifecycle events to the rest of the
// platform. Delivery is best effort: a failed publish is logged and dropped,
// never surfaced to the caller.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"

	"github.com/nurpe/procure-proposals/internal/model"
	"github.com/nurpe/procure-proposals/internal/service"
)

type eventPayload struct {
	Event          service.Event `json:"event"`
	ProposalID     uuid.UUID     `json:"proposalId"`
	OpportunityID  uuid.UUID     `json:"opportunityId"`
	OrganizationID *uuid.UUID    `json:"organizationId,omitempty"`
	Status         model.Status  `json:"status"`
	ActorID        uuid.UUID     `json:"actorId"`
	OccurredAt     time.Time     `json:"occurredAt"`
}

// NATSNotifier publishes events as JSON on <prefix>.events.<event>.
type NATSNotifier struct {
	conn   *nats.Conn
	prefix string
	log    zerolog.Logger
}

func NewNATS(url, prefix string, log zerolog.Logger) (*NATSNotifier, error) {
	conn, err := nats.Connect(url,
		nats.Name("procure-proposals"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("connect nats: %w", err)
	}
	return &NATSNotifier{conn: conn, prefix: prefix, log: log}, nil
}

func (n *NATSNotifier) Publish(_ context.Context, event service.Event, proposal *model.Proposal, actorID uuid.UUID) {
	payload := eventPayload{
		Event:          event,
		ProposalID:     proposal.ID,
		OpportunityID:  proposal.OpportunityID,
		OrganizationID: proposal.OrganizationID,
		Status:         proposal.Status,
		ActorID:        actorID,
		OccurredAt:     time.Now().UTC(),
	}
	data, err := json.Marshal(payload)
	if err != nil {
		n.log.Error().Err(err).Str("event", string(event)).Msg("marshal event")
		return
	}
	subject := fmt.Sprintf("%s.events.%s", n.prefix, event)
	if err := n.conn.Publish(subject, data); err != nil {
		n.log.Error().Err(err).Str("subject", subject).Msg("publish event")
	}
}

func (n *NATSNotifier) Close() {
	if err := n.conn.Drain(); err != nil {
		n.log.Warn().Err(err).Msg("drain nats connection")
	}
}

// LogNotifier stands in when no broker is configured, such as local
// development.
type LogNotifier struct {
	log zerolog.Logger
}

func NewLog(log zerolog.Logger) *LogNotifier {
	return &LogNotifier{log: log}
}

func (n *LogNotifier) Publish(_ context.Context, event service.Event, proposal *model.Proposal, actorID uuid.UUID) {
	n.log.Info().
		Str("event", string(event)).
		Str("proposal_id", proposal.ID.String()).
		Str("status", string(proposal.Status)).
		Str("actor_id", actorID.String()).
		Msg("proposal event")
}
