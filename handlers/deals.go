// ABOUTME: Deal MCP tool handlers
// ABOUTME: Implements get_next_action, log_conversation, and advance_deal_stage tools
package handlers

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/harperreed/dealdesk/actions"
	"github.com/harperreed/dealdesk/models"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/sirupsen/logrus"
)

// DealStore is the persistence surface the tools need. Both the SQLite and
// Supabase stores satisfy it.
type DealStore interface {
	actions.DealLoader
	actions.ConversationProvider
	LogConversation(ctx context.Context, rec *models.ConversationRecord) error
	AdvanceStage(ctx context.Context, id uuid.UUID) (string, error)
}

// Dismissals persists suggestions the user no longer wants to see.
type Dismissals interface {
	Dismiss(dealID uuid.UUID, suggestionID string) error
	ListForDeal(dealID uuid.UUID) ([]string, error)
}

type DealHandlers struct {
	store      DealStore
	dismissals Dismissals
	suggester  *actions.Suggester
	logger     logrus.FieldLogger
	now        func() time.Time
}

// NewDealHandlers wires the tools to a store. dismissals may be nil.
func NewDealHandlers(store DealStore, dismissals Dismissals, logger logrus.FieldLogger, maxSuggestions int) *DealHandlers {
	suggester := actions.NewSuggester(store, logger)
	if maxSuggestions > 0 {
		suggester.DefaultMax = maxSuggestions
	}
	return &DealHandlers{
		store:      store,
		dismissals: dismissals,
		suggester:  suggester,
		logger:     logger,
		now:        time.Now,
	}
}

type DealInput struct {
	DealID string `json:"deal_id" jsonschema:"Deal ID (required)"`
}

type NextActionOutput struct {
	DealID     string                `json:"deal_id"`
	Stage      string                `json:"stage"`
	StageLabel string                `json:"stage_label"`
	Action     string                `json:"action"`
	Priority   actions.Priority      `json:"priority"`
	Category   actions.Category      `json:"category"`
	Icon       string                `json:"icon"`
	ButtonText string                `json:"button_text"`
	DueDate    *string               `json:"due_date,omitempty"`
	IsOverdue  bool                  `json:"is_overdue"`
	Context    actions.ActionContext `json:"context"`
}

func (h *DealHandlers) GetNextAction(ctx context.Context, request *mcp.CallToolRequest, input DealInput) (*mcp.CallToolResult, NextActionOutput, error) {
	deal, err := h.loadDeal(ctx, input.DealID)
	if err != nil {
		return nil, NextActionOutput{}, err
	}

	next := actions.CalculateNextAction(deal, h.now())
	return nil, nextActionToOutput(deal, next), nil
}

type LogConversationInput struct {
	DealID      string   `json:"deal_id" jsonschema:"Deal ID (required)"`
	Channel     string   `json:"channel,omitempty" jsonschema:"How the conversation happened: call, sms, email, visit (default call)"`
	Summary     string   `json:"summary,omitempty" jsonschema:"Short summary of the conversation"`
	Sentiment   string   `json:"sentiment,omitempty" jsonschema:"Seller sentiment: positive, neutral, negative"`
	KeyPhrases  []string `json:"key_phrases,omitempty" jsonschema:"Notable phrases the seller used"`
	ActionItems []string `json:"action_items,omitempty" jsonschema:"Follow-up tasks that came out of the conversation"`
	OccurredAt  string   `json:"occurred_at,omitempty" jsonschema:"When it happened in ISO 8601 format (default now)"`
}

type ConversationOutput struct {
	ID          string   `json:"id"`
	DealID      string   `json:"deal_id"`
	LeadID      *string  `json:"lead_id,omitempty"`
	Channel     string   `json:"channel"`
	Summary     string   `json:"summary,omitempty"`
	Sentiment   string   `json:"sentiment,omitempty"`
	KeyPhrases  []string `json:"key_phrases,omitempty"`
	ActionItems []string `json:"action_items,omitempty"`
	OccurredAt  string   `json:"occurred_at"`
}

func (h *DealHandlers) LogConversation(ctx context.Context, request *mcp.CallToolRequest, input LogConversationInput) (*mcp.CallToolResult, ConversationOutput, error) {
	dealID, err := parseDealID(input.DealID)
	if err != nil {
		return nil, ConversationOutput{}, err
	}
	if !models.IsValidSentiment(input.Sentiment) {
		return nil, ConversationOutput{}, fmt.Errorf("invalid sentiment: %s (valid: positive, neutral, negative)", input.Sentiment)
	}

	rec := &models.ConversationRecord{
		DealID:      dealID,
		Channel:     input.Channel,
		Summary:     input.Summary,
		Sentiment:   input.Sentiment,
		KeyPhrases:  input.KeyPhrases,
		ActionItems: input.ActionItems,
	}

	if input.OccurredAt != "" {
		parsedTime, err := time.Parse(time.RFC3339, input.OccurredAt)
		if err != nil {
			return nil, ConversationOutput{}, fmt.Errorf("invalid occurred_at format (use ISO 8601/RFC3339): %w", err)
		}
		rec.OccurredAt = parsedTime
	}

	if err := h.store.LogConversation(ctx, rec); err != nil {
		return nil, ConversationOutput{}, fmt.Errorf("failed to log conversation: %w", err)
	}

	h.logger.WithFields(logrus.Fields{
		"deal_id":         dealID.String(),
		"conversation_id": rec.ID,
	}).Info("Logged conversation")

	return nil, conversationToOutput(rec), nil
}

type StageOutput struct {
	DealID     string `json:"deal_id"`
	Stage      string `json:"stage"`
	StageLabel string `json:"stage_label"`
}

func (h *DealHandlers) AdvanceDealStage(ctx context.Context, request *mcp.CallToolRequest, input DealInput) (*mcp.CallToolResult, StageOutput, error) {
	dealID, err := parseDealID(input.DealID)
	if err != nil {
		return nil, StageOutput{}, err
	}

	stage, err := h.store.AdvanceStage(ctx, dealID)
	if err != nil {
		if errors.Is(err, actions.ErrDealNotFound) {
			return nil, StageOutput{}, fmt.Errorf("deal not found")
		}
		return nil, StageOutput{}, fmt.Errorf("failed to advance deal: %w", err)
	}

	return nil, StageOutput{
		DealID:     dealID.String(),
		Stage:      stage,
		StageLabel: models.StageLabel(stage),
	}, nil
}

func parseDealID(raw string) (uuid.UUID, error) {
	if raw == "" {
		return uuid.Nil, fmt.Errorf("deal_id is required")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid deal_id: %w", err)
	}
	return id, nil
}

func (h *DealHandlers) loadDeal(ctx context.Context, raw string) (*models.Deal, error) {
	dealID, err := parseDealID(raw)
	if err != nil {
		return nil, err
	}

	deal, err := h.store.LoadDeal(ctx, dealID)
	if errors.Is(err, actions.ErrDealNotFound) {
		return nil, fmt.Errorf("deal not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get deal: %w", err)
	}
	return deal, nil
}

func nextActionToOutput(deal *models.Deal, next actions.NextAction) NextActionOutput {
	out := NextActionOutput{
		DealID:     deal.ID.String(),
		Stage:      deal.Stage,
		StageLabel: models.StageLabel(deal.Stage),
		Action:     next.Action,
		Priority:   next.Priority,
		Category:   next.Category,
		Icon:       actions.ActionIcon(next.Category),
		ButtonText: actions.ActionButtonText(next.Category),
		IsOverdue:  next.IsOverdue,
		Context:    next.Context,
	}

	if next.DueDate != nil {
		s := next.DueDate.Format(time.RFC3339)
		out.DueDate = &s
	}

	return out
}

func conversationToOutput(rec *models.ConversationRecord) ConversationOutput {
	out := ConversationOutput{
		ID:          rec.ID,
		DealID:      rec.DealID.String(),
		Channel:     rec.Channel,
		Summary:     rec.Summary,
		Sentiment:   rec.Sentiment,
		KeyPhrases:  rec.KeyPhrases,
		ActionItems: rec.ActionItems,
		OccurredAt:  rec.OccurredAt.Format(time.RFC3339),
	}

	if rec.LeadID != nil {
		s := rec.LeadID.String()
		out.LeadID = &s
	}

	return out
}
