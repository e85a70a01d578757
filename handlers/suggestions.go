// ABOUTME: Suggestion MCP tool handlers
// ABOUTME: Implements suggest_actions and dismiss_suggestion tools
package handlers

import (
	"context"
	"fmt"
	"strings"

	"github.com/harperreed/dealdesk/actions"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/sirupsen/logrus"
)

type SuggestActionsInput struct {
	DealID         string `json:"deal_id" jsonschema:"Deal ID (required)"`
	MaxSuggestions int    `json:"max_suggestions,omitempty" jsonschema:"Maximum number of suggestions (default 5)"`
}

type SuggestionOutput struct {
	ID         string           `json:"id"`
	Action     string           `json:"action"`
	Reason     string           `json:"reason"`
	Priority   actions.Priority `json:"priority"`
	Category   actions.Category `json:"category"`
	Confidence int              `json:"confidence"`
	Source     actions.Source   `json:"source"`
	Icon       string           `json:"icon"`
	Metadata   map[string]any   `json:"metadata,omitempty"`
}

type SuggestionsOutput struct {
	DealID      string             `json:"deal_id"`
	Success     bool               `json:"success"`
	Suggestions []SuggestionOutput `json:"suggestions"`
	Error       string             `json:"error,omitempty"`
}

// SuggestActions never fails on generation problems; they are reported in the output.
func (h *DealHandlers) SuggestActions(ctx context.Context, request *mcp.CallToolRequest, input SuggestActionsInput) (*mcp.CallToolResult, SuggestionsOutput, error) {
	deal, err := h.loadDeal(ctx, input.DealID)
	if err != nil {
		return nil, SuggestionsOutput{}, err
	}
	if input.MaxSuggestions < 0 {
		return nil, SuggestionsOutput{}, fmt.Errorf("max_suggestions must not be negative")
	}

	var dismissed []string
	if h.dismissals != nil {
		dismissed, err = h.dismissals.ListForDeal(deal.ID)
		if err != nil {
			h.logger.WithError(err).WithField("deal_id", deal.ID.String()).Warn("Failed to read dismissals")
		}
	}

	result := h.suggester.GenerateSuggestions(ctx, actions.SuggestionRequest{
		Deal:           deal,
		MaxSuggestions: input.MaxSuggestions,
		Dismissed:      dismissed,
	})

	return nil, SuggestionsOutput{
		DealID:      deal.ID.String(),
		Success:     result.Success,
		Suggestions: suggestionsToOutput(result.Suggestions),
		Error:       result.Error,
	}, nil
}

func suggestionsToOutput(suggestions []actions.AISuggestion) []SuggestionOutput {
	out := make([]SuggestionOutput, 0, len(suggestions))
	for _, s := range suggestions {
		out = append(out, SuggestionOutput{
			ID:         s.ID,
			Action:     s.Action,
			Reason:     s.Reason,
			Priority:   s.Priority,
			Category:   s.Category,
			Confidence: s.Confidence,
			Source:     s.Source,
			Icon:       actions.ActionIcon(s.Category),
			Metadata:   s.Metadata,
		})
	}
	return out
}

type DismissSuggestionInput struct {
	DealID       string `json:"deal_id" jsonschema:"Deal ID (required)"`
	SuggestionID string `json:"suggestion_id" jsonschema:"Suggestion ID from suggest_actions (required)"`
}

type DismissOutput struct {
	DealID       string `json:"deal_id"`
	SuggestionID string `json:"suggestion_id"`
	Dismissed    bool   `json:"dismissed"`
}

func (h *DealHandlers) DismissSuggestion(_ context.Context, request *mcp.CallToolRequest, input DismissSuggestionInput) (*mcp.CallToolResult, DismissOutput, error) {
	dealID, err := parseDealID(input.DealID)
	if err != nil {
		return nil, DismissOutput{}, err
	}

	suggestionID := strings.TrimSpace(input.SuggestionID)
	if suggestionID == "" {
		return nil, DismissOutput{}, fmt.Errorf("suggestion_id is required")
	}
	if !strings.HasPrefix(suggestionID, dealID.String()+"-") {
		return nil, DismissOutput{}, fmt.Errorf("suggestion %s does not belong to deal %s", suggestionID, dealID)
	}
	if h.dismissals == nil {
		return nil, DismissOutput{}, fmt.Errorf("dismissals are not configured")
	}

	if err := h.dismissals.Dismiss(dealID, suggestionID); err != nil {
		return nil, DismissOutput{}, fmt.Errorf("failed to dismiss suggestion: %w", err)
	}

	h.logger.WithFields(logrus.Fields{
		"deal_id":       dealID.String(),
		"suggestion_id": suggestionID,
	}).Info("Dismissed suggestion")

	return nil, DismissOutput{DealID: dealID.String(), SuggestionID: suggestionID, Dismissed: true}, nil
}
