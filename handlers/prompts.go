// ABOUTME: MCP prompt handlers for deal workflow templates
// ABOUTME: Builds a deal briefing prompt from the next action and live suggestions
package handlers

import (
	"context"
	"fmt"
	"strings"

	"github.com/harperreed/dealdesk/actions"
	"github.com/harperreed/dealdesk/models"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const DealBriefingPrompt = "deal-briefing"

// GetPrompt generates the prompt message based on the template
func (h *DealHandlers) GetPrompt(ctx context.Context, request *mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	name := request.Params.Name
	arguments := request.Params.Arguments
	switch name {
	case DealBriefingPrompt:
		return h.getDealBriefingPrompt(ctx, arguments)
	default:
		return nil, fmt.Errorf("unknown prompt: %s", name)
	}
}

func (h *DealHandlers) getDealBriefingPrompt(ctx context.Context, args map[string]string) (*mcp.GetPromptResult, error) {
	deal, err := h.loadDeal(ctx, args["deal_id"])
	if err != nil {
		return nil, err
	}

	next := actions.CalculateNextAction(deal, h.now())

	var promptText strings.Builder
	promptText.WriteString(fmt.Sprintf("Please brief me on the deal %q.\n\n", deal.Title))
	promptText.WriteString(fmt.Sprintf("Stage: %s\n", models.StageLabel(deal.Stage)))
	if deal.Lead != nil {
		promptText.WriteString(fmt.Sprintf("Seller: %s\n", deal.Lead.Name))
	}
	if deal.Property != nil {
		promptText.WriteString(fmt.Sprintf("Property: %s\n", deal.Property.Address))
	}
	if next.Context.DaysSinceLastContact != nil {
		promptText.WriteString(fmt.Sprintf("Days since last contact: %d\n", *next.Context.DaysSinceLastContact))
	}
	promptText.WriteString(fmt.Sprintf("\nRecommended next action (%s priority): %s\n", next.Priority, next.Action))
	if next.Context.Reason != "" {
		promptText.WriteString(fmt.Sprintf("Why: %s\n", next.Context.Reason))
	}

	result := h.suggester.GenerateSuggestions(ctx, actions.SuggestionRequest{Deal: deal})
	if len(result.Suggestions) > 0 {
		promptText.WriteString("\nOther suggestions:\n")
		for _, s := range result.Suggestions {
			promptText.WriteString(fmt.Sprintf("  - [%s] %s (%s)\n", s.Priority, s.Action, s.Reason))
		}
	}

	promptText.WriteString("\nPlease provide:")
	promptText.WriteString("\n1. A short summary of where this deal stands")
	promptText.WriteString("\n2. Talking points for the next conversation with the seller")
	promptText.WriteString("\n3. Any risks worth flagging before the next step")

	return &mcp.GetPromptResult{
		Description: "Deal briefing",
		Messages: []*mcp.PromptMessage{
			{
				Role: "user",
				Content: &mcp.TextContent{
					Text: promptText.String(),
				},
			},
		},
	}, nil
}
