// ABOUTME: Tests for the deal MCP tool, prompt, and resource handlers
// ABOUTME: Runs against a temp SQLite store and in-memory dismissals
package handlers

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/harperreed/dealdesk/actions"
	"github.com/harperreed/dealdesk/db"
	"github.com/harperreed/dealdesk/dismissals"
	"github.com/harperreed/dealdesk/models"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	store    *db.Store
	handlers *DealHandlers
	deal     *models.Deal
}

func setup(t *testing.T, stage string) *fixture {
	t.Helper()

	database, err := db.OpenDatabase(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })

	dis, err := dismissals.OpenInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { _ = dis.Close() })

	lead := &models.Lead{Name: "Pat Seller"}
	require.NoError(t, db.CreateLead(database, lead))
	property := &models.Property{Address: "123 Main St"}
	require.NoError(t, db.CreateProperty(database, property))
	deal := &models.Deal{Title: "123 Main St", Stage: stage, LeadID: &lead.ID, PropertyID: &property.ID}
	require.NoError(t, db.CreateDeal(database, deal))

	logger, _ := test.NewNullLogger()
	store := db.NewStore(database)
	return &fixture{
		store:    store,
		handlers: NewDealHandlers(store, dis, logger, 5),
		deal:     deal,
	}
}

func TestGetNextAction(t *testing.T) {
	f := setup(t, models.StageOfferSent)
	require.NoError(t, db.CreateOffer(f.store.DB(), &models.Offer{
		DealID:    f.deal.ID,
		Amount:    decimal.NewFromInt(180000),
		Status:    models.OfferSent,
		CreatedAt: time.Now().Add(-5 * 24 * time.Hour),
	}))

	_, out, err := f.handlers.GetNextAction(context.Background(), nil, DealInput{DealID: f.deal.ID.String()})
	require.NoError(t, err)
	assert.Equal(t, f.deal.ID.String(), out.DealID)
	assert.Equal(t, "Offer Sent", out.StageLabel)
	assert.Equal(t, actions.PriorityHigh, out.Priority)
	assert.Equal(t, actions.CategoryFollowup, out.Category)
	assert.Equal(t, "Follow Up", out.ButtonText)
	assert.Contains(t, out.Action, "5 days")
}

func TestGetNextAction_Errors(t *testing.T) {
	f := setup(t, models.StageNew)

	_, _, err := f.handlers.GetNextAction(context.Background(), nil, DealInput{})
	assert.EqualError(t, err, "deal_id is required")

	_, _, err = f.handlers.GetNextAction(context.Background(), nil, DealInput{DealID: "not-a-uuid"})
	assert.ErrorContains(t, err, "invalid deal_id")

	_, _, err = f.handlers.GetNextAction(context.Background(), nil, DealInput{DealID: uuid.New().String()})
	assert.EqualError(t, err, "deal not found")
}

func TestGetNextAction_ManualOverrideDueDate(t *testing.T) {
	f := setup(t, models.StageAnalyzing)
	due := time.Now().AddDate(0, 0, -3)
	f.deal.NextAction = "Send revised numbers"
	f.deal.NextActionDue = &due
	require.NoError(t, db.UpdateDeal(f.store.DB(), f.deal))

	_, out, err := f.handlers.GetNextAction(context.Background(), nil, DealInput{DealID: f.deal.ID.String()})
	require.NoError(t, err)
	assert.Equal(t, "Send revised numbers", out.Action)
	assert.True(t, out.IsOverdue)
	require.NotNil(t, out.DueDate)
}

func TestLogConversationAndSuggest(t *testing.T) {
	f := setup(t, models.StageContacted)
	ctx := context.Background()

	_, conv, err := f.handlers.LogConversation(ctx, nil, LogConversationInput{
		DealID:      f.deal.ID.String(),
		Channel:     models.ChannelCall,
		Summary:     "Seller wants to move fast",
		Sentiment:   models.SentimentNeutral,
		KeyPhrases:  []string{"needs work"},
		ActionItems: []string{"Call seller back", "Visit the property"},
	})
	require.NoError(t, err)
	assert.Len(t, conv.ID, 26)
	require.NotNil(t, conv.LeadID)
	assert.Equal(t, f.deal.LeadID.String(), *conv.LeadID)

	_, out, err := f.handlers.SuggestActions(ctx, nil, SuggestActionsInput{DealID: f.deal.ID.String()})
	require.NoError(t, err)
	require.True(t, out.Success, out.Error)
	require.Len(t, out.Suggestions, 3)
	assert.Equal(t, "Call seller back", out.Suggestions[0].Action)
	assert.Equal(t, "Visit the property", out.Suggestions[1].Action)
	assert.Equal(t, actions.SourceConversationAnalysis, out.Suggestions[2].Source)
	assert.Equal(t, "📞", out.Suggestions[0].Icon)

	_, limited, err := f.handlers.SuggestActions(ctx, nil, SuggestActionsInput{DealID: f.deal.ID.String(), MaxSuggestions: 1})
	require.NoError(t, err)
	assert.Len(t, limited.Suggestions, 1)

	_, _, err = f.handlers.SuggestActions(ctx, nil, SuggestActionsInput{DealID: f.deal.ID.String(), MaxSuggestions: -1})
	assert.Error(t, err)
}

func TestLogConversation_Validation(t *testing.T) {
	f := setup(t, models.StageContacted)
	ctx := context.Background()

	_, _, err := f.handlers.LogConversation(ctx, nil, LogConversationInput{DealID: f.deal.ID.String(), Sentiment: "thrilled"})
	assert.ErrorContains(t, err, "invalid sentiment")

	_, _, err = f.handlers.LogConversation(ctx, nil, LogConversationInput{DealID: f.deal.ID.String(), OccurredAt: "yesterday"})
	assert.ErrorContains(t, err, "invalid occurred_at")

	_, _, err = f.handlers.LogConversation(ctx, nil, LogConversationInput{DealID: uuid.New().String()})
	assert.ErrorIs(t, err, actions.ErrDealNotFound)

	_, out, err := f.handlers.LogConversation(ctx, nil, LogConversationInput{
		DealID:     f.deal.ID.String(),
		OccurredAt: "2024-01-18T10:00:00Z",
	})
	require.NoError(t, err)
	assert.Equal(t, "2024-01-18T10:00:00Z", out.OccurredAt)
	assert.Equal(t, models.ChannelCall, out.Channel)
}

func TestDismissSuggestion(t *testing.T) {
	f := setup(t, models.StageContacted)
	ctx := context.Background()

	_, _, err := f.handlers.LogConversation(ctx, nil, LogConversationInput{
		DealID:      f.deal.ID.String(),
		ActionItems: []string{"Call seller", "Call the agent"},
	})
	require.NoError(t, err)

	_, before, err := f.handlers.SuggestActions(ctx, nil, SuggestActionsInput{DealID: f.deal.ID.String()})
	require.NoError(t, err)
	require.Len(t, before.Suggestions, 1)
	first := before.Suggestions[0]

	_, dismissed, err := f.handlers.DismissSuggestion(ctx, nil, DismissSuggestionInput{
		DealID:       f.deal.ID.String(),
		SuggestionID: first.ID,
	})
	require.NoError(t, err)
	assert.True(t, dismissed.Dismissed)

	_, after, err := f.handlers.SuggestActions(ctx, nil, SuggestActionsInput{DealID: f.deal.ID.String()})
	require.NoError(t, err)
	require.Len(t, after.Suggestions, 1)
	assert.NotEqual(t, first.ID, after.Suggestions[0].ID)
	assert.Equal(t, "Call the agent", after.Suggestions[0].Action)

	_, _, err = f.handlers.DismissSuggestion(ctx, nil, DismissSuggestionInput{DealID: f.deal.ID.String()})
	assert.Error(t, err)

	_, _, err = f.handlers.DismissSuggestion(ctx, nil, DismissSuggestionInput{
		DealID:       f.deal.ID.String(),
		SuggestionID: uuid.New().String() + "-recency-0",
	})
	assert.ErrorContains(t, err, "does not belong")
}

func TestDismissSuggestion_NotConfigured(t *testing.T) {
	f := setup(t, models.StageContacted)
	logger, _ := test.NewNullLogger()
	h := NewDealHandlers(f.store, nil, logger, 0)

	_, _, err := h.DismissSuggestion(context.Background(), nil, DismissSuggestionInput{
		DealID:       f.deal.ID.String(),
		SuggestionID: f.deal.ID.String() + "-recency-0",
	})
	assert.ErrorContains(t, err, "not configured")
}

func TestAdvanceDealStage(t *testing.T) {
	f := setup(t, models.StageNegotiating)
	ctx := context.Background()

	_, out, err := f.handlers.AdvanceDealStage(ctx, nil, DealInput{DealID: f.deal.ID.String()})
	require.NoError(t, err)
	assert.Equal(t, models.StageUnderContract, out.Stage)
	assert.Equal(t, "Under Contract", out.StageLabel)

	_, out, err = f.handlers.AdvanceDealStage(ctx, nil, DealInput{DealID: f.deal.ID.String()})
	require.NoError(t, err)
	assert.Equal(t, models.StageClosedWon, out.Stage)

	_, _, err = f.handlers.AdvanceDealStage(ctx, nil, DealInput{DealID: f.deal.ID.String()})
	assert.ErrorContains(t, err, "no next stage")

	_, _, err = f.handlers.AdvanceDealStage(ctx, nil, DealInput{DealID: uuid.New().String()})
	assert.EqualError(t, err, "deal not found")
}

func TestGetPrompt(t *testing.T) {
	f := setup(t, models.StageNew)

	result, err := f.handlers.GetPrompt(context.Background(), &mcp.GetPromptRequest{
		Params: &mcp.GetPromptParams{Name: DealBriefingPrompt, Arguments: map[string]string{"deal_id": f.deal.ID.String()}},
	})
	require.NoError(t, err)
	require.Len(t, result.Messages, 1)

	text, ok := result.Messages[0].Content.(*mcp.TextContent)
	require.True(t, ok)
	assert.Contains(t, text.Text, "Stage: New Lead")
	assert.Contains(t, text.Text, "Seller: Pat Seller")
	assert.Contains(t, text.Text, "Make initial contact with seller")

	_, err = f.handlers.GetPrompt(context.Background(), &mcp.GetPromptRequest{
		Params: &mcp.GetPromptParams{Name: "nope"},
	})
	assert.Error(t, err)
}

func TestReadResource(t *testing.T) {
	f := setup(t, models.StageNew)
	uri := ResourceScheme + "deals/" + f.deal.ID.String()

	result, err := f.handlers.ReadResource(context.Background(), &mcp.ReadResourceRequest{
		Params: &mcp.ReadResourceParams{URI: uri},
	})
	require.NoError(t, err)
	require.Len(t, result.Contents, 1)
	assert.Equal(t, "application/json", result.Contents[0].MIMEType)

	var payload map[string]any
	require.NoError(t, json.Unmarshal([]byte(result.Contents[0].Text), &payload))
	assert.Equal(t, "123 Main St", payload["title"])
	recommended, ok := payload["recommended_action"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Make initial contact with seller", recommended["action"])

	for _, bad := range []string{"crm://deals/x", ResourceScheme + "pipeline", ResourceScheme + "deals/not-a-uuid"} {
		_, err := f.handlers.ReadResource(context.Background(), &mcp.ReadResourceRequest{
			Params: &mcp.ReadResourceParams{URI: bad},
		})
		assert.Error(t, err, bad)
	}
}
