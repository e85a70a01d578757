// ABOUTME: Tests for the individual suggestion generators
// ABOUTME: Each generator is exercised in isolation against a frozen clock
package actions

import (
	"testing"

	"github.com/harperreed/dealdesk/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestActionItemSuggestions(t *testing.T) {
	deal := linkedDeal(models.StageContacted)
	conv := ConversationContext{ActionItems: []string{
		"Call seller back Thursday",
		"Send comps to seller",
		"Upload signed disclosure",
		"Ignored fourth item",
	}}

	got := ActionItemSuggestions(conv, deal, testNow)
	require.Len(t, got, 3)

	assert.Equal(t, PriorityHigh, got[0].Priority)
	assert.Equal(t, PriorityMedium, got[1].Priority)
	assert.Equal(t, PriorityMedium, got[2].Priority)

	assert.Equal(t, []int{85, 75, 65}, []int{got[0].Confidence, got[1].Confidence, got[2].Confidence})
	assert.Equal(t, CategoryContact, got[0].Category)
	assert.Equal(t, CategoryOffer, got[1].Category)
	assert.Equal(t, CategoryDocument, got[2].Category)

	for i, s := range got {
		assert.Equal(t, SourceActionItem, s.Source)
		assert.Equal(t, conv.ActionItems[i], s.Action)
		assert.Equal(t, deal.ID, s.DealID)
	}
	assert.Equal(t, "11111111-2222-3333-4444-555555555555-action-item-1", got[1].ID)
}

func TestActionItemSuggestions_StableIDs(t *testing.T) {
	deal := linkedDeal(models.StageContacted)
	conv := ConversationContext{ActionItems: []string{"Call seller"}}

	first := ActionItemSuggestions(conv, deal, testNow)
	second := ActionItemSuggestions(conv, deal, testNow.AddDate(0, 0, 3))
	assert.Equal(t, first[0].ID, second[0].ID)
}

func TestKeyPhraseSuggestions(t *testing.T) {
	deal := linkedDeal(models.StageAnalyzing)
	conv := ConversationContext{KeyPhrases: []string{
		"Behind on payments",
		"roof is old",
		"asking 200k",
		"nice neighbors",
	}}

	got := KeyPhraseSuggestions(conv, deal, testNow)
	require.Len(t, got, 3)

	assert.Equal(t, CategoryOffer, got[0].Category)
	assert.Equal(t, PriorityHigh, got[0].Priority)
	assert.Equal(t, 80, got[0].Confidence)
	assert.Equal(t, []string{"Behind on payments"}, got[0].Metadata["matched_phrases"])

	assert.Equal(t, CategoryWalkthrough, got[1].Category)
	assert.Equal(t, 75, got[1].Confidence)
	assert.Equal(t, []string{"roof is old"}, got[1].Metadata["matched_phrases"])

	assert.Equal(t, CategoryUnderwrite, got[2].Category)
	assert.Equal(t, 70, got[2].Confidence)

	for _, s := range got {
		assert.Equal(t, SourceConversationAnalysis, s.Source)
	}
}

func TestKeyPhraseSuggestions_Gating(t *testing.T) {
	conv := ConversationContext{KeyPhrases: []string{"needs work", "what is it worth"}}

	// Repair cost known and not analyzing: nothing to say.
	deal := linkedDeal(models.StageOfferSent)
	deal.Property.RepairCost = decimal.NewNullDecimal(decimal.NewFromInt(20000))
	assert.Empty(t, KeyPhraseSuggestions(conv, deal, testNow))

	// Without a property the repair estimate is absent.
	deal = linkedDeal(models.StageOfferSent)
	deal.Property = nil
	got := KeyPhraseSuggestions(conv, deal, testNow)
	require.Len(t, got, 1)
	assert.Equal(t, CategoryWalkthrough, got[0].Category)
}

func TestSentimentSuggestions(t *testing.T) {
	tests := []struct {
		name      string
		sentiment string
		stage     string
		priority  Priority
		category  Category
		wantNone  bool
	}{
		{"negative during offer", models.SentimentNegative, models.StageOfferSent, PriorityHigh, CategoryContact, false},
		{"negative during negotiation", models.SentimentNegative, models.StageNegotiating, PriorityHigh, CategoryContact, false},
		{"negative early", models.SentimentNegative, models.StageContacted, PriorityMedium, CategoryContact, false},
		{"negative after close", models.SentimentNegative, models.StageClosedWon, "", "", true},
		{"positive while analyzing", models.SentimentPositive, models.StageAnalyzing, PriorityMedium, CategoryOffer, false},
		{"positive elsewhere", models.SentimentPositive, models.StageNegotiating, "", "", true},
		{"neutral", models.SentimentNeutral, models.StageOfferSent, "", "", true},
		{"absent", "", models.StageOfferSent, "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SentimentSuggestions(ConversationContext{RecentSentiment: tt.sentiment}, linkedDeal(tt.stage), testNow)
			if tt.wantNone {
				assert.Empty(t, got)
				return
			}
			require.Len(t, got, 1)
			assert.Equal(t, tt.priority, got[0].Priority)
			assert.Equal(t, tt.category, got[0].Category)
			assert.Equal(t, SourceSentimentChange, got[0].Source)
		})
	}
}

func TestRecencySuggestions(t *testing.T) {
	deal := linkedDeal(models.StageNegotiating)

	deal.Lead.LastContactedAt = daysAgo(8)
	got := RecencySuggestions(ConversationContext{}, deal, testNow)
	require.Len(t, got, 1)
	assert.Equal(t, PriorityHigh, got[0].Priority)
	assert.Equal(t, CategoryContact, got[0].Category)
	assert.Equal(t, 90, got[0].Confidence)

	deal.Lead.LastContactedAt = daysAgo(5)
	got = RecencySuggestions(ConversationContext{}, deal, testNow)
	require.Len(t, got, 1)
	assert.Equal(t, PriorityMedium, got[0].Priority)
	assert.Equal(t, CategoryFollowup, got[0].Category)
	assert.Equal(t, 75, got[0].Confidence)

	deal.Lead.LastContactedAt = daysAgo(3)
	assert.Empty(t, RecencySuggestions(ConversationContext{}, deal, testNow))
}

func TestRecencySuggestions_ConversationIsContact(t *testing.T) {
	deal := linkedDeal(models.StageAnalyzing)
	deal.Lead.LastContactedAt = daysAgo(20)

	assert.Empty(t, RecencySuggestions(ConversationContext{LastContactDate: daysAgo(1)}, deal, testNow))
}

func TestRecencySuggestions_InactiveStages(t *testing.T) {
	for _, stage := range []string{models.StageClosedWon, models.StageClosedLost, "bogus"} {
		deal := linkedDeal(stage)
		deal.LastActivityAt = daysAgo(40)
		assert.Empty(t, RecencySuggestions(ConversationContext{}, deal, testNow), stage)
	}

	deal := linkedDeal(models.StageContacted)
	assert.Empty(t, RecencySuggestions(ConversationContext{}, deal, testNow))
}

func TestTimeBasedSuggestions(t *testing.T) {
	deal := linkedDeal(models.StageOfferSent)

	deal.Offers = []models.Offer{sentOffer(4)}
	got := TimeBasedSuggestions(ConversationContext{}, deal, testNow)
	require.Len(t, got, 1)
	assert.Equal(t, CategoryFollowup, got[0].Category)
	assert.Equal(t, 80, got[0].Confidence)
	assert.Equal(t, PriorityMedium, got[0].Priority)
	assert.Equal(t, SourceTimeBased, got[0].Source)

	deal.Offers = []models.Offer{sentOffer(6)}
	got = TimeBasedSuggestions(ConversationContext{}, deal, testNow)
	require.Len(t, got, 1)
	assert.Equal(t, 85, got[0].Confidence)
	assert.Equal(t, PriorityHigh, got[0].Priority)

	deal.Offers = []models.Offer{sentOffer(1)}
	assert.Empty(t, TimeBasedSuggestions(ConversationContext{}, deal, testNow))

	deal.Stage = models.StageNegotiating
	deal.Offers = []models.Offer{sentOffer(6)}
	assert.Empty(t, TimeBasedSuggestions(ConversationContext{}, deal, testNow))
}

func TestOfferSentScenario_BothSubsystemsAgree(t *testing.T) {
	deal := linkedDeal(models.StageOfferSent)
	deal.Offers = []models.Offer{sentOffer(4)}

	next := CalculateNextAction(deal, testNow)
	assert.Equal(t, PriorityHigh, next.Priority)
	assert.Contains(t, next.Action, "4 days")

	got := TimeBasedSuggestions(ConversationContext{}, deal, testNow)
	require.Len(t, got, 1)
	assert.Equal(t, CategoryFollowup, got[0].Category)
	assert.Equal(t, 80, got[0].Confidence)
}

func TestKeyPhraseSuggestions_IDsFollowRule(t *testing.T) {
	deal := linkedDeal(models.StageContacted)

	alone := KeyPhraseSuggestions(ConversationContext{KeyPhrases: []string{"needs work"}}, deal, testNow)
	require.Len(t, alone, 1)
	assert.Equal(t, "11111111-2222-3333-4444-555555555555-key-phrase-1", alone[0].ID)

	both := KeyPhraseSuggestions(ConversationContext{KeyPhrases: []string{"needs work", "motivated"}}, deal, testNow)
	require.Len(t, both, 2)
	assert.Equal(t, CategoryOffer, both[0].Category)
	assert.Equal(t, "11111111-2222-3333-4444-555555555555-key-phrase-0", both[0].ID)
	assert.Equal(t, alone[0].ID, both[1].ID)
}

func TestTieredGenerators_IDsFollowTier(t *testing.T) {
	deal := linkedDeal(models.StageContacted)

	deal.Lead.LastContactedAt = daysAgo(5)
	nudge := RecencySuggestions(ConversationContext{}, deal, testNow)
	deal.Lead.LastContactedAt = daysAgo(10)
	alarm := RecencySuggestions(ConversationContext{}, deal, testNow)
	require.Len(t, nudge, 1)
	require.Len(t, alarm, 1)
	assert.NotEqual(t, nudge[0].ID, alarm[0].ID)

	deal = linkedDeal(models.StageOfferSent)
	deal.Offers = []models.Offer{sentOffer(3)}
	followup := TimeBasedSuggestions(ConversationContext{}, deal, testNow)
	deal.Offers = []models.Offer{sentOffer(6)}
	stale := TimeBasedSuggestions(ConversationContext{}, deal, testNow)
	require.Len(t, followup, 1)
	require.Len(t, stale, 1)
	assert.NotEqual(t, followup[0].ID, stale[0].ID)
}

func TestGenerators_NilDeal(t *testing.T) {
	conv := ConversationContext{
		RecentSentiment: models.SentimentNegative,
		ActionItems:     []string{"Call seller"},
		KeyPhrases:      []string{"motivated"},
	}
	for name, gen := range map[string]generatorFunc{
		"action items": ActionItemSuggestions,
		"key phrases":  KeyPhraseSuggestions,
		"sentiment":    SentimentSuggestions,
		"recency":      RecencySuggestions,
		"time based":   TimeBasedSuggestions,
	} {
		assert.NotPanics(t, func() {
			assert.Empty(t, gen(conv, nil, testNow))
		}, name)
	}
}
