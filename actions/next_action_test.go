// ABOUTME: Tests for the next-best-action rule evaluator
// ABOUTME: Covers each rule in isolation plus waterfall ordering scenarios
package actions

import (
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/google/uuid"
	"github.com/harperreed/dealdesk/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRuleNamesOrder(t *testing.T) {
	names := RuleNames()
	require.NotEmpty(t, names)
	assert.Equal(t, "manual_override", names[0])
	assert.Equal(t, "stage_default", names[len(names)-1])
	assert.Less(t, indexOf(names, "missing_property"), indexOf(names, "missing_lead"))
	assert.Less(t, indexOf(names, "contact_recency"), indexOf(names, "missing_property"))
}

func indexOf(names []string, name string) int {
	for i, n := range names {
		if n == name {
			return i
		}
	}
	return -1
}

func TestManualOverride_NoDueDateNeverOverdue(t *testing.T) {
	stages := []string{models.StageClosedLost, "bogus"}
	stages = append(stages, models.StageOrder...)
	for _, stage := range stages {
		deal := linkedDeal(stage)
		deal.NextAction = "Call back about the roof"

		action := CalculateNextAction(deal, testNow)
		assert.False(t, action.IsOverdue, stage)
		assert.Equal(t, PriorityMedium, action.Priority)
		assert.Equal(t, CategoryContact, action.Category)
		assert.Nil(t, action.DueDate)
	}
}

func TestManualOverride_Overdue(t *testing.T) {
	loc := testNow.Location()
	tests := []struct {
		name    string
		due     time.Time
		overdue bool
	}{
		{"yesterday late evening", time.Date(2024, 1, 19, 23, 59, 0, 0, loc), true},
		{"last week", time.Date(2024, 1, 12, 9, 0, 0, 0, loc), true},
		{"today at midnight", time.Date(2024, 1, 20, 0, 0, 0, 0, loc), false},
		{"earlier today", time.Date(2024, 1, 20, 8, 0, 0, 0, loc), false},
		{"tomorrow", time.Date(2024, 1, 21, 12, 0, 0, 0, loc), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			deal := linkedDeal(models.StageAnalyzing)
			deal.NextAction = "Send revised offer"
			due := tt.due
			deal.NextActionDue = &due

			action := CalculateNextAction(deal, testNow)
			assert.Equal(t, tt.overdue, action.IsOverdue)
			assert.Equal(t, &due, action.DueDate)
			if tt.overdue {
				assert.Equal(t, PriorityHigh, action.Priority)
			} else {
				assert.Equal(t, PriorityMedium, action.Priority)
			}
			assert.Equal(t, CategoryOffer, action.Category)
		})
	}
}

func TestManualOverride_OverdueUsesLocalCalendarDay(t *testing.T) {
	la, err := time.LoadLocation("America/Los_Angeles")
	require.NoError(t, err)

	// 20:00 on Jan 20 in Los Angeles is already Jan 21 in UTC.
	evening := time.Date(2024, 1, 20, 20, 0, 0, 0, la)
	tests := []struct {
		name    string
		due     time.Time
		now     time.Time
		overdue bool
	}{
		{"same local day stored in utc", time.Date(2024, 1, 20, 12, 0, 0, 0, time.UTC), evening, false},
		{"previous local day stored in utc", time.Date(2024, 1, 20, 3, 0, 0, 0, time.UTC), time.Date(2024, 1, 20, 10, 0, 0, 0, la), true},
		{"local midnight stored in utc", time.Date(2024, 1, 20, 8, 0, 0, 0, time.UTC), evening, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			deal := linkedDeal(models.StageAnalyzing)
			deal.NextAction = "Send revised offer"
			due := tt.due
			deal.NextActionDue = &due

			action := CalculateNextAction(deal, tt.now)
			assert.Equal(t, tt.overdue, action.IsOverdue)
		})
	}
}

func TestManualOverride_CarriesContext(t *testing.T) {
	deal := linkedDeal(models.StageContacted)
	deal.NextAction = "Anything at all"
	deal.Lead.LastContactedAt = daysAgo(12)

	action := CalculateNextAction(deal, testNow)
	assert.Equal(t, "Anything at all", action.Action)
	require.NotNil(t, action.Context.DaysSinceLastContact)
	assert.Equal(t, 12, *action.Context.DaysSinceLastContact)
}

func TestContactRecency(t *testing.T) {
	deal := linkedDeal(models.StageContacted)
	deal.Lead.LastContactedAt = daysAgo(8)

	action := CalculateNextAction(deal, testNow)
	assert.Equal(t, PriorityHigh, action.Priority)
	assert.Equal(t, CategoryContact, action.Category)
	assert.Contains(t, action.Action, "8 days")

	// Legacy stage alias behaves like contacted.
	deal.Stage = models.StageInitialContact
	assert.Contains(t, CalculateNextAction(deal, testNow).Action, "8 days")
}

func TestContactRecency_NegotiationIsTimeSensitive(t *testing.T) {
	deal := linkedDeal(models.StageNegotiating)
	deal.Lead.LastContactedAt = daysAgo(3)

	action := CalculateNextAction(deal, testNow)
	assert.Equal(t, "Check in with seller to keep negotiation moving", action.Action)
	assert.Equal(t, PriorityHigh, action.Priority)

	// Three quiet days is fine outside negotiation.
	deal.Stage = models.StageOfferSent
	_, fired := evaluateRule("contact_recency", deal, testNow)
	assert.False(t, fired)
}

func TestContactRecency_IgnoredOutsideActiveStages(t *testing.T) {
	for _, stage := range []string{models.StageNew, models.StageUnderContract, models.StageClosedWon} {
		deal := linkedDeal(stage)
		deal.LastActivityAt = daysAgo(30)
		_, fired := evaluateRule("contact_recency", deal, testNow)
		assert.False(t, fired, stage)
	}
}

func TestMissingPropertyPrecedesMissingLead(t *testing.T) {
	deal := &models.Deal{ID: uuid.New(), Stage: models.StageNew}

	action := CalculateNextAction(deal, testNow)
	assert.Equal(t, "Link or add property to this deal", action.Action)
	assert.Equal(t, PriorityHigh, action.Priority)
	assert.Equal(t, CategoryDocument, action.Category)
}

func TestMissingLead(t *testing.T) {
	deal := linkedDeal(models.StageNew)
	deal.LeadID = nil
	deal.Lead = nil

	action := CalculateNextAction(deal, testNow)
	assert.Equal(t, "Link or add seller lead to this deal", action.Action)
	assert.Equal(t, CategoryContact, action.Category)
}

func TestAnalyzingMissingData(t *testing.T) {
	deal := linkedDeal(models.StageAnalyzing)
	action := CalculateNextAction(deal, testNow)
	assert.Equal(t, CategoryAnalyze, action.Category)
	assert.Equal(t, PriorityHigh, action.Priority)

	deal = underwrittenDeal()
	deal.Property.RepairCost.Valid = false
	action = CalculateNextAction(deal, testNow)
	assert.Equal(t, CategoryWalkthrough, action.Category)
	assert.Equal(t, PriorityHigh, action.Priority)

	deal = underwrittenDeal()
	deal.Strategy = ""
	action = CalculateNextAction(deal, testNow)
	assert.Equal(t, CategoryUnderwrite, action.Category)
	assert.Equal(t, PriorityMedium, action.Priority)
}

func TestWalkthroughNudge(t *testing.T) {
	deal := linkedDeal(models.StageAppointmentSet)

	deal.Walkthrough = walkthroughWith(RequiredPhotoBuckets[:4]...)
	action := CalculateNextAction(deal, testNow)
	assert.Equal(t, "Continue walkthrough: capture remaining areas", action.Action)
	assert.Equal(t, CategoryWalkthrough, action.Category)
	assert.Equal(t, "Walkthrough is 40% complete", action.Context.Reason)

	deal.Walkthrough = walkthroughWith(RequiredPhotoBuckets[:6]...)
	action = CalculateNextAction(deal, testNow)
	assert.Equal(t, "Continue walkthrough: capture roof", action.Action)

	// At 70% the walkthrough is good enough.
	deal.Walkthrough = walkthroughWith(RequiredPhotoBuckets[:7]...)
	action = CalculateNextAction(deal, testNow)
	assert.Equal(t, "Complete property walkthrough", action.Action)
	assert.Equal(t, PriorityLow, action.Priority)

	// No photos at all is not "in progress".
	deal.Walkthrough = walkthroughWith()
	_, fired := evaluateRule("walkthrough_progress", deal, testNow)
	assert.False(t, fired)
}

func TestWalkthroughNudge_HumanizesBucket(t *testing.T) {
	deal := linkedDeal(models.StageAppointmentSet)
	deal.Walkthrough = walkthroughWith("exterior_front", "exterior_back", "kitchen", "living_room", "bedroom_primary", "roof")

	action := CalculateNextAction(deal, testNow)
	assert.Equal(t, "Continue walkthrough: capture bathroom primary", action.Action)
}

func TestReadyForOffer(t *testing.T) {
	action := CalculateNextAction(underwrittenDeal(), testNow)
	assert.Equal(t, "Create and send offer package", action.Action)
	assert.Equal(t, PriorityHigh, action.Priority)
	assert.Equal(t, CategoryOffer, action.Category)
}

func TestStaleOffer(t *testing.T) {
	deal := linkedDeal(models.StageOfferSent)
	deal.Offers = []models.Offer{sentOffer(4)}

	action := CalculateNextAction(deal, testNow)
	assert.Equal(t, PriorityHigh, action.Priority)
	assert.Equal(t, CategoryFollowup, action.Category)
	assert.Contains(t, action.Action, "4 days")

	deal.Offers = []models.Offer{sentOffer(2)}
	action = CalculateNextAction(deal, testNow)
	assert.Equal(t, "Follow up on offer", action.Action)
	assert.Equal(t, PriorityMedium, action.Priority)
}

func TestStaleOffer_UsesMostRecentSentOffer(t *testing.T) {
	deal := linkedDeal(models.StageOfferSent)
	deal.Offers = []models.Offer{
		{ID: uuid.New(), Status: models.OfferDraft, CreatedAt: *daysAgo(0)},
		sentOffer(1),
		sentOffer(10),
	}

	_, fired := evaluateRule("stale_offer", deal, testNow)
	assert.False(t, fired)
}

func TestCounterReceived(t *testing.T) {
	deal := linkedDeal(models.StageNegotiating)
	deal.Offers = []models.Offer{{ID: uuid.New(), Status: models.OfferCountered, CreatedAt: *daysAgo(1)}}

	action := CalculateNextAction(deal, testNow)
	assert.Equal(t, "Respond to seller's counter offer", action.Action)
	assert.Equal(t, CategoryNegotiate, action.Category)
}

func TestSellerReport(t *testing.T) {
	deal := linkedDeal(models.StageUnderContract)
	action := CalculateNextAction(deal, testNow)
	assert.Equal(t, CategoryDocument, action.Category)
	assert.Equal(t, PriorityMedium, action.Priority)

	deal.SellerReport = &models.SellerReport{ID: uuid.New()}
	action = CalculateNextAction(deal, testNow)
	assert.Equal(t, CategoryClose, action.Category)
	assert.Equal(t, PriorityHigh, action.Priority)
}

func TestStageDefaults(t *testing.T) {
	tests := []struct {
		stage    string
		priority Priority
		category Category
	}{
		{models.StageNew, PriorityLow, CategoryContact},
		{models.StageContacted, PriorityLow, CategoryWalkthrough},
		{models.StageNegotiating, PriorityHigh, CategoryNegotiate},
		{models.StageClosedWon, PriorityLow, CategoryFollowup},
		{models.StageClosedLost, PriorityLow, CategoryFollowup},
	}

	for _, tt := range tests {
		t.Run(tt.stage, func(t *testing.T) {
			action := CalculateNextAction(linkedDeal(tt.stage), testNow)
			assert.Equal(t, tt.priority, action.Priority)
			assert.Equal(t, tt.category, action.Category)
			assert.False(t, action.IsOverdue)
		})
	}
}

func TestUnknownStageFallsBack(t *testing.T) {
	for _, stage := range []string{"", "pending_review", "CLOSED"} {
		action := CalculateNextAction(linkedDeal(stage), testNow)
		assert.Equal(t, "Review deal and update stage", action.Action)
		assert.Equal(t, PriorityMedium, action.Priority)
		assert.Equal(t, CategoryFollowup, action.Category)
	}
}

func TestCalculateNextAction_NilDeal(t *testing.T) {
	action := CalculateNextAction(nil, testNow)
	assert.Equal(t, "Link or add property to this deal", action.Action)
}

func TestCalculateNextAction_Idempotent(t *testing.T) {
	deal := linkedDeal(models.StageAppointmentSet)
	deal.Walkthrough = walkthroughWith("kitchen", "roof")
	deal.Lead.LastContactedAt = daysAgo(1)

	assert.Equal(t, CalculateNextAction(deal, testNow), CalculateNextAction(deal, testNow))
}
