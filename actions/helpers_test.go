// ABOUTME: Shared fixtures for recommendation engine tests
// ABOUTME: Builds deal snapshots relative to a frozen clock
package actions

import (
	"time"

	"github.com/google/uuid"
	"github.com/harperreed/dealdesk/models"
	"github.com/shopspring/decimal"
)

// testNow is mid-afternoon so day-boundary checks are meaningful.
var testNow = time.Date(2024, 1, 20, 15, 30, 0, 0, time.UTC)

func daysAgo(n int) *time.Time {
	t := testNow.Add(-time.Duration(n) * 24 * time.Hour)
	return &t
}

// linkedDeal returns a deal with a lead and a bare property attached.
func linkedDeal(stage string) *models.Deal {
	leadID := uuid.New()
	propertyID := uuid.New()
	return &models.Deal{
		ID:         uuid.MustParse("11111111-2222-3333-4444-555555555555"),
		Title:      "123 Main St",
		Stage:      stage,
		LeadID:     &leadID,
		Lead:       &models.Lead{ID: leadID, Name: "Pat Seller"},
		PropertyID: &propertyID,
		Property:   &models.Property{ID: propertyID, Address: "123 Main St"},
	}
}

// underwrittenDeal returns an analyzing deal with ARV, repairs, and strategy set.
func underwrittenDeal() *models.Deal {
	deal := linkedDeal(models.StageAnalyzing)
	deal.Property.ARV = decimal.NewNullDecimal(decimal.NewFromInt(310000))
	deal.Property.RepairCost = decimal.NewNullDecimal(decimal.NewFromInt(45000))
	deal.Strategy = models.StrategyCash
	return deal
}

func walkthroughWith(buckets ...string) *models.Walkthrough {
	w := &models.Walkthrough{}
	for _, b := range buckets {
		w.Photos = append(w.Photos, models.WalkthroughPhoto{ID: uuid.New(), Bucket: b})
	}
	return w
}

func sentOffer(age int) models.Offer {
	return models.Offer{
		ID:        uuid.New(),
		Amount:    decimal.NewFromInt(180000),
		Status:    models.OfferSent,
		CreatedAt: *daysAgo(age),
	}
}
