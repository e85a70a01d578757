// ABOUTME: Data models for deal pipeline entities
// ABOUTME: Defines Deal, Lead, Property, Offer, Walkthrough, and ConversationRecord structs
package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Lead struct {
	ID              uuid.UUID  `json:"id"`
	Name            string     `json:"name"`
	Phone           string     `json:"phone,omitempty"`
	Email           string     `json:"email,omitempty"`
	LastContactedAt *time.Time `json:"last_contacted_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

type Property struct {
	ID          uuid.UUID           `json:"id"`
	Address     string              `json:"address"`
	ARV         decimal.NullDecimal `json:"arv"`
	RepairCost  decimal.NullDecimal `json:"repair_cost"`
	AskingPrice decimal.NullDecimal `json:"asking_price"`
	CreatedAt   time.Time           `json:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at"`
}

// HasARV reports whether an after-repair value has been recorded.
func (p *Property) HasARV() bool {
	return p != nil && p.ARV.Valid
}

// HasRepairCost reports whether a repair estimate has been recorded.
func (p *Property) HasRepairCost() bool {
	return p != nil && p.RepairCost.Valid
}

type Offer struct {
	ID        uuid.UUID       `json:"id"`
	DealID    uuid.UUID       `json:"deal_id"`
	Amount    decimal.Decimal `json:"amount"`
	Status    string          `json:"status"`
	CreatedAt time.Time       `json:"created_at"`
}

type WalkthroughPhoto struct {
	ID        uuid.UUID `json:"id"`
	DealID    uuid.UUID `json:"deal_id"`
	Bucket    string    `json:"bucket,omitempty"`
	Category  string    `json:"category,omitempty"`
	URL       string    `json:"url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type Walkthrough struct {
	Photos []WalkthroughPhoto `json:"photos"`
}

type SellerReport struct {
	ID        uuid.UUID `json:"id"`
	DealID    uuid.UUID `json:"deal_id"`
	Summary   string    `json:"summary,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type Deal struct {
	ID             uuid.UUID     `json:"id"`
	Title          string        `json:"title"`
	Stage          string        `json:"stage"`
	Strategy       string        `json:"strategy,omitempty"`
	LeadID         *uuid.UUID    `json:"lead_id,omitempty"`
	Lead           *Lead         `json:"lead,omitempty"`
	PropertyID     *uuid.UUID    `json:"property_id,omitempty"`
	Property       *Property     `json:"property,omitempty"`
	NextAction     string        `json:"next_action,omitempty"`
	NextActionDue  *time.Time    `json:"next_action_due,omitempty"`
	RiskScore      *int          `json:"risk_score,omitempty"`
	RiskScoreAuto  *int          `json:"risk_score_auto,omitempty"`
	Offers         []Offer       `json:"offers,omitempty"` // most recent first
	Walkthrough    *Walkthrough  `json:"walkthrough,omitempty"`
	SellerReport   *SellerReport `json:"seller_report,omitempty"`
	LastActivityAt *time.Time    `json:"last_activity_at,omitempty"`
	CreatedAt      time.Time     `json:"created_at"`
	UpdatedAt      time.Time     `json:"updated_at"`
}

// HasLead reports whether the deal is linked to a seller lead.
func (d *Deal) HasLead() bool {
	return d.LeadID != nil || d.Lead != nil
}

// HasProperty reports whether the deal is linked to a property.
func (d *Deal) HasProperty() bool {
	return d.PropertyID != nil || d.Property != nil
}

// LatestOfferWithStatus returns the most recent offer in the given status.
func (d *Deal) LatestOfferWithStatus(status string) *Offer {
	for i := range d.Offers {
		if d.Offers[i].Status == status {
			return &d.Offers[i]
		}
	}
	return nil
}

type ConversationRecord struct {
	ID          string     `json:"id"`
	DealID      uuid.UUID  `json:"deal_id"`
	LeadID      *uuid.UUID `json:"lead_id,omitempty"`
	Channel     string     `json:"channel"`
	Summary     string     `json:"summary,omitempty"`
	Sentiment   string     `json:"sentiment,omitempty"`
	KeyPhrases  []string   `json:"key_phrases,omitempty"`
	ActionItems []string   `json:"action_items,omitempty"`
	OccurredAt  time.Time  `json:"occurred_at"`
}

// Offer status constants.
const (
	OfferDraft     = "draft"
	OfferSent      = "sent"
	OfferCountered = "countered"
	OfferAccepted  = "accepted"
	OfferRejected  = "rejected"
)

// Strategy constants.
const (
	StrategyCash          = "cash"
	StrategySellerFinance = "seller_finance"
	StrategySubjectTo     = "subject_to"
	StrategyWholesale     = "wholesale"
	StrategyFixAndFlip    = "fix_and_flip"
	StrategyBRRRR         = "brrrr"
	StrategyBuyAndHold    = "buy_and_hold"
)

// Sentiment constants.
const (
	SentimentPositive = "positive"
	SentimentNeutral  = "neutral"
	SentimentNegative = "negative"
)

// Conversation channel constants.
const (
	ChannelCall  = "call"
	ChannelSMS   = "sms"
	ChannelEmail = "email"
	ChannelVisit = "visit"
)

// IsValidOfferStatus reports whether status is a known offer status.
func IsValidOfferStatus(status string) bool {
	switch status {
	case OfferDraft, OfferSent, OfferCountered, OfferAccepted, OfferRejected:
		return true
	}
	return false
}

// IsValidStrategy reports whether strategy is a known exit strategy.
func IsValidStrategy(strategy string) bool {
	switch strategy {
	case StrategyCash, StrategySellerFinance, StrategySubjectTo, StrategyWholesale,
		StrategyFixAndFlip, StrategyBRRRR, StrategyBuyAndHold:
		return true
	}
	return false
}

// IsValidSentiment reports whether sentiment is empty or a known sentiment.
func IsValidSentiment(sentiment string) bool {
	switch sentiment {
	case "", SentimentPositive, SentimentNeutral, SentimentNegative:
		return true
	}
	return false
}

// IsValidChannel reports whether channel is a known conversation channel.
func IsValidChannel(channel string) bool {
	switch channel {
	case ChannelCall, ChannelSMS, ChannelEmail, ChannelVisit:
		return true
	}
	return false
}
