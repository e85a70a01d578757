// ABOUTME: Recommendation engine types shared by the rule evaluator and suggester
// ABOUTME: Defines NextAction, AISuggestion, ActionContext, and collaborator interfaces
package actions

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/harperreed/dealdesk/models"
)

type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// Weight orders priorities for ranking. Unknown priorities sort last.
func (p Priority) Weight() int {
	switch p {
	case PriorityHigh:
		return 3
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 1
	}
	return 0
}

type Category string

const (
	CategoryContact     Category = "contact"
	CategoryAnalyze     Category = "analyze"
	CategoryWalkthrough Category = "walkthrough"
	CategoryUnderwrite  Category = "underwrite"
	CategoryOffer       Category = "offer"
	CategoryNegotiate   Category = "negotiate"
	CategoryClose       Category = "close"
	CategoryFollowup    Category = "followup"
	CategoryDocument    Category = "document"
)

type Source string

const (
	SourceConversationAnalysis Source = "conversation_analysis"
	SourceContactRecency       Source = "contact_recency"
	SourceStagePattern         Source = "stage_pattern"
	SourceSentimentChange      Source = "sentiment_change"
	SourceActionItem           Source = "action_item"
	SourceTimeBased            Source = "time_based"
)

// ActionContext holds signals derived from a deal snapshot. It is rebuilt on
// every evaluation and never persisted.
type ActionContext struct {
	WalkthroughProgress       *int     `json:"walkthrough_progress,omitempty"`
	MissingPhotoBuckets       []string `json:"missing_photo_buckets,omitempty"`
	DaysSinceLastContact      *int     `json:"days_since_last_contact,omitempty"`
	TimeSinceLastConversation string   `json:"time_since_last_conversation,omitempty"`
	Reason                    string   `json:"reason,omitempty"`
}

type NextAction struct {
	Action    string        `json:"action"`
	Priority  Priority      `json:"priority"`
	Category  Category      `json:"category"`
	DueDate   *time.Time    `json:"due_date,omitempty"`
	IsOverdue bool          `json:"is_overdue"`
	Context   ActionContext `json:"context"`
}

type AISuggestion struct {
	ID         string         `json:"id"`
	DealID     uuid.UUID      `json:"deal_id"`
	Action     string         `json:"action"`
	Reason     string         `json:"reason"`
	Priority   Priority       `json:"priority"`
	Category   Category       `json:"category"`
	Confidence int            `json:"confidence"`
	Source     Source         `json:"source"`
	Metadata   map[string]any `json:"metadata,omitempty"`
}

// ConversationContext aggregates recent communications with the seller.
// An empty RecentSentiment means no sentiment was recorded.
type ConversationContext struct {
	RecentSentiment    string     `json:"recent_sentiment,omitempty"`
	KeyPhrases         []string   `json:"key_phrases"`
	ActionItems        []string   `json:"action_items"`
	LastContactDate    *time.Time `json:"last_contact_date,omitempty"`
	TotalConversations int        `json:"total_conversations"`
}

// ErrDealNotFound is returned by DealLoader implementations for unknown deals.
var ErrDealNotFound = errors.New("deal not found")

// DealLoader materializes a full deal snapshot, with offers ordered most recent first.
type DealLoader interface {
	LoadDeal(ctx context.Context, id uuid.UUID) (*models.Deal, error)
}

// ConversationProvider returns the aggregated conversation context for a deal.
// Implementations return an empty context, not an error, when there is no history.
type ConversationProvider interface {
	ConversationContext(ctx context.Context, dealID uuid.UUID, leadID *uuid.UUID) (ConversationContext, error)
}

func intPtr(v int) *int {
	return &v
}
