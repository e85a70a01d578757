// ABOUTME: Merges generator output into a ranked, deduplicated suggestion list
// ABOUTME: Fetches conversation context when needed and never fails loudly
package actions

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/harperreed/dealdesk/models"
	"github.com/sirupsen/logrus"
)

// DefaultMaxSuggestions is used when a request does not set a limit.
const DefaultMaxSuggestions = 5

// generatorFunc is the shape shared by every suggestion generator.
type generatorFunc func(conv ConversationContext, deal *models.Deal, now time.Time) []AISuggestion

// suggestionGenerators is the emission order the stable sort falls back on.
var suggestionGenerators = []generatorFunc{
	ActionItemSuggestions,
	KeyPhraseSuggestions,
	SentimentSuggestions,
	RecencySuggestions,
	TimeBasedSuggestions,
}

// Suggester produces AI suggestions for a deal.
type Suggester struct {
	Conversations ConversationProvider
	Now           func() time.Time
	Logger        logrus.FieldLogger
	DefaultMax    int
}

type SuggestionRequest struct {
	Deal           *models.Deal
	Conversation   *ConversationContext
	MaxSuggestions int
	Dismissed      []string
}

type SuggestionResult struct {
	Success     bool           `json:"success"`
	Suggestions []AISuggestion `json:"suggestions"`
	Error       string         `json:"error,omitempty"`
}

// NewSuggester creates a suggester backed by the given conversation provider.
func NewSuggester(conversations ConversationProvider, logger logrus.FieldLogger) *Suggester {
	return &Suggester{
		Conversations: conversations,
		Now:           time.Now,
		Logger:        logger,
		DefaultMax:    DefaultMaxSuggestions,
	}
}

// GenerateSuggestions returns at most MaxSuggestions ranked suggestions. Failures
// are reported in the result rather than returned as errors.
func (s *Suggester) GenerateSuggestions(ctx context.Context, req SuggestionRequest) SuggestionResult {
	suggestions, err := s.generate(ctx, req)
	if err != nil {
		s.logger().WithFields(logrus.Fields{
			"deal_id": dealIDString(req.Deal),
			"error":   err.Error(),
		}).Warn("Failed to generate suggestions")
		return SuggestionResult{Success: false, Suggestions: []AISuggestion{}, Error: err.Error()}
	}
	return SuggestionResult{Success: true, Suggestions: suggestions}
}

func (s *Suggester) generate(ctx context.Context, req SuggestionRequest) ([]AISuggestion, error) {
	if req.Deal == nil {
		return nil, errors.New("deal is required")
	}

	conv := req.Conversation
	if conv == nil {
		fetched, err := s.fetchConversation(ctx, req.Deal)
		if err != nil {
			return nil, err
		}
		conv = &fetched
	}

	limit := req.MaxSuggestions
	if limit <= 0 {
		limit = s.DefaultMax
	}
	if limit <= 0 {
		limit = DefaultMaxSuggestions
	}

	now := time.Now()
	if s.Now != nil {
		now = s.Now()
	}

	var all []AISuggestion
	for _, gen := range suggestionGenerators {
		all = append(all, gen(*conv, req.Deal, now)...)
	}

	return RankSuggestions(all, req.Dismissed, limit), nil
}

func (s *Suggester) fetchConversation(ctx context.Context, deal *models.Deal) (ConversationContext, error) {
	if s.Conversations == nil {
		return ConversationContext{}, errors.New("no conversation provider configured")
	}
	if err := ctx.Err(); err != nil {
		return ConversationContext{}, err
	}

	leadID := deal.LeadID
	if leadID == nil && deal.Lead != nil {
		leadID = &deal.Lead.ID
	}

	s.logger().WithField("deal_id", deal.ID.String()).Debug("Fetching conversation context")
	conv, err := s.Conversations.ConversationContext(ctx, deal.ID, leadID)
	if err != nil {
		return ConversationContext{}, fmt.Errorf("failed to fetch conversation context: %w", err)
	}
	return conv, nil
}

// RankSuggestions sorts by priority then confidence (stable), drops dismissed
// IDs, keeps the first suggestion per category and source, and truncates.
func RankSuggestions(all []AISuggestion, dismissed []string, limit int) []AISuggestion {
	ranked := slices.Clone(all)
	slices.SortStableFunc(ranked, func(a, b AISuggestion) int {
		if d := b.Priority.Weight() - a.Priority.Weight(); d != 0 {
			return d
		}
		return b.Confidence - a.Confidence
	})

	skip := make(map[string]bool, len(dismissed))
	for _, id := range dismissed {
		skip[id] = true
	}

	seen := make(map[string]bool)
	out := make([]AISuggestion, 0, limit)
	for _, s := range ranked {
		if len(out) >= limit {
			break
		}
		if skip[s.ID] {
			continue
		}
		key := string(s.Category) + "-" + string(s.Source)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, s)
	}
	return out
}

func (s *Suggester) logger() logrus.FieldLogger {
	if s.Logger == nil {
		return logrus.StandardLogger()
	}
	return s.Logger
}

func dealIDString(deal *models.Deal) string {
	if deal == nil {
		return ""
	}
	return deal.ID.String()
}
