// ABOUTME: Heuristic suggestion generators, one per signal source
// ABOUTME: Each generator is pure and independent; the suggester merges their output
package actions

import (
	"fmt"
	"strings"
	"time"

	"github.com/harperreed/dealdesk/models"
)

// Generator names used in suggestion IDs. Changing them invalidates dismissals.
const (
	generatorActionItem = "action-item"
	generatorKeyPhrase  = "key-phrase"
	generatorSentiment  = "sentiment"
	generatorRecency    = "recency"
	generatorTimeBased  = "time-based"
)

const maxActionItemSuggestions = 3

// Per-rule ID indices. Each rule keeps its index even when earlier rules are
// silent, so a dismissal always refers to the same cause.
const (
	keyPhraseMotivation = 0
	keyPhraseRepair     = 1
	keyPhrasePrice      = 2

	sentimentNegativeOffer = 0
	sentimentNegative      = 1
	sentimentPositive      = 2

	recencyAlarm = 0
	recencyNudge = 1

	offerStale    = 0
	offerFollowup = 1
)

// SuggestionID builds the stable identifier for a generator's index-th rule or item.
func SuggestionID(deal *models.Deal, generator string, index int) string {
	return fmt.Sprintf("%s-%s-%d", deal.ID, generator, index)
}

type suggestionBuilder struct {
	deal      *models.Deal
	generator string
	out       []AISuggestion
}

// add records a suggestion under the index of the rule that produced it, so
// an ID keeps naming the same cause whichever sibling rules also fire.
func (b *suggestionBuilder) add(index int, s AISuggestion) {
	s.ID = SuggestionID(b.deal, b.generator, index)
	s.DealID = b.deal.ID
	b.out = append(b.out, s)
}

// ActionItemSuggestions turns the first few conversation action items into suggestions.
func ActionItemSuggestions(conv ConversationContext, deal *models.Deal, _ time.Time) []AISuggestion {
	if deal == nil {
		return nil
	}
	b := &suggestionBuilder{deal: deal, generator: generatorActionItem}
	for i, item := range conv.ActionItems {
		if i >= maxActionItemSuggestions {
			break
		}
		priority := PriorityMedium
		if i == 0 {
			priority = PriorityHigh
		}
		b.add(i, AISuggestion{
			Action:     item,
			Reason:     "Action item from a recent conversation",
			Priority:   priority,
			Category:   InferCategory(item, deal.Stage),
			Confidence: 85 - 10*i,
			Source:     SourceActionItem,
		})
	}
	return b.out
}

var (
	motivationKeywords = []string{"motivated", "urgent", "quick sale", "need to sell", "behind on payments"}
	repairKeywords     = []string{"repairs", "needs work", "roof", "hvac", "foundation", "damage"}
	priceKeywords      = []string{"asking", "price", "arv", "value", "worth", "owe"}
)

// matchPhrases returns the phrases containing any of the keywords, in input order.
func matchPhrases(phrases, keywords []string) []string {
	var matched []string
	for _, phrase := range phrases {
		lower := strings.ToLower(phrase)
		for _, kw := range keywords {
			if strings.Contains(lower, kw) {
				matched = append(matched, phrase)
				break
			}
		}
	}
	return matched
}

// KeyPhraseSuggestions scans key phrases for seller motivation, repair, and price talk.
func KeyPhraseSuggestions(conv ConversationContext, deal *models.Deal, _ time.Time) []AISuggestion {
	if deal == nil {
		return nil
	}
	b := &suggestionBuilder{deal: deal, generator: generatorKeyPhrase}

	if matched := matchPhrases(conv.KeyPhrases, motivationKeywords); len(matched) > 0 {
		b.add(keyPhraseMotivation, AISuggestion{
			Action:     "Seller shows motivation: prepare an offer",
			Reason:     "Seller mentioned: " + strings.Join(matched, ", "),
			Priority:   PriorityHigh,
			Category:   CategoryOffer,
			Confidence: 80,
			Source:     SourceConversationAnalysis,
			Metadata:   map[string]any{"matched_phrases": matched},
		})
	}

	if !deal.Property.HasRepairCost() {
		if matched := matchPhrases(conv.KeyPhrases, repairKeywords); len(matched) > 0 {
			b.add(keyPhraseRepair, AISuggestion{
				Action:     "Schedule walkthrough to assess repairs",
				Reason:     "Repairs came up in conversation: " + strings.Join(matched, ", "),
				Priority:   PriorityMedium,
				Category:   CategoryWalkthrough,
				Confidence: 75,
				Source:     SourceConversationAnalysis,
				Metadata:   map[string]any{"matched_phrases": matched},
			})
		}
	}

	if models.NormalizeStage(deal.Stage) == models.StageAnalyzing {
		if matched := matchPhrases(conv.KeyPhrases, priceKeywords); len(matched) > 0 {
			b.add(keyPhrasePrice, AISuggestion{
				Action:     "Update numbers with seller's price expectations",
				Reason:     "Price was discussed: " + strings.Join(matched, ", "),
				Priority:   PriorityMedium,
				Category:   CategoryUnderwrite,
				Confidence: 70,
				Source:     SourceConversationAnalysis,
				Metadata:   map[string]any{"matched_phrases": matched},
			})
		}
	}

	return b.out
}

// SentimentSuggestions reacts to the tone of the most recent conversations.
func SentimentSuggestions(conv ConversationContext, deal *models.Deal, _ time.Time) []AISuggestion {
	if deal == nil {
		return nil
	}
	b := &suggestionBuilder{deal: deal, generator: generatorSentiment}
	stage := models.NormalizeStage(deal.Stage)

	switch conv.RecentSentiment {
	case models.SentimentNegative:
		if stage == models.StageOfferSent || stage == models.StageNegotiating {
			b.add(sentimentNegativeOffer, AISuggestion{
				Action:     "Call seller to address concerns before continuing",
				Reason:     "Recent conversations were negative during an active offer",
				Priority:   PriorityHigh,
				Category:   CategoryContact,
				Confidence: 85,
				Source:     SourceSentimentChange,
				Metadata:   map[string]any{"sentiment": conv.RecentSentiment},
			})
		} else if models.IsActiveStage(stage) {
			b.add(sentimentNegative, AISuggestion{
				Action:     "Check in with seller",
				Reason:     "Recent conversations were negative",
				Priority:   PriorityMedium,
				Category:   CategoryContact,
				Confidence: 70,
				Source:     SourceSentimentChange,
				Metadata:   map[string]any{"sentiment": conv.RecentSentiment},
			})
		}
	case models.SentimentPositive:
		if stage == models.StageAnalyzing {
			b.add(sentimentPositive, AISuggestion{
				Action:     "Seller is receptive: good time to present an offer",
				Reason:     "Recent conversations were positive",
				Priority:   PriorityMedium,
				Category:   CategoryOffer,
				Confidence: 75,
				Source:     SourceSentimentChange,
				Metadata:   map[string]any{"sentiment": conv.RecentSentiment},
			})
		}
	}

	return b.out
}

const (
	recencyHighDays   = 7
	recencyMediumDays = 4
)

// RecencySuggestions nudges when the seller has gone quiet. The freshest of the
// deal's own contact timestamps and the last logged conversation is used.
func RecencySuggestions(conv ConversationContext, deal *models.Deal, now time.Time) []AISuggestion {
	if deal == nil {
		return nil
	}
	b := &suggestionBuilder{deal: deal, generator: generatorRecency}
	if !models.IsActiveStage(deal.Stage) {
		return b.out
	}

	last := lastContact(deal)
	if conv.LastContactDate != nil && (last == nil || conv.LastContactDate.After(*last)) {
		last = conv.LastContactDate
	}
	if last == nil {
		return b.out
	}

	days := daysBetween(*last, now)
	switch {
	case days >= recencyHighDays:
		b.add(recencyAlarm, AISuggestion{
			Action:     "Reach out to seller",
			Reason:     fmt.Sprintf("No contact in %d days", days),
			Priority:   PriorityHigh,
			Category:   CategoryContact,
			Confidence: 90,
			Source:     SourceContactRecency,
			Metadata:   map[string]any{"days_since_contact": days},
		})
	case days >= recencyMediumDays:
		b.add(recencyNudge, AISuggestion{
			Action:     "Send a quick follow-up to seller",
			Reason:     fmt.Sprintf("Last contact was %d days ago", days),
			Priority:   PriorityMedium,
			Category:   CategoryFollowup,
			Confidence: 75,
			Source:     SourceContactRecency,
			Metadata:   map[string]any{"days_since_contact": days},
		})
	}
	return b.out
}

const (
	offerFollowupDays = 2
	offerStaleDays    = 5
)

// TimeBasedSuggestions tracks how long an offer has been waiting on the seller.
func TimeBasedSuggestions(_ ConversationContext, deal *models.Deal, now time.Time) []AISuggestion {
	if deal == nil {
		return nil
	}
	b := &suggestionBuilder{deal: deal, generator: generatorTimeBased}
	if models.NormalizeStage(deal.Stage) != models.StageOfferSent {
		return b.out
	}

	offer := deal.LatestOfferWithStatus(models.OfferSent)
	if offer == nil {
		return b.out
	}

	days := daysBetween(offer.CreatedAt, now)
	switch {
	case days >= offerStaleDays:
		b.add(offerStale, AISuggestion{
			Action:     "Follow up on offer: it may be going stale",
			Reason:     fmt.Sprintf("Offer sent %d days ago with no response", days),
			Priority:   PriorityHigh,
			Category:   CategoryFollowup,
			Confidence: 85,
			Source:     SourceTimeBased,
			Metadata:   map[string]any{"days_since_offer": days},
		})
	case days >= offerFollowupDays:
		b.add(offerFollowup, AISuggestion{
			Action:     "Follow up on offer",
			Reason:     fmt.Sprintf("Offer sent %d days ago", days),
			Priority:   PriorityMedium,
			Category:   CategoryFollowup,
			Confidence: 80,
			Source:     SourceTimeBased,
			Metadata:   map[string]any{"days_since_offer": days},
		})
	}
	return b.out
}
