// ABOUTME: Folds raw conversation records into a ConversationContext
// ABOUTME: Shared by the SQLite and Supabase conversation providers
package actions

import (
	"strings"

	"github.com/harperreed/dealdesk/models"
)

const (
	ConversationWindow = 10
	maxKeyPhrases      = 10
	maxActionItems     = 5
)

// SummarizeConversations aggregates up to ConversationWindow records, which
// must be ordered most recent first. No records yields an empty, valid context.
func SummarizeConversations(records []models.ConversationRecord) ConversationContext {
	conv := ConversationContext{
		KeyPhrases:  []string{},
		ActionItems: []string{},
	}
	if len(records) > ConversationWindow {
		records = records[:ConversationWindow]
	}

	phrases := newDedupList(maxKeyPhrases)
	items := newDedupList(maxActionItems)

	for i := range records {
		r := &records[i]
		if conv.RecentSentiment == "" && r.Sentiment != "" {
			conv.RecentSentiment = r.Sentiment
		}
		if conv.LastContactDate == nil || r.OccurredAt.After(*conv.LastContactDate) {
			t := r.OccurredAt
			conv.LastContactDate = &t
		}
		for _, p := range r.KeyPhrases {
			phrases.add(p)
		}
		for _, a := range r.ActionItems {
			items.add(a)
		}
	}

	conv.KeyPhrases = phrases.values
	conv.ActionItems = items.values
	conv.TotalConversations = len(records)
	return conv
}

// dedupList keeps the first spelling of each case-insensitive value up to a cap.
type dedupList struct {
	limit  int
	seen   map[string]bool
	values []string
}

func newDedupList(limit int) *dedupList {
	return &dedupList{limit: limit, seen: make(map[string]bool), values: []string{}}
}

func (d *dedupList) add(v string) {
	v = strings.TrimSpace(v)
	if v == "" || len(d.values) >= d.limit {
		return
	}
	key := strings.ToLower(v)
	if d.seen[key] {
		return
	}
	d.seen[key] = true
	d.values = append(d.values, v)
}
