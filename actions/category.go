// ABOUTME: Keyword classifier mapping free-form action text to a category
// ABOUTME: Ordered groups, first match wins, stage default as fallback
package actions

import "strings"

type keywordGroup struct {
	category Category
	keywords []string
}

// categoryKeywords is checked in order. "call" must come before "walkthrough"
// so "Call the seller about the walkthrough" is a contact action.
var categoryKeywords = []keywordGroup{
	{CategoryContact, []string{"call", "contact", "reach"}},
	{CategoryWalkthrough, []string{"walkthrough", "visit", "view", "photos"}},
	{CategoryOffer, []string{"offer", "send", "proposal"}},
	{CategoryNegotiate, []string{"counter", "negotiate"}},
	{CategoryAnalyze, []string{"analyze", "comps", "arv"}},
	{CategoryUnderwrite, []string{"underwrite", "numbers", "run"}},
	{CategoryClose, []string{"close", "title", "escrow"}},
	{CategoryDocument, []string{"document", "upload", "sign", "report"}},
	{CategoryFollowup, []string{"follow", "check"}},
}

// InferCategory classifies action text. When no keyword matches it falls back
// to the category of the stage's default action, or followup for unknown stages.
func InferCategory(text, stage string) Category {
	lower := strings.ToLower(text)
	for _, group := range categoryKeywords {
		for _, kw := range group.keywords {
			if strings.Contains(lower, kw) {
				return group.category
			}
		}
	}

	if def, ok := lookupStage(stage); ok {
		return def.Category
	}
	return CategoryFollowup
}
