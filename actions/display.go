// ABOUTME: Presentation lookups for action categories
// ABOUTME: Button labels and icons with generic fallbacks for unknown categories
package actions

var buttonText = map[Category]string{
	CategoryContact:     "Call Seller",
	CategoryAnalyze:     "Run Comps",
	CategoryWalkthrough: "Start Walkthrough",
	CategoryUnderwrite:  "Underwrite",
	CategoryOffer:       "Create Offer",
	CategoryNegotiate:   "Negotiate",
	CategoryClose:       "View Closing",
	CategoryFollowup:    "Follow Up",
	CategoryDocument:    "Add Document",
}

var icons = map[Category]string{
	CategoryContact:     "📞",
	CategoryAnalyze:     "📊",
	CategoryWalkthrough: "📷",
	CategoryUnderwrite:  "🧮",
	CategoryOffer:       "✉️",
	CategoryNegotiate:   "🤝",
	CategoryClose:       "🔑",
	CategoryFollowup:    "🔁",
	CategoryDocument:    "📄",
}

// ActionButtonText returns the call-to-action label for a category.
func ActionButtonText(category Category) string {
	if text, ok := buttonText[category]; ok {
		return text
	}
	return "Take Action"
}

// ActionIcon returns the icon for a category.
func ActionIcon(category Category) string {
	if icon, ok := icons[category]; ok {
		return icon
	}
	return "👉"
}
