// ABOUTME: Deal pipeline stage constants and transitions
// ABOUTME: Handles stage ordering, legacy aliases, and active/terminal checks
package models

import "strings"

const (
	StageNew            = "new"
	StageContacted      = "contacted"
	StageAppointmentSet = "appointment_set"
	StageAnalyzing      = "analyzing"
	StageOfferSent      = "offer_sent"
	StageNegotiating    = "negotiating"
	StageUnderContract  = "under_contract"
	StageClosedWon      = "closed_won"
	StageClosedLost     = "closed_lost"

	// StageInitialContact is the legacy name for StageContacted.
	StageInitialContact = "initial_contact"
)

// StageOrder is the pipeline from first touch to close.
var StageOrder = []string{
	StageNew,
	StageContacted,
	StageAppointmentSet,
	StageAnalyzing,
	StageOfferSent,
	StageNegotiating,
	StageUnderContract,
	StageClosedWon,
}

var stageLabels = map[string]string{
	StageNew:            "New Lead",
	StageContacted:      "Contacted",
	StageAppointmentSet: "Appointment Set",
	StageAnalyzing:      "Analyzing",
	StageOfferSent:      "Offer Sent",
	StageNegotiating:    "Negotiating",
	StageUnderContract:  "Under Contract",
	StageClosedWon:      "Closed Won",
	StageClosedLost:     "Closed Lost",
}

// NormalizeStage lower-cases the stage and maps legacy aliases.
// Unknown values are returned as-is so callers can fall back explicitly.
func NormalizeStage(stage string) string {
	s := strings.ToLower(strings.TrimSpace(stage))
	if s == StageInitialContact {
		return StageContacted
	}
	return s
}

// IsKnownStage reports whether stage (after normalization) is part of the pipeline.
func IsKnownStage(stage string) bool {
	_, ok := stageLabels[NormalizeStage(stage)]
	return ok
}

// IsTerminalStage reports whether the deal is closed either way.
func IsTerminalStage(stage string) bool {
	s := NormalizeStage(stage)
	return s == StageClosedWon || s == StageClosedLost
}

// IsActiveStage reports whether the deal is in a known, non-terminal stage.
func IsActiveStage(stage string) bool {
	return IsKnownStage(stage) && !IsTerminalStage(stage)
}

// NextStage returns the stage that follows the given one, or "" when
// the stage is terminal or unknown.
func NextStage(stage string) string {
	s := NormalizeStage(stage)
	for i, candidate := range StageOrder {
		if candidate == s && i+1 < len(StageOrder) {
			return StageOrder[i+1]
		}
	}
	return ""
}

// StageLabel returns a human readable label, falling back to the raw value.
func StageLabel(stage string) string {
	if label, ok := stageLabels[NormalizeStage(stage)]; ok {
		return label
	}
	if stage == "" {
		return "Unknown"
	}
	return stage
}
