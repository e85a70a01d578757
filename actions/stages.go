// ABOUTME: Per-stage default actions and priorities for the rule evaluator
// ABOUTME: All lookups go through lookupStage so unknown stages get a named fallback
package actions

import "github.com/harperreed/dealdesk/models"

type stageDefault struct {
	Action   string
	Category Category
}

var stageDefaults = map[string]stageDefault{
	models.StageNew:            {"Make initial contact with seller", CategoryContact},
	models.StageContacted:      {"Schedule property walkthrough", CategoryWalkthrough},
	models.StageAppointmentSet: {"Complete property walkthrough", CategoryWalkthrough},
	models.StageAnalyzing:      {"Run numbers and underwrite deal", CategoryUnderwrite},
	models.StageOfferSent:      {"Follow up on offer", CategoryFollowup},
	models.StageNegotiating:    {"Continue negotiations with seller", CategoryNegotiate},
	models.StageUnderContract:  {"Coordinate closing with title company", CategoryClose},
	models.StageClosedWon:      {"Request referrals from seller", CategoryFollowup},
	models.StageClosedLost:     {"Schedule a future check-in with seller", CategoryFollowup},
}

// unknownStageDefault is used whenever the stage is not in the pipeline.
var unknownStageDefault = stageDefault{
	Action:   "Review deal and update stage",
	Category: CategoryFollowup,
}

// lookupStage returns the default for a stage and whether the stage was known.
func lookupStage(stage string) (stageDefault, bool) {
	if def, ok := stageDefaults[models.NormalizeStage(stage)]; ok {
		return def, true
	}
	return unknownStageDefault, false
}

// stagePriority maps a stage to the urgency of its default action.
func stagePriority(stage string) Priority {
	switch models.NormalizeStage(stage) {
	case models.StageNegotiating, models.StageUnderContract:
		return PriorityHigh
	case models.StageAnalyzing, models.StageOfferSent:
		return PriorityMedium
	default:
		return PriorityLow
	}
}
