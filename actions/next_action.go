// ABOUTME: Deterministic next-best-action evaluator for a deal
// ABOUTME: Ordered rule table, first matching rule wins, stage default as catch-all
package actions

import (
	"fmt"
	"time"

	"github.com/harperreed/dealdesk/models"
)

// Stages where going quiet on the seller is a problem worth flagging.
var recencyAlarmStages = map[string]bool{
	models.StageContacted:      true,
	models.StageAppointmentSet: true,
	models.StageAnalyzing:      true,
	models.StageOfferSent:      true,
	models.StageNegotiating:    true,
}

const (
	recencyAlarmDays      = 7
	negotiationAlarmDays  = 3
	walkthroughSufficient = 70
	staleOfferDays        = 3
)

// evaluation is the per-call state shared by every rule.
type evaluation struct {
	deal  *models.Deal
	stage string
	now   time.Time
	ctx   ActionContext
}

type rule struct {
	name string
	eval func(e *evaluation) (NextAction, bool)
}

// nextActionRules is the priority order of the waterfall.
var nextActionRules = []rule{
	{"manual_override", ruleManualOverride},
	{"contact_recency", ruleContactRecency},
	{"missing_property", ruleMissingProperty},
	{"missing_lead", ruleMissingLead},
	{"missing_arv", ruleMissingARV},
	{"missing_repairs", ruleMissingRepairs},
	{"missing_strategy", ruleMissingStrategy},
	{"walkthrough_progress", ruleWalkthroughProgress},
	{"ready_for_offer", ruleReadyForOffer},
	{"stale_offer", ruleStaleOffer},
	{"counter_received", ruleCounterReceived},
	{"seller_report", ruleSellerReport},
	{"stage_default", ruleStageDefault},
}

// CalculateNextAction returns the single recommended action for a deal as of now.
func CalculateNextAction(deal *models.Deal, now time.Time) NextAction {
	e := newEvaluation(deal, now)
	for _, r := range nextActionRules {
		if action, ok := r.eval(e); ok {
			return action
		}
	}
	// stage_default always matches; this only guards against an edited table.
	return e.result(unknownStageDefault.Action, PriorityMedium, unknownStageDefault.Category, "")
}

// RuleNames lists the rules in evaluation order.
func RuleNames() []string {
	names := make([]string, len(nextActionRules))
	for i, r := range nextActionRules {
		names[i] = r.name
	}
	return names
}

// evaluateRule runs a single named rule in isolation.
func evaluateRule(name string, deal *models.Deal, now time.Time) (NextAction, bool) {
	e := newEvaluation(deal, now)
	for _, r := range nextActionRules {
		if r.name == name {
			return r.eval(e)
		}
	}
	return NextAction{}, false
}

func newEvaluation(deal *models.Deal, now time.Time) *evaluation {
	if deal == nil {
		deal = &models.Deal{}
	}
	return &evaluation{
		deal:  deal,
		stage: models.NormalizeStage(deal.Stage),
		now:   now,
		ctx:   BuildActionContext(deal, now),
	}
}

func (e *evaluation) result(action string, priority Priority, category Category, reason string) NextAction {
	ac := e.ctx
	ac.Reason = reason
	return NextAction{
		Action:   action,
		Priority: priority,
		Category: category,
		Context:  ac,
	}
}

func ruleManualOverride(e *evaluation) (NextAction, bool) {
	if e.deal.NextAction == "" {
		return NextAction{}, false
	}

	overdue := false
	if e.deal.NextActionDue != nil {
		overdue = isBeforeToday(*e.deal.NextActionDue, e.now)
	}

	priority := PriorityMedium
	reason := "Manually set next action"
	if overdue {
		priority = PriorityHigh
		reason = "Manually set next action is overdue"
	}

	action := e.result(e.deal.NextAction, priority, InferCategory(e.deal.NextAction, e.stage), reason)
	action.DueDate = e.deal.NextActionDue
	action.IsOverdue = overdue
	return action, true
}

// isBeforeToday compares calendar days in now's location so a due date at
// local midnight is not flagged by a few hours of zone skew.
func isBeforeToday(due, now time.Time) bool {
	loc := now.Location()
	return startOfDay(due, loc).Before(startOfDay(now, loc))
}

func startOfDay(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

func ruleContactRecency(e *evaluation) (NextAction, bool) {
	if !recencyAlarmStages[e.stage] || e.ctx.DaysSinceLastContact == nil {
		return NextAction{}, false
	}

	days := *e.ctx.DaysSinceLastContact
	if days >= recencyAlarmDays {
		return e.result(
			fmt.Sprintf("Re-engage seller (no contact in %d days)", days),
			PriorityHigh, CategoryContact,
			fmt.Sprintf("Last contact was %d days ago", days),
		), true
	}
	if days >= negotiationAlarmDays && e.stage == models.StageNegotiating {
		return e.result(
			"Check in with seller to keep negotiation moving",
			PriorityHigh, CategoryContact,
			fmt.Sprintf("Negotiation is active and last contact was %d days ago", days),
		), true
	}
	return NextAction{}, false
}

func ruleMissingProperty(e *evaluation) (NextAction, bool) {
	if e.deal.HasProperty() {
		return NextAction{}, false
	}
	return e.result("Link or add property to this deal", PriorityHigh, CategoryDocument,
		"Deal has no property attached"), true
}

func ruleMissingLead(e *evaluation) (NextAction, bool) {
	if e.deal.HasLead() {
		return NextAction{}, false
	}
	return e.result("Link or add seller lead to this deal", PriorityHigh, CategoryContact,
		"Deal has no seller lead attached"), true
}

func ruleMissingARV(e *evaluation) (NextAction, bool) {
	if e.stage != models.StageAnalyzing || e.deal.Property.HasARV() {
		return NextAction{}, false
	}
	return e.result("Pull comps and set ARV", PriorityHigh, CategoryAnalyze,
		"After-repair value is required to underwrite"), true
}

func ruleMissingRepairs(e *evaluation) (NextAction, bool) {
	if e.stage != models.StageAnalyzing || e.deal.Property.HasRepairCost() {
		return NextAction{}, false
	}
	return e.result("Complete walkthrough to estimate repairs", PriorityHigh, CategoryWalkthrough,
		"Repair estimate is missing"), true
}

func ruleMissingStrategy(e *evaluation) (NextAction, bool) {
	if e.stage != models.StageAnalyzing || e.deal.Strategy != "" {
		return NextAction{}, false
	}
	return e.result("Select an exit strategy", PriorityMedium, CategoryUnderwrite,
		"No exit strategy selected"), true
}

func ruleWalkthroughProgress(e *evaluation) (NextAction, bool) {
	if e.stage != models.StageAppointmentSet && e.stage != models.StageAnalyzing {
		return NextAction{}, false
	}
	if e.ctx.WalkthroughProgress == nil {
		return NextAction{}, false
	}

	progress := *e.ctx.WalkthroughProgress
	if progress <= 0 || progress >= walkthroughSufficient {
		return NextAction{}, false
	}

	next := "remaining areas"
	if len(e.ctx.MissingPhotoBuckets) > 0 {
		next = humanizeBucket(e.ctx.MissingPhotoBuckets[0])
	}
	return e.result("Continue walkthrough: capture "+next, PriorityMedium, CategoryWalkthrough,
		fmt.Sprintf("Walkthrough is %d%% complete", progress)), true
}

func ruleReadyForOffer(e *evaluation) (NextAction, bool) {
	if e.stage != models.StageAnalyzing {
		return NextAction{}, false
	}
	if !e.deal.Property.HasARV() || !e.deal.Property.HasRepairCost() || e.deal.Strategy == "" {
		return NextAction{}, false
	}
	return e.result("Create and send offer package", PriorityHigh, CategoryOffer,
		"ARV, repairs, and strategy are set"), true
}

func ruleStaleOffer(e *evaluation) (NextAction, bool) {
	if e.stage != models.StageOfferSent {
		return NextAction{}, false
	}
	offer := e.deal.LatestOfferWithStatus(models.OfferSent)
	if offer == nil {
		return NextAction{}, false
	}

	days := daysBetween(offer.CreatedAt, e.now)
	if days < staleOfferDays {
		return NextAction{}, false
	}
	return e.result(fmt.Sprintf("Follow up on offer sent %d days ago", days), PriorityHigh, CategoryFollowup,
		"Seller has not responded to the offer"), true
}

func ruleCounterReceived(e *evaluation) (NextAction, bool) {
	if e.stage != models.StageNegotiating || e.deal.LatestOfferWithStatus(models.OfferCountered) == nil {
		return NextAction{}, false
	}
	return e.result("Respond to seller's counter offer", PriorityHigh, CategoryNegotiate,
		"Seller countered the offer"), true
}

func ruleSellerReport(e *evaluation) (NextAction, bool) {
	if e.stage != models.StageUnderContract || e.deal.SellerReport != nil {
		return NextAction{}, false
	}
	return e.result("Prepare seller report", PriorityMedium, CategoryDocument,
		"Under contract without a seller report"), true
}

func ruleStageDefault(e *evaluation) (NextAction, bool) {
	def, ok := lookupStage(e.stage)
	if !ok {
		return e.result(def.Action, PriorityMedium, def.Category, "Deal stage is not recognized"), true
	}
	return e.result(def.Action, stagePriority(e.stage), def.Category, ""), true
}
