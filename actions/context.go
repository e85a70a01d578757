// ABOUTME: Builds the situational ActionContext for a deal snapshot
// ABOUTME: Computes walkthrough completeness and contact recency signals
package actions

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/harperreed/dealdesk/models"
)

// RequiredPhotoBuckets is the ordered list of walkthrough areas a complete
// inspection must cover.
var RequiredPhotoBuckets = []string{
	"exterior_front",
	"exterior_back",
	"kitchen",
	"bathroom_primary",
	"living_room",
	"bedroom_primary",
	"roof",
	"hvac",
	"electrical_panel",
	"plumbing",
}

// maxListedMissingBuckets caps how many missing buckets are worth listing.
const maxListedMissingBuckets = 5

// BuildActionContext derives walkthrough and recency signals as of now.
func BuildActionContext(deal *models.Deal, now time.Time) ActionContext {
	var ac ActionContext
	if deal == nil {
		return ac
	}

	stage := models.NormalizeStage(deal.Stage)
	if (stage == models.StageAppointmentSet || stage == models.StageAnalyzing) && deal.Walkthrough != nil {
		progress, missing := walkthroughCompleteness(deal.Walkthrough)
		ac.WalkthroughProgress = intPtr(progress)
		if len(missing) >= 1 && len(missing) <= maxListedMissingBuckets {
			ac.MissingPhotoBuckets = missing
		}
	}

	if last := lastContact(deal); last != nil {
		ac.DaysSinceLastContact = intPtr(daysBetween(*last, now))
		ac.TimeSinceLastConversation = FormatTimeSince(*last, now)
	}

	return ac
}

// walkthroughCompleteness returns the percentage of required buckets covered
// and the missing buckets in required order.
func walkthroughCompleteness(w *models.Walkthrough) (int, []string) {
	present := make(map[string]bool)
	for _, photo := range w.Photos {
		bucket := photo.Bucket
		if bucket == "" {
			bucket = photo.Category
		}
		bucket = strings.ToLower(strings.TrimSpace(bucket))
		if bucket != "" {
			present[bucket] = true
		}
	}

	var missing []string
	for _, bucket := range RequiredPhotoBuckets {
		if !present[bucket] {
			missing = append(missing, bucket)
		}
	}

	total := len(RequiredPhotoBuckets)
	progress := int(math.Round(100 * float64(total-len(missing)) / float64(total)))
	return progress, missing
}

func lastContact(deal *models.Deal) *time.Time {
	if deal.Lead != nil && deal.Lead.LastContactedAt != nil {
		return deal.Lead.LastContactedAt
	}
	return deal.LastActivityAt
}

// daysBetween returns whole elapsed days from then to now, never negative.
func daysBetween(then, now time.Time) int {
	days := int(math.Floor(now.Sub(then).Hours() / 24))
	if days < 0 {
		return 0
	}
	return days
}

// FormatTimeSince renders elapsed time in the compact "3h ago" style.
func FormatTimeSince(t, now time.Time) string {
	elapsed := now.Sub(t)
	if elapsed < 0 {
		elapsed = 0
	}

	minutes := int(elapsed / time.Minute)
	if minutes < 60 {
		return fmt.Sprintf("%dm ago", minutes)
	}

	hours := int(elapsed / time.Hour)
	if hours < 24 {
		return fmt.Sprintf("%dh ago", hours)
	}

	days := hours / 24
	switch {
	case days == 1:
		return "Yesterday"
	case days < 7:
		return fmt.Sprintf("%dd ago", days)
	default:
		return fmt.Sprintf("%dw ago", days/7)
	}
}

func humanizeBucket(bucket string) string {
	return strings.ReplaceAll(bucket, "_", " ")
}
