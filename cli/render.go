// ABOUTME: Terminal rendering for next actions, suggestions, and deal lists
// ABOUTME: Uses lipgloss styles only when writing to a terminal
package cli

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/harperreed/dealdesk/actions"
	"github.com/harperreed/dealdesk/models"
	"golang.org/x/term"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("170"))

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245"))

	overdueStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("9"))

	priorityStyles = map[actions.Priority]lipgloss.Style{
		actions.PriorityHigh:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9")),
		actions.PriorityMedium: lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
		actions.PriorityLow:    lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
	}
)

type printer struct {
	w     io.Writer
	color bool
}

func newPrinter(w io.Writer) *printer {
	color := false
	if file, ok := w.(*os.File); ok && term.IsTerminal(int(file.Fd())) {
		color = true
	}
	return &printer{w: w, color: color}
}

func (p *printer) style(s lipgloss.Style, text string) string {
	if !p.color {
		return text
	}
	return s.Render(text)
}

func (p *printer) priority(priority actions.Priority) string {
	label := "[" + strings.ToUpper(string(priority)) + "]"
	s, ok := priorityStyles[priority]
	if !ok {
		return label
	}
	return p.style(s, label)
}

func (p *printer) field(label, value string) {
	_, _ = fmt.Fprintf(p.w, "  %s %s\n", p.style(labelStyle, label+":"), value)
}

func (p *printer) nextAction(deal *models.Deal, next actions.NextAction) {
	_, _ = fmt.Fprintf(p.w, "%s  %s\n", p.style(titleStyle, deal.Title), models.StageLabel(deal.Stage))
	_, _ = fmt.Fprintf(p.w, "%s %s %s\n", actions.ActionIcon(next.Category), p.priority(next.Priority), next.Action)
	p.field("Button", actions.ActionButtonText(next.Category))

	if next.Context.Reason != "" {
		p.field("Why", next.Context.Reason)
	}
	if next.DueDate != nil {
		due := next.DueDate.Local().Format("2006-01-02")
		if next.IsOverdue {
			due += " " + p.style(overdueStyle, "(overdue)")
		}
		p.field("Due", due)
	}
	if next.Context.WalkthroughProgress != nil {
		p.field("Walkthrough", fmt.Sprintf("%d%% complete", *next.Context.WalkthroughProgress))
	}
	if len(next.Context.MissingPhotoBuckets) > 0 {
		p.field("Missing photos", strings.Join(next.Context.MissingPhotoBuckets, ", "))
	}
	if next.Context.TimeSinceLastConversation != "" {
		p.field("Last contact", next.Context.TimeSinceLastConversation)
	}
}

func (p *printer) suggestions(result actions.SuggestionResult) {
	if !result.Success {
		_, _ = fmt.Fprintf(p.w, "Suggestions unavailable: %s\n", result.Error)
		return
	}
	if len(result.Suggestions) == 0 {
		_, _ = fmt.Fprintln(p.w, "No suggestions")
		return
	}

	for i, s := range result.Suggestions {
		_, _ = fmt.Fprintf(p.w, "%d. %s %s %s (%d%%)\n", i+1, actions.ActionIcon(s.Category), p.priority(s.Priority), s.Action, s.Confidence)
		p.field("Why", s.Reason)
		p.field("Source", string(s.Source))
		p.field("ID", s.ID)
	}
}

func (p *printer) deals(deals []models.Deal) {
	if len(deals) == 0 {
		_, _ = fmt.Fprintln(p.w, "No deals found")
		return
	}

	w := tabwriter.NewWriter(p.w, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "TITLE\tSTAGE\tLAST ACTIVITY\tID")
	_, _ = fmt.Fprintln(w, "-----\t-----\t-------------\t--")

	now := time.Now()
	for _, deal := range deals {
		activity := "-"
		if deal.LastActivityAt != nil {
			activity = actions.FormatTimeSince(*deal.LastActivityAt, now)
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", deal.Title, models.StageLabel(deal.Stage), activity, deal.ID)
	}

	_ = w.Flush()
}
