// ABOUTME: Deal CLI commands
// ABOUTME: Creates and lists deals, shows the next best action and suggestions, advances stages
package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/harperreed/dealdesk/actions"
	"github.com/harperreed/dealdesk/config"
	"github.com/harperreed/dealdesk/db"
	"github.com/harperreed/dealdesk/models"
	"github.com/spf13/cobra"
)

func newDealCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{Use: "deal", Short: "Manage deals"}
	cmd.AddCommand(newDealAddCmd(a))
	cmd.AddCommand(newDealListCmd(a))
	cmd.AddCommand(newDealNextCmd(a))
	cmd.AddCommand(newDealSuggestCmd(a))
	cmd.AddCommand(newDealAdvanceCmd(a))
	return cmd
}

func newDealAddCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a deal",
		RunE: func(cmd *cobra.Command, args []string) error {
			title := strings.TrimSpace(flagString(cmd, "title"))
			if title == "" {
				return fmt.Errorf("--title is required")
			}

			stage := flagString(cmd, "stage")
			if !models.IsKnownStage(stage) {
				return fmt.Errorf("invalid stage: %s", stage)
			}
			strategy := flagString(cmd, "strategy")
			if strategy != "" && !models.IsValidStrategy(strategy) {
				return fmt.Errorf("invalid strategy: %s", strategy)
			}

			deal := &models.Deal{
				Title:      title,
				Stage:      stage,
				Strategy:   strategy,
				NextAction: flagString(cmd, "next-action"),
			}

			if raw := flagString(cmd, "lead"); raw != "" {
				id, err := parseID("lead", raw)
				if err != nil {
					return err
				}
				deal.LeadID = &id
			}
			if raw := flagString(cmd, "property"); raw != "" {
				id, err := parseID("property", raw)
				if err != nil {
					return err
				}
				deal.PropertyID = &id
			}
			if raw := flagString(cmd, "due"); raw != "" {
				due, err := time.ParseInLocation("2006-01-02", raw, time.Local)
				if err != nil {
					return fmt.Errorf("invalid --due (use YYYY-MM-DD): %w", err)
				}
				deal.NextActionDue = &due
			}

			database, err := a.sqlDB()
			if err != nil {
				return err
			}
			if err := db.CreateDeal(database, deal); err != nil {
				return fmt.Errorf("failed to create deal: %w", err)
			}

			w := out(cmd)
			_, _ = fmt.Fprintf(w, "✓ Deal created: %s (ID: %s)\n", deal.Title, deal.ID)
			_, _ = fmt.Fprintf(w, "  Stage: %s\n", models.StageLabel(deal.Stage))
			return nil
		},
	}

	cmd.Flags().String("title", "", "Deal title (required)")
	cmd.Flags().String("stage", models.StageNew, "Pipeline stage")
	cmd.Flags().String("strategy", "", "Exit strategy (cash, seller_finance, subject_to, wholesale, fix_and_flip, brrrr, buy_and_hold)")
	cmd.Flags().String("lead", "", "Seller lead ID")
	cmd.Flags().String("property", "", "Property ID")
	cmd.Flags().String("next-action", "", "Manual next action")
	cmd.Flags().String("due", "", "Due date for the manual next action (YYYY-MM-DD)")
	return cmd
}

func newDealListCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List deals by most recent activity",
		RunE: func(cmd *cobra.Command, args []string) error {
			limit, _ := cmd.Flags().GetInt("limit")

			database, err := a.sqlDB()
			if err != nil {
				return err
			}
			deals, err := db.FindDeals(database, flagString(cmd, "stage"), limit)
			if err != nil {
				return fmt.Errorf("failed to find deals: %w", err)
			}

			newPrinter(out(cmd)).deals(deals)
			return nil
		},
	}

	cmd.Flags().String("stage", "", "Filter by stage")
	cmd.Flags().Int("limit", 50, "Maximum results")
	return cmd
}

func newDealNextCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "next <deal-id>",
		Short: "Show the next best action for a deal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			deal, err := a.loadDeal(cmd, args[0])
			if err != nil {
				return err
			}

			next := actions.CalculateNextAction(deal, time.Now())
			if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
				return writeJSON(cmd, next)
			}

			newPrinter(out(cmd)).nextAction(deal, next)
			return nil
		},
	}

	cmd.Flags().Bool("json", false, "Print JSON")
	return cmd
}

func newDealSuggestCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "suggest <deal-id>",
		Short: "Show ranked suggestions for a deal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			limit, _ := cmd.Flags().GetInt("max")
			if limit < 0 {
				return fmt.Errorf("--max must not be negative")
			}

			deal, err := a.loadDeal(cmd, args[0])
			if err != nil {
				return err
			}
			store, err := a.dealStore()
			if err != nil {
				return err
			}
			dis, err := a.dismissalStore()
			if err != nil {
				return err
			}
			dismissed, err := dis.ListForDeal(deal.ID)
			if err != nil {
				return fmt.Errorf("failed to read dismissals: %w", err)
			}

			suggester := actions.NewSuggester(store, config.Logger)
			suggester.DefaultMax = a.cfg.MaxSuggestions
			result := suggester.GenerateSuggestions(cmd.Context(), actions.SuggestionRequest{
				Deal:           deal,
				MaxSuggestions: limit,
				Dismissed:      dismissed,
			})

			if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
				return writeJSON(cmd, result)
			}
			newPrinter(out(cmd)).suggestions(result)
			return nil
		},
	}

	cmd.Flags().Int("max", 0, "Maximum suggestions (default from config)")
	cmd.Flags().Bool("json", false, "Print JSON")
	return cmd
}

func newDealAdvanceCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "advance <deal-id>",
		Short: "Move a deal to the next pipeline stage",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dealID, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid deal ID: %w", err)
			}
			store, err := a.dealStore()
			if err != nil {
				return err
			}

			stage, err := store.AdvanceStage(cmd.Context(), dealID)
			if err != nil {
				return fmt.Errorf("failed to advance deal: %w", err)
			}

			config.Logger.WithField("deal_id", dealID.String()).WithField("stage", stage).Info("Advanced deal")
			_, _ = fmt.Fprintf(out(cmd), "✓ Deal advanced to %s\n", models.StageLabel(stage))
			return nil
		},
	}
}

// loadDeal resolves a deal snapshot from the configured source.
func (a *app) loadDeal(cmd *cobra.Command, raw string) (*models.Deal, error) {
	dealID, err := uuid.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid deal ID: %w", err)
	}
	store, err := a.dealStore()
	if err != nil {
		return nil, err
	}

	deal, err := store.LoadDeal(cmd.Context(), dealID)
	if errors.Is(err, actions.ErrDealNotFound) {
		return nil, fmt.Errorf("deal not found: %s", dealID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load deal: %w", err)
	}
	return deal, nil
}

func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(out(cmd))
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
