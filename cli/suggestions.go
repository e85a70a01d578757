// ABOUTME: Suggestion CLI commands
// ABOUTME: Dismisses individual suggestions and clears a deal's dismissals
package cli

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

func newSuggestionCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{Use: "suggestion", Short: "Manage dismissed suggestions"}

	dismiss := &cobra.Command{
		Use:   "dismiss <deal-id> <suggestion-id>",
		Short: "Hide a suggestion for a deal",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			dealID, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid deal ID: %w", err)
			}
			suggestionID := strings.TrimSpace(args[1])
			if !strings.HasPrefix(suggestionID, dealID.String()+"-") {
				return fmt.Errorf("suggestion %s does not belong to deal %s", suggestionID, dealID)
			}

			dis, err := a.dismissalStore()
			if err != nil {
				return err
			}
			if err := dis.Dismiss(dealID, suggestionID); err != nil {
				return fmt.Errorf("failed to dismiss suggestion: %w", err)
			}

			_, _ = fmt.Fprintf(out(cmd), "✓ Suggestion dismissed: %s\n", suggestionID)
			return nil
		},
	}

	clearCmd := &cobra.Command{
		Use:   "clear <deal-id>",
		Short: "Restore every dismissed suggestion for a deal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dealID, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid deal ID: %w", err)
			}

			dis, err := a.dismissalStore()
			if err != nil {
				return err
			}
			n, err := dis.ClearDeal(dealID)
			if err != nil {
				return fmt.Errorf("failed to clear dismissals: %w", err)
			}

			_, _ = fmt.Fprintf(out(cmd), "✓ Cleared %d dismissed suggestions\n", n)
			return nil
		},
	}

	cmd.AddCommand(dismiss, clearCmd)
	return cmd
}
