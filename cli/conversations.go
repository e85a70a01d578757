// ABOUTME: Conversation CLI command
// ABOUTME: Logs a seller conversation with sentiment, key phrases, and action items
package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/harperreed/dealdesk/config"
	"github.com/harperreed/dealdesk/models"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func newConversationCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{Use: "conversation", Short: "Manage seller conversations"}

	logCmd := &cobra.Command{
		Use:   "log",
		Short: "Log a conversation with the seller",
		RunE: func(cmd *cobra.Command, args []string) error {
			dealID, err := parseID("deal", flagString(cmd, "deal"))
			if err != nil {
				return err
			}

			sentiment := strings.ToLower(flagString(cmd, "sentiment"))
			if !models.IsValidSentiment(sentiment) {
				return fmt.Errorf("invalid sentiment: %s (valid: positive, neutral, negative)", sentiment)
			}
			phrases, _ := cmd.Flags().GetStringSlice("phrase")
			items, _ := cmd.Flags().GetStringArray("action-item")

			rec := &models.ConversationRecord{
				DealID:      dealID,
				Channel:     strings.ToLower(flagString(cmd, "channel")),
				Summary:     flagString(cmd, "summary"),
				Sentiment:   sentiment,
				KeyPhrases:  phrases,
				ActionItems: items,
			}

			if raw := flagString(cmd, "lead"); raw != "" {
				leadID, err := uuid.Parse(raw)
				if err != nil {
					return fmt.Errorf("invalid lead: %w", err)
				}
				rec.LeadID = &leadID
			}
			if raw := flagString(cmd, "at"); raw != "" {
				at, err := time.Parse(time.RFC3339, raw)
				if err != nil {
					return fmt.Errorf("invalid --at (use RFC3339): %w", err)
				}
				rec.OccurredAt = at
			}

			store, err := a.dealStore()
			if err != nil {
				return err
			}
			if err := store.LogConversation(cmd.Context(), rec); err != nil {
				return fmt.Errorf("failed to log conversation: %w", err)
			}

			config.Logger.WithFields(logrus.Fields{
				"deal_id":         dealID.String(),
				"conversation_id": rec.ID,
			}).Debug("Logged conversation")

			w := out(cmd)
			_, _ = fmt.Fprintf(w, "✓ Conversation logged (ID: %s)\n", rec.ID)
			_, _ = fmt.Fprintf(w, "  Channel: %s\n", rec.Channel)
			if len(rec.ActionItems) > 0 {
				_, _ = fmt.Fprintf(w, "  Action items: %d\n", len(rec.ActionItems))
			}
			return nil
		},
	}

	logCmd.Flags().String("deal", "", "Deal ID (required)")
	logCmd.Flags().String("lead", "", "Lead ID (default: the deal's lead)")
	logCmd.Flags().String("channel", models.ChannelCall, "Channel (call, sms, email, visit)")
	logCmd.Flags().String("summary", "", "Short summary")
	logCmd.Flags().String("sentiment", "", "Seller sentiment (positive, neutral, negative)")
	logCmd.Flags().StringSlice("phrase", nil, "Key phrase the seller used (repeatable, comma separated)")
	logCmd.Flags().StringArray("action-item", nil, "Follow-up task (repeatable)")
	logCmd.Flags().String("at", "", "When it happened (RFC3339, default now)")

	cmd.AddCommand(logCmd)
	return cmd
}
