// ABOUTME: Record entry commands for leads, properties, offers, photos, and seller reports
// ABOUTME: Writes directly to the local SQLite database
package cli

import (
	"fmt"
	"strings"

	"github.com/harperreed/dealdesk/actions"
	"github.com/harperreed/dealdesk/db"
	"github.com/harperreed/dealdesk/models"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

func newLeadCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{Use: "lead", Short: "Manage seller leads"}

	add := &cobra.Command{
		Use:   "add",
		Short: "Add a seller lead",
		RunE: func(cmd *cobra.Command, args []string) error {
			name, _ := cmd.Flags().GetString("name")
			phone, _ := cmd.Flags().GetString("phone")
			email, _ := cmd.Flags().GetString("email")
			if strings.TrimSpace(name) == "" {
				return fmt.Errorf("--name is required")
			}

			database, err := a.sqlDB()
			if err != nil {
				return err
			}

			lead := &models.Lead{Name: name, Phone: phone, Email: email}
			if err := db.CreateLead(database, lead); err != nil {
				return fmt.Errorf("failed to create lead: %w", err)
			}

			_, _ = fmt.Fprintf(out(cmd), "✓ Lead created: %s (ID: %s)\n", lead.Name, lead.ID)
			return nil
		},
	}
	add.Flags().String("name", "", "Seller name (required)")
	add.Flags().String("phone", "", "Phone number")
	add.Flags().String("email", "", "Email address")

	cmd.AddCommand(add)
	return cmd
}

func newPropertyCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{Use: "property", Short: "Manage properties"}

	add := &cobra.Command{
		Use:   "add",
		Short: "Add a property",
		RunE: func(cmd *cobra.Command, args []string) error {
			address, _ := cmd.Flags().GetString("address")
			if strings.TrimSpace(address) == "" {
				return fmt.Errorf("--address is required")
			}

			property := &models.Property{Address: address}
			var err error
			if property.ARV, err = decimalFlag(cmd, "arv"); err != nil {
				return err
			}
			if property.RepairCost, err = decimalFlag(cmd, "repair-cost"); err != nil {
				return err
			}
			if property.AskingPrice, err = decimalFlag(cmd, "asking-price"); err != nil {
				return err
			}

			database, err := a.sqlDB()
			if err != nil {
				return err
			}
			if err := db.CreateProperty(database, property); err != nil {
				return fmt.Errorf("failed to create property: %w", err)
			}

			w := out(cmd)
			_, _ = fmt.Fprintf(w, "✓ Property created: %s (ID: %s)\n", property.Address, property.ID)
			if property.ARV.Valid {
				_, _ = fmt.Fprintf(w, "  ARV: $%s\n", property.ARV.Decimal.StringFixed(2))
			}
			if property.RepairCost.Valid {
				_, _ = fmt.Fprintf(w, "  Repairs: $%s\n", property.RepairCost.Decimal.StringFixed(2))
			}
			return nil
		},
	}
	add.Flags().String("address", "", "Street address (required)")
	add.Flags().String("arv", "", "After-repair value")
	add.Flags().String("repair-cost", "", "Estimated repair cost")
	add.Flags().String("asking-price", "", "Seller's asking price")

	cmd.AddCommand(add)
	return cmd
}

func newOfferCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{Use: "offer", Short: "Manage offers"}

	add := &cobra.Command{
		Use:   "add",
		Short: "Record an offer on a deal",
		RunE: func(cmd *cobra.Command, args []string) error {
			dealID, err := parseID("deal", flagString(cmd, "deal"))
			if err != nil {
				return err
			}
			amount, err := decimalFlag(cmd, "amount")
			if err != nil {
				return err
			}
			if !amount.Valid {
				return fmt.Errorf("--amount is required")
			}
			status := flagString(cmd, "status")
			if !models.IsValidOfferStatus(status) {
				return fmt.Errorf("invalid status: %s (valid: draft, sent, countered, accepted, rejected)", status)
			}

			database, err := a.sqlDB()
			if err != nil {
				return err
			}

			offer := &models.Offer{DealID: dealID, Amount: amount.Decimal, Status: status}
			if err := db.CreateOffer(database, offer); err != nil {
				return fmt.Errorf("failed to create offer: %w", err)
			}

			_, _ = fmt.Fprintf(out(cmd), "✓ Offer recorded: $%s (%s, ID: %s)\n", offer.Amount.StringFixed(2), offer.Status, offer.ID)
			return nil
		},
	}
	add.Flags().String("deal", "", "Deal ID (required)")
	add.Flags().String("amount", "", "Offer amount (required)")
	add.Flags().String("status", models.OfferSent, "Status (draft, sent, countered, accepted, rejected)")

	cmd.AddCommand(add)
	return cmd
}

func newPhotoCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{Use: "photo", Short: "Manage walkthrough photos"}

	add := &cobra.Command{
		Use:   "add",
		Short: "Record a walkthrough photo",
		RunE: func(cmd *cobra.Command, args []string) error {
			dealID, err := parseID("deal", flagString(cmd, "deal"))
			if err != nil {
				return err
			}
			bucket := strings.ToLower(strings.TrimSpace(flagString(cmd, "bucket")))
			if bucket == "" {
				return fmt.Errorf("--bucket is required (e.g. %s)", strings.Join(actions.RequiredPhotoBuckets[:3], ", "))
			}

			database, err := a.sqlDB()
			if err != nil {
				return err
			}

			photo := &models.WalkthroughPhoto{DealID: dealID, Bucket: bucket, URL: flagString(cmd, "url")}
			if err := db.AddWalkthroughPhoto(database, photo); err != nil {
				return fmt.Errorf("failed to add photo: %w", err)
			}

			_, _ = fmt.Fprintf(out(cmd), "✓ Photo added: %s (ID: %s)\n", photo.Bucket, photo.ID)
			return nil
		},
	}
	add.Flags().String("deal", "", "Deal ID (required)")
	add.Flags().String("bucket", "", "Photo bucket such as kitchen or roof (required)")
	add.Flags().String("url", "", "Photo URL")

	cmd.AddCommand(add)
	return cmd
}

func newReportCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{Use: "report", Short: "Manage seller reports"}

	add := &cobra.Command{
		Use:   "add",
		Short: "Save the seller report for a deal",
		RunE: func(cmd *cobra.Command, args []string) error {
			dealID, err := parseID("deal", flagString(cmd, "deal"))
			if err != nil {
				return err
			}

			database, err := a.sqlDB()
			if err != nil {
				return err
			}

			report := &models.SellerReport{DealID: dealID, Summary: flagString(cmd, "summary")}
			if err := db.SaveSellerReport(database, report); err != nil {
				return fmt.Errorf("failed to save seller report: %w", err)
			}

			_, _ = fmt.Fprintf(out(cmd), "✓ Seller report saved (ID: %s)\n", report.ID)
			return nil
		},
	}
	add.Flags().String("deal", "", "Deal ID (required)")
	add.Flags().String("summary", "", "Report summary")

	cmd.AddCommand(add)
	return cmd
}

func flagString(cmd *cobra.Command, name string) string {
	v, _ := cmd.Flags().GetString(name)
	return v
}

// decimalFlag parses an optional money flag. An empty value is not an error.
func decimalFlag(cmd *cobra.Command, name string) (decimal.NullDecimal, error) {
	raw := strings.TrimSpace(flagString(cmd, name))
	if raw == "" {
		return decimal.NullDecimal{}, nil
	}
	d, err := decimal.NewFromString(strings.TrimPrefix(raw, "$"))
	if err != nil {
		return decimal.NullDecimal{}, fmt.Errorf("invalid --%s: %w", name, err)
	}
	return decimal.NewNullDecimal(d), nil
}
