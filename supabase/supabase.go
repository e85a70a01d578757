// ABOUTME: Supabase-backed deal and conversation source
// ABOUTME: Reads deal snapshots and conversation history through PostgREST
package supabase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/harperreed/dealdesk/actions"
	"github.com/harperreed/dealdesk/models"
	"github.com/sirupsen/logrus"
	"github.com/supabase-community/postgrest-go"
	"github.com/supabase-community/supabase-go"
)

// dealSelect embeds every related record so a snapshot is a single request.
const dealSelect = "*, lead:leads(*), property:properties(*), offers(*), walkthrough_photos(*), seller_reports(*)"

// Store implements actions.DealLoader and actions.ConversationProvider on Supabase.
type Store struct {
	client            *supabase.Client
	logger            logrus.FieldLogger
	ConversationLimit int
}

// NewStore connects to the Supabase project at url with the given API key.
func NewStore(url, key string, logger logrus.FieldLogger) (*Store, error) {
	if url == "" || key == "" {
		return nil, errors.New("supabase url and key are required")
	}

	client, err := supabase.NewClient(url, key, &supabase.ClientOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to create Supabase client: %w", err)
	}

	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Store{client: client, logger: logger, ConversationLimit: actions.ConversationWindow}, nil
}

// LoadDeal fetches the deal with its related records embedded.
func (s *Store) LoadDeal(ctx context.Context, id uuid.UUID) (*models.Deal, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	resp, _, err := s.client.From("deals").
		Select(dealSelect, "", false).
		Eq("id", id.String()).
		Limit(1, "").
		Execute()
	if err != nil {
		return nil, fmt.Errorf("failed to fetch deal %s: %w", id, err)
	}

	return decodeDeal(resp)
}

// ConversationContext summarizes the most recent conversations for the deal or lead.
func (s *Store) ConversationContext(ctx context.Context, dealID uuid.UUID, leadID *uuid.UUID) (actions.ConversationContext, error) {
	if err := ctx.Err(); err != nil {
		return actions.ConversationContext{}, err
	}

	limit := s.ConversationLimit
	if limit <= 0 {
		limit = actions.ConversationWindow
	}

	resp, _, err := s.client.From("conversations").
		Select("*", "", false).
		Or(conversationFilter(dealID, leadID), "").
		Order("occurred_at", &postgrest.OrderOpts{Ascending: false}).
		Limit(limit, "").
		Execute()
	if err != nil {
		return actions.ConversationContext{}, fmt.Errorf("failed to fetch conversations: %w", err)
	}

	var records []models.ConversationRecord
	if err := json.Unmarshal(resp, &records); err != nil {
		return actions.ConversationContext{}, fmt.Errorf("failed to unmarshal conversations: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"deal_id": dealID.String(),
		"count":   len(records),
	}).Debug("Fetched conversations from Supabase")

	return actions.SummarizeConversations(records), nil
}

// LogConversation inserts a conversation and bumps the deal and lead timestamps.
// PostgREST has no multi-statement transactions, so the updates follow the insert
// and only ever move timestamps forward.
func (s *Store) LogConversation(ctx context.Context, rec *models.ConversationRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if rec.Channel == "" {
		rec.Channel = models.ChannelCall
	}
	if !models.IsValidChannel(rec.Channel) {
		return fmt.Errorf("invalid channel %q", rec.Channel)
	}
	if !models.IsValidSentiment(rec.Sentiment) {
		return fmt.Errorf("invalid sentiment %q", rec.Sentiment)
	}
	if rec.OccurredAt.IsZero() {
		rec.OccurredAt = time.Now()
	}
	rec.OccurredAt = rec.OccurredAt.UTC()
	if rec.ID == "" {
		rec.ID = newRecordID(rec.OccurredAt)
	}

	dealLead, err := s.dealLeadID(rec.DealID)
	if err != nil {
		return err
	}
	if rec.LeadID == nil {
		rec.LeadID = dealLead
	}

	if _, _, err := s.client.From("conversations").Insert(rec, false, "", "", "").Execute(); err != nil {
		return fmt.Errorf("failed to insert conversation: %w", err)
	}

	at := rec.OccurredAt.Format(time.RFC3339Nano)
	_, _, err = s.client.From("deals").
		Update(map[string]interface{}{"last_activity_at": at}, "", "").
		Eq("id", rec.DealID.String()).
		Or(forwardOnly("last_activity_at", at), "").
		Execute()
	if err != nil {
		s.logger.WithError(err).Warn("Failed to bump deal activity")
	}

	if rec.LeadID != nil {
		_, _, err := s.client.From("leads").
			Update(map[string]interface{}{"last_contacted_at": at}, "", "").
			Eq("id", rec.LeadID.String()).
			Or(forwardOnly("last_contacted_at", at), "").
			Execute()
		if err != nil {
			s.logger.WithError(err).Warn("Failed to bump lead contact time")
		}
	}

	return nil
}

// dealLeadID returns the deal's linked lead, or ErrDealNotFound.
func (s *Store) dealLeadID(dealID uuid.UUID) (*uuid.UUID, error) {
	resp, _, err := s.client.From("deals").
		Select("lead_id", "", false).
		Eq("id", dealID.String()).
		Limit(1, "").
		Execute()
	if err != nil {
		return nil, fmt.Errorf("failed to fetch deal %s: %w", dealID, err)
	}

	var rows []struct {
		LeadID *uuid.UUID `json:"lead_id"`
	}
	if err := json.Unmarshal(resp, &rows); err != nil {
		return nil, fmt.Errorf("failed to unmarshal deal: %w", err)
	}
	if len(rows) == 0 {
		return nil, actions.ErrDealNotFound
	}
	return rows[0].LeadID, nil
}

// forwardOnly is a PostgREST or-filter that matches rows whose column is
// unset or older than at.
func forwardOnly(column, at string) string {
	return column + ".is.null," + column + ".lt." + at
}

// AdvanceStage moves the deal to its next pipeline stage.
func (s *Store) AdvanceStage(ctx context.Context, id uuid.UUID) (string, error) {
	deal, err := s.LoadDeal(ctx, id)
	if err != nil {
		return "", err
	}

	next := models.NextStage(deal.Stage)
	if next == "" {
		return "", fmt.Errorf("stage %q has no next stage", deal.Stage)
	}

	now := time.Now().UTC().Format(time.RFC3339Nano)
	_, _, err = s.client.From("deals").
		Update(map[string]interface{}{
			"stage":            next,
			"updated_at":       now,
			"last_activity_at": now,
		}, "", "").
		Eq("id", id.String()).
		Execute()
	if err != nil {
		return "", fmt.Errorf("failed to update deal stage: %w", err)
	}
	return next, nil
}

// dealRow is a deals row with its PostgREST embeds.
type dealRow struct {
	models.Deal
	WalkthroughPhotos []models.WalkthroughPhoto `json:"walkthrough_photos"`
	SellerReports     []models.SellerReport     `json:"seller_reports"`
}

func decodeDeal(resp []byte) (*models.Deal, error) {
	var rows []dealRow
	if err := json.Unmarshal(resp, &rows); err != nil {
		return nil, fmt.Errorf("failed to unmarshal deal: %w", err)
	}
	if len(rows) == 0 {
		return nil, actions.ErrDealNotFound
	}

	row := rows[0]
	deal := row.Deal
	deal.Stage = models.NormalizeStage(deal.Stage)

	slices.SortStableFunc(deal.Offers, func(a, b models.Offer) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	if len(row.WalkthroughPhotos) > 0 {
		deal.Walkthrough = &models.Walkthrough{Photos: row.WalkthroughPhotos}
	}
	if len(row.SellerReports) > 0 {
		report := row.SellerReports[0]
		deal.SellerReport = &report
	}
	return &deal, nil
}

// conversationFilter matches the deal's conversations and, when known, the lead's.
func conversationFilter(dealID uuid.UUID, leadID *uuid.UUID) string {
	filter := "deal_id.eq." + dealID.String()
	if leadID != nil {
		filter += ",lead_id.eq." + leadID.String()
	}
	return filter
}

var (
	_ actions.DealLoader           = (*Store)(nil)
	_ actions.ConversationProvider = (*Store)(nil)
)
