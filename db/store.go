// ABOUTME: Context-aware SQLite store backing the recommendation engine
// ABOUTME: Loads full deal snapshots and summarizes recent conversations
package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/harperreed/dealdesk/actions"
	"github.com/harperreed/dealdesk/models"
)

// Store adapts a SQLite database to actions.DealLoader and actions.ConversationProvider.
type Store struct {
	db                *sql.DB
	ConversationLimit int
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db, ConversationLimit: actions.ConversationWindow}
}

// DB exposes the underlying handle for the function-style helpers.
func (s *Store) DB() *sql.DB {
	return s.db
}

// LoadDeal returns the deal with its lead, property, offers, walkthrough, and
// seller report attached.
func (s *Store) LoadDeal(ctx context.Context, id uuid.UUID) (*models.Deal, error) {
	deal, err := getDeal(ctx, s.db, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load deal %s: %w", id, err)
	}
	if deal == nil {
		return nil, ErrDealNotFound
	}

	if deal.LeadID != nil {
		if deal.Lead, err = getLead(ctx, s.db, *deal.LeadID); err != nil {
			return nil, fmt.Errorf("failed to load lead: %w", err)
		}
	}
	if deal.PropertyID != nil {
		if deal.Property, err = getProperty(ctx, s.db, *deal.PropertyID); err != nil {
			return nil, fmt.Errorf("failed to load property: %w", err)
		}
	}

	if deal.Offers, err = getDealOffers(ctx, s.db, id); err != nil {
		return nil, fmt.Errorf("failed to load offers: %w", err)
	}

	photos, err := getWalkthroughPhotos(ctx, s.db, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load walkthrough: %w", err)
	}
	if len(photos) > 0 {
		deal.Walkthrough = &models.Walkthrough{Photos: photos}
	}

	if deal.SellerReport, err = getSellerReport(ctx, s.db, id); err != nil {
		return nil, fmt.Errorf("failed to load seller report: %w", err)
	}

	return deal, nil
}

// ConversationContext summarizes the most recent conversations for the deal or lead.
func (s *Store) ConversationContext(ctx context.Context, dealID uuid.UUID, leadID *uuid.UUID) (actions.ConversationContext, error) {
	records, err := getConversationHistory(ctx, s.db, dealID, leadID, s.ConversationLimit)
	if err != nil {
		return actions.ConversationContext{}, fmt.Errorf("failed to load conversations: %w", err)
	}
	return actions.SummarizeConversations(records), nil
}

// LogConversation records a conversation for the deal.
func (s *Store) LogConversation(ctx context.Context, rec *models.ConversationRecord) error {
	return logConversation(ctx, s.db, rec)
}

// AdvanceStage moves the deal to its next pipeline stage.
func (s *Store) AdvanceStage(ctx context.Context, id uuid.UUID) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return AdvanceDealStage(s.db, id)
}

var (
	_ actions.DealLoader           = (*Store)(nil)
	_ actions.ConversationProvider = (*Store)(nil)
)
