// ABOUTME: Database operations for seller conversation logging
// ABOUTME: Records conversations and keeps lead and deal contact timestamps current
package db

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/harperreed/dealdesk/models"
	"github.com/oklog/ulid/v2"
)

// LogConversation records a conversation and, in the same transaction, bumps
// the lead's last_contacted_at and the deal's last_activity_at. The lead
// defaults to the deal's linked lead.
func LogConversation(db *sql.DB, rec *models.ConversationRecord) error {
	return logConversation(context.Background(), db, rec)
}

func logConversation(ctx context.Context, db *sql.DB, rec *models.ConversationRecord) error {
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
	rec.OccurredAt = utc(rec.OccurredAt)
	if rec.ID == "" {
		rec.ID = ulid.MustNew(ulid.Timestamp(rec.OccurredAt), ulid.Monotonic(rand.Reader, 0)).String()
	}

	keyPhrases, err := encodeList(rec.KeyPhrases)
	if err != nil {
		return err
	}
	actionItems, err := encodeList(rec.ActionItems)
	if err != nil {
		return err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	var dealLead sql.NullString
	err = tx.QueryRowContext(ctx, `SELECT lead_id FROM deals WHERE id = ?`, rec.DealID.String()).Scan(&dealLead)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrDealNotFound
	}
	if err != nil {
		return err
	}
	if rec.LeadID == nil {
		rec.LeadID = parseNullUUID(dealLead)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO conversations (id, deal_id, lead_id, channel, summary, sentiment, key_phrases, action_items, occurred_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, rec.ID, rec.DealID.String(), nullableUUID(rec.LeadID), rec.Channel, rec.Summary, rec.Sentiment,
		keyPhrases, actionItems, rec.OccurredAt)
	if err != nil {
		return err
	}

	if err := touchDeal(ctx, tx, rec.DealID, rec.OccurredAt); err != nil {
		return err
	}

	// Update lead's last_contacted_at, never moving it backwards
	if rec.LeadID != nil {
		_, err = tx.ExecContext(ctx, `
			UPDATE leads SET last_contacted_at = ?, updated_at = ?
			WHERE id = ? AND (last_contacted_at IS NULL OR last_contacted_at < ?)
		`, rec.OccurredAt, time.Now().UTC(), rec.LeadID.String(), rec.OccurredAt)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

// GetConversationHistory returns the most recent conversations for the deal or
// its lead, newest first.
func GetConversationHistory(db *sql.DB, dealID uuid.UUID, leadID *uuid.UUID, limit int) ([]models.ConversationRecord, error) {
	return getConversationHistory(context.Background(), db, dealID, leadID, limit)
}

func getConversationHistory(ctx context.Context, q queryer, dealID uuid.UUID, leadID *uuid.UUID, limit int) ([]models.ConversationRecord, error) {
	if limit <= 0 {
		limit = 10
	}

	rows, err := q.QueryContext(ctx, `
		SELECT id, deal_id, lead_id, channel, summary, sentiment, key_phrases, action_items, occurred_at
		FROM conversations
		WHERE deal_id = ? OR (lead_id IS NOT NULL AND lead_id = ?)
		ORDER BY occurred_at DESC, id DESC
		LIMIT ?
	`, dealID.String(), nullableUUID(leadID), limit)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = rows.Close()
	}()

	var records []models.ConversationRecord
	for rows.Next() {
		var r models.ConversationRecord
		var leadIDStr, summary, sentiment sql.NullString
		var keyPhrases, actionItems string

		err := rows.Scan(&r.ID, &r.DealID, &leadIDStr, &r.Channel, &summary, &sentiment, &keyPhrases, &actionItems, &r.OccurredAt)
		if err != nil {
			return nil, err
		}

		r.LeadID = parseNullUUID(leadIDStr)
		r.Summary = summary.String
		r.Sentiment = sentiment.String
		if r.KeyPhrases, err = decodeList(keyPhrases); err != nil {
			return nil, fmt.Errorf("failed to decode key phrases for %s: %w", r.ID, err)
		}
		if r.ActionItems, err = decodeList(actionItems); err != nil {
			return nil, fmt.Errorf("failed to decode action items for %s: %w", r.ID, err)
		}
		records = append(records, r)
	}

	return records, rows.Err()
}

func encodeList(values []string) (string, error) {
	if values == nil {
		values = []string{}
	}
	b, err := json.Marshal(values)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func decodeList(raw string) ([]string, error) {
	if raw == "" {
		return nil, nil
	}
	var values []string
	if err := json.Unmarshal([]byte(raw), &values); err != nil {
		return nil, err
	}
	return values, nil
}
