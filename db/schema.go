// ABOUTME: Database schema definitions for the deal pipeline
// ABOUTME: Creates lead, property, deal, offer, walkthrough, report, and conversation tables
package db

import (
	"database/sql"
)

const schema = `
CREATE TABLE IF NOT EXISTS leads (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	phone TEXT,
	email TEXT,
	last_contacted_at DATETIME,
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_leads_name ON leads(name);

CREATE TABLE IF NOT EXISTS properties (
	id TEXT PRIMARY KEY,
	address TEXT NOT NULL,
	arv TEXT,
	repair_cost TEXT,
	asking_price TEXT,
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS deals (
	id TEXT PRIMARY KEY,
	title TEXT NOT NULL,
	stage TEXT NOT NULL,
	strategy TEXT,
	lead_id TEXT,
	property_id TEXT,
	next_action TEXT,
	next_action_due DATETIME,
	risk_score INTEGER,
	risk_score_auto INTEGER,
	last_activity_at DATETIME,
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL,
	FOREIGN KEY (lead_id) REFERENCES leads(id),
	FOREIGN KEY (property_id) REFERENCES properties(id)
);

CREATE INDEX IF NOT EXISTS idx_deals_stage ON deals(stage);
CREATE INDEX IF NOT EXISTS idx_deals_lead_id ON deals(lead_id);

CREATE TABLE IF NOT EXISTS offers (
	id TEXT PRIMARY KEY,
	deal_id TEXT NOT NULL,
	amount TEXT NOT NULL,
	status TEXT NOT NULL CHECK(status IN ('draft', 'sent', 'countered', 'accepted', 'rejected')),
	created_at DATETIME NOT NULL,
	FOREIGN KEY (deal_id) REFERENCES deals(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_offers_deal_id ON offers(deal_id, created_at DESC);

CREATE TABLE IF NOT EXISTS walkthrough_photos (
	id TEXT PRIMARY KEY,
	deal_id TEXT NOT NULL,
	bucket TEXT,
	category TEXT,
	url TEXT,
	created_at DATETIME NOT NULL,
	FOREIGN KEY (deal_id) REFERENCES deals(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_walkthrough_photos_deal_id ON walkthrough_photos(deal_id);

CREATE TABLE IF NOT EXISTS seller_reports (
	id TEXT PRIMARY KEY,
	deal_id TEXT NOT NULL UNIQUE,
	summary TEXT,
	created_at DATETIME NOT NULL,
	FOREIGN KEY (deal_id) REFERENCES deals(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS conversations (
	id TEXT PRIMARY KEY,
	deal_id TEXT NOT NULL,
	lead_id TEXT,
	channel TEXT NOT NULL CHECK(channel IN ('call', 'sms', 'email', 'visit')),
	summary TEXT,
	sentiment TEXT CHECK(sentiment IN ('', 'positive', 'neutral', 'negative')),
	key_phrases TEXT NOT NULL DEFAULT '[]',
	action_items TEXT NOT NULL DEFAULT '[]',
	occurred_at DATETIME NOT NULL,
	FOREIGN KEY (deal_id) REFERENCES deals(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_conversations_deal ON conversations(deal_id, occurred_at DESC);
CREATE INDEX IF NOT EXISTS idx_conversations_lead ON conversations(lead_id, occurred_at DESC);
`

func InitSchema(db *sql.DB) error {
	_, err := db.Exec(schema)
	return err
}
