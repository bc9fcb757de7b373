package sqlstore

import (
	"context"
	"fmt"
)

// schema contains the statements that set up the database. They run on
// startup and are written to work unchanged on SQLite and PostgreSQL.
// Timestamps are Unix milliseconds; money columns are integer cents.
// IMPORTANT: groups must be created before the tables that reference it.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
    id TEXT PRIMARY KEY,
    username TEXT NOT NULL,
    username_lower TEXT NOT NULL UNIQUE,
    display_name TEXT NOT NULL,
    password_hash TEXT NOT NULL,
    created_at BIGINT NOT NULL
)`,
	`CREATE TABLE IF NOT EXISTS groups (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    owner_id TEXT NOT NULL,
    created_at BIGINT NOT NULL
)`,
	`CREATE TABLE IF NOT EXISTS group_members (
    group_id TEXT NOT NULL,
    user_id TEXT NOT NULL,
    joined_at BIGINT NOT NULL,
    PRIMARY KEY (group_id, user_id),
    FOREIGN KEY (group_id) REFERENCES groups(id) ON DELETE CASCADE
)`,
	`CREATE TABLE IF NOT EXISTS invites (
    id TEXT PRIMARY KEY,
    group_id TEXT NOT NULL,
    code TEXT NOT NULL UNIQUE,
    created_by TEXT NOT NULL,
    created_at BIGINT NOT NULL,
    expires_at BIGINT NOT NULL,
    used_by TEXT NOT NULL DEFAULT '',
    FOREIGN KEY (group_id) REFERENCES groups(id) ON DELETE CASCADE
)`,
	`CREATE TABLE IF NOT EXISTS bets (
    id TEXT PRIMARY KEY,
    group_id TEXT NOT NULL,
    title TEXT NOT NULL,
    details TEXT NOT NULL,
    lock_at BIGINT NOT NULL,
    resolve_at BIGINT NOT NULL,
    rule TEXT NOT NULL,
    status TEXT NOT NULL,
    creator_id TEXT NOT NULL,
    winning_outcome_id TEXT NOT NULL DEFAULT '',
    created_at BIGINT NOT NULL,
    settled_at BIGINT NOT NULL DEFAULT 0,
    FOREIGN KEY (group_id) REFERENCES groups(id)
)`,
	`CREATE TABLE IF NOT EXISTS outcomes (
    id TEXT PRIMARY KEY,
    bet_id TEXT NOT NULL,
    position INTEGER NOT NULL,
    label TEXT NOT NULL,
    pot BIGINT NOT NULL DEFAULT 0,
    FOREIGN KEY (bet_id) REFERENCES bets(id)
)`,
	`CREATE TABLE IF NOT EXISTS wagers (
    id TEXT PRIMARY KEY,
    bet_id TEXT NOT NULL,
    outcome_id TEXT NOT NULL,
    user_id TEXT NOT NULL,
    amount BIGINT NOT NULL CHECK (amount > 0),
    seq BIGINT NOT NULL,
    created_at BIGINT NOT NULL,
    UNIQUE (bet_id, seq),
    FOREIGN KEY (bet_id) REFERENCES bets(id),
    FOREIGN KEY (outcome_id) REFERENCES outcomes(id)
)`,
	`CREATE TABLE IF NOT EXISTS debts (
    id TEXT PRIMARY KEY,
    group_id TEXT NOT NULL,
    bet_id TEXT NOT NULL,
    debtor_id TEXT NOT NULL,
    creditor_id TEXT NOT NULL,
    amount BIGINT NOT NULL CHECK (amount > 0),
    status TEXT NOT NULL,
    created_at BIGINT NOT NULL,
    resolved_at BIGINT NOT NULL DEFAULT 0,
    FOREIGN KEY (bet_id) REFERENCES bets(id)
)`,
	`CREATE TABLE IF NOT EXISTS activity (
    id TEXT PRIMARY KEY,
    user_id TEXT NOT NULL,
    seq BIGINT NOT NULL,
    created_at BIGINT NOT NULL,
    title TEXT NOT NULL,
    detail TEXT NOT NULL,
    delta BIGINT NOT NULL
)`,
	`CREATE TABLE IF NOT EXISTS comments (
    id TEXT PRIMARY KEY,
    bet_id TEXT NOT NULL,
    user_id TEXT NOT NULL,
    body TEXT NOT NULL,
    created_at BIGINT NOT NULL,
    FOREIGN KEY (bet_id) REFERENCES bets(id)
)`,
	`CREATE INDEX IF NOT EXISTS idx_group_members_user_id ON group_members(user_id)`,
	`CREATE INDEX IF NOT EXISTS idx_bets_group_id ON bets(group_id)`,
	`CREATE INDEX IF NOT EXISTS idx_outcomes_bet_id ON outcomes(bet_id)`,
	`CREATE INDEX IF NOT EXISTS idx_debts_group_debtor ON debts(group_id, debtor_id, status)`,
	`CREATE INDEX IF NOT EXISTS idx_activity_user_id ON activity(user_id, created_at, seq)`,
	`CREATE INDEX IF NOT EXISTS idx_comments_bet_id ON comments(bet_id)`,
}

// Migrate executes the schema setup.
func (s *Store) Migrate(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema: %w", err)
		}
	}
	return nil
}
