// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"

	"github.com/mmynk/sidepot/internal/models"
)

var (
	// ErrNotFound is returned when the requested row does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadySettled is returned by SettleBet and UpdateBetStatus when the
	// bet was settled before the write could apply.
	ErrAlreadySettled = errors.New("bet already settled")

	// ErrUsernameTaken is returned by CreateUser on a case-insensitive clash.
	ErrUsernameTaken = errors.New("username taken")

	// ErrInviteUsed is returned by RedeemInvite when another user got there first.
	ErrInviteUsed = errors.New("invite already used")
)

// UserStore persists accounts.
type UserStore interface {
	// CreateUser persists a new user. user.ID and CreatedAt are populated
	// when empty.
	CreateUser(ctx context.Context, user *models.User) error

	// GetUserByUsername looks up a user case-insensitively.
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)

	GetUserByID(ctx context.Context, id string) (*models.User, error)

	// GetUsersByIDs returns a map of user ID to User. Unknown IDs are omitted.
	GetUsersByIDs(ctx context.Context, ids []string) (map[string]*models.User, error)
}

// GroupStore persists groups, their member sets and invites.
type GroupStore interface {
	// CreateGroup persists a group and its initial members.
	CreateGroup(ctx context.Context, group *models.Group) error
	GetGroup(ctx context.Context, groupID string) (*models.Group, error)

	// ListGroupsForUser returns the groups userID belongs to, newest first.
	ListGroupsForUser(ctx context.Context, userID string) ([]*models.Group, error)

	IsMember(ctx context.Context, groupID, userID string) (bool, error)
	RemoveMember(ctx context.Context, groupID, userID string) error

	CreateInvite(ctx context.Context, invite *models.Invite) error
	GetInviteByCode(ctx context.Context, code string) (*models.Invite, error)

	// RedeemInvite marks the invite used by userID and adds userID to the
	// group in one transaction. Returns ErrInviteUsed if it was already taken.
	RedeemInvite(ctx context.Context, inviteID, userID string, joinedAt int64) error

	// DeleteExpiredInvites removes unused invites that expired before the
	// given Unix millisecond time and returns how many were removed.
	DeleteExpiredInvites(ctx context.Context, before int64) (int64, error)
}

// BetStore persists bets, their outcomes, wagers and comments.
type BetStore interface {
	// CreateBet persists a bet with its outcomes. IDs are populated when empty.
	CreateBet(ctx context.Context, bet *models.Bet) error

	// GetBet returns a bet with its outcomes in creation order.
	GetBet(ctx context.Context, betID string) (*models.Bet, error)

	// ListBets returns the bets of a group ordered by lock time.
	ListBets(ctx context.Context, groupID string) ([]*models.Bet, error)

	// UpdateBetStatus sets a non-settled status on a bet that has not been
	// settled yet. Returns ErrAlreadySettled otherwise.
	UpdateBetStatus(ctx context.Context, betID string, status models.BetStatus) error

	// PlaceWager appends the wager with the next per-bet sequence number,
	// increments the outcome pot and appends entry, all in one transaction.
	PlaceWager(ctx context.Context, wager *models.Wager, entry *models.ActivityEntry) error

	// ListWagers returns a bet's wagers in placement order.
	ListWagers(ctx context.Context, betID string) ([]*models.Wager, error)

	// SettleBet marks the bet settled and writes every debt and activity
	// entry of the settlement in one transaction. Returns ErrAlreadySettled
	// if the bet was settled first.
	SettleBet(ctx context.Context, settlement *models.Settlement) error

	AddComment(ctx context.Context, comment *models.Comment) error

	// ListComments returns a bet's comments oldest first, with author names.
	ListComments(ctx context.Context, betID string) ([]*models.Comment, error)
}

// DebtStore persists debts created by settlement.
type DebtStore interface {
	GetDebt(ctx context.Context, debtID string) (*models.Debt, error)

	// ListDebtsByGroup returns every debt in a group, newest first.
	ListDebtsByGroup(ctx context.Context, groupID string) ([]*models.Debt, error)

	// HasOpenDebt reports whether userID is the debtor on any open debt in groupID.
	HasOpenDebt(ctx context.Context, groupID, userID string) (bool, error)

	// ResolveDebt moves an open debt to resolved. Resolving a resolved debt
	// leaves it untouched and returns nil.
	ResolveDebt(ctx context.Context, debtID string, resolvedAt int64) error
}

// ActivityStore reads the append-only activity ledger. Entries are written
// by BetStore in the same transaction as the change they record.
type ActivityStore interface {
	// ListActivity returns a user's entries newest first.
	ListActivity(ctx context.Context, userID string) ([]*models.ActivityEntry, error)
}

// Store combines every capability. This abstraction allows swapping storage
// backends (SQLite, PostgreSQL) without changing the service layer.
type Store interface {
	UserStore
	GroupStore
	BetStore
	DebtStore
	ActivityStore

	// Ping verifies the backend is reachable.
	Ping(ctx context.Context) error

	// Close releases any resources held by the store.
	Close() error
}
