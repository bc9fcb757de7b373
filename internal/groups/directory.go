// Package groups manages group membership and invites. It answers the
// membership questions every wagering operation asks first.
package groups

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"strings"
	"time"

	"github.com/mmynk/sidepot/internal/apperr"
	"github.com/mmynk/sidepot/internal/models"
	"github.com/mmynk/sidepot/internal/storage"
)

const (
	// InviteTTL is how long an invite stays redeemable.
	InviteTTL = 7 * 24 * time.Hour

	inviteAlphabet   = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	inviteCodeLength = 6
	maxCodeAttempts  = 5

	defaultGroupName = "Untitled Group"
)

// Directory owns groups, members and invites.
type Directory struct {
	store  storage.GroupStore
	logger *slog.Logger
	now    func() time.Time
}

// Option configures a Directory.
type Option func(*Directory)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(d *Directory) {
		d.logger = logger
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(d *Directory) {
		d.now = now
	}
}

// NewDirectory creates a Directory backed by store.
func NewDirectory(store storage.GroupStore, opts ...Option) *Directory {
	d := &Directory{
		store:  store,
		logger: slog.Default(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// CreateGroup creates a group owned by actor. A blank name becomes
// "Untitled Group".
func (d *Directory) CreateGroup(ctx context.Context, actor, name string) (*models.Group, error) {
	if actor == "" {
		return nil, apperr.ErrNotSignedIn
	}

	name = strings.TrimSpace(name)
	if name == "" {
		name = defaultGroupName
	}

	group := &models.Group{
		Name:      name,
		OwnerID:   actor,
		MemberIDs: []string{actor},
		CreatedAt: d.now().UnixMilli(),
	}
	if err := d.store.CreateGroup(ctx, group); err != nil {
		return nil, fmt.Errorf("failed to create group: %w", err)
	}

	d.logger.Info("Group created", "group_id", group.ID, "owner_id", actor)
	return group, nil
}

// GetGroup returns a group the actor belongs to.
func (d *Directory) GetGroup(ctx context.Context, actor, groupID string) (*models.Group, error) {
	if actor == "" {
		return nil, apperr.ErrNotSignedIn
	}
	group, err := d.load(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if !group.HasMember(actor) {
		return nil, apperr.ErrForbidden
	}
	return group, nil
}

// ListGroups returns the groups the actor belongs to, newest first.
func (d *Directory) ListGroups(ctx context.Context, actor string) ([]*models.Group, error) {
	if actor == "" {
		return nil, apperr.ErrNotSignedIn
	}
	groups, err := d.store.ListGroupsForUser(ctx, actor)
	if err != nil {
		return nil, fmt.Errorf("failed to list groups: %w", err)
	}
	return groups, nil
}

// CreateInvite issues a single-use invite code. Owner only.
func (d *Directory) CreateInvite(ctx context.Context, actor, groupID string) (*models.Invite, error) {
	if actor == "" {
		return nil, apperr.ErrNotSignedIn
	}
	group, err := d.load(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if group.OwnerID != actor {
		return nil, apperr.ErrForbidden
	}

	code, err := d.uniqueCode(ctx)
	if err != nil {
		return nil, err
	}

	now := d.now()
	invite := &models.Invite{
		GroupID:   groupID,
		Code:      code,
		CreatedBy: actor,
		CreatedAt: now.UnixMilli(),
		ExpiresAt: now.Add(InviteTTL).UnixMilli(),
	}
	if err := d.store.CreateInvite(ctx, invite); err != nil {
		return nil, fmt.Errorf("failed to create invite: %w", err)
	}

	d.logger.Info("Invite created", "group_id", groupID, "invite_id", invite.ID)
	return invite, nil
}

// AcceptInvite redeems a code and adds the actor to its group. Accepting an
// invite to a group the actor already belongs to still consumes it.
func (d *Directory) AcceptInvite(ctx context.Context, actor, code string) (*models.Group, error) {
	if actor == "" {
		return nil, apperr.ErrNotSignedIn
	}

	code = strings.TrimSpace(code)
	if code == "" {
		return nil, apperr.Validation("Invalid invite code.")
	}

	invite, err := d.store.GetInviteByCode(ctx, code)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get invite: %w", err)
	}
	if invite.UsedBy != "" {
		return nil, apperr.Validation("Invite already used.")
	}
	now := d.now().UnixMilli()
	if now >= invite.ExpiresAt {
		return nil, apperr.Validation("Invite expired.")
	}

	err = d.store.RedeemInvite(ctx, invite.ID, actor, now)
	switch {
	case errors.Is(err, storage.ErrInviteUsed):
		return nil, apperr.Validation("Invite already used.")
	case errors.Is(err, storage.ErrNotFound):
		return nil, apperr.ErrNotFound
	case err != nil:
		return nil, fmt.Errorf("failed to redeem invite: %w", err)
	}

	d.logger.Info("Invite accepted", "group_id", invite.GroupID, "user_id", actor)
	return d.load(ctx, invite.GroupID)
}

// RemoveMember removes userID from the group. Owner only; the owner cannot
// be removed. Debts involving the removed member are kept.
func (d *Directory) RemoveMember(ctx context.Context, actor, groupID, userID string) error {
	if actor == "" {
		return apperr.ErrNotSignedIn
	}
	group, err := d.load(ctx, groupID)
	if err != nil {
		return err
	}
	if group.OwnerID != actor {
		return apperr.ErrForbidden
	}
	if userID == group.OwnerID {
		return apperr.Validation("Owner cannot be removed.")
	}

	err = d.store.RemoveMember(ctx, groupID, userID)
	if errors.Is(err, storage.ErrNotFound) {
		return apperr.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to remove member: %w", err)
	}

	d.logger.Info("Member removed", "group_id", groupID, "user_id", userID)
	return nil
}

// PurgeExpiredInvites deletes unused invites past their expiry.
func (d *Directory) PurgeExpiredInvites(ctx context.Context) (int64, error) {
	n, err := d.store.DeleteExpiredInvites(ctx, d.now().UnixMilli())
	if err != nil {
		return 0, fmt.Errorf("failed to purge invites: %w", err)
	}
	return n, nil
}

// IsMember reports whether userID belongs to groupID. Returns
// apperr.ErrNotFound if the group does not exist.
func (d *Directory) IsMember(ctx context.Context, groupID, userID string) (bool, error) {
	group, err := d.load(ctx, groupID)
	if err != nil {
		return false, err
	}
	return group.HasMember(userID), nil
}

// IsOwner reports whether userID owns groupID. Returns apperr.ErrNotFound
// if the group does not exist.
func (d *Directory) IsOwner(ctx context.Context, groupID, userID string) (bool, error) {
	group, err := d.load(ctx, groupID)
	if err != nil {
		return false, err
	}
	return group.OwnerID == userID, nil
}

func (d *Directory) load(ctx context.Context, groupID string) (*models.Group, error) {
	group, err := d.store.GetGroup(ctx, groupID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get group: %w", err)
	}
	return group, nil
}

func (d *Directory) uniqueCode(ctx context.Context) (string, error) {
	for range maxCodeAttempts {
		code, err := newInviteCode()
		if err != nil {
			return "", err
		}
		_, err = d.store.GetInviteByCode(ctx, code)
		if errors.Is(err, storage.ErrNotFound) {
			return code, nil
		}
		if err != nil {
			return "", fmt.Errorf("failed to check invite code: %w", err)
		}
	}
	return "", fmt.Errorf("failed to generate a unique invite code after %d attempts", maxCodeAttempts)
}

// newInviteCode returns a random code drawn from an alphabet without
// look-alike characters (no I, O, 0 or 1).
func newInviteCode() (string, error) {
	var b strings.Builder
	limit := big.NewInt(int64(len(inviteAlphabet)))
	for range inviteCodeLength {
		n, err := rand.Int(rand.Reader, limit)
		if err != nil {
			return "", fmt.Errorf("failed to generate invite code: %w", err)
		}
		b.WriteByte(inviteAlphabet[n.Int64()])
	}
	return b.String(), nil
}
