package models

import "slices"

// Group is a set of members who bet against each other.
// The owner is fixed at creation and is always a member.
type Group struct {
	// ID is the unique identifier for the group (UUID format).
	ID string

	// Name is the display name of the group (e.g., "Roommates").
	Name string

	// OwnerID is the user who created the group. Owners can invite,
	// remove members and resolve any bet or debt in the group.
	OwnerID string

	// MemberIDs is the list of user IDs in this group, owner included.
	MemberIDs []string

	// CreatedAt is the Unix millisecond timestamp when the group was created.
	CreatedAt int64
}

// HasMember reports whether userID belongs to the group.
func (g *Group) HasMember(userID string) bool {
	return slices.Contains(g.MemberIDs, userID)
}

// Invite lets one user join a group by code.
type Invite struct {
	ID        string
	GroupID   string
	Code      string
	CreatedBy string
	CreatedAt int64
	ExpiresAt int64

	// UsedBy is empty until the invite is accepted.
	UsedBy string
}
