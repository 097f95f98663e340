package models

import "github.com/shopspring/decimal"

// GroupRole is a member's role within a group.
type GroupRole string

const (
	RoleAdmin  GroupRole = "admin"
	RoleMember GroupRole = "member"
)

// Group represents a set of users who share expenses against a running ledger.
type Group struct {
	// ID is the unique identifier for the group (UUID format).
	ID string

	// Name is the display name of the group (e.g., "Roommates", "Goa Trip").
	Name string

	// Members is the group membership. The creator joins as admin.
	Members []GroupMember

	// CreatedAt is the Unix timestamp when the group was created.
	CreatedAt int64
}

// MemberIDs returns the user IDs of all group members.
func (g *Group) MemberIDs() []string {
	ids := make([]string, len(g.Members))
	for i, m := range g.Members {
		ids[i] = m.UserID
	}
	return ids
}

// HasMember reports whether userID belongs to the group.
func (g *Group) HasMember(userID string) bool {
	for _, m := range g.Members {
		if m.UserID == userID {
			return true
		}
	}
	return false
}

// GroupMember is one user's membership in one group.
type GroupMember struct {
	GroupID string
	UserID  string
	Role    GroupRole

	// JoinedAt is the Unix timestamp when the user joined the group.
	JoinedAt int64
}

// GroupBalance is the running signed net balance for one user in one group:
// the sum of that user's paid-minus-share across every expense ever posted to
// the group. The balances of a group always sum to zero within money.Tolerance.
type GroupBalance struct {
	GroupID string
	UserID  string
	Balance decimal.Decimal
}
