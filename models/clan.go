package models

import (
	"time"
)

// ClanRole is a member's role within a clan.
type ClanRole string

const (
	ClanRoleOwner  ClanRole = "owner"
	ClanRoleMod    ClanRole = "mod"
	ClanRoleMember ClanRole = "member"
)

// Clan name length bounds.
const (
	ClanNameMinLen = 3
	ClanNameMaxLen = 20
)

// Clan represents a named group of players pooling currency in a shared
// bank. Exactly one member holds the owner role while the clan exists.
type Clan struct {
	ID        int64     `db:"id"`
	Name      string    `db:"name"`
	OwnerID   int64     `db:"owner_id"`
	Bank      int64     `db:"bank"`
	CreatedAt time.Time `db:"created_at"`
}

// ClanMember ties a user to a clan with a role. A user belongs to at
// most one clan at a time.
type ClanMember struct {
	ClanID   int64     `db:"clan_id"`
	UserID   int64     `db:"user_id"`
	Role     ClanRole  `db:"role"`
	JoinedAt time.Time `db:"joined_at"`
}

// ClanInvite is a pending invitation. Re-inviting the same user from the
// same clan refreshes the existing row; accepting consumes all invites
// for that user.
type ClanInvite struct {
	ClanID    int64     `db:"clan_id"`
	UserID    int64     `db:"user_id"`
	InvitedBy int64     `db:"invited_by"`
	CreatedAt time.Time `db:"created_at"`
}

// ClanInfo bundles a clan with aggregate counts for display.
type ClanInfo struct {
	Clan        *Clan
	MemberCount int
	ModCount    int
	CallerRole  ClanRole
}

// ClanBankResult reports the bank and caller balance after a deposit or
// withdrawal.
type ClanBankResult struct {
	Amount     int64
	Bank       int64
	NewBalance int64
}
