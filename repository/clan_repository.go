package repository

import (
	"context"
	"fmt"

	"coinsbot/database"
	"coinsbot/models"
	"coinsbot/service"
	"github.com/jackc/pgx/v5"
)

// ClanRepository implements the ClanRepository interface
type ClanRepository struct {
	q queryable
}

// NewClanRepository creates a new clan repository
func NewClanRepository(db *database.DB) *ClanRepository {
	return &ClanRepository{q: db.Pool}
}

// newClanRepositoryWithTx creates a new clan repository with a transaction
func newClanRepositoryWithTx(tx queryable) *ClanRepository {
	return &ClanRepository{q: tx}
}

// Create inserts a new clan with an empty bank
func (r *ClanRepository) Create(ctx context.Context, name string, ownerID int64) (*models.Clan, error) {
	query := `
		INSERT INTO clans (name, owner_id)
		VALUES ($1, $2)
		RETURNING id, name, owner_id, bank, created_at
	`

	var clan models.Clan
	err := r.q.QueryRow(ctx, query, name, ownerID).Scan(
		&clan.ID,
		&clan.Name,
		&clan.OwnerID,
		&clan.Bank,
		&clan.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create clan %q: %w", name, err)
	}

	return &clan, nil
}

// GetByID retrieves a clan, or nil if it does not exist
func (r *ClanRepository) GetByID(ctx context.Context, clanID int64) (*models.Clan, error) {
	return r.getClan(ctx, `SELECT id, name, owner_id, bank, created_at FROM clans WHERE id = $1`, clanID)
}

// GetByName retrieves a clan by its unique name, or nil if it does not exist
func (r *ClanRepository) GetByName(ctx context.Context, name string) (*models.Clan, error) {
	return r.getClan(ctx, `SELECT id, name, owner_id, bank, created_at FROM clans WHERE name = $1`, name)
}

func (r *ClanRepository) getClan(ctx context.Context, query string, arg any) (*models.Clan, error) {
	var clan models.Clan
	err := r.q.QueryRow(ctx, query, arg).Scan(
		&clan.ID,
		&clan.Name,
		&clan.OwnerID,
		&clan.Bank,
		&clan.CreatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get clan: %w", err)
	}

	return &clan, nil
}

// Rename changes a clan's name
func (r *ClanRepository) Rename(ctx context.Context, clanID int64, name string) error {
	tag, err := r.q.Exec(ctx, `UPDATE clans SET name = $1 WHERE id = $2`, name, clanID)
	if err != nil {
		return fmt.Errorf("failed to rename clan %d: %w", clanID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("clan %d: %w", clanID, service.ErrNotFound)
	}
	return nil
}

// SetOwner changes a clan's owner
func (r *ClanRepository) SetOwner(ctx context.Context, clanID int64, ownerID int64) error {
	tag, err := r.q.Exec(ctx, `UPDATE clans SET owner_id = $1 WHERE id = $2`, ownerID, clanID)
	if err != nil {
		return fmt.Errorf("failed to set owner of clan %d: %w", clanID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("clan %d: %w", clanID, service.ErrNotFound)
	}
	return nil
}

// Delete removes a clan row
func (r *ClanRepository) Delete(ctx context.Context, clanID int64) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM clans WHERE id = $1`, clanID); err != nil {
		return fmt.Errorf("failed to delete clan %d: %w", clanID, err)
	}
	return nil
}

// GetTop returns the wealthiest clans by bank, highest first
func (r *ClanRepository) GetTop(ctx context.Context, limit int) ([]*models.ClanLeaderboardEntry, error) {
	query := `
		SELECT name, bank
		FROM clans
		ORDER BY bank DESC, name
		LIMIT $1
	`

	rows, err := r.q.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query clan leaderboard: %w", err)
	}
	defer rows.Close()

	var entries []*models.ClanLeaderboardEntry
	for rows.Next() {
		var e models.ClanLeaderboardEntry
		if err := rows.Scan(&e.Name, &e.Bank); err != nil {
			return nil, fmt.Errorf("failed to scan clan leaderboard entry: %w", err)
		}
		entries = append(entries, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read clan leaderboard: %w", err)
	}

	return entries, nil
}

// AddToBank credits the clan bank; amount must be positive
func (r *ClanRepository) AddToBank(ctx context.Context, clanID int64, amount int64) error {
	if amount <= 0 {
		return fmt.Errorf("bank credit must be positive, got %d", amount)
	}

	tag, err := r.q.Exec(ctx, `UPDATE clans SET bank = bank + $1 WHERE id = $2`, amount, clanID)
	if err != nil {
		return fmt.Errorf("failed to credit bank of clan %d: %w", clanID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("clan %d: %w", clanID, service.ErrNotFound)
	}
	return nil
}

// DeductFromBank debits the clan bank with the same guarded-update
// shape as account debits, so the bank can never go negative.
func (r *ClanRepository) DeductFromBank(ctx context.Context, clanID int64, amount int64) error {
	if amount <= 0 {
		return fmt.Errorf("bank debit must be positive, got %d", amount)
	}

	query := `UPDATE clans SET bank = bank - $1 WHERE id = $2 AND bank >= $1`
	tag, err := r.q.Exec(ctx, query, amount, clanID)
	if err != nil {
		return fmt.Errorf("failed to debit bank of clan %d: %w", clanID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("clan %d bank cannot cover %d: %w", clanID, amount, service.ErrInsufficientFunds)
	}
	return nil
}

// GetMemberByUserID retrieves a user's membership, or nil if they are
// in no clan
func (r *ClanRepository) GetMemberByUserID(ctx context.Context, userID int64) (*models.ClanMember, error) {
	query := `
		SELECT clan_id, user_id, role, joined_at
		FROM clan_members
		WHERE user_id = $1
	`

	var member models.ClanMember
	err := r.q.QueryRow(ctx, query, userID).Scan(
		&member.ClanID,
		&member.UserID,
		&member.Role,
		&member.JoinedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get membership for user %d: %w", userID, err)
	}

	return &member, nil
}

// AddMember inserts a membership row
func (r *ClanRepository) AddMember(ctx context.Context, clanID int64, userID int64, role models.ClanRole) error {
	query := `
		INSERT INTO clan_members (clan_id, user_id, role)
		VALUES ($1, $2, $3)
	`

	if _, err := r.q.Exec(ctx, query, clanID, userID, role); err != nil {
		return fmt.Errorf("failed to add user %d to clan %d: %w", userID, clanID, err)
	}
	return nil
}

// RemoveMember deletes a membership row
func (r *ClanRepository) RemoveMember(ctx context.Context, clanID int64, userID int64) error {
	query := `DELETE FROM clan_members WHERE clan_id = $1 AND user_id = $2`

	if _, err := r.q.Exec(ctx, query, clanID, userID); err != nil {
		return fmt.Errorf("failed to remove user %d from clan %d: %w", userID, clanID, err)
	}
	return nil
}

// RemoveAllMembers deletes every membership of a clan
func (r *ClanRepository) RemoveAllMembers(ctx context.Context, clanID int64) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM clan_members WHERE clan_id = $1`, clanID); err != nil {
		return fmt.Errorf("failed to remove members of clan %d: %w", clanID, err)
	}
	return nil
}

// UpdateMemberRole changes a member's role
func (r *ClanRepository) UpdateMemberRole(ctx context.Context, clanID int64, userID int64, role models.ClanRole) error {
	query := `UPDATE clan_members SET role = $1 WHERE clan_id = $2 AND user_id = $3`

	tag, err := r.q.Exec(ctx, query, role, clanID, userID)
	if err != nil {
		return fmt.Errorf("failed to update role of user %d in clan %d: %w", userID, clanID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("user %d in clan %d: %w", userID, clanID, service.ErrNotFound)
	}
	return nil
}

// CountMembers counts a clan's members
func (r *ClanRepository) CountMembers(ctx context.Context, clanID int64) (int, error) {
	var count int
	err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM clan_members WHERE clan_id = $1`, clanID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count members of clan %d: %w", clanID, err)
	}
	return count, nil
}

// CountMods counts a clan's mods
func (r *ClanRepository) CountMods(ctx context.Context, clanID int64) (int, error) {
	var count int
	err := r.q.QueryRow(ctx,
		`SELECT COUNT(*) FROM clan_members WHERE clan_id = $1 AND role = $2`,
		clanID, models.ClanRoleMod,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count mods of clan %d: %w", clanID, err)
	}
	return count, nil
}

// UpsertInvite records an invite, refreshing the inviter and timestamp
// when one already exists for the pair
func (r *ClanRepository) UpsertInvite(ctx context.Context, clanID int64, userID int64, invitedBy int64) error {
	query := `
		INSERT INTO clan_invites (clan_id, user_id, invited_by)
		VALUES ($1, $2, $3)
		ON CONFLICT (clan_id, user_id)
		DO UPDATE SET invited_by = EXCLUDED.invited_by, created_at = NOW()
	`

	if _, err := r.q.Exec(ctx, query, clanID, userID, invitedBy); err != nil {
		return fmt.Errorf("failed to record invite for user %d to clan %d: %w", userID, clanID, err)
	}
	return nil
}

// GetLatestInviteForUser returns a user's most recent invite, or nil
func (r *ClanRepository) GetLatestInviteForUser(ctx context.Context, userID int64) (*models.ClanInvite, error) {
	query := `
		SELECT clan_id, user_id, invited_by, created_at
		FROM clan_invites
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT 1
	`

	var invite models.ClanInvite
	err := r.q.QueryRow(ctx, query, userID).Scan(
		&invite.ClanID,
		&invite.UserID,
		&invite.InvitedBy,
		&invite.CreatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get invite for user %d: %w", userID, err)
	}

	return &invite, nil
}

// DeleteInvitesForUser clears every pending invite addressed to a user
func (r *ClanRepository) DeleteInvitesForUser(ctx context.Context, userID int64) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM clan_invites WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("failed to delete invites for user %d: %w", userID, err)
	}
	return nil
}

// DeleteInvitesForClan clears every pending invite sent by a clan
func (r *ClanRepository) DeleteInvitesForClan(ctx context.Context, clanID int64) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM clan_invites WHERE clan_id = $1`, clanID); err != nil {
		return fmt.Errorf("failed to delete invites of clan %d: %w", clanID, err)
	}
	return nil
}
