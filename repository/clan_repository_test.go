package repository

import (
	"context"
	"testing"

	"coinsbot/models"
	"coinsbot/repository/testutil"
	"coinsbot/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClanRepository_Lifecycle(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	repo := NewClanRepository(testDB.DB)
	ctx := context.Background()

	t.Run("create and read back", func(t *testing.T) {
		clan, err := repo.Create(ctx, "warband", 1)
		require.NoError(t, err)
		assert.NotZero(t, clan.ID)
		assert.Equal(t, "warband", clan.Name)
		assert.Equal(t, int64(1), clan.OwnerID)
		assert.Equal(t, int64(0), clan.Bank)

		byID, err := repo.GetByID(ctx, clan.ID)
		require.NoError(t, err)
		require.NotNil(t, byID)
		assert.Equal(t, clan.Name, byID.Name)

		byName, err := repo.GetByName(ctx, "warband")
		require.NoError(t, err)
		require.NotNil(t, byName)
		assert.Equal(t, clan.ID, byName.ID)
	})

	t.Run("missing clan is nil without error", func(t *testing.T) {
		clan, err := repo.GetByID(ctx, 9999)
		require.NoError(t, err)
		assert.Nil(t, clan)

		clan, err = repo.GetByName(ctx, "ghosts")
		require.NoError(t, err)
		assert.Nil(t, clan)
	})

	t.Run("duplicate name is rejected", func(t *testing.T) {
		_, err := repo.Create(ctx, "warband", 2)
		assert.Error(t, err)
	})

	t.Run("rename and transfer", func(t *testing.T) {
		clan, err := repo.GetByName(ctx, "warband")
		require.NoError(t, err)

		require.NoError(t, repo.Rename(ctx, clan.ID, "horde"))
		require.NoError(t, repo.SetOwner(ctx, clan.ID, 2))

		updated, err := repo.GetByID(ctx, clan.ID)
		require.NoError(t, err)
		assert.Equal(t, "horde", updated.Name)
		assert.Equal(t, int64(2), updated.OwnerID)

		assert.ErrorIs(t, repo.Rename(ctx, 9999, "nobody"), service.ErrNotFound)
	})
}

func TestClanRepository_Bank(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	repo := NewClanRepository(testDB.DB)
	ctx := context.Background()

	clanID := testutil.SeedClan(t, testDB.DB, "warband", 1, 500)

	require.NoError(t, repo.AddToBank(ctx, clanID, 300))
	require.NoError(t, repo.DeductFromBank(ctx, clanID, 700))

	clan, err := repo.GetByID(ctx, clanID)
	require.NoError(t, err)
	assert.Equal(t, int64(100), clan.Bank)

	// The guard holds the bank at its current level.
	err = repo.DeductFromBank(ctx, clanID, 101)
	assert.ErrorIs(t, err, service.ErrInsufficientFunds)

	clan, err = repo.GetByID(ctx, clanID)
	require.NoError(t, err)
	assert.Equal(t, int64(100), clan.Bank)

	assert.ErrorIs(t, repo.AddToBank(ctx, 9999, 50), service.ErrNotFound)
}

func TestClanRepository_Membership(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	repo := NewClanRepository(testDB.DB)
	ctx := context.Background()

	clanID := testutil.SeedClan(t, testDB.DB, "warband", 1, 0)
	otherID := testutil.SeedClan(t, testDB.DB, "horde", 2, 0)

	t.Run("owner membership from seeding", func(t *testing.T) {
		member, err := repo.GetMemberByUserID(ctx, 1)
		require.NoError(t, err)
		require.NotNil(t, member)
		assert.Equal(t, clanID, member.ClanID)
		assert.Equal(t, models.ClanRoleOwner, member.Role)
	})

	t.Run("non member is nil without error", func(t *testing.T) {
		member, err := repo.GetMemberByUserID(ctx, 42)
		require.NoError(t, err)
		assert.Nil(t, member)
	})

	t.Run("one clan per user", func(t *testing.T) {
		require.NoError(t, repo.AddMember(ctx, clanID, 3, models.ClanRoleMember))

		// The same user cannot join a second clan.
		err := repo.AddMember(ctx, otherID, 3, models.ClanRoleMember)
		assert.Error(t, err)
	})

	t.Run("role updates and counts", func(t *testing.T) {
		require.NoError(t, repo.AddMember(ctx, clanID, 4, models.ClanRoleMember))
		require.NoError(t, repo.UpdateMemberRole(ctx, clanID, 3, models.ClanRoleMod))

		members, err := repo.CountMembers(ctx, clanID)
		require.NoError(t, err)
		assert.Equal(t, 3, members)

		mods, err := repo.CountMods(ctx, clanID)
		require.NoError(t, err)
		assert.Equal(t, 1, mods)

		err = repo.UpdateMemberRole(ctx, clanID, 42, models.ClanRoleMod)
		assert.ErrorIs(t, err, service.ErrNotFound)
	})

	t.Run("remove", func(t *testing.T) {
		require.NoError(t, repo.RemoveMember(ctx, clanID, 4))

		member, err := repo.GetMemberByUserID(ctx, 4)
		require.NoError(t, err)
		assert.Nil(t, member)

		require.NoError(t, repo.RemoveAllMembers(ctx, clanID))
		members, err := repo.CountMembers(ctx, clanID)
		require.NoError(t, err)
		assert.Equal(t, 0, members)
	})
}

func TestClanRepository_Invites(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	repo := NewClanRepository(testDB.DB)
	ctx := context.Background()

	firstClan := testutil.SeedClan(t, testDB.DB, "warband", 1, 0)
	secondClan := testutil.SeedClan(t, testDB.DB, "horde", 2, 0)

	t.Run("no invite is nil without error", func(t *testing.T) {
		invite, err := repo.GetLatestInviteForUser(ctx, 5)
		require.NoError(t, err)
		assert.Nil(t, invite)
	})

	t.Run("latest invite wins", func(t *testing.T) {
		require.NoError(t, repo.UpsertInvite(ctx, firstClan, 5, 1))
		require.NoError(t, repo.UpsertInvite(ctx, secondClan, 5, 2))

		invite, err := repo.GetLatestInviteForUser(ctx, 5)
		require.NoError(t, err)
		require.NotNil(t, invite)
		assert.Equal(t, secondClan, invite.ClanID)
	})

	t.Run("re-invite refreshes the existing row", func(t *testing.T) {
		require.NoError(t, repo.UpsertInvite(ctx, firstClan, 5, 3))

		invite, err := repo.GetLatestInviteForUser(ctx, 5)
		require.NoError(t, err)
		require.NotNil(t, invite)
		assert.Equal(t, firstClan, invite.ClanID)
		assert.Equal(t, int64(3), invite.InvitedBy)
	})

	t.Run("accepting clears every invite for the user", func(t *testing.T) {
		require.NoError(t, repo.DeleteInvitesForUser(ctx, 5))

		invite, err := repo.GetLatestInviteForUser(ctx, 5)
		require.NoError(t, err)
		assert.Nil(t, invite)
	})

	t.Run("deleting a clan clears its pending invites", func(t *testing.T) {
		require.NoError(t, repo.UpsertInvite(ctx, firstClan, 6, 1))
		require.NoError(t, repo.UpsertInvite(ctx, firstClan, 7, 1))
		require.NoError(t, repo.DeleteInvitesForClan(ctx, firstClan))

		invite, err := repo.GetLatestInviteForUser(ctx, 6)
		require.NoError(t, err)
		assert.Nil(t, invite)
	})
}
