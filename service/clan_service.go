package service

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"coinsbot/config"
	"coinsbot/models"
)

type clanService struct {
	uowFactory UnitOfWorkFactory
	cfg        *config.Config
	locks      *AccountLocks
}

// NewClanService creates a new clan service
func NewClanService(uowFactory UnitOfWorkFactory, cfg *config.Config, locks *AccountLocks) ClanService {
	return &clanService{
		uowFactory: uowFactory,
		cfg:        cfg,
		locks:      locks,
	}
}

// validateClanName trims and length-checks a clan name. Length counts
// characters, not bytes, so accented names get the full range.
func validateClanName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if n := utf8.RuneCountInString(name); n < models.ClanNameMinLen || n > models.ClanNameMaxLen {
		return "", fmt.Errorf("clan name must be %d-%d characters: %w",
			models.ClanNameMinLen, models.ClanNameMaxLen, ErrInvalidInput)
	}
	return name, nil
}

// callerClan loads the caller's clan and membership, failing with
// ErrNotFound when they belong to none.
func callerClan(ctx context.Context, uow UnitOfWork, userID int64) (*models.Clan, *models.ClanMember, error) {
	member, err := uow.ClanRepository().GetMemberByUserID(ctx, userID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get clan membership: %w", err)
	}
	if member == nil {
		return nil, nil, fmt.Errorf("you are not in a clan: %w", ErrNotFound)
	}

	clan, err := uow.ClanRepository().GetByID(ctx, member.ClanID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get clan: %w", err)
	}
	if clan == nil {
		return nil, nil, fmt.Errorf("clan %d no longer exists: %w", member.ClanID, ErrNotFound)
	}
	return clan, member, nil
}

func (s *clanService) Create(ctx context.Context, userID int64, name string) (*models.Clan, error) {
	name, err := validateClanName(name)
	if err != nil {
		return nil, err
	}

	unlock := s.locks.Lock(userID)
	defer unlock()

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	member, err := uow.ClanRepository().GetMemberByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get clan membership: %w", err)
	}
	if member != nil {
		return nil, fmt.Errorf("you are already in a clan: %w", ErrStateConflict)
	}

	existing, err := uow.ClanRepository().GetByName(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("failed to check clan name: %w", err)
	}
	if existing != nil {
		return nil, fmt.Errorf("clan name %q is taken: %w", name, ErrStateConflict)
	}

	clan, err := uow.ClanRepository().Create(ctx, name, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to create clan: %w", err)
	}
	if err := uow.ClanRepository().AddMember(ctx, clan.ID, userID, models.ClanRoleOwner); err != nil {
		return nil, fmt.Errorf("failed to add owner membership: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return clan, nil
}

func (s *clanService) Invite(ctx context.Context, userID int64, targetID int64) (*models.Clan, error) {
	if userID == targetID {
		return nil, fmt.Errorf("cannot invite yourself: %w", ErrInvalidInput)
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	clan, member, err := callerClan(ctx, uow, userID)
	if err != nil {
		return nil, err
	}
	if member.Role != models.ClanRoleOwner {
		return nil, fmt.Errorf("only the owner can invite: %w", ErrPermissionDenied)
	}

	targetMember, err := uow.ClanRepository().GetMemberByUserID(ctx, targetID)
	if err != nil {
		return nil, fmt.Errorf("failed to get clan membership: %w", err)
	}
	if targetMember != nil {
		return nil, fmt.Errorf("that user is already in a clan: %w", ErrStateConflict)
	}

	if err := uow.ClanRepository().UpsertInvite(ctx, clan.ID, targetID, userID); err != nil {
		return nil, fmt.Errorf("failed to record invite: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return clan, nil
}

// Accept joins the clan behind the caller's most recent invite and
// clears all their pending invites.
func (s *clanService) Accept(ctx context.Context, userID int64) (*models.Clan, error) {
	unlock := s.locks.Lock(userID)
	defer unlock()

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	member, err := uow.ClanRepository().GetMemberByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get clan membership: %w", err)
	}
	if member != nil {
		return nil, fmt.Errorf("you are already in a clan: %w", ErrStateConflict)
	}

	invite, err := uow.ClanRepository().GetLatestInviteForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get invite: %w", err)
	}
	if invite == nil {
		return nil, fmt.Errorf("you have no pending invite: %w", ErrNotFound)
	}

	clan, err := uow.ClanRepository().GetByID(ctx, invite.ClanID)
	if err != nil {
		return nil, fmt.Errorf("failed to get clan: %w", err)
	}
	if clan == nil {
		return nil, fmt.Errorf("the inviting clan no longer exists: %w", ErrNotFound)
	}

	if err := uow.ClanRepository().DeleteInvitesForUser(ctx, userID); err != nil {
		return nil, fmt.Errorf("failed to clear invites: %w", err)
	}
	if err := uow.ClanRepository().AddMember(ctx, clan.ID, userID, models.ClanRoleMember); err != nil {
		return nil, fmt.Errorf("failed to add membership: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return clan, nil
}

// Leave removes the caller from their clan. The owner cannot leave and
// must transfer ownership or delete the clan instead.
func (s *clanService) Leave(ctx context.Context, userID int64) error {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	clan, member, err := callerClan(ctx, uow, userID)
	if err != nil {
		return err
	}
	if member.Role == models.ClanRoleOwner {
		return fmt.Errorf("the owner cannot leave, transfer ownership or delete the clan: %w", ErrPermissionDenied)
	}

	if err := uow.ClanRepository().RemoveMember(ctx, clan.ID, userID); err != nil {
		return fmt.Errorf("failed to remove membership: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (s *clanService) Info(ctx context.Context, userID int64) (*models.ClanInfo, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	clan, member, err := callerClan(ctx, uow, userID)
	if err != nil {
		return nil, err
	}

	members, err := uow.ClanRepository().CountMembers(ctx, clan.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to count members: %w", err)
	}
	mods, err := uow.ClanRepository().CountMods(ctx, clan.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to count mods: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return &models.ClanInfo{
		Clan:        clan,
		MemberCount: members,
		ModCount:    mods,
		CallerRole:  member.Role,
	}, nil
}

// Deposit moves currency from the caller's balance into the clan bank.
// Any member may deposit.
func (s *clanService) Deposit(ctx context.Context, userID int64, amount int64) (*models.ClanBankResult, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("deposit amount must be positive: %w", ErrInvalidInput)
	}

	unlock := s.locks.Lock(userID)
	defer unlock()

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	clan, _, err := callerClan(ctx, uow, userID)
	if err != nil {
		return nil, err
	}

	account, err := ensureAccount(ctx, uow, s.cfg, userID)
	if err != nil {
		return nil, err
	}
	if account.Balance < amount {
		return nil, fmt.Errorf("have %d, need %d: %w", account.Balance, amount, ErrInsufficientFunds)
	}

	if err := debitBalance(ctx, uow, userID, amount, models.ActionClanDeposit, account.Balance-amount); err != nil {
		return nil, err
	}
	if err := uow.ClanRepository().AddToBank(ctx, clan.ID, amount); err != nil {
		return nil, fmt.Errorf("failed to credit clan bank: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return &models.ClanBankResult{
		Amount:     amount,
		Bank:       clan.Bank + amount,
		NewBalance: account.Balance - amount,
	}, nil
}

// Withdraw moves currency from the clan bank into the caller's balance.
// Restricted to the owner and mods.
func (s *clanService) Withdraw(ctx context.Context, userID int64, amount int64) (*models.ClanBankResult, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("withdrawal amount must be positive: %w", ErrInvalidInput)
	}

	unlock := s.locks.Lock(userID)
	defer unlock()

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	clan, member, err := callerClan(ctx, uow, userID)
	if err != nil {
		return nil, err
	}
	if member.Role != models.ClanRoleOwner && member.Role != models.ClanRoleMod {
		return nil, fmt.Errorf("only the owner or a mod can withdraw: %w", ErrPermissionDenied)
	}
	if clan.Bank < amount {
		return nil, fmt.Errorf("the clan bank holds %d, need %d: %w", clan.Bank, amount, ErrInsufficientFunds)
	}

	account, err := ensureAccount(ctx, uow, s.cfg, userID)
	if err != nil {
		return nil, err
	}

	if err := uow.ClanRepository().DeductFromBank(ctx, clan.ID, amount); err != nil {
		return nil, fmt.Errorf("failed to debit clan bank: %w", err)
	}
	if err := creditBalance(ctx, uow, userID, amount, models.ActionClanWithdraw, account.Balance+amount); err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return &models.ClanBankResult{
		Amount:     amount,
		Bank:       clan.Bank - amount,
		NewBalance: account.Balance + amount,
	}, nil
}

// SetMod promotes a member to mod, bounded by the configured mod limit.
func (s *clanService) SetMod(ctx context.Context, userID int64, targetID int64) (*models.Clan, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	clan, member, err := callerClan(ctx, uow, userID)
	if err != nil {
		return nil, err
	}
	if member.Role != models.ClanRoleOwner {
		return nil, fmt.Errorf("only the owner can promote mods: %w", ErrPermissionDenied)
	}

	target, err := s.clanmate(ctx, uow, clan.ID, targetID)
	if err != nil {
		return nil, err
	}
	if target.Role == models.ClanRoleOwner {
		return nil, fmt.Errorf("the owner cannot be a mod: %w", ErrStateConflict)
	}
	if target.Role == models.ClanRoleMod {
		return nil, fmt.Errorf("that member is already a mod: %w", ErrStateConflict)
	}

	mods, err := uow.ClanRepository().CountMods(ctx, clan.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to count mods: %w", err)
	}
	if mods >= s.cfg.ClanMaxMods {
		return nil, fmt.Errorf("a clan can have at most %d mods: %w", s.cfg.ClanMaxMods, ErrStateConflict)
	}

	if err := uow.ClanRepository().UpdateMemberRole(ctx, clan.ID, targetID, models.ClanRoleMod); err != nil {
		return nil, fmt.Errorf("failed to update role: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return clan, nil
}

// UnsetMod demotes a mod back to member.
func (s *clanService) UnsetMod(ctx context.Context, userID int64, targetID int64) (*models.Clan, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	clan, member, err := callerClan(ctx, uow, userID)
	if err != nil {
		return nil, err
	}
	if member.Role != models.ClanRoleOwner {
		return nil, fmt.Errorf("only the owner can demote mods: %w", ErrPermissionDenied)
	}

	target, err := s.clanmate(ctx, uow, clan.ID, targetID)
	if err != nil {
		return nil, err
	}
	if target.Role != models.ClanRoleMod {
		return nil, fmt.Errorf("that member is not a mod: %w", ErrStateConflict)
	}

	if err := uow.ClanRepository().UpdateMemberRole(ctx, clan.ID, targetID, models.ClanRoleMember); err != nil {
		return nil, fmt.Errorf("failed to update role: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return clan, nil
}

// TransferOwnership hands the clan to another member. The previous
// owner stays in the clan as a plain member.
func (s *clanService) TransferOwnership(ctx context.Context, userID int64, targetID int64) (*models.Clan, error) {
	if userID == targetID {
		return nil, fmt.Errorf("you are already the owner: %w", ErrInvalidInput)
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	clan, member, err := callerClan(ctx, uow, userID)
	if err != nil {
		return nil, err
	}
	if member.Role != models.ClanRoleOwner {
		return nil, fmt.Errorf("only the owner can transfer ownership: %w", ErrPermissionDenied)
	}

	if _, err := s.clanmate(ctx, uow, clan.ID, targetID); err != nil {
		return nil, err
	}

	if err := uow.ClanRepository().UpdateMemberRole(ctx, clan.ID, userID, models.ClanRoleMember); err != nil {
		return nil, fmt.Errorf("failed to demote previous owner: %w", err)
	}
	if err := uow.ClanRepository().UpdateMemberRole(ctx, clan.ID, targetID, models.ClanRoleOwner); err != nil {
		return nil, fmt.Errorf("failed to promote new owner: %w", err)
	}
	if err := uow.ClanRepository().SetOwner(ctx, clan.ID, targetID); err != nil {
		return nil, fmt.Errorf("failed to update clan owner: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	clan.OwnerID = targetID
	return clan, nil
}

func (s *clanService) Rename(ctx context.Context, userID int64, name string) (*models.Clan, error) {
	name, err := validateClanName(name)
	if err != nil {
		return nil, err
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	clan, member, err := callerClan(ctx, uow, userID)
	if err != nil {
		return nil, err
	}
	if member.Role != models.ClanRoleOwner {
		return nil, fmt.Errorf("only the owner can rename the clan: %w", ErrPermissionDenied)
	}

	existing, err := uow.ClanRepository().GetByName(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("failed to check clan name: %w", err)
	}
	if existing != nil && existing.ID != clan.ID {
		return nil, fmt.Errorf("clan name %q is taken: %w", name, ErrStateConflict)
	}

	if err := uow.ClanRepository().Rename(ctx, clan.ID, name); err != nil {
		return nil, fmt.Errorf("failed to rename clan: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	clan.Name = name
	return clan, nil
}

// Delete removes the clan along with all memberships and invites. Any
// remaining bank currency is destroyed.
func (s *clanService) Delete(ctx context.Context, userID int64) (*models.Clan, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	clan, member, err := callerClan(ctx, uow, userID)
	if err != nil {
		return nil, err
	}
	if member.Role != models.ClanRoleOwner {
		return nil, fmt.Errorf("only the owner can delete the clan: %w", ErrPermissionDenied)
	}

	if err := uow.ClanRepository().DeleteInvitesForClan(ctx, clan.ID); err != nil {
		return nil, fmt.Errorf("failed to delete invites: %w", err)
	}
	if err := uow.ClanRepository().RemoveAllMembers(ctx, clan.ID); err != nil {
		return nil, fmt.Errorf("failed to delete memberships: %w", err)
	}
	if err := uow.ClanRepository().Delete(ctx, clan.ID); err != nil {
		return nil, fmt.Errorf("failed to delete clan: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return clan, nil
}

func (s *clanService) TopClans(ctx context.Context, limit int) ([]*models.ClanLeaderboardEntry, error) {
	if limit < 3 {
		limit = 3
	}
	if limit > 20 {
		limit = 20
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	entries, err := uow.ClanRepository().GetTop(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get clan leaderboard: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return entries, nil
}

// clanmate loads a member of the given clan, rejecting users outside
// it.
func (s *clanService) clanmate(ctx context.Context, uow UnitOfWork, clanID int64, targetID int64) (*models.ClanMember, error) {
	target, err := uow.ClanRepository().GetMemberByUserID(ctx, targetID)
	if err != nil {
		return nil, fmt.Errorf("failed to get clan membership: %w", err)
	}
	if target == nil || target.ClanID != clanID {
		return nil, fmt.Errorf("that user is not in your clan: %w", ErrNotFound)
	}
	return target, nil
}
