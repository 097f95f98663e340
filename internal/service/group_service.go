package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"spendsplit/internal/models"
	"spendsplit/internal/storage"
)

// GroupService manages groups and member-scoped reads over their ledgers.
type GroupService struct {
	store storage.Store
}

// NewGroupService creates a new GroupService.
func NewGroupService(store storage.Store) *GroupService {
	return &GroupService{store: store}
}

// Create makes a group with the creator as admin plus the given members.
// Every member must be a registered user.
func (s *GroupService) Create(ctx context.Context, creatorID, name string, memberIDs []string) (*models.Group, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: group name required", ErrInvalid)
	}

	// Creator first, deduplicated against the member list.
	members := []models.GroupMember{{UserID: creatorID, Role: models.RoleAdmin}}
	seen := map[string]bool{creatorID: true}
	for _, id := range memberIDs {
		if seen[id] {
			continue
		}
		seen[id] = true
		members = append(members, models.GroupMember{UserID: id, Role: models.RoleMember})
	}

	ids := make([]string, len(members))
	for i, m := range members {
		ids[i] = m.UserID
	}
	users, err := s.store.GetUsersByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to verify members: %w", err)
	}
	for _, id := range ids {
		if _, ok := users[id]; !ok {
			return nil, fmt.Errorf("%w: unknown member %s", ErrInvalid, id)
		}
	}

	group := &models.Group{Name: name, Members: members}
	if err := s.store.CreateGroup(ctx, group); err != nil {
		return nil, fmt.Errorf("failed to create group: %w", err)
	}

	slog.Info("Group created", "group_id", group.ID, "members", len(members))
	return group, nil
}

// Get returns the group with its members. Only members may read it.
func (s *GroupService) Get(ctx context.Context, userID, groupID string) (*models.Group, error) {
	group, err := s.store.GetGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if !group.HasMember(userID) {
		return nil, fmt.Errorf("%w: not a member of this group", ErrForbidden)
	}
	return group, nil
}

// List returns every group the user belongs to.
func (s *GroupService) List(ctx context.Context, userID string) ([]*models.Group, error) {
	return s.store.ListGroupsByUser(ctx, userID)
}

// ListExpenses returns the group's expenses, newest first. Member-scoped.
func (s *GroupService) ListExpenses(ctx context.Context, userID, groupID string) ([]*models.Expense, error) {
	if _, err := s.Get(ctx, userID, groupID); err != nil {
		return nil, err
	}
	return s.store.ListExpensesByGroup(ctx, groupID)
}

// Balances returns the group's running net balances. Member-scoped.
func (s *GroupService) Balances(ctx context.Context, userID, groupID string) ([]*models.GroupBalance, error) {
	if _, err := s.Get(ctx, userID, groupID); err != nil {
		return nil, err
	}
	return s.store.ListGroupBalances(ctx, groupID)
}

// Settlements returns the group's current settlement recommendations.
// Member-scoped.
func (s *GroupService) Settlements(ctx context.Context, userID, groupID string) ([]*models.Settlement, error) {
	if _, err := s.Get(ctx, userID, groupID); err != nil {
		return nil, err
	}
	return s.store.ListSettlements(ctx, models.GroupScope(groupID))
}
