package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"spendsplit/internal/models"
	"spendsplit/internal/storage"
)

// FriendService manages friend invitations and connections.
type FriendService struct {
	store storage.Store
}

// NewFriendService creates a new FriendService.
func NewFriendService(store storage.Store) *FriendService {
	return &FriendService{store: store}
}

// Invite sends a friend request to the user registered under email.
func (s *FriendService) Invite(ctx context.Context, userID, email string) (*models.Friendship, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, fmt.Errorf("%w: email required", ErrInvalid)
	}

	receiver, err := s.store.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
	if receiver == nil {
		return nil, fmt.Errorf("no user with email %s: %w", email, storage.ErrNotFound)
	}
	if receiver.ID == userID {
		return nil, fmt.Errorf("%w: cannot befriend yourself", ErrInvalid)
	}

	existing, err := s.store.GetFriendshipBetween(ctx, userID, receiver.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to check friendship: %w", err)
	}
	if existing != nil {
		// A declined request can be re-sent by its original requester; the
		// row flips back to PENDING in the receiver's inbox.
		if existing.Status == models.FriendshipDeclined && existing.RequesterID == userID {
			if err := s.store.UpdateFriendshipStatus(ctx, existing.ID, models.FriendshipPending); err != nil {
				return nil, fmt.Errorf("failed to reopen friendship: %w", err)
			}
			existing.Status = models.FriendshipPending
			return existing, nil
		}
		return nil, fmt.Errorf("%w: friendship already exists", ErrInvalid)
	}

	friendship := &models.Friendship{
		RequesterID: userID,
		ReceiverID:  receiver.ID,
	}
	if err := s.store.CreateFriendship(ctx, friendship); err != nil {
		return nil, fmt.Errorf("failed to create friendship: %w", err)
	}

	slog.Info("Friend request sent", "requester_id", userID, "receiver_id", receiver.ID)
	return friendship, nil
}

// Friend is a connection plus the other party's public profile.
type Friend struct {
	FriendshipID string
	User         *models.User
}

// ListFriends returns the user's accepted friends.
func (s *FriendService) ListFriends(ctx context.Context, userID string) ([]Friend, error) {
	friendships, err := s.store.ListFriendships(ctx, userID, models.FriendshipAccepted)
	if err != nil {
		return nil, fmt.Errorf("failed to list friendships: %w", err)
	}

	ids := make([]string, len(friendships))
	for i, f := range friendships {
		ids[i] = f.Other(userID)
	}
	users, err := s.store.GetUsersByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load friend profiles: %w", err)
	}

	friends := make([]Friend, 0, len(friendships))
	for _, f := range friendships {
		user, ok := users[f.Other(userID)]
		if !ok {
			continue
		}
		friends = append(friends, Friend{FriendshipID: f.ID, User: user})
	}
	return friends, nil
}

// PendingRequest is an incoming invite plus the requester's public profile.
type PendingRequest struct {
	FriendshipID string
	Requester    *models.User
}

// ListPending returns invites awaiting the user's response.
func (s *FriendService) ListPending(ctx context.Context, userID string) ([]PendingRequest, error) {
	friendships, err := s.store.ListFriendships(ctx, userID, models.FriendshipPending)
	if err != nil {
		return nil, fmt.Errorf("failed to list friendships: %w", err)
	}

	ids := make([]string, len(friendships))
	for i, f := range friendships {
		ids[i] = f.RequesterID
	}
	users, err := s.store.GetUsersByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load requester profiles: %w", err)
	}

	requests := make([]PendingRequest, 0, len(friendships))
	for _, f := range friendships {
		requester, ok := users[f.RequesterID]
		if !ok {
			continue
		}
		requests = append(requests, PendingRequest{FriendshipID: f.ID, Requester: requester})
	}
	return requests, nil
}

// Respond accepts or declines a pending invite. Only the receiver may respond,
// and only while the request is still pending.
func (s *FriendService) Respond(ctx context.Context, userID, friendshipID string, accept bool) error {
	friendship, err := s.store.GetFriendship(ctx, friendshipID)
	if err != nil {
		return err
	}
	if friendship.ReceiverID != userID {
		return fmt.Errorf("%w: only the receiver can respond", ErrForbidden)
	}
	if friendship.Status != models.FriendshipPending {
		return fmt.Errorf("%w: request already resolved", ErrInvalid)
	}

	status := models.FriendshipDeclined
	if accept {
		status = models.FriendshipAccepted
	}
	if err := s.store.UpdateFriendshipStatus(ctx, friendshipID, status); err != nil {
		return fmt.Errorf("failed to update friendship: %w", err)
	}

	slog.Info("Friend request resolved", "friendship_id", friendshipID, "status", status)
	return nil
}
