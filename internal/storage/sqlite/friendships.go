package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"spendsplit/internal/models"
	"spendsplit/internal/storage"
)

// CreateFriendship inserts a new friend request.
func (s *SQLiteStore) CreateFriendship(ctx context.Context, friendship *models.Friendship) error {
	if friendship.ID == "" {
		friendship.ID = uuid.New().String()
	}
	if friendship.CreatedAt == 0 {
		friendship.CreatedAt = time.Now().Unix()
	}
	if friendship.Status == "" {
		friendship.Status = models.FriendshipPending
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO friendships (id, requester_id, receiver_id, status, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		friendship.ID, friendship.RequesterID, friendship.ReceiverID,
		string(friendship.Status), friendship.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create friendship: %w", err)
	}

	return nil
}

// GetFriendshipBetween finds a friendship connecting the two users in either
// direction. Returns (nil, nil) when none exists.
func (s *SQLiteStore) GetFriendshipBetween(ctx context.Context, userA, userB string) (*models.Friendship, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, requester_id, receiver_id, status, created_at FROM friendships
		 WHERE (requester_id = ? AND receiver_id = ?) OR (requester_id = ? AND receiver_id = ?)`,
		userA, userB, userB, userA,
	)

	friendship, err := scanFriendship(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return friendship, nil
}

// GetFriendship retrieves a friendship by ID.
func (s *SQLiteStore) GetFriendship(ctx context.Context, id string) (*models.Friendship, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, requester_id, receiver_id, status, created_at FROM friendships WHERE id = ?`,
		id,
	)

	friendship, err := scanFriendship(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("friendship %s: %w", id, storage.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}

	return friendship, nil
}

// ListFriendships returns the user's friendships with the given status:
// both directions for ACCEPTED, incoming only for PENDING.
func (s *SQLiteStore) ListFriendships(ctx context.Context, userID string, status models.FriendshipStatus) ([]*models.Friendship, error) {
	query := `SELECT id, requester_id, receiver_id, status, created_at FROM friendships
		 WHERE status = ? AND (requester_id = ? OR receiver_id = ?)`
	args := []interface{}{string(status), userID, userID}

	if status == models.FriendshipPending {
		query = `SELECT id, requester_id, receiver_id, status, created_at FROM friendships
			 WHERE status = ? AND receiver_id = ?`
		args = []interface{}{string(status), userID}
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list friendships: %w", err)
	}
	defer rows.Close()

	var friendships []*models.Friendship
	for rows.Next() {
		friendship, err := scanFriendship(rows)
		if err != nil {
			return nil, err
		}
		friendships = append(friendships, friendship)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate friendships: %w", err)
	}

	return friendships, nil
}

// UpdateFriendshipStatus transitions a friendship to the given status.
func (s *SQLiteStore) UpdateFriendshipStatus(ctx context.Context, id string, status models.FriendshipStatus) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE friendships SET status = ? WHERE id = ?`,
		string(status), id,
	)
	if err != nil {
		return fmt.Errorf("failed to update friendship status: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check friendship update: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("friendship %s: %w", id, storage.ErrNotFound)
	}

	return nil
}

func scanFriendship(row scanner) (*models.Friendship, error) {
	friendship := &models.Friendship{}
	var status string

	err := row.Scan(&friendship.ID, &friendship.RequesterID, &friendship.ReceiverID, &status, &friendship.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan friendship: %w", err)
	}

	friendship.Status = models.FriendshipStatus(status)
	return friendship, nil
}
