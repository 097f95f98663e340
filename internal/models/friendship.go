package models

// FriendshipStatus is the state of a friend request.
type FriendshipStatus string

const (
	FriendshipPending  FriendshipStatus = "PENDING"
	FriendshipAccepted FriendshipStatus = "ACCEPTED"
	FriendshipDeclined FriendshipStatus = "DECLINED"
)

// Friendship connects two users. The requester sends the invite; the receiver
// accepts or declines it. Only ACCEPTED friendships count as friends.
type Friendship struct {
	// ID is the unique identifier for the friendship (UUID format).
	ID string

	// RequesterID is the user who sent the invite.
	RequesterID string

	// ReceiverID is the user who received the invite.
	ReceiverID string

	// Status is PENDING until the receiver acts on it.
	Status FriendshipStatus

	// CreatedAt is the Unix timestamp when the request was sent.
	CreatedAt int64
}

// Other returns the ID of the friendship party that is not userID.
func (f *Friendship) Other(userID string) string {
	if f.RequesterID == userID {
		return f.ReceiverID
	}
	return f.RequesterID
}
