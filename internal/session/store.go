package session

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Session is the server-side state behind a login cookie. The store is
// authoritative: deleting the session revokes the cookie no matter how
// long the cookie itself would remain valid.
type Session struct {
	ID        string    `json:"id"`
	UserID    int64     `json:"userId"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"createdAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

var ErrNotFound = errors.New("session not found")

// Store maps a session id to authenticated-user state. Implementations are
// swappable; the rest of the app only sees this interface.
type Store interface {
	Put(ctx context.Context, s Session) error

	// Get returns ErrNotFound for missing or expired sessions.
	Get(ctx context.Context, id string) (Session, error)

	// Delete is idempotent; deleting an absent session is not an error.
	Delete(ctx context.Context, id string) error
}

func New(userID int64, username string, ttl time.Duration) Session {
	now := time.Now().UTC()

	return Session{
		ID:        uuid.NewString(),
		UserID:    userID,
		Username:  username,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
}
