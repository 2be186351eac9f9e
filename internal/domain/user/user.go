package user

import (
	"errors"
	"time"
)

// User is an administrator account. Every authenticated user has full admin
// rights; there is no role distinction.
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"` // never expose hash in JSON
	CreatedAt    time.Time `json:"createdAt"`
}

var ErrNotFound = errors.New("user not found")
