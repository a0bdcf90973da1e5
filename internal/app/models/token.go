package models

import "time"

// RefreshToken is an opaque, single-use credential exchanged for a new token pair
type RefreshToken struct {
	ID        int64     `json:"-" db:"id"`
	Token     string    `json:"-" db:"token"`
	UserID    int64     `json:"userId" db:"user_id"`
	ExpiresAt time.Time `json:"expiresAt" db:"expiry_date"`
	IsRevoked bool      `json:"isRevoked" db:"is_revoked"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

// Expired reports whether the token is past its expiry at now
func (t *RefreshToken) Expired(now time.Time) bool {
	return !now.Before(t.ExpiresAt)
}
