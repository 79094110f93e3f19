package domain

import "time"

// AccessToken is an opaque bearer credential owned by a user
type AccessToken struct {
	ID          int64     `json:"id" db:"id"`
	UserID      int64     `json:"user_id" db:"user_id"`
	AccessToken string    `json:"access_token" db:"access_token"`
	ExpiresIn   int       `json:"expires_in" db:"expires_in"`
	ExpiresAt   time.Time `json:"expires_at" db:"expires_at"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// IsExpired reports whether the token is no longer valid at now
func (t AccessToken) IsExpired(now time.Time) bool {
	return now.After(t.ExpiresAt)
}
