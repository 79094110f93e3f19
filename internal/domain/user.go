package domain

import "time"

// User represents a user in the system
type User struct {
	ID          int64      `json:"id" db:"id"`
	Username    string     `json:"username" db:"username"`
	Email       string     `json:"email" db:"email"`
	FullName    string     `json:"full_name" db:"full_name"`
	IsSuperuser bool       `json:"is_superuser" db:"is_superuser"`
	LastLogin   *time.Time `json:"last_login" db:"last_login"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at" db:"updated_at"`
}
