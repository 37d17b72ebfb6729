package domain

import "time"

// User is the credential record for a marketplace account.
type User struct {
	ID           int64
	Username     string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

// UserProfile is the projection of a user that may leave the service.
type UserProfile struct {
	ID       int64
	Username string
	Email    string
}

// Profile strips credential material from the record.
func (u *User) Profile() UserProfile {
	return UserProfile{ID: u.ID, Username: u.Username, Email: u.Email}
}
