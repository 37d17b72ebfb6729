package domain

import "time"

// TokenType is the scheme reported to clients alongside an access token.
const TokenType = "bearer"

// AccessToken is an issued bearer credential and the instant it stops being accepted.
type AccessToken struct {
	Token     string
	SubjectID int64
	IssuedAt  time.Time
	ExpiresAt time.Time
}
