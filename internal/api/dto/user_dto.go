package dto

import (
	"time"

	"github.com/spec-kit/marketplace-service/internal/domain"
)

// UserRegisterRequest payload for new users.
type UserRegisterRequest struct {
	Username string `json:"username" form:"username"`
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
}

// UserLoginRequest payload for login. Accepted as JSON or as an OAuth2 password form.
type UserLoginRequest struct {
	Username string `json:"username" form:"username"`
	Password string `json:"password" form:"password"`
}

// TokenResponse is returned by a successful login.
type TokenResponse struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// UserResponse is the public projection of an account.
type UserResponse struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// NewTokenResponse converts an issued token.
func NewTokenResponse(token domain.AccessToken) TokenResponse {
	return TokenResponse{
		AccessToken: token.Token,
		TokenType:   domain.TokenType,
		ExpiresAt:   token.ExpiresAt.UTC(),
	}
}

// NewUserResponse converts a profile.
func NewUserResponse(profile domain.UserProfile) UserResponse {
	return UserResponse{ID: profile.ID, Username: profile.Username, Email: profile.Email}
}
