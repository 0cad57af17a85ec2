package dto

import (
	"github.com/yigit/coursehub/internal/app/models"
	"github.com/yigit/coursehub/internal/pkg/auth"
)

// RegisterRequest represents a student registration request.
// Passwords are capped at 72 bytes, the bcrypt input limit. An empty password
// is left to the service, which reports a taken username first.
type RegisterRequest struct {
	Username string `json:"username" binding:"required,min=3,max=50" example:"alice"`
	Password string `json:"password" binding:"max=72" example:"LongEnough1"`
}

// LoginRequest represents login credentials
type LoginRequest struct {
	Username string `json:"username" binding:"required" example:"alice"`
	Password string `json:"password" binding:"required" example:"LongEnough1"`
}

// TokenResponse represents JWT token information
type TokenResponse struct {
	AccessToken string `json:"accessToken"`
	TokenType   string `json:"tokenType" example:"Bearer"`
	ExpiresIn   int64  `json:"expiresIn" example:"3600"`
}

// PrincipalResponse describes the caller
type PrincipalResponse struct {
	Username string          `json:"username" example:"alice"`
	Role     models.RoleType `json:"role" example:"STUDENT" enums:"ADMIN,STUDENT"`
}

// NewTokenResponse converts an issued token
func NewTokenResponse(token *auth.IssuedToken) TokenResponse {
	return TokenResponse{
		AccessToken: token.AccessToken,
		TokenType:   "Bearer",
		ExpiresIn:   token.ExpiresIn,
	}
}

// NewPrincipalResponse converts a verified principal
func NewPrincipalResponse(p *auth.Principal) PrincipalResponse {
	return PrincipalResponse{Username: p.Username, Role: p.Role}
}
