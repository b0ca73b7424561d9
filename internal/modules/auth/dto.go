package auth

import "astroseva/internal/domain"

type RegisterRequest struct {
	FullName string `json:"full_name" binding:"required,max=100"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

type LogoutRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// SetSessionRequest carries either explicit tokens or the OAuth redirect URL
// whose fragment holds them.
type SetSessionRequest struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	CallbackURL  string `json:"callback_url"`
}

type UserPublic struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

type Tokens struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
	ExpiresIn    int    `json:"expires_in"`
	TokenType    string `json:"token_type"`
}

// SessionView is what the client needs to render: who is signed in, with
// which role, and whether the birth details prompt applies.
type SessionView struct {
	Authenticated     bool            `json:"authenticated"`
	Actor             *domain.Actor   `json:"actor,omitempty"`
	Profile           *domain.Profile `json:"profile,omitempty"`
	NeedsBirthDetails bool            `json:"needs_birth_details"`
	Tokens            *Tokens         `json:"tokens,omitempty"`
}
