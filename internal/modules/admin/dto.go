package admin

import (
	"time"

	"astroseva/internal/domain"
)

type SetRoleRequest struct {
	Role string `json:"role" binding:"required"`
}

type VerifyRequest struct {
	Verified *bool `json:"verified" binding:"required"`
}

// UserSummary is a user row with its effective role.
type UserSummary struct {
	ID        string          `json:"id"`
	Email     string          `json:"email"`
	Role      domain.Role     `json:"role"`
	Profile   *domain.Profile `json:"profile,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

type UserListResponse struct {
	Users []UserSummary `json:"users"`
	Total int           `json:"total"`
	Page  int           `json:"page"`
	Limit int           `json:"limit"`
}
