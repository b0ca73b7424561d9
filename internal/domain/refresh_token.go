package domain

import "time"

// RefreshToken stores refresh tokens for users.
//
// Only the SHA-256 hash of the raw token is persisted. Tokens rotate on every
// refresh; all tokens minted from one sign-in share a FamilyID so reuse of a
// rotated token revokes the whole family.
type RefreshToken struct {
	ID        int64  `json:"id" gorm:"primaryKey"`
	UserID    string `json:"user_id" gorm:"index;size:36;not null"`
	TokenHash string `json:"-" gorm:"size:64;uniqueIndex;not null"`
	FamilyID  string `json:"-" gorm:"size:36;index;not null"`

	CreatedAt time.Time  `json:"created_at"`
	ExpiresAt time.Time  `json:"expires_at" gorm:"index;not null"`
	UsedAt    *time.Time `json:"used_at"`
	RevokedAt *time.Time `json:"revoked_at" gorm:"index"`
}

func (t *RefreshToken) IsExpired(now time.Time) bool {
	return now.After(t.ExpiresAt)
}

func (t *RefreshToken) IsRevoked() bool {
	return t.RevokedAt != nil
}
