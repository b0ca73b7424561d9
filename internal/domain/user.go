package domain

import "time"

// User is a credential record owned by the identity provider.
type User struct {
	ID           string    `json:"id" gorm:"primaryKey;size:36"`
	Email        string    `json:"email" gorm:"uniqueIndex;not null" validate:"required,email"`
	PasswordHash string    `json:"-" gorm:"not null"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Profile holds the account owner's own natal details.
type Profile struct {
	ID         string    `json:"id" gorm:"primaryKey;size:36"`
	FullName   string    `json:"full_name"`
	ZodiacSign string    `json:"zodiac_sign,omitempty"`
	BirthDate  string    `json:"birth_date,omitempty"`
	BirthTime  string    `json:"birth_time,omitempty"`
	BirthPlace string    `json:"birth_place,omitempty"`
	IsVerified bool      `json:"is_verified"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// NeedsBirthDetails reports whether the first-login prompt should be shown.
func (p *Profile) NeedsBirthDetails() bool {
	if p == nil {
		return true
	}
	return trimmed(p.BirthDate) == "" || trimmed(p.BirthTime) == "" || trimmed(p.BirthPlace) == ""
}

// FamilyProfile is a natal record a user keeps for a dependent.
type FamilyProfile struct {
	ID         string    `json:"id" gorm:"primaryKey;size:36"`
	UserID     string    `json:"user_id" gorm:"index;size:36;not null"`
	FullName   string    `json:"full_name" gorm:"not null"`
	Relation   string    `json:"relation,omitempty"`
	BirthDate  string    `json:"birth_date,omitempty"`
	BirthTime  string    `json:"birth_time,omitempty"`
	BirthPlace string    `json:"birth_place,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
