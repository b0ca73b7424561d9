package profile

import "astroseva/internal/domain"

type UpdateProfileRequest struct {
	FullName   string `json:"full_name" validate:"required,max=100"`
	ZodiacSign string `json:"zodiac_sign" validate:"omitempty,max=20"`
	BirthDate  string `json:"birth_date" validate:"omitempty,isodate"`
	BirthTime  string `json:"birth_time" validate:"omitempty,birthtime"`
	BirthPlace string `json:"birth_place" validate:"omitempty,max=100"`
}

type ProfileView struct {
	Profile           *domain.Profile `json:"profile"`
	NeedsBirthDetails bool            `json:"needs_birth_details"`
}
