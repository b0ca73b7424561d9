package family

// FamilyProfileRequest is used for both create and full update.
type FamilyProfileRequest struct {
	FullName   string `json:"full_name" validate:"required,max=100"`
	Relation   string `json:"relation" validate:"omitempty,max=20"`
	BirthDate  string `json:"birth_date" validate:"omitempty,isodate"`
	BirthTime  string `json:"birth_time" validate:"omitempty,birthtime"`
	BirthPlace string `json:"birth_place" validate:"omitempty,max=100"`
}
