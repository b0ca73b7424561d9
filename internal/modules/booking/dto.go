package booking

// SubmitBookingRequest is the booking form payload. Natal fields may be
// omitted when family_profile_id is given; they are copied from the profile.
type SubmitBookingRequest struct {
	ServiceType       string `json:"service_type" validate:"required,oneof=consultation pooja"`
	FamilyProfileID   string `json:"family_profile_id" validate:"omitempty,max=36"`
	Name              string `json:"name" validate:"omitempty,max=100"`
	Email             string `json:"email" validate:"omitempty,email"`
	Phone             string `json:"phone" validate:"required,len=10,numeric"`
	ProblemCategory   string `json:"problem_category"`
	DependentCategory string `json:"dependent_category"`
	PoojaType         string `json:"pooja_type"`
	PreferredSlot     string `json:"preferred_slot" validate:"required"`
	DOB               string `json:"dob" validate:"omitempty,isodate"`
	BirthTime         string `json:"birth_time" validate:"omitempty,birthtime"`
	BirthState        string `json:"birth_state" validate:"omitempty,max=100"`
	Description       string `json:"description" validate:"max=1000"`
}

type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

type AssignRequest struct {
	ProviderID string `json:"provider_id" binding:"required"`
}

type ListResponse struct {
	Bookings []BookingView `json:"bookings"`
	Count    int           `json:"count"`
}
