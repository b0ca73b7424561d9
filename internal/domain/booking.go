package domain

import "time"

type ServiceType string

const (
	ServiceConsultation ServiceType = "consultation"
	ServicePooja        ServiceType = "pooja"
)

func (s ServiceType) Valid() bool {
	return s == ServiceConsultation || s == ServicePooja
}

// ProviderRole is the only role whose members may be assigned to this service.
func (s ServiceType) ProviderRole() Role {
	if s == ServicePooja {
		return RolePriest
	}
	return RoleAstrologer
}

type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingAssigned  BookingStatus = "assigned"
	BookingConfirmed BookingStatus = "confirmed"
	BookingAccepted  BookingStatus = "accepted"
	BookingRejected  BookingStatus = "rejected"
	BookingCompleted BookingStatus = "completed"
	BookingCancelled BookingStatus = "cancelled"
)

func (s BookingStatus) Valid() bool {
	switch s {
	case BookingPending, BookingAssigned, BookingConfirmed, BookingAccepted,
		BookingRejected, BookingCompleted, BookingCancelled:
		return true
	}
	return false
}

func (s BookingStatus) Terminal() bool {
	return s == BookingCompleted || s == BookingCancelled
}

// Booking is a request for a consultation or a pooja.
type Booking struct {
	ID              string        `json:"id"`
	ServiceType     ServiceType   `json:"service_type"`
	RequesterID     *string       `json:"requester_id,omitempty"`
	FamilyProfileID *string       `json:"family_profile_id,omitempty"`
	Status          BookingStatus `json:"status"`
	AssignedTo      *string       `json:"assigned_to,omitempty"`

	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`

	ProblemCategory   string `json:"problem_category,omitempty"`
	DependentCategory string `json:"dependent_category,omitempty"`
	PoojaType         string `json:"pooja_type,omitempty"`
	PreferredSlot     string `json:"preferred_slot,omitempty"`

	DOB        string `json:"dob,omitempty"`
	BirthTime  string `json:"birth_time,omitempty"`
	BirthState string `json:"birth_state,omitempty"`

	Description string  `json:"description,omitempty"`
	AISummary   *string `json:"ai_summary,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (b *Booking) IsAssigned() bool {
	return b.AssignedTo != nil && *b.AssignedTo != ""
}

// ProblemText is the input for summary enrichment: the description, or the
// problem category when the description is blank.
func (b *Booking) ProblemText() string {
	if t := trimmed(b.Description); t != "" {
		return t
	}
	return trimmed(b.ProblemCategory)
}

// Clone returns a deep copy so callers can mutate pointer fields safely.
func (b *Booking) Clone() *Booking {
	if b == nil {
		return nil
	}
	c := *b
	c.RequesterID = cloneString(b.RequesterID)
	c.FamilyProfileID = cloneString(b.FamilyProfileID)
	c.AssignedTo = cloneString(b.AssignedTo)
	c.AISummary = cloneString(b.AISummary)
	return &c
}

// ChangeType mirrors the row-level events emitted by the booking store.
type ChangeType string

const (
	ChangeInsert ChangeType = "insert"
	ChangeUpdate ChangeType = "update"
	ChangeDelete ChangeType = "delete"
)

type BookingChange struct {
	Type    ChangeType `json:"event_type"`
	Booking *Booking   `json:"row"`
}
