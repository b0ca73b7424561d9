package booking

import "astroseva/internal/domain"

// CanClaim reports whether actor may take ownership of, or act on, b.
// Admins always may; a provider may when b is of its service type and is
// unassigned or already theirs; users never may.
func CanClaim(actor domain.Actor, b *domain.Booking) bool {
	if b == nil {
		return false
	}
	switch actor.Role {
	case domain.RoleAdmin:
		return true
	case domain.RoleAstrologer, domain.RolePriest:
		svc, _ := actor.Role.ServiceType()
		if b.ServiceType != svc {
			return false
		}
		return !b.IsAssigned() || actor.Is(b.AssignedTo)
	case domain.RoleUser:
		return false
	default:
		return false
	}
}

// CanViewFullDetails reports whether actor may see contact, natal and
// free-text fields of b.
func CanViewFullDetails(actor domain.Actor, b *domain.Booking) bool {
	if b == nil {
		return false
	}
	switch actor.Role {
	case domain.RoleAdmin:
		return true
	case domain.RoleAstrologer, domain.RolePriest:
		svc, _ := actor.Role.ServiceType()
		if b.ServiceType == svc && actor.Is(b.AssignedTo) {
			return true
		}
		// a provider may also have booked for themselves
		return actor.Is(b.RequesterID)
	case domain.RoleUser:
		return actor.Is(b.RequesterID)
	default:
		return false
	}
}

// BookingView is a booking as rendered for one actor.
type BookingView struct {
	domain.Booking
	Redacted  bool                   `json:"redacted"`
	CanClaim  bool                   `json:"can_claim"`
	NextSteps []domain.BookingStatus `json:"allowed_statuses"`
}

// Redact returns the view of b for actor, with sensitive fields cleared when
// the actor may not see full details.
func Redact(actor domain.Actor, b *domain.Booking) BookingView {
	v := BookingView{
		Booking:   *b.Clone(),
		CanClaim:  CanClaim(actor, b),
		NextSteps: AllowedTransitions(actor, b),
	}
	if CanViewFullDetails(actor, b) {
		return v
	}

	v.Redacted = true
	v.Name, v.Email, v.Phone = "", "", ""
	v.DOB, v.BirthTime, v.BirthState = "", "", ""
	v.Description = ""
	v.FamilyProfileID = nil
	v.AISummary = nil
	return v
}

func RedactAll(actor domain.Actor, bs []domain.Booking) []BookingView {
	out := make([]BookingView, 0, len(bs))
	for i := range bs {
		out = append(out, Redact(actor, &bs[i]))
	}
	return out
}
