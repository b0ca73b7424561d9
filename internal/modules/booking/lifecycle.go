package booking

import "astroseva/internal/domain"

// providerTransitions lists the moves an eligible astrologer or priest may
// make. Terminal states have no outgoing edges.
var providerTransitions = map[domain.BookingStatus][]domain.BookingStatus{
	domain.BookingPending:   {domain.BookingAssigned, domain.BookingConfirmed},
	domain.BookingAssigned:  {domain.BookingConfirmed, domain.BookingAccepted, domain.BookingRejected, domain.BookingCompleted},
	domain.BookingConfirmed: {domain.BookingAccepted, domain.BookingRejected, domain.BookingCompleted},
	domain.BookingAccepted:  {domain.BookingCompleted},
}

func ProviderCanTransition(from, to domain.BookingStatus) bool {
	for _, s := range providerTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// RequesterCanTransition allows only cancellation, from any pre-terminal state.
func RequesterCanTransition(from, to domain.BookingStatus) bool {
	return to == domain.BookingCancelled && !from.Terminal()
}

// AdminCanTransition allows any valid status except moving an assigned
// booking back to pending, which would leave it claimed but unclaimable.
func AdminCanTransition(b *domain.Booking, to domain.BookingStatus) bool {
	if !to.Valid() {
		return false
	}
	return !(to == domain.BookingPending && b.IsAssigned())
}

// AllowedTransitions lists the statuses actor may move b to.
func AllowedTransitions(actor domain.Actor, b *domain.Booking) []domain.BookingStatus {
	out := []domain.BookingStatus{}
	switch actor.Role {
	case domain.RoleAdmin:
		for _, s := range allStatuses {
			if s != b.Status && AdminCanTransition(b, s) {
				out = append(out, s)
			}
		}
		return out
	case domain.RoleAstrologer, domain.RolePriest:
		if CanClaim(actor, b) {
			out = append(out, providerTransitions[b.Status]...)
		}
	case domain.RoleUser:
	default:
		return out
	}
	if actor.Is(b.RequesterID) && RequesterCanTransition(b.Status, domain.BookingCancelled) {
		out = append(out, domain.BookingCancelled)
	}
	return out
}

var allStatuses = []domain.BookingStatus{
	domain.BookingPending,
	domain.BookingAssigned,
	domain.BookingConfirmed,
	domain.BookingAccepted,
	domain.BookingRejected,
	domain.BookingCompleted,
	domain.BookingCancelled,
}
