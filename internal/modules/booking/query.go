package booking

import (
	"context"
	"fmt"
	"log"

	"astroseva/internal/domain"
	"astroseva/internal/repository"
)

// ListResult is a role-shaped listing. Err is set, with Bookings empty, when
// the store could not be read; callers render an empty-with-error state.
type ListResult struct {
	Bookings []BookingView
	Err      error
}

// FilterFor returns the store predicate for actor's listing. ok is false when
// the actor may list nothing.
func FilterFor(actor domain.Actor) (repository.BookingFilter, bool) {
	if actor.Anonymous() {
		return repository.BookingFilter{}, false
	}
	switch actor.Role {
	case domain.RoleAdmin:
		return repository.BookingFilter{}, true
	case domain.RoleAstrologer, domain.RolePriest:
		svc, _ := actor.Role.ServiceType()
		return repository.BookingFilter{ServiceType: svc, OpenOrAssignedTo: actor.ID}, true
	case domain.RoleUser:
		return repository.BookingFilter{RequesterID: actor.ID}, true
	default:
		return repository.BookingFilter{}, false
	}
}

// Listable reports whether b belongs to actor's listing. It is the in-memory
// twin of FilterFor, used for single reads and live feed events.
func Listable(actor domain.Actor, b *domain.Booking) bool {
	f, ok := FilterFor(actor)
	if !ok || b == nil {
		return false
	}
	if f.ServiceType != "" && b.ServiceType != f.ServiceType {
		return false
	}
	if f.RequesterID != "" && !actor.Is(b.RequesterID) {
		return false
	}
	if f.OpenOrAssignedTo != "" && b.IsAssigned() && !actor.Is(b.AssignedTo) {
		return false
	}
	return true
}

func (s *Service) ListFor(ctx context.Context, actor domain.Actor) ListResult {
	f, ok := FilterFor(actor)
	if !ok {
		return ListResult{Bookings: []BookingView{}}
	}

	rows, err := s.bookings.List(ctx, f)
	if err != nil {
		log.Printf("booking list failed: actor_id=%s role=%s: %v", actor.ID, actor.Role, err)
		return ListResult{
			Bookings: []BookingView{},
			Err:      fmt.Errorf("list bookings: %v: %w", err, ErrUpstreamUnavailable),
		}
	}
	return ListResult{Bookings: RedactAll(actor, rows)}
}
