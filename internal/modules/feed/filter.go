package feed

import (
	"astroseva/internal/domain"
	"astroseva/internal/modules/booking"
)

// eventFor shapes a store change for one actor. Rows outside the actor's
// listing are dropped, except that a provider who could see an open booking
// is told to forget it once another provider claims it.
func eventFor(actor domain.Actor, change domain.BookingChange) (*WSServerMessage, bool) {
	row := change.Booking
	if row == nil || actor.Anonymous() {
		return nil, false
	}
	if booking.Listable(actor, row) {
		return NewChangeEvent(change.Type, booking.Redact(actor, row)), true
	}

	if change.Type != domain.ChangeUpdate {
		return nil, false
	}
	svc, ok := actor.Role.ServiceType()
	if !ok || row.ServiceType != svc {
		return nil, false
	}
	tombstone := booking.BookingView{Redacted: true}
	tombstone.ID = row.ID
	tombstone.ServiceType = row.ServiceType
	tombstone.Status = row.Status
	tombstone.UpdatedAt = row.UpdatedAt
	return NewChangeEvent(domain.ChangeDelete, tombstone), true
}
