package booking

import (
	"context"

	"astroseva/internal/domain"
	"astroseva/internal/repository"
)

// BookingStore is the persistence contract. Claim, Assign and UpdateStatus
// are single conditional writes that only apply while the row is still in
// status from. A failed guard is repository.ErrNoRowsAffected when another
// actor holds the row and repository.ErrStaleStatus otherwise.
type BookingStore interface {
	Create(ctx context.Context, b *domain.Booking) error
	GetByID(ctx context.Context, id string) (*domain.Booking, error)
	List(ctx context.Context, f repository.BookingFilter) ([]domain.Booking, error)
	Claim(ctx context.Context, id, actorID string, from, to domain.BookingStatus) (*domain.Booking, error)
	Assign(ctx context.Context, id, providerID string, from, to domain.BookingStatus) (*domain.Booking, error)
	UpdateStatus(ctx context.Context, id string, from, to domain.BookingStatus) (*domain.Booking, error)
	SetSummary(ctx context.Context, id string, summary string) (*domain.Booking, error)
}

type FamilyProfileReader interface {
	Get(ctx context.Context, userID, id string) (*domain.FamilyProfile, error)
}

type RoleResolver interface {
	ResolveRole(ctx context.Context, actorID string) (domain.Role, error)
}

// Summarizer produces a short summary of a consultation request.
// Enabled reports whether it is configured at all.
type Summarizer interface {
	Enabled() bool
	Summarize(ctx context.Context, text string) (string, error)
}

type Recorder interface {
	Claim(outcome string)
	StatusChange(status string)
	Enrichment(outcome string)
}
