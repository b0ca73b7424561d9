package booking

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"gorm.io/gorm"

	"astroseva/internal/domain"
	"astroseva/internal/repository"
)

const defaultEnrichTimeout = 20 * time.Second

type Service struct {
	bookings   BookingStore
	families   FamilyProfileReader
	roles      RoleResolver
	summarizer Summarizer
	metrics    Recorder

	enrichTimeout time.Duration
}

func NewService(bookings BookingStore, families FamilyProfileReader, roles RoleResolver, summarizer Summarizer) *Service {
	return &Service{
		bookings:      bookings,
		families:      families,
		roles:         roles,
		summarizer:    summarizer,
		enrichTimeout: defaultEnrichTimeout,
	}
}

func (s *Service) WithMetrics(m Recorder) *Service {
	s.metrics = m
	return s
}

// ConfirmResult is the outcome of ConfirmAndAssign. SummaryGenerated is false
// whenever enrichment was skipped or failed; the claim itself still stands.
type ConfirmResult struct {
	Booking          *domain.Booking `json:"booking"`
	SummaryGenerated bool            `json:"summary_generated"`
}

// ConfirmAndAssign lets a provider take ownership of a booking and confirm it
// in one step, then attaches a best-effort summary.
func (s *Service) ConfirmAndAssign(ctx context.Context, bookingID string, actor domain.Actor) (*ConfirmResult, error) {
	svc, ok := actor.Role.ServiceType()
	if !ok || actor.Anonymous() {
		return nil, fmt.Errorf("confirm booking %s as %s: %w", bookingID, actor.Role, ErrPermissionDenied)
	}

	b, err := s.fetch(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if b.ServiceType != svc {
		return nil, fmt.Errorf("confirm booking %s: %w", bookingID, ErrNotFound)
	}
	if b.IsAssigned() && !actor.Is(b.AssignedTo) {
		s.recordClaim("lost")
		return nil, fmt.Errorf("confirm booking %s: %w", bookingID, ErrAlreadyAssigned)
	}
	if b.Status != domain.BookingConfirmed && !ProviderCanTransition(b.Status, domain.BookingConfirmed) {
		return nil, fmt.Errorf("confirm booking %s from %s: %w", bookingID, b.Status, ErrValidationFailed)
	}

	claimed, err := s.claim(ctx, bookingID, actor.ID, b.Status, domain.BookingConfirmed)
	if err != nil {
		return nil, err
	}
	log.Printf("booking confirmed: id=%s actor_id=%s role=%s", bookingID, actor.ID, actor.Role)

	result := &ConfirmResult{Booking: claimed}
	if updated, ok := s.enrich(ctx, claimed); ok {
		result.Booking = updated
		result.SummaryGenerated = true
	}
	return result, nil
}

// UpdateStatus moves a booking to newStatus on behalf of a provider or admin.
// A provider acting on an unassigned booking claims it as a side effect.
func (s *Service) UpdateStatus(ctx context.Context, bookingID string, newStatus domain.BookingStatus, actor domain.Actor) (*domain.Booking, error) {
	switch actor.Role {
	case domain.RoleAdmin, domain.RoleAstrologer, domain.RolePriest:
	case domain.RoleUser:
		return nil, fmt.Errorf("update booking %s: %w", bookingID, ErrPermissionDenied)
	default:
		return nil, fmt.Errorf("update booking %s: %w", bookingID, ErrPermissionDenied)
	}
	if actor.Anonymous() {
		return nil, fmt.Errorf("update booking %s: %w", bookingID, ErrPermissionDenied)
	}
	if !newStatus.Valid() {
		return nil, fmt.Errorf("unknown status %q: %w", newStatus, ErrValidationFailed)
	}

	b, err := s.fetch(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	if actor.Role == domain.RoleAdmin {
		if b.Status == newStatus {
			return b, nil
		}
		if !AdminCanTransition(b, newStatus) {
			return nil, fmt.Errorf("update booking %s to %s: %w", bookingID, newStatus, ErrValidationFailed)
		}
		updated, err := s.bookings.UpdateStatus(ctx, bookingID, b.Status, newStatus)
		if err != nil {
			return nil, s.storeErr("update booking "+bookingID, err)
		}
		s.recordStatus(newStatus)
		log.Printf("booking status override: id=%s from=%s to=%s actor_id=%s", bookingID, b.Status, newStatus, actor.ID)
		return updated, nil
	}

	if !CanClaim(actor, b) {
		return nil, fmt.Errorf("update booking %s: %w", bookingID, ErrPermissionDenied)
	}
	if b.Status == newStatus {
		return b, nil
	}
	if !ProviderCanTransition(b.Status, newStatus) {
		return nil, fmt.Errorf("update booking %s from %s to %s: %w", bookingID, b.Status, newStatus, ErrValidationFailed)
	}

	// Claim also covers bookings the actor already holds: its guard keeps a
	// concurrent admin reassignment from being overwritten.
	updated, err := s.claim(ctx, bookingID, actor.ID, b.Status, newStatus)
	if err != nil {
		return nil, err
	}
	s.recordStatus(newStatus)
	log.Printf("booking status changed: id=%s from=%s to=%s actor_id=%s", bookingID, b.Status, newStatus, actor.ID)
	return updated, nil
}

// Cancel lets the requester or an admin cancel a booking that has not
// reached a terminal state. Cancelling a cancelled booking is a no-op.
func (s *Service) Cancel(ctx context.Context, bookingID string, actor domain.Actor) (*domain.Booking, error) {
	b, err := s.fetch(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if actor.Role != domain.RoleAdmin && !actor.Is(b.RequesterID) {
		return nil, fmt.Errorf("cancel booking %s: %w", bookingID, ErrPermissionDenied)
	}
	if b.Status == domain.BookingCancelled {
		return b, nil
	}
	if !RequesterCanTransition(b.Status, domain.BookingCancelled) {
		return nil, fmt.Errorf("cancel booking %s in %s: %w", bookingID, b.Status, ErrValidationFailed)
	}

	updated, err := s.bookings.UpdateStatus(ctx, bookingID, b.Status, domain.BookingCancelled)
	if err != nil {
		return nil, s.storeErr("cancel booking "+bookingID, err)
	}
	s.recordStatus(domain.BookingCancelled)
	log.Printf("booking cancelled: id=%s actor_id=%s role=%s", bookingID, actor.ID, actor.Role)
	return updated, nil
}

// Assign is the admin override: it (re)assigns a booking to any provider
// whose role matches the booking's service type, regardless of a prior claim.
func (s *Service) Assign(ctx context.Context, bookingID, providerID string, actor domain.Actor) (*domain.Booking, error) {
	if actor.Role != domain.RoleAdmin {
		return nil, fmt.Errorf("assign booking %s: %w", bookingID, ErrPermissionDenied)
	}
	providerID = strings.TrimSpace(providerID)
	if providerID == "" {
		return nil, fmt.Errorf("assign booking %s: empty provider: %w", bookingID, ErrValidationFailed)
	}

	b, err := s.fetch(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if b.Status.Terminal() {
		return nil, fmt.Errorf("assign booking %s in %s: %w", bookingID, b.Status, ErrValidationFailed)
	}

	role, err := s.roles.ResolveRole(ctx, providerID)
	if err != nil {
		return nil, fmt.Errorf("resolve provider %s: %v: %w", providerID, err, ErrUpstreamUnavailable)
	}
	if role != b.ServiceType.ProviderRole() {
		return nil, fmt.Errorf("assign %s booking to %s %s: %w", b.ServiceType, role, providerID, ErrValidationFailed)
	}

	status := b.Status
	if status == domain.BookingPending {
		status = domain.BookingAssigned
	}
	updated, err := s.bookings.Assign(ctx, bookingID, providerID, b.Status, status)
	if err != nil {
		return nil, s.storeErr("assign booking "+bookingID, err)
	}
	s.recordClaim("admin")
	log.Printf("booking reassigned: id=%s from=%s to=%s actor_id=%s", bookingID, valueOr(b.AssignedTo, "-"), providerID, actor.ID)
	return updated, nil
}

// Get returns a single booking if the actor is allowed to see it at all:
// the same rows ListFor would include.
func (s *Service) Get(ctx context.Context, bookingID string, actor domain.Actor) (*BookingView, error) {
	b, err := s.fetch(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !Listable(actor, b) {
		return nil, fmt.Errorf("get booking %s: %w", bookingID, ErrNotFound)
	}
	v := Redact(actor, b)
	return &v, nil
}

func (s *Service) fetch(ctx context.Context, id string) (*domain.Booking, error) {
	b, err := s.bookings.GetByID(ctx, id)
	if err != nil {
		return nil, s.storeErr("fetch booking "+id, err)
	}
	return b, nil
}

// claim writes the transition decided against a row read in status from.
func (s *Service) claim(ctx context.Context, id, actorID string, from, to domain.BookingStatus) (*domain.Booking, error) {
	b, err := s.bookings.Claim(ctx, id, actorID, from, to)
	if errors.Is(err, repository.ErrNoRowsAffected) {
		s.recordClaim("lost")
		return nil, fmt.Errorf("claim booking %s: %w", id, ErrAlreadyAssigned)
	}
	if err != nil {
		return nil, s.storeErr("claim booking "+id, err)
	}
	s.recordClaim("won")
	return b, nil
}

// enrich attaches a summary to b. It never returns an error: failures are
// logged and reported through the second return value.
func (s *Service) enrich(ctx context.Context, b *domain.Booking) (*domain.Booking, bool) {
	if s.summarizer == nil || !s.summarizer.Enabled() {
		s.recordEnrichment("skipped")
		return nil, false
	}
	text := b.ProblemText()
	if text == "" {
		s.recordEnrichment("skipped")
		return nil, false
	}

	sctx, cancel := context.WithTimeout(ctx, s.enrichTimeout)
	defer cancel()

	summary, err := s.summarizer.Summarize(sctx, text)
	if err == nil && strings.TrimSpace(summary) == "" {
		err = errors.New("empty summary")
	}
	if err != nil {
		s.recordEnrichment("failed")
		log.Printf("booking summary: id=%s: %v", b.ID, fmt.Errorf("%w: %v", ErrEnrichmentFailed, err))
		return nil, false
	}

	updated, err := s.bookings.SetSummary(ctx, b.ID, strings.TrimSpace(summary))
	if err != nil {
		s.recordEnrichment("failed")
		log.Printf("booking summary: id=%s: store: %v", b.ID, err)
		return nil, false
	}
	s.recordEnrichment("generated")
	return updated, true
}

func (s *Service) storeErr(op string, err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	if errors.Is(err, repository.ErrStaleStatus) {
		return fmt.Errorf("%s: status changed concurrently: %w", op, ErrValidationFailed)
	}
	return fmt.Errorf("%s: %v: %w", op, err, ErrUpstreamUnavailable)
}

func (s *Service) recordClaim(outcome string) {
	if s.metrics != nil {
		s.metrics.Claim(outcome)
	}
}

func (s *Service) recordStatus(status domain.BookingStatus) {
	if s.metrics != nil {
		s.metrics.StatusChange(string(status))
	}
}

func (s *Service) recordEnrichment(outcome string) {
	if s.metrics != nil {
		s.metrics.Enrichment(outcome)
	}
}

func valueOr(p *string, def string) string {
	if p == nil || *p == "" {
		return def
	}
	return *p
}
