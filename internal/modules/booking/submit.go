package booking

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"strings"

	"gorm.io/gorm"

	"astroseva/internal/domain"
	"astroseva/internal/pkg/validator"
)

// FieldErrors maps request fields to the rule they failed.
type FieldErrors map[string]string

func (e FieldErrors) Error() string {
	keys := make([]string, 0, len(e))
	for k := range e {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+"="+e[k])
	}
	return "invalid fields: " + strings.Join(parts, ", ")
}

func (e FieldErrors) Unwrap() error { return ErrValidationFailed }

// Submit creates a pending, unassigned booking. Anonymous submissions are
// accepted; an authenticated actor becomes the requester.
func (s *Service) Submit(ctx context.Context, req SubmitBookingRequest, actor domain.Actor) (*domain.Booking, error) {
	if fields := validator.Validate(req); fields != nil {
		return nil, FieldErrors(fields)
	}

	b := &domain.Booking{
		ServiceType:       domain.ServiceType(req.ServiceType),
		Status:            domain.BookingPending,
		Name:              strings.TrimSpace(req.Name),
		Email:             strings.TrimSpace(req.Email),
		Phone:             req.Phone,
		ProblemCategory:   req.ProblemCategory,
		DependentCategory: req.DependentCategory,
		PoojaType:         req.PoojaType,
		PreferredSlot:     req.PreferredSlot,
		DOB:               req.DOB,
		BirthTime:         req.BirthTime,
		BirthState:        strings.TrimSpace(req.BirthState),
		Description:       strings.TrimSpace(req.Description),
	}
	if !actor.Anonymous() {
		b.RequesterID = domain.StringPtr(actor.ID)
	}

	if id := strings.TrimSpace(req.FamilyProfileID); id != "" {
		if actor.Anonymous() {
			return nil, fmt.Errorf("family profile requires sign-in: %w", ErrPermissionDenied)
		}
		fp, err := s.families.Get(ctx, actor.ID, id)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("family profile %s: %w", id, ErrNotFound)
		}
		if err != nil {
			return nil, fmt.Errorf("family profile %s: %v: %w", id, err, ErrUpstreamUnavailable)
		}
		prefill(b, fp)
	}

	if fields := checkBookingFields(b); len(fields) > 0 {
		return nil, fields
	}

	if err := s.bookings.Create(ctx, b); err != nil {
		return nil, s.storeErr("create booking", err)
	}
	log.Printf("booking submitted: id=%s service=%s requester_id=%s", b.ID, b.ServiceType, valueOr(b.RequesterID, "-"))
	return b, nil
}

// prefill copies natal details from a family profile into empty booking fields.
func prefill(b *domain.Booking, fp *domain.FamilyProfile) {
	b.FamilyProfileID = domain.StringPtr(fp.ID)
	if b.Name == "" {
		b.Name = fp.FullName
	}
	if b.DOB == "" {
		b.DOB = fp.BirthDate
	}
	if b.BirthTime == "" {
		b.BirthTime = fp.BirthTime
	}
	if b.BirthState == "" {
		b.BirthState = fp.BirthPlace
	}
}

func checkBookingFields(b *domain.Booking) FieldErrors {
	fields := FieldErrors{}
	if b.Name == "" {
		fields["Name"] = "required"
	}
	if b.DOB == "" {
		fields["DOB"] = "required"
	}
	if b.BirthTime == "" {
		fields["BirthTime"] = "required"
	}
	if b.BirthState == "" {
		fields["BirthState"] = "required"
	}
	if !domain.IsPreferredSlot(b.PreferredSlot) {
		fields["PreferredSlot"] = "oneof"
	}

	switch b.ServiceType {
	case domain.ServiceConsultation:
		if !domain.IsProblemCategory(b.ProblemCategory) {
			fields["ProblemCategory"] = "oneof"
		} else if !domain.IsDependentCategory(b.ProblemCategory, b.DependentCategory) {
			fields["DependentCategory"] = "oneof"
		}
		if b.PoojaType != "" {
			fields["PoojaType"] = "excluded"
		}
	case domain.ServicePooja:
		if !domain.IsPoojaType(b.PoojaType) {
			fields["PoojaType"] = "oneof"
		}
		if b.ProblemCategory != "" && !domain.IsProblemCategory(b.ProblemCategory) {
			fields["ProblemCategory"] = "oneof"
		}
	}
	return fields
}
