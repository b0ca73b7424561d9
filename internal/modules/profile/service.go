package profile

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"astroseva/internal/domain"
	"astroseva/internal/modules/identity"
	"astroseva/internal/pkg/validator"
)

type Service struct {
	profiles ProfileStore
	roles    RoleRefresher
}

func NewService(profiles ProfileStore, roles RoleRefresher) *Service {
	return &Service{profiles: profiles, roles: roles}
}

// Get returns the caller's profile. A missing row is reported as an empty
// profile rather than an error.
func (s *Service) Get(ctx context.Context, actorID string) (*ProfileView, error) {
	p, err := s.profiles.Get(ctx, actorID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		p = &domain.Profile{ID: actorID}
	}
	return &ProfileView{Profile: p, NeedsBirthDetails: p.NeedsBirthDetails()}, nil
}

func (s *Service) Update(ctx context.Context, actorID string, req UpdateProfileRequest) (*ProfileView, error) {
	if fields := validator.Validate(req); fields != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidationFailed, fields)
	}

	p := &domain.Profile{
		ID:         actorID,
		FullName:   strings.TrimSpace(req.FullName),
		ZodiacSign: strings.TrimSpace(req.ZodiacSign),
		BirthDate:  req.BirthDate,
		BirthTime:  req.BirthTime,
		BirthPlace: strings.TrimSpace(req.BirthPlace),
	}
	if err := s.profiles.Upsert(ctx, p); err != nil {
		return nil, err
	}
	return s.Get(ctx, actorID)
}

// RefreshRole re-reads the caller's role, bypassing the role cache.
func (s *Service) RefreshRole(ctx context.Context, actorID string) (identity.Resolution, error) {
	return s.roles.Refresh(ctx, actorID)
}
