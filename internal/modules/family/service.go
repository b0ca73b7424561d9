package family

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"astroseva/internal/domain"
	"astroseva/internal/pkg/validator"
)

type Service struct {
	store Store
}

func NewService(store Store) *Service {
	return &Service{store: store}
}

func (s *Service) List(ctx context.Context, userID string) ([]domain.FamilyProfile, error) {
	out, err := s.store.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []domain.FamilyProfile{}
	}
	return out, nil
}

func (s *Service) Create(ctx context.Context, userID string, req FamilyProfileRequest) (*domain.FamilyProfile, error) {
	if err := validate(req); err != nil {
		return nil, err
	}
	fp := fromRequest(req)
	fp.UserID = userID
	if err := s.store.Create(ctx, fp); err != nil {
		return nil, err
	}
	return fp, nil
}

func (s *Service) Update(ctx context.Context, userID, id string, req FamilyProfileRequest) (*domain.FamilyProfile, error) {
	if err := validate(req); err != nil {
		return nil, err
	}
	fp := fromRequest(req)
	fp.ID, fp.UserID = id, userID
	if err := s.store.Update(ctx, fp); err != nil {
		return nil, notFound(err)
	}
	updated, err := s.store.Get(ctx, userID, id)
	if err != nil {
		return nil, notFound(err)
	}
	return updated, nil
}

func (s *Service) Delete(ctx context.Context, userID, id string) error {
	return notFound(s.store.Delete(ctx, userID, id))
}

func validate(req FamilyProfileRequest) error {
	if fields := validator.Validate(req); fields != nil {
		return fmt.Errorf("%w: %v", ErrValidationFailed, fields)
	}
	if req.Relation != "" && !domain.IsFamilyRelation(req.Relation) {
		return fmt.Errorf("%w: relation must be one of %s", ErrValidationFailed, strings.Join(domain.FamilyRelations, ", "))
	}
	return nil
}

func fromRequest(req FamilyProfileRequest) *domain.FamilyProfile {
	return &domain.FamilyProfile{
		FullName:   strings.TrimSpace(req.FullName),
		Relation:   req.Relation,
		BirthDate:  req.BirthDate,
		BirthTime:  req.BirthTime,
		BirthPlace: strings.TrimSpace(req.BirthPlace),
	}
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
