package admin

import (
	"context"
	"errors"
	"log"

	"gorm.io/gorm"

	"astroseva/internal/domain"
)

type Service struct {
	users    UserRepository
	roles    RoleRepository
	profiles ProfileRepository
	cache    RoleInvalidator
}

func NewService(users UserRepository, roles RoleRepository, profiles ProfileRepository, cache RoleInvalidator) *Service {
	return &Service{users: users, roles: roles, profiles: profiles, cache: cache}
}

// ListUsers returns a page of users. Users without a role row are reported
// with the default user role.
func (s *Service) ListUsers(ctx context.Context, page, limit int) (*UserListResponse, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	users, total, err := s.users.List(ctx, limit, (page-1)*limit)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(users))
	for _, u := range users {
		ids = append(ids, u.ID)
	}
	roles, err := s.roles.ListFor(ctx, ids)
	if err != nil {
		return nil, err
	}
	profiles, err := s.profiles.ListByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	out := make([]UserSummary, 0, len(users))
	for _, u := range users {
		role, ok := roles[u.ID]
		if !ok || !role.Valid() {
			role = domain.RoleUser
		}
		sum := UserSummary{ID: u.ID, Email: u.Email, Role: role, CreatedAt: u.CreatedAt}
		if p, ok := profiles[u.ID]; ok {
			sum.Profile = &p
		}
		out = append(out, sum)
	}
	return &UserListResponse{Users: out, Total: int(total), Page: page, Limit: limit}, nil
}

func (s *Service) SetRole(ctx context.Context, userID string, raw string, adminID string) (domain.Role, error) {
	role, ok := domain.ParseRole(raw)
	if !ok {
		return "", ErrInvalidRole
	}
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrUserNotFound
		}
		return "", err
	}
	if err := s.roles.Set(ctx, userID, role); err != nil {
		return "", err
	}
	s.cache.Invalidate(ctx, userID)
	log.Printf("admin: role changed user_id=%s role=%s by=%s", userID, role, adminID)
	return role, nil
}

func (s *Service) SetVerified(ctx context.Context, userID string, verified bool) (*domain.Profile, error) {
	p, err := s.profiles.SetVerified(ctx, userID, verified)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return p, nil
}
