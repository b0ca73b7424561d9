package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"astroseva/internal/domain"
)

// RoleRepository reads and writes the authoritative user_roles table.
type RoleRepository struct {
	db *gorm.DB
}

func NewRoleRepository(db *gorm.DB) *RoleRepository {
	return &RoleRepository{db: db}
}

// Get returns gorm.ErrRecordNotFound when the user has no role row.
func (r *RoleRepository) Get(ctx context.Context, userID string) (domain.Role, error) {
	var ur domain.UserRole
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&ur).Error; err != nil {
		return "", err
	}
	return ur.Role, nil
}

func (r *RoleRepository) Set(ctx context.Context, userID string, role domain.Role) error {
	ur := domain.UserRole{UserID: userID, Role: role, UpdatedAt: time.Now().UTC()}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"role", "updated_at"}),
	}).Create(&ur).Error
}

// ListFor returns the role rows for the given users keyed by user id.
// Users without a row are absent from the map.
func (r *RoleRepository) ListFor(ctx context.Context, userIDs []string) (map[string]domain.Role, error) {
	out := make(map[string]domain.Role, len(userIDs))
	if len(userIDs) == 0 {
		return out, nil
	}
	var rows []domain.UserRole
	if err := r.db.WithContext(ctx).Where("user_id IN ?", userIDs).Find(&rows).Error; err != nil {
		return nil, err
	}
	for _, ur := range rows {
		out[ur.UserID] = ur.Role
	}
	return out, nil
}
