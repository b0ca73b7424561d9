package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"astroseva/internal/domain"
)

// FamilyProfileRepository scopes every query by owner; a profile owned by
// someone else is indistinguishable from a missing one.
type FamilyProfileRepository struct {
	db *gorm.DB
}

func NewFamilyProfileRepository(db *gorm.DB) *FamilyProfileRepository {
	return &FamilyProfileRepository{db: db}
}

func (r *FamilyProfileRepository) ListByUser(ctx context.Context, userID string) ([]domain.FamilyProfile, error) {
	var out []domain.FamilyProfile
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at DESC").Find(&out).Error
	return out, err
}

func (r *FamilyProfileRepository) Get(ctx context.Context, userID, id string) (*domain.FamilyProfile, error) {
	var fp domain.FamilyProfile
	if err := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).First(&fp).Error; err != nil {
		return nil, err
	}
	return &fp, nil
}

func (r *FamilyProfileRepository) Create(ctx context.Context, fp *domain.FamilyProfile) error {
	if fp.ID == "" {
		fp.ID = uuid.NewString()
	}
	return r.db.WithContext(ctx).Create(fp).Error
}

func (r *FamilyProfileRepository) Update(ctx context.Context, fp *domain.FamilyProfile) error {
	tx := r.db.WithContext(ctx).Model(&domain.FamilyProfile{}).
		Where("id = ? AND user_id = ?", fp.ID, fp.UserID).
		Updates(map[string]any{
			"full_name":   fp.FullName,
			"relation":    fp.Relation,
			"birth_date":  fp.BirthDate,
			"birth_time":  fp.BirthTime,
			"birth_place": fp.BirthPlace,
			"updated_at":  time.Now().UTC(),
		})
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *FamilyProfileRepository) Delete(ctx context.Context, userID, id string) error {
	tx := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).Delete(&domain.FamilyProfile{})
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
