package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"astroseva/internal/domain"
)

var (
	// ErrNoRowsAffected is returned by conditional writes whose guard did not match.
	ErrNoRowsAffected = errors.New("no rows affected")
	// ErrStaleStatus is returned by booking writes made against a status the
	// row no longer has.
	ErrStaleStatus = errors.New("booking status changed")
)

// ChangeSink receives a row-level event after every committed booking write.
type ChangeSink interface {
	PublishBookingChange(change domain.BookingChange)
}

type BookingRepository struct {
	db    *gorm.DB
	sinks []ChangeSink
}

func NewBookingRepository(db *gorm.DB, sinks ...ChangeSink) *BookingRepository {
	return &BookingRepository{db: db, sinks: sinks}
}

// AddSink registers a sink after construction, for consumers (such as the
// live feed) that need the repository themselves.
func (r *BookingRepository) AddSink(s ChangeSink) {
	r.sinks = append(r.sinks, s)
}

type bookingModel struct {
	ID                string    `gorm:"column:id;primaryKey;size:36"`
	ServiceType       string    `gorm:"column:service_type;size:16;not null;index"`
	RequesterID       *string   `gorm:"column:requester_id;size:36;index"`
	FamilyProfileID   *string   `gorm:"column:family_profile_id;size:36"`
	Status            string    `gorm:"column:status;size:16;not null"`
	AssignedTo        *string   `gorm:"column:assigned_to;size:36;index"`
	Name              string    `gorm:"column:name"`
	Email             string    `gorm:"column:email"`
	Phone             string    `gorm:"column:phone"`
	ProblemCategory   *string   `gorm:"column:problem_category"`
	DependentCategory *string   `gorm:"column:dependent_category"`
	PoojaType         *string   `gorm:"column:pooja_type"`
	PreferredSlot     *string   `gorm:"column:preferred_slot"`
	DOB               *string   `gorm:"column:dob"`
	BirthTime         *string   `gorm:"column:birth_time"`
	BirthState        *string   `gorm:"column:birth_state"`
	Description       *string   `gorm:"column:description"`
	AISummary         *string   `gorm:"column:ai_summary"`
	CreatedAt         time.Time `gorm:"column:created_at"`
	UpdatedAt         time.Time `gorm:"column:updated_at"`
}

func (bookingModel) TableName() string { return "bookings" }

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func toDomainBooking(m bookingModel) *domain.Booking {
	return &domain.Booking{
		ID:                m.ID,
		ServiceType:       domain.ServiceType(m.ServiceType),
		RequesterID:       m.RequesterID,
		FamilyProfileID:   m.FamilyProfileID,
		Status:            domain.BookingStatus(m.Status),
		AssignedTo:        m.AssignedTo,
		Name:              m.Name,
		Email:             m.Email,
		Phone:             m.Phone,
		ProblemCategory:   deref(m.ProblemCategory),
		DependentCategory: deref(m.DependentCategory),
		PoojaType:         deref(m.PoojaType),
		PreferredSlot:     deref(m.PreferredSlot),
		DOB:               deref(m.DOB),
		BirthTime:         deref(m.BirthTime),
		BirthState:        deref(m.BirthState),
		Description:       deref(m.Description),
		AISummary:         m.AISummary,
		CreatedAt:         m.CreatedAt,
		UpdatedAt:         m.UpdatedAt,
	}
}

func toBookingModel(b *domain.Booking) bookingModel {
	return bookingModel{
		ID:                b.ID,
		ServiceType:       string(b.ServiceType),
		RequesterID:       b.RequesterID,
		FamilyProfileID:   b.FamilyProfileID,
		Status:            string(b.Status),
		AssignedTo:        b.AssignedTo,
		Name:              b.Name,
		Email:             b.Email,
		Phone:             b.Phone,
		ProblemCategory:   domain.StringPtr(b.ProblemCategory),
		DependentCategory: domain.StringPtr(b.DependentCategory),
		PoojaType:         domain.StringPtr(b.PoojaType),
		PreferredSlot:     domain.StringPtr(b.PreferredSlot),
		DOB:               domain.StringPtr(b.DOB),
		BirthTime:         domain.StringPtr(b.BirthTime),
		BirthState:        domain.StringPtr(b.BirthState),
		Description:       domain.StringPtr(b.Description),
		AISummary:         b.AISummary,
		CreatedAt:         b.CreatedAt,
		UpdatedAt:         b.UpdatedAt,
	}
}

func (r *BookingRepository) publish(t domain.ChangeType, b *domain.Booking) {
	for _, s := range r.sinks {
		s.PublishBookingChange(domain.BookingChange{Type: t, Booking: b.Clone()})
	}
}

func (r *BookingRepository) Create(ctx context.Context, b *domain.Booking) error {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	b.CreatedAt, b.UpdatedAt = now, now

	m := toBookingModel(b)
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		return err
	}
	*b = *toDomainBooking(m)
	r.publish(domain.ChangeInsert, b)
	return nil
}

func (r *BookingRepository) GetByID(ctx context.Context, id string) (*domain.Booking, error) {
	var m bookingModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		return nil, err
	}
	return toDomainBooking(m), nil
}

// BookingFilter is a conjunction of optional predicates. Zero value matches all rows.
type BookingFilter struct {
	ServiceType domain.ServiceType
	RequesterID string
	// OpenOrAssignedTo matches rows that are unassigned or assigned to this id.
	OpenOrAssignedTo string
}

func (r *BookingRepository) List(ctx context.Context, f BookingFilter) ([]domain.Booking, error) {
	q := r.db.WithContext(ctx).Model(&bookingModel{})
	if f.ServiceType != "" {
		q = q.Where("service_type = ?", string(f.ServiceType))
	}
	if f.RequesterID != "" {
		q = q.Where("requester_id = ?", f.RequesterID)
	}
	if f.OpenOrAssignedTo != "" {
		q = q.Where("(assigned_to IS NULL OR assigned_to = ?)", f.OpenOrAssignedTo)
	}

	var rows []bookingModel
	if err := q.Order("created_at DESC").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]domain.Booking, 0, len(rows))
	for _, m := range rows {
		out = append(out, *toDomainBooking(m))
	}
	return out, nil
}

// Claim assigns the booking to actorID and moves it from one status to
// another in a single conditional statement. It only matches rows still in
// from that are unassigned or already assigned to actorID. When the guard
// fails the error is ErrNoRowsAffected if another actor holds the row and
// ErrStaleStatus if only the status moved.
func (r *BookingRepository) Claim(ctx context.Context, id, actorID string, from, to domain.BookingStatus) (*domain.Booking, error) {
	tx := r.db.WithContext(ctx).Model(&bookingModel{}).
		Where("id = ? AND status = ? AND (assigned_to IS NULL OR assigned_to = ?)", id, string(from), actorID).
		Updates(map[string]any{
			"assigned_to": actorID,
			"status":      string(to),
			"updated_at":  time.Now().UTC(),
		})
	if tx.Error != nil {
		return nil, tx.Error
	}
	if tx.RowsAffected == 0 {
		return nil, r.guardFailure(ctx, id, actorID)
	}
	return r.reloadAndPublish(ctx, id)
}

// Assign sets assigned_to regardless of the current holder. Used by the
// admin override; only the status is guarded.
func (r *BookingRepository) Assign(ctx context.Context, id, providerID string, from, to domain.BookingStatus) (*domain.Booking, error) {
	return r.updateFrom(ctx, id, from, map[string]any{
		"assigned_to": providerID,
		"status":      string(to),
	})
}

func (r *BookingRepository) UpdateStatus(ctx context.Context, id string, from, to domain.BookingStatus) (*domain.Booking, error) {
	return r.updateFrom(ctx, id, from, map[string]any{"status": string(to)})
}

func (r *BookingRepository) SetSummary(ctx context.Context, id string, summary string) (*domain.Booking, error) {
	return r.update(ctx, id, map[string]any{"ai_summary": summary})
}

func (r *BookingRepository) update(ctx context.Context, id string, updates map[string]any) (*domain.Booking, error) {
	updates["updated_at"] = time.Now().UTC()
	tx := r.db.WithContext(ctx).Model(&bookingModel{}).Where("id = ?", id).Updates(updates)
	if tx.Error != nil {
		return nil, tx.Error
	}
	if tx.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return r.reloadAndPublish(ctx, id)
}

// updateFrom applies updates only while the row is still in status from.
func (r *BookingRepository) updateFrom(ctx context.Context, id string, from domain.BookingStatus, updates map[string]any) (*domain.Booking, error) {
	updates["updated_at"] = time.Now().UTC()
	tx := r.db.WithContext(ctx).Model(&bookingModel{}).
		Where("id = ? AND status = ?", id, string(from)).
		Updates(updates)
	if tx.Error != nil {
		return nil, tx.Error
	}
	if tx.RowsAffected == 0 {
		return nil, r.guardFailure(ctx, id, "")
	}
	return r.reloadAndPublish(ctx, id)
}

// guardFailure reports why a conditional write matched nothing. holder is
// the actor the write required as assignee, or empty when any will do.
func (r *BookingRepository) guardFailure(ctx context.Context, id, holder string) error {
	b, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if holder != "" && b.IsAssigned() && *b.AssignedTo != holder {
		return ErrNoRowsAffected
	}
	return ErrStaleStatus
}

func (r *BookingRepository) reloadAndPublish(ctx context.Context, id string) (*domain.Booking, error) {
	b, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	r.publish(domain.ChangeUpdate, b)
	return b, nil
}

// Delete removes a booking row. Only administrative tooling calls this.
func (r *BookingRepository) Delete(ctx context.Context, id string) error {
	b, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).Where("id = ?", id).Delete(&bookingModel{}).Error; err != nil {
		return err
	}
	r.publish(domain.ChangeDelete, b)
	return nil
}
