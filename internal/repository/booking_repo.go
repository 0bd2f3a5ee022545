package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"travelplanner/internal/domain"
)

type BookingRepository struct {
	db *gorm.DB
}

func NewBookingRepository(db *gorm.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

type bookingModel struct {
	ID                 string         `gorm:"column:id;primaryKey"`
	TripID             string         `gorm:"column:trip_id;index;uniqueIndex:idx_one_booking_per_component"`
	Type               string         `gorm:"column:type"`
	Status             string         `gorm:"column:status"`
	ConfirmationNumber *string        `gorm:"column:confirmation_number"`
	Details            domain.JSONMap `gorm:"column:details;type:text"`
	VirtualCardID      *string        `gorm:"column:virtual_card_id"`
	ComponentKey       string         `gorm:"column:component_key;uniqueIndex:idx_one_booking_per_component"`
	CreatedAt          time.Time      `gorm:"column:created_at"`
	UpdatedAt          time.Time      `gorm:"column:updated_at"`
}

func (bookingModel) TableName() string { return "bookings" }

func toDomainBooking(m bookingModel) *domain.Booking {
	id, _ := uuid.Parse(m.ID)
	tripID, _ := uuid.Parse(m.TripID)

	var conf string
	if m.ConfirmationNumber != nil {
		conf = *m.ConfirmationNumber
	}
	var cardID string
	if m.VirtualCardID != nil {
		cardID = *m.VirtualCardID
	}

	return &domain.Booking{
		ID:                 id,
		TripID:             tripID,
		Type:               domain.BookingType(m.Type),
		Status:             domain.BookingStatus(m.Status),
		ConfirmationNumber: conf,
		Details:            m.Details,
		VirtualCardID:      cardID,
		ComponentKey:       m.ComponentKey,
		CreatedAt:          m.CreatedAt,
		UpdatedAt:          m.UpdatedAt,
	}
}

func (r *BookingRepository) Create(ctx context.Context, b *domain.Booking) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	m := bookingModel{
		ID:           b.ID.String(),
		TripID:       b.TripID.String(),
		Type:         string(b.Type),
		Status:       string(b.Status),
		Details:      b.Details,
		ComponentKey: b.ComponentKey,
	}
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		return err
	}
	b.CreatedAt = m.CreatedAt
	b.UpdatedAt = m.UpdatedAt
	return nil
}

func (r *BookingRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Booking, error) {
	var m bookingModel
	err := r.db.WithContext(ctx).Where("id = ?", id.String()).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return toDomainBooking(m), nil
}

func (r *BookingRepository) GetByTrip(ctx context.Context, tripID uuid.UUID) ([]domain.Booking, error) {
	return r.listByTrip(ctx, tripID, "")
}

func (r *BookingRepository) GetPendingByTrip(ctx context.Context, tripID uuid.UUID) ([]domain.Booking, error) {
	return r.listByTrip(ctx, tripID, string(domain.BookingPending))
}

func (r *BookingRepository) listByTrip(ctx context.Context, tripID uuid.UUID, status string) ([]domain.Booking, error) {
	q := r.db.WithContext(ctx).Where("trip_id = ?", tripID.String())
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var models []bookingModel
	if err := q.Order("created_at ASC").Find(&models).Error; err != nil {
		return nil, err
	}
	out := make([]domain.Booking, 0, len(models))
	for _, m := range models {
		out = append(out, *toDomainBooking(m))
	}
	return out, nil
}

func (r *BookingRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.BookingStatus) error {
	return r.db.WithContext(ctx).
		Model(&bookingModel{}).
		Where("id = ?", id.String()).
		Updates(map[string]any{"status": string(status), "updated_at": time.Now().UTC()}).
		Error
}

// SetVirtualCardID persists the card identifier as soon as a card is acquired,
// so card and booking can be reconciled even after a crash.
func (r *BookingRepository) SetVirtualCardID(ctx context.Context, id uuid.UUID, cardID string) error {
	return r.db.WithContext(ctx).
		Model(&bookingModel{}).
		Where("id = ?", id.String()).
		Updates(map[string]any{"virtual_card_id": cardID, "updated_at": time.Now().UTC()}).
		Error
}

func (r *BookingRepository) MarkConfirmed(ctx context.Context, id uuid.UUID, confirmationNumber string) error {
	return r.db.WithContext(ctx).
		Model(&bookingModel{}).
		Where("id = ?", id.String()).
		Updates(map[string]any{
			"status":              string(domain.BookingConfirmed),
			"confirmation_number": confirmationNumber,
			"updated_at":          time.Now().UTC(),
		}).
		Error
}

// MarkFailed sets a terminal failure status and merges the error message into
// details without discarding the original itinerary fragment.
func (r *BookingRepository) MarkFailed(ctx context.Context, id uuid.UUID, status domain.BookingStatus, errMsg string) error {
	var m bookingModel
	if err := r.db.WithContext(ctx).Where("id = ?", id.String()).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}

	details := m.Details
	if details == nil {
		details = domain.JSONMap{}
	}
	details["error"] = errMsg

	return r.db.WithContext(ctx).
		Model(&bookingModel{}).
		Where("id = ?", id.String()).
		Updates(map[string]any{
			"status":     string(status),
			"details":    details,
			"updated_at": time.Now().UTC(),
		}).
		Error
}
