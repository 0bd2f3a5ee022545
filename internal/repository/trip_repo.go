package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"travelplanner/internal/domain"
)

var ErrNotFound = errors.New("record not found")

type TripRepository struct {
	db *gorm.DB
}

func NewTripRepository(db *gorm.DB) *TripRepository {
	return &TripRepository{db: db}
}

type tripModel struct {
	ID                string         `gorm:"column:id;primaryKey"`
	UserID            string         `gorm:"column:user_id;index"`
	Status            string         `gorm:"column:status"`
	RawRequest        string         `gorm:"column:raw_request;type:text"`
	ParsedSpec        domain.JSONMap `gorm:"column:parsed_spec;type:text"`
	ItineraryOptions  domain.JSONList `gorm:"column:itinerary_options;type:text"`
	ApprovedItinerary domain.JSONMap `gorm:"column:approved_itinerary;type:text"`
	CreatedAt         time.Time      `gorm:"column:created_at"`
	UpdatedAt         time.Time      `gorm:"column:updated_at"`
}

func (tripModel) TableName() string { return "trips" }

func toDomainTrip(m tripModel) *domain.Trip {
	id, _ := uuid.Parse(m.ID)
	userID, _ := uuid.Parse(m.UserID)
	return &domain.Trip{
		ID:                id,
		UserID:            userID,
		Status:            domain.TripStatus(m.Status),
		RawRequest:        m.RawRequest,
		ParsedSpec:        m.ParsedSpec,
		ItineraryOptions:  m.ItineraryOptions,
		ApprovedItinerary: m.ApprovedItinerary,
		CreatedAt:         m.CreatedAt,
		UpdatedAt:         m.UpdatedAt,
	}
}

func toTripModel(t *domain.Trip) tripModel {
	return tripModel{
		ID:                t.ID.String(),
		UserID:            t.UserID.String(),
		Status:            string(t.Status),
		RawRequest:        t.RawRequest,
		ParsedSpec:        t.ParsedSpec,
		ItineraryOptions:  t.ItineraryOptions,
		ApprovedItinerary: t.ApprovedItinerary,
		CreatedAt:         t.CreatedAt,
		UpdatedAt:         t.UpdatedAt,
	}
}

func (r *TripRepository) Create(ctx context.Context, t *domain.Trip) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	m := toTripModel(t)
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		return err
	}
	t.CreatedAt = m.CreatedAt
	t.UpdatedAt = m.UpdatedAt
	return nil
}

func (r *TripRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Trip, error) {
	var m tripModel
	err := r.db.WithContext(ctx).Where("id = ?", id.String()).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return toDomainTrip(m), nil
}

func (r *TripRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.TripStatus) error {
	return r.db.WithContext(ctx).
		Model(&tripModel{}).
		Where("id = ?", id.String()).
		Updates(map[string]any{"status": string(status), "updated_at": time.Now().UTC()}).
		Error
}
