package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"travelplanner/internal/domain"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

type userModel struct {
	ID                  string          `gorm:"column:id;primaryKey"`
	Email               string          `gorm:"column:email;uniqueIndex"`
	FirstName           *string         `gorm:"column:first_name"`
	LastName            *string         `gorm:"column:last_name"`
	DateOfBirth         *string         `gorm:"column:date_of_birth"`
	Phone               *string         `gorm:"column:phone"`
	SeatPreference      *string         `gorm:"column:seat_preference"`
	MealPreference      *string         `gorm:"column:meal_preference"`
	LoyaltyNumbers      domain.JSONList `gorm:"column:loyalty_numbers;type:text"`
	PassportNumberEnc   *string         `gorm:"column:passport_number_enc;type:text"`
	TSAKnownTravelerEnc *string         `gorm:"column:tsa_known_traveler_enc;type:text"`
	CreatedAt           time.Time       `gorm:"column:created_at"`
	UpdatedAt           time.Time       `gorm:"column:updated_at"`
}

func (userModel) TableName() string { return "users" }

func strOrEmpty(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func strOrNil(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func toDomainUser(m userModel) *domain.User {
	id, _ := uuid.Parse(m.ID)
	return &domain.User{
		ID:                  id,
		Email:               m.Email,
		FirstName:           strOrEmpty(m.FirstName),
		LastName:            strOrEmpty(m.LastName),
		DateOfBirth:         strOrEmpty(m.DateOfBirth),
		Phone:               strOrEmpty(m.Phone),
		SeatPreference:      strOrEmpty(m.SeatPreference),
		MealPreference:      strOrEmpty(m.MealPreference),
		LoyaltyNumbers:      m.LoyaltyNumbers,
		PassportNumberEnc:   m.PassportNumberEnc,
		TSAKnownTravelerEnc: m.TSAKnownTravelerEnc,
		CreatedAt:           m.CreatedAt,
		UpdatedAt:           m.UpdatedAt,
	}
}

func toUserModel(u *domain.User) userModel {
	return userModel{
		ID:                  u.ID.String(),
		Email:               u.Email,
		FirstName:           strOrNil(u.FirstName),
		LastName:            strOrNil(u.LastName),
		DateOfBirth:         strOrNil(u.DateOfBirth),
		Phone:               strOrNil(u.Phone),
		SeatPreference:      strOrNil(u.SeatPreference),
		MealPreference:      strOrNil(u.MealPreference),
		LoyaltyNumbers:      u.LoyaltyNumbers,
		PassportNumberEnc:   u.PassportNumberEnc,
		TSAKnownTravelerEnc: u.TSAKnownTravelerEnc,
		CreatedAt:           u.CreatedAt,
		UpdatedAt:           u.UpdatedAt,
	}
}

func (r *UserRepository) Create(ctx context.Context, u *domain.User) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	m := toUserModel(u)
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		return err
	}
	u.CreatedAt = m.CreatedAt
	u.UpdatedAt = m.UpdatedAt
	return nil
}

func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	var m userModel
	err := r.db.WithContext(ctx).Where("id = ?", id.String()).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return toDomainUser(m), nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	var m userModel
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return toDomainUser(m), nil
}

func (r *UserRepository) Update(ctx context.Context, u *domain.User) error {
	m := toUserModel(u)
	m.UpdatedAt = time.Now().UTC()
	return r.db.WithContext(ctx).
		Model(&userModel{}).
		Where("id = ?", m.ID).
		Updates(map[string]any{
			"first_name":             m.FirstName,
			"last_name":              m.LastName,
			"date_of_birth":          m.DateOfBirth,
			"phone":                  m.Phone,
			"seat_preference":        m.SeatPreference,
			"meal_preference":        m.MealPreference,
			"loyalty_numbers":        m.LoyaltyNumbers,
			"passport_number_enc":    m.PassportNumberEnc,
			"tsa_known_traveler_enc": m.TSAKnownTravelerEnc,
			"updated_at":             m.UpdatedAt,
		}).
		Error
}
