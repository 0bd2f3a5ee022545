package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"travelplanner/internal/domain"
)

type AgentLogRepository struct {
	db *gorm.DB
}

func NewAgentLogRepository(db *gorm.DB) *AgentLogRepository {
	return &AgentLogRepository{db: db}
}

type agentLogModel struct {
	ID            int64     `gorm:"column:id;primaryKey;autoIncrement"`
	BookingID     string    `gorm:"column:booking_id;index"`
	Step          string    `gorm:"column:step"`
	Action        string    `gorm:"column:action;type:text"`
	Result        string    `gorm:"column:result"`
	ScreenshotB64 *string   `gorm:"column:screenshot_b64;type:text"`
	ErrorMessage  *string   `gorm:"column:error_message;type:text"`
	CreatedAt     time.Time `gorm:"column:created_at"`
}

func (agentLogModel) TableName() string { return "agent_logs" }

func toDomainAgentLog(m agentLogModel) domain.AgentLog {
	bookingID, _ := uuid.Parse(m.BookingID)
	return domain.AgentLog{
		ID:            m.ID,
		BookingID:     bookingID,
		Step:          m.Step,
		Action:        m.Action,
		Result:        domain.AgentStepResult(m.Result),
		ScreenshotB64: m.ScreenshotB64,
		ErrorMessage:  m.ErrorMessage,
		CreatedAt:     m.CreatedAt,
	}
}

// Append writes one log row. Rows are write-once; there is no update path.
func (r *AgentLogRepository) Append(ctx context.Context, l *domain.AgentLog) error {
	m := agentLogModel{
		BookingID:     l.BookingID.String(),
		Step:          l.Step,
		Action:        l.Action,
		Result:        string(l.Result),
		ScreenshotB64: l.ScreenshotB64,
		ErrorMessage:  l.ErrorMessage,
	}
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		return err
	}
	l.ID = m.ID
	l.CreatedAt = m.CreatedAt
	return nil
}

func (r *AgentLogRepository) ListByBooking(ctx context.Context, bookingID uuid.UUID) ([]domain.AgentLog, error) {
	var models []agentLogModel
	err := r.db.WithContext(ctx).
		Where("booking_id = ?", bookingID.String()).
		Order("id ASC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	out := make([]domain.AgentLog, 0, len(models))
	for _, m := range models {
		out = append(out, toDomainAgentLog(m))
	}
	return out, nil
}

// ListByBookingAfter returns rows with ID greater than afterID, in insertion
// order. Used by the progress stream.
func (r *AgentLogRepository) ListByBookingAfter(ctx context.Context, bookingID uuid.UUID, afterID int64) ([]domain.AgentLog, error) {
	var models []agentLogModel
	err := r.db.WithContext(ctx).
		Where("booking_id = ? AND id > ?", bookingID.String(), afterID).
		Order("id ASC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	out := make([]domain.AgentLog, 0, len(models))
	for _, m := range models {
		out = append(out, toDomainAgentLog(m))
	}
	return out, nil
}
