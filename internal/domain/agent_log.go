package domain

import (
	"time"

	"github.com/google/uuid"
)

type AgentStepResult string

const (
	StepSuccess    AgentStepResult = "success"
	StepInProgress AgentStepResult = "in_progress"
	StepError      AgentStepResult = "error"
)

// AgentLog is one append-only row of a booking agent's audit trail.
// Screenshots are kept only for error rows and the terminal confirming row.
type AgentLog struct {
	ID            int64           `json:"id"`
	BookingID     uuid.UUID       `json:"booking_id"`
	Step          string          `json:"step"`
	Action        string          `json:"action"`
	Result        AgentStepResult `json:"result"`
	ScreenshotB64 *string         `json:"screenshot_b64,omitempty"`
	ErrorMessage  *string         `json:"error_message,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
}
