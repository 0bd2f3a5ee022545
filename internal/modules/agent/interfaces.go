package agent

import (
	"context"
	"time"

	"travelplanner/internal/domain"
)

// Driver is the primitive browser surface the loop acts against. The engine
// behind it is not the loop's concern.
type Driver interface {
	Navigate(ctx context.Context, url string) error
	Click(ctx context.Context, x, y int) error
	Type(ctx context.Context, text string) error
	ScrollBy(ctx context.Context, dy int) error
	Screenshot(ctx context.Context) ([]byte, error)
	Sleep(ctx context.Context, d time.Duration) error
	Close()
}

// PageFactory opens a fresh browser session for one booking run.
type PageFactory func(ctx context.Context) (Driver, error)

// Decider is the external decision service: one observation in, one raw text
// reply out. The loop treats its reasoning as a black box and validates only
// the output shape.
type Decider interface {
	Decide(ctx context.Context, screenshotPNG []byte, instructions string) (string, error)
}

// LogStore appends AgentLog rows. Both live and mock paths write through it.
type LogStore interface {
	Append(ctx context.Context, l *domain.AgentLog) error
}
