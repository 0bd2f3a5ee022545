package agent

import (
	"context"
	"encoding/base64"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"travelplanner/internal/domain"
)

const (
	// MaxSteps bounds one agent run. A booking flow that needs more than this
	// many decisions is treated as stuck.
	MaxSteps = 30

	delayAfterClick  = 800 * time.Millisecond
	delayAfterFocus  = 300 * time.Millisecond
	delayAfterSelect = 600 * time.Millisecond
	delayAfterScroll = 400 * time.Millisecond
	delayOnWait      = 2 * time.Second
	delayAfterNav    = 3 * time.Second

	scrollAmount = 600
)

// Runner drives one booking attempt end to end: observe the page, ask the
// decision service for one action, execute it, repeat. In mock mode it plays
// a scripted sequence instead of touching a browser.
type Runner struct {
	logs     LogStore
	decider  Decider
	newPage  PageFactory
	mockMode bool
	maxSteps int

	// mockStepDelay slows the scripted sequence so progress streaming is
	// observable. Zero in tests.
	mockStepDelay time.Duration
}

func NewRunner(logs LogStore, decider Decider, newPage PageFactory, mockMode bool) *Runner {
	delay := 1500 * time.Millisecond
	if !mockMode {
		delay = 0
	}
	return &Runner{
		logs:          logs,
		decider:       decider,
		newPage:       newPage,
		mockMode:      mockMode,
		maxSteps:      MaxSteps,
		mockStepDelay: delay,
	}
}

// CheckSupport reports whether a booking target has a known automation path.
// Called before any side effects so unsupported components never acquire a
// payment card.
func (r *Runner) CheckSupport(bookingType domain.BookingType, itinerary domain.JSONMap, traveler domain.TravelerContext) error {
	switch bookingType {
	case domain.BookingFlight:
		carrier := itinerary.SubMap("flight").String("carrier")
		if !carrierSupported(carrier) {
			return fmt.Errorf("%w: carrier %q (supported: %s)", ErrNotSupported, carrier, supportedCarrierList())
		}
	case domain.BookingHotel, domain.BookingActivity:
		// Hotels fall back to an aggregator site and activities always go
		// through one, so there is no unsupported case for them.
	default:
		return fmt.Errorf("%w: unknown booking type %q", ErrNotSupported, bookingType)
	}
	return nil
}

// Run executes the booking and returns the confirmation number on success.
func (r *Runner) Run(ctx context.Context, bookingID uuid.UUID, bookingType domain.BookingType, itinerary domain.JSONMap, traveler domain.TravelerContext, card *domain.VirtualCard) (string, error) {
	if err := r.CheckSupport(bookingType, itinerary, traveler); err != nil {
		return "", err
	}
	if r.mockMode {
		return r.runMock(ctx, bookingID, bookingType, itinerary, traveler)
	}
	return r.runLive(ctx, bookingID, bookingType, itinerary, traveler, card)
}

func (r *Runner) runLive(ctx context.Context, bookingID uuid.UUID, bookingType domain.BookingType, itinerary domain.JSONMap, traveler domain.TravelerContext, card *domain.VirtualCard) (string, error) {
	var (
		startURL     string
		instructions func(step int) string
	)
	switch bookingType {
	case domain.BookingFlight:
		task, err := flightTaskFromItinerary(itinerary)
		if err != nil {
			return "", err
		}
		startURL = task.URL
		instructions = func(step int) string {
			return buildFlightInstructions(task, traveler, card, step, r.maxSteps)
		}
	case domain.BookingHotel:
		task := hotelTaskFromItinerary(itinerary, traveler)
		startURL = task.URL
		instructions = func(step int) string {
			return buildHotelInstructions(task, traveler, card, step, r.maxSteps)
		}
	default:
		return "", fmt.Errorf("%w: live automation for %q", ErrNotSupported, bookingType)
	}

	page, err := r.newPage(ctx)
	if err != nil {
		return "", fmt.Errorf("open browser session: %w", err)
	}
	defer page.Close()

	if err := r.appendLog(ctx, bookingID, "navigate", "open "+startURL, domain.StepInProgress, nil, nil); err != nil {
		return "", err
	}
	if err := page.Navigate(ctx, startURL); err != nil {
		return "", fmt.Errorf("navigate %s: %w", startURL, err)
	}
	_ = page.Sleep(ctx, delayAfterNav)

	for step := 0; step < r.maxSteps; step++ {
		shot, err := page.Screenshot(ctx)
		if err != nil {
			return "", fmt.Errorf("screenshot at step %d: %w", step+1, err)
		}

		raw, err := r.decider.Decide(ctx, shot, instructions(step))
		if err != nil {
			return "", fmt.Errorf("decide at step %d: %w", step+1, err)
		}

		act, err := ParseAction(raw)
		if err != nil {
			msg := err.Error()
			_ = r.appendLog(ctx, bookingID, stepName(step), raw, domain.StepError, shot, &msg)
			return "", err
		}

		switch act.Action {
		case ActionDone:
			if err := r.appendLog(ctx, bookingID, stepName(step), "done: "+act.Thought, domain.StepSuccess, shot, nil); err != nil {
				return "", err
			}
			return act.ConfirmationNumber, nil
		case ActionError:
			msg := act.ErrorMessage
			if msg == "" {
				msg = "agent reported unrecoverable error"
			}
			_ = r.appendLog(ctx, bookingID, stepName(step), "error: "+act.Thought, domain.StepError, shot, &msg)
			return "", fmt.Errorf("agent aborted: %s", msg)
		}

		// Log the decision before acting so a crash mid-action still leaves
		// a record of what was attempted. Intermediate screenshots are not
		// retained.
		if err := r.appendLog(ctx, bookingID, stepName(step), fmt.Sprintf("[%s] %s", act.Action, act.Thought), domain.StepInProgress, nil, nil); err != nil {
			return "", err
		}
		if err := r.executeAction(ctx, page, act, card); err != nil {
			return "", fmt.Errorf("execute %s at step %d: %w", act.Action, step+1, err)
		}
	}

	msg := fmt.Sprintf("no confirmation after %d steps", r.maxSteps)
	_ = r.appendLog(ctx, bookingID, stepName(r.maxSteps), "step limit reached", domain.StepError, nil, &msg)
	return "", ErrStepLimit
}

func (r *Runner) executeAction(ctx context.Context, page Driver, act Action, card *domain.VirtualCard) error {
	switch act.Action {
	case ActionClick:
		if err := page.Click(ctx, *act.X, *act.Y); err != nil {
			return err
		}
		return page.Sleep(ctx, delayAfterClick)
	case ActionType:
		if act.X != nil && act.Y != nil {
			if err := page.Click(ctx, *act.X, *act.Y); err != nil {
				return err
			}
			if err := page.Sleep(ctx, delayAfterFocus); err != nil {
				return err
			}
		}
		text := act.Text
		if card != nil {
			text = expandCardPlaceholders(text, card)
		}
		return page.Type(ctx, text)
	case ActionSelect:
		if err := page.Click(ctx, *act.X, *act.Y); err != nil {
			return err
		}
		return page.Sleep(ctx, delayAfterSelect)
	case ActionScrollDown:
		if err := page.ScrollBy(ctx, scrollAmount); err != nil {
			return err
		}
		return page.Sleep(ctx, delayAfterScroll)
	case ActionScrollUp:
		if err := page.ScrollBy(ctx, -scrollAmount); err != nil {
			return err
		}
		return page.Sleep(ctx, delayAfterScroll)
	case ActionWait:
		return page.Sleep(ctx, delayOnWait)
	default:
		return fmt.Errorf("%w: unexecutable action %q", ErrMalformedAction, act.Action)
	}
}

func (r *Runner) appendLog(ctx context.Context, bookingID uuid.UUID, step, action string, result domain.AgentStepResult, screenshot []byte, errMsg *string) error {
	var shotB64 *string
	if len(screenshot) > 0 {
		s := base64.StdEncoding.EncodeToString(screenshot)
		shotB64 = &s
	}
	l := &domain.AgentLog{
		BookingID:     bookingID,
		Step:          step,
		Action:        action,
		Result:        result,
		ScreenshotB64: shotB64,
		ErrorMessage:  errMsg,
	}
	if err := r.logs.Append(ctx, l); err != nil {
		log.Printf("agent_log_append_failed booking_id=%s step=%s error=%v", bookingID, step, err)
		return err
	}
	return nil
}

func stepName(step int) string {
	return fmt.Sprintf("step_%d", step+1)
}
