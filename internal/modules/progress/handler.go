package progress

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"travelplanner/internal/domain"
	jwtsvc "travelplanner/internal/pkg/jwt"
	"travelplanner/internal/pkg/response"
	"travelplanner/internal/repository"
)

type BookingRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Booking, error)
}

type TripRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Trip, error)
}

type AgentLogRepository interface {
	ListByBookingAfter(ctx context.Context, bookingID uuid.UUID, afterID int64) ([]domain.AgentLog, error)
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Handler streams a booking's agent log over a websocket, polling the store
// until the booking reaches a terminal status. Browsers cannot set an
// Authorization header on websocket dials, so the JWT rides in the query
// string.
type Handler struct {
	jwt      *jwtsvc.Service
	trips    TripRepository
	bookings BookingRepository
	logs     AgentLogRepository

	pollInterval time.Duration
}

func NewHandler(jwt *jwtsvc.Service, trips TripRepository, bookings BookingRepository, logs AgentLogRepository) *Handler {
	return &Handler{
		jwt:          jwt,
		trips:        trips,
		bookings:     bookings,
		logs:         logs,
		pollInterval: 500 * time.Millisecond,
	}
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/ws/bookings/:id", h.Stream)
}

type logEvent struct {
	Type         string `json:"type"`
	ID           int64  `json:"id"`
	Step         string `json:"step"`
	Action       string `json:"action"`
	Result       string `json:"result"`
	ErrorMessage string `json:"error_message,omitempty"`
}

type statusEvent struct {
	Type               string `json:"type"`
	Status             string `json:"status"`
	ConfirmationNumber string `json:"confirmation_number,omitempty"`
}

func (h *Handler) Stream(c *gin.Context) {
	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "id must be a UUID")
		return
	}
	claims, err := h.jwt.ValidateToken(c.Query("token"))
	if err != nil {
		response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "invalid token")
		return
	}
	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "invalid token subject")
		return
	}

	ctx := c.Request.Context()
	b, err := h.bookings.GetByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			response.Error(c, http.StatusNotFound, "NOT_FOUND", "booking not found")
			return
		}
		response.Error(c, http.StatusInternalServerError, "INTERNAL", "internal error")
		return
	}
	trip, err := h.trips.GetByID(ctx, b.TripID)
	if err != nil || trip.UserID != userID {
		response.Error(c, http.StatusForbidden, "FORBIDDEN", "booking belongs to another user")
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("ws_upgrade_failed booking_id=%s error=%v", bookingID, err)
		return
	}
	defer conn.Close()

	streamCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Read pump exists only to notice the client going away.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				cancel()
				return
			}
		}
	}()

	h.stream(streamCtx, conn, bookingID)
}

func (h *Handler) stream(ctx context.Context, conn *websocket.Conn, bookingID uuid.UUID) {
	var lastID int64
	ticker := time.NewTicker(h.pollInterval)
	defer ticker.Stop()

	for {
		logs, err := h.logs.ListByBookingAfter(ctx, bookingID, lastID)
		if err != nil {
			log.Printf("ws_log_poll_failed booking_id=%s error=%v", bookingID, err)
			return
		}
		for _, l := range logs {
			ev := logEvent{
				Type:   "log",
				ID:     l.ID,
				Step:   l.Step,
				Action: l.Action,
				Result: string(l.Result),
			}
			if l.ErrorMessage != nil {
				ev.ErrorMessage = *l.ErrorMessage
			}
			if err := conn.WriteJSON(ev); err != nil {
				return
			}
			lastID = l.ID
		}

		b, err := h.bookings.GetByID(ctx, bookingID)
		if err != nil {
			log.Printf("ws_booking_poll_failed booking_id=%s error=%v", bookingID, err)
			return
		}
		if b.Terminal() {
			_ = conn.WriteJSON(statusEvent{
				Type:               "status",
				Status:             string(b.Status),
				ConfirmationNumber: b.ConfirmationNumber,
			})
			_ = conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, string(b.Status)))
			return
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
