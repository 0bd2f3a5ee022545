package trip

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"travelplanner/internal/pkg/response"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/trips/:id/book", h.InitiateBooking)
	rg.GET("/trips/:id", h.GetTrip)
	rg.GET("/trips/:id/bookings", h.ListBookings)
	rg.GET("/bookings/:id/log", h.GetBookingLog)
}

// RegisterInternalRoutes exposes the planner-facing ingestion surface, gated
// by the internal token middleware.
func (h *Handler) RegisterInternalRoutes(rg *gin.RouterGroup) {
	rg.POST("/trips", h.CreateTrip)
}

func (h *Handler) CreateTrip(c *gin.Context) {
	var req CreateTripRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_BODY", err.Error())
		return
	}
	t, err := h.service.CreateTrip(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, ErrNoComponents) {
			response.Error(c, http.StatusUnprocessableEntity, "NO_COMPONENTS", err.Error())
			return
		}
		response.Error(c, http.StatusBadRequest, "CREATE_FAILED", err.Error())
		return
	}
	response.Success(c, http.StatusCreated, t)
}

func (h *Handler) InitiateBooking(c *gin.Context) {
	tripID, userID, ok := h.ids(c)
	if !ok {
		return
	}
	resp, err := h.service.InitiateBooking(c.Request.Context(), tripID, userID)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusAccepted, resp)
}

func (h *Handler) GetTrip(c *gin.Context) {
	tripID, userID, ok := h.ids(c)
	if !ok {
		return
	}
	t, err := h.service.GetTrip(c.Request.Context(), tripID, userID)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, t)
}

func (h *Handler) ListBookings(c *gin.Context) {
	tripID, userID, ok := h.ids(c)
	if !ok {
		return
	}
	bookings, err := h.service.ListBookings(c.Request.Context(), tripID, userID)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, bookings)
}

func (h *Handler) GetBookingLog(c *gin.Context) {
	bookingID, userID, ok := h.ids(c)
	if !ok {
		return
	}
	entries, err := h.service.GetBookingLog(c.Request.Context(), bookingID, userID)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, entries)
}

// ids parses the path id and the authenticated user id, writing the error
// response itself on failure.
func (h *Handler) ids(c *gin.Context) (uuid.UUID, uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "id must be a UUID")
		return uuid.Nil, uuid.Nil, false
	}
	userID, err := uuid.Parse(c.GetString("user_id"))
	if err != nil {
		response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "missing user identity")
		return uuid.Nil, uuid.Nil, false
	}
	return id, userID, true
}

func (h *Handler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		response.Error(c, http.StatusNotFound, "NOT_FOUND", err.Error())
	case errors.Is(err, ErrForbidden):
		response.Error(c, http.StatusForbidden, "FORBIDDEN", err.Error())
	case errors.Is(err, ErrNotApproved), errors.Is(err, ErrNoComponents):
		response.Error(c, http.StatusConflict, "INVALID_STATE", err.Error())
	default:
		response.Error(c, http.StatusInternalServerError, "INTERNAL", "internal error")
	}
}
