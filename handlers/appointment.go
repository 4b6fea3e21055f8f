package handlers

import (
	"net/http"
	"strconv"

	"aira/models"
	"aira/services/booking"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	defaultListLimit = 50
	maxListLimit     = 200
)

// AppointmentHandler serves the appointment REST API.
type AppointmentHandler struct {
	Service booking.AppointmentService
	Logger  *zap.Logger
}

func NewAppointmentHandler(service booking.AppointmentService, logger *zap.Logger) *AppointmentHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AppointmentHandler{Service: service, Logger: logger}
}

// CreateAppointment books a new appointment after availability checks.
func (h *AppointmentHandler) CreateAppointment(c *gin.Context) {
	var input models.AppointmentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondError(c, "Invalid appointment input", &booking.ValidationError{Field: "body", Reason: err.Error()})
		return
	}

	appt, err := h.Service.CreateAppointment(c.Request.Context(), input)
	if err != nil {
		respondError(c, "Failed to create appointment", err)
		return
	}
	h.Logger.Info("appointment created",
		zap.String("appointmentID", appt.ID),
		zap.String("date", appt.AppointmentDate),
		zap.String("time", appt.AppointmentTime))
	c.JSON(http.StatusCreated, appt)
}

func parseInt64Query(c *gin.Context, key string, def int64) (int64, error) {
	raw := c.Query(key)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || n < 0 {
		return 0, &booking.ValidationError{Field: key, Reason: "expected a non-negative integer"}
	}
	return n, nil
}

// ListAppointments supports status, phone, date_from, date_to, skip and limit.
func (h *AppointmentHandler) ListAppointments(c *gin.Context) {
	skip, err := parseInt64Query(c, "skip", 0)
	if err != nil {
		respondError(c, "Invalid query", err)
		return
	}
	limit, err := parseInt64Query(c, "limit", defaultListLimit)
	if err != nil {
		respondError(c, "Invalid query", err)
		return
	}
	if limit == 0 || limit > maxListLimit {
		limit = maxListLimit
	}

	filter := models.AppointmentFilter{
		Status:   models.AppointmentStatus(c.Query("status")),
		Phone:    c.Query("phone"),
		DateFrom: c.Query("date_from"),
		DateTo:   c.Query("date_to"),
		Skip:     skip,
		Limit:    limit,
	}
	appts, err := h.Service.ListAppointments(c.Request.Context(), filter)
	if err != nil {
		respondError(c, "Failed to list appointments", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"appointments": appts, "count": len(appts)})
}

func (h *AppointmentHandler) Stats(c *gin.Context) {
	stats, err := h.Service.Stats(c.Request.Context())
	if err != nil {
		respondError(c, "Failed to compute appointment stats", err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (h *AppointmentHandler) GetAppointment(c *gin.Context) {
	appt, err := h.Service.GetAppointment(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, "Failed to fetch appointment", err)
		return
	}
	c.JSON(http.StatusOK, appt)
}

// UpdateAppointment applies a partial update. Date or time changes are
// re-checked against the schedule.
func (h *AppointmentHandler) UpdateAppointment(c *gin.Context) {
	var upd models.AppointmentUpdate
	if err := c.ShouldBindJSON(&upd); err != nil {
		respondError(c, "Invalid update", &booking.ValidationError{Field: "body", Reason: err.Error()})
		return
	}
	appt, err := h.Service.UpdateAppointment(c.Request.Context(), c.Param("id"), upd)
	if err != nil {
		respondError(c, "Failed to update appointment", err)
		return
	}
	c.JSON(http.StatusOK, appt)
}

func (h *AppointmentHandler) CancelAppointment(c *gin.Context) {
	var body struct {
		Reason string `json:"reason"`
	}
	// The body is optional.
	_ = c.ShouldBindJSON(&body)

	appt, err := h.Service.CancelAppointment(c.Request.Context(), c.Param("id"), body.Reason)
	if err != nil {
		respondError(c, "Failed to cancel appointment", err)
		return
	}
	h.Logger.Info("appointment cancelled", zap.String("appointmentID", appt.ID))
	c.JSON(http.StatusOK, appt)
}

func (h *AppointmentHandler) ConfirmAppointment(c *gin.Context) {
	appt, err := h.Service.ConfirmAppointment(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, "Failed to confirm appointment", err)
		return
	}
	c.JSON(http.StatusOK, appt)
}

// Availability lists the free slots of a date, or checks one time when
// ?time=HH:MM is given.
func (h *AppointmentHandler) Availability(c *gin.Context) {
	date := c.Param("date")
	ctx := c.Request.Context()

	if hhmm := c.Query("time"); hhmm != "" {
		ok, err := h.Service.CheckAvailability(ctx, date, hhmm)
		if err != nil {
			respondError(c, "Failed to check availability", err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"date": date, "time": hhmm, "available": ok})
		return
	}

	duration := 0
	if raw := c.Query("duration"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			respondError(c, "Invalid query", &booking.ValidationError{Field: "duration", Reason: "expected minutes"})
			return
		}
		duration = n
	}
	slots, err := h.Service.GetAvailableSlots(ctx, date, duration)
	if err != nil {
		respondError(c, "Failed to list available slots", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"date": date, "availableSlots": slots})
}
