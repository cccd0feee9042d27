package appointment

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"psicanalise/internal/api"
	"psicanalise/internal/auth"
	"psicanalise/internal/provider"
	"psicanalise/internal/timeutil"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// Book godoc
// @Summary      Book an appointment
// @Description  Atomically books a slot and consumes one session credit.
// @Tags         appointments
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        request body BookRequest true "Booking request"
// @Success      201 {object} Appointment
// @Failure      400 {object} api.ErrorResponse "invalid_argument"
// @Failure      401 {object} api.ErrorResponse "not_authenticated"
// @Failure      402 {object} api.ErrorResponse "no_credits"
// @Failure      409 {object} api.ErrorResponse "slot_taken"
// @Failure      422 {object} api.ErrorResponse "lead_time_violation"
// @Failure      504 {object} api.ErrorResponse "transaction_timeout"
// @Router       /appointments [post]
func (h *Handler) Book(c *gin.Context) {
	clientID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "User not authenticated", Code: api.CodeNotAuthenticated})
		return
	}

	var req BookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error(), Code: api.CodeInvalidArgument})
		return
	}

	appt, err := h.service.Book(c.Request.Context(), clientID, req)
	if err != nil {
		h.writeBookingError(c, err)
		return
	}

	c.JSON(http.StatusCreated, appt)
}

// writeBookingError maps each booking failure mode to its own status and
// code, so the UI can branch: re-pick a slot, buy credits, or re-query after
// a timeout.
func (h *Handler) writeBookingError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrSlotTaken):
		c.JSON(http.StatusConflict, api.ErrorResponse{Error: "Slot already taken", Code: api.CodeSlotTaken})
	case errors.Is(err, ErrNoCredits):
		c.JSON(http.StatusPaymentRequired, api.ErrorResponse{Error: "No session credits available", Code: api.CodeNoCredits})
	case errors.Is(err, ErrLeadTime):
		c.JSON(http.StatusUnprocessableEntity, api.ErrorResponse{Error: "Slot starts too soon", Code: api.CodeLeadTimeViolation})
	case errors.Is(err, ErrTxTimeout):
		c.JSON(http.StatusGatewayTimeout, api.ErrorResponse{Error: "Booking timed out, check your appointments before retrying", Code: api.CodeTransactionTimeout})
	case errors.Is(err, ErrInvalidWindow):
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error(), Code: api.CodeInvalidArgument})
	case errors.Is(err, provider.ErrSettingsNotFound):
		c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "Provider not found", Code: api.CodeNotFound})
	case errors.Is(err, ErrNotFound):
		c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "Appointment not found", Code: api.CodeNotFound})
	case errors.Is(err, ErrForbidden):
		c.JSON(http.StatusForbidden, api.ErrorResponse{Error: "Not your appointment", Code: api.CodeForbidden})
	case errors.Is(err, ErrNotBlocking):
		c.JSON(http.StatusConflict, api.ErrorResponse{Error: "Appointment is no longer active", Code: api.CodeInvalidArgument})
	case errors.Is(err, ErrTooLateToCancel):
		c.JSON(http.StatusUnprocessableEntity, api.ErrorResponse{Error: err.Error(), Code: api.CodeInvalidArgument})
	default:
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Booking failed", Code: api.CodeInternal})
	}
}

// Cancel godoc
// @Summary      Cancel an appointment
// @Tags         appointments
// @Security     BearerAuth
// @Produce      json
// @Param        appointmentID path int true "Appointment ID"
// @Success      200 {object} Appointment
// @Failure      401 {object} api.ErrorResponse
// @Failure      403 {object} api.ErrorResponse
// @Failure      404 {object} api.ErrorResponse
// @Failure      422 {object} api.ErrorResponse
// @Router       /appointments/{appointmentID}/cancel [post]
func (h *Handler) Cancel(c *gin.Context) {
	userID, role, apptID, ok := h.identify(c)
	if !ok {
		return
	}

	appt, err := h.service.Cancel(c.Request.Context(), userID, role, apptID)
	if err != nil {
		h.writeBookingError(c, err)
		return
	}

	c.JSON(http.StatusOK, appt)
}

// Complete godoc
// @Summary      Mark an appointment completed
// @Tags         appointments
// @Security     BearerAuth
// @Produce      json
// @Param        appointmentID path int true "Appointment ID"
// @Success      200 {object} Appointment
// @Failure      401 {object} api.ErrorResponse
// @Failure      403 {object} api.ErrorResponse
// @Failure      404 {object} api.ErrorResponse
// @Router       /appointments/{appointmentID}/complete [post]
func (h *Handler) Complete(c *gin.Context) {
	providerID, _, apptID, ok := h.identify(c)
	if !ok {
		return
	}

	appt, err := h.service.Complete(c.Request.Context(), providerID, apptID)
	if err != nil {
		h.writeBookingError(c, err)
		return
	}

	c.JSON(http.StatusOK, appt)
}

// Reschedule godoc
// @Summary      Move an appointment to a new window
// @Description  Atomic move under the same per-provider lock; credits are untouched.
// @Tags         appointments
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        appointmentID path int true "Appointment ID"
// @Param        request body RescheduleRequest true "New window"
// @Success      200 {object} Appointment
// @Failure      400 {object} api.ErrorResponse
// @Failure      401 {object} api.ErrorResponse
// @Failure      409 {object} api.ErrorResponse
// @Failure      422 {object} api.ErrorResponse
// @Failure      504 {object} api.ErrorResponse
// @Router       /appointments/{appointmentID}/reschedule [post]
func (h *Handler) Reschedule(c *gin.Context) {
	userID, role, apptID, ok := h.identify(c)
	if !ok {
		return
	}

	var req RescheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error(), Code: api.CodeInvalidArgument})
		return
	}

	appt, err := h.service.Reschedule(c.Request.Context(), userID, role, apptID, req)
	if err != nil {
		h.writeBookingError(c, err)
		return
	}

	c.JSON(http.StatusOK, appt)
}

// ListMine godoc
// @Summary      List my appointments
// @Tags         appointments
// @Security     BearerAuth
// @Produce      json
// @Success      200 {array}  Appointment
// @Failure      401 {object} api.ErrorResponse
// @Router       /appointments [get]
func (h *Handler) ListMine(c *gin.Context) {
	clientID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "User not authenticated", Code: api.CodeNotAuthenticated})
		return
	}

	appts, err := h.service.ListMine(c.Request.Context(), clientID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to load appointments", Code: api.CodeInternal})
		return
	}

	c.JSON(http.StatusOK, appts)
}

// Calendar godoc
// @Summary      Provider calendar over a date range
// @Tags         appointments
// @Security     BearerAuth
// @Produce      json
// @Param        from query string true "First day (YYYY-MM-DD)"
// @Param        to   query string true "Last day, inclusive (YYYY-MM-DD)"
// @Success      200 {array}  Appointment
// @Failure      400 {object} api.ErrorResponse
// @Failure      401 {object} api.ErrorResponse
// @Router       /provider/calendar [get]
func (h *Handler) Calendar(c *gin.Context) {
	providerID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "User not authenticated", Code: api.CodeNotAuthenticated})
		return
	}

	fromDay, err := timeutil.ParseDay(c.Query("from"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error(), Code: api.CodeInvalidArgument})
		return
	}
	toDay, err := timeutil.ParseDay(c.Query("to"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error(), Code: api.CodeInvalidArgument})
		return
	}

	from, _ := timeutil.DayBounds(fromDay, time.UTC)
	_, to := timeutil.DayBounds(toDay, time.UTC)
	if !to.After(from) {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "to must not be before from", Code: api.CodeInvalidArgument})
		return
	}

	appts, err := h.service.ListCalendar(c.Request.Context(), providerID, from, to)
	if err != nil {
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to load calendar", Code: api.CodeInternal})
		return
	}

	c.JSON(http.StatusOK, appts)
}

func (h *Handler) identify(c *gin.Context) (userID int, role string, apptID int, ok bool) {
	userID, authed := auth.GetUserID(c)
	if !authed {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "User not authenticated", Code: api.CodeNotAuthenticated})
		return 0, "", 0, false
	}
	role, _ = auth.GetRole(c)

	apptID, err := strconv.Atoi(c.Param("appointmentID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Invalid appointment id", Code: api.CodeInvalidArgument})
		return 0, "", 0, false
	}

	return userID, role, apptID, true
}
