package handlers

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"

	"therapy-admin-server/internal/metrics"
	"therapy-admin-server/internal/services"
	"therapy-admin-server/internal/utils"
)

const appointmentsPath = "/therapist-admin/appointments"

// AppointmentHandler runs the therapist's side of the booking workflow.
type AppointmentHandler struct {
	base
	Booking *services.BookingService
}

// NewAppointmentHandler creates a new AppointmentHandler.
func NewAppointmentHandler(booking *services.BookingService, logger *slog.Logger, m *metrics.Metrics) *AppointmentHandler {
	return &AppointmentHandler{base: newBase(logger, m), Booking: booking}
}

// ConfirmRequest carries the optional reply sent with a confirmation.
type ConfirmRequest struct {
	Reply string `json:"reply" form:"reply"`
}

// CancelRequest carries the optional cancellation reason.
type CancelRequest struct {
	Reason string `json:"reason" form:"reason"`
}

// MessageRequest represents the request body for messaging a patient.
type MessageRequest struct {
	Message string `json:"message" form:"message" binding:"required"`
}

// RescheduleRequest represents the request body for moving an appointment.
type RescheduleRequest struct {
	Date string `json:"date" form:"date" binding:"required,datetime=2006-01-02"`
	Time string `json:"time" form:"time" binding:"required,datetime=15:04"`
}

// notifyOutcome reports a committed change whose patient notification failed.
func (h *AppointmentHandler) notifyOutcome(c *gin.Context, id, message string, data interface{}, err error) {
	if err != nil {
		if !services.IsNotificationFailure(err) {
			h.fail(c, "booking", id, err)
			return
		}
		h.Logger.Error("patient notification failed", "appointment_id", id, "error", err)
		h.Metrics.StoreError("notify_patient")
		message += " The patient could not be notified."
	}
	utils.Success(c, message, data)
}

// ListAppointments returns the caller's appointments.
func (h *AppointmentHandler) ListAppointments(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	appts, err := h.Booking.ListAppointments(c.Request.Context(), userID)
	if err != nil {
		h.fail(c, "list_appointments", userID, err)
		return
	}
	utils.Success(c, "Appointments retrieved successfully", appts)
}

// GetAppointment returns one of the caller's appointments.
func (h *AppointmentHandler) GetAppointment(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id := c.Param("id")
	a, err := h.Booking.GetAppointment(c.Request.Context(), id, userID)
	if err != nil {
		h.failRead(c, appointmentsPath, "get_appointment", id, err)
		return
	}
	utils.Success(c, "Appointment retrieved successfully", a)
}

// Confirm accepts a pending request.
func (h *AppointmentHandler) Confirm(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id := c.Param("id")
	var req ConfirmRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}
	a, err := h.Booking.Confirm(c.Request.Context(), id, userID, req.Reply)
	if err != nil && !services.IsNotificationFailure(err) {
		h.fail(c, "confirm_appointment", id, err)
		return
	}
	h.notifyOutcome(c, id, "Appointment confirmed.", a, err)
}

// Reject deletes a pending request without telling the patient.
func (h *AppointmentHandler) Reject(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id := c.Param("id")
	if err := h.Booking.Reject(c.Request.Context(), id, userID); err != nil {
		h.fail(c, "reject_appointment", id, err)
		return
	}
	utils.Success(c, "Appointment rejected.", nil)
}

// Cancel deletes a confirmed appointment.
func (h *AppointmentHandler) Cancel(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id := c.Param("id")
	var req CancelRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}
	err := h.Booking.Cancel(c.Request.Context(), id, userID, req.Reason)
	h.notifyOutcome(c, id, "Appointment cancelled.", nil, err)
}

// Reschedule moves a confirmed appointment to a new date and time (UTC).
func (h *AppointmentHandler) Reschedule(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id := c.Param("id")
	var req RescheduleRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	at, err := time.ParseInLocation("2006-01-02 15:04", req.Date+" "+req.Time, time.UTC)
	if err != nil {
		utils.BadRequest(c, "Invalid date or time")
		return
	}
	if at.Before(time.Now()) {
		utils.BadRequest(c, "New appointment date must be in the future.")
		return
	}

	a, err := h.Booking.Reschedule(c.Request.Context(), id, userID, at)
	if err != nil && !services.IsNotificationFailure(err) {
		h.fail(c, "reschedule_appointment", id, err)
		return
	}
	h.notifyOutcome(c, id, "Appointment rescheduled.", a, err)
}

// Message notifies the patient without changing the appointment.
func (h *AppointmentHandler) Message(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id := c.Param("id")
	var req MessageRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}
	if err := h.Booking.Message(c.Request.Context(), id, userID, req.Message); err != nil {
		h.fail(c, "message_patient", id, err)
		return
	}
	utils.Success(c, "Message sent.", nil)
}
