package handlers

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"

	"therapy-admin-server/internal/metrics"
	"therapy-admin-server/internal/models"
	"therapy-admin-server/internal/services"
	"therapy-admin-server/internal/utils"
)

const liveSessionsPath = "/therapist-admin/sessions"

// TherapistHandler serves the therapist's dashboard, calendar, availability,
// live sessions and profile.
type TherapistHandler struct {
	base
	Booking  *services.BookingService
	Profiles *services.ProfileService
}

// NewTherapistHandler creates a new TherapistHandler.
func NewTherapistHandler(booking *services.BookingService, profiles *services.ProfileService, logger *slog.Logger, m *metrics.Metrics) *TherapistHandler {
	return &TherapistHandler{base: newBase(logger, m), Booking: booking, Profiles: profiles}
}

// Dashboard returns pending requests, upcoming sessions and the patient count.
func (h *TherapistHandler) Dashboard(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	d, err := h.Booking.Dashboard(c.Request.Context(), userID)
	if err != nil {
		h.fail(c, "dashboard", userID, err)
		return
	}
	utils.Success(c, "Dashboard retrieved successfully", d)
}

// Calendar returns the month grid for ?month=YYYY-MM, defaulting to this month.
func (h *TherapistHandler) Calendar(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	month := time.Now().UTC()
	if raw := c.Query("month"); raw != "" {
		parsed, err := time.ParseInLocation("2006-01", raw, time.UTC)
		if err != nil {
			utils.BadRequest(c, "month must be formatted as YYYY-MM")
			return
		}
		month = parsed
	}

	cal, err := h.Booking.MonthCalendar(c.Request.Context(), userID, month)
	if err != nil {
		h.fail(c, "calendar", userID, err)
		return
	}
	utils.Success(c, "Calendar retrieved successfully", cal)
}

// GetAvailability returns the caller's weekday availability.
func (h *TherapistHandler) GetAvailability(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	avail, err := h.Booking.GetAvailability(c.Request.Context(), userID)
	if err != nil {
		h.fail(c, "get_availability", userID, err)
		return
	}
	days := make(map[string]bool, 7)
	for _, day := range models.Weekdays {
		days[day] = avail.IsDayAvailable(day)
	}
	utils.Success(c, "Availability retrieved successfully", days)
}

// AvailabilityRequest represents the request body for setting one weekday.
type AvailabilityRequest struct {
	Available *bool `json:"available" form:"available" binding:"required"`
}

// SetAvailability opens or closes one weekday.
func (h *TherapistHandler) SetAvailability(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req AvailabilityRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}
	weekday := c.Param("weekday")
	avail, err := h.Booking.SetDayAvailability(c.Request.Context(), userID, weekday, *req.Available)
	if err != nil {
		h.fail(c, "set_availability", weekday, err)
		return
	}
	utils.Success(c, "Availability updated", avail)
}

// ToggleAvailability flips one weekday.
func (h *TherapistHandler) ToggleAvailability(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	weekday := c.Param("weekday")
	open, err := h.Booking.ToggleDayAvailability(c.Request.Context(), userID, weekday)
	if err != nil {
		h.fail(c, "toggle_availability", weekday, err)
		return
	}
	utils.Success(c, "Availability updated", gin.H{"weekday": weekday, "available": open})
}

// LiveSessionRequest represents the request body for a live session.
type LiveSessionRequest struct {
	Title       string    `json:"title" form:"title" binding:"required"`
	StartTime   time.Time `json:"startTime" form:"startTime" binding:"required"`
	EndTime     time.Time `json:"endTime" form:"endTime" binding:"required,gtfield=StartTime"`
	MeetingLink string    `json:"meetingLink" form:"meetingLink" binding:"omitempty,url"`
	IsActive    *bool     `json:"isActive" form:"isActive"`
}

func (r LiveSessionRequest) input() services.LiveSessionInput {
	return services.LiveSessionInput{
		Title:       r.Title,
		StartTime:   r.StartTime,
		EndTime:     r.EndTime,
		MeetingLink: r.MeetingLink,
	}
}

// ListLiveSessions returns the caller's live sessions.
func (h *TherapistHandler) ListLiveSessions(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	sessions, err := h.Booking.ListLiveSessions(c.Request.Context(), userID)
	if err != nil {
		h.fail(c, "list_live_sessions", userID, err)
		return
	}
	utils.Success(c, "Live sessions retrieved successfully", sessions)
}

// CreateLiveSession schedules a live session hosted by the caller.
func (h *TherapistHandler) CreateLiveSession(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req LiveSessionRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}
	ls, err := h.Booking.CreateLiveSession(c.Request.Context(), userID, req.input())
	if err != nil {
		h.fail(c, "create_live_session", "", err)
		return
	}
	utils.Created(c, "Live session created successfully", ls)
}

// GetLiveSession returns one of the caller's live sessions.
func (h *TherapistHandler) GetLiveSession(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id := c.Param("id")
	ls, err := h.Booking.GetLiveSession(c.Request.Context(), id, userID)
	if err != nil {
		h.failRead(c, liveSessionsPath, "get_live_session", id, err)
		return
	}
	utils.Success(c, "Live session retrieved successfully", ls)
}

// UpdateLiveSession replaces a live session's fields.
func (h *TherapistHandler) UpdateLiveSession(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id := c.Param("id")
	var req LiveSessionRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}
	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}
	ls, err := h.Booking.UpdateLiveSession(c.Request.Context(), id, userID, req.input(), active)
	if err != nil {
		h.fail(c, "update_live_session", id, err)
		return
	}
	utils.Success(c, "Live session updated successfully", ls)
}

// DeleteLiveSession removes one of the caller's live sessions.
func (h *TherapistHandler) DeleteLiveSession(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id := c.Param("id")
	if err := h.Booking.DeleteLiveSession(c.Request.Context(), id, userID); err != nil {
		h.fail(c, "delete_live_session", id, err)
		return
	}
	utils.Success(c, "Live session deleted successfully", nil)
}

// ProfileRequest represents the request body for editing one's own profile.
type ProfileRequest struct {
	FullName    string `json:"fullName" form:"fullName" binding:"required"`
	PhoneNumber string `json:"phoneNumber" form:"phoneNumber"`
	Address     string `json:"address" form:"address"`
	About       string `json:"about" form:"about"`
	Specialty   string `json:"specialty" form:"specialty"`
}

// GetProfile returns the caller's profile.
func (h *TherapistHandler) GetProfile(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	p, err := h.Profiles.GetProfile(c.Request.Context(), userID)
	if err != nil {
		h.fail(c, "get_profile", userID, err)
		return
	}
	utils.Success(c, "Profile retrieved successfully", p)
}

// UpdateProfile saves the caller's profile edits.
func (h *TherapistHandler) UpdateProfile(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req ProfileRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}
	p, err := h.Profiles.UpdateOwn(c.Request.Context(), userID, services.ProfileInput{
		FullName:    req.FullName,
		PhoneNumber: req.PhoneNumber,
		Address:     req.Address,
		About:       req.About,
		Specialty:   req.Specialty,
	})
	if err != nil {
		h.fail(c, "update_profile", userID, err)
		return
	}
	utils.Success(c, "Profile updated successfully", p)
}
