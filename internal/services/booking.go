package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"therapy-admin-server/internal/metrics"
	"therapy-admin-server/internal/models"
)

// Transition is a booking workflow action.
type Transition string

const (
	TransitionConfirm    Transition = "confirm"
	TransitionReject     Transition = "reject"
	TransitionCancel     Transition = "cancel"
	TransitionReschedule Transition = "reschedule"
	TransitionMessage    Transition = "message"
)

// DefaultConfirmReply is stored when a therapist confirms without a reply.
const DefaultConfirmReply = "Session confirmed."

// notifyRule describes the patient notification sent after a transition.
// fallback builds the message when the therapist supplied none.
type notifyRule struct {
	notify   bool
	title    string
	fallback func(a *models.Appointment) string
}

// NotificationPolicy lists, per transition, whether the patient is told.
// Reject is deliberately silent.
var NotificationPolicy = map[Transition]notifyRule{
	TransitionConfirm: {
		notify: true,
		title:  "Booking Confirmed",
		fallback: func(a *models.Appointment) string {
			return fmt.Sprintf("Your session on %s is confirmed.", formatDate(a.ScheduledAt))
		},
	},
	TransitionReject: {notify: false},
	TransitionCancel: {
		notify: true,
		title:  "Appointment Cancelled",
		fallback: func(a *models.Appointment) string {
			return fmt.Sprintf("Your appointment on %s was cancelled.", formatDate(a.ScheduledAt))
		},
	},
	TransitionReschedule: {
		notify: true,
		title:  "Appointment Rescheduled",
		fallback: func(a *models.Appointment) string {
			return fmt.Sprintf("Your appointment has been moved to %s at %s.",
				formatDate(a.ScheduledAt), a.ScheduledAt.UTC().Format("15:04"))
		},
	},
	TransitionMessage: {notify: true, title: "Message from Therapist"},
}

// Notifies reports whether the transition sends a patient notification.
func Notifies(t Transition) bool {
	return NotificationPolicy[t].notify
}

func formatDate(t time.Time) string {
	return t.UTC().Format("Jan 2, 2006")
}

// BookingService runs the appointment workflow and therapist scheduling.
type BookingService struct {
	DB      *gorm.DB
	Metrics *metrics.Metrics
	now     func() time.Time
}

// NewBookingService creates a new BookingService.
func NewBookingService(db *gorm.DB, m *metrics.Metrics) *BookingService {
	return &BookingService{DB: db, Metrics: m, now: func() time.Time { return time.Now().UTC() }}
}

// Dashboard is the therapist's landing summary.
type Dashboard struct {
	Pending  []models.Appointment `json:"pending"`
	Upcoming []models.Appointment `json:"upcoming"`
	Patients int64                `json:"patients"`
}

// ListAppointments returns the therapist's appointments by time.
func (s *BookingService) ListAppointments(ctx context.Context, therapistID string) ([]models.Appointment, error) {
	var appts []models.Appointment
	err := s.DB.WithContext(ctx).Preload("User").Preload("Therapist").
		Where("therapist_id = ?", therapistID).
		Order("scheduled_at asc").
		Find(&appts).Error
	if err != nil {
		return nil, err
	}
	resolveAll(appts)
	return appts, nil
}

// Dashboard loads pending requests, upcoming confirmed sessions and the
// number of distinct patients.
func (s *BookingService) Dashboard(ctx context.Context, therapistID string) (*Dashboard, error) {
	db := s.DB.WithContext(ctx)
	d := &Dashboard{}

	if err := db.Preload("User").
		Where("therapist_id = ? AND status = ?", therapistID, models.StatusPending).
		Order("scheduled_at asc").
		Find(&d.Pending).Error; err != nil {
		return nil, err
	}
	if err := db.Preload("User").
		Where("therapist_id = ? AND status = ? AND scheduled_at >= ?", therapistID, models.StatusConfirmed, s.now()).
		Order("scheduled_at asc").
		Find(&d.Upcoming).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.Appointment{}).
		Where("therapist_id = ?", therapistID).
		Distinct("user_id").
		Count(&d.Patients).Error; err != nil {
		return nil, err
	}
	resolveAll(d.Pending)
	resolveAll(d.Upcoming)
	return d, nil
}

func resolveAll(appts []models.Appointment) {
	for i := range appts {
		appts[i].ResolveParticipants()
	}
}

// GetAppointment loads an appointment owned by therapistID.
func (s *BookingService) GetAppointment(ctx context.Context, id, therapistID string) (*models.Appointment, error) {
	return s.load(s.DB.WithContext(ctx), id, therapistID)
}

func (s *BookingService) load(db *gorm.DB, id, therapistID string) (*models.Appointment, error) {
	var a models.Appointment
	if err := db.Preload("User").Preload("Therapist").First(&a, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	if a.TherapistID != therapistID {
		return nil, ErrAccessDenied
	}
	a.ResolveParticipants()
	return &a, nil
}

// Confirm accepts a pending request and stores the therapist's reply.
func (s *BookingService) Confirm(ctx context.Context, id, therapistID, reply string) (*models.Appointment, error) {
	db := s.DB.WithContext(ctx)
	a, err := s.load(db, id, therapistID)
	if err != nil {
		return nil, err
	}
	if a.Status != models.StatusPending {
		return nil, ErrInvalidTransition
	}

	reply = strings.TrimSpace(reply)
	stored := reply
	if stored == "" {
		stored = DefaultConfirmReply
	}
	if err := db.Model(&models.Appointment{}).Where("id = ?", a.ID).Updates(map[string]interface{}{
		"status":          models.StatusConfirmed,
		"therapist_reply": stored,
	}).Error; err != nil {
		return nil, err
	}
	a.Status = models.StatusConfirmed
	a.TherapistReply = stored

	return a, s.finish(db, TransitionConfirm, a, reply)
}

// Reject deletes a pending request.
func (s *BookingService) Reject(ctx context.Context, id, therapistID string) error {
	db := s.DB.WithContext(ctx)
	a, err := s.load(db, id, therapistID)
	if err != nil {
		return err
	}
	if a.Status != models.StatusPending {
		return ErrInvalidTransition
	}
	if err := affected(db.Where("id = ?", a.ID).Delete(&models.Appointment{})); err != nil {
		return err
	}
	return s.finish(db, TransitionReject, a, "")
}

// Cancel deletes a confirmed appointment and tells the patient why.
func (s *BookingService) Cancel(ctx context.Context, id, therapistID, reason string) error {
	db := s.DB.WithContext(ctx)
	a, err := s.load(db, id, therapistID)
	if err != nil {
		return err
	}
	if a.Status != models.StatusConfirmed {
		return ErrInvalidTransition
	}
	if err := affected(db.Where("id = ?", a.ID).Delete(&models.Appointment{})); err != nil {
		return err
	}
	return s.finish(db, TransitionCancel, a, strings.TrimSpace(reason))
}

// Reschedule moves a confirmed appointment. A slot already held by the same
// therapist yields ErrSlotTaken and leaves the row unchanged.
func (s *BookingService) Reschedule(ctx context.Context, id, therapistID string, at time.Time) (*models.Appointment, error) {
	db := s.DB.WithContext(ctx)
	a, err := s.load(db, id, therapistID)
	if err != nil {
		return nil, err
	}
	if a.Status != models.StatusConfirmed {
		return nil, ErrInvalidTransition
	}

	at = at.UTC()
	if err := db.Model(&models.Appointment{}).Where("id = ?", a.ID).Update("scheduled_at", at).Error; err != nil {
		if models.IsUniqueViolation(err) {
			return nil, ErrSlotTaken
		}
		return nil, err
	}
	a.ScheduledAt = at

	return a, s.finish(db, TransitionReschedule, a, "")
}

// Message sends the patient a notification without changing the appointment.
func (s *BookingService) Message(ctx context.Context, id, therapistID, message string) error {
	message = strings.TrimSpace(message)
	if message == "" {
		return ErrInvalidInput
	}
	db := s.DB.WithContext(ctx)
	a, err := s.load(db, id, therapistID)
	if err != nil {
		return err
	}
	return s.finish(db, TransitionMessage, a, message)
}

// finish records the transition and sends the notification the policy asks
// for. The state change is already committed when notification fails.
func (s *BookingService) finish(db *gorm.DB, t Transition, a *models.Appointment, message string) error {
	s.Metrics.Transition("booking", string(t))

	rule := NotificationPolicy[t]
	if !rule.notify {
		return nil
	}
	if message == "" && rule.fallback != nil {
		message = rule.fallback(a)
	}
	n := models.Notification{UserID: a.UserID, Title: rule.title, Message: message}
	if err := db.Create(&n).Error; err != nil {
		return fmt.Errorf("%w: %v", ErrNotificationFailed, err)
	}
	return nil
}

// GetAvailability returns the therapist's weekday map.
func (s *BookingService) GetAvailability(ctx context.Context, therapistID string) (models.Availability, error) {
	var p models.Profile
	if err := s.DB.WithContext(ctx).Select("id", "availability").First(&p, "id = ?", therapistID).Error; err != nil {
		return nil, notFound(err)
	}
	return p.AvailabilityMap(), nil
}

// SetDayAvailability writes one weekday key and leaves the others alone.
func (s *BookingService) SetDayAvailability(ctx context.Context, therapistID, weekday string, open bool) (models.Availability, error) {
	return s.updateDay(ctx, therapistID, weekday, func(bool) bool { return open })
}

// ToggleDayAvailability inverts the weekday's current availability.
func (s *BookingService) ToggleDayAvailability(ctx context.Context, therapistID, weekday string) (bool, error) {
	avail, err := s.updateDay(ctx, therapistID, weekday, func(current bool) bool { return !current })
	if err != nil {
		return false, err
	}
	return avail[strings.ToLower(weekday)], nil
}

// updateDay reads, changes and writes one weekday under a row lock.
func (s *BookingService) updateDay(ctx context.Context, therapistID, weekday string, next func(current bool) bool) (models.Availability, error) {
	weekday = strings.ToLower(weekday)
	if !models.IsWeekday(weekday) {
		return nil, ErrInvalidInput
	}
	var out models.Availability
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var p models.Profile
		err := tx.Clauses(clause.Locking{Strength: clause.LockingStrengthUpdate}).
			Select("id", "availability").First(&p, "id = ?", therapistID).Error
		if err != nil {
			return notFound(err)
		}
		out = p.AvailabilityMap()
		out[weekday] = next(out.IsDayAvailable(weekday))
		return tx.Model(&models.Profile{}).Where("id = ?", therapistID).
			Update("availability", datatypes.NewJSONType(out)).Error
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// IsDayAvailable reports whether the therapist accepts bookings on weekday.
func (s *BookingService) IsDayAvailable(ctx context.Context, therapistID, weekday string) (bool, error) {
	a, err := s.GetAvailability(ctx, therapistID)
	if err != nil {
		return false, err
	}
	return a.IsDayAvailable(weekday), nil
}

// IsNotificationFailure reports whether err only means the patient was not told.
func IsNotificationFailure(err error) bool {
	return errors.Is(err, ErrNotificationFailed)
}
