package services

import (
	"context"
	"strings"
	"time"

	"github.com/jinzhu/now"

	"therapy-admin-server/internal/models"
)

// CalendarDay is one cell of the month grid.
type CalendarDay struct {
	Date         time.Time            `json:"date"`
	Weekday      string               `json:"weekday"`
	InMonth      bool                 `json:"inMonth"`
	Available    bool                 `json:"available"`
	Appointments []models.Appointment `json:"appointments"`
	LiveSessions []models.LiveSession `json:"liveSessions"`
}

// MonthCalendar is a Sunday-start grid of whole weeks covering one month.
type MonthCalendar struct {
	Month time.Time     `json:"month"`
	Days  []CalendarDay `json:"days"`
}

var calendarConfig = &now.Config{
	WeekStartDay: time.Sunday,
	TimeLocation: time.UTC,
}

// CalendarBounds returns the first and last instant of the grid shown for month.
func CalendarBounds(month time.Time) (gridStart, gridEnd time.Time) {
	n := calendarConfig.With(month.UTC())
	gridStart = calendarConfig.With(n.BeginningOfMonth()).BeginningOfWeek()
	gridEnd = calendarConfig.With(n.EndOfMonth()).EndOfWeek()
	return gridStart, gridEnd
}

// MonthCalendar lays out the therapist's appointments, every active live
// session and the weekday availability over the month grid.
func (s *BookingService) MonthCalendar(ctx context.Context, therapistID string, month time.Time) (*MonthCalendar, error) {
	gridStart, gridEnd := CalendarBounds(month)
	db := s.DB.WithContext(ctx)

	availability, err := s.GetAvailability(ctx, therapistID)
	if err != nil {
		return nil, err
	}

	var appts []models.Appointment
	if err := db.Preload("User").
		Where("therapist_id = ? AND scheduled_at BETWEEN ? AND ?", therapistID, gridStart, gridEnd).
		Order("scheduled_at asc").
		Find(&appts).Error; err != nil {
		return nil, err
	}
	resolveAll(appts)

	var sessions []models.LiveSession
	if err := db.Preload("Host").
		Where("is_active = ? AND start_time BETWEEN ? AND ?", true, gridStart, gridEnd).
		Order("start_time asc").
		Find(&sessions).Error; err != nil {
		return nil, err
	}

	monthStart := calendarConfig.With(month.UTC()).BeginningOfMonth()
	cal := &MonthCalendar{Month: monthStart}
	index := map[string]int{}
	for d := gridStart; !d.After(gridEnd); d = d.AddDate(0, 0, 1) {
		weekday := strings.ToLower(d.Weekday().String())
		index[d.Format(time.DateOnly)] = len(cal.Days)
		cal.Days = append(cal.Days, CalendarDay{
			Date:      d,
			Weekday:   weekday,
			InMonth:   d.Month() == monthStart.Month(),
			Available: availability.IsDayAvailable(weekday),
		})
	}

	for _, a := range appts {
		if i, ok := index[a.ScheduledAt.UTC().Format(time.DateOnly)]; ok {
			cal.Days[i].Appointments = append(cal.Days[i].Appointments, a)
		}
	}
	for _, ls := range sessions {
		ls.ResolveHost()
		if i, ok := index[ls.StartTime.UTC().Format(time.DateOnly)]; ok {
			cal.Days[i].LiveSessions = append(cal.Days[i].LiveSessions, ls)
		}
	}
	return cal, nil
}
