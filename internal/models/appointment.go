package models

import (
	"time"
)

// AppointmentStatus represents the status of an appointment
type AppointmentStatus string

// Rejection and cancellation delete the row, so there is no status for them.
const (
	StatusPending   AppointmentStatus = "pending"
	StatusConfirmed AppointmentStatus = "confirmed"
)

// Appointment represents a booked session between a user and a therapist
type Appointment struct {
	BaseModel
	UserID         string            `gorm:"size:36;index" json:"userId"`
	TherapistID    string            `gorm:"size:36;uniqueIndex:idx_therapist_slot" json:"therapistId"`
	ScheduledAt    time.Time         `gorm:"uniqueIndex:idx_therapist_slot" json:"scheduledAt"`
	Status         AppointmentStatus `gorm:"size:20;index" json:"status"`
	Notes          string            `gorm:"type:text" json:"notes"`
	TherapistReply string            `gorm:"type:text" json:"therapistReply"`

	// Relations
	User          *Profile `gorm:"foreignKey:UserID" json:"-"`
	Therapist     *Profile `gorm:"foreignKey:TherapistID" json:"-"`
	UserName      string   `gorm:"-" json:"userName"`
	TherapistName string   `gorm:"-" json:"therapistName"`
}

// ResolveParticipants fills the display names from preloaded profiles.
func (a *Appointment) ResolveParticipants() {
	a.UserName = DisplayName(a.User, DeletedUserName)
	a.TherapistName = DisplayName(a.Therapist, DeletedTherapistName)
}

// LiveSession is a broadcast session hosted by a therapist
type LiveSession struct {
	BaseModel
	HostID      string    `gorm:"size:36;index" json:"hostId"`
	Title       string    `gorm:"size:255;not null" json:"title"`
	StartTime   time.Time `gorm:"index" json:"startTime"`
	EndTime     time.Time `json:"endTime"`
	MeetingLink string    `gorm:"size:512" json:"meetingLink"`
	IsActive    bool      `json:"isActive"`

	Host     *Profile `gorm:"foreignKey:HostID" json:"-"`
	HostName string   `gorm:"-" json:"hostName"`
}

// ResolveHost fills HostName from the preloaded host.
func (s *LiveSession) ResolveHost() {
	s.HostName = DisplayName(s.Host, DeletedTherapistName)
}

// Notification is a message addressed to a user
type Notification struct {
	BaseModel
	UserID  string `gorm:"size:36;index" json:"userId"`
	Title   string `gorm:"size:255" json:"title"`
	Message string `gorm:"type:text" json:"message"`
}
