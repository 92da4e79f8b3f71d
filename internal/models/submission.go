package models

import (
	"strings"
	"time"
)

// AttendanceStatus represents the attendance confirmation status
type AttendanceStatus string

const (
	StatusAttending    AttendanceStatus = "Hadir"
	StatusNotAttending AttendanceStatus = "Tidak Hadir"
	StatusUndecided    AttendanceStatus = "Masih Ragu"
)

// Statuses lists every accepted status in form order.
var Statuses = []AttendanceStatus{StatusAttending, StatusNotAttending, StatusUndecided}

// Valid reports whether s is one of the known statuses.
func (s AttendanceStatus) Valid() bool {
	for _, known := range Statuses {
		if s == known {
			return true
		}
	}
	return false
}

// Submission is one visitor's RSVP entry
type Submission struct {
	ID        string           `json:"id" db:"id"`
	Name      string           `json:"name" db:"name"`
	Status    AttendanceStatus `json:"status" db:"status"`
	Message   string           `json:"message" db:"message"`
	CreatedAt time.Time        `json:"created_at" db:"created_at"`
}

// Draft is an RSVP form payload before it is stored
type Draft struct {
	Name    string           `json:"name"`
	Status  AttendanceStatus `json:"status"`
	Message string           `json:"message"`
}

// Normalize trims the text fields and applies the default status.
func (d Draft) Normalize() Draft {
	d.Name = strings.TrimSpace(d.Name)
	d.Message = strings.TrimSpace(d.Message)
	d.Status = AttendanceStatus(strings.TrimSpace(string(d.Status)))
	if d.Status == "" {
		d.Status = StatusAttending
	}
	return d
}

// Complete reports whether both name and message carry text.
func (d Draft) Complete() bool {
	return strings.TrimSpace(d.Name) != "" && strings.TrimSpace(d.Message) != ""
}
