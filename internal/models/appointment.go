package models

import (
	"time"
)

// AppointmentStatus represents the status of an appointment
type AppointmentStatus string

const (
	StatusScheduled AppointmentStatus = "scheduled"
	StatusCompleted AppointmentStatus = "completed"
	StatusCancelled AppointmentStatus = "cancelled"
)

// IsValid reports whether s is one of the persisted status values.
func (s AppointmentStatus) IsValid() bool {
	switch s {
	case StatusScheduled, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// Appointment represents a booked slot between a patient and a doctor.
// PatientID and DoctorID are weak references.
type Appointment struct {
	BaseModel
	PatientID string            `gorm:"size:36;not null;index" json:"patientId"`
	DoctorID  string            `gorm:"size:36;not null;index:idx_appointments_doctor_start,priority:1" json:"doctorId"`
	StartTime time.Time         `gorm:"not null;index:idx_appointments_doctor_start,priority:2" json:"startTime"`
	EndTime   time.Time         `gorm:"not null" json:"endTime"`
	Status    AppointmentStatus `gorm:"size:20;not null;default:'scheduled';index" json:"status"`
	Reason    string            `gorm:"size:250" json:"reason,omitempty"`
	Notes     string            `gorm:"type:text" json:"notes,omitempty"`
}

// Overlaps reports whether [a.StartTime, a.EndTime) intersects [start, end).
func (a *Appointment) Overlaps(start, end time.Time) bool {
	return a.StartTime.Before(end) && start.Before(a.EndTime)
}

// Blocks reports whether a occupies its doctor's time.
func (a *Appointment) Blocks() bool {
	return a.Status != StatusCancelled
}
