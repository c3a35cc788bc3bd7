package scheduler

import (
	"context"
	"time"

	"clinic-booking-server/internal/models"
)

// Filter selects appointments for List. Zero fields are ignored and the
// remaining ones are combined with AND. From and To bound StartTime inclusively.
type Filter struct {
	PatientID string
	DoctorID  string
	Status    *models.AppointmentStatus
	From      *time.Time
	To        *time.Time
}

// Repository is the record store the Service schedules against.
type Repository interface {
	// Insert persists a new appointment and fills in its ID and timestamps.
	Insert(ctx context.Context, a *models.Appointment) error

	// FindByID returns ErrAppointmentNotFound when no record has the id.
	FindByID(ctx context.Context, id string) (*models.Appointment, error)

	// Find returns the matching appointments ordered by StartTime ascending.
	Find(ctx context.Context, f Filter) ([]models.Appointment, error)

	// FindOverlapping returns the non-cancelled appointments of doctorID
	// whose interval intersects [start, end). excludeID is skipped when set.
	FindOverlapping(ctx context.Context, doctorID string, start, end time.Time, excludeID string) ([]models.Appointment, error)

	// Update writes the mutable fields (times, status, reason, notes) of an
	// existing appointment.
	Update(ctx context.Context, a *models.Appointment) error
}
