package scheduler

import (
	"fmt"

	"clinic-booking-server/internal/models"
)

// StatusPolicy decides which status changes are accepted.
//
//	permissive: any status may move to any status
//	strict:     scheduled -> completed | cancelled
//
// Both policies accept a status being set to its current value, so cancel
// and complete stay idempotent.
type StatusPolicy string

const (
	PolicyPermissive StatusPolicy = "permissive"
	PolicyStrict     StatusPolicy = "strict"
)

// ParseStatusPolicy maps a config value to a policy. Empty means permissive.
func ParseStatusPolicy(raw string) (StatusPolicy, error) {
	switch StatusPolicy(raw) {
	case "", PolicyPermissive:
		return PolicyPermissive, nil
	case PolicyStrict:
		return PolicyStrict, nil
	}
	return "", fmt.Errorf("unknown appointment status policy %q", raw)
}

// Allows reports whether an appointment may move from one status to another.
func (p StatusPolicy) Allows(from, to models.AppointmentStatus) bool {
	if from == to {
		return true
	}
	if p == PolicyStrict {
		return from == models.StatusScheduled &&
			(to == models.StatusCompleted || to == models.StatusCancelled)
	}
	return true
}

// ParseStatus validates a wire status value.
func ParseStatus(raw string) (models.AppointmentStatus, error) {
	s := models.AppointmentStatus(raw)
	if !s.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidStatus, raw)
	}
	return s, nil
}
