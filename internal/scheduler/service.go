package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"clinic-booking-server/internal/lock"
	"clinic-booking-server/internal/models"
)

// Options tunes validation. A non-positive length limit disables that check.
type Options struct {
	ReasonMaxLen int
	NotesMaxLen  int
	StatusPolicy StatusPolicy
}

// DefaultOptions mirrors the column sizes of models.Appointment.
func DefaultOptions() Options {
	return Options{
		ReasonMaxLen: 250,
		NotesMaxLen:  2000,
		StatusPolicy: PolicyPermissive,
	}
}

// CreateInput carries an already authenticated booking request. Times are
// ISO-8601 strings as received on the wire.
type CreateInput struct {
	PatientID string
	DoctorID  string
	StartTime string
	EndTime   string
	Reason    string
	Notes     string
}

// Patch is a partial update. Nil fields are left unchanged.
type Patch struct {
	StartTime *string
	EndTime   *string
	Reason    *string
	Notes     *string
	Status    *models.AppointmentStatus
}

// IsEmpty reports whether the patch changes nothing.
func (p Patch) IsEmpty() bool {
	return p.StartTime == nil && p.EndTime == nil && p.Reason == nil && p.Notes == nil && p.Status == nil
}

// Service books appointments against a Repository. It guarantees that a
// doctor never has two non-cancelled appointments with intersecting
// [start, end) intervals by running every check-and-write for a doctor
// under that doctor's lock.
type Service struct {
	repo   Repository
	locker lock.Locker
	opts   Options
	log    zerolog.Logger
}

// NewService creates a new Service.
func NewService(repo Repository, locker lock.Locker, opts Options, log zerolog.Logger) *Service {
	if opts.StatusPolicy == "" {
		opts.StatusPolicy = PolicyPermissive
	}
	return &Service{
		repo:   repo,
		locker: locker,
		opts:   opts,
		log:    log.With().Str("component", "scheduler").Logger(),
	}
}

// Create books a new appointment. The stored record always starts out scheduled.
func (s *Service) Create(ctx context.Context, in CreateInput) (*models.Appointment, error) {
	start, end, err := parseInterval(in.StartTime, in.EndTime)
	if err != nil {
		return nil, err
	}
	if err := s.checkText(in.Reason, in.Notes); err != nil {
		return nil, err
	}

	appt := &models.Appointment{
		PatientID: in.PatientID,
		DoctorID:  in.DoctorID,
		StartTime: start,
		EndTime:   end,
		Status:    models.StatusScheduled,
		Reason:    in.Reason,
		Notes:     in.Notes,
	}

	err = s.withDoctorLock(ctx, in.DoctorID, func(ctx context.Context) error {
		if err := s.ensureFree(ctx, in.DoctorID, start, end, ""); err != nil {
			return err
		}
		if err := s.repo.Insert(ctx, appt); err != nil {
			return fmt.Errorf("insert appointment: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Str("appointment_id", appt.ID).
		Str("doctor_id", appt.DoctorID).
		Time("start", start).
		Time("end", end).
		Msg("appointment created")
	return appt, nil
}

// List returns the appointments matching f, earliest first.
func (s *Service) List(ctx context.Context, f Filter) ([]models.Appointment, error) {
	if f.Status != nil && !f.Status.IsValid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, *f.Status)
	}
	if f.From != nil {
		from := f.From.UTC()
		f.From = &from
	}
	if f.To != nil {
		to := f.To.UTC()
		f.To = &to
	}

	appts, err := s.repo.Find(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("list appointments: %w", err)
	}
	if appts == nil {
		appts = []models.Appointment{}
	}
	return appts, nil
}

// GetByID returns a single appointment.
func (s *Service) GetByID(ctx context.Context, id string) (*models.Appointment, error) {
	return s.find(ctx, id)
}

// Update applies a partial patch. Whenever the times change, or the
// appointment leaves the cancelled state, the merged interval is validated
// and checked against the doctor's other appointments.
func (s *Service) Update(ctx context.Context, id string, p Patch) (*models.Appointment, error) {
	if p.IsEmpty() {
		return nil, ErrNoUpdatableFields
	}

	var newStart, newEnd *time.Time
	if p.StartTime != nil {
		t, err := ParseInstant(*p.StartTime)
		if err != nil {
			return nil, err
		}
		newStart = &t
	}
	if p.EndTime != nil {
		t, err := ParseInstant(*p.EndTime)
		if err != nil {
			return nil, err
		}
		newEnd = &t
	}
	if p.Status != nil && !p.Status.IsValid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, *p.Status)
	}
	if err := s.checkText(deref(p.Reason), deref(p.Notes)); err != nil {
		return nil, err
	}

	return s.mutate(ctx, id, func(current *models.Appointment) (*models.Appointment, error) {
		next := *current
		if newStart != nil {
			next.StartTime = *newStart
		}
		if newEnd != nil {
			next.EndTime = *newEnd
		}
		if p.Reason != nil {
			next.Reason = *p.Reason
		}
		if p.Notes != nil {
			next.Notes = *p.Notes
		}
		if p.Status != nil {
			next.Status = *p.Status
		}
		if err := checkInterval(next.StartTime, next.EndTime); err != nil {
			return nil, err
		}
		return &next, nil
	})
}

// Cancel marks an appointment cancelled. Cancelling twice is not an error.
func (s *Service) Cancel(ctx context.Context, id string) (*models.Appointment, error) {
	return s.setStatus(ctx, id, models.StatusCancelled)
}

// Complete marks an appointment completed. Completing twice is not an error.
func (s *Service) Complete(ctx context.Context, id string) (*models.Appointment, error) {
	return s.setStatus(ctx, id, models.StatusCompleted)
}

func (s *Service) setStatus(ctx context.Context, id string, status models.AppointmentStatus) (*models.Appointment, error) {
	return s.mutate(ctx, id, func(current *models.Appointment) (*models.Appointment, error) {
		next := *current
		next.Status = status
		return &next, nil
	})
}

// mutate loads the appointment, derives its next state with change and
// persists it. The read, checks and write run under the doctor's lock.
func (s *Service) mutate(ctx context.Context, id string, change func(*models.Appointment) (*models.Appointment, error)) (*models.Appointment, error) {
	current, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	var updated *models.Appointment
	err = s.withDoctorLock(ctx, current.DoctorID, func(ctx context.Context) error {
		current, err := s.find(ctx, id)
		if err != nil {
			return err
		}
		next, err := change(current)
		if err != nil {
			return err
		}

		if !s.opts.StatusPolicy.Allows(current.Status, next.Status) {
			return fmt.Errorf("%w: %s to %s", ErrInvalidTransition, current.Status, next.Status)
		}

		moved := !next.StartTime.Equal(current.StartTime) || !next.EndTime.Equal(current.EndTime)
		reopened := !current.Blocks() && next.Blocks()
		if next.Blocks() && (moved || reopened) {
			if err := s.ensureFree(ctx, next.DoctorID, next.StartTime, next.EndTime, next.ID); err != nil {
				return err
			}
		}

		if err := s.repo.Update(ctx, next); err != nil {
			return fmt.Errorf("update appointment %s: %w", id, err)
		}
		updated, err = s.find(ctx, id)
		if err != nil {
			return err
		}

		if current.Status != next.Status {
			s.log.Info().
				Str("appointment_id", id).
				Str("from", string(current.Status)).
				Str("to", string(next.Status)).
				Msg("appointment status changed")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *Service) find(ctx context.Context, id string) (*models.Appointment, error) {
	appt, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrAppointmentNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("load appointment %s: %w", id, err)
	}
	return appt, nil
}

// ensureFree fails with ErrSchedulingConflict when the doctor already has a
// non-cancelled appointment intersecting [start, end).
func (s *Service) ensureFree(ctx context.Context, doctorID string, start, end time.Time, excludeID string) error {
	clashes, err := s.repo.FindOverlapping(ctx, doctorID, start, end, excludeID)
	if err != nil {
		return fmt.Errorf("check doctor availability: %w", err)
	}
	if len(clashes) == 0 {
		return nil
	}

	s.log.Debug().
		Str("doctor_id", doctorID).
		Str("conflicts_with", clashes[0].ID).
		Time("start", start).
		Time("end", end).
		Msg("scheduling conflict")
	return fmt.Errorf("%w (conflicts with appointment %s)", ErrSchedulingConflict, clashes[0].ID)
}

func (s *Service) withDoctorLock(ctx context.Context, doctorID string, fn func(ctx context.Context) error) error {
	err := s.locker.WithLock(ctx, "doctor:"+doctorID, fn)
	if errors.Is(err, lock.ErrNotAcquired) {
		return fmt.Errorf("%w: %v", ErrScheduleBusy, err)
	}
	return err
}

func (s *Service) checkText(reason, notes string) error {
	if s.opts.ReasonMaxLen > 0 && utf8.RuneCountInString(reason) > s.opts.ReasonMaxLen {
		return fmt.Errorf("%w: reason is limited to %d characters", ErrFieldTooLong, s.opts.ReasonMaxLen)
	}
	if s.opts.NotesMaxLen > 0 && utf8.RuneCountInString(notes) > s.opts.NotesMaxLen {
		return fmt.Errorf("%w: notes are limited to %d characters", ErrFieldTooLong, s.opts.NotesMaxLen)
	}
	return nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
