package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"clinic-booking-server/internal/models"
	"clinic-booking-server/internal/scheduler"
)

// MemoryAppointmentStore is a map-backed store used in tests and local runs
// without a database. Callers always receive copies.
type MemoryAppointmentStore struct {
	mu    sync.RWMutex
	appts map[string]models.Appointment
	now   func() time.Time
}

// NewMemoryAppointmentStore creates an empty MemoryAppointmentStore.
func NewMemoryAppointmentStore() *MemoryAppointmentStore {
	return &MemoryAppointmentStore{
		appts: make(map[string]models.Appointment),
		now:   time.Now,
	}
}

var _ scheduler.Repository = (*MemoryAppointmentStore)(nil)

func (s *MemoryAppointmentStore) Insert(ctx context.Context, a *models.Appointment) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	now := s.now().UTC()
	a.CreatedAt = now
	a.UpdatedAt = now
	a.StartTime = a.StartTime.UTC()
	a.EndTime = a.EndTime.UTC()
	s.appts[a.ID] = *a
	return nil
}

func (s *MemoryAppointmentStore) FindByID(ctx context.Context, id string) (*models.Appointment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	appt, ok := s.appts[id]
	if !ok {
		return nil, scheduler.ErrAppointmentNotFound
	}
	return &appt, nil
}

func (s *MemoryAppointmentStore) Find(ctx context.Context, f scheduler.Filter) ([]models.Appointment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []models.Appointment
	for _, a := range s.appts {
		if f.PatientID != "" && a.PatientID != f.PatientID {
			continue
		}
		if f.DoctorID != "" && a.DoctorID != f.DoctorID {
			continue
		}
		if f.Status != nil && a.Status != *f.Status {
			continue
		}
		if f.From != nil && a.StartTime.Before(*f.From) {
			continue
		}
		if f.To != nil && a.StartTime.After(*f.To) {
			continue
		}
		out = append(out, a)
	}
	sortByStart(out)
	return out, nil
}

func (s *MemoryAppointmentStore) FindOverlapping(ctx context.Context, doctorID string, start, end time.Time, excludeID string) ([]models.Appointment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []models.Appointment
	for _, a := range s.appts {
		if a.DoctorID != doctorID || a.ID == excludeID || !a.Blocks() {
			continue
		}
		if a.Overlaps(start, end) {
			out = append(out, a)
		}
	}
	sortByStart(out)
	return out, nil
}

func (s *MemoryAppointmentStore) Update(ctx context.Context, a *models.Appointment) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.appts[a.ID]
	if !ok {
		return scheduler.ErrAppointmentNotFound
	}
	stored.StartTime = a.StartTime.UTC()
	stored.EndTime = a.EndTime.UTC()
	stored.Status = a.Status
	stored.Reason = a.Reason
	stored.Notes = a.Notes
	stored.UpdatedAt = s.now().UTC()
	s.appts[a.ID] = stored
	return nil
}

// Len returns the number of stored appointments.
func (s *MemoryAppointmentStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.appts)
}

func sortByStart(appts []models.Appointment) {
	sort.Slice(appts, func(i, j int) bool {
		if appts[i].StartTime.Equal(appts[j].StartTime) {
			return appts[i].ID < appts[j].ID
		}
		return appts[i].StartTime.Before(appts[j].StartTime)
	})
}
