package store

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"clinic-booking-server/internal/models"
	"clinic-booking-server/internal/scheduler"
)

// GormAppointmentStore keeps appointments in the relational database.
type GormAppointmentStore struct {
	db *gorm.DB
}

// NewGormAppointmentStore creates a new GormAppointmentStore.
func NewGormAppointmentStore(db *gorm.DB) *GormAppointmentStore {
	return &GormAppointmentStore{db: db}
}

var _ scheduler.Repository = (*GormAppointmentStore)(nil)

func (s *GormAppointmentStore) Insert(ctx context.Context, a *models.Appointment) error {
	a.StartTime = a.StartTime.UTC()
	a.EndTime = a.EndTime.UTC()
	return s.db.WithContext(ctx).Create(a).Error
}

func (s *GormAppointmentStore) FindByID(ctx context.Context, id string) (*models.Appointment, error) {
	var appt models.Appointment
	if err := s.db.WithContext(ctx).First(&appt, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, scheduler.ErrAppointmentNotFound
		}
		return nil, err
	}
	normalize(&appt)
	return &appt, nil
}

func (s *GormAppointmentStore) Find(ctx context.Context, f scheduler.Filter) ([]models.Appointment, error) {
	query := s.db.WithContext(ctx).Model(&models.Appointment{})
	if f.PatientID != "" {
		query = query.Where("patient_id = ?", f.PatientID)
	}
	if f.DoctorID != "" {
		query = query.Where("doctor_id = ?", f.DoctorID)
	}
	if f.Status != nil {
		query = query.Where("status = ?", *f.Status)
	}
	if f.From != nil {
		query = query.Where("start_time >= ?", f.From.UTC())
	}
	if f.To != nil {
		query = query.Where("start_time <= ?", f.To.UTC())
	}

	var appts []models.Appointment
	if err := query.Order("start_time asc, id asc").Find(&appts).Error; err != nil {
		return nil, err
	}
	for i := range appts {
		normalize(&appts[i])
	}
	return appts, nil
}

func (s *GormAppointmentStore) FindOverlapping(ctx context.Context, doctorID string, start, end time.Time, excludeID string) ([]models.Appointment, error) {
	query := s.db.WithContext(ctx).
		Where("doctor_id = ? AND status <> ?", doctorID, models.StatusCancelled).
		Where("start_time < ? AND end_time > ?", end.UTC(), start.UTC())
	if excludeID != "" {
		query = query.Where("id <> ?", excludeID)
	}

	var appts []models.Appointment
	if err := query.Order("start_time asc").Find(&appts).Error; err != nil {
		return nil, err
	}
	for i := range appts {
		normalize(&appts[i])
	}
	return appts, nil
}

func (s *GormAppointmentStore) Update(ctx context.Context, a *models.Appointment) error {
	// A map update writes zero values too, so clearing reason or notes works.
	return s.db.WithContext(ctx).
		Model(&models.Appointment{}).
		Where("id = ?", a.ID).
		Updates(map[string]any{
			"start_time": a.StartTime.UTC(),
			"end_time":   a.EndTime.UTC(),
			"status":     a.Status,
			"reason":     a.Reason,
			"notes":      a.Notes,
		}).Error
}

// normalize keeps instants in UTC whatever location the driver scanned them in.
func normalize(a *models.Appointment) {
	a.StartTime = a.StartTime.UTC()
	a.EndTime = a.EndTime.UTC()
}
