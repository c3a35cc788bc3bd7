package handlers_test

import (
	"net/http"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clinic-booking-server/internal/models"
)

type appointmentBody struct {
	Message     string             `json:"message"`
	Appointment models.Appointment `json:"appointment"`
}

type listBody struct {
	Count        int                  `json:"count"`
	Appointments []models.Appointment `json:"appointments"`
}

func booking(doctorID, start, end string) gin.H {
	return gin.H{
		"patientId": "patient-1",
		"doctorId":  doctorID,
		"startTime": start,
		"endTime":   end,
		"reason":    "checkup",
	}
}

func TestAppointmentsRequireAuth(t *testing.T) {
	s := newTestServer(t)

	w := s.do(http.MethodGet, "/api/appointments", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(http.MethodGet, "/api/appointments", "not-a-jwt", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCreateAppointment(t *testing.T) {
	s := newTestServer(t)
	token := s.userToken("staff@clinic.test", models.RoleStaff)

	body := booking("doctor-1", "2030-01-15T10:00:00Z", "2030-01-15T10:30:00Z")
	body["status"] = "completed"
	w := s.do(http.MethodPost, "/api/appointments", token, body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	got := decode[appointmentBody](t, w)
	assert.NotEmpty(t, got.Message)
	assert.NotEmpty(t, got.Appointment.ID)
	assert.Equal(t, models.StatusScheduled, got.Appointment.Status, "client status is ignored")
	assert.Equal(t, "doctor-1", got.Appointment.DoctorID)
	assert.Equal(t, "checkup", got.Appointment.Reason)
}

func TestCreateAppointmentConflict(t *testing.T) {
	s := newTestServer(t)
	token := s.userToken("staff@clinic.test", models.RoleStaff)

	w := s.do(http.MethodPost, "/api/appointments", token, booking("doctor-1", "2030-01-15T10:00:00Z", "2030-01-15T10:30:00Z"))
	require.Equal(t, http.StatusCreated, w.Code)

	w = s.do(http.MethodPost, "/api/appointments", token, booking("doctor-1", "2030-01-15T10:15:00Z", "2030-01-15T10:45:00Z"))
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, decode[envelope[any]](t, w).Error, "already has an appointment")

	w = s.do(http.MethodPost, "/api/appointments", token, booking("doctor-1", "2030-01-15T10:30:00Z", "2030-01-15T11:00:00Z"))
	assert.Equal(t, http.StatusCreated, w.Code, "back-to-back slots are allowed")
}

func TestCreateAppointmentValidation(t *testing.T) {
	s := newTestServer(t)
	token := s.userToken("staff@clinic.test", models.RoleStaff)

	cases := map[string]gin.H{
		"end before start": booking("doctor-1", "2030-01-15T11:00:00Z", "2030-01-15T10:00:00Z"),
		"bad timestamp":    booking("doctor-1", "15/01/2030", "2030-01-15T10:00:00Z"),
		"missing doctor":   {"patientId": "p", "startTime": "2030-01-15T10:00:00Z", "endTime": "2030-01-15T11:00:00Z"},
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			w := s.do(http.MethodPost, "/api/appointments", token, body)
			assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
		})
	}

	var count int64
	require.NoError(t, s.db.Model(&models.Appointment{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestConcurrentBookingsOverHTTP(t *testing.T) {
	s := newTestServer(t)
	token := s.userToken("staff@clinic.test", models.RoleStaff)

	const n = 10
	codes := make([]int, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			w := s.do(http.MethodPost, "/api/appointments", token, booking("doctor-1", "2030-01-15T10:00:00Z", "2030-01-15T11:00:00Z"))
			codes[i] = w.Code
		}(i)
	}
	wg.Wait()

	created := 0
	for _, code := range codes {
		if code == http.StatusCreated {
			created++
		} else {
			assert.Equal(t, http.StatusConflict, code)
		}
	}
	assert.Equal(t, 1, created)
}

func TestListAppointments(t *testing.T) {
	s := newTestServer(t)
	token := s.userToken("staff@clinic.test", models.RoleStaff)

	for _, b := range []gin.H{
		booking("doctor-1", "2030-01-15T15:00:00Z", "2030-01-15T16:00:00Z"),
		booking("doctor-1", "2030-01-15T09:00:00Z", "2030-01-15T10:00:00Z"),
		booking("doctor-2", "2030-01-15T12:00:00Z", "2030-01-15T13:00:00Z"),
	} {
		require.Equal(t, http.StatusCreated, s.do(http.MethodPost, "/api/appointments", token, b).Code)
	}

	w := s.do(http.MethodGet, "/api/appointments?doctorId=doctor-1", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	got := decode[listBody](t, w)
	require.Equal(t, 2, got.Count)
	assert.True(t, got.Appointments[0].StartTime.Before(got.Appointments[1].StartTime))

	w = s.do(http.MethodGet, "/api/appointments?from=2030-01-15T10:00:00Z&to=2030-01-15T12:00:00Z", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	got = decode[listBody](t, w)
	require.Equal(t, 1, got.Count)
	assert.Equal(t, "doctor-2", got.Appointments[0].DoctorID)

	w = s.do(http.MethodGet, "/api/appointments?status=completed", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	got = decode[listBody](t, w)
	assert.Zero(t, got.Count)
	assert.NotNil(t, got.Appointments)

	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodGet, "/api/appointments?status=pending", token, nil).Code)
	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodGet, "/api/appointments?from=yesterday", token, nil).Code)
}

func TestGetAppointment(t *testing.T) {
	s := newTestServer(t)
	token := s.userToken("doctor@clinic.test", models.RoleDoctor)

	w := s.do(http.MethodPost, "/api/appointments", token, booking("doctor-1", "2030-01-15T10:00:00Z", "2030-01-15T10:30:00Z"))
	require.Equal(t, http.StatusCreated, w.Code)
	id := decode[appointmentBody](t, w).Appointment.ID

	w = s.do(http.MethodGet, "/api/appointments/"+id, token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, id, decode[appointmentBody](t, w).Appointment.ID)

	w = s.do(http.MethodGet, "/api/appointments/does-not-exist", token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUpdateAppointment(t *testing.T) {
	s := newTestServer(t)
	token := s.userToken("staff@clinic.test", models.RoleStaff)

	w := s.do(http.MethodPost, "/api/appointments", token, booking("doctor-1", "2030-01-15T10:00:00Z", "2030-01-15T11:00:00Z"))
	require.Equal(t, http.StatusCreated, w.Code)
	w = s.do(http.MethodPost, "/api/appointments", token, booking("doctor-1", "2030-01-15T12:00:00Z", "2030-01-15T13:00:00Z"))
	require.Equal(t, http.StatusCreated, w.Code)
	id := decode[appointmentBody](t, w).Appointment.ID
	path := "/api/appointments/" + id

	w = s.do(http.MethodPatch, path, token, gin.H{"notes": "bring x-rays", "reason": ""})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	got := decode[appointmentBody](t, w).Appointment
	assert.Equal(t, "bring x-rays", got.Notes)
	assert.Empty(t, got.Reason)

	w = s.do(http.MethodPatch, path, token, gin.H{"startTime": "2030-01-15T10:30:00Z"})
	assert.Equal(t, http.StatusConflict, w.Code, "moving into a booked slot")

	w = s.do(http.MethodPatch, path, token, gin.H{"startTime": "2030-01-15T14:00:00Z"})
	assert.Equal(t, http.StatusBadRequest, w.Code, "merged interval ends before it starts")

	w = s.do(http.MethodPatch, path, token, gin.H{})
	assert.Equal(t, http.StatusBadRequest, w.Code, "empty patch")

	w = s.do(http.MethodPatch, path, token, gin.H{"status": "archived"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(http.MethodPatch, path, token, gin.H{"status": "completed"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, models.StatusCompleted, decode[appointmentBody](t, w).Appointment.Status)

	w = s.do(http.MethodPatch, "/api/appointments/missing", token, gin.H{"notes": "x"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCancelAndCompleteAppointment(t *testing.T) {
	s := newTestServer(t)
	token := s.userToken("staff@clinic.test", models.RoleStaff)

	w := s.do(http.MethodPost, "/api/appointments", token, booking("doctor-1", "2030-01-15T10:00:00Z", "2030-01-15T11:00:00Z"))
	require.Equal(t, http.StatusCreated, w.Code)
	id := decode[appointmentBody](t, w).Appointment.ID

	for i := 0; i < 2; i++ {
		w = s.do(http.MethodPost, "/api/appointments/"+id+"/cancel", token, nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, models.StatusCancelled, decode[appointmentBody](t, w).Appointment.Status)
	}

	w = s.do(http.MethodPost, "/api/appointments", token, booking("doctor-1", "2030-01-15T10:00:00Z", "2030-01-15T11:00:00Z"))
	assert.Equal(t, http.StatusCreated, w.Code, "cancelled slot is free again")

	assert.Equal(t, http.StatusNotFound, s.do(http.MethodPost, "/api/appointments/missing/cancel", token, nil).Code)
	assert.Equal(t, http.StatusNotFound, s.do(http.MethodPost, "/api/appointments/missing/complete", token, nil).Code)
}
