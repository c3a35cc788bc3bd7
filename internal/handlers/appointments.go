package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"clinic-booking-server/internal/scheduler"
	"clinic-booking-server/internal/utils"
)

// AppointmentHandler exposes the scheduler over HTTP.
type AppointmentHandler struct {
	Scheduler *scheduler.Service
	Log       zerolog.Logger
}

// NewAppointmentHandler creates a new AppointmentHandler.
func NewAppointmentHandler(svc *scheduler.Service, log zerolog.Logger) *AppointmentHandler {
	return &AppointmentHandler{Scheduler: svc, Log: log}
}

// CreateAppointmentRequest represents the request body for creating an appointment.
// Times stay strings here so the scheduler can report a bad instant as an
// invalid interval. Any client supplied status is ignored.
type CreateAppointmentRequest struct {
	PatientID string `json:"patientId" binding:"required,max=36"`
	DoctorID  string `json:"doctorId" binding:"required,max=36"`
	StartTime string `json:"startTime" binding:"required"`
	EndTime   string `json:"endTime" binding:"required"`
	Reason    string `json:"reason"`
	Notes     string `json:"notes"`
}

// UpdateAppointmentRequest is a partial update. Absent fields are left unchanged.
type UpdateAppointmentRequest struct {
	StartTime *string `json:"startTime"`
	EndTime   *string `json:"endTime"`
	Reason    *string `json:"reason"`
	Notes     *string `json:"notes"`
	Status    *string `json:"status"`
}

// CreateAppointment handles POST /api/appointments.
func (h *AppointmentHandler) CreateAppointment(c *gin.Context) {
	var req CreateAppointmentRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	appt, err := h.Scheduler.Create(c.Request.Context(), scheduler.CreateInput{
		PatientID: req.PatientID,
		DoctorID:  req.DoctorID,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
		Reason:    req.Reason,
		Notes:     req.Notes,
	})
	if err != nil {
		respondSchedulerError(c, h.Log, err)
		return
	}

	utils.Message(c, http.StatusCreated, "Appointment created successfully", gin.H{"appointment": appt})
}

// ListAppointments handles GET /api/appointments.
func (h *AppointmentHandler) ListAppointments(c *gin.Context) {
	filter, err := parseFilter(c)
	if err != nil {
		respondSchedulerError(c, h.Log, err)
		return
	}

	appts, err := h.Scheduler.List(c.Request.Context(), filter)
	if err != nil {
		respondSchedulerError(c, h.Log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"count":        len(appts),
		"appointments": appts,
	})
}

// GetAppointment handles GET /api/appointments/:id.
func (h *AppointmentHandler) GetAppointment(c *gin.Context) {
	appt, err := h.Scheduler.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondSchedulerError(c, h.Log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"appointment": appt})
}

// UpdateAppointment handles PATCH /api/appointments/:id.
func (h *AppointmentHandler) UpdateAppointment(c *gin.Context) {
	var req UpdateAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid request payload: "+err.Error())
		return
	}

	patch := scheduler.Patch{
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
		Reason:    req.Reason,
		Notes:     req.Notes,
	}
	if req.Status != nil {
		status, err := scheduler.ParseStatus(*req.Status)
		if err != nil {
			respondSchedulerError(c, h.Log, err)
			return
		}
		patch.Status = &status
	}

	appt, err := h.Scheduler.Update(c.Request.Context(), c.Param("id"), patch)
	if err != nil {
		respondSchedulerError(c, h.Log, err)
		return
	}

	utils.Message(c, http.StatusOK, "Appointment updated successfully", gin.H{"appointment": appt})
}

// CancelAppointment handles POST /api/appointments/:id/cancel.
func (h *AppointmentHandler) CancelAppointment(c *gin.Context) {
	appt, err := h.Scheduler.Cancel(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondSchedulerError(c, h.Log, err)
		return
	}
	utils.Message(c, http.StatusOK, "Appointment cancelled successfully", gin.H{"appointment": appt})
}

// CompleteAppointment handles POST /api/appointments/:id/complete.
func (h *AppointmentHandler) CompleteAppointment(c *gin.Context) {
	appt, err := h.Scheduler.Complete(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondSchedulerError(c, h.Log, err)
		return
	}
	utils.Message(c, http.StatusOK, "Appointment completed successfully", gin.H{"appointment": appt})
}

func parseFilter(c *gin.Context) (scheduler.Filter, error) {
	f := scheduler.Filter{
		PatientID: c.Query("patientId"),
		DoctorID:  c.Query("doctorId"),
	}
	if raw := c.Query("status"); raw != "" {
		status, err := scheduler.ParseStatus(raw)
		if err != nil {
			return scheduler.Filter{}, err
		}
		f.Status = &status
	}
	if raw := c.Query("from"); raw != "" {
		from, err := scheduler.ParseInstant(raw)
		if err != nil {
			return scheduler.Filter{}, err
		}
		f.From = &from
	}
	if raw := c.Query("to"); raw != "" {
		to, err := scheduler.ParseInstant(raw)
		if err != nil {
			return scheduler.Filter{}, err
		}
		f.To = &to
	}
	return f, nil
}
