package handlers

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"clinic-booking-server/internal/models"
	"clinic-booking-server/internal/utils"
)

// PatientHandler handles patient records.
type PatientHandler struct {
	DB  *gorm.DB
	Log zerolog.Logger
}

// NewPatientHandler creates a new PatientHandler.
func NewPatientHandler(db *gorm.DB, log zerolog.Logger) *PatientHandler {
	return &PatientHandler{DB: db, Log: log}
}

type CreatePatientRequest struct {
	FirstName   string  `json:"firstName" binding:"required,max=100"`
	LastName    string  `json:"lastName" binding:"required,max=100"`
	Email       string  `json:"email" binding:"required,email"`
	PhoneNumber string  `json:"phoneNumber" binding:"max=50"`
	DateOfBirth *string `json:"dateOfBirth"`
	Address     string  `json:"address" binding:"max=255"`
}

type UpdatePatientRequest struct {
	FirstName   *string `json:"firstName" binding:"omitempty,min=1,max=100"`
	LastName    *string `json:"lastName" binding:"omitempty,min=1,max=100"`
	Email       *string `json:"email" binding:"omitempty,email"`
	PhoneNumber *string `json:"phoneNumber" binding:"omitempty,max=50"`
	DateOfBirth *string `json:"dateOfBirth"`
	Address     *string `json:"address" binding:"omitempty,max=255"`
	IsActive    *bool   `json:"isActive"`
}

func (h *PatientHandler) CreatePatient(c *gin.Context) {
	var req CreatePatientRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}
	dob, err := parseDate(req.DateOfBirth)
	if err != nil {
		utils.BadRequest(c, err.Error())
		return
	}

	taken, err := emailTaken(h.DB, &models.Patient{}, req.Email, "")
	if err != nil {
		logInternal(c, h.Log, err, "check email")
		return
	}
	if taken {
		utils.Conflict(c, "Patient with this email already exists")
		return
	}

	patient := models.Patient{
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Email:       req.Email,
		PhoneNumber: req.PhoneNumber,
		DateOfBirth: dob,
		Address:     req.Address,
		IsActive:    true,
	}
	if !saveOrConflict(c, h.DB, h.Log, &patient, true, "create patient") {
		return
	}
	utils.Created(c, "Patient created successfully", patient)
}

// GetPatients lists active patients, or all of them with ?includeInactive=true.
func (h *PatientHandler) GetPatients(c *gin.Context) {
	query := h.DB.WithContext(c.Request.Context()).Order("last_name asc, first_name asc")
	if !includeInactive(c) {
		query = query.Where("is_active = ?", true)
	}

	var patients []models.Patient
	if err := query.Find(&patients).Error; err != nil {
		logInternal(c, h.Log, err, "list patients")
		return
	}
	utils.Success(c, "Patients fetched successfully", patients)
}

func (h *PatientHandler) GetPatient(c *gin.Context) {
	patient, ok := loadByID[models.Patient](c, h.DB, h.Log, c.Param("id"), "Patient")
	if !ok {
		return
	}
	utils.Success(c, "Patient fetched successfully", patient)
}

func (h *PatientHandler) UpdatePatient(c *gin.Context) {
	var req UpdatePatientRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}
	dob, err := parseDate(req.DateOfBirth)
	if err != nil {
		utils.BadRequest(c, err.Error())
		return
	}

	patient, ok := loadByID[models.Patient](c, h.DB, h.Log, c.Param("id"), "Patient")
	if !ok {
		return
	}

	if req.FirstName != nil {
		patient.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		patient.LastName = *req.LastName
	}
	if req.Email != nil && *req.Email != patient.Email {
		taken, err := emailTaken(h.DB, &models.Patient{}, *req.Email, patient.ID)
		if err != nil {
			logInternal(c, h.Log, err, "check email")
			return
		}
		if taken {
			utils.Conflict(c, "New email is already in use")
			return
		}
		patient.Email = *req.Email
	}
	if req.PhoneNumber != nil {
		patient.PhoneNumber = *req.PhoneNumber
	}
	if dob != nil {
		patient.DateOfBirth = dob
	}
	if req.Address != nil {
		patient.Address = *req.Address
	}
	if req.IsActive != nil && *req.IsActive && !patient.IsActive {
		patient.IsActive = true
		patient.DeactivatedAt = nil
	}

	if !saveOrConflict(c, h.DB, h.Log, patient, false, "update patient") {
		return
	}
	utils.Success(c, "Patient updated successfully", patient)
}

// DeletePatient deactivates a patient. Existing appointments are untouched.
func (h *PatientHandler) DeletePatient(c *gin.Context) {
	patient, ok := loadByID[models.Patient](c, h.DB, h.Log, c.Param("id"), "Patient")
	if !ok {
		return
	}
	if !patient.IsActive {
		utils.Success(c, "Patient already deactivated", patient)
		return
	}

	now := time.Now().UTC()
	if err := deactivate(c, h.DB, patient, now); err != nil {
		logInternal(c, h.Log, err, "deactivate patient")
		return
	}
	patient.IsActive = false
	patient.DeactivatedAt = &now
	utils.Success(c, "Patient deactivated successfully", patient)
}
