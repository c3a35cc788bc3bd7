package handlers

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"clinic-booking-server/internal/models"
	"clinic-booking-server/internal/utils"
)

// DoctorHandler handles the practitioner directory.
type DoctorHandler struct {
	DB  *gorm.DB
	Log zerolog.Logger
}

// NewDoctorHandler creates a new DoctorHandler.
func NewDoctorHandler(db *gorm.DB, log zerolog.Logger) *DoctorHandler {
	return &DoctorHandler{DB: db, Log: log}
}

type CreateDoctorRequest struct {
	FirstName     string `json:"firstName" binding:"required,max=100"`
	LastName      string `json:"lastName" binding:"required,max=100"`
	Email         string `json:"email" binding:"required,email"`
	PhoneNumber   string `json:"phoneNumber" binding:"max=50"`
	Specialty     string `json:"specialty" binding:"max=100"`
	LicenseNumber string `json:"licenseNumber" binding:"max=100"`
}

type UpdateDoctorRequest struct {
	FirstName     *string `json:"firstName" binding:"omitempty,min=1,max=100"`
	LastName      *string `json:"lastName" binding:"omitempty,min=1,max=100"`
	Email         *string `json:"email" binding:"omitempty,email"`
	PhoneNumber   *string `json:"phoneNumber" binding:"omitempty,max=50"`
	Specialty     *string `json:"specialty" binding:"omitempty,max=100"`
	LicenseNumber *string `json:"licenseNumber" binding:"omitempty,max=100"`
	IsActive      *bool   `json:"isActive"`
}

func (h *DoctorHandler) CreateDoctor(c *gin.Context) {
	var req CreateDoctorRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	taken, err := emailTaken(h.DB, &models.Doctor{}, req.Email, "")
	if err != nil {
		logInternal(c, h.Log, err, "check email")
		return
	}
	if taken {
		utils.Conflict(c, "Doctor with this email already exists")
		return
	}

	doctor := models.Doctor{
		FirstName:     req.FirstName,
		LastName:      req.LastName,
		Email:         req.Email,
		PhoneNumber:   req.PhoneNumber,
		Specialty:     req.Specialty,
		LicenseNumber: req.LicenseNumber,
		IsActive:      true,
	}
	if !saveOrConflict(c, h.DB, h.Log, &doctor, true, "create doctor") {
		return
	}
	utils.Created(c, "Doctor created successfully", doctor)
}

// GetDoctors lists active doctors. ?specialty= filters by specialty and
// ?includeInactive=true adds deactivated ones.
func (h *DoctorHandler) GetDoctors(c *gin.Context) {
	query := h.DB.WithContext(c.Request.Context()).Order("last_name asc, first_name asc")
	if !includeInactive(c) {
		query = query.Where("is_active = ?", true)
	}
	if specialty := c.Query("specialty"); specialty != "" {
		query = query.Where("specialty = ?", specialty)
	}

	var doctors []models.Doctor
	if err := query.Find(&doctors).Error; err != nil {
		logInternal(c, h.Log, err, "list doctors")
		return
	}
	utils.Success(c, "Doctors fetched successfully", doctors)
}

func (h *DoctorHandler) GetDoctor(c *gin.Context) {
	doctor, ok := loadByID[models.Doctor](c, h.DB, h.Log, c.Param("id"), "Doctor")
	if !ok {
		return
	}
	utils.Success(c, "Doctor fetched successfully", doctor)
}

func (h *DoctorHandler) UpdateDoctor(c *gin.Context) {
	var req UpdateDoctorRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	doctor, ok := loadByID[models.Doctor](c, h.DB, h.Log, c.Param("id"), "Doctor")
	if !ok {
		return
	}

	if req.FirstName != nil {
		doctor.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		doctor.LastName = *req.LastName
	}
	if req.Email != nil && *req.Email != doctor.Email {
		taken, err := emailTaken(h.DB, &models.Doctor{}, *req.Email, doctor.ID)
		if err != nil {
			logInternal(c, h.Log, err, "check email")
			return
		}
		if taken {
			utils.Conflict(c, "New email is already in use")
			return
		}
		doctor.Email = *req.Email
	}
	if req.PhoneNumber != nil {
		doctor.PhoneNumber = *req.PhoneNumber
	}
	if req.Specialty != nil {
		doctor.Specialty = *req.Specialty
	}
	if req.LicenseNumber != nil {
		doctor.LicenseNumber = *req.LicenseNumber
	}
	if req.IsActive != nil && *req.IsActive && !doctor.IsActive {
		doctor.IsActive = true
		doctor.DeactivatedAt = nil
	}

	if !saveOrConflict(c, h.DB, h.Log, doctor, false, "update doctor") {
		return
	}
	utils.Success(c, "Doctor updated successfully", doctor)
}

// DeleteDoctor deactivates a doctor. Booked appointments are kept and still
// count against the doctor's schedule until cancelled.
func (h *DoctorHandler) DeleteDoctor(c *gin.Context) {
	doctor, ok := loadByID[models.Doctor](c, h.DB, h.Log, c.Param("id"), "Doctor")
	if !ok {
		return
	}
	if !doctor.IsActive {
		utils.Success(c, "Doctor already deactivated", doctor)
		return
	}

	now := time.Now().UTC()
	if err := deactivate(c, h.DB, doctor, now); err != nil {
		logInternal(c, h.Log, err, "deactivate doctor")
		return
	}
	doctor.IsActive = false
	doctor.DeactivatedAt = &now
	utils.Success(c, "Doctor deactivated successfully", doctor)
}
