package handlers

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"clinic-booking-server/internal/middleware"
	"clinic-booking-server/internal/models"
	"clinic-booking-server/internal/utils"
)

// UserHandler handles account administration. Every route is admin only.
type UserHandler struct {
	DB  *gorm.DB
	Log zerolog.Logger
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(db *gorm.DB, log zerolog.Logger) *UserHandler {
	return &UserHandler{DB: db, Log: log}
}

// CreateUserRequest represents the request body for creating a user by an admin.
type CreateUserRequest struct {
	FirstName string `json:"firstName" binding:"required,max=100"`
	LastName  string `json:"lastName" binding:"required,max=100"`
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required,min=8,max=72"`
	Role      string `json:"role" binding:"required,oneof=admin staff doctor"`
}

// CreateUser handles creating a new user (admin).
func (h *UserHandler) CreateUser(c *gin.Context) {
	var req CreateUserRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	taken, err := emailTaken(h.DB, &models.User{}, req.Email, "")
	if err != nil {
		logInternal(c, h.Log, err, "check email")
		return
	}
	if taken {
		utils.Conflict(c, "User with this email already exists")
		return
	}

	user := models.User{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Role:      models.Role(req.Role),
		IsActive:  true,
	}
	if err := user.SetPassword(req.Password); err != nil {
		logInternal(c, h.Log, err, "hash password")
		return
	}
	if !saveOrConflict(c, h.DB, h.Log, &user, true, "create user") {
		return
	}

	utils.Created(c, "User created successfully", user.Sanitize())
}

// GetUsers lists users, active ones only unless ?includeInactive=true.
// ?role= narrows the list to one role.
func (h *UserHandler) GetUsers(c *gin.Context) {
	query := h.DB.WithContext(c.Request.Context()).Order("last_name asc, first_name asc")
	if !includeInactive(c) {
		query = query.Where("is_active = ?", true)
	}
	if role := c.Query("role"); role != "" {
		query = query.Where("role = ?", role)
	}

	var users []models.User
	if err := query.Find(&users).Error; err != nil {
		logInternal(c, h.Log, err, "list users")
		return
	}

	sanitized := make([]models.UserSanitized, len(users))
	for i, u := range users {
		sanitized[i] = u.Sanitize()
	}
	utils.Success(c, "Users fetched successfully", sanitized)
}

// GetUserByID handles fetching a single user by ID (admin).
func (h *UserHandler) GetUserByID(c *gin.Context) {
	user, ok := loadByID[models.User](c, h.DB, h.Log, c.Param("id"), "User")
	if !ok {
		return
	}
	utils.Success(c, "User fetched successfully", user.Sanitize())
}

// UpdateUserRequest represents the request body for updating a user by an admin.
// Setting isActive to true reactivates a deactivated account.
type UpdateUserRequest struct {
	FirstName *string `json:"firstName" binding:"omitempty,min=1,max=100"`
	LastName  *string `json:"lastName" binding:"omitempty,min=1,max=100"`
	Email     *string `json:"email" binding:"omitempty,email"`
	Role      *string `json:"role" binding:"omitempty,oneof=admin staff doctor"`
	IsActive  *bool   `json:"isActive"`
}

// UpdateUser handles updating a user by ID (admin).
func (h *UserHandler) UpdateUser(c *gin.Context) {
	var req UpdateUserRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	user, ok := loadByID[models.User](c, h.DB, h.Log, c.Param("id"), "User")
	if !ok {
		return
	}

	if req.FirstName != nil {
		user.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		user.LastName = *req.LastName
	}
	if req.Email != nil && *req.Email != user.Email {
		taken, err := emailTaken(h.DB, &models.User{}, *req.Email, user.ID)
		if err != nil {
			logInternal(c, h.Log, err, "check email")
			return
		}
		if taken {
			utils.Conflict(c, "New email is already in use")
			return
		}
		user.Email = *req.Email
	}
	if req.Role != nil {
		user.Role = models.Role(*req.Role)
	}
	if req.IsActive != nil && *req.IsActive && !user.IsActive {
		user.IsActive = true
		user.DeactivatedAt = nil
	}

	if !saveOrConflict(c, h.DB, h.Log, user, false, "update user") {
		return
	}
	utils.Success(c, "User updated successfully", user.Sanitize())
}

// DeleteUser deactivates a user and revokes their refresh tokens. The row
// is kept. Admins cannot deactivate themselves.
func (h *UserHandler) DeleteUser(c *gin.Context) {
	id := c.Param("id")
	if self, _ := middleware.GetUserIDFromContext(c); self == id {
		utils.BadRequest(c, "You cannot deactivate your own account")
		return
	}

	user, ok := loadByID[models.User](c, h.DB, h.Log, id, "User")
	if !ok {
		return
	}
	if !user.IsActive {
		utils.Success(c, "User already deactivated", user.Sanitize())
		return
	}

	now := time.Now().UTC()
	err := h.DB.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		if err := deactivate(c, tx, user, now); err != nil {
			return err
		}
		return tx.Model(&models.RefreshToken{}).
			Where("user_id = ? AND is_revoked = ?", user.ID, false).
			Update("is_revoked", true).Error
	})
	if err != nil {
		logInternal(c, h.Log, err, "deactivate user")
		return
	}

	user.IsActive = false
	user.DeactivatedAt = &now
	h.Log.Info().Str("user_id", user.ID).Msg("user deactivated")
	utils.Success(c, "User deactivated successfully", user.Sanitize())
}
