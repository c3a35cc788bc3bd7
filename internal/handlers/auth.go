package handlers

import (
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"clinic-booking-server/internal/config"
	"clinic-booking-server/internal/middleware"
	"clinic-booking-server/internal/models"
	"clinic-booking-server/internal/utils"
)

const refreshCookie = "refresh_token"

// AuthHandler handles authentication-related requests.
type AuthHandler struct {
	DB  *gorm.DB
	Cfg *config.Config
	Log zerolog.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(db *gorm.DB, cfg *config.Config, log zerolog.Logger) *AuthHandler {
	return &AuthHandler{DB: db, Cfg: cfg, Log: log}
}

// RegisterRequest represents the request body for user registration.
// Self registered accounts are always staff; admins hand out other roles.
type RegisterRequest struct {
	FirstName string `json:"firstName" binding:"required,max=100"`
	LastName  string `json:"lastName" binding:"required,max=100"`
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required,min=8,max=72"`
}

// Register handles user registration.
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if !utils.BindAndValidate(c, &req) {
		return // Error response handled by BindAndValidate
	}

	taken, err := emailTaken(h.DB, &models.User{}, req.Email, "")
	if err != nil {
		h.internalError(c, err, "check email")
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
		Role:      models.RoleStaff,
		IsActive:  true,
	}
	if err := user.SetPassword(req.Password); err != nil {
		h.internalError(c, err, "hash password")
		return
	}
	if err := h.DB.Create(&user).Error; err != nil {
		h.internalError(c, err, "create user")
		return
	}

	utils.Created(c, "User registered successfully", user.Sanitize())
}

// LoginRequest represents the request body for user login.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse represents the response body for successful login.
type LoginResponse struct {
	AccessToken  string               `json:"accessToken"`
	RefreshToken string               `json:"refreshToken"`
	User         models.UserSanitized `json:"user"`
}

// Login handles user login.
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	var user models.User
	if err := h.DB.Where("email = ?", req.Email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Unauthorized(c, "Invalid email or password")
		} else {
			h.internalError(c, err, "load user")
		}
		return
	}

	if !user.CheckPassword(req.Password) {
		utils.Unauthorized(c, "Invalid email or password")
		return
	}
	if !user.IsActive {
		utils.Forbidden(c, "Account is deactivated")
		return
	}

	accessToken, refreshToken, err := h.issueTokens(&user)
	if err != nil {
		h.internalError(c, err, "issue tokens")
		return
	}
	h.setRefreshCookie(c, refreshToken)

	h.Log.Info().Str("user_id", user.ID).Msg("user logged in")
	utils.Success(c, "Login successful", LoginResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User:         user.Sanitize(),
	})
}

// RefreshTokenRequest represents the request body for token refresh.
type RefreshTokenRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

// RefreshTokenResponse represents the response body for successful token refresh.
type RefreshTokenResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// RefreshToken exchanges a refresh token for a new token pair. The old
// refresh token is revoked.
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	presented, err := c.Cookie(refreshCookie)
	if err != nil || presented == "" {
		var req RefreshTokenRequest
		if !utils.BindAndValidate(c, &req) {
			return
		}
		presented = req.RefreshToken
	}

	claims, err := utils.ValidateToken(presented, h.Cfg.JWTRefreshSecret)
	if err != nil {
		utils.Unauthorized(c, "Invalid refresh token: "+err.Error())
		return
	}

	var stored models.RefreshToken
	if err := h.DB.Where("token = ? AND user_id = ?", presented, claims.UserID).First(&stored).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Unauthorized(c, "Refresh token not found, expired, or revoked")
		} else {
			h.internalError(c, err, "load refresh token")
		}
		return
	}
	if !stored.Usable(time.Now()) {
		utils.Unauthorized(c, "Refresh token not found, expired, or revoked")
		return
	}

	var user models.User
	if err := h.DB.First(&user, "id = ?", claims.UserID).Error; err != nil {
		h.internalError(c, err, "load token owner")
		return
	}
	if !user.IsActive {
		utils.Forbidden(c, "Account is deactivated")
		return
	}

	var accessToken, refreshToken string
	err = h.DB.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.RefreshToken{}).
			Where("id = ? AND is_revoked = ?", stored.ID, false).
			Update("is_revoked", true)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return errTokenReused
		}
		var issueErr error
		accessToken, refreshToken, issueErr = issueTokens(tx, h.Cfg, &user)
		return issueErr
	})
	if errors.Is(err, errTokenReused) {
		utils.Unauthorized(c, "Refresh token not found, expired, or revoked")
		return
	}
	if err != nil {
		h.internalError(c, err, "rotate refresh token")
		return
	}
	h.setRefreshCookie(c, refreshToken)

	utils.Success(c, "Access token refreshed successfully", RefreshTokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	})
}

var errTokenReused = errors.New("refresh token already used")

// LogoutRequest represents the request body for user logout.
type LogoutRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// Logout revokes the presented refresh token. Unknown or already revoked
// tokens are not an error.
func (h *AuthHandler) Logout(c *gin.Context) {
	presented, _ := c.Cookie(refreshCookie)
	if presented == "" {
		var req LogoutRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.BadRequest(c, "Invalid request payload: "+err.Error())
			return
		}
		presented = req.RefreshToken
	}
	if presented == "" {
		utils.BadRequest(c, "Refresh token is required")
		return
	}

	err := h.DB.Model(&models.RefreshToken{}).
		Where("token = ? AND is_revoked = ?", presented, false).
		Updates(map[string]any{"is_revoked": true, "expires_at": time.Now()}).Error
	if err != nil {
		h.internalError(c, err, "revoke refresh token")
		return
	}

	c.SetCookie(refreshCookie, "", -1, "/", "", h.Cfg.IsProduction(), true)
	utils.Success(c, "Logout successful", nil)
}

// GetProfile handles fetching the currently authenticated user's profile.
func (h *AuthHandler) GetProfile(c *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	var user models.User
	if err := h.DB.First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.NotFound(c, "User profile not found")
		} else {
			h.internalError(c, err, "load profile")
		}
		return
	}

	utils.Success(c, "Profile fetched successfully", user.Sanitize())
}

// UpdateProfileRequest represents the request body for updating user profile.
type UpdateProfileRequest struct {
	FirstName *string `json:"firstName" binding:"omitempty,min=1,max=100"`
	LastName  *string `json:"lastName" binding:"omitempty,min=1,max=100"`
	Password  *string `json:"password" binding:"omitempty,min=8,max=72"`
}

// UpdateProfile handles updating the currently authenticated user's profile.
func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	var req UpdateProfileRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	var user models.User
	if err := h.DB.First(&user, "id = ?", userID).Error; err != nil {
		utils.NotFound(c, "User not found")
		return
	}

	if req.FirstName != nil {
		user.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		user.LastName = *req.LastName
	}
	if req.Password != nil {
		if err := user.SetPassword(*req.Password); err != nil {
			h.internalError(c, err, "hash password")
			return
		}
	}

	if err := h.DB.Save(&user).Error; err != nil {
		h.internalError(c, err, "update profile")
		return
	}

	utils.Success(c, "Profile updated successfully", user.Sanitize())
}

func (h *AuthHandler) issueTokens(user *models.User) (string, string, error) {
	return issueTokens(h.DB, h.Cfg, user)
}

// issueTokens signs a token pair and stores the refresh token.
func issueTokens(db *gorm.DB, cfg *config.Config, user *models.User) (string, string, error) {
	accessToken, refreshToken, err := utils.GenerateTokens(user, cfg)
	if err != nil {
		return "", "", err
	}
	record := models.RefreshToken{
		UserID:    user.ID,
		Token:     refreshToken,
		ExpiresAt: time.Now().Add(utils.RefreshTokenTTL(cfg)),
	}
	if err := db.Create(&record).Error; err != nil {
		return "", "", err
	}
	return accessToken, refreshToken, nil
}

func (h *AuthHandler) setRefreshCookie(c *gin.Context, token string) {
	c.SetCookie(
		refreshCookie,
		token,
		int(utils.RefreshTokenTTL(h.Cfg).Seconds()),
		"/",
		"",
		h.Cfg.IsProduction(),
		true, // HTTP only
	)
}

func (h *AuthHandler) internalError(c *gin.Context, err error, op string) {
	logInternal(c, h.Log, err, op)
}
