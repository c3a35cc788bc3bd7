package handlers

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"clinic-booking-server/internal/utils"
)

// emailTaken reports whether another row of model's table already uses email.
func emailTaken(db *gorm.DB, model any, email, excludeID string) (bool, error) {
	query := db.Model(model).Where("LOWER(email) = ?", strings.ToLower(email))
	if excludeID != "" {
		query = query.Where("id <> ?", excludeID)
	}
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// loadByID fetches one row into a new T, answering 404 or 500 itself when it
// cannot. The second result is false when a response was already written.
func loadByID[T any](c *gin.Context, db *gorm.DB, log zerolog.Logger, id, label string) (*T, bool) {
	var row T
	if err := db.WithContext(c.Request.Context()).First(&row, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.NotFound(c, label+" not found")
		} else {
			logInternal(c, log, err, "load "+strings.ToLower(label))
		}
		return nil, false
	}
	return &row, true
}

// saveOrConflict writes row and maps a unique index violation to 409.
func saveOrConflict(c *gin.Context, db *gorm.DB, log zerolog.Logger, row any, create bool, op string) bool {
	var err error
	if create {
		err = db.WithContext(c.Request.Context()).Create(row).Error
	} else {
		err = db.WithContext(c.Request.Context()).Save(row).Error
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		utils.Conflict(c, "A record with this email already exists")
		return false
	}
	if err != nil {
		logInternal(c, log, err, op)
		return false
	}
	return true
}

// deactivate soft deletes a row that has is_active and deactivated_at columns.
func deactivate(c *gin.Context, db *gorm.DB, row any, now time.Time) error {
	return db.WithContext(c.Request.Context()).
		Model(row).
		Updates(map[string]any{"is_active": false, "deactivated_at": now}).Error
}

// includeInactive reads the ?includeInactive= flag.
func includeInactive(c *gin.Context) bool {
	v, _ := strconv.ParseBool(c.Query("includeInactive"))
	return v
}

// parseDate reads an optional YYYY-MM-DD date.
func parseDate(raw *string) (*time.Time, error) {
	if raw == nil || *raw == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", *raw)
	if err != nil {
		return nil, errors.New("dateOfBirth must be formatted as YYYY-MM-DD")
	}
	return &t, nil
}
