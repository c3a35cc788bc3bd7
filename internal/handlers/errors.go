package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"clinic-booking-server/internal/middleware"
	"clinic-booking-server/internal/scheduler"
	"clinic-booking-server/internal/utils"
)

// respondSchedulerError maps scheduler error classes to HTTP statuses.
// Unclassified errors are logged and answered with an opaque 500.
func respondSchedulerError(c *gin.Context, log zerolog.Logger, err error) {
	switch {
	case errors.Is(err, scheduler.ErrValidation):
		utils.BadRequest(c, err.Error())
	case errors.Is(err, scheduler.ErrNotFound):
		utils.NotFound(c, err.Error())
	case errors.Is(err, scheduler.ErrConflict):
		utils.Conflict(c, err.Error())
	default:
		log.Error().
			Err(err).
			Str("request_id", middleware.GetRequestID(c)).
			Str("path", c.FullPath()).
			Msg("appointment request failed")
		utils.Error(c, http.StatusInternalServerError, "internal server error")
	}
}

// logInternal logs err with the failed operation and answers with a 500
// that does not leak it.
func logInternal(c *gin.Context, log zerolog.Logger, err error, op string) {
	log.Error().
		Err(err).
		Str("request_id", middleware.GetRequestID(c)).
		Str("op", op).
		Msg("request failed")
	utils.InternalServerError(c, "internal server error")
}
