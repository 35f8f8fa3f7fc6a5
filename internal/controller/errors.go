package controller

import (
	"errors"
	"net/http"

	"maang_tracker_backend/internal/util"

	"github.com/gin-gonic/gin"
)

// respondServiceError maps the service error taxonomy onto HTTP statuses.
// Anything outside the taxonomy is a 500 and gets logged.
func respondServiceError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, util.ErrValidation):
		util.BadRequest(ctx, err.Error())
	case errors.Is(err, util.ErrProblemNotFound),
		errors.Is(err, util.ErrTopicNotFound),
		errors.Is(err, util.ErrInvalidReference),
		errors.Is(err, util.ErrSessionNotFound),
		errors.Is(err, util.ErrUserNotFound):
		util.Error(ctx, http.StatusNotFound, err.Error())
	case errors.Is(err, util.ErrBusy):
		util.Error(ctx, http.StatusConflict, err.Error())
	case errors.Is(err, util.ErrUserQuarantined),
		errors.Is(err, util.ErrInvariantViolation),
		errors.Is(err, util.ErrSessionFinished),
		errors.Is(err, util.ErrEmailRegistered):
		util.Conflict(ctx, err.Error())
	case errors.Is(err, util.ErrOracleUnavailable):
		util.Error(ctx, http.StatusServiceUnavailable, err.Error())
	default:
		util.LogInternalError(ctx, err)
	}
}
