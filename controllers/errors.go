package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/freelance-market/services"
	"github.com/yeremiapane/freelance-market/utils"
)

var ErrNoPermission = errors.New("you don't have permission to perform this action")

// statusForError memetakan error domain services ke status HTTP.
func statusForError(err error) int {
	switch {
	case errors.Is(err, services.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, services.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, services.ErrDuplicateBid),
		errors.Is(err, services.ErrInvalidState),
		errors.Is(err, services.ErrInvalidTransition),
		errors.Is(err, services.ErrProjectNotOpen):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func respondServiceError(c *gin.Context, err error) {
	utils.RespondError(c, statusForError(err), err)
}

// currentUserID mengambil user id yang diset AuthMiddleware.
func currentUserID(c *gin.Context) (uint, bool) {
	v, exists := c.Get("user_id")
	if !exists {
		return 0, false
	}
	id, ok := v.(uint)
	return id, ok
}
