package handlers

import (
	"context"
	"errors"
	"net/http"

	"aira/services/booking"
	"aira/services/dialogue"
	ai "aira/services/intelligence"
	"aira/services/media"
	"aira/services/speech"
	"aira/utils"

	"github.com/gin-gonic/gin"
)

// statusFor maps service errors onto HTTP status codes.
func statusFor(err error) int {
	var vErr *booking.ValidationError
	switch {
	case errors.As(err, &vErr):
		return http.StatusBadRequest
	case errors.Is(err, speech.ErrAudioTooLong), errors.Is(err, speech.ErrInvalidAudio):
		return http.StatusBadRequest
	case errors.Is(err, booking.ErrNotFound),
		errors.Is(err, dialogue.ErrSessionNotFound),
		errors.Is(err, media.ErrRoomNotFound):
		return http.StatusNotFound
	case errors.Is(err, booking.ErrSlotUnavailable),
		errors.Is(err, booking.ErrLockNotAcquired),
		errors.Is(err, booking.ErrInvalidTransition),
		errors.Is(err, dialogue.ErrNotReady):
		return http.StatusConflict
	case errors.Is(err, dialogue.ErrTurnTimeout), errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, ai.ErrModelUnavailable):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

func respondError(c *gin.Context, message string, err error) {
	status := statusFor(err)
	details := err.Error()
	if status == http.StatusInternalServerError {
		details = "An unexpected error occurred. Please try again later."
	}
	utils.JSONError(c, status, message, details)
}
