package dialogue

import "errors"

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrTurnTimeout     = errors.New("turn timed out")
	ErrNotReady        = errors.New("appointment details incomplete")
)
