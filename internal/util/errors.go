package util

import "errors"

var (
	ErrUserNotFound    = errors.New("user not found")
	ErrEmailRegistered = errors.New("email already registered")

	// learning core error taxonomy
	ErrValidation         = errors.New("validation error")
	ErrInvalidReference   = errors.New("referenced problem or topic does not exist")
	ErrTopicNotFound      = errors.New("topic not found")
	ErrProblemNotFound    = errors.New("problem not found")
	ErrBusy               = errors.New("user is busy, try again")
	ErrInvariantViolation = errors.New("mastery invariant violated")
	ErrUserQuarantined    = errors.New("derived state is quarantined, rebuild required")
	ErrOracleUnavailable  = errors.New("mentor oracle unavailable")
	ErrSessionNotFound    = errors.New("interview session not found")
	ErrSessionFinished    = errors.New("interview session already finished")
)
