package util

import "errors"

var (
	ErrAttemptNoResponses  = errors.New("attempt has no graded responses")
	ErrGoalNotFound        = errors.New("goal not found")
	ErrInvalidGoal         = errors.New("invalid goal definition")
	ErrSessionNotFound     = errors.New("study session not found")
	ErrSessionClosed       = errors.New("study session already ended")
	ErrInvalidTelemetry    = errors.New("invalid session telemetry")
	ErrUpstreamUnavailable = errors.New("upstream data source unavailable")
)
