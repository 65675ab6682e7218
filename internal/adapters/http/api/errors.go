package api

import "errors"

// Sentinel kinds for API errors.
var (
	ErrServe        = errors.New("response write failed")
	ErrBadRequest   = errors.New("bad request")
	ErrUnknownChart = errors.New("unknown chart")
	ErrRateLimited  = errors.New("rate limit exceeded")
)
