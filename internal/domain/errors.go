package domain

import "errors"

var (
	ErrNotFound     = errors.New("not found")
	ErrRateLimited  = errors.New("rate limited")
	ErrUnauthorized = errors.New("unauthorized")
	ErrNoPrice      = errors.New("no price available")
	ErrLockHeld     = errors.New("lock already held")
)
