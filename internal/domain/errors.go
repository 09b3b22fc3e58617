package domain

import "errors"

var (
	ErrConfiguration    = errors.New("configuration invalid")
	ErrValidation       = errors.New("validation failed")
	ErrNotFound         = errors.New("not found")
	ErrInvalidSignature = errors.New("invalid signature")
	ErrReplay           = errors.New("reference already finalized")
	ErrExternalService  = errors.New("external service unavailable")
	ErrStorage          = errors.New("storage failure")
	ErrUnauthorized     = errors.New("unauthorized")
)
