package admin

import "errors"

var (
	ErrValidation          = errors.New("validation failed")
	ErrBusinessNotFound    = errors.New("business not found")
	ErrDuplicateExternalID = errors.New("external_id already in use")
)
