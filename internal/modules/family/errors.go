package family

import "errors"

var (
	ErrNotFound         = errors.New("family profile not found")
	ErrValidationFailed = errors.New("validation failed")
)
