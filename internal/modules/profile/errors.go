package profile

import "errors"

var ErrValidationFailed = errors.New("validation failed")
