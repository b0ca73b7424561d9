package identity

import "errors"

var (
	// ErrUpstreamUnavailable means the role store could not be reached.
	// A missing role row is not an error; it resolves to RoleUser.
	ErrUpstreamUnavailable = errors.New("identity: role store unavailable")
	ErrInvalidCallback     = errors.New("identity: invalid callback url")
)
