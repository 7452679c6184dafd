package simulate

import "errors"

// Error constants.
var (
	ErrNoMembers  = errors.New("no members to simulate")
	ErrUnhealthy  = errors.New("service health check failed")
	ErrUnexpected = errors.New("unexpected response")
	ErrNotSettled = errors.New("samples not stored before deadline")
)
