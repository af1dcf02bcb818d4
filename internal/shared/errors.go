package shared

import "fmt"

var (
	// Configuration errors
	ErrMissingConfig      = fmt.Errorf("configuration not found")
	ErrInvalidConfig      = fmt.Errorf("invalid configuration")
	ErrMissingCredentials = fmt.Errorf("missing credentials")

	// Authentication errors
	ErrSessionExpired = fmt.Errorf("session expired, log in again")

	// API and service errors
	ErrAPIRequest         = fmt.Errorf("API request failed")
	ErrServiceUnavailable = fmt.Errorf("service unavailable")

	// Persistence errors
	ErrNotFound       = fmt.Errorf("not found")
	ErrAlreadyPaired  = fmt.Errorf("track already paired")
	ErrAlreadyLinked  = fmt.Errorf("playlist already linked")
	ErrPartialSuccess = fmt.Errorf("operation partially succeeded")

	// Input validation errors
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
)
