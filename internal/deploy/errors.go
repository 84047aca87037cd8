package deploy

import "errors"

var (
	// ErrNotFound means no deployment with the given id is registered.
	ErrNotFound = errors.New("deployment not found")

	// ErrPortsExhausted means no port in the configured range was bindable.
	// Surfaced as service-unavailable; never retried internally.
	ErrPortsExhausted = errors.New("no free port available")

	// ErrLaunchFailed means the serving process could not be started. The
	// failed deployment record is still registered for audit.
	ErrLaunchFailed = errors.New("failed to start serving process")

	// ErrStopTimeout means the process outlived the graceful stop window.
	// Recoverable: re-invoke delete with force=true.
	ErrStopTimeout = errors.New("process did not stop within timeout; retry with force=true")
)
