package tools

import "errors"

// Error kinds (§7). Tool operations return these via errors.Is/As; nodes
// translate them into the State's "error"/"message" pair. Internal
// exception text is never surfaced — every error below carries its own
// human-safe message.
var (
	ErrTripNotFound       = errors.New("trip not found")
	ErrTripCancelled      = errors.New("trip is cancelled")
	ErrTripPast           = errors.New("trip is in the past")
	ErrAlreadyDeployed    = errors.New("vehicle already deployed")
	ErrVehicleUnavailable = errors.New("vehicle unavailable")
	ErrDriverUnavailable  = errors.New("driver unavailable")
	ErrNoDeployment       = errors.New("no deployment exists for trip")
	ErrVehicleNotFound    = errors.New("vehicle not found")
	ErrDriverNotFound     = errors.New("driver not found")
	ErrInvalidInput       = errors.New("invalid input")
	ErrPastTimestamp      = errors.New("cannot schedule a past timestamp")
	ErrStopNotFound       = errors.New("stop not found")
	ErrPathNotFound       = errors.New("path not found")
	ErrRouteNotFound      = errors.New("route not found")
)
