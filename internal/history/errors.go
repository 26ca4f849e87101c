// internal/history/errors.go
package history

import "errors"

var (
	// ErrDisabled is returned by Connect when no URL is configured.
	ErrDisabled = errors.New("history: influxdb disabled")

	// ErrConnectionFailed is returned when the server cannot be reached.
	ErrConnectionFailed = errors.New("history: influxdb connection failed")
)
