package audio

import "errors"

var (
	// ErrDeviceUnavailable is returned when the configured input device
	// cannot be opened at start.
	ErrDeviceUnavailable = errors.New("audio: input device unavailable")

	// ErrPermissionDenied is returned when the OS denies microphone access.
	ErrPermissionDenied = errors.New("audio: microphone permission denied")

	// ErrDeviceLost is emitted (not returned) when a previously-open device
	// stops producing frames mid-stream.
	ErrDeviceLost = errors.New("audio: device lost mid-stream")
)

// EventType tags the out-of-band events a Source can emit alongside frames.
type EventType string

const (
	// EventOverflow fires when the OS capture buffer overran and the oldest
	// frame(s) were dropped.
	EventOverflow EventType = "OVERFLOW"

	// EventGap fires when frames are known to be missing from the sequence.
	EventGap EventType = "GAP"

	// EventDeviceLost fires when the device becomes unavailable mid-stream.
	EventDeviceLost EventType = "DEVICE_LOST"
)

// Event is an out-of-band notification from a Source, carried on a
// dedicated channel so it never competes with the frame stream for
// buffering decisions.
type Event struct {
	Type       EventType
	Suggestion string // advisory, human-readable conflict hint; may be empty
}
