package types

// EventKind tags a SessionEvent. The GUI dispatches on this field.
type EventKind string

const (
	EventTunnelReady    EventKind = "tunnelReady"
	EventTunnelFailed   EventKind = "tunnelFailed"
	EventTunnelStopped  EventKind = "tunnelStopped"
	EventExposureAdded  EventKind = "exposureAdded"
	EventExposureFailed EventKind = "exposureFailed"
)

// SessionEvent is the immutable record delivered to the presentation layer.
// It carries only derived values (never live handles), so receivers need no
// locking. Fields other than Kind are populated per kind:
//
//	tunnelReady    -> Address
//	tunnelFailed   -> Reason
//	tunnelStopped  -> (none)
//	exposureAdded  -> URLs
//	exposureFailed -> Reason
type SessionEvent struct {
	Kind    EventKind `json:"kind"`
	Address string    `json:"address,omitempty"`
	Reason  string    `json:"reason,omitempty"`
	URLs    []string  `json:"urls,omitempty"`
}
