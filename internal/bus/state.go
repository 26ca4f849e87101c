// internal/bus/state.go
package bus

// State is the arbitration state.
type State uint8

const (
	// StateIdle: no lease held, no arbitration running.
	StateIdle State = iota
	// StateWaitingForPeer: probing the line for peer traffic.
	StateWaitingForPeer
	// StateDrainingPeer: peer traffic seen, reading until the line goes silent.
	StateDrainingPeer
	// StateMaster: the last acquisition granted a lease.
	StateMaster
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateWaitingForPeer:
		return "waiting_for_peer"
	case StateDrainingPeer:
		return "draining_peer"
	case StateMaster:
		return "master"
	default:
		return "unknown"
	}
}
