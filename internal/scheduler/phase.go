// internal/scheduler/phase.go
package scheduler

// Phase is the scheduler loop state.
type Phase uint8

const (
	PhaseReading Phase = iota
	PhaseDrainingWrites
)

func (p Phase) String() string {
	switch p {
	case PhaseReading:
		return "reading"
	case PhaseDrainingWrites:
		return "draining_writes"
	default:
		return "unknown"
	}
}
