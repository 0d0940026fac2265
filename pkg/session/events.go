package session

import (
	"time"

	"github.com/blaubaer/voice-recorder/pkg/analysis"
)

type EventKind uint8

const (
	EventStateChanged     = EventKind(0)
	EventRemainingChanged = EventKind(1)
	EventArtifact         = EventKind(2)
)

func (this EventKind) String() string {
	switch this {
	case EventStateChanged:
		return "state"
	case EventRemainingChanged:
		return "remaining"
	case EventArtifact:
		return "artifact"
	default:
		return "unknown"
	}
}

func (this EventKind) MarshalText() (text []byte, err error) {
	return []byte(this.String()), nil
}

type Event struct {
	Kind     EventKind  `json:"kind"`
	Snapshot Snapshot   `json:"snapshot"`
	Artifact *Artifact  `json:"artifact,omitempty"`
	Reason   StopReason `json:"reason,omitempty"`
}

// Snapshot is the observable state of the Controller at one point in time.
type Snapshot struct {
	State     State      `json:"state"`
	StartedAt *time.Time `json:"startedAt,omitempty"`
	Duration  Duration   `json:"duration,omitempty"`
	Remaining *int       `json:"remaining,omitempty"`
	Fragments int        `json:"fragments"`
	Size      int        `json:"size"`

	// Handle is not nil while Recording or Paused.
	Handle analysis.Handle `json:"-"`
}

// Listener is called synchronously while the Controller is locked. It
// must not call back into the Controller.
type Listener func(Event)
