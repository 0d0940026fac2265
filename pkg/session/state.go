package session

import (
	"fmt"
	"strings"
)

type State uint8

const (
	StateIdle      = State(0)
	StateRecording = State(1)
	StatePaused    = State(2)
	StateStopped   = State(3)
)

var (
	AllStates = States{
		StateIdle,
		StateRecording,
		StatePaused,
		StateStopped,
	}
)

// IsActive reports whether a capture device is held in this state.
func (this State) IsActive() bool {
	return this == StateRecording || this == StatePaused
}

func (this *State) Set(plain string) error {
	switch strings.TrimSpace(strings.ToLower(plain)) {
	case "idle":
		*this = StateIdle
		return nil
	case "recording":
		*this = StateRecording
		return nil
	case "paused":
		*this = StatePaused
		return nil
	case "stopped":
		*this = StateStopped
		return nil
	default:
		return fmt.Errorf("illegal-state: %s", plain)
	}
}

func (this State) String() string {
	v, err := this.MarshalText()
	if err != nil {
		return fmt.Sprintf("illegal-state-%d", this)
	}
	return string(v)
}

func (this State) MarshalText() (text []byte, err error) {
	switch this {
	case StateIdle:
		return []byte("idle"), nil
	case StateRecording:
		return []byte("recording"), nil
	case StatePaused:
		return []byte("paused"), nil
	case StateStopped:
		return []byte("stopped"), nil
	default:
		return nil, fmt.Errorf("illegal state: %d", this)
	}
}

func (this *State) UnmarshalText(text []byte) error {
	return this.Set(string(text))
}

type States []State

func (this States) Strings() []string {
	result := make([]string, len(this))
	for i, v := range this {
		result[i] = v.String()
	}
	return result
}

func (this States) String() string {
	return strings.Join(this.Strings(), ",")
}

// StopReason tells what ended a session.
type StopReason uint8

const (
	StopReasonNone   = StopReason(0)
	StopReasonManual = StopReason(1)
	StopReasonTimer  = StopReason(2)
	StopReasonDevice = StopReason(3)
	StopReasonClosed = StopReason(4)
)

func (this *StopReason) Set(plain string) error {
	switch strings.TrimSpace(strings.ToLower(plain)) {
	case "":
		*this = StopReasonNone
	case "manual":
		*this = StopReasonManual
	case "timer":
		*this = StopReasonTimer
	case "device":
		*this = StopReasonDevice
	case "closed":
		*this = StopReasonClosed
	default:
		return fmt.Errorf("illegal-stop-reason: %s", plain)
	}
	return nil
}

func (this StopReason) String() string {
	v, err := this.MarshalText()
	if err != nil {
		return fmt.Sprintf("illegal-stop-reason-%d", this)
	}
	return string(v)
}

func (this StopReason) MarshalText() (text []byte, err error) {
	switch this {
	case StopReasonNone:
		return []byte(""), nil
	case StopReasonManual:
		return []byte("manual"), nil
	case StopReasonTimer:
		return []byte("timer"), nil
	case StopReasonDevice:
		return []byte("device"), nil
	case StopReasonClosed:
		return []byte("closed"), nil
	default:
		return nil, fmt.Errorf("illegal stop reason: %d", this)
	}
}

func (this *StopReason) UnmarshalText(text []byte) error {
	return this.Set(string(text))
}
