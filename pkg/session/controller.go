package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	log "github.com/echocat/slf4g"

	"github.com/blaubaer/voice-recorder/pkg/analysis"
	"github.com/blaubaer/voice-recorder/pkg/audio"
)

// Publisher makes a finished Artifact reachable and returns its URL.
type Publisher interface {
	Publish(*Artifact) (url string, err error)
}

func NewController(provider audio.Provider) *Controller {
	return &Controller{
		Provider: provider,
		Clock:    SystemClock,
		Analysis: analysis.NewConfiguration(),
		Tap:      &analysis.Tap{},
	}
}

// Controller drives exactly one recording session at a time.
//
// Everything is serialized through one mutex: the fragments of the
// capture stream, the ticks of the countdown and all calls from the
// outside. Every session gets its own generation; whatever arrives for an
// older generation is dropped.
type Controller struct {
	Provider  audio.Provider
	Publisher Publisher
	Clock     Clock
	Analysis  analysis.Configuration
	Tap       *analysis.Tap

	mutex     sync.Mutex
	state     State
	startedAt *time.Time
	duration  Duration
	gen       uint64
	acquiring bool
	abandon   bool
	closed    bool
	stream    audio.Stream
	analyser  *analysis.Analyser
	buffer    ChunkBuffer
	countdown Countdown
	listeners []Listener
}

func (this *Controller) OnEvent(l Listener) {
	this.mutex.Lock()
	defer this.mutex.Unlock()
	this.listeners = append(this.listeners, l)
}

// Start acquires the capture device and begins a new session. duration is
// captured once; zero means the session runs until stopped.
func (this *Controller) Start(ctx context.Context, duration Duration) error {
	this.mutex.Lock()
	if this.closed {
		this.mutex.Unlock()
		return ErrClosed
	}
	if this.acquiring || this.state != StateIdle {
		this.mutex.Unlock()
		return ErrSessionActive
	}
	this.acquiring = true
	this.abandon = false
	provider := this.Provider
	this.mutex.Unlock()

	var stream audio.Stream
	var err error
	if provider == nil {
		err = ErrDeviceUnavailable
	} else {
		stream, err = provider.Acquire(ctx)
	}

	this.mutex.Lock()
	defer this.mutex.Unlock()
	this.acquiring = false

	if err != nil {
		err = classifyAcquireError(err)
		log.WithError(err).
			Warn("Cannot acquire capture device.")
		return err
	}
	if this.abandon {
		this.abandon = false
		this.release(stream)
		log.Info("Recording stopped while the capture device was acquired.")
		return ErrStartAbandoned
	}

	this.gen++
	gen := this.gen
	this.buffer.Reset()
	this.stream = stream
	this.duration = duration
	this.analyser = this.openAnalyser(stream.Format())
	if this.analyser != nil && this.Tap != nil {
		this.Tap.Attach(this.analyser)
	}
	now := this.clock().Now()
	this.startedAt = &now
	this.state = StateRecording

	countdown := this.countdown.Start(duration.Seconds(), this.clock(), this.onTick)

	go this.pump(gen, stream)

	log.With("contentType", stream.ContentType()).
		With("duration", duration).
		Info("Recording started.")

	this.emit(Event{Kind: EventStateChanged})
	if countdown {
		this.emit(Event{Kind: EventRemainingChanged})
	}
	return nil
}

func classifyAcquireError(err error) error {
	if errors.Is(err, ErrDeviceUnavailable) ||
		errors.Is(err, ErrPermissionDenied) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return fmt.Errorf("%w: %v", ErrDeviceUnavailable, err)
}

func (this *Controller) openAnalyser(format audio.Format) *analysis.Analyser {
	result, err := analysis.NewAnalyser(this.Analysis, format)
	if err != nil {
		log.WithError(err).
			With("format", format).
			Warn("Cannot analyse captured audio. Live analysis disabled for this session.")
		return nil
	}
	return result
}

func (this *Controller) Pause() {
	this.mutex.Lock()
	defer this.mutex.Unlock()

	if this.state != StateRecording {
		return
	}
	this.state = StatePaused
	log.Info("Recording paused.")
	this.emit(Event{Kind: EventStateChanged})
}

func (this *Controller) Resume() {
	this.mutex.Lock()
	defer this.mutex.Unlock()

	if this.state != StatePaused {
		return
	}
	this.state = StateRecording
	log.Info("Recording resumed.")
	this.emit(Event{Kind: EventStateChanged})
}

func (this *Controller) TogglePauseResume() {
	this.mutex.Lock()
	defer this.mutex.Unlock()

	switch this.state {
	case StateRecording:
		this.state = StatePaused
		log.Info("Recording paused.")
	case StatePaused:
		this.state = StateRecording
		log.Info("Recording resumed.")
	default:
		return
	}
	this.emit(Event{Kind: EventStateChanged})
}

// Stop ends the active session and returns its Artifact. Without an active
// session it returns nil. A Stop while Start still acquires the device
// lets that Start fail with ErrStartAbandoned.
func (this *Controller) Stop() (*Artifact, error) {
	this.mutex.Lock()
	defer this.mutex.Unlock()
	return this.stopLocked(StopReasonManual)
}

// Close stops the active session and rejects every further Start.
func (this *Controller) Close() error {
	this.mutex.Lock()
	defer this.mutex.Unlock()
	this.closed = true
	_, err := this.stopLocked(StopReasonClosed)
	return err
}

// stopLocked must be called with the mutex held. It releases the mutex
// while the Artifact is published; the Controller stays Stopped meanwhile
// and rejects every Start.
func (this *Controller) stopLocked(reason StopReason) (*Artifact, error) {
	if this.acquiring {
		this.abandon = true
		return nil, nil
	}
	if !this.state.IsActive() {
		return nil, nil
	}

	stream := this.stream
	result, err := this.buffer.Finalize(stream.ContentType(), stream.Format())
	if err != nil {
		err = fmt.Errorf("cannot finalize recording: %w", err)
		result = nil
	}

	this.gen++
	hadCountdown := this.countdown.Active()
	this.countdown.Cancel()
	this.release(stream)
	if v := this.analyser; v != nil {
		if this.Tap != nil {
			this.Tap.Detach(v)
		}
		_ = v.Close()
	}
	startedAt := this.startedAt
	this.stream = nil
	this.analyser = nil
	this.startedAt = nil
	this.duration = 0

	if hadCountdown {
		this.emit(Event{Kind: EventRemainingChanged, Reason: reason})
	}
	this.state = StateStopped
	this.emit(Event{Kind: EventStateChanged, Reason: reason})

	if result != nil {
		result.StartedAt = *startedAt
		result.StoppedAt = this.clock().Now()
		if v := this.Publisher; v != nil {
			this.mutex.Unlock()
			url, pErr := v.Publish(result)
			this.mutex.Lock()
			if pErr != nil {
				log.WithError(pErr).
					With("id", result.ID).
					Warn("Cannot publish recording.")
			} else {
				result.URL = url
			}
		}

		log.With("id", result.ID).
			With("reason", reason).
			With("size", result.Size()).
			With("url", result.URL).
			Info("Recording stopped.")

		this.emit(Event{Kind: EventArtifact, Artifact: result, Reason: reason})
	} else {
		log.WithError(err).
			With("reason", reason).
			Error("Recording stopped without result.")
	}

	this.state = StateIdle
	this.emit(Event{Kind: EventStateChanged, Reason: reason})

	return result, err
}

func (this *Controller) release(stream audio.Stream) {
	if err := stream.Release(); err != nil {
		log.WithError(err).
			Warn("Cannot release capture device.")
	}
}

func (this *Controller) pump(gen uint64, stream audio.Stream) {
	for fragment := range stream.Fragments() {
		if !this.onFragment(gen, fragment) {
			return
		}
	}
	this.onStreamEnded(gen, stream)
}

func (this *Controller) onFragment(gen uint64, fragment []byte) bool {
	this.mutex.Lock()
	defer this.mutex.Unlock()

	if gen != this.gen {
		return false
	}
	if v := this.analyser; v != nil {
		_, _ = v.Write(fragment)
	}
	if this.state == StateRecording {
		this.buffer.Append(fragment)
	}
	return true
}

func (this *Controller) onStreamEnded(gen uint64, stream audio.Stream) {
	this.mutex.Lock()
	defer this.mutex.Unlock()

	if gen != this.gen {
		return
	}
	log.WithError(stream.Err()).
		Warn("Capture stream ended unexpectedly. Finishing recording.")
	_, _ = this.stopLocked(StopReasonDevice)
}

func (this *Controller) onTick(epoch uint64) {
	this.mutex.Lock()
	defer this.mutex.Unlock()

	remaining, expired := this.countdown.Tick(epoch)
	if expired {
		log.Info("Countdown expired.")
		this.emit(Event{Kind: EventRemainingChanged, Reason: StopReasonTimer})
		_, _ = this.stopLocked(StopReasonTimer)
		return
	}
	if remaining != nil {
		this.emit(Event{Kind: EventRemainingChanged})
	}
}

func (this *Controller) State() State {
	this.mutex.Lock()
	defer this.mutex.Unlock()
	return this.state
}

// Remaining returns nil while no countdown is running.
func (this *Controller) Remaining() *int {
	this.mutex.Lock()
	defer this.mutex.Unlock()
	return this.countdown.Remaining()
}

func (this *Controller) Snapshot() Snapshot {
	this.mutex.Lock()
	defer this.mutex.Unlock()
	return this.snapshot()
}

func (this *Controller) snapshot() Snapshot {
	result := Snapshot{
		State:     this.state,
		Duration:  this.duration,
		Remaining: this.countdown.Remaining(),
		Fragments: this.buffer.Len(),
		Size:      this.buffer.Size(),
	}
	if v := this.startedAt; v != nil {
		startedAt := *v
		result.StartedAt = &startedAt
	}
	if this.state.IsActive() && this.analyser != nil {
		result.Handle = this.analyser
	}
	return result
}

func (this *Controller) emit(e Event) {
	e.Snapshot = this.snapshot()
	for _, l := range this.listeners {
		l(e)
	}
}

func (this *Controller) clock() Clock {
	if v := this.Clock; v != nil {
		return v
	}
	return SystemClock
}
