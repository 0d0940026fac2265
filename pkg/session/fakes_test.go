package session

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/blaubaer/voice-recorder/pkg/audio"
)

var givenFormat = audio.Format{SampleRate: 16000, Channels: 1, BitDepth: 16}

type fakeProvider struct {
	t      *testing.T
	format audio.Format
	err    error
	// gate blocks Acquire until closed, if set.
	gate     chan struct{}
	entered  chan struct{}
	mutex    sync.Mutex
	streams  []*fakeStream
	acquired atomic.Int32
}

func newFakeProvider(t *testing.T) *fakeProvider {
	return &fakeProvider{t: t, format: givenFormat}
}

func (this *fakeProvider) Acquire(ctx context.Context) (audio.Stream, error) {
	this.acquired.Add(1)
	if v := this.entered; v != nil {
		v <- struct{}{}
	}
	if v := this.gate; v != nil {
		select {
		case <-v:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if this.err != nil {
		return nil, this.err
	}
	result := newFakeStream(this.t, this.format)
	this.mutex.Lock()
	this.streams = append(this.streams, result)
	this.mutex.Unlock()
	return result, nil
}

func (this *fakeProvider) stream(i int) *fakeStream {
	this.mutex.Lock()
	defer this.mutex.Unlock()
	require.Greater(this.t, len(this.streams), i)
	return this.streams[i]
}

type fakeStream struct {
	t        *testing.T
	format   audio.Format
	ch       chan []byte
	closed   bool
	err      atomic.Pointer[error]
	released atomic.Int32
}

func newFakeStream(t *testing.T, format audio.Format) *fakeStream {
	result := &fakeStream{
		t:      t,
		format: format,
		ch:     make(chan []byte),
	}
	t.Cleanup(result.close)
	return result
}

// send delivers the fragments and returns once the consumer handled all
// of them. The trailing empty fragment is only received, never handled,
// so it must not be relied on.
func (this *fakeStream) send(fragments ...[]byte) {
	for _, f := range append(fragments, []byte{}) {
		select {
		case this.ch <- f:
		case <-time.After(2 * time.Second):
			this.t.Fatal("fragment was not consumed")
		}
	}
}

// sendDropped offers one fragment which is expected to be ignored. A
// consumer which already stopped reading is fine as well.
func (this *fakeStream) sendDropped(fragment []byte) bool {
	select {
	case this.ch <- fragment:
		return true
	case <-time.After(100 * time.Millisecond):
		return false
	}
}

func (this *fakeStream) end(err error) {
	if err != nil {
		this.err.Store(&err)
	}
	this.close()
}

func (this *fakeStream) close() {
	if !this.closed {
		this.closed = true
		close(this.ch)
	}
}

func (this *fakeStream) Fragments() <-chan []byte {
	return this.ch
}

func (this *fakeStream) Format() audio.Format {
	return this.format
}

func (this *fakeStream) ContentType() string {
	return this.format.ContentType()
}

func (this *fakeStream) Err() error {
	if v := this.err.Load(); v != nil {
		return *v
	}
	return nil
}

func (this *fakeStream) Release() error {
	this.released.Add(1)
	return nil
}

type fakeClock struct {
	t       *testing.T
	now     time.Time
	mutex   sync.Mutex
	tickers []*fakeTicker
}

func newFakeClock(t *testing.T) *fakeClock {
	return &fakeClock{t: t, now: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
}

func (this *fakeClock) Now() time.Time {
	this.mutex.Lock()
	defer this.mutex.Unlock()
	this.now = this.now.Add(time.Second)
	return this.now
}

func (this *fakeClock) NewTicker(d time.Duration) Ticker {
	require.Equal(this.t, time.Second, d)
	this.mutex.Lock()
	defer this.mutex.Unlock()
	result := &fakeTicker{t: this.t, c: make(chan time.Time)}
	this.tickers = append(this.tickers, result)
	return result
}

func (this *fakeClock) numberOfTickers() int {
	this.mutex.Lock()
	defer this.mutex.Unlock()
	return len(this.tickers)
}

func (this *fakeClock) ticker(i int) *fakeTicker {
	this.mutex.Lock()
	defer this.mutex.Unlock()
	require.Greater(this.t, len(this.tickers), i)
	return this.tickers[i]
}

type fakeTicker struct {
	t       *testing.T
	c       chan time.Time
	stopped atomic.Bool
}

func (this *fakeTicker) C() <-chan time.Time {
	return this.c
}

func (this *fakeTicker) Stop() {
	this.stopped.Store(true)
}

func (this *fakeTicker) fire() {
	select {
	case this.c <- time.Now():
	case <-time.After(2 * time.Second):
		this.t.Fatal("tick was not consumed")
	}
}

type recorder struct {
	mutex  sync.Mutex
	events []Event
}

func (this *recorder) listen(e Event) {
	this.mutex.Lock()
	defer this.mutex.Unlock()
	this.events = append(this.events, e)
}

func (this *recorder) all() []Event {
	this.mutex.Lock()
	defer this.mutex.Unlock()
	return append([]Event{}, this.events...)
}

func (this *recorder) states() (result []State) {
	for _, e := range this.all() {
		if e.Kind == EventStateChanged {
			result = append(result, e.Snapshot.State)
		}
	}
	return result
}

// remaining returns every announced remaining value, 0 stands for none.
func (this *recorder) remaining() (result []int) {
	for _, e := range this.all() {
		if e.Kind == EventRemainingChanged {
			if v := e.Snapshot.Remaining; v != nil {
				result = append(result, *v)
			} else {
				result = append(result, 0)
			}
		}
	}
	return result
}

func (this *recorder) artifacts() (result []*Artifact) {
	for _, e := range this.all() {
		if e.Kind == EventArtifact {
			result = append(result, e.Artifact)
		}
	}
	return result
}

type fakePublisher struct {
	err error
	// gate blocks Publish until closed, if set.
	gate      chan struct{}
	entered   chan struct{}
	published []*Artifact
}

func (this *fakePublisher) Publish(a *Artifact) (string, error) {
	if v := this.entered; v != nil {
		v <- struct{}{}
	}
	if v := this.gate; v != nil {
		<-v
	}
	if this.err != nil {
		return "", this.err
	}
	this.published = append(this.published, a)
	return "memory:" + a.ID.String(), nil
}

func newTestController(t *testing.T) (*Controller, *fakeProvider, *fakeClock, *recorder) {
	provider := newFakeProvider(t)
	clock := newFakeClock(t)
	events := &recorder{}
	instance := NewController(provider)
	instance.Clock = clock
	instance.OnEvent(events.listen)
	return instance, provider, clock, events
}
