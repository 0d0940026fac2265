package audio

import (
	"bytes"
	"sync"
)

// fragmentStream decouples the capture callback from the consumer: push
// never blocks, the queue is unbounded and drained in order into out.
type fragmentStream struct {
	format    Format
	onRelease func() error

	out     chan []byte
	done    chan struct{}
	mutex   sync.Mutex
	cond    *sync.Cond
	pending [][]byte
	ended   bool
	err     error

	released   sync.Once
	releaseErr error
}

func newFragmentStream(format Format, onRelease func() error) *fragmentStream {
	result := &fragmentStream{
		format:    format,
		onRelease: onRelease,
		out:       make(chan []byte),
		done:      make(chan struct{}),
	}
	result.cond = sync.NewCond(&result.mutex)
	go result.run()
	return result
}

func (this *fragmentStream) run() {
	defer close(this.out)
	for {
		this.mutex.Lock()
		for len(this.pending) == 0 && !this.ended {
			this.cond.Wait()
		}
		if len(this.pending) == 0 {
			this.mutex.Unlock()
			return
		}
		next := this.pending[0]
		this.pending[0] = nil
		this.pending = this.pending[1:]
		this.mutex.Unlock()

		select {
		case this.out <- next:
		case <-this.done:
			return
		}
	}
}

func (this *fragmentStream) push(fragment []byte) {
	if len(fragment) == 0 {
		return
	}
	this.mutex.Lock()
	defer this.mutex.Unlock()
	if this.ended {
		return
	}
	this.pending = append(this.pending, bytes.Clone(fragment))
	this.cond.Signal()
}

// end stops accepting fragments. Everything already queued is still
// delivered unless the stream gets released.
func (this *fragmentStream) end(err error) {
	this.mutex.Lock()
	defer this.mutex.Unlock()
	if this.ended {
		return
	}
	this.ended = true
	this.err = err
	this.cond.Broadcast()
}

func (this *fragmentStream) Fragments() <-chan []byte {
	return this.out
}

func (this *fragmentStream) Format() Format {
	return this.format
}

func (this *fragmentStream) ContentType() string {
	return this.format.ContentType()
}

func (this *fragmentStream) Err() error {
	this.mutex.Lock()
	defer this.mutex.Unlock()
	return this.err
}

func (this *fragmentStream) Release() error {
	this.released.Do(func() {
		this.end(nil)
		close(this.done)
		this.mutex.Lock()
		this.pending = nil
		this.mutex.Unlock()
		if v := this.onRelease; v != nil {
			this.releaseErr = v()
		}
	})
	return this.releaseErr
}
