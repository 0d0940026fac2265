package session

import "time"

// Countdown counts the remaining seconds of a session down. It is not
// safe for concurrent use; the Controller calls it with its mutex held
// and the ticker goroutine only reports epochs back through fire.
type Countdown struct {
	total     int
	remaining int
	epoch     uint64
	ticker    Ticker
	done      chan struct{}
}

// Start cancels a running countdown and starts a new one if seconds is
// positive. fire is called with the epoch of the countdown on every tick.
func (this *Countdown) Start(seconds int, clock Clock, fire func(epoch uint64)) bool {
	this.Cancel()
	if seconds <= 0 {
		return false
	}

	this.total = seconds
	this.remaining = seconds
	this.ticker = clock.NewTicker(time.Second)
	this.done = make(chan struct{})

	go run(this.epoch, this.ticker, this.done, fire)
	return true
}

func run(epoch uint64, ticker Ticker, done <-chan struct{}, fire func(epoch uint64)) {
	for {
		select {
		case <-done:
			return
		case <-ticker.C():
			fire(epoch)
		}
	}
}

// Tick applies one tick of the countdown with the given epoch. Ticks of
// earlier countdowns are ignored. The tick which would bring the
// countdown to zero cancels it and reports expired instead.
func (this *Countdown) Tick(epoch uint64) (remaining *int, expired bool) {
	if epoch != this.epoch || this.remaining <= 0 {
		return nil, false
	}
	if this.remaining == 1 {
		this.Cancel()
		return nil, true
	}
	this.remaining--
	return this.Remaining(), false
}

// Cancel stops the countdown. It can be called any number of times.
func (this *Countdown) Cancel() {
	if this.ticker != nil {
		this.ticker.Stop()
		close(this.done)
		this.ticker = nil
		this.done = nil
	}
	this.epoch++
	this.total = 0
	this.remaining = 0
}

func (this *Countdown) Active() bool {
	return this.remaining > 0
}

// Remaining returns nil while no countdown is running.
func (this *Countdown) Remaining() *int {
	if this.remaining <= 0 {
		return nil
	}
	v := this.remaining
	return &v
}

func (this *Countdown) Total() int {
	return this.total
}
