package analysis

import "sync/atomic"

// Tap relays the analyser of the currently active session.
type Tap struct {
	current atomic.Pointer[Analyser]
}

func (this *Tap) Attach(v *Analyser) {
	this.current.Store(v)
}

// Detach clears the tap only if v is still the attached analyser.
func (this *Tap) Detach(v *Analyser) bool {
	return this.current.CompareAndSwap(v, nil)
}

// Current returns nil while no session is active.
func (this *Tap) Current() Handle {
	if v := this.current.Load(); v != nil {
		return v
	}
	return nil
}
