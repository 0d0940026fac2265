package artifact

import (
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/blaubaer/voice-recorder/pkg/session"
)

// Facade delegates to the Store selected by the Configuration.
type Facade struct {
	Store

	lock sync.RWMutex
}

func (this *Facade) Initialize(conf *Configuration) error {
	this.lock.Lock()
	defer this.lock.Unlock()

	if this.Store != nil {
		return nil
	}

	switch conf.Type {
	case TypeMemory:
		this.Store = NewMemory(conf.Memory)
	case TypeDirectory:
		buf := NewDirectory(conf.Directory)
		if err := buf.Initialize(); err != nil {
			return err
		}
		this.Store = buf
	default:
		return fmt.Errorf("unsupported artifact store type: %v", conf.Type)
	}

	return nil
}

func (this *Facade) Publish(a *session.Artifact) (string, error) {
	this.lock.RLock()
	defer this.lock.RUnlock()

	if v := this.Store; v != nil {
		return v.Publish(a)
	}
	return "", nil
}

func (this *Facade) Get(id uuid.UUID) (*session.Artifact, bool) {
	this.lock.RLock()
	defer this.lock.RUnlock()

	if v := this.Store; v != nil {
		return v.Get(id)
	}
	return nil, false
}

func (this *Facade) Resolve(url string) (*session.Artifact, bool) {
	this.lock.RLock()
	defer this.lock.RUnlock()

	if v := this.Store; v != nil {
		return v.Resolve(url)
	}
	return nil, false
}

func (this *Facade) Revoke(id uuid.UUID) bool {
	this.lock.RLock()
	defer this.lock.RUnlock()

	if v := this.Store; v != nil {
		return v.Revoke(id)
	}
	return false
}

func (this *Facade) List() []*session.Artifact {
	this.lock.RLock()
	defer this.lock.RUnlock()

	if v := this.Store; v != nil {
		return v.List()
	}
	return nil
}

func (this *Facade) Dispose() error {
	this.lock.Lock()
	defer this.lock.Unlock()

	this.Store = nil
	return nil
}
