package artifact

import (
	"strings"
	"sync"

	log "github.com/echocat/slf4g"
	"github.com/google/uuid"

	"github.com/blaubaer/voice-recorder/pkg/session"
)

const blobPrefix = "blob:voice-recorder/"

// Memory keeps recordings in memory, similar to object URLs of a browser.
// Once Capacity is exceeded the oldest recording gets revoked.
type Memory struct {
	BaseURL  string
	Capacity int

	mutex   sync.RWMutex
	entries map[uuid.UUID]*session.Artifact
	order   []uuid.UUID
}

func NewMemory(conf MemoryConfiguration) *Memory {
	return &Memory{
		BaseURL:  conf.BaseURL,
		Capacity: conf.Capacity,
	}
}

func (this *Memory) Publish(a *session.Artifact) (string, error) {
	this.mutex.Lock()
	defer this.mutex.Unlock()

	if this.entries == nil {
		this.entries = make(map[uuid.UUID]*session.Artifact)
	}
	if _, exists := this.entries[a.ID]; !exists {
		this.order = append(this.order, a.ID)
	}
	this.entries[a.ID] = a

	for this.Capacity > 0 && len(this.order) > this.Capacity {
		oldest := this.order[0]
		this.order = this.order[1:]
		delete(this.entries, oldest)
		log.With("id", oldest).
			Debug("Recording revoked to respect capacity.")
	}

	return this.urlOf(a.ID), nil
}

func (this *Memory) urlOf(id uuid.UUID) string {
	if v := this.BaseURL; v != "" {
		return strings.TrimRight(v, "/") + "/" + id.String()
	}
	return blobPrefix + id.String()
}

func (this *Memory) idOf(url string) (uuid.UUID, bool) {
	prefix := blobPrefix
	if v := this.BaseURL; v != "" {
		prefix = strings.TrimRight(v, "/") + "/"
	}
	if !strings.HasPrefix(url, prefix) {
		return uuid.UUID{}, false
	}
	id, err := uuid.Parse(strings.TrimPrefix(url, prefix))
	if err != nil {
		return uuid.UUID{}, false
	}
	return id, true
}

func (this *Memory) Get(id uuid.UUID) (*session.Artifact, bool) {
	this.mutex.RLock()
	defer this.mutex.RUnlock()
	v, ok := this.entries[id]
	return v, ok
}

func (this *Memory) Resolve(url string) (*session.Artifact, bool) {
	id, ok := this.idOf(url)
	if !ok {
		return nil, false
	}
	return this.Get(id)
}

func (this *Memory) Revoke(id uuid.UUID) bool {
	this.mutex.Lock()
	defer this.mutex.Unlock()

	if _, ok := this.entries[id]; !ok {
		return false
	}
	delete(this.entries, id)
	for i, v := range this.order {
		if v == id {
			this.order = append(this.order[:i], this.order[i+1:]...)
			break
		}
	}
	return true
}

func (this *Memory) List() []*session.Artifact {
	this.mutex.RLock()
	defer this.mutex.RUnlock()

	result := make([]*session.Artifact, 0, len(this.order))
	for _, id := range this.order {
		result = append(result, this.entries[id])
	}
	return result
}
