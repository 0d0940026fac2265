package artifact

import (
	"github.com/google/uuid"

	"github.com/blaubaer/voice-recorder/pkg/session"
)

// Store keeps finished recordings reachable by the URL Publish returned.
type Store interface {
	session.Publisher

	Get(id uuid.UUID) (*session.Artifact, bool)
	Resolve(url string) (*session.Artifact, bool)
	Revoke(id uuid.UUID) bool
	List() []*session.Artifact
}
