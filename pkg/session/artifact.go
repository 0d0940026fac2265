package session

import (
	"mime"
	"time"

	"github.com/google/uuid"

	"github.com/blaubaer/voice-recorder/pkg/audio"
)

// Artifact is the finished recording of one session. It is owned by the
// receiver once handed out and never modified by the Controller again.
type Artifact struct {
	ID          uuid.UUID    `json:"id"`
	Data        []byte       `json:"-"`
	ContentType string       `json:"contentType"`
	Format      audio.Format `json:"format"`
	URL         string       `json:"url,omitempty"`
	Fragments   int          `json:"fragments"`
	StartedAt   time.Time    `json:"startedAt"`
	StoppedAt   time.Time    `json:"stoppedAt"`
}

func (this *Artifact) Size() int {
	return len(this.Data)
}

// Duration is the amount of audio contained, not the wall clock time of
// the session which includes pauses.
func (this *Artifact) Duration() time.Duration {
	return this.Format.DurationOf(len(this.Data))
}

// Playable returns the content ready for players and transcription
// services: linear PCM gets a WAV container, everything else is returned
// as is.
func (this *Artifact) Playable() (data []byte, contentType string, err error) {
	if format, ok := audio.ParseContentType(this.ContentType); ok {
		data, err := audio.EncodeWAV(format, this.Data)
		if err != nil {
			return nil, "", err
		}
		return data, audio.ContentTypeWAV, nil
	}
	return this.Data, this.ContentType, nil
}

// Extension matches the content type returned by Playable.
func (this *Artifact) Extension() string {
	if _, ok := audio.ParseContentType(this.ContentType); ok {
		return ".wav"
	}
	if exts, err := mime.ExtensionsByType(this.ContentType); err == nil && len(exts) > 0 {
		return exts[0]
	}
	return ".bin"
}
