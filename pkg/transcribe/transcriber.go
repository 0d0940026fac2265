package transcribe

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/blaubaer/voice-recorder/pkg/session"
)

var (
	ErrEmptyRecording = errors.New("recording is empty")
	ErrNoTranscript   = errors.New("no transcript found in response")
	ErrUnauthorized   = errors.New("transcription service rejected the credentials")
)

// Transcriber turns a finished recording into text.
type Transcriber interface {
	Transcribe(ctx context.Context, a *session.Artifact) (Result, error)
}

type Result struct {
	ArtifactID uuid.UUID     `json:"artifactId"`
	Text       string        `json:"text"`
	Language   string        `json:"language,omitempty"`
	Words      []Word        `json:"words,omitempty"`
	Took       time.Duration `json:"took"`
}

// Word is one transcribed word with its position in the recording in seconds.
type Word struct {
	Text  string  `json:"text"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

func playable(a *session.Artifact) (data []byte, fileName, contentType string, err error) {
	if a == nil || len(a.Data) == 0 {
		return nil, "", "", ErrEmptyRecording
	}
	data, contentType, err = a.Playable()
	if err != nil {
		return nil, "", "", err
	}
	return data, "recording" + a.Extension(), contentType, nil
}
