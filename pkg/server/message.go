package server

import (
	"github.com/blaubaer/voice-recorder/pkg/analysis"
	"github.com/blaubaer/voice-recorder/pkg/assess"
	"github.com/blaubaer/voice-recorder/pkg/session"
	"github.com/blaubaer/voice-recorder/pkg/transcribe"
)

const (
	kindAnalysis      = "analysis"
	kindTranscription = "transcription"
	kindAssessment    = "assessment"
)

// message is what live clients receive over the websocket.
type message struct {
	Kind          string             `json:"kind"`
	Snapshot      *snapshot          `json:"snapshot,omitempty"`
	Artifact      *session.Artifact  `json:"artifact,omitempty"`
	Reason        session.StopReason `json:"reason,omitempty"`
	Frame         *analysis.Frame    `json:"frame,omitempty"`
	Transcription *transcribe.Result `json:"transcription,omitempty"`
	Assessment    *assess.Result     `json:"assessment,omitempty"`
	Error         string             `json:"error,omitempty"`
}

type snapshot struct {
	session.Snapshot
	Analysis bool `json:"analysis"`
}

func newSnapshot(v session.Snapshot) *snapshot {
	return &snapshot{v, v.Handle != nil}
}

func messageOf(e session.Event) message {
	return message{
		Kind:     e.Kind.String(),
		Snapshot: newSnapshot(e.Snapshot),
		Artifact: e.Artifact,
		Reason:   e.Reason,
	}
}
