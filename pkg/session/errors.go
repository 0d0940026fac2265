package session

import (
	"errors"

	"github.com/blaubaer/voice-recorder/pkg/audio"
)

var (
	ErrDeviceUnavailable = audio.ErrDeviceUnavailable
	ErrPermissionDenied  = audio.ErrPermissionDenied

	ErrInvalidDuration = errors.New("invalid duration")
	ErrSessionActive   = errors.New("a recording session is already active")
	ErrStartAbandoned  = errors.New("recording was stopped while the capture device was acquired")
	ErrBufferFinalized = errors.New("chunk buffer already finalized")
	ErrClosed          = errors.New("recording controller closed")
)
