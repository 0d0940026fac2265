package audio

import "errors"

var (
	ErrDeviceUnavailable = errors.New("no audio capture device available")
	ErrPermissionDenied  = errors.New("access to the audio capture device was denied")
	ErrDeviceStopped     = errors.New("audio capture device stopped unexpectedly")
	ErrUnsupportedFormat = errors.New("unsupported audio format")
)
