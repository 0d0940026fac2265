package audio

import "context"

// Provider hands out capture streams. Acquire blocks until the platform
// granted or denied access; it fails with ErrDeviceUnavailable or
// ErrPermissionDenied.
type Provider interface {
	Acquire(ctx context.Context) (Stream, error)
}

// Stream is one acquired capture device.
//
// Fragments are delivered in capture order. The channel is closed after
// Release or when the device ended; in the latter case Err reports why.
type Stream interface {
	Fragments() <-chan []byte
	Format() Format
	ContentType() string
	Err() error
	Release() error
}
