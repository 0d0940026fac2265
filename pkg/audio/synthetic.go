package audio

import (
	"context"
	"encoding/binary"
	"fmt"
	"math"
	"time"
)

// Synthetic is a Provider without any hardware. It generates a sine tone
// and can pretend that the device is missing or that access was denied.
type Synthetic struct {
	Format        Format
	Configuration SyntheticConfiguration
}

func (this *Synthetic) Acquire(ctx context.Context) (Stream, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if this.Configuration.SimulateUnavailable {
		return nil, ErrDeviceUnavailable
	}
	if this.Configuration.SimulateDenied {
		return nil, ErrPermissionDenied
	}

	format := this.Format
	if format.IsZero() {
		format = Format{DefaultSampleRate, DefaultChannels, DefaultBitDepth}
	}
	if format.BitDepth != 16 {
		return nil, fmt.Errorf("%w: synthetic source only generates 16 bit samples, got %v", ErrUnsupportedFormat, format)
	}

	interval := this.Configuration.FragmentInterval
	if interval <= 0 {
		interval = NewSyntheticConfiguration().FragmentInterval
	}

	stop := make(chan struct{})
	stream := newFragmentStream(format, func() error {
		close(stop)
		return nil
	})

	go this.generate(format, interval, stream, stop)

	return stream, nil
}

func (this *Synthetic) generate(format Format, interval time.Duration, stream *fragmentStream, stop <-chan struct{}) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	framesPerFragment := int(time.Duration(format.SampleRate) * interval / time.Second)
	if framesPerFragment <= 0 {
		framesPerFragment = 1
	}
	step := 2 * math.Pi * this.Configuration.Frequency / float64(format.SampleRate)
	amplitude := math.Max(0, math.Min(1, this.Configuration.Amplitude)) * math.MaxInt16

	var phase float64
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
		}

		fragment := make([]byte, framesPerFragment*format.BytesPerFrame())
		for frame := 0; frame < framesPerFragment; frame++ {
			sample := uint16(int16(amplitude * math.Sin(phase)))
			for channel := 0; channel < int(format.Channels); channel++ {
				offset := frame*format.BytesPerFrame() + channel*2
				binary.LittleEndian.PutUint16(fragment[offset:], sample)
			}
			phase += step
			if phase > 2*math.Pi {
				phase -= 2 * math.Pi
			}
		}
		stream.push(fragment)
	}
}
