package analysis

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"math/cmplx"
	"sync"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/dsp/window"

	"github.com/blaubaer/voice-recorder/pkg/audio"
)

var ErrClosed = errors.New("analyser closed")

// Analyser consumes captured PCM via Write and keeps the last FFTSize
// samples for analysis. It never buffers more than that.
type Analyser struct {
	conf   Configuration
	format audio.Format

	mutex    sync.RWMutex
	samples  []float64
	offset   int
	fft      *fourier.FFT
	smoothed []float64
	closed   bool
}

func NewAnalyser(conf Configuration, format audio.Format) (*Analyser, error) {
	if err := conf.Validate(); err != nil {
		return nil, err
	}
	switch format.BitDepth {
	case 8, 16, 24, 32:
	default:
		return nil, fmt.Errorf("%w: cannot analyse %v", audio.ErrUnsupportedFormat, format)
	}
	if format.Channels == 0 {
		return nil, fmt.Errorf("%w: cannot analyse %v", audio.ErrUnsupportedFormat, format)
	}

	return &Analyser{
		conf:     conf,
		format:   format,
		samples:  make([]float64, conf.FFTSize),
		fft:      fourier.NewFFT(conf.FFTSize),
		smoothed: make([]float64, conf.FFTSize/2),
	}, nil
}

// Write feeds interleaved PCM in the format of the analyser. Incomplete
// trailing frames are ignored.
func (this *Analyser) Write(p []byte) (int, error) {
	this.mutex.Lock()
	defer this.mutex.Unlock()

	if this.closed {
		return 0, ErrClosed
	}

	width := this.format.BytesPerSample()
	channels := int(this.format.Channels)
	frameSize := width * channels
	for frame := 0; frame+frameSize <= len(p); frame += frameSize {
		var sum float64
		for channel := 0; channel < channels; channel++ {
			offset := frame + channel*width
			sum += this.sampleOf(p[offset : offset+width])
		}
		this.samples[this.offset] = sum / float64(channels)
		this.offset = (this.offset + 1) % len(this.samples)
	}
	return len(p), nil
}

func (this *Analyser) sampleOf(raw []byte) float64 {
	switch len(raw) {
	case 1:
		return (float64(raw[0]) - 128) / 128
	case 2:
		return float64(int16(binary.LittleEndian.Uint16(raw))) / 32768
	case 3:
		v := int32(raw[0]) | int32(raw[1])<<8 | int32(raw[2])<<16
		return float64(v<<8>>8) / 8388608
	default:
		return float64(int32(binary.LittleEndian.Uint32(raw))) / 2147483648
	}
}

func (this *Analyser) FFTSize() int {
	return this.conf.FFTSize
}

func (this *Analyser) FrequencyBinCount() int {
	return this.conf.FFTSize / 2
}

// FrequencyData advances the smoothing with every call.
func (this *Analyser) FrequencyData() []float64 {
	this.mutex.Lock()
	defer this.mutex.Unlock()

	if this.closed {
		return nil
	}

	n := len(this.samples)
	input := window.Blackman(this.orderedSamples())
	coefficients := this.fft.Coefficients(nil, input)

	tau := this.conf.SmoothingTimeConstant
	result := make([]float64, len(this.smoothed))
	for i := range this.smoothed {
		magnitude := cmplx.Abs(coefficients[i]) / float64(n)
		this.smoothed[i] = tau*this.smoothed[i] + (1-tau)*magnitude
		result[i] = decibels(this.smoothed[i])
	}
	return result
}

func (this *Analyser) ByteFrequencyData() []byte {
	values := this.FrequencyData()
	if values == nil {
		return nil
	}
	lower, upper := this.conf.MinDecibels, this.conf.MaxDecibels
	scale := 255 / (upper - lower)
	result := make([]byte, len(values))
	for i, v := range values {
		scaled := math.Floor(scale * (v - lower))
		result[i] = byte(math.Max(0, math.Min(255, scaled)))
	}
	return result
}

func (this *Analyser) TimeDomainData() []float64 {
	this.mutex.RLock()
	defer this.mutex.RUnlock()

	if this.closed {
		return nil
	}
	return this.orderedSamples()
}

func (this *Analyser) Level() float64 {
	this.mutex.RLock()
	defer this.mutex.RUnlock()

	if this.closed {
		return 0
	}
	var sum float64
	for _, v := range this.samples {
		sum += v * v
	}
	return math.Sqrt(sum / float64(len(this.samples)))
}

func (this *Analyser) Closed() bool {
	this.mutex.RLock()
	defer this.mutex.RUnlock()
	return this.closed
}

func (this *Analyser) Close() error {
	this.mutex.Lock()
	defer this.mutex.Unlock()
	this.closed = true
	this.samples = nil
	this.smoothed = nil
	return nil
}

func (this *Analyser) orderedSamples() []float64 {
	result := make([]float64, len(this.samples))
	n := copy(result, this.samples[this.offset:])
	copy(result[n:], this.samples[:this.offset])
	return result
}

func decibels(v float64) float64 {
	if v <= 0 {
		return math.Inf(-1)
	}
	return 20 * math.Log10(v)
}
