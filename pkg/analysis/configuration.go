package analysis

import (
	"fmt"

	"github.com/blaubaer/voice-recorder/pkg/common"
)

const (
	MinFFTSize = 32
	MaxFFTSize = 32768
)

func NewConfiguration() Configuration {
	return Configuration{
		FFTSize:               2048,
		SmoothingTimeConstant: 0.8,
		MinDecibels:           -100,
		MaxDecibels:           -30,
	}
}

type Configuration struct {
	FFTSize               int     `yaml:"fftSize,omitempty"`
	SmoothingTimeConstant float64 `yaml:"smoothingTimeConstant,omitempty"`
	MinDecibels           float64 `yaml:"minDecibels,omitempty"`
	MaxDecibels           float64 `yaml:"maxDecibels,omitempty"`
}

func (this Configuration) Validate() error {
	if this.FFTSize < MinFFTSize || this.FFTSize > MaxFFTSize || this.FFTSize&(this.FFTSize-1) != 0 {
		return fmt.Errorf("fftSize has to be a power of two between %d and %d, got: %d", MinFFTSize, MaxFFTSize, this.FFTSize)
	}
	if this.SmoothingTimeConstant < 0 || this.SmoothingTimeConstant > 1 {
		return fmt.Errorf("smoothingTimeConstant has to be between 0 and 1, got: %v", this.SmoothingTimeConstant)
	}
	if this.MinDecibels >= this.MaxDecibels {
		return fmt.Errorf("minDecibels (%v) has to be lower than maxDecibels (%v)", this.MinDecibels, this.MaxDecibels)
	}
	return nil
}

func (this *Configuration) SetupConfiguration(using common.FlagHolder) {
	using.Flag("analysis.fftSize", "Window size of the live frequency analysis. Has to be a power of two.").
		Envar("VR_ANALYSIS_FFT_SIZE").
		IntVar(&this.FFTSize)
	using.Flag("analysis.smoothingTimeConstant", "Averaging (0..1) between the current and the last frequency frame.").
		Envar("VR_ANALYSIS_SMOOTHING_TIME_CONSTANT").
		Float64Var(&this.SmoothingTimeConstant)
	using.Flag("analysis.minDecibels", "Lower bound of the byte scaled frequency data.").
		Envar("VR_ANALYSIS_MIN_DECIBELS").
		Float64Var(&this.MinDecibels)
	using.Flag("analysis.maxDecibels", "Upper bound of the byte scaled frequency data.").
		Envar("VR_ANALYSIS_MAX_DECIBELS").
		Float64Var(&this.MaxDecibels)
}
