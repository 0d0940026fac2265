package audio

import (
	"time"

	"github.com/blaubaer/voice-recorder/pkg/common"
)

func NewConfiguration() Configuration {
	return Configuration{
		Source:     SourceDefault,
		SampleRate: DefaultSampleRate,
		Channels:   DefaultChannels,
		Synthetic:  NewSyntheticConfiguration(),
	}
}

type Configuration struct {
	Source Source `yaml:"source"`

	// Device is either the index of a capture device or a case-insensitive
	// part of its name. Empty selects the default capture device.
	Device string `yaml:"device,omitempty"`

	// Exclude hides every capture device whose name matches.
	Exclude common.Regexp `yaml:"exclude,omitempty"`

	SampleRate uint32 `yaml:"sampleRate,omitempty"`
	Channels   uint32 `yaml:"channels,omitempty"`

	Synthetic SyntheticConfiguration `yaml:"synthetic,omitempty"`
}

func (this Configuration) Format() Format {
	result := Format{
		SampleRate: this.SampleRate,
		Channels:   this.Channels,
		BitDepth:   DefaultBitDepth,
	}
	if result.SampleRate == 0 {
		result.SampleRate = DefaultSampleRate
	}
	if result.Channels == 0 {
		result.Channels = DefaultChannels
	}
	return result
}

func (this *Configuration) SetupConfiguration(using common.FlagHolder) {
	using.Flag("audio.source", "Where audio is captured from. Possible values: "+AllSources.String()).
		Envar("VR_AUDIO_SOURCE").
		SetValue(&this.Source)
	using.Flag("audio.device", "Index or part of the name of the capture device to use. Empty means the default device.").
		Envar("VR_AUDIO_DEVICE").
		StringVar(&this.Device)
	using.Flag("audio.exclude", "Regular expression of capture device names which are never listed or selected.").
		Envar("VR_AUDIO_EXCLUDE").
		SetValue(&this.Exclude)
	using.Flag("audio.sampleRate", "Sample rate in Hz the device is captured with.").
		Envar("VR_AUDIO_SAMPLE_RATE").
		Uint32Var(&this.SampleRate)
	using.Flag("audio.channels", "Number of channels the device is captured with.").
		Envar("VR_AUDIO_CHANNELS").
		Uint32Var(&this.Channels)

	this.Synthetic.SetupConfiguration(using)
}

func NewSyntheticConfiguration() SyntheticConfiguration {
	return SyntheticConfiguration{
		Frequency:        440,
		Amplitude:        0.5,
		FragmentInterval: 100 * time.Millisecond,
	}
}

type SyntheticConfiguration struct {
	Frequency        float64       `yaml:"frequency,omitempty"`
	Amplitude        float64       `yaml:"amplitude,omitempty"`
	FragmentInterval time.Duration `yaml:"fragmentInterval,omitempty"`

	SimulateUnavailable bool `yaml:"simulateUnavailable,omitempty"`
	SimulateDenied      bool `yaml:"simulateDenied,omitempty"`
}

func (this *SyntheticConfiguration) SetupConfiguration(using common.FlagHolder) {
	using.Flag("audio.synthetic.frequency", "Frequency in Hz of the generated tone.").
		Envar("VR_AUDIO_SYNTHETIC_FREQUENCY").
		Float64Var(&this.Frequency)
	using.Flag("audio.synthetic.amplitude", "Amplitude (0..1) of the generated tone.").
		Envar("VR_AUDIO_SYNTHETIC_AMPLITUDE").
		Float64Var(&this.Amplitude)
	using.Flag("audio.synthetic.fragmentInterval", "How often the generator delivers a fragment.").
		Envar("VR_AUDIO_SYNTHETIC_FRAGMENT_INTERVAL").
		DurationVar(&this.FragmentInterval)
	using.Flag("audio.synthetic.simulateUnavailable", "Let every acquisition fail as if there is no capture device.").
		Envar("VR_AUDIO_SYNTHETIC_SIMULATE_UNAVAILABLE").
		BoolVar(&this.SimulateUnavailable)
	using.Flag("audio.synthetic.simulateDenied", "Let every acquisition fail as if access was denied.").
		Envar("VR_AUDIO_SYNTHETIC_SIMULATE_DENIED").
		BoolVar(&this.SimulateDenied)
}
