package audio

import (
	"fmt"
	"strings"
)

// Source selects which Provider backs the recorder.
type Source uint8

const (
	SourceDevice    = Source(0)
	SourceSynthetic = Source(1)

	SourceDefault = SourceDevice
)

var (
	AllSources = Sources{
		SourceDevice,
		SourceSynthetic,
	}
)

func (this *Source) Set(plain string) error {
	switch strings.TrimSpace(strings.ToLower(plain)) {
	case "device", "microphone", "mic":
		*this = SourceDevice
		return nil
	case "synthetic", "tone":
		*this = SourceSynthetic
		return nil
	default:
		return fmt.Errorf("illegal-audio-source: %s", plain)
	}
}

func (this Source) String() string {
	v, err := this.MarshalText()
	if err != nil {
		return fmt.Sprintf("illegal-audio-source-%d", this)
	}
	return string(v)
}

func (this Source) MarshalText() (text []byte, err error) {
	switch this {
	case SourceDevice:
		return []byte("device"), nil
	case SourceSynthetic:
		return []byte("synthetic"), nil
	default:
		return nil, fmt.Errorf("illegal audio source: %d", this)
	}
}

func (this *Source) UnmarshalText(text []byte) error {
	return this.Set(string(text))
}

type Sources []Source

func (this Sources) Strings() []string {
	result := make([]string, len(this))
	for i, v := range this {
		result[i] = v.String()
	}
	return result
}

func (this Sources) String() string {
	return strings.Join(this.Strings(), ",")
}
