package audio

import (
	"fmt"
	"mime"
	"strconv"
	"strings"
	"time"
)

const (
	ContentTypeWAV = "audio/wav"

	DefaultSampleRate = uint32(16000)
	DefaultChannels   = uint32(1)
	DefaultBitDepth   = uint32(16)
)

// Format describes interleaved, little-endian linear PCM.
type Format struct {
	SampleRate uint32 `yaml:"sampleRate,omitempty" json:"sampleRate,omitempty"`
	Channels   uint32 `yaml:"channels,omitempty" json:"channels,omitempty"`
	BitDepth   uint32 `yaml:"bitDepth,omitempty" json:"bitDepth,omitempty"`
}

func (this Format) IsZero() bool {
	return this.SampleRate == 0 || this.Channels == 0 || this.BitDepth == 0
}

func (this Format) BytesPerSample() int {
	return int(this.BitDepth+7) / 8
}

func (this Format) BytesPerFrame() int {
	return this.BytesPerSample() * int(this.Channels)
}

func (this Format) BytesPerSecond() int {
	return this.BytesPerFrame() * int(this.SampleRate)
}

func (this Format) DurationOf(numberOfBytes int) time.Duration {
	bps := this.BytesPerSecond()
	if bps <= 0 {
		return 0
	}
	return time.Duration(numberOfBytes) * time.Second / time.Duration(bps)
}

// ContentType returns the RFC 3190 style media type, like "audio/L16;rate=16000;channels=1".
func (this Format) ContentType() string {
	if this.IsZero() {
		return "application/octet-stream"
	}
	return fmt.Sprintf("audio/L%d;rate=%d;channels=%d", this.BitDepth, this.SampleRate, this.Channels)
}

func (this Format) String() string {
	return fmt.Sprintf("%dHz/%dch/%dbit", this.SampleRate, this.Channels, this.BitDepth)
}

// ParseContentType is the reverse of Format.ContentType. It reports false
// for every media type which is not linear PCM.
func ParseContentType(contentType string) (Format, bool) {
	mediaType, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		return Format{}, false
	}
	mediaType = strings.ToLower(mediaType)
	if !strings.HasPrefix(mediaType, "audio/l") {
		return Format{}, false
	}
	bitDepth, err := strconv.ParseUint(strings.TrimPrefix(mediaType, "audio/l"), 10, 32)
	if err != nil {
		return Format{}, false
	}
	rate, err := strconv.ParseUint(params["rate"], 10, 32)
	if err != nil {
		return Format{}, false
	}
	channels := uint64(1)
	if v, ok := params["channels"]; ok {
		if channels, err = strconv.ParseUint(v, 10, 32); err != nil {
			return Format{}, false
		}
	}
	result := Format{
		SampleRate: uint32(rate),
		Channels:   uint32(channels),
		BitDepth:   uint32(bitDepth),
	}
	return result, !result.IsZero()
}
