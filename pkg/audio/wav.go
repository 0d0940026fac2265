package audio

import (
	"encoding/binary"
	"fmt"
	"io"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

const wavFormatPCM = 1

// EncodeWAV wraps little-endian linear PCM into a RIFF/WAVE container.
func EncodeWAV(format Format, pcm []byte) ([]byte, error) {
	samples, err := decodeSamples(format, pcm)
	if err != nil {
		return nil, err
	}

	var buf seekBuffer
	enc := wav.NewEncoder(&buf, int(format.SampleRate), int(format.BitDepth), int(format.Channels), wavFormatPCM)
	if err := enc.Write(&goaudio.IntBuffer{
		Format: &goaudio.Format{
			NumChannels: int(format.Channels),
			SampleRate:  int(format.SampleRate),
		},
		Data:           samples,
		SourceBitDepth: int(format.BitDepth),
	}); err != nil {
		return nil, fmt.Errorf("cannot encode %v as wav: %w", format, err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("cannot finish wav of %v: %w", format, err)
	}
	return buf.data, nil
}

func decodeSamples(format Format, pcm []byte) ([]int, error) {
	if format.IsZero() {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedFormat, format)
	}
	width := format.BytesPerSample()
	result := make([]int, len(pcm)/width)
	for i := range result {
		raw := pcm[i*width : (i+1)*width]
		switch format.BitDepth {
		case 8:
			// 8 bit wav is unsigned and written as is.
			result[i] = int(raw[0])
		case 16:
			result[i] = int(int16(binary.LittleEndian.Uint16(raw)))
		case 24:
			v := int32(raw[0]) | int32(raw[1])<<8 | int32(raw[2])<<16
			result[i] = int(v<<8) >> 8
		case 32:
			result[i] = int(int32(binary.LittleEndian.Uint32(raw)))
		default:
			return nil, fmt.Errorf("%w: %v", ErrUnsupportedFormat, format)
		}
	}
	return result, nil
}

type seekBuffer struct {
	data []byte
	pos  int
}

func (this *seekBuffer) Write(p []byte) (int, error) {
	end := this.pos + len(p)
	if end > len(this.data) {
		this.data = append(this.data, make([]byte, end-len(this.data))...)
	}
	copy(this.data[this.pos:], p)
	this.pos = end
	return len(p), nil
}

func (this *seekBuffer) Seek(offset int64, whence int) (int64, error) {
	var base int64
	switch whence {
	case io.SeekStart:
	case io.SeekCurrent:
		base = int64(this.pos)
	case io.SeekEnd:
		base = int64(len(this.data))
	default:
		return 0, fmt.Errorf("illegal whence: %d", whence)
	}
	next := base + offset
	if next < 0 {
		return 0, fmt.Errorf("negative position: %d", next)
	}
	this.pos = int(next)
	return next, nil
}
