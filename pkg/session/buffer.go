package session

import (
	"bytes"

	"github.com/google/uuid"

	"github.com/blaubaer/voice-recorder/pkg/audio"
)

// ChunkBuffer accumulates captured fragments of one session in arrival
// order. It is not safe for concurrent use.
type ChunkBuffer struct {
	fragments [][]byte
	size      int
	finalized bool
}

func (this *ChunkBuffer) Reset() {
	this.fragments = nil
	this.size = 0
	this.finalized = false
}

// Append keeps a copy of fragment. Empty fragments are dropped.
func (this *ChunkBuffer) Append(fragment []byte) bool {
	if len(fragment) == 0 || this.finalized {
		return false
	}
	this.fragments = append(this.fragments, bytes.Clone(fragment))
	this.size += len(fragment)
	return true
}

func (this *ChunkBuffer) Len() int {
	return len(this.fragments)
}

func (this *ChunkBuffer) Size() int {
	return this.size
}

func (this *ChunkBuffer) Finalize(contentType string, format audio.Format) (*Artifact, error) {
	if this.finalized {
		return nil, ErrBufferFinalized
	}

	data := make([]byte, 0, this.size)
	for _, fragment := range this.fragments {
		data = append(data, fragment...)
	}
	result := &Artifact{
		ID:          uuid.New(),
		Data:        data,
		ContentType: contentType,
		Format:      format,
		Fragments:   len(this.fragments),
	}

	this.fragments = nil
	this.size = 0
	this.finalized = true
	return result, nil
}
