package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChunkBuffer(t *testing.T) {
	var instance ChunkBuffer
	given := []byte("ab")

	assert.True(t, instance.Append(given))
	assert.False(t, instance.Append(nil))
	assert.False(t, instance.Append([]byte{}))
	assert.True(t, instance.Append([]byte("c")))
	given[0] = 'x'

	assert.Equal(t, 2, instance.Len())
	assert.Equal(t, 3, instance.Size())

	actual, err := instance.Finalize(givenFormat.ContentType(), givenFormat)
	require.NoError(t, err)
	assert.Equal(t, []byte("abc"), actual.Data)
	assert.Equal(t, 2, actual.Fragments)
	assert.Equal(t, givenFormat.ContentType(), actual.ContentType)
	assert.Equal(t, 0, instance.Len())

	_, err = instance.Finalize(givenFormat.ContentType(), givenFormat)
	assert.ErrorIs(t, err, ErrBufferFinalized)
	assert.False(t, instance.Append([]byte("d")))

	instance.Reset()
	actual, err = instance.Finalize("audio/webm", givenFormat)
	require.NoError(t, err)
	assert.NotNil(t, actual.Data)
	assert.Empty(t, actual.Data)
}

func TestArtifact_Playable(t *testing.T) {
	instance := &Artifact{
		Data:        []byte{0x01, 0x00, 0x02, 0x00},
		ContentType: givenFormat.ContentType(),
		Format:      givenFormat,
	}

	data, contentType, err := instance.Playable()
	require.NoError(t, err)
	assert.Equal(t, "audio/wav", contentType)
	assert.Equal(t, "RIFF", string(data[:4]))
	assert.Equal(t, ".wav", instance.Extension())

	instance = &Artifact{Data: []byte("opaque"), ContentType: "application/x-opaque"}
	data, contentType, err = instance.Playable()
	require.NoError(t, err)
	assert.Equal(t, "application/x-opaque", contentType)
	assert.Equal(t, []byte("opaque"), data)
	assert.Equal(t, ".bin", instance.Extension())
}

func TestArtifact_Duration(t *testing.T) {
	instance := &Artifact{Data: make([]byte, 16000), Format: givenFormat}

	assert.Equal(t, "500ms", instance.Duration().String())
}
