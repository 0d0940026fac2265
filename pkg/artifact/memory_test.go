package artifact

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blaubaer/voice-recorder/pkg/session"
)

func newArtifact() *session.Artifact {
	return &session.Artifact{
		ID:          uuid.New(),
		Data:        []byte{0x01, 0x00, 0x02, 0x00},
		ContentType: "audio/L16;rate=16000;channels=1",
	}
}

func TestMemory_PublishAndResolve(t *testing.T) {
	instance := NewMemory(MemoryConfiguration{})
	given := newArtifact()

	url, err := instance.Publish(given)
	require.NoError(t, err)
	assert.Equal(t, "blob:voice-recorder/"+given.ID.String(), url)

	actual, ok := instance.Resolve(url)
	assert.True(t, ok)
	assert.Same(t, given, actual)

	actual, ok = instance.Get(given.ID)
	assert.True(t, ok)
	assert.Same(t, given, actual)

	_, ok = instance.Resolve("blob:voice-recorder/foo")
	assert.False(t, ok)
	_, ok = instance.Resolve("https://example.org/" + given.ID.String())
	assert.False(t, ok)
}

func TestMemory_BaseURL(t *testing.T) {
	instance := NewMemory(MemoryConfiguration{BaseURL: "http://localhost:8080/artifacts/"})
	given := newArtifact()

	url, err := instance.Publish(given)
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8080/artifacts/"+given.ID.String(), url)
	actual, ok := instance.Resolve(url)
	assert.True(t, ok)
	assert.Same(t, given, actual)
}

func TestMemory_Capacity(t *testing.T) {
	instance := NewMemory(MemoryConfiguration{Capacity: 2})
	first, second, third := newArtifact(), newArtifact(), newArtifact()

	for _, v := range []*session.Artifact{first, second, third} {
		_, err := instance.Publish(v)
		require.NoError(t, err)
	}

	_, ok := instance.Get(first.ID)
	assert.False(t, ok)
	assert.Equal(t, []*session.Artifact{second, third}, instance.List())
}

func TestMemory_Revoke(t *testing.T) {
	instance := NewMemory(MemoryConfiguration{})
	given := newArtifact()
	url, err := instance.Publish(given)
	require.NoError(t, err)

	assert.True(t, instance.Revoke(given.ID))
	assert.False(t, instance.Revoke(given.ID))

	_, ok := instance.Resolve(url)
	assert.False(t, ok)
	assert.Empty(t, instance.List())
}
