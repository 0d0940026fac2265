package assess

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blaubaer/voice-recorder/pkg/session"
)

func givenArtifact() *session.Artifact {
	return &session.Artifact{
		ID:          uuid.New(),
		Data:        []byte{0x01, 0x00, 0x02, 0x00, 0x03, 0x00},
		ContentType: "audio/L16;rate=16000;channels=1",
	}
}

func TestAssessor_Assess(t *testing.T) {
	var fileName, fileType string
	var file []byte
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/assess", r.URL.Path)
		if assert.NoError(t, r.ParseMultipartForm(1<<20)) {
			headers := r.MultipartForm.File["audio"]
			require.Len(t, headers, 1)
			f, err := headers[0].Open()
			require.NoError(t, err)
			file, err = io.ReadAll(f)
			require.NoError(t, err)
			fileName = headers[0].Filename
			fileType = headers[0].Header.Get("Content-Type")
		}
		w.Header().Set("Content-Type", "text/html")
		_, _ = io.WriteString(w, `{"score": 3.1415926}`)
	}))
	defer server.Close()
	instance := New(Configuration{URL: server.URL + "/assess"})
	given := givenArtifact()

	actual, err := instance.Assess(context.Background(), given)
	require.NoError(t, err)

	assert.Equal(t, given.ID, actual.ArtifactID)
	assert.Equal(t, 3.1416, actual.Score)
	assert.Equal(t, "recording.wav", fileName)
	assert.Equal(t, "audio/wav", fileType)
	assert.Equal(t, "RIFF", string(file[:4]))
}

func TestAssessor_Assess_failures(t *testing.T) {
	status, body := http.StatusOK, `{}`
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
	defer server.Close()
	instance := New(Configuration{URL: server.URL})

	_, err := instance.Assess(context.Background(), givenArtifact())
	assert.ErrorIs(t, err, ErrNoScore)

	status, body = http.StatusInternalServerError, `{"error":"model not loaded"}`
	_, err = instance.Assess(context.Background(), givenArtifact())
	assert.ErrorContains(t, err, "500")

	_, err = instance.Assess(context.Background(), &session.Artifact{ID: uuid.New()})
	assert.ErrorIs(t, err, ErrEmptyRecording)

	_, err = New(NewConfiguration()).Assess(context.Background(), givenArtifact())
	assert.ErrorIs(t, err, ErrDisabled)
}

func TestAssessor_Enabled(t *testing.T) {
	var nilInstance *Assessor
	assert.False(t, nilInstance.Enabled())
	assert.False(t, New(NewConfiguration()).Enabled())
	assert.False(t, New(Configuration{Auto: true}).Auto())
	assert.True(t, New(Configuration{URL: "http://localhost:6000/assess"}).Enabled())
	assert.False(t, New(Configuration{URL: "http://localhost:6000/assess"}).Auto())
	assert.True(t, New(Configuration{URL: "http://localhost:6000/assess", Auto: true}).Auto())
}
