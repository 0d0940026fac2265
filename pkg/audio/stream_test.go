package audio

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFragmentStream_deliversInOrder(t *testing.T) {
	instance := newFragmentStream(Format{16000, 1, 16}, nil)

	instance.push([]byte{1, 2})
	instance.push(nil)
	instance.push([]byte{})
	instance.push([]byte{3})
	instance.end(nil)

	var actual [][]byte
	for f := range instance.Fragments() {
		actual = append(actual, f)
	}

	assert.Equal(t, [][]byte{{1, 2}, {3}}, actual)
	assert.NoError(t, instance.Err())
}

func TestFragmentStream_copiesFragments(t *testing.T) {
	instance := newFragmentStream(Format{16000, 1, 16}, nil)
	given := []byte{1, 2, 3}

	instance.push(given)
	given[0] = 9
	instance.end(nil)

	assert.Equal(t, []byte{1, 2, 3}, <-instance.Fragments())
}

func TestFragmentStream_endKeepsFirstError(t *testing.T) {
	instance := newFragmentStream(Format{16000, 1, 16}, nil)
	first := errors.New("first")

	instance.end(first)
	instance.end(errors.New("second"))

	_, open := <-instance.Fragments()
	assert.False(t, open)
	assert.Same(t, first, instance.Err())
}

func TestFragmentStream_Release(t *testing.T) {
	calls := 0
	instance := newFragmentStream(Format{16000, 1, 16}, func() error {
		calls++
		return nil
	})
	instance.push([]byte{1})

	require.NoError(t, instance.Release())
	require.NoError(t, instance.Release())
	instance.push([]byte{2})

	select {
	case _, open := <-waitClosed(instance.Fragments()):
		assert.False(t, open)
	case <-time.After(time.Second):
		t.Fatal("fragments were not closed after release")
	}
	assert.Equal(t, 1, calls)
}

func waitClosed(in <-chan []byte) <-chan []byte {
	out := make(chan []byte)
	go func() {
		for range in {
		}
		close(out)
	}()
	return out
}
