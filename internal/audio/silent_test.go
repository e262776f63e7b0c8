package audio

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSilentHandle_ReportsTransitionsInOrder(t *testing.T) {
	var cbs callbackLog
	h, err := NewSilentEngine().Create([]string{"sea.mp3"}, cbs.options(true))
	require.NoError(t, err)

	h.Play()
	h.Play() // already playing
	h.Pause()
	h.Pause() // already paused
	h.Play()
	h.Stop()

	require.Equal(t, []string{"play", "pause", "play", "stop"}, cbs.waitFor(t, 4))
}

func TestSilentHandle_UnloadSilences(t *testing.T) {
	var cbs callbackLog
	h, err := NewSilentEngine().Create([]string{"sea.mp3"}, cbs.options(true))
	require.NoError(t, err)

	h.Unload()
	h.Play()
	h.Stop()

	time.Sleep(50 * time.Millisecond)
	require.Empty(t, cbs.snapshot())
}

func TestSilentEngine_CreateRequiresSources(t *testing.T) {
	_, err := NewSilentEngine().Create(nil, Options{})
	require.ErrorIs(t, err, ErrNoSources)
}
