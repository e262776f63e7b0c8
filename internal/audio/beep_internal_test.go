package audio

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/generators"
	"github.com/gopxl/beep/v2/wav"
	"github.com/stretchr/testify/require"
)

// recordingOutput stands in for the speaker.
type recordingOutput struct {
	mu      sync.Mutex
	rate    beep.SampleRate
	played  []beep.Streamer
	initErr error
}

func (o *recordingOutput) Init() error { return o.initErr }
func (o *recordingOutput) Play(s beep.Streamer) {
	o.mu.Lock()
	o.played = append(o.played, s)
	o.mu.Unlock()
}
func (o *recordingOutput) Lock()                       {}
func (o *recordingOutput) Unlock()                     {}
func (o *recordingOutput) SampleRate() beep.SampleRate { return o.rate }

func (o *recordingOutput) playCount() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.played)
}

// writeTone writes a short WAV file and returns its name inside dir.
func writeTone(t *testing.T, dir, name string, rate beep.SampleRate, d time.Duration) string {
	t.Helper()
	f, err := os.Create(filepath.Join(dir, name))
	require.NoError(t, err)
	defer f.Close()

	tone, err := generators.SineTone(rate, 440)
	require.NoError(t, err)
	format := beep.Format{SampleRate: rate, NumChannels: 2, Precision: 2}
	require.NoError(t, wav.Encode(f, beep.Take(rate.N(d), tone), format))
	return name
}

type callbackLog struct {
	mu     sync.Mutex
	events []string
	errs   []error
}

func (c *callbackLog) options(loop bool) Options {
	add := func(ev string) func() {
		return func() {
			c.mu.Lock()
			c.events = append(c.events, ev)
			c.mu.Unlock()
		}
	}
	return Options{
		Loop:    loop,
		OnPlay:  add("play"),
		OnPause: add("pause"),
		OnStop:  add("stop"),
		OnLoadError: func(err error) {
			c.mu.Lock()
			c.events = append(c.events, "load_error")
			c.errs = append(c.errs, err)
			c.mu.Unlock()
		},
	}
}

func (c *callbackLog) snapshot() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.events...)
}

func (c *callbackLog) waitFor(t *testing.T, n int) []string {
	t.Helper()
	require.Eventually(t, func() bool { return len(c.snapshot()) >= n }, 2*time.Second, 5*time.Millisecond)
	return c.snapshot()
}

func newTestEngine(t *testing.T, dir string, out *recordingOutput) *BeepEngine {
	t.Helper()
	loader, err := NewLoader(LoaderConfig{SoundsDir: dir})
	require.NoError(t, err)
	return &BeepEngine{out: out, loader: loader, volume: 1}
}

func TestBeepHandle_PlayPauseStop(t *testing.T) {
	dir := t.TempDir()
	name := writeTone(t, dir, "sea.wav", 44100, 200*time.Millisecond)
	out := &recordingOutput{rate: 44100}
	engine := newTestEngine(t, dir, out)

	var cbs callbackLog
	h, err := engine.Create([]string{name}, cbs.options(true))
	require.NoError(t, err)

	h.Play()
	require.Equal(t, []string{"play"}, cbs.waitFor(t, 1))
	require.Equal(t, 1, out.playCount())

	h.Pause()
	require.Equal(t, []string{"play", "pause"}, cbs.waitFor(t, 2))

	h.Play()
	require.Equal(t, []string{"play", "pause", "play"}, cbs.waitFor(t, 3))
	require.Equal(t, 1, out.playCount(), "resume reuses the attached stream")

	h.Stop()
	require.Equal(t, []string{"play", "pause", "play", "stop"}, cbs.waitFor(t, 4))
}

func TestBeepHandle_FallsBackToNextSource(t *testing.T) {
	dir := t.TempDir()
	name := writeTone(t, dir, "camp.wav", 22050, 100*time.Millisecond)
	out := &recordingOutput{rate: 44100}
	engine := newTestEngine(t, dir, out)

	var cbs callbackLog
	h, err := engine.Create([]string{"missing.mp3", name}, cbs.options(true))
	require.NoError(t, err)

	h.Play()
	require.Equal(t, []string{"play"}, cbs.waitFor(t, 1))
}

func TestBeepHandle_LoadErrorJoinsCauses(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "junk.mp3"), []byte("not audio"), 0600))
	out := &recordingOutput{rate: 44100}
	engine := newTestEngine(t, dir, out)

	var cbs callbackLog
	h, err := engine.Create([]string{"missing.wav", "junk.mp3"}, cbs.options(true))
	require.NoError(t, err)

	h.Play()
	require.Equal(t, []string{"load_error"}, cbs.waitFor(t, 1))

	cbs.mu.Lock()
	loadErr := cbs.errs[0]
	cbs.mu.Unlock()
	require.ErrorContains(t, loadErr, "missing.wav")
	require.ErrorContains(t, loadErr, "junk.mp3")
	require.Equal(t, 0, out.playCount())
}

func TestBeepHandle_UnloadSuppressesCallbacks(t *testing.T) {
	dir := t.TempDir()
	name := writeTone(t, dir, "forest.wav", 44100, 100*time.Millisecond)
	out := &recordingOutput{rate: 44100}
	engine := newTestEngine(t, dir, out)

	var cbs callbackLog
	h, err := engine.Create([]string{name}, cbs.options(true))
	require.NoError(t, err)

	h.Play()
	h.Unload()
	h.Play()
	h.Stop()

	time.Sleep(100 * time.Millisecond)
	require.Empty(t, cbs.snapshot())
}

func TestBeepHandle_PauseBeforeLoadCompletes(t *testing.T) {
	dir := t.TempDir()
	name := writeTone(t, dir, "sea.wav", 44100, 100*time.Millisecond)
	out := &recordingOutput{rate: 44100}
	engine := newTestEngine(t, dir, out)

	var cbs callbackLog
	h, err := engine.Create([]string{name}, cbs.options(true))
	require.NoError(t, err)

	h.Play()
	h.Pause()

	// Whichever wins the race, nothing may be left playing silently.
	time.Sleep(100 * time.Millisecond)
	events := cbs.snapshot()
	if len(events) > 0 {
		require.Equal(t, []string{"play", "pause"}, cbs.waitFor(t, 2))
	}
}

func TestBeepHandle_NonLoopingTrackEnds(t *testing.T) {
	dir := t.TempDir()
	name := writeTone(t, dir, "short.wav", 44100, 10*time.Millisecond)
	out := &recordingOutput{rate: 44100}
	engine := newTestEngine(t, dir, out)

	var cbs callbackLog
	h, err := engine.Create([]string{name}, cbs.options(false))
	require.NoError(t, err)

	h.Play()
	cbs.waitFor(t, 1)

	// Drain the stream the way the speaker would.
	out.mu.Lock()
	s := out.played[0]
	out.mu.Unlock()
	samples := make([][2]float64, 512)
	for i := 0; i < 10; i++ {
		if _, ok := s.Stream(samples); !ok {
			break
		}
	}

	require.Equal(t, []string{"play", "stop"}, cbs.waitFor(t, 2))
}

func TestBeepEngine_CreateRequiresSources(t *testing.T) {
	engine := newTestEngine(t, t.TempDir(), &recordingOutput{rate: 44100})
	_, err := engine.Create(nil, Options{})
	require.ErrorIs(t, err, ErrNoSources)
}

func TestNewBeepEngine_RequiresLoader(t *testing.T) {
	_, err := NewBeepEngine(BeepConfig{})
	require.Error(t, err)
}
