package player_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/zjrosen/dread/internal/player"
	"github.com/zjrosen/dread/internal/scene"
)

func TestSelectScene_SupersedesPreviousSession(t *testing.T) {
	h := newHarness(t, nil)

	h.selectScene(scene.Sea)
	h.started()
	first := h.engine.Last()

	h.selectScene(scene.Camp)

	require.True(t, first.Unloaded(), "previous handle must be released")
	_, _, stops := first.Calls()
	require.Equal(t, 1, stops)

	live := h.engine.Live()
	require.Len(t, live, 1)
	require.Equal(t, []string{"camp-horror.mp3"}, live[0].Sources)

	snap := h.snap()
	require.True(t, snap.HasSession)
	require.Equal(t, scene.Camp, snap.Current.ID())
	require.Equal(t, player.StateLoading, snap.State)
	require.Equal(t, 0, snap.Elapsed)
}

func TestSelectScene_ReselectSameSceneResets(t *testing.T) {
	h := newHarness(t, nil)

	h.selectScene(scene.Forest)
	h.started()
	h.advance(7)
	require.Equal(t, 7, h.snap().Elapsed)
	before := h.snap().SessionID

	h.selectScene(scene.Forest)
	h.started()

	snap := h.snap()
	require.Equal(t, 0, snap.Elapsed)
	require.NotEqual(t, before, snap.SessionID)
	require.Len(t, h.engine.Handles(), 2)
	require.Len(t, h.engine.Live(), 1)
}

func TestSelectScene_UnknownScene(t *testing.T) {
	h := newHarness(t, nil)

	err := h.player.SelectScene("rain")
	var unknown *scene.UnknownSceneError
	require.True(t, errors.As(err, &unknown))
	require.Equal(t, scene.ID("rain"), unknown.ID)
	require.False(t, h.snap().HasSession)
	require.Empty(t, h.engine.Handles())
}

func TestSelectScene_LoopsTrack(t *testing.T) {
	h := newHarness(t, nil)
	h.selectScene(scene.Sea)
	require.True(t, h.engine.Last().Loop())
}

func TestTogglePlayback_NoSessionIsNoop(t *testing.T) {
	h := newHarness(t, func(c *player.Config) { c.InitialScene = scene.Sea })
	before := h.snap()

	h.player.TogglePlayback()

	require.Equal(t, before, h.snap())
	require.Empty(t, h.engine.Handles())
	require.Zero(t, h.clock.Pending())
}

func TestTogglePlayback_PausePreservesElapsed(t *testing.T) {
	h := newHarness(t, nil)
	h.selectScene(scene.Sea)
	h.started()
	h.advance(5)

	h.player.TogglePlayback()
	snap := h.snap()
	require.Equal(t, player.StatePaused, snap.State)
	require.Equal(t, 5, snap.Elapsed)

	h.advance(10)
	require.Equal(t, 5, h.snap().Elapsed, "no ticks while paused")

	h.player.TogglePlayback()
	require.Equal(t, player.StatePlaying, h.snap().State)
	h.advance(3)
	require.Equal(t, 8, h.snap().Elapsed)

	plays, pauses, _ := h.engine.Last().Calls()
	require.Equal(t, 2, plays)
	require.Equal(t, 1, pauses)
}

func TestStop_ResetsElapsedAndReleasesHandle(t *testing.T) {
	h := newHarness(t, nil)
	h.selectScene(scene.Camp)
	h.started()
	h.advance(12)

	h.player.Stop()

	snap := h.snap()
	require.False(t, snap.HasSession)
	require.Equal(t, 0, snap.Elapsed)
	require.Equal(t, player.StateStopped, snap.State)
	require.Equal(t, scene.Camp, snap.Current.ID(), "current scene stays selected")
	require.True(t, h.engine.Last().Unloaded())
	require.Zero(t, h.clock.Pending())

	// With the session gone, toggling does nothing.
	h.player.TogglePlayback()
	require.False(t, h.snap().HasSession)
}

func TestTick_OnlyWhilePlaying(t *testing.T) {
	h := newHarness(t, nil)
	h.selectScene(scene.Sea)

	h.advance(3)
	require.Equal(t, 0, h.snap().Elapsed, "loading does not count")

	h.started()
	h.advance(2)
	require.Equal(t, 2, h.snap().Elapsed)
	require.Equal(t, 1, h.clock.Pending(), "exactly one tick source")
}

func TestHandle_DuplicateStartDoesNotDoubleTick(t *testing.T) {
	h := newHarness(t, nil)
	h.selectScene(scene.Sea)
	h.started()
	h.started()
	h.started()

	h.advance(4)
	require.Equal(t, 4, h.snap().Elapsed)
}

func TestHandle_StaleEventsIgnored(t *testing.T) {
	h := newHarness(t, nil)
	h.selectScene(scene.Sea)
	old := h.engine.Last()

	h.selectScene(scene.Forest)
	old.Started()
	old.Stopped()
	old.Fail(errors.New("late failure"))
	h.queue.Drain(h.player)

	snap := h.snap()
	require.True(t, snap.HasSession)
	require.Equal(t, scene.Forest, snap.Current.ID())
	require.Equal(t, player.StateLoading, snap.State)
	require.NoError(t, snap.Err)
}

func TestHandle_StaleTickAfterPauseIgnored(t *testing.T) {
	h := newHarness(t, nil)
	h.selectScene(scene.Sea)
	h.started()

	// The tick fires but is still queued when the user pauses.
	h.clock.Advance(time.Second)
	require.Equal(t, 1, h.queue.Len())
	h.player.TogglePlayback()
	h.queue.Drain(h.player)

	require.Equal(t, 0, h.snap().Elapsed)
}

func TestHandle_TickDeadlinesDoNotDrift(t *testing.T) {
	h := newHarness(t, nil)
	h.selectScene(scene.Sea)
	h.started()

	// The first tick is handled 300ms late.
	h.clock.Advance(time.Second)
	h.clock.Advance(300 * time.Millisecond)
	h.queue.Drain(h.player)
	require.Equal(t, 1, h.snap().Elapsed)

	// The second tick is still due two seconds after playback started.
	h.clock.Advance(700 * time.Millisecond)
	h.queue.Drain(h.player)
	require.Equal(t, 2, h.snap().Elapsed)
}

func TestHandle_LateTicksCatchUp(t *testing.T) {
	h := newHarness(t, nil)
	h.selectScene(scene.Sea)
	h.started()

	// The loop stalls for longer than an interval.
	h.clock.Advance(time.Second)
	h.clock.Advance(1500 * time.Millisecond)
	h.queue.Drain(h.player)
	require.Equal(t, 1, h.snap().Elapsed)

	// The overdue tick fires at once.
	h.clock.Advance(0)
	h.queue.Drain(h.player)
	require.Equal(t, 2, h.snap().Elapsed)
}

func TestHandle_ResumeReanchorsTicks(t *testing.T) {
	h := newHarness(t, nil)
	h.selectScene(scene.Sea)
	h.started()
	h.advance(1)

	h.clock.Advance(400 * time.Millisecond)
	h.player.TogglePlayback()
	h.clock.Advance(5 * time.Second)
	h.player.TogglePlayback()
	h.queue.Drain(h.player)

	h.clock.Advance(999 * time.Millisecond)
	h.queue.Drain(h.player)
	require.Equal(t, 1, h.snap().Elapsed)
	h.clock.Advance(time.Millisecond)
	h.queue.Drain(h.player)
	require.Equal(t, 2, h.snap().Elapsed)
}

func TestHandle_EnginePauseAndStop(t *testing.T) {
	h := newHarness(t, nil)
	h.selectScene(scene.Sea)
	h.started()
	h.advance(4)

	h.engine.Last().Paused()
	h.queue.Drain(h.player)
	require.Equal(t, player.StatePaused, h.snap().State)
	require.Equal(t, 4, h.snap().Elapsed)

	h.engine.Last().Started()
	h.queue.Drain(h.player)
	h.advance(1)
	require.Equal(t, 5, h.snap().Elapsed)

	h.engine.Last().Stopped()
	h.queue.Drain(h.player)
	snap := h.snap()
	require.False(t, snap.HasSession)
	require.Equal(t, 0, snap.Elapsed)
	require.True(t, h.engine.Last().Unloaded())
}

func TestLoadFailed_TransitionsToStopped(t *testing.T) {
	h := newHarness(t, nil)
	h.selectScene(scene.Camp)

	cause := errors.New("connection refused")
	h.engine.Last().Fail(cause)
	h.queue.Drain(h.player)

	snap := h.snap()
	require.False(t, snap.HasSession)
	require.Equal(t, player.StateStopped, snap.State)

	var loadErr *player.LoadFailedError
	require.True(t, errors.As(snap.Err, &loadErr))
	require.Equal(t, scene.Camp, loadErr.Scene)
	require.ErrorIs(t, snap.Err, cause)
	require.True(t, h.engine.Last().Unloaded())

	// Selecting again clears the error.
	h.selectScene(scene.Camp)
	require.NoError(t, h.snap().Err)
}

func TestLoadTimeout_BecomesLoadFailed(t *testing.T) {
	h := newHarness(t, func(c *player.Config) { c.LoadTimeout = 3 * time.Second })
	h.selectScene(scene.Forest)

	h.advance(3)

	snap := h.snap()
	require.False(t, snap.HasSession)
	require.ErrorIs(t, snap.Err, player.ErrLoadTimeout)
	require.True(t, h.engine.Last().Unloaded())
}

func TestLoadTimeout_CancelledByStart(t *testing.T) {
	h := newHarness(t, func(c *player.Config) { c.LoadTimeout = 3 * time.Second })
	h.selectScene(scene.Forest)
	h.advance(2)
	h.started()
	h.advance(5)

	snap := h.snap()
	require.True(t, snap.HasSession)
	require.NoError(t, snap.Err)
	require.Equal(t, 5, snap.Elapsed)
}

func TestLoadTimeout_CancelledByPause(t *testing.T) {
	h := newHarness(t, func(c *player.Config) { c.LoadTimeout = 3 * time.Second })
	h.selectScene(scene.Forest)
	h.player.TogglePlayback()
	require.Equal(t, player.StatePaused, h.snap().State)

	h.advance(10)
	require.True(t, h.snap().HasSession)
	require.NoError(t, h.snap().Err)
}

func TestAutoplayOff_WaitsForToggle(t *testing.T) {
	h := newHarness(t, func(c *player.Config) { c.Autoplay = false })
	h.selectScene(scene.Sea)

	snap := h.snap()
	require.True(t, snap.HasSession)
	require.Equal(t, player.StateStopped, snap.State)
	plays, _, _ := h.engine.Last().Calls()
	require.Zero(t, plays)

	h.player.TogglePlayback()
	require.Equal(t, player.StateLoading, h.snap().State)

	h.started()
	require.Equal(t, player.StatePlaying, h.snap().State)
}

func TestEngineCreateError_ReportedAsLoadFailed(t *testing.T) {
	h := newHarness(t, nil)
	h.engine.CreateErr = errors.New("no device")

	require.NoError(t, h.player.SelectScene(scene.Sea))

	snap := h.snap()
	require.False(t, snap.HasSession)
	require.Equal(t, scene.Sea, snap.Current.ID())
	var loadErr *player.LoadFailedError
	require.True(t, errors.As(snap.Err, &loadErr))
}

func TestTitle_FollowsPlayback(t *testing.T) {
	h := newHarness(t, func(c *player.Config) { c.InitialScene = scene.Sea })
	require.Equal(t, player.DefaultUnknownTitle, h.snap().Title)
	require.Equal(t, scene.Sea, h.snap().Current.ID())

	h.selectScene(scene.Sea)
	require.Equal(t, player.DefaultUnknownTitle, h.snap().Title, "not started yet")

	h.started()
	require.Equal(t, "海边恐怖音乐", h.snap().Title)

	h.player.TogglePlayback()
	require.Equal(t, "海边恐怖音乐", h.snap().Title, "pause keeps the title")

	h.player.Stop()
	require.Equal(t, player.DefaultUnknownTitle, h.snap().Title)
}

func TestTitle_CustomPlaceholder(t *testing.T) {
	h := newHarness(t, func(c *player.Config) { c.UnknownTitle = "Unknown track" })
	require.Equal(t, "Unknown track", h.snap().Title)
}

func TestDispose_ReleasesAndIsIdempotent(t *testing.T) {
	h := newHarness(t, nil)
	h.selectScene(scene.Sea)
	h.started()
	handle := h.engine.Last()

	h.player.Dispose()
	h.player.Dispose()

	require.True(t, handle.Unloaded())
	require.Zero(t, h.clock.Pending())
	require.ErrorIs(t, h.player.SelectScene(scene.Camp), player.ErrDisposed)

	h.player.TogglePlayback()
	h.player.Stop()
	handle.Started()
	h.queue.Drain(h.player)
	require.False(t, h.snap().HasSession)
	require.Len(t, h.engine.Handles(), 1)
}

type mockRecorder struct {
	mock.Mock
}

func (m *mockRecorder) Record(rec player.SessionRecord) {
	m.Called(rec)
}

func TestRecorder_OneRecordPerSession(t *testing.T) {
	rec := &mockRecorder{}
	h := newHarness(t, func(c *player.Config) { c.Recorder = rec })

	reasonIs := func(scn scene.ID, reason player.EndReason, elapsed int) any {
		return mock.MatchedBy(func(r player.SessionRecord) bool {
			return r.SceneID == scn && r.Reason == reason && r.ElapsedSeconds == elapsed
		})
	}
	rec.On("Record", reasonIs(scene.Sea, player.ReasonSuperseded, 3)).Once()
	rec.On("Record", reasonIs(scene.Camp, player.ReasonStopped, 2)).Once()
	rec.On("Record", reasonIs(scene.Forest, player.ReasonLoadFailed, 0)).Once()
	rec.On("Record", reasonIs(scene.Sea, player.ReasonDisposed, 1)).Once()

	h.selectScene(scene.Sea)
	h.started()
	h.advance(3)

	h.selectScene(scene.Camp)
	h.started()
	h.advance(2)
	h.player.Stop()

	h.selectScene(scene.Forest)
	h.engine.Last().Fail(errors.New("404"))
	h.queue.Drain(h.player)

	h.selectScene(scene.Sea)
	h.started()
	h.advance(1)
	h.player.Dispose()

	rec.AssertExpectations(t)
}

func TestRecorder_TimestampsFromClock(t *testing.T) {
	rec := &mockRecorder{}
	h := newHarness(t, func(c *player.Config) { c.Recorder = rec })

	var got player.SessionRecord
	rec.On("Record", mock.Anything).Run(func(args mock.Arguments) {
		got = args.Get(0).(player.SessionRecord)
	}).Once()

	h.selectScene(scene.Sea)
	h.started()
	h.advance(90)
	h.player.Stop()

	require.Equal(t, epoch, got.StartedAt)
	require.Equal(t, epoch.Add(90*time.Second), got.EndedAt)
	require.Equal(t, 90, got.ElapsedSeconds)
	require.NotEmpty(t, got.SessionID)
}

func TestNew_Validation(t *testing.T) {
	catalog, err := scene.NewCatalog(scene.Defaults())
	require.NoError(t, err)
	h := newHarness(t, nil)

	_, err = player.New(player.Config{Engine: h.engine, Dispatch: h.queue.Dispatch})
	require.Error(t, err)
	_, err = player.New(player.Config{Catalog: catalog, Dispatch: h.queue.Dispatch})
	require.Error(t, err)
	_, err = player.New(player.Config{Catalog: catalog, Engine: h.engine})
	require.Error(t, err)

	_, err = player.New(player.Config{Catalog: catalog, Engine: h.engine, Dispatch: h.queue.Dispatch, InitialScene: "rain"})
	var unknown *scene.UnknownSceneError
	require.True(t, errors.As(err, &unknown))
}

func TestFormatElapsed(t *testing.T) {
	tests := []struct {
		seconds int
		want    string
	}{
		{0, "00:00"},
		{5, "00:05"},
		{59, "00:59"},
		{65, "01:05"},
		{600, "10:00"},
		{3599, "59:59"},
		{3600, "60:00"},
		{6000, "100:00"},
		{-3, "00:00"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			require.Equal(t, tt.want, player.FormatElapsed(tt.seconds))
		})
	}
}

func TestStateString(t *testing.T) {
	require.Equal(t, "stopped", player.StateStopped.String())
	require.Equal(t, "loading", player.StateLoading.String())
	require.Equal(t, "playing", player.StatePlaying.String())
	require.Equal(t, "paused", player.StatePaused.String())
	require.Equal(t, "unknown", player.State(42).String())
}
