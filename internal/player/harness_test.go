package player_test

import (
	"time"

	"github.com/stretchr/testify/require"

	"github.com/zjrosen/dread/internal/audio/audiotest"
	"github.com/zjrosen/dread/internal/player"
	"github.com/zjrosen/dread/internal/player/playertest"
	"github.com/zjrosen/dread/internal/scene"
)

var epoch = time.Date(2026, 10, 18, 21, 0, 0, 0, time.UTC)

// tb is satisfied by both *testing.T and *rapid.T.
type tb interface {
	require.TestingT
	Helper()
}

type harness struct {
	t      tb
	clock  *playertest.ManualClock
	queue  *playertest.Queue
	engine *audiotest.Engine
	player *player.Player
}

func newHarness(t tb, mutate func(*player.Config)) *harness {
	t.Helper()
	catalog, err := scene.NewCatalog(scene.Defaults())
	require.NoError(t, err)

	h := &harness{
		t:      t,
		clock:  playertest.NewManualClock(epoch),
		queue:  &playertest.Queue{},
		engine: audiotest.NewEngine(),
	}
	cfg := player.Config{
		Catalog:     catalog,
		Engine:      h.engine,
		Dispatch:    h.queue.Dispatch,
		Clock:       h.clock,
		Autoplay:    true,
		Loop:        true,
		LoadTimeout: 10 * time.Second,
	}
	if mutate != nil {
		mutate(&cfg)
	}
	h.player, err = player.New(cfg)
	require.NoError(t, err)
	return h
}

func (h *harness) selectScene(id scene.ID) {
	h.t.Helper()
	require.NoError(h.t, h.player.SelectScene(id))
}

// started plays the engine's part: the last handle reports it started.
func (h *harness) started() {
	h.engine.Last().Started()
	h.queue.Drain(h.player)
}

// advance moves the clock one second at a time, draining events in between
// like the host loop would.
func (h *harness) advance(seconds int) {
	for range seconds {
		h.clock.Advance(time.Second)
		h.queue.Drain(h.player)
	}
}

func (h *harness) snap() player.Snapshot {
	return h.player.Snapshot()
}
