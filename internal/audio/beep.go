package audio

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/effects"
	"github.com/gopxl/beep/v2/speaker"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/zjrosen/dread/internal/log"
)

// resampleQuality is passed to beep.Resample.
const resampleQuality = 4

// output is where prepared streams are mixed. The speaker in production,
// a recorder in tests.
type output interface {
	Init() error
	Play(s beep.Streamer)
	Lock()
	Unlock()
	SampleRate() beep.SampleRate
}

type speakerOutput struct {
	rate   beep.SampleRate
	buffer time.Duration

	once sync.Once
	err  error
}

func (o *speakerOutput) Init() error {
	o.once.Do(func() {
		o.err = speaker.Init(o.rate, o.rate.N(o.buffer))
		if o.err != nil {
			log.ErrorErr(log.CatAudio, "Failed to initialize speaker", o.err, "sample_rate", int(o.rate))
		}
	})
	return o.err
}

func (o *speakerOutput) Play(s beep.Streamer)        { speaker.Play(s) }
func (o *speakerOutput) Lock()                       { speaker.Lock() }
func (o *speakerOutput) Unlock()                     { speaker.Unlock() }
func (o *speakerOutput) SampleRate() beep.SampleRate { return o.rate }

// BeepConfig configures the beep engine.
type BeepConfig struct {
	SampleRate int
	// BufferDuration is the speaker buffer. Larger is smoother, slower to react.
	BufferDuration time.Duration
	// Volume is linear gain in [0, 1].
	Volume float64
	Loader *Loader
}

// BeepEngine plays scenes through the system audio device.
type BeepEngine struct {
	out    output
	loader *Loader
	volume float64
}

// NewBeepEngine creates an engine. The speaker opens on the first load.
func NewBeepEngine(cfg BeepConfig) (*BeepEngine, error) {
	if cfg.Loader == nil {
		return nil, errors.New("beep engine requires a loader")
	}
	rate := cfg.SampleRate
	if rate <= 0 {
		rate = 44100
	}
	buf := cfg.BufferDuration
	if buf <= 0 {
		buf = 100 * time.Millisecond
	}
	return &BeepEngine{
		out:    &speakerOutput{rate: beep.SampleRate(rate), buffer: buf},
		loader: cfg.Loader,
		volume: cfg.Volume,
	}, nil
}

// Create returns an idle handle; nothing is fetched until Play.
func (e *BeepEngine) Create(sources []string, opts Options) (Handle, error) {
	if len(sources) == 0 {
		return nil, ErrNoSources
	}
	return &beepHandle{
		engine:    e,
		sources:   append([]string(nil), sources...),
		opts:      opts,
		callbacks: &callbackQueue{name: "audio.callback"},
	}, nil
}

type handleState int

const (
	handleIdle handleState = iota
	handleLoading
	handleReady
	handleUnloaded
)

type beepHandle struct {
	engine    *BeepEngine
	sources   []string
	opts      Options
	callbacks *callbackQueue

	mu       sync.Mutex
	state    handleState
	wantPlay bool
	playing  bool
	attached bool
	cancel   context.CancelFunc
	ctrl     *beep.Ctrl
	seeker   beep.StreamSeeker
}

func (h *beepHandle) Play() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.wantPlay = true
	switch h.state {
	case handleIdle:
		h.startLoad()
	case handleReady:
		if h.playing {
			return
		}
		h.engine.out.Lock()
		h.ctrl.Paused = false
		h.engine.out.Unlock()
		if !h.attached {
			h.engine.out.Play(h.ctrl)
			h.attached = true
		}
		h.playing = true
		h.fire(h.opts.firePlay)
	}
}

func (h *beepHandle) Pause() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.wantPlay = false
	if h.state != handleReady || !h.playing {
		return
	}
	h.engine.out.Lock()
	h.ctrl.Paused = true
	h.engine.out.Unlock()
	h.playing = false
	h.fire(h.opts.firePause)
}

func (h *beepHandle) Stop() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.wantPlay = false
	switch h.state {
	case handleLoading:
		h.cancel()
		h.state = handleIdle
		h.fire(h.opts.fireStop)
	case handleReady:
		h.engine.out.Lock()
		h.ctrl.Paused = true
		err := h.seeker.Seek(0)
		h.engine.out.Unlock()
		if err != nil {
			log.ErrorErr(log.CatAudio, "Failed to rewind track", err)
		}
		h.playing = false
		h.fire(h.opts.fireStop)
	}
}

func (h *beepHandle) Unload() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.state == handleUnloaded {
		return
	}
	if h.cancel != nil {
		h.cancel()
	}
	if h.attached {
		h.engine.out.Lock()
		h.ctrl.Streamer = nil
		h.engine.out.Unlock()
	}
	h.callbacks.close()
	h.state = handleUnloaded
	h.playing = false
	h.ctrl = nil
	h.seeker = nil
}

// startLoad must be called with h.mu held.
func (h *beepHandle) startLoad() {
	ctx, cancel := context.WithCancel(context.Background())
	h.cancel = cancel
	h.state = handleLoading
	log.SafeGo("audio.load", func() { h.load(ctx) })
}

func (h *beepHandle) load(ctx context.Context) {
	ctx, span := h.engine.loader.tracer.Start(ctx, "audio.load",
		trace.WithAttributes(attribute.StringSlice("audio.sources", h.sources)))
	defer span.End()

	ctrl, seeker, err := h.prepare(ctx)

	h.mu.Lock()
	defer h.mu.Unlock()

	if ctx.Err() != nil || h.state != handleLoading {
		// Stopped or unloaded while loading.
		return
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		h.state = handleIdle
		log.ErrorErr(log.CatAudio, "Failed to load scene audio", err, "sources", h.sources)
		h.fire(func() { h.opts.fireLoadError(err) })
		return
	}

	h.ctrl = ctrl
	h.seeker = seeker
	h.state = handleReady
	if h.wantPlay {
		h.ctrl.Paused = false
		h.engine.out.Play(h.ctrl)
		h.attached = true
		h.playing = true
		h.fire(h.opts.firePlay)
	}
}

// prepare fetches and decodes the first working source and builds the
// playback chain: buffer -> loop -> resample -> volume -> ctrl.
func (h *beepHandle) prepare(ctx context.Context) (*beep.Ctrl, beep.StreamSeeker, error) {
	if err := h.engine.out.Init(); err != nil {
		return nil, nil, fmt.Errorf("initializing audio output: %w", err)
	}

	var errs []error
	for _, src := range h.sources {
		if ctx.Err() != nil {
			return nil, nil, ctx.Err()
		}
		data, err := h.engine.loader.Fetch(ctx, src)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		buf, err := decodeBuffered(src, data)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		log.Debug(log.CatAudio, "Decoded scene audio", "source", src,
			"sample_rate", int(buf.Format().SampleRate), "samples", buf.Len())
		ctrl, seeker, err := h.chain(buf)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		return ctrl, seeker, nil
	}
	return nil, nil, errors.Join(errs...)
}

func (h *beepHandle) chain(buf *beep.Buffer) (*beep.Ctrl, beep.StreamSeeker, error) {
	seeker := buf.Streamer(0, buf.Len())

	var s beep.Streamer
	if h.opts.Loop {
		looped, err := beep.Loop2(seeker)
		if err != nil {
			return nil, nil, fmt.Errorf("looping track: %w", err)
		}
		s = looped
	} else {
		s = beep.Seq(seeker, beep.Callback(h.ended))
	}

	if from, to := buf.Format().SampleRate, h.engine.out.SampleRate(); from != to {
		s = beep.Resample(resampleQuality, from, to, s)
	}

	vol := &effects.Volume{Streamer: s, Base: 2}
	if h.engine.volume <= 0 {
		vol.Silent = true
	} else {
		vol.Volume = math.Log2(math.Min(h.engine.volume, 1))
	}

	return &beep.Ctrl{Streamer: vol, Paused: true}, seeker, nil
}

// ended runs on the speaker goroutine with the speaker lock held; it must not
// touch the output.
func (h *beepHandle) ended() {
	log.SafeGo("audio.ended", func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		if h.state != handleReady || !h.playing {
			return
		}
		// The sequence is exhausted; the next Play rebuilds the chain.
		h.state = handleIdle
		h.attached = false
		h.ctrl = nil
		h.seeker = nil
		h.playing = false
		h.wantPlay = false
		h.fire(h.opts.fireStop)
	})
}

// fire queues cb. Must be called with h.mu held.
func (h *beepHandle) fire(cb func()) {
	h.callbacks.push(cb)
}
