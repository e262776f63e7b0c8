package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"

	"github.com/zjrosen/dread/internal/player"
	"github.com/zjrosen/dread/internal/scene"
)

var flagFor time.Duration

var playCmd = &cobra.Command{
	Use:   "play <scene>",
	Short: "Play a scene without the interface",
	Long: `Play a scene headlessly until interrupted, until --for elapses, or until a
non-looping track ends. A status line reports the title and elapsed time.`,
	Example: `  dread play forest
  dread play sea --for 30m`,
	Args: cobra.ExactArgs(1),
	RunE: runPlay,
}

func init() {
	playCmd.Flags().DurationVar(&flagFor, "for", 0, "stop after this long (0 plays until interrupted)")
	rootCmd.AddCommand(playCmd)
}

func runPlay(cmd *cobra.Command, args []string) error {
	sess, err := openSession(cfg, flagMute)
	if err != nil {
		return err
	}
	defer sess.Close()

	out := newStatusPrinter(cmd.OutOrStdout())
	defer out.finish()
	return playScene(cmd.Context(), sess.Player, sess.Mailbox.Events(), scene.ID(args[0]), out, flagFor)
}

// playScene selects id, starts it and runs the host loop until ctx is done,
// limit elapses, or the session ends on its own. A zero limit plays until
// interrupted.
func playScene(ctx context.Context, p *player.Player, events <-chan player.Event, id scene.ID, out *statusPrinter, limit time.Duration) error {
	if err := p.SelectScene(id); err != nil {
		return err
	}
	snap := p.Snapshot()
	if !snap.HasSession {
		// The engine refused the scene.
		out.print(snap)
		return snap.Err
	}
	if snap.State == player.StateStopped {
		p.TogglePlayback()
	}
	out.print(p.Snapshot())

	var deadline <-chan time.Time
	if limit > 0 {
		timer := time.NewTimer(limit)
		defer timer.Stop()
		deadline = timer.C
	}

	for {
		select {
		case ev := <-events:
			p.Handle(ev)
			snap := p.Snapshot()
			out.print(snap)
			if !snap.HasSession {
				// Load failure or a non-looping track ran out.
				return snap.Err
			}
		case <-deadline:
			return nil
		case <-ctx.Done():
			return nil
		}
	}
}

// statusPrinter rewrites one line on a terminal and prints one line per
// change elsewhere.
type statusPrinter struct {
	w    io.Writer
	term *termenv.Output
	last string
}

func newStatusPrinter(w io.Writer) *statusPrinter {
	sp := &statusPrinter{w: w}
	if f, ok := w.(*os.File); ok && isatty.IsTerminal(f.Fd()) {
		sp.term = termenv.NewOutput(f)
	}
	return sp
}

func (sp *statusPrinter) print(snap player.Snapshot) {
	line := statusLine(snap)
	if line == sp.last {
		return
	}
	sp.last = line
	if sp.term != nil {
		sp.term.ClearLine()
		_, _ = fmt.Fprint(sp.w, "\r"+line)
		return
	}
	_, _ = fmt.Fprintln(sp.w, line)
}

func (sp *statusPrinter) finish() {
	if sp.term != nil {
		_, _ = fmt.Fprintln(sp.w)
	}
}

// statusLine renders a snapshot as "▶ 🌊 海边 · 海边恐怖音乐 · 01:05".
func statusLine(snap player.Snapshot) string {
	var state string
	switch snap.State {
	case player.StatePlaying:
		state = "▶"
	case player.StatePaused:
		state = "❚❚"
	case player.StateLoading:
		state = "…"
	default:
		state = "■"
	}
	name := "-"
	if !snap.Current.IsZero() {
		name = scene.Glyph(snap.Current.ID()) + " " + snap.Current.Name()
	}
	line := fmt.Sprintf("%s %s · %s · %s", state, name, snap.Title, player.FormatElapsed(snap.Elapsed))
	if snap.Err != nil {
		line += " · " + snap.Err.Error()
	}
	return line
}
