package cmd

import (
	"fmt"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"github.com/zjrosen/dread/internal/history"
	"github.com/zjrosen/dread/internal/infrastructure/sqlite"
	"github.com/zjrosen/dread/internal/player"
	"github.com/zjrosen/dread/internal/scene"
)

var (
	flagHistoryLimit int
	flagHistoryClear bool
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recently played scenes",
	Long:  `Display recent play sessions and the total time spent in each scene.`,
	RunE:  runHistory,
}

func init() {
	historyCmd.Flags().IntVarP(&flagHistoryLimit, "limit", "n", 20, "number of sessions to show")
	historyCmd.Flags().BoolVar(&flagHistoryClear, "clear", false, "delete all recorded sessions")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, _ []string) error {
	out := cmd.OutOrStdout()
	if !cfg.History.Enabled {
		_, err := fmt.Fprintln(out, "History is disabled (history.enabled: false).")
		return err
	}

	db, err := sqlite.NewDB(cfg.History.Path)
	if err != nil {
		return fmt.Errorf("opening history: %w", err)
	}
	defer func() { _ = db.Close() }()
	repo := db.PlaySessions()

	if flagHistoryClear {
		n, err := repo.Clear()
		if err != nil {
			return err
		}
		_, err = fmt.Fprintf(out, "Cleared %d sessions.\n", n)
		return err
	}

	entries, err := repo.ListRecent(flagHistoryLimit)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		_, err := fmt.Fprintln(out, "No sessions recorded yet.")
		return err
	}
	totals, err := repo.TotalsByScene()
	if err != nil {
		return err
	}

	names := sceneNames()
	renderRecent(cmd, entries, names)
	_, _ = fmt.Fprintln(out)
	renderTotals(cmd, totals, names)
	return nil
}

func renderRecent(cmd *cobra.Command, entries []*history.Entry, names map[scene.ID]string) {
	t := table.NewWriter()
	t.SetOutputMirror(cmd.OutOrStdout())
	t.SetStyle(table.StyleRounded)
	t.SetTitle("Recent sessions")
	t.AppendHeader(table.Row{"Started", "Scene", "Played", "Ended by"})
	for _, e := range entries {
		t.AppendRow(table.Row{
			e.StartedAt.Local().Format("2006-01-02 15:04"),
			displayName(names, e.SceneID),
			formatPlayed(e.Elapsed),
			string(e.Reason),
		})
	}
	t.SetColumnConfigs([]table.ColumnConfig{{Number: 3, Align: text.AlignRight}})
	t.Render()
}

func renderTotals(cmd *cobra.Command, totals []history.SceneTotal, names map[scene.ID]string) {
	t := table.NewWriter()
	t.SetOutputMirror(cmd.OutOrStdout())
	t.SetStyle(table.StyleRounded)
	t.SetTitle("By scene")
	t.AppendHeader(table.Row{"Scene", "Sessions", "Played", "Last played"})
	var sessions int
	var played time.Duration
	for _, tot := range totals {
		sessions += tot.Sessions
		played += tot.Elapsed
		t.AppendRow(table.Row{
			displayName(names, tot.SceneID),
			tot.Sessions,
			formatPlayed(tot.Elapsed),
			tot.LastPlay.Local().Format("2006-01-02 15:04"),
		})
	}
	t.AppendFooter(table.Row{"Total", sessions, formatPlayed(played), ""})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, Align: text.AlignRight},
		{Number: 3, Align: text.AlignRight},
	})
	t.Render()
}

// sceneNames maps configured scene ids to display names. Sessions of scenes
// that have since been removed from the config show their id.
func sceneNames() map[scene.ID]string {
	names := map[scene.ID]string{}
	catalog, err := cfg.Catalog()
	if err != nil {
		return names
	}
	for _, sc := range catalog.All() {
		names[sc.ID()] = scene.Glyph(sc.ID()) + " " + sc.Name()
	}
	return names
}

func displayName(names map[scene.ID]string, id scene.ID) string {
	if n, ok := names[id]; ok {
		return n
	}
	return string(id)
}

// formatPlayed uses the player's mm:ss form.
func formatPlayed(d time.Duration) string {
	return player.FormatElapsed(int(d / time.Second))
}
