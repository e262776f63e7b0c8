package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/zjrosen/dread/internal/config"
	"github.com/zjrosen/dread/internal/scene"
)

var flagScenesYAML bool

var scenesCmd = &cobra.Command{
	Use:   "scenes",
	Short: "List the configured scenes",
	Long:  `Display every scene in button order, with its hotkey, title and sources.`,
	RunE:  runScenes,
}

func init() {
	scenesCmd.Flags().BoolVar(&flagScenesYAML, "yaml", false, "print the scenes as a config snippet")
	rootCmd.AddCommand(scenesCmd)
}

func runScenes(cmd *cobra.Command, _ []string) error {
	catalog, err := cfg.Catalog()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	if flagScenesYAML {
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		doc := struct {
			Scenes []config.SceneConfig `yaml:"scenes"`
		}{Scenes: config.SceneConfigs(catalog.All())}
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("encoding scenes: %w", err)
		}
		return enc.Close()
	}

	style := "notty"
	if f, ok := out.(*os.File); ok && isatty.IsTerminal(f.Fd()) {
		style = "dark"
	}
	r, err := glamour.NewTermRenderer(glamour.WithStandardStyle(style), glamour.WithWordWrap(100))
	if err != nil {
		return fmt.Errorf("creating renderer: %w", err)
	}
	rendered, err := r.Render(scenesMarkdown(catalog))
	if err != nil {
		return fmt.Errorf("rendering scenes: %w", err)
	}
	_, err = fmt.Fprint(out, rendered)
	return err
}

func scenesMarkdown(catalog *scene.Catalog) string {
	var b strings.Builder
	b.WriteString("# Scenes\n\n")
	b.WriteString("| Key | Scene | Id | Title | Sources |\n")
	b.WriteString("|-----|-------|----|-------|---------|\n")
	for i, sc := range catalog.All() {
		hotkey := "-"
		if i < 9 {
			hotkey = fmt.Sprint(i + 1)
		}
		fmt.Fprintf(&b, "| %s | %s %s | `%s` | %s | %s |\n",
			hotkey, scene.Glyph(sc.ID()), sc.Name(), sc.ID(), sc.Title(), strings.Join(sc.Sources(), ", "))
	}
	return b.String()
}
