package cli

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/matzehuels/forestplot/pkg/forest"
	"github.com/matzehuels/forestplot/pkg/interactive"
)

// viewCommand creates the view command, the terminal plot viewer.
func (c *CLI) viewCommand() *cobra.Command {
	var themeName string

	cmd := &cobra.Command{
		Use:   "view [spec.json]",
		Short: "Explore a plot interactively in the terminal",
		Long: `Explore a plot interactively in the terminal.

The viewer shows the plot as a scrollable table with a character cell
confidence interval strip. Group headers collapse and expand in place,
rows re-sort on demand, and the current view exports to SVG without
leaving the viewer. Collapse and sort behave exactly as they do in the
rendered output.

Keys:
  ↑/↓        navigate
  enter      collapse or expand the group under the cursor
  s          cycle sort: spec order, point, point desc, label
  e          export the current view as SVG next to the spec
  q          quit`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runView(cmd.Context(), args[0], themeName)
		},
	}

	cmd.Flags().StringVar(&themeName, "theme", "", "theme preset: default, journal, dark")

	return cmd
}

// runView loads the spec and hands it to the viewer model.
func (c *CLI) runView(ctx context.Context, input string, themeName string) error {
	spec, err := forest.ReadFile(input)
	if err != nil {
		return err
	}

	var opts []interactive.Option
	if themeName != "" {
		opts = append(opts, interactive.WithThemeName(themeName))
	}
	plot, err := interactive.New(spec, opts...)
	if err != nil {
		return err
	}

	model := NewPlotModel(plot, input)
	prog := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := prog.Run(); err != nil {
		return fmt.Errorf("run viewer: %w", err)
	}
	return nil
}
