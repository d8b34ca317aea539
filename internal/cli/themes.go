package cli

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"

	"github.com/matzehuels/forestplot/pkg/forest/theme"
)

// themesCommand creates the themes command group.
func (c *CLI) themesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "themes",
		Short: "List theme presets or show a resolved theme",
	}

	cmd.AddCommand(c.themesListCommand())
	cmd.AddCommand(c.themesShowCommand())

	return cmd
}

// themesListCommand creates the "themes list" subcommand.
func (c *CLI) themesListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List available theme presets",
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, name := range theme.List() {
				line := "  " + StyleValue.Render(name)
				if name == theme.PresetDefault {
					line += " " + StyleDim.Render("(default)")
				}
				fmt.Println(line)
			}
			printNewline()
			printNextStep("Show one", fmt.Sprintf("%s themes show %s", appName, theme.PresetJournal))
			return nil
		},
	}
}

// themesShowCommand creates the "themes show" subcommand. The output is a
// complete TOML document: every value the renderers will use, with the
// optional --overlay file already applied. Saving it and editing a few
// fields is the intended way to author a custom theme.
func (c *CLI) themesShowCommand() *cobra.Command {
	var overlayFile string

	cmd := &cobra.Command{
		Use:   "show [name]",
		Short: "Print a resolved theme as TOML",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			th, err := resolveNamed(args[0], overlayFile)
			if err != nil {
				return err
			}
			return toml.NewEncoder(os.Stdout).Encode(th)
		},
	}

	cmd.Flags().StringVar(&overlayFile, "overlay", "", "TOML overlay file applied on top of the preset")

	return cmd
}

// resolveNamed resolves a preset with an optional overlay file, exactly
// as the render pipeline would.
func resolveNamed(name, overlayFile string) (theme.Theme, error) {
	if overlayFile == "" {
		return theme.Named(name)
	}
	overlay, err := theme.LoadFile(overlayFile)
	if err != nil {
		return theme.Theme{}, err
	}
	if err := overlay.Validate(); err != nil {
		return theme.Theme{}, err
	}
	overlay.Preset = name
	return theme.Resolve(overlay)
}
