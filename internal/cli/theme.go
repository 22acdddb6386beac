package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ppiankov/factlens/internal/theme"
)

// themeCmd represents the theme command
var themeCmd = &cobra.Command{
	Use:   "theme",
	Short: "Show or change the light/dark theme preference",
	Long: `Theme manages the display preference shared with the web UI.

Until a theme is chosen explicitly, the terminal's preference (COLORFGBG)
is followed.`,
	RunE: runThemeShow,
}

var themeShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the current theme",
	RunE:  runThemeShow,
}

var themeToggleCmd = &cobra.Command{
	Use:   "toggle",
	Short: "Switch between light and dark",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		next, err := newThemeManager(cfg).Toggle(systemTheme())
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Theme set to %s\n", next)
		return nil
	},
}

var themeResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Forget the explicit choice and follow the terminal",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		if err := newThemeManager(cfg).Reset(); err != nil {
			return fmt.Errorf("reset theme: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Following the terminal (%s)\n", systemTheme())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(themeCmd)
	themeCmd.AddCommand(themeShowCmd)
	themeCmd.AddCommand(themeToggleCmd)
	themeCmd.AddCommand(themeResetCmd)
}

func runThemeShow(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	themes := newThemeManager(cfg)
	source := "terminal"
	if _, ok := themes.Stored(); ok {
		source = "saved"
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s (%s)\n", themes.Current(systemTheme()), source)
	return nil
}

func systemTheme() theme.Theme {
	return theme.FromColorFGBG(os.Getenv("COLORFGBG"))
}
