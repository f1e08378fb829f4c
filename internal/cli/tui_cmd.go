package cli

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/haskel/optfox/internal/cli/tui"
)

var refreshInterval time.Duration

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch interactive TUI dashboard",
	Long: `Launch an interactive terminal dashboard showing the dataset, tier
distribution, and host load in real-time.

Examples:
  optfox tui                    # Basic launch with default settings
  optfox tui --refresh 500ms    # Faster refresh rate
  optfox tui --host 10.0.0.1    # Connect to remote server`,
	RunE: runTUI,
}

func init() {
	tuiCmd.Flags().DurationVar(&refreshInterval, "refresh", time.Second, "dashboard refresh interval")
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(cmd *cobra.Command, args []string) error {
	config := tui.Config{
		ServerURL:       GetServerURL(),
		RefreshInterval: refreshInterval,
	}

	return tui.Run(config)
}
