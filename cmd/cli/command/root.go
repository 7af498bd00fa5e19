package command

// root.go defines the root command for the warehub node CLI.
// global flags and configuration are set up here.

import (
	"fmt"
	"os"

	"warehub/cmd/cli/command/client"
	"warehub/internal/config"
	"warehub/internal/logging"

	"github.com/spf13/cobra"
)

var (
	hubAddr string         // Global flag for hub address
	cfg     *config.Config // loaded once before any subcommand runs
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "warehub",
	Short: "warehub - node CLI for the warehouse hub",
	Long: `warehub runs the nodes that talk to the central hub:
- report a zone count as the warehouse sensor node
- send a work order as the central console
- run the warehouse monitor that compares sensor and manual counts
- run a worker terminal that receives and tracks work orders

Use "warehub command --help" to see the flags of each command.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.LoadConfig()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
		logging.New(os.Stderr, cfg.LogLevel, cfg.LogFormat)

		if hubAddr == "" {
			hubAddr = cfg.HubAddr
		}
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Global persistent flags = available to all subcommands
	rootCmd.PersistentFlags().StringVar(&hubAddr, "hub", "", "hub address (default HUB_ADDR or 127.0.0.1:8080)")
}

// dialHub connects to the hub named by --hub
func dialHub() (*client.HubClient, error) {
	c := client.NewHubClient(hubAddr)
	if err := c.Connect(); err != nil {
		return nil, fmt.Errorf("cannot reach hub at %s: %w", hubAddr, err)
	}
	return c, nil
}
