package command

import (
	"fmt"

	"warehub/internal/protocol"
	"warehub/internal/warehouse"

	"github.com/spf13/cobra"
)

// reportCmd sends one zone count as the warehouse sensor node
var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Report a zone count to the hub",
	Long: `Send one inventory update for a zone, as the warehouse sensor node would.
The hub turns the zone's low-stock LED on when the quantity is under the threshold.`,
	Example: "  warehub report --zone A --qty 2",
	RunE: func(cmd *cobra.Command, args []string) error {
		zone, _ := cmd.Flags().GetString("zone")
		qty, _ := cmd.Flags().GetInt("qty")

		if zone == "" {
			return fmt.Errorf("--zone is required")
		}

		hub, err := dialHub()
		if err != nil {
			return err
		}
		defer hub.Close()

		if err := warehouse.ReportInventory(hub, zone, qty); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Reported %s\n", protocol.FormatInventoryPayload(zone, qty))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(reportCmd)
	reportCmd.Flags().String("zone", "", "zone identifier")
	reportCmd.Flags().Int("qty", 0, "counted quantity")
}
