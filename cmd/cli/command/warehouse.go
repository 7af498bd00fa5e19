package command

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"

	"warehub/internal/warehouse"

	"github.com/spf13/cobra"
)

// warehouseCmd runs the warehouse monitor node
var warehouseCmd = &cobra.Command{
	Use:   "warehouse",
	Short: "Run the warehouse monitor",
	Long: `Compare the sensor count and the manual count of every zone on an interval.
When they disagree the smaller count is reported and a "<zone> zone mismatch" work order is sent.

Press Ctrl+C to stop.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		interval, _ := cmd.Flags().GetDuration("interval")
		if interval <= 0 {
			interval = cfg.WarehousePollInterval
		}

		hub, err := dialHub()
		if err != nil {
			return err
		}
		defer hub.Close()

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		monitor := warehouse.NewMonitor(cfg.Zones,
			warehouse.NewStaticSource(warehouse.DefaultSensorCounts()),
			warehouse.NewStaticSource(warehouse.DefaultManualCounts()),
			hub)

		fmt.Fprintf(cmd.OutOrStdout(), "Monitoring zones %v every %s via %s\n", cfg.Zones, interval, hubAddr)
		slog.Info("warehouse_monitor_started", "zones", cfg.Zones, "interval", interval.String())

		err = monitor.Run(ctx, interval)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	},
}

func init() {
	rootCmd.AddCommand(warehouseCmd)
	warehouseCmd.Flags().Duration("interval", 0, "poll interval (default WAREHOUSE_POLL_INTERVAL)")
}
