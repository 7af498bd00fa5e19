package command

import (
	"fmt"
	"strings"

	"warehub/internal/protocol"

	"github.com/spf13/cobra"
)

// orderCmd sends a work order from the central console
var orderCmd = &cobra.Command{
	Use:     "order <description>",
	Short:   "Send a work order to the active worker terminal",
	Long:    `Send a free-text work order. The hub forwards it to whichever worker terminal is registered.`,
	Example: `  warehub order "restock zone B"`,
	Args:    cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		description := strings.Join(args, " ")

		hub, err := dialHub()
		if err != nil {
			return err
		}
		defer hub.Close()

		if err := hub.Send(protocol.NewWorkOrder(protocol.OriginCentral, description)); err != nil {
			return fmt.Errorf("failed to send work order: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Work order sent: %s\n", description)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(orderCmd)
}
