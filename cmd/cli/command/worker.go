package command

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"warehub/internal/hardware"
	"warehub/internal/worker"

	"github.com/spf13/cobra"
)

// workerCmd runs a worker terminal
var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Run a worker terminal",
	Long: `Register with the hub as the active worker terminal and queue every work order it forwards.

Stdin stands in for the tag reader and the completion buttons:
  tag <uid>      toggle attendance for the tag holder
  done <worker>  complete the oldest task of a worker

Press Ctrl+C to stop.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		token, _ := cmd.Flags().GetString("token")

		hub, err := dialHub()
		if err != nil {
			return err
		}
		defer hub.Close()

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		roster := worker.NewRoster(worker.DefaultMembers(), hardware.NewConsoleDisplay(cmd.OutOrStdout()))
		term := worker.NewTerminal(hub, token, roster)

		go func() {
			if err := roster.ReadCommands(cmd.InOrStdin(), cmd.ErrOrStderr()); err != nil {
				fmt.Fprintln(os.Stderr, "stdin:", err)
			}
		}()

		fmt.Fprintf(cmd.OutOrStdout(), "Worker terminal connected to %s\n", hubAddr)
		err = term.Run(ctx)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	},
}

func init() {
	rootCmd.AddCommand(workerCmd)
	workerCmd.Flags().String("token", worker.DefaultToken, "terminal identity sent on registration")
}
