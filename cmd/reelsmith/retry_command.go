package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"reelsmith/internal/queue"
)

func newRetryCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "retry <folder-id>...",
		Short: "Clear the failed state of parked folders so they are processed again",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(store *queue.Store) error {
				out := cmd.OutOrStdout()
				for _, id := range args {
					reset, err := store.Retry(cmd.Context(), id)
					if err != nil {
						return err
					}
					if reset {
						fmt.Fprintf(out, "%s: queued for retry\n", id)
					} else {
						fmt.Fprintf(out, "%s: not in failed state\n", id)
					}
				}
				return nil
			})
		},
	}
}
