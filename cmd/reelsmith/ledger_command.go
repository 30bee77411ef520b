package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newLedgerCommand(ctx *commandContext) *cobra.Command {
	var countOnly bool

	cmd := &cobra.Command{
		Use:   "ledger",
		Short: "List folder identifiers whose reel has been produced",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			l, err := ctx.openLedger()
			if err != nil {
				return err
			}
			done, err := l.Snapshot()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if countOnly {
				fmt.Fprintln(out, done.Len())
				return nil
			}
			for _, id := range done.IDs() {
				fmt.Fprintln(out, id)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&countOnly, "count", false, "Print only the number of recorded folders")
	return cmd
}
