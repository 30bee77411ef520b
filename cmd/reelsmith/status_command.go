package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"reelsmith/internal/daemonrun"
	"reelsmith/internal/queue"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var showAll bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show daemon, ledger, and folder status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			rep := newReport(out)

			running, lockErr := daemonRunning(cfg)
			l, err := ctx.openLedger()
			if err != nil {
				return err
			}
			done, err := l.Snapshot()
			if err != nil {
				return err
			}

			var (
				summary queue.Summary
				records []*queue.Record
			)
			err = ctx.withStore(func(store *queue.Store) error {
				var err error
				if summary, err = store.Summary(cmd.Context()); err != nil {
					return err
				}
				if showAll {
					records, err = store.List(cmd.Context())
				} else {
					records, err = store.List(cmd.Context(), queue.StatusPending, queue.StatusProcessing, queue.StatusFailed)
				}
				return err
			})
			if err != nil {
				return err
			}

			rep.section("Daemon")
			switch {
			case lockErr != nil:
				rep.line("Daemon", statusWarn, "lock check failed: "+lockErr.Error())
			case running:
				msg := "running"
				if pid := daemonrun.ReadPID(cfg); pid > 0 {
					msg = fmt.Sprintf("running (pid %d)", pid)
				}
				rep.line("Daemon", statusOK, msg)
			default:
				rep.line("Daemon", statusInfo, "not running")
			}
			rep.line("Ledger", statusInfo, fmt.Sprintf("%d reels recorded", done.Len()))
			rep.section("Folders")
			rep.line("Pending", statusInfo, strconv.Itoa(summary.Pending))
			rep.line("Processing", statusInfo, strconv.Itoa(summary.Processing))
			rep.line("Done", statusOK, strconv.Itoa(summary.Done))
			rep.line("Failed", failedKind(summary.Failed), strconv.Itoa(summary.Failed))
			rep.write(out)

			if len(records) == 0 {
				return nil
			}
			fmt.Fprintln(out)
			writeFolders(out, records, rep.colorize)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&showAll, "all", "a", false, "Include folders that are done")
	return cmd
}

func failedKind(n int) statusKind {
	if n > 0 {
		return statusWarn
	}
	return statusOK
}
