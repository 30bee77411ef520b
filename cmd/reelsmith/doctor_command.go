package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"reelsmith/internal/preflight"
)

func newDoctorCommand(ctx *commandContext) *cobra.Command {
	var offline bool

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check binaries, directories, and the speech provider",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			rep := newReport(out)
			failed := false

			rep.section("Dependencies")
			for _, dep := range preflight.CheckSystemDeps(cfg) {
				switch {
				case dep.Available:
					rep.line(dep.Name, statusOK, dep.Path)
				case dep.Optional:
					rep.line(dep.Name, statusWarn, dep.Detail)
				default:
					failed = true
					rep.line(dep.Name, statusError, dep.Detail)
				}
			}

			rep.section("Checks")
			results := preflight.RunAll(cmd.Context(), cfg, !offline)
			for _, result := range results {
				kind := statusOK
				if !result.Passed {
					kind = statusError
				}
				rep.line(result.Name, kind, result.Detail)
			}
			if preflight.Failed(results) {
				failed = true
			}

			rep.section("Config")
			source := ctx.configPath
			if !ctx.configSeen {
				source += " (not found; defaults in use)"
			}
			rep.line("File", statusInfo, source)
			rep.line("API key set", statusInfo, yesNo(strings.TrimSpace(cfg.Speech.APIKey) != ""))
			rep.line("Retry ceiling", statusInfo, ceilingLabel(cfg.Workflow.MaxAttempts))

			rep.write(out)
			if failed {
				return errors.New("doctor found problems")
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&offline, "offline", false, "Skip the speech provider reachability check")
	return cmd
}

func ceilingLabel(maxAttempts int) string {
	if maxAttempts <= 0 {
		return "unlimited"
	}
	return fmt.Sprintf("%d attempts", maxAttempts)
}
