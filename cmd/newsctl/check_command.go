package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"newsctl/internal/deps"
	"newsctl/internal/preflight"
)

func newCheckCommand(ctx *commandContext) *cobra.Command {
	var withRemote bool

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Verify external programs, directories, and optionally the remote host",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			var results []preflight.Result
			if err := cfg.ResolveProjectRoot(); err != nil {
				results = append(results, preflight.Result{Name: "Project root", Detail: err.Error()})
			} else {
				results = preflight.RunAll(cmd.Context(), cfg, preflight.Options{Remote: withRemote})
			}
			statuses := preflight.CheckSystemDeps(cfg)

			depRows := make([][]string, 0, len(statuses))
			for _, s := range statuses {
				state := "ok"
				detail := s.Path
				if !s.Available {
					state = "missing"
					detail = s.Detail
				}
				depRows = append(depRows, []string{s.Name, s.Command, state, yesNo(!s.Optional), detail})
			}
			fmt.Fprintln(out, renderTable([]string{"Dependency", "Command", "Status", "Required", "Detail"}, depRows, nil))

			checkRows := make([][]string, 0, len(results))
			for _, r := range results {
				state := "ok"
				if !r.Passed {
					state = "failed"
				}
				checkRows = append(checkRows, []string{r.Name, state, r.Detail})
			}
			fmt.Fprintln(out, renderTable([]string{"Check", "Status", "Detail"}, checkRows, nil))

			if len(deps.Missing(statuses)) > 0 || preflight.Failed(results) {
				return errors.New("preflight checks failed")
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&withRemote, "remote", false, "Also connect to the deployment host over SSH")
	return cmd
}
