package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"genelab/internal/server"
	"genelab/internal/workbench"
)

func batchCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "batch <jobs.yaml>",
		Short: "Run a YAML job file across the worker pool",
		Long: `Run every job in a YAML file. Job i runs with the seed derived from the
base seed and i unless the job sets its own, so output is identical for
any --workers value.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			jobs, err := workbench.LoadJobs(f)
			f.Close()
			if err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}
			if len(jobs) == 0 {
				e.log.Info("no jobs", "file", args[0])
				return nil
			}
			return e.runJobs(cmd.Context(), jobs)
		},
	}
}

func serveCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the simulators over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return server.Serve(cmd.Context(), e.cfg.Server.Addr, server.NewRouter(e.wb, e.rec, e.log))
		},
	}
	cmd.Flags().String("addr", "", "listen address (default from server.addr)")
	_ = e.v.BindPFlag("server.addr", cmd.Flags().Lookup("addr"))
	return cmd
}
