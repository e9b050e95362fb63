// Package cli is the genelab command tree.
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"slices"

	"github.com/go-logr/logr"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"genelab/internal/config"
	"genelab/internal/logging"
	"genelab/internal/metrics"
	"genelab/internal/workbench"
	"genelab/internal/writers"
)

// Version is stamped at build time with -ldflags "-X genelab/internal/cli.Version=...".
var Version = "dev"

// Exit codes.
const (
	ExitOK     = 0
	ExitFailed = 1 // at least one job could not run
	ExitUsage  = 2 // bad flags, arguments or configuration
	ExitIO     = 3 // output could not be written
	ExitSignal = 130
)

// exitError carries a specific exit code out of a RunE.
type exitError struct {
	code int
	err  error
}

func (e exitError) Error() string { return e.err.Error() }
func (e exitError) Unwrap() error { return e.err }

// env is what PersistentPreRunE builds for the subcommands.
type env struct {
	v       *viper.Viper
	cfg     config.Config
	log     logr.Logger
	rec     *metrics.Recorder
	wb      *workbench.Workbench
	cfgFile string
	opt     writers.Options
	stdout  io.Writer
}

// Run executes argv and returns the process exit code.
func Run(ctx context.Context, argv []string, stdout, stderr io.Writer) int {
	outw := bufio.NewWriter(stdout)
	root := newRoot(outw, stderr)
	root.SetArgs(argv)
	err := root.ExecuteContext(ctx)

	if ferr := outw.Flush(); ferr != nil && !writers.IsBrokenPipe(ferr) && err == nil {
		err = exitError{ExitIO, ferr}
	}
	if err == nil {
		return ExitOK
	}
	fmt.Fprintln(stderr, "genelab:", err)
	var ee exitError
	switch {
	case errors.As(err, &ee):
		return ee.code
	case errors.Is(err, context.Canceled):
		return ExitSignal
	}
	return ExitUsage
}

func newRoot(stdout, stderr io.Writer) *cobra.Command {
	e := &env{v: config.New(), stdout: stdout}

	root := &cobra.Command{
		Use:           "genelab",
		Short:         "Stochastic wet-lab simulator: CRISPR editing, PCR, sequencing and gel electrophoresis",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return e.setup(cmd)
		},
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	pf := root.PersistentFlags()
	pf.StringVar(&e.cfgFile, "config", "", "YAML config file")
	pf.Uint64("seed", 0, "base PRNG seed (job i runs with a seed derived from it)")
	pf.Int("workers", 0, "worker goroutines for batch runs")
	pf.StringP("output", "o", "", "output format: "+fmt.Sprint(writers.Formats()))
	pf.String("log-level", "", "log level: error, warn, info, debug, trace")
	pf.Bool("log-development", false, "human-readable development logging")
	pf.String("metrics-textfile", "", "write Prometheus metrics here after the run")
	pf.BoolVar(&e.opt.Reads, "reads", false, "include sequencing reads in structured output")
	pf.BoolVar(&e.opt.Amplicon, "amplicon", false, "include PCR amplicon sequences in output")

	for key, name := range map[string]string{
		"seed":             "seed",
		"workers":          "workers",
		"output":           "output",
		"log.level":        "log-level",
		"log.development":  "log-development",
		"metrics.textfile": "metrics-textfile",
	} {
		_ = e.v.BindPFlag(key, pf.Lookup(name))
	}

	root.AddCommand(
		sitesCmd(e), editCmd(e), primersCmd(e), pcrCmd(e), sequenceCmd(e), gelCmd(e), workflowCmd(e),
		batchCmd(e), serveCmd(e), versionCmd(),
	)
	return root
}

// setup loads configuration and builds the logger, metrics and workbench.
func (e *env) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(e.v, e.cfgFile)
	if err != nil {
		return err
	}
	if !slices.Contains(writers.Formats(), cfg.Output) {
		return fmt.Errorf("unknown output format %q (have %v)", cfg.Output, writers.Formats())
	}
	log, err := logging.New(cfg.Log.Level, cfg.Log.Development)
	if err != nil {
		return err
	}
	e.cfg, e.log = cfg, log.WithName("genelab")
	e.rec = metrics.New()
	e.wb = workbench.New(cfg, e.rec)
	cmd.SetContext(logging.IntoContext(cmd.Context(), e.log))
	e.log.V(logging.DEBUG).Info("configuration loaded", "file", e.cfgFile, "seed", cfg.Seed, "workers", cfg.Workers)
	return nil
}

// runJobs streams jobs through the workbench into the configured writer.
// Any job that could not run makes the command exit with ExitFailed.
func (e *env) runJobs(ctx context.Context, jobs []workbench.Job) error {
	in, done := writers.Start(e.stdout, e.cfg.Output, e.opt)
	var errored int
	runErr := e.wb.RunBatch(ctx, jobs, func(o workbench.Outcome) error {
		if o.Err != nil {
			errored++
		}
		in <- o
		return nil
	})
	close(in)
	werr := <-done

	if err := e.rec.WriteTextfile(e.cfg.Metrics.Textfile); err != nil {
		e.log.Error(err, "write metrics textfile", "path", e.cfg.Metrics.Textfile)
	}
	switch {
	case runErr != nil:
		return runErr
	case werr != nil:
		return exitError{ExitIO, werr}
	case errored > 0:
		return exitError{ExitFailed, fmt.Errorf("%d of %d jobs failed to run", errored, len(jobs))}
	}
	return nil
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		// no config needed
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "genelab version %s\n", Version)
			return err
		},
	}
}
