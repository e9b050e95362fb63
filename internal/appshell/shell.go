// Package appshell adapts a Run function to a process: signal-aware
// context, default arguments and the exit code.
package appshell

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"
)

// RunFunc is the shape of cli.Run.
type RunFunc func(ctx context.Context, argv []string, stdout, stderr io.Writer) int

// ExitCancelled is returned when a signal stopped an otherwise clean run.
const ExitCancelled = 130

// Main runs run under SIGINT/SIGTERM cancellation and exits the process.
func Main(run RunFunc) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := Exec(ctx, run, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// Exec calls run with argv, showing help when argv is empty, and maps a
// clean exit after cancellation to ExitCancelled.
func Exec(ctx context.Context, run RunFunc, argv []string, stdout, stderr io.Writer) int {
	if len(argv) == 0 {
		argv = []string{"--help"}
	}
	code := run(ctx, argv, stdout, stderr)
	if ctx.Err() != nil && code == 0 {
		code = ExitCancelled
	}
	return code
}
