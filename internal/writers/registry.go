package writers

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"syscall"

	"genelab/internal/workbench"
)

// Options tune what the structured formats include.
type Options struct {
	Reads    bool // include sequencing reads in json/jsonl/yaml
	Amplicon bool // include the PCR amplicon sequence
	BufSize  int  // channel buffer; <= 0 means 64
}

// WriteFunc drains in and renders each outcome to w.
type WriteFunc func(w io.Writer, in <-chan workbench.Outcome, opt Options) error

// Writer registry (format → handler). Formats register themselves in init().
var registry = map[string]WriteFunc{}

// Register is idempotent, last wins.
func Register(format string, fn WriteFunc) { registry[format] = fn }

// Formats lists the registered format names.
func Formats() []string {
	names := make([]string, 0, len(registry))
	for n := range registry {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Start spins up a writer goroutine for format. The caller sends outcomes on
// the returned channel, closes it, and then reads exactly one error. An
// unknown format still drains the channel so senders never block.
func Start(out io.Writer, format string, opt Options) (chan<- workbench.Outcome, <-chan error) {
	if opt.BufSize <= 0 {
		opt.BufSize = 64
	}
	in := make(chan workbench.Outcome, opt.BufSize)
	done := make(chan error, 1)

	fn, ok := registry[format]
	go func() {
		if !ok {
			for range in {
			}
			done <- fmt.Errorf("unknown output format %q (have %v)", format, Formats())
			return
		}
		err := fn(out, in, opt)
		for range in {
		}
		if IsBrokenPipe(err) {
			err = nil
		}
		done <- err
	}()
	return in, done
}

// WriteAll is Start for a slice already in hand.
func WriteAll(out io.Writer, format string, opt Options, outcomes ...workbench.Outcome) error {
	in, done := Start(out, format, opt)
	for _, o := range outcomes {
		in <- o
	}
	close(in)
	return <-done
}

// IsBrokenPipe reports whether err comes from a reader that went away early,
// as when output is piped into head.
func IsBrokenPipe(err error) bool {
	return errors.Is(err, syscall.EPIPE) || errors.Is(err, io.ErrClosedPipe)
}
