package writers

import (
	"bufio"
	"encoding/json"
	"io"
	"sync"

	"gopkg.in/yaml.v3"

	"genelab/internal/workbench"
	"genelab/pkg/api"
)

func init() {
	Register("json", writeJSON)
	Register("jsonl", writeJSONL)
	Register("yaml", writeYAML)
}

// Reuse a 64 KiB buffered writer across streaming writers.
var bwPool = sync.Pool{
	New: func() any {
		return bufio.NewWriterSize(io.Discard, 64<<10)
	},
}

// buffered runs fn against a pooled bufio.Writer bound to out and flushes it.
func buffered(out io.Writer, fn func(io.Writer) error) error {
	bw := bwPool.Get().(*bufio.Writer)
	bw.Reset(out)
	defer func() {
		bw.Reset(io.Discard)
		bwPool.Put(bw)
	}()
	if err := fn(bw); err != nil {
		return err
	}
	return bw.Flush()
}

// writeJSON collects every outcome into one indented JSON array.
func writeJSON(out io.Writer, in <-chan workbench.Outcome, opt Options) error {
	list := []api.OutcomeV1{}
	for o := range in {
		list = append(list, ToAPI(o, opt))
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(list)
}

// writeJSONL streams one JSON object per line.
func writeJSONL(out io.Writer, in <-chan workbench.Outcome, opt Options) error {
	return buffered(out, func(w io.Writer) error {
		enc := json.NewEncoder(w)
		for o := range in {
			if err := enc.Encode(ToAPI(o, opt)); err != nil {
				return err
			}
		}
		return nil
	})
}

// writeYAML streams one YAML document per outcome.
func writeYAML(out io.Writer, in <-chan workbench.Outcome, opt Options) error {
	return buffered(out, func(w io.Writer) error {
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		for o := range in {
			if err := enc.Encode(ToAPI(o, opt)); err != nil {
				return err
			}
		}
		return enc.Close()
	})
}
