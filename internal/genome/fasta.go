// internal/genome/fasta.go
package genome

import (
	"bufio"
	"bytes"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"strings"
)

// Record is one parsed FASTA entry.
type Record struct {
	ID  string
	Seq []byte
}

// ReadFASTA parses every record from r. Sequence lines are upper-cased and joined.
func ReadFASTA(r io.Reader) ([]Record, error) {
	br := bufio.NewReader(r)
	var (
		out []Record
		cur *Record
	)
	for {
		line, err := br.ReadBytes('\n')
		eof := err == io.EOF
		if err != nil && !eof {
			return nil, err
		}
		line = bytes.TrimRight(line, "\r\n")
		if len(line) > 0 && line[0] == '>' { // new header
			fields := strings.Fields(string(line[1:]))
			if len(fields) == 0 {
				return nil, fmt.Errorf("fasta: empty header")
			}
			out = append(out, Record{ID: fields[0]})
			cur = &out[len(out)-1]
		} else if len(line) > 0 {
			if cur == nil {
				return nil, fmt.Errorf("fasta: sequence before first header")
			}
			cur.Seq = append(cur.Seq, bytes.ToUpper(bytes.TrimSpace(line))...)
		}
		if eof {
			break
		}
	}
	return out, nil
}

// LoadFASTA opens path ("-" for stdin, ".gz" transparently decompressed) and
// returns the record named id, or the first record when id is empty.
func LoadFASTA(path, id string) (*Memory, error) {
	rc, err := openReader(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rc.Close() }()

	recs, err := ReadFASTA(rc)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if len(recs) == 0 {
		return nil, fmt.Errorf("%s: no FASTA records", path)
	}
	for _, r := range recs {
		if id == "" || r.ID == id {
			m, err := New(r.ID, string(r.Seq))
			if err != nil {
				return nil, fmt.Errorf("%s:%s: %w", path, r.ID, err)
			}
			return m, nil
		}
	}
	return nil, fmt.Errorf("%s: record %q not found", path, id)
}

/* ---------------- small helpers ---------------- */

// multiReadCloser closes every closer in order, keeping the first error.
type multiReadCloser struct {
	io.Reader
	closers []io.Closer
}

func (m *multiReadCloser) Close() error {
	var err error
	for _, c := range m.closers {
		if cerr := c.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}
	return err
}

// openReader opens path ("-" is stdin) and transparently gunzips input
// that starts with the gzip magic 1F 8B, whatever the file is called.
func openReader(path string) (io.ReadCloser, error) {
	var src io.ReadCloser = io.NopCloser(os.Stdin)
	if path != "-" {
		fh, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		src = fh
	}
	return decompress(src)
}

func decompress(src io.ReadCloser) (io.ReadCloser, error) {
	br := bufio.NewReader(src)
	if sig, _ := br.Peek(2); len(sig) < 2 || sig[0] != 0x1f || sig[1] != 0x8b {
		return &multiReadCloser{Reader: br, closers: []io.Closer{src}}, nil
	}
	gr, err := gzip.NewReader(br)
	if err != nil {
		_ = src.Close()
		return nil, err
	}
	return &multiReadCloser{Reader: gr, closers: []io.Closer{gr, src}}, nil
}
