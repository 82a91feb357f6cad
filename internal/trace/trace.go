// Package trace reads access traces: one access per line, blank lines and
// '#' comments skipped. A selected whitespace-separated field of each line
// becomes the key (see util.KeyOf).
package trace

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/IvanBrykalov/reusedist/internal/errs"
	"github.com/IvanBrykalov/reusedist/internal/util"
)

// maxLine bounds a single trace line.
const maxLine = 1 << 20

// Reader scans keys from a trace, bufio.Scanner style:
//
//	for r.Next() {
//	    use(r.Key())
//	}
//	if err := r.Err(); err != nil { ... }
type Reader struct {
	sc     *bufio.Scanner
	source string
	field  int
	line   int
	key    uint64
	err    error
}

// NewReader reads keys from field (0-based) of every line of r.
// source names the trace in errors.
func NewReader(r io.Reader, source string, field int) *Reader {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLine)
	return &Reader{sc: sc, source: source, field: max(field, 0)}
}

// Next advances to the next key. It returns false at the end of the trace
// or on the first error.
func (r *Reader) Next() bool {
	if r.err != nil {
		return false
	}
	for r.sc.Scan() {
		r.line++
		text := strings.TrimSpace(r.sc.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		fields := strings.Fields(text)
		if r.field >= len(fields) {
			r.err = errs.TraceParse(r.source, r.line,
				fmt.Errorf("field %d missing, line has %d", r.field, len(fields)))
			return false
		}
		r.key = util.KeyOf(fields[r.field])
		return true
	}
	if err := r.sc.Err(); err != nil {
		r.err = errs.TraceRead(r.source, err)
	}
	return false
}

// Key returns the key of the current line.
func (r *Reader) Key() uint64 { return r.key }

// Line returns the 1-based number of the current line.
func (r *Reader) Line() int { return r.line }

// Err returns the first error encountered, if any.
func (r *Reader) Err() error { return r.err }
