// Copyright ©2018 The bíogo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package blast

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Hit is a single row of a hits file.
type Hit struct {
	// ID, Start and End are taken from the columns
	// selected by the reader's Target. Start and End
	// are 1-based and closed with Start <= End.
	ID    string
	Start int
	End   int

	// Fields holds every named field of the row.
	Fields map[string]string
}

// Len returns the number of positions spanned by the hit.
func (h *Hit) Len() int { return h.End - h.Start + 1 }

// ParseError is returned for a malformed hit row.
type ParseError struct {
	Line int
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("blast: line %d: %v", e.Line, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Reader reads hits from a tabular hits file.
type Reader struct {
	r    *bufio.Reader
	cfg  Config
	sep  string
	line int

	id, start, end int
	need           int
}

// NewReader returns a Reader reading from r with the layout described by
// cfg. The Config is validated before use.
func NewReader(r io.Reader, cfg Config) (*Reader, error) {
	err := cfg.Validate()
	if err != nil {
		return nil, err
	}
	idName, startName, endName := cfg.Target.Fields()
	hr := &Reader{
		r:     bufio.NewReader(r),
		cfg:   cfg,
		sep:   string(cfg.Delimiter),
		id:    cfg.Format.Index(idName),
		start: cfg.Format.Index(startName),
		end:   cfg.Format.Index(endName),
	}
	for _, i := range []int{hr.id, hr.start, hr.end} {
		if i+1 > hr.need {
			hr.need = i + 1
		}
	}
	return hr, nil
}

// Config returns the Config the Reader was created with.
func (r *Reader) Config() Config { return r.cfg }

// Read returns the next hit in the file. At the end of the input Read
// returns io.EOF. Empty lines are skipped. Rows with too few fields or
// invalid coordinates are returned as a *ParseError.
//
// Hits with start greater than end, as reported for minus strand
// alignments, have their coordinates swapped.
func (r *Reader) Read() (*Hit, error) {
	for {
		line, err := r.r.ReadString('\n')
		if err != nil && (err != io.EOF || len(line) == 0) {
			return nil, err
		}
		r.line++
		line = strings.TrimRight(line, "\r\n")
		if line == "" {
			if err == io.EOF {
				return nil, io.EOF
			}
			continue
		}
		return r.parse(line)
	}
}

func (r *Reader) parse(line string) (*Hit, error) {
	fields := strings.Split(line, r.sep)
	if len(fields) < r.need {
		return nil, &ParseError{
			Line: r.line,
			Err:  fmt.Errorf("found %d fields, need at least %d for format %q", len(fields), r.need, r.cfg.Format),
		}
	}
	n := len(fields)
	if n > len(r.cfg.Format) {
		n = len(r.cfg.Format)
	}
	h := &Hit{
		ID:     fields[r.id],
		Fields: make(map[string]string, n),
	}
	for i, v := range fields[:n] {
		h.Fields[r.cfg.Format[i]] = v
	}
	var err error
	h.Start, err = r.coord(fields, r.start)
	if err != nil {
		return nil, err
	}
	h.End, err = r.coord(fields, r.end)
	if err != nil {
		return nil, err
	}
	if h.Start > h.End {
		h.Start, h.End = h.End, h.Start
	}
	return h, nil
}

func (r *Reader) coord(fields []string, i int) (int, error) {
	name := r.cfg.Format[i]
	v, err := strconv.Atoi(strings.TrimSpace(fields[i]))
	if err != nil {
		return 0, &ParseError{Line: r.line, Err: fmt.Errorf("invalid %s: %w", name, err)}
	}
	if v < 1 {
		return 0, &ParseError{Line: r.line, Err: fmt.Errorf("invalid %s: %d is not a 1-based position", name, v)}
	}
	return v, nil
}
