// Copyright ©2018 The bíogo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package blast provides a reader for BLAST-style tabular hit files with
// configurable column layout and field delimiter.
package blast

import (
	"errors"
	"fmt"
	"strings"
)

// DefaultFormat is the column layout produced by
//  -outfmt "10 qseqid qlen sseqid slen length evalue pident bitscore mismatch gaps qstart qend sstart send"
const DefaultFormat = "qseqid qlen sseqid slen length evalue pident bitscore mismatch gaps qstart qend sstart send"

// DefaultDelimiter is the field delimiter of BLAST CSV output.
const DefaultDelimiter = ','

var (
	ErrEmptyFormat  = errors.New("blast: empty format")
	ErrBadDelimiter = errors.New("blast: invalid delimiter")
)

// Target specifies which side of an alignment coverage is reported for.
type Target int

const (
	Query Target = iota
	Subject
)

// ParseTarget returns the Target named by s, either "query" or "subject".
func ParseTarget(s string) (Target, error) {
	switch s {
	case "query":
		return Query, nil
	case "subject":
		return Subject, nil
	}
	return 0, fmt.Errorf("blast: unknown target %q: must be query or subject", s)
}

func (t Target) String() string {
	switch t {
	case Query:
		return "query"
	case Subject:
		return "subject"
	}
	return fmt.Sprintf("Target(%d)", int(t))
}

// Set allows a Target to be used as a flag.Value.
func (t *Target) Set(s string) error {
	v, err := ParseTarget(s)
	if err != nil {
		return err
	}
	*t = v
	return nil
}

// Fields returns the names of the identifier, start and end columns
// used for the target.
func (t Target) Fields() (id, start, end string) {
	if t == Subject {
		return "sseqid", "sstart", "send"
	}
	return "qseqid", "qstart", "qend"
}

// Format is an ordered list of column names.
type Format []string

// ParseFormat returns the Format described by the space-separated
// column names in s.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.Fields(s))
	if len(f) == 0 {
		return nil, ErrEmptyFormat
	}
	seen := make(map[string]bool, len(f))
	for _, n := range f {
		if seen[n] {
			return nil, fmt.Errorf("blast: duplicate field %q in format", n)
		}
		seen[n] = true
	}
	return f, nil
}

// Index returns the column index of the named field, or -1 if it is
// not present.
func (f Format) Index(name string) int {
	for i, n := range f {
		if n == name {
			return i
		}
	}
	return -1
}

func (f Format) String() string { return strings.Join(f, " ") }

// Config describes the layout of a hits file and which side of each hit
// is read.
type Config struct {
	Format    Format
	Delimiter rune
	Target    Target
}

// DefaultConfig returns a Config for DefaultFormat, DefaultDelimiter and
// the Query target.
func DefaultConfig() Config {
	f, err := ParseFormat(DefaultFormat)
	if err != nil {
		panic(err)
	}
	return Config{Format: f, Delimiter: DefaultDelimiter, Target: Query}
}

// Validate returns an error if c cannot be used to read hits.
func (c Config) Validate() error {
	if len(c.Format) == 0 {
		return ErrEmptyFormat
	}
	switch c.Delimiter {
	case 0, '\n', '\r':
		return ErrBadDelimiter
	}
	if c.Target != Query && c.Target != Subject {
		return fmt.Errorf("blast: invalid target %v", c.Target)
	}
	id, start, end := c.Target.Fields()
	for _, n := range []string{id, start, end} {
		if c.Format.Index(n) < 0 {
			return fmt.Errorf("blast: format %q lacks %s field %q", c.Format, c.Target, n)
		}
	}
	return nil
}

// ParseDelimiter returns the delimiter rune described by s. The escape
// `\t` and the word "tab" are accepted for a tab delimiter.
func ParseDelimiter(s string) (rune, error) {
	switch s {
	case `\t`, "tab":
		return '\t', nil
	}
	r := []rune(s)
	if len(r) != 1 {
		return 0, fmt.Errorf("blast: delimiter %q is not a single character", s)
	}
	switch r[0] {
	case '\n', '\r':
		return 0, ErrBadDelimiter
	}
	return r[0], nil
}
