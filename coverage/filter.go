// Copyright ©2018 The bíogo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package coverage

import (
	"errors"
	"fmt"
	"math"

	"github.com/biogo/biogo/io/seqio"
)

// Comparator is a relation between a coverage percentage and a threshold.
type Comparator int

const (
	Above        Comparator = iota + 1 // b
	AboveOrEqual                       // be
	Equal                              // e
	Below                              // l
	BelowOrEqual                       // le
)

var comparatorCodes = map[string]Comparator{
	"b":  Above,
	"be": AboveOrEqual,
	"e":  Equal,
	"l":  Below,
	"le": BelowOrEqual,
}

// ParseComparator returns the Comparator for the code s, one of
// b, be, e, l or le.
func ParseComparator(s string) (Comparator, error) {
	c, ok := comparatorCodes[s]
	if !ok {
		return 0, fmt.Errorf("coverage: unknown condition %q: must be one of b, be, e, l or le", s)
	}
	return c, nil
}

func (c Comparator) String() string {
	switch c {
	case Above:
		return "b"
	case AboveOrEqual:
		return "be"
	case Equal:
		return "e"
	case Below:
		return "l"
	case BelowOrEqual:
		return "le"
	}
	return fmt.Sprintf("Comparator(%d)", int(c))
}

// Set allows a Comparator to be used as a flag.Value.
func (c *Comparator) Set(s string) error {
	v, err := ParseComparator(s)
	if err != nil {
		return err
	}
	*c = v
	return nil
}

// Satisfied returns whether pct relates to threshold according to c.
// Satisfied panics if c is not a valid Comparator.
func (c Comparator) Satisfied(pct, threshold float64) bool {
	switch c {
	case Above:
		return pct > threshold
	case AboveOrEqual:
		return pct >= threshold
	case Equal:
		return pct == threshold
	case Below:
		return pct < threshold
	case BelowOrEqual:
		return pct <= threshold
	}
	panic(fmt.Sprintf("coverage: invalid comparator %d", int(c)))
}

// Missing is the policy applied to sequences without hits.
type Missing int

const (
	// Zero evaluates sequences without hits as having no coverage.
	Zero Missing = iota
	// Skip drops sequences without hits without evaluation.
	Skip
)

// ParseMissing returns the Missing policy named by s, either "zero"
// or "skip".
func ParseMissing(s string) (Missing, error) {
	switch s {
	case "zero":
		return Zero, nil
	case "skip":
		return Skip, nil
	}
	return 0, fmt.Errorf("coverage: unknown missing hit policy %q: must be zero or skip", s)
}

func (m Missing) String() string {
	switch m {
	case Zero:
		return "zero"
	case Skip:
		return "skip"
	}
	return fmt.Sprintf("Missing(%d)", int(m))
}

// Set allows a Missing policy to be used as a flag.Value.
func (m *Missing) Set(s string) error {
	v, err := ParseMissing(s)
	if err != nil {
		return err
	}
	*m = v
	return nil
}

// Reasons for dropping a sequence without evaluating its coverage.
const (
	NoHits        = "missing hits"
	EmptySequence = "empty sequence"
)

// Decision is the outcome of filtering a single sequence.
type Decision struct {
	ID      string
	Len     int
	Covered int
	Percent float64

	// Hit is whether any hit was recorded for the sequence.
	Hit bool

	// Keep is whether the sequence is written to the output.
	Keep bool

	// Reason is non-empty when the sequence was dropped
	// without evaluation.
	Reason string
}

// Evaluated returns whether the coverage of the sequence was tested
// against the threshold.
func (d Decision) Evaluated() bool { return d.Reason == "" }

// Stats summarises a filter run.
type Stats struct {
	Read    int // sequences read
	Kept    int // sequences written
	Missing int // sequences without hits
	Empty   int // zero-length sequences

	// Percents holds the coverage of each
	// evaluated sequence in input order.
	Percents []float64
}

// ErrBadThreshold is returned by Filter.Validate for a negative or NaN threshold.
var ErrBadThreshold = errors.New("coverage: threshold must be a non-negative number")

// Filter selects sequences by the percentage of their length covered
// by hits held in Index.
type Filter struct {
	Index      Index
	Threshold  float64
	Comparator Comparator
	Missing    Missing
}

// Validate returns an error if f is not a usable filter.
func (f *Filter) Validate() error {
	if math.IsNaN(f.Threshold) || f.Threshold < 0 {
		return ErrBadThreshold
	}
	if f.Comparator < Above || BelowOrEqual < f.Comparator {
		return fmt.Errorf("coverage: invalid comparator %d", int(f.Comparator))
	}
	if f.Missing != Zero && f.Missing != Skip {
		return fmt.Errorf("coverage: invalid missing hit policy %d", int(f.Missing))
	}
	return nil
}

// Decide returns the filter decision for the sequence id with the
// given length.
func (f *Filter) Decide(id string, length int) Decision {
	d := Decision{ID: id, Len: length}
	d.Covered, d.Hit = f.Index.Covered(id)
	switch {
	case !d.Hit && f.Missing == Skip:
		d.Reason = NoHits
		return d
	case length == 0:
		d.Reason = EmptySequence
		return d
	}
	d.Percent = 100 * float64(d.Covered) / float64(length)
	d.Keep = f.Comparator.Satisfied(d.Percent, f.Threshold)
	return d
}

// Run reads sequences from r, writing those satisfying the filter to w
// in input order. If fn is not nil it is called with the decision for
// each sequence after any write. Run returns at the first read or write
// error.
func (f *Filter) Run(r seqio.Reader, w seqio.Writer, fn func(Decision)) (Stats, error) {
	var st Stats
	err := f.Validate()
	if err != nil {
		return st, err
	}
	sc := seqio.NewScanner(r)
	for sc.Next() {
		s := sc.Seq()
		st.Read++
		d := f.Decide(s.Name(), s.Len())
		if !d.Hit {
			st.Missing++
		}
		switch d.Reason {
		case "":
			st.Percents = append(st.Percents, d.Percent)
		case EmptySequence:
			st.Empty++
		}
		if d.Keep {
			_, err = w.Write(s)
			if err != nil {
				return st, fmt.Errorf("coverage: failed to write sequence %q: %w", s.Name(), err)
			}
			st.Kept++
		}
		if fn != nil {
			fn(d)
		}
	}
	err = sc.Error()
	if err != nil {
		return st, fmt.Errorf("coverage: failed during read: %w", err)
	}
	return st, nil
}
