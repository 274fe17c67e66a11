// Copyright ©2018 The bíogo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package coverage computes per-sequence alignment hit coverage and filters
// sequences on the fraction of their length covered by hits.
package coverage

import (
	"fmt"
	"io"
	"os"

	"github.com/biogo/store/step"

	"github.com/biogo/contigs/blast"
)

// stepBool is a bool type satisfying the step.Equaler interface.
type stepBool bool

// Equal returns whether b equals e. Equal assumes the underlying type of e is a stepBool.
func (b stepBool) Equal(e step.Equaler) bool {
	return b == e.(stepBool)
}

// Interval is a closed 1-based interval.
type Interval struct {
	Start, End int
}

// Len returns the number of positions in the interval.
func (iv Interval) Len() int { return iv.End - iv.Start + 1 }

func (iv Interval) String() string { return fmt.Sprintf("[%d,%d]", iv.Start, iv.End) }

// Coverage is the union of a set of intervals on a single sequence.
// Overlapping and adjacent intervals are merged.
type Coverage struct {
	vec *step.Vector
}

// Add adds the closed interval iv to the union. Add panics if iv.Start
// is greater than iv.End.
func (c *Coverage) Add(iv Interval) {
	if iv.Start > iv.End {
		panic(fmt.Sprintf("coverage: invalid interval %v", iv))
	}
	// Positions are held 0-based half-open in the vector.
	start, end := iv.Start-1, iv.End
	if c.vec == nil {
		var err error
		c.vec, err = step.New(start, end, stepBool(false))
		if err != nil {
			panic(err)
		}
		c.vec.Relaxed = true
	}
	c.vec.SetRange(start, end, stepBool(true))
}

// Intervals returns the disjoint intervals making up the union in
// ascending order.
func (c *Coverage) Intervals() []Interval {
	if c == nil || c.vec == nil {
		return nil
	}
	var ivs []Interval
	c.vec.Do(func(start, end int, e step.Equaler) {
		if e.(stepBool) {
			ivs = append(ivs, Interval{Start: start + 1, End: end})
		}
	})
	return ivs
}

// Len returns the number of covered positions.
func (c *Coverage) Len() int {
	if c == nil || c.vec == nil {
		return 0
	}
	var n int
	c.vec.Do(func(start, end int, e step.Equaler) {
		if e.(stepBool) {
			n += end - start
		}
	})
	return n
}

// Index maps sequence identifiers to hit coverage.
type Index map[string]*Coverage

// Add adds the closed interval iv to the coverage of the sequence id.
func (idx Index) Add(id string, iv Interval) {
	c, ok := idx[id]
	if !ok {
		c = &Coverage{}
		idx[id] = c
	}
	c.Add(iv)
}

// Covered returns the number of positions of the sequence id covered
// by hits, and whether any hit was recorded for id.
func (idx Index) Covered(id string) (n int, ok bool) {
	c, ok := idx[id]
	if !ok {
		return 0, false
	}
	return c.Len(), true
}

// NewIndex reads all hits from r and returns the coverage of each hit
// sequence. Any read error aborts construction and no index is returned.
func NewIndex(r *blast.Reader) (Index, error) {
	idx := make(Index)
	for {
		h, err := r.Read()
		if err != nil {
			if err != io.EOF {
				return nil, err
			}
			break
		}
		idx.Add(h.ID, Interval{Start: h.Start, End: h.End})
	}
	return idx, nil
}

// ReadIndex returns the hit coverage index for the hits file named by
// path, read with the layout described by cfg.
func ReadIndex(path string, cfg blast.Config) (Index, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	r, err := blast.NewReader(f, cfg)
	if err != nil {
		return nil, err
	}
	return NewIndex(r)
}
