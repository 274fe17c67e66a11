// Copyright ©2018 The bíogo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
)

// progress reports the number of sequences handled. A nil *progress
// is a no-op.
type progress struct {
	w     io.Writer
	total int // -1 if unknown
	done  int
}

func newProgress(w io.Writer, total int) *progress {
	return &progress{w: w, total: total}
}

func (p *progress) step() {
	if p == nil {
		return
	}
	p.done++
	if p.total < 0 {
		fmt.Fprintf(p.w, "\r%d sequences processed", p.done)
		return
	}
	ratio := 100.
	if p.total != 0 {
		ratio = 100 * float64(p.done) / float64(p.total)
	}
	fmt.Fprintf(p.w, "\r%d of %d sequences processed (%0.2f%% done)", p.done, p.total, ratio)
}

// clear blanks the progress line so another message can be written.
func (p *progress) clear() {
	if p == nil {
		return
	}
	fmt.Fprint(p.w, "\r                                                            \r")
}

func (p *progress) finish() {
	if p == nil || p.done == 0 {
		return
	}
	fmt.Fprintln(p.w)
}

// countRecords returns the number of FASTA records in the named file.
func countRecords(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()
	return count(f)
}

// count returns the number of lines in r starting with '>'.
func count(r io.Reader) (int, error) {
	br := bufio.NewReader(r)
	var n int
	start := true
	for {
		b, err := br.ReadByte()
		if err != nil {
			if err == io.EOF {
				return n, nil
			}
			return n, err
		}
		if start && b == '>' {
			n++
		}
		start = b == '\n'
	}
}
