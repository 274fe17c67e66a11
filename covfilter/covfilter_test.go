// Copyright ©2018 The bíogo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"bytes"
	"fmt"
	"io/ioutil"
	"log"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gopkg.in/check.v1"

	"github.com/biogo/contigs/blast"
	"github.com/biogo/contigs/coverage"
)

func Test(t *testing.T) { check.TestingT(t) }

type S struct {
	dir  string
	opts options
	log  bytes.Buffer

	fasta strings.Builder
	hits  strings.Builder
}

var _ = check.Suite(&S{})

func (s *S) SetUpTest(c *check.C) {
	s.dir = c.MkDir()
	s.log.Reset()
	s.fasta.Reset()
	s.hits.Reset()
	s.opts = options{
		in:        filepath.Join(s.dir, "tmp.fasta"),
		hits:      filepath.Join(s.dir, "tmp.csv"),
		out:       filepath.Join(s.dir, "filtered.fasta"),
		threshold: 15,
		condition: coverage.BelowOrEqual,
		target:    blast.Query,
		delim:     ",",
		format:    blast.DefaultFormat,
		width:     60,
		bins:      20,
	}
}

func (s *S) addContig(id, seq string) {
	fmt.Fprintf(&s.fasta, ">%s\n%s\n", id, seq)
}

func (s *S) addHit(qseqid string, start, end int) {
	fmt.Fprintf(&s.hits, "%s,0,bla,0,0,0.001,80,0,0,0,%d,%d,0,0\n", qseqid, start, end)
}

func (s *S) run(c *check.C) error {
	c.Assert(ioutil.WriteFile(s.opts.in, []byte(s.fasta.String()), 0o644), check.Equals, nil)
	c.Assert(ioutil.WriteFile(s.opts.hits, []byte(s.hits.String()), 0o644), check.Equals, nil)
	return run(s.opts, log.New(&s.log, "", 0))
}

func (s *S) output(c *check.C) string {
	b, err := ioutil.ReadFile(s.opts.out)
	c.Assert(err, check.Equals, nil)
	return string(b)
}

func (s *S) condition(c *check.C, code string, threshold float64) {
	c.Assert(s.opts.condition.Set(code), check.Equals, nil)
	s.opts.threshold = threshold
}

func (s *S) TestAbove(c *check.C) {
	s.addContig("one", "GTAGTACCGA")
	s.addContig("two", "GTCGTACGGA")
	s.addHit("one", 1, 9)
	s.addHit("two", 1, 8)
	s.condition(c, "b", 80)

	c.Assert(s.run(c), check.Equals, nil)
	c.Check(s.output(c), check.Equals, ">one\nGTAGTACCGA\n")
}

func (s *S) TestBelow(c *check.C) {
	s.addContig("one", "GTAGTACCGA")
	s.addContig("two", "GTCGTACGGA")
	s.addHit("one", 1, 9)
	s.addHit("two", 1, 5)
	s.condition(c, "l", 80)

	c.Assert(s.run(c), check.Equals, nil)
	c.Check(s.output(c), check.Equals, ">two\nGTCGTACGGA\n")
}

func (s *S) TestEqual(c *check.C) {
	s.addContig("one", "GTAGTACCGA")
	s.addContig("two", "GTCGTACGGA")
	s.addHit("one", 1, 9)
	s.addHit("two", 1, 5)
	s.condition(c, "e", 50)

	c.Assert(s.run(c), check.Equals, nil)
	c.Check(s.output(c), check.Equals, ">two\nGTCGTACGGA\n")
}

func (s *S) TestAboveOrEqual(c *check.C) {
	s.addContig("one", "GTAGTACCGA")
	s.addContig("two", "GTCGTACGGA")
	s.addContig("three", "GTCGTACGGA")
	s.addHit("one", 1, 9)
	s.addHit("two", 1, 5)
	s.addHit("three", 1, 6)
	s.condition(c, "be", 60)

	c.Assert(s.run(c), check.Equals, nil)
	c.Check(s.output(c), check.Equals, ">one\nGTAGTACCGA\n>three\nGTCGTACGGA\n")
}

func (s *S) TestBelowOrEqual(c *check.C) {
	s.addContig("one", "GTAGTACCGA")
	s.addContig("two", "GTCGTACGGA")
	s.addContig("three", "GTCGTACGGA")
	s.addHit("one", 1, 9)
	s.addHit("two", 1, 5)
	s.addHit("three", 1, 2)
	s.condition(c, "le", 50)

	c.Assert(s.run(c), check.Equals, nil)
	c.Check(s.output(c), check.Equals, ">two\nGTCGTACGGA\n>three\nGTCGTACGGA\n")
}

func (s *S) TestMultipleHits(c *check.C) {
	s.addContig("one", "GTAGTACCGA")
	s.addContig("two", "GTCGTACGGA")
	s.addHit("one", 1, 3)
	s.addHit("two", 1, 2)
	s.addHit("one", 3, 5)
	s.addHit("one", 6, 7)
	s.addHit("two", 9, 10)
	s.condition(c, "e", 70)

	c.Assert(s.run(c), check.Equals, nil)
	c.Check(s.output(c), check.Equals, ">one\nGTAGTACCGA\n")
}

func (s *S) TestMissingHits(c *check.C) {
	for _, t := range []struct {
		missing string
		want    string
	}{
		{missing: "zero", want: ">one\nGTAGTACCGA\n>three\nGTCGTACGGA\n"},
		{missing: "skip", want: ">three\nGTCGTACGGA\n"},
	} {
		s.SetUpTest(c)
		s.addContig("one", "GTAGTACCGA")
		s.addContig("two", "GTCGTACGGA")
		s.addContig("three", "GTCGTACGGA")
		s.addHit("two", 1, 9)
		s.addHit("three", 1, 2)
		s.condition(c, "l", 50)
		c.Assert(s.opts.missing.Set(t.missing), check.Equals, nil)

		c.Assert(s.run(c), check.Equals, nil)
		c.Check(s.output(c), check.Equals, t.want, check.Commentf("Policy %s", t.missing))
	}
}

func (s *S) TestSubject(c *check.C) {
	s.addContig("ref", "GTAGTACCGAGTAGTACCGA")
	s.addContig("other", "GTAGTACCGA")
	// Minus strand subject hits report sstart > send.
	fmt.Fprintln(&s.hits, "ctg1,0,ref,20,0,0.001,80,0,0,0,1,5,10,1")
	fmt.Fprintln(&s.hits, "ctg2,0,ref,20,0,0.001,80,0,0,0,1,5,11,15")
	s.opts.target = blast.Subject
	s.condition(c, "be", 75)

	c.Assert(s.run(c), check.Equals, nil)
	c.Check(s.output(c), check.Equals, ">ref\nGTAGTACCGAGTAGTACCGA\n")
}

func (s *S) TestTabDelimited(c *check.C) {
	s.addContig("one", "GTAGTACCGA")
	s.addContig("two", "GTCGTACGGA")
	fmt.Fprintln(&s.hits, "one\tref\t1\t10")
	fmt.Fprintln(&s.hits, "two\tref\t3\t4")
	s.opts.delim = `\t`
	s.opts.format = "qseqid sseqid qstart qend"
	s.condition(c, "b", 50)

	c.Assert(s.run(c), check.Equals, nil)
	c.Check(s.output(c), check.Equals, ">one\nGTAGTACCGA\n")
}

func (s *S) TestLineWidth(c *check.C) {
	s.addContig("one", "GTAGTACCGA")
	s.addHit("one", 1, 10)
	s.condition(c, "be", 100)
	s.opts.width = 4

	c.Assert(s.run(c), check.Equals, nil)
	c.Check(s.output(c), check.Equals, ">one\nGTAG\nTACC\nGA\n")
}

func (s *S) TestIdempotent(c *check.C) {
	s.addContig("one", "GTAGTACCGA")
	s.addContig("two", "GTCGTACGGA")
	s.addContig("three", "GTCGTACGGA")
	s.addHit("one", 1, 9)
	s.addHit("three", 1, 6)
	s.condition(c, "le", 60)

	c.Assert(s.run(c), check.Equals, nil)
	first, err := ioutil.ReadFile(s.opts.out)
	c.Assert(err, check.Equals, nil)
	c.Assert(s.run(c), check.Equals, nil)
	second, err := ioutil.ReadFile(s.opts.out)
	c.Assert(err, check.Equals, nil)
	c.Check(string(second), check.Equals, string(first))
	c.Check(string(first), check.Equals, ">two\nGTCGTACGGA\n>three\nGTCGTACGGA\n")
}

func (s *S) TestMalformedHits(c *check.C) {
	s.addContig("one", "GTAGTACCGA")
	s.addHit("one", 1, 9)
	fmt.Fprintln(&s.hits, "two,0,bla,0,0,0.001,80,0,0,0,one,9,0,0")

	err := s.run(c)
	c.Check(err, check.ErrorMatches, `failed to read hits: blast: line 2: invalid qstart: .*`)
	_, err = os.Stat(s.opts.out)
	c.Check(os.IsNotExist(err), check.Equals, true)
}

func (s *S) TestMissingInput(c *check.C) {
	s.addHit("one", 1, 9)
	c.Assert(ioutil.WriteFile(s.opts.hits, []byte(s.hits.String()), 0o644), check.Equals, nil)
	s.opts.in = filepath.Join(s.dir, "absent.fasta")

	err := run(s.opts, log.New(&s.log, "", 0))
	c.Check(os.IsNotExist(err), check.Equals, true)
	_, err = os.Stat(s.opts.out)
	c.Check(os.IsNotExist(err), check.Equals, true)
}

func (s *S) TestInvalidOptions(c *check.C) {
	for i, t := range []struct {
		mod func(*options)
		err string
	}{
		{mod: func(o *options) { o.threshold = -1 }, err: coverage.ErrBadThreshold.Error()},
		{mod: func(o *options) { o.delim = ",;" }, err: `blast: delimiter ",;" is not a single character`},
		{mod: func(o *options) { o.format = "" }, err: blast.ErrEmptyFormat.Error()},
		{mod: func(o *options) { o.format = "qseqid sstart send" }, err: `blast: format "qseqid sstart send" lacks query field "qstart"`},
		{mod: func(o *options) { o.width = 0 }, err: `invalid line width 0`},
		{mod: func(o *options) { o.condition = 0 }, err: `coverage: invalid comparator 0`},
	} {
		s.SetUpTest(c)
		s.addContig("one", "GTAGTACCGA")
		s.addHit("one", 1, 9)
		t.mod(&s.opts)
		c.Check(s.run(c), check.ErrorMatches, t.err, check.Commentf("Test %d", i))
	}
}

func (s *S) TestReportAndHistogram(c *check.C) {
	s.addContig("one", "GTAGTACCGA")
	s.addContig("two", "GTCGTACGGA")
	s.addContig("none", "")
	s.addHit("one", 1, 9)
	s.addHit("two", 1, 5)
	s.condition(c, "b", 60)
	s.opts.report = filepath.Join(s.dir, "report.txt")
	s.opts.hist = filepath.Join(s.dir, "hist.svg")

	c.Assert(s.run(c), check.Equals, nil)
	c.Check(s.output(c), check.Equals, ">one\nGTAGTACCGA\n")

	rep, err := ioutil.ReadFile(s.opts.report)
	c.Assert(err, check.Equals, nil)
	c.Check(string(rep), check.Equals, ""+
		"id   length covered coverage(%)    kept\n"+
		"one  10     9       90.00          true\n"+
		"two  10     5       50.00          false\n"+
		"none 0      0       empty sequence false\n",
	)

	fi, err := os.Stat(s.opts.hist)
	c.Assert(err, check.Equals, nil)
	c.Check(fi.Size() > 0, check.Equals, true)

	c.Check(s.log.String(), check.Matches, `(?s).*warning: "none" has no sequence: dropped\.\n.*`)
	c.Check(s.log.String(), check.Matches, `(?s).*kept 1 of 3 sequences \(1 without hits, 1 empty\); mean coverage 70\.00%, median 50\.00%\n`)
}

func (s *S) TestCount(c *check.C) {
	for _, t := range []struct {
		in   string
		want int
	}{
		{in: "", want: 0},
		{in: ">one\nACGT\n", want: 1},
		{in: ">one desc > x\nAC>GT\n>two\n\n>three", want: 3},
	} {
		n, err := count(strings.NewReader(t.in))
		c.Check(err, check.Equals, nil)
		c.Check(n, check.Equals, t.want, check.Commentf("Test %q", t.in))
	}
}

func (s *S) TestProgress(c *check.C) {
	var buf bytes.Buffer
	p := newProgress(&buf, 2)
	p.step()
	p.step()
	p.finish()
	c.Check(buf.String(), check.Equals, "\r1 of 2 sequences processed (50.00% done)\r2 of 2 sequences processed (100.00% done)\n")

	var nilp *progress
	nilp.step()
	nilp.clear()
	nilp.finish()
}

func (s *S) TestUnwritableOutput(c *check.C) {
	s.addContig("one", "GTAGTACCGA")
	s.addHit("one", 1, 9)
	s.opts.out = filepath.Join(s.dir, "absent", "filtered.fasta")
	s.opts.report = filepath.Join(s.dir, "report.txt")

	err := s.run(c)
	c.Check(os.IsNotExist(err), check.Equals, true)
	_, err = os.Stat(s.opts.report)
	c.Check(os.IsNotExist(err), check.Equals, true)
}
