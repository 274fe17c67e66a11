// Copyright ©2018 The bíogo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// covfilter filters contigs by the fraction of their length covered by
// alignment hits reported in a BLAST tabular file.
//
// Hits are read from a delimited file whose columns are named by -format.
// For each contig in the input FASTA the union of hit intervals on the
// -target side is compared against -threshold using -condition:
//
//  b   coverage > threshold
//  be  coverage >= threshold
//  e   coverage == threshold
//  l   coverage < threshold
//  le  coverage <= threshold
//
// Contigs satisfying the condition are written to -out in input order.
// Contigs without hits have zero coverage unless -missing=skip is given,
// in which case they are dropped.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/biogo/biogo/alphabet"
	"github.com/biogo/biogo/io/seqio/fasta"
	"github.com/biogo/biogo/seq/linear"

	"github.com/biogo/contigs/blast"
	"github.com/biogo/contigs/coverage"
)

type options struct {
	in, hits, out string

	threshold float64
	condition coverage.Comparator
	missing   coverage.Missing

	target blast.Target
	delim  string
	format string

	width    int
	report   string
	hist     string
	bins     int
	progress bool
}

func main() {
	o := options{condition: coverage.BelowOrEqual, target: blast.Query, missing: coverage.Zero}
	flag.StringVar(&o.in, "in", "", "input contig FASTA file. Defaults to stdin.")
	flag.StringVar(&o.hits, "hits", "", "input BLAST hit file (required).")
	flag.StringVar(&o.out, "out", "filtered.fasta", "output FASTA file. Empty for stdout.")
	flag.Float64Var(&o.threshold, "threshold", 15, "hit coverage threshold (%).")
	flag.Var(&o.condition, "condition", "keep contigs whose coverage is b (>), be (>=), e (==), l (<) or le (<=) the threshold.")
	flag.Var(&o.target, "target", "hit side to compute coverage for: query or subject.")
	flag.Var(&o.missing, "missing", "policy for contigs without hits: zero (0% coverage) or skip (drop).")
	flag.StringVar(&o.delim, "delim", string(blast.DefaultDelimiter), `hit file field delimiter ("\t" for tab).`)
	flag.StringVar(&o.format, "format", blast.DefaultFormat, "hit file field names.")
	flag.IntVar(&o.width, "width", 60, "output FASTA line width.")
	flag.StringVar(&o.report, "report", "", "filename for per-contig coverage report.")
	flag.StringVar(&o.hist, "hist", "", "filename for coverage histogram image (png, svg or pdf).")
	flag.IntVar(&o.bins, "bins", 20, "number of histogram bins.")
	flag.BoolVar(&o.progress, "progress", false, "print progress to stderr.")
	help := flag.Bool("help", false, "help prints this message.")

	flag.Parse()
	if *help {
		flag.Usage()
		os.Exit(0)
	}
	if o.hits == "" {
		flag.Usage()
		os.Exit(2)
	}

	log.SetFlags(0)
	err := run(o, log.New(os.Stderr, "", 0))
	if err != nil {
		log.Fatalf("covfilter: %v", err)
	}
}

func run(o options, l *log.Logger) error {
	delim, err := blast.ParseDelimiter(o.delim)
	if err != nil {
		return err
	}
	format, err := blast.ParseFormat(o.format)
	if err != nil {
		return err
	}
	if o.width < 1 {
		return fmt.Errorf("invalid line width %d", o.width)
	}
	cfg := blast.Config{Format: format, Delimiter: delim, Target: o.target}
	err = cfg.Validate()
	if err != nil {
		return err
	}
	f := coverage.Filter{
		Threshold:  o.threshold,
		Comparator: o.condition,
		Missing:    o.missing,
	}
	err = f.Validate()
	if err != nil {
		return err
	}

	l.Printf("reading %s hits from %q.", o.target, o.hits)
	f.Index, err = coverage.ReadIndex(o.hits, cfg)
	if err != nil {
		return fmt.Errorf("failed to read hits: %w", err)
	}
	l.Printf("found hits for %d sequences.", len(f.Index))

	var in io.Reader
	if o.in == "" {
		l.Print("reading sequences from stdin.")
		in = os.Stdin
	} else {
		inf, err := os.Open(o.in)
		if err != nil {
			return err
		}
		defer inf.Close()
		l.Printf("reading sequences from %q.", o.in)
		in = inf
	}

	var p *progress
	if o.progress {
		total := -1
		if o.in != "" {
			total, err = countRecords(o.in)
			if err != nil {
				return err
			}
		}
		p = newProgress(os.Stderr, total)
	}

	var out io.Writer
	if o.out == "" {
		out = os.Stdout
	} else {
		of, err := os.Create(o.out)
		if err != nil {
			return err
		}
		defer of.Close()
		l.Printf("writing sequences to %q.", o.out)
		out = of
	}
	buf := bufio.NewWriter(out)

	var rep *coverage.ReportWriter
	if o.report != "" {
		rf, err := os.Create(o.report)
		if err != nil {
			return err
		}
		defer rf.Close()
		rep = coverage.NewReportWriter(rf)
	}

	r := fasta.NewReader(in, linear.NewSeq("", nil, alphabet.DNA))
	w := fasta.NewWriter(buf, o.width)
	var repErr error
	st, err := f.Run(r, w, func(d coverage.Decision) {
		p.step()
		if d.Reason == coverage.EmptySequence {
			p.clear()
			l.Printf("warning: %q has no sequence: dropped.", d.ID)
		}
		if rep != nil && repErr == nil {
			repErr = rep.Write(d)
		}
	})
	p.finish()
	if err != nil {
		return err
	}
	err = buf.Flush()
	if err != nil {
		return err
	}

	if rep != nil {
		if repErr == nil {
			repErr = rep.Flush()
		}
		if repErr != nil {
			return fmt.Errorf("failed to write report: %w", repErr)
		}
	}
	if o.hist != "" {
		err = coverage.Histogram(o.hist, st.Percents, o.bins)
		if err != nil {
			return fmt.Errorf("failed to write histogram: %w", err)
		}
	}
	l.Print(coverage.Summarize(st))
	return nil
}
