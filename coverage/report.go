// Copyright ©2018 The bíogo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package coverage

import (
	"fmt"
	"io"
	"sort"
	"text/tabwriter"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// ReportWriter writes a table of filter decisions.
type ReportWriter struct {
	tw  *tabwriter.Writer
	err error
}

// NewReportWriter returns a ReportWriter that writes to w. The table
// header is written immediately.
func NewReportWriter(w io.Writer) *ReportWriter {
	rw := &ReportWriter{tw: tabwriter.NewWriter(w, 0, 0, 1, ' ', 0)}
	_, rw.err = fmt.Fprintln(rw.tw, "id\tlength\tcovered\tcoverage(%)\tkept")
	return rw
}

// Write writes a row for d. Sequences dropped without evaluation have
// their reason in place of the coverage percentage.
func (rw *ReportWriter) Write(d Decision) error {
	if rw.err != nil {
		return rw.err
	}
	pct := d.Reason
	if d.Evaluated() {
		pct = fmt.Sprintf("%.2f", d.Percent)
	}
	_, rw.err = fmt.Fprintf(rw.tw, "%s\t%d\t%d\t%s\t%t\n", d.ID, d.Len, d.Covered, pct, d.Keep)
	return rw.err
}

// Flush flushes the table to the underlying writer.
func (rw *ReportWriter) Flush() error {
	if rw.err != nil {
		return rw.err
	}
	return rw.tw.Flush()
}

// Summary holds summary statistics of a filter run.
type Summary struct {
	Read, Kept, Missing, Empty int

	// Mean and Median are the mean and median coverage percentage
	// of evaluated sequences. They are zero if no sequence was
	// evaluated.
	Mean, Median float64
}

// Summarize returns the summary statistics for st.
func Summarize(st Stats) Summary {
	s := Summary{Read: st.Read, Kept: st.Kept, Missing: st.Missing, Empty: st.Empty}
	if len(st.Percents) == 0 {
		return s
	}
	s.Mean = stat.Mean(st.Percents, nil)
	sorted := append([]float64(nil), st.Percents...)
	sort.Float64s(sorted)
	s.Median = stat.Quantile(0.5, stat.Empirical, sorted, nil)
	return s
}

func (s Summary) String() string {
	return fmt.Sprintf("kept %d of %d sequences (%d without hits, %d empty); mean coverage %.2f%%, median %.2f%%",
		s.Kept, s.Read, s.Missing, s.Empty, s.Mean, s.Median)
}

// Histogram renders a histogram of the coverage percentages to the file
// named by path using the given number of bins. The image format is
// chosen by the file extension.
func Histogram(path string, percents []float64, bins int) error {
	if len(percents) == 0 {
		return fmt.Errorf("coverage: no coverage values to plot")
	}
	h, err := plotter.NewHist(plotter.Values(percents), bins)
	if err != nil {
		return err
	}
	p := plot.New()
	p.Title.Text = "Hit coverage"
	p.X.Label.Text = "coverage (%)"
	p.Y.Label.Text = "sequences"
	p.Add(h)
	return p.Save(6*vg.Inch, 4*vg.Inch, path)
}
