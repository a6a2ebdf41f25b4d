package main

import (
	"fmt"
	"io"

	"opp/internal/driver"
)

// printFileTimings prints the phase breakdown of every analysed file.
func printFileTimings(out io.Writer, results []*driver.FileResult) {
	var total float64
	for _, r := range results {
		if r.Timings == nil {
			continue
		}
		report := r.Timings.Report()
		total += report.TotalMS
		if len(results) > 1 {
			fmt.Fprintf(out, "%s:\n", r.Path)
		}
		fmt.Fprint(out, r.Timings.Summary())
	}
	if len(results) > 1 {
		fmt.Fprintf(out, "checked %d file(s) in %.1f ms\n", len(results), total)
	}
}
