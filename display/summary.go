package display

import (
	"fmt"
	"io"
	"strings"

	"github.com/pterm/pterm"

	"github.com/teranos/pxdgen/batch"
	"github.com/teranos/pxdgen/typegen"
)

// Outcomes prints a table of generated files and a one-line total.
func Outcomes(w io.Writer, outcomes []batch.Outcome) error {
	data := pterm.TableData{{"Output", "Layout", "Status", "Time"}}
	written := 0
	for _, o := range outcomes {
		layout := "ordered"
		if o.Phased {
			layout = "phased"
		}
		status := "written"
		switch {
		case o.Unchanged:
			status = "unchanged"
		case o.Cached:
			status = "written (cached)"
		}
		if !o.Unchanged {
			written++
		}
		data = append(data, []string{o.Output, layout, status, fmt.Sprintf("%dms", o.DurationMS)})
	}

	table, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
	if err != nil {
		return err
	}
	fmt.Fprintln(w, table)
	fmt.Fprintln(w, pterm.Success.Sprintf("%d of %d file(s) written", written, len(outcomes)))

	for _, o := range outcomes {
		if len(o.InnerCycles) > 0 {
			fmt.Fprintln(w, pterm.Warning.Sprintf("%s: struct bodies left in index order: %s",
				o.Output, strings.Join(o.InnerCycles, ", ")))
		}
	}
	return nil
}

// Check prints the result of a check run.
func Check(w io.Writer, res *typegen.CheckResult) {
	if res.UpToDate {
		fmt.Fprintln(w, pterm.Success.Sprint("Generated files are up to date"))
		return
	}
	fmt.Fprintln(w, pterm.Error.Sprint("Generated files are out of date:"))
	for _, d := range res.Differences {
		fmt.Fprintf(w, "  - %s\n", d)
	}
}
