package main

import (
	"io"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mattn/go-isatty"

	"photosort/internal/sorter"
)

type columnAlignment int

const (
	alignLeft columnAlignment = iota
	alignRight
)

// renderTable draws rounded box characters on a terminal and plain ASCII
// everywhere else so redirected output stays greppable.
func renderTable(w io.Writer, headers []string, rows [][]string, aligns []columnAlignment) string {
	columns := len(headers)
	if columns == 0 {
		return ""
	}

	tw := table.NewWriter()
	if isTerminal(w) {
		tw.SetStyle(table.StyleRounded)
	} else {
		tw.SetStyle(table.StyleDefault)
	}

	header := make(table.Row, columns)
	for i := 0; i < columns; i++ {
		header[i] = headers[i]
	}
	tw.AppendHeader(header)

	for _, row := range rows {
		r := make(table.Row, columns)
		for i := 0; i < columns; i++ {
			if i < len(row) {
				r[i] = row[i]
			} else {
				r[i] = ""
			}
		}
		tw.AppendRow(r)
	}

	columnConfigs := make([]table.ColumnConfig, 0, columns)
	for i := 0; i < columns; i++ {
		align := text.AlignLeft
		if i < len(aligns) && aligns[i] == alignRight {
			align = text.AlignRight
		}
		columnConfigs = append(columnConfigs, table.ColumnConfig{
			Number:      i + 1,
			Align:       align,
			AlignHeader: text.AlignLeft,
		})
	}
	tw.SetColumnConfigs(columnConfigs)

	return tw.Render()
}

func isTerminal(w io.Writer) bool {
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// renderSummary lists the counters of a finished run.
func renderSummary(w io.Writer, res sorter.Result) string {
	count := func(n int) string { return humanize.Comma(int64(n)) }
	rows := [][]string{
		{"Files routed", count(res.Routed)},
		{"Already present", count(res.SkippedExisting)},
		{"Events", count(res.Events)},
		{"Images dated", count(res.Dated)},
		{"Captured today", count(res.Bypassed)},
		{"Unreadable metadata", count(res.Unknown)},
		{"Bucketed", count(res.Bucketed)},
		{"Not bucketed", count(len(res.Unmatched))},
		{"Folders split", count(res.SplitFolders)},
		{"Duplicates deleted", count(len(res.Duplicates))},
		{"Empty folders removed", count(res.RemovedEmptyDir)},
	}
	if res.ManifestAdded > 0 {
		rows = append(rows, []string{"Manifest rows added", count(res.ManifestAdded)})
	}
	return renderTable(w, []string{"Run " + shortID(res.RunID), "Count"}, rows, []columnAlignment{alignLeft, alignRight})
}

// renderDetails lists every deleted duplicate and unmatched remainder file,
// or returns "" when there are none.
func renderDetails(w io.Writer, res sorter.Result) string {
	var rows [][]string
	for _, d := range res.Duplicates {
		rows = append(rows, []string{"duplicate deleted", d.Source, "kept " + d.Existing})
	}
	for _, u := range res.Unmatched {
		rows = append(rows, []string{"not bucketed", u.Path, u.Reason})
	}
	if len(rows) == 0 {
		return ""
	}
	return renderTable(w, []string{"Outcome", "File", "Detail"}, rows, nil)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
