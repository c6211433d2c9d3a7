package main

import (
	"fmt"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"newsctl/internal/runner"
)

type columnAlignment int

const (
	alignLeft columnAlignment = iota
	alignRight
)

func renderTable(headers []string, rows [][]string, aligns []columnAlignment) string {
	columns := len(headers)
	if columns == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)

	header := make(table.Row, columns)
	for i, h := range headers {
		header[i] = h
	}
	tw.AppendHeader(header)

	for _, row := range rows {
		r := make(table.Row, columns)
		for i := range r {
			if i < len(row) {
				r[i] = row[i]
			} else {
				r[i] = ""
			}
		}
		tw.AppendRow(r)
	}

	configs := make([]table.ColumnConfig, 0, columns)
	for i := range columns {
		align := text.AlignLeft
		if i < len(aligns) && aligns[i] == alignRight {
			align = text.AlignRight
		}
		configs = append(configs, table.ColumnConfig{
			Number:      i + 1,
			Align:       align,
			AlignHeader: text.AlignLeft,
		})
	}
	tw.SetColumnConfigs(configs)

	return tw.Render()
}

// renderStepSummary lists each step that ran. A failing step that produced
// no result, such as a refused SSH connection, still gets a row.
func renderStepSummary(results []runner.StepResult, failed string) string {
	rows := make([][]string, 0, len(results)+1)
	seenFailed := false
	for _, r := range results {
		status := "ok"
		if r.Step == failed {
			status = "failed"
			seenFailed = true
		}
		rows = append(rows, []string{r.Step, fmt.Sprintf("%d", r.ExitCode), r.Duration.Round(time.Millisecond).String(), status})
	}
	if failed != "" && !seenFailed {
		rows = append(rows, []string{failed, "-", "-", "failed"})
	}
	return renderTable(
		[]string{"Step", "Exit", "Duration", "Status"},
		rows,
		[]columnAlignment{alignLeft, alignRight, alignRight, alignLeft},
	)
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
