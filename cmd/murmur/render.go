package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"murmur/internal/queue"
)

// renderItemsTable lays out queue items with per-status row coloring when
// stdout is a terminal.
func renderItemsTable(items []*queue.Item) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"ID", "Title", "Status", "Progress", "Updated"})
	for _, item := range items {
		tw.AppendRow(table.Row{
			strconv.FormatInt(item.ID, 10),
			item.Title(),
			string(item.Status),
			formatProgress(item),
			humanize.Time(item.UpdatedAt),
		})
	}
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignRight, AlignHeader: text.AlignLeft},
		{Number: 4, Align: text.AlignRight, AlignHeader: text.AlignLeft},
	})
	if isatty.IsTerminal(os.Stdout.Fd()) {
		tw.SetRowPainter(func(row table.Row) text.Colors {
			if len(row) < 3 {
				return nil
			}
			switch fmt.Sprint(row[2]) {
			case string(queue.StatusFailed):
				return text.Colors{text.FgRed}
			case string(queue.StatusCompleted):
				return text.Colors{text.FgGreen}
			case string(queue.StatusTranscribing):
				return text.Colors{text.FgCyan}
			default:
				return nil
			}
		})
	}
	return tw.Render()
}

// renderHealthTable lays out the per-status queue counts.
func renderHealthTable(summary queue.HealthSummary) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"Status", "Count"})
	tw.AppendRows([]table.Row{
		{string(queue.StatusPending), summary.Pending},
		{string(queue.StatusTranscribing), summary.Transcribing},
		{string(queue.StatusCompleted), summary.Completed},
		{string(queue.StatusFailed), summary.Failed},
	})
	tw.AppendFooter(table.Row{"total", summary.Total})
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, Align: text.AlignRight, AlignHeader: text.AlignLeft, AlignFooter: text.AlignRight},
	})
	return tw.Render()
}

// formatProgress condenses an item's progress column: a percentage while work
// is under way, the failure reason once it is not.
func formatProgress(item *queue.Item) string {
	switch item.Status {
	case queue.StatusFailed:
		reason := strings.TrimSpace(item.ErrorMessage)
		if reason == "" {
			return "failed"
		}
		if len(reason) > 40 {
			reason = reason[:37] + "..."
		}
		return reason
	case queue.StatusCompleted:
		return "100%"
	default:
		return fmt.Sprintf("%.0f%%", item.ProgressPercent)
	}
}

// writeJSON emits v as indented JSON on the command's stdout. Escaping is left
// off so transcript and source paths survive round-trips through shell
// pipelines unmangled.
func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
