package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"reelsmith/internal/queue"
)

const lastErrorWidth = 60

var folderStatusColors = map[queue.Status]text.Colors{
	queue.StatusPending:    {text.FgBlue},
	queue.StatusProcessing: {text.FgYellow},
	queue.StatusDone:       {text.FgGreen},
	queue.StatusFailed:     {text.FgRed},
}

// writeFolders prints a table on a terminal and tab-separated rows otherwise,
// so scripts can cut columns without parsing box drawing.
func writeFolders(out io.Writer, records []*queue.Record, interactive bool) {
	if !interactive {
		for _, rec := range records {
			fmt.Fprintln(out, strings.Join(folderRow(rec), "\t"))
		}
		return
	}
	fmt.Fprintln(out, renderFolderTable(records))
}

func folderRow(rec *queue.Record) []string {
	return []string{
		rec.FolderID,
		string(rec.Status),
		strconv.Itoa(rec.Attempts),
		rec.LastStage,
		truncate(rec.LastError, lastErrorWidth),
		rec.UpdatedAt.Local().Format(time.DateTime),
	}
}

func renderFolderTable(records []*queue.Record) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"Folder", "Status", "Attempts", "Stage", "Last error", "Updated"})
	for _, rec := range records {
		row := folderRow(rec)
		tw.AppendRow(table.Row{row[0], row[1], rec.Attempts, row[3], row[4], row[5]})
	}
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Name: "Status", Transformer: colorFolderStatus},
		{Name: "Attempts", Align: text.AlignRight, AlignHeader: text.AlignLeft},
		{Name: "Last error", WidthMax: lastErrorWidth, WidthMaxEnforcer: text.Trim},
	})
	return tw.Render()
}

func colorFolderStatus(val interface{}) string {
	s := fmt.Sprint(val)
	if colors, ok := folderStatusColors[queue.Status(s)]; ok {
		return colors.Sprint(s)
	}
	return s
}

// truncate flattens s to one line of at most n runes.
func truncate(s string, n int) string {
	s = strings.ReplaceAll(strings.TrimSpace(s), "\n", " ")
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-3]) + "..."
}
