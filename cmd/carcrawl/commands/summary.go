package commands

import (
	"io"
	"time"

	"carcrawl/internal/services/crawl/domain"

	"github.com/jedib0t/go-pretty/v6/table"
)

// renderSummary prints one row per task and the run total
func renderSummary(w io.Writer, sum domain.RunSummary) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	if sum.RunID != "" {
		t.SetTitle("run " + sum.RunID)
	}
	t.AppendHeader(table.Row{"Task", "Partition", "Mode", "Existing", "Pages", "Items", "New", "Skipped", "Stop", "Elapsed", "Error"})
	for _, ts := range sum.Tasks {
		errText := ""
		if ts.Err != nil {
			errText = ts.Err.Error()
		}
		t.AppendRow(table.Row{
			ts.Task.Label(), ts.Partition, string(ts.Mode),
			ts.Existing, ts.Pages, ts.Seen, ts.New, ts.Skipped,
			string(ts.Stop), ts.Elapsed.Round(10*time.Millisecond).String(), errText,
		})
	}
	t.AppendFooter(table.Row{"", "", "", "", "", "", sum.NewRows(), "", "", "", ""})
	t.SetStyle(table.StyleRounded)
	t.Render()
}
