package commands

import (
	"fmt"
	"io"
	"strconv"

	"carcrawl/internal/adapters/ingest/upstream"
	"carcrawl/internal/core/listing"
	"carcrawl/internal/modkit/module"
	"carcrawl/internal/services/crawl/domain"
	"carcrawl/internal/services/crawl/ingest"
	crawlmod "carcrawl/internal/services/crawl/module"
	"carcrawl/internal/services/crawl/plan"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var (
	probePage   int
	probeConfig string
)

func init() {
	probeCmd.Flags().IntVar(&probePage, "page", 1, "Page to fetch")
	probeCmd.Flags().StringVar(&probeConfig, "config", "", "Optional task plan to take the year and price filters from")
	rootCmd.AddCommand(probeCmd)
}

var probeCmd = &cobra.Command{
	Use:   "probe BRAND KIND [--page N]",
	Short: "Fetches one page and shows how the response is understood. Nothing is written.",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		filters := domain.Filters{YearRange: plan.DefaultYearRange, PriceRange: plan.DefaultPriceRange}
		if probeConfig != "" {
			p, err := plan.Load(probeConfig)
			if err != nil {
				return err
			}
			filters = p.Filters
		}
		opts.Filters = filters
		opts.Store = crawlmod.StoreCSV

		deps, closeDeps, err := openDeps(ctx, opts)
		if err != nil {
			return err
		}
		defer closeDeps()

		m, err := crawlmod.Builder(ctx, opts)(deps)
		if err != nil {
			return err
		}
		runner := module.MustPortsOf[domain.RunnerPort](m)

		req := domain.PageRequest{Task: domain.Task{Brand: args[0], Kind: args[1], Enabled: true}, Filters: filters, Page: probePage}
		rep, err := runner.Probe(ctx, req)
		if err != nil {
			return err
		}
		renderProbe(cmd.OutOrStdout(), opts.BaseURL, rep)
		return nil
	},
}

func renderProbe(w io.Writer, base string, rep domain.ProbeReport) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetTitle("Probe")
	t.AppendRows([]table.Row{
		{"URL", ingest.Query(rep.Request).URL(orDefault(base))},
		{"Shape", rep.Shape.Kind},
		{"Top keys", fmt.Sprint(rep.Shape.TopKeys)},
		{"Data keys", fmt.Sprint(rep.Shape.DataKeys)},
		{"Matched path", orDash(rep.Path)},
		{"Records", strconv.Itoa(rep.Count)},
	})
	t.SetStyle(table.StyleRounded)
	t.Render()

	if rep.Count == 0 {
		fmt.Fprintln(w, "No items found in response.")
		return
	}

	if len(rep.Fields) > 0 {
		ft := table.NewWriter()
		ft.SetOutputMirror(w)
		ft.SetTitle("Text cleaning")
		ft.AppendHeader(table.Row{"Field", "Raw", "Cleaned"})
		for _, f := range rep.Fields {
			ft.AppendRow(table.Row{f.Key, strconv.Quote(f.Raw), strconv.Quote(f.Cleaned)})
		}
		ft.SetStyle(table.StyleRounded)
		ft.Render()
	}

	if rep.Normalized != nil {
		nt := table.NewWriter()
		nt.SetOutputMirror(w)
		nt.SetTitle("Normalized")
		row := rep.Normalized.Row()
		for i, col := range listing.Columns {
			nt.AppendRow(table.Row{col, row[i]})
		}
		nt.SetStyle(table.StyleRounded)
		nt.Render()
	}

	fmt.Fprintf(w, "Sample item:\n%s\n", rep.First)
}

func orDefault(base string) string {
	if base == "" {
		return upstream.DefaultBaseURL
	}
	return base
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
