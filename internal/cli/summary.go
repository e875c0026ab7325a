package cli

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/okian/devilmatch/internal/adapters/repository"
	"github.com/okian/devilmatch/internal/adapters/tabular"
	"github.com/okian/devilmatch/internal/domain/aggregate"
	"github.com/okian/devilmatch/internal/domain/filter"
	"github.com/okian/devilmatch/internal/domain/model"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	"github.com/spf13/cobra"
)

func newSummaryCommand() *cobra.Command {
	var (
		dataDir string
		scope   filter.DateScope
	)
	cmd := &cobra.Command{
		Use:   "summary [file]",
		Short: "Summarise a results file",
		Long: `Print the headline figures, rank distribution, hourly activity and
comeback statistics of a results file. Without a file argument the newest
file in --data-dir is used, the same one the dashboard would serve.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ds, err := loadDataset(cmd, dataDir, args)
			if err != nil {
				return err
			}
			writeSummary(cmd.OutOrStdout(), ds.Source, filter.Scope(ds, scope))
			return nil
		},
	}
	cmd.Flags().StringVar(&dataDir, "data-dir", "data", "directory scanned when no file is given")
	cmd.Flags().StringVar(&scope.From, "from", "", "first date to include (YYYY-MM-DD)")
	cmd.Flags().StringVar(&scope.To, "to", "", "last date to include (YYYY-MM-DD)")
	return cmd
}

func loadDataset(cmd *cobra.Command, dataDir string, args []string) (*model.Dataset, error) {
	if len(args) == 0 {
		return repository.NewFileStore(dataDir).Load(cmd.Context())
	}
	format, err := tabular.FormatFromName(args[0])
	if err != nil {
		return nil, err
	}
	f, err := os.Open(args[0])
	if err != nil {
		return nil, err
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		return nil, err
	}
	return tabular.Parse(f, format, args[0], info.ModTime())
}

func newTable(w io.Writer) *tablewriter.Table {
	return tablewriter.NewTable(w, tablewriter.WithConfig(tablewriter.Config{
		Row:    tw.CellConfig{Alignment: tw.CellAlignment{Global: tw.AlignRight}},
		Header: tw.CellConfig{Alignment: tw.CellAlignment{Global: tw.AlignCenter}},
	}))
}

func writeSummary(w io.Writer, source string, ds *model.Dataset) {
	s := aggregate.Summarize(ds)
	fmt.Fprintf(w, "\n=== %s ===\n\n", source)
	if s.Rows == 0 {
		fmt.Fprintln(w, "  no rows in range")
		return
	}
	fmt.Fprintf(w, "  Rows      : %d\n", s.Rows)
	fmt.Fprintf(w, "  Players   : %d\n", s.Players)
	fmt.Fprintf(w, "  Matches   : %d\n", s.Matches)
	fmt.Fprintf(w, "  Win rate  : %.1f%% (%s)\n", s.WinRate, s.Balance)
	fmt.Fprintf(w, "  Duration  : mean %.0fs, min %.0fs, max %.0fs\n", s.MeanDuration, s.MinDuration, s.MaxDuration)
	if s.MeanKDA != nil {
		fmt.Fprintf(w, "  Mean KDA  : %.2f\n", *s.MeanKDA)
	}
	fmt.Fprintf(w, "  Period    : %s -> %s\n", s.FirstEnd.Format("2006-01-02 15:04"), s.LastEnd.Format("2006-01-02 15:04"))

	if ranks := aggregate.RankDistribution(ds); len(ranks) > 0 {
		fmt.Fprintf(w, "\n--- Ranks ---\n\n")
		t := newTable(w)
		t.Header("RANK", "PLAYERS")
		for _, r := range ranks {
			_ = t.Append(r.Name, strconv.Itoa(r.Count))
		}
		_ = t.Render()
	}

	fmt.Fprintf(w, "\n--- Matches by hour ---\n\n")
	t := newTable(w)
	t.Header("HOUR", "MATCHES")
	for _, h := range aggregate.HourlyMatchCounts(ds) {
		_ = t.Append(fmt.Sprintf("%02d", h.Hour), strconv.Itoa(h.Matches))
	}
	_ = t.Render()

	c := aggregate.Comebacks(ds)
	fmt.Fprintf(w, "\n--- Comebacks ---\n\n")
	ct := newTable(w)
	ct.Header("MATCHES", "RATE", "MEAN DURATION", "NORMAL DURATION", "DELTA")
	_ = ct.Append(
		fmt.Sprintf("%d/%d", c.ComebackMatches, c.TotalMatches),
		fmt.Sprintf("%.1f%%", c.ComebackRate),
		fmt.Sprintf("%.0fs", c.MeanDurationComeback),
		fmt.Sprintf("%.0fs", c.MeanDurationNormal),
		fmt.Sprintf("%+.0fs", c.DurationDelta),
	)
	_ = ct.Render()
}
