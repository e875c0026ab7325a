package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/okian/devilmatch/internal/adapters/tabular"
	"github.com/okian/devilmatch/internal/sampledata"
	"github.com/spf13/cobra"
)

func newGenerateCommand() *cobra.Command {
	cfg := sampledata.DefaultConfig()
	var out string

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Write a synthetic results file",
		Long: `Generate a deterministic results file with every recognised column.
The format follows the extension of --out (.xlsx or .csv).`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			format, err := tabular.FormatFromName(out)
			if err != nil {
				return err
			}
			ds, err := sampledata.Generate(cfg)
			if err != nil {
				return err
			}
			if dir := filepath.Dir(out); dir != "." {
				if err := os.MkdirAll(dir, 0o755); err != nil {
					return fmt.Errorf("create %s: %w", dir, err)
				}
			}
			f, err := os.Create(out)
			if err != nil {
				return fmt.Errorf("create %s: %w", out, err)
			}
			defer f.Close()

			switch format {
			case tabular.FormatCSV:
				err = tabular.WriteCSV(f, ds, true)
			default:
				err = tabular.WriteXLSX(f, ds)
			}
			if err != nil {
				return err
			}
			if err := f.Close(); err != nil {
				return fmt.Errorf("close %s: %w", out, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %d rows (%d matches, %d players) to %s\n",
				ds.Len(), cfg.Matches, cfg.Players, out)
			return nil
		},
	}
	cmd.Flags().IntVar(&cfg.Players, "players", cfg.Players, "number of distinct players")
	cmd.Flags().IntVar(&cfg.Matches, "matches", cfg.Matches, "number of matches")
	cmd.Flags().IntVar(&cfg.Days, "days", cfg.Days, "number of days the matches span")
	cmd.Flags().Int64Var(&cfg.Seed, "seed", cfg.Seed, "random seed")
	cmd.Flags().StringVarP(&out, "out", "o", "data/dayresult_demo.xlsx", "output file (.xlsx or .csv)")
	return cmd
}
