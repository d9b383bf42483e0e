package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"prioq/internal/workload"
)

func newGenCmd(a *app) *cobra.Command {
	var (
		count  int
		seed   int64
		out    string
		format string
	)

	cmd := &cobra.Command{
		Use:   "gen",
		Short: "Generate a random workload",
		Long: `Generate a random workload from the generator section of the config.
The same seed always produces the same workload.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			g := a.cfg.Generator
			if cmd.Flags().Changed("count") {
				if count <= 0 {
					return fmt.Errorf("--count must be positive, got %d", count)
				}
				g.Count = count
			}
			if cmd.Flags().Changed("seed") {
				g.Seed = seed
			}

			f := workload.Format(format)
			if out != "" && !cmd.Flags().Changed("format") {
				var err error
				if f, err = workload.FormatFor(out); err != nil {
					return err
				}
			}

			var w io.Writer = cmd.OutOrStdout()
			if out != "" {
				file, err := os.Create(out)
				if err != nil {
					return fmt.Errorf("create workload: %w", err)
				}
				defer file.Close()
				w = file
			}
			return workload.Encode(w, workload.Generate(g), f)
		},
	}

	cmd.Flags().IntVarP(&count, "count", "n", 0, "number of tasks (overrides config)")
	cmd.Flags().Int64Var(&seed, "seed", 0, "random seed (overrides config)")
	cmd.Flags().StringVar(&out, "out", "", "output file (default stdout)")
	cmd.Flags().StringVar(&format, "format", string(workload.FormatYAML), "yaml | toml (default from --out extension)")
	return cmd
}
