package main

import (
	"fmt"
	"strings"

	"discscore/adapters/excel"
	"discscore/app"
	"discscore/domain/discrepancy"
	"discscore/domain/resampling"

	"github.com/spf13/cobra"
)

// pairFlags selects a paired series from a sheet or from inline lists
type pairFlags struct {
	file      string
	sheet     string
	subColumn string
	supColumn string
	sub       string
	sup       string
	method    string
}

func (p *pairFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&p.file, "file", "", "CSV or XLSX file holding both series")
	cmd.Flags().StringVar(&p.sheet, "sheet", "", "Worksheet name (xlsx only)")
	cmd.Flags().StringVar(&p.subColumn, "sub-column", "subordinate", "Column with the subordinate readings")
	cmd.Flags().StringVar(&p.supColumn, "sup-column", "supervisor", "Column with the supervisor readings")
	cmd.Flags().StringVar(&p.sub, "sub", "", "Comma-separated subordinate values")
	cmd.Flags().StringVar(&p.sup, "sup", "", "Comma-separated supervisor values")
	cmd.Flags().StringVarP(&p.method, "method", "m", string(discrepancy.MethodPercentDifference),
		"percent_difference|absolute_difference|absolute_percent_difference|simple_difference|percent_non_match")
}

func (p *pairFlags) load() (sub, sup discrepancy.Series, method discrepancy.Method, err error) {
	method, err = discrepancy.ParseMethod(p.method)
	if err != nil {
		return nil, nil, "", err
	}
	switch {
	case p.file != "":
		sub, sup, err = excel.ReadPair(excel.PairConfig{
			FilePath:  p.file,
			Sheet:     p.sheet,
			SubColumn: p.subColumn,
			SupColumn: p.supColumn,
		})
		return sub, sup, method, err
	case p.sub != "" && p.sup != "":
		return discrepancy.Parse(splitList(p.sub)), discrepancy.Parse(splitList(p.sup)), method, nil
	default:
		return nil, nil, "", fmt.Errorf("either --file or both --sub and --sup are required")
	}
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

func newScoreCmd() *cobra.Command {
	var pair pairFlags

	cmd := &cobra.Command{
		Use:   "score",
		Short: "Compute the discrepancy score of a paired series",
		Long: `Compute one discrepancy score between subordinate and supervisor readings.

Example: discscore-cli score --sub 110,90 --sup 100,100 -m absolute_percent_difference
         discscore-cli score --file audit.xlsx --sub-column field --sup-column backcheck`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sub, sup, method, err := pair.load()
			if err != nil {
				return err
			}
			c, err := loadContainer(cmd, false)
			if err != nil {
				return err
			}
			defer closeContainer(c)

			score, err := c.Discrepancy.Score(cmd.Context(), sub, sup, method)
			if err != nil {
				return err
			}
			if done, err := printJSON(cmd, score); done {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s over %d pairs: %.6g\n", score.Method, score.N, score.Value)
			return nil
		},
	}
	pair.register(cmd)
	return cmd
}

func newResampleCmd(mode, short string) *cobra.Command {
	var pair pairFlags
	var iterations, bins int
	var seed uint64

	cmd := &cobra.Command{
		Use:   mode,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sub, sup, method, err := pair.load()
			if err != nil {
				return err
			}
			c, err := loadContainer(cmd, false)
			if err != nil {
				return err
			}
			defer closeContainer(c)

			req := app.ResampleRequest{
				Subordinate: sub,
				Supervisor:  sup,
				Method:      method,
				Iterations:  iterations,
				Seed:        seed,
				Bins:        bins,
			}
			run := c.Discrepancy.Bootstrap
			if resampling.Mode(mode) == resampling.ModeShuffle {
				run = c.Discrepancy.Shuffle
			}
			out, err := run(cmd.Context(), req)
			if err != nil {
				return err
			}
			out.Distribution.Scores = nil
			if done, err := printJSON(cmd, out); done {
				return err
			}
			printResample(cmd, out)
			return nil
		},
	}
	pair.register(cmd)
	cmd.Flags().IntVarP(&iterations, "iterations", "n", 0, "Resampling iterations (default RESAMPLE_ITERATIONS)")
	cmd.Flags().Uint64Var(&seed, "seed", 0, "Random seed; 0 uses SEED or a fresh seed")
	cmd.Flags().IntVar(&bins, "bins", app.DefaultHistogramBins, "Histogram bins")
	return cmd
}

func printResample(cmd *cobra.Command, out *app.ResampleOutcome) {
	w := cmd.OutOrStdout()
	d := out.Distribution
	fmt.Fprintf(w, "%s %s: real %.6g over %d iterations (seed %d)\n", d.Mode, d.Method, d.Real, d.Iterations, d.Seed)
	if s := out.Summary; s != nil {
		fmt.Fprintf(w, "  mean %.6g  sd %.6g  p05 %.6g  median %.6g  p95 %.6g\n", s.Mean, s.StdDev, s.P05, s.P50, s.P95)
	}
	if sig := out.Significance; sig != nil {
		fmt.Fprintf(w, "  p-value %.4f (upper tail %.4f)\n", sig.PValue, sig.UpperPValue)
	}
	if out.RunID != "" {
		fmt.Fprintf(w, "  recorded as %s\n", out.RunID)
	}
}
