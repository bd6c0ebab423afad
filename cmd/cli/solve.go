package main

import (
	"fmt"
	"os"

	"discscore/app"
	"discscore/domain/samplesize"
	"discscore/internal/report"

	"github.com/spf13/cobra"
)

func newSolveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "solve",
		Short: "Find the number of back-check samples an audit needs",
	}
	cmd.AddCommand(newSolveSingleCmd(), newSolveDualCmd(), newSimulateCmd(), newBatchCmd())
	return cmd
}

func newSolveSingleCmd() *cobra.Command {
	q := samplesize.DefaultSingleQuery(samplesize.DefaultRedThreshold)

	cmd := &cobra.Command{
		Use:   "single",
		Short: "Samples needed to flag a rater just above one threshold",
		Long: `Binary search for the smallest n at which a rater whose true discrepancy
is threshold+accuracy is classified red with the target confidence.

Example: discscore-cli solve single --threshold 0.7 --accuracy 0.02 --confidence 0.9`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := loadContainer(cmd, false)
			if err != nil {
				return err
			}
			defer closeContainer(c)

			out, err := c.SampleSize.SolveSingle(cmd.Context(), q)
			if err != nil {
				return explain(err)
			}
			if done, err := printJSON(cmd, out); done {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d samples (red confidence %.5f after %d steps)\n", out.Result.N, out.Result.PRed, out.Result.Steps)
			return nil
		},
	}
	cmd.Flags().Float64Var(&q.Threshold, "threshold", q.Threshold, "Red threshold")
	registerSearchFlags(cmd, &q.Accuracy, &q.Confidence, &q.Tolerance, &q.NLow, &q.NHigh)
	return cmd
}

func newSolveDualCmd() *cobra.Command {
	q := samplesize.DefaultDualQuery()
	var htmlOut string

	cmd := &cobra.Command{
		Use:   "dual",
		Short: "Samples needed to separate green and red raters",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := loadContainer(cmd, false)
			if err != nil {
				return err
			}
			defer closeContainer(c)

			out, err := c.SampleSize.SolveDual(cmd.Context(), q)
			if err != nil {
				return explain(err)
			}
			if htmlOut != "" {
				if err := os.WriteFile(htmlOut, report.DualHTML(*out.Bands), 0o644); err != nil {
					return fmt.Errorf("failed to write report: %w", err)
				}
			}
			if done, err := printJSON(cmd, out); done {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), report.DualMarkdown(*out.Bands))
			return nil
		},
	}
	cmd.Flags().Float64Var(&q.GreenThreshold, "t-green", q.GreenThreshold, "Green threshold")
	cmd.Flags().Float64Var(&q.RedThreshold, "t-red", q.RedThreshold, "Red threshold")
	registerSearchFlags(cmd, &q.Accuracy, &q.Confidence, &q.Tolerance, &q.NLow, &q.NHigh)
	cmd.Flags().StringVar(&htmlOut, "html", "", "Also write an HTML report to this path")
	return cmd
}

func registerSearchFlags(cmd *cobra.Command, accuracy, confidence, tolerance *float64, nLow, nHigh *int) {
	cmd.Flags().Float64Var(accuracy, "accuracy", *accuracy, "Distance from the threshold that must be resolved")
	cmd.Flags().Float64Var(confidence, "confidence", *confidence, "Target classification confidence")
	cmd.Flags().Float64Var(tolerance, "tolerance", *tolerance, "Accepted confidence shortfall")
	cmd.Flags().IntVar(nLow, "n-low", *nLow, "Smallest sample count searched")
	cmd.Flags().IntVar(nHigh, "n-high", *nHigh, "Largest sample count searched")
}

func newSimulateCmd() *cobra.Command {
	q := samplesize.DefaultSimulationQuery(1, 1000, 100, 10, 8)
	q.Simulations = 0

	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Monte Carlo search for the samples that catch the worst raters",
		Long: `Simulate audits of n_sub raters with uniform true discrepancies and search
for the per-rater sample count at which at least n_guarantee of the n_punish
true worst raters also rank among the measured worst.

Example: discscore-cli solve simulate --n-sub 100 --n-punish 10 --n-guarantee 8 --seed 7`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := loadContainer(cmd, false)
			if err != nil {
				return err
			}
			defer closeContainer(c)

			out, err := c.SampleSize.Simulate(cmd.Context(), q)
			if err != nil {
				return explain(err)
			}
			if done, err := printJSON(cmd, out); done {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d samples per rater (success frequency %.3f after %d steps)\n", out.Result.N, out.Result.Frequency, out.Result.Steps)
			return nil
		},
	}
	cmd.Flags().IntVar(&q.MinSamples, "min-n", q.MinSamples, "Smallest per-rater sample count searched")
	cmd.Flags().IntVar(&q.MaxSamples, "max-n", q.MaxSamples, "Largest per-rater sample count searched")
	cmd.Flags().IntVar(&q.Subordinates, "n-sub", q.Subordinates, "Number of raters")
	cmd.Flags().IntVar(&q.Punish, "n-punish", q.Punish, "Size of the true worst group")
	cmd.Flags().IntVar(&q.Guarantee, "n-guarantee", q.Guarantee, "Worst raters that must be caught")
	cmd.Flags().Float64Var(&q.Confidence, "confidence", q.Confidence, "Target success frequency")
	cmd.Flags().IntVar(&q.Simulations, "simulations", q.Simulations, "Trials per sample count (default SIMULATIONS)")
	cmd.Flags().Float64Var(&q.MinDisc, "min-disc", q.MinDisc, "Lowest true discrepancy")
	cmd.Flags().Float64Var(&q.MaxDisc, "max-disc", q.MaxDisc, "Highest true discrepancy")
	cmd.Flags().Uint64Var(&q.Seed, "seed", 0, "Random seed; 0 uses SEED or a fresh seed")
	return cmd
}

func newBatchCmd() *cobra.Command {
	var parallel int

	cmd := &cobra.Command{
		Use:   "batch [plan.yaml]",
		Short: "Solve every query of a YAML plan",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()
			plan, err := app.LoadBatchPlan(f)
			if err != nil {
				return err
			}

			c, err := loadContainer(cmd, false)
			if err != nil {
				return err
			}
			defer closeContainer(c)

			results, err := c.SampleSize.RunBatch(cmd.Context(), plan, parallel)
			if err != nil {
				return err
			}
			if done, err := printJSON(cmd, results); done {
				return err
			}
			w := cmd.OutOrStdout()
			for _, r := range results {
				if r.Err != nil {
					fmt.Fprintf(w, "%-10s #%d  %v\n", r.Kind, r.Index, explain(r.Err))
					continue
				}
				fmt.Fprintf(w, "%-10s #%d  n=%d (%d steps)\n", r.Kind, r.Index, r.Outcome.Result.N, r.Outcome.Result.Steps)
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&parallel, "parallel", "p", 2, "Queries solved at once")
	return cmd
}

// explain turns an infeasible search into the advice shown to the user
func explain(err error) error {
	if ie, ok := samplesize.AsInfeasible(err); ok {
		return fmt.Errorf("%s (achieved %.5f at n=%d, target %.5f)", ie.Diagnostic.Message(), ie.Achieved, ie.Bound, ie.Target)
	}
	return err
}
