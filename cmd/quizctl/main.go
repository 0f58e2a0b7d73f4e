// Command quizctl runs ordering and scoring scenarios from YAML fixtures
// without a database or server.
package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/SAP-F-2025/swipe-quiz-service/internal/fixtures"
	"github.com/SAP-F-2025/swipe-quiz-service/internal/importer"
	"github.com/SAP-F-2025/swipe-quiz-service/internal/ordering"
	"github.com/SAP-F-2025/swipe-quiz-service/internal/results"
)

const appName = "quizctl"

var (
	Version   = "0.1.0"
	BuildTime = "dev"
)

// errScenarioFailed is returned when a fixture's expectations do not hold.
var errScenarioFailed = errors.New("scenario failed")

func main() {
	if err := rootCmd().Execute(); err != nil {
		if !errors.Is(err, errScenarioFailed) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           appName,
		Short:         "Swipe quiz ordering and scoring tool",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(orderCmd(), validateCmd())
	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "%s version %s (build: %s)\n", appName, Version, BuildTime)
		},
	})

	return cmd
}

func orderCmd() *cobra.Command {
	var (
		fixturePath string
		xlsxPath    string
		asJSON      bool
		overrides   ordering.Overrides
	)

	cmd := &cobra.Command{
		Use:   "order",
		Short: "Print the presentation order for a fixture's questions",
		RunE: func(cmd *cobra.Command, args []string) error {
			fixture, err := fixtures.Load(fixturePath)
			if err != nil {
				return err
			}

			opts := flagOverrides(cmd, overrides).Apply(fixture.Options)
			plan := ordering.Sequence(fixture.Questions, opts)

			if xlsxPath != "" {
				if err := writeWorkbook(xlsxPath, plan, opts, fixture); err != nil {
					return err
				}
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(struct {
					Options ordering.Options `json:"options"`
					ordering.Plan
				}{opts, plan})
			}
			printPlan(out, plan, opts)
			return nil
		},
	}

	cmd.Flags().StringVarP(&fixturePath, "fixture", "f", "", "Fixture file (YAML)")
	cmd.Flags().StringVar(&xlsxPath, "xlsx", "", "Also write the ordering to this workbook")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the plan as JSON")
	overrides.Seed = cmd.Flags().Int64("seed", ordering.DefaultSeed, "Shuffle seed")
	overrides.MaxRun = cmd.Flags().Int("max-run", ordering.DefaultMaxRun, "Longest allowed same-framework run")
	overrides.WarmupCount = cmd.Flags().Int("warmup", ordering.DefaultWarmupCount, "Warm-up questions placed first")
	overrides.FinaleCount = cmd.Flags().Int("finale", ordering.DefaultFinaleCount, "High-signal questions placed last")
	_ = cmd.MarkFlagRequired("fixture")

	return cmd
}

// flagOverrides keeps only the flags the user actually set, so fixture
// options win over flag defaults.
func flagOverrides(cmd *cobra.Command, all ordering.Overrides) ordering.Overrides {
	var set ordering.Overrides
	if cmd.Flags().Changed("seed") {
		set.Seed = all.Seed
	}
	if cmd.Flags().Changed("max-run") {
		set.MaxRun = all.MaxRun
	}
	if cmd.Flags().Changed("warmup") {
		set.WarmupCount = all.WarmupCount
	}
	if cmd.Flags().Changed("finale") {
		set.FinaleCount = all.FinaleCount
	}
	return set
}

func printPlan(w io.Writer, plan ordering.Plan, opts ordering.Options) {
	fmt.Fprintf(w, "seed=%d max_run=%d warmup=%d finale=%d\n", opts.Seed, opts.MaxRun, opts.WarmupCount, opts.FinaleCount)
	ids := make([]string, len(plan.Orders))
	for i, o := range plan.Orders {
		ids[i] = fmt.Sprint(o.ID)
	}
	fmt.Fprintf(w, "order: [%s]\n", strings.Join(ids, " "))
	fmt.Fprintf(w, "warmup: %v finale: %v deferred: %d flushed: %d\n", plan.Warmup, plan.Finale, plan.Deferred, plan.Flushed)
}

func writeWorkbook(path string, plan ordering.Plan, opts ordering.Options, fixture *fixtures.Fixture) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create workbook: %w", err)
	}
	defer f.Close()

	if err := importer.WriteOrdering(f, plan, opts, fixture.Questions); err != nil {
		return err
	}
	return f.Close()
}

func validateCmd() *cobra.Command {
	var (
		fixturePaths []string
		epsilon      float64
	)

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Score each fixture's swipes and compare with its expected result",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			failed := 0

			for _, path := range append(fixturePaths, args...) {
				fixture, err := fixtures.Load(path)
				if err != nil {
					return err
				}

				outcome := fixture.Run(results.WithEpsilon(epsilon))
				if outcome.Passed() {
					fmt.Fprintf(out, "PASS %s\n", path)
					continue
				}

				failed++
				fmt.Fprintf(out, "FAIL %s\n", path)
				if outcome.OrderMatch != nil && !*outcome.OrderMatch {
					fmt.Fprintf(out, "  order mismatch: got %v, expected %v\n", orderIDs(outcome.Plan), fixture.ExpectedOrder)
				}
				if outcome.Report != nil {
					for _, msg := range outcome.Report.Errors {
						fmt.Fprintf(out, "  %s\n", msg)
					}
				}
			}

			if failed > 0 {
				return fmt.Errorf("%w: %d fixture(s)", errScenarioFailed, failed)
			}
			return nil
		},
	}

	cmd.Flags().StringArrayVarP(&fixturePaths, "fixture", "f", nil, "Fixture file (YAML), repeatable")
	cmd.Flags().Float64Var(&epsilon, "epsilon", results.DefaultEpsilon, "Tolerance for mean comparisons")

	return cmd
}

func orderIDs(plan ordering.Plan) []uint {
	ids := make([]uint, len(plan.Orders))
	for i, o := range plan.Orders {
		ids[i] = o.ID
	}
	return ids
}
