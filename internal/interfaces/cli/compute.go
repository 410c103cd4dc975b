package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	synapp "github.com/cosmichub/synastry/internal/application/synastry"
	"github.com/cosmichub/synastry/internal/domain/aspect"
	"github.com/cosmichub/synastry/internal/domain/chart"
)

// computeOptions holds the compute subcommand flags.
type computeOptions struct {
	chartAPath  string
	chartBPath  string
	builder     string
	aspectsOnly bool
}

// NewComputeCmd creates the compute subcommand.  It runs the engine in
// process; no API server or database is involved.
func NewComputeCmd(rootOpts *RootOptions) *cobra.Command {
	opts := &computeOptions{}

	cmd := &cobra.Command{
		Use:   "compute",
		Short: "Compute a synastry reading from two chart files",
		Long:  "Compute reads two natal chart JSON files and prints the full synastry\nreading.  Chart files carry a \"planets\" object mapping the ten canonical\nbody names to ecliptic longitudes in [0, 360) and a \"cusps\" array of\ntwelve house cusp longitudes.",
		Example: `  synastry compute --chart-a alice.json --chart-b bob.json
  synastry compute -a alice.json -b bob.json --builder scalar -o json
  synastry compute -a alice.json -b bob.json --aspects-only`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompute(cmd, rootOpts, opts)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.chartAPath, "chart-a", "a", "", "path to chart A JSON file (required)")
	f.StringVarP(&opts.chartBPath, "chart-b", "b", "", "path to chart B JSON file (required)")
	f.StringVar(&opts.builder, "builder", "", "matrix builder (scalar, vectorized; default vectorized)")
	f.BoolVar(&opts.aspectsOnly, "aspects-only", false, "print only the aspect matrix")
	_ = cmd.MarkFlagRequired("chart-a")
	_ = cmd.MarkFlagRequired("chart-b")

	return cmd
}

func runCompute(cmd *cobra.Command, rootOpts *RootOptions, opts *computeOptions) error {
	logger, err := cliLogger(rootOpts)
	if err != nil {
		return err
	}

	chartA, err := loadChartFile(opts.chartAPath)
	if err != nil {
		return fmt.Errorf("chart A: %w", err)
	}
	chartB, err := loadChartFile(opts.chartBPath)
	if err != nil {
		return fmt.Errorf("chart B: %w", err)
	}

	svc := synapp.NewService(aspect.DefaultRuleSet(), logger)
	input := &synapp.ComputeInput{ChartA: *chartA, ChartB: *chartB, Builder: opts.builder}

	if opts.aspectsOnly {
		result, err := svc.Aspects(cmd.Context(), input)
		if err != nil {
			return err
		}
		if strings.EqualFold(rootOpts.OutputFormat, "json") {
			return printJSON(cmd, result)
		}
		printMatrixText(cmd, result.Matrix)
		fmt.Fprintf(cmd.OutOrStdout(), "\n%d aspects (%s builder)\n", result.AspectCount, result.Builder)
		return nil
	}

	reading, err := svc.Compute(cmd.Context(), input)
	if err != nil {
		return err
	}
	if strings.EqualFold(rootOpts.OutputFormat, "json") {
		return printJSON(cmd, reading)
	}
	printReadingText(cmd, chartA.Name, chartB.Name, reading)
	return nil
}

// loadChartFile reads and decodes one chart JSON file.
func loadChartFile(path string) (*synapp.ChartInput, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var in synapp.ChartInput
	if err := json.Unmarshal(raw, &in); err != nil {
		return nil, fmt.Errorf("invalid chart file %s: %w", path, err)
	}
	return &in, nil
}

// printReadingText renders the reading as a human-readable report.
func printReadingText(cmd *cobra.Command, nameA, nameB string, reading *synapp.Reading) {
	out := cmd.OutOrStdout()

	if nameA == "" {
		nameA = "Chart A"
	}
	if nameB == "" {
		nameB = "Chart B"
	}

	fmt.Fprintf(out, "Synastry: %s x %s\n\n", nameA, nameB)
	fmt.Fprintf(out, "Overall score: %.1f / 100 (%s)\n\n", reading.Score.Overall, reading.Score.Interpretation)

	fmt.Fprintln(out, "Breakdown:")
	breakdown := map[string]float64{
		"emotional":     reading.Score.Breakdown.Emotional,
		"communication": reading.Score.Breakdown.Communication,
		"physical":      reading.Score.Breakdown.Physical,
		"spiritual":     reading.Score.Breakdown.Spiritual,
		"stability":     reading.Score.Breakdown.Stability,
	}
	themes := make([]string, 0, len(breakdown))
	for theme := range breakdown {
		themes = append(themes, theme)
	}
	sort.Strings(themes)
	for _, theme := range themes {
		fmt.Fprintf(out, "  %-14s %.1f\n", theme, breakdown[theme])
	}

	if len(reading.KeyAspects) > 0 {
		fmt.Fprintln(out, "\nKey aspects:")
		for _, ka := range reading.KeyAspects {
			fmt.Fprintf(out, "  %s %s %s (orb %.2f, %s)\n", ka.BodyA, ka.Aspect, ka.BodyB, ka.Orb, ka.Strength)
		}
	}

	if len(reading.Summary.KeyThemes) > 0 {
		fmt.Fprintln(out, "\nThemes:")
		for _, theme := range reading.Summary.KeyThemes {
			fmt.Fprintf(out, "  - %s\n", theme)
		}
	}
	if len(reading.Summary.Strengths) > 0 {
		fmt.Fprintln(out, "\nStrengths:")
		for _, s := range reading.Summary.Strengths {
			fmt.Fprintf(out, "  - %s\n", s)
		}
	}
	if len(reading.Summary.Challenges) > 0 {
		fmt.Fprintln(out, "\nChallenges:")
		for _, c := range reading.Summary.Challenges {
			fmt.Fprintf(out, "  - %s\n", c)
		}
	}
	if len(reading.Summary.Advice) > 0 {
		fmt.Fprintln(out, "\nAdvice:")
		for _, a := range reading.Summary.Advice {
			fmt.Fprintf(out, "  - %s\n", a)
		}
	}
}

// printMatrixText renders the matrix as a compact grid, one row per body of
// chart A.
func printMatrixText(cmd *cobra.Command, matrix map[string]map[string]*synapp.Cell) {
	out := cmd.OutOrStdout()

	fmt.Fprintf(out, "%-9s", "")
	for _, b := range chart.Bodies {
		fmt.Fprintf(out, " %-9s", abbreviate(string(b)))
	}
	fmt.Fprintln(out)

	for _, ba := range chart.Bodies {
		fmt.Fprintf(out, "%-9s", abbreviate(string(ba)))
		for _, bb := range chart.Bodies {
			cell := matrix[string(ba)][string(bb)]
			if cell == nil {
				fmt.Fprintf(out, " %-9s", ".")
				continue
			}
			fmt.Fprintf(out, " %-9s", abbreviate(cell.Aspect))
		}
		fmt.Fprintln(out)
	}
}

func abbreviate(s string) string {
	if len(s) > 9 {
		return s[:9]
	}
	return s
}
