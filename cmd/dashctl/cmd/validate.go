package cmd

import (
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/spf13/cobra"

	"github.com/couchcryptid/covid-dashboard-service/internal/domain"
	"github.com/couchcryptid/covid-dashboard-service/internal/pipeline"
)

// errValidationFailed is returned once the report has been printed.
var errValidationFailed = errors.New("validation failed")

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check a COVID-19 dataset end to end",
	Long: `Load the COVID-19 dataset and check every pipeline stage:
the column contract, the derived daily deltas, the state-to-code mapping
and the latest-date map.

Examples:
  dashctl validate --covid covid_19_data_brazil.csv
  dashctl validate --covid dados.xlsx --sheet Dados`,
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func runValidate(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "=== Dataset validation: %s ===\n\n", cfg.CovidDataPath)

	load := &phase{name: "Schema and load"}
	p, err := loadDataset(cmd.Context(), datasetCovid)
	if err != nil {
		load.errorf("%v", err)
		return report(out, []*phase{load}, nil)
	}
	snap, err := p.Snapshot()
	if err != nil {
		return err
	}

	phases := []*phase{
		load,
		validateDeltas(snap),
		validateMapping(snap),
		validateLatest(snap),
	}
	return report(out, phases, snap)
}

// validateDeltas checks that each category starts at zero and that its
// deltas telescope back to the cumulative series.
func validateDeltas(s *pipeline.Snapshot) *phase {
	ph := &phase{name: "Derived daily deltas"}
	first := make(map[string]domain.DerivedRow)
	last := make(map[string]domain.DerivedRow)
	sumCases := make(map[string]float64)
	sumDeaths := make(map[string]float64)

	for _, r := range s.Rows {
		if _, ok := first[r.Category]; !ok {
			first[r.Category] = r
			if r.NewCases != 0 || r.NewDeaths != 0 {
				ph.errorf("%s: first observation has non-zero delta", r.Category)
			}
		}
		last[r.Category] = r
		sumCases[r.Category] += r.NewCases
		sumDeaths[r.Category] += r.NewDeaths
		if r.Year != r.Date.Year() {
			ph.errorf("%s %s: year %d does not match date", r.Category, r.Date.Format("2006-01-02"), r.Year)
		}
	}

	for _, c := range s.Categories {
		want := last[c].Measure(domain.ColConfirmed) - first[c].Measure(domain.ColConfirmed)
		if !closeEnough(sumCases[c], want) {
			ph.errorf("%s: new cases sum to %g, cumulative change is %g", c, sumCases[c], want)
		}
		want = last[c].Measure(domain.ColDeaths) - first[c].Measure(domain.ColDeaths)
		if !closeEnough(sumDeaths[c], want) {
			ph.errorf("%s: new deaths sum to %g, cumulative change is %g", c, sumDeaths[c], want)
		}
	}
	return ph
}

// deltaTolerance absorbs float rounding when fractional counters are summed.
const deltaTolerance = 1e-6

func closeEnough(a, b float64) bool {
	return math.Abs(a-b) <= deltaTolerance
}

func validateMapping(s *pipeline.Snapshot) *phase {
	ph := &phase{name: "State code mapping"}
	var mapErr *domain.MappingError
	switch {
	case errors.As(s.MapErr, &mapErr):
		for _, name := range mapErr.Unmapped {
			ph.errorf("no code for %q in column %s", name, mapErr.Column)
		}
	case s.MapErr != nil:
		ph.errorf("%v", s.MapErr)
	}
	return ph
}

func validateLatest(s *pipeline.Snapshot) *phase {
	ph := &phase{name: "Latest-date map"}
	if s.MapErr != nil {
		ph.errorf("skipped: state mapping failed")
		return ph
	}
	c := domain.BuildChoropleth(s.Mapped, s.Rows)
	if c.Empty {
		ph.errorf("%s", c.Warning)
		return ph
	}
	codes := make(map[string]struct{}, len(c.Entries))
	for _, e := range c.Entries {
		if _, dup := codes[e.Code]; dup {
			ph.errorf("%s: state appears twice on %s", e.Code, c.Date)
		}
		codes[e.Code] = struct{}{}
	}
	return ph
}

func report(out io.Writer, phases []*phase, s *pipeline.Snapshot) error {
	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Fprintf(out, "  %-32s %s\n", p.name, status)
	}

	if s != nil {
		fmt.Fprintf(out, "\nRows: %d, states: %d, dates: %s to %s\n",
			len(s.Rows), len(s.Categories), s.MinDate.Format("2006-01-02"), s.MaxDate.Format("2006-01-02"))
	}

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Fprintf(out, "\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Fprintf(out, "  [%d] %s\n", i+1, e)
		}
	}

	if !allPassed {
		fmt.Fprintln(out, "\nValidation FAILED.")
		return errValidationFailed
	}
	fmt.Fprintln(out, "\nAll validations passed.")
	return nil
}
