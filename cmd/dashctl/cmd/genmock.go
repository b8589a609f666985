package cmd

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/spf13/cobra"

	"github.com/couchcryptid/covid-dashboard-service/internal/domain"
)

// genmockClock is the fixed "Last Update" stamp of generated COVID rows.
var genmockClock = time.Date(2020, time.March, 1, 6, 0, 0, 0, time.UTC)

// mockCities are the temperature dataset's cities and their mean °C.
var mockCities = []struct {
	name string
	mean float64
}{
	{"Manaus", 27.8},
	{"Recife", 26.5},
	{"Salvador", 25.9},
	{"Brasilia", 21.4},
	{"Sao Paulo", 19.6},
	{"Curitiba", 16.8},
	{"Porto Alegre", 19.1},
}

var genmockCmd = &cobra.Command{
	Use:   "genmock",
	Short: "Generate a deterministic synthetic dataset",
	Long: `Generate a synthetic dataset with the same columns as the real one.
The same seed always produces byte-identical output, so the files can be
used as test fixtures.

Examples:
  dashctl genmock --out testdata/covid.csv
  dashctl genmock --days 90 --seed 7 --out covid.csv
  dashctl genmock --dataset temperature --days 366 --start 2019-01-01 --out temps.csv`,
	RunE: runGenmock,
}

func init() {
	rootCmd.AddCommand(genmockCmd)

	genmockCmd.Flags().String("dataset", datasetCovid, "dataset to generate (covid or temperature)")
	genmockCmd.Flags().Int("days", 30, "number of days")
	genmockCmd.Flags().String("start", "2020-03-01", "first day, YYYY-MM-DD")
	genmockCmd.Flags().Uint64("seed", 42, "random seed")
	genmockCmd.Flags().String("out", "", "output path (default stdout)")
}

func runGenmock(cmd *cobra.Command, args []string) error {
	dataset, _ := cmd.Flags().GetString("dataset")
	days, _ := cmd.Flags().GetInt("days")
	startStr, _ := cmd.Flags().GetString("start")
	seed, _ := cmd.Flags().GetUint64("seed")
	outPath, _ := cmd.Flags().GetString("out")

	if days <= 0 {
		return fmt.Errorf("--days must be positive, got %d", days)
	}
	start, err := time.Parse(time.DateOnly, startStr)
	if err != nil {
		return fmt.Errorf("invalid --start %q: want YYYY-MM-DD", startStr)
	}

	// Set a fixed clock for reproducible "Last Update" stamps.
	domain.SetClock(clockwork.NewFakeClockAt(genmockClock))
	defer domain.SetClock(nil)

	w := cmd.OutOrStdout()
	if outPath != "" {
		if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
			return err
		}
		f, err := os.Create(outPath)
		if err != nil {
			return fmt.Errorf("create %s: %w", outPath, err)
		}
		defer f.Close()
		w = f
	}

	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	var rows int
	switch dataset {
	case datasetCovid:
		rows, err = writeMockCovid(w, rng, start, days)
	case datasetTemperature:
		rows, err = writeMockTemperature(w, rng, start, days)
	default:
		return fmt.Errorf("unknown dataset %q: want %s or %s", dataset, datasetCovid, datasetTemperature)
	}
	if err != nil {
		return err
	}

	logger.Info("mock dataset generated", "dataset", dataset, "rows", rows, "days", days, "seed", seed, "out", outPath)
	return nil
}

// writeMockCovid writes one row per state per day with non-decreasing
// cumulative counts, dates first and states in name order, like the
// published dataset.
func writeMockCovid(w io.Writer, rng *rand.Rand, start time.Time, days int) (int, error) {
	cw := csv.NewWriter(w)
	header := []string{"SNo", domain.ColObservationDate, domain.ColProvinceState, "Country/Region", "Last Update",
		domain.ColConfirmed, domain.ColDeaths, domain.ColRecovered}
	if err := cw.Write(header); err != nil {
		return 0, err
	}

	states := domain.BrazilStates.Names()
	confirmed := make([]int, len(states))
	deaths := make([]int, len(states))
	recovered := make([]int, len(states))
	updated := domain.Now().Format("2006-01-02 15:04:05")

	sno := 0
	for d := range days {
		date := start.AddDate(0, 0, d).Format("01/02/2006")
		for i, name := range states {
			// Growth varies by state so the map is not flat.
			newCases := rng.IntN((i%9+1)*(d+1) + 1)
			confirmed[i] += newCases
			deaths[i] += rng.IntN(newCases/20 + 1)
			recovered[i] = min(confirmed[i]-deaths[i], recovered[i]+rng.IntN(newCases/2+1))

			sno++
			record := []string{
				strconv.Itoa(sno), date, name, "Brazil", updated,
				strconv.Itoa(confirmed[i]), strconv.Itoa(deaths[i]), strconv.Itoa(recovered[i]),
			}
			if err := cw.Write(record); err != nil {
				return sno, err
			}
		}
	}
	cw.Flush()
	return sno, cw.Error()
}

// writeMockTemperature writes a seasonal daily mean per city.
func writeMockTemperature(w io.Writer, rng *rand.Rand, start time.Time, days int) (int, error) {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{domain.ColDate, domain.ColCity, domain.ColAvgTemperature}); err != nil {
		return 0, err
	}

	rows := 0
	for d := range days {
		date := start.AddDate(0, 0, d)
		// Southern hemisphere: warmest around the turn of the year.
		season := math.Cos(2 * math.Pi * float64(date.YearDay()) / 365)
		for _, c := range mockCities {
			t := c.mean + 3*season + rng.NormFloat64()*0.8
			record := []string{date.Format(time.DateOnly), c.name, strconv.FormatFloat(t, 'f', 1, 64)}
			if err := cw.Write(record); err != nil {
				return rows, err
			}
			rows++
		}
	}
	cw.Flush()
	return rows, cw.Error()
}
