package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	plotadapter "github.com/couchcryptid/covid-dashboard-service/internal/adapter/plot"
)

var chartCmd = &cobra.Command{
	Use:   "chart",
	Short: "Render the dashboard charts to PNG files",
	Long: `Render every chart of the filtered view to <chart-id>.png in the
output directory. Charts with no data are skipped with a warning.

Examples:
  dashctl chart --out-dir charts/
  dashctl chart --out-dir charts/ --state "Sao Paulo" --year 2020
  dashctl chart --dataset temperature --temperature city_temperature.csv --out-dir temps/`,
	RunE: runChart,
}

func init() {
	rootCmd.AddCommand(chartCmd)
	addFilterFlags(chartCmd)

	chartCmd.Flags().String("out-dir", "charts", "directory for the PNG files")
	chartCmd.Flags().String("dataset", datasetCovid, "dataset to chart (covid or temperature)")
}

func runChart(cmd *cobra.Command, args []string) error {
	outDir, _ := cmd.Flags().GetString("out-dir")
	dataset, _ := cmd.Flags().GetString("dataset")

	spec, err := filterSpec()
	if err != nil {
		return err
	}
	p, err := loadDataset(cmd.Context(), dataset)
	if err != nil {
		return err
	}
	res, err := p.Query(spec)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	out := cmd.OutOrStdout()
	renderer := plotadapter.NewRenderer()
	var written int
	for _, c := range res.Charts {
		if c.Empty {
			logger.Warn("chart skipped", "chart", c.ID, "reason", c.Warning)
			fmt.Fprintf(out, "skipped %s: %s\n", c.ID, c.Warning)
			continue
		}
		path, err := renderer.RenderFile(outDir, c)
		if err != nil {
			return err
		}
		written++
		fmt.Fprintf(out, "wrote %s\n", path)
	}
	logger.Info("charts rendered", "dataset", dataset, "written", written, "total", len(res.Charts))
	return nil
}
