package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/couchcryptid/covid-dashboard-service/internal/adapter/xlsx"
	"github.com/couchcryptid/covid-dashboard-service/internal/domain"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the filtered view to an Excel workbook",
	Long: `Write the filtered rows, with their derived columns, to an .xlsx
workbook. COVID-19 exports add a sheet with the latest-date map.

Examples:
  dashctl export --out view.xlsx
  dashctl export --out bahia.xlsx --state Bahia --start 2020-04-01
  dashctl export --dataset temperature --temperature city_temperature.csv --out temps.xlsx`,
	RunE: runExport,
}

func init() {
	rootCmd.AddCommand(exportCmd)
	addFilterFlags(exportCmd)

	exportCmd.Flags().String("out", "dashboard.xlsx", "output workbook path")
	exportCmd.Flags().String("dataset", datasetCovid, "dataset to export (covid or temperature)")
}

func runExport(cmd *cobra.Command, args []string) error {
	outPath, _ := cmd.Flags().GetString("out")
	dataset, _ := cmd.Flags().GetString("dataset")

	spec, err := filterSpec()
	if err != nil {
		return err
	}
	p, err := loadDataset(cmd.Context(), dataset)
	if err != nil {
		return err
	}
	snap, err := p.Snapshot()
	if err != nil {
		return err
	}
	rows, err := p.Filtered(spec)
	if err != nil {
		return err
	}

	var choropleth *domain.Choropleth
	if dataset == datasetCovid {
		c, err := p.Choropleth(spec)
		var mapErr *domain.MappingError
		switch {
		case errors.As(err, &mapErr):
			logger.Warn("map sheet skipped", "error", err)
		case err != nil:
			return err
		default:
			choropleth = &c
		}
	}

	if err := xlsx.ExportFile(outPath, snap.Schema, rows, choropleth); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "wrote %d rows to %s\n", len(rows), outPath)
	return nil
}
