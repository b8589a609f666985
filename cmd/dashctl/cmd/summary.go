package cmd

import (
	"errors"
	"fmt"
	"io"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/couchcryptid/covid-dashboard-service/internal/domain"
)

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Print the latest-date snapshot as a table",
	Long: `Print every state's counts on the latest date of the selected view.
The state filter only picks that date; the table always lists all states.

Examples:
  dashctl summary
  dashctl summary --start 2020-03-01 --end 2020-04-30
  dashctl summary --state Bahia --year 2020`,
	RunE: runSummary,
}

func init() {
	rootCmd.AddCommand(summaryCmd)
	addFilterFlags(summaryCmd)
}

func runSummary(cmd *cobra.Command, args []string) error {
	spec, err := filterSpec()
	if err != nil {
		return err
	}
	p, err := loadDataset(cmd.Context(), datasetCovid)
	if err != nil {
		return err
	}
	snap, err := p.Snapshot()
	if err != nil {
		return err
	}
	filtered, err := p.Filtered(spec)
	if err != nil {
		return err
	}

	// Codes are only known when every state mapped.
	all := snap.Mapped
	if snap.MapErr != nil {
		logger.Warn("state codes unavailable", "error", snap.MapErr)
		all = snap.Rows
	}

	out := cmd.OutOrStdout()
	date, rows, err := domain.LatestSnapshot(all, filtered)
	if errors.Is(err, domain.ErrEmptyResult) {
		fmt.Fprintln(out, domain.NoDataMessage)
		return nil
	}
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "Data: %s\n\n", date.Format("2006-01-02"))
	return writeSummary(out, rows)
}

func writeSummary(w io.Writer, rows []domain.DerivedRow) error {
	pr := message.NewPrinter(language.BrazilianPortuguese)
	table := tablewriter.NewTable(w,
		tablewriter.WithConfig(tablewriter.Config{
			Row: tw.CellConfig{
				Formatting: tw.CellFormatting{AutoWrap: tw.WrapNone},
				Alignment:  tw.CellAlignment{Global: tw.AlignRight},
			},
			Header: tw.CellConfig{
				Alignment: tw.CellAlignment{Global: tw.AlignLeft},
			},
		}),
		tablewriter.WithRendition(tw.Rendition{
			Borders: tw.BorderNone,
			Settings: tw.Settings{
				Separators: tw.Separators{ShowHeader: tw.Off},
			},
		}),
	)

	var confirmed, deaths, newCases float64
	data := make([][]string, 0, len(rows)+1)
	for _, r := range rows {
		data = append(data, []string{
			r.Category,
			r.RegionCode,
			pr.Sprintf("%d", int64(r.Measure(domain.ColConfirmed))),
			pr.Sprintf("%d", int64(r.Measure(domain.ColDeaths))),
			pr.Sprintf("%d", int64(r.Measure(domain.ColRecovered))),
			pr.Sprintf("%d", int64(r.NewCases)),
			pr.Sprintf("%d", int64(r.NewDeaths)),
		})
		confirmed += r.Measure(domain.ColConfirmed)
		deaths += r.Measure(domain.ColDeaths)
		newCases += r.NewCases
	}
	data = append(data, []string{
		"Total", "",
		pr.Sprintf("%d", int64(confirmed)),
		pr.Sprintf("%d", int64(deaths)),
		"",
		pr.Sprintf("%d", int64(newCases)),
		"",
	})

	table.Header([]string{"Estado", "UF", "Confirmados", "Óbitos", "Recuperados", "Novos casos", "Novos óbitos"})
	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}
