package cmd

import (
	"fmt"
	"strings"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
	"github.com/spf13/cobra"

	"github.com/couchcryptid/covid-dashboard-service/internal/adapter/kafka"
	"github.com/couchcryptid/covid-dashboard-service/internal/domain"
)

var publishCmd = &cobra.Command{
	Use:   "publish",
	Short: "Publish the filtered derived rows to Kafka",
	Long: `Publish each row of the filtered view, with its derived daily deltas,
as one JSON message keyed by state and date.

Examples:
  dashctl publish
  dashctl publish --brokers kafka-1:9092,kafka-2:9092 --topic covid-derived-rows
  dashctl publish --state "Sao Paulo" --start 2020-03-01`,
	RunE: runPublish,
}

func init() {
	rootCmd.AddCommand(publishCmd)
	addFilterFlags(publishCmd)

	publishCmd.Flags().String("brokers", "", "comma-separated broker list (default $KAFKA_BROKERS)")
	publishCmd.Flags().String("topic", "", "destination topic (default $KAFKA_TOPIC)")
	publishCmd.Flags().String("dataset", datasetCovid, "dataset to publish (covid or temperature)")
}

func runPublish(cmd *cobra.Command, args []string) error {
	brokersFlag, _ := cmd.Flags().GetString("brokers")
	topic, _ := cmd.Flags().GetString("topic")
	dataset, _ := cmd.Flags().GetString("dataset")

	brokers := cfg.KafkaBrokers
	if brokersFlag != "" {
		brokers = sharedcfg.ParseBrokers(brokersFlag)
	}
	if topic == "" {
		topic = cfg.KafkaTopic
	}

	spec, err := filterSpec()
	if err != nil {
		return err
	}
	p, err := loadDataset(cmd.Context(), dataset)
	if err != nil {
		return err
	}
	rows, err := p.Filtered(spec)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(rows) == 0 {
		fmt.Fprintln(out, domain.NoDataMessage)
		return nil
	}

	w := kafka.NewWriter(brokers, topic, dataset, logger)
	defer w.Close()

	if err := w.LoadBatch(cmd.Context(), rows); err != nil {
		return err
	}
	fmt.Fprintf(out, "published %d rows to %s on %s\n", len(rows), topic, strings.Join(brokers, ","))
	return nil
}
