package kafka

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/couchcryptid/covid-dashboard-service/internal/domain"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func derivedRow() domain.DerivedRow {
	return domain.DerivedRow{
		Row: domain.Row{
			Category: "Sao Paulo",
			Date:     time.Date(2020, 3, 2, 0, 0, 0, 0, time.UTC),
			Measures: map[string]float64{domain.ColConfirmed: 15, domain.ColDeaths: 1},
		},
		NewCases:   5,
		NewDeaths:  1,
		Year:       2020,
		RegionCode: "SP",
	}
}

func TestMessageKey(t *testing.T) {
	assert.Equal(t, "Sao Paulo", MessageKey(derivedRow()))
}

func TestMessageKey_SameCategorySamePartition(t *testing.T) {
	partitions := []int{0, 1, 2, 3, 4, 5}
	now := time.Date(2024, 4, 26, 15, 10, 0, 0, time.UTC)

	for _, category := range []string{"Bahia", "Sao Paulo", "Rio Grande do Sul"} {
		seen := make(map[int]struct{})
		for day := range 30 {
			row := derivedRow()
			row.Category = category
			row.Date = time.Date(2020, 3, 1+day, 0, 0, 0, 0, time.UTC)

			msg, err := serializeToMessage("covid", row, now)
			require.NoError(t, err)
			seen[(&kafkago.Hash{}).Balance(msg, partitions...)] = struct{}{}
		}
		assert.Len(t, seen, 1, category)
	}
}

func TestSerializeToMessage(t *testing.T) {
	now := time.Date(2024, 4, 26, 15, 10, 0, 0, time.UTC)

	msg, err := serializeToMessage("covid", derivedRow(), now)
	require.NoError(t, err)

	assert.Equal(t, []byte("Sao Paulo"), msg.Key)
	assert.Len(t, msg.Headers, 3)
	assert.Equal(t, "dataset", msg.Headers[0].Key)
	assert.Equal(t, []byte("covid"), msg.Headers[0].Value)
	assert.Equal(t, "observation_date", msg.Headers[1].Key)
	assert.Equal(t, []byte("2020-03-02"), msg.Headers[1].Value)
	assert.Equal(t, "published_at", msg.Headers[2].Key)
	assert.Equal(t, []byte(now.Format(time.RFC3339)), msg.Headers[2].Value)

	var got domain.DerivedRow
	require.NoError(t, json.Unmarshal(msg.Value, &got))
	assert.Equal(t, 5.0, got.NewCases)
	assert.Equal(t, "SP", got.RegionCode)
	assert.Equal(t, 15.0, got.Measure(domain.ColConfirmed))
}

func TestWriter_LoadBatch_Empty(t *testing.T) {
	w := NewWriter([]string{"localhost:1"}, "covid-derived-rows", "covid", slog.New(slog.NewTextHandler(io.Discard, nil)))
	defer w.Close()

	require.NoError(t, w.LoadBatch(context.Background(), nil))
}
