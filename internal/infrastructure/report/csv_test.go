package report

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eumenides/internal/domain"
)

func TestWriteCSV(t *testing.T) {
	t.Parallel()

	created := time.Date(2026, time.February, 10, 8, 0, 0, 0, time.UTC)
	accounts := []*domain.FlaggedAccount{
		{
			ID: 7,
			Metadata: domain.AccountMetadata{
				Platform:    domain.PlatformTelegram,
				Handle:      domain.NewHandle("@cpsel_test"),
				DisplayName: "CP SELLER GROUP",
				Description: "links",
				Extra:       map[string]any{"participants": 1234},
			},
			RiskScore: 1.0,
			Reasons:   []string{"first reason", "second reason"},
			CreatedAt: created,
			LastSeen:  created.Add(time.Hour),
		},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, accounts))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "ID", rows[0][0])
	assert.Equal(t, "7", rows[1][0])
	assert.Equal(t, "cpsel_test", rows[1][2])
	assert.Equal(t, "1234", rows[1][5])
	assert.Equal(t, "1.000", rows[1][6])
	assert.Equal(t, "first reason; second reason", rows[1][7])
	assert.Equal(t, "2026-02-10T08:00:00Z", rows[1][8])
}

func TestWriteCSVEmpty(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, nil))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}
