package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"eumenides/internal/domain"
)

// WriteCSV renders flagged accounts as a human-readable report, highest
// risk first as provided by the repository.
func WriteCSV(w io.Writer, accounts []*domain.FlaggedAccount) error {
	writer := csv.NewWriter(w)

	header := []string{
		"ID", "Platform", "Handle", "Display Name", "Description",
		"Participants", "Risk Score", "Reasons", "First Seen", "Last Seen",
	}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for _, acc := range accounts {
		row := []string{
			fmt.Sprintf("%d", acc.ID),
			acc.Metadata.Platform,
			acc.Metadata.Handle.Normalized(),
			acc.Metadata.DisplayName,
			acc.Metadata.Description,
			participants(acc.Metadata.Extra),
			fmt.Sprintf("%.3f", acc.RiskScore),
			strings.Join(acc.Reasons, "; "),
			formatTime(acc.CreatedAt),
			formatTime(acc.LastSeen),
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}

	writer.Flush()
	return writer.Error()
}

func participants(extra map[string]any) string {
	if extra == nil {
		return ""
	}
	v, ok := extra["participants"]
	if !ok {
		return ""
	}
	return fmt.Sprintf("%v", v)
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
