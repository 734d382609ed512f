package usecase

import (
	"context"
	"fmt"

	"eumenides/internal/ports"
)

// FlaggedView is the read-model shape exposed to the listing API and the
// report CLI.
type FlaggedView struct {
	ID          int64    `json:"id"`
	Platform    string   `json:"platform"`
	Handle      string   `json:"handle"`
	DisplayName string   `json:"display_name"`
	Description string   `json:"description"`
	RiskScore   float64  `json:"risk_score"`
	Reasons     []string `json:"reasons"`
	CreatedAt   string   `json:"created_at"`
	LastSeen    string   `json:"last_seen"`
}

// ListFlagged reads flagged accounts ordered by descending risk score.
type ListFlagged struct {
	repository ports.AccountRepository
}

// NewListFlagged constructs the listing use case.
func NewListFlagged(repo ports.AccountRepository) *ListFlagged {
	return &ListFlagged{repository: repo}
}

// Execute returns up to limit flagged accounts, highest risk first.
func (l *ListFlagged) Execute(ctx context.Context, limit int) ([]FlaggedView, error) {
	accounts, err := l.repository.ListTop(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("list flagged: %w", err)
	}

	views := make([]FlaggedView, 0, len(accounts))
	for _, acc := range accounts {
		reasons := acc.Reasons
		if reasons == nil {
			reasons = []string{}
		}
		views = append(views, FlaggedView{
			ID:          acc.ID,
			Platform:    acc.Metadata.Platform,
			Handle:      acc.Metadata.Handle.Normalized(),
			DisplayName: acc.Metadata.DisplayName,
			Description: acc.Metadata.Description,
			RiskScore:   acc.RiskScore,
			Reasons:     reasons,
			CreatedAt:   formatTime(acc.CreatedAt),
			LastSeen:    formatTime(acc.LastSeen),
		})
	}
	return views, nil
}
