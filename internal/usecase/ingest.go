package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"eumenides/internal/classifier"
	"eumenides/internal/domain"
	"eumenides/internal/eventbus"
	"eumenides/internal/ports"
	"eumenides/internal/source"
)

// DefaultThreshold is the minimum clamped risk score that triggers
// persistence and event emission.
const DefaultThreshold = 0.2

// IngestDeps wires all collaborators into the ingestion use case.
type IngestDeps struct {
	Sources    *source.Registry
	Repository ports.AccountRepository
	Engine     *classifier.Engine
	Bus        *eventbus.Bus
	Threshold  float64
	Logger     *slog.Logger
}

// Ingest orchestrates fetch, classification, threshold gating, persistence,
// and event publication for a single handle.
type Ingest struct {
	sources    *source.Registry
	repository ports.AccountRepository
	engine     *classifier.Engine
	bus        *eventbus.Bus
	threshold  float64
	logger     *slog.Logger
}

// NewIngest constructs the use case. A zero threshold falls back to
// DefaultThreshold.
func NewIngest(deps IngestDeps) *Ingest {
	threshold := deps.Threshold
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Ingest{
		sources:    deps.Sources,
		repository: deps.Repository,
		engine:     deps.Engine,
		bus:        deps.Bus,
		threshold:  threshold,
		logger:     logger,
	}
}

// Execute ingests one raw handle. A handle that does not exist or is not
// public terminates without error; fetch and persistence failures propagate
// to the caller for retry policy decisions. The AccountFlagged event is
// published only after a successful upsert.
func (i *Ingest) Execute(ctx context.Context, platform, rawHandle string) error {
	src, err := i.sources.Resolve(platform)
	if err != nil {
		return fmt.Errorf("resolve source: %w", err)
	}

	md, err := src.Fetch(ctx, rawHandle)
	if err != nil {
		return fmt.Errorf("fetch %s/%s: %w", platform, rawHandle, err)
	}
	if md == nil {
		i.logger.Debug("handle not found", "platform", platform, "handle", rawHandle)
		return nil
	}

	result := i.engine.Classify(*md)
	if result.Score < i.threshold {
		i.logger.Debug("below threshold",
			"platform", platform,
			"handle", md.Handle.Normalized(),
			"score", result.Score,
			"raw_score", result.Raw)
		return nil
	}

	flagged := &domain.FlaggedAccount{
		Metadata:  *md,
		RiskScore: result.Score,
		Reasons:   result.Reasons,
	}

	saved, err := i.repository.Upsert(ctx, flagged)
	if err != nil {
		return fmt.Errorf("persist %s/%s: %w", platform, md.Handle.Normalized(), err)
	}

	i.bus.Publish(ctx, eventbus.AccountFlagged, eventbus.FlaggedPayload{
		Platform:    saved.Metadata.Platform,
		Handle:      saved.Metadata.Handle.Normalized(),
		DisplayName: saved.Metadata.DisplayName,
		Description: saved.Metadata.Description,
		RiskScore:   saved.RiskScore,
		Reasons:     saved.Reasons,
		FirstSeen:   formatTime(saved.CreatedAt),
		LastSeen:    formatTime(saved.LastSeen),
		CrawlLog:    []string{},
	})

	i.logger.Info("flagged account saved",
		"platform", saved.Metadata.Platform,
		"handle", saved.Metadata.Handle.Normalized(),
		"score", saved.RiskScore,
		"raw_score", result.Raw)
	return nil
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
