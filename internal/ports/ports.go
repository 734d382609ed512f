package ports

import (
	"context"
	"time"

	"eumenides/internal/domain"
)

// MetadataSource fetches public account metadata by raw handle. A nil
// metadata with nil error means the handle does not exist or is not public.
// Transient provider failures are surfaced as domain.ErrThrottled, never
// masked as not-found.
type MetadataSource interface {
	Platform() string
	Fetch(ctx context.Context, rawHandle string) (*domain.AccountMetadata, error)
}

// AccountRepository persists flagged accounts keyed by (platform,
// normalized handle). Upsert must be atomic per call and safe for
// concurrent use; conflicting writes to the same key are serialized by the
// implementation.
type AccountRepository interface {
	// Upsert inserts the account on first observation (setting CreatedAt
	// and LastSeen) or updates score, reasons, display fields, and
	// LastSeen for an existing row, leaving CreatedAt untouched.
	Upsert(ctx context.Context, account *domain.FlaggedAccount) (*domain.FlaggedAccount, error)
	// Find returns domain.ErrNotFound when no row matches.
	Find(ctx context.Context, platform, normalizedHandle string) (*domain.FlaggedAccount, error)
	// ListTop returns up to limit accounts ordered by descending risk score.
	ListTop(ctx context.Context, limit int) ([]*domain.FlaggedAccount, error)
}

// Scheduler controls when the crawler executes.
type Scheduler interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}
