package storage

import (
	"context"
	"sort"
	"sync"
	"time"

	"eumenides/internal/domain"
	"eumenides/internal/ports"
)

// MemoryRepository is an in-memory AccountRepository used by tests and
// DSN-less development runs. The mutex serializes conflicting writes to the
// same natural key, matching the port contract.
type MemoryRepository struct {
	mu       sync.Mutex
	accounts map[string]*domain.FlaggedAccount
	nextID   int64
}

var _ ports.AccountRepository = (*MemoryRepository)(nil)

// NewMemoryRepository builds an empty repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		accounts: map[string]*domain.FlaggedAccount{},
		nextID:   1,
	}
}

func key(platform, normalizedHandle string) string {
	return platform + "/" + normalizedHandle
}

// Upsert inserts or refreshes the stored row for the account's natural key.
func (r *MemoryRepository) Upsert(ctx context.Context, account *domain.FlaggedAccount) (*domain.FlaggedAccount, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	k := key(account.Metadata.Platform, account.Metadata.Handle.Normalized())

	existing, ok := r.accounts[k]
	if !ok {
		stored := cloneAccount(account)
		stored.ID = r.nextID
		r.nextID++
		stored.CreatedAt = now
		stored.LastSeen = now
		r.accounts[k] = stored
		return cloneAccount(stored), nil
	}

	existing.Metadata = account.Metadata
	existing.RiskScore = account.RiskScore
	existing.Reasons = append([]string{}, account.Reasons...)
	existing.MarkSeen(now)
	return cloneAccount(existing), nil
}

// Find returns domain.ErrNotFound when the key is absent.
func (r *MemoryRepository) Find(ctx context.Context, platform, normalizedHandle string) (*domain.FlaggedAccount, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	account, ok := r.accounts[key(platform, normalizedHandle)]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return cloneAccount(account), nil
}

// ListTop returns up to limit accounts ordered by descending risk score.
func (r *MemoryRepository) ListTop(ctx context.Context, limit int) ([]*domain.FlaggedAccount, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	accounts := make([]*domain.FlaggedAccount, 0, len(r.accounts))
	for _, account := range r.accounts {
		accounts = append(accounts, cloneAccount(account))
	}
	sort.Slice(accounts, func(i, j int) bool {
		if accounts[i].RiskScore != accounts[j].RiskScore {
			return accounts[i].RiskScore > accounts[j].RiskScore
		}
		return accounts[i].ID < accounts[j].ID
	})
	if limit > 0 && len(accounts) > limit {
		accounts = accounts[:limit]
	}
	return accounts, nil
}

func cloneAccount(account *domain.FlaggedAccount) *domain.FlaggedAccount {
	clone := *account
	clone.Reasons = append([]string{}, account.Reasons...)
	return &clone
}
