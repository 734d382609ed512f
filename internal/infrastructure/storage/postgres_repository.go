package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/lib/pq"

	"eumenides/internal/domain"
	"eumenides/internal/ports"
)

const schemaDDL = `
CREATE TABLE IF NOT EXISTS flagged_accounts (
    id           BIGSERIAL PRIMARY KEY,
    platform     VARCHAR(32)  NOT NULL,
    handle       VARCHAR(256) NOT NULL,
    display_name VARCHAR(512),
    description  TEXT,
    extra        JSONB,
    risk_score   DOUBLE PRECISION NOT NULL DEFAULT 0,
    reasons      JSONB,
    fetched_at   TIMESTAMPTZ,
    created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    last_seen    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    UNIQUE (platform, handle)
);
CREATE INDEX IF NOT EXISTS idx_flagged_accounts_score ON flagged_accounts (risk_score DESC);
`

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// PostgresRepository persists flagged accounts into Postgres. The unique
// (platform, handle) constraint plus single-statement upserts give the
// atomicity the port requires under concurrent ingestion.
type PostgresRepository struct {
	db *sql.DB
}

var _ ports.AccountRepository = (*PostgresRepository)(nil)

// NewPostgresRepository wires a sql.DB implementation.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Open connects to Postgres and verifies the connection.
func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return db, nil
}

// EnsureSchema creates the flagged_accounts table if it does not exist.
func (r *PostgresRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, schemaDDL); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

// Upsert inserts the account on first observation or refreshes score,
// reasons, display fields, and last_seen on re-observation, leaving
// created_at untouched. A single statement, so no intermediate state is
// visible to other readers.
func (r *PostgresRepository) Upsert(ctx context.Context, account *domain.FlaggedAccount) (*domain.FlaggedAccount, error) {
	reasons := account.Reasons
	if reasons == nil {
		reasons = []string{}
	}
	reasonsJSON, err := json.Marshal(reasons)
	if err != nil {
		return nil, fmt.Errorf("marshal reasons: %w", err)
	}
	extraJSON, err := json.Marshal(account.Metadata.Extra)
	if err != nil {
		return nil, fmt.Errorf("marshal extra: %w", err)
	}

	now := time.Now().UTC()
	query, args, err := psql.Insert("flagged_accounts").
		Columns("platform", "handle", "display_name", "description", "extra", "risk_score", "reasons", "fetched_at", "created_at", "last_seen").
		Values(
			account.Metadata.Platform,
			account.Metadata.Handle.Normalized(),
			account.Metadata.DisplayName,
			account.Metadata.Description,
			extraJSON,
			account.RiskScore,
			reasonsJSON,
			account.Metadata.FetchedAt.UTC(),
			now,
			now,
		).
		Suffix(`ON CONFLICT (platform, handle) DO UPDATE
            SET display_name = EXCLUDED.display_name,
                description = EXCLUDED.description,
                extra = EXCLUDED.extra,
                risk_score = EXCLUDED.risk_score,
                reasons = EXCLUDED.reasons,
                fetched_at = EXCLUDED.fetched_at,
                last_seen = EXCLUDED.last_seen
            RETURNING id, created_at, last_seen`).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build upsert: %w", err)
	}

	saved := *account
	saved.Reasons = reasons
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&saved.ID, &saved.CreatedAt, &saved.LastSeen); err != nil {
		return nil, fmt.Errorf("upsert account: %w", err)
	}
	return &saved, nil
}

// Find loads one account by its natural key.
func (r *PostgresRepository) Find(ctx context.Context, platform, normalizedHandle string) (*domain.FlaggedAccount, error) {
	query, args, err := selectAccounts().
		Where(sq.Eq{"platform": platform, "handle": normalizedHandle}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build find: %w", err)
	}

	account, err := scanAccount(r.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find account: %w", err)
	}
	return account, nil
}

// ListTop returns up to limit accounts ordered by descending risk score.
func (r *PostgresRepository) ListTop(ctx context.Context, limit int) ([]*domain.FlaggedAccount, error) {
	if limit <= 0 {
		limit = 100
	}
	query, args, err := selectAccounts().
		OrderBy("risk_score DESC").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	defer rows.Close()

	var accounts []*domain.FlaggedAccount
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("scan account: %w", err)
		}
		accounts = append(accounts, account)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}
	return accounts, nil
}

func selectAccounts() sq.SelectBuilder {
	return psql.Select("id", "platform", "handle", "display_name", "description", "extra", "risk_score", "reasons", "fetched_at", "created_at", "last_seen").
		From("flagged_accounts")
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAccount(row rowScanner) (*domain.FlaggedAccount, error) {
	var (
		account     domain.FlaggedAccount
		platform    string
		handle      string
		displayName sql.NullString
		description sql.NullString
		extraJSON   []byte
		reasonsJSON []byte
		fetchedAt   sql.NullTime
	)

	if err := row.Scan(
		&account.ID,
		&platform,
		&handle,
		&displayName,
		&description,
		&extraJSON,
		&account.RiskScore,
		&reasonsJSON,
		&fetchedAt,
		&account.CreatedAt,
		&account.LastSeen,
	); err != nil {
		return nil, err
	}

	account.Metadata = domain.AccountMetadata{
		Platform:    platform,
		Handle:      domain.NewHandle(handle),
		DisplayName: displayName.String,
		Description: description.String,
	}
	if fetchedAt.Valid {
		account.Metadata.FetchedAt = fetchedAt.Time.UTC()
	}

	if len(reasonsJSON) > 0 {
		if err := json.Unmarshal(reasonsJSON, &account.Reasons); err != nil {
			return nil, fmt.Errorf("unmarshal reasons: %w", err)
		}
	}
	if account.Reasons == nil {
		account.Reasons = []string{}
	}
	if len(extraJSON) > 0 {
		if err := json.Unmarshal(extraJSON, &account.Metadata.Extra); err != nil {
			return nil, fmt.Errorf("unmarshal extra: %w", err)
		}
	}

	return &account, nil
}
