package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eumenides/internal/domain"
	"eumenides/internal/infrastructure/storage"
	"eumenides/internal/usecase"
)

func newTestServer(t *testing.T) (*httptest.Server, *storage.MemoryRepository) {
	t.Helper()
	repo := storage.NewMemoryRepository()
	server := NewServer(usecase.NewListFlagged(repo), repo, nil)
	ts := httptest.NewServer(server.Routes())
	t.Cleanup(ts.Close)
	return ts, repo
}

func seed(t *testing.T, repo *storage.MemoryRepository, handle string, score float64) {
	t.Helper()
	_, err := repo.Upsert(context.Background(), &domain.FlaggedAccount{
		Metadata: domain.AccountMetadata{
			Platform:  domain.PlatformTelegram,
			Handle:    domain.NewHandle(handle),
			FetchedAt: time.Now().UTC(),
		},
		RiskScore: score,
		Reasons:   []string{"test reason"},
	})
	require.NoError(t, err)
}

func TestListFlagsOrderedByScore(t *testing.T) {
	t.Parallel()

	ts, repo := newTestServer(t)
	seed(t, repo, "low_account", 0.3)
	seed(t, repo, "high_account", 0.9)

	resp, err := http.Get(ts.URL + "/api/flags")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var views []usecase.FlaggedView
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&views))
	require.Len(t, views, 2)
	assert.Equal(t, "high_account", views[0].Handle)
	assert.Equal(t, "low_account", views[1].Handle)
	assert.NotEmpty(t, views[0].CreatedAt)
}

func TestListFlagsLimit(t *testing.T) {
	t.Parallel()

	ts, repo := newTestServer(t)
	seed(t, repo, "one_account", 0.3)
	seed(t, repo, "two_account", 0.9)

	resp, err := http.Get(ts.URL + "/api/flags?limit=1")
	require.NoError(t, err)
	defer resp.Body.Close()

	var views []usecase.FlaggedView
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&views))
	assert.Len(t, views, 1)
}

func TestListFlagsInvalidLimit(t *testing.T) {
	t.Parallel()

	ts, _ := newTestServer(t)

	resp, err := http.Get(ts.URL + "/api/flags?limit=bogus")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestMarkForReview(t *testing.T) {
	t.Parallel()

	ts, repo := newTestServer(t)
	seed(t, repo, "cpsel_test", 0.9)

	resp, err := http.Post(ts.URL+"/api/report/telegram/cpsel_test", "application/json", nil)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "marked_for_manual_review", body["status"])
	assert.Equal(t, "cpsel_test", body["handle"])
}

func TestMarkForReviewNotFound(t *testing.T) {
	t.Parallel()

	ts, _ := newTestServer(t)

	resp, err := http.Post(ts.URL+"/api/report/telegram/nobody", "application/json", nil)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
