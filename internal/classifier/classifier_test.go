package classifier

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eumenides/internal/domain"
)

func metadata(handle, displayName, description string) domain.AccountMetadata {
	return domain.AccountMetadata{
		Platform:    domain.PlatformTelegram,
		Handle:      domain.NewHandle(handle),
		DisplayName: displayName,
		Description: description,
		FetchedAt:   time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestClassifyDeterministic(t *testing.T) {
	t.Parallel()

	engine := New(DefaultTables())
	md := metadata("@cpsel_test", "CP SELLER GROUP \U0001F525", "best deal links")

	first := engine.Classify(md)
	second := engine.Classify(md)

	assert.Equal(t, first.Score, second.Score)
	assert.Equal(t, first.Raw, second.Raw)
	assert.Equal(t, first.Reasons, second.Reasons)
}

func TestClassifyFuzzyLeetspeak(t *testing.T) {
	t.Parallel()

	engine := New(DefaultTables())
	// "cpse11" folds to the same form as the seller keyword "cpsel".
	result := engine.Classify(metadata("cpse11", "", ""))

	assert.Contains(t, result.Reasons, "account name suggests seller activity (e.g. selling illegal content)")
	assert.GreaterOrEqual(t, result.Score, 0.2)
}

func TestClassifySellerSample(t *testing.T) {
	t.Parallel()

	engine := New(DefaultTables())
	result := engine.Classify(metadata("@cpsel_test", "CP SELLER GROUP \U0001F525", ""))

	require.GreaterOrEqual(t, result.Score, 0.2)
	assert.LessOrEqual(t, result.Score, 1.0)
	assert.GreaterOrEqual(t, result.Raw, result.Score)

	assert.Contains(t, result.Reasons, "account name suggests seller activity (e.g. selling illegal content)")
	assert.Contains(t, result.Reasons, "suspicious emoji in display name: '\U0001F525'")
	assert.Contains(t, result.Reasons, "high-risk phrase detected: 'group'")
}

func TestClassifyCascadeFirstTierWins(t *testing.T) {
	t.Parallel()

	engine := New(DefaultTables())
	// Handle carries both a seller and a suspicious keyword; only the
	// seller tier may fire.
	result := engine.Classify(metadata("cpsel_cpgroup", "", ""))

	assert.Contains(t, result.Reasons, "account name suggests seller activity (e.g. selling illegal content)")
	assert.NotContains(t, result.Reasons, "account name suggests suspicious/illicit content")
	assert.NotContains(t, result.Reasons, "account name matches public Telegram handle pattern (potential risk)")
}

func TestClassifyGenericHandleFallback(t *testing.T) {
	t.Parallel()

	engine := New(DefaultTables())
	result := engine.Classify(metadata("random_user9", "", ""))

	assert.Equal(t, []string{"account name matches public Telegram handle pattern (potential risk)"}, result.Reasons)
	assert.Equal(t, 0.25, result.Score)
}

func TestClassifyMultipleEmojiBoost(t *testing.T) {
	t.Parallel()

	engine := New(DefaultTables())
	result := engine.Classify(metadata("ab", "\U0001F525\U0001F4A6", ""))

	assert.Contains(t, result.Reasons, "multiple suspicious emojis detected")
}

func TestClassifyPlainMetadataScoresLow(t *testing.T) {
	t.Parallel()

	engine := New(DefaultTables())
	// Short handle avoids the generic public-handle fallback.
	result := engine.Classify(metadata("ab12", "Gardening Tips", "Seasonal planting advice"))

	assert.Less(t, result.Score, 0.2)
	assert.Empty(t, result.Reasons)
}

func TestClassifyNonTelegramSkipsCascade(t *testing.T) {
	t.Parallel()

	engine := New(DefaultTables())
	md := metadata("random_user9", "", "")
	md.Platform = "mastodon"
	result := engine.Classify(md)

	assert.Empty(t, result.Reasons)
	assert.Equal(t, 0.0, result.Score)
}

func TestClassifyRepeatedPatternBoost(t *testing.T) {
	t.Parallel()

	engine := New(DefaultTables())
	result := engine.Classify(metadata("megalink_hub", "megalink central", ""))

	assert.Contains(t, result.Reasons, "repeated suspicious pattern in handle and display name: 'megalink'")
}
