package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHandleNormalized(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"@Foo":              "foo",
		"https://t.me/Foo":  "foo",
		"  @Foo  ":          "foo",
		"foo":               "foo",
		"CP_Seller":         "cp_seller",
		"https://t.me/@Bar": "bar",
	}

	for raw, want := range cases {
		assert.Equal(t, want, NewHandle(raw).Normalized(), "raw %q", raw)
	}
}

func TestHandleNormalizedIdempotent(t *testing.T) {
	t.Parallel()

	for _, raw := range []string{"@Foo", "https://t.me/Foo", " cpsel_test ", "plain"} {
		once := NewHandle(raw).Normalized()
		twice := NewHandle(once).Normalized()
		assert.Equal(t, once, twice, "raw %q", raw)
	}
}

func TestClampScore(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 0.0, ClampScore(-3.2))
	assert.Equal(t, 0.0, ClampScore(0))
	assert.Equal(t, 1.0, ClampScore(1))
	assert.Equal(t, 1.0, ClampScore(4.75))
	assert.Equal(t, 0.35, ClampScore(0.35))
	assert.Equal(t, 0.123, ClampScore(0.1234))
	assert.Equal(t, 0.124, ClampScore(0.1236))
}

func TestClampScoreIdempotent(t *testing.T) {
	t.Parallel()

	for _, v := range []float64{-1, 0, 0.2, 0.3335, 0.999, 1, 2.8} {
		once := ClampScore(v)
		assert.Equal(t, once, ClampScore(once))
		assert.GreaterOrEqual(t, once, 0.0)
		assert.LessOrEqual(t, once, 1.0)
	}
}
