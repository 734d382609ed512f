package domain

import (
	"math"
	"strings"
	"time"
)

// PlatformTelegram is the platform label the seller/suspicious cascade
// applies to.
const PlatformTelegram = "telegram"

const telegramURLPrefix = "https://t.me/"

// Handle is a platform-specific account identifier. Equality and storage
// keys always use the normalized form.
type Handle struct {
	raw string
}

// NewHandle wraps a raw handle string as captured from the platform.
func NewHandle(raw string) Handle {
	return Handle{raw: raw}
}

// Raw returns the handle exactly as captured.
func (h Handle) Raw() string {
	return h.raw
}

// Normalized strips surrounding whitespace, a profile-URL prefix, and a
// leading @, then lower-cases. Applying it twice yields the same result.
func (h Handle) Normalized() string {
	v := strings.TrimSpace(h.raw)
	v = strings.TrimPrefix(v, telegramURLPrefix)
	v = strings.TrimPrefix(v, "@")
	return strings.ToLower(v)
}

// ClampScore bounds a raw accumulated risk value into [0, 1] rounded to
// three decimal places.
func ClampScore(v float64) float64 {
	if v < 0 {
		v = 0
	}
	if v > 1 {
		v = 1
	}
	return math.Round(v*1000) / 1000
}

// AccountMetadata is a snapshot of public account fields, immutable within
// a single classification pass.
type AccountMetadata struct {
	Platform    string
	Handle      Handle
	DisplayName string
	Description string
	Extra       map[string]any
	FetchedAt   time.Time
}

// FlaggedAccount combines metadata with its risk assessment. ID is zero
// until the account has been persisted; CreatedAt is set exactly once at
// first persistence and LastSeen advances on every re-observation.
type FlaggedAccount struct {
	ID        int64
	Metadata  AccountMetadata
	RiskScore float64
	Reasons   []string
	CreatedAt time.Time
	LastSeen  time.Time
}

// MarkSeen records a re-observation of the account.
func (f *FlaggedAccount) MarkSeen(at time.Time) {
	f.LastSeen = at.UTC()
}
