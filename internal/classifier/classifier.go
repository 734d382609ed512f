package classifier

import (
	"fmt"
	"regexp"
	"strings"

	"eumenides/internal/domain"
)

// Signal weights. Accumulated into a single running total; no family is
// capped individually. Tuning constants, not derived values.
const (
	keywordWeight          = 0.35
	emojiWeight            = 0.35
	highRiskPhraseWeight   = 0.5
	namePhraseWeight       = 0.2
	sellerHandleWeight     = 1.0
	sellerNameWeight       = 0.8
	suspiciousHandleWeight = 0.5
	suspiciousNameWeight   = 0.4
	genericHandleWeight    = 0.25
	repeatPatternWeight    = 0.3
	multiEmojiWeight       = 0.2
)

var genericHandlePattern = regexp.MustCompile(`^[A-Za-z0-9_]{5,32}$`)

// Result carries the clamped score, the ordered reason list, and the raw
// pre-clamp total kept for diagnostic reporting only.
type Result struct {
	Score   float64
	Reasons []string
	Raw     float64
}

// Engine scores account metadata against its signal tables. Classify is a
// pure function: identical metadata and tables always yield an identical
// result.
type Engine struct {
	tables Tables
}

// New builds an engine over the given signal tables.
func New(tables Tables) *Engine {
	return &Engine{tables: tables}
}

// Classify computes the risk score and reason list for one metadata
// snapshot. Reasons preserve evaluation order and repeated triggers append
// repeated reasons.
func (e *Engine) Classify(md domain.AccountMetadata) Result {
	reasons := []string{}
	score := 0.0

	name := strings.ToLower(md.DisplayName)
	desc := strings.ToLower(md.Description)
	handle := md.Handle.Normalized()

	fields := []struct {
		text  string
		label string
	}{
		{name, "display name"},
		{desc, "description"},
		{handle, "handle"},
	}

	for _, kw := range e.tables.SuspiciousKeywords {
		for _, f := range fields {
			if e.matches(kw, f.text) {
				score += keywordWeight
				reasons = append(reasons, fmt.Sprintf("suspicious keyword in %s: '%s'", f.label, kw))
			}
		}
	}

	emojiHits := 0
	for _, em := range e.tables.SuspiciousEmoji {
		for _, f := range []struct {
			text  string
			label string
		}{
			{md.DisplayName, "display name"},
			{md.Description, "description"},
		} {
			if strings.Contains(f.text, em) {
				score += emojiWeight
				emojiHits++
				reasons = append(reasons, fmt.Sprintf("suspicious emoji in %s: '%s'", f.label, em))
			}
		}
	}

	for _, phrase := range e.tables.HighRiskPhrases {
		if strings.Contains(name, phrase) || strings.Contains(handle, phrase) {
			score += highRiskPhraseWeight
			reasons = append(reasons, fmt.Sprintf("high-risk phrase detected: '%s'", phrase))
		}
	}

	for _, phrase := range e.tables.DisplayNamePhrases {
		if strings.Contains(name, phrase) {
			score += namePhraseWeight
			reasons = append(reasons, fmt.Sprintf("suspicious phrase in display name: '%s'", phrase))
		}
	}

	// Platform-specific cascade: mutually exclusive, first matching tier
	// wins and later tiers are skipped.
	if md.Platform == domain.PlatformTelegram {
		switch {
		case e.anyMatch(e.tables.SellerHandleKeywords, handle):
			score += sellerHandleWeight
			reasons = append(reasons, "account name suggests seller activity (e.g. selling illegal content)")
		case e.anyMatch(e.tables.SellerHandleKeywords, name):
			score += sellerNameWeight
			reasons = append(reasons, "display name suggests seller activity (e.g. selling illegal content)")
		case e.anyMatch(e.tables.SuspiciousHandleKeywords, handle):
			score += suspiciousHandleWeight
			reasons = append(reasons, "account name suggests suspicious/illicit content")
		case e.anyMatch(e.tables.SuspiciousHandleKeywords, name):
			score += suspiciousNameWeight
			reasons = append(reasons, "display name suggests suspicious/illicit content")
		case genericHandlePattern.MatchString(handle):
			score += genericHandleWeight
			reasons = append(reasons, "account name matches public Telegram handle pattern (potential risk)")
		}
	}

	// Corroboration boost: the same keyword present in both handle and
	// display name is worth more than either hit alone.
	for _, kw := range append(append([]string{}, e.tables.SellerHandleKeywords...), e.tables.SuspiciousHandleKeywords...) {
		if e.matches(kw, handle) && e.matches(kw, name) {
			score += repeatPatternWeight
			reasons = append(reasons, fmt.Sprintf("repeated suspicious pattern in handle and display name: '%s'", kw))
		}
	}

	if emojiHits >= 2 {
		score += multiEmojiWeight
		reasons = append(reasons, "multiple suspicious emojis detected")
	}

	return Result{
		Score:   domain.ClampScore(score),
		Reasons: reasons,
		Raw:     score,
	}
}

// matches reports an exact substring hit or an obfuscation-tolerant hit
// after folding both sides through the substitution table.
func (e *Engine) matches(keyword, text string) bool {
	if strings.Contains(text, keyword) {
		return true
	}
	return strings.Contains(e.leetFold(text), e.leetFold(keyword))
}

func (e *Engine) anyMatch(keywords []string, text string) bool {
	for _, kw := range keywords {
		if e.matches(kw, text) {
			return true
		}
	}
	return false
}

// leetFold lower-cases and applies the single-rune substitution table.
// Letter-for-letter only, so folded forms never collide across lengths.
func (e *Engine) leetFold(s string) string {
	return strings.Map(func(r rune) rune {
		if sub, ok := e.tables.LeetSubstitutions[r]; ok {
			return sub
		}
		return r
	}, strings.ToLower(s))
}
