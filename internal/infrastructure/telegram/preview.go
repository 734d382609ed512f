package telegram

import (
	"context"
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"eumenides/internal/domain"
	"eumenides/internal/ports"
)

const previewBaseURL = "https://t.me"

var memberCountExpr = regexp.MustCompile(`([\d\s]+)\s*(?:members|subscribers)`)

// PreviewSource fetches public account metadata from the t.me web preview.
// Only data Telegram already exposes to any anonymous visitor is collected.
type PreviewSource struct {
	baseURL string
	client  *http.Client
}

var _ ports.MetadataSource = (*PreviewSource)(nil)

// NewPreviewSource wires an HTTP client; a nil client gets a sane default.
func NewPreviewSource(client *http.Client) *PreviewSource {
	if client == nil {
		client = &http.Client{Timeout: 20 * time.Second}
	}
	return &PreviewSource{baseURL: previewBaseURL, client: client}
}

// Platform identifies the source inside the registry.
func (s *PreviewSource) Platform() string {
	return domain.PlatformTelegram
}

// Fetch loads the preview page for a handle. Nonexistent or non-public
// handles yield (nil, nil); provider throttling yields domain.ErrThrottled
// so callers can apply backoff instead of treating it as not-found.
func (s *PreviewSource) Fetch(ctx context.Context, rawHandle string) (*domain.AccountMetadata, error) {
	handle := domain.NewHandle(rawHandle)
	normalized := handle.Normalized()
	if normalized == "" {
		return nil, nil
	}

	pageURL := fmt.Sprintf("%s/%s", s.baseURL, normalized)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", "eumenides/1.0")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request preview: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, nil
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, fmt.Errorf("preview for %s: %w", normalized, domain.ErrThrottled)
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("telegram returned %s", resp.Status)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse preview: %w", err)
	}

	title := strings.TrimSpace(doc.Find(".tgme_page_title").First().Text())
	if title == "" {
		// Placeholder page: the handle is unoccupied or hidden.
		return nil, nil
	}

	description := strings.TrimSpace(doc.Find(".tgme_page_description").First().Text())
	extra := map[string]any{}
	if count, ok := parseMemberCount(doc.Find(".tgme_page_extra").First().Text()); ok {
		extra["participants"] = count
	}

	return &domain.AccountMetadata{
		Platform:    domain.PlatformTelegram,
		Handle:      handle,
		DisplayName: title,
		Description: description,
		Extra:       extra,
		FetchedAt:   time.Now().UTC(),
	}, nil
}

func parseMemberCount(text string) (int, bool) {
	match := memberCountExpr.FindStringSubmatch(strings.TrimSpace(text))
	if match == nil {
		return 0, false
	}
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, match[1])
	count, err := strconv.Atoi(digits)
	if err != nil {
		return 0, false
	}
	return count, true
}
