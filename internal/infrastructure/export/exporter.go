package export

import (
	"context"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/crypto/chacha20poly1305"

	"eumenides/internal/eventbus"
)

const (
	auditLogName  = "index.audit.log"
	producerName  = "Eumenides"
	recordSource  = "eumenides_metadata_monitor"
	recordVersion = "1.0"
)

// ErrKeyMissing signals that no encryption key was provisioned. It fails
// the single export attempt without corrupting the audit log or crashing
// the process.
var ErrKeyMissing = errors.New("export encryption key not configured")

// record is the canonical export payload. Field order is fixed; Go JSON
// marshaling preserves struct order, which keeps the serialization stable.
type record struct {
	ExportedAt  string   `json:"exported_at"`
	Source      string   `json:"source"`
	Version     string   `json:"version"`
	Platform    string   `json:"platform"`
	Handle      string   `json:"handle"`
	DisplayName string   `json:"display_name"`
	Description string   `json:"description"`
	RiskScore   float64  `json:"risk_score"`
	Reasons     []string `json:"reasons"`
	FirstSeen   string   `json:"first_seen"`
	LastSeen    string   `json:"last_seen"`
	CrawlLog    []string `json:"crawl_log"`
	Producer    producer `json:"producer"`
}

type producer struct {
	Name    string `json:"name"`
	Contact string `json:"contact"`
}

type auditEntry struct {
	Time       string `json:"time"`
	File       string `json:"file"`
	HandleHMAC string `json:"handle_hmac"`
}

// Exporter writes one encrypted file per flagged account and appends a
// privacy-preserving line to the audit index. The encryption key and the
// audit HMAC key are distinct secrets provisioned out-of-band.
type Exporter struct {
	dir     string
	encKey  []byte
	hmacKey []byte
	contact string
	logger  *slog.Logger
	now     func() time.Time
}

// NewExporter builds the export subscriber. encKey must be exactly
// chacha20poly1305.KeySize bytes; an empty key defers the failure to export
// time per the error taxonomy.
func NewExporter(dir string, encKey, hmacKey []byte, contact string, logger *slog.Logger) *Exporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Exporter{
		dir:     dir,
		encKey:  encKey,
		hmacKey: hmacKey,
		contact: contact,
		logger:  logger,
		now:     time.Now,
	}
}

// Handle encrypts and writes the export for one flagged account, then
// appends the audit index line. Matches the eventbus.Handler signature.
func (e *Exporter) Handle(ctx context.Context, payload eventbus.FlaggedPayload) error {
	if len(e.encKey) == 0 {
		return ErrKeyMissing
	}

	raw, err := json.MarshalIndent(e.buildRecord(payload), "", "  ")
	if err != nil {
		return fmt.Errorf("marshal export record: %w", err)
	}

	ciphertext, err := e.encrypt(raw)
	if err != nil {
		return fmt.Errorf("encrypt export: %w", err)
	}

	if err := os.MkdirAll(e.dir, 0o700); err != nil {
		return fmt.Errorf("create export dir: %w", err)
	}

	filename := e.buildFilename(payload.Handle)
	path := filepath.Join(e.dir, filename)
	if err := os.WriteFile(path, ciphertext, 0o600); err != nil {
		return fmt.Errorf("write export file: %w", err)
	}

	if err := e.appendAudit(filename, payload.Handle); err != nil {
		return fmt.Errorf("append audit index: %w", err)
	}

	e.logger.Info("export written", "file", filename)
	return nil
}

func (e *Exporter) buildRecord(payload eventbus.FlaggedPayload) record {
	reasons := payload.Reasons
	if reasons == nil {
		reasons = []string{}
	}
	crawlLog := payload.CrawlLog
	if crawlLog == nil {
		crawlLog = []string{}
	}
	return record{
		ExportedAt:  e.now().UTC().Format(time.RFC3339),
		Source:      recordSource,
		Version:     recordVersion,
		Platform:    payload.Platform,
		Handle:      payload.Handle,
		DisplayName: payload.DisplayName,
		Description: payload.Description,
		RiskScore:   payload.RiskScore,
		Reasons:     reasons,
		FirstSeen:   payload.FirstSeen,
		LastSeen:    payload.LastSeen,
		CrawlLog:    crawlLog,
		Producer:    producer{Name: producerName, Contact: e.contact},
	}
}

// encrypt seals raw with XChaCha20-Poly1305 under a fresh random nonce, so
// identical content never yields identical ciphertext. The nonce is
// prepended to the sealed bytes.
func (e *Exporter) encrypt(raw []byte) ([]byte, error) {
	aead, err := chacha20poly1305.NewX(e.encKey)
	if err != nil {
		return nil, fmt.Errorf("init cipher: %w", err)
	}

	nonce := make([]byte, aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("generate nonce: %w", err)
	}

	return aead.Seal(nonce, nonce, raw, nil), nil
}

// Decrypt reverses encrypt for operator tooling holding the key.
func Decrypt(key, blob []byte) ([]byte, error) {
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, fmt.Errorf("init cipher: %w", err)
	}
	if len(blob) < aead.NonceSize() {
		return nil, fmt.Errorf("ciphertext too short")
	}
	nonce, ciphertext := blob[:aead.NonceSize()], blob[aead.NonceSize():]
	raw, err := aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, fmt.Errorf("open ciphertext: %w", err)
	}
	return raw, nil
}

func (e *Exporter) buildFilename(handle string) string {
	timestamp := e.now().UTC().Format("20060102T150405Z")
	return fmt.Sprintf("%s_%s.json.enc", timestamp, sanitizeHandle(handle))
}

// sanitizeHandle keeps the filename free of path traversal characters and
// bounded in length.
func sanitizeHandle(handle string) string {
	safe := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '_' || r == '-':
			return r
		default:
			return '_'
		}
	}, handle)
	if len(safe) > 60 {
		safe = safe[:60]
	}
	if safe == "" {
		return "unknown"
	}
	return safe
}

func (e *Exporter) appendAudit(filename, handle string) error {
	entry := auditEntry{
		Time:       e.now().UTC().Format(time.RFC3339),
		File:       filename,
		HandleHMAC: e.handleHMAC(handle),
	}
	line, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal audit entry: %w", err)
	}

	path := filepath.Join(e.dir, auditLogName)
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
	if err != nil {
		return fmt.Errorf("open audit log: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(append(line, '\n')); err != nil {
		return fmt.Errorf("write audit line: %w", err)
	}
	return nil
}

// handleHMAC keys the hash with a secret distinct from the encryption key,
// so audit entries correlate to handles only for holders of the HMAC key.
func (e *Exporter) handleHMAC(handle string) string {
	mac := hmac.New(sha256.New, e.hmacKey)
	mac.Write([]byte(handle))
	return hex.EncodeToString(mac.Sum(nil))
}
