package domain

import "errors"

// ErrNotFound signals that a lookup yielded nothing. For ingestion it is a
// normal terminal outcome, not a failure.
var ErrNotFound = errors.New("not found")

// ErrThrottled signals a transient provider-side failure (rate limiting).
// Callers decide backoff policy; it must never be masked as not-found.
var ErrThrottled = errors.New("provider throttled")
