// Package pipeline implements the write/read state machine over the
// chunk/kdf/aead/rs/header/cid/meta/backend components, with a bounded
// concurrency model for both CPU-bound coding work and backend I/O.
package pipeline

import (
	"fmt"
	"runtime"
	"time"

	"go.uber.org/zap"

	"github.com/saorsa-labs/saorsa-fec/errs"
	"github.com/saorsa-labs/saorsa-fec/kdf"
	"github.com/saorsa-labs/saorsa-fec/rs"
)

// Config is a plain struct the caller builds programmatically (or
// decodes from its own configuration source; this package does no
// config-file parsing of its own).
type Config struct {
	// ChunkSize is the configured plaintext chunk size.
	ChunkSize int
	// Spec is the (k, m) erasure-coding shape.
	Spec rs.NSpec
	// EncMode selects the key-derivation mode.
	EncMode kdf.EncMode
	// Secret is the user secret for ConvergentWithSecret mode; unused
	// otherwise.
	Secret []byte
	// Accelerated selects the klauspost-backed RS codec over the Pure
	// from-scratch one. The zero value (false) selects the Pure codec.
	Accelerated bool
	// MaxWorkers bounds the CPU-bound codec/AEAD worker pool.
	// Defaults to runtime.GOMAXPROCS(0) when zero.
	MaxWorkers int
	// MaxInFlightIO bounds concurrent backend put/get calls.
	// Defaults to MaxWorkers when zero.
	MaxInFlightIO int
	// MaxPutRetries bounds the number of retries after a backend Put
	// fails during a write, in addition to the initial attempt. Each
	// retry backs off exponentially from PutRetryBaseDelay. Once
	// exhausted, the write fails and no FileMeta is published.
	// Defaults to 3 when zero; set to a negative value to disable
	// retries entirely.
	MaxPutRetries int
	// PutRetryBaseDelay is the backoff duration before the first Put
	// retry, doubling on each subsequent attempt. Defaults to 100ms
	// when zero.
	PutRetryBaseDelay time.Duration
	// Logger receives structured diagnostics (discarded-shard events,
	// backend retries, reconstruction fallbacks) at Warn. Defaults to
	// a no-op logger.
	Logger *zap.Logger
}

// normalize fills in defaults and validates the configuration,
// returning the effective values the pipeline uses.
func (c Config) normalize() (Config, error) {
	if c.ChunkSize <= 0 {
		return c, fmt.Errorf("%w: ChunkSize must be positive", errs.ErrInvalidParameters)
	}
	if err := c.Spec.Validate(); err != nil {
		return c, err
	}
	if c.EncMode == kdf.ConvergentWithSecret && len(c.Secret) < 16 {
		return c, fmt.Errorf("%w: ConvergentWithSecret requires a secret of at least 16 bytes", errs.ErrInvalidParameters)
	}
	if c.MaxWorkers <= 0 {
		c.MaxWorkers = runtime.GOMAXPROCS(0)
	}
	if c.MaxInFlightIO <= 0 {
		c.MaxInFlightIO = c.MaxWorkers
	}
	if c.MaxPutRetries == 0 {
		c.MaxPutRetries = 3
	}
	if c.PutRetryBaseDelay <= 0 {
		c.PutRetryBaseDelay = 100 * time.Millisecond
	}
	if c.Logger == nil {
		c.Logger = zap.NewNop()
	}
	return c, nil
}
