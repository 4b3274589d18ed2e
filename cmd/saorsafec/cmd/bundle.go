// Package cmd implements the saorsafec CLI's subcommands: one file per
// subcommand, a package-level flag.FlagSet, and a Run<Name>Cmd entry
// point, operating on a CID-addressed shard bundle directory.
package cmd

import (
	"context"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/saorsa-labs/saorsa-fec/backend"
	"github.com/saorsa-labs/saorsa-fec/cid"
	"github.com/saorsa-labs/saorsa-fec/errs"
	"github.com/saorsa-labs/saorsa-fec/kdf"
	"github.com/saorsa-labs/saorsa-fec/meta"
	"github.com/saorsa-labs/saorsa-fec/pipeline"
	"github.com/saorsa-labs/saorsa-fec/rs"
)

// metaFileName is the fixed name of the serialised FileMeta record
// written alongside a bundle directory's shard blobs.
const metaFileName = "file.meta"

// newLogger returns a development zap.Logger when verbose is set, and
// a no-op logger otherwise; the pipeline defaults to no-op on its own,
// but the CLI is explicit since it is the one caller a human watches
// interactively.
func newLogger(verbose bool) *zap.Logger {
	if !verbose {
		return zap.NewNop()
	}
	l, err := zap.NewDevelopment()
	if err != nil {
		return zap.NewNop()
	}
	return l
}

// parseEncMode maps the CLI's -mode flag to a kdf.EncMode.
func parseEncMode(s string) (kdf.EncMode, error) {
	switch s {
	case "convergent":
		return kdf.Convergent, nil
	case "convergent-secret":
		return kdf.ConvergentWithSecret, nil
	case "random":
		return kdf.Random, nil
	default:
		return 0, fmt.Errorf("%w: unknown -mode %q (want convergent, convergent-secret, or random)", errs.ErrInvalidParameters, s)
	}
}

// flushBundle writes every shard referenced by fm, plus fm itself, to
// dir: one file per CID (hex-named) and a file.meta record. The
// pipeline only ever talks to the abstract backend.Backend interface;
// this on-disk layout is purely a CLI convenience for moving a bundle
// between invocations, not a new backend implementation.
func flushBundle(ctx context.Context, be backend.Backend, fm meta.FileMeta, dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("%w: %v", errs.ErrBackendError, err)
	}
	for _, ref := range fm.Chunks {
		for _, raw := range ref.CIDs {
			id := cid.CID(raw)
			blob, err := be.Get(ctx, id)
			if err != nil {
				return err
			}
			path := filepath.Join(dir, hex.EncodeToString(id[:])+".shard")
			if err := os.WriteFile(path, blob, 0o644); err != nil {
				return fmt.Errorf("%w: %v", errs.ErrBackendError, err)
			}
		}
	}

	record, err := meta.Marshal(fm)
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, metaFileName), record, 0o644)
}

// loadBundle reads a file.meta record from dir and populates a fresh
// Memory backend with every shard blob the record references.
func loadBundle(ctx context.Context, dir string) (meta.FileMeta, backend.Backend, error) {
	record, err := os.ReadFile(filepath.Join(dir, metaFileName))
	if err != nil {
		return meta.FileMeta{}, nil, fmt.Errorf("%w: %v", errs.ErrFormatError, err)
	}
	fm, err := meta.Unmarshal(record)
	if err != nil {
		return meta.FileMeta{}, nil, err
	}

	be := backend.NewMemory()
	for _, ref := range fm.Chunks {
		for _, raw := range ref.CIDs {
			id := cid.CID(raw)
			path := filepath.Join(dir, hex.EncodeToString(id[:])+".shard")
			blob, err := os.ReadFile(path)
			if err != nil {
				// Missing shard files are expected when simulating loss;
				// the pipeline's k-of-n reconstruction tolerates gaps.
				continue
			}
			if err := be.Put(ctx, id, blob); err != nil {
				return meta.FileMeta{}, nil, err
			}
		}
	}
	return fm, be, nil
}

// pipelineConfig builds the shared pipeline.Config from the flags
// common to encode/decode/verify/bench.
func pipelineConfig(k, m, chunkSize int, modeFlag, secret string, accelerated, verbose bool) (pipeline.Config, error) {
	mode, err := parseEncMode(modeFlag)
	if err != nil {
		return pipeline.Config{}, err
	}
	return pipeline.Config{
		ChunkSize:   chunkSize,
		Spec:        rs.NSpec{K: k, M: m},
		EncMode:     mode,
		Secret:      []byte(secret),
		Accelerated: accelerated,
		Logger:      newLogger(verbose),
	}, nil
}
