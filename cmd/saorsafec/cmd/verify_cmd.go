package cmd

import (
	"context"
	"flag"
	"fmt"

	"github.com/saorsa-labs/saorsa-fec/pipeline"
)

var (
	VerifyCmd    = flag.NewFlagSet("verify", flag.ExitOnError)
	verBundleDir = VerifyCmd.String("bundle", "", "directory holding the shard bundle and file.meta written by encode")
	verMode      = VerifyCmd.String("mode", "convergent", "key derivation mode used at encode time")
	verSecret    = VerifyCmd.String("secret", "", "user secret, if -mode=convergent-secret was used at encode time")
)

// RunVerifyCmd reports, per chunk and per shard, whether each shard is
// present, header-valid, and tag-valid, without requiring a full
// k-of-n reconstruction to succeed — the CLI surface for
// pipeline.VerifyShards.
func RunVerifyCmd() error {
	if *verBundleDir == "" {
		return fmt.Errorf("-bundle is required")
	}

	ctx := context.Background()
	fm, be, err := loadBundle(ctx, *verBundleDir)
	if err != nil {
		return err
	}
	if len(fm.Chunks) == 0 {
		return fmt.Errorf("bundle has no chunks")
	}
	spec := fm.Chunks[0].NSpec()

	cfg, err := pipelineConfig(spec.K, spec.M, 1, *verMode, *verSecret, true, false)
	if err != nil {
		return err
	}
	p, err := pipeline.New(cfg, be)
	if err != nil {
		return err
	}

	reports, err := p.VerifyShards(ctx, fm)
	if err != nil {
		return err
	}

	for _, cv := range reports {
		present := 0
		for _, sv := range cv.Shards {
			if sv.IsTagValid {
				present++
			}
		}
		status := "OK"
		if !cv.Recoverable {
			status = "UNRECOVERABLE"
		}
		fmt.Printf("chunk %d: %d/%d shards valid [%s]\n", cv.ChunkIndex, present, len(cv.Shards), status)
		for _, sv := range cv.Shards {
			fmt.Printf("  shard %d: present=%v header=%v tag=%v\n", sv.ShardIndex, sv.IsAvailable, sv.IsHeaderValid, sv.IsTagValid)
		}
	}
	return nil
}
