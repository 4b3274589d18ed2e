package cmd

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/saorsa-labs/saorsa-fec/pipeline"
)

var (
	DecodeCmd      = flag.NewFlagSet("decode", flag.ExitOnError)
	decBundleDir   = DecodeCmd.String("bundle", "", "directory holding the shard bundle and file.meta written by encode")
	decOutput      = DecodeCmd.String("output", "", "path to write the reconstructed plaintext to")
	decMode        = DecodeCmd.String("mode", "convergent", "key derivation mode used at encode time")
	decSecret      = DecodeCmd.String("secret", "", "user secret, if -mode=convergent-secret was used at encode time")
	decAccelerated = DecodeCmd.Bool("accelerated", true, "use the SIMD-accelerated Reed-Solomon codec")
	decVerbose     = DecodeCmd.Bool("v", false, "log structured pipeline diagnostics")
)

// RunDecodeCmd loads a bundle written by encode, reconstructs the
// plaintext from whatever shard files are present (which may be a
// strict subset, simulating shard loss), and writes it to -output.
func RunDecodeCmd() error {
	if *decBundleDir == "" || *decOutput == "" {
		return fmt.Errorf("both -bundle and -output are required")
	}

	ctx := context.Background()
	fm, be, err := loadBundle(ctx, *decBundleDir)
	if err != nil {
		return err
	}
	if len(fm.Chunks) == 0 {
		return fmt.Errorf("bundle has no chunks")
	}
	spec := fm.Chunks[0].NSpec()

	// ChunkSize only affects WriteFile's chunker; ReadFile reconstructs
	// entirely from FileMeta's per-chunk ShardLength, so any positive
	// placeholder satisfies Config.normalize here.
	cfg, err := pipelineConfig(spec.K, spec.M, 1, *decMode, *decSecret, *decAccelerated, *decVerbose)
	if err != nil {
		return err
	}

	p, err := pipeline.New(cfg, be)
	if err != nil {
		return err
	}

	out, err := os.Create(*decOutput)
	if err != nil {
		return err
	}
	defer out.Close()

	if err := p.ReadFile(ctx, fm, out); err != nil {
		return err
	}

	log.Printf("reconstructed %s to %s", formatSize(int64(fm.TotalSize)), *decOutput)
	return nil
}
