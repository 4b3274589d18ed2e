package cmd

import (
	"context"
	"crypto/rand"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/saorsa-labs/saorsa-fec/backend"
	"github.com/saorsa-labs/saorsa-fec/meta"
	"github.com/saorsa-labs/saorsa-fec/pipeline"
	"github.com/saorsa-labs/saorsa-fec/progress"
)

var (
	EncodeCmd       = flag.NewFlagSet("encode", flag.ExitOnError)
	encInput        = EncodeCmd.String("input", "", "path to the plaintext input file")
	encOutDir       = EncodeCmd.String("out", "", "directory to write the shard bundle and file.meta to")
	encDataShards   = EncodeCmd.Int("k", 4, "number of data shards")
	encParityShards = EncodeCmd.Int("m", 2, "number of parity shards")
	encChunkSize    = EncodeCmd.Int("chunk-size", 1<<16, "plaintext chunk size in bytes")
	encMode         = EncodeCmd.String("mode", "convergent", "key derivation mode: convergent, convergent-secret, or random")
	encSecret       = EncodeCmd.String("secret", "", "user secret for -mode=convergent-secret (>=16 bytes)")
	encAccelerated  = EncodeCmd.Bool("accelerated", true, "use the SIMD-accelerated Reed-Solomon codec")
	encVerbose      = EncodeCmd.Bool("v", false, "log structured pipeline diagnostics")
	encAutoShape    = EncodeCmd.Bool("auto-shape", false, "pick k, m, and chunk-size from the input's size instead of -k/-m/-chunk-size")
)

// RunEncodeCmd reads -input, runs it through the pipeline, and writes
// the resulting shard bundle and FileMeta record to -out.
func RunEncodeCmd() error {
	if *encInput == "" || *encOutDir == "" {
		return fmt.Errorf("both -input and -out are required")
	}

	f, err := os.Open(*encInput)
	if err != nil {
		return err
	}
	defer f.Close()
	stat, err := f.Stat()
	if err != nil {
		return err
	}

	k, m, chunkSize := *encDataShards, *encParityShards, *encChunkSize
	if *encAutoShape {
		spec, recommendedChunkSize := pipeline.RecommendedSpec(stat.Size())
		k, m, chunkSize = spec.K, spec.M, recommendedChunkSize
		log.Printf("auto-shape: k=%d m=%d chunk-size=%s for %s input", k, m, formatSize(int64(chunkSize)), formatSize(stat.Size()))
	}

	cfg, err := pipelineConfig(k, m, chunkSize, *encMode, *encSecret, *encAccelerated, *encVerbose)
	if err != nil {
		return err
	}

	be := backend.NewMemory()
	p, err := pipeline.New(cfg, be)
	if err != nil {
		return err
	}

	reader := progress.Reader(f, stat.Size(), func(current, total int64) {
		fmt.Printf("encoding: %s / %s\r", formatSize(current), formatSize(total))
	})

	fileID, err := meta.NewFileID(rand.Reader)
	if err != nil {
		return err
	}

	ctx := context.Background()
	fm, err := p.WriteFile(ctx, reader, fileID)
	if err != nil {
		return err
	}
	fmt.Println()

	if err := flushBundle(ctx, be, fm, *encOutDir); err != nil {
		return err
	}

	log.Printf("wrote %d chunks, %d total shards, %s plaintext to %s",
		len(fm.Chunks), len(fm.Chunks)*(k+m), formatSize(int64(fm.TotalSize)), *encOutDir)
	return nil
}
