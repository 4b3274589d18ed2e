package cmd

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"math/rand"
	"sync"
	"time"

	"github.com/saorsa-labs/saorsa-fec/backend"
	"github.com/saorsa-labs/saorsa-fec/pipeline"
)

var (
	BenchCmd       = flag.NewFlagSet("bench", flag.ExitOnError)
	bDataShards    = BenchCmd.Int("k", 4, "number of data shards")
	bParityShards  = BenchCmd.Int("m", 2, "number of parity shards")
	bChunkSize     = BenchCmd.Int("chunk-size", 1<<20, "plaintext chunk size in bytes")
	bThreads       = BenchCmd.Int("threads", 1, "number of concurrent WriteFile runs")
	bInputSize     = BenchCmd.Int("input-size", 10*1024*1024, "size of the random input per run")
	bDebugFirstHdr = BenchCmd.Bool("debug-header", false, "hexdump the first shard's header after one run")
)

// RunBenchCmd drives Pipeline.WriteFile and ReadFile against a random
// plaintext stream of -input-size bytes, -threads times concurrently,
// and reports average round-trip time and throughput.
func RunBenchCmd() error {
	log.Printf("running benchmark: k=%d m=%d chunk-size=%s threads=%d input-size=%s",
		*bDataShards, *bParityShards, formatSize(int64(*bChunkSize)), *bThreads, formatSize(int64(*bInputSize)))

	cfg, err := pipelineConfig(*bDataShards, *bParityShards, *bChunkSize, "random", "", true, false)
	if err != nil {
		return err
	}

	runOnce := func() (time.Duration, error) {
		be := backend.NewMemory()
		p, err := pipeline.New(cfg, be)
		if err != nil {
			return 0, err
		}

		input := io.LimitReader(rand.New(rand.NewSource(time.Now().UnixNano())), int64(*bInputSize))
		var fileID [32]byte

		start := time.Now()
		fm, err := p.WriteFile(context.Background(), input, fileID)
		if err != nil {
			return 0, err
		}
		if err := p.ReadFile(context.Background(), fm, io.Discard); err != nil {
			return 0, err
		}
		elapsed := time.Since(start)

		if *bDebugFirstHdr && len(fm.Chunks) > 0 {
			id := fm.Chunks[0].CIDs[0]
			blob, _ := be.Get(context.Background(), id)
			if len(blob) >= 96 {
				hexdump(blob[:96], "shard0-header")
			}
		}
		return elapsed, nil
	}

	var (
		mu        sync.Mutex
		durations []time.Duration
		wg        sync.WaitGroup
	)
	for i := 0; i < *bThreads; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			d, err := runOnce()
			if err != nil {
				log.Printf("benchmark run failed: %v", err)
				return
			}
			mu.Lock()
			durations = append(durations, d)
			mu.Unlock()
		}()
	}
	wg.Wait()

	if len(durations) == 0 {
		return fmt.Errorf("every benchmark run failed")
	}

	var total time.Duration
	for _, d := range durations {
		total += d
	}
	average := total / time.Duration(len(durations))
	speed := int64(float64(*bInputSize) * float64(len(durations)) / average.Seconds())
	log.Printf("average round-trip: %v, throughput: %s/s", average, formatSize(speed))
	return nil
}
