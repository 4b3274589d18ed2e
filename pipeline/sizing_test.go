package pipeline_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/saorsa-labs/saorsa-fec/pipeline"
	"github.com/saorsa-labs/saorsa-fec/rs"
)

func TestRecommendedSpecScalesWithContentSize(t *testing.T) {
	small, smallChunk := pipeline.RecommendedSpec(500_000)
	require.Equal(t, rs.NSpec{K: 8, M: 2}, small)
	require.Equal(t, 64*1024, smallChunk)

	medium, mediumChunk := pipeline.RecommendedSpec(5_000_000)
	require.Equal(t, rs.NSpec{K: 16, M: 4}, medium)
	require.Equal(t, 128*1024, mediumChunk)

	large, largeChunk := pipeline.RecommendedSpec(50_000_000)
	require.Equal(t, rs.NSpec{K: 20, M: 5}, large)
	require.Equal(t, 256*1024, largeChunk)
}
