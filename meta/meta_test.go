package meta_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/saorsa-labs/saorsa-fec/kdf"
	"github.com/saorsa-labs/saorsa-fec/meta"
)

func sampleMeta() meta.FileMeta {
	var fileID, key [32]byte
	fileID[0] = 1
	key[0] = 2

	return meta.FileMeta{
		FileID:    fileID,
		TotalSize: 43,
		EncMode:   kdf.Convergent,
		Chunks: []meta.ChunkRef{
			{
				ChunkIndex:      0,
				K:               4,
				M:               2,
				ShardLength:     16,
				PlaintextLength: 43,
				CIDs:            [][32]byte{{1}, {2}, {3}, {4}, {5}, {6}},
				AEADKey:         key,
				Flags:           0x01,
			},
		},
		UserMeta: map[string]string{"filename": "report.pdf"},
	}
}

func TestMarshalUnmarshalRoundTrip(t *testing.T) {
	m := sampleMeta()
	data, err := meta.Marshal(m)
	require.NoError(t, err)

	got, err := meta.Unmarshal(data)
	require.NoError(t, err)
	require.Equal(t, m, got)
}

func TestUnmarshalRejectsBadMagic(t *testing.T) {
	data, err := meta.Marshal(sampleMeta())
	require.NoError(t, err)
	data[0] = 'X'

	_, err = meta.Unmarshal(data)
	require.Error(t, err)
}

func TestUnmarshalRejectsWrongVersion(t *testing.T) {
	data, err := meta.Marshal(sampleMeta())
	require.NoError(t, err)
	data[4] = 0xFF

	_, err = meta.Unmarshal(data)
	require.Error(t, err)
}

func TestUnmarshalRejectsTruncatedRecord(t *testing.T) {
	data, err := meta.Marshal(sampleMeta())
	require.NoError(t, err)

	_, err = meta.Unmarshal(data[:len(data)-5])
	require.Error(t, err)
}

func TestChunkRefNSpec(t *testing.T) {
	ref := meta.ChunkRef{K: 4, M: 2}
	spec := ref.NSpec()
	require.Equal(t, 4, spec.K)
	require.Equal(t, 2, spec.M)
}
