package merkle

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/0xPolygon/edge-vault/types"
)

func generateTestData(t *testing.T, count int) [][]byte {
	t.Helper()

	data := make([][]byte, count)
	for i := 0; i < count; i++ {
		data[i] = []byte(fmt.Sprintf("message %d", i))
	}

	return data
}

func TestMerkleTree_EmptyData(t *testing.T) {
	t.Parallel()

	_, err := NewMerkleTree(nil)
	assert.Error(t, err)
}

func TestMerkleTree_SingleLeaf(t *testing.T) {
	t.Parallel()

	data := generateTestData(t, 1)

	tree, err := NewMerkleTree(data)
	require.NoError(t, err)

	require.NotEqual(t, types.ZeroHash, tree.Hash())
	assert.Equal(t, uint64(1), tree.LeafCount())

	proof := tree.GenerateProof(0)
	assert.Empty(t, proof)

	assert.NoError(t, VerifyProof(0, data[0], proof, tree.Hash()))
}

func TestMerkleTree_GenerateAndVerifyProofs(t *testing.T) {
	t.Parallel()

	for _, count := range []int{2, 3, 4, 7, 8, 9, 16, 33} {
		count := count

		t.Run(fmt.Sprintf("%d leaves", count), func(t *testing.T) {
			t.Parallel()

			data := generateTestData(t, count)

			tree, err := NewMerkleTree(data)
			require.NoError(t, err)

			for i := 0; i < count; i++ {
				proof := tree.GenerateProof(uint64(i))
				assert.NoError(t, VerifyProof(uint64(i), data[i], proof, tree.Hash()))
			}
		})
	}
}

func TestMerkleTree_VerifyProofFailures(t *testing.T) {
	t.Parallel()

	data := generateTestData(t, 8)

	tree, err := NewMerkleTree(data)
	require.NoError(t, err)

	proof := tree.GenerateProof(3)

	// wrong leaf
	assert.Error(t, VerifyProof(3, data[4], proof, tree.Hash()))

	// wrong index
	assert.Error(t, VerifyProof(4, data[3], proof, tree.Hash()))

	// wrong root
	assert.Error(t, VerifyProof(3, data[3], proof, types.ZeroHash))

	// tampered proof
	tampered := make([]types.Hash, len(proof))
	copy(tampered, proof)
	tampered[0] = types.StringToHash("0xbad")
	assert.Error(t, VerifyProof(3, data[3], tampered, tree.Hash()))
}

func TestMerkleTree_RootChangesWithData(t *testing.T) {
	t.Parallel()

	first, err := NewMerkleTree(generateTestData(t, 4))
	require.NoError(t, err)

	data := generateTestData(t, 4)
	data[2] = []byte("tampered")

	second, err := NewMerkleTree(data)
	require.NoError(t, err)

	assert.NotEqual(t, first.Hash(), second.Hash())
}
