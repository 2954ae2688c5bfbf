package merkle

import (
	"math/big"

	"golang.org/x/sync/errgroup"
)

// PrecomputePairHashes computes Poseidon2(leaves[2i], leaves[2i+1]) for
// every pair concurrently via errgroup. The individual hashes are
// independent of insertion order, so they can be computed ahead of the
// strictly sequential insertion recurrence. leaves must have even length.
func PrecomputePairHashes(leaves []*big.Int) ([]*big.Int, error) {
	if len(leaves)%2 != 0 {
		return nil, errOddLeaves(len(leaves))
	}

	numPairs := len(leaves) / 2
	hashes := make([]*big.Int, numPairs)

	var g errgroup.Group
	for p := 0; p < numPairs; p++ {
		p := p
		g.Go(func() error {
			h, err := hashPair(leaves[p*2], leaves[p*2+1])
			if err != nil {
				return err
			}
			hashes[p] = h
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return hashes, nil
}

// BuildConcurrent builds a fresh tree from a known-up-front, even-length
// leaf set: the level-0 pair hashes fan out across goroutines, then the
// insertion recurrence replays them strictly in order on one goroutine;
// the mutation path itself never runs concurrently. Intended for test and
// fixture code building large trees, not for the live insertion path.
func BuildConcurrent(leaves []*big.Int) (*Tree, error) {
	pairHashes, err := PrecomputePairHashes(leaves)
	if err != nil {
		return nil, err
	}

	t, err := New()
	if err != nil {
		return nil, err
	}
	for p, h := range pairHashes {
		if err := t.insertHashedPair(leaves[p*2], leaves[p*2+1], h); err != nil {
			return nil, err
		}
	}
	return t, nil
}
