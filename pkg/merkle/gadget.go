package merkle

import (
	"github.com/consensys/gnark/frontend"

	"github.com/vortexlabs/vortex-core/config"
	"github.com/vortexlabs/vortex-core/pkg/poseidon"
)

// PathVar is the in-circuit counterpart to Path: H pairs of allocated
// variables, walked the same way Path.CalculateRoot walks big.Ints.
type PathVar [config.MerkleTreeLevels][2]frontend.Variable

// RootHash computes the root implied by leaf and the path by iterating
// i = 0..H-1: the running hash is matched against pair[i].left via equality
// rather than an explicit path-index bit, and mixed with whichever side
// does not match. Collision resistance of the pair hash keeps the implicit
// selector sound for membership checks.
func RootHash(api frontend.API, leaf frontend.Variable, path *PathVar, hasher *poseidon.Var) (frontend.Variable, error) {
	prev := leaf

	for i := range path {
		left, right := path[i][0], path[i][1]

		isLeft := api.IsZero(api.Sub(prev, left))

		l := api.Select(isLeft, prev, left)
		r := api.Select(isLeft, right, prev)

		h, err := hasher.Hash2(l, r)
		if err != nil {
			return nil, err
		}
		prev = h
	}

	return prev, nil
}

// CheckMembership returns a boolean (0/1) Variable asserting that leaf
// belongs to the tree with the given root, per path.
func CheckMembership(api frontend.API, root, leaf frontend.Variable, path *PathVar, hasher *poseidon.Var) (frontend.Variable, error) {
	computed, err := RootHash(api, leaf, path, hasher)
	if err != nil {
		return nil, err
	}
	return api.IsZero(api.Sub(computed, root)), nil
}
