// Package poseidon exposes the circomlib-compatible Poseidon permutation
// used throughout the shielded-pool statement, both as a native hash (this
// file) and as a gnark circuit gadget (gadget.go). The permutation itself
// is go-iden3-crypto's "optimized" variant (precomputed sparse matrices in
// the partial rounds), which carries the canonical circomlib constant
// tables; the gadget side constrains the identical permutation, so native
// and in-circuit results agree bit-for-bit.
package poseidon

import (
	"fmt"
	"math/big"

	iden3poseidon "github.com/iden3/go-iden3-crypto/poseidon"
)

// Hash1 computes Poseidon(x) with state width t=2, matching Poseidon1 in
// the public-key derivation (public_key = Poseidon1(sk)) and the account
// secret binding.
func Hash1(x *big.Int) (*big.Int, error) {
	return hashN(x)
}

// Hash2 computes Poseidon(a, b) with state width t=3, used by the Merkle
// tree's internal node combination.
func Hash2(a, b *big.Int) (*big.Int, error) {
	return hashN(a, b)
}

// Hash3 computes Poseidon(a, b, c) with state width t=4, used for the
// signature and nullifier derivations.
func Hash3(a, b, c *big.Int) (*big.Int, error) {
	return hashN(a, b, c)
}

// Hash4 computes Poseidon(a, b, c, d) with state width t=5, used for note
// commitments.
func Hash4(a, b, c, d *big.Int) (*big.Int, error) {
	return hashN(a, b, c, d)
}

func hashN(xs ...*big.Int) (*big.Int, error) {
	for i, x := range xs {
		if x == nil {
			return nil, fmt.Errorf("poseidon: input %d is nil", i)
		}
	}
	out, err := iden3poseidon.Hash(xs)
	if err != nil {
		return nil, fmt.Errorf("poseidon: %w", err)
	}
	return out, nil
}
