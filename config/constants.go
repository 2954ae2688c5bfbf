// Package config holds the protocol-level constants shared by every
// component of the shielded-pool statement: the transaction circuit, the
// native Merkle tree, and the Groth16 harness all read from here instead of
// hard-coding the arity or tree depth locally.
package config

const (
	// MerkleTreeLevels is the fixed height H of the commitment tree:
	// capacity is 2^MerkleTreeLevels leaves, inserted strictly in pairs.
	MerkleTreeLevels = 20

	// NumInputs and NumOutputs fix the circuit arity at 2-in/2-out; the
	// statement does not generalize to other counts (see Non-goals).
	NumInputs  = 2
	NumOutputs = 2

	// MaxAmountBits bounds every note amount to < 2^MaxAmountBits, leaving a
	// comfortable margin under the ~2^254 field order for up to
	// NumInputs+NumOutputs summands.
	MaxAmountBits = 248
)

// ZeroValue is the domain-separating field constant used as the empty-leaf
// value of the commitment tree (empty_hashes[0]). Constructed the way
// Tornado-Cash-style pools construct their "unusable" leaf: a hash digest
// reduced into the scalar field, with no known discrete-log-style preimage
// relevant to the protocol's own Poseidon permutation.
//
// keccak256("vortex-shielded-pool") mod r, computed once and pinned as a
// decimal literal so every implementation embeds the identical constant.
const ZeroValue = "11291068029189734336051766166395995278311797515712719331109636636533043395630"
