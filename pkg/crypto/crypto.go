// Package crypto derives the note, key, and nullifier values of the
// shielded-pool statement outside the circuit: the same Poseidon-based
// derivations the transaction circuit (circuits/transaction) enforces as
// constraints, computed natively so a wallet can build a witness before
// ever calling into the prover.
package crypto

import (
	"crypto/rand"
	"math/big"

	"github.com/consensys/gnark-crypto/ecc"

	"github.com/vortexlabs/vortex-core/pkg/poseidon"
)

// GenerateSecretKey generates a random secret key as a non-zero BN254
// scalar field element.
func GenerateSecretKey() (*big.Int, error) {
	for {
		sk, err := rand.Int(rand.Reader, ecc.BN254.ScalarField())
		if err != nil {
			return nil, err
		}
		if sk.Sign() != 0 {
			return sk, nil
		}
	}
}

// DerivePublicKey computes public_key = Poseidon1(sk), matching the
// account-binding and per-input derivation in the transaction circuit.
func DerivePublicKey(sk *big.Int) (*big.Int, error) {
	return poseidon.Hash1(sk)
}

// DeriveCommitment computes the note commitment
// C = Poseidon4(amount, public_key, blinding, vortex).
func DeriveCommitment(amount, publicKey, blinding, vortex *big.Int) (*big.Int, error) {
	return poseidon.Hash4(amount, publicKey, blinding, vortex)
}

// DeriveSignature computes sig = Poseidon3(sk, commitment, pathIndex), the
// secret-bound value whose presence in the nullifier prevents anyone but
// the note's owner from producing a valid nullifier for it.
func DeriveSignature(sk, commitment, pathIndex *big.Int) (*big.Int, error) {
	return poseidon.Hash3(sk, commitment, pathIndex)
}

// DeriveNullifier computes nullifier = Poseidon3(commitment, pathIndex, sig).
// Revealing nullifier does not reveal commitment or pathIndex.
func DeriveNullifier(commitment, pathIndex, sig *big.Int) (*big.Int, error) {
	return poseidon.Hash3(commitment, pathIndex, sig)
}

// Note is a single hidden UTXO: (amount, public_key, blinding) under a
// vortex domain tag.
type Note struct {
	Amount    *big.Int
	PublicKey *big.Int
	Blinding  *big.Int
	Vortex    *big.Int
}

// NewNote builds a Note for secret key sk, deriving its public key.
func NewNote(sk, amount, blinding, vortex *big.Int) (*Note, error) {
	pk, err := DerivePublicKey(sk)
	if err != nil {
		return nil, err
	}
	return &Note{Amount: amount, PublicKey: pk, Blinding: blinding, Vortex: vortex}, nil
}

// Commitment computes this note's commitment under its vortex tag.
func (n *Note) Commitment() (*big.Int, error) {
	return DeriveCommitment(n.Amount, n.PublicKey, n.Blinding, n.Vortex)
}

// SpendProof bundles the values a spender needs to prove ownership of a
// note at a known tree index: the commitment, the binding signature, and
// the resulting nullifier.
type SpendProof struct {
	Commitment *big.Int
	Signature  *big.Int
	Nullifier  *big.Int
}

// PrepareSpend derives the commitment/signature/nullifier triple for
// spending note at tree index idx with secret key sk, exactly as the
// transaction circuit's per-input block does.
func PrepareSpend(sk *big.Int, note *Note, idx *big.Int) (*SpendProof, error) {
	commitment, err := note.Commitment()
	if err != nil {
		return nil, err
	}
	sig, err := DeriveSignature(sk, commitment, idx)
	if err != nil {
		return nil, err
	}
	nf, err := DeriveNullifier(commitment, idx, sig)
	if err != nil {
		return nil, err
	}
	return &SpendProof{Commitment: commitment, Signature: sig, Nullifier: nf}, nil
}
