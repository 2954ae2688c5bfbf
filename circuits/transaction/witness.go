package transaction

import (
	"fmt"
	"math/big"

	"github.com/vortexlabs/vortex-core/config"
	"github.com/vortexlabs/vortex-core/pkg/crypto"
	"github.com/vortexlabs/vortex-core/pkg/merkle"
)

// InputWitness is the independent, natural-form data needed to spend one
// note: its owning secret key, its (amount, blinding) pair, its position in
// the tree, and the membership path for that position. An unused input
// slot is represented with Amount = 0 and an all-zero blinding; the proof
// skips both the range check and Merkle membership for it.
type InputWitness struct {
	SecretKey  *big.Int
	Amount     *big.Int
	Blinding   *big.Int
	PathIndex  *big.Int
	MerklePath merkle.Path
}

// OutputWitness is the independent, natural-form data needed to create one
// note.
type OutputWitness struct {
	PublicKey *big.Int
	Amount    *big.Int
	Blinding  *big.Int
}

// WitnessResult carries a fully populated circuit assignment plus the
// derived public values (nullifiers, commitments) a caller needs to build
// a proof request.
type WitnessResult struct {
	Assignment    Circuit
	NullifierIn   [config.NumInputs]*big.Int
	CommitmentOut [config.NumOutputs]*big.Int
}

func orZero(x *big.Int) *big.Int {
	if x == nil {
		return new(big.Int)
	}
	return x
}

// PrepareWitness builds the circuit assignment for a transaction spending
// inputs and creating outputs under the given vortex domain tag, public
// amount, and (optional) account binding.
func PrepareWitness(
	vortex, root, publicAmount *big.Int,
	accountSecret, hashedAccountSecret *big.Int,
	inputs [config.NumInputs]InputWitness,
	outputs [config.NumOutputs]OutputWitness,
) (*WitnessResult, error) {
	var result WitnessResult
	a := &result.Assignment

	a.Vortex = vortex
	a.Root = root
	a.PublicAmount = publicAmount
	a.HashedAccountSecret = hashedAccountSecret
	a.AccountSecret = accountSecret

	for i := 0; i < config.NumInputs; i++ {
		in := inputs[i]

		note, err := crypto.NewNote(in.SecretKey, in.Amount, in.Blinding, vortex)
		if err != nil {
			return nil, fmt.Errorf("transaction: input %d: derive note: %w", i, err)
		}
		spend, err := crypto.PrepareSpend(in.SecretKey, note, in.PathIndex)
		if err != nil {
			return nil, fmt.Errorf("transaction: input %d: prepare spend: %w", i, err)
		}

		a.Inputs[i] = Input{
			SecretKey: in.SecretKey,
			Amount:    in.Amount,
			Blinding:  in.Blinding,
			PathIndex: in.PathIndex,
		}
		// An unused input slot may carry a zero-valued path; nil entries are
		// assigned as zero so the gnark witness builder never sees a nil leaf.
		for lvl := 0; lvl < config.MerkleTreeLevels; lvl++ {
			a.Inputs[i].MerklePath[lvl][0] = orZero(in.MerklePath[lvl][0])
			a.Inputs[i].MerklePath[lvl][1] = orZero(in.MerklePath[lvl][1])
		}

		a.NullifierIn[i] = spend.Nullifier
		result.NullifierIn[i] = spend.Nullifier
	}

	for j := 0; j < config.NumOutputs; j++ {
		out := outputs[j]

		commitment, err := crypto.DeriveCommitment(out.Amount, out.PublicKey, out.Blinding, vortex)
		if err != nil {
			return nil, fmt.Errorf("transaction: output %d: derive commitment: %w", j, err)
		}

		a.Outputs[j] = Output{
			PublicKey: out.PublicKey,
			Amount:    out.Amount,
			Blinding:  out.Blinding,
		}
		a.CommitmentOut[j] = commitment
		result.CommitmentOut[j] = commitment
	}

	return &result, nil
}
