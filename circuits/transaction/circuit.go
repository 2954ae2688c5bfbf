// Package transaction defines the shielded-pool transfer statement: 2
// hidden inputs are consumed, 2 hidden outputs are created, and a signed
// public amount balances the difference.
package transaction

import (
	"github.com/consensys/gnark/frontend"

	"github.com/vortexlabs/vortex-core/config"
	"github.com/vortexlabs/vortex-core/pkg/merkle"
	"github.com/vortexlabs/vortex-core/pkg/poseidon"
)

// Input is one spent note's private witness: the owning secret key, the
// note's amount and blinding, its position in the commitment tree, and the
// membership path proving the note's commitment is actually in the tree.
type Input struct {
	SecretKey  frontend.Variable `gnark:"secretKey"`
	Amount     frontend.Variable `gnark:"amount"`
	Blinding   frontend.Variable `gnark:"blinding"`
	PathIndex  frontend.Variable `gnark:"pathIndex"`
	MerklePath merkle.PathVar    `gnark:"merklePath"`
}

// Output is one created note's private witness.
type Output struct {
	PublicKey frontend.Variable `gnark:"publicKey"`
	Amount    frontend.Variable `gnark:"amount"`
	Blinding  frontend.Variable `gnark:"blinding"`
}

// Circuit is the transaction validity statement: public inputs first, in
// the exact order the Groth16 harness (pkg/prover) serializes them, then
// the private witness.
type Circuit struct {
	// Public inputs, allocated in this exact order.
	Vortex              frontend.Variable                    `gnark:"vortex,public"`
	Root                frontend.Variable                    `gnark:"root,public"`
	PublicAmount        frontend.Variable                    `gnark:"publicAmount,public"`
	NullifierIn         [config.NumInputs]frontend.Variable  `gnark:"nullifierIn,public"`
	CommitmentOut       [config.NumOutputs]frontend.Variable `gnark:"commitmentOut,public"`
	HashedAccountSecret frontend.Variable                    `gnark:"hashedAccountSecret,public"`

	// Private witness.
	AccountSecret frontend.Variable         `gnark:"accountSecret"`
	Inputs        [config.NumInputs]Input   `gnark:"inputs"`
	Outputs       [config.NumOutputs]Output `gnark:"outputs"`
}

// Define enforces the full transaction validity statement: account
// binding, then per-input checks, then per-output checks, then the two
// global checks (nullifier distinctness, sum conservation).
func (circuit *Circuit) Define(api frontend.API) error {
	h := poseidon.New(api)

	// Account binding: Poseidon1(accountSecret) == hashedAccountSecret, but
	// only enforced when hashedAccountSecret != 0; a zero value means the
	// caller did not opt into binding this proof to an account.
	derivedAccountKey, err := h.Hash1(circuit.AccountSecret)
	if err != nil {
		return err
	}
	hasAccountBinding := api.Sub(1, api.IsZero(circuit.HashedAccountSecret))
	api.AssertIsEqual(api.Mul(hasAccountBinding, api.Sub(derivedAccountKey, circuit.HashedAccountSecret)), 0)

	sumIn := frontend.Variable(0)
	for i := 0; i < config.NumInputs; i++ {
		in := circuit.Inputs[i]

		pk, err := h.Hash1(in.SecretKey)
		if err != nil {
			return err
		}
		commitment, err := h.Hash4(in.Amount, pk, in.Blinding, circuit.Vortex)
		if err != nil {
			return err
		}
		sig, err := h.Hash3(in.SecretKey, commitment, in.PathIndex)
		if err != nil {
			return err
		}
		nullifier, err := h.Hash3(commitment, in.PathIndex, sig)
		if err != nil {
			return err
		}
		api.AssertIsEqual(nullifier, circuit.NullifierIn[i])

		isNonZero := api.Sub(1, api.IsZero(in.Amount))
		enforceRangeCheck(api, in.Amount, isNonZero)

		membershipOK, err := merkle.CheckMembership(api, circuit.Root, commitment, &in.MerklePath, h)
		if err != nil {
			return err
		}
		api.AssertIsEqual(api.Mul(isNonZero, api.Sub(1, membershipOK)), 0)

		sumIn = api.Add(sumIn, in.Amount)
	}

	sumOut := frontend.Variable(0)
	for j := 0; j < config.NumOutputs; j++ {
		out := circuit.Outputs[j]

		commitment, err := h.Hash4(out.Amount, out.PublicKey, out.Blinding, circuit.Vortex)
		if err != nil {
			return err
		}
		api.AssertIsEqual(commitment, circuit.CommitmentOut[j])

		enforceRangeCheck(api, out.Amount, 1)

		sumOut = api.Add(sumOut, out.Amount)
	}

	// The two input nullifiers must be distinct: a single proof cannot spend
	// the same note twice.
	api.AssertIsDifferent(circuit.NullifierIn[0], circuit.NullifierIn[1])

	// Conservation: hidden inputs plus the signed public amount equal hidden
	// outputs (a deposit is encoded as a positive public_amount, a
	// withdrawal as its field negation).
	api.AssertIsEqual(api.Add(sumIn, circuit.PublicAmount), sumOut)

	return nil
}

// enforceRangeCheck decomposes v into 254 bits and, when active is 1,
// asserts bits [248..254) are all zero, bounding v < 2^248. When active is
// 0 the high-bit asserts hold trivially; the bit decomposition is still
// emitted (an unused input slot carries amount 0, so its bits are all zero).
func enforceRangeCheck(api frontend.API, v frontend.Variable, active frontend.Variable) {
	bits := api.ToBinary(v, 254)
	for i := config.MaxAmountBits; i < 254; i++ {
		api.AssertIsEqual(api.Mul(active, bits[i]), 0)
	}
}
