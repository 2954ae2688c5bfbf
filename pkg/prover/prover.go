// Package prover is the Groth16 harness: it compiles the transaction
// statement, runs a single-party dev setup, and exposes Prove/Verify over
// the canonical public-input layout external verifiers depend on.
package prover

import (
	"bytes"
	"fmt"
	"math/big"
	"strings"
	"sync"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark/backend/groth16"
	"github.com/consensys/gnark/constraint"
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/frontend/cs/r1cs"

	"github.com/vortexlabs/vortex-core/circuits/transaction"
	"github.com/vortexlabs/vortex-core/pkg/bindingerr"
	"github.com/vortexlabs/vortex-core/pkg/field"
)

// CompileCircuit compiles the transaction statement into an R1CS
// constraint system.
func CompileCircuit() (constraint.ConstraintSystem, error) {
	ccs, err := frontend.Compile(ecc.BN254.ScalarField(), r1cs.NewBuilder, &transaction.Circuit{})
	if err != nil {
		return nil, bindingerr.Wrap(bindingerr.Internal, "compile transaction circuit", err)
	}
	return ccs, nil
}

// Setup runs a single-party Groth16 setup over the transaction circuit.
// This is a 1-of-1 trust assumption and must never be used to produce
// production keys: gnark draws the toxic waste from crypto/rand.Reader and
// the call is not reproducible across runs. Production keys come from an
// external ceremony and are supplied as bytes.
func Setup() (groth16.ProvingKey, groth16.VerifyingKey, error) {
	ccs, err := CompileCircuit()
	if err != nil {
		return nil, nil, err
	}
	pk, vk, err := groth16.Setup(ccs)
	if err != nil {
		return nil, nil, bindingerr.Wrap(bindingerr.Key, "groth16 setup", err)
	}
	return pk, vk, nil
}

// publicFieldOrder lists each public field of transaction.Circuit in the
// canonical serialization order.
func publicFieldOrder(c *transaction.Circuit) ([]*big.Int, error) {
	raw := []frontend.Variable{
		c.Vortex,
		c.Root,
		c.PublicAmount,
		c.NullifierIn[0],
		c.NullifierIn[1],
		c.CommitmentOut[0],
		c.CommitmentOut[1],
		c.HashedAccountSecret,
	}
	out := make([]*big.Int, len(raw))
	for i, v := range raw {
		x, ok := v.(*big.Int)
		if !ok {
			return nil, bindingerr.New(bindingerr.Internal, fmt.Sprintf("public field %d is not a *big.Int assignment", i))
		}
		out[i] = x
	}
	return out, nil
}

// SerializePublicInputs concatenates each public input's canonical
// compressed field-element bytes, in allocation order. This is the exact
// byte string the on-chain verifier consumes as publicInputsSerializedHex.
func SerializePublicInputs(inputs []*big.Int) []byte {
	var buf bytes.Buffer
	for _, x := range inputs {
		b := field.CanonicalBytes(x)
		buf.Write(b[:])
	}
	return buf.Bytes()
}

// ─── Proving-key cache ──────────────────────────────────────────────────────
//
// A single-slot, process-wide cache: InitProverCache decodes once and
// stores the key; loadProvingKey reads it under the lock, takes the
// reference, and releases the lock before the expensive proving phase
// runs. An uninitialized cache is not an error: Prove falls back to
// decoding the supplied bytes locally, with no caching side effect.

var (
	cacheMu  sync.Mutex
	cachedPK groth16.ProvingKey
)

// InitProverCache decodes pkBytes once and stores the resulting key in the
// process-wide cache, so subsequent Prove calls skip the decode.
func InitProverCache(pkBytes []byte) error {
	pk := groth16.NewProvingKey(ecc.BN254)
	if _, err := pk.ReadFrom(bytes.NewReader(pkBytes)); err != nil {
		return bindingerr.Wrap(bindingerr.Key, "decode proving key", err)
	}
	cacheMu.Lock()
	cachedPK = pk
	cacheMu.Unlock()
	return nil
}

// ClearProverCache drops the cached proving key, if any.
func ClearProverCache() {
	cacheMu.Lock()
	cachedPK = nil
	cacheMu.Unlock()
}

// loadProvingKey returns the cached key if present, else decodes pkBytes
// with no caching side effect.
func loadProvingKey(pkBytes []byte) (groth16.ProvingKey, error) {
	cacheMu.Lock()
	pk := cachedPK
	cacheMu.Unlock()
	if pk != nil {
		return pk, nil
	}

	decoded := groth16.NewProvingKey(ecc.BN254)
	if _, err := decoded.ReadFrom(bytes.NewReader(pkBytes)); err != nil {
		return nil, bindingerr.Wrap(bindingerr.Key, "decode proving key", err)
	}
	return decoded, nil
}

// ProveResult bundles the proof object and the canonically ordered public
// inputs a caller needs to assemble a proof response.
type ProveResult struct {
	Proof        groth16.Proof
	PublicInputs []*big.Int
}

// Prove compiles the circuit, builds the full witness from assignment,
// proves against pkBytes (using the cache when warm), and returns the
// proof alongside its public inputs in canonical order.
func Prove(assignment *transaction.Circuit, pkBytes []byte) (*ProveResult, error) {
	publicInputs, err := publicFieldOrder(assignment)
	if err != nil {
		return nil, err
	}

	ccs, err := CompileCircuit()
	if err != nil {
		return nil, err
	}

	w, err := frontend.NewWitness(assignment, ecc.BN254.ScalarField())
	if err != nil {
		return nil, bindingerr.Wrap(bindingerr.Internal, "build witness", err)
	}

	pk, err := loadProvingKey(pkBytes)
	if err != nil {
		return nil, err
	}

	proof, err := groth16.Prove(ccs, pk, w)
	if err != nil {
		return nil, bindingerr.Wrap(bindingerr.Proof, "groth16 prove", err)
	}

	return &ProveResult{Proof: proof, PublicInputs: publicInputs}, nil
}

// publicAssignment builds a transaction.Circuit carrying only the public
// fields, in the order SerializePublicInputs expects, for use as a
// public-only witness at verify time.
func publicAssignment(inputs []*big.Int) (*transaction.Circuit, error) {
	if len(inputs) != 8 {
		return nil, bindingerr.New(bindingerr.Input, fmt.Sprintf("expected 8 public inputs, got %d", len(inputs)))
	}
	c := &transaction.Circuit{
		Vortex:              inputs[0],
		Root:                inputs[1],
		PublicAmount:        inputs[2],
		HashedAccountSecret: inputs[7],
	}
	c.NullifierIn[0] = inputs[3]
	c.NullifierIn[1] = inputs[4]
	c.CommitmentOut[0] = inputs[5]
	c.CommitmentOut[1] = inputs[6]
	return c, nil
}

// Verify checks proof against publicInputs (canonical order) and vkBytes.
// A well-formed proof that simply fails the pairing check is reported as
// (false, nil): verification returning false is a successful outcome. A
// Verify-kind error is reserved for the pairing library itself failing
// (bad group encoding and the like); malformed verifying-key bytes are a
// Key error.
func Verify(proof groth16.Proof, publicInputs []*big.Int, vkBytes []byte) (bool, error) {
	vk := groth16.NewVerifyingKey(ecc.BN254)
	if _, err := vk.ReadFrom(bytes.NewReader(vkBytes)); err != nil {
		return false, bindingerr.Wrap(bindingerr.Key, "decode verifying key", err)
	}

	assignment, err := publicAssignment(publicInputs)
	if err != nil {
		return false, err
	}

	w, err := frontend.NewWitness(assignment, ecc.BN254.ScalarField(), frontend.PublicOnly())
	if err != nil {
		return false, bindingerr.Wrap(bindingerr.Internal, "build public witness", err)
	}

	if err := groth16.Verify(proof, vk, w); err != nil {
		if isPairingMismatch(err) {
			return false, nil
		}
		return false, bindingerr.Wrap(bindingerr.Verify, "groth16 verify", err)
	}
	return true, nil
}

// isPairingMismatch reports whether err is gnark's clean "proof did not
// verify" outcome rather than a library failure. gnark exports no sentinel
// for it, so the error text is matched.
func isPairingMismatch(err error) bool {
	return strings.Contains(err.Error(), "pairing doesn't match")
}
