// Package proofio is the JSON external interface: decoding a proof
// request into a circuit witness and encoding a proof result back out,
// using exactly the camelCase field names and decimal/hex string
// conventions the browser binding layer expects.
package proofio

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math/big"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark/backend/groth16"

	"github.com/vortexlabs/vortex-core/circuits/transaction"
	"github.com/vortexlabs/vortex-core/config"
	"github.com/vortexlabs/vortex-core/pkg/bindingerr"
	"github.com/vortexlabs/vortex-core/pkg/field"
	"github.com/vortexlabs/vortex-core/pkg/merkle"
	"github.com/vortexlabs/vortex-core/pkg/prover"
)

// pathJSON is one [left, right] tuple of a Merkle path level.
type pathJSON [2]string

// ProofInput is the proof request object: every field-element value is a
// decimal or 0x-prefixed hex string, and merklePath0/merklePath1 are
// exactly config.MerkleTreeLevels two-string tuples.
type ProofInput struct {
	Vortex              string     `json:"vortex"`
	Root                string     `json:"root"`
	PublicAmount        string     `json:"publicAmount"`
	InputNullifier0     string     `json:"inputNullifier0"`
	InputNullifier1     string     `json:"inputNullifier1"`
	OutputCommitment0   string     `json:"outputCommitment0"`
	OutputCommitment1   string     `json:"outputCommitment1"`
	HashedAccountSecret string     `json:"hashedAccountSecret"`
	AccountSecret       string     `json:"accountSecret"`
	InPrivateKey0       string     `json:"inPrivateKey0"`
	InPrivateKey1       string     `json:"inPrivateKey1"`
	InAmount0           string     `json:"inAmount0"`
	InAmount1           string     `json:"inAmount1"`
	InBlinding0         string     `json:"inBlinding0"`
	InBlinding1         string     `json:"inBlinding1"`
	InPathIndex0        string     `json:"inPathIndex0"`
	InPathIndex1        string     `json:"inPathIndex1"`
	OutPublicKey0       string     `json:"outPublicKey0"`
	OutPublicKey1       string     `json:"outPublicKey1"`
	OutAmount0          string     `json:"outAmount0"`
	OutAmount1          string     `json:"outAmount1"`
	OutBlinding0        string     `json:"outBlinding0"`
	OutBlinding1        string     `json:"outBlinding1"`
	MerklePath0         []pathJSON `json:"merklePath0"`
	MerklePath1         []pathJSON `json:"merklePath1"`
}

// ProofOutput is the proof response object.
type ProofOutput struct {
	ProofA                    []byte   `json:"proofA"`
	ProofB                    []byte   `json:"proofB"`
	ProofC                    []byte   `json:"proofC"`
	PublicInputs              []string `json:"publicInputs"`
	ProofSerializedHex        string   `json:"proofSerializedHex"`
	PublicInputsSerializedHex string   `json:"publicInputsSerializedHex"`
}

// ParseProofInput unmarshals and fully decodes raw JSON into a
// ready-to-use circuit assignment, returning a bindingerr.Parse error on
// malformed JSON and bindingerr.Input on any out-of-domain value (bad
// field element string, wrong-length Merkle path).
func ParseProofInput(raw []byte) (*transaction.Circuit, error) {
	var in ProofInput
	if err := json.Unmarshal(raw, &in); err != nil {
		return nil, bindingerr.Wrap(bindingerr.Parse, "decode proof input JSON", err)
	}

	parse := func(name, s string) (*big.Int, error) {
		v, err := field.ParseDecOrHex(s)
		if err != nil {
			return nil, bindingerr.Wrap(bindingerr.Input, fmt.Sprintf("field %q", name), err)
		}
		return v, nil
	}

	vortex, err := parse("vortex", in.Vortex)
	if err != nil {
		return nil, err
	}
	root, err := parse("root", in.Root)
	if err != nil {
		return nil, err
	}
	publicAmount, err := parse("publicAmount", in.PublicAmount)
	if err != nil {
		return nil, err
	}
	hashedAccountSecret, err := parse("hashedAccountSecret", in.HashedAccountSecret)
	if err != nil {
		return nil, err
	}
	accountSecret, err := parse("accountSecret", in.AccountSecret)
	if err != nil {
		return nil, err
	}

	nullifierIn0, err := parse("inputNullifier0", in.InputNullifier0)
	if err != nil {
		return nil, err
	}
	nullifierIn1, err := parse("inputNullifier1", in.InputNullifier1)
	if err != nil {
		return nil, err
	}
	commitmentOut0, err := parse("outputCommitment0", in.OutputCommitment0)
	if err != nil {
		return nil, err
	}
	commitmentOut1, err := parse("outputCommitment1", in.OutputCommitment1)
	if err != nil {
		return nil, err
	}

	sk0, err := parse("inPrivateKey0", in.InPrivateKey0)
	if err != nil {
		return nil, err
	}
	sk1, err := parse("inPrivateKey1", in.InPrivateKey1)
	if err != nil {
		return nil, err
	}
	amt0, err := parse("inAmount0", in.InAmount0)
	if err != nil {
		return nil, err
	}
	amt1, err := parse("inAmount1", in.InAmount1)
	if err != nil {
		return nil, err
	}
	blinding0, err := parse("inBlinding0", in.InBlinding0)
	if err != nil {
		return nil, err
	}
	blinding1, err := parse("inBlinding1", in.InBlinding1)
	if err != nil {
		return nil, err
	}
	pathIndex0, err := parse("inPathIndex0", in.InPathIndex0)
	if err != nil {
		return nil, err
	}
	pathIndex1, err := parse("inPathIndex1", in.InPathIndex1)
	if err != nil {
		return nil, err
	}

	outPK0, err := parse("outPublicKey0", in.OutPublicKey0)
	if err != nil {
		return nil, err
	}
	outPK1, err := parse("outPublicKey1", in.OutPublicKey1)
	if err != nil {
		return nil, err
	}
	outAmt0, err := parse("outAmount0", in.OutAmount0)
	if err != nil {
		return nil, err
	}
	outAmt1, err := parse("outAmount1", in.OutAmount1)
	if err != nil {
		return nil, err
	}
	outBlinding0, err := parse("outBlinding0", in.OutBlinding0)
	if err != nil {
		return nil, err
	}
	outBlinding1, err := parse("outBlinding1", in.OutBlinding1)
	if err != nil {
		return nil, err
	}

	path0, err := parsePath(in.MerklePath0)
	if err != nil {
		return nil, bindingerr.Wrap(bindingerr.Input, "merklePath0", err)
	}
	path1, err := parsePath(in.MerklePath1)
	if err != nil {
		return nil, bindingerr.Wrap(bindingerr.Input, "merklePath1", err)
	}

	inputs := [config.NumInputs]transaction.InputWitness{
		{SecretKey: sk0, Amount: amt0, Blinding: blinding0, PathIndex: pathIndex0, MerklePath: path0},
		{SecretKey: sk1, Amount: amt1, Blinding: blinding1, PathIndex: pathIndex1, MerklePath: path1},
	}
	outputs := [config.NumOutputs]transaction.OutputWitness{
		{PublicKey: outPK0, Amount: outAmt0, Blinding: outBlinding0},
		{PublicKey: outPK1, Amount: outAmt1, Blinding: outBlinding1},
	}

	wr, err := transaction.PrepareWitness(vortex, root, publicAmount, accountSecret, hashedAccountSecret, inputs, outputs)
	if err != nil {
		return nil, bindingerr.Wrap(bindingerr.Input, "derive witness", err)
	}

	// The nullifiers/commitments the caller supplied must match what the
	// private witness actually derives; a mismatch means the caller built
	// an inconsistent request (the circuit itself would also reject it,
	// but failing fast here avoids spending a proving pass on it).
	if wr.NullifierIn[0].Cmp(nullifierIn0) != 0 {
		return nil, bindingerr.New(bindingerr.Input, "inputNullifier0 does not match derived nullifier")
	}
	if wr.NullifierIn[1].Cmp(nullifierIn1) != 0 {
		return nil, bindingerr.New(bindingerr.Input, "inputNullifier1 does not match derived nullifier")
	}
	if wr.CommitmentOut[0].Cmp(commitmentOut0) != 0 {
		return nil, bindingerr.New(bindingerr.Input, "outputCommitment0 does not match derived commitment")
	}
	if wr.CommitmentOut[1].Cmp(commitmentOut1) != 0 {
		return nil, bindingerr.New(bindingerr.Input, "outputCommitment1 does not match derived commitment")
	}

	return &wr.Assignment, nil
}

func parsePath(raw []pathJSON) (merkle.Path, error) {
	var path merkle.Path
	if len(raw) != config.MerkleTreeLevels {
		return path, fmt.Errorf("expected %d path levels, got %d", config.MerkleTreeLevels, len(raw))
	}
	for i, tuple := range raw {
		left, err := field.ParseDecOrHex(tuple[0])
		if err != nil {
			return path, fmt.Errorf("level %d left: %w", i, err)
		}
		right, err := field.ParseDecOrHex(tuple[1])
		if err != nil {
			return path, fmt.Errorf("level %d right: %w", i, err)
		}
		path[i] = [2]*big.Int{left, right}
	}
	return path, nil
}

// BuildProofOutput encodes a prover.ProveResult into the response object:
// per-element compressed proof bytes, a decimal publicInputs array, and
// the two hex-concatenated blobs.
func BuildProofOutput(result *prover.ProveResult) (*ProofOutput, error) {
	var buf bytes.Buffer
	if _, err := result.Proof.WriteTo(&buf); err != nil {
		return nil, bindingerr.Wrap(bindingerr.Serialization, "serialize proof", err)
	}
	blob := buf.Bytes()
	if len(blob) != 128 {
		return nil, bindingerr.New(bindingerr.Internal, fmt.Sprintf("unexpected proof blob length %d, want 128", len(blob)))
	}

	publicInputsDecimal := make([]string, len(result.PublicInputs))
	for i, x := range result.PublicInputs {
		publicInputsDecimal[i] = field.ToDecimalString(x)
	}

	return &ProofOutput{
		ProofA:                    blob[0:32],
		ProofB:                    blob[32:96],
		ProofC:                    blob[96:128],
		PublicInputs:              publicInputsDecimal,
		ProofSerializedHex:        hex.EncodeToString(blob),
		PublicInputsSerializedHex: hex.EncodeToString(prover.SerializePublicInputs(result.PublicInputs)),
	}, nil
}

// DecodeProof reconstructs a groth16.Proof from a ProofOutput's
// serialized hex blob, for Verify. A hex string that is not hex is a Parse
// error; hex that does not decode to valid group elements is a Verify
// error, the "bad group encoding" case, distinct from a verification that
// runs and returns false.
func DecodeProof(out *ProofOutput) (groth16.Proof, error) {
	blob, err := hex.DecodeString(out.ProofSerializedHex)
	if err != nil {
		return nil, bindingerr.Wrap(bindingerr.Parse, "decode proofSerializedHex", err)
	}
	proof := groth16.NewProof(ecc.BN254)
	if _, err := proof.ReadFrom(bytes.NewReader(blob)); err != nil {
		return nil, bindingerr.Wrap(bindingerr.Verify, "bad proof group encoding", err)
	}
	return proof, nil
}

// DecodePublicInputs parses a ProofOutput's decimal publicInputs array
// back into field elements, in allocation order.
func DecodePublicInputs(out *ProofOutput) ([]*big.Int, error) {
	result := make([]*big.Int, len(out.PublicInputs))
	for i, s := range out.PublicInputs {
		v, err := field.ParseDecOrHex(s)
		if err != nil {
			return nil, bindingerr.Wrap(bindingerr.Parse, fmt.Sprintf("publicInputs[%d]", i), err)
		}
		result[i] = v
	}
	return result, nil
}

// DecodeSerializedPublicInputs splits a publicInputsSerializedHex blob back
// into field elements, the inverse of prover.SerializePublicInputs. An
// on-chain verifier consumes the blob directly; this decoder exists so the
// two proof-output forms can be checked against each other.
func DecodeSerializedPublicInputs(serializedHex string) ([]*big.Int, error) {
	blob, err := hex.DecodeString(serializedHex)
	if err != nil {
		return nil, bindingerr.Wrap(bindingerr.Parse, "decode publicInputsSerializedHex", err)
	}
	if len(blob)%field.ElementBytes != 0 {
		return nil, bindingerr.New(bindingerr.Parse,
			fmt.Sprintf("serialized public inputs length %d is not a multiple of %d", len(blob), field.ElementBytes))
	}

	result := make([]*big.Int, len(blob)/field.ElementBytes)
	for i := range result {
		v, err := field.FromCanonicalBytes(blob[i*field.ElementBytes : (i+1)*field.ElementBytes])
		if err != nil {
			return nil, bindingerr.Wrap(bindingerr.Parse, fmt.Sprintf("serialized public input %d", i), err)
		}
		result[i] = v
	}
	return result, nil
}
