package proofio_test

import (
	"bytes"
	"encoding/hex"
	"io"
	"math/big"
	"testing"

	"github.com/vortexlabs/vortex-core/circuits/transaction"
	"github.com/vortexlabs/vortex-core/config"
	"github.com/vortexlabs/vortex-core/pkg/bindingerr"
	"github.com/vortexlabs/vortex-core/pkg/merkle"
	"github.com/vortexlabs/vortex-core/pkg/proofio"
	"github.com/vortexlabs/vortex-core/pkg/prover"
)

func allZeroAssignment(t *testing.T) *transaction.Circuit {
	t.Helper()
	zero := big.NewInt(0)

	tr, err := merkle.New()
	if err != nil {
		t.Fatalf("merkle.New: %v", err)
	}

	inputs := [config.NumInputs]transaction.InputWitness{
		{SecretKey: zero, Amount: zero, Blinding: zero, PathIndex: big.NewInt(0)},
		{SecretKey: zero, Amount: zero, Blinding: zero, PathIndex: big.NewInt(1)},
	}
	outputs := [config.NumOutputs]transaction.OutputWitness{
		{PublicKey: zero, Amount: zero, Blinding: zero},
		{PublicKey: zero, Amount: zero, Blinding: zero},
	}

	wr, err := transaction.PrepareWitness(zero, tr.Root(), zero, zero, zero, inputs, outputs)
	if err != nil {
		t.Fatalf("PrepareWitness: %v", err)
	}
	return &wr.Assignment
}

func writeToBytes(t *testing.T, obj io.WriterTo) []byte {
	t.Helper()
	var buf bytes.Buffer
	if _, err := obj.WriteTo(&buf); err != nil {
		t.Fatalf("serialize: %v", err)
	}
	return buf.Bytes()
}

func TestParseProofInputRejectsWrongLengthPath(t *testing.T) {
	raw := []byte(`{
		"vortex": "0", "root": "0", "publicAmount": "0",
		"inputNullifier0": "0", "inputNullifier1": "0",
		"outputCommitment0": "0", "outputCommitment1": "0",
		"hashedAccountSecret": "0", "accountSecret": "0",
		"inPrivateKey0": "0", "inPrivateKey1": "0",
		"inAmount0": "0", "inAmount1": "0",
		"inBlinding0": "0", "inBlinding1": "0",
		"inPathIndex0": "0", "inPathIndex1": "1",
		"outPublicKey0": "0", "outPublicKey1": "0",
		"outAmount0": "0", "outAmount1": "0",
		"outBlinding0": "0", "outBlinding1": "0",
		"merklePath0": [],
		"merklePath1": []
	}`)

	_, err := proofio.ParseProofInput(raw)
	if err == nil {
		t.Fatalf("expected error for wrong-length merkle path")
	}
	if !bindingerr.Is(err, bindingerr.Input) {
		t.Fatalf("expected Input-kind error, got %v", err)
	}
}

func TestParseProofInputRejectsMalformedJSON(t *testing.T) {
	_, err := proofio.ParseProofInput([]byte("not json"))
	if err == nil {
		t.Fatalf("expected parse error")
	}
	if !bindingerr.Is(err, bindingerr.Parse) {
		t.Fatalf("expected Parse-kind error, got %v", err)
	}
}

// TestBuildProofOutputRoundTrips exercises BuildProofOutput/DecodeProof/
// DecodePublicInputs together: decoding what was just built must reproduce
// a proof and public inputs that still verify.
func TestBuildProofOutputRoundTrips(t *testing.T) {
	pk, vk, err := prover.Setup()
	if err != nil {
		t.Fatalf("Setup: %v", err)
	}
	pkBytes := writeToBytes(t, pk)
	vkBytes := writeToBytes(t, vk)

	assignment := allZeroAssignment(t)
	result, err := prover.Prove(assignment, pkBytes)
	if err != nil {
		t.Fatalf("Prove: %v", err)
	}

	out, err := proofio.BuildProofOutput(result)
	if err != nil {
		t.Fatalf("BuildProofOutput: %v", err)
	}

	proof, err := proofio.DecodeProof(out)
	if err != nil {
		t.Fatalf("DecodeProof: %v", err)
	}
	publicInputs, err := proofio.DecodePublicInputs(out)
	if err != nil {
		t.Fatalf("DecodePublicInputs: %v", err)
	}

	ok, err := prover.Verify(proof, publicInputs, vkBytes)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if !ok {
		t.Fatalf("expected round-tripped proof to verify")
	}
}

// TestVerifyRejectsFlippedProofByte: flipping a single byte of
// proofSerializedHex must make Verify return false (or DecodeProof itself
// reject the corrupted blob), never a silent success.
func TestVerifyRejectsFlippedProofByte(t *testing.T) {
	pk, vk, err := prover.Setup()
	if err != nil {
		t.Fatalf("Setup: %v", err)
	}
	pkBytes := writeToBytes(t, pk)
	vkBytes := writeToBytes(t, vk)

	assignment := allZeroAssignment(t)
	result, err := prover.Prove(assignment, pkBytes)
	if err != nil {
		t.Fatalf("Prove: %v", err)
	}

	out, err := proofio.BuildProofOutput(result)
	if err != nil {
		t.Fatalf("BuildProofOutput: %v", err)
	}

	flipped := []byte(out.ProofSerializedHex)
	if flipped[0] == '0' {
		flipped[0] = '1'
	} else {
		flipped[0] = '0'
	}
	out.ProofSerializedHex = string(flipped)

	proof, err := proofio.DecodeProof(out)
	if err != nil {
		// A corrupted blob failing to decode as valid curve points is the
		// bad-group-encoding case, which must surface as a Verify error.
		if !bindingerr.Is(err, bindingerr.Verify) {
			t.Fatalf("expected Verify-kind error for corrupted proof blob, got %v", err)
		}
		return
	}

	publicInputs, err := proofio.DecodePublicInputs(out)
	if err != nil {
		t.Fatalf("DecodePublicInputs: %v", err)
	}

	ok, err := prover.Verify(proof, publicInputs, vkBytes)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if ok {
		t.Fatalf("expected verify to reject a flipped proof byte")
	}
}

// TestSerializedPublicInputsRoundTrip checks the two public-input forms
// against each other: the hex blob the on-chain verifier consumes must
// decode back to the decimal array, element for element.
func TestSerializedPublicInputsRoundTrip(t *testing.T) {
	inputs := []*big.Int{
		big.NewInt(0),
		big.NewInt(1),
		new(big.Int).Lsh(big.NewInt(1), 200),
		big.NewInt(12345678901234567),
	}

	blob := prover.SerializePublicInputs(inputs)
	decoded, err := proofio.DecodeSerializedPublicInputs(hex.EncodeToString(blob))
	if err != nil {
		t.Fatalf("DecodeSerializedPublicInputs: %v", err)
	}

	if len(decoded) != len(inputs) {
		t.Fatalf("expected %d elements, got %d", len(inputs), len(decoded))
	}
	for i := range inputs {
		if decoded[i].Cmp(inputs[i]) != 0 {
			t.Fatalf("element %d: %s != %s", i, decoded[i], inputs[i])
		}
	}
}

func TestDecodeSerializedPublicInputsRejectsBadLength(t *testing.T) {
	if _, err := proofio.DecodeSerializedPublicInputs("abcdef"); err == nil {
		t.Fatalf("expected error for a blob that is not a multiple of the element width")
	}
}

func TestDecodeProofErrorKinds(t *testing.T) {
	// Not hex at all: a malformed input string.
	_, err := proofio.DecodeProof(&proofio.ProofOutput{ProofSerializedHex: "zz"})
	if !bindingerr.Is(err, bindingerr.Parse) {
		t.Fatalf("expected Parse-kind error for non-hex input, got %v", err)
	}

	// Valid hex, but not a valid group-element encoding.
	garbage := bytes.Repeat([]byte{0xff}, 128)
	_, err = proofio.DecodeProof(&proofio.ProofOutput{ProofSerializedHex: hex.EncodeToString(garbage)})
	if !bindingerr.Is(err, bindingerr.Verify) {
		t.Fatalf("expected Verify-kind error for bad group encoding, got %v", err)
	}
}
