// Package bindings is the process-level surface of the module: JSON bytes
// in, JSON bytes out, with every error carrying a bindingerr.Kind so a
// host across a language boundary can classify failures without parsing
// message strings. It assembles pkg/proofio (wire format) and pkg/prover
// (Groth16 harness) into the handful of calls an embedder needs.
package bindings

import (
	"encoding/json"
	"math/big"
	"time"

	"github.com/rs/zerolog"

	"github.com/vortexlabs/vortex-core/pkg/bindingerr"
	"github.com/vortexlabs/vortex-core/pkg/field"
	"github.com/vortexlabs/vortex-core/pkg/logging"
	"github.com/vortexlabs/vortex-core/pkg/poseidon"
	"github.com/vortexlabs/vortex-core/pkg/proofio"
	"github.com/vortexlabs/vortex-core/pkg/prover"
)

// log is a no-op until the host opts into logging via InitLogger; proving
// and verifying stay silent by default so embedders control the output
// stream.
var log = zerolog.Nop()

// InitLogger enables zerolog console logging at the given level ("debug",
// "info", "warn", "error"). Returns false on an unknown level name.
func InitLogger(level string) bool {
	parsed, err := zerolog.ParseLevel(level)
	if err != nil {
		return false
	}
	log = logging.NewLevel(parsed)
	return true
}

// Prove parses witnessJSON into a circuit assignment, proves it against
// pkBytes (or the warm cache, see InitProverCache), and returns the proof
// output object as JSON.
func Prove(witnessJSON, pkBytes []byte) ([]byte, error) {
	start := time.Now()

	assignment, err := proofio.ParseProofInput(witnessJSON)
	if err != nil {
		return nil, err
	}

	result, err := prover.Prove(assignment, pkBytes)
	if err != nil {
		return nil, err
	}

	out, err := proofio.BuildProofOutput(result)
	if err != nil {
		return nil, err
	}

	encoded, err := json.Marshal(out)
	if err != nil {
		return nil, bindingerr.Wrap(bindingerr.Serialization, "encode proof output", err)
	}

	log.Info().Dur("elapsed", time.Since(start)).Msg("proof generated")
	return encoded, nil
}

// Verify decodes a proof output object from proofJSON and checks it
// against vkBytes. A proof that fails the pairing check yields
// (false, nil); malformed JSON is a Parse error, a bad group encoding or
// pairing-library failure a Verify error, and bad key bytes a Key error.
func Verify(proofJSON, vkBytes []byte) (bool, error) {
	start := time.Now()

	var out proofio.ProofOutput
	if err := json.Unmarshal(proofJSON, &out); err != nil {
		return false, bindingerr.Wrap(bindingerr.Parse, "decode proof output JSON", err)
	}

	proof, err := proofio.DecodeProof(&out)
	if err != nil {
		return false, err
	}
	publicInputs, err := proofio.DecodePublicInputs(&out)
	if err != nil {
		return false, err
	}

	ok, err := prover.Verify(proof, publicInputs, vkBytes)
	if err != nil {
		return false, err
	}

	log.Info().Dur("elapsed", time.Since(start)).Bool("valid", ok).Msg("proof verified")
	return ok, nil
}

// InitProverCache decodes pkBytes into the process-wide proving-key cache.
// Returns false (and logs) on malformed key bytes.
func InitProverCache(pkBytes []byte) bool {
	if err := prover.InitProverCache(pkBytes); err != nil {
		log.Error().Err(err).Msg("init prover cache")
		return false
	}
	return true
}

// ClearProverCache drops the cached proving key.
func ClearProverCache() bool {
	prover.ClearProverCache()
	return true
}

// Poseidon1 hashes one field-element string (decimal or 0x-hex) and
// returns the digest in canonical decimal form.
func Poseidon1(x string) (string, error) {
	return hashStrings(x)
}

// Poseidon2 hashes two field-element strings.
func Poseidon2(a, b string) (string, error) {
	return hashStrings(a, b)
}

// Poseidon3 hashes three field-element strings.
func Poseidon3(a, b, c string) (string, error) {
	return hashStrings(a, b, c)
}

// Poseidon4 hashes four field-element strings.
func Poseidon4(a, b, c, d string) (string, error) {
	return hashStrings(a, b, c, d)
}

func hashStrings(ss ...string) (string, error) {
	xs := make([]*big.Int, len(ss))
	for i, s := range ss {
		v, err := field.ParseDecOrHex(s)
		if err != nil {
			return "", bindingerr.Wrap(bindingerr.Input, "poseidon input", err)
		}
		xs[i] = v
	}

	var (
		out *big.Int
		err error
	)
	switch len(xs) {
	case 1:
		out, err = poseidon.Hash1(xs[0])
	case 2:
		out, err = poseidon.Hash2(xs[0], xs[1])
	case 3:
		out, err = poseidon.Hash3(xs[0], xs[1], xs[2])
	case 4:
		out, err = poseidon.Hash4(xs[0], xs[1], xs[2], xs[3])
	default:
		return "", bindingerr.New(bindingerr.Input, "poseidon arity must be 1..4")
	}
	if err != nil {
		return "", bindingerr.Wrap(bindingerr.Internal, "poseidon hash", err)
	}

	return field.ToDecimalString(out), nil
}
