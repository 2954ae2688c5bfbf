// Package field wraps the BN254 scalar field for the rest of the module:
// parsing protocol values (keys, amounts, nullifiers, roots) out of the
// JSON witness side-channel and rendering them back in the canonical text
// and byte forms the on-chain verifier and companion wallets expect.
package field

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
)

// ElementBytes is the width of one canonically encoded field element.
const ElementBytes = fr.Bytes

// ParseDecOrHex parses s as an element of F, accepting either an unsigned
// decimal string or a "0x"-prefixed hex string. Any other string is an
// error. This is the sole entry point for every field value the JSON proof
// input object carries: amounts, keys, blindings, roots, nullifiers,
// commitments, and Merkle path entries.
func ParseDecOrHex(s string) (*big.Int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, fmt.Errorf("empty field element string")
	}

	var v *big.Int
	var ok bool
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		v, ok = new(big.Int).SetString(s[2:], 16)
	} else {
		v, ok = new(big.Int).SetString(s, 10)
	}
	if !ok {
		return nil, fmt.Errorf("invalid field element string: %q", s)
	}
	if v.Sign() < 0 {
		return nil, fmt.Errorf("field element must be unsigned, got %q", s)
	}
	if v.Cmp(fr.Modulus()) >= 0 {
		return nil, fmt.Errorf("field element %q exceeds the scalar field order", s)
	}
	return v, nil
}

// MustFr reduces x into the BN254 scalar field.
func MustFr(x *big.Int) fr.Element {
	var e fr.Element
	e.SetBigInt(x)
	return e
}

// CanonicalBytes returns the field's canonical compressed little-endian
// encoding of x, fixed at fr.Bytes width (32 bytes for BN254). This is the
// per-element encoding concatenated to build the publicInputsSerializedHex
// artifact.
func CanonicalBytes(x *big.Int) [fr.Bytes]byte {
	e := MustFr(x)
	// fr.Element.Bytes is big-endian; reverse it into little-endian order.
	b := e.Bytes()
	for i, j := 0, len(b)-1; i < j; i, j = i+1, j-1 {
		b[i], b[j] = b[j], b[i]
	}
	return b
}

// ToDecimalString renders x in the field's canonical unsigned-decimal text
// form, after reduction modulo the field order. Used for the publicInputs
// JSON array, which carries decimal strings.
func ToDecimalString(x *big.Int) string {
	e := MustFr(x)
	var r big.Int
	e.BigInt(&r)
	return r.String()
}

// FromCanonicalBytes decodes the compressed little-endian encoding produced
// by CanonicalBytes back into a big.Int, reporting an error on malformed
// input (e.g. an out-of-range encoding).
func FromCanonicalBytes(b []byte) (*big.Int, error) {
	var e fr.Element
	if len(b) != fr.Bytes {
		return nil, fmt.Errorf("field element must be %d bytes, got %d", fr.Bytes, len(b))
	}
	be := make([]byte, fr.Bytes)
	for i := range b {
		be[fr.Bytes-1-i] = b[i]
	}
	if err := e.SetBytesCanonical(be); err != nil {
		return nil, fmt.Errorf("decode field element: %w", err)
	}
	var out big.Int
	e.BigInt(&out)
	return &out, nil
}
