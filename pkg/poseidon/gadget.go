package poseidon

import (
	"github.com/consensys/gnark/frontend"
	gadget "github.com/vocdoni/gnark-crypto-primitives/hash/native/bn254/poseidon"
)

// Var is the in-circuit counterpart to the native Hash functions: it wires
// the same circomlib Poseidon permutation as R1CS constraints over
// frontend.Variable, so a gadget evaluation and the native hashN call on
// the same inputs are equal.
type Var struct {
	api frontend.API
}

// New returns a gadget bound to api, reusable across every width t=2..5
// the transaction circuit needs.
func New(api frontend.API) *Var {
	return &Var{api: api}
}

// Hash1 is the in-circuit form of Hash1.
func (v *Var) Hash1(x frontend.Variable) (frontend.Variable, error) {
	return gadget.Hash(v.api, x)
}

// Hash2 is the in-circuit form of Hash2.
func (v *Var) Hash2(a, b frontend.Variable) (frontend.Variable, error) {
	return gadget.Hash(v.api, a, b)
}

// Hash3 is the in-circuit form of Hash3.
func (v *Var) Hash3(a, b, c frontend.Variable) (frontend.Variable, error) {
	return gadget.Hash(v.api, a, b, c)
}

// Hash4 is the in-circuit form of Hash4.
func (v *Var) Hash4(a, b, c, d frontend.Variable) (frontend.Variable, error) {
	return gadget.Hash(v.api, a, b, c, d)
}
