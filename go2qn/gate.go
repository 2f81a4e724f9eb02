package go2qn

import (
	"fmt"
	"math/bits"
)

// FormGate returns the Gate acting on qubit lines a and b.
// Returns 0 if a == b or either line is out of range.
func FormGate(a, b QubitID) Gate {
	if a == b || a >= MaxQubits || b >= MaxQubits {
		return 0
	}
	return Gate(1)<<a | Gate(1)<<b
}

// Qubits returns the two qubit lines g acts on, in ascending order.
// g must be a well formed Gate.
func (g Gate) Qubits() (lo, hi QubitID) {
	lo = QubitID(bits.TrailingZeros16(uint16(g)))
	hi = QubitID(15 - bits.LeadingZeros16(uint16(g)))
	return
}

// IsValidFor returns true if g has exactly two bits set and both fall below qubitCount.
func (g Gate) IsValidFor(qubitCount int) bool {
	if bits.OnesCount16(uint16(g)) != 2 {
		return false
	}
	return g>>uint(qubitCount) == 0
}

// Swap returns g with its bits at lines a and b exchanged.
// A gate touching neither or both of the lines comes back unchanged.
func (g Gate) Swap(a, b QubitID) Gate {
	x := (g>>a ^ g>>b) & 1
	return g ^ (x<<a | x<<b)
}

// Permute returns g relabeled by perm: bit i of the result is bit perm[i] of g.
// perm must cover every line g touches.
func (g Gate) Permute(perm []QubitID) Gate {
	var out Gate
	for i, src := range perm {
		out |= (g >> src & 1) << uint(i)
	}
	return out
}

// Marshal appends the big-endian encoding of g to in.
func (g Gate) Marshal(in []byte) []byte {
	return append(in,
		byte(g>>8),
		byte(g),
	)
}

// Unmarshal reads a Gate from the first GateSz bytes of in.
func (g *Gate) Unmarshal(in []byte) error {
	if len(in) < GateSz {
		*g = 0
		return ErrBadEncoding
	}
	*g = Gate(in[0])<<8 | Gate(in[1])
	return nil
}

// String returns the qubit-pair form of g, e.g. "0-1".
func (g Gate) String() string {
	lo, hi := g.Qubits()
	return fmt.Sprintf("%d-%d", lo, hi)
}

// AllGates returns every well formed Gate on qubitCount lines, in ascending order.
func AllGates(qubitCount int) []Gate {
	if qubitCount < 2 || qubitCount > MaxQubits {
		return nil
	}
	gates := make([]Gate, 0, qubitCount*(qubitCount-1)/2)
	for hi := QubitID(1); int(hi) < qubitCount; hi++ {
		for lo := QubitID(0); lo < hi; lo++ {
			gates = append(gates, FormGate(lo, hi))
		}
	}
	return gates
}
