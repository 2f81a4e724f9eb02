package lib2qn

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"

	"github.com/pkg/errors"

	"github.com/qbit-systems/go2qn/go2qn"
)

// NewNet returns a new Net from the pool, initialized as a copy of Xsrc (or empty if Xsrc is nil).
func NewNet(Xsrc *Net) *Net {
	X := netPool.Get().(*Net)
	X.Init(Xsrc)
	return X
}

// NewNetFromExpr returns a new Net parsed from a gate-network expr such as "0-1, 0-2" or "3, 5".
func NewNetFromExpr(qubitCount int, netExpr string) (*Net, error) {
	X := netPool.Get().(*Net)
	err := X.InitFromExpr(qubitCount, netExpr)
	if err != nil {
		X.Reclaim()
		return nil, err
	}
	return X, nil
}

var netPool = sync.Pool{
	New: func() interface{} {
		return new(Net)
	},
}

// Net is an ordered sequence of two-qubit gates over a fixed number of qubit lines.
//
// A Net mutates in place and is pooled via NewNet() / Reclaim().
type Net struct {
	qubitCount int32                      // number of qubit lines
	gateCount  int32                      // number of assigned gates in []gates
	gates      [go2qn.MaxDepth]go2qn.Gate // time-ordered gate assignment

	dirty  bool
	sigLen int32
	sigBuf [go2qn.MaxDepth * go2qn.GateSz]byte
}

func (X *Net) Init(Xsrc *Net) {
	if X == Xsrc {
		return
	}

	X.onNetChanged()

	if Xsrc == nil {
		X.qubitCount = 0
		X.gateCount = 0
		return
	}
	X.qubitCount = Xsrc.qubitCount
	X.gateCount = Xsrc.gateCount
	copy(X.Gates(), Xsrc.Gates())
}

// InitFromGates assigns this Net to the given gate sequence over qubitCount lines.
func (X *Net) InitFromGates(qubitCount int, gates []go2qn.Gate) error {
	if qubitCount < 2 || qubitCount > go2qn.MaxQubits {
		return go2qn.ErrQubitCountMismatch
	}
	if len(gates) > go2qn.MaxDepth {
		return go2qn.ErrDepthMismatch
	}

	X.onNetChanged()
	X.qubitCount = int32(qubitCount)
	X.gateCount = 0
	for _, g := range gates {
		if !g.IsValidFor(qubitCount) {
			return go2qn.ErrInvalidGate
		}
		X.gates[X.gateCount] = g
		X.gateCount++
	}
	return nil
}

// InitFromSig assigns this Net from a signature generated by AppendSig().
func (X *Net) InitFromSig(qubitCount int, sig []byte) error {
	if len(sig)%go2qn.GateSz != 0 {
		return go2qn.ErrBadEncoding
	}

	X.onNetChanged()
	X.qubitCount = int32(qubitCount)
	X.gateCount = 0
	for i := 0; i < len(sig); i += go2qn.GateSz {
		var g go2qn.Gate
		if err := g.Unmarshal(sig[i:]); err != nil {
			return err
		}
		if !g.IsValidFor(qubitCount) {
			return go2qn.ErrInvalidGate
		}
		if X.gateCount >= go2qn.MaxDepth {
			return go2qn.ErrDepthMismatch
		}
		X.gates[X.gateCount] = g
		X.gateCount++
	}
	return nil
}

func (X *Net) QubitCount() int {
	return int(X.qubitCount)
}

func (X *Net) GateCount() int {
	return int(X.gateCount)
}

func (X *Net) Gates() []go2qn.Gate {
	return X.gates[:X.gateCount]
}

func (X *Net) GetInfo() go2qn.NetInfo {
	return go2qn.NetInfo{
		NumQubits: byte(X.qubitCount),
		NumGates:  byte(X.gateCount),
	}
}

// AppendGate appends g to the end of this network's gate sequence.
func (X *Net) AppendGate(g go2qn.Gate) error {
	if !g.IsValidFor(int(X.qubitCount)) {
		return go2qn.ErrInvalidGate
	}
	if X.gateCount >= go2qn.MaxDepth {
		return go2qn.ErrDepthMismatch
	}
	X.gates[X.gateCount] = g
	X.gateCount++
	X.onNetChanged()
	return nil
}

// Concatenate appends Xsrc's gate sequence onto the end of this network.
func (X *Net) Concatenate(Xsrc *Net) error {
	if Xsrc == nil {
		return go2qn.ErrNilNet
	}
	if Xsrc.qubitCount != X.qubitCount {
		return errors.Wrapf(go2qn.ErrQubitCountMismatch, "concat of %d-qubit net onto %d-qubit net", Xsrc.qubitCount, X.qubitCount)
	}
	for _, g := range Xsrc.Gates() {
		if err := X.AppendGate(g); err != nil {
			return err
		}
	}
	return nil
}

// Reverse reverses the time order of this network's gate sequence in place.
func (X *Net) Reverse() {
	gates := X.Gates()
	for i, j := 0, len(gates)-1; i < j; i, j = i+1, j-1 {
		gates[i], gates[j] = gates[j], gates[i]
	}
	X.onNetChanged()
}

// PermuteQubits relabels this network in place: gate bit i is assigned from bit perm[i].
// perm must be a permutation of all of this network's qubit lines.
func (X *Net) PermuteQubits(perm []go2qn.QubitID) error {
	if len(perm) != int(X.qubitCount) {
		return go2qn.ErrQubitCountMismatch
	}
	var seen uint32
	for _, p := range perm {
		if int32(p) >= X.qubitCount || seen&(1<<p) != 0 {
			return go2qn.ErrBadPermutation
		}
		seen |= 1 << p
	}
	for i := range X.Gates() {
		X.gates[i] = X.gates[i].Permute(perm)
	}
	X.onNetChanged()
	return nil
}

// SwapQubits relabels this network in place by exchanging lines a and b.
func (X *Net) SwapQubits(a, b go2qn.QubitID) error {
	if int32(a) >= X.qubitCount || int32(b) >= X.qubitCount {
		return go2qn.ErrBadPermutation
	}
	for i := range X.Gates() {
		X.gates[i] = X.gates[i].Swap(a, b)
	}
	X.onNetChanged()
	return nil
}

// MaxRun returns the length of the longest run of consecutive identical gates.
func (X *Net) MaxRun() int {
	maxRun := 0
	run := 0
	var prev go2qn.Gate
	for i, g := range X.Gates() {
		if i > 0 && g == prev {
			run++
		} else {
			run = 1
			prev = g
		}
		if run > maxRun {
			maxRun = run
		}
	}
	return maxRun
}

// Canonize relabels this network in place to the canonic representative of its relabeling class.
func (X *Net) Canonize() error {
	return gCanonizer.Canonize(X)
}

// AppendSig appends the signature of the current gate sequence to in.
func (X *Net) AppendSig(in []byte) []byte {
	for _, g := range X.Gates() {
		in = g.Marshal(in)
	}
	return in
}

// Sig returns the signature of the current gate sequence.
// The returned buffer should be considered read-only and is valid until the next mutation.
func (X *Net) Sig() go2qn.Sig {
	if X.dirty {
		X.sigLen = int32(len(X.AppendSig(X.sigBuf[:0])))
		X.dirty = false
	}
	return go2qn.Sig(X.sigBuf[:X.sigLen])
}

// IsEqual returns true if X and Y have identical qubit counts and gate sequences.
func (X *Net) IsEqual(Y *Net) bool {
	if X.qubitCount != Y.qubitCount || X.gateCount != Y.gateCount {
		return false
	}
	for i := int32(0); i < X.gateCount; i++ {
		if X.gates[i] != Y.gates[i] {
			return false
		}
	}
	return true
}

func (X *Net) Println(prefix string) {
	b := strings.Builder{}
	b.Grow(192)
	b.WriteString(prefix)
	X.WriteAsString(&b, go2qn.DefaultPrintOpts)
	fmt.Println(b.String())
}

func (X *Net) String() string {
	b := strings.Builder{}
	X.WriteAsString(&b, go2qn.DefaultPrintOpts)
	return b.String()
}

var (
	quote = []byte("\"")
	space = []byte(" ")
	comma = []byte(",")
)

func (X *Net) WriteAsString(out io.Writer, opts go2qn.PrintOpts) {
	fmt.Fprintf(out, "q=%d,d=%d,", X.qubitCount, X.gateCount)

	if opts.Grammar {
		X.WriteAsExprStr(out)
	}
	if opts.Codes {
		X.WriteCodesAsCSV(out)
	}
	if opts.Graph {
		X.WriteGraphView(out)
	}
}

// WriteAsExprStr writes the qubit-pair expr of this network, e.g. "0-1, 0-2".
func (X *Net) WriteAsExprStr(out io.Writer) {
	out.Write(quote)
	for i, g := range X.Gates() {
		if i > 0 {
			out.Write(comma)
			out.Write(space)
		}
		lo, hi := g.Qubits()
		fmt.Fprintf(out, "%d-%d", lo, hi)
	}
	out.Write(quote)
	out.Write(comma)
}

// WriteCodesAsCSV writes the raw integer gate codes of this network, e.g. "3,5,".
func (X *Net) WriteCodesAsCSV(out io.Writer) {
	for _, g := range X.Gates() {
		fmt.Fprintf(out, "%d,", uint16(g))
	}
}

// WriteGraphView writes the order-blind view of this network: its gate multiset, sorted.
func (X *Net) WriteGraphView(out io.Writer) {
	var scrap [go2qn.MaxDepth]go2qn.Gate
	sorted := scrap[:X.gateCount]
	copy(sorted, X.Gates())
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	fmt.Fprint(out, "{")
	for i, g := range sorted {
		if i > 0 {
			out.Write(space)
		}
		lo, hi := g.Qubits()
		fmt.Fprintf(out, "%d-%d", lo, hi)
	}
	fmt.Fprint(out, "},")
}

func (X *Net) MakeCopy() go2qn.NetState {
	return NewNet(X)
}

func (X *Net) Reclaim() {
	if X != nil {
		netPool.Put(X)
	}
}

func (X *Net) onNetChanged() {

	// Reset generated info since the net changed
	X.dirty = true
	X.sigLen = 0
}
