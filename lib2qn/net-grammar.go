package lib2qn

import (
	"fmt"
	"strings"

	"github.com/alecthomas/participle/v2"

	"github.com/qbit-systems/go2qn/go2qn"
)

// NetExpr is a comma-separated gate sequence in time order.
// Each step is either a qubit pair ("0-1") or a raw gate code ("3").
type NetExpr struct {
	Steps []*StepExpr `parser:"(@@ (\",\" @@)*)?"`
}

type StepExpr struct {
	A int64  `parser:"@Int"`
	B *int64 `parser:"(\"-\" @Int)?"`
}

type netBuilder struct {
	qubitCount int
	gates      []go2qn.Gate
}

func (Xb *netBuilder) applyStep(step *StepExpr) error {
	var g go2qn.Gate

	if step.B != nil {
		a, b := step.A, *step.B
		if a < 0 || b < 0 || a >= int64(Xb.qubitCount) || b >= int64(Xb.qubitCount) || a == b {
			return go2qn.ErrInvalidGate
		}
		g = go2qn.FormGate(go2qn.QubitID(a), go2qn.QubitID(b))
	} else {
		g = go2qn.Gate(step.A)
		if !g.IsValidFor(Xb.qubitCount) {
			return go2qn.ErrInvalidGate
		}
	}

	Xb.gates = append(Xb.gates, g)
	return nil
}

var parseNetExpr = participle.MustBuild[NetExpr]()

// InitFromExpr assigns this Net from a gate-network expr over qubitCount lines,
// e.g. "0-1, 0-2, 1-2" or equivalently "3, 5, 6".
func (X *Net) InitFromExpr(qubitCount int, netExpr string) error {
	if qubitCount < 2 || qubitCount > go2qn.MaxQubits {
		return go2qn.ErrQubitCountMismatch
	}

	X.Init(nil)
	X.qubitCount = int32(qubitCount)

	Xexpr, err := parseNetExpr.ParseString("", netExpr)
	if err != nil {
		return err
	}
	if len(Xexpr.Steps) > go2qn.MaxDepth {
		return go2qn.ErrDepthMismatch
	}

	Xb := netBuilder{
		qubitCount: qubitCount,
		gates:      X.gates[:0],
	}
	for si, step := range Xexpr.Steps {
		if err := Xb.applyStep(step); err != nil {
			return fmt.Errorf("error reading step #%d: %v", si+1, err)
		}
	}

	X.gateCount = int32(len(Xb.gates))
	return nil
}

// ExprString returns the qubit-pair expr of this network without CSV quoting, e.g. "0-1, 0-2".
func (X *Net) ExprString() string {
	b := strings.Builder{}
	b.Grow(4 * int(X.gateCount))
	for i, g := range X.Gates() {
		if i > 0 {
			b.WriteString(", ")
		}
		lo, hi := g.Qubits()
		fmt.Fprintf(&b, "%d-%d", lo, hi)
	}
	return b.String()
}
