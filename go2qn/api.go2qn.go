package go2qn

import (
	"io"
)

const (

	// MaxQubits is the max number of qubit lines a Net can span.
	MaxQubits = 16

	// MaxDepth is the max number of gates a Net can carry.
	MaxDepth = 32

	// GateSz is the byte length of one Gate within a Sig.
	GateSz = 2
)

// Gate encodes a two-qubit gate as a bit mask over qubit lines.
//
// Bit i (LSB first) set means qubit i participates, so a well formed Gate
// has exactly two bits set.  The gate on qubits {0,1} is 3, on {0,2} is 5,
// and on {1,2} is 6.  Integer order on Gate values is the gate order used
// everywhere in this module.
type Gate uint16

// QubitID is a zero-based qubit line index.
type QubitID byte

// Sig is the binary signature of a Net's gate sequence: each Gate appended
// big-endian, so byte-wise lexicographic order on Sig equals lexicographic
// order on the gate sequence itself.
//
// After NetState.Canonize(), a Sig uniquely identifies a relabeling class.
type Sig []byte

// NetState is a two-qubit gate network in some working state (not necessarily canonical).
type NetState interface {

	// QubitCount returns the number of qubit lines this network is defined over.
	QubitCount() int

	// GateCount returns the number of gates in this network (its depth).
	GateCount() int

	// Gates returns the gate sequence in time order.
	// The returned slice is owned by this NetState and is valid until the next mutation.
	Gates() []Gate

	// Canonize relabels this network's qubits in place such that its gate
	// sequence is the lexicographically smallest over all relabelings.
	Canonize() error

	// Reverse reverses the time order of this network's gate sequence in place.
	Reverse()

	// Sig returns the signature of the current gate sequence.
	// The returned buffer is owned by this NetState and is valid until the next mutation.
	Sig() Sig

	// WriteAsString writes a human-readable single-line encoding of this network.
	WriteAsString(out io.Writer, opts PrintOpts)

	// Returns a new copy of this instance.
	MakeCopy() NetState

	// Returns info about this network
	GetInfo() NetInfo

	// Recycles this NetState instance into a pool for reuse.
	// Caller asserts that no more references to this instance will persist.
	Reclaim()
}

// OnNetHit is a callback channel used to return Nets meeting a set of selection criteria.
// Ownership of a NetState also travels through the channel.
type OnNetHit chan<- NetState

// CatalogContext is a container for open / active Catalog instances.
type CatalogContext interface {

	// Attaches the given Catalog to this context.
	AttachCatalog(cat Catalog)

	// Detaches the given Catalog from this context.
	DetachCatalog(cat Catalog)

	// Signals all open catalogs to be closed then closes.
	Close()

	// Signals when Close() completed and all open Catalogs have been closed
	Done() <-chan struct{}
}

// CatalogOpts specifies params for opening a go2qn Catalog
type CatalogOpts struct {
	DbPathName string // omit for an in-memory db
	ReadOnly   bool   // open in read-only mode
	QubitCount byte   // qubit line count for a newly created catalog
}

type NetAdder interface {

	// Tries to add the given network to this set or catalog.
	// If true is returned, X was not present and was added.
	TryAddNet(X NetState) bool
}

// CanonicSet is a NetAdder with an explicit end-of-use hook, letting a stream
// operator own a membership set for exactly the stream's lifetime.
type CanonicSet interface {
	NetAdder

	// Close removes all previously added items from this set.
	Close()
}

// Catalog wraps a database of canonical Net signatures.
type Catalog interface {
	NetAdder

	// Returns true if this catalog was opened for read-only access.
	IsReadOnly() bool

	// QubitCount returns the qubit line count all networks in this catalog share.
	QubitCount() byte

	// NumNets returns the number of networks in this catalog at the given depth.
	// An out of bounds depth returns 0.
	NumNets(forDepth byte) int64

	// Select fires the given callback with each stored Net that meets the selection criteria.
	Select(sel NetSelector, onHit OnNetHit)

	Close() error
}

// NetInfo summarizes the shape of a Net.
type NetInfo struct {
	NumQubits byte
	NumGates  byte
}

// NetSelector is an operator that either selects a given Net or not.
type NetSelector struct {
	Min NetInfo // lower select bounds
	Max NetInfo // upper select bounds
}

// PrintOpts specifies what is printed when a Net is written as a string.
type PrintOpts struct {
	Label   string // Prefix label
	Grammar bool   // If set, prints the qubit-pair grammar expr, e.g. "0-1, 0-2"
	Codes   bool   // If set, prints the raw integer gate codes, e.g. "3, 5"
	Graph   bool   // If set, prints the order-blind graph view (gate multiset)
}

// DefaultPrintOpts{}
var DefaultPrintOpts = PrintOpts{
	Grammar: true,
}
