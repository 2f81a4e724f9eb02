package lib2qn

import (
	"encoding/json"
	"os"

	"github.com/pkg/errors"

	"github.com/qbit-systems/go2qn/go2qn"
)

// Seed is the exchange form of a result set: it declares the qubit count and
// depth it was produced at, plus one gate-code tuple per network.  A finished
// run writes the same shape it accepts, so results chain as future seeds.
type Seed struct {
	QubitCount int        `json:"qubit_count"`
	Depth      int        `json:"depth"`
	Networks   [][]uint16 `json:"networks"`
}

// LoadSeed reads and decodes a Seed from a JSON file.
func LoadSeed(pathname string) (*Seed, error) {
	data, err := os.ReadFile(pathname)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read seed %q", pathname)
	}

	seed := &Seed{}
	if err := json.Unmarshal(data, seed); err != nil {
		return nil, errors.Wrapf(go2qn.ErrBadSeed, "failed to decode seed %q: %v", pathname, err)
	}
	return seed, nil
}

// WriteToFile encodes this Seed as JSON and writes it to the given path.
func (seed *Seed) WriteToFile(pathname string) error {
	data, err := json.MarshalIndent(seed, "", "  ")
	if err != nil {
		return errors.Wrap(err, "failed to encode seed")
	}
	data = append(data, '\n')

	if err := os.WriteFile(pathname, data, 0644); err != nil {
		return errors.Wrapf(err, "failed to write seed %q", pathname)
	}
	return nil
}

// Validate checks this Seed's declarations and every network in it.
// A Seed that validates cleanly can always expand via SetFromSeed.
func (seed *Seed) Validate() error {
	if seed.QubitCount < 2 || seed.QubitCount > go2qn.MaxQubits {
		return errors.Wrapf(go2qn.ErrQubitCountMismatch, "seed qubit count %d outside 2..%d", seed.QubitCount, go2qn.MaxQubits)
	}
	if seed.Depth < 1 || seed.Depth > go2qn.MaxDepth {
		return errors.Wrapf(go2qn.ErrDepthMismatch, "seed depth %d outside 1..%d", seed.Depth, go2qn.MaxDepth)
	}
	for ni, codes := range seed.Networks {
		if len(codes) != seed.Depth {
			return errors.Wrapf(go2qn.ErrDepthMismatch, "network #%d has %d gates, seed declares depth %d", ni+1, len(codes), seed.Depth)
		}
		for _, code := range codes {
			if !go2qn.Gate(code).IsValidFor(seed.QubitCount) {
				return errors.Wrapf(go2qn.ErrInvalidGate, "network #%d carries gate code %d", ni+1, code)
			}
		}
	}
	return nil
}

// SetFromSeed validates seed and expands it into a NetSet, canonizing each
// network on the way in so foreign seeds land in canonic form.
func SetFromSeed(seed *Seed) (*NetSet, error) {
	if err := seed.Validate(); err != nil {
		return nil, err
	}

	set := NewNetSet(seed.QubitCount)
	X := NewNet(nil)
	defer X.Reclaim()

	var gates [go2qn.MaxDepth]go2qn.Gate
	for _, codes := range seed.Networks {
		for i, code := range codes {
			gates[i] = go2qn.Gate(code)
		}
		if err := X.InitFromGates(seed.QubitCount, gates[:len(codes)]); err != nil {
			set.Reclaim()
			return nil, err
		}
		if err := X.Canonize(); err != nil {
			set.Reclaim()
			return nil, err
		}
		set.TryAddNet(X)
	}
	return set, nil
}

// SeedFromSet extracts the exchange form of set at the given depth,
// networks in ascending signature order.
func SeedFromSet(set *NetSet, depth int) *Seed {
	seed := &Seed{
		QubitCount: set.QubitCount(),
		Depth:      depth,
		Networks:   make([][]uint16, 0, set.Len()),
	}
	set.ForEach(func(X *Net) bool {
		codes := make([]uint16, X.GateCount())
		for i, g := range X.Gates() {
			codes[i] = uint16(g)
		}
		seed.Networks = append(seed.Networks, codes)
		return true
	})
	return seed
}

// SeedFromCatalog extracts the networks stored in cat at the given depth as a
// Seed, letting a previously computed catalog depth start an EnumerateNets run.
func SeedFromCatalog(cat go2qn.Catalog, depth int) (*Seed, error) {
	if depth < 1 || depth > go2qn.MaxDepth {
		return nil, errors.Wrapf(go2qn.ErrDepthMismatch, "depth %d outside 1..%d", depth, go2qn.MaxDepth)
	}

	sel := go2qn.DefaultNetSelector
	sel.Min.NumGates = byte(depth)
	sel.Max.NumGates = byte(depth)

	set := NewNetSet(int(cat.QubitCount()))
	onHit := make(chan go2qn.NetState, 4)
	go func() {
		cat.Select(sel, onHit)
		close(onHit)
	}()
	for X := range onHit {
		set.TryAddNet(X)
		X.Reclaim()
	}

	seed := SeedFromSet(set, depth)
	set.Reclaim()
	return seed, nil
}
