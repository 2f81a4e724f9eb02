package catalog

import (
	"bytes"
	"encoding/binary"

	"github.com/pkg/errors"

	"github.com/qbit-systems/go2qn/go2qn"
)

const (
	kCatalogMajorVers = 2023
	kCatalogMinorVers = 1
)

// CatalogState is the header entry persisted at gCatalogStateKey.
//
// NumNets[d] counts the catalog entries having d gates, so the total
// net count is the sum over 1..MaxDepth.
type CatalogState struct {
	MajorVers  uint32
	MinorVers  uint32
	QubitCount byte
	NumNets    []uint64
}

func (state *CatalogState) Marshal() ([]byte, error) {
	var scrap [binary.MaxVarintLen64]byte

	buf := make([]byte, 0, 8+2*len(state.NumNets))
	n := binary.PutUvarint(scrap[:], uint64(state.MajorVers))
	buf = append(buf, scrap[:n]...)
	n = binary.PutUvarint(scrap[:], uint64(state.MinorVers))
	buf = append(buf, scrap[:n]...)
	n = binary.PutUvarint(scrap[:], uint64(state.QubitCount))
	buf = append(buf, scrap[:n]...)
	n = binary.PutUvarint(scrap[:], uint64(len(state.NumNets)))
	buf = append(buf, scrap[:n]...)

	for _, Ni := range state.NumNets {
		n = binary.PutUvarint(scrap[:], Ni)
		buf = append(buf, scrap[:n]...)
	}
	return buf, nil
}

func (state *CatalogState) Unmarshal(src []byte) error {
	rdr := bytes.NewReader(src)

	var hdr [4]uint64
	for i := range hdr {
		v, err := binary.ReadUvarint(rdr)
		if err != nil {
			return errors.Wrap(go2qn.ErrBadEncoding, "truncated catalog state")
		}
		hdr[i] = v
	}

	state.MajorVers = uint32(hdr[0])
	state.MinorVers = uint32(hdr[1])
	state.QubitCount = byte(hdr[2])

	numDepths := int(hdr[3])
	if numDepths > go2qn.MaxDepth+1 {
		return errors.Wrap(go2qn.ErrBadEncoding, "oversized catalog state")
	}
	state.NumNets = make([]uint64, numDepths)
	for i := range state.NumNets {
		v, err := binary.ReadUvarint(rdr)
		if err != nil {
			return errors.Wrap(go2qn.ErrBadEncoding, "truncated catalog state")
		}
		state.NumNets[i] = v
	}
	return nil
}
