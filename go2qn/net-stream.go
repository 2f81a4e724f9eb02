package go2qn

import (
	"fmt"
	"io"
	"strings"
)

type NetStream struct {
	Outlet chan NetState
}

func NewNetStream() *NetStream {
	stream := &NetStream{
		Outlet: make(chan NetState),
	}
	return stream
}

func StreamNet(X NetState) *NetStream {
	next := NewNetStream()

	go func() {
		next.Outlet <- X.MakeCopy()
		next.Close()
	}()

	return next
}

func (stream *NetStream) Close() {
	if stream.Outlet != nil {
		close(stream.Outlet)
	}
}

func (stream *NetStream) PushNet(X NetState) {
	stream.Outlet <- X.MakeCopy()
}

func (stream *NetStream) PullNet() NetState {
	X := <-stream.Outlet
	return X
}

func (stream *NetStream) PullAll() int {
	count := int(0)
	for X := range stream.Outlet {
		count++
		X.Reclaim()
	}
	return count
}

func (stream *NetStream) Print(
	out io.WriteCloser,
	opts PrintOpts) *NetStream {

	next := &NetStream{
		Outlet: make(chan NetState, 1),
	}

	go func() {
		buf := strings.Builder{}
		buf.Grow(256)

		count := 0
		for X := range stream.Outlet {
			if len(opts.Label) > 0 {
				buf.WriteString(opts.Label)
			}
			buf.WriteByte(',')

			count++
			fmt.Fprintf(&buf, "%06d,", count)
			X.WriteAsString(&buf, opts)
			buf.WriteByte('\n')
			out.Write([]byte(buf.String()))
			buf.Reset()
			next.Outlet <- X
		}
		out.Close()
		next.Close()
	}()

	return next
}

func (stream *NetStream) AddTo(target NetAdder) *NetStream {
	next := &NetStream{
		Outlet: make(chan NetState, 1),
	}

	go func() {
		for X := range stream.Outlet {
			wasAdded := target.TryAddNet(X)
			if wasAdded {
				next.Outlet <- X
			} else {
				X.Reclaim()
			}
		}
		next.Close()
	}()

	return next
}

func SelectFromCatalog(cat Catalog, sel NetSelector) *NetStream {
	next := &NetStream{
		Outlet: make(chan NetState, 1),
	}

	onHit := make(chan NetState, 4)

	go func() {
		cat.Select(sel, onHit)
		close(onHit)
	}()

	go func() {
		for X := range onHit {
			if sel.SelectsNet(X) {
				next.Outlet <- X
			} else {
				X.Reclaim()
			}
		}
		next.Close()
	}()

	return next
}

func (stream *NetStream) SelectFromStream(sel NetSelector) *NetStream {
	next := &NetStream{
		Outlet: make(chan NetState, 1),
	}

	go func() {
		for X := range stream.Outlet {
			if sel.SelectsNet(X) {
				next.Outlet <- X
			} else {
				X.Reclaim()
			}
		}
		next.Close()
	}()

	return next
}

// DropDupes forwards only the first Net seen per signature.
// dupes is closed once the stream drains.
func (stream *NetStream) DropDupes(dupes CanonicSet) *NetStream {
	next := &NetStream{
		Outlet: make(chan NetState, 1),
	}

	go func() {
		for X := range stream.Outlet {
			if dupes.TryAddNet(X) {
				next.Outlet <- X
			} else {
				X.Reclaim()
			}
		}
		dupes.Close()
		next.Close()
	}()

	return next
}

func (stream *NetStream) Canonize() *NetStream {
	next := &NetStream{
		Outlet: make(chan NetState, 1),
	}

	go func() {
		for X := range stream.Outlet {
			err := X.Canonize()
			if err != nil {
				panic(err)
			}
			next.Outlet <- X
		}
		next.Close()
	}()

	return next
}

func (stream *NetStream) Reverse() *NetStream {
	next := &NetStream{
		Outlet: make(chan NetState, 1),
	}

	go func() {
		for X := range stream.Outlet {
			X.Reverse()
			next.Outlet <- X
		}
		next.Close()
	}()

	return next
}
