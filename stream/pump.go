// File: stream/pump.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Pump loops shared by the ring path and the bypass paths.

package stream

import (
	"github.com/momentics/hioload-aio/api"
	"github.com/momentics/hioload-aio/pool"
)

type progress uint8

const (
	moreLater progress = iota
	done
)

// signal folds a raw error into the pump vocabulary: EOF finishes the
// side, would-block suspends it, anything else is a failure.
func signal(err error) (progress, *api.Error) {
	e := api.Classify(err)
	switch e.Kind {
	case api.KindEOF:
		return done, nil
	case api.KindWouldBlock:
		return moreLater, nil
	}
	return moreLater, e
}

// readTo fills the free region of ring from src until the ring is full or
// the source signals.
func readTo(src api.RawReader, ring *pool.Ring) (int, progress, *api.Error) {
	total := 0
	for {
		v := ring.WriterView()
		if len(v) == 0 {
			return total, moreLater, nil
		}
		n, err := src.Read(v)
		if n > 0 {
			if aerr := ring.AdvanceWrite(n); aerr != nil {
				return total, moreLater, api.Classify(aerr)
			}
			total += n
		}
		if err != nil {
			p, e := signal(err)
			return total, p, e
		}
		if n == 0 {
			return total, moreLater, nil
		}
	}
}

// writeFrom drains the filled region of ring into w until the ring is
// empty or the writer signals.
func writeFrom(ring *pool.Ring, w api.Writer) (int, progress, *api.Error) {
	total := 0
	for {
		v := ring.ReaderView()
		if len(v) == 0 {
			return total, moreLater, nil
		}
		n, err := w(v)
		if n > 0 {
			if aerr := ring.AdvanceRead(n); aerr != nil {
				return total, moreLater, api.Classify(aerr)
			}
			total += n
		}
		if err != nil {
			p, e := signal(err)
			return total, p, e
		}
		if n == 0 {
			return total, moreLater, nil
		}
	}
}

// writeAll pushes data[*off:] into w, advancing *off.
func writeAll(data []byte, off *int, w api.Writer) (progress, *api.Error) {
	for *off < len(data) {
		n, err := w(data[*off:])
		if n < 0 || n > len(data)-*off {
			return moreLater, pool.ErrOvercommit
		}
		*off += n
		if err != nil {
			return signal(err)
		}
		if n == 0 {
			return moreLater, nil
		}
	}
	return done, nil
}
