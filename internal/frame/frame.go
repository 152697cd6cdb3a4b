// Package frame recovers length-delimited message payloads from an
// unaligned serial byte stream.
//
// Wire layout: [0xAA 0xAA][uint32 little-endian length L][L payload bytes]
// with 24 <= L <= 1024. The synchronizer tolerates partial chunks, garbage
// between frames, and corrupted length fields without ever losing more data
// than necessary to recover alignment.
package frame

import (
	"bytes"
	"encoding/binary"
)

const (
	// MinPayloadSize and MaxPayloadSize bound the length field of a valid
	// frame. Anything outside is treated as corruption.
	MinPayloadSize = 24
	MaxPayloadSize = 1024

	// maxUnsyncedBuffer caps accumulation while no marker has been found,
	// so sustained line noise cannot grow the buffer without bound.
	maxUnsyncedBuffer = 2048

	markerByte = 0xAA
	sizeField  = 4
)

var marker = []byte{markerByte, markerByte}

type state int

const (
	// stateSearching: buffer holds bytes not yet known to start a frame.
	stateSearching state = iota
	// stateSized: marker consumed; waiting for the size field and body.
	stateSized
)

// Synchronizer turns raw byte chunks into complete message payloads.
// Feed appends a chunk; Next pops complete payloads one at a time until it
// reports false. Not safe for concurrent use; the ingest loop is the single
// caller.
type Synchronizer struct {
	buf   bytes.Buffer
	state state
}

// New returns a Synchronizer in the searching state with an empty buffer.
func New() *Synchronizer {
	return &Synchronizer{}
}

// Feed appends a raw chunk from the transport. An empty chunk is a no-op.
func (s *Synchronizer) Feed(chunk []byte) {
	if len(chunk) == 0 {
		return
	}
	s.buf.Write(chunk)
}

// Next extracts the next complete payload from the buffer. It returns
// (payload, true) while complete frames remain and (nil, false) once more
// input is needed. The returned slice is a copy and remains valid after
// subsequent Feed calls.
//
// Corrupt length fields cost exactly one byte of buffered data: the byte at
// the front is dropped and the marker search restarts, bounding loss under
// corruption. If no marker is found and the buffer exceeds the unsynced cap,
// the whole buffer is discarded and searching continues.
func (s *Synchronizer) Next() ([]byte, bool) {
	for {
		switch s.state {
		case stateSearching:
			idx := bytes.Index(s.buf.Bytes(), marker)
			if idx < 0 {
				if s.buf.Len() > maxUnsyncedBuffer {
					s.buf.Reset()
				}
				return nil, false
			}
			s.buf.Next(idx + len(marker))
			s.state = stateSized

		case stateSized:
			b := s.buf.Bytes()
			if len(b) < sizeField {
				return nil, false
			}
			size := binary.LittleEndian.Uint32(b[:sizeField])
			if size < MinPayloadSize || size > MaxPayloadSize {
				// Corrupt size. Skip one byte and resynchronize.
				s.buf.Next(1)
				s.state = stateSearching
				continue
			}
			total := sizeField + int(size)
			if len(b) < total {
				return nil, false
			}
			payload := make([]byte, size)
			copy(payload, b[sizeField:total])
			s.buf.Next(total)
			s.state = stateSearching
			return payload, true
		}
	}
}

// Buffered reports the number of bytes currently accumulated.
func (s *Synchronizer) Buffered() int {
	return s.buf.Len()
}
