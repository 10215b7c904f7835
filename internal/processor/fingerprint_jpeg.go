package processor

import (
	"bytes"
	"encoding/hex"
	"errors"
	"fmt"
	"hash"
	"io"
)

// ErrMalformedFormat is returned when a file's content does not match the
// structure its signature promised, e.g. a JPEG with no start-of-scan marker.
var ErrMalformedFormat = errors.New("malformed format")

var sosMarker = []byte{0xff, 0xda}

// sosScanner hashes a JPEG stream from its first SOS marker onward. Until the
// marker shows up it holds only the bytes that have not been searched yet,
// which is at most one trailing byte between writes.
type sosScanner struct {
	h       hash.Hash
	pending []byte
	found   bool
}

func newSOSScanner(h hash.Hash) *sosScanner {
	return &sosScanner{h: h}
}

func (s *sosScanner) Write(p []byte) (int, error) {
	if s.found {
		return s.h.Write(p)
	}
	if len(p) == 0 {
		return 0, nil
	}

	s.pending = append(s.pending, p...)
	idx := bytes.Index(s.pending, sosMarker)
	if idx < 0 {
		// keep a lone trailing byte: it may be the first half of a split marker
		last := s.pending[len(s.pending)-1:]
		s.pending = append(s.pending[:0], last...)
		return len(p), nil
	}

	s.found = true
	tail := s.pending[idx:]
	s.pending = nil
	if _, err := s.h.Write(tail); err != nil {
		return 0, err
	}
	return len(p), nil
}

func (s *sosScanner) Sum() (string, error) {
	if !s.found {
		return "", fmt.Errorf("%w: jpeg has no start-of-scan marker", ErrMalformedFormat)
	}
	return hex.EncodeToString(s.h.Sum(nil)), nil
}

func fingerprintJPEG(r io.Reader, h hash.Hash, chunkSize int) (string, error) {
	scanner := newSOSScanner(h)
	if err := copyChunks(scanner, r, chunkSize); err != nil {
		return "", err
	}
	return scanner.Sum()
}
