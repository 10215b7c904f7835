package imgutil

import (
	"bytes"
	"errors"
	"fmt"
	"io"
)

// HeaderSize is the number of leading bytes Classify looks at.
const HeaderSize = 3

// ErrUnreadableHeader is returned when the leading bytes of a file cannot be read.
var ErrUnreadableHeader = errors.New("unreadable header")

// Kind identifies a supported media container.
type Kind int

const (
	KindUnknown Kind = iota
	KindJPEG
	KindPNG
	KindWebM
	KindGIF
)

// Kinds lists every kind in report order.
var Kinds = []Kind{KindUnknown, KindJPEG, KindPNG, KindWebM, KindGIF}

var kindNames = [...]string{
	KindUnknown: "unknown",
	KindJPEG:    "jpeg",
	KindPNG:     "png",
	KindWebM:    "webm",
	KindGIF:     "gif",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return kindNames[KindUnknown]
	}
	return kindNames[k]
}

// Fingerprinted reports whether files of this kind take part in duplicate detection.
func (k Kind) Fingerprinted() bool {
	switch k {
	case KindJPEG, KindPNG, KindWebM:
		return true
	default:
		return false
	}
}

// signatures are checked in order and the first match wins.
var signatures = []struct {
	magic []byte
	kind  Kind
}{
	{[]byte{0xff, 0xd8}, KindJPEG},
	{[]byte{0x89, 0x50}, KindPNG},
	{[]byte{0x1a, 0x45}, KindWebM},
	{[]byte("GIF"), KindGIF},
}

// Classify maps the first bytes of a file to a Kind. Bytes past the matched
// signature are ignored.
func Classify(header []byte) Kind {
	for _, sig := range signatures {
		if bytes.HasPrefix(header, sig.magic) {
			return sig.kind
		}
	}
	return KindUnknown
}

// SniffReader reads HeaderSize bytes from r and classifies them. The raw
// header is returned so callers can report unrecognized signatures.
func SniffReader(r io.Reader) (Kind, []byte, error) {
	header := make([]byte, HeaderSize)
	if _, err := io.ReadFull(r, header); err != nil {
		return KindUnknown, nil, fmt.Errorf("%w: %v", ErrUnreadableHeader, err)
	}

	return Classify(header), header, nil
}

// ParseKind is the inverse of Kind.String.
func ParseKind(s string) (Kind, error) {
	for _, k := range Kinds {
		if k.String() == s {
			return k, nil
		}
	}
	return KindUnknown, fmt.Errorf("unknown kind %q", s)
}

func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *Kind) UnmarshalText(text []byte) error {
	parsed, err := ParseKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}
