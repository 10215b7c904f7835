package processor

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"hash"
	"io"
	"io/fs"
	"strconv"

	"github.com/zeebo/blake3"

	"mediadedup/pkg/imgutil"
)

// Source is an open file the fingerprinter can rewind and stat.
type Source interface {
	io.ReadSeeker
	Stat() (fs.FileInfo, error)
}

// Fingerprinter derives identity keys from file content.
type Fingerprinter struct {
	hash      HashAlgorithm
	chunkSize int
	webm      WebMIdentity
}

func NewFingerprinter(opts Options) *Fingerprinter {
	opts = opts.withDefaults()
	return &Fingerprinter{hash: opts.Hash, chunkSize: opts.ChunkSize, webm: opts.WebMIdentity}
}

// Fingerprint rewinds src and computes the key for a file of the given kind.
// GIF and unknown files have no fingerprint.
func (f *Fingerprinter) Fingerprint(src Source, kind imgutil.Kind) (string, error) {
	if !kind.Fingerprinted() {
		return "", fmt.Errorf("%s files are not fingerprinted", kind)
	}
	if _, err := src.Seek(0, io.SeekStart); err != nil {
		return "", err
	}

	h, err := newHash(f.hash)
	if err != nil {
		return "", err
	}

	switch kind {
	case imgutil.KindJPEG:
		return fingerprintJPEG(src, h, f.chunkSize)
	case imgutil.KindPNG:
		return fingerprintStream(src, h, f.chunkSize)
	default:
		return f.fingerprintWebM(src, h)
	}
}

func fingerprintStream(r io.Reader, h hash.Hash, chunkSize int) (string, error) {
	if err := copyChunks(h, r, chunkSize); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

func (f *Fingerprinter) fingerprintWebM(src Source, h hash.Hash) (string, error) {
	switch f.webm {
	case WebMByContent:
		return fingerprintStream(src, h, f.chunkSize)
	case WebMBySample:
		info, err := src.Stat()
		if err != nil {
			return "", err
		}
		return fingerprintSample(src, info.Size(), h, sampleSize)
	default:
		info, err := src.Stat()
		if err != nil {
			return "", err
		}
		return strconv.FormatInt(info.Size(), 10), nil
	}
}

func newHash(alg HashAlgorithm) (hash.Hash, error) {
	switch alg {
	case HashSHA256, "":
		return sha256.New(), nil
	case HashBLAKE3:
		return blake3.New(), nil
	default:
		return nil, fmt.Errorf("unsupported hash algorithm %q", alg)
	}
}

// copyChunks feeds r into w in reads of at most chunkSize bytes.
func copyChunks(w io.Writer, r io.Reader, chunkSize int) error {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	buf := make([]byte, chunkSize)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			if _, werr := w.Write(buf[:n]); werr != nil {
				return werr
			}
		}
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
	}
}
