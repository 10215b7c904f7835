package processor

import (
	"encoding/hex"
	"hash"
	"io"
	"strconv"
)

const sampleSize = 1 << 20

// fingerprintSample hashes the first and last n bytes plus the size. Files no
// larger than 2n are hashed whole.
func fingerprintSample(rs io.ReadSeeker, size int64, h hash.Hash, n int64) (string, error) {
	if _, err := rs.Seek(0, io.SeekStart); err != nil {
		return "", err
	}

	if size <= 2*n {
		if _, err := io.Copy(h, rs); err != nil {
			return "", err
		}
	} else {
		if _, err := io.CopyN(h, rs, n); err != nil {
			return "", err
		}
		if _, err := rs.Seek(-n, io.SeekEnd); err != nil {
			return "", err
		}
		if _, err := io.CopyN(h, rs, n); err != nil {
			return "", err
		}
	}

	if _, err := io.WriteString(h, strconv.FormatInt(size, 10)); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
