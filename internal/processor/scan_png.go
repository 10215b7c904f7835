package processor

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"io"
)

var pngSignature = []byte("\x89PNG\r\n\x1a\n")

// maxTextChunk bounds how much of a text chunk is buffered to read its key.
const maxTextChunk = 1 << 20

// PngAnalysis lists the ancillary chunks that make byte-identical images
// differ. The PNG fingerprint covers them, so two renders of one picture with
// different text chunks are distinct files.
type PngAnalysis struct {
	TextKeys     []string
	HasTimestamp bool
	HasExif      bool
	Chunks       int
}

var errPNGSignature = errors.New("invalid PNG signature")

func scanPNGMetadata(rs io.ReadSeeker) (PngAnalysis, error) {
	var analysis PngAnalysis
	if _, err := rs.Seek(0, io.SeekStart); err != nil {
		return analysis, err
	}
	br := bufio.NewReader(rs)

	var sig [8]byte
	if _, err := io.ReadFull(br, sig[:]); err != nil {
		return analysis, err
	}
	if !bytes.Equal(sig[:], pngSignature) {
		return analysis, errPNGSignature
	}

	var head [8]byte
	for {
		if _, err := io.ReadFull(br, head[:]); err != nil {
			if errors.Is(err, io.EOF) {
				return analysis, nil
			}
			return analysis, err
		}
		length := int64(binary.BigEndian.Uint32(head[:4]))
		name := string(head[4:])
		analysis.Chunks++

		// Body plus trailing CRC.
		rest := length + 4
		switch name {
		case "tEXt", "zTXt", "iTXt":
			if length <= maxTextChunk {
				data := make([]byte, length)
				if _, err := io.ReadFull(br, data); err != nil {
					return analysis, err
				}
				if i := bytes.IndexByte(data, 0); i > 0 {
					analysis.TextKeys = append(analysis.TextKeys, string(data[:i]))
				}
				rest = 4
			}
		case "tIME":
			analysis.HasTimestamp = true
		case "eXIf":
			analysis.HasExif = true
		}
		if _, err := io.CopyN(io.Discard, br, rest); err != nil {
			return analysis, err
		}
		if name == "IEND" {
			return analysis, nil
		}
	}
}
