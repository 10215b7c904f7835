package processor

import (
	"bytes"
	"encoding/binary"
	"hash/crc32"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

// buildJPEG assembles SOI, an EXIF APP1 segment carrying date, a filler
// segment of extra bytes, then an SOS segment followed by payload and EOI.
func buildJPEG(date string, extra int, payload []byte) []byte {
	exif := append([]byte("Exif\x00\x00"), buildExifTIFF(date)...)

	var buf bytes.Buffer
	buf.Write([]byte{0xff, 0xd8})
	buf.Write([]byte{0xff, 0xe1})
	_ = binary.Write(&buf, binary.BigEndian, uint16(len(exif)+2))
	buf.Write(exif)
	if extra > 0 {
		buf.Write([]byte{0xff, 0xfe})
		_ = binary.Write(&buf, binary.BigEndian, uint16(extra+2))
		buf.Write(bytes.Repeat([]byte{'c'}, extra))
	}
	buf.Write(sosSegment(payload))
	return buf.Bytes()
}

// buildCameraJPEG encodes a real image with image/jpeg and, when date is not
// empty, splices an EXIF APP1 segment in right after SOI the way cameras do.
func buildCameraJPEG(t *testing.T, date string) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, 16, 16))
	for x := 0; x < 16; x++ {
		img.Set(x, x, color.RGBA{R: 0x20, G: uint8(x * 16), B: 0x80, A: 0xff})
	}
	var enc bytes.Buffer
	if err := jpeg.Encode(&enc, img, &jpeg.Options{Quality: 90}); err != nil {
		t.Fatalf("encode jpeg: %v", err)
	}
	data := enc.Bytes()
	if date == "" {
		return data
	}

	exif := append([]byte("Exif\x00\x00"), buildExifTIFF(date)...)
	var buf bytes.Buffer
	buf.Write(data[:2])
	buf.Write([]byte{0xff, 0xe1})
	_ = binary.Write(&buf, binary.BigEndian, uint16(len(exif)+2))
	buf.Write(exif)
	buf.Write(data[2:])
	return buf.Bytes()
}

func sosSegment(payload []byte) []byte {
	var buf bytes.Buffer
	buf.Write([]byte{0xff, 0xda, 0x00, 0x08, 0x01, 0x01, 0x00, 0x00, 0x3f, 0x00})
	buf.Write(payload)
	buf.Write([]byte{0xff, 0xd9})
	return buf.Bytes()
}

// buildExifTIFF returns a little-endian TIFF block with Model and DateTime.
// date must be 19 characters.
func buildExifTIFF(date string) []byte {
	var tiff bytes.Buffer
	tiff.Write([]byte{0x49, 0x49, 0x2a, 0x00})
	_ = binary.Write(&tiff, binary.LittleEndian, uint32(8))
	_ = binary.Write(&tiff, binary.LittleEndian, uint16(2))
	_ = binary.Write(&tiff, binary.LittleEndian, uint16(0x0110))
	_ = binary.Write(&tiff, binary.LittleEndian, uint16(2))
	_ = binary.Write(&tiff, binary.LittleEndian, uint32(8))
	_ = binary.Write(&tiff, binary.LittleEndian, uint32(38))
	_ = binary.Write(&tiff, binary.LittleEndian, uint16(0x0132))
	_ = binary.Write(&tiff, binary.LittleEndian, uint16(2))
	_ = binary.Write(&tiff, binary.LittleEndian, uint32(20))
	_ = binary.Write(&tiff, binary.LittleEndian, uint32(46))
	_ = binary.Write(&tiff, binary.LittleEndian, uint32(0))
	tiff.Write([]byte("TestCam\x00"))
	tiff.Write([]byte(date + "\x00"))
	return tiff.Bytes()
}

func buildPNG(t *testing.T, c color.RGBA, chunks ...[]byte) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, c)

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	data := buf.Bytes()
	if len(chunks) == 0 {
		return data
	}

	insertAt := len(data) - 12
	out := append([]byte{}, data[:insertAt]...)
	for _, chunk := range chunks {
		out = append(out, chunk...)
	}
	return append(out, data[insertAt:]...)
}

func buildPNGChunk(chunkType string, data []byte) []byte {
	chunkTypeBytes := []byte(chunkType)
	lenBuf := make([]byte, 4)
	binary.BigEndian.PutUint32(lenBuf, uint32(len(data)))
	crc := crc32.ChecksumIEEE(append(append([]byte{}, chunkTypeBytes...), data...))
	crcBuf := make([]byte, 4)
	binary.BigEndian.PutUint32(crcBuf, crc)

	chunk := make([]byte, 0, 12+len(data))
	chunk = append(chunk, lenBuf...)
	chunk = append(chunk, chunkTypeBytes...)
	chunk = append(chunk, data...)
	chunk = append(chunk, crcBuf...)
	return chunk
}

func writeFile(t *testing.T, root, subdir, name string, data []byte) string {
	t.Helper()

	dir := filepath.Join(root, subdir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

func openFile(t *testing.T, path string) *os.File {
	t.Helper()

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = f.Close() })
	return f
}
