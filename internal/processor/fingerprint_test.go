package processor

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"image/color"
	"path/filepath"
	"strconv"
	"testing"

	"mediadedup/pkg/imgutil"
)

func TestJPEGFingerprintIgnoresBytesBeforeSOS(t *testing.T) {
	payload := []byte("entropy-coded-scan-data")
	a := buildJPEG("2024:01:02 03:04:05", 0, payload)
	b := buildJPEG("2019:12:31 23:59:59", 300, payload)
	if bytes.Equal(a, b) {
		t.Fatal("fixtures should differ before SOS")
	}

	fa, err := fingerprintJPEG(bytes.NewReader(a), sha256.New(), 16)
	if err != nil {
		t.Fatalf("fingerprint a: %v", err)
	}
	fb, err := fingerprintJPEG(bytes.NewReader(b), sha256.New(), 16)
	if err != nil {
		t.Fatalf("fingerprint b: %v", err)
	}
	if fa != fb {
		t.Fatalf("fingerprints differ: %s vs %s", fa, fb)
	}

	sum := sha256.Sum256(sosSegment(payload))
	if want := hex.EncodeToString(sum[:]); fa != want {
		t.Fatalf("fingerprint = %s, want digest of SOS onward %s", fa, want)
	}
}

func TestJPEGFingerprintChangesWithScanData(t *testing.T) {
	a := buildJPEG("2024:01:02 03:04:05", 0, []byte("scan-one"))
	b := buildJPEG("2024:01:02 03:04:05", 0, []byte("scan-two"))

	fa, err := fingerprintJPEG(bytes.NewReader(a), sha256.New(), 64)
	if err != nil {
		t.Fatal(err)
	}
	fb, err := fingerprintJPEG(bytes.NewReader(b), sha256.New(), 64)
	if err != nil {
		t.Fatal(err)
	}
	if fa == fb {
		t.Fatal("expected different fingerprints for different scan data")
	}
}

func TestJPEGFingerprintMarkerSplitAcrossChunks(t *testing.T) {
	data := buildJPEG("2024:01:02 03:04:05", 40, []byte("payload"))
	want, err := fingerprintJPEG(bytes.NewReader(data), sha256.New(), len(data))
	if err != nil {
		t.Fatal(err)
	}

	for _, size := range []int{1, 2, 3, 5, 7, 13, 64} {
		got, err := fingerprintJPEG(bytes.NewReader(data), sha256.New(), size)
		if err != nil {
			t.Fatalf("chunk %d: %v", size, err)
		}
		if got != want {
			t.Fatalf("chunk %d: fingerprint %s, want %s", size, got, want)
		}
	}
}

func TestJPEGFingerprintWithoutSOS(t *testing.T) {
	data := []byte{0xff, 0xd8, 0xff, 0xe0, 0x00, 0x04, 0x00, 0x00, 0xff, 0xd9}
	_, err := fingerprintJPEG(bytes.NewReader(data), sha256.New(), 4)
	if !errors.Is(err, ErrMalformedFormat) {
		t.Fatalf("expected ErrMalformedFormat, got %v", err)
	}
}

func TestSOSScannerHoldsOnlyUnsearchedBytes(t *testing.T) {
	s := newSOSScanner(sha256.New())
	chunk := bytes.Repeat([]byte{0x11, 0xff}, 512)
	for i := 0; i < 100; i++ {
		if _, err := s.Write(chunk); err != nil {
			t.Fatal(err)
		}
		if len(s.pending) > 1 {
			t.Fatalf("pending grew to %d bytes", len(s.pending))
		}
	}

	if _, err := s.Write([]byte{0xda, 0x01}); err != nil {
		t.Fatal(err)
	}
	if !s.found || s.pending != nil {
		t.Fatalf("expected marker found and buffer dropped, found=%v pending=%d", s.found, len(s.pending))
	}
}

func TestPNGFingerprintIsWholeContent(t *testing.T) {
	data := buildPNG(t, color.RGBA{R: 0xff, A: 0xff})

	base, err := fingerprintStream(bytes.NewReader(data), sha256.New(), 32)
	if err != nil {
		t.Fatal(err)
	}
	again, err := fingerprintStream(bytes.NewReader(append([]byte{}, data...)), sha256.New(), 7)
	if err != nil {
		t.Fatal(err)
	}
	if base != again {
		t.Fatalf("identical bytes gave %s and %s", base, again)
	}

	for i := range data {
		mutated := append([]byte{}, data...)
		mutated[i] ^= 0x01
		fp, err := fingerprintStream(bytes.NewReader(mutated), sha256.New(), 32)
		if err != nil {
			t.Fatal(err)
		}
		if fp == base {
			t.Fatalf("flipping byte %d did not change fingerprint", i)
		}
	}
}

func TestFingerprintHashAlgorithms(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "a", "img.png", buildPNG(t, color.RGBA{G: 0xff, A: 0xff}))

	sha, err := NewFingerprinter(Options{Hash: HashSHA256}).Fingerprint(openFile(t, path), imgutil.KindPNG)
	if err != nil {
		t.Fatal(err)
	}
	b3, err := NewFingerprinter(Options{Hash: HashBLAKE3}).Fingerprint(openFile(t, path), imgutil.KindPNG)
	if err != nil {
		t.Fatal(err)
	}
	if len(sha) != 64 || len(b3) != 64 {
		t.Fatalf("unexpected digest widths: %d, %d", len(sha), len(b3))
	}
	if sha == b3 {
		t.Fatal("sha256 and blake3 digests should differ")
	}

	if _, err := NewFingerprinter(Options{Hash: "md4"}).Fingerprint(openFile(t, path), imgutil.KindPNG); err == nil {
		t.Fatal("expected error for unsupported hash")
	}
}

func TestFingerprintRewindsSource(t *testing.T) {
	dir := t.TempDir()
	data := buildPNG(t, color.RGBA{B: 0xff, A: 0xff})
	path := writeFile(t, dir, "a", "img.png", data)

	f := openFile(t, path)
	if _, _, err := imgutil.SniffReader(f); err != nil {
		t.Fatal(err)
	}
	got, err := NewFingerprinter(Options{}).Fingerprint(f, imgutil.KindPNG)
	if err != nil {
		t.Fatal(err)
	}
	sum := sha256.Sum256(data)
	if want := hex.EncodeToString(sum[:]); got != want {
		t.Fatalf("fingerprint = %s, want %s", got, want)
	}
}

// Equal-size WEBM files are duplicates under the default policy even when
// their content differs. Size is a known-weak identity key.
func TestWebMDefaultKeysOnSizeOnly(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "v", "a.webm", append([]byte{0x1a, 0x45, 0xdf, 0xa3}, bytes.Repeat([]byte{1}, 96)...))
	b := writeFile(t, dir, "v", "b.webm", append([]byte{0x1a, 0x45, 0xdf, 0xa3}, bytes.Repeat([]byte{2}, 96)...))

	fp := NewFingerprinter(Options{})
	fa, err := fp.Fingerprint(openFile(t, a), imgutil.KindWebM)
	if err != nil {
		t.Fatal(err)
	}
	fb, err := fp.Fingerprint(openFile(t, b), imgutil.KindWebM)
	if err != nil {
		t.Fatal(err)
	}
	if fa != strconv.Itoa(100) || fb != fa {
		t.Fatalf("expected both keys to be \"100\", got %q and %q", fa, fb)
	}
}

func TestWebMContentAndSampleIdentity(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "v", "a.webm", append([]byte{0x1a, 0x45, 0xdf, 0xa3}, bytes.Repeat([]byte{1}, 96)...))
	b := writeFile(t, dir, "v", "b.webm", append([]byte{0x1a, 0x45, 0xdf, 0xa3}, bytes.Repeat([]byte{2}, 96)...))
	c := writeFile(t, dir, "w", "c.webm", append([]byte{0x1a, 0x45, 0xdf, 0xa3}, bytes.Repeat([]byte{1}, 96)...))

	for _, mode := range []WebMIdentity{WebMByContent, WebMBySample} {
		fp := NewFingerprinter(Options{WebMIdentity: mode})
		fa, err := fp.Fingerprint(openFile(t, a), imgutil.KindWebM)
		if err != nil {
			t.Fatal(err)
		}
		fb, err := fp.Fingerprint(openFile(t, b), imgutil.KindWebM)
		if err != nil {
			t.Fatal(err)
		}
		fc, err := fp.Fingerprint(openFile(t, c), imgutil.KindWebM)
		if err != nil {
			t.Fatal(err)
		}
		if fa == fb {
			t.Fatalf("%s: different content gave equal keys", mode)
		}
		if fa != fc {
			t.Fatalf("%s: identical content gave %s and %s", mode, fa, fc)
		}
	}
}

func TestFingerprintSampleLargeInput(t *testing.T) {
	const n = 8
	head := bytes.Repeat([]byte{'h'}, n)
	tail := bytes.Repeat([]byte{'t'}, n)
	a := append(append(append([]byte{}, head...), bytes.Repeat([]byte{'x'}, 40)...), tail...)
	b := append(append(append([]byte{}, head...), bytes.Repeat([]byte{'y'}, 40)...), tail...)

	fa, err := fingerprintSample(bytes.NewReader(a), int64(len(a)), sha256.New(), n)
	if err != nil {
		t.Fatal(err)
	}
	fb, err := fingerprintSample(bytes.NewReader(b), int64(len(b)), sha256.New(), n)
	if err != nil {
		t.Fatal(err)
	}
	if fa != fb {
		t.Fatal("sample hash should only cover head, tail and size")
	}
}

func TestFingerprintRejectsUnfingerprintedKinds(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "g", "a.gif", []byte("GIF89a"))
	for _, kind := range []imgutil.Kind{imgutil.KindGIF, imgutil.KindUnknown} {
		if _, err := NewFingerprinter(Options{}).Fingerprint(openFile(t, filepath.Clean(path)), kind); err == nil {
			t.Fatalf("expected error for %s", kind)
		}
	}
}
