package fileutil

import (
	"bytes"
	"crypto/sha256"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
)

// swapped in tests to simulate failures
var (
	renameFunc = os.Rename
	removeFunc = os.Remove
)

// CopyFileVerified streams src to dst, which must not exist yet, and checks
// the copy by size and SHA-256. dst is removed on any failure.
func CopyFileVerified(src, dst string) (int64, error) {
	in, err := os.Open(src)
	if err != nil {
		return 0, err
	}
	defer in.Close()

	srcInfo, err := in.Stat()
	if err != nil {
		return 0, fmt.Errorf("stat source: %w", err)
	}
	if !srcInfo.Mode().IsRegular() {
		return 0, fmt.Errorf("copy %s: not a regular file", src)
	}

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_EXCL|os.O_WRONLY, srcInfo.Mode().Perm())
	if err != nil {
		return 0, err
	}
	ok := false
	defer func() {
		_ = out.Close()
		if !ok {
			_ = os.Remove(dst)
		}
	}()

	srcHasher := sha256.New()
	written, err := io.Copy(out, io.TeeReader(in, srcHasher))
	if err != nil {
		return written, err
	}
	if err := out.Sync(); err != nil {
		return written, err
	}
	if err := out.Close(); err != nil {
		return written, err
	}

	if written != srcInfo.Size() {
		return written, fmt.Errorf("copy size mismatch: source %d bytes, copied %d bytes", srcInfo.Size(), written)
	}

	dstSum, err := hashFile(dst)
	if err != nil {
		return written, fmt.Errorf("verify copy: %w", err)
	}
	if !bytes.Equal(srcHasher.Sum(nil), dstSum) {
		return written, fmt.Errorf("copy hash mismatch: %s corrupted during copy", dst)
	}

	ok = true
	return written, nil
}

// MoveFile relocates src to dst by copy, verify, then delete. It never
// renames, so src and dst may sit on different filesystems. src is only
// removed once the copy is verified.
func MoveFile(src, dst string) (int64, error) {
	n, err := CopyFileVerified(src, dst)
	if err != nil {
		return 0, err
	}
	if err := removeFunc(src); err != nil {
		return n, fmt.Errorf("remove %s after copy: %w", src, err)
	}
	return n, nil
}

// WriteFileAtomic writes data to dir/name through a temp file in the same
// directory and a rename, replacing any existing file.
func WriteFileAtomic(dir, name string, data []byte) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, "."+name+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
	}()

	if _, err := tmp.Write(data); err != nil {
		return err
	}
	if err := tmp.Chmod(0o644); err != nil {
		return err
	}
	if err := tmp.Sync(); err != nil {
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	if err := renameFunc(tmpName, filepath.Join(dir, name)); err != nil {
		return err
	}

	_ = syncDir(dir)
	return nil
}

func hashFile(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return nil, err
	}
	return h.Sum(nil), nil
}

func syncDir(dir string) error {
	if runtime.GOOS == "windows" {
		return nil
	}
	f, err := os.Open(dir)
	if err != nil {
		return err
	}
	defer f.Close()
	return f.Sync()
}
