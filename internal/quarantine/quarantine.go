// Package quarantine moves duplicates out of a scanned tree into a
// timestamped directory next to it, together with a JSON log of the run.
package quarantine

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"mediadedup/internal/fileutil"
	"mediadedup/internal/logging"
	"mediadedup/internal/processor"
)

// LogName is the name of the summary written into every quarantine directory.
const LogName = "log.json"

// Log is the structure of log.json.
type Log struct {
	Counts     processor.Counts      `json:"counts"`
	Duplicates *processor.Duplicates `json:"duplicates"`
}

// ErrLogNameClash is returned when a duplicate's subdirectory has the same
// name as the quarantine log.
var ErrLogNameClash = errors.New("subdirectory name clashes with " + LogName)

// Move is one planned relocation.
type Move struct {
	Record processor.DuplicateRecord
	Src    string
	Dst    string
}

type Result struct {
	Dir   string
	Moved int
	Bytes int64
}

// MoveError reports the record whose relocation aborted the batch.
type MoveError struct {
	Record processor.DuplicateRecord
	Moved  int
	Err    error
}

func (e *MoveError) Error() string {
	return fmt.Sprintf("quarantine %s/%s (after %d moved): %v", e.Record.Duplicate.Subdir, e.Record.Duplicate.File, e.Moved, e.Err)
}

func (e *MoveError) Unwrap() error { return e.Err }

type Mover struct {
	Now    func() time.Time
	Logger *slog.Logger
}

func NewMover(logger *slog.Logger) *Mover {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Mover{Now: time.Now, Logger: logger}
}

// Dir returns the quarantine directory a run at t would use for root.
func Dir(root string, t time.Time) (string, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return "", err
	}
	return filepath.Join(filepath.Dir(absRoot), strconv.FormatInt(t.UnixMilli(), 10)), nil
}

// Plan lists the relocations for dups in record order. Paths under dir
// mirror the subdirectory layout under root.
func Plan(root, dir string, dups *processor.Duplicates) []Move {
	var moves []Move
	for _, subdir := range dups.Subdirs() {
		for _, rec := range dups.Records(subdir) {
			moves = append(moves, Move{
				Record: rec,
				Src:    filepath.Join(root, rec.Duplicate.Subdir, rec.Duplicate.File),
				Dst:    filepath.Join(dir, rec.Duplicate.Subdir, rec.Duplicate.File),
			})
		}
	}
	return moves
}

// Relocate creates the quarantine directory, writes log.json and moves every
// duplicate into it. The first failure stops the batch; files already moved
// stay moved and the failing source is only deleted after a verified copy.
// Originals are never touched.
func (m *Mover) Relocate(root string, dups *processor.Duplicates, counts processor.Counts) (Result, error) {
	now := time.Now
	if m.Now != nil {
		now = m.Now
	}
	log := m.Logger
	if log == nil {
		log = logging.NewNop()
	}

	absRoot, err := filepath.Abs(root)
	if err != nil {
		return Result{}, err
	}
	dir, err := Dir(absRoot, now())
	if err != nil {
		return Result{}, err
	}
	res := Result{Dir: dir}

	for _, subdir := range dups.Subdirs() {
		if subdir == LogName {
			return res, fmt.Errorf("quarantine %s: %w", subdir, ErrLogNameClash)
		}
	}

	if err := os.Mkdir(dir, 0o755); err != nil {
		return res, fmt.Errorf("create quarantine: %w", err)
	}

	data, err := json.MarshalIndent(Log{Counts: counts, Duplicates: dups}, "", "  ")
	if err != nil {
		return res, err
	}
	if err := fileutil.WriteFileAtomic(dir, LogName, data); err != nil {
		return res, fmt.Errorf("write %s: %w", LogName, err)
	}
	log.Info("quarantine log written", "path", filepath.Join(dir, LogName))

	made := make(map[string]bool)
	for _, mv := range Plan(absRoot, dir, dups) {
		subdir := filepath.Dir(mv.Dst)
		if !made[subdir] {
			if err := os.MkdirAll(subdir, 0o755); err != nil {
				return res, &MoveError{Record: mv.Record, Moved: res.Moved, Err: err}
			}
			made[subdir] = true
		}

		n, err := fileutil.MoveFile(mv.Src, mv.Dst)
		if err != nil {
			return res, &MoveError{Record: mv.Record, Moved: res.Moved, Err: err}
		}
		res.Moved++
		res.Bytes += n
		log.Debug("quarantined", "src", mv.Src, "dst", mv.Dst, "bytes", n)
	}

	return res, nil
}

// ReadLog loads the log.json of a quarantine directory.
func ReadLog(dir string) (Log, error) {
	var l Log
	data, err := os.ReadFile(filepath.Join(dir, LogName))
	if err != nil {
		return l, err
	}
	if err := json.Unmarshal(data, &l); err != nil {
		return l, fmt.Errorf("parse %s: %w", LogName, err)
	}
	return l, nil
}
