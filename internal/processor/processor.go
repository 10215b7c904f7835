package processor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"mediadedup/pkg/imgutil"
)

// Run scans every file one level below root, in name order, and resolves
// duplicates. Subdirectories and files are handled strictly one at a time.
func Run(ctx context.Context, root string, opts Options, updates chan<- ProgressUpdate) (Report, error) {
	opts = opts.withDefaults()
	log := opts.Logger

	absRoot, err := filepath.Abs(root)
	if err != nil {
		return Report{}, err
	}
	info, err := os.Stat(absRoot)
	if err != nil {
		return Report{}, err
	}
	if !info.IsDir() {
		return Report{}, fmt.Errorf("%s is not a directory", absRoot)
	}

	s := &scan{
		root:     absRoot,
		opts:     opts,
		log:      log,
		fp:       NewFingerprinter(opts),
		resolver: NewResolver(),
		updates:  updates,
	}

	if opts.WebMIdentity != WebMBySize {
		log.Info("webm identity overridden", "webm_identity", opts.WebMIdentity)
	}

	subdirs, err := listSubdirs(absRoot, log)
	if err != nil {
		return s.report(), err
	}

	for _, subdir := range subdirs {
		if err := s.scanSubdir(ctx, subdir); err != nil {
			return s.report(), err
		}
	}

	return s.report(), nil
}

type scan struct {
	root     string
	opts     Options
	log      *slog.Logger
	fp       *Fingerprinter
	resolver *Resolver
	updates  chan<- ProgressUpdate
	files    int
	skipped  []SkippedFile
}

func (s *scan) report() Report {
	return Report{
		Root:       s.root,
		Files:      s.files,
		Counts:     s.resolver.Counts(),
		Duplicates: s.resolver.Duplicates(),
		Skipped:    s.skipped,
	}
}

// send delivers u unless ctx is done first.
func (s *scan) send(ctx context.Context, u ProgressUpdate) {
	if s.updates == nil {
		return
	}
	select {
	case s.updates <- u:
	case <-ctx.Done():
	}
}

func listSubdirs(root string, log *slog.Logger) ([]string, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, err
	}
	var subdirs []string
	for _, e := range entries {
		if !e.IsDir() {
			log.Debug("skipping entry outside a subdirectory", "name", e.Name())
			continue
		}
		subdirs = append(subdirs, e.Name())
	}
	return subdirs, nil
}

func (s *scan) scanSubdir(ctx context.Context, subdir string) error {
	dir := filepath.Join(s.root, subdir)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}

	var files []string
	for _, e := range entries {
		if !e.Type().IsRegular() {
			s.log.Debug("skipping non-regular entry", "subdir", subdir, "name", e.Name())
			continue
		}
		files = append(files, e.Name())
	}

	s.log.Info("scanning subdirectory", "subdir", subdir, "files", len(files))
	s.send(ctx, ProgressUpdate{Subdir: subdir, TotalDelta: len(files)})

	for _, name := range files {
		if err := ctx.Err(); err != nil {
			return err
		}

		loc := Location{Subdir: subdir, File: name}
		dup, err := s.scanFile(ctx, filepath.Join(dir, name), loc)
		if err != nil {
			return err
		}
		s.files++

		u := ProgressUpdate{ProcessedDelta: 1}
		if dup {
			u.DuplicateDelta = 1
		}
		s.send(ctx, u)
	}
	return nil
}

// scanFile sniffs, fingerprints and resolves one file. Per-file format
// errors go through the skip policy; anything else aborts the scan.
func (s *scan) scanFile(ctx context.Context, path string, loc Location) (bool, error) {
	file, err := os.Open(path)
	if err != nil {
		return false, err
	}
	defer file.Close()

	kind, header, err := imgutil.SniffReader(file)
	if err != nil {
		return false, s.fileError(ctx, loc, imgutil.KindUnknown, err)
	}

	s.resolver.Observe(kind)

	if kind == imgutil.KindUnknown {
		s.log.Warn("unrecognized format", "subdir", loc.Subdir, "file", loc.File, "header", fmt.Sprintf("% x", header))
		return false, nil
	}
	if !kind.Fingerprinted() {
		return false, nil
	}

	fingerprint, err := s.fp.Fingerprint(file, kind)
	if err != nil {
		if errors.Is(err, ErrMalformedFormat) {
			return false, s.fileError(ctx, loc, kind, err)
		}
		return false, fmt.Errorf("fingerprint %s/%s: %w", loc.Subdir, loc.File, err)
	}

	rec, dup := s.resolver.Resolve(kind, fingerprint, loc)
	if dup {
		s.log.Info("duplicate found",
			"kind", kind,
			"duplicate", filepath.Join(rec.Duplicate.Subdir, rec.Duplicate.File),
			"original", filepath.Join(rec.Original.Subdir, rec.Original.File),
		)
	}
	return dup, nil
}

func (s *scan) fileError(ctx context.Context, loc Location, kind imgutil.Kind, err error) error {
	wrapped := fmt.Errorf("%s/%s: %w", loc.Subdir, loc.File, err)
	if s.opts.OnFileError == OnFileErrorFail {
		return wrapped
	}
	s.log.Warn("skipping file", "subdir", loc.Subdir, "file", loc.File, "kind", kind, "error", err)
	s.skipped = append(s.skipped, SkippedFile{Location: loc, Kind: kind, Err: wrapped})
	s.send(ctx, ProgressUpdate{SkippedDelta: 1})
	return nil
}
