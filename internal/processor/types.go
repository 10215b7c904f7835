package processor

import (
	"encoding/json"
	"log/slog"
	"sort"

	"mediadedup/internal/logging"
	"mediadedup/pkg/imgutil"
)

// HashAlgorithm names the digest used for content fingerprints.
type HashAlgorithm string

const (
	HashSHA256 HashAlgorithm = "sha256"
	HashBLAKE3 HashAlgorithm = "blake3"
)

// WebMIdentity selects how WEBM containers are keyed.
type WebMIdentity string

const (
	// WebMBySize keys on the decimal byte length. Files of equal size are
	// treated as duplicates even when their content differs.
	WebMBySize WebMIdentity = "size"
	// WebMBySample hashes the head, tail and size of the file.
	WebMBySample WebMIdentity = "sample"
	// WebMByContent hashes the whole stream like PNG.
	WebMByContent WebMIdentity = "content"
)

// FileErrorPolicy decides what a per-file classification or parse error does to the scan.
type FileErrorPolicy string

const (
	OnFileErrorSkip FileErrorPolicy = "skip"
	OnFileErrorFail FileErrorPolicy = "fail"
)

const DefaultChunkSize = 64 * 1024

type Options struct {
	Hash         HashAlgorithm
	ChunkSize    int
	WebMIdentity WebMIdentity
	OnFileError  FileErrorPolicy
	Logger       *slog.Logger
}

func (o Options) withDefaults() Options {
	if o.Hash == "" {
		o.Hash = HashSHA256
	}
	if o.ChunkSize <= 0 {
		o.ChunkSize = DefaultChunkSize
	}
	if o.WebMIdentity == "" {
		o.WebMIdentity = WebMBySize
	}
	if o.OnFileError == "" {
		o.OnFileError = OnFileErrorSkip
	}
	if o.Logger == nil {
		o.Logger = logging.NewNop()
	}
	return o
}

// Location identifies a file relative to the scan root.
type Location struct {
	Subdir string `json:"subdir"`
	File   string `json:"file"`
}

// DuplicateRecord pairs a duplicate with the first file seen carrying the same fingerprint.
type DuplicateRecord struct {
	Original  Location `json:"original"`
	Duplicate Location `json:"duplicate"`
}

// KindCount tracks how many files of one kind were scanned and how many were duplicates.
type KindCount struct {
	Total      int `json:"total"`
	Duplicates int `json:"duplicates"`
}

// Counts holds a KindCount for every kind.
type Counts map[imgutil.Kind]KindCount

func NewCounts() Counts {
	c := make(Counts, len(imgutil.Kinds))
	for _, k := range imgutil.Kinds {
		c[k] = KindCount{}
	}
	return c
}

func (c Counts) addTotal(k imgutil.Kind) {
	kc := c[k]
	kc.Total++
	c[k] = kc
}

func (c Counts) addDuplicate(k imgutil.Kind) {
	kc := c[k]
	kc.Duplicates++
	c[k] = kc
}

// Duplicates groups duplicate records by the subdirectory of the duplicate.
// Records keep scan order and subdirectories keep first-duplicate order.
type Duplicates struct {
	order   []string
	records map[string][]DuplicateRecord
}

func NewDuplicates() *Duplicates {
	return &Duplicates{records: make(map[string][]DuplicateRecord)}
}

func (d *Duplicates) Add(rec DuplicateRecord) {
	subdir := rec.Duplicate.Subdir
	if _, ok := d.records[subdir]; !ok {
		d.order = append(d.order, subdir)
	}
	d.records[subdir] = append(d.records[subdir], rec)
}

func (d *Duplicates) Subdirs() []string {
	return append([]string(nil), d.order...)
}

func (d *Duplicates) Records(subdir string) []DuplicateRecord {
	return append([]DuplicateRecord(nil), d.records[subdir]...)
}

// Len returns the number of records across all subdirectories.
func (d *Duplicates) Len() int {
	n := 0
	for _, recs := range d.records {
		n += len(recs)
	}
	return n
}

func (d *Duplicates) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.records)
}

// UnmarshalJSON restores records from a log. JSON objects carry no key
// order, so subdirectories come back sorted by name.
func (d *Duplicates) UnmarshalJSON(data []byte) error {
	records := make(map[string][]DuplicateRecord)
	if err := json.Unmarshal(data, &records); err != nil {
		return err
	}
	order := make([]string, 0, len(records))
	for subdir, recs := range records {
		if len(recs) == 0 {
			delete(records, subdir)
			continue
		}
		order = append(order, subdir)
	}
	sort.Strings(order)
	d.order = order
	d.records = records
	return nil
}

// SkippedFile is a file left out of duplicate detection because of a per-file error.
type SkippedFile struct {
	Location Location
	Kind     imgutil.Kind
	Err      error
}

// Report is the outcome of one scan.
type Report struct {
	Root       string
	Files      int
	Counts     Counts
	Duplicates *Duplicates
	Skipped    []SkippedFile
}

type ProgressUpdate struct {
	Subdir         string
	TotalDelta     int
	ProcessedDelta int
	DuplicateDelta int
	SkippedDelta   int
}
