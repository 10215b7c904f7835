package processor

import (
	"errors"
	"fmt"
	"os"

	"mediadedup/pkg/imgutil"
)

// Inspection describes how a single file would be treated by a scan.
type Inspection struct {
	Path        string
	Kind        imgutil.Kind
	Header      []byte
	Size        int64
	Fingerprint string
	// FingerprintErr is set when the kind is fingerprinted but the content is malformed.
	FingerprintErr error
	Details        []ScanDetail
}

type ScanDetail struct {
	Category string
	Values   []string
}

// Inspect classifies and fingerprints one file and lists the metadata that
// the fingerprint does or does not cover.
func Inspect(path string, opts Options) (Inspection, error) {
	opts = opts.withDefaults()
	res := Inspection{Path: path}

	file, err := os.Open(path)
	if err != nil {
		return res, err
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return res, err
	}
	res.Size = info.Size()

	kind, header, err := imgutil.SniffReader(file)
	if err != nil {
		return res, err
	}
	res.Kind = kind
	res.Header = header

	if kind.Fingerprinted() {
		fp, err := NewFingerprinter(opts).Fingerprint(file, kind)
		switch {
		case errors.Is(err, ErrMalformedFormat):
			res.FingerprintErr = err
		case err != nil:
			return res, err
		default:
			res.Fingerprint = fp
		}
	}

	details, err := metadataDetails(file, kind)
	if err != nil {
		details = []ScanDetail{{Category: "Metadata", Values: []string{"unreadable: " + err.Error()}}}
	}
	res.Details = details
	return res, nil
}

func metadataDetails(file *os.File, kind imgutil.Kind) ([]ScanDetail, error) {
	switch kind {
	case imgutil.KindJPEG:
		analysis, err := analyzeExif(file)
		if err != nil {
			return nil, err
		}
		return detailsFromExif(analysis), nil
	case imgutil.KindPNG:
		analysis, err := scanPNGMetadata(file)
		if err != nil {
			return nil, err
		}
		return detailsFromPNG(analysis), nil
	default:
		return nil, nil
	}
}

func detailsFromExif(analysis ExifAnalysis) []ScanDetail {
	if analysis.TagCount == 0 {
		return nil
	}
	details := []ScanDetail{
		{Category: "EXIF (ignored by fingerprint)", Values: []string{fmt.Sprintf("%d tags", analysis.TagCount)}},
	}
	if analysis.HasThumbnail {
		details[0].Values = append(details[0].Values, "embedded thumbnail")
	}
	for _, group := range []string{"camera", "gps", "time"} {
		if n := analysis.Groups[group]; n > 0 {
			details[0].Values = append(details[0].Values, fmt.Sprintf("%s: %d", group, n))
		}
	}
	if len(analysis.Values) > 0 {
		details = append(details, ScanDetail{Category: "Identifying tags", Values: analysis.Values})
	}
	return details
}

func detailsFromPNG(analysis PngAnalysis) []ScanDetail {
	var values []string
	for _, key := range analysis.TextKeys {
		values = append(values, "text: "+key)
	}
	if analysis.HasTimestamp {
		values = append(values, "tIME chunk")
	}
	if analysis.HasExif {
		values = append(values, "eXIf chunk")
	}
	if len(values) == 0 {
		return nil
	}
	return []ScanDetail{{Category: "Ancillary chunks (covered by fingerprint)", Values: values}}
}
