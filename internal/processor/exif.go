package processor

import (
	"errors"
	"fmt"
	"io"
	"strings"

	exif "github.com/dsoprea/go-exif/v3"
)

// ExifAnalysis summarizes the EXIF block a JPEG fingerprint skips over.
type ExifAnalysis struct {
	TagCount     int
	HasThumbnail bool
	// Groups counts identifying tags by group ("gps", "camera", "time").
	Groups map[string]int
	Values []string
}

// exifGroup maps a tag to the identifying group it belongs to, or "".
func exifGroup(tag exif.ExifTag) string {
	switch {
	case strings.HasPrefix(tag.TagName, "GPS"), strings.Contains(tag.IfdPath, "GPS"):
		return "gps"
	case tag.TagName == "Make", tag.TagName == "Model", strings.Contains(strings.ToLower(tag.TagName), "serial"):
		return "camera"
	case strings.HasPrefix(tag.TagName, "DateTime"):
		return "time"
	}
	return ""
}

func analyzeExif(rs io.ReadSeeker) (ExifAnalysis, error) {
	var analysis ExifAnalysis
	if _, err := rs.Seek(0, io.SeekStart); err != nil {
		return analysis, err
	}

	raw, err := exif.SearchAndExtractExifWithReader(rs)
	if errors.Is(err, exif.ErrNoExif) {
		return analysis, nil
	}
	if err != nil {
		return analysis, fmt.Errorf("locate exif: %w", err)
	}

	tags, _, err := exif.GetFlatExifData(raw, nil)
	if err != nil {
		return analysis, fmt.Errorf("parse exif: %w", err)
	}

	analysis.TagCount = len(tags)
	analysis.Groups = make(map[string]int)
	for _, tag := range tags {
		if tag.TagName == "JPEGInterchangeFormat" {
			analysis.HasThumbnail = true
		}
		group := exifGroup(tag)
		if group == "" {
			continue
		}
		analysis.Groups[group]++
		analysis.Values = append(analysis.Values, fmt.Sprintf("%s=%s", tag.TagName, strings.TrimSpace(tag.Formatted)))
	}
	return analysis, nil
}
