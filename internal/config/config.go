package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// ProjectFile is the config file picked up from the working directory.
const ProjectFile = "mediadedup.toml"

// Scan holds fingerprinting and per-file error settings.
type Scan struct {
	Hash         string `toml:"hash"`
	ChunkSize    int    `toml:"chunk_size"`
	WebMIdentity string `toml:"webm_identity"`
	OnFileError  string `toml:"on_file_error"`
}

// Logging controls the slog handler.
type Logging struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

type Config struct {
	DefaultRoot string  `toml:"default_root"`
	DryRun      bool    `toml:"dry_run"`
	Scan        Scan    `toml:"scan"`
	Logging     Logging `toml:"logging"`
}

// Load reads path (or ProjectFile when path is empty and it exists) over the
// defaults. It returns the resolved path and whether a file was read.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}
	if path != "" && !exists {
		return nil, "", false, fmt.Errorf("config file %s does not exist", resolvedPath)
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path == "" {
		path = ProjectFile
	}
	expanded, err := expandPath(path)
	if err != nil {
		return "", false, err
	}
	info, err := os.Stat(expanded)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return expanded, false, nil
		}
		return "", false, fmt.Errorf("stat config: %w", err)
	}
	if info.IsDir() {
		return "", false, fmt.Errorf("config path %s is a directory", expanded)
	}
	return expanded, true, nil
}

func (c *Config) normalize() error {
	var err error
	if c.DefaultRoot, err = expandPath(c.DefaultRoot); err != nil {
		return fmt.Errorf("default_root: %w", err)
	}
	c.Scan.Hash = strings.ToLower(strings.TrimSpace(c.Scan.Hash))
	c.Scan.WebMIdentity = strings.ToLower(strings.TrimSpace(c.Scan.WebMIdentity))
	c.Scan.OnFileError = strings.ToLower(strings.TrimSpace(c.Scan.OnFileError))
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	return nil
}

// expandPath resolves a leading ~ and makes the path absolute.
func expandPath(path string) (string, error) {
	if path == "" {
		return "", nil
	}
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		path = filepath.Join(home, strings.TrimPrefix(path, "~"))
	}
	return filepath.Abs(path)
}
