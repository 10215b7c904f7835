package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateScan(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateScan() error {
	switch c.Scan.Hash {
	case "sha256", "blake3":
	default:
		return fmt.Errorf("scan.hash: unsupported value %q (want sha256 or blake3)", c.Scan.Hash)
	}
	if c.Scan.ChunkSize < 512 {
		return errors.New("scan.chunk_size must be at least 512")
	}
	switch c.Scan.WebMIdentity {
	case "size", "sample", "content":
	default:
		return fmt.Errorf("scan.webm_identity: unsupported value %q (want size, sample or content)", c.Scan.WebMIdentity)
	}
	switch c.Scan.OnFileError {
	case "skip", "fail":
	default:
		return fmt.Errorf("scan.on_file_error: unsupported value %q (want skip or fail)", c.Scan.OnFileError)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	return nil
}
