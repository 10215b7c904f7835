package config

const (
	defaultHash         = "sha256"
	defaultChunkSize    = 64 * 1024
	defaultWebMIdentity = "size"
	defaultOnFileError  = "skip"
	defaultLogLevel     = "info"
	defaultLogFormat    = "console"
)

// Default returns the built-in configuration. The default root is ./data,
// next to where the tool is run.
func Default() Config {
	return Config{
		DefaultRoot: "data",
		Scan: Scan{
			Hash:         defaultHash,
			ChunkSize:    defaultChunkSize,
			WebMIdentity: defaultWebMIdentity,
			OnFileError:  defaultOnFileError,
		},
		Logging: Logging{
			Level:  defaultLogLevel,
			Format: defaultLogFormat,
		},
	}
}
