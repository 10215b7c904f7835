package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"mediadedup/internal/config"
	"mediadedup/internal/processor"
)

var (
	configPath   string
	flagHash     string
	flagWebM     string
	flagOnError  string
	flagChunk    int
	flagDryRun   bool
	flagNoTUI    bool
	flagLogLevel string
	flagLogFmt   string
)

var rootCmd = &cobra.Command{
	Use:   "mediadedup [root]",
	Short: "mediadedup - quarantine duplicate images and videos",
	Long: "mediadedup scans every subdirectory of a root folder, fingerprints JPEG, PNG and WEBM files, " +
		"and moves later copies of already seen content into a timestamped quarantine folder next to the root.",
	Args:          cobra.MaximumNArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runScan,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.SetHelpCommand(&cobra.Command{Hidden: true})

	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&configPath, "config", "c", "", "path to a TOML config file (default ./"+config.ProjectFile+" if present)")
	pf.StringVar(&flagHash, "hash", "", "fingerprint hash: sha256 or blake3")
	pf.StringVar(&flagWebM, "webm-identity", "", "webm key: size (default, collision-prone), sample or content")
	pf.IntVar(&flagChunk, "chunk-size", 0, "read size in bytes for streaming fingerprints")
	pf.StringVar(&flagLogLevel, "log-level", "", "log level: debug, info, warn, error")
	pf.StringVar(&flagLogFmt, "log-format", "", "log format: console or json")

	f := rootCmd.Flags()
	f.StringVar(&flagOnError, "on-file-error", "", "per-file format errors: skip or fail")
	f.BoolVarP(&flagDryRun, "dry-run", "n", false, "report duplicates without moving anything")
	f.BoolVar(&flagNoTUI, "no-tui", false, "disable the interactive progress display")
}

// loadConfig reads the config file and applies any flags set on cmd.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, _, _, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("hash") {
		cfg.Scan.Hash = normalizeFlag(flagHash)
	}
	if flags.Changed("webm-identity") {
		cfg.Scan.WebMIdentity = normalizeFlag(flagWebM)
	}
	if flags.Changed("chunk-size") {
		cfg.Scan.ChunkSize = flagChunk
	}
	if flags.Changed("on-file-error") {
		cfg.Scan.OnFileError = normalizeFlag(flagOnError)
	}
	if flags.Changed("dry-run") {
		cfg.DryRun = flagDryRun
	}
	if flags.Changed("log-level") {
		cfg.Logging.Level = normalizeFlag(flagLogLevel)
	}
	if flags.Changed("log-format") {
		cfg.Logging.Format = normalizeFlag(flagLogFmt)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func processorOptions(cfg *config.Config) processor.Options {
	return processor.Options{
		Hash:         processor.HashAlgorithm(cfg.Scan.Hash),
		ChunkSize:    cfg.Scan.ChunkSize,
		WebMIdentity: processor.WebMIdentity(cfg.Scan.WebMIdentity),
		OnFileError:  processor.FileErrorPolicy(cfg.Scan.OnFileError),
	}
}

func normalizeFlag(v string) string {
	return strings.ToLower(strings.TrimSpace(v))
}
