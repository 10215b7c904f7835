package cmd

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"mediadedup/internal/processor"
	"mediadedup/internal/tui"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <file>...",
	Short: "Show how files would be classified and fingerprinted",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		opts := processorOptions(cfg)

		out := cmd.OutOrStdout()
		for i, path := range args {
			if i > 0 {
				fmt.Fprintln(out)
			}
			res, err := processor.Inspect(path, opts)
			if err != nil {
				return fmt.Errorf("inspect %s: %w", path, err)
			}
			printInspection(out, res)
		}
		return nil
	},
}

func printInspection(w io.Writer, res processor.Inspection) {
	fmt.Fprintf(w, "%s\n", fileStyle.Render(res.Path))
	fmt.Fprintf(w, "  %s %s\n", categoryStyle.Render("format:"), tui.KindBadge(res.Kind))
	field(w, "header", fmt.Sprintf("% x", res.Header))
	field(w, "size", humanize.Bytes(uint64(res.Size)))

	switch {
	case res.FingerprintErr != nil:
		fmt.Fprintf(w, "  %s %s\n", categoryStyle.Render("fingerprint:"), warnStyle.Render(res.FingerprintErr.Error()))
	case res.Fingerprint != "":
		field(w, "fingerprint", res.Fingerprint)
	default:
		fmt.Fprintf(w, "  %s %s\n", categoryStyle.Render("fingerprint:"), dimStyle.Render("none (not deduplicated)"))
	}

	for _, detail := range res.Details {
		if len(detail.Values) == 0 {
			continue
		}
		fmt.Fprintf(w, "  %s\n", categoryStyle.Render(detail.Category+":"))
		for _, value := range detail.Values {
			fmt.Fprintf(w, "    %s %s\n", dimStyle.Render("-"), valueStyle.Render(value))
		}
	}
}

func field(w io.Writer, name, value string) {
	fmt.Fprintf(w, "  %s %s\n", categoryStyle.Render(name+":"), valueStyle.Render(value))
}

var (
	fileStyle     = lipgloss.NewStyle().Bold(true).Foreground(tui.ColorHeading)
	categoryStyle = lipgloss.NewStyle().Foreground(tui.ColorLabel)
	valueStyle    = lipgloss.NewStyle().Foreground(tui.ColorText)
	dimStyle      = lipgloss.NewStyle().Foreground(tui.ColorMuted)
	warnStyle     = lipgloss.NewStyle().Foreground(tui.ColorProblem)
	dupStyle      = lipgloss.NewStyle().Foreground(tui.ColorDuplicate)
	origStyle     = lipgloss.NewStyle().Foreground(tui.ColorOriginal)
)

func init() {
	rootCmd.AddCommand(inspectCmd)
}
