package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/shinji-kodama/mgfmerge/internal/config"
	"github.com/shinji-kodama/mgfmerge/internal/merge"
	"github.com/shinji-kodama/mgfmerge/internal/model"
)

// mergeFlags holds the flag values of the merge action. Only flags the
// user actually set override the config file.
type mergeFlags struct {
	config        string // --config: explicit config file path
	output        string // --output: merged file name
	excludeOutput bool   // --exclude-output: skip a previous merged file
	stream        bool   // --stream: write spectra as they are read
	report        string // --report: YAML report path
}

func registerMergeFlags(cmd *cobra.Command, flags *mergeFlags) {
	cmd.Flags().StringVar(&flags.config, "config", "", "Config file (default: .mgfmerge.{yaml,yml,json} in the directory)")
	cmd.Flags().StringVarP(&flags.output, "output", "o", merge.DefaultOutput, "Name of the merged file inside the directory")
	cmd.Flags().BoolVar(&flags.excludeOutput, "exclude-output", false, "Do not read a previous merged file as input")
	cmd.Flags().BoolVar(&flags.stream, "stream", false, "Write each spectrum as it is read instead of holding all in memory")
	cmd.Flags().StringVar(&flags.report, "report", "", "Write a YAML report of per-file scan ranges to this path")
}

// runMerge resolves settings, runs the merge and prints the result.
func runMerge(cmd *cobra.Command, dir string, flags *mergeFlags) error {
	// Step 1: Resolve settings (flags > config file > defaults).
	cfg, err := resolveConfig(cmd, dir, flags)
	if err != nil {
		return err
	}
	VerboseLog("Output: %s, suffix: %s, stream: %v, exclude-output: %v",
		cfg.Output, cfg.Suffix, cfg.Stream, cfg.ExcludeOutput)

	// Step 2: Merge. Progress lines go to stdout unless a JSON summary
	// was requested.
	var progress io.Writer = cmd.OutOrStdout()
	if IsJSONOutput() {
		progress = io.Discard
	}

	m := merge.New(merge.Options{
		Output:        cfg.Output,
		Suffix:        cfg.Suffix,
		ExcludeOutput: cfg.ExcludeOutput,
		Stream:        cfg.Stream,
		Progress:      progress,
		Logf:          VerboseLog,
	})
	res, err := m.Merge(cmd.Context(), dir)
	if err != nil {
		return err
	}
	VerboseLog("Merged %d spectra from %d files into %s", res.Total, len(res.Files), res.Output)

	// Step 3: Optional report.
	if cfg.Report != "" {
		if err := merge.WriteReport(cfg.Report, res); err != nil {
			return err
		}
		VerboseLog("Wrote report to %s", cfg.Report)
	}

	if IsJSONOutput() {
		printSummaryJSON(cmd.OutOrStdout(), res)
	}
	return nil
}

// resolveConfig loads the config file named by --config, or the one found
// in dir, and overlays every flag the user set explicitly.
func resolveConfig(cmd *cobra.Command, dir string, flags *mergeFlags) (*config.Config, error) {
	cfg := config.Default()

	path := flags.config
	if path == "" {
		path = config.Find(dir)
	}
	if path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return nil, err
		}
		VerboseLog("Loaded config from %s", path)
		cfg = loaded
	}

	fs := cmd.Flags()
	if fs.Changed("output") {
		cfg.Output = flags.output
	}
	if fs.Changed("exclude-output") {
		cfg.ExcludeOutput = flags.excludeOutput
	}
	if fs.Changed("stream") {
		cfg.Stream = flags.stream
	}
	if fs.Changed("report") {
		cfg.Report = flags.report
	}

	if err := cfg.Validate(); err != nil {
		return nil, model.WrapCLIError(model.ExitGeneralError, "invalid options", err)
	}
	return cfg, nil
}

// summaryJSON is the --json output of a successful merge.
type summaryJSON struct {
	Output string              `json:"output"`
	Total  int                 `json:"total"`
	Files  []merge.FileSummary `json:"files"`
}

func printSummaryJSON(w io.Writer, res *merge.Result) {
	summary := summaryJSON{
		Output: res.Output,
		Total:  res.Total,
		// An empty slice renders as [] rather than null.
		Files: make([]merge.FileSummary, 0, len(res.Files)),
	}
	summary.Files = append(summary.Files, res.Files...)

	data, _ := json.MarshalIndent(summary, "", "  ")
	fmt.Fprintln(w, string(data))
}
