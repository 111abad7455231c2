// Package cli implements the cobra-based command line of mgfmerge.
//
// The tool has a single action, so the root command does the work itself:
// root.go defines the command, its flags and error reporting, and merge.go
// holds the merge action and its output formatting.
package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/shinji-kodama/mgfmerge/internal/model"
)

// Global output flags. They are bound in NewRootCommand, which resets them
// to their defaults on every call.
var (
	// jsonOutput replaces the per-file progress lines with a single JSON
	// summary on stdout, and formats errors as JSON on stderr.
	jsonOutput bool

	// verbose enables diagnostic output on stderr.
	verbose bool
)

// Build information, injected from the main package.
var (
	// Version is the semantic version of the binary (e.g., "1.0.0").
	Version = "dev"

	// Commit is the Git commit hash the binary was built from.
	Commit = "none"

	// Date is the build timestamp.
	Date = "unknown"
)

// NewRootCommand creates the mgfmerge command with all flags registered.
func NewRootCommand() *cobra.Command {
	flags := &mergeFlags{}

	rootCmd := &cobra.Command{
		Use:   "mgfmerge [directory]",
		Short: "Merge a directory of MGF files into merged.mgf",
		Long: `mgfmerge combines every *.mgf file in a directory into a single merged.mgf
in the same directory.

Files are processed in natural sort order (run2.mgf before run10.mgf) and
every spectrum gets a new SCANS value, counting up from 1 across all files.
One line per input file is printed: the file name and its first scan number.

The directory defaults to the current directory. Settings can also come from
a .mgfmerge.yaml, .mgfmerge.yml or .mgfmerge.json file in that directory;
command-line flags take precedence.

Note: merged.mgf itself ends in .mgf, so running twice in the same
directory reads the previous result back in. Use --exclude-output to skip it.

Examples:
  mgfmerge
  mgfmerge ./spectra
  mgfmerge --exclude-output --report merge-report.yaml ./spectra
  mgfmerge --stream --json ./spectra`,

		Args: cobra.MaximumNArgs(1),

		// Usage and error printing are handled in Execute so the format can
		// follow --json.
		SilenceUsage:  true,
		SilenceErrors: true,

		Version: fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, Date),

		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) == 1 {
				dir = args[0]
			}
			return runMerge(cmd, dir, flags)
		},
	}

	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Print a JSON summary instead of progress lines")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")

	registerMergeFlags(rootCmd, flags)

	return rootCmd
}

// Execute runs the root command and exits the process with the exit code
// carried by the returned error, if any.
func Execute(rootCmd *cobra.Command) {
	if err := rootCmd.Execute(); err != nil {
		printError(os.Stderr, err)
		os.Exit(int(exitCode(err)))
	}
}

// exitCode maps err to a process exit code. Errors that are not a
// CLIError (flag parsing, argument validation) map to ExitGeneralError.
func exitCode(err error) model.ExitCode {
	if err == nil {
		return model.ExitSuccess
	}
	var cliErr *model.CLIError
	if errors.As(err, &cliErr) {
		return cliErr.Code
	}
	return model.ExitGeneralError
}

// printError writes err to w as text or JSON depending on --json.
func printError(w io.Writer, err error) {
	var cliErr *model.CLIError
	if !errors.As(err, &cliErr) {
		cliErr = model.WrapCLIError(model.ExitGeneralError, err.Error(), nil)
	}

	if jsonOutput {
		errObj := map[string]interface{}{
			"error": map[string]interface{}{
				"message": cliErr.Message,
				"kind":    cliErr.Code.String(),
			},
		}
		if cliErr.Err != nil {
			if errMap, ok := errObj["error"].(map[string]interface{}); ok {
				errMap["detail"] = cliErr.Err.Error()
			}
		}
		data, _ := json.MarshalIndent(errObj, "", "  ")
		fmt.Fprintln(w, string(data))
		return
	}

	if cliErr.Err != nil {
		fmt.Fprintf(w, "Error: %s: %v\n", cliErr.Message, cliErr.Err)
	} else {
		fmt.Fprintf(w, "Error: %s\n", cliErr.Message)
	}
}

// VerboseLog prints a message to stderr only when verbose mode is enabled.
func VerboseLog(format string, args ...interface{}) {
	if verbose {
		fmt.Fprintf(os.Stderr, "[verbose] "+format+"\n", args...)
	}
}

// IsJSONOutput returns whether the --json flag is set.
func IsJSONOutput() bool {
	return jsonOutput
}
