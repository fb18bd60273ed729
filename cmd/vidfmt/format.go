package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/vmunix/vidfmt/internal/mappings"
	"github.com/vmunix/vidfmt/internal/prompt"
	"github.com/vmunix/vidfmt/pkg/filename"
)

var formatCmd = &cobra.Command{
	Use:   "format [flags] [entry...]",
	Short: "Normalize filenames",
	Long: `Normalize one or more filenames.

Entries are taken from the arguments, from --file, or from stdin, and
may be separated by commas or newlines. Unknown site keys are asked for
once, saved, and the whole batch is formatted again.

Examples:
  vidfmt format "[EvilAngel] (Jane Doe) 03-15-22 XXX (1080p HEVC).mp4"
  vidfmt format "SexArt - Morning Light (01.07.2019) WEB x264.mov"
  vidfmt format anilos.01.02.20.jane.doe.1080p
  vidfmt format --file names.txt --json
  ls | vidfmt format --allow-unmapped`,
	RunE: runFormatCmd,
}

func init() {
	rootCmd.AddCommand(formatCmd)
	formatCmd.Flags().StringP("file", "f", "", "Read entries from file (one per line)")
	formatCmd.Flags().Bool("no-prompt", false, "Fail on unknown site keys instead of asking")
	formatCmd.Flags().Bool("allow-unmapped", false, "Render unknown site keys capitalized instead of asking")
	formatCmd.Flags().Int("workers", 0, "Parallel workers (overrides format.workers)")
	// Note: --json is inherited from root as persistent flag
}

// formatOutput is the --json shape.
type formatOutput struct {
	Lines    []filename.Line `json:"lines"`
	Output   string          `json:"output"`
	Unmapped []string        `json:"unmapped,omitempty"`
}

func runFormatCmd(cmd *cobra.Command, args []string) error {
	inputFile, _ := cmd.Flags().GetString("file")
	noPrompt, _ := cmd.Flags().GetBool("no-prompt")
	allowUnmapped, _ := cmd.Flags().GetBool("allow-unmapped")

	stdin := cmd.InOrStdin()
	input, fromStdin, err := readInput(stdin, args, inputFile)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	a, err := setup(ctx, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	opts := filename.Options{
		Workers:       a.cfg.Format.Workers,
		AllowUnmapped: a.cfg.Format.AllowUnmapped || allowUnmapped,
	}
	if cmd.Flags().Changed("workers") {
		opts.Workers, _ = cmd.Flags().GetInt("workers")
	}

	var p prompt.Prompter
	if !noPrompt {
		var closeTTY func()
		p, closeTTY = promptSource(stdin, cmd.ErrOrStderr(), fromStdin)
		defer closeTTY()
	}

	res, err := formatWithPrompt(ctx, a.mappings, opts, input, p, a.logger)
	if err != nil {
		return err
	}
	return printResult(cmd.OutOrStdout(), res, jsonOutput)
}

// readInput collects entries from args, a file, or stdin, in that order of preference.
// fromStdin reports whether stdin was consumed.
func readInput(stdin io.Reader, args []string, path string) (input string, fromStdin bool, err error) {
	switch {
	case path != "":
		lines, err := readEntryFile(path)
		if err != nil {
			return "", false, fmt.Errorf("reading file: %w", err)
		}
		return strings.Join(lines, "\n"), false, nil
	case len(args) > 0:
		return strings.Join(args, "\n"), false, nil
	default:
		if f, ok := stdin.(*os.File); ok && isatty.IsTerminal(f.Fd()) {
			return "", false, errors.New("usage: vidfmt format <entry>... or --file <path> or pipe entries on stdin")
		}
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", true, fmt.Errorf("reading stdin: %w", err)
		}
		return string(data), true, nil
	}
}

// readEntryFile reads entries from a file, one per line. Blank lines and # comments are skipped.
func readEntryFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	var entries []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line != "" && !strings.HasPrefix(line, "#") {
			entries = append(entries, line)
		}
	}
	return entries, scanner.Err()
}

// promptSource picks the prompter for this session. The form needs a terminal on both ends.
// When stdin carried the entries, answers are read from the controlling terminal instead;
// without one there is nothing to ask and p is nil.
func promptSource(stdin io.Reader, out io.Writer, stdinConsumed bool) (p prompt.Prompter, closeFn func()) {
	closeFn = func() {}
	in := stdin
	if stdinConsumed {
		tty, err := os.Open("/dev/tty")
		if err != nil {
			return nil, closeFn
		}
		in = tty
		closeFn = func() { _ = tty.Close() }
	}

	inFile, inOK := in.(*os.File)
	outFile, outOK := out.(*os.File)
	if inOK && outOK && isatty.IsTerminal(inFile.Fd()) && isatty.IsTerminal(outFile.Fd()) {
		return prompt.NewTUI(in, out), closeFn
	}
	return prompt.NewLine(in, out), closeFn
}

// formatWithPrompt formats input. On unknown site keys it asks p once, saves the answers,
// and formats the same input again. A nil p returns the escalation as an error.
func formatWithPrompt(ctx context.Context, svc *mappings.Service, opts filename.Options, input string, p prompt.Prompter, logger *slog.Logger) (*filename.Result, error) {
	f := filename.New(svc.Dictionary(), opts)
	res, err := f.FormatEntries(input)

	var esc *filename.EscalationError
	if !errors.As(err, &esc) {
		return res, err
	}
	if p == nil {
		return nil, fmt.Errorf("%w (add them with 'vidfmt sites add' or pass --allow-unmapped)", err)
	}

	names, err := p.SiteNames(ctx, esc)
	if err != nil {
		return nil, err
	}
	saved, err := svc.Supply(ctx, names)
	switch {
	case errors.Is(err, mappings.ErrIncompleteMapping):
		return nil, err
	case err != nil:
		logger.Warn("site names not saved, using them for this run only", "error", err)
	case !saved.Remote && svc.Status() == mappings.StatusOffline:
		logger.Warn("site names saved locally only, remote store offline")
	}

	return f.FormatEntries(esc.Input)
}

func printResult(w io.Writer, res *filename.Result, asJSON bool) error {
	if asJSON {
		out := formatOutput{Lines: res.Lines, Output: res.String(), Unmapped: res.Unmapped}
		if out.Lines == nil {
			out.Lines = []filename.Line{}
		}
		if len(res.Lines) == 0 {
			out.Output = filename.NoValidInput
		}
		return writeJSON(w, out)
	}

	if len(res.Lines) == 0 {
		_, err := fmt.Fprintln(w, filename.NoValidInput)
		return err
	}
	_, err := fmt.Fprintln(w, res.String())
	return err
}
