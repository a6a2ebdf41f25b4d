package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"opp/internal/astio"
	"opp/internal/diagfmt"
	"opp/internal/driver"
	"opp/internal/sema"
)

var checkCmd = &cobra.Command{
	Use:   "check [flags] <path>...",
	Short: "Check AST documents for semantic errors",
	Long: `Check reads parsed programs (JSON or YAML AST documents) and runs semantic
analysis over each of them. Directories are searched recursively.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runCheck,
}

func init() {
	checkCmd.Flags().String("ast-format", "auto", "AST document format (auto|json|yaml)")
}

func runCheck(cmd *cobra.Command, args []string) error {
	st, err := loadSettings(cmd, args[0])
	if err != nil {
		return err
	}
	astFormatFlag, err := cmd.Flags().GetString("ast-format")
	if err != nil {
		return fmt.Errorf("failed to get ast-format flag: %w", err)
	}
	astFormat, err := astio.ParseFormat(astFormatFlag)
	if err != nil {
		return err
	}

	files, err := expandInputs(args)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no AST documents found in %v", args)
	}

	opts := driver.Options{
		Sema:   semaOptions(st),
		Format: astFormat,
		Jobs:   st.jobs,
		Sort:   st.sortDiags,
	}
	if st.cache {
		cache, cacheErr := driver.OpenDiskCache("oppc", st.cacheDir)
		if cacheErr != nil {
			fmt.Fprintf(os.Stderr, "warning: cache disabled: %v\n", cacheErr)
		} else {
			opts.Cache = cache
		}
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	var results []*driver.FileResult
	if !st.quiet && len(files) > 1 && st.useTUI() {
		results, err = runCheckWithUI(ctx, "checking", files, opts)
	} else {
		results, err = driver.AnalyzeFiles(ctx, files, opts)
	}
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if err := renderResults(out, results, st); err != nil {
		return err
	}
	if st.timings {
		printFileTimings(os.Stderr, results)
	}
	if !st.quiet && st.format != diagfmt.FormatJSON {
		printSummary(os.Stderr, results, st.color)
	}
	for _, r := range results {
		if r.HasErrors() {
			return errDiagnostics
		}
	}
	return nil
}

func semaOptions(st settings) sema.Options {
	return sema.Options{
		MaxDiagnostics: st.maxDiagnostics,
		Validate:       st.validate,
		RequireEntry:   st.requireEntry,
	}
}

// expandInputs replaces directories with the documents found under them.
// Files are kept even when their extension is unknown.
func expandInputs(args []string) ([]string, error) {
	var files []string
	seen := make(map[string]struct{}, len(args))
	add := func(path string) {
		key := filepath.Clean(path)
		if _, dup := seen[key]; dup {
			return
		}
		seen[key] = struct{}{}
		files = append(files, path)
	}
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil || !info.IsDir() {
			// ошибку чтения покажет driver как диагностику
			add(arg)
			continue
		}
		docs, err := driver.ListDocuments(arg)
		if err != nil {
			return nil, fmt.Errorf("failed to list %s: %w", arg, err)
		}
		for _, d := range docs {
			add(d)
		}
	}
	return files, nil
}

type fileDiagnosticsJSON struct {
	File string `json:"file"`
	diagfmt.DiagnosticsOutput
}

func renderResults(out io.Writer, results []*driver.FileResult, st settings) error {
	opts := st.diagOptions()
	if st.format == diagfmt.FormatJSON {
		payload := make([]fileDiagnosticsJSON, 0, len(results))
		for _, r := range results {
			payload = append(payload, fileDiagnosticsJSON{
				File: r.Path,
				DiagnosticsOutput: diagfmt.BuildDiagnosticsOutput(r.Bag, r.Files, diagfmt.JSONOpts{
					PathMode:     opts.PathMode,
					Max:          st.maxDiagnostics,
					IncludeNotes: opts.ShowNotes,
				}),
			})
		}
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(payload)
	}
	for _, r := range results {
		if r.Bag == nil || r.Bag.Len() == 0 {
			continue
		}
		if err := diagfmt.Render(out, r.Bag, r.Files, opts); err != nil {
			return err
		}
	}
	return nil
}

func printSummary(w io.Writer, results []*driver.FileResult, useColor bool) {
	var failed, errs, cached int
	for _, r := range results {
		if r.Cached {
			cached++
		}
		if r.Bag == nil {
			continue
		}
		if n := r.Bag.ErrorCount(); n > 0 {
			failed++
			errs += n
		}
	}
	ok := color.New(color.FgGreen, color.Bold)
	bad := color.New(color.FgRed, color.Bold)
	if useColor {
		ok.EnableColor()
		bad.EnableColor()
	} else {
		ok.DisableColor()
		bad.DisableColor()
	}

	line := fmt.Sprintf("%d file(s) checked", len(results))
	if cached > 0 {
		line += fmt.Sprintf(", %d from cache", cached)
	}
	if failed == 0 {
		fmt.Fprintf(w, "%s %s\n", ok.Sprint("ok:"), line)
		return
	}
	fmt.Fprintf(w, "%s %s, %d error(s) in %d file(s)\n", bad.Sprint("failed:"), line, errs, failed)
}
