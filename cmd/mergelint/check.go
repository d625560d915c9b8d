package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"mergelint/internal/diag"
	"mergelint/internal/diagfmt"
	"mergelint/internal/driver"
	"mergelint/internal/project"
	"mergelint/internal/source"
)

var checkCmd = &cobra.Command{
	Use:   "check [flags] <template|directory|->",
	Short: "Check merge directives in a template file or directory",
	Long: `Check brace balance and IF/END IF pairing in a mail-merge template,
or in every template file within a directory. Pass "-" to read from stdin.`,
	Args: cobra.ExactArgs(1),
	RunE: runCheck,
}

func init() {
	checkCmd.Flags().String("format", "pretty", "output format (pretty|json|short)")
	checkCmd.Flags().String("stage", "all", "analysis stages to run (scan|all)")
	checkCmd.Flags().Int("context", -1, "characters of context around findings (-1=from config)")
	checkCmd.Flags().Bool("gated", false, "skip directive checks when braces do not balance")
	checkCmd.Flags().Int("jobs", 0, "max parallel workers for directory processing (0=auto)")
	checkCmd.Flags().Bool("with-notes", false, "include diagnostic notes in output")
	checkCmd.Flags().Bool("suggest", false, "include fix suggestions in output")
	checkCmd.Flags().Bool("fullpath", false, "emit absolute file paths in output")
	checkCmd.Flags().Bool("cache", false, "enable persistent disk cache for analysis results")
	checkCmd.Flags().String("ui", "auto", "interactive progress for directory runs (auto|on|off)")
}

type checkSettings struct {
	format    string
	stage     driver.AnalyzeStage
	config    project.Config
	opts      driver.Options
	padding   int
	withNotes bool
	suggest   bool
	fullPath  bool
	uiMode    uiMode
	jobs      int
	timings   bool
	quiet     bool
}

func readCheckSettings(cmd *cobra.Command, target string) (*checkSettings, error) {
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return nil, fmt.Errorf("failed to get format flag: %w", err)
	}
	switch format {
	case "pretty", "json", "short":
	default:
		return nil, fmt.Errorf("unknown format: %s", format)
	}

	stageStr, err := cmd.Flags().GetString("stage")
	if err != nil {
		return nil, fmt.Errorf("failed to get stage flag: %w", err)
	}
	var stage driver.AnalyzeStage
	switch stageStr {
	case "scan":
		stage = driver.AnalyzeStageScan
	case "all":
		stage = driver.AnalyzeStageAll
	default:
		return nil, fmt.Errorf("unknown stage value: %s", stageStr)
	}

	// Settings come from the nearest mergelint.toml; explicitly set flags
	// win over the config file.
	startDir := target
	if target == "-" {
		startDir = "."
	} else if st, err := os.Stat(target); err == nil && !st.IsDir() {
		startDir = filepath.Dir(target)
	}
	cfg, _, err := project.Resolve(startDir)
	if err != nil {
		return nil, err
	}

	gated := cfg.Gated
	if cmd.Flags().Changed("gated") {
		if gated, err = cmd.Flags().GetBool("gated"); err != nil {
			return nil, fmt.Errorf("failed to get gated flag: %w", err)
		}
	}

	maxDiagnostics, err := cmd.Root().PersistentFlags().GetInt("max-diagnostics")
	if err != nil {
		return nil, fmt.Errorf("failed to get max-diagnostics flag: %w", err)
	}
	if maxDiagnostics <= 0 {
		maxDiagnostics = cfg.MaxDiagnostics
	}

	padding, err := cmd.Flags().GetInt("context")
	if err != nil {
		return nil, fmt.Errorf("failed to get context flag: %w", err)
	}
	if padding < 0 {
		padding = cfg.ContextPadding
	}

	showTimings, err := cmd.Root().PersistentFlags().GetBool("timings")
	if err != nil {
		return nil, fmt.Errorf("failed to get timings flag: %w", err)
	}
	quiet, err := cmd.Root().PersistentFlags().GetBool("quiet")
	if err != nil {
		return nil, fmt.Errorf("failed to get quiet flag: %w", err)
	}

	withNotes, err := cmd.Flags().GetBool("with-notes")
	if err != nil {
		return nil, fmt.Errorf("failed to get with-notes flag: %w", err)
	}
	suggest, err := cmd.Flags().GetBool("suggest")
	if err != nil {
		return nil, fmt.Errorf("failed to get suggest flag: %w", err)
	}
	fullPath, err := cmd.Flags().GetBool("fullpath")
	if err != nil {
		return nil, fmt.Errorf("failed to get fullpath flag: %w", err)
	}
	jobs, err := cmd.Flags().GetInt("jobs")
	if err != nil {
		return nil, fmt.Errorf("failed to get jobs flag: %w", err)
	}

	uiFlag, err := cmd.Flags().GetString("ui")
	if err != nil {
		return nil, fmt.Errorf("failed to get ui flag: %w", err)
	}
	mode, err := readUIMode(uiFlag)
	if err != nil {
		return nil, err
	}

	opts := driver.Options{
		Stage:          stage,
		Gated:          gated,
		MaxDiagnostics: maxDiagnostics,
		EnableTimings:  showTimings,
	}

	enableCache, err := cmd.Flags().GetBool("cache")
	if err != nil {
		return nil, fmt.Errorf("failed to get cache flag: %w", err)
	}
	if enableCache {
		cache, err := driver.OpenDiskCache("mergelint")
		if err != nil {
			return nil, fmt.Errorf("failed to open disk cache: %w", err)
		}
		opts.Cache = cache
	}

	return &checkSettings{
		format:    format,
		stage:     stage,
		config:    cfg,
		opts:      opts,
		padding:   padding,
		withNotes: withNotes,
		suggest:   suggest,
		fullPath:  fullPath,
		uiMode:    mode,
		jobs:      jobs,
		timings:   showTimings,
		quiet:     quiet,
	}, nil
}

func (s *checkSettings) pathMode() diagfmt.PathMode {
	if s.fullPath {
		return diagfmt.PathModeAbsolute
	}
	return diagfmt.PathModeAuto
}

func (s *checkSettings) prettyOpts(color bool) diagfmt.PrettyOpts {
	return diagfmt.PrettyOpts{
		Color:          color,
		ContextPadding: s.padding,
		PathMode:       s.pathMode(),
		ShowNotes:      s.withNotes,
		ShowFixes:      s.suggest,
	}
}

func (s *checkSettings) jsonOpts() diagfmt.JSONOpts {
	return diagfmt.JSONOpts{
		IncludePositions: true,
		PathMode:         s.pathMode(),
		IncludeNotes:     s.withNotes,
		IncludeFixes:     s.suggest,
	}
}

func runCheck(cmd *cobra.Command, args []string) error {
	target := args[0]

	settings, err := readCheckSettings(cmd, target)
	if err != nil {
		return err
	}

	var failed bool
	switch {
	case target == "-":
		failed, err = checkStdin(cmd, settings)
	default:
		st, statErr := os.Stat(target)
		if statErr != nil {
			return fmt.Errorf("failed to stat path: %w", statErr)
		}
		if st.IsDir() {
			failed, err = checkDir(cmd, settings, target)
		} else {
			failed, err = checkFile(cmd, settings, target)
		}
	}
	if err != nil {
		return err
	}
	if failed {
		// Findings are already printed; suppress cobra noise.
		cmd.SilenceUsage = true
		cmd.SilenceErrors = true
		return fmt.Errorf("")
	}
	return nil
}

func checkStdin(cmd *cobra.Command, settings *checkSettings) (bool, error) {
	content, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return false, fmt.Errorf("failed to read stdin: %w", err)
	}
	res := driver.AnalyzeBytes("<stdin>", content, settings.opts)
	return reportResult(cmd, settings, res)
}

func checkFile(cmd *cobra.Command, settings *checkSettings, path string) (bool, error) {
	res, err := driver.Analyze(path, settings.opts)
	if err != nil {
		return false, err
	}
	return reportResult(cmd, settings, res)
}

func reportResult(cmd *cobra.Command, settings *checkSettings, res *driver.Result) (bool, error) {
	color, err := useColor(cmd)
	if err != nil {
		return false, err
	}
	out := cmd.OutOrStdout()

	switch settings.format {
	case "pretty":
		diagfmt.Pretty(out, res.Bag, res.FileSet, settings.prettyOpts(color))
	case "short":
		if s := diag.FormatShort(res.Bag.Items(), res.FileSet, settings.withNotes); s != "" {
			fmt.Fprintln(out, s)
		}
	case "json":
		if err := diagfmt.JSON(out, res.Bag, res.FileSet, settings.jsonOpts()); err != nil {
			return false, fmt.Errorf("failed to format diagnostics: %w", err)
		}
	}

	if settings.timings && res.Timer != nil {
		fmt.Fprint(cmd.ErrOrStderr(), res.Timer.Summary())
	}
	if !settings.quiet && settings.format == "pretty" && res.Bag.Len() == 0 {
		fmt.Fprintln(out, "no findings")
	}
	return res.Bag.HasWarnings(), nil
}

func checkDir(cmd *cobra.Command, settings *checkSettings, dir string) (bool, error) {
	var (
		res *driver.DirResult
		err error
	)
	if shouldUseTUI(settings.uiMode) && settings.format == "pretty" {
		res, err = runAnalyzeDirWithUI(cmd, settings, dir)
	} else {
		res, err = driver.AnalyzeDir(cmd.Context(), dir, settings.config.MatchesExtension, settings.opts, settings.jobs, nil)
	}
	if err != nil {
		return false, fmt.Errorf("analysis failed: %w", err)
	}

	color, colorErr := useColor(cmd)
	if colorErr != nil {
		return false, colorErr
	}
	out := cmd.OutOrStdout()

	switch settings.format {
	case "short":
		all := make([]diag.Diagnostic, 0)
		for _, f := range res.Files {
			all = append(all, f.Result.Bag.Items()...)
		}
		if s := diag.FormatShort(all, res.FileSet, settings.withNotes); s != "" {
			fmt.Fprintln(out, s)
		}

	case "pretty":
		prettyOpts := settings.prettyOpts(color)
		printed := 0
		for _, f := range res.Files {
			if f.Result.Bag.Len() == 0 {
				continue
			}
			if printed > 0 {
				fmt.Fprintln(out)
			}
			fmt.Fprintf(out, "== %s ==\n", displayPath(settings, res, f))
			diagfmt.Pretty(out, f.Result.Bag, res.FileSet, prettyOpts)
			printed++
		}
		if !settings.quiet {
			if printed == 0 {
				fmt.Fprintf(out, "no findings in %d files\n", len(res.Files))
			} else {
				fmt.Fprintf(out, "\nfindings in %d of %d files\n", printed, len(res.Files))
			}
		}

	case "json":
		output := make(map[string]diagfmt.DiagnosticsOutput, len(res.Files))
		jsonOpts := settings.jsonOpts()
		for _, f := range res.Files {
			output[displayPath(settings, res, f)] = diagfmt.BuildDiagnosticsOutput(f.Result.Bag, res.FileSet, jsonOpts)
		}
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(output); err != nil {
			return false, fmt.Errorf("failed to encode diagnostics output: %w", err)
		}
	}

	return res.HasWarnings(), nil
}

func displayPath(settings *checkSettings, res *driver.DirResult, f driver.FileResult) string {
	if settings.fullPath {
		if abs, err := source.AbsolutePath(f.Path); err == nil {
			return abs
		}
	}
	if rel, err := source.RelativePath(f.Path, res.Root); err == nil {
		return rel
	}
	return f.Path
}
