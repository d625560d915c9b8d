// Package driver orchestrates the analysis phases for single documents and
// directory runs: load, rich-text extraction, brace scanning and directive
// checking.
package driver

import (
	"fmt"

	"mergelint/internal/diag"
	"mergelint/internal/directive"
	"mergelint/internal/extract"
	"mergelint/internal/observ"
	"mergelint/internal/source"
	"mergelint/internal/spantree"
)

// AnalyzeStage selects how far the analysis runs.
type AnalyzeStage string

const (
	// AnalyzeStageScan stops after brace scanning.
	AnalyzeStageScan AnalyzeStage = "scan"
	// AnalyzeStageAll runs brace scanning and directive checks.
	AnalyzeStageAll AnalyzeStage = "all"
)

// Options configures an analysis run.
type Options struct {
	Stage          AnalyzeStage
	Gated          bool
	MaxDiagnostics int
	SkipExtract    bool
	EnableTimings  bool
	Cache          *DiskCache
}

func (o Options) withDefaults() Options {
	if o.Stage == "" {
		o.Stage = AnalyzeStageAll
	}
	if o.MaxDiagnostics <= 0 {
		o.MaxDiagnostics = 100
	}
	return o
}

// Result holds everything one document analysis produced.
type Result struct {
	FileSet   *source.FileSet
	FileID    source.FileID
	Tree      *spantree.Tree
	Bag       *diag.Bag
	Timer     *observ.Timer
	FromCache bool
}

// File returns the analyzed document.
func (r *Result) File() *source.File {
	return r.FileSet.Get(r.FileID)
}

// Analyze loads a document from disk and analyzes it.
func Analyze(path string, opts Options) (*Result, error) {
	fs := source.NewFileSet()
	id, err := fs.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", path, err)
	}
	return analyzeLoaded(fs, id, opts), nil
}

// AnalyzeBytes analyzes in-memory content (stdin, tests).
func AnalyzeBytes(name string, content []byte, opts Options) *Result {
	fs := source.NewFileSet()
	id := fs.AddVirtual(name, content)
	return analyzeLoaded(fs, id, opts)
}

func analyzeLoaded(fs *source.FileSet, id source.FileID, opts Options) *Result {
	opts = opts.withDefaults()

	var timer *observ.Timer
	if opts.EnableTimings {
		timer = observ.NewTimer()
	}
	begin := func(name string) int {
		if timer == nil {
			return -1
		}
		return timer.Begin(name)
	}
	end := func(idx int, note string) {
		if timer == nil || idx < 0 {
			return
		}
		timer.End(idx, note)
	}

	file := fs.Get(id)

	extractIdx := begin("extract")
	if !opts.SkipExtract && extract.IsRichText(file.Content) {
		plain := extract.Text(file.Content)
		id = fs.Add(file.Path, plain, file.Flags|source.FileExtracted)
		file = fs.Get(id)
		end(extractIdx, "rich text")
	} else {
		end(extractIdx, "pass-through")
	}

	res := &Result{
		FileSet: fs,
		FileID:  id,
		Bag:     diag.NewBag(opts.MaxDiagnostics),
		Timer:   timer,
	}

	key := cacheKey(file.Hash, opts)
	if opts.Cache != nil {
		var payload Payload
		if ok, err := opts.Cache.Get(key, &payload); err == nil && ok {
			if payload.restoreInto(res) {
				res.FromCache = true
				return res
			}
		}
	}

	reporter := diag.NewDedupReporter(diag.BagReporter{Bag: res.Bag})

	scanIdx := begin("scan")
	res.Tree = spantree.Build(file, scanAdapter{r: reporter})
	end(scanIdx, fmt.Sprintf("%d spans", res.Tree.Len()))

	if opts.Stage == AnalyzeStageAll {
		checkIdx := begin("check")
		directive.Check(res.Tree, directive.Options{Gated: opts.Gated}, reporter)
		end(checkIdx, "")
	}

	res.Bag.Sort()

	if opts.Cache != nil {
		// Cache write failures are not the caller's problem.
		_ = opts.Cache.Put(key, buildPayload(res))
	}
	return res
}

// scanAdapter turns raw brace findings into diagnostics with removal fixes.
type scanAdapter struct {
	r diag.Reporter
}

func (a scanAdapter) Report(kind spantree.WarnKind, span source.Span, msg string) {
	switch kind {
	case spantree.WarnExtraClose:
		diag.ReportWarning(a.r, diag.ScanExtraCloseBrace, span, msg).
			WithFix("remove extra '}'", diag.FixEdit{Span: span}).
			Emit()
	case spantree.WarnExtraOpen:
		diag.ReportWarning(a.r, diag.ScanExtraOpenBrace, span, msg).
			WithFix("remove extra '{'", diag.FixEdit{Span: span}).
			Emit()
	}
}
