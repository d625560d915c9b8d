package driver

import (
	"context"
	"io/fs"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"mergelint/internal/diag"
	"mergelint/internal/extract"
	"mergelint/internal/source"
)

// FileResult is the analysis outcome for one document of a directory run.
type FileResult struct {
	Path   string
	Result *Result
}

// DirResult aggregates a directory run.
type DirResult struct {
	Root    string
	FileSet *source.FileSet
	Files   []FileResult
}

// HasWarnings reports whether any document produced a warning or error.
func (d *DirResult) HasWarnings() bool {
	for _, f := range d.Files {
		if f.Result.Bag.HasWarnings() {
			return true
		}
	}
	return false
}

// HasErrors reports whether any document produced an error.
func (d *DirResult) HasErrors() bool {
	for _, f := range d.Files {
		if f.Result.Bag.HasErrors() {
			return true
		}
	}
	return false
}

// ListTemplateFiles returns the sorted list of template files under dir.
// Hidden directories are skipped; matches is typically
// project.Config.MatchesExtension.
func ListTemplateFiles(dir string, matches func(string) bool) ([]string, error) {
	var files []string

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != dir && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if matches(path) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Deterministic order.
	sort.Strings(files)
	return files, nil
}

// AnalyzeDir analyzes every matching template under dir in parallel.
// Per-file load failures become diagnostics, not run failures; the returned
// error covers walking and cancellation only.
func AnalyzeDir(ctx context.Context, dir string, matches func(string) bool, opts Options, jobs int, sink ProgressSink) (*DirResult, error) {
	opts = opts.withDefaults()

	files, err := ListTemplateFiles(dir, matches)
	if err != nil {
		return nil, err
	}

	out := &DirResult{
		Root:    dir,
		FileSet: source.NewFileSetWithBase(dir),
	}
	if len(files) == 0 {
		return out, nil
	}

	// Preload (and extract) sequentially so the parallel phase only reads
	// the file set.
	fileIDs := make(map[string]source.FileID, len(files))
	loadErrors := make(map[string]error, len(files))
	for _, path := range files {
		emit(sink, Event{File: path, Stage: StageScan, Status: StatusQueued})

		id, err := out.FileSet.Load(path)
		if err != nil {
			// Failed paths still get an empty file set entry so their
			// diagnostics resolve to the right path when rendered.
			fileIDs[path] = out.FileSet.AddVirtual(path, nil)
			loadErrors[path] = err
			continue
		}
		file := out.FileSet.Get(id)
		if !opts.SkipExtract && extract.IsRichText(file.Content) {
			plain := extract.Text(file.Content)
			id = out.FileSet.Add(file.Path, plain, file.Flags|source.FileExtracted)
		}
		fileIDs[path] = id
	}

	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	// Indexed results, one slot per goroutine, no mutex needed.
	results := make([]FileResult, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(files)))

	perFile := opts
	perFile.SkipExtract = true

	for i, path := range files {
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}

			started := time.Now()

			if loadErr, hadError := loadErrors[path]; hadError {
				bag := diag.NewBag(perFile.MaxDiagnostics)
				bag.Add(diag.Diagnostic{
					Severity: diag.SevError,
					Code:     diag.IOLoadFileError,
					Message:  "failed to load file: " + loadErr.Error(),
					Primary:  source.Span{File: fileIDs[path]},
				})
				results[i] = FileResult{
					Path: path,
					Result: &Result{
						FileSet: out.FileSet,
						FileID:  fileIDs[path],
						Bag:     bag,
					},
				}
				emit(sink, Event{File: path, Stage: StageScan, Status: StatusError, Err: loadErr, Elapsed: time.Since(started)})
				return nil
			}

			emit(sink, Event{File: path, Stage: StageScan, Status: StatusWorking})
			res := analyzeLoaded(out.FileSet, fileIDs[path], perFile)
			results[i] = FileResult{Path: path, Result: res}

			emit(sink, Event{File: path, Stage: StageCheck, Status: StatusDone, Elapsed: time.Since(started)})
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return out, err
	}

	out.Files = results
	return out, nil
}
