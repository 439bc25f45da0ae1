package commands

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/leapstack-labs/leaplua/internal/cli/output"
	"github.com/leapstack-labs/leaplua/internal/state"
	"github.com/leapstack-labs/leaplua/pkg/core"
	"github.com/leapstack-labs/leaplua/pkg/diag"
	"github.com/leapstack-labs/leaplua/pkg/format"
	"github.com/leapstack-labs/leaplua/pkg/transform"
)

// SourceExt is the extension of source files picked up from directories.
const SourceExt = core.SourceExt

// stdinName names the unit read from standard input.
const stdinName = "<stdin>"

// CompileOptions holds options for the compile command.
type CompileOptions struct {
	Watch bool
}

// NewCompileCommand creates the compile command.
func NewCompileCommand() *cobra.Command {
	opts := &CompileOptions{}

	cmd := &cobra.Command{
		Use:   "compile [files or directories...]",
		Short: "Compile source files to Lua",
		Long: `Compile source files to Lua for the configured target.

Each file is an independent unit: it gets its own diagnostics, temporaries
and runtime helpers. Files are compiled concurrently. Directories are
searched recursively for ` + SourceExt + ` files. Without arguments the source
is read from standard input.

Operators the target cannot represent are reported as diagnostics
(LW01, LW02) and the command exits with an error.`,
		Example: `  # Compile a file for Lua 5.1 and print the result
  leaplua compile --target 5.1 src/main.ts

  # Compile a directory into build/
  leaplua compile --out-dir build src/

  # Recompile on change
  leaplua compile --watch --out-dir build src/

  # Skip files unchanged since the last run
  leaplua compile --cache .leaplua/cache.db --out-dir build src/

  # Machine-readable result
  echo 'x >>>= 1' | leaplua compile -t jit -o json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompile(cmd, args, opts)
		},
	}

	cmd.Flags().String("out-dir", "", "Write <name>.lua files into this directory instead of stdout")
	cmd.Flags().IntP("jobs", "j", 0, "Number of files compiled concurrently (default: number of CPUs)")
	cmd.Flags().Bool("emit-helpers", true, "Emit runtime helper definitions at the top of each chunk")
	cmd.Flags().BoolVarP(&opts.Watch, "watch", "w", false, "Recompile files when they change")
	cmd.Flags().String("cache", "", "Reuse results of unchanged files from this SQLite database")

	return cmd
}

// CompileOutput is the structured output of the compile command.
type CompileOutput struct {
	RunID      string       `json:"run_id" yaml:"run_id"`
	Target     core.Target  `json:"target" yaml:"target"`
	Files       []FileResult `json:"files" yaml:"files"`
	ErrorCount  int          `json:"error_count" yaml:"error_count"`
	CachedCount int          `json:"cached_count" yaml:"cached_count"`
}

// count fills ErrorCount and CachedCount from Files.
func (o *CompileOutput) count() {
	o.ErrorCount, o.CachedCount = 0, 0
	for i := range o.Files {
		if o.Files[i].Failed() {
			o.ErrorCount++
		}
		if o.Files[i].Cached {
			o.CachedCount++
		}
	}
}

// FileResult is the outcome of compiling one file.
type FileResult struct {
	File        string            `json:"file" yaml:"file"`
	OutputPath  string            `json:"output_path,omitempty" yaml:"output_path,omitempty"`
	Lua         string            `json:"lua,omitempty" yaml:"lua,omitempty"`
	Helpers     []string          `json:"helpers" yaml:"helpers"`
	Diagnostics []diag.Diagnostic `json:"diagnostics" yaml:"diagnostics"`
	Error       string            `json:"error,omitempty" yaml:"error,omitempty"`
	Cached      bool              `json:"cached,omitempty" yaml:"cached,omitempty"`
}

// Failed reports whether the file has an error or an error diagnostic.
func (f *FileResult) Failed() bool {
	if f.Error != "" {
		return true
	}
	for _, d := range f.Diagnostics {
		if d.Severity == diag.SeverityError {
			return true
		}
	}
	return false
}

// unit is one source to compile.
type unit struct {
	name string
	src  []byte // set for stdin; files are read by the worker
}

func runCompile(cmd *cobra.Command, args []string, opts *CompileOptions) error {
	cmdCtx := NewCommandContext(cmd)
	cfg := cmdCtx.Cfg
	r := cmdCtx.Renderer

	runID := uuid.New().String()
	logger := cmdCtx.Logger.With("run_id", runID)
	cmdCtx.Logger = logger

	compiler, err := cmdCtx.Compiler()
	if err != nil {
		return err
	}

	var units []unit
	if len(args) == 0 {
		if opts.Watch {
			return fmt.Errorf("--watch needs files or directories to watch")
		}
		src, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return fmt.Errorf("failed to read stdin: %w", err)
		}
		units = []unit{{name: stdinName, src: src}}
	} else {
		files, err := collectSources(args)
		if err != nil {
			return err
		}
		if len(files) == 0 {
			return fmt.Errorf("no %s files found", SourceExt)
		}
		for _, f := range files {
			units = append(units, unit{name: f})
		}
	}

	jobs := cfg.Jobs
	if jobs <= 0 {
		jobs = runtime.NumCPU()
	}

	var cache *buildCache
	if cfg.Cache != "" {
		store, err := state.OpenSQLite(cmd.Context(), cfg.Cache, logger)
		if err != nil {
			return fmt.Errorf("failed to open cache: %w", err)
		}
		defer func() { _ = store.Close() }()

		variants, err := cacheVariants(cfg.Dialect, cfg.StripTypes)
		if err != nil {
			return err
		}
		key := cacheKey(cmd.Root().Version, compiler.Options(), cfg.EmitHelpers, variants...)
		cache = newBuildCache(store, key, logger)
		if _, err := store.CreateRun(cmd.Context(), runID, compiler.Options().Target.String(), cfg.LibraryImport.String()); err != nil {
			logger.Warn("failed to record run", "error", err)
		}
	}

	logger.Info("compile started", "dialect", compiler.Dialect().Name, "files", len(units), "jobs", jobs)
	start := time.Now()

	results, err := compileUnits(cmd.Context(), compiler, units, jobs, cfg.EmitHelpers, cache)
	if err != nil {
		return err
	}
	if err := writeOutputs(results, cfg.OutDir); err != nil {
		return err
	}

	out := &CompileOutput{RunID: runID, Target: cfg.Target, Files: results}
	out.count()
	logger.Info("compile finished",
		"files", len(results),
		"failed", out.ErrorCount,
		"cached", out.CachedCount,
		"elapsed", time.Since(start).Round(time.Millisecond).String(),
	)

	if cache != nil {
		stats := state.RunStats{Files: len(results), Failed: out.ErrorCount, Cached: out.CachedCount}
		if err := cache.store.CompleteRun(cmd.Context(), runID, stats); err != nil {
			logger.Warn("failed to record run", "error", err)
		}
	}

	if err := renderCompile(r, out, cfg.OutDir != ""); err != nil {
		return err
	}

	if opts.Watch {
		return watchSources(cmd.Context(), cmdCtx, compiler, args, cache)
	}
	if out.ErrorCount > 0 {
		return ErrDiagnostics
	}
	return nil
}

// collectSources expands directories into the source files they contain.
func collectSources(args []string) ([]string, error) {
	var files []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, fmt.Errorf("failed to stat %s: %w", arg, err)
		}
		if !info.IsDir() {
			files = append(files, arg)
			continue
		}
		err = filepath.WalkDir(arg, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() && filepath.Ext(path) == SourceExt {
				files = append(files, path)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("failed to walk %s: %w", arg, err)
		}
	}
	slices.Sort(files)
	return slices.Compact(files), nil
}

// compileUnits compiles every unit with at most jobs in flight. Results keep
// the order of units. Per-file failures are recorded on the result.
// A nil cache compiles everything.
func compileUnits(ctx context.Context, c *transform.Compiler, units []unit, jobs int, emitHelpers bool, cache *buildCache) ([]FileResult, error) {
	results := make([]FileResult, len(units))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(jobs)
	for i, u := range units {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = compileUnit(gctx, c, u, emitHelpers, cache)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func compileUnit(ctx context.Context, c *transform.Compiler, u unit, emitHelpers bool, cache *buildCache) FileResult {
	fr := FileResult{File: u.name}

	src := u.src
	if src == nil {
		data, err := os.ReadFile(u.name)
		if err != nil {
			fr.Error = err.Error()
			return fr
		}
		src = data
	}

	// Standard input has no stable identity to cache under.
	var hash string
	if cache != nil && u.src == nil {
		hash = state.ContentHash(src)
		if cached, ok := cache.lookup(ctx, u.name, hash); ok {
			return cached
		}
		defer func() {
			if fr.Error == "" {
				cache.put(ctx, hash, &fr)
			}
		}()
	}

	res, err := c.CompileSource(u.name, string(src))
	if err != nil {
		fr.Error = err.Error()
		return fr
	}

	fr.Helpers = res.Helpers.Names()
	fr.Diagnostics = res.Diagnostics
	if emitHelpers {
		fr.Lua = res.Chunk()
	} else {
		fr.Lua = format.Chunk(res.Body)
	}
	return fr
}

// outputPath maps a source file to its .lua file under outDir.
func outputPath(outDir, file string) string {
	rel := file
	if filepath.IsAbs(rel) || strings.HasPrefix(filepath.Clean(rel), "..") {
		rel = filepath.Base(rel)
	}
	rel = strings.TrimSuffix(rel, filepath.Ext(rel)) + ".lua"
	return filepath.Join(outDir, rel)
}

func writeOutputs(results []FileResult, outDir string) error {
	if outDir == "" {
		return nil
	}
	for i := range results {
		fr := &results[i]
		if fr.Error != "" || fr.File == stdinName {
			continue
		}
		fr.OutputPath = outputPath(outDir, fr.File)
		if err := os.MkdirAll(filepath.Dir(fr.OutputPath), 0750); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
		if err := os.WriteFile(fr.OutputPath, []byte(fr.Lua), 0600); err != nil {
			return fmt.Errorf("failed to write %s: %w", fr.OutputPath, err)
		}
	}
	return nil
}

func renderCompile(r *output.Renderer, out *CompileOutput, wroteFiles bool) error {
	if ok, err := r.Structured(out); ok {
		return err
	}

	for i := range out.Files {
		fr := &out.Files[i]
		for _, d := range fr.Diagnostics {
			r.Diagnostic(fr.File, d)
		}
		if fr.Error != "" {
			r.Error(fr.Error)
			continue
		}
		if wroteFiles {
			if fr.OutputPath != "" {
				line := fmt.Sprintf("%s -> %s", fr.File, fr.OutputPath)
				if fr.Cached {
					line += " (cached)"
				}
				r.Muted(line)
			}
			continue
		}
		if len(out.Files) > 1 {
			r.Header(2, fr.File)
		}
		r.Code("lua", fr.Lua)
	}

	if wroteFiles {
		ok := len(out.Files) - out.ErrorCount
		r.Success(fmt.Sprintf("Compiled %d of %d files for %s", ok, len(out.Files), out.Target.DisplayName()))
	}
	return nil
}

// watchSources recompiles a source file whenever it changes, until ctx is done.
func watchSources(ctx context.Context, cmdCtx *CommandContext, c *transform.Compiler, args []string, cache *buildCache) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer func() { _ = watcher.Close() }()

	for _, arg := range args {
		dir := arg
		if info, err := os.Stat(arg); err == nil && !info.IsDir() {
			dir = filepath.Dir(arg)
		}
		if err := watchDirRecursive(watcher, dir); err != nil {
			return fmt.Errorf("failed to watch %s: %w", dir, err)
		}
	}

	logger := cmdCtx.Logger
	r := cmdCtx.Renderer
	cfg := cmdCtx.Cfg
	r.Muted("Watching for changes (Ctrl+C to stop)")

	// Debounce per file; editors often write twice.
	pending := make(map[string]*time.Timer)
	changed := make(chan string)

	for {
		select {
		case <-ctx.Done():
			for _, t := range pending {
				t.Stop()
			}
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 || filepath.Ext(event.Name) != SourceExt {
				continue
			}
			name := event.Name
			if t, ok := pending[name]; ok {
				t.Stop()
			}
			pending[name] = time.AfterFunc(100*time.Millisecond, func() {
				select {
				case changed <- name:
				case <-ctx.Done():
				}
			})

		case name := <-changed:
			delete(pending, name)
			logger.Debug("file changed, recompiling", "file", name)
			results := []FileResult{compileUnit(ctx, c, unit{name: name}, cfg.EmitHelpers, cache)}
			if err := writeOutputs(results, cfg.OutDir); err != nil {
				r.Error(err.Error())
				continue
			}
			out := &CompileOutput{RunID: uuid.New().String(), Target: cfg.Target, Files: results}
			out.count()
			if err := renderCompile(r, out, cfg.OutDir != ""); err != nil {
				logger.Error("render failed", "error", err)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher error", "error", err)
		}
	}
}

// watchDirRecursive adds a directory and all subdirectories to the watcher.
func watchDirRecursive(watcher *fsnotify.Watcher, dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return watcher.Add(path)
		}
		return nil
	})
}
