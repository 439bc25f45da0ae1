package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/leaplua/internal/state"
	"github.com/leapstack-labs/leaplua/pkg/core"
)

// errNoCache is returned by cache subcommands when no cache is configured.
var errNoCache = errors.New("no cache configured (set cache in leaplua.yaml or pass --cache)")

// buildCache reuses compile results of unchanged files across runs.
// Lookups and writes are best effort: a failing cache never fails a compile.
type buildCache struct {
	store  state.Store
	key    string
	logger *slog.Logger
}

// cacheKey identifies everything besides the source that shapes the output.
// Optional variants name further settings, such as a custom dialect.
func cacheKey(version string, opts core.CompileOptions, emitHelpers bool, variants ...string) string {
	key := fmt.Sprintf("%s/%s/%s/helpers=%t", version, opts.Target, opts.LibraryImport, emitHelpers)
	for _, v := range variants {
		key += "/" + v
	}
	return key
}

// cacheVariants names the settings besides the compile options that change
// the output. A custom dialect is keyed by its content so edits invalidate
// cached units.
func cacheVariants(dialectPath string, stripTypes bool) ([]string, error) {
	var variants []string
	if dialectPath != "" {
		src, err := os.ReadFile(dialectPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read dialect: %w", err)
		}
		variants = append(variants, "dialect="+state.ContentHash(src)[:16])
	}
	if stripTypes {
		variants = append(variants, "strip_types")
	}
	return variants, nil
}

func newBuildCache(store state.Store, key string, logger *slog.Logger) *buildCache {
	return &buildCache{store: store, key: key, logger: logger}
}

// cachePath makes unit paths independent of the working directory.
func cachePath(name string) string {
	if abs, err := filepath.Abs(name); err == nil {
		return abs
	}
	return name
}

// lookup returns the cached result for a unit whose source hashes to hash.
func (c *buildCache) lookup(ctx context.Context, name, hash string) (FileResult, bool) {
	u, err := c.store.GetUnit(ctx, cachePath(name), c.key)
	if err != nil {
		c.logger.Warn("cache lookup failed", "file", name, "error", err)
		return FileResult{}, false
	}
	if u == nil || u.ContentHash != hash {
		return FileResult{}, false
	}
	return FileResult{
		File:        name,
		Lua:         u.Lua,
		Helpers:     u.Helpers,
		Diagnostics: u.Diagnostics,
		Cached:      true,
	}, true
}

func (c *buildCache) put(ctx context.Context, hash string, fr *FileResult) {
	err := c.store.PutUnit(ctx, &state.Unit{
		Path:        cachePath(fr.File),
		OptionsKey:  c.key,
		ContentHash: hash,
		Lua:         fr.Lua,
		Helpers:     fr.Helpers,
		Diagnostics: fr.Diagnostics,
	})
	if err != nil {
		c.logger.Warn("cache write failed", "file", fr.File, "error", err)
	}
}

// CacheOptions holds options for the cache command.
type CacheOptions struct {
	Limit int
}

// NewCacheCommand creates the cache command.
func NewCacheCommand() *cobra.Command {
	opts := &CacheOptions{}

	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect or clear the compile cache",
		Long: `Inspect or clear the compile cache.

When a cache path is configured, compile stores the Lua produced for each
file in a SQLite database and reuses it while the file's content and the
compile options stay the same. Every compile run is recorded as well.`,
		Example: `  leaplua cache runs --cache .leaplua/cache.db
  leaplua cache clear`,
	}
	cmd.PersistentFlags().String("cache", "", "Path of the compile cache database")

	runs := &cobra.Command{
		Use:   "runs",
		Short: "List recent compile runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runCacheRuns(cmd, opts)
		},
	}
	runs.Flags().IntVarP(&opts.Limit, "limit", "n", 20, "Maximum number of runs to show")

	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove every cached compile result",
		Args:  cobra.NoArgs,
		RunE:  runCacheClear,
	}

	cmd.AddCommand(runs, clearCmd)
	return cmd
}

func openConfiguredCache(cmd *cobra.Command, cmdCtx *CommandContext) (*state.SQLiteStore, error) {
	if cmdCtx.Cfg.Cache == "" {
		return nil, errNoCache
	}
	return state.OpenSQLite(cmd.Context(), cmdCtx.Cfg.Cache, cmdCtx.Logger)
}

func runCacheRuns(cmd *cobra.Command, opts *CacheOptions) error {
	cmdCtx := NewCommandContext(cmd)
	r := cmdCtx.Renderer

	store, err := openConfiguredCache(cmd, cmdCtx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	runs, err := store.ListRuns(cmd.Context(), opts.Limit)
	if err != nil {
		return err
	}
	if runs == nil {
		runs = []*state.Run{}
	}

	if ok, err := r.Structured(runs); ok {
		return err
	}
	if len(runs) == 0 {
		r.Muted("No compile runs recorded")
		return nil
	}

	rows := make([][]string, 0, len(runs))
	for _, run := range runs {
		duration := "-"
		if run.CompletedAt != nil {
			duration = run.CompletedAt.Sub(run.StartedAt).Round(time.Millisecond).String()
		}
		rows = append(rows, []string{
			run.ID,
			run.StartedAt.Local().Format(time.DateTime),
			run.Target,
			run.LibraryImport,
			strconv.Itoa(run.Files),
			strconv.Itoa(run.Cached),
			strconv.Itoa(run.Failed),
			duration,
		})
	}

	r.Header(1, "Compile runs")
	r.Table([]string{"Run", "Started", "Target", "Library", "Files", "Cached", "Failed", "Duration"}, rows)
	return nil
}

func runCacheClear(cmd *cobra.Command, _ []string) error {
	cmdCtx := NewCommandContext(cmd)

	store, err := openConfiguredCache(cmd, cmdCtx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	n, err := store.ClearUnits(cmd.Context())
	if err != nil {
		return err
	}
	cmdCtx.Renderer.Success(fmt.Sprintf("Removed %d cached units from %s", n, store.Path()))
	return nil
}
