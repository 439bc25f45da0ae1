package ui

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/sessions"
	"github.com/starfederation/datastar-go/datastar"

	"github.com/leapstack-labs/leaplua/internal/state"
	"github.com/leapstack-labs/leaplua/internal/ui/resources"
	"github.com/leapstack-labs/leaplua/pkg/core"
	"github.com/leapstack-labs/leaplua/pkg/diag"
	"github.com/leapstack-labs/leaplua/pkg/dialect"
	"github.com/leapstack-labs/leaplua/pkg/transform"
)

const (
	sessionName = "leaplua"
	snippetName = "snippet.ts"
	runsLimit   = 50
)

const defaultSnippet = `let mask = flags & 0xff;
let high = value >> 8;
let wrapped = value >>> 0;
total += mask | high;
`

// CompileRequest is the body of POST /api/compile and the signals of POST /compile.
type CompileRequest struct {
	Source        string `json:"source"`
	Target        string `json:"target"`
	LibraryImport string `json:"libraryImport"`
}

// CompileResponse is the result of compiling one snippet.
type CompileResponse struct {
	Target      core.Target       `json:"target"`
	Lua         string            `json:"lua"`
	Helpers     []string          `json:"helpers"`
	Diagnostics []diag.Diagnostic `json:"diagnostics"`
	Error       string            `json:"error,omitempty"`
}

// MatrixEntry is one dialect of the capability matrix.
type MatrixEntry struct {
	Target       core.Target       `json:"target"`
	Dialect      string            `json:"dialect"`
	BitLibrary   string            `json:"bitLibrary,omitempty"`
	Capabilities map[string]string `json:"capabilities"`
}

// HandlersConfig holds the dependencies of the playground handlers.
type HandlersConfig struct {
	Defaults core.CompileOptions
	Store    state.Store
	Sessions sessions.Store
	Events   *broadcaster
	Root     string
	Logger   *slog.Logger
}

// Handlers provides the playground's HTTP handlers.
type Handlers struct {
	defaults core.CompileOptions
	store    state.Store
	sessions sessions.Store
	events   *broadcaster
	root     string
	logger   *slog.Logger
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(cfg HandlersConfig) *Handlers {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	events := cfg.Events
	if events == nil {
		events = newBroadcaster()
	}
	return &Handlers{
		defaults: cfg.Defaults,
		store:    cfg.Store,
		sessions: cfg.Sessions,
		events:   events,
		root:     cfg.Root,
		logger:   logger,
	}
}

// Routes registers the playground routes on r.
func (h *Handlers) Routes(r chi.Router) {
	r.Handle("/static/*", resources.Handler())

	r.Get("/", h.Index)
	r.Get("/updates", h.Updates)
	r.Post("/compile", h.CompileSSE)
	r.Get("/open", h.OpenSSE)

	r.Route("/api", func(r chi.Router) {
		r.Post("/compile", h.APICompile)
		r.Get("/matrix", h.APIMatrix)
		r.Get("/codes", h.APICodes)
		r.Get("/codes/{code}", h.APICode)
		r.Get("/runs", h.APIRuns)
		r.Get("/sources", h.APISources)
	})
}

// Index renders the playground page with the visitor's last options.
func (h *Handlers) Index(w http.ResponseWriter, r *http.Request) {
	opts := h.sessionOptions(r)
	sources, err := h.sources()
	if err != nil {
		h.logger.Warn("failed to list sources", "root", h.root, "error", err)
	}

	data := pageData{
		Options:  opts,
		Source:   defaultSnippet,
		Dialects: dialect.All(),
		Sources:  sources,
		Output:   compile(defaultSnippet, opts),
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := page(data).Render(r.Context(), w); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// Updates is the long-lived SSE stream that refreshes the source list
// whenever a watched file changes.
func (h *Handlers) Updates(w http.ResponseWriter, r *http.Request) {
	sse := datastar.NewSSE(w, r)

	updates := h.events.Subscribe()
	defer h.events.Unsubscribe(updates)

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case path := <-updates:
			h.logger.Debug("pushing source list", "changed", path)
			sources, err := h.sources()
			if err != nil {
				_ = sse.ConsoleError(err)
				continue
			}
			if err := sse.PatchElementTempl(sourcesView(sources)); err != nil {
				_ = sse.ConsoleError(err)
			}
		}
	}
}

// CompileSSE compiles the editor contents and patches the output panel.
func (h *Handlers) CompileSSE(w http.ResponseWriter, r *http.Request) {
	// Read signals BEFORE creating SSE (SSE consumes the request body)
	var req CompileRequest
	if err := datastar.ReadSignals(r, &req); err != nil {
		sse := datastar.NewSSE(w, r)
		_ = sse.PatchElementTempl(outputView(CompileResponse{Error: "Failed to read signals: " + err.Error()}))
		return
	}

	opts, err := requestOptions(req, h.sessionOptions(r))
	if err != nil {
		sse := datastar.NewSSE(w, r)
		_ = sse.PatchElementTempl(outputView(CompileResponse{Error: err.Error()}))
		return
	}

	// The cookie must be set before the SSE stream flushes the headers.
	h.saveSession(w, r, opts)

	sse := datastar.NewSSE(w, r)
	if err := sse.PatchElementTempl(outputView(compile(req.Source, opts))); err != nil {
		_ = sse.ConsoleError(err)
	}
}

// OpenSSE loads a project source file into the editor.
func (h *Handlers) OpenSSE(w http.ResponseWriter, r *http.Request) {
	rel := r.URL.Query().Get("path")
	if h.root == "" || !filepath.IsLocal(filepath.FromSlash(rel)) || !isSourceFile(rel) {
		http.Error(w, "invalid source path", http.StatusBadRequest)
		return
	}

	data, err := os.ReadFile(filepath.Join(h.root, filepath.FromSlash(rel)))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			http.NotFound(w, r)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	sse := datastar.NewSSE(w, r)
	if err := sse.MarshalAndPatchSignals(map[string]any{"source": string(data)}); err != nil {
		_ = sse.ConsoleError(err)
		return
	}
	opts := h.sessionOptions(r)
	if err := sse.PatchElementTempl(outputView(compile(string(data), opts))); err != nil {
		_ = sse.ConsoleError(err)
	}
}

// APICompile compiles a snippet and returns the result as JSON.
func (h *Handlers) APICompile(w http.ResponseWriter, r *http.Request) {
	var req CompileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("decode request: %w", err))
		return
	}

	opts, err := requestOptions(req, h.defaults)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	resp := compile(req.Source, opts)
	status := http.StatusOK
	if resp.Error != "" {
		status = http.StatusUnprocessableEntity
	}
	writeJSON(w, status, resp)
}

// APIMatrix returns the operator capability matrix.
func (h *Handlers) APIMatrix(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, buildMatrix(dialect.All()))
}

// APICodes lists every diagnostic code.
func (h *Handlers) APICodes(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, diag.All())
}

// APICode describes one diagnostic code.
func (h *Handlers) APICode(w http.ResponseWriter, r *http.Request) {
	code := diag.Code(strings.ToUpper(chi.URLParam(r, "code")))
	def, ok := diag.Lookup(code)
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Errorf("unknown diagnostic code %q", code))
		return
	}
	writeJSON(w, http.StatusOK, def)
}

// APIRuns lists the most recent compile runs recorded in the cache.
func (h *Handlers) APIRuns(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		writeJSON(w, http.StatusOK, []*state.Run{})
		return
	}
	runs, err := h.store.ListRuns(r.Context(), runsLimit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	if runs == nil {
		runs = []*state.Run{}
	}
	writeJSON(w, http.StatusOK, runs)
}

// APISources lists the project's source files.
func (h *Handlers) APISources(w http.ResponseWriter, _ *http.Request) {
	sources, err := h.sources()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, sources)
}

func (h *Handlers) sources() ([]string, error) {
	if h.root == "" {
		return []string{}, nil
	}
	files, err := listSources(h.root)
	if err != nil {
		return []string{}, err
	}
	if files == nil {
		files = []string{}
	}
	return files, nil
}

// sessionOptions returns the options stored in the visitor's session,
// falling back to the server defaults for anything missing or invalid.
func (h *Handlers) sessionOptions(r *http.Request) core.CompileOptions {
	opts := h.defaults
	if h.sessions == nil {
		return opts
	}
	sess, err := h.sessions.Get(r, sessionName)
	if err != nil {
		return opts
	}
	if v, ok := sess.Values["target"].(string); ok {
		if t, err := core.ParseTarget(v); err == nil {
			opts.Target = t
		}
	}
	if v, ok := sess.Values["library_import"].(string); ok {
		if m, err := core.ParseLibraryImportMode(v); err == nil {
			opts.LibraryImport = m
		}
	}
	return opts
}

func (h *Handlers) saveSession(w http.ResponseWriter, r *http.Request, opts core.CompileOptions) {
	if h.sessions == nil {
		return
	}
	// A cookie that fails to decode yields a fresh session.
	sess, _ := h.sessions.Get(r, sessionName)
	sess.Values["target"] = opts.Target.String()
	sess.Values["library_import"] = opts.LibraryImport.String()
	if err := sess.Save(r, w); err != nil {
		h.logger.Warn("failed to save session", "error", err)
	}
}

// requestOptions overlays the request's target and library mode on base.
func requestOptions(req CompileRequest, base core.CompileOptions) (core.CompileOptions, error) {
	opts := base
	if strings.TrimSpace(req.Target) != "" {
		t, err := core.ParseTarget(req.Target)
		if err != nil {
			return opts, err
		}
		opts.Target = t
	}
	if strings.TrimSpace(req.LibraryImport) != "" {
		m, err := core.ParseLibraryImportMode(req.LibraryImport)
		if err != nil {
			return opts, err
		}
		opts.LibraryImport = m
	}
	return opts, nil
}

// compile compiles src for opts. Parse failures are reported in Error.
func compile(src string, opts core.CompileOptions) CompileResponse {
	resp := CompileResponse{
		Target:      opts.Target,
		Helpers:     []string{},
		Diagnostics: []diag.Diagnostic{},
	}

	res, err := transform.CompileSource(snippetName, src, opts)
	if err != nil {
		resp.Error = err.Error()
		return resp
	}

	resp.Lua = res.Chunk()
	if res.Helpers != nil && res.Helpers.Len() > 0 {
		resp.Helpers = res.Helpers.Names()
	}
	if len(res.Diagnostics) > 0 {
		resp.Diagnostics = res.Diagnostics
	}
	return resp
}

func buildMatrix(dialects []*dialect.Dialect) []MatrixEntry {
	entries := make([]MatrixEntry, 0, len(dialects))
	for _, d := range dialects {
		e := MatrixEntry{
			Target:       d.Target,
			Dialect:      d.Name,
			BitLibrary:   d.BitLibrary(),
			Capabilities: make(map[string]string, len(dialect.AllCategories)),
		}
		for _, c := range dialect.AllCategories {
			f, ok := d.Family(c)
			if !ok {
				e.Capabilities[c.String()] = "missing"
				continue
			}
			e.Capabilities[c.String()] = f.String()
		}
		entries = append(entries, e)
	}
	return entries
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
