package ui

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/leaplua/internal/state"
	"github.com/leapstack-labs/leaplua/internal/testutil"
	"github.com/leapstack-labs/leaplua/pkg/core"
	"github.com/leapstack-labs/leaplua/pkg/diag"
)

func newTestServer(t *testing.T, cfg Config) http.Handler {
	t.Helper()
	cfg.SessionSecret = "playground-test-secret"
	cfg.Logger = testutil.NewTestLogger(t)
	if cfg.Options.Target == 0 {
		cfg.Options.Target = core.Lua54
	}
	return NewServer(cfg).Handler()
}

func do(t *testing.T, h http.Handler, method, target, body string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestIndex(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "main.ts"), []byte("x = 1;"), 0o600))

	h := newTestServer(t, Config{Options: core.CompileOptions{Target: core.Lua52}, Root: root})
	rec := do(t, h, http.MethodGet, "/", "")

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "leaplua playground")
	assert.Contains(t, body, `<option value="5.2" selected>`)
	assert.Contains(t, body, `id="output"`)
	assert.Contains(t, body, `id="sources"`)
	assert.Contains(t, body, "main.ts")
	assert.Contains(t, body, "bit32.band", "default snippet is compiled for the default target")
}

func TestStatic(t *testing.T) {
	h := newTestServer(t, Config{})
	rec := do(t, h, http.MethodGet, "/static/playground.css", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "#output")
}

func TestAPICompile(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantStatus int
		check      func(t *testing.T, resp CompileResponse)
	}{
		{
			name:       "library call on 5.2",
			body:       `{"source": "x = a | b;", "target": "5.2"}`,
			wantStatus: http.StatusOK,
			check: func(t *testing.T, resp CompileResponse) {
				assert.Equal(t, core.Lua52, resp.Target)
				assert.Contains(t, resp.Lua, "bit32.bor")
				assert.Empty(t, resp.Diagnostics)
				assert.Empty(t, resp.Error)
			},
		},
		{
			name:       "right shift on 5.3",
			body:       `{"source": "x = a >> b;", "target": "lua53"}`,
			wantStatus: http.StatusOK,
			check: func(t *testing.T, resp CompileResponse) {
				require.Len(t, resp.Diagnostics, 1)
				assert.Equal(t, diag.CodeUnsupportedRightShift, resp.Diagnostics[0].Code)
			},
		},
		{
			name:       "server default target",
			body:       `{"source": "x = a >>> b;"}`,
			wantStatus: http.StatusOK,
			check: func(t *testing.T, resp CompileResponse) {
				assert.Equal(t, core.Lua54, resp.Target)
				assert.NotEmpty(t, resp.Lua)
			},
		},
		{
			name:       "syntax error",
			body:       `{"source": "a +"}`,
			wantStatus: http.StatusUnprocessableEntity,
			check: func(t *testing.T, resp CompileResponse) {
				assert.Contains(t, resp.Error, "expected expression")
				assert.Empty(t, resp.Lua)
			},
		},
	}

	h := newTestServer(t, Config{})
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, h, http.MethodPost, "/api/compile", tt.body)
			require.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

			var resp CompileResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			tt.check(t, resp)
		})
	}
}

func TestAPICompile_BadRequest(t *testing.T) {
	h := newTestServer(t, Config{})

	for name, body := range map[string]string{
		"malformed json":       `{"source":`,
		"unknown target":       `{"source": "x = 1;", "target": "9.9"}`,
		"unknown library mode": `{"source": "x = 1;", "libraryImport": "vendored"}`,
	} {
		t.Run(name, func(t *testing.T) {
			rec := do(t, h, http.MethodPost, "/api/compile", body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)

			var resp map[string]string
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.NotEmpty(t, resp["error"])
		})
	}
}

func TestAPIMatrix(t *testing.T) {
	h := newTestServer(t, Config{})
	rec := do(t, h, http.MethodGet, "/api/matrix", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var entries []MatrixEntry
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &entries))
	require.Len(t, entries, 6)

	byTarget := make(map[core.Target]MatrixEntry, len(entries))
	for _, e := range entries {
		byTarget[e.Target] = e
	}
	assert.Equal(t, "bit32", byTarget[core.Lua52].BitLibrary)
	assert.Equal(t, "bit", byTarget[core.LuaJIT].BitLibrary)
	assert.Equal(t, "unsupported", byTarget[core.Lua51].Capabilities["bitwise"])
}

func TestAPICodes(t *testing.T) {
	h := newTestServer(t, Config{})

	rec := do(t, h, http.MethodGet, "/api/codes", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var defs []diag.Definition
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &defs))
	assert.Len(t, defs, diag.Count())

	rec = do(t, h, http.MethodGet, "/api/codes/lw02", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var def diag.Definition
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &def))
	assert.Equal(t, "unsupported-right-shift-operator", def.Name)

	rec = do(t, h, http.MethodGet, "/api/codes/LW99", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAPIRuns(t *testing.T) {
	t.Run("without cache", func(t *testing.T) {
		h := newTestServer(t, Config{})
		rec := do(t, h, http.MethodGet, "/api/runs", "")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, "[]", rec.Body.String())
	})

	t.Run("with cache", func(t *testing.T) {
		store, err := state.OpenSQLite(t.Context(), state.MemoryPath, testutil.NewTestLogger(t))
		require.NoError(t, err)
		t.Cleanup(func() { _ = store.Close() })

		_, err = store.CreateRun(t.Context(), "run-1", "5.3", "require")
		require.NoError(t, err)
		require.NoError(t, store.CompleteRun(t.Context(), "run-1", state.RunStats{Files: 2, Cached: 1}))

		h := newTestServer(t, Config{Store: store})
		rec := do(t, h, http.MethodGet, "/api/runs", "")
		require.Equal(t, http.StatusOK, rec.Code)

		var runs []state.Run
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &runs))
		require.Len(t, runs, 1)
		assert.Equal(t, "run-1", runs[0].ID)
		assert.Equal(t, 2, runs[0].Files)
		assert.Equal(t, 1, runs[0].Cached)
	})
}

func TestAPISources(t *testing.T) {
	root := t.TempDir()
	for _, name := range []string{"b.ts", "lib/a.ts", "notes.md", ".hidden/c.ts", "node_modules/d.ts"} {
		path := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
		require.NoError(t, os.WriteFile(path, []byte("x = 1;"), 0o600))
	}

	h := newTestServer(t, Config{Root: root})
	rec := do(t, h, http.MethodGet, "/api/sources", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var sources []string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &sources))
	assert.Equal(t, []string{"b.ts", "lib/a.ts"}, sources)

	rec = do(t, newTestServer(t, Config{}), http.MethodGet, "/api/sources", "")
	assert.JSONEq(t, "[]", rec.Body.String())
}

func TestCompileSSE_RemembersOptions(t *testing.T) {
	h := newTestServer(t, Config{})

	rec := do(t, h, http.MethodPost, "/compile", `{"source": "x = a >> b;", "target": "5.3", "libraryImport": "none"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/event-stream")
	assert.Contains(t, rec.Body.String(), "LW02")
	assert.Contains(t, rec.Body.String(), "Lua 5.3")

	cookies := rec.Result().Cookies()
	require.NotEmpty(t, cookies)
	assert.Equal(t, sessionName, cookies[0].Name)

	index := do(t, h, http.MethodGet, "/", "", cookies...)
	require.Equal(t, http.StatusOK, index.Code)
	assert.Contains(t, index.Body.String(), `<option value="5.3" selected>`)
	assert.Contains(t, index.Body.String(), `<option value="none" selected>`)
}

func TestCompileSSE_BadTarget(t *testing.T) {
	h := newTestServer(t, Config{})

	rec := do(t, h, http.MethodPost, "/compile", `{"source": "x = 1;", "target": "6.0"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "unknown lua target")
	assert.Empty(t, rec.Result().Cookies())
}

func TestOpenSSE(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "main.ts"), []byte("x = a | b;"), 0o600))
	h := newTestServer(t, Config{Root: root, Options: core.CompileOptions{Target: core.Lua51}})

	rec := do(t, h, http.MethodGet, "/open?path=main.ts", "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "signals")
	assert.Contains(t, body, "x = a")
	assert.Contains(t, body, "LW01")

	tests := []struct {
		path string
		want int
	}{
		{"../main.ts", http.StatusBadRequest},
		{"/etc/passwd", http.StatusBadRequest},
		{"notes.md", http.StatusBadRequest},
		{"missing.ts", http.StatusNotFound},
	}
	for _, tt := range tests {
		rec := do(t, h, http.MethodGet, "/open?path="+tt.path, "")
		assert.Equal(t, tt.want, rec.Code, tt.path)
	}
}

func TestBroadcaster(t *testing.T) {
	b := newBroadcaster()
	ch1 := b.Subscribe()
	ch2 := b.Subscribe()
	defer b.Unsubscribe(ch2)

	b.Broadcast("a.ts")
	for _, ch := range []chan string{ch1, ch2} {
		select {
		case got := <-ch:
			assert.Equal(t, "a.ts", got)
		case <-time.After(100 * time.Millisecond):
			t.Fatal("listener did not receive broadcast")
		}
	}

	// A full listener does not block the broadcaster.
	b.Broadcast("b.ts")
	b.Broadcast("c.ts")
	assert.Equal(t, "b.ts", <-ch1)

	b.Unsubscribe(ch1)
	b.mu.RLock()
	assert.Len(t, b.listeners, 1)
	b.mu.RUnlock()
}

func TestIsSourceFile(t *testing.T) {
	assert.True(t, isSourceFile("src/main.ts"))
	assert.False(t, isSourceFile("main.lua"))
	assert.False(t, isSourceFile("main.tsx"))
}
