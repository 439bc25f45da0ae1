package ui

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"

	"github.com/leapstack-labs/leaplua/pkg/core"
	"github.com/leapstack-labs/leaplua/pkg/dialect"
	"github.com/leapstack-labs/leaplua/pkg/diag"
)

func attr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

func walk(n *html.Node, visit func(*html.Node)) {
	visit(n)
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walk(c, visit)
	}
}

func renderDoc(t *testing.T, data pageData) *html.Node {
	t.Helper()
	var sb strings.Builder
	require.NoError(t, page(data).Render(t.Context(), &sb))
	doc, err := html.Parse(strings.NewReader(sb.String()))
	require.NoError(t, err)
	return doc
}

func TestPage_Document(t *testing.T) {
	src := `x = a < b && c > d;`
	doc := renderDoc(t, pageData{
		Options:  core.CompileOptions{Target: core.Lua53, LibraryImport: core.LibraryImportNone},
		Source:   src,
		Dialects: dialect.All(),
		Output:   CompileResponse{Target: core.Lua53, Lua: "x = 1\n"},
	})

	selected := map[string]string{}
	var signals, textarea string
	walk(doc, func(n *html.Node) {
		if n.Type != html.ElementNode {
			return
		}
		switch n.Data {
		case "body":
			signals, _ = attr(n, "data-signals")
		case "textarea":
			if n.FirstChild != nil {
				textarea = n.FirstChild.Data
			}
		case "option":
			if _, ok := attr(n, "selected"); !ok {
				return
			}
			bind, _ := attr(n.Parent, "data-bind")
			selected[bind], _ = attr(n, "value")
		}
	})

	assert.Equal(t, map[string]string{"target": "5.3", "libraryImport": "none"}, selected)
	assert.Equal(t, src, textarea, "source survives escaping")

	var got map[string]string
	require.NoError(t, json.Unmarshal([]byte(signals), &got))
	assert.Equal(t, map[string]string{"source": src, "target": "5.3", "libraryImport": "none"}, got)
}

func TestOutputView_Diagnostics(t *testing.T) {
	def, ok := diag.Lookup("LW02")
	require.True(t, ok)

	doc := renderDoc(t, pageData{
		Dialects: dialect.All(),
		Output: CompileResponse{
			Target: core.Lua53,
			Lua:    "x = a >> 1\n",
			Diagnostics: []diag.Diagnostic{
				{Code: def.Code, Severity: def.Severity, Message: "<shift>"},
			},
		},
	})

	var classes []string
	var message string
	walk(doc, func(n *html.Node) {
		if n.Type != html.ElementNode || n.Data != "li" {
			return
		}
		class, _ := attr(n, "class")
		classes = append(classes, class)
		if last := n.LastChild; last != nil && last.Type == html.TextNode {
			message = strings.TrimSpace(last.Data)
		}
	})

	assert.Equal(t, []string{"severity-" + def.Severity.String()}, classes)
	assert.Equal(t, "<shift>", message)
}

func TestOutputView_Error(t *testing.T) {
	var sb strings.Builder
	require.NoError(t, outputView(CompileResponse{Error: "unexpected <eof>", Lua: "ignored"}).Render(t.Context(), &sb))

	assert.Equal(t, `<section id="output"><pre class="error">unexpected &lt;eof&gt;</pre></section>`, sb.String())
}

func TestSourcesView(t *testing.T) {
	tests := []struct {
		name    string
		sources []string
		actions []string
		muted   bool
	}{
		{name: "empty", muted: true},
		{
			name:    "paths are query escaped",
			sources: []string{"src/a b.ts", "x&y.ts"},
			actions: []string{"@get('/open?path=src%2Fa+b.ts')", "@get('/open?path=x%26y.ts')"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var sb strings.Builder
			require.NoError(t, sourcesView(tt.sources).Render(t.Context(), &sb))
			doc, err := html.Parse(strings.NewReader(sb.String()))
			require.NoError(t, err)

			var actions, labels []string
			muted := false
			walk(doc, func(n *html.Node) {
				if n.Type != html.ElementNode {
					return
				}
				switch n.Data {
				case "a":
					action, _ := attr(n, "data-on:click")
					actions = append(actions, action)
					labels = append(labels, n.FirstChild.Data)
				case "p":
					class, _ := attr(n, "class")
					muted = class == "muted"
				}
			})

			assert.Equal(t, tt.actions, actions)
			if len(tt.sources) > 0 {
				assert.Equal(t, tt.sources, labels)
			} else {
				assert.Empty(t, labels)
			}
			assert.Equal(t, tt.muted, muted)
		})
	}
}
