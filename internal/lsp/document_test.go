package lsp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDocumentStore_OpenGetClose(t *testing.T) {
	store := NewDocumentStore()

	uri := "file:///test/main.ts"
	content := "x = a >>> 2;"

	store.Open(uri, content, 1)

	doc := store.Get(uri)
	require.NotNil(t, doc)
	assert.Equal(t, uri, doc.URI)
	assert.Equal(t, content, doc.Content)
	assert.Equal(t, 1, doc.Version)

	store.Close(uri)
	assert.Nil(t, store.Get(uri))
}

func TestDocumentStore_Apply(t *testing.T) {
	rng := func(sl, sc, el, ec uint32) *Range {
		return &Range{Start: Position{Line: sl, Character: sc}, End: Position{Line: el, Character: ec}}
	}

	tests := []struct {
		name    string
		initial string
		changes []TextDocumentContentChangeEvent
		want    string
	}{
		{
			name:    "full replacement",
			initial: "a = 1;",
			changes: []TextDocumentContentChangeEvent{{Text: "b = 2;"}},
			want:    "b = 2;",
		},
		{
			name:    "insert",
			initial: "x = a >> 2;",
			changes: []TextDocumentContentChangeEvent{{Range: rng(0, 8, 0, 8), Text: ">"}},
			want:    "x = a >>> 2;",
		},
		{
			name:    "replace across lines",
			initial: "a = 1;\nb = 2;\nc = 3;",
			changes: []TextDocumentContentChangeEvent{{Range: rng(0, 4, 1, 5), Text: "9"}},
			want:    "a = 9;\nc = 3;",
		},
		{
			name:    "sequential edits see earlier ones",
			initial: "a",
			changes: []TextDocumentContentChangeEvent{
				{Range: rng(0, 1, 0, 1), Text: "\nb"},
				{Range: rng(1, 1, 1, 1), Text: "c"},
			},
			want: "a\nbc",
		},
		{
			name:    "character past line end clamps",
			initial: "ab\ncd",
			changes: []TextDocumentContentChangeEvent{{Range: rng(0, 99, 0, 99), Text: "!"}},
			want:    "ab!\ncd",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := NewDocumentStore()
			uri := "file:///test/main.ts"
			store.Open(uri, tt.initial, 1)

			doc := store.Apply(uri, tt.changes, 2)
			require.NotNil(t, doc)
			assert.Equal(t, tt.want, doc.Content)
			assert.Equal(t, 2, doc.Version)
			assert.Equal(t, doc, store.Get(uri))
		})
	}
}

func TestDocumentStore_ApplyUnknown(t *testing.T) {
	store := NewDocumentStore()
	doc := store.Apply("file:///missing.ts", []TextDocumentContentChangeEvent{{Text: "x"}}, 1)
	assert.Nil(t, doc)
}

func TestDocumentStore_SnapshotUnchanged(t *testing.T) {
	store := NewDocumentStore()
	uri := "file:///test/main.ts"
	before := store.Open(uri, "a = 1;", 1)

	store.Apply(uri, []TextDocumentContentChangeEvent{{Text: "a = 2;"}}, 2)
	assert.Equal(t, "a = 1;", before.Content)
}

func TestDocumentStore_List(t *testing.T) {
	store := NewDocumentStore()

	store.Open("file:///b.ts", "b", 1)
	store.Open("file:///a.ts", "a", 1)
	store.Open("file:///c.ts", "c", 1)

	assert.Equal(t, []string{"file:///a.ts", "file:///b.ts", "file:///c.ts"}, store.List())
}

func TestDocument_PositionToOffset(t *testing.T) {
	doc := newDocument("file:///t.ts", "ab\ncde\n\nf", 1)

	tests := []struct {
		name string
		pos  Position
		want int
	}{
		{"start", Position{Line: 0, Character: 0}, 0},
		{"first line end", Position{Line: 0, Character: 2}, 2},
		{"second line", Position{Line: 1, Character: 1}, 4},
		{"empty line", Position{Line: 2, Character: 0}, 7},
		{"empty line clamps", Position{Line: 2, Character: 5}, 7},
		{"last line", Position{Line: 3, Character: 1}, 9},
		{"past last line", Position{Line: 10, Character: 0}, 9},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, doc.PositionToOffset(tt.pos))
		})
	}
}

func TestDocument_OffsetToPosition(t *testing.T) {
	doc := newDocument("file:///t.ts", "ab\ncde\n\nf", 1)

	tests := []struct {
		offset int
		want   Position
	}{
		{0, Position{Line: 0, Character: 0}},
		{2, Position{Line: 0, Character: 2}},
		{3, Position{Line: 1, Character: 0}},
		{5, Position{Line: 1, Character: 2}},
		{7, Position{Line: 2, Character: 0}},
		{9, Position{Line: 3, Character: 1}},
		{100, Position{Line: 3, Character: 1}},
		{-4, Position{Line: 0, Character: 0}},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, doc.OffsetToPosition(tt.offset), "offset %d", tt.offset)
	}
}

func TestDocument_GetLine(t *testing.T) {
	doc := newDocument("file:///t.ts", "a = 1;\nb = 2;", 1)

	assert.Equal(t, "a = 1;", doc.GetLine(0))
	assert.Equal(t, "b = 2;", doc.GetLine(1))
	assert.Empty(t, doc.GetLine(2))
	assert.Empty(t, doc.GetLine(-1))
}

func TestDocument_GetTextInRange(t *testing.T) {
	doc := newDocument("file:///t.ts", "x = a >> 2;", 1)

	got := doc.GetTextInRange(Range{
		Start: Position{Line: 0, Character: 6},
		End:   Position{Line: 0, Character: 8},
	})
	assert.Equal(t, ">>", got)
}

func TestURIConversion(t *testing.T) {
	tests := []struct {
		uri  string
		path string
	}{
		{"file:///home/user/project/main.ts", "/home/user/project/main.ts"},
		{"file:///tmp/with%20space/a.ts", "/tmp/with space/a.ts"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.path, URIToPath(tt.uri))
			assert.Equal(t, tt.uri, PathToURI(tt.path))
		})
	}

	assert.Equal(t, "untitled:Untitled-1", URIToPath("untitled:Untitled-1"))
	assert.Equal(t, "file:///a.ts", PathToURI("file:///a.ts"))
}
