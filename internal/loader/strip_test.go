package loader

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/leaplua/pkg/core"
	"github.com/leapstack-labs/leaplua/pkg/parser"
	"github.com/leapstack-labs/leaplua/pkg/transform"
)

func TestStripTypes(t *testing.T) {
	tests := []struct {
		name    string
		src     string
		want    []string
		notWant []string
	}{
		{
			name:    "annotation",
			src:     "let x: number = a >>> 1;\n",
			want:    []string{"let x = a >>> 1;"},
			notWant: []string{"number"},
		},
		{
			name:    "interface and cast",
			src:     "interface Flags { mask: number }\nlet p = (1 as number) | 2;\n",
			want:    []string{"let p ="},
			notWant: []string{"interface", " as "},
		},
		{
			name: "plain code is kept",
			src:  "x = a >> b;\n",
			want: []string{"x = a >> b;"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := StripTypes("unit.ts", tt.src)
			require.NoError(t, err)
			for _, w := range tt.want {
				assert.Contains(t, got, w)
			}
			for _, w := range tt.notWant {
				assert.NotContains(t, got, w)
			}
		})
	}
}

func TestStripTypes_SyntaxError(t *testing.T) {
	_, err := StripTypes("unit.ts", "x = 1;\nlet y: = 2;\n")
	require.Error(t, err)

	var pe *parser.ParseError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, 2, pe.Pos.Line)
	assert.Positive(t, pe.Pos.Column)
	assert.NotEmpty(t, pe.Message)
}

func TestStripTypes_AsPreprocessor(t *testing.T) {
	c, err := transform.New(transform.Config{
		Options:    core.CompileOptions{Target: core.Lua53},
		Preprocess: StripTypes,
	})
	require.NoError(t, err)

	res, err := c.CompileSource("unit.ts", "let shift: number = value >> 2;\n")
	require.NoError(t, err)
	require.Len(t, res.Diagnostics, 1)
	assert.Equal(t, "LW02", string(res.Diagnostics[0].Code))
}
