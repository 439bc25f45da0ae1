package transform_test

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/leapstack-labs/leaplua/pkg/core"
	"github.com/leapstack-labs/leaplua/pkg/diag"
	"github.com/leapstack-labs/leaplua/pkg/transform"
)

type goldenCase struct {
	Name          string                 `yaml:"name"`
	Target        core.Target            `yaml:"target"`
	LibraryImport core.LibraryImportMode `yaml:"library_import"`
	Source        string                 `yaml:"source"`
	Want          string                 `yaml:"want"`
	Codes         []diag.Code            `yaml:"codes"`
}

func loadGoldenCases(t *testing.T) []goldenCase {
	t.Helper()
	data, err := os.ReadFile("testdata/cases.yaml")
	require.NoError(t, err)

	var cases []goldenCase
	require.NoError(t, yaml.Unmarshal(data, &cases))
	require.NotEmpty(t, cases)
	return cases
}

func TestGolden(t *testing.T) {
	for _, tc := range loadGoldenCases(t) {
		t.Run(tc.Name, func(t *testing.T) {
			c := newCompiler(t, tc.Target)
			if tc.LibraryImport != core.LibraryImportRequire {
				var err error
				c, err = transform.New(transform.Config{
					Options: core.CompileOptions{Target: tc.Target, LibraryImport: tc.LibraryImport},
				})
				require.NoError(t, err)
			}

			res, err := c.CompileSource(tc.Name, tc.Source)
			require.NoError(t, err)
			assert.Equal(t, tc.Want, res.Chunk())

			var codes []diag.Code
			for _, d := range res.Diagnostics {
				codes = append(codes, d.Code)
			}
			assert.Equal(t, tc.Codes, codes)
		})
	}
}
