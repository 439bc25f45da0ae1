package starlark

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/leaplua/internal/testutil"
	"github.com/leapstack-labs/leaplua/pkg/core"
	"github.com/leapstack-labs/leaplua/pkg/dialect"
	"github.com/leapstack-labs/leaplua/pkg/lualib"
	"github.com/leapstack-labs/leaplua/pkg/transform"
)

const openresty = `
families = base("JIT")
families["unsigned-right-shift"] = "polyfill"

dialect(
    name = "openresty",
    target = "JIT",
    description = "OpenResty with the bit module",
    families = families,
    bit_library = "bit",
)
`

func TestLoadDialectSource(t *testing.T) {
	d, err := LoadDialectSource("openresty.star", []byte(openresty), testutil.NewTestLogger(t))
	require.NoError(t, err)

	assert.Equal(t, "openresty", d.Name)
	assert.Equal(t, core.LuaJIT, d.Target)
	assert.Equal(t, "OpenResty with the bit module", d.Description)
	assert.Equal(t, "bit", d.BitLibrary())
	assert.Empty(t, d.MissingCategories())

	f, ok := d.Family(dialect.CategoryUnsignedRightShift)
	require.True(t, ok)
	assert.Equal(t, dialect.FamilyPolyfill, f)

	f, ok = d.Family(dialect.CategoryBitwise)
	require.True(t, ok)
	assert.Equal(t, dialect.FamilyLibrary, f)
}

func TestLoadDialectSource_ExplicitFamilies(t *testing.T) {
	src := `
families = {}
for c in categories:
    families[c] = "native"
families["right-shift"] = "mismatch"

dialect(name = "strict54", target = "5.4", families = families, integer_division = True)
`
	d, err := LoadDialectSource("strict54.star", []byte(src), nil)
	require.NoError(t, err)

	assert.Equal(t, core.Lua54, d.Target)
	assert.True(t, d.Capabilities().NativeBitwise)
	assert.True(t, d.Capabilities().NativeIntegerDivision)
	assert.False(t, d.Capabilities().RightShiftSafe)
}

func TestLoadDialectSource_Errors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"never called", `x = 1`, "dialect() was never called"},
		{"called twice", `
dialect(name = "a", target = "5.4", families = base("5.4"))
dialect(name = "b", target = "5.4", families = base("5.4"))`, "called more than once"},
		{"missing category", `dialect(name = "a", target = "5.4", families = {"arithmetic": "native"})`, "no family for comparison"},
		{"unknown category", `
f = base("5.4")
f["modulo"] = "native"
dialect(name = "a", target = "5.4", families = f)`, `unknown category "modulo"`},
		{"unknown family", `
f = base("5.4")
f["bitwise"] = "emulated"
dialect(name = "a", target = "5.4", families = f)`, `unknown family "emulated"`},
		{"library without table", `
f = base("5.4")
f["bitwise"] = "library"
dialect(name = "a", target = "5.4", families = f)`, "need bit_library"},
		{"family without polyfill", `
f = base("5.4")
f["right-shift"] = "polyfill"
dialect(name = "a", target = "5.4", families = f)`, "cannot be lowered as polyfill"},
		{"unknown target", `dialect(name = "a", target = "6.0", families = {})`, "unknown lua target"},
		{"empty name", `dialect(name = "", target = "5.4", families = base("5.4"))`, "name must not be empty"},
		{"syntax error", `dialect(`, "dialect broken.star"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadDialectSource("broken.star", []byte(tt.src), nil)
			require.Error(t, err)

			var le *LoadError
			require.True(t, errors.As(err, &le))
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoadDialect(t *testing.T) {
	path := filepath.Join(t.TempDir(), "openresty.star")
	require.NoError(t, os.WriteFile(path, []byte(openresty), 0o600))

	d, err := LoadDialect(path, nil)
	require.NoError(t, err)
	assert.Equal(t, "openresty", d.Name)

	_, err = LoadDialect(filepath.Join(t.TempDir(), "missing.star"), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read file")
}

func TestLoadedDialectCompiles(t *testing.T) {
	d, err := LoadDialectSource("openresty.star", []byte(openresty), nil)
	require.NoError(t, err)

	c, err := transform.New(transform.Config{
		Options: core.CompileOptions{Target: d.Target},
		Dialect: d,
	})
	require.NoError(t, err)

	res, err := c.CompileSource("unit.ts", "x = a >>> 2;\ny = a | b;\n")
	require.NoError(t, err)
	assert.Empty(t, res.Diagnostics)
	assert.Contains(t, res.Chunk(), "bit.bor")
	assert.Contains(t, res.Helpers.Names(), lualib.UnsignedRightShift)
}

func TestLoadedDialectKeepsRuntimeSpellings(t *testing.T) {
	src := `dialect(name = "legacy", target = "5.0", families = base("5.0"))`
	d, err := LoadDialectSource("legacy.star", []byte(src), nil)
	require.NoError(t, err)

	c, err := transform.New(transform.Config{
		Options: core.CompileOptions{Target: d.Target},
		Dialect: d,
	})
	require.NoError(t, err)

	res, err := c.CompileSource("unit.ts", "r = 7 % 3;\n")
	require.NoError(t, err)
	assert.Empty(t, res.Diagnostics)
	assert.Equal(t, "r = math.mod(7, 3)\n", res.Chunk())
}
