package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/leaplua/pkg/core"
	"github.com/leapstack-labs/leaplua/pkg/transform"
)

const jitDialect = `dialect(
    name = "openresty",
    target = "JIT",
    families = base("JIT"),
    bit_library = "bit",
)
`

func TestCompilerConfig_Defaults(t *testing.T) {
	cfg := Default()
	cfg.Target = core.Lua52

	tc, err := cfg.CompilerConfig(nil)
	require.NoError(t, err)
	assert.Equal(t, core.Lua52, tc.Options.Target)
	assert.Nil(t, tc.Dialect)
	assert.Nil(t, tc.Preprocess)
}

func TestCompilerConfig_DialectFile(t *testing.T) {
	ResetConfig()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "openresty.star"), []byte(jitDialect), 0600))
	path := filepath.Join(dir, "leaplua.yaml")
	require.NoError(t, os.WriteFile(path, []byte("target: \"5.3\"\ndialect: openresty.star\nstrip_types: true\n"), 0600))

	cfg, err := LoadConfig(path, nil)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "openresty.star"), cfg.Dialect)
	assert.True(t, cfg.StripTypes)

	tc, err := cfg.CompilerConfig(nil)
	require.NoError(t, err)
	require.NotNil(t, tc.Dialect)
	assert.Equal(t, "openresty", tc.Dialect.Name)
	assert.Equal(t, core.LuaJIT, tc.Options.Target, "dialect target wins")
	require.NotNil(t, tc.Preprocess)

	c, err := transform.New(tc)
	require.NoError(t, err)
	res, err := c.CompileSource("main.ts", "let x: number = a | b;")
	require.NoError(t, err)
	assert.Empty(t, res.Diagnostics)
	assert.Contains(t, res.Chunk(), "bit.bor(a, b)")
}

func TestCompilerConfig_MissingDialect(t *testing.T) {
	cfg := Default()
	cfg.Dialect = filepath.Join(t.TempDir(), "absent.star")

	_, err := cfg.CompilerConfig(nil)
	assert.Error(t, err)
}
