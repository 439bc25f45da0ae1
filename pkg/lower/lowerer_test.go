package lower

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/leaplua/internal/testutil"
	"github.com/leapstack-labs/leaplua/pkg/core"
	"github.com/leapstack-labs/leaplua/pkg/diag"
	"github.com/leapstack-labs/leaplua/pkg/dialect"
	luadialect "github.com/leapstack-labs/leaplua/pkg/dialects/lua"
	"github.com/leapstack-labs/leaplua/pkg/lua"
	"github.com/leapstack-labs/leaplua/pkg/token"
)

func newLowerer(t *testing.T, d *dialect.Dialect, opts Options) *Lowerer {
	t.Helper()
	l, err := New(Config{Dialect: d, Options: opts, Logger: testutil.NewTestLogger(t)})
	require.NoError(t, err)
	return l
}

func at(offset int) token.Span {
	return token.Span{
		Start: token.Position{Line: 1, Column: offset + 1, Offset: offset},
		End:   token.Position{Line: 1, Column: offset + 2, Offset: offset + 1},
	}
}

func TestNew_RequiresDialect(t *testing.T) {
	_, err := New(Config{})
	assert.ErrorIs(t, err, dialect.ErrDialectRequired)
}

func TestLowerBinary_Native(t *testing.T) {
	l := newLowerer(t, luadialect.Lua53, Options{})
	got, err := l.LowerBinary(token.PIPE, lua.Ident("a"), lua.Ident("b"), at(0))
	require.NoError(t, err)
	assert.Equal(t, lua.Binary("|", lua.Ident("a"), lua.Ident("b")), got)
	assert.Equal(t, 0, l.Reporter().Len())
	assert.Equal(t, 0, l.Helpers().Len())
}

func TestLowerBinary_Library(t *testing.T) {
	l := newLowerer(t, luadialect.LuaJIT, Options{})
	got, err := l.LowerBinary(token.USHR, lua.Ident("a"), lua.Num("2"), at(0))
	require.NoError(t, err)
	assert.Equal(t, lua.Call(lua.Ident("bit.rshift"), lua.Ident("a"), lua.Num("2")), got)
	assert.True(t, l.Helpers().Has("bit"))
}

func TestLowerBinary_Polyfill(t *testing.T) {
	l := newLowerer(t, luadialect.Lua50, Options{})
	for i := 0; i < 3; i++ {
		got, err := l.LowerBinary(token.USHR, lua.Ident("a"), lua.Ident("b"), at(i))
		require.NoError(t, err)
		assert.Equal(t, lua.Call(lua.Ident("__TS__UnsignedRightShift"), lua.Ident("a"), lua.Ident("b")), got)
	}
	assert.Equal(t, []string{"__TS__UnsignedRightShift"}, l.Helpers().Names())
	assert.Equal(t, 0, l.Reporter().Len())
}

func TestLowerBinary_Unsupported(t *testing.T) {
	tests := []struct {
		name    string
		dialect *dialect.Dialect
		opts    Options
		op      token.TokenType
		code    diag.Code
		message string
	}{
		{"or on 5.0", luadialect.Lua50, Options{}, token.PIPE_ASSIGN, diag.CodeUnsupportedForTarget,
			"Bitwise operations is/are not supported for target Lua 5.0."},
		{"shr on 5.3", luadialect.Lua53, Options{}, token.SHR, diag.CodeUnsupportedRightShift,
			"Right shift operator is not supported for target Lua 5.3. Use `>>>` instead."},
		{"library disabled on JIT", luadialect.LuaJIT, Options{LibraryImport: core.LibraryImportNone}, token.AMP,
			diag.CodeUnsupportedForTarget, "Bitwise operations is/are not supported for target LuaJIT."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := newLowerer(t, tt.dialect, tt.opts)
			got, err := l.LowerBinary(tt.op, lua.Ident("a"), lua.Ident("b"), at(4))
			require.NoError(t, err)

			ph, ok := got.(*lua.Placeholder)
			require.True(t, ok, "want placeholder, got %T", got)
			assert.Equal(t, string(tt.code), ph.Reason)

			diags := l.Reporter().Diagnostics()
			require.Len(t, diags, 1)
			assert.Equal(t, tt.code, diags[0].Code)
			assert.Equal(t, tt.message, diags[0].Message)
			assert.Equal(t, 4, diags[0].Span.Start.Offset)
			assert.Equal(t, 0, l.Helpers().Len())
		})
	}
}

func TestLowerUnary(t *testing.T) {
	tests := []struct {
		name    string
		dialect *dialect.Dialect
		op      token.TokenType
		want    lua.Expression
	}{
		{"negate", luadialect.Lua50, token.MINUS, lua.Unary("-", lua.Ident("x"))},
		{"not", luadialect.Lua51, token.BANG, lua.Unary("not", lua.Ident("x"))},
		{"plus", luadialect.Lua54, token.PLUS, lua.Call(lua.Ident("tonumber"), lua.Ident("x"))},
		{"bnot native", luadialect.Lua54, token.TILDE, lua.Unary("~", lua.Ident("x"))},
		{"bnot library", luadialect.Lua52, token.TILDE, lua.Call(lua.Ident("bit32.bnot"), lua.Ident("x"))},
		{"bnot unsupported", luadialect.Lua51, token.TILDE, &lua.Placeholder{Reason: "LW01"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := newLowerer(t, tt.dialect, Options{})
			got, err := l.LowerUnary(tt.op, lua.Ident("x"), at(0))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLowerer_InvariantErrorIsReturned(t *testing.T) {
	partial := dialect.NewDialect(core.Lua53).Native(dialect.CategoryArithmetic).Build()
	l := newLowerer(t, partial, Options{})

	_, err := l.LowerBinary(token.SHR, lua.Ident("a"), lua.Ident("b"), at(0))
	assert.True(t, IsInvariantError(err))
	assert.Equal(t, 0, l.Reporter().Len(), "invariant violations are not diagnostics")
}

func TestLowerer_LogsStrategy(t *testing.T) {
	logger, buf := testutil.NewCaptureLogger()
	l, err := New(Config{Dialect: luadialect.Lua52, Logger: logger})
	require.NoError(t, err)

	_, err = l.LowerBinary(token.AMP, lua.Ident("a"), lua.Ident("b"), at(0))
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "strategy=library(bit32.band)")
}
