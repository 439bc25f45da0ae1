package lower

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/leaplua/pkg/core"
	"github.com/leapstack-labs/leaplua/pkg/diag"
	"github.com/leapstack-labs/leaplua/pkg/dialect"
	luadialect "github.com/leapstack-labs/leaplua/pkg/dialects/lua"
	"github.com/leapstack-labs/leaplua/pkg/token"
)

func TestResolve_Matrix(t *testing.T) {
	type want struct {
		kind   Kind
		detail string // native spelling, helper ref, or diagnostic code
	}
	native := func(op string) want { return want{KindNative, op} }
	lib := func(ref string) want { return want{KindLibraryCall, ref} }
	poly := func(ref string) want { return want{KindPolyfill, ref} }
	unsup := func(code diag.Code) want { return want{KindUnsupported, string(code)} }
	lw01 := unsup(diag.CodeUnsupportedForTarget)
	lw02 := unsup(diag.CodeUnsupportedRightShift)

	tests := []struct {
		name  string
		op    token.TokenType
		arity int
		want  map[core.Target]want
	}{
		{"add", token.PLUS, 2, map[core.Target]want{
			core.Lua50: native("+"), core.Lua51: native("+"), core.Lua52: native("+"),
			core.Lua53: native("+"), core.Lua54: native("+"), core.LuaJIT: native("+"),
		}},
		{"strict equality", token.STRICTEQ, 2, map[core.Target]want{
			core.Lua50: native("=="), core.Lua53: native("=="), core.LuaJIT: native("=="),
		}},
		{"bitwise or", token.PIPE, 2, map[core.Target]want{
			core.Lua50: lw01, core.Lua51: lw01, core.Lua52: lib("bit32.bor"),
			core.Lua53: native("|"), core.Lua54: native("|"), core.LuaJIT: lib("bit.bor"),
		}},
		{"bitwise or assign", token.PIPE_ASSIGN, 2, map[core.Target]want{
			core.Lua50: lw01, core.Lua51: lw01, core.Lua52: lib("bit32.bor"),
			core.Lua53: native("|"), core.Lua54: native("|"), core.LuaJIT: lib("bit.bor"),
		}},
		{"xor", token.CARET, 2, map[core.Target]want{
			core.Lua51: lw01, core.Lua52: lib("bit32.bxor"), core.Lua54: native("~"), core.LuaJIT: lib("bit.bxor"),
		}},
		{"bnot", token.TILDE, 1, map[core.Target]want{
			core.Lua50: lw01, core.Lua52: lib("bit32.bnot"), core.Lua53: native("~"), core.LuaJIT: lib("bit.bnot"),
		}},
		{"left shift", token.SHL, 2, map[core.Target]want{
			core.Lua51: lw01, core.Lua52: lib("bit32.lshift"), core.Lua53: native("<<"), core.LuaJIT: lib("bit.lshift"),
		}},
		{"right shift", token.SHR, 2, map[core.Target]want{
			core.Lua50: lw01, core.Lua51: lw01, core.Lua52: lib("bit32.arshift"),
			core.Lua53: lw02, core.Lua54: lw02, core.LuaJIT: lib("bit.arshift"),
		}},
		{"right shift assign", token.SHR_ASSIGN, 2, map[core.Target]want{
			core.Lua50: lw01, core.Lua53: lw02, core.Lua54: lw02, core.Lua52: lib("bit32.arshift"),
		}},
		{"unsigned right shift", token.USHR, 2, map[core.Target]want{
			core.Lua50: poly("__TS__UnsignedRightShift"), core.Lua51: poly("__TS__UnsignedRightShift"),
			core.Lua52: lib("bit32.rshift"), core.Lua53: native(">>"), core.Lua54: native(">>"),
			core.LuaJIT: lib("bit.rshift"),
		}},
	}

	for _, tt := range tests {
		for target, w := range tt.want {
			t.Run(tt.name+"/"+target.String(), func(t *testing.T) {
				d, err := dialect.ForTarget(target)
				require.NoError(t, err)

				s, err := Resolve(tt.op, tt.arity, d, Options{})
				require.NoError(t, err)
				assert.Equal(t, w.kind, s.Kind)
				switch s.Kind {
				case KindNative:
					assert.Equal(t, w.detail, s.Op)
				case KindUnsupported:
					assert.Equal(t, w.detail, string(s.Code))
				default:
					assert.Equal(t, w.detail, s.HelperRef())
				}
			})
		}
	}
}

func TestResolve_UnsignedShiftNeverUnsupported(t *testing.T) {
	for _, d := range luadialect.All {
		for _, op := range []token.TokenType{token.USHR, token.USHR_ASSIGN} {
			s, err := Resolve(op, 2, d, Options{})
			require.NoError(t, err)
			assert.NotEqual(t, KindUnsupported, s.Kind, "%s on %s", op, d.Name)
		}
	}
}

func TestResolve_LibraryImportNone(t *testing.T) {
	opts := Options{LibraryImport: core.LibraryImportNone}

	s, err := Resolve(token.AMP, 2, luadialect.Lua52, opts)
	require.NoError(t, err)
	assert.Equal(t, KindUnsupported, s.Kind)
	assert.Equal(t, diag.CodeUnsupportedForTarget, s.Code)

	s, err = Resolve(token.USHR, 2, luadialect.LuaJIT, opts)
	require.NoError(t, err)
	assert.Equal(t, diag.CodeUnsupportedForTarget, s.Code)

	// polyfills and native operators are unaffected
	s, err = Resolve(token.USHR, 2, luadialect.Lua51, opts)
	require.NoError(t, err)
	assert.Equal(t, KindPolyfill, s.Kind)

	s, err = Resolve(token.AMP, 2, luadialect.Lua53, opts)
	require.NoError(t, err)
	assert.Equal(t, KindNative, s.Kind)

	// the semantic mismatch code is kept
	s, err = Resolve(token.SHR, 2, luadialect.Lua54, opts)
	require.NoError(t, err)
	assert.Equal(t, diag.CodeUnsupportedRightShift, s.Code)
}

func TestResolve_UnaryPlus(t *testing.T) {
	s, err := Resolve(token.PLUS, 1, luadialect.Lua50, Options{})
	require.NoError(t, err)
	assert.Equal(t, KindNative, s.Kind)
	assert.Equal(t, "tonumber", s.Func)
	assert.Equal(t, "native(tonumber())", s.String())
}

func TestResolve_ModuloCall(t *testing.T) {
	tests := []struct {
		name string
		op   token.TokenType
		d    *dialect.Dialect
		op2  string
		fn   string
	}{
		{"5.0 modulo", token.PERCENT, luadialect.Lua50, "", "math.mod"},
		{"5.0 modulo assign", token.PERCENT_ASSIGN, luadialect.Lua50, "", "math.mod"},
		{"5.1 modulo", token.PERCENT, luadialect.Lua51, "%", ""},
		{"JIT modulo", token.PERCENT, luadialect.LuaJIT, "%", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := Resolve(tt.op, 2, tt.d, Options{})
			require.NoError(t, err)
			assert.Equal(t, KindNative, s.Kind)
			assert.Equal(t, tt.op2, s.Op)
			assert.Equal(t, tt.fn, s.Func)
		})
	}

	fn, ok := luadialect.Lua50.NativeCall(token.PERCENT, 2)
	assert.True(t, ok)
	assert.Equal(t, "math.mod", fn)
	_, ok = luadialect.Lua50.NativeCall(token.PLUS, 2)
	assert.False(t, ok)
}

func TestResolve_InvariantErrors(t *testing.T) {
	partial := dialect.NewDialect(core.Lua51).Named("partial").Native(dialect.CategoryArithmetic).Build()

	_, err := Resolve(token.PIPE, 2, partial, Options{})
	require.Error(t, err)
	var ie *InvariantError
	require.ErrorAs(t, err, &ie)
	assert.Equal(t, token.PIPE, ie.Op)
	assert.Equal(t, "partial", ie.Dialect)
	assert.Contains(t, err.Error(), "no capability entry for category bitwise")
	assert.True(t, IsInvariantError(err))

	_, err = Resolve(token.COMMA, 2, luadialect.Lua53, Options{})
	assert.True(t, IsInvariantError(err))

	noLib := dialect.NewDialect(core.Lua52).Native(dialect.CategoryArithmetic).
		Polyfill(dialect.CategoryBitwise).Build()
	_, err = Resolve(token.AMP, 2, noLib, Options{})
	assert.True(t, IsInvariantError(err), "bitwise and has no polyfill")

	_, err = Resolve(token.PLUS, 2, nil, Options{})
	assert.ErrorIs(t, err, dialect.ErrDialectRequired)
	assert.False(t, IsInvariantError(err))
}

func TestStrategyString(t *testing.T) {
	tests := []struct {
		s    Strategy
		want string
	}{
		{Strategy{Kind: KindNative, Op: "|"}, "native(|)"},
		{Strategy{Kind: KindLibraryCall, Library: "bit32", Helper: "bor"}, "library(bit32.bor)"},
		{Strategy{Kind: KindPolyfill, Helper: "__TS__UnsignedRightShift"}, "polyfill(__TS__UnsignedRightShift)"},
		{Strategy{Kind: KindUnsupported, Code: diag.CodeUnsupportedRightShift}, "unsupported(LW02)"},
		{Strategy{Kind: Kind(9)}, "unknown"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.s.String())
	}
}
