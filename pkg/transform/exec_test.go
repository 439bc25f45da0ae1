package transform_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	glua "github.com/yuin/gopher-lua"

	"github.com/leapstack-labs/leaplua/pkg/core"
	"github.com/leapstack-labs/leaplua/pkg/transform"
)

// run compiles src for Lua 5.1, executes it after preamble and returns the
// interpreter state together with the chunk's first return value.
func run(t *testing.T, preamble, src string) (*glua.LState, glua.LValue) {
	t.Helper()
	return runFor(t, core.Lua51, nil, preamble, src)
}

// runFor compiles src for target and executes it on the 5.1 interpreter.
// setup installs what the interpreter lacks for that target, such as a bit
// library.
func runFor(t *testing.T, target core.Target, setup func(*glua.LState), preamble, src string) (*glua.LState, glua.LValue) {
	t.Helper()

	res, err := transform.CompileSource("exec.ts", src, core.CompileOptions{Target: target})
	require.NoError(t, err)
	require.Empty(t, res.Diagnostics)
	chunk := res.Chunk()

	L := glua.NewState()
	t.Cleanup(L.Close)
	if setup != nil {
		setup(L)
	}

	if preamble != "" {
		require.NoError(t, L.DoString(preamble))
	}
	fn, err := L.LoadString(chunk)
	require.NoError(t, err, chunk)
	L.Push(fn)
	require.NoError(t, L.PCall(0, 1, nil), chunk)
	ret := L.Get(-1)
	L.Pop(1)
	return L, ret
}

func number(t *testing.T, L *glua.LState, name string) float64 {
	t.Helper()
	v, ok := L.GetGlobal(name).(glua.LNumber)
	require.True(t, ok, "%s is %s", name, L.GetGlobal(name).Type())
	return float64(v)
}

func TestExec_UnsignedRightShiftPolyfill(t *testing.T) {
	tests := []struct {
		src  string
		want float64
	}{
		{"r = -1 >>> 0", 4294967295},
		{"r = -1 >>> 31", 1},
		{"r = -16 >>> 2", 1073741820},
		{"r = 5 >>> 1", 2},
		{"r = 1 >>> 33", 0},
		{"r = 4294967296 >>> 0", 0},
		{"r = 7.9 >>> 0", 7},
		{"r = -7.9 >>> 0", 4294967289},
		{"r = 256; r >>>= 4", 16},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			L, _ := run(t, "", tt.src)
			assert.Equal(t, tt.want, number(t, L, "r"))
		})
	}
}

func TestExec_IncrementSemantics(t *testing.T) {
	L, _ := run(t, "", "x = 5; y = x++; i = 5; p = ++i; q = i--; r = i")
	assert.Equal(t, 5.0, number(t, L, "y"))
	assert.Equal(t, 6.0, number(t, L, "x"))
	assert.Equal(t, 6.0, number(t, L, "p"))
	assert.Equal(t, 6.0, number(t, L, "q"))
	assert.Equal(t, 5.0, number(t, L, "r"))
}

func TestExec_SingleEvaluation(t *testing.T) {
	preamble := `
count = 0
obj = { n = 10 }
function key() count = count + 1 return "n" end
function get() count = count + 1 return obj end
`
	L, _ := run(t, preamble, "obj[key()] += 5; get()[key()] *= 2; v = obj[key()]++")
	assert.Equal(t, 4.0, number(t, L, "count"))
	assert.Equal(t, 30.0, number(t, L, "v"))

	n, ok := L.GetField(L.GetGlobal("obj"), "n").(glua.LNumber)
	require.True(t, ok)
	assert.Equal(t, 31.0, float64(n))
}

func TestExec_OldValueReadBeforeRightOperand(t *testing.T) {
	L, _ := run(t, "t = { n = 10 }", "t.n += (t.n = 100, 1); r = t.n")
	assert.Equal(t, 11.0, number(t, L, "r"))
}

func TestExec_IndexedCompoundKeepsSlot(t *testing.T) {
	L, _ := run(t, "a = { [0] = 5, [1] = 100 }; i = 0", "a[i] += (i = 1, 10)")
	a := L.GetGlobal("a").(*glua.LTable)
	assert.Equal(t, glua.LNumber(15), a.RawGetInt(0))
	assert.Equal(t, glua.LNumber(100), a.RawGetInt(1))
	assert.Equal(t, 1.0, number(t, L, "i"))
}

func TestExec_SequenceOrder(t *testing.T) {
	preamble := `
order = ""
function f() order = order .. "f" return 1 end
function g() order = order .. "g" return 2 end
function h() order = order .. "h" return 3 end
`
	L, ret := run(t, preamble, "r = (f(), g(), h()); return (f(), g())")
	assert.Equal(t, 3.0, number(t, L, "r"))
	assert.Equal(t, glua.LNumber(2), ret)
	assert.Equal(t, "fghfg", L.GetGlobal("order").String())
}

func TestExec_ReturnSequence(t *testing.T) {
	preamble := `
calls = ""
function foo() calls = calls .. "foo;" return "a" end
function bar() calls = calls .. "bar;" return "b" end
`
	L, ret := run(t, preamble, "return (foo(), bar());")
	assert.Equal(t, glua.LString("b"), ret)
	assert.Equal(t, "foo;bar;", L.GetGlobal("calls").String())
}

func TestExec_Membership(t *testing.T) {
	L, _ := run(t, "t = { x = 1 }", "a = 'x' in t; b = 'y' in t")
	assert.Equal(t, glua.LTrue, L.GetGlobal("a"))
	assert.Equal(t, glua.LFalse, L.GetGlobal("b"))
}

func TestExec_LogicalShortCircuit(t *testing.T) {
	L, _ := run(t, "c = 0", "r = false && (c = 1); s = true || c++")
	assert.Equal(t, glua.LFalse, L.GetGlobal("r"))
	assert.Equal(t, glua.LTrue, L.GetGlobal("s"))
	assert.Equal(t, 0.0, number(t, L, "c"))
}

func TestExec_Delete(t *testing.T) {
	L, ret := run(t, "t = { x = 1, y = 2 }", "delete t.x; return delete t['y']")
	assert.Equal(t, glua.LTrue, ret)
	assert.Equal(t, glua.LNil, L.GetField(L.GetGlobal("t"), "x"))
	assert.Equal(t, glua.LNil, L.GetField(L.GetGlobal("t"), "y"))
}

func TestExec_ForLoop(t *testing.T) {
	L, _ := run(t, "", "total = 0; for (let i = 0; i < 5; i++) { total += i }")
	assert.Equal(t, 10.0, number(t, L, "total"))
}

func TestExec_Arithmetic(t *testing.T) {
	L, _ := run(t, "", "p = 2 ** 10; n = +'42'; m = 7 % 3; e = 1 === 1; ne = 1 !== 1")
	assert.Equal(t, 1024.0, number(t, L, "p"))
	assert.Equal(t, 42.0, number(t, L, "n"))
	assert.Equal(t, 1.0, number(t, L, "m"))
	assert.Equal(t, glua.LTrue, L.GetGlobal("e"))
	assert.Equal(t, glua.LFalse, L.GetGlobal("ne"))
}

func TestExec_ModuloOnLua50(t *testing.T) {
	// The interpreter only has fmod, the 5.1 name for math.mod.
	setup := func(L *glua.LState) {
		lib := L.GetGlobal("math").(*glua.LTable)
		L.SetField(lib, "mod", L.GetField(lib, "fmod"))
	}

	tests := []struct {
		src  string
		want float64
	}{
		{"r = 15 % 4", 3},
		{"r = -7 % 3", -1},
		{"r = 7 % -3", 1},
		{"r = 5.5 % 2", 1.5},
		{"r = 17; r %= 5", 2},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			L, _ := runFor(t, core.Lua50, setup, "", tt.src)
			assert.Equal(t, tt.want, number(t, L, "r"))
		})
	}
}

// toUint32 converts a Lua number the way bit32 and LuaJIT's bit do.
func toUint32(n glua.LNumber) uint32 {
	return uint32(int64(math.Trunc(float64(n))))
}

// bitFuncs implements a bit library. Results are unsigned like bit32's, or
// signed like LuaJIT's when signed is set. Shift counts are masked like
// LuaJIT's; the cases below stay within 0..31 so bit32 agrees.
func bitFuncs(signed bool) map[string]glua.LGFunction {
	result := func(L *glua.LState, v uint32) int {
		if signed {
			L.Push(glua.LNumber(int32(v)))
		} else {
			L.Push(glua.LNumber(v))
		}
		return 1
	}
	binary := func(op func(a, b uint32) uint32) glua.LGFunction {
		return func(L *glua.LState) int {
			return result(L, op(toUint32(L.CheckNumber(1)), toUint32(L.CheckNumber(2))))
		}
	}
	return map[string]glua.LGFunction{
		"band":    binary(func(a, b uint32) uint32 { return a & b }),
		"bor":     binary(func(a, b uint32) uint32 { return a | b }),
		"bxor":    binary(func(a, b uint32) uint32 { return a ^ b }),
		"lshift":  binary(func(a, b uint32) uint32 { return a << (b & 31) }),
		"rshift":  binary(func(a, b uint32) uint32 { return a >> (b & 31) }),
		"arshift": binary(func(a, b uint32) uint32 { return uint32(int32(a) >> (b & 31)) }),
		"bnot": func(L *glua.LState) int {
			return result(L, ^toUint32(L.CheckNumber(1)))
		},
	}
}

func withBit32(L *glua.LState) {
	L.SetGlobal("bit32", L.SetFuncs(L.NewTable(), bitFuncs(false)))
}

func withBit(L *glua.LState) {
	L.PreloadModule("bit", func(L *glua.LState) int {
		L.Push(L.SetFuncs(L.NewTable(), bitFuncs(true)))
		return 1
	})
}

func TestExec_LibraryBitwise(t *testing.T) {
	// want is the JavaScript result. bit32 returns unsigned values, so
	// results are compared as 32-bit patterns.
	tests := []struct {
		src  string
		want int64
	}{
		{"r = 12 & 10", 8},
		{"r = 12 | 3", 15},
		{"r = 12 ^ 10", 6},
		{"r = ~5", -6},
		{"r = 1 << 4", 16},
		{"r = -16 >> 2", -4},
		{"r = 256 >> 4", 16},
		{"r = -1 >>> 28", 15},
		{"r = 6; r |= 9", 15},
		{"r = 6; r &= 3", 2},
		{"r = 3; r <<= 2", 12},
		{"r = -64; r >>= 3", -8},
		{"r = 1024; r >>>= 5", 32},
	}

	targets := []struct {
		target core.Target
		setup  func(*glua.LState)
	}{
		{core.Lua52, withBit32},
		{core.LuaJIT, withBit},
	}

	for _, tgt := range targets {
		for _, tt := range tests {
			t.Run(tgt.target.String()+"/"+tt.src, func(t *testing.T) {
				L, _ := runFor(t, tgt.target, tgt.setup, "", tt.src)
				got := int64(number(t, L, "r"))
				assert.Equal(t, uint32(tt.want), uint32(got), "got %d", got)
			})
		}
	}
}

func TestExec_BitModuleIsSigned(t *testing.T) {
	L, _ := runFor(t, core.LuaJIT, withBit, "", "a = ~5; b = -16 >> 2; c = 12 & 10")
	assert.Equal(t, -6.0, number(t, L, "a"))
	assert.Equal(t, -4.0, number(t, L, "b"))
	assert.Equal(t, 8.0, number(t, L, "c"))
}
