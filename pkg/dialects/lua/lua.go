// Package lua registers the six Lua runtime dialects.
//
// Import it for side effects wherever a dialect is looked up by target:
//
//	import _ "github.com/leapstack-labs/leaplua/pkg/dialects/lua"
package lua

import (
	"github.com/leapstack-labs/leaplua/pkg/core"
	"github.com/leapstack-labs/leaplua/pkg/dialect"
	"github.com/leapstack-labs/leaplua/pkg/token"
)

func init() {
	for _, d := range All {
		dialect.Register(d)
	}
}

// Categories every dialect lowers natively.
var universal = []dialect.Category{
	dialect.CategoryArithmetic,
	dialect.CategoryComparison,
	dialect.CategoryLogical,
}

// Lua50 has no bitwise operators in any form. Its only modulo is the
// truncating math.mod, which keeps the dividend's sign like JavaScript.
var Lua50 = dialect.NewDialect(core.Lua50).
	Describe("Lua 5.0: no bitwise operators").
	Native(universal...).
	NativeCall(token.PERCENT, 2, "math.mod").
	Unsupported(dialect.CategoryBitwise, dialect.CategoryRightShift).
	Polyfill(dialect.CategoryUnsignedRightShift).
	Build()

// Lua51 has no bitwise operators in any form.
var Lua51 = dialect.NewDialect(core.Lua51).
	Describe("Lua 5.1: no bitwise operators").
	Native(universal...).
	Unsupported(dialect.CategoryBitwise, dialect.CategoryRightShift).
	Polyfill(dialect.CategoryUnsignedRightShift).
	Build()

// Lua52 exposes bitwise operations through the bit32 library.
var Lua52 = dialect.NewDialect(core.Lua52).
	Describe("Lua 5.2: bitwise through bit32").
	Native(universal...).
	Library("bit32",
		dialect.CategoryBitwise,
		dialect.CategoryRightShift,
		dialect.CategoryUnsignedRightShift,
	).
	Build()

// Lua53 has native bitwise syntax, but its >> is a logical shift.
// Emitting it for a sign-propagating shift would silently change results.
var Lua53 = dialect.NewDialect(core.Lua53).
	Describe("Lua 5.3: native bitwise, >> is logical").
	Native(universal...).
	Native(dialect.CategoryBitwise, dialect.CategoryUnsignedRightShift).
	SemanticMismatch(dialect.CategoryRightShift).
	IntegerDivision().
	Build()

// Lua54 matches Lua53 for every operator category.
var Lua54 = dialect.NewDialect(core.Lua54).
	Describe("Lua 5.4: native bitwise, >> is logical").
	Native(universal...).
	Native(dialect.CategoryBitwise, dialect.CategoryUnsignedRightShift).
	SemanticMismatch(dialect.CategoryRightShift).
	IntegerDivision().
	Build()

// LuaJIT exposes bitwise operations through the bit module.
var LuaJIT = dialect.NewDialect(core.LuaJIT).
	Named("luajit").
	Describe("LuaJIT: bitwise through the bit module").
	Native(universal...).
	Library("bit",
		dialect.CategoryBitwise,
		dialect.CategoryRightShift,
		dialect.CategoryUnsignedRightShift,
	).
	Build()

// All lists the dialects in target order.
var All = []*dialect.Dialect{Lua50, Lua51, Lua52, Lua53, Lua54, LuaJIT}
