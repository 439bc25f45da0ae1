// Package dialect provides Lua dialect configuration and the operator capability matrix.
//
// This package contains the public contract for dialect definitions used by the
// lowering engine, the desugaring layer and the CLI. Concrete dialects are
// registered from pkg/dialects/*/ packages.
package dialect

import (
	"github.com/leapstack-labs/leaplua/pkg/core"
	"github.com/leapstack-labs/leaplua/pkg/token"
)

// Category groups source operators that share one lowering policy.
type Category int

const (
	// CategoryArithmetic covers + - * / % ** and unary - +.
	CategoryArithmetic Category = iota
	// CategoryComparison covers == === != !== < > <= >=.
	CategoryComparison
	// CategoryLogical covers && || and unary !.
	CategoryLogical
	// CategoryBitwise covers & | ^ << and unary ~.
	CategoryBitwise
	// CategoryRightShift covers the sign-propagating >>.
	CategoryRightShift
	// CategoryUnsignedRightShift covers the zero-fill >>>.
	CategoryUnsignedRightShift
)

// AllCategories lists every operator category. A complete dialect maps each one.
var AllCategories = []Category{
	CategoryArithmetic,
	CategoryComparison,
	CategoryLogical,
	CategoryBitwise,
	CategoryRightShift,
	CategoryUnsignedRightShift,
}

// String returns the string representation of Category.
func (c Category) String() string {
	switch c {
	case CategoryArithmetic:
		return "arithmetic"
	case CategoryComparison:
		return "comparison"
	case CategoryLogical:
		return "logical"
	case CategoryBitwise:
		return "bitwise"
	case CategoryRightShift:
		return "right-shift"
	case CategoryUnsignedRightShift:
		return "unsigned-right-shift"
	default:
		return "unknown"
	}
}

// Family is the lowering strategy family a dialect assigns to a category.
type Family int

const (
	// FamilyNative emits Lua operator syntax.
	FamilyNative Family = iota
	// FamilyLibrary calls a function of the dialect's bit library.
	FamilyLibrary
	// FamilyPolyfill calls a helper function injected into the chunk.
	FamilyPolyfill
	// FamilyUnsupported means the dialect has no representation at all.
	FamilyUnsupported
	// FamilySemanticMismatch means native syntax exists but behaves differently.
	FamilySemanticMismatch
)

// String returns the string representation of Family.
func (f Family) String() string {
	switch f {
	case FamilyNative:
		return "native"
	case FamilyLibrary:
		return "library"
	case FamilyPolyfill:
		return "polyfill"
	case FamilyUnsupported:
		return "unsupported"
	case FamilySemanticMismatch:
		return "mismatch"
	default:
		return "unknown"
	}
}

// CapabilityFlags summarizes what a dialect offers. Derived once in Build.
type CapabilityFlags struct {
	NativeBitwise         bool   // & | ~ << available as syntax
	LibraryBitwise        bool   // bitwise available through a library table
	BitLibrary            string // "bit32", "bit", or empty
	RightShiftSafe        bool   // >> can be expressed with source semantics
	NativeIntegerDivision bool   // // operator exists
}

// Dialect represents one Lua runtime dialect.
type Dialect struct {
	Name        string
	Target      core.Target
	Description string

	families    map[Category]Family
	nativeCalls map[opKey]string
	bitLibrary  string
	intDiv     bool
	caps       CapabilityFlags
}

// Family returns the strategy family for a category.
// The second result is false when the dialect has no entry, which is a matrix defect.
func (d *Dialect) Family(c Category) (Family, bool) {
	f, ok := d.families[c]
	return f, ok
}

// NativeCall returns the global function that replaces the native operator
// spelling of op with the given arity, if the dialect declares one.
func (d *Dialect) NativeCall(op token.TokenType, arity int) (string, bool) {
	fn, ok := d.nativeCalls[opKey{op, arity}]
	return fn, ok
}

// Capabilities returns the dialect's derived capability flags.
func (d *Dialect) Capabilities() CapabilityFlags {
	return d.caps
}

// BitLibrary returns the global table holding bit functions ("bit32", "bit"), or "".
func (d *Dialect) BitLibrary() string {
	return d.bitLibrary
}

// GetName returns the dialect name.
func (d *Dialect) GetName() string {
	return d.Name
}

// Categories returns the categories this dialect maps, in AllCategories order.
func (d *Dialect) Categories() []Category {
	out := make([]Category, 0, len(d.families))
	for _, c := range AllCategories {
		if _, ok := d.families[c]; ok {
			out = append(out, c)
		}
	}
	return out
}

// MissingCategories returns the categories without an entry.
func (d *Dialect) MissingCategories() []Category {
	var out []Category
	for _, c := range AllCategories {
		if _, ok := d.families[c]; !ok {
			out = append(out, c)
		}
	}
	return out
}

// Builder provides a fluent API for constructing dialects.
type Builder struct {
	dialect *Dialect
}

// NewDialect creates a new dialect builder for the given target.
func NewDialect(target core.Target) *Builder {
	return &Builder{
		dialect: &Dialect{
			Name:        "lua" + target.String(),
			Target:      target,
			families:    make(map[Category]Family),
			nativeCalls: make(map[opKey]string),
		},
	}
}

// Named overrides the registry name.
func (b *Builder) Named(name string) *Builder {
	b.dialect.Name = name
	return b
}

// Describe sets a one-line description shown by tooling.
func (b *Builder) Describe(text string) *Builder {
	b.dialect.Description = text
	return b
}

// Native marks categories as native syntax.
func (b *Builder) Native(cats ...Category) *Builder {
	return b.set(FamilyNative, cats)
}

// Library marks categories as calls into the named bit library table.
func (b *Builder) Library(lib string, cats ...Category) *Builder {
	b.dialect.bitLibrary = lib
	return b.set(FamilyLibrary, cats)
}

// Polyfill marks categories as helper calls.
func (b *Builder) Polyfill(cats ...Category) *Builder {
	return b.set(FamilyPolyfill, cats)
}

// Unsupported marks categories as having no representation.
func (b *Builder) Unsupported(cats ...Category) *Builder {
	return b.set(FamilyUnsupported, cats)
}

// SemanticMismatch marks categories whose native form would silently change behavior.
func (b *Builder) SemanticMismatch(cats ...Category) *Builder {
	return b.set(FamilySemanticMismatch, cats)
}

// NativeCall spells a natively lowered operator as a call to fn, for
// dialects that provide the operation only as a library function.
func (b *Builder) NativeCall(op token.TokenType, arity int, fn string) *Builder {
	b.dialect.nativeCalls[opKey{op, arity}] = fn
	return b
}

// NativeCallsOf copies the native call spellings of another dialect for
// the same runtime, such as a built-in dialect a custom one is derived from.
func (b *Builder) NativeCallsOf(from *Dialect) *Builder {
	for k, fn := range from.nativeCalls {
		b.dialect.nativeCalls[k] = fn
	}
	return b
}

// IntegerDivision records that the dialect has a native // operator.
func (b *Builder) IntegerDivision() *Builder {
	b.dialect.intDiv = true
	return b
}

func (b *Builder) set(f Family, cats []Category) *Builder {
	for _, c := range cats {
		b.dialect.families[c] = f
	}
	return b
}

// Build returns the constructed dialect with its capability flags derived.
func (b *Builder) Build() *Dialect {
	d := b.dialect
	bitwise, hasBitwise := d.families[CategoryBitwise]
	shift, hasShift := d.families[CategoryRightShift]

	d.caps = CapabilityFlags{
		NativeBitwise:         hasBitwise && bitwise == FamilyNative,
		LibraryBitwise:        hasBitwise && bitwise == FamilyLibrary,
		RightShiftSafe:        hasShift && (shift == FamilyNative || shift == FamilyLibrary),
		NativeIntegerDivision: d.intDiv,
	}
	if d.caps.LibraryBitwise {
		d.caps.BitLibrary = d.bitLibrary
	}
	return d
}
