package dialect

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/leaplua/pkg/core"
	"github.com/leapstack-labs/leaplua/pkg/token"
)

func TestCategoryString(t *testing.T) {
	tests := []struct {
		category Category
		want     string
	}{
		{CategoryArithmetic, "arithmetic"},
		{CategoryComparison, "comparison"},
		{CategoryLogical, "logical"},
		{CategoryBitwise, "bitwise"},
		{CategoryRightShift, "right-shift"},
		{CategoryUnsignedRightShift, "unsigned-right-shift"},
		{Category(99), "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.category.String())
		})
	}
}

func TestFamilyString(t *testing.T) {
	assert.Equal(t, "native", FamilyNative.String())
	assert.Equal(t, "library", FamilyLibrary.String())
	assert.Equal(t, "polyfill", FamilyPolyfill.String())
	assert.Equal(t, "unsupported", FamilyUnsupported.String())
	assert.Equal(t, "mismatch", FamilySemanticMismatch.String())
	assert.Equal(t, "unknown", Family(42).String())
}

func TestBuilderChaining(t *testing.T) {
	d := NewDialect(core.Lua52).
		Describe("test dialect").
		Native(CategoryArithmetic, CategoryComparison, CategoryLogical).
		Library("bit32", CategoryBitwise, CategoryRightShift, CategoryUnsignedRightShift).
		Build()

	assert.Equal(t, "lua5.2", d.Name)
	assert.Equal(t, core.Lua52, d.Target)
	assert.Equal(t, "test dialect", d.Description)
	assert.Equal(t, AllCategories, d.Categories())
	assert.Empty(t, d.MissingCategories())

	f, ok := d.Family(CategoryRightShift)
	require.True(t, ok)
	assert.Equal(t, FamilyLibrary, f)

	caps := d.Capabilities()
	assert.False(t, caps.NativeBitwise)
	assert.True(t, caps.LibraryBitwise)
	assert.Equal(t, "bit32", caps.BitLibrary)
	assert.True(t, caps.RightShiftSafe)
	assert.False(t, caps.NativeIntegerDivision)
}

func TestBuilder_LastAssignmentWins(t *testing.T) {
	d := NewDialect(core.Lua53).
		Native(CategoryRightShift).
		SemanticMismatch(CategoryRightShift).
		Build()

	f, ok := d.Family(CategoryRightShift)
	require.True(t, ok)
	assert.Equal(t, FamilySemanticMismatch, f)
	assert.False(t, d.Capabilities().RightShiftSafe)
}

func TestBuilder_IncompleteDialect(t *testing.T) {
	d := NewDialect(core.Lua51).Named("partial").Native(CategoryArithmetic).Build()

	_, ok := d.Family(CategoryBitwise)
	assert.False(t, ok)
	assert.Equal(t, "partial", d.GetName())
	assert.Len(t, d.MissingCategories(), len(AllCategories)-1)
	assert.Equal(t, CapabilityFlags{}, d.Capabilities())
}

func TestLookupOperator(t *testing.T) {
	tests := []struct {
		name     string
		op       token.TokenType
		arity    int
		category Category
		native   string
	}{
		{"binary minus", token.MINUS, 2, CategoryArithmetic, "-"},
		{"negation", token.MINUS, 1, CategoryArithmetic, "-"},
		{"strict equality", token.STRICTEQ, 2, CategoryComparison, "=="},
		{"not", token.BANG, 1, CategoryLogical, "not"},
		{"xor", token.CARET, 2, CategoryBitwise, "~"},
		{"bnot", token.TILDE, 1, CategoryBitwise, "~"},
		{"compound or", token.PIPE_ASSIGN, 2, CategoryBitwise, "|"},
		{"compound shr", token.SHR_ASSIGN, 2, CategoryRightShift, ">>"},
		{"ushr", token.USHR, 2, CategoryUnsignedRightShift, ">>"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			def, ok := LookupOperator(tt.op, tt.arity)
			require.True(t, ok)
			assert.Equal(t, tt.category, def.Category)
			assert.Equal(t, tt.native, def.Native)
		})
	}

	_, ok := LookupOperator(token.COMMA, 2)
	assert.False(t, ok)
	_, ok = CategoryOf(token.TILDE, 2)
	assert.False(t, ok, "~ has no binary form in the source language")
}

func TestLuaOperators_LibraryFunctions(t *testing.T) {
	for _, def := range LuaOperators {
		switch def.Category {
		case CategoryBitwise, CategoryRightShift, CategoryUnsignedRightShift:
			assert.NotEmpty(t, def.LibFunc, "%s/%d", def.Token, def.Arity)
		default:
			assert.Empty(t, def.LibFunc, "%s/%d", def.Token, def.Arity)
		}
	}
}
