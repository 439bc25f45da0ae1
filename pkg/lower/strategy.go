// Package lower decides how each primitive source operator is expressed in a
// Lua dialect and builds the corresponding fragment.
//
// Resolve is a pure function of (operator, arity, dialect, options). The
// Lowerer applies a resolved strategy to already lowered operands, recording
// required runtime helpers and reporting unsupported operators.
package lower

import (
	"errors"
	"fmt"

	"github.com/leapstack-labs/leaplua/pkg/core"
	"github.com/leapstack-labs/leaplua/pkg/diag"
	"github.com/leapstack-labs/leaplua/pkg/dialect"
	"github.com/leapstack-labs/leaplua/pkg/token"
)

// Kind is the tag of a lowering strategy.
type Kind int

const (
	// KindNative emits Lua operator syntax.
	KindNative Kind = iota
	// KindLibraryCall calls a bit library function.
	KindLibraryCall
	// KindPolyfill calls a helper emitted into the chunk.
	KindPolyfill
	// KindUnsupported reports a diagnostic and emits a placeholder.
	KindUnsupported
)

// String returns the string representation of the kind.
func (k Kind) String() string {
	switch k {
	case KindNative:
		return "native"
	case KindLibraryCall:
		return "library"
	case KindPolyfill:
		return "polyfill"
	case KindUnsupported:
		return "unsupported"
	default:
		return "unknown"
	}
}

// Strategy is the resolved lowering of one operator under one dialect.
type Strategy struct {
	Kind     Kind
	Category dialect.Category

	Op      string    // native operator spelling
	Func    string    // native global function (tonumber, math.mod)
	Library string    // bit library table for KindLibraryCall
	Helper  string    // library function or polyfill name
	Code    diag.Code // diagnostic for KindUnsupported
}

// HelperRef returns the callee emitted for library and polyfill strategies.
func (s Strategy) HelperRef() string {
	if s.Kind == KindLibraryCall {
		return s.Library + "." + s.Helper
	}
	return s.Helper
}

// String formats the strategy for logs and tooling, e.g. "library(bit32.bor)".
func (s Strategy) String() string {
	switch s.Kind {
	case KindNative:
		if s.Func != "" {
			return "native(" + s.Func + "())"
		}
		return "native(" + s.Op + ")"
	case KindLibraryCall, KindPolyfill:
		return s.Kind.String() + "(" + s.HelperRef() + ")"
	case KindUnsupported:
		return "unsupported(" + string(s.Code) + ")"
	default:
		return "unknown"
	}
}

// Options configures lowering for a compile unit.
type Options struct {
	LibraryImport core.LibraryImportMode
}

// InvariantError reports an operator the capability matrix cannot resolve.
// It signals a defect in the engine, never a problem in user code.
type InvariantError struct {
	Op      token.TokenType
	Arity   int
	Dialect string
	Reason  string
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("lowering invariant violated: %s (arity %d) on %s: %s", e.Op, e.Arity, e.Dialect, e.Reason)
}

// IsInvariantError reports whether err wraps an *InvariantError.
func IsInvariantError(err error) bool {
	var ie *InvariantError
	return errors.As(err, &ie)
}

// Resolve returns the strategy for op with the given arity under d.
// Compound assignment tokens resolve through their base operator.
func Resolve(op token.TokenType, arity int, d *dialect.Dialect, opts Options) (Strategy, error) {
	if d == nil {
		return Strategy{}, dialect.ErrDialectRequired
	}

	def, ok := dialect.LookupOperator(op, arity)
	if !ok {
		return Strategy{}, &InvariantError{Op: op, Arity: arity, Dialect: d.Name, Reason: "operator has no definition"}
	}

	family, ok := d.Family(def.Category)
	if !ok {
		return Strategy{}, &InvariantError{
			Op: op, Arity: arity, Dialect: d.Name,
			Reason: fmt.Sprintf("no capability entry for category %s", def.Category),
		}
	}

	s := Strategy{Category: def.Category}
	switch family {
	case dialect.FamilyNative:
		if def.Native == "" && def.NativeCall == "" {
			return Strategy{}, &InvariantError{Op: op, Arity: arity, Dialect: d.Name, Reason: "no native spelling"}
		}
		s.Kind = KindNative
		s.Op = def.Native
		s.Func = def.NativeCall
		if fn, ok := d.NativeCall(def.Token, def.Arity); ok {
			s.Op, s.Func = "", fn
		}

	case dialect.FamilyLibrary:
		if opts.LibraryImport == core.LibraryImportNone {
			s.Kind = KindUnsupported
			s.Code = diag.CodeUnsupportedForTarget
			return s, nil
		}
		if d.BitLibrary() == "" || def.LibFunc == "" {
			return Strategy{}, &InvariantError{Op: op, Arity: arity, Dialect: d.Name, Reason: "no library function"}
		}
		s.Kind = KindLibraryCall
		s.Library = d.BitLibrary()
		s.Helper = def.LibFunc

	case dialect.FamilyPolyfill:
		if def.Polyfill == "" {
			return Strategy{}, &InvariantError{Op: op, Arity: arity, Dialect: d.Name, Reason: "no polyfill"}
		}
		s.Kind = KindPolyfill
		s.Helper = def.Polyfill

	case dialect.FamilyUnsupported:
		s.Kind = KindUnsupported
		s.Code = diag.CodeUnsupportedForTarget

	case dialect.FamilySemanticMismatch:
		s.Kind = KindUnsupported
		s.Code = diag.CodeUnsupportedRightShift

	default:
		return Strategy{}, &InvariantError{
			Op: op, Arity: arity, Dialect: d.Name,
			Reason: fmt.Sprintf("unknown strategy family %d", int(family)),
		}
	}
	return s, nil
}
