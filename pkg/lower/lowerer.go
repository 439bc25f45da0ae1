package lower

import (
	"log/slog"

	"github.com/leapstack-labs/leaplua/pkg/diag"
	"github.com/leapstack-labs/leaplua/pkg/dialect"
	"github.com/leapstack-labs/leaplua/pkg/lua"
	"github.com/leapstack-labs/leaplua/pkg/lualib"
	"github.com/leapstack-labs/leaplua/pkg/token"
)

// Lowerer applies strategies for one compile unit.
type Lowerer struct {
	dialect  *dialect.Dialect
	opts     Options
	reporter *diag.Reporter
	helpers  *lualib.Set
	logger   *slog.Logger
}

// Config holds lowerer configuration.
type Config struct {
	// Dialect is the target dialect (required)
	Dialect *dialect.Dialect
	// Options are the unit's lowering options
	Options Options
	// Reporter receives diagnostics (a fresh one is created if nil)
	Reporter *diag.Reporter
	// Helpers records required runtime helpers (a fresh set is created if nil)
	Helpers *lualib.Set
	// Logger is the structured logger (optional, uses discard if nil)
	Logger *slog.Logger
}

// New creates a lowerer for one compile unit.
func New(cfg Config) (*Lowerer, error) {
	if cfg.Dialect == nil {
		return nil, dialect.ErrDialectRequired
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	reporter := cfg.Reporter
	if reporter == nil {
		reporter = diag.NewReporter()
	}
	helpers := cfg.Helpers
	if helpers == nil {
		helpers = lualib.NewSet()
	}
	return &Lowerer{
		dialect:  cfg.Dialect,
		opts:     cfg.Options,
		reporter: reporter,
		helpers:  helpers,
		logger:   logger,
	}, nil
}

// Dialect returns the unit's dialect.
func (l *Lowerer) Dialect() *dialect.Dialect { return l.dialect }

// Reporter returns the unit's diagnostics reporter.
func (l *Lowerer) Reporter() *diag.Reporter { return l.reporter }

// Helpers returns the unit's required helper set.
func (l *Lowerer) Helpers() *lualib.Set { return l.helpers }

// Strategy resolves op under the unit's dialect and options.
func (l *Lowerer) Strategy(op token.TokenType, arity int) (Strategy, error) {
	return Resolve(op, arity, l.dialect, l.opts)
}

// LowerBinary lowers left op right. Unsupported operators report exactly one
// diagnostic at span and yield a placeholder.
func (l *Lowerer) LowerBinary(op token.TokenType, left, right lua.Expression, span token.Span) (lua.Expression, error) {
	s, err := l.Strategy(op, 2)
	if err != nil {
		return nil, err
	}
	l.logger.Debug("lowering binary operator", "op", op.String(), "dialect", l.dialect.Name, "strategy", s.String())

	switch s.Kind {
	case KindNative:
		if s.Func != "" {
			return lua.Call(lua.Ident(s.Func), left, right), nil
		}
		return lua.Binary(s.Op, left, right), nil
	case KindLibraryCall, KindPolyfill:
		return l.helperCall(s, left, right), nil
	default:
		return l.unsupported(s, op, span), nil
	}
}

// LowerUnary lowers op operand.
func (l *Lowerer) LowerUnary(op token.TokenType, operand lua.Expression, span token.Span) (lua.Expression, error) {
	s, err := l.Strategy(op, 1)
	if err != nil {
		return nil, err
	}
	l.logger.Debug("lowering unary operator", "op", op.String(), "dialect", l.dialect.Name, "strategy", s.String())

	switch s.Kind {
	case KindNative:
		if s.Func != "" {
			return lua.Call(lua.Ident(s.Func), operand), nil
		}
		return lua.Unary(s.Op, operand), nil
	case KindLibraryCall, KindPolyfill:
		return l.helperCall(s, operand), nil
	default:
		return l.unsupported(s, op, span), nil
	}
}

func (l *Lowerer) helperCall(s Strategy, args ...lua.Expression) lua.Expression {
	if s.Kind == KindLibraryCall {
		l.helpers.Use(s.Library)
	} else {
		l.helpers.Use(s.Helper)
	}
	return lua.Call(lua.Ident(s.HelperRef()), args...)
}

func (l *Lowerer) unsupported(s Strategy, op token.TokenType, span token.Span) lua.Expression {
	target := l.dialect.Target.DisplayName()
	switch s.Code {
	case diag.CodeUnsupportedRightShift:
		l.reporter.Report(s.Code, span, target)
	default:
		l.reporter.Report(s.Code, span, functionality(s.Category), target)
	}
	l.logger.Debug("operator unsupported", "op", op.String(), "code", string(s.Code), "pos", span.String())
	return &lua.Placeholder{Reason: string(s.Code)}
}

// functionality names a category in diagnostic messages.
func functionality(c dialect.Category) string {
	switch c {
	case dialect.CategoryBitwise, dialect.CategoryRightShift, dialect.CategoryUnsignedRightShift:
		return "Bitwise operations"
	default:
		return c.String() + " operators"
	}
}
