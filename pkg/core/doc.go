// Package core defines the shared language of the leaplua system.
//
// This package contains:
//   - The source expression and statement trees handed over by a front end
//   - The Target enumeration naming the six Lua dialects
//   - Compile options shared by the lowering engine and the CLI
//
// The Golden Rule: pkg/core imports ONLY pkg/token and stdlib.
// All other packages depend on core, not the reverse.
package core
