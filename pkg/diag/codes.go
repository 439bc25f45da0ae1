package diag

func init() {
	Register(Definition{
		Code:        CodeUnsupportedForTarget,
		Name:        "unsupported-for-target",
		Severity:    SeverityError,
		Description: "The construct has no representation under the selected Lua dialect or configuration.",
		Format:      "%s is/are not supported for target %s.",
		Rationale: "Lua 5.0 and 5.1 have no bitwise operators, and bit library calls are " +
			"unavailable when library imports are disabled. Emitting anything would change behavior.",
		BadExample:  "a |= b; // target 5.1",
		GoodExample: "a = a + b; // or select target 5.2, 5.3, 5.4 or JIT",
		Fix:         "Pick a dialect that supports the operator, or enable library imports.",
	})

	Register(Definition{
		Code:        CodeUnsupportedRightShift,
		Name:        "unsupported-right-shift-operator",
		Severity:    SeverityError,
		Description: "The native >> of the selected dialect is a logical shift and would silently produce different results.",
		Format:      "Right shift operator is not supported for target %s. Use `>>>` instead.",
		Rationale: "Lua 5.3 and 5.4 implement >> as a zero-fill shift on 64-bit integers. " +
			"The source >> propagates the sign of a 32-bit value.",
		BadExample:  "const x = a >> 2; // target 5.3",
		GoodExample: "const x = a >>> 2;",
		Fix:         "Use >>> when the operand is known to be non-negative.",
	})
}
