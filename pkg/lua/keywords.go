package lua

import "regexp"

var keywords = map[string]struct{}{
	"and": {}, "break": {}, "do": {}, "else": {}, "elseif": {}, "end": {},
	"false": {}, "for": {}, "function": {}, "goto": {}, "if": {}, "in": {},
	"local": {}, "nil": {}, "not": {}, "or": {}, "repeat": {}, "return": {},
	"then": {}, "true": {}, "until": {}, "while": {},
}

var namePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// IsKeyword reports whether name is reserved in any Lua dialect.
// goto is included although only 5.2+ and LuaJIT reserve it.
func IsKeyword(name string) bool {
	_, ok := keywords[name]
	return ok
}

// IsValidName reports whether s can be written as a bare Lua name.
func IsValidName(s string) bool {
	return namePattern.MatchString(s) && !IsKeyword(s)
}
