package typescript

import (
	"strconv"
	"strings"
	"unicode"
)

var reservedWords = func() map[string]bool {
	m := make(map[string]bool)
	for _, w := range strings.Fields(`
		break case catch class const continue debugger default delete do
		else enum export extends false finally for function if implements
		import in instanceof interface let new null package private protected
		public return static super switch this throw true try type typeof
		var void while with yield`) {
		m[w] = true
	}
	return m
}()

func isIdentifier(name string) bool {
	if name == "" {
		return false
	}
	for i, r := range name {
		switch {
		case r == '_' || r == '$' || unicode.IsLetter(r):
		case i > 0 && unicode.IsDigit(r):
		default:
			return false
		}
	}
	return true
}

// propertyName renders an object key, quoting it unless it is a plain identifier.
func propertyName(name string) string {
	if isIdentifier(name) && !reservedWords[name] {
		return name
	}
	return strconv.Quote(name)
}

// typeName makes a declared type name a valid TypeScript identifier.
func typeName(name string) string {
	if isIdentifier(name) && !reservedWords[name] {
		return name
	}
	var sb strings.Builder
	for i, r := range name {
		if i == 0 && unicode.IsDigit(r) {
			sb.WriteByte('_')
		}
		if r == '_' || r == '$' || unicode.IsLetter(r) || unicode.IsDigit(r) {
			sb.WriteRune(r)
		} else {
			sb.WriteByte('_')
		}
	}
	out := sb.String()
	if out == "" || reservedWords[out] {
		out += "_"
	}
	return out
}
