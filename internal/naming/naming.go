// Package naming maps function names to the logical ids the host assigns
// them in the compiled template.
package naming

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Resolver resolves the logical id of a function's Lambda resource.
type Resolver interface {
	LambdaLogicalID(functionName string) string
}

// ResolverFunc adapts a plain function to a Resolver.
type ResolverFunc func(functionName string) string

func (f ResolverFunc) LambdaLogicalID(functionName string) string {
	return f(functionName)
}

// AWS reproduces the aws provider's naming rules.
type AWS struct{}

// LambdaLogicalID returns e.g. "HelloDashworldLambdaFunction" for "hello-world".
func (AWS) LambdaLogicalID(functionName string) string {
	return NormalizeFunctionName(functionName) + "LambdaFunction"
}

// NormalizeFunctionName spells out characters that are not allowed in
// logical ids and upper-cases the first letter.
func NormalizeFunctionName(functionName string) string {
	r := strings.NewReplacer("-", "Dash", "_", "Underscore")
	return NormalizeName(r.Replace(functionName))
}

// NormalizeName upper-cases the first rune of name.
func NormalizeName(name string) string {
	first, size := utf8.DecodeRuneInString(name)
	if first == utf8.RuneError {
		return name
	}
	return string(unicode.ToUpper(first)) + name[size:]
}
