// Package lang is a stand-in for a language metadata table owned by
// another service. The core only needs two facts per language: a stable
// numeric code and its two-letter form, both injected into every
// Expr.Execute call as "language" and "language_str2". A real deployment
// would back this with whatever locale service the rest of the platform
// already has; this package is a minimal, dependency-free placeholder
// for it.
package lang

// Info is what the expression host needs to know about a language.
type Info struct {
	Code int
	Str2 string
}

var table = map[string]Info{
	"en": {Code: 1, Str2: "EN"},
	"fr": {Code: 2, Str2: "FR"},
	"de": {Code: 3, Str2: "DE"},
	"es": {Code: 4, Str2: "ES"},
	"it": {Code: 5, Str2: "IT"},
	"pt": {Code: 6, Str2: "PT"},
	"nl": {Code: 7, Str2: "NL"},
}

// Lookup returns the Info for a language code such as "en", or false if
// unknown.
func Lookup(language string) (Info, bool) {
	info, ok := table[language]
	return info, ok
}
