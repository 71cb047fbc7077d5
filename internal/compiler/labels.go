package compiler

import "regexp"

var labelPattern = regexp.MustCompile(`^[A-Za-z$][0-9A-Za-z_$]*$`)

// reservedLabels mirrors the two system names the expression host injects
// on every Function call: the numeric language code and its two-letter
// string form. A question or loop variable may never shadow them.
var reservedLabels = map[string]bool{
	"language":      true,
	"language_str2": true,
}

func validLabel(label string) bool {
	return labelPattern.MatchString(label) && !reservedLabels[label]
}
