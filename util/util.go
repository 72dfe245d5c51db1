// Package util holds small text helpers shared by report writers.
package util

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// IndentExpand repeats the indent growth times
func IndentExpand(indent string, growth int) string {
	if growth <= 0 {
		return ""
	}
	return strings.Repeat(indent, growth)
}

// FormatFloat prints a value with prec decimals, or nan when undefined
func FormatFloat(v float64, prec int) string {
	if math.IsNaN(v) {
		return "nan"
	}
	return strconv.FormatFloat(v, 'f', prec, 64)
}

var unsafePathChars = regexp.MustCompile(`[^A-Za-z0-9._+-]+`)

// SafeName turns a group label into a usable file or directory name
func SafeName(label string) string {
	name := strings.Trim(unsafePathChars.ReplaceAllString(strings.TrimSpace(label), "_"), "_")
	if name == "" || name == "." || name == ".." {
		return "_"
	}
	return name
}
