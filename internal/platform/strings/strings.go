// Package strings provides small string helpers shared across packages
package strings

import std "strings"

// LowerTrim trims surrounding whitespace and lowercases s
func LowerTrim(s string) string { return std.ToLower(std.TrimSpace(s)) }
