package keys

import (
	"strings"

	"golang.org/x/text/cases"
)

// NameKey produces the canonical storage key for a combatant name.
// Behavior: trims surrounding spaces and applies Unicode case folding, so
// "Rex", "REX" and " rex " share one key. Inner spacing is preserved.
func NameKey(name string) string {
	// A Caser is stateful and must not be shared between goroutines.
	return cases.Fold().String(strings.TrimSpace(name))
}

// SameName reports whether two names normalize to the same key.
func SameName(a, b string) bool {
	return NameKey(a) == NameKey(b)
}

// ContainsName reports whether the normalized form of name contains the
// normalized fragment. An empty fragment never matches.
func ContainsName(name, fragment string) bool {
	f := NameKey(fragment)
	if f == "" {
		return false
	}
	return strings.Contains(NameKey(name), f)
}
