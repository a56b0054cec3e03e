// Package pragma parses the `# @py2rs: key = value` pragma comments that
// may precede a function definition in the surface Python source (spec
// §6.3). The surface parser retains these as ordinary comment tokens; this
// package is the bridge's helper for turning the comment lines immediately
// above a `def` into structured pragmas.
package pragma

import (
	"regexp"
	"strings"
)

// Prefix is the recognized pragma comment prefix.
const Prefix = "@py2rs:"

var lineRe = regexp.MustCompile(`^#\s*@py2rs:\s*([A-Za-z_][A-Za-z0-9_]*)\s*=\s*(.+)$`)

// Pragma is one parsed `key = value` pragma.
type Pragma struct {
	Key   string
	Value string
}

// Recognized keys (spec §6.3).
const (
	KeyTypeStrategy       = "type_strategy"
	KeyOwnership          = "ownership"
	KeyCustomAttribute    = "custom_attribute"
	KeyOptimizationLevel  = "optimization_level"
	KeyPerformanceCritical = "performance_critical"
)

// KnownKeys is the set of pragma keys the bridge recognizes without
// producing a diagnostic.
var KnownKeys = map[string]bool{
	KeyTypeStrategy:        true,
	KeyOwnership:           true,
	KeyCustomAttribute:     true,
	KeyOptimizationLevel:   true,
	KeyPerformanceCritical: true,
}

// ParseLines parses each candidate comment line, skipping lines that are
// not pragma comments (ordinary comments are simply ignored, not an error:
// only an actual `# @py2rs:` line that fails to parse its key=value shape
// is a candidate for a diagnostic, surfaced by the caller).
func ParseLines(lines []string) []Pragma {
	var out []Pragma

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if !strings.HasPrefix(trimmed, "#") || !strings.Contains(trimmed, Prefix) {
			continue
		}

		m := lineRe.FindStringSubmatch(trimmed)
		if m == nil {
			continue
		}

		out = append(out, Pragma{Key: m[1], Value: strings.TrimSpace(m[2])})
	}

	return out
}

// Unknown reports the subset of ps whose Key is not in KnownKeys.
func Unknown(ps []Pragma) []Pragma {
	var out []Pragma

	for _, p := range ps {
		if !KnownKeys[p.Key] {
			out = append(out, p)
		}
	}

	return out
}
