package probe

import (
	"strings"

	"github.com/tinkerbelle-io/tb-asset/internal/inventory"
)

func trim(s string) string {
	return strings.TrimSpace(s)
}

// firstLine returns the first non-empty line of out.
func firstLine(out string) string {
	for line := range strings.Lines(out) {
		if l := trim(line); l != "" {
			return l
		}
	}
	return ""
}

// known collapses empty and placeholder values reported by vendor tools
// into Unknown.
func known(f inventory.Field[string]) inventory.Field[string] {
	v, ok := f.Get()
	if !ok {
		return f
	}
	switch strings.ToLower(trim(v)) {
	case "", "unknown", "not specified", "none", "n/a", "-", "to be filled by o.e.m.", "default string":
		return inventory.Unknown[string]()
	}
	return inventory.Known(trim(v))
}
