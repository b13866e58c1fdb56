// Package extract pulls named fields out of the free-text output of OS
// diagnostic tools. A field that cannot be found is Unknown, never an error.
package extract

import (
	"iter"
	"regexp"
	"strconv"
	"strings"

	"github.com/tinkerbelle-io/tb-asset/internal/inventory"
)

// Labeled returns the value of the first line of the form "Label: value" or
// "Label=value". Leading indentation and spaces before the separator are
// ignored; the label itself is matched case-sensitively.
func Labeled(text, label string) inventory.Field[string] {
	for line := range strings.Lines(text) {
		if v, ok := labelValue(line, label); ok {
			return inventory.Known(v)
		}
	}
	return inventory.Unknown[string]()
}

func labelValue(line, label string) (string, bool) {
	trimmed := strings.TrimSpace(line)
	rest, ok := strings.CutPrefix(trimmed, label)
	if !ok {
		return "", false
	}
	rest = strings.TrimLeft(rest, " \t")
	if rest == "" || (rest[0] != ':' && rest[0] != '=') {
		return "", false
	}
	return strings.TrimSpace(rest[1:]), true
}

// LabeledNonEmpty is Labeled but skips lines where the value is empty, such
// as section headers that reuse the label ("Memory:" above "Memory: 16 GB").
func LabeledNonEmpty(text, label string) inventory.Field[string] {
	for line := range strings.Lines(text) {
		if v, ok := labelValue(line, label); ok && v != "" {
			return inventory.Known(v)
		}
	}
	return inventory.Unknown[string]()
}

// FirstLabeled tries each label in order and returns the first known value.
func FirstLabeled(text string, labels ...string) inventory.Field[string] {
	for _, label := range labels {
		if f := Labeled(text, label); f.IsKnown() {
			return f
		}
	}
	return inventory.Unknown[string]()
}

// LabeledPrefix returns the value of the first "Label: value" line whose
// label starts with prefix, e.g. "VRAM" for "VRAM (Dynamic, Max): 1536 MB".
func LabeledPrefix(text, prefix string) inventory.Field[string] {
	for line := range strings.Lines(text) {
		trimmed := strings.TrimSpace(line)
		if !strings.HasPrefix(trimmed, prefix) {
			continue
		}
		if _, v, ok := strings.Cut(trimmed, ":"); ok {
			return inventory.Known(strings.TrimSpace(v))
		}
	}
	return inventory.Unknown[string]()
}

// KeyValues parses a block of "key=value" or "key: value" lines into a map.
// The first occurrence of a key wins.
func KeyValues(block string) map[string]string {
	m := make(map[string]string)
	for line := range strings.Lines(block) {
		trimmed := strings.TrimSpace(line)
		i := strings.IndexAny(trimmed, "=:")
		if i <= 0 {
			continue
		}
		key := strings.TrimSpace(trimmed[:i])
		if _, dup := m[key]; dup {
			continue
		}
		m[key] = strings.TrimSpace(trimmed[i+1:])
	}
	return m
}

// Unquote strips one pair of surrounding double quotes from a known value.
func Unquote(f inventory.Field[string]) inventory.Field[string] {
	v, ok := f.Get()
	if !ok {
		return f
	}
	if len(v) >= 2 && v[0] == '"' && v[len(v)-1] == '"' {
		v = v[1 : len(v)-1]
	}
	return inventory.Known(v)
}

// TrimLinePrefix removes prefix from every line that carries it, e.g. the
// "E: " property marker of udevadm.
func TrimLinePrefix(text, prefix string) string {
	var b strings.Builder
	b.Grow(len(text))
	for line := range strings.Lines(text) {
		b.WriteString(strings.TrimPrefix(line, prefix))
	}
	return b.String()
}

// Columns splits a listing line on whitespace and joins the fields from index
// from (zero-based) to the end.
func Columns(line string, from int) inventory.Field[string] {
	fields := strings.Fields(line)
	if from < 0 || len(fields) <= from {
		return inventory.Unknown[string]()
	}
	return inventory.Known(strings.Join(fields[from:], " "))
}

// Blocks splits text into records. A record starts at every line for which
// isHeader returns true and includes that line; text before the first header
// is dropped.
func Blocks(text string, isHeader func(line string) bool) iter.Seq[string] {
	return func(yield func(string) bool) {
		var cur strings.Builder
		started := false
		for line := range strings.Lines(text) {
			if isHeader(line) {
				if started && !yield(cur.String()) {
					return
				}
				cur.Reset()
				started = true
			}
			if started {
				cur.WriteString(line)
			}
		}
		if started {
			yield(cur.String())
		}
	}
}

// ByMarker splits on lines equal to marker once trimmed, such as
// "Memory Device" in dmidecode output.
func ByMarker(text, marker string) iter.Seq[string] {
	return Blocks(text, func(line string) bool {
		return strings.TrimSpace(line) == marker
	})
}

// ByHeader splits on lines matching re, such as "BANK 0/DIMM0:".
func ByHeader(text string, re *regexp.Regexp) iter.Seq[string] {
	return Blocks(text, func(line string) bool {
		return re.MatchString(line)
	})
}

// ByBlankLine yields runs of non-blank lines, as in wmic /format:list output.
func ByBlankLine(text string) iter.Seq[string] {
	return func(yield func(string) bool) {
		var cur strings.Builder
		for line := range strings.Lines(text) {
			if strings.TrimSpace(line) == "" {
				if cur.Len() > 0 {
					if !yield(cur.String()) {
						return
					}
					cur.Reset()
				}
				continue
			}
			cur.WriteString(line)
		}
		if cur.Len() > 0 {
			yield(cur.String())
		}
	}
}

// Integer parses a bare decimal integer such as a wmic Capacity value.
func Integer(s string) inventory.Field[int64] {
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return inventory.Unknown[int64]()
	}
	return inventory.Known(n)
}

var leadingIntRe = regexp.MustCompile(`^\s*(\d+)`)

// LeadingInt parses the integer at the start of s, ignoring trailing text.
func LeadingInt(s string) inventory.Field[int64] {
	m := leadingIntRe.FindStringSubmatch(s)
	if m == nil {
		return inventory.Unknown[int64]()
	}
	return Integer(m[1])
}

// Dimensions splits a "WxH" display mode on its first x. Both dimensions are
// Unknown unless both parse.
func Dimensions(s string) (w, h inventory.Field[int64]) {
	left, right, ok := strings.Cut(strings.ToLower(s), "x")
	if !ok {
		return inventory.Unknown[int64](), inventory.Unknown[int64]()
	}
	w, h = LeadingInt(left), LeadingInt(right)
	if !w.IsKnown() || !h.IsKnown() {
		return inventory.Unknown[int64](), inventory.Unknown[int64]()
	}
	return w, h
}
