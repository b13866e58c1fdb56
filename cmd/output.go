package cmd

import (
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/tinkerbelle-io/tb-asset/internal/inventory"
)

const (
	formatJSON = "json"
	formatYAML = "yaml"
)

func checkFormat(format string) error {
	switch format {
	case formatJSON, formatYAML:
		return nil
	default:
		return fmt.Errorf("unknown format %q (valid: %s, %s)", format, formatJSON, formatYAML)
	}
}

// writeSnapshot renders snap in format. Unknown text attributes appear as
// "Unknown" and unknown or absent numbers as null.
func writeSnapshot(w io.Writer, snap inventory.Snapshot, format string) error {
	switch format {
	case formatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(snap); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
		return enc.Close()
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(snap); err != nil {
			return fmt.Errorf("encode json: %w", err)
		}
		return nil
	default:
		return checkFormat(format)
	}
}
