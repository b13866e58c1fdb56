package extract

import (
	"math"
	"regexp"
	"strconv"
)

// Units maps a unit suffix to its multiplier relative to a base unit.
type Units map[string]float64

var (
	// ByteUnits normalizes capacities to bytes.
	ByteUnits = Units{
		"B":  1,
		"KB": 1 << 10, "kB": 1 << 10, "KiB": 1 << 10,
		"MB": 1 << 20, "MiB": 1 << 20,
		"GB": 1 << 30, "GiB": 1 << 30,
		"TB": 1 << 40, "TiB": 1 << 40,
	}

	// FrequencyUnits normalizes clock speeds to MHz. dmidecode reports memory
	// speed in MT/s on recent versions.
	FrequencyUnits = Units{
		"kHz":  1.0 / 1000,
		"MHz":  1,
		"GHz":  1000,
		"MT/s": 1,
	}
)

var quantityRe = regexp.MustCompile(`^\s*(\d+(?:\.\d+)?)\s*([A-Za-z/]+)`)

// Quantity parses "<number> <unit>" and returns the number in the base unit
// of units. Anything else, including an unrecognized unit, yields 0.
func Quantity(s string, units Units) int64 {
	m := quantityRe.FindStringSubmatch(s)
	if m == nil {
		return 0
	}
	mult, ok := units[m[2]]
	if !ok {
		return 0
	}
	n, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0
	}
	return int64(math.Round(n * mult))
}

// Bytes parses a capacity such as "16 GB" into bytes.
func Bytes(s string) int64 {
	return Quantity(s, ByteUnits)
}

// MHz parses a frequency such as "1333 MHz" into MHz.
func MHz(s string) int64 {
	return Quantity(s, FrequencyUnits)
}
