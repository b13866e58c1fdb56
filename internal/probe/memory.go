package probe

import (
	"context"
	"regexp"
	"strings"

	"github.com/tinkerbelle-io/tb-asset/internal/extract"
	"github.com/tinkerbelle-io/tb-asset/internal/inventory"
)

// --- Linux ---

func (s *linuxStrategy) Memory(ctx context.Context) []inventory.MemoryModule {
	out, ok := s.slow(ctx, "dmidecode", "--type", "memory")
	if !ok {
		return nil
	}
	return parseDmidecodeMemory(out)
}

// parseDmidecodeMemory numbers slots in the order dmidecode lists them,
// counting empty slots too.
func parseDmidecodeMemory(out string) []inventory.MemoryModule {
	var modules []inventory.MemoryModule
	slot := 0
	for block := range extract.ByMarker(out, "Memory Device") {
		slot++
		modules = append(modules, inventory.MemoryModule{
			SlotNumber:         slot,
			BankLabel:          known(extract.FirstLabeled(block, "Bank Locator", "Locator")),
			Manufacturer:       known(extract.Labeled(block, "Manufacturer")),
			CapacityBytes:      extract.Bytes(extract.Labeled(block, "Size").Or("")),
			Type:               known(extract.Labeled(block, "Type")),
			SpeedMHz:           inventory.Positive(extract.MHz(extract.Labeled(block, "Speed").Or(""))),
			ConfiguredSpeedMHz: inventory.Positive(extract.MHz(extract.FirstLabeled(block, "Configured Memory Speed", "Configured Clock Speed").Or(""))),
			FormFactor:         known(extract.Labeled(block, "Form Factor")),
			PartNumber:         known(extract.Labeled(block, "Part Number")),
			SerialNumber:       known(extract.Labeled(block, "Serial Number")),
		})
	}
	return modules
}

// --- Windows ---

func (s *windowsStrategy) Memory(ctx context.Context) []inventory.MemoryModule {
	out, ok := s.run(ctx, "wmic", "memorychip", "get",
		"BankLabel,Capacity,ConfiguredClockSpeed,DeviceLocator,FormFactor,Manufacturer,MemoryType,PartNumber,SerialNumber,SMBIOSMemoryType,Speed",
		"/format:list")
	if ok {
		if modules := parseMemoryChips(out); len(modules) > 0 {
			return modules
		}
	}

	// wmic is deprecated and absent from recent Windows builds.
	var chips []win32PhysicalMemory
	if err := s.wmi.Query("SELECT BankLabel, Capacity, ConfiguredClockSpeed, DeviceLocator, FormFactor, Manufacturer, MemoryType, PartNumber, SerialNumber, SMBIOSMemoryType, Speed FROM Win32_PhysicalMemory", &chips); err != nil {
		s.log.Debug("wmi query failed", "class", "Win32_PhysicalMemory", "error", err)
		return nil
	}
	return memoryFromWMI(chips)
}

func memoryFromWMI(chips []win32PhysicalMemory) []inventory.MemoryModule {
	var modules []inventory.MemoryModule
	for i, c := range chips {
		text := func(v string) inventory.Field[string] { return known(inventory.Known(trim(v))) }
		modules = append(modules, inventory.MemoryModule{
			SlotNumber:         i + 1,
			BankLabel:          inventory.FirstKnown(text(c.BankLabel), text(c.DeviceLocator)),
			Manufacturer:       text(c.Manufacturer),
			CapacityBytes:      int64(c.Capacity),
			Type:               codeName(memoryTypes, inventory.Known(int64(c.SMBIOSMemoryType)), inventory.Known(int64(c.MemoryType))),
			SpeedMHz:           inventory.Positive(int64(c.Speed)),
			ConfiguredSpeedMHz: inventory.Positive(int64(c.ConfiguredClockSpeed)),
			FormFactor:         codeName(formFactors, inventory.Known(int64(c.FormFactor))),
			PartNumber:         text(c.PartNumber),
			SerialNumber:       text(c.SerialNumber),
		})
	}
	return modules
}

// SMBIOS memory type codes (DMTF DSP0134, type 17 offset 12h) and the older
// Win32_PhysicalMemory.MemoryType codes that share the same numbering for
// the values below.
var memoryTypes = map[int64]string{
	17: "RAM",
	18: "SDRAM",
	20: "DDR",
	21: "DDR2",
	24: "DDR3",
	26: "DDR4",
	27: "LPDDR",
	28: "LPDDR2",
	29: "LPDDR3",
	30: "LPDDR4",
	34: "DDR5",
	35: "LPDDR5",
}

// Win32_PhysicalMemory.FormFactor codes.
var formFactors = map[int64]string{
	7:  "SIMM",
	8:  "DIMM",
	9:  "TSOP",
	11: "RIMM",
	12: "SODIMM",
	13: "SRIMM",
}

func codeName(names map[int64]string, codes ...inventory.Field[int64]) inventory.Field[string] {
	for _, c := range codes {
		if n, ok := c.Get(); ok {
			if name, ok := names[n]; ok {
				return inventory.Known(name)
			}
		}
	}
	return inventory.Unknown[string]()
}

func parseMemoryChips(out string) []inventory.MemoryModule {
	var modules []inventory.MemoryModule
	slot := 0
	for block := range extract.ByBlankLine(out) {
		kv := extract.KeyValues(block)
		if len(kv) == 0 {
			continue
		}
		slot++
		number := func(key string) inventory.Field[int64] { return extract.Integer(kv[key]) }
		text := func(key string) inventory.Field[string] { return known(inventory.Known(kv[key])) }

		modules = append(modules, inventory.MemoryModule{
			SlotNumber:         slot,
			BankLabel:          inventory.FirstKnown(text("BankLabel"), text("DeviceLocator")),
			Manufacturer:       text("Manufacturer"),
			CapacityBytes:      number("Capacity").Or(0),
			Type:               codeName(memoryTypes, number("SMBIOSMemoryType"), number("MemoryType")),
			SpeedMHz:           inventory.Positive(number("Speed").Or(0)),
			ConfiguredSpeedMHz: inventory.Positive(number("ConfiguredClockSpeed").Or(0)),
			FormFactor:         codeName(formFactors, number("FormFactor")),
			PartNumber:         text("PartNumber"),
			SerialNumber:       text("SerialNumber"),
		})
	}
	return modules
}

// --- macOS ---

func (s *darwinStrategy) Memory(ctx context.Context) []inventory.MemoryModule {
	out, ok := s.slow(ctx, "system_profiler", "SPMemoryDataType")
	if !ok {
		return nil
	}
	return parseMemoryDataType(out)
}

var bankHeaderRe = regexp.MustCompile(`^\s*[^:]*(BANK|DIMM)[^:]*:\s*$`)

func parseMemoryDataType(out string) []inventory.MemoryModule {
	var modules []inventory.MemoryModule
	slot := 0
	for block := range extract.ByHeader(out, bankHeaderRe) {
		slot++
		header := strings.TrimSuffix(firstLine(block), ":")
		modules = append(modules, darwinModule(block, slot, inventory.Known(header), "Size"))
	}
	if len(modules) > 0 {
		return modules
	}

	// Apple silicon has unified memory and no slot listing.
	if extract.LabeledNonEmpty(out, "Memory").IsKnown() {
		return []inventory.MemoryModule{darwinModule(out, 1, inventory.Unknown[string](), "Memory")}
	}
	return nil
}

// darwinModule reports the listed speed as the configured speed too;
// system_profiler shows only the speed the module runs at.
func darwinModule(block string, slot int, bank inventory.Field[string], sizeLabel string) inventory.MemoryModule {
	speed := inventory.Positive(extract.MHz(extract.Labeled(block, "Speed").Or("")))
	return inventory.MemoryModule{
		SlotNumber:         slot,
		BankLabel:          bank,
		Manufacturer:       known(extract.Labeled(block, "Manufacturer")),
		CapacityBytes:      extract.Bytes(extract.LabeledNonEmpty(block, sizeLabel).Or("")),
		Type:               known(extract.Labeled(block, "Type")),
		SpeedMHz:           speed,
		ConfiguredSpeedMHz: speed,
		PartNumber:         known(extract.Labeled(block, "Part Number")),
		SerialNumber:       known(extract.Labeled(block, "Serial Number")),
	}
}
