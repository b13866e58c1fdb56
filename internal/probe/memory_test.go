package probe

import (
	"context"
	"errors"
	"testing"

	"github.com/tinkerbelle-io/tb-asset/internal/platform"
	"github.com/tinkerbelle-io/tb-asset/internal/runner/runnertest"
)

func TestLinuxMemory(t *testing.T) {
	host := runnertest.New().On("dmidecode --type memory", loadTestData(t, "dmidecode-memory.txt"))
	s := newStrategy(t, platform.Linux, host, fakeSystem{}, nil)

	modules := s.Memory(context.Background())
	if len(modules) != 3 {
		t.Fatalf("expected 3 slots, got %d", len(modules))
	}

	first := modules[0]
	if first.SlotNumber != 1 {
		t.Errorf("SlotNumber = %d, want 1", first.SlotNumber)
	}
	if first.BankLabel.String() != "BANK 0" {
		t.Errorf("BankLabel = %q, want BANK 0", first.BankLabel.String())
	}
	if first.CapacityBytes != 8<<30 {
		t.Errorf("CapacityBytes = %d, want %d", first.CapacityBytes, int64(8<<30))
	}
	if first.Type.String() != "DDR4" {
		t.Errorf("Type = %q, want DDR4", first.Type.String())
	}
	if first.SpeedMHz.String() != "2400" || first.ConfiguredSpeedMHz.String() != "2133" {
		t.Errorf("speed = %s/%s, want 2400/2133", first.SpeedMHz, first.ConfiguredSpeedMHz)
	}
	if first.FormFactor.String() != "SODIMM" {
		t.Errorf("FormFactor = %q, want SODIMM", first.FormFactor.String())
	}
	if first.PartNumber.String() != "M471A1K43CB1-CRC" {
		t.Errorf("PartNumber = %q", first.PartNumber.String())
	}

	empty := modules[1]
	if empty.SlotNumber != 2 || empty.CapacityBytes != 0 {
		t.Errorf("empty slot = %d/%d, want 2/0", empty.SlotNumber, empty.CapacityBytes)
	}
	if empty.Manufacturer.IsKnown() || empty.SpeedMHz.IsKnown() {
		t.Errorf("empty slot manufacturer/speed = %s/%s, want unknown", empty.Manufacturer, empty.SpeedMHz)
	}

	third := modules[2]
	if third.SlotNumber != 3 || third.CapacityBytes != 16<<30 {
		t.Errorf("third slot = %d/%d", third.SlotNumber, third.CapacityBytes)
	}
	if third.ConfiguredSpeedMHz.String() != "2400" {
		t.Errorf("ConfiguredSpeedMHz = %q, want 2400", third.ConfiguredSpeedMHz.String())
	}

	if c, ok := host.Call("dmidecode"); !ok || c.Timeout != DefaultPrivilegedTimeout {
		t.Errorf("dmidecode timeout = %v, want %v", c.Timeout, DefaultPrivilegedTimeout)
	}
}

func TestLinuxMemory_Denied(t *testing.T) {
	host := runnertest.New().OnExit("dmidecode --type memory", 1, "Permission denied")
	s := newStrategy(t, platform.Linux, host, fakeSystem{}, nil)

	if modules := s.Memory(context.Background()); len(modules) != 0 {
		t.Errorf("expected no modules, got %d", len(modules))
	}
}

func TestWindowsMemory(t *testing.T) {
	host := runnertest.New().On(
		"wmic memorychip get BankLabel,Capacity,ConfiguredClockSpeed,DeviceLocator,FormFactor,Manufacturer,MemoryType,PartNumber,SerialNumber,SMBIOSMemoryType,Speed /format:list",
		loadTestData(t, "wmic-memorychip.txt"))
	s := newStrategy(t, platform.Windows, host, fakeSystem{}, nil)

	modules := s.Memory(context.Background())
	if len(modules) != 2 {
		t.Fatalf("expected 2 modules, got %d", len(modules))
	}

	tests := []struct {
		field string
		got   string
		want  string
	}{
		{"[0].BankLabel", modules[0].BankLabel.String(), "BANK 0"},
		{"[0].Type", modules[0].Type.String(), "DDR4"},
		{"[0].FormFactor", modules[0].FormFactor.String(), "SODIMM"},
		{"[0].SpeedMHz", modules[0].SpeedMHz.String(), "2667"},
		{"[0].ConfiguredSpeedMHz", modules[0].ConfiguredSpeedMHz.String(), "2400"},
		{"[0].SerialNumber", modules[0].SerialNumber.String(), "3A1B2C4D"},
		{"[1].BankLabel", modules[1].BankLabel.String(), "DIMM 2"},
		{"[1].Type", modules[1].Type.String(), "DDR3"},
		{"[1].FormFactor", modules[1].FormFactor.String(), "DIMM"},
		{"[1].ConfiguredSpeedMHz", modules[1].ConfiguredSpeedMHz.String(), "Unknown"},
		{"[1].SerialNumber", modules[1].SerialNumber.String(), "Unknown"},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("%s = %q, want %q", tt.field, tt.got, tt.want)
		}
	}
	if modules[1].CapacityBytes != 16<<30 {
		t.Errorf("[1].CapacityBytes = %d", modules[1].CapacityBytes)
	}
}

func TestDarwinMemory_Slots(t *testing.T) {
	host := runnertest.New().On("system_profiler SPMemoryDataType", loadTestData(t, "sp-memory-intel.txt"))
	s := newStrategy(t, platform.MacOS, host, fakeSystem{}, nil)

	modules := s.Memory(context.Background())
	if len(modules) != 2 {
		t.Fatalf("expected 2 modules, got %d", len(modules))
	}
	m := modules[1]
	if m.SlotNumber != 2 || m.BankLabel.String() != "BANK 2/ChannelB-DIMM0" {
		t.Errorf("slot = %d %q", m.SlotNumber, m.BankLabel.String())
	}
	if m.CapacityBytes != 8<<30 {
		t.Errorf("CapacityBytes = %d", m.CapacityBytes)
	}
	if m.PartNumber.String() != "MT40A1G16KD-062E:E" {
		t.Errorf("PartNumber = %q", m.PartNumber.String())
	}
	if m.SerialNumber.IsKnown() {
		t.Errorf("SerialNumber = %q, want unknown", m.SerialNumber.String())
	}
	if m.SpeedMHz.String() != "2667" {
		t.Errorf("SpeedMHz = %q, want 2667", m.SpeedMHz.String())
	}
	if m.ConfiguredSpeedMHz.String() != "2667" {
		t.Errorf("ConfiguredSpeedMHz = %q, want 2667", m.ConfiguredSpeedMHz.String())
	}
}

func TestDarwinMemory_Unified(t *testing.T) {
	host := runnertest.New().On("system_profiler SPMemoryDataType", loadTestData(t, "sp-memory-apple.txt"))
	s := newStrategy(t, platform.MacOS, host, fakeSystem{}, nil)

	modules := s.Memory(context.Background())
	if len(modules) != 1 {
		t.Fatalf("expected 1 module, got %d", len(modules))
	}
	m := modules[0]
	if m.CapacityBytes != 16<<30 {
		t.Errorf("CapacityBytes = %d, want %d", m.CapacityBytes, int64(16<<30))
	}
	if m.Type.String() != "LPDDR5" || m.Manufacturer.String() != "Hynix" {
		t.Errorf("Type/Manufacturer = %s/%s", m.Type, m.Manufacturer)
	}
	if m.BankLabel.IsKnown() {
		t.Errorf("BankLabel = %q, want unknown", m.BankLabel.String())
	}
}

func TestWindowsMemory_WMIFallback(t *testing.T) {
	q := fakeWMI{memory: []win32PhysicalMemory{
		{
			BankLabel:            "BANK 0",
			Capacity:             8 << 30,
			ConfiguredClockSpeed: 2400,
			DeviceLocator:        "ChannelA-DIMM0",
			FormFactor:           12,
			Manufacturer:         "Samsung",
			MemoryType:           0,
			PartNumber:           "M471A1K43CB1-CTD    ",
			SerialNumber:         "12345678",
			SMBIOSMemoryType:     26,
			Speed:                2667,
		},
		{
			DeviceLocator: "ChannelB-DIMM0",
			Capacity:      16 << 30,
			MemoryType:    24,
			Manufacturer:  "Unknown",
		},
	}}
	s := newStrategy(t, platform.Windows, runnertest.New(), fakeSystem{}, q)

	modules := s.Memory(context.Background())
	if len(modules) != 2 {
		t.Fatalf("expected 2 modules, got %d", len(modules))
	}
	checks := []struct {
		name string
		got  string
		want string
	}{
		{"[0].BankLabel", modules[0].BankLabel.String(), "BANK 0"},
		{"[0].Type", modules[0].Type.String(), "DDR4"},
		{"[0].FormFactor", modules[0].FormFactor.String(), "SODIMM"},
		{"[0].SpeedMHz", modules[0].SpeedMHz.String(), "2667"},
		{"[0].ConfiguredSpeedMHz", modules[0].ConfiguredSpeedMHz.String(), "2400"},
		{"[0].PartNumber", modules[0].PartNumber.String(), "M471A1K43CB1-CTD"},
		{"[1].BankLabel", modules[1].BankLabel.String(), "ChannelB-DIMM0"},
		{"[1].Type", modules[1].Type.String(), "DDR3"},
		{"[1].Manufacturer", modules[1].Manufacturer.String(), "Unknown"},
		{"[1].SpeedMHz", modules[1].SpeedMHz.String(), "Unknown"},
		{"[1].FormFactor", modules[1].FormFactor.String(), "Unknown"},
	}
	for _, c := range checks {
		if c.got != c.want {
			t.Errorf("%s = %q, want %q", c.name, c.got, c.want)
		}
	}
	if modules[0].SlotNumber != 1 || modules[1].SlotNumber != 2 {
		t.Errorf("slots = %d/%d, want 1/2", modules[0].SlotNumber, modules[1].SlotNumber)
	}
	if modules[1].CapacityBytes != 16<<30 {
		t.Errorf("[1].CapacityBytes = %d", modules[1].CapacityBytes)
	}
}

func TestWindowsMemory_NoSource(t *testing.T) {
	s := newStrategy(t, platform.Windows, runnertest.New(), fakeSystem{}, fakeWMI{err: errors.New("access denied")})
	if modules := s.Memory(context.Background()); len(modules) != 0 {
		t.Errorf("Memory() = %v, want none", modules)
	}
}
