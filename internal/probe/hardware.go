package probe

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/tinkerbelle-io/tb-asset/internal/extract"
	"github.com/tinkerbelle-io/tb-asset/internal/inventory"
)

// validUUID rejects empty, nil and all-F product UUIDs that firmware uses as
// placeholders.
func validUUID(s string) bool {
	u, err := uuid.Parse(s)
	if err != nil || u == uuid.Nil {
		return false
	}
	return strings.Trim(strings.ReplaceAll(s, "-", ""), "fF") != ""
}

func unknownTPM() inventory.TPM { return inventory.TPM{} }

// --- Linux ---

func (s *linuxStrategy) Hardware(ctx context.Context) inventory.HardwareProfile {
	firmware := sync.OnceValues(func() (Firmware, error) {
		return s.sys.Firmware(ctx)
	})

	h := inventory.HardwareProfile{
		Manufacturer: known(s.readFile("/sys/class/dmi/id/sys_vendor")),
		Model:        known(s.readFile("/sys/class/dmi/id/product_name")),
		CPUType:      inventory.Known(s.arch),
		MemoryTotal:  s.memoryTotal(ctx),
	}

	if cpuinfo, err := s.host.ReadFile("/proc/cpuinfo"); err == nil {
		h.CPUID = extract.Labeled(cpuinfo, "model name")
	}

	h.BIOS = known(s.readFile("/sys/class/dmi/id/bios_version"))
	if !h.BIOS.IsKnown() {
		if fw, err := firmware(); err == nil {
			h.BIOS = inventory.Text(fw.BIOSVersion)
		}
	}

	h.SetTPM(s.tpm())
	h.SetBattery(s.battery())
	h.MachineID = s.machineID(firmware)
	return h
}

func (s *linuxStrategy) tpm() inventory.TPM {
	const dir = "/sys/class/tpm/tpm0"
	t := unknownTPM()
	if !s.exists(dir) {
		return t
	}
	t.Manufacturer = known(s.readFile(dir + "/manufacturer_name"))
	if major, ok := s.readFile(dir + "/tpm_version_major").Get(); ok && major != "" {
		minor := s.readFile(dir + "/tpm_version_minor").Or("0")
		if minor == "" {
			minor = "0"
		}
		t.Version = inventory.Known(major + "." + minor)
	}
	return t
}

// battery reports presence only. When a battery exists its attributes are
// left Unknown, even if sysfs could supply them.
func (s *linuxStrategy) battery() inventory.Battery {
	if s.exists("/sys/class/power_supply/BAT*") {
		return inventory.UnknownBattery()
	}
	return inventory.NoBattery()
}

func (s *linuxStrategy) machineID(firmware func() (Firmware, error)) inventory.Field[string] {
	if id, ok := s.readFile("/sys/class/dmi/id/product_uuid").Get(); ok && validUUID(id) {
		return inventory.Known(id)
	}
	if fw, err := firmware(); err == nil && validUUID(fw.SystemUUID) {
		return inventory.Known(fw.SystemUUID)
	}
	if id, ok := s.readFile("/etc/machine-id").Get(); ok && id != "" {
		return inventory.Known(id)
	}
	return inventory.Known(inventory.NotDetermined)
}

// --- Windows ---

func (s *windowsStrategy) Hardware(ctx context.Context) inventory.HardwareProfile {
	h := inventory.HardwareProfile{
		CPUID:       s.cpuModel(ctx),
		CPUType:     inventory.Known(s.arch),
		MemoryTotal: s.memoryTotal(ctx),
	}

	var cs []win32ComputerSystem
	if err := s.wmi.Query("SELECT Manufacturer, Model FROM Win32_ComputerSystem", &cs); err == nil && len(cs) > 0 {
		h.Manufacturer = known(inventory.Known(cs[0].Manufacturer))
		h.Model = known(inventory.Known(cs[0].Model))
	} else if err != nil {
		s.log.Debug("wmi query failed", "class", "Win32_ComputerSystem", "error", err)
	}

	var bios []win32BIOS
	if err := s.wmi.Query("SELECT SMBIOSBIOSVersion, SerialNumber FROM Win32_BIOS", &bios); err != nil {
		s.log.Debug("wmi query failed", "class", "Win32_BIOS", "error", err)
	} else if len(bios) > 0 {
		h.BIOS = inventory.Text(trim(bios[0].SMBIOSBIOSVersion))
	}

	h.SetBattery(s.battery())
	h.SetTPM(s.tpm(ctx))
	h.MachineID = s.machineID(bios)
	return h
}

func (s *windowsStrategy) battery() inventory.Battery {
	var bats []win32Battery
	if err := s.wmi.Query("SELECT Name, DeviceID, DesignVoltage FROM Win32_Battery", &bats); err != nil {
		s.log.Debug("wmi query failed", "class", "Win32_Battery", "error", err)
		return inventory.UnknownBattery()
	}
	if len(bats) == 0 {
		return inventory.NoBattery()
	}
	// Win32_Battery has no manufacturer, serial or cycle count properties.
	b := inventory.UnknownBattery()
	b.Model = inventory.Text(trim(bats[0].Name))
	b.Voltage = inventory.Positive(int64(bats[0].DesignVoltage))
	return b
}

const tpmQuery = `Get-CimInstance -Namespace root/cimv2/Security/MicrosoftTpm -ClassName Win32_Tpm | ` +
	`Select-Object -Property ManufacturerIdTxt, ManufacturerID, ManufacturerVersion, SpecVersion, IsActivated_InitialValue, IsOwned_InitialValue | ` +
	`ConvertTo-Json`

func (s *windowsStrategy) tpm(ctx context.Context) inventory.TPM {
	out, ok := s.run(ctx, "powershell", "-NoProfile", "-NonInteractive", "-Command", tpmQuery)
	if !ok {
		return unknownTPM()
	}
	return parseWindowsTPM(out)
}

func parseWindowsTPM(out string) inventory.TPM {
	out = trim(out)
	if out == "" {
		return inventory.TPM{
			Manufacturer: inventory.Absent[string](),
			Version:      inventory.Absent[string](),
			Activation:   inventory.Absent[string](),
			Ownership:    inventory.Absent[string](),
		}
	}

	var obj map[string]any
	if strings.HasPrefix(out, "[") {
		var list []map[string]any
		if err := json.Unmarshal([]byte(out), &list); err != nil || len(list) == 0 {
			return unknownTPM()
		}
		obj = list[0]
	} else if err := json.Unmarshal([]byte(out), &obj); err != nil {
		return unknownTPM()
	}

	t := inventory.TPM{
		Manufacturer: inventory.FirstKnown(jsonText(obj, "ManufacturerIdTxt"), jsonText(obj, "ManufacturerID")),
		Version:      jsonText(obj, "ManufacturerVersion"),
		Activation:   jsonText(obj, "IsActivated_InitialValue"),
		Ownership:    jsonText(obj, "IsOwned_InitialValue"),
	}
	if spec, ok := jsonText(obj, "SpecVersion").Get(); ok {
		// SpecVersion is "2.0, 0, 1.59"; the first element is the TPM version.
		major, _, _ := strings.Cut(spec, ",")
		t.Version = inventory.Known(trim(major))
	}
	return t
}

func jsonText(obj map[string]any, key string) inventory.Field[string] {
	switch v := obj[key].(type) {
	case string:
		return inventory.Text(trim(v))
	case bool:
		if v {
			return inventory.Known("Yes")
		}
		return inventory.Known("No")
	case float64:
		return inventory.Known(strconv.FormatFloat(v, 'f', -1, 64))
	case nil:
		return inventory.Unknown[string]()
	default:
		return inventory.Known(fmt.Sprint(v))
	}
}

func (s *windowsStrategy) machineID(bios []win32BIOS) inventory.Field[string] {
	var products []win32ComputerSystemProduct
	if err := s.wmi.Query("SELECT UUID FROM Win32_ComputerSystemProduct", &products); err == nil {
		for _, p := range products {
			if validUUID(trim(p.UUID)) {
				return inventory.Known(trim(p.UUID))
			}
		}
	}
	for _, b := range bios {
		serial := trim(b.SerialNumber)
		if serial != "" && !strings.Contains(serial, "O.E.M.") {
			return inventory.Known(serial)
		}
	}
	return inventory.Known(inventory.NotDetermined)
}

// --- macOS ---

func (s *darwinStrategy) Hardware(ctx context.Context) inventory.HardwareProfile {
	h := inventory.HardwareProfile{
		CPUType: inventory.Known(s.arch),
	}

	if out, ok := s.run(ctx, "sysctl", "-n", "machdep.cpu.brand_string"); ok && firstLine(out) != "" {
		h.CPUID = inventory.Known(firstLine(out))
	} else {
		h.CPUID = s.cpuModel(ctx)
	}

	if out, ok := s.run(ctx, "sysctl", "-n", "hw.memsize"); ok && extract.Integer(out).IsKnown() {
		h.MemoryTotal = extract.Integer(out)
	} else {
		h.MemoryTotal = s.memoryTotal(ctx)
	}

	hw, hwOK := s.slow(ctx, "system_profiler", "SPHardwareDataType")
	if hwOK {
		h.Manufacturer = inventory.Known("Apple Inc.")
		h.Model = extract.FirstLabeled(hw, "Model Name", "Model Identifier")
		h.BIOS = extract.FirstLabeled(hw, "Boot ROM Version", "System Firmware Version", "SMC Version (system)")
	}

	h.SetBattery(s.battery(ctx))
	h.SetTPM(s.tpm(ctx))
	h.MachineID = s.machineID(ctx, hw)
	return h
}

func (s *darwinStrategy) battery(ctx context.Context) inventory.Battery {
	out, ok := s.run(ctx, "ioreg", "-rc", "AppleSmartBattery")
	if !ok {
		return inventory.UnknownBattery()
	}
	if trim(out) == "" {
		return inventory.NoBattery()
	}
	return parseIORegBattery(out)
}

func parseIORegBattery(out string) inventory.Battery {
	value := func(key string) inventory.Field[string] {
		return extract.Unquote(extract.Labeled(out, `"`+key+`"`))
	}
	number := func(key string) inventory.Field[int64] {
		if v, ok := value(key).Get(); ok {
			return extract.Integer(v)
		}
		return inventory.Unknown[int64]()
	}
	return inventory.Battery{
		Vendor:     known(value("Manufacturer")),
		Model:      known(value("DeviceName")),
		Serial:     known(inventory.FirstKnown(value("BatterySerialNumber"), value("Serial"))),
		Voltage:    number("Voltage"),
		CycleCount: number("CycleCount"),
	}
}

func (s *darwinStrategy) tpm(ctx context.Context) inventory.TPM {
	out, ok := s.slow(ctx, "system_profiler", "SPiBridgeDataType")
	if !ok {
		return unknownTPM()
	}
	return parseIBridge(out)
}

// parseIBridge treats the T2 security chip as the TPM equivalent.
func parseIBridge(out string) inventory.TPM {
	if !strings.Contains(out, "Apple T2 Security Chip") {
		none := inventory.Known("None")
		return inventory.TPM{Manufacturer: none, Version: none, Activation: none, Ownership: none}
	}
	version := extract.Labeled(out, "Model Identifier")
	if !version.IsKnown() {
		version = inventory.Known("T2")
	}
	return inventory.TPM{
		Manufacturer: inventory.Known("Apple"),
		Version:      version,
		Activation:   inventory.Known("Present"),
		Ownership:    inventory.Known("Managed by macOS"),
	}
}

func (s *darwinStrategy) machineID(ctx context.Context, hw string) inventory.Field[string] {
	if serial := known(extract.FirstLabeled(hw, "Serial Number (system)", "Serial Number")); serial.IsKnown() {
		return serial
	}
	if out, ok := s.run(ctx, "ioreg", "-rd1", "-c", "IOPlatformExpertDevice"); ok {
		if id, ok := extract.Unquote(extract.Labeled(out, `"IOPlatformUUID"`)).Get(); ok && validUUID(id) {
			return inventory.Known(id)
		}
	}
	return inventory.Known(inventory.NotDetermined)
}
