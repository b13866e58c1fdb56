// Package inventory defines the normalized records the collectors produce.
package inventory

// NotDetermined is the machine id reported when every identity source fails.
const NotDetermined = "not determined"

// Asset is a pre-registered asset resolved from its serial number.
type Asset struct {
	ID        int64  `json:"asset_id" yaml:"asset_id"`
	CompanyID int64  `json:"company_id" yaml:"company_id"`
	Serial    string `json:"serial" yaml:"serial"`
}

// HardwareProfile is the single identity row of an asset.
type HardwareProfile struct {
	AssetID   int64 `json:"asset_id" yaml:"asset_id"`
	CompanyID int64 `json:"company_id" yaml:"company_id"`

	MachineID    Field[string] `json:"machine_id" yaml:"machine_id"`
	Manufacturer Field[string] `json:"manufacturer" yaml:"manufacturer"`
	Model        Field[string] `json:"model" yaml:"model"`

	CPUID       Field[string] `json:"cpu_id" yaml:"cpu_id"`
	CPUType     Field[string] `json:"cpu_type" yaml:"cpu_type"`
	MemoryTotal Field[int64]  `json:"memory_total" yaml:"memory_total"`
	BIOS        Field[string] `json:"bios" yaml:"bios"`

	TPMManufacturer Field[string] `json:"tpm_manufacturer" yaml:"tpm_manufacturer"`
	TPMVersion      Field[string] `json:"tpm_version" yaml:"tpm_version"`
	TPMActivation   Field[string] `json:"tpm_activation" yaml:"tpm_activation"`
	TPMOwnership    Field[string] `json:"tpm_ownership" yaml:"tpm_ownership"`

	BatteryVendor     Field[string] `json:"battery_vendor" yaml:"battery_vendor"`
	BatteryModel      Field[string] `json:"battery_model" yaml:"battery_model"`
	BatterySerial     Field[string] `json:"battery_serial" yaml:"battery_serial"`
	BatteryVoltage    Field[int64]  `json:"battery_voltage" yaml:"battery_voltage"`
	BatteryCycleCount Field[int64]  `json:"battery_cycle_count" yaml:"battery_cycle_count"`
}

// Battery groups the battery attributes of a HardwareProfile.
type Battery struct {
	Vendor     Field[string]
	Model      Field[string]
	Serial     Field[string]
	Voltage    Field[int64] // millivolts
	CycleCount Field[int64]
}

// UnknownBattery is a battery that exists but could not be read.
func UnknownBattery() Battery { return Battery{} }

// NoBattery is a machine without a battery.
func NoBattery() Battery {
	return Battery{
		Vendor:     Absent[string](),
		Model:      Absent[string](),
		Serial:     Absent[string](),
		Voltage:    Absent[int64](),
		CycleCount: Absent[int64](),
	}
}

// SetBattery copies b into the profile.
func (h *HardwareProfile) SetBattery(b Battery) {
	h.BatteryVendor = b.Vendor
	h.BatteryModel = b.Model
	h.BatterySerial = b.Serial
	h.BatteryVoltage = b.Voltage
	h.BatteryCycleCount = b.CycleCount
}

// TPM groups the TPM attributes of a HardwareProfile.
type TPM struct {
	Manufacturer Field[string]
	Version      Field[string]
	Activation   Field[string]
	Ownership    Field[string]
}

// SetTPM copies t into the profile.
func (h *HardwareProfile) SetTPM(t TPM) {
	h.TPMManufacturer = t.Manufacturer
	h.TPMVersion = t.Version
	h.TPMActivation = t.Activation
	h.TPMOwnership = t.Ownership
}

// DriveRecord describes one parent block device and the partitions folded into it.
type DriveRecord struct {
	AssetID       int64         `json:"asset_id" yaml:"asset_id"`
	DeviceID      string        `json:"device_id" yaml:"device_id"`
	DeviceName    string        `json:"device_name" yaml:"device_name"`
	Partitions    []string      `json:"partitions" yaml:"partitions"`
	Model         Field[string] `json:"model" yaml:"model"`
	SerialNumber  Field[string] `json:"serial_number" yaml:"serial_number"`
	DriveType     Field[string] `json:"drive_type" yaml:"drive_type"`
	InterfaceType Field[string] `json:"interface_type" yaml:"interface_type"`
	SizeBytes     int64         `json:"size_bytes" yaml:"size_bytes"`
}

// GraphicsAdapter describes one display adapter.
type GraphicsAdapter struct {
	AssetID              int64         `json:"asset_id" yaml:"asset_id"`
	Name                 string        `json:"name" yaml:"name"`
	AdapterCompatibility Field[string] `json:"adapter_compatibility" yaml:"adapter_compatibility"`
	DriverVersion        Field[string] `json:"driver_version" yaml:"driver_version"`
	VideoProcessor       Field[string] `json:"video_processor" yaml:"video_processor"`
	HorizontalResolution Field[int64]  `json:"current_horizontal_resolution" yaml:"current_horizontal_resolution"`
	VerticalResolution   Field[int64]  `json:"current_vertical_resolution" yaml:"current_vertical_resolution"`
	RefreshRate          Field[int64]  `json:"current_refresh_rate" yaml:"current_refresh_rate"`
	AdapterRAM           Field[int64]  `json:"adapter_ram" yaml:"adapter_ram"`
	Status               Field[string] `json:"status" yaml:"status"`
}

// MemoryModule describes one occupied memory slot.
type MemoryModule struct {
	AssetID            int64         `json:"asset_id" yaml:"asset_id"`
	SlotNumber         int           `json:"slot_number" yaml:"slot_number"`
	BankLabel          Field[string] `json:"bank_label" yaml:"bank_label"`
	Manufacturer       Field[string] `json:"manufacturer" yaml:"manufacturer"`
	CapacityBytes      int64         `json:"capacity_bytes" yaml:"capacity_bytes"`
	Type               Field[string] `json:"type" yaml:"type"`
	SpeedMHz           Field[int64]  `json:"speed_mhz" yaml:"speed_mhz"`
	ConfiguredSpeedMHz Field[int64]  `json:"configured_speed_mhz" yaml:"configured_speed_mhz"`
	FormFactor         Field[string] `json:"form_factor" yaml:"form_factor"`
	PartNumber         Field[string] `json:"part_number" yaml:"part_number"`
	SerialNumber       Field[string] `json:"serial_number" yaml:"serial_number"`
}

// Link status values of a NetworkAdapter.
const (
	StatusUp   = "Up"
	StatusDown = "Down"
)

// NetworkAdapter describes one OS-visible network interface.
type NetworkAdapter struct {
	AssetID        int64         `json:"asset_id" yaml:"asset_id"`
	AdapterName    string        `json:"adapter_name" yaml:"adapter_name"`
	InterfaceType  string        `json:"interface_type" yaml:"interface_type"`
	MACAddress     Field[string] `json:"mac_address" yaml:"mac_address"`
	IPAddress      Field[string] `json:"ip_address" yaml:"ip_address"`
	SubnetMask     Field[string] `json:"subnet_mask" yaml:"subnet_mask"`
	DefaultGateway Field[string] `json:"default_gateway" yaml:"default_gateway"`
	DHCPEnabled    bool          `json:"dhcp_enabled" yaml:"dhcp_enabled"`
	SpeedMbps      Field[int64]  `json:"speed" yaml:"speed"`
	Status         string        `json:"status" yaml:"status"`
}

// Snapshot is everything collected for one asset in a run.
type Snapshot struct {
	Asset    Asset             `json:"asset" yaml:"asset"`
	RunID    string            `json:"run_id" yaml:"run_id"`
	Platform string            `json:"platform" yaml:"platform"`
	Hardware []HardwareProfile `json:"hardware" yaml:"hardware"`
	Drives   []DriveRecord     `json:"drives" yaml:"drives"`
	Graphics []GraphicsAdapter `json:"graphics" yaml:"graphics"`
	Memory   []MemoryModule    `json:"memory" yaml:"memory"`
	Network  []NetworkAdapter  `json:"network" yaml:"network"`
}
