package probe

// Querier runs a WQL query and fills dst, a pointer to a slice of structs
// whose field names match the selected properties.
type Querier interface {
	Query(query string, dst any) error
}

type win32Battery struct {
	Name          string
	DeviceID      string
	DesignVoltage uint64
}

type win32BIOS struct {
	SMBIOSBIOSVersion string
	SerialNumber      string
}

type win32ComputerSystem struct {
	Manufacturer string
	Model        string
}

type win32ComputerSystemProduct struct {
	UUID string
}

type win32NetworkAdapter struct {
	NetConnectionID string
	Speed           uint64
}

type win32PhysicalMemory struct {
	BankLabel            string
	Capacity             uint64
	ConfiguredClockSpeed uint32
	DeviceLocator        string
	FormFactor           uint16
	Manufacturer         string
	MemoryType           uint16
	PartNumber           string
	SerialNumber         string
	SMBIOSMemoryType     uint32
	Speed                uint32
}

type win32VideoController struct {
	Name                        string
	AdapterCompatibility        string
	AdapterRAM                  uint32
	DriverVersion               string
	VideoProcessor              string
	CurrentHorizontalResolution uint32
	CurrentVerticalResolution   uint32
	CurrentRefreshRate          uint32
	Status                      string
}

type win32DiskDrive struct {
	Model         string
	SerialNumber  string
	InterfaceType string
	MediaType     string
}
