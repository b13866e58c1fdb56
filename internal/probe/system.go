package probe

import (
	"context"
	"fmt"
	"net"
	"runtime"
	"strings"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/disk"
	"github.com/shirou/gopsutil/v4/mem"
	psnet "github.com/shirou/gopsutil/v4/net"
	"github.com/siderolabs/go-smbios/smbios"
)

// Partition is a mounted partition as reported by the OS.
type Partition struct {
	Device     string // full device path, e.g. /dev/sda1 or C:
	Mountpoint string
	Fstype     string
	Total      uint64 // bytes, 0 when usage could not be read
}

// Family identifies the kind of an interface address.
type Family string

const (
	FamilyIPv4 Family = "inet"
	FamilyIPv6 Family = "inet6"
	// FamilyLink is a link-layer (AF_LINK) hardware address.
	FamilyLink Family = "link"
	// FamilyPacket is a packet-socket (AF_PACKET) hardware address.
	FamilyPacket Family = "packet"
)

// Address is one address bound to an interface.
type Address struct {
	Family  Family
	Address string
	Netmask string // IPv4 only
}

// Interface is an OS-visible network interface.
type Interface struct {
	Name  string
	Up    bool
	Addrs []Address
}

// Firmware holds values read from the SMBIOS tables.
type Firmware struct {
	BIOSVersion string
	SystemUUID  string
}

// System is the library-backed source of host facts that do not come from
// parsing command output.
type System interface {
	Partitions(ctx context.Context) ([]Partition, error)
	MemoryTotal(ctx context.Context) (uint64, error)
	CPUModel(ctx context.Context) (string, error)
	Interfaces(ctx context.Context) ([]Interface, error)
	Firmware(ctx context.Context) (Firmware, error)
}

// HostSystem reads host facts through gopsutil and go-smbios.
type HostSystem struct{}

// Partitions lists physical partitions with their usage totals.
func (HostSystem) Partitions(ctx context.Context) ([]Partition, error) {
	stats, err := disk.PartitionsWithContext(ctx, false)
	if err != nil {
		return nil, fmt.Errorf("list partitions: %w", err)
	}

	parts := make([]Partition, 0, len(stats))
	for _, s := range stats {
		p := Partition{
			Device:     s.Device,
			Mountpoint: s.Mountpoint,
			Fstype:     s.Fstype,
		}
		if usage, err := disk.UsageWithContext(ctx, s.Mountpoint); err == nil {
			p.Total = usage.Total
		}
		parts = append(parts, p)
	}
	return parts, nil
}

// MemoryTotal returns installed memory in bytes.
func (HostSystem) MemoryTotal(ctx context.Context) (uint64, error) {
	vm, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return 0, fmt.Errorf("virtual memory: %w", err)
	}
	return vm.Total, nil
}

// CPUModel returns the model name of the first CPU.
func (HostSystem) CPUModel(ctx context.Context) (string, error) {
	infos, err := cpu.InfoWithContext(ctx)
	if err != nil {
		return "", fmt.Errorf("cpu info: %w", err)
	}
	if len(infos) == 0 {
		return "", fmt.Errorf("cpu info: no processors reported")
	}
	return infos[0].ModelName, nil
}

// Interfaces lists every interface, including down ones. Hardware addresses
// are tagged with the family the OS reports them under.
func (HostSystem) Interfaces(ctx context.Context) ([]Interface, error) {
	stats, err := psnet.InterfacesWithContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("list interfaces: %w", err)
	}

	hwFamily := FamilyLink
	if runtime.GOOS == "linux" {
		hwFamily = FamilyPacket
	}

	ifaces := make([]Interface, 0, len(stats))
	for _, s := range stats {
		iface := Interface{Name: s.Name}
		for _, flag := range s.Flags {
			if flag == "up" {
				iface.Up = true
			}
		}
		if s.HardwareAddr != "" {
			iface.Addrs = append(iface.Addrs, Address{Family: hwFamily, Address: s.HardwareAddr})
		}
		for _, a := range s.Addrs {
			if addr, ok := parseCIDR(a.Addr); ok {
				iface.Addrs = append(iface.Addrs, addr)
			}
		}
		ifaces = append(ifaces, iface)
	}
	return ifaces, nil
}

func parseCIDR(s string) (Address, bool) {
	ip, ipnet, err := net.ParseCIDR(s)
	if err != nil {
		ip = net.ParseIP(strings.TrimSpace(s))
		if ip == nil {
			return Address{}, false
		}
	}
	if v4 := ip.To4(); v4 != nil {
		addr := Address{Family: FamilyIPv4, Address: v4.String()}
		if ipnet != nil && len(ipnet.Mask) == net.IPv4len {
			addr.Netmask = net.IP(ipnet.Mask).String()
		}
		return addr, true
	}
	return Address{Family: FamilyIPv6, Address: ip.String()}, true
}

// Firmware reads the BIOS version and system UUID from SMBIOS.
func (HostSystem) Firmware(context.Context) (Firmware, error) {
	s, err := smbios.New()
	if err != nil {
		return Firmware{}, fmt.Errorf("read smbios: %w", err)
	}
	return firmwareFrom(s), nil
}

func firmwareFrom(s *smbios.SMBIOS) Firmware {
	return Firmware{
		BIOSVersion: strings.TrimSpace(s.BIOSInformation.Version),
		SystemUUID:  strings.TrimSpace(s.SystemInformation.UUID),
	}
}
