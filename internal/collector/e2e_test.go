package collector

import (
	"context"
	"reflect"
	"testing"

	"github.com/tinkerbelle-io/tb-asset/internal/inventory"
	"github.com/tinkerbelle-io/tb-asset/internal/platform"
	"github.com/tinkerbelle-io/tb-asset/internal/probe"
	"github.com/tinkerbelle-io/tb-asset/internal/runner/runnertest"
)

// hostSystem is a fixed probe.System.
type hostSystem struct {
	partitions []probe.Partition
	ifaces     []probe.Interface
}

func (h hostSystem) Partitions(context.Context) ([]probe.Partition, error) { return h.partitions, nil }
func (h hostSystem) MemoryTotal(context.Context) (uint64, error)           { return 8 << 30, nil }
func (h hostSystem) CPUModel(context.Context) (string, error)              { return "", nil }
func (h hostSystem) Interfaces(context.Context) ([]probe.Interface, error) { return h.ifaces, nil }
func (h hostSystem) Firmware(context.Context) (probe.Firmware, error)      { return probe.Firmware{}, nil }

func linuxStrategy(t *testing.T, host *runnertest.Host, sys hostSystem) probe.Strategy {
	t.Helper()
	s, err := probe.New(platform.Linux, probe.Options{Host: host, System: sys, Arch: "x86_64"})
	if err != nil {
		t.Fatalf("probe.New: %v", err)
	}
	return s
}

func TestLinux_HardwareCPUModel(t *testing.T) {
	host := runnertest.New().File("/proc/cpuinfo", "processor : 0\nmodel name : Intel(R) Core(TM) i7\n")
	sink := &recordingSink{}

	report := Run(context.Background(), testAsset, New(linuxStrategy(t, host, hostSystem{}), sink)[:1])
	if err := report.Err(); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got := sink.hardware[0].CPUID.String(); got != "Intel(R) Core(TM) i7" {
		t.Errorf("cpu_id = %q, want %q", got, "Intel(R) Core(TM) i7")
	}
}

func TestLinux_StorageExcludesLoop(t *testing.T) {
	host := runnertest.New().
		On("udevadm info --query=all --name=/dev/sda", "E: ID_MODEL=ST1000DM010\nE: ID_BUS=ata\n").
		File("/sys/block/sda/queue/rotational", "1\n")
	sys := hostSystem{partitions: []probe.Partition{
		{Device: "/dev/sda1", Mountpoint: "/boot"},
		{Device: "/dev/sda2", Mountpoint: "/"},
		{Device: "/dev/loop0", Mountpoint: "/snap/core20/1"},
	}}
	sink := &recordingSink{}

	n, err := New(linuxStrategy(t, host, sys), sink)[1].Collect(context.Background(), testAsset)
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}
	if n != 1 || sink.drives[0].DeviceID != "sda" {
		t.Fatalf("drives = %+v, want only sda", sink.drives)
	}
	if sink.drives[0].DriveType.String() != "HDD" {
		t.Errorf("DriveType = %q, want HDD", sink.drives[0].DriveType.String())
	}
	if host.Ran("loop0") {
		t.Error("a command was run for loop0")
	}
}

func TestLinux_MemoryEmptySlot(t *testing.T) {
	dmi := "Handle 0x0011, DMI type 17, 40 bytes\nMemory Device\n\tSize: No Module Installed\n\tLocator: DIMM 0\n"
	host := runnertest.New().On("dmidecode --type memory", dmi)
	sink := &recordingSink{}

	n, err := New(linuxStrategy(t, host, hostSystem{}), sink)[3].Collect(context.Background(), testAsset)
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}
	if n != 0 || len(sink.memory) != 0 {
		t.Errorf("emitted %d modules, want 0", n)
	}
}

func TestLinux_NetworkWithoutIPv4(t *testing.T) {
	sys := hostSystem{ifaces: []probe.Interface{{
		Name:  "eth1",
		Addrs: []probe.Address{{Family: probe.FamilyPacket, Address: "52:54:00:12:34:56"}},
	}}}
	sink := &recordingSink{}

	n, err := New(linuxStrategy(t, runnertest.New(), sys), sink)[4].Collect(context.Background(), testAsset)
	if err != nil || n != 1 {
		t.Fatalf("Collect = %d, %v; want 1, nil", n, err)
	}
	a := sink.network[0]
	if a.MACAddress.String() != "52:54:00:12:34:56" {
		t.Errorf("mac_address = %q", a.MACAddress.String())
	}
	if a.IPAddress.String() != inventory.Sentinel {
		t.Errorf("ip_address = %q, want %q", a.IPAddress.String(), inventory.Sentinel)
	}
	if a.DHCPEnabled {
		t.Error("dhcp_enabled = true with no evidence of DHCP")
	}
}

func TestLinux_Idempotent(t *testing.T) {
	host := runnertest.New().
		File("/proc/cpuinfo", "model name : Intel(R) Core(TM) i7\n").
		On("dmidecode --type memory", "Memory Device\n\tSize: 8 GB\n\tSpeed: 3200 MT/s\n\tType: DDR4\n").
		On("lspci", "00:02.0 VGA compatible controller: Intel Corporation Device 9a49\n")
	sys := hostSystem{ifaces: []probe.Interface{{Name: "lo", Up: true}}}

	first, second := &recordingSink{}, &recordingSink{}
	Run(context.Background(), testAsset, New(linuxStrategy(t, host, sys), first))
	Run(context.Background(), testAsset, New(linuxStrategy(t, host, sys), second))

	if !reflect.DeepEqual(first, second) {
		t.Errorf("runs differ:\n%+v\n%+v", first, second)
	}
}
