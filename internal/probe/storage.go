package probe

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/tinkerbelle-io/tb-asset/internal/extract"
	"github.com/tinkerbelle-io/tb-asset/internal/inventory"
)

// --- Linux ---

func (s *linuxStrategy) Drive(ctx context.Context, dev Device) inventory.DriveRecord {
	rec := inventory.DriveRecord{
		DeviceID:   dev.Parent,
		DeviceName: dev.Partition,
	}

	if out, ok := s.run(ctx, "udevadm", "info", "--query=all", "--name=/dev/"+dev.Parent); ok {
		props := extract.TrimLinePrefix(out, "E: ")
		rec.Model = known(underscoresToSpaces(extract.Labeled(props, "ID_MODEL")))
		rec.SerialNumber = known(extract.FirstLabeled(props, "ID_SERIAL_SHORT", "ID_SERIAL"))
		rec.InterfaceType = known(extract.Labeled(props, "ID_BUS"))
		rec.DriveType = known(extract.Labeled(props, "ID_TYPE"))
	}

	if !rec.InterfaceType.IsKnown() && strings.HasPrefix(dev.Parent, "nvme") {
		rec.InterfaceType = inventory.Known("nvme")
	}

	switch s.readFile("/sys/block/" + dev.Parent + "/queue/rotational").Or("") {
	case "0":
		rec.DriveType = inventory.Known("SSD")
	case "1":
		rec.DriveType = inventory.Known("HDD")
	}
	return rec
}

func underscoresToSpaces(f inventory.Field[string]) inventory.Field[string] {
	if v, ok := f.Get(); ok {
		return inventory.Known(strings.ReplaceAll(v, "_", " "))
	}
	return f
}

// --- Windows ---

// Drive maps a drive letter to its physical disk and reads the disk's
// Win32_DiskDrive attributes.
func (s *windowsStrategy) Drive(ctx context.Context, dev Device) inventory.DriveRecord {
	rec := inventory.DriveRecord{
		DeviceID:   dev.Parent,
		DeviceName: dev.Partition,
	}

	letter := strings.TrimSuffix(strings.TrimRight(dev.Partition, `\`), ":")
	if len(letter) != 1 {
		return rec
	}

	out, ok := s.run(ctx, "powershell", "-NoProfile", "-NonInteractive", "-Command",
		fmt.Sprintf("(Get-Partition -DriveLetter %s).DiskNumber", letter))
	if !ok {
		return rec
	}
	index, ok := extract.Integer(firstLine(out)).Get()
	if !ok {
		return rec
	}
	rec.DeviceID = `\\.\PHYSICALDRIVE` + strconv.FormatInt(index, 10)

	out, ok = s.run(ctx, "wmic", "diskdrive", "where", "Index="+strconv.FormatInt(index, 10),
		"get", "Model,SerialNumber,InterfaceType,MediaType", "/format:list")
	if ok {
		rec.Model = known(extract.Labeled(out, "Model"))
		rec.SerialNumber = known(extract.Labeled(out, "SerialNumber"))
		rec.InterfaceType = known(extract.Labeled(out, "InterfaceType"))
		rec.DriveType = known(extract.Labeled(out, "MediaType"))
		return rec
	}

	var disks []win32DiskDrive
	q := fmt.Sprintf("SELECT Model, SerialNumber, InterfaceType, MediaType FROM Win32_DiskDrive WHERE Index = %d", index)
	if err := s.wmi.Query(q, &disks); err != nil || len(disks) == 0 {
		s.log.Debug("wmi query failed", "class", "Win32_DiskDrive", "index", index, "error", err)
		return rec
	}
	d := disks[0]
	rec.Model = known(inventory.Known(d.Model))
	rec.SerialNumber = known(inventory.Known(d.SerialNumber))
	rec.InterfaceType = known(inventory.Known(d.InterfaceType))
	rec.DriveType = known(inventory.Known(d.MediaType))
	return rec
}

// --- macOS ---

func (s *darwinStrategy) Drive(ctx context.Context, dev Device) inventory.DriveRecord {
	rec := inventory.DriveRecord{
		DeviceID:   dev.Parent,
		DeviceName: dev.Partition,
	}

	if out, ok := s.slow(ctx, "system_profiler", "SPStorageDataType"); ok {
		if block, found := storageBlock(out, dev.Parent); found {
			rec.Model = known(extract.FirstLabeled(block, "Device Name", "Media Name"))
			rec.SerialNumber = known(extract.Labeled(block, "Serial Number"))
			rec.InterfaceType = known(extract.Labeled(block, "Protocol"))
			rec.DriveType = known(extract.FirstLabeled(block, "Medium Type", "Media Type"))
		}
	}

	if !rec.SerialNumber.IsKnown() && dev.Partition != "" {
		if out, ok := s.run(ctx, "diskutil", "info", dev.Partition); ok {
			rec.SerialNumber = known(extract.Labeled(out, "Disk / Partition UUID"))
		}
	}
	return rec
}

// storageBlock returns the first SPStorageDataType volume block whose BSD
// name is id or one of its slices, so disk1 matches disk1s2 but not disk10s1.
func storageBlock(out, id string) (string, bool) {
	for block := range extract.ByBlankLine(out) {
		bsd, ok := extract.Labeled(block, "BSD Name").Get()
		if !ok {
			continue
		}
		if bsd == id || strings.HasPrefix(bsd, id+"s") {
			return block, true
		}
	}
	return "", false
}
