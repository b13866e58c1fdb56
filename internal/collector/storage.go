package collector

import (
	"context"
	"regexp"
	"slices"
	"strings"

	"github.com/tinkerbelle-io/tb-asset/internal/inventory"
	"github.com/tinkerbelle-io/tb-asset/internal/probe"
)

var (
	nvmePartitionRe = regexp.MustCompile(`^(nvme\d+n\d+)p\d+$`)
	// APFS volumes and their snapshots: disk3s5, disk3s1s1.
	appleSliceRe = regexp.MustCompile(`^(disk\d+)(?:s\d+)+$`)
)

// ParentDevice derives the parent block device of a partition: nvme0n1p2 is
// on nvme0n1, sda1 on sda, disk3s5 on disk3.
func ParentDevice(name string) string {
	if m := nvmePartitionRe.FindStringSubmatch(name); m != nil {
		return m[1]
	}
	if m := appleSliceRe.FindStringSubmatch(name); m != nil {
		return m[1]
	}
	return strings.TrimRight(name, "0123456789")
}

// IsVirtual reports whether name is a loopback or RAM disk.
func IsVirtual(name string) bool {
	return strings.HasPrefix(name, "loop") || strings.HasPrefix(name, "ram")
}

type storageCollector struct{ base }

// Collect folds partitions into one record per physical drive. The drive
// probe runs once per parent device.
func (c *storageCollector) Collect(ctx context.Context, asset inventory.Asset) (int, error) {
	probed := make(map[string]inventory.DriveRecord)
	byID := make(map[string]int)
	var drives []inventory.DriveRecord

	for _, p := range c.strategy.Partitions(ctx) {
		name := strings.TrimPrefix(p.Device, "/dev/")
		if name == "" || IsVirtual(name) {
			continue
		}
		parent := ParentDevice(name)

		rec, ok := probed[parent]
		if !ok {
			rec = c.strategy.Drive(ctx, probe.Device{Parent: parent, Partition: name, Mountpoint: p.Mountpoint})
			probed[parent] = rec
		}

		i, ok := byID[rec.DeviceID]
		if !ok {
			rec.AssetID = asset.ID
			rec.Partitions = nil
			rec.SizeBytes = 0
			drives = append(drives, rec)
			i = len(drives) - 1
			byID[rec.DeviceID] = i
		}

		d := &drives[i]
		if slices.Contains(d.Partitions, name) {
			continue
		}
		d.Partitions = append(d.Partitions, name)
		d.SizeBytes += int64(p.Total)
	}

	if err := c.sink.UpsertDrives(ctx, asset.ID, drives); err != nil {
		return 0, persistErr(err)
	}
	return len(drives), nil
}
