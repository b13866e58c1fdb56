package collector

import (
	"context"

	"github.com/tinkerbelle-io/tb-asset/internal/inventory"
)

// Capture is a Sink that keeps every batch in memory. It backs dry runs.
type Capture struct {
	Snapshot inventory.Snapshot
}

// NewCapture returns an empty capture for asset.
func NewCapture(asset inventory.Asset, runID, platform string) *Capture {
	return &Capture{Snapshot: inventory.Snapshot{
		Asset:    asset,
		RunID:    runID,
		Platform: platform,
	}}
}

func (c *Capture) UpsertHardware(_ context.Context, _ int64, rows []inventory.HardwareProfile) error {
	c.Snapshot.Hardware = append(c.Snapshot.Hardware, rows...)
	return nil
}

func (c *Capture) UpsertDrives(_ context.Context, _ int64, rows []inventory.DriveRecord) error {
	c.Snapshot.Drives = append(c.Snapshot.Drives, rows...)
	return nil
}

func (c *Capture) UpsertGraphics(_ context.Context, _ int64, rows []inventory.GraphicsAdapter) error {
	c.Snapshot.Graphics = append(c.Snapshot.Graphics, rows...)
	return nil
}

func (c *Capture) UpsertMemory(_ context.Context, _ int64, rows []inventory.MemoryModule) error {
	c.Snapshot.Memory = append(c.Snapshot.Memory, rows...)
	return nil
}

func (c *Capture) UpsertNetwork(_ context.Context, _ int64, rows []inventory.NetworkAdapter) error {
	c.Snapshot.Network = append(c.Snapshot.Network, rows...)
	return nil
}
