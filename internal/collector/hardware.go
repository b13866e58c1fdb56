package collector

import (
	"context"

	"github.com/tinkerbelle-io/tb-asset/internal/inventory"
)

type hardwareCollector struct{ base }

// Collect emits exactly one profile per asset.
func (c *hardwareCollector) Collect(ctx context.Context, asset inventory.Asset) (int, error) {
	h := c.strategy.Hardware(ctx)
	h.AssetID = asset.ID
	h.CompanyID = asset.CompanyID

	if err := c.sink.UpsertHardware(ctx, asset.ID, []inventory.HardwareProfile{h}); err != nil {
		return 0, persistErr(err)
	}
	return 1, nil
}
