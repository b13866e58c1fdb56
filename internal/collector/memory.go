package collector

import (
	"context"

	"github.com/tinkerbelle-io/tb-asset/internal/inventory"
)

type memoryCollector struct{ base }

// Collect skips slots without a module; a zero capacity means the slot is empty.
func (c *memoryCollector) Collect(ctx context.Context, asset inventory.Asset) (int, error) {
	var modules []inventory.MemoryModule
	for _, m := range c.strategy.Memory(ctx) {
		if m.CapacityBytes <= 0 {
			continue
		}
		m.AssetID = asset.ID
		modules = append(modules, m)
	}

	if err := c.sink.UpsertMemory(ctx, asset.ID, modules); err != nil {
		return 0, persistErr(err)
	}
	return len(modules), nil
}
