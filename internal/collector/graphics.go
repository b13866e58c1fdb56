package collector

import (
	"context"

	"github.com/tinkerbelle-io/tb-asset/internal/inventory"
)

type graphicsCollector struct{ base }

func (c *graphicsCollector) Collect(ctx context.Context, asset inventory.Asset) (int, error) {
	seen := make(map[string]bool)
	var adapters []inventory.GraphicsAdapter
	for _, a := range c.strategy.Graphics(ctx) {
		// Name is the natural key; identical adapters collapse into one row.
		if seen[a.Name] {
			c.log.Debug("duplicate adapter skipped", "name", a.Name)
			continue
		}
		seen[a.Name] = true
		a.AssetID = asset.ID
		adapters = append(adapters, a)
	}

	if err := c.sink.UpsertGraphics(ctx, asset.ID, adapters); err != nil {
		return 0, persistErr(err)
	}
	return len(adapters), nil
}
