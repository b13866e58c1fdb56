package collector

import (
	"context"

	"github.com/tinkerbelle-io/tb-asset/internal/inventory"
)

type networkCollector struct{ base }

// Collect emits every interface, including ones that are down or have no
// address.
func (c *networkCollector) Collect(ctx context.Context, asset inventory.Asset) (int, error) {
	seen := make(map[string]bool)
	var adapters []inventory.NetworkAdapter
	for _, a := range c.strategy.Network(ctx) {
		if seen[a.AdapterName] {
			continue
		}
		seen[a.AdapterName] = true
		a.AssetID = asset.ID
		adapters = append(adapters, a)
	}

	if err := c.sink.UpsertNetwork(ctx, asset.ID, adapters); err != nil {
		return 0, persistErr(err)
	}
	return len(adapters), nil
}
