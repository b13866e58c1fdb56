// tb-asset inventories the machine it runs on and stores the result against
// the asset registered under the machine's serial number.
//
// Usage:
//
//	tb-asset                               # prompt for the serial, collect, store
//	tb-asset collect --serial SN12345      # non-interactive
//	tb-asset collect --dry-run --format yaml
//	tb-asset check                         # network and database reachability
package main

import "github.com/tinkerbelle-io/tb-asset/cmd"

var version = "dev"

func main() {
	cmd.Execute(version)
}
