package probe

import (
	"context"
	"math"
	"regexp"
	"strings"

	"github.com/tinkerbelle-io/tb-asset/internal/extract"
	"github.com/tinkerbelle-io/tb-asset/internal/inventory"
)

// macFamilies is the order in which hardware address families are tried.
// No single family is present on every platform.
var macFamilies = []Family{FamilyLink, FamilyPacket}

// linkProbes are the per-interface lookups that differ by platform.
type linkProbes struct {
	dhcp  func(ctx context.Context, name string) bool
	speed func(ctx context.Context, name string) inventory.Field[int64]
}

func (b base) adapters(ctx context.Context, gateway inventory.Field[string], p linkProbes) []inventory.NetworkAdapter {
	ifaces, err := b.sys.Interfaces(ctx)
	if err != nil {
		b.log.Debug("interface listing failed", "error", err)
		return nil
	}

	adapters := make([]inventory.NetworkAdapter, 0, len(ifaces))
	for _, iface := range ifaces {
		a := inventory.NetworkAdapter{
			AdapterName:    iface.Name,
			InterfaceType:  guessInterfaceType(iface.Name),
			MACAddress:     resolveMAC(iface.Addrs, macFamilies...),
			DefaultGateway: gateway,
			Status:         inventory.StatusDown,
		}
		if iface.Up {
			a.Status = inventory.StatusUp
		}
		if ip, ok := firstIPv4(iface.Addrs); ok {
			a.IPAddress = inventory.Known(ip.Address)
			a.SubnetMask = inventory.Text(ip.Netmask)
		}
		if p.dhcp != nil {
			a.DHCPEnabled = p.dhcp(ctx, iface.Name)
		}
		if p.speed != nil {
			a.SpeedMbps = p.speed(ctx, iface.Name)
		}
		adapters = append(adapters, a)
	}
	return adapters
}

// resolveMAC returns the first usable hardware address, trying families in order.
func resolveMAC(addrs []Address, families ...Family) inventory.Field[string] {
	for _, fam := range families {
		for _, a := range addrs {
			if a.Family == fam && a.Address != "" && a.Address != "00:00:00:00:00:00" {
				return inventory.Known(a.Address)
			}
		}
	}
	return inventory.Unknown[string]()
}

// firstIPv4 returns the first IPv4 address; aliases are ignored.
func firstIPv4(addrs []Address) (Address, bool) {
	for _, a := range addrs {
		if a.Family == FamilyIPv4 {
			return a, true
		}
	}
	return Address{}, false
}

func guessInterfaceType(name string) string {
	lower := strings.ToLower(name)
	switch {
	case lower == "lo" || lower == "lo0" || strings.HasPrefix(lower, "loopback"):
		return "loopback"
	case strings.HasPrefix(lower, "en") || strings.HasPrefix(lower, "eth"):
		return "ethernet"
	case strings.HasPrefix(lower, "wl") || strings.HasPrefix(lower, "wi-fi") || strings.HasPrefix(lower, "wireless"):
		return "wifi"
	case strings.HasPrefix(lower, "br") || strings.HasPrefix(lower, "docker") || strings.HasPrefix(lower, "bridge") || strings.HasPrefix(lower, "cni"):
		return "bridge"
	case strings.HasPrefix(lower, "tun") || strings.HasPrefix(lower, "utun") || strings.HasPrefix(lower, "wg") || strings.HasPrefix(lower, "tailscale"):
		return "tunnel"
	case strings.HasPrefix(lower, "veth") || strings.HasPrefix(lower, "virbr") || strings.HasPrefix(lower, "vmnet"):
		return "virtual"
	default:
		return "other"
	}
}

// --- Linux ---

var linuxGatewayRe = regexp.MustCompile(`default via ([\d.]+)`)

func (s *linuxStrategy) Network(ctx context.Context) []inventory.NetworkAdapter {
	gateway := inventory.Unknown[string]()
	if out, ok := s.run(ctx, "ip", "route", "show", "default"); ok {
		if m := linuxGatewayRe.FindStringSubmatch(out); m != nil {
			gateway = inventory.Known(m[1])
		}
	}
	return s.adapters(ctx, gateway, linkProbes{dhcp: s.dhcp, speed: s.linkSpeed})
}

// dhcp asks NetworkManager first, then looks for a dhclient lease file.
func (s *linuxStrategy) dhcp(ctx context.Context, name string) bool {
	if out, ok := s.run(ctx, "nmcli", "device", "show", name); ok && hasDHCP4Lease(out) {
		return true
	}
	return s.exists("/var/lib/dhcp/dhclient.*" + name + "*.leases")
}

// hasDHCP4Lease reports whether nmcli lists DHCPv4 lease options, which it
// does only for a device configured by DHCP.
func hasDHCP4Lease(out string) bool {
	for line := range strings.Lines(out) {
		if strings.HasPrefix(trim(line), "DHCP4.OPTION") {
			return true
		}
	}
	return false
}

// linkSpeed reads the negotiated speed in Mb/s. Virtual and down links
// report -1 or fail to read.
func (s *linuxStrategy) linkSpeed(_ context.Context, name string) inventory.Field[int64] {
	v, ok := s.readFile("/sys/class/net/" + name + "/speed").Get()
	if !ok {
		return inventory.Unknown[int64]()
	}
	return inventory.Positive(extract.Integer(v).Or(0))
}

// --- Windows ---

func (s *windowsStrategy) Network(ctx context.Context) []inventory.NetworkAdapter {
	gateway := inventory.Unknown[string]()
	if out, ok := s.run(ctx, "route", "print", "0.0.0.0"); ok {
		gateway = parseRoutePrint(out)
	}
	return s.adapters(ctx, gateway, linkProbes{dhcp: s.dhcp, speed: s.linkSpeeds()})
}

// linkSpeeds reads Win32_NetworkAdapter once and returns a lookup by
// connection name. Speed is reported in bit/s.
func (s *windowsStrategy) linkSpeeds() func(context.Context, string) inventory.Field[int64] {
	var nics []win32NetworkAdapter
	if err := s.wmi.Query("SELECT NetConnectionID, Speed FROM Win32_NetworkAdapter WHERE NetConnectionID IS NOT NULL", &nics); err != nil {
		s.log.Debug("wmi query failed", "class", "Win32_NetworkAdapter", "error", err)
	}
	speeds := make(map[string]uint64, len(nics))
	for _, n := range nics {
		speeds[n.NetConnectionID] = n.Speed
	}
	return func(_ context.Context, name string) inventory.Field[int64] {
		bps, ok := speeds[name]
		if !ok || bps == 0 || bps == math.MaxUint64 {
			return inventory.Unknown[int64]()
		}
		return inventory.Positive(int64(bps / 1_000_000))
	}
}

// parseRoutePrint returns the gateway column of the first 0.0.0.0 route.
func parseRoutePrint(out string) inventory.Field[string] {
	for line := range strings.Lines(out) {
		fields := strings.Fields(line)
		if len(fields) >= 4 && fields[0] == "0.0.0.0" {
			return inventory.Known(fields[2])
		}
	}
	return inventory.Unknown[string]()
}

func (s *windowsStrategy) dhcp(ctx context.Context, name string) bool {
	out, ok := s.run(ctx, "netsh", "interface", "ip", "show", "config", "name="+name)
	if !ok {
		return false
	}
	return extract.Labeled(out, "DHCP enabled").Or("") == "Yes" || strings.Contains(out, "DHCP is enabled")
}

// --- macOS ---

func (s *darwinStrategy) Network(ctx context.Context) []inventory.NetworkAdapter {
	gateway := inventory.Unknown[string]()
	if out, ok := s.run(ctx, "route", "-n", "get", "default"); ok {
		gateway = extract.Labeled(out, "gateway")
	}
	return s.adapters(ctx, gateway, linkProbes{dhcp: s.dhcp, speed: s.linkSpeed})
}

var ifconfigMediaRe = regexp.MustCompile(`\((\d+)(G?)base`)

// linkSpeed reads the negotiated media from ifconfig, e.g.
// "media: autoselect (1000baseT <full-duplex>)".
func (s *darwinStrategy) linkSpeed(ctx context.Context, name string) inventory.Field[int64] {
	out, ok := s.run(ctx, "ifconfig", name)
	if !ok {
		return inventory.Unknown[int64]()
	}
	return parseIfconfigMedia(out)
}

func parseIfconfigMedia(out string) inventory.Field[int64] {
	media, ok := extract.Labeled(out, "media").Get()
	if !ok {
		return inventory.Unknown[int64]()
	}
	m := ifconfigMediaRe.FindStringSubmatch(media)
	if m == nil {
		return inventory.Unknown[int64]()
	}
	n := extract.Integer(m[1]).Or(0)
	if m[2] == "G" {
		n *= 1000
	}
	return inventory.Positive(n)
}

// dhcp reports whether the interface holds a DHCP lease. ipconfig exits
// non-zero for interfaces without one.
func (s *darwinStrategy) dhcp(ctx context.Context, name string) bool {
	out, ok := s.run(ctx, "ipconfig", "getpacket", name)
	return ok && strings.Contains(out, "dhcp_message_type")
}
