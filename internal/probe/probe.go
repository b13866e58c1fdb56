// Package probe implements the per-OS collection strategies. Each strategy
// runs the platform's native diagnostic tools through a runner.Host and
// parses their text output into inventory records.
package probe

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/tinkerbelle-io/tb-asset/internal/inventory"
	"github.com/tinkerbelle-io/tb-asset/internal/platform"
	"github.com/tinkerbelle-io/tb-asset/internal/runner"
)

// DefaultPrivilegedTimeout bounds slow or privileged queries such as
// dmidecode, lshw and system_profiler.
const DefaultPrivilegedTimeout = 30 * time.Second

// Device is a partition and the parent device it belongs to.
type Device struct {
	Parent     string // e.g. "sda", "nvme0n1", "C:"
	Partition  string // e.g. "sda1", "nvme0n1p2", "C:"
	Mountpoint string
}

// Strategy is the set of subsystem probes for one platform. Probes never fail:
// a missing tool or unparseable output degrades to Unknown fields or an
// empty slice.
type Strategy interface {
	Platform() platform.Platform
	Hardware(ctx context.Context) inventory.HardwareProfile
	Partitions(ctx context.Context) []Partition
	Drive(ctx context.Context, dev Device) inventory.DriveRecord
	Graphics(ctx context.Context) []inventory.GraphicsAdapter
	// Memory returns every slot reported, including empty ones.
	Memory(ctx context.Context) []inventory.MemoryModule
	Network(ctx context.Context) []inventory.NetworkAdapter
}

// Options configures a Strategy.
type Options struct {
	Host              runner.Host
	System            System
	WMI               Querier // Windows only; nil selects the native client
	Arch              string  // defaults to platform.Arch()
	PrivilegedTimeout time.Duration
}

// New returns the strategy for p.
func New(p platform.Platform, opts Options) (Strategy, error) {
	if opts.Host == nil {
		opts.Host = runner.NewLocal(0)
	}
	if opts.System == nil {
		opts.System = HostSystem{}
	}
	if opts.Arch == "" {
		opts.Arch = platform.Arch()
	}
	if opts.PrivilegedTimeout <= 0 {
		opts.PrivilegedTimeout = DefaultPrivilegedTimeout
	}

	b := base{
		host:       opts.Host,
		sys:        opts.System,
		arch:       opts.Arch,
		privileged: opts.PrivilegedTimeout,
		log:        slog.Default().With("component", "probe", "platform", string(p)),
	}

	switch p {
	case platform.Linux:
		return &linuxStrategy{base: b}, nil
	case platform.Windows:
		q := opts.WMI
		if q == nil {
			q = nativeWMI()
		}
		return &windowsStrategy{base: b, wmi: q}, nil
	case platform.MacOS:
		return &darwinStrategy{base: b}, nil
	default:
		return nil, fmt.Errorf("%w: %s", platform.ErrUnsupported, p)
	}
}

type base struct {
	host       runner.Host
	sys        System
	arch       string
	privileged time.Duration
	log        *slog.Logger
}

// output runs cmd and returns stdout, or "" and false when the command is
// missing, times out, or exits non-zero.
func (b base) output(ctx context.Context, cmd runner.Command) (string, bool) {
	out, err := runner.Output(ctx, b.host, cmd)
	if err != nil {
		b.log.Debug("probe degraded", "command", cmd.String(), "error", err)
		return "", false
	}
	return out, true
}

// slow runs a command with the privileged timeout.
func (b base) slow(ctx context.Context, name string, args ...string) (string, bool) {
	return b.output(ctx, runner.Cmd(name, args...).WithTimeout(b.privileged))
}

func (b base) run(ctx context.Context, name string, args ...string) (string, bool) {
	return b.output(ctx, runner.Cmd(name, args...))
}

// readFile returns the trimmed content of path, or Unknown.
func (b base) readFile(path string) inventory.Field[string] {
	content, err := b.host.ReadFile(path)
	if err != nil {
		b.log.Debug("probe degraded", "file", path, "error", err)
		return inventory.Unknown[string]()
	}
	return inventory.Known(trim(content))
}

func (b base) exists(pattern string) bool {
	matches, err := b.host.Glob(pattern)
	return err == nil && len(matches) > 0
}

func (b base) Partitions(ctx context.Context) []Partition {
	parts, err := b.sys.Partitions(ctx)
	if err != nil {
		b.log.Debug("partition listing failed", "error", err)
		return nil
	}
	return parts
}

func (b base) memoryTotal(ctx context.Context) inventory.Field[int64] {
	total, err := b.sys.MemoryTotal(ctx)
	if err != nil || total == 0 {
		return inventory.Unknown[int64]()
	}
	return inventory.Known(int64(total))
}

func (b base) cpuModel(ctx context.Context) inventory.Field[string] {
	model, err := b.sys.CPUModel(ctx)
	if err != nil {
		return inventory.Unknown[string]()
	}
	return inventory.Text(trim(model))
}

type linuxStrategy struct{ base }

func (*linuxStrategy) Platform() platform.Platform { return platform.Linux }

type windowsStrategy struct {
	base
	wmi Querier
}

func (*windowsStrategy) Platform() platform.Platform { return platform.Windows }

type darwinStrategy struct{ base }

func (*darwinStrategy) Platform() platform.Platform { return platform.MacOS }
