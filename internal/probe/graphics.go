package probe

import (
	"context"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/tinkerbelle-io/tb-asset/internal/extract"
	"github.com/tinkerbelle-io/tb-asset/internal/inventory"
)

// --- Linux ---

func (s *linuxStrategy) Graphics(ctx context.Context) []inventory.GraphicsAdapter {
	var adapters []inventory.GraphicsAdapter
	if out, ok := s.run(ctx, "lspci"); ok {
		adapters = parseLspciDisplay(out)
	}

	if out, ok := s.slow(ctx, "lshw", "-C", "display"); ok {
		adapters = mergeLshwDisplay(adapters, out)
	}

	if len(adapters) == 0 {
		return nil
	}

	// xrandr reports the active mode of the screen, not of an adapter; it is
	// attributed to the first adapter.
	if out, ok := s.run(ctx, "xrandr", "--current"); ok {
		w, h, rate := parseXrandrMode(out)
		adapters[0].HorizontalResolution = w
		adapters[0].VerticalResolution = h
		adapters[0].RefreshRate = rate
	}
	return adapters
}

func isDisplayController(line string) bool {
	return strings.Contains(line, "VGA compatible controller") ||
		strings.Contains(line, "3D controller") ||
		strings.Contains(line, "Display controller")
}

// parseLspciDisplay returns one adapter per display-class lspci line. The
// name is the listing from the fourth column on.
func parseLspciDisplay(out string) []inventory.GraphicsAdapter {
	var adapters []inventory.GraphicsAdapter
	for line := range strings.Lines(out) {
		if !isDisplayController(line) {
			continue
		}
		name, ok := extract.Columns(line, 3).Get()
		if !ok {
			continue
		}
		adapters = append(adapters, inventory.GraphicsAdapter{
			Name: strings.TrimPrefix(name, "controller: "),
		})
	}
	return adapters
}

var lshwDisplayRe = regexp.MustCompile(`^\s*\*-display`)

// mergeLshwDisplay fills vendor, product and driver details from lshw. The
// n-th lshw display block describes the n-th lspci adapter; extra blocks
// become adapters of their own.
func mergeLshwDisplay(adapters []inventory.GraphicsAdapter, out string) []inventory.GraphicsAdapter {
	i := 0
	for block := range extract.ByHeader(out, lshwDisplayRe) {
		product := known(extract.Labeled(block, "product"))
		if i >= len(adapters) {
			name, ok := product.Get()
			if !ok {
				i++
				continue
			}
			adapters = append(adapters, inventory.GraphicsAdapter{Name: name})
		}

		a := &adapters[i]
		a.AdapterCompatibility = known(extract.Labeled(block, "vendor"))
		a.VideoProcessor = product
		if cfg, ok := extract.Labeled(block, "configuration").Get(); ok {
			a.DriverVersion = configValue(cfg, "driver")
			if mem, ok := configValue(cfg, "memory").Get(); ok {
				a.AdapterRAM = inventory.Positive(extract.Bytes(mem))
			}
		}
		i++
	}
	return adapters
}

// configValue reads key=value from an lshw configuration line.
func configValue(cfg, key string) inventory.Field[string] {
	for _, tok := range strings.Fields(cfg) {
		if v, ok := strings.CutPrefix(tok, key+"="); ok && v != "" {
			return inventory.Known(v)
		}
	}
	return inventory.Unknown[string]()
}

// parseXrandrMode reads the current mode, the one marked with '*'.
func parseXrandrMode(out string) (w, h, rate inventory.Field[int64]) {
	for line := range strings.Lines(out) {
		if !strings.Contains(line, "*") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		w, h = extract.Dimensions(fields[0])
		for _, f := range fields[1:] {
			if strings.Contains(f, "*") {
				rate = roundedRate(strings.TrimRight(f, "*+"))
				break
			}
		}
		return w, h, rate
	}
	return w, h, rate
}

func roundedRate(s string) inventory.Field[int64] {
	f, err := strconv.ParseFloat(trim(s), 64)
	if err != nil || f <= 0 {
		return inventory.Unknown[int64]()
	}
	return inventory.Known(int64(math.Round(f)))
}

// --- Windows ---

func (s *windowsStrategy) Graphics(ctx context.Context) []inventory.GraphicsAdapter {
	out, ok := s.run(ctx, "wmic", "path", "win32_videocontroller", "get",
		"Name,AdapterCompatibility,AdapterRAM,DriverVersion,VideoProcessor,CurrentHorizontalResolution,CurrentVerticalResolution,CurrentRefreshRate,Status",
		"/format:list")
	if ok {
		if adapters := parseVideoControllers(out); len(adapters) > 0 {
			return adapters
		}
	}

	var controllers []win32VideoController
	if err := s.wmi.Query("SELECT Name, AdapterCompatibility, AdapterRAM, DriverVersion, VideoProcessor, CurrentHorizontalResolution, CurrentVerticalResolution, CurrentRefreshRate, Status FROM Win32_VideoController", &controllers); err != nil {
		s.log.Debug("wmi query failed", "class", "Win32_VideoController", "error", err)
		return nil
	}
	return graphicsFromWMI(controllers)
}

// graphicsFromWMI maps Win32_VideoController rows. A zero resolution or
// refresh rate means the controller is not driving a display.
func graphicsFromWMI(controllers []win32VideoController) []inventory.GraphicsAdapter {
	var adapters []inventory.GraphicsAdapter
	for _, c := range controllers {
		name := trim(c.Name)
		if name == "" {
			continue
		}
		adapters = append(adapters, inventory.GraphicsAdapter{
			Name:                 name,
			AdapterCompatibility: inventory.Text(c.AdapterCompatibility),
			DriverVersion:        inventory.Text(c.DriverVersion),
			VideoProcessor:       inventory.Text(c.VideoProcessor),
			HorizontalResolution: inventory.Positive(int64(c.CurrentHorizontalResolution)),
			VerticalResolution:   inventory.Positive(int64(c.CurrentVerticalResolution)),
			RefreshRate:          inventory.Positive(int64(c.CurrentRefreshRate)),
			AdapterRAM:           inventory.Positive(int64(c.AdapterRAM)),
			Status:               inventory.Text(c.Status),
		})
	}
	return adapters
}

func parseVideoControllers(out string) []inventory.GraphicsAdapter {
	var adapters []inventory.GraphicsAdapter
	for block := range extract.ByBlankLine(out) {
		name, ok := inventory.NonEmpty(extract.Labeled(block, "Name")).Get()
		if !ok {
			continue
		}
		number := func(label string) inventory.Field[int64] {
			return extract.Integer(extract.Labeled(block, label).Or(""))
		}
		adapters = append(adapters, inventory.GraphicsAdapter{
			Name:                 name,
			AdapterCompatibility: inventory.NonEmpty(extract.Labeled(block, "AdapterCompatibility")),
			DriverVersion:        inventory.NonEmpty(extract.Labeled(block, "DriverVersion")),
			VideoProcessor:       inventory.NonEmpty(extract.Labeled(block, "VideoProcessor")),
			HorizontalResolution: number("CurrentHorizontalResolution"),
			VerticalResolution:   number("CurrentVerticalResolution"),
			RefreshRate:          number("CurrentRefreshRate"),
			AdapterRAM:           number("AdapterRAM"),
			Status:               inventory.NonEmpty(extract.Labeled(block, "Status")),
		})
	}
	return adapters
}

// --- macOS ---

func (s *darwinStrategy) Graphics(ctx context.Context) []inventory.GraphicsAdapter {
	out, ok := s.slow(ctx, "system_profiler", "SPDisplaysDataType")
	if !ok {
		return nil
	}
	return parseDisplaysDataType(out)
}

var (
	chipsetRe = regexp.MustCompile(`^\s*Chipset Model:`)
	hertzRe   = regexp.MustCompile(`@\s*(\d+(?:\.\d+)?)\s*Hz`)
)

func parseDisplaysDataType(out string) []inventory.GraphicsAdapter {
	var adapters []inventory.GraphicsAdapter
	for block := range extract.ByHeader(out, chipsetRe) {
		name, ok := extract.Labeled(block, "Chipset Model").Get()
		if !ok || name == "" {
			continue
		}
		a := inventory.GraphicsAdapter{
			Name:                 name,
			AdapterCompatibility: extract.Labeled(block, "Vendor"),
			DriverVersion:        extract.LabeledPrefix(block, "Metal"),
			Status:               extract.Labeled(block, "Status"),
		}
		if vram, ok := extract.LabeledPrefix(block, "VRAM").Get(); ok {
			a.AdapterRAM = inventory.Positive(extract.Bytes(vram))
		}
		if res, ok := extract.Labeled(block, "Resolution").Get(); ok {
			a.HorizontalResolution, a.VerticalResolution = extract.Dimensions(res)
		}
		mode := extract.FirstLabeled(block, "UI Looks like", "Resolution").Or("")
		if m := hertzRe.FindStringSubmatch(mode); m != nil {
			a.RefreshRate = roundedRate(m[1])
		}
		adapters = append(adapters, a)
	}
	return adapters
}
