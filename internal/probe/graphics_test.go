package probe

import (
	"context"
	"testing"

	"github.com/tinkerbelle-io/tb-asset/internal/platform"
	"github.com/tinkerbelle-io/tb-asset/internal/runner/runnertest"
)

func TestLinuxGraphics(t *testing.T) {
	host := runnertest.New().
		On("lspci", loadTestData(t, "lspci.txt")).
		On("lshw -C display", loadTestData(t, "lshw-display.txt")).
		On("xrandr --current", loadTestData(t, "xrandr.txt"))
	s := newStrategy(t, platform.Linux, host, fakeSystem{}, nil)

	adapters := s.Graphics(context.Background())
	if len(adapters) != 2 {
		t.Fatalf("expected 2 adapters, got %d", len(adapters))
	}

	intel := adapters[0]
	if intel.Name != "Intel Corporation UHD Graphics 620 (rev 07)" {
		t.Errorf("Name = %q", intel.Name)
	}
	if intel.AdapterCompatibility.String() != "Intel Corporation" {
		t.Errorf("AdapterCompatibility = %q", intel.AdapterCompatibility.String())
	}
	if intel.VideoProcessor.String() != "UHD Graphics 620" {
		t.Errorf("VideoProcessor = %q", intel.VideoProcessor.String())
	}
	if intel.DriverVersion.String() != "i915" {
		t.Errorf("DriverVersion = %q, want i915", intel.DriverVersion.String())
	}
	if intel.HorizontalResolution.String() != "1920" || intel.VerticalResolution.String() != "1080" {
		t.Errorf("resolution = %sx%s, want 1920x1080", intel.HorizontalResolution, intel.VerticalResolution)
	}
	if intel.RefreshRate.String() != "60" {
		t.Errorf("RefreshRate = %q, want 60", intel.RefreshRate.String())
	}
	if intel.AdapterRAM.IsKnown() {
		t.Errorf("AdapterRAM = %q, want unknown", intel.AdapterRAM.String())
	}

	nvidia := adapters[1]
	if nvidia.Name != "NVIDIA Corporation GP108M [GeForce MX150] (rev a1)" {
		t.Errorf("Name = %q", nvidia.Name)
	}
	if nvidia.AdapterRAM.String() != "2147483648" {
		t.Errorf("AdapterRAM = %q, want 2147483648", nvidia.AdapterRAM.String())
	}
	if nvidia.HorizontalResolution.IsKnown() {
		t.Errorf("HorizontalResolution = %q, want unknown on the second adapter", nvidia.HorizontalResolution.String())
	}
}

func TestLinuxGraphics_LspciOnly(t *testing.T) {
	host := runnertest.New().On("lspci", loadTestData(t, "lspci.txt"))
	s := newStrategy(t, platform.Linux, host, fakeSystem{}, nil)

	adapters := s.Graphics(context.Background())
	if len(adapters) != 2 {
		t.Fatalf("expected 2 adapters, got %d", len(adapters))
	}
	for _, a := range adapters {
		if a.DriverVersion.IsKnown() || a.RefreshRate.IsKnown() {
			t.Errorf("%s: expected unknown driver and refresh rate", a.Name)
		}
	}
}

func TestLinuxGraphics_NoTools(t *testing.T) {
	host := runnertest.New()
	s := newStrategy(t, platform.Linux, host, fakeSystem{}, nil)

	if adapters := s.Graphics(context.Background()); len(adapters) != 0 {
		t.Errorf("expected no adapters, got %d", len(adapters))
	}
	if host.Ran("xrandr") {
		t.Error("xrandr should not run without an adapter")
	}
}

func TestParseXrandrMode(t *testing.T) {
	tests := []struct {
		name       string
		in         string
		w, h, rate string
	}{
		{"fixture", "   1920x1080     59.93*+  60.01\n", "1920", "1080", "60"},
		{"preferred elsewhere", "   2560x1440     59.95 +  74.97*\n", "2560", "1440", "75"},
		{"no current mode", "   1920x1080     60.00 +\n", "Unknown", "Unknown", "Unknown"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, h, rate := parseXrandrMode(tt.in)
			if w.String() != tt.w || h.String() != tt.h || rate.String() != tt.rate {
				t.Errorf("parseXrandrMode = %s, %s, %s; want %s, %s, %s", w, h, rate, tt.w, tt.h, tt.rate)
			}
		})
	}
}

func TestWindowsGraphics(t *testing.T) {
	host := runnertest.New().On(
		"wmic path win32_videocontroller get Name,AdapterCompatibility,AdapterRAM,DriverVersion,VideoProcessor,CurrentHorizontalResolution,CurrentVerticalResolution,CurrentRefreshRate,Status /format:list",
		loadTestData(t, "wmic-videocontroller.txt"))
	s := newStrategy(t, platform.Windows, host, fakeSystem{}, nil)

	adapters := s.Graphics(context.Background())
	if len(adapters) != 2 {
		t.Fatalf("expected 2 adapters, got %d", len(adapters))
	}

	intel := adapters[0]
	if intel.Name != "Intel(R) UHD Graphics 620" {
		t.Errorf("Name = %q", intel.Name)
	}
	if intel.AdapterRAM.String() != "1073741824" {
		t.Errorf("AdapterRAM = %q", intel.AdapterRAM.String())
	}
	if intel.RefreshRate.String() != "60" {
		t.Errorf("RefreshRate = %q, want 60", intel.RefreshRate.String())
	}
	if intel.Status.String() != "OK" {
		t.Errorf("Status = %q, want OK", intel.Status.String())
	}

	nvidia := adapters[1]
	if nvidia.HorizontalResolution.IsKnown() {
		t.Errorf("HorizontalResolution = %q, want unknown", nvidia.HorizontalResolution.String())
	}
	if nvidia.DriverVersion.String() != "31.0.15.1694" {
		t.Errorf("DriverVersion = %q", nvidia.DriverVersion.String())
	}
}

func TestDarwinGraphics(t *testing.T) {
	host := runnertest.New().On("system_profiler SPDisplaysDataType", loadTestData(t, "sp-displays.txt"))
	s := newStrategy(t, platform.MacOS, host, fakeSystem{}, nil)

	adapters := s.Graphics(context.Background())
	if len(adapters) != 2 {
		t.Fatalf("expected 2 adapters, got %d", len(adapters))
	}

	intel := adapters[0]
	if intel.Name != "Intel UHD Graphics 630" {
		t.Errorf("Name = %q", intel.Name)
	}
	if intel.AdapterRAM.String() != "1610612736" {
		t.Errorf("AdapterRAM = %q, want 1610612736", intel.AdapterRAM.String())
	}
	if intel.DriverVersion.String() != "Supported, Metal GPUFamily macOS 2" {
		t.Errorf("DriverVersion = %q", intel.DriverVersion.String())
	}
	if intel.HorizontalResolution.IsKnown() {
		t.Errorf("HorizontalResolution = %q, want unknown", intel.HorizontalResolution.String())
	}

	amd := adapters[1]
	if amd.AdapterCompatibility.String() != "AMD (0x1002)" {
		t.Errorf("AdapterCompatibility = %q", amd.AdapterCompatibility.String())
	}
	if amd.AdapterRAM.String() != "4294967296" {
		t.Errorf("AdapterRAM = %q, want 4294967296", amd.AdapterRAM.String())
	}
	if amd.HorizontalResolution.String() != "3072" || amd.VerticalResolution.String() != "1920" {
		t.Errorf("resolution = %sx%s, want 3072x1920", amd.HorizontalResolution, amd.VerticalResolution)
	}
	if amd.RefreshRate.String() != "60" {
		t.Errorf("RefreshRate = %q, want 60", amd.RefreshRate.String())
	}
}

func TestParseLspciDisplay(t *testing.T) {
	adapters := parseLspciDisplay(loadTestData(t, "lspci.txt"))
	want := []string{
		"Intel Corporation UHD Graphics 620 (rev 07)",
		"NVIDIA Corporation GP108M [GeForce MX150] (rev a1)",
	}
	if len(adapters) != len(want) {
		t.Fatalf("expected %d adapters, got %d", len(want), len(adapters))
	}
	for i, name := range want {
		if adapters[i].Name != name {
			t.Errorf("[%d].Name = %q, want %q", i, adapters[i].Name, name)
		}
	}
}

func TestWindowsGraphics_WMIFallback(t *testing.T) {
	q := fakeWMI{video: []win32VideoController{
		{
			Name:                        "NVIDIA GeForce RTX 3060",
			AdapterCompatibility:        "NVIDIA",
			AdapterRAM:                  4293918720,
			DriverVersion:               "31.0.15.3623",
			VideoProcessor:              "NVIDIA GeForce RTX 3060",
			CurrentHorizontalResolution: 2560,
			CurrentVerticalResolution:   1440,
			CurrentRefreshRate:          144,
			Status:                      "OK",
		},
		{Name: "Microsoft Remote Display Adapter", Status: "OK"},
		{Name: "  "},
	}}
	s := newStrategy(t, platform.Windows, runnertest.New(), fakeSystem{}, q)

	adapters := s.Graphics(context.Background())
	if len(adapters) != 2 {
		t.Fatalf("expected 2 adapters, got %d", len(adapters))
	}
	a := adapters[0]
	checks := []struct {
		name string
		got  string
		want string
	}{
		{"AdapterCompatibility", a.AdapterCompatibility.String(), "NVIDIA"},
		{"AdapterRAM", a.AdapterRAM.String(), "4293918720"},
		{"DriverVersion", a.DriverVersion.String(), "31.0.15.3623"},
		{"HorizontalResolution", a.HorizontalResolution.String(), "2560"},
		{"VerticalResolution", a.VerticalResolution.String(), "1440"},
		{"RefreshRate", a.RefreshRate.String(), "144"},
		{"Status", a.Status.String(), "OK"},
	}
	for _, c := range checks {
		if c.got != c.want {
			t.Errorf("%s = %q, want %q", c.name, c.got, c.want)
		}
	}
	remote := adapters[1]
	if remote.HorizontalResolution.IsKnown() || remote.AdapterRAM.IsKnown() {
		t.Errorf("remote adapter resolution/ram = %s/%s, want unknown", remote.HorizontalResolution, remote.AdapterRAM)
	}
}
