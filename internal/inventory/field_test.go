package inventory

import (
	"encoding/json"
	"testing"

	"gopkg.in/yaml.v3"
)

func TestFieldStates(t *testing.T) {
	var zero Field[string]
	if zero.State() != StateUnknown {
		t.Errorf("zero Field state = %s, want unknown", zero.State())
	}
	if zero.String() != Sentinel {
		t.Errorf("zero Field String() = %q, want %q", zero.String(), Sentinel)
	}

	empty := Known("")
	if !empty.IsKnown() {
		t.Error("Known(\"\") should be known")
	}
	if empty.String() != "" {
		t.Errorf("Known(\"\").String() = %q, want empty", empty.String())
	}

	if Absent[string]().String() != "" {
		t.Errorf("Absent String() = %q, want empty", Absent[string]().String())
	}
	if got := Known(int64(42)).Or(7); got != 42 {
		t.Errorf("Or() = %d, want 42", got)
	}
	if got := Unknown[int64]().Or(7); got != 7 {
		t.Errorf("Or() on unknown = %d, want 7", got)
	}
}

func TestFieldValue(t *testing.T) {
	v, _ := Unknown[string]().Value()
	if v != Sentinel {
		t.Errorf("unknown text Value() = %v, want %q", v, Sentinel)
	}
	v, _ = Unknown[int64]().Value()
	if v != nil {
		t.Errorf("unknown number Value() = %v, want nil", v)
	}
	v, _ = Absent[string]().Value()
	if v != nil {
		t.Errorf("absent text Value() = %v, want nil", v)
	}
	v, _ = Known(int64(8192)).Value()
	if v != int64(8192) {
		t.Errorf("known number Value() = %v, want 8192", v)
	}
}

func TestFieldMarshal(t *testing.T) {
	rec := struct {
		A Field[string] `json:"a" yaml:"a"`
		B Field[int64]  `json:"b" yaml:"b"`
		C Field[string] `json:"c" yaml:"c"`
	}{A: Known("DDR4"), C: Absent[string]()}

	data, err := json.Marshal(rec)
	if err != nil {
		t.Fatalf("json.Marshal: %v", err)
	}
	if string(data) != `{"a":"DDR4","b":null,"c":null}` {
		t.Errorf("json = %s", data)
	}

	out, err := yaml.Marshal(rec)
	if err != nil {
		t.Fatalf("yaml.Marshal: %v", err)
	}
	if string(out) != "a: DDR4\nb: null\nc: null\n" {
		t.Errorf("yaml = %q", out)
	}
}

func TestHelpers(t *testing.T) {
	if Text("").IsKnown() {
		t.Error("Text(\"\") should be unknown")
	}
	if NonEmpty(Known("")).IsKnown() {
		t.Error("NonEmpty(Known(\"\")) should be unknown")
	}
	if NonEmpty(Absent[string]()).State() != StateAbsent {
		t.Error("NonEmpty should keep absent")
	}
	if Positive(0).IsKnown() || !Positive(5).IsKnown() {
		t.Error("Positive mismatch")
	}
	got := FirstKnown(Unknown[string](), Known("b"), Known("c"))
	if v, _ := got.Get(); v != "b" {
		t.Errorf("FirstKnown = %q, want b", v)
	}
}

func TestNoBattery(t *testing.T) {
	var h HardwareProfile
	h.SetBattery(NoBattery())
	if h.BatteryVendor.State() != StateAbsent || h.BatteryCycleCount.State() != StateAbsent {
		t.Error("NoBattery should leave battery fields absent")
	}
	h.SetBattery(UnknownBattery())
	if h.BatteryVendor.String() != Sentinel {
		t.Errorf("UnknownBattery vendor = %q, want %q", h.BatteryVendor.String(), Sentinel)
	}
}
