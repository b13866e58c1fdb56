// Package collector runs the subsystem collectors for one resolved asset and
// hands each collector's batch to a Sink.
package collector

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/tinkerbelle-io/tb-asset/internal/inventory"
	"github.com/tinkerbelle-io/tb-asset/internal/probe"
)

// ErrPersistence wraps any error returned by a Sink.
var ErrPersistence = errors.New("persistence failed")

// Collector names, in run order.
const (
	Hardware = "hardware"
	Storage  = "storage"
	Graphics = "graphics"
	Memory   = "memory"
	Network  = "network"
)

// Names lists every collector in the order Run executes them.
var Names = []string{Hardware, Storage, Graphics, Memory, Network}

// Sink persists normalized batches. Each call is an independent upsert for
// one asset; an empty batch is a no-op.
type Sink interface {
	UpsertHardware(ctx context.Context, assetID int64, rows []inventory.HardwareProfile) error
	UpsertDrives(ctx context.Context, assetID int64, rows []inventory.DriveRecord) error
	UpsertGraphics(ctx context.Context, assetID int64, rows []inventory.GraphicsAdapter) error
	UpsertMemory(ctx context.Context, assetID int64, rows []inventory.MemoryModule) error
	UpsertNetwork(ctx context.Context, assetID int64, rows []inventory.NetworkAdapter) error
}

// Collector gathers one subsystem and persists it.
type Collector interface {
	// Name returns the subsystem name (e.g., "memory").
	Name() string
	// Collect probes the subsystem and upserts the batch, returning the
	// number of records emitted.
	Collect(ctx context.Context, asset inventory.Asset) (int, error)
}

// New returns all five collectors bound to a strategy and sink.
func New(strategy probe.Strategy, sink Sink) []Collector {
	b := base{strategy: strategy, sink: sink}
	return []Collector{
		&hardwareCollector{b.named(Hardware)},
		&storageCollector{b.named(Storage)},
		&graphicsCollector{b.named(Graphics)},
		&memoryCollector{b.named(Memory)},
		&networkCollector{b.named(Network)},
	}
}

// Select keeps the collectors named in names, preserving run order. An empty
// names list selects everything.
func Select(all []Collector, names []string) ([]Collector, error) {
	if len(names) == 0 {
		return all, nil
	}
	want := make(map[string]bool, len(names))
	for _, n := range names {
		n = strings.ToLower(strings.TrimSpace(n))
		if !slices.Contains(Names, n) {
			return nil, fmt.Errorf("unknown collector %q (valid: %s)", n, strings.Join(Names, ", "))
		}
		want[n] = true
	}
	var selected []Collector
	for _, c := range all {
		if want[c.Name()] {
			selected = append(selected, c)
		}
	}
	return selected, nil
}

type base struct {
	name     string
	strategy probe.Strategy
	sink     Sink
	log      *slog.Logger
}

func (b base) named(name string) base {
	b.name = name
	b.log = slog.Default().With("component", "collector", "subsystem", name)
	return b
}

func (b base) Name() string { return b.name }

func persistErr(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrPersistence, err)
}

// Result is the outcome of one collector.
type Result struct {
	Name     string
	Records  int
	Err      error
	Duration time.Duration
}

// Report holds the results of a run in execution order.
type Report struct {
	Results []Result
}

// Failed returns the results that ended in an error.
func (r Report) Failed() []Result {
	var failed []Result
	for _, res := range r.Results {
		if res.Err != nil {
			failed = append(failed, res)
		}
	}
	return failed
}

// Err joins the errors of every failed collector, or returns nil.
func (r Report) Err() error {
	var errs []error
	for _, res := range r.Failed() {
		errs = append(errs, fmt.Errorf("%s: %w", res.Name, res.Err))
	}
	return errors.Join(errs...)
}

// Run executes collectors one after another. A failing or panicking collector
// is recorded and the next one still runs.
func Run(ctx context.Context, asset inventory.Asset, collectors []Collector) Report {
	log := slog.Default().With("component", "collector", "asset_id", asset.ID)

	var report Report
	for _, c := range collectors {
		start := time.Now()
		log.Debug("collector starting", "subsystem", c.Name())

		n, err := collectOne(ctx, c, asset)
		res := Result{Name: c.Name(), Records: n, Err: err, Duration: time.Since(start)}
		report.Results = append(report.Results, res)

		if err != nil {
			log.Error("collector failed", "subsystem", c.Name(), "error", err)
			continue
		}
		log.Info("collector finished", "subsystem", c.Name(), "records", n, "duration", res.Duration.Round(time.Millisecond))
	}
	return report
}

func collectOne(ctx context.Context, c Collector, asset inventory.Asset) (n int, err error) {
	defer func() {
		if r := recover(); r != nil {
			n, err = 0, fmt.Errorf("%s collector panicked: %v", c.Name(), r)
		}
	}()
	return c.Collect(ctx, asset)
}
