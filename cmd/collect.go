package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/tinkerbelle-io/tb-asset/internal/collector"
	"github.com/tinkerbelle-io/tb-asset/internal/inventory"
	"github.com/tinkerbelle-io/tb-asset/internal/platform"
	"github.com/tinkerbelle-io/tb-asset/internal/precheck"
	"github.com/tinkerbelle-io/tb-asset/internal/probe"
	"github.com/tinkerbelle-io/tb-asset/internal/runner"
	"github.com/tinkerbelle-io/tb-asset/internal/store"
)

var (
	flagSerial       string
	flagDryRun       bool
	flagFormat       string
	flagOnly         []string
	flagSkipPrecheck bool
)

var errEmptySerial = errors.New("serial number is required")

var collectCmd = &cobra.Command{
	Use:   "collect",
	Short: "Collect the inventory of this machine and store it",
	Long: `Resolve the asset registered under --serial (prompted for when omitted),
run the hardware, storage, graphics, memory and network collectors in turn,
and upsert each batch into the asset database.

With --dry-run nothing is resolved or stored; the snapshot is printed instead.`,
	Example: `  tb-asset collect --serial SN12345
  tb-asset collect --dry-run --format yaml --only memory,storage`,
	RunE: runCollect,
}

func init() {
	addCollectFlags(collectCmd)
	rootCmd.AddCommand(collectCmd)
}

func addCollectFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&flagSerial, "serial", "", "Asset serial number (prompted for when empty)")
	cmd.Flags().BoolVar(&flagDryRun, "dry-run", false, "Collect and print the snapshot without touching the database")
	cmd.Flags().StringVar(&flagFormat, "format", formatJSON, "Dry-run output format: json, yaml")
	cmd.Flags().StringSliceVar(&flagOnly, "only", nil, "Run only these collectors: "+strings.Join(collector.Names, ", "))
	cmd.Flags().BoolVar(&flagSkipPrecheck, "skip-precheck", false, "Skip the network and database reachability checks")
}

func runCollect(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := checkFormat(flagFormat); err != nil {
		return err
	}
	if _, err := collector.Select(nil, flagOnly); err != nil {
		return err
	}

	p := platform.Detect()
	if !p.Supported() {
		return fmt.Errorf("%w: %s", platform.ErrUnsupported, p)
	}

	runID := uuid.NewString()
	log := slog.Default().With("component", "collect", "run_id", runID, "platform", p.String())

	strategy, err := probe.New(p, probe.Options{
		Host:              runner.NewLocal(cfg.Timeouts.Command),
		PrivilegedTimeout: cfg.Timeouts.Privileged,
	})
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if flagDryRun {
		asset := inventory.Asset{Serial: strings.TrimSpace(flagSerial)}
		capture := collector.NewCapture(asset, runID, p.String())
		collectors, err := collector.Select(collector.New(strategy, capture), flagOnly)
		if err != nil {
			return err
		}
		report := collector.Run(ctx, asset, collectors)
		logFailures(log, report)
		return writeSnapshot(cmd.OutOrStdout(), capture.Snapshot, flagFormat)
	}

	serial, err := readSerial(os.Stdin, cmd.ErrOrStderr(), flagSerial, term.IsTerminal(int(os.Stdin.Fd())))
	if err != nil {
		return err
	}

	st, err := store.Open(cfg.Database)
	if err != nil {
		return err
	}
	defer st.Close()

	if cfg.Precheck.Enabled && !flagSkipPrecheck {
		checker := precheck.Checker{Address: cfg.Precheck.Address, Timeout: cfg.Precheck.Timeout}
		if err := checker.Run(ctx, st); err != nil {
			return fmt.Errorf("precheck: %w", err)
		}
	}
	if cfg.Database.AutoMigrate {
		if err := st.Migrate(ctx); err != nil {
			return err
		}
	}

	asset, err := st.Resolve(ctx, serial)
	if err != nil {
		return err
	}
	log.Info("asset resolved", "asset_id", asset.ID, "company_id", asset.CompanyID)

	collectors, err := collector.Select(collector.New(strategy, st), flagOnly)
	if err != nil {
		return err
	}
	report := collector.Run(ctx, asset, collectors)
	logFailures(log, report)
	printReport(cmd.OutOrStdout(), asset, report)
	return nil
}

// readSerial returns the --serial value, or reads one line from in. The
// prompt is written only when in is a terminal.
func readSerial(in io.Reader, prompt io.Writer, flagValue string, interactive bool) (string, error) {
	if s := strings.TrimSpace(flagValue); s != "" {
		return s, nil
	}
	if interactive {
		fmt.Fprint(prompt, "Please enter the serial: ")
	}
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read serial: %w", err)
	}
	serial := strings.TrimSpace(line)
	if serial == "" {
		return "", errEmptySerial
	}
	return serial, nil
}

// logFailures reports failed collectors. Persistence failures do not fail
// the run; each batch is independent.
func logFailures(log *slog.Logger, report collector.Report) {
	for _, res := range report.Failed() {
		attrs := []any{"subsystem", res.Name, "error", res.Err}
		if errors.Is(res.Err, collector.ErrPersistence) {
			log.Warn("batch not stored", attrs...)
			continue
		}
		log.Warn("collector failed", attrs...)
	}
}

func printReport(w io.Writer, asset inventory.Asset, report collector.Report) {
	fmt.Fprintf(w, "Asset:      %d (company %d, serial %s)\n", asset.ID, asset.CompanyID, asset.Serial)
	for _, res := range report.Results {
		status := "ok"
		if res.Err != nil {
			status = "failed: " + res.Err.Error()
		}
		fmt.Fprintf(w, "%-11s %d record(s), %s\n", res.Name+":", res.Records, status)
	}
}
