package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tinkerbelle-io/tb-asset/internal/platform"
	"github.com/tinkerbelle-io/tb-asset/internal/precheck"
	"github.com/tinkerbelle-io/tb-asset/internal/store"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Check platform support, network reachability and the database",
	RunE:  runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	p := platform.Detect()
	fmt.Fprintf(out, "Platform:   %s (%s)\n", p, platform.Arch())
	if !p.Supported() {
		return fmt.Errorf("%w: %s", platform.ErrUnsupported, p)
	}

	st, err := store.Open(cfg.Database)
	if err != nil {
		return err
	}
	defer st.Close()

	checker := precheck.Checker{Address: cfg.Precheck.Address, Timeout: cfg.Precheck.Timeout}
	if err := checker.Run(cmd.Context(), st); err != nil {
		fmt.Fprintf(out, "Reachable:  no\n")
		return err
	}
	fmt.Fprintf(out, "Network:    %s ok\n", cfg.Precheck.Address)
	fmt.Fprintf(out, "Database:   %s ok\n", cfg.Database.Driver)
	return nil
}
