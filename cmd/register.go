package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tinkerbelle-io/tb-asset/internal/store"
)

var flagCompanyID int64

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Register an asset serial in the database",
	Long: `Add an asset under --serial so that collect can resolve it. Mostly useful
with the sqlite driver; the shared MySQL asset database is normally populated
by the asset management system.`,
	Example: `  tb-asset register --serial SN12345 --company 3`,
	RunE:    runRegister,
}

func init() {
	registerCmd.Flags().StringVar(&flagSerial, "serial", "", "Asset serial number")
	registerCmd.Flags().Int64Var(&flagCompanyID, "company", 0, "Owning company id")
	_ = registerCmd.MarkFlagRequired("serial")
	rootCmd.AddCommand(registerCmd)
}

func runRegister(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	serial := strings.TrimSpace(flagSerial)
	if serial == "" {
		return errEmptySerial
	}

	st, err := store.Open(cfg.Database)
	if err != nil {
		return err
	}
	defer st.Close()

	if cfg.Database.AutoMigrate {
		if err := st.Migrate(cmd.Context()); err != nil {
			return err
		}
	}
	asset, err := st.Register(cmd.Context(), serial, flagCompanyID)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Asset %s registered as %d (company %d)\n", asset.Serial, asset.ID, asset.CompanyID)
	return nil
}
