// Package store persists inventory batches to the asset database and
// resolves serial numbers to registered assets. It speaks MySQL for the
// shared asset database and SQLite for local or offline use.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"strconv"
	"time"

	"github.com/go-sql-driver/mysql"
	_ "modernc.org/sqlite"

	"github.com/tinkerbelle-io/tb-asset/internal/collector"
	"github.com/tinkerbelle-io/tb-asset/internal/config"
	"github.com/tinkerbelle-io/tb-asset/internal/inventory"
)

// ErrAssetNotFound is returned by Resolve when no asset has the serial.
var ErrAssetNotFound = errors.New("asset not found")

var _ collector.Sink = (*Store)(nil)

// Store is a collector.Sink backed by database/sql.
type Store struct {
	db      *sql.DB
	dialect dialect
	log     *slog.Logger
	now     func() time.Time
}

// Open connects to the configured database. It does not create tables; call
// Migrate for that.
func Open(cfg config.Database) (*Store, error) {
	var (
		d   dialect
		dsn string
	)
	switch cfg.Driver {
	case config.DriverMySQL:
		d, dsn = mysqlDialect{}, mysqlDSN(cfg)
	case config.DriverSQLite:
		d, dsn = sqliteDialect{}, sqliteDSN(cfg)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}

	db, err := sql.Open(d.driverName(), dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if cfg.Driver == config.DriverSQLite {
		db.SetMaxOpenConns(1)
	}

	return &Store{
		db:      db,
		dialect: d,
		log:     slog.Default().With("component", "store", "driver", cfg.Driver),
		now:     time.Now,
	}, nil
}

func mysqlDSN(cfg config.Database) string {
	if cfg.DSN != "" {
		return cfg.DSN
	}
	mc := mysql.NewConfig()
	mc.User = cfg.User
	mc.Passwd = cfg.Password
	mc.Net = "tcp"
	mc.Addr = net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port))
	mc.DBName = cfg.Name
	mc.ParseTime = true
	mc.Timeout = 10 * time.Second
	return mc.FormatDSN()
}

func sqliteDSN(cfg config.Database) string {
	if cfg.DSN != "" {
		return cfg.DSN
	}
	return cfg.Path + "?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)"
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping verifies the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("ping database: %w", err)
	}
	return nil
}

// Migrate creates the assets table and the five inventory tables if they do
// not exist.
func (s *Store) Migrate(ctx context.Context) error {
	stmts := []string{s.dialect.createAssets()}
	for _, t := range inventoryTables {
		stmts = append(stmts, t.createSQL(s.dialect))
	}
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("run migrations: %w", err)
		}
	}
	s.log.Debug("schema ready", "tables", len(stmts))
	return nil
}

// Resolve looks up the asset registered under serial.
func (s *Store) Resolve(ctx context.Context, serial string) (inventory.Asset, error) {
	a := inventory.Asset{Serial: serial}
	err := s.db.QueryRowContext(ctx,
		`SELECT id, company_id FROM assets WHERE serial = ?`, serial,
	).Scan(&a.ID, &a.CompanyID)
	if errors.Is(err, sql.ErrNoRows) {
		return inventory.Asset{}, fmt.Errorf("%w: %s", ErrAssetNotFound, serial)
	}
	if err != nil {
		return inventory.Asset{}, fmt.Errorf("resolve asset: %w", err)
	}
	return a, nil
}

// Register adds an asset under serial, or returns the existing one.
func (s *Store) Register(ctx context.Context, serial string, companyID int64) (inventory.Asset, error) {
	if a, err := s.Resolve(ctx, serial); err == nil {
		return a, nil
	} else if !errors.Is(err, ErrAssetNotFound) {
		return inventory.Asset{}, err
	}

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO assets (company_id, serial) VALUES (?, ?)`, companyID, serial)
	if err != nil {
		return inventory.Asset{}, fmt.Errorf("register asset: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return inventory.Asset{}, fmt.Errorf("get last insert id: %w", err)
	}
	return inventory.Asset{ID: id, CompanyID: companyID, Serial: serial}, nil
}

func (s *Store) UpsertHardware(ctx context.Context, assetID int64, rows []inventory.HardwareProfile) error {
	return upsert(ctx, s, hardwareTable, assetID, rows, func(r inventory.HardwareProfile) []any {
		return []any{
			assetID, r.CompanyID,
			r.MachineID, r.Manufacturer, r.Model, r.CPUID, r.CPUType,
			r.MemoryTotal,
			r.BIOS, r.TPMManufacturer, r.TPMVersion, r.TPMActivation, r.TPMOwnership,
			r.BatteryVendor, r.BatteryModel, r.BatterySerial,
			r.BatteryVoltage, r.BatteryCycleCount,
		}
	})
}

func (s *Store) UpsertDrives(ctx context.Context, assetID int64, rows []inventory.DriveRecord) error {
	return upsert(ctx, s, drivesTable, assetID, rows, func(r inventory.DriveRecord) []any {
		return []any{
			assetID,
			r.DeviceID, r.DeviceName,
			partitionsJSON(r.Partitions),
			r.Model, r.SerialNumber, r.DriveType, r.InterfaceType,
			r.SizeBytes,
		}
	})
}

func (s *Store) UpsertGraphics(ctx context.Context, assetID int64, rows []inventory.GraphicsAdapter) error {
	return upsert(ctx, s, graphicsTable, assetID, rows, func(r inventory.GraphicsAdapter) []any {
		return []any{
			assetID,
			r.Name, r.AdapterCompatibility, r.DriverVersion, r.VideoProcessor,
			r.HorizontalResolution, r.VerticalResolution, r.RefreshRate, r.AdapterRAM,
			r.Status,
		}
	})
}

func (s *Store) UpsertMemory(ctx context.Context, assetID int64, rows []inventory.MemoryModule) error {
	return upsert(ctx, s, memoryTable, assetID, rows, func(r inventory.MemoryModule) []any {
		return []any{
			assetID, r.SlotNumber,
			r.BankLabel, r.Manufacturer,
			r.CapacityBytes,
			r.Type,
			r.SpeedMHz, r.ConfiguredSpeedMHz,
			r.FormFactor, r.PartNumber, r.SerialNumber,
		}
	})
}

func (s *Store) UpsertNetwork(ctx context.Context, assetID int64, rows []inventory.NetworkAdapter) error {
	return upsert(ctx, s, networkTable, assetID, rows, func(r inventory.NetworkAdapter) []any {
		return []any{
			assetID,
			r.AdapterName, r.InterfaceType, r.MACAddress, r.IPAddress, r.SubnetMask, r.DefaultGateway,
			r.DHCPEnabled, r.SpeedMbps,
			r.Status,
		}
	})
}

// upsert writes rows in one transaction on a dedicated connection. The
// values returned by args must follow t.columns; updated_at is appended.
func upsert[T any](ctx context.Context, s *Store, t table, assetID int64, rows []T, args func(T) []any) error {
	if len(rows) == 0 {
		return nil
	}

	conn, err := s.db.Conn(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Close()

	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, t.upsertSQL(s.dialect))
	if err != nil {
		return fmt.Errorf("prepare %s upsert: %w", t.name, err)
	}
	defer stmt.Close()

	stamp := s.dialect.timestamp(s.now())
	for _, r := range rows {
		values := append(args(r), stamp)
		if len(values) != len(t.columns)+1 {
			return fmt.Errorf("%s: %d values for %d columns", t.name, len(values)-1, len(t.columns))
		}
		if _, err := stmt.ExecContext(ctx, values...); err != nil {
			return fmt.Errorf("upsert %s: %w", t.name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit %s: %w", t.name, err)
	}
	s.log.Debug("batch stored", "table", t.name, "asset_id", assetID, "rows", len(rows))
	return nil
}

func partitionsJSON(parts []string) string {
	if parts == nil {
		parts = []string{}
	}
	b, err := json.Marshal(parts)
	if err != nil {
		return "[]"
	}
	return string(b)
}
