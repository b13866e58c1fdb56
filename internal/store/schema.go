package store

import (
	"fmt"
	"strings"
)

type kind uint8

const (
	kindText kind = iota
	kindInt
	kindBool
	kindJSON
)

type column struct {
	name string
	kind kind
}

// table describes one inventory table. Every table carries asset_id; keys
// are the natural key columns that the upsert matches on.
type table struct {
	name    string
	keys    []string
	columns []column
}

func text(names ...string) []column {
	cols := make([]column, len(names))
	for i, n := range names {
		cols[i] = column{name: n, kind: kindText}
	}
	return cols
}

func cols(groups ...[]column) []column {
	var out []column
	for _, g := range groups {
		out = append(out, g...)
	}
	return out
}

var (
	hardwareTable = table{
		name: "assets_hardware_info",
		keys: []string{"asset_id"},
		columns: cols(
			[]column{{"asset_id", kindInt}, {"company_id", kindInt}},
			text("machine_id", "manufacturer", "model", "cpu_id", "cpu_type"),
			[]column{{"memory_total", kindInt}},
			text("bios", "tpm_manufacturer", "tpm_version", "tpm_activation", "tpm_ownership",
				"battery_vendor", "battery_model", "battery_serial"),
			[]column{{"battery_voltage", kindInt}, {"battery_cycle_count", kindInt}},
		),
	}

	drivesTable = table{
		name: "assets_drives_info",
		keys: []string{"asset_id", "device_id"},
		columns: cols(
			[]column{{"asset_id", kindInt}},
			text("device_id", "device_name"),
			[]column{{"partitions", kindJSON}},
			text("model", "serial_number", "drive_type", "interface_type"),
			[]column{{"size_bytes", kindInt}},
		),
	}

	graphicsTable = table{
		name: "assets_graphics_card_info",
		keys: []string{"asset_id", "name"},
		columns: cols(
			[]column{{"asset_id", kindInt}},
			text("name", "adapter_compatibility", "driver_version", "video_processor"),
			[]column{
				{"current_horizontal_resolution", kindInt},
				{"current_vertical_resolution", kindInt},
				{"current_refresh_rate", kindInt},
				{"adapter_ram", kindInt},
			},
			text("status"),
		),
	}

	memoryTable = table{
		name: "assets_memory_info",
		keys: []string{"asset_id", "slot_number"},
		columns: cols(
			[]column{{"asset_id", kindInt}, {"slot_number", kindInt}},
			text("bank_label", "manufacturer"),
			[]column{{"capacity_bytes", kindInt}},
			text("type"),
			[]column{{"speed_mhz", kindInt}, {"configured_speed_mhz", kindInt}},
			text("form_factor", "part_number", "serial_number"),
		),
	}

	networkTable = table{
		name: "assets_network_adapter_info",
		keys: []string{"asset_id", "adapter_name"},
		columns: cols(
			[]column{{"asset_id", kindInt}},
			text("adapter_name", "interface_type", "mac_address", "ip_address", "subnet_mask", "default_gateway"),
			[]column{{"dhcp_enabled", kindBool}, {"speed", kindInt}},
			text("status"),
		),
	}

	inventoryTables = []table{hardwareTable, drivesTable, graphicsTable, memoryTable, networkTable}
)

func (t table) isKey(name string) bool {
	for _, k := range t.keys {
		if k == name {
			return true
		}
	}
	return false
}

// createSQL renders the CREATE TABLE statement for d.
func (t table) createSQL(d dialect) string {
	var b strings.Builder
	fmt.Fprintf(&b, "CREATE TABLE IF NOT EXISTS %s (\n\t%s", t.name, d.idColumn())
	for _, c := range t.columns {
		fmt.Fprintf(&b, ",\n\t%s %s", c.name, d.columnType(c.kind))
		if t.isKey(c.name) {
			b.WriteString(" NOT NULL")
		}
	}
	fmt.Fprintf(&b, ",\n\tupdated_at %s NOT NULL", d.timestampType())
	fmt.Fprintf(&b, ",\n\t%s\n)", d.uniqueKey(t.name, t.keys))
	return b.String()
}

// upsertSQL renders the insert-or-update statement for one row. Non-key
// columns and updated_at are overwritten on conflict.
func (t table) upsertSQL(d dialect) string {
	names := make([]string, 0, len(t.columns)+1)
	var update []string
	for _, c := range t.columns {
		names = append(names, c.name)
		if !t.isKey(c.name) {
			update = append(update, c.name)
		}
	}
	names = append(names, "updated_at")
	update = append(update, "updated_at")

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(names)), ", ")
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) %s",
		t.name, strings.Join(names, ", "), placeholders, d.onConflict(t.keys, update))
}

const createAssetsSQLite = `CREATE TABLE IF NOT EXISTS assets (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	company_id INTEGER NOT NULL,
	serial TEXT NOT NULL UNIQUE
)`

const createAssetsMySQL = `CREATE TABLE IF NOT EXISTS assets (
	id BIGINT NOT NULL AUTO_INCREMENT PRIMARY KEY,
	company_id BIGINT NOT NULL,
	serial VARCHAR(255) NOT NULL,
	UNIQUE KEY uq_assets_serial (serial)
)`
