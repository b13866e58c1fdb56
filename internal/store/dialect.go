package store

import (
	"fmt"
	"strings"
	"time"
)

// dialect holds the SQL differences between the supported drivers.
type dialect interface {
	driverName() string
	idColumn() string
	columnType(k kind) string
	timestampType() string
	uniqueKey(table string, keys []string) string
	onConflict(keys, update []string) string
	createAssets() string
	timestamp(t time.Time) any
}

type sqliteDialect struct{}

func (sqliteDialect) driverName() string { return "sqlite" }
func (sqliteDialect) idColumn() string   { return "id INTEGER PRIMARY KEY AUTOINCREMENT" }

func (sqliteDialect) columnType(k kind) string {
	switch k {
	case kindInt, kindBool:
		return "INTEGER"
	default:
		return "TEXT"
	}
}

func (sqliteDialect) timestampType() string { return "TEXT" }

func (sqliteDialect) uniqueKey(_ string, keys []string) string {
	return "UNIQUE (" + strings.Join(keys, ", ") + ")"
}

func (sqliteDialect) onConflict(keys, update []string) string {
	set := make([]string, len(update))
	for i, c := range update {
		set[i] = c + " = excluded." + c
	}
	return fmt.Sprintf("ON CONFLICT (%s) DO UPDATE SET %s", strings.Join(keys, ", "), strings.Join(set, ", "))
}

func (sqliteDialect) createAssets() string { return createAssetsSQLite }

func (sqliteDialect) timestamp(t time.Time) any { return t.UTC().Format(time.RFC3339Nano) }

type mysqlDialect struct{}

func (mysqlDialect) driverName() string { return "mysql" }
func (mysqlDialect) idColumn() string   { return "id BIGINT NOT NULL AUTO_INCREMENT PRIMARY KEY" }

func (mysqlDialect) columnType(k kind) string {
	switch k {
	case kindInt:
		return "BIGINT"
	case kindBool:
		return "BOOLEAN"
	case kindJSON:
		return "TEXT"
	default:
		return "VARCHAR(255)"
	}
}

func (mysqlDialect) timestampType() string { return "DATETIME(6)" }

func (mysqlDialect) uniqueKey(table string, keys []string) string {
	return fmt.Sprintf("UNIQUE KEY uq_%s (%s)", table, strings.Join(keys, ", "))
}

func (mysqlDialect) onConflict(_, update []string) string {
	set := make([]string, len(update))
	for i, c := range update {
		set[i] = c + " = VALUES(" + c + ")"
	}
	return "ON DUPLICATE KEY UPDATE " + strings.Join(set, ", ")
}

func (mysqlDialect) createAssets() string { return createAssetsMySQL }

func (mysqlDialect) timestamp(t time.Time) any { return t.UTC() }
