package database

import (
	"fmt"

	_ "modernc.org/sqlite"
)

type sqliteDialect struct{}

func init() { Register(sqliteDialect{}) }

func (sqliteDialect) Name() string       { return "sqlite" }
func (sqliteDialect) DriverName() string { return "sqlite" }

// DSN treats the database name as a file path and turns on foreign keys,
// which SQLite leaves off per connection.
func (sqliteDialect) DSN(p Params) (string, error) {
	if p.Name == "" {
		return "", fmt.Errorf("sqlite needs DB_NAME set to a file path")
	}
	return "file:" + p.Name + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)", nil
}

func (sqliteDialect) Placeholder(int) string    { return "?" }
func (sqliteDialect) MaxParams() int            { return 32766 }
func (sqliteDialect) Returning() ReturningStyle { return ReturnLastInsertID }
func (sqliteDialect) RandomOrder() string       { return "RANDOM()" }
func (sqliteDialect) Limit(n int) string        { return fmt.Sprintf(" LIMIT %d", n) }

func (d sqliteDialect) BuildInsert(spec InsertSpec, rows int) string {
	q := plainInsert(d, "INSERT INTO", spec, rows)
	if spec.Conflict == ConflictIgnore {
		q += " ON CONFLICT DO NOTHING"
	}
	return q
}

func (d sqliteDialect) CreateTable(t Table) string {
	return createTable(d, "CREATE TABLE IF NOT EXISTS ", t)
}

func (sqliteDialect) columnType(c Column) string {
	switch c.Type {
	case TypeSerial:
		return "INTEGER PRIMARY KEY AUTOINCREMENT"
	case TypeString:
		return fmt.Sprintf("VARCHAR(%d)", c.Size)
	case TypeText:
		return "TEXT"
	case TypeBool:
		return "BOOLEAN"
	case TypeDate:
		return "DATE"
	case TypeTimestamp:
		return "TIMESTAMP"
	default:
		return "INTEGER"
	}
}
