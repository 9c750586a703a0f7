package database

import (
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"

	_ "github.com/microsoft/go-mssqldb"
)

type sqlserverDialect struct{}

func init() { Register(sqlserverDialect{}) }

func (sqlserverDialect) Name() string       { return "sqlserver" }
func (sqlserverDialect) DriverName() string { return "sqlserver" }

func (sqlserverDialect) DSN(p Params) (string, error) {
	q := url.Values{}
	q.Set("database", p.Name)
	u := url.URL{
		Scheme:   "sqlserver",
		User:     url.UserPassword(p.User, p.Password),
		Host:     net.JoinHostPort(p.Host, strconv.Itoa(p.portOr(1433))),
		RawQuery: q.Encode(),
	}
	return u.String(), nil
}

func (sqlserverDialect) Placeholder(n int) string  { return atP(n) }
func (sqlserverDialect) MaxParams() int            { return 2100 }
func (sqlserverDialect) Returning() ReturningStyle { return ReturnOutput }
func (sqlserverDialect) RandomOrder() string       { return "NEWID()" }

// Limit needs an ORDER BY in front of it, which every caller supplies.
func (sqlserverDialect) Limit(n int) string {
	return fmt.Sprintf(" OFFSET 0 ROWS FETCH NEXT %d ROWS ONLY", n)
}

// BuildInsert emulates insert-if-absent with a NOT EXISTS probe over the
// derived VALUES table, since T-SQL has no ON CONFLICT clause.
func (d sqlserverDialect) BuildInsert(spec InsertSpec, rows int) string {
	if spec.Conflict != ConflictIgnore || len(spec.Key) == 0 {
		return plainInsert(d, "INSERT INTO", spec, rows)
	}
	cols := strings.Join(spec.Columns, ", ")
	sel := make([]string, len(spec.Columns))
	for i, c := range spec.Columns {
		sel[i] = "v." + c
	}
	match := make([]string, len(spec.Key))
	for i, k := range spec.Key {
		match[i] = fmt.Sprintf("t.%s = v.%s", k, k)
	}
	// NOT EXISTS only sees committed rows, so keys must be unique within
	// one batch; the loader dedups before it flushes.
	return fmt.Sprintf(
		"INSERT INTO %s (%s) SELECT %s FROM (VALUES %s) AS v (%s) WHERE NOT EXISTS (SELECT 1 FROM %s t WHERE %s)",
		spec.Table, cols, strings.Join(sel, ", "), valuesList(d, len(spec.Columns), rows), cols,
		spec.Table, strings.Join(match, " AND "))
}

func (d sqlserverDialect) CreateTable(t Table) string {
	return fmt.Sprintf("IF OBJECT_ID(N'%s', N'U') IS NULL ", t.Name) + createTable(d, "CREATE TABLE ", t)
}

func (sqlserverDialect) columnType(c Column) string {
	switch c.Type {
	case TypeSerial:
		return "INT IDENTITY(1,1) PRIMARY KEY"
	case TypeBigInt:
		return "BIGINT"
	case TypeString:
		if c.CaseSensitive {
			return fmt.Sprintf("NVARCHAR(%d) COLLATE Latin1_General_100_BIN2", c.Size)
		}
		return fmt.Sprintf("NVARCHAR(%d)", c.Size)
	case TypeText:
		return "NVARCHAR(MAX)"
	case TypeBool:
		return "BIT"
	case TypeDate:
		return "DATE"
	case TypeTimestamp:
		return "DATETIME2"
	default:
		return "INT"
	}
}
