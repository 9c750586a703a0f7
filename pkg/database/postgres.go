package database

import (
	"fmt"
	"net"
	"net/url"
	"strconv"

	_ "github.com/jackc/pgx/v5/stdlib"
)

type postgresDialect struct{}

func init() { Register(postgresDialect{}) }

func (postgresDialect) Name() string       { return "postgres" }
func (postgresDialect) DriverName() string { return "pgx" }

func (postgresDialect) DSN(p Params) (string, error) {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(p.User, p.Password),
		Host:   net.JoinHostPort(p.Host, strconv.Itoa(p.portOr(5432))),
		Path:   "/" + p.Name,
	}
	return u.String(), nil
}

func (postgresDialect) Placeholder(n int) string  { return dollar(n) }
func (postgresDialect) MaxParams() int            { return 65535 }
func (postgresDialect) Returning() ReturningStyle { return ReturnClause }
func (postgresDialect) RandomOrder() string       { return "RANDOM()" }
func (postgresDialect) Limit(n int) string        { return fmt.Sprintf(" LIMIT %d", n) }

func (d postgresDialect) BuildInsert(spec InsertSpec, rows int) string {
	q := plainInsert(d, "INSERT INTO", spec, rows)
	if spec.Conflict == ConflictIgnore {
		q += " ON CONFLICT DO NOTHING"
	}
	return q
}

func (d postgresDialect) CreateTable(t Table) string {
	return createTable(d, "CREATE TABLE IF NOT EXISTS ", t)
}

func (postgresDialect) columnType(c Column) string {
	switch c.Type {
	case TypeSerial:
		return "SERIAL PRIMARY KEY"
	case TypeBigInt:
		return "BIGINT"
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
