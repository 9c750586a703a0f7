package database

import (
	"fmt"
	"net"
	"strconv"

	"github.com/go-sql-driver/mysql"
)

type mysqlDialect struct{}

func init() { Register(mysqlDialect{}) }

func (mysqlDialect) Name() string       { return "mysql" }
func (mysqlDialect) DriverName() string { return "mysql" }

func (mysqlDialect) DSN(p Params) (string, error) {
	cfg := mysql.NewConfig()
	cfg.User = p.User
	cfg.Passwd = p.Password
	cfg.Net = "tcp"
	cfg.Addr = net.JoinHostPort(p.Host, strconv.Itoa(p.portOr(3306)))
	cfg.DBName = p.Name
	cfg.ParseTime = true
	return cfg.FormatDSN(), nil
}

func (mysqlDialect) Placeholder(int) string    { return "?" }
func (mysqlDialect) MaxParams() int            { return 65535 }
func (mysqlDialect) Returning() ReturningStyle { return ReturnLastInsertID }
func (mysqlDialect) RandomOrder() string       { return "RAND()" }
func (mysqlDialect) Limit(n int) string        { return fmt.Sprintf(" LIMIT %d", n) }

func (d mysqlDialect) BuildInsert(spec InsertSpec, rows int) string {
	if spec.Conflict == ConflictIgnore {
		return plainInsert(d, "INSERT IGNORE INTO", spec, rows)
	}
	return plainInsert(d, "INSERT INTO", spec, rows)
}

func (d mysqlDialect) CreateTable(t Table) string {
	return createTable(d, "CREATE TABLE IF NOT EXISTS ", t)
}

func (mysqlDialect) columnType(c Column) string {
	switch c.Type {
	case TypeSerial:
		return "INT AUTO_INCREMENT PRIMARY KEY"
	case TypeBigInt:
		return "BIGINT"
	case TypeString:
		if c.CaseSensitive {
			return fmt.Sprintf("VARCHAR(%d) CHARACTER SET utf8mb4 COLLATE utf8mb4_bin", c.Size)
		}
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
		return "INT"
	}
}
