package database

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
)

// ConflictPolicy selects what a batched insert does with rows whose unique
// key already exists.
type ConflictPolicy int

const (
	// ConflictFail is a plain INSERT; a duplicate key fails the statement.
	ConflictFail ConflictPolicy = iota
	// ConflictIgnore inserts only rows whose key is absent.
	ConflictIgnore
)

// InsertSpec describes a multi-row insert. Key lists the unique columns and
// is required by dialects that emulate ConflictIgnore with NOT EXISTS.
type InsertSpec struct {
	Table    string
	Columns  []string
	Key      []string
	Conflict ConflictPolicy
}

// ReturningStyle is how a dialect hands back a generated id.
type ReturningStyle int

const (
	ReturnLastInsertID ReturningStyle = iota
	ReturnClause
	ReturnOutput
)

// Dialect hides the SQL differences between supported targets.
type Dialect interface {
	Name() string
	DriverName() string
	DSN(p Params) (string, error)
	Placeholder(n int) string
	MaxParams() int
	BuildInsert(spec InsertSpec, rows int) string
	Returning() ReturningStyle
	RandomOrder() string
	Limit(n int) string
	CreateTable(t Table) string
	columnType(c Column) string
}

var (
	registryMu sync.RWMutex
	registry   = map[string]Dialect{}
)

// Register makes a dialect available by name. It panics on duplicates since
// registration happens from init functions.
func Register(d Dialect) {
	registryMu.Lock()
	defer registryMu.Unlock()
	if _, dup := registry[d.Name()]; dup {
		panic("database: dialect registered twice: " + d.Name())
	}
	registry[d.Name()] = d
}

// Lookup returns the dialect registered under name.
func Lookup(name string) (Dialect, error) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	d, ok := registry[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, fmt.Errorf("unknown database driver %q (known: %s)", name, strings.Join(dialectNames(), ", "))
	}
	return d, nil
}

// Dialects lists the registered dialect names in sorted order.
func Dialects() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	return dialectNames()
}

func dialectNames() []string {
	names := make([]string, 0, len(registry))
	for n := range registry {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Rebind rewrites '?' markers into the dialect's placeholders. Queries in
// this package never carry '?' in literals.
func Rebind(d Dialect, query string) string {
	if d.Placeholder(1) == "?" {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString(d.Placeholder(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// valuesList renders "(p1, p2), (p3, p4)" for rows x len(cols) parameters.
func valuesList(d Dialect, cols, rows int) string {
	var b strings.Builder
	n := 0
	for r := 0; r < rows; r++ {
		if r > 0 {
			b.WriteString(", ")
		}
		b.WriteByte('(')
		for c := 0; c < cols; c++ {
			if c > 0 {
				b.WriteString(", ")
			}
			n++
			b.WriteString(d.Placeholder(n))
		}
		b.WriteByte(')')
	}
	return b.String()
}

func plainInsert(d Dialect, verb string, spec InsertSpec, rows int) string {
	return fmt.Sprintf("%s %s (%s) VALUES %s",
		verb, spec.Table, strings.Join(spec.Columns, ", "), valuesList(d, len(spec.Columns), rows))
}

// createTable renders a CREATE TABLE body shared by all dialects; prefix
// carries the dialect's "if absent" form.
func createTable(d Dialect, prefix string, t Table) string {
	var defs []string
	for _, c := range t.Columns {
		def := c.Name + " " + d.columnType(c)
		if c.Type != TypeSerial {
			if !c.Nullable {
				def += " NOT NULL"
			}
			if c.Default != "" {
				def += " DEFAULT " + c.Default
			}
			if c.Unique {
				def += " UNIQUE"
			}
		}
		defs = append(defs, def)
	}
	if len(t.PrimaryKey) > 0 {
		defs = append(defs, "PRIMARY KEY ("+strings.Join(t.PrimaryKey, ", ")+")")
	}
	for _, fk := range t.ForeignKeys {
		def := fmt.Sprintf("FOREIGN KEY (%s) REFERENCES %s(%s)", fk.Column, fk.RefTable, fk.RefColumn)
		if fk.Cascade {
			def += " ON DELETE CASCADE"
		}
		defs = append(defs, def)
	}
	return prefix + t.Name + " (\n\t" + strings.Join(defs, ",\n\t") + "\n)"
}

func dollar(n int) string { return "$" + strconv.Itoa(n) }

func atP(n int) string { return "@p" + strconv.Itoa(n) }
