// Package dict exposes static key-value mappings as two-column synthetic
// tables: a caller-supplied dictionary, or the process environment. These
// tables do no constraint optimization; every query is a full scan and the
// engine applies any filtering itself.
package dict

import (
	"os"
	"sort"
	"strings"

	"github.com/viant/sqlite-vtab/vtable"
)

const (
	colKey = iota
	colValue
)

const schema = "CREATE TABLE x(key TEXT, value TEXT)"

// Module serves a fixed map. The snapshot function is called per connect so
// dynamic sources (like the environment) observe current state.
type Module struct {
	snapshot func() map[string]string
}

// New returns a module over a fixed mapping. The map is copied per table
// instance.
func New(values map[string]string) *Module {
	return &Module{snapshot: func() map[string]string { return values }}
}

// NewEnv returns a module exposing the process environment.
func NewEnv() *Module {
	return &Module{snapshot: func() map[string]string {
		out := make(map[string]string)
		for _, kv := range os.Environ() {
			if i := strings.IndexByte(kv, '='); i >= 0 {
				out[kv[:i]] = kv[i+1:]
			}
		}
		return out
	}}
}

// Create declares the schema and snapshots the mapping.
func (m *Module) Create(ctx *vtable.Context, args []string) (vtable.Table, error) {
	if err := ctx.Declare(schema); err != nil {
		return nil, err
	}
	src := m.snapshot()
	values := make(map[string]string, len(src))
	for k, v := range src {
		values[k] = v
	}
	return &Table{values: values}, nil
}

// Connect is identical to Create: there is no persistent state.
func (m *Module) Connect(ctx *vtable.Context, args []string) (vtable.Table, error) {
	return m.Create(ctx, args)
}

// Table is one dictionary instance.
type Table struct {
	values map[string]string
}

// BestIndex always proposes a full scan: no constraints are taken and no
// ordering is consumed.
func (t *Table) BestIndex(req *vtable.IndexRequest, b *vtable.PlanBuilder) error {
	rows := int64(len(t.values))
	if rows == 0 {
		rows = 1
	}
	b.SetEstimate(float64(rows), rows)
	return nil
}

// Open creates a scan cursor.
func (t *Table) Open() (vtable.Cursor, error) { return &Cursor{table: t}, nil }

// Disconnect has nothing to release.
func (t *Table) Disconnect() error { return nil }

// Destroy has no persistent state to drop.
func (t *Table) Destroy() error { return nil }

// Cursor walks the mapping in sorted key order so scans are deterministic.
type Cursor struct {
	table *Table
	keys  []string
	pos   int
}

// Filter resets the scan. The plan carries no arguments for this table.
func (c *Cursor) Filter(plan *vtable.FilterPlan, args []vtable.Value) error {
	keys := make([]string, 0, len(c.table.values))
	for k := range c.table.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	c.keys = keys
	c.pos = 0
	return nil
}

// Next advances to the following key.
func (c *Cursor) Next() error {
	if c.pos < len(c.keys) {
		c.pos++
	}
	return nil
}

// Eof reports whether the scan is past the last key.
func (c *Cursor) Eof() bool { return c.pos >= len(c.keys) }

// Column yields the key or value of the current row; anything else is NULL.
func (c *Cursor) Column(col int) (vtable.Value, error) {
	if c.pos >= len(c.keys) {
		return vtable.NullValue(), nil
	}
	switch col {
	case colKey:
		return vtable.TextValue(c.keys[c.pos]), nil
	case colValue:
		return vtable.TextValue(c.table.values[c.keys[c.pos]]), nil
	default:
		return vtable.NullValue(), nil
	}
}

// Rowid is the 1-based position in the sorted key list.
func (c *Cursor) Rowid() (int64, error) { return int64(c.pos) + 1, nil }

// Close has nothing to release.
func (c *Cursor) Close() error { return nil }
