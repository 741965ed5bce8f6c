// Package series implements the generate_series synthetic table: a single
// INTEGER value column produced over [start, stop] in step increments.
// start, stop and step are hidden parameter columns, settable either as
// CREATE VIRTUAL TABLE arguments or as equality constraints in the query.
package series

import (
	"strconv"
	"strings"

	"github.com/viant/sqlite-vtab/vtable"
)

const (
	colValue = iota
	colStart
	colStop
	colStep
)

const schema = "CREATE TABLE x(value INTEGER, start INTEGER HIDDEN, stop INTEGER HIDDEN, step INTEGER HIDDEN)"

// Defaults used when creation arguments are absent or unparseable.
const (
	DefaultStart = 0
	DefaultStop  = 100
	DefaultStep  = 1
)

// Module is the generate_series factory.
type Module struct{}

// New returns the series module.
func New() *Module { return &Module{} }

// Create declares the schema and parses optional start, stop, step arguments.
// There is no persistent state, so Create and Connect are identical.
func (m *Module) Create(ctx *vtable.Context, args []string) (vtable.Table, error) {
	if err := ctx.Declare(schema); err != nil {
		return nil, err
	}
	return parseArgs(args), nil
}

// Connect attaches to an existing series table.
func (m *Module) Connect(ctx *vtable.Context, args []string) (vtable.Table, error) {
	return m.Create(ctx, args)
}

// parseArgs reads trailing creation arguments as start, stop, step. Missing
// or unparseable values fall back to the defaults; a zero or negative step
// falls back to 1.
func parseArgs(args []string) *Table {
	t := &Table{start: DefaultStart, stop: DefaultStop, step: DefaultStep}
	params := args
	if len(params) > 3 {
		params = params[3:]
	} else {
		params = nil
	}
	if len(params) > 0 {
		if v, err := strconv.ParseInt(strings.TrimSpace(params[0]), 10, 64); err == nil {
			t.start = v
		}
	}
	if len(params) > 1 {
		if v, err := strconv.ParseInt(strings.TrimSpace(params[1]), 10, 64); err == nil {
			t.stop = v
		}
	}
	if len(params) > 2 {
		if v, err := strconv.ParseInt(strings.TrimSpace(params[2]), 10, 64); err == nil && v > 0 {
			t.step = v
		}
	}
	return t
}

// Table is one series instance holding the default bounds.
type Table struct {
	start, stop, step int64
}

// BestIndex accepts comparison constraints on the value column and equality
// constraints on the hidden parameter columns. Any other usable operator on a
// parameter column, or an unusable parameter constraint, makes the whole
// proposal infeasible: the parameters define the series and cannot be
// approximated.
func (t *Table) BestIndex(req *vtable.IndexRequest, b *vtable.PlanBuilder) error {
	var hasEQ, hasMin, hasMax, hasStep bool
	for i, c := range req.Constraints {
		switch c.Column {
		case colValue:
			if !c.Usable || !c.Op.IsComparison() {
				continue
			}
			b.Use(i)
			switch c.Op {
			case vtable.OpEQ:
				hasEQ = true
			case vtable.OpGT, vtable.OpGE:
				hasMin = true
			case vtable.OpLT, vtable.OpLE:
				hasMax = true
			}
		case colStart, colStop, colStep:
			if !c.Usable || c.Op != vtable.OpEQ {
				return vtable.ErrNoPlan
			}
			b.UseOmitted(i)
			if c.Column == colStep {
				hasStep = true
			}
		}
	}

	switch {
	case hasEQ:
		b.SetEstimate(1, 1)
		b.MarkUnique()
	case hasMin && hasMax:
		rows := int64(2500)
		if hasStep {
			rows /= 2
		}
		b.SetEstimate(float64(rows), rows)
	case hasMin || hasMax:
		b.SetEstimate(500000, 500000)
	default:
		b.SetEstimate(1e6, 1<<20)
	}

	if len(req.Order) == 1 && req.Order[0].Column == colValue {
		b.ConsumeOrder(req.Order[0].Desc)
	}
	return nil
}

// Open creates a scan cursor.
func (t *Table) Open() (vtable.Cursor, error) { return &Cursor{table: t}, nil }

// Disconnect has nothing to release.
func (t *Table) Disconnect() error { return nil }

// Destroy has no persistent state to drop.
func (t *Table) Destroy() error { return nil }

// Cursor walks one series scan.
type Cursor struct {
	table *Table
	rng   vtable.Int64Range
	desc  bool
	value int64
	row   int64
}

// Filter resets the cursor to the plan's bounds. Parameter arguments are
// applied before value-range narrowing regardless of argument order, so a
// query can both redefine the series and constrain it. A NULL bound yields an
// empty scan.
func (c *Cursor) Filter(plan *vtable.FilterPlan, args []vtable.Value) error {
	c.row = 1
	c.desc = plan.Descending
	c.rng = vtable.Int64Range{Min: c.table.start, Max: c.table.stop, Step: c.table.step}

	for _, a := range plan.Arguments {
		if a.ArgIndex >= len(args) {
			c.rng.MarkEmpty()
			return nil
		}
		v := args[a.ArgIndex]
		switch a.Column {
		case colStart:
			if v.IsNull() {
				c.rng.MarkEmpty()
				return nil
			}
			c.rng.Min = v.Int64()
		case colStop:
			if v.IsNull() {
				c.rng.MarkEmpty()
				return nil
			}
			c.rng.Max = v.Int64()
		case colStep:
			if v.IsNull() {
				c.rng.MarkEmpty()
				return nil
			}
			if s := v.Int64(); s > 0 {
				c.rng.Step = s
			}
		}
	}
	anchor := c.rng.Min
	for _, a := range plan.Arguments {
		if a.Column == colValue {
			c.rng.Narrow(a.Op, args[a.ArgIndex])
		}
	}
	// A raised minimum is rounded up onto the step grid anchored at start,
	// so narrowing never produces values the unconstrained scan would skip.
	if c.rng.Min > anchor && c.rng.Step > 1 {
		if off := (c.rng.Min - anchor) % c.rng.Step; off != 0 {
			c.rng.Min += c.rng.Step - off
		}
	}

	if c.rng.Empty() {
		return nil
	}
	c.value = c.rng.First(c.desc)
	return nil
}

// Next advances one row in the scan direction.
func (c *Cursor) Next() error {
	if c.desc {
		c.value -= c.rng.Step
	} else {
		c.value += c.rng.Step
	}
	c.row++
	return nil
}

// Eof reports exhaustion: position out of bounds or the row cap crossed.
func (c *Cursor) Eof() bool {
	if c.rng.Empty() || c.row > vtable.RowCap {
		return true
	}
	if c.desc {
		return c.value < c.rng.Min
	}
	return c.value > c.rng.Max
}

// Column yields the current value; hidden parameter columns report their
// resolved bounds. Out-of-range columns degrade to NULL.
func (c *Cursor) Column(col int) (vtable.Value, error) {
	switch col {
	case colValue:
		return vtable.IntegerValue(c.value), nil
	case colStart:
		return vtable.IntegerValue(c.rng.Min), nil
	case colStop:
		return vtable.IntegerValue(c.rng.Max), nil
	case colStep:
		return vtable.IntegerValue(c.rng.Step), nil
	default:
		return vtable.NullValue(), nil
	}
}

// Rowid is the 1-based row counter, independent of the produced value.
func (c *Cursor) Rowid() (int64, error) { return c.row, nil }

// Close has nothing to release.
func (c *Cursor) Close() error { return nil }
