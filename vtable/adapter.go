package vtable

import (
	"database/sql"
	"fmt"
	"log"
	"strings"

	"github.com/hashicorp/go-multierror"
	"modernc.org/sqlite/vtab"
)

// RowCap is the defensive ceiling on rows a single scan may produce. Default
// bounds of some synthetic tables span practically unbounded ranges; cursors
// treat crossing the cap as end-of-scan.
const RowCap = 1 << 24

// Debug enables [DEBUG] traces of plan negotiation and filter dispatch.
var Debug bool

// Register installs a module under the given name. Registration applies to
// connections opened after the call; registering the same name twice is a
// no-op so independent components may both install the bundled modules.
func Register(db *sql.DB, name string, m Module) error {
	if err := vtab.RegisterModule(db, name, &moduleAdapter{name: name, impl: m}); err != nil {
		if strings.Contains(err.Error(), "already registered") {
			return nil
		}
		return fmt.Errorf("vtable: register %q: %w", name, err)
	}
	return nil
}

// RegisterAll installs several modules, attempting every one and returning
// the accumulated failures.
func RegisterAll(db *sql.DB, modules map[string]Module) error {
	var errs *multierror.Error
	for name, m := range modules {
		if err := Register(db, name, m); err != nil {
			errs = multierror.Append(errs, err)
		}
	}
	return errs.ErrorOrNil()
}

// moduleAdapter bridges a framework Module onto the driver's vtab.Module.
type moduleAdapter struct {
	name string
	impl Module
}

func (m *moduleAdapter) Create(ctx vtab.Context, args []string) (vtab.Table, error) {
	t, err := m.impl.Create(NewContext(ctx.Declare), args)
	if err != nil {
		return nil, err
	}
	return &tableAdapter{name: m.name, impl: t, plans: NewPlanRegistry()}, nil
}

func (m *moduleAdapter) Connect(ctx vtab.Context, args []string) (vtab.Table, error) {
	t, err := m.impl.Connect(NewContext(ctx.Declare), args)
	if err != nil {
		return nil, err
	}
	return &tableAdapter{name: m.name, impl: t, plans: NewPlanRegistry()}, nil
}

// tableAdapter owns the plan registry for one table instance and translates
// IndexInfo to and from the framework types.
type tableAdapter struct {
	name  string
	impl  Table
	plans *PlanRegistry
}

func (t *tableAdapter) BestIndex(info *vtab.IndexInfo) error {
	req := &IndexRequest{
		Constraints: make([]IndexConstraint, len(info.Constraints)),
		Order:       make([]OrderTerm, len(info.OrderBy)),
		ColumnsUsed: ColumnSet(info.ColUsed),
	}
	for i, c := range info.Constraints {
		req.Constraints[i] = IndexConstraint{Column: c.Column, Op: operatorFromDriver(c.Op), Usable: c.Usable}
	}
	for i, o := range info.OrderBy {
		req.Order[i] = OrderTerm{Column: o.Column, Desc: o.Desc}
	}

	b := NewPlanBuilder(req)
	if err := t.impl.BestIndex(req, b); err != nil {
		if Debug {
			log.Printf("[DEBUG] vtable %s: no plan: %v", t.name, err)
		}
		return err
	}

	plan := b.Plan()
	id := t.plans.Put(plan)
	info.IdxNum = int64(id)
	for i, u := range b.usage {
		if !u.used {
			continue
		}
		info.Constraints[i].ArgIndex = u.argIndex
		info.Constraints[i].Omit = u.omit
	}
	info.OrderByConsumed = b.orderConsumed
	if b.cost > 0 {
		info.EstimatedCost = b.cost
	}
	if b.rows > 0 {
		info.EstimatedRows = b.rows
	}
	if b.unique {
		info.IdxFlags |= vtab.IndexScanUnique
	}
	if Debug {
		log.Printf("[DEBUG] vtable %s: %s cost=%g rows=%d unique=%v", t.name, plan, b.cost, b.rows, b.unique)
	}
	return nil
}

func (t *tableAdapter) Open() (vtab.Cursor, error) {
	c, err := t.impl.Open()
	if err != nil {
		return nil, err
	}
	return &cursorAdapter{table: t, impl: c}, nil
}

func (t *tableAdapter) Disconnect() error { return t.impl.Disconnect() }
func (t *tableAdapter) Destroy() error    { return t.impl.Destroy() }

// cursorAdapter resolves plan ids and converts argument values. A filter call
// naming a plan this table never issued fails closed: the cursor reports Eof
// immediately instead of scanning with uninitialized state. An issued plan
// that aged out of the registry is a live statement losing its plan, which is
// reported as an error rather than silently yielding nothing.
type cursorAdapter struct {
	table *tableAdapter
	impl  Cursor
	dead  bool
}

func (c *cursorAdapter) Filter(idxNum int, idxStr string, vals []vtab.Value) error {
	_ = idxStr // unused: the plan id alone identifies the decision
	plan, res := c.table.plans.Take(idxNum)
	switch res {
	case TakeEvicted:
		return fmt.Errorf("vtable %s: plan %d evicted from registry, re-prepare the statement", c.table.name, idxNum)
	case TakeUnknown:
		log.Printf("[WARN] vtable %s: filter with unknown plan id %d, returning empty scan", c.table.name, idxNum)
		c.dead = true
		return nil
	}
	c.dead = false
	args := make([]Value, len(vals))
	for i, v := range vals {
		args[i] = valueFromDriver(v)
	}
	if Debug {
		log.Printf("[DEBUG] vtable %s: filter %s args=%v", c.table.name, plan, args)
	}
	return c.impl.Filter(plan, args)
}

func (c *cursorAdapter) Next() error {
	if c.dead {
		return nil
	}
	return c.impl.Next()
}

func (c *cursorAdapter) Eof() bool {
	return c.dead || c.impl.Eof()
}

func (c *cursorAdapter) Column(col int) (vtab.Value, error) {
	if c.dead {
		return nil, nil
	}
	v, err := c.impl.Column(col)
	if err != nil {
		return nil, err
	}
	return v.driverValue(), nil
}

func (c *cursorAdapter) Rowid() (int64, error) {
	if c.dead {
		return 0, nil
	}
	return c.impl.Rowid()
}

func (c *cursorAdapter) Close() error { return c.impl.Close() }
