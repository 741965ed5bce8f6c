package vtable

import "errors"

// ErrNoPlan signals from BestIndex that no combination of the offered
// constraints yields a usable query plan. It is expected control flow, not a
// fault: the engine reports it at statement-compile time and may retry with a
// different join order.
var ErrNoPlan = errors.New("vtable: no usable query plan")

// Context is passed to Create and Connect so a module can declare its schema.
type Context struct {
	declare func(string) error
}

// NewContext builds a Context around a declare callback. The adapter supplies
// the engine-backed callback; module tests can pass a recorder.
func NewContext(declare func(schema string) error) *Context {
	return &Context{declare: declare}
}

// Declare registers the table's schema with the engine. The schema is a
// CREATE TABLE statement naming the exposed columns; parameter columns are
// marked HIDDEN. Must be called from within Create or Connect.
func (c *Context) Declare(schema string) error { return c.declare(schema) }

// Module is a factory for one kind of synthetic table. Create responds to
// CREATE VIRTUAL TABLE and may initialize backing state; Connect attaches to
// an already created table. Tables without persistent state implement both
// identically.
//
// args follows the engine convention: args[0] is the module name, args[1] the
// database name, args[2] the table name, and anything after that is
// table-specific. Modules parse trailing arguments into defaults and fall
// back silently when they are missing or unparseable.
type Module interface {
	Create(ctx *Context, args []string) (Table, error)
	Connect(ctx *Context, args []string) (Table, error)
}

// Table is one instance of a synthetic table.
type Table interface {
	// BestIndex inspects the constraints and ordering the query planner
	// offers and selects the subset this table will serve, recording the
	// decision through the builder. Returning ErrNoPlan (possibly wrapped)
	// rejects the whole proposal.
	BestIndex(req *IndexRequest, b *PlanBuilder) error

	// Open creates a cursor for one scan of the table.
	Open() (Cursor, error)

	Disconnect() error
	Destroy() error
}

// Cursor iterates one scan. The engine drives it in a strict order: exactly
// one Filter at scan start, then Column/Rowid interleaved with Next until Eof
// reports true. Filter may be called again when the host re-runs the same
// compiled statement; it must fully reset the cursor.
type Cursor interface {
	Filter(plan *FilterPlan, args []Value) error
	Next() error
	Eof() bool
	Column(col int) (Value, error)
	Rowid() (int64, error)
	Close() error
}
