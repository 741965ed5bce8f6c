// Package calendar implements a synthetic table of dates: one row per
// frequency step over [start, stop]. The date column carries ISO dates
// (YYYY-MM-DD); year is a derived column usable for range inference, and
// start, stop and frequency are hidden parameter columns.
package calendar

import (
	"strings"
	"time"

	"github.com/viant/sqlite-vtab/vtable"
)

const (
	colDate = iota
	colYear
	colStart
	colStop
	colFrequency
)

const schema = "CREATE TABLE x(date TEXT, year INTEGER, start TEXT HIDDEN, stop TEXT HIDDEN, frequency TEXT HIDDEN)"

const dateLayout = "2006-01-02"

// Frequency is the stepping interval between produced dates.
type Frequency int

const (
	Daily Frequency = iota
	Weekly
	Biweekly
	Monthly
	Bimonthly
	Quarterly
	Yearly
)

var frequencyNames = map[string]Frequency{
	"daily":     Daily,
	"weekly":    Weekly,
	"biweekly":  Biweekly,
	"monthly":   Monthly,
	"bimonthly": Bimonthly,
	"quarterly": Quarterly,
	"yearly":    Yearly,
}

// ParseFrequency maps a frequency name to its value. Unknown names fall back
// to Daily, matching the permissive argument handling of the other modules.
func ParseFrequency(s string) Frequency {
	if f, ok := frequencyNames[strings.ToLower(strings.TrimSpace(s))]; ok {
		return f
	}
	return Daily
}

// String returns the frequency name.
func (f Frequency) String() string {
	switch f {
	case Weekly:
		return "weekly"
	case Biweekly:
		return "biweekly"
	case Monthly:
		return "monthly"
	case Bimonthly:
		return "bimonthly"
	case Quarterly:
		return "quarterly"
	case Yearly:
		return "yearly"
	default:
		return "daily"
	}
}

// step advances a date by one frequency interval.
func (f Frequency) step(t time.Time) time.Time {
	switch f {
	case Weekly:
		return t.AddDate(0, 0, 7)
	case Biweekly:
		return t.AddDate(0, 0, 14)
	case Monthly:
		return t.AddDate(0, 1, 0)
	case Bimonthly:
		return t.AddDate(0, 2, 0)
	case Quarterly:
		return t.AddDate(0, 3, 0)
	case Yearly:
		return t.AddDate(1, 0, 0)
	default:
		return t.AddDate(0, 0, 1)
	}
}

// Defaults when creation arguments are absent or unparseable.
var (
	defaultStart = time.Date(1, time.January, 1, 0, 0, 0, 0, time.UTC)
	defaultStop  = time.Date(9999, time.December, 31, 0, 0, 0, 0, time.UTC)
)

// Module is the calendar factory.
type Module struct{}

// New returns the calendar module.
func New() *Module { return &Module{} }

// Create declares the schema and parses optional start-date, stop-date and
// frequency-name arguments. No persistent state, so Connect is identical.
func (m *Module) Create(ctx *vtable.Context, args []string) (vtable.Table, error) {
	if err := ctx.Declare(schema); err != nil {
		return nil, err
	}
	return parseArgs(args), nil
}

// Connect attaches to an existing calendar table.
func (m *Module) Connect(ctx *vtable.Context, args []string) (vtable.Table, error) {
	return m.Create(ctx, args)
}

func parseArgs(args []string) *Table {
	t := &Table{start: defaultStart, stop: defaultStop, freq: Daily}
	params := args
	if len(params) > 3 {
		params = params[3:]
	} else {
		params = nil
	}
	if len(params) > 0 {
		if d, ok := parseDate(params[0]); ok {
			t.start = d
		}
	}
	if len(params) > 1 {
		if d, ok := parseDate(params[1]); ok {
			t.stop = d
		}
	}
	if len(params) > 2 {
		t.freq = ParseFrequency(params[2])
	}
	return t
}

func parseDate(s string) (time.Time, bool) {
	s = strings.Trim(strings.TrimSpace(s), "'\"")
	d, err := time.ParseInLocation(dateLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, false
	}
	return d, true
}

// Table is one calendar instance holding the default range and frequency.
type Table struct {
	start, stop time.Time
	freq        Frequency
}

// BestIndex accepts comparison constraints on the date column, equality on
// the derived year column, and equality on the hidden parameters. A usable
// non-equality operator on a parameter column, or an unusable parameter
// constraint, rejects the proposal.
func (t *Table) BestIndex(req *vtable.IndexRequest, b *vtable.PlanBuilder) error {
	var hasEQ, hasMin, hasMax, hasYear bool
	for i, c := range req.Constraints {
		switch c.Column {
		case colDate:
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
		case colYear:
			if c.Usable && c.Op == vtable.OpEQ {
				b.Use(i)
				hasYear = true
			}
		case colStart, colStop, colFrequency:
			if !c.Usable || c.Op != vtable.OpEQ {
				return vtable.ErrNoPlan
			}
			b.UseOmitted(i)
		}
	}

	switch {
	case hasEQ:
		b.SetEstimate(1, 1)
		b.MarkUnique()
	case (hasMin && hasMax) || hasYear:
		b.SetEstimate(366, 366)
	case hasMin || hasMax:
		b.SetEstimate(100000, 100000)
	default:
		b.SetEstimate(1e6, 1<<20)
	}

	if len(req.Order) == 1 && req.Order[0].Column == colDate {
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

// Cursor walks one calendar scan.
type Cursor struct {
	table    *Table
	min, max time.Time
	freq     Frequency
	empty    bool
	desc     bool
	current  time.Time
	row      int64
}

// Filter resets the cursor: parameters first, then year inference, then date
// narrowing. NULL or unparseable bound values yield an empty scan.
func (c *Cursor) Filter(plan *vtable.FilterPlan, args []vtable.Value) error {
	c.row = 1
	c.desc = plan.Descending
	c.empty = false
	c.min, c.max, c.freq = c.table.start, c.table.stop, c.table.freq

	for _, a := range plan.Arguments {
		if a.ArgIndex >= len(args) {
			c.empty = true
			return nil
		}
		v := args[a.ArgIndex]
		switch a.Column {
		case colStart:
			d, ok := c.boundDate(v)
			if !ok {
				return nil
			}
			c.min = d
		case colStop:
			d, ok := c.boundDate(v)
			if !ok {
				return nil
			}
			c.max = d
		case colFrequency:
			if v.IsNull() {
				c.empty = true
				return nil
			}
			c.freq = ParseFrequency(v.Text())
		}
	}

	for _, a := range plan.Arguments {
		if a.Column != colYear {
			continue
		}
		v := args[a.ArgIndex]
		if v.IsNull() {
			c.empty = true
			return nil
		}
		y := int(v.Int64())
		yStart := time.Date(y, time.January, 1, 0, 0, 0, 0, time.UTC)
		yStop := time.Date(y, time.December, 31, 0, 0, 0, 0, time.UTC)
		if yStart.After(c.min) {
			c.min = yStart
		}
		if yStop.Before(c.max) {
			c.max = yStop
		}
	}

	for _, a := range plan.Arguments {
		if a.Column != colDate {
			continue
		}
		v := args[a.ArgIndex]
		if !a.Op.IsComparison() {
			continue
		}
		d, ok := c.boundDate(v)
		if !ok {
			return nil
		}
		switch a.Op {
		case vtable.OpEQ:
			if d.After(c.min) {
				c.min = d
			}
			if d.Before(c.max) {
				c.max = d
			}
		case vtable.OpGE:
			if d.After(c.min) {
				c.min = d
			}
		case vtable.OpGT:
			if nd := d.AddDate(0, 0, 1); nd.After(c.min) {
				c.min = nd
			}
		case vtable.OpLE:
			if d.Before(c.max) {
				c.max = d
			}
		case vtable.OpLT:
			if nd := d.AddDate(0, 0, -1); nd.Before(c.max) {
				c.max = nd
			}
		}
	}

	if c.max.Before(c.min) {
		c.empty = true
		return nil
	}
	if c.desc {
		c.current = c.lastOnGrid()
	} else {
		c.current = c.min
	}
	return nil
}

// boundDate resolves one bound argument. NULL and unparseable text both
// poison the scan to empty; the second result is false once that happened.
func (c *Cursor) boundDate(v vtable.Value) (time.Time, bool) {
	if v.IsNull() {
		c.empty = true
		return time.Time{}, false
	}
	d, ok := parseDate(v.Text())
	if !ok {
		c.empty = true
		return time.Time{}, false
	}
	return d, true
}

// lastOnGrid walks forward from min to the last date not after max, so a
// descending scan steps down onto the same dates an ascending one produces.
func (c *Cursor) lastOnGrid() time.Time {
	cur := c.min
	for i := int64(0); i < vtable.RowCap; i++ {
		next := c.freq.step(cur)
		if next.After(c.max) {
			return cur
		}
		cur = next
	}
	return cur
}

// Next advances one frequency step in the scan direction.
func (c *Cursor) Next() error {
	if c.desc {
		c.current = c.stepBack(c.current)
	} else {
		c.current = c.freq.step(c.current)
	}
	c.row++
	return nil
}

// stepBack inverts one frequency step.
func (c *Cursor) stepBack(t time.Time) time.Time {
	switch c.freq {
	case Weekly:
		return t.AddDate(0, 0, -7)
	case Biweekly:
		return t.AddDate(0, 0, -14)
	case Monthly:
		return t.AddDate(0, -1, 0)
	case Bimonthly:
		return t.AddDate(0, -2, 0)
	case Quarterly:
		return t.AddDate(0, -3, 0)
	case Yearly:
		return t.AddDate(-1, 0, 0)
	default:
		return t.AddDate(0, 0, -1)
	}
}

// Eof reports exhaustion: position out of range or the row cap crossed.
func (c *Cursor) Eof() bool {
	if c.empty || c.row > vtable.RowCap {
		return true
	}
	if c.desc {
		return c.current.Before(c.min)
	}
	return c.current.After(c.max)
}

// Column yields the current date or year; hidden parameter columns report
// their resolved values. Out-of-range columns degrade to NULL.
func (c *Cursor) Column(col int) (vtable.Value, error) {
	switch col {
	case colDate:
		return vtable.TextValue(c.current.Format(dateLayout)), nil
	case colYear:
		return vtable.IntegerValue(int64(c.current.Year())), nil
	case colStart:
		return vtable.TextValue(c.min.Format(dateLayout)), nil
	case colStop:
		return vtable.TextValue(c.max.Format(dateLayout)), nil
	case colFrequency:
		return vtable.TextValue(c.freq.String()), nil
	default:
		return vtable.NullValue(), nil
	}
}

// Rowid is the 1-based row counter.
func (c *Cursor) Rowid() (int64, error) { return c.row, nil }

// Close has nothing to release.
func (c *Cursor) Close() error { return nil }
