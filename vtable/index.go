package vtable

// IndexConstraint is one WHERE-clause term the planner offers: a column, an
// operator and whether the term's value will actually be available at
// execution time. Unusable constraints appear during join-order exploration
// and must not receive argument slots.
type IndexConstraint struct {
	Column int
	Op     Operator
	Usable bool
}

// OrderTerm is one ORDER BY key of the query.
type OrderTerm struct {
	Column int
	Desc   bool
}

// IndexRequest carries everything the planner tells a table about one
// candidate query plan.
type IndexRequest struct {
	Constraints []IndexConstraint
	Order       []OrderTerm
	ColumnsUsed ColumnSet
}

type argUse struct {
	used     bool
	argIndex int
	omit     bool
}

// PlanBuilder accumulates a table's answer to one IndexRequest: which
// constraints it accepts (each receiving the next argument slot), the cost
// estimate, and whether the requested ordering is satisfied natively. The
// adapter turns the finished builder into a registered FilterPlan.
type PlanBuilder struct {
	req           *IndexRequest
	usage         []argUse
	args          []FilterArgument
	descending    bool
	orderConsumed bool
	cost          float64
	rows          int64
	unique        bool
}

// NewPlanBuilder returns a builder for the given request.
func NewPlanBuilder(req *IndexRequest) *PlanBuilder {
	return &PlanBuilder{req: req, usage: make([]argUse, len(req.Constraints))}
}

// Use accepts constraint i of the request, assigning it the next argument
// slot. Argument slots are contiguous from 0 in acceptance order; the engine
// presents Filter's argument array in exactly that order. Returns the
// assigned slot. Accepting a constraint twice keeps its first slot.
func (b *PlanBuilder) Use(i int) int { return b.use(i, false) }

// UseOmitted is Use plus a promise that the table fully enforces the
// constraint, letting the engine skip its own re-check. Only safe for
// parameter columns whose reported value equals the bound one by
// construction.
func (b *PlanBuilder) UseOmitted(i int) int { return b.use(i, true) }

func (b *PlanBuilder) use(i int, omit bool) int {
	if i < 0 || i >= len(b.usage) {
		return -1
	}
	if b.usage[i].used {
		return b.usage[i].argIndex
	}
	c := b.req.Constraints[i]
	idx := len(b.args)
	b.usage[i] = argUse{used: true, argIndex: idx, omit: omit}
	b.args = append(b.args, FilterArgument{ArgIndex: idx, Column: c.Column, Op: c.Op})
	return idx
}

// ConsumeOrder records that the table will produce rows in the requested
// direction, sparing the engine a sort.
func (b *PlanBuilder) ConsumeOrder(desc bool) {
	b.orderConsumed = true
	b.descending = desc
}

// SetEstimate records the plan's estimated cost and row count.
func (b *PlanBuilder) SetEstimate(cost float64, rows int64) {
	b.cost = cost
	b.rows = rows
}

// MarkUnique declares that the plan visits at most one row.
func (b *PlanBuilder) MarkUnique() { b.unique = true }

// EstimatedCost returns the recorded cost estimate.
func (b *PlanBuilder) EstimatedCost() float64 { return b.cost }

// EstimatedRows returns the recorded row estimate.
func (b *PlanBuilder) EstimatedRows() int64 { return b.rows }

// Unique reports whether the plan was marked unique.
func (b *PlanBuilder) Unique() bool { return b.unique }

// OrderConsumed reports whether the table took over the requested ordering.
func (b *PlanBuilder) OrderConsumed() bool { return b.orderConsumed }

// Plan materializes the FilterPlan described so far. The id is zero until a
// registry assigns one.
func (b *PlanBuilder) Plan() *FilterPlan {
	return &FilterPlan{
		Arguments:  append([]FilterArgument(nil), b.args...),
		Columns:    b.req.ColumnsUsed,
		Descending: b.descending,
	}
}
