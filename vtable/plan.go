package vtable

import (
	"fmt"
	"strings"
)

// FilterArgument resolves one accepted constraint: which entry of the Filter
// argument array carries its value, which table column it targets, and with
// which operator.
type FilterArgument struct {
	ArgIndex int
	Column   int
	Op       Operator
}

// ColumnSet is a bitset over the first 64 table columns.
type ColumnSet uint64

// Add marks column col as referenced. Columns beyond 63 are ignored; SQLite
// folds them into the top bit.
func (s *ColumnSet) Add(col int) {
	if col >= 0 && col < 64 {
		*s |= 1 << uint(col)
	}
}

// Has reports whether column col is marked.
func (s ColumnSet) Has(col int) bool {
	return col >= 0 && col < 64 && s&(1<<uint(col)) != 0
}

// FilterPlan is the outcome of one bestIndex negotiation: the constraints the
// table agreed to serve, the columns the query touches and the production
// direction. It is created exactly once per compiled query and resolved by
// the cursor executing that query.
type FilterPlan struct {
	ID         int
	Arguments  []FilterArgument
	Columns    ColumnSet
	Descending bool
}

// String renders the plan for debug traces.
func (p *FilterPlan) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "plan %d [", p.ID)
	for i, a := range p.Arguments {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "col%d %s arg%d", a.Column, a.Op, a.ArgIndex)
	}
	b.WriteString("]")
	if p.Descending {
		b.WriteString(" desc")
	}
	return b.String()
}
