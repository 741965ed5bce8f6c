package vtable

import "math"

// Int64Range is the scan state of integer-valued cursors: a closed [Min, Max]
// interval walked in Step increments. Narrow folds accepted constraints into
// the interval; a NULL bound poisons the range to empty because nothing
// compares against NULL.
type Int64Range struct {
	Min  int64
	Max  int64
	Step int64 // always > 0; direction is chosen by the cursor
}

// MarkEmpty inverts the range so that no value is in bounds.
func (r *Int64Range) MarkEmpty() {
	r.Min = 1
	r.Max = 0
}

// Empty reports whether the range contains no values.
func (r *Int64Range) Empty() bool { return r.Min > r.Max }

// Narrow tightens the range according to one constraint. Equality pins both
// ends, < and <= lower the maximum, > and >= raise the minimum. Operators
// outside the comparison set leave the range untouched.
func (r *Int64Range) Narrow(op Operator, v Value) {
	if !op.IsComparison() {
		return
	}
	if v.IsNull() {
		r.MarkEmpty()
		return
	}
	n := v.Int64()
	switch op {
	case OpEQ:
		if n > r.Min {
			r.Min = n
		}
		if n < r.Max {
			r.Max = n
		}
	case OpGE:
		if n > r.Min {
			r.Min = n
		}
	case OpGT:
		if n == math.MaxInt64 {
			r.MarkEmpty()
			return
		}
		if n+1 > r.Min {
			r.Min = n + 1
		}
	case OpLE:
		if n < r.Max {
			r.Max = n
		}
	case OpLT:
		if n == math.MinInt64 {
			r.MarkEmpty()
			return
		}
		if n-1 < r.Max {
			r.Max = n - 1
		}
	}
}

// First returns the initial cursor position: Min when ascending, and for a
// descending walk the largest on-grid value not above Max, so that stepping
// down lands exactly on Min's grid.
func (r *Int64Range) First(desc bool) int64 {
	if !desc {
		return r.Min
	}
	step := r.Step
	if step <= 0 {
		step = 1
	}
	return r.Max - (r.Max-r.Min)%step
}
