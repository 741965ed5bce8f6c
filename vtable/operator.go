package vtable

import "modernc.org/sqlite/vtab"

// Operator identifies the comparison kind of a constraint offered by the
// query planner.
type Operator int

const (
	OpUnknown Operator = iota
	OpEQ
	OpGT
	OpLE
	OpLT
	OpGE
	OpMATCH
	OpNE
	OpIS
	OpISNOT
	OpISNULL
	OpISNOTNULL
	OpLIKE
	OpGLOB
	OpREGEXP
	OpFUNCTION
	OpLIMIT
	OpOFFSET
)

var operatorNames = map[Operator]string{
	OpUnknown:   "?",
	OpEQ:        "=",
	OpGT:        ">",
	OpLE:        "<=",
	OpLT:        "<",
	OpGE:        ">=",
	OpMATCH:     "MATCH",
	OpNE:        "!=",
	OpIS:        "IS",
	OpISNOT:     "IS NOT",
	OpISNULL:    "ISNULL",
	OpISNOTNULL: "ISNOTNULL",
	OpLIKE:      "LIKE",
	OpGLOB:      "GLOB",
	OpREGEXP:    "REGEXP",
	OpFUNCTION:  "FUNCTION",
	OpLIMIT:     "LIMIT",
	OpOFFSET:    "OFFSET",
}

// String returns the SQL spelling of the operator for diagnostics.
func (o Operator) String() string {
	if s, ok := operatorNames[o]; ok {
		return s
	}
	return "?"
}

// IsComparison reports whether the operator is one of =, >, >=, <, <= — the
// set a value column can turn into range bounds.
func (o Operator) IsComparison() bool {
	switch o {
	case OpEQ, OpGT, OpGE, OpLT, OpLE:
		return true
	}
	return false
}

func operatorFromDriver(op vtab.ConstraintOp) Operator {
	switch op {
	case vtab.OpEQ:
		return OpEQ
	case vtab.OpGT:
		return OpGT
	case vtab.OpLE:
		return OpLE
	case vtab.OpLT:
		return OpLT
	case vtab.OpGE:
		return OpGE
	case vtab.OpMATCH:
		return OpMATCH
	case vtab.OpNE:
		return OpNE
	case vtab.OpIS:
		return OpIS
	case vtab.OpISNOT:
		return OpISNOT
	case vtab.OpISNULL:
		return OpISNULL
	case vtab.OpISNOTNULL:
		return OpISNOTNULL
	case vtab.OpLIKE:
		return OpLIKE
	case vtab.OpGLOB:
		return OpGLOB
	case vtab.OpREGEXP:
		return OpREGEXP
	case vtab.OpFUNCTION:
		return OpFUNCTION
	case vtab.OpLIMIT:
		return OpLIMIT
	case vtab.OpOFFSET:
		return OpOFFSET
	default:
		return OpUnknown
	}
}
