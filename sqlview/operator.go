package sqlview

import "fmt"

// Operator defines a comparison operator for filtering by column.
// Used in keyset position conditions.
type Operator string

func (o Operator) Valid() bool {
	switch o {
	case OperatorGT, OperatorLT, OperatorGTE, OperatorLTE:
		return true
	default:
		return false
	}
}

// Inclusive returns the non-strict form of a strict operator.
func (o Operator) Inclusive() Operator {
	switch o {
	case OperatorGT, OperatorGTE:
		return OperatorGTE
	case OperatorLT, OperatorLTE:
		return OperatorLTE
	default:
		panic(fmt.Errorf("operator '%s' has no inclusive form", o))
	}
}

func (o Operator) ForOrdering() Direction {
	switch o {
	case OperatorGT, OperatorGTE:
		return DirectionASC
	case OperatorLT, OperatorLTE:
		return DirectionDESC
	default:
		panic(fmt.Errorf("cannot map operator '%s' to ordering", o))
	}
}

const (
	OperatorGT  Operator = ">"
	OperatorLT  Operator = "<"
	OperatorGTE Operator = ">="
	OperatorLTE Operator = "<="

	// operatorEq is the equality operator. It is private because we use it
	// ONLY while building position conditions.
	operatorEq Operator = "="
)
