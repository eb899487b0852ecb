package sqlview

import (
	"fmt"
	"strings"

	"github.com/samber/lo"
	"gorm.io/gorm"
)

// Direction defines the sort direction of a view scan.
type Direction string

const (
	DirectionASC  Direction = "ASC"
	DirectionDESC Direction = "DESC"
)

func (o Direction) Valid() bool {
	return o == DirectionASC || o == DirectionDESC
}

// ForOperator returns the strict operator selecting rows after a position in
// this direction.
func (o Direction) ForOperator() Operator {
	switch o {
	case DirectionASC:
		return OperatorGT
	case DirectionDESC:
		return OperatorLT
	default:
		panic(fmt.Errorf("cannot map direction '%s' to operator", o))
	}
}

func (o Direction) Reverse() Direction {
	return lo.Ternary(o == DirectionASC, DirectionDESC, DirectionASC)
}

type (
	Orderings []OrderBy
	OrderBy   struct {
		Column    string
		Direction Direction
	}
)

var _availableIdentifierSymbols = append([]rune("_."), lo.AlphanumericCharset...)

// validateIdentifier guards against SQL injection through configured table
// and column names.
func validateIdentifier(name string) error {
	if name == "" {
		return fmt.Errorf("empty identifier")
	}

	if !lo.Every(_availableIdentifierSymbols, []rune(name)) {
		return fmt.Errorf("identifier contains forbidden symbols '%s'", name)
	}

	return nil
}

func (o OrderBy) validate() error {
	if !o.Direction.Valid() {
		return fmt.Errorf("invalid ordering direction '%s'", o.Direction)
	}

	return validateIdentifier(o.Column)
}

// viewOrderings orders by key with the document id as a tiebreak.
func viewOrderings(direction Direction) Orderings {
	return Orderings{
		{Column: ColumnKey, Direction: direction},
		{Column: ColumnDocID, Direction: direction},
	}
}

// ToSQL converts Orderings to a single string
// "<order_column_1> <order_direction_1>, <order_column_2> <order_direction_2>".
// Example: for [{"view_key", "ASC"}, {"doc_id", "ASC"}] returns "view_key ASC, doc_id ASC".
func (o Orderings) ToSQL() string {
	return strings.Join(lo.Map(o, func(ordering OrderBy, _ int) string {
		return fmt.Sprintf("%s %s", ordering.Column, ordering.Direction)
	}), ", ")
}

// Apply applies the ordering to a gorm query.
func (o Orderings) Apply(db *gorm.DB) *gorm.DB {
	return db.Order(o.ToSQL())
}

func (o Orderings) validate() error {
	if len(o) == 0 {
		return fmt.Errorf("empty ordering list")
	}

	var err error
	for _, ordering := range o {
		err = ordering.validate()
		if err != nil {
			return err
		}
	}

	return nil
}
