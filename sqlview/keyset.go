package sqlview

import (
	"fmt"

	"github.com/samber/lo"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type (
	tConjunct struct {
		Column   string
		Value    any
		Operator Operator
	}

	tDisjunct []tConjunct

	// tDNF represents the disjunctive normal form (DNF) of a logical expression.
	// Each disjunct is joined by OR, and each disjunct consists of a list of
	// conjuncts which are joined by AND. A conjunct is the value of
	// Operator(Column, Value).
	//
	// Thus:
	//
	//	DNF = X1 OR X2 ... OR Xn, where Xi = Ai1 AND Ai2 ... AND Aim.
	tDNF []tDisjunct

	// tPosition is a compressed keyset condition of the form
	//
	//	[(C1, O1, V1), (C2, O2, V2)... (Cn, On, Vn)]
	//
	// which inflates to
	//
	//	(C1 O1 V1) or (C1 = V1 and C2 O2 V2) ...
	tPosition []tConjunct
)

// positionBounds builds the conditions of a scan starting at (key, docID) in
// the given direction:
//   - from selects the start row and everything after it;
//   - preceding selects every row the scan skips, which is the scan offset.
//
// Without a document id the start is every row with an equal key.
func positionBounds(direction Direction, key any, docID string) (from tDNF, preceding tDNF) {
	strict := direction.ForOperator()
	before := direction.Reverse().ForOperator()

	if docID == "" {
		from = tPosition{{Column: ColumnKey, Value: key, Operator: strict.Inclusive()}}.toDNF()
		preceding = tPosition{{Column: ColumnKey, Value: key, Operator: before}}.toDNF()

		return from, preceding
	}

	from = tPosition{
		{Column: ColumnKey, Value: key, Operator: strict},
		{Column: ColumnDocID, Value: docID, Operator: strict.Inclusive()},
	}.toDNF()
	preceding = tPosition{
		{Column: ColumnKey, Value: key, Operator: before},
		{Column: ColumnDocID, Value: docID, Operator: before},
	}.toDNF()

	return from, preceding
}

// toDNF inflates the compressed position: every element is preceded by
// equality conditions on all the elements before it.
func (p tPosition) toDNF() tDNF {
	if len(p) == 0 {
		return nil
	}

	dnf := make(tDNF, 0, len(p))
	for i := range p {
		previousElementsWithEqualityCondition := lo.Map(p[:i], func(item tConjunct, _ int) tConjunct {
			return tConjunct{Column: item.Column, Value: item.Value, Operator: operatorEq}
		})

		disjunct := make(tDisjunct, 0, i+1)
		disjunct = append(disjunct, previousElementsWithEqualityCondition...)
		disjunct = append(disjunct, p[i])

		dnf = append(dnf, disjunct)
	}

	return dnf
}

// toGORMExpression converts a conjunct of the form Operator(Column, Value)
// into an SQL condition "Column Operator ?".
func (c tConjunct) toGORMExpression() clause.Expression {
	return clause.Expr{
		SQL:  fmt.Sprintf("%s %s ?", c.Column, c.Operator),
		Vars: []any{c.Value},
	}
}

// toGORMExpression converts a disjunct (K1, K2, K3) into a gorm expression
// "K1 AND K2 AND K3".
func (d tDisjunct) toGORMExpression() clause.Expression {
	andExpressions := make([]clause.Expression, 0, len(d))
	for _, conjunct := range d {
		andExpressions = append(andExpressions, conjunct.toGORMExpression())
	}

	if len(andExpressions) == 1 {
		return andExpressions[0]
	} else if len(andExpressions) > 1 {
		return clause.And(andExpressions...)
	}

	return nil
}

// toGORMExpression joins the disjuncts with OR.
func (d tDNF) toGORMExpression() clause.Expression {
	orExpressions := make([]clause.Expression, 0, len(d))

	for _, disjunct := range d {
		andExpressions := disjunct.toGORMExpression()
		if andExpressions == nil {
			continue
		}

		orExpressions = append(orExpressions, andExpressions)
	}

	if len(orExpressions) == 1 {
		return orExpressions[0]
	} else if len(orExpressions) > 1 {
		return clause.Or(orExpressions...)
	}

	return nil
}

// Apply adds the condition to a gorm query. An empty DNF leaves the query
// unchanged.
func (d tDNF) Apply(db *gorm.DB) *gorm.DB {
	exp := d.toGORMExpression()
	if exp == nil {
		return db
	}

	return db.Clauses(exp)
}
