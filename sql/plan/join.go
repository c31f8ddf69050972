package plan

import (
	opentracing "github.com/opentracing/opentracing-go"

	"github.com/frameql/frameql/sql"
	"github.com/frameql/frameql/sql/expression"
)

// Join is a join between two from-sources with an ON condition. The ON
// condition is decomposed into a conjunction of terms; terms of the form
// leftColumn = rightColumn are resolved with a relational equi-merge, and
// whatever remains is evaluated as a predicate over the cartesian product of
// both sides.
type Join struct {
	left  sql.Source
	right sql.Source
	cond  sql.Expression
	outer bool
}

var _ sql.Source = (*Join)(nil)

// NewInnerJoin creates an inner join between two sources.
func NewInnerJoin(left, right sql.Source, cond sql.Expression) *Join {
	return &Join{left: left, right: right, cond: cond}
}

// NewOuterJoin creates a left-outer join between two sources. Every left row
// appears exactly once in the result: matched, or padded with nil right
// columns.
func NewOuterJoin(left, right sql.Source, cond sql.Expression) *Join {
	return &Join{left: left, right: right, cond: cond, outer: true}
}

// Name implements the Nameable interface.
func (j *Join) Name() string { return "join" }

// Materialize implements the Source interface.
func (j *Join) Materialize(ctx *sql.Context) (*sql.Frame, error) {
	span, ctx := ctx.Span("plan.Join", opentracing.Tags{
		"left":  j.left.Name(),
		"right": j.right.Name(),
		"outer": j.outer,
	})
	defer span.Finish()

	left, err := j.left.Materialize(ctx)
	if err != nil {
		return nil, err
	}
	right, err := j.right.Materialize(ctx)
	if err != nil {
		return nil, err
	}

	// Tag left rows with their identity so the unmatched set can be
	// recovered by set difference after remainder filtering.
	identity := sql.ColumnKey{}
	if j.outer {
		identity = sql.NewColumnKey("@synthetic", "left_identity")
		left = left.WithColumn(sql.FrameColumn{
			Key:  identity,
			Vals: indexValues(left.NumRows()),
		})
	}

	straight, remainder := j.splitCondition(left, right)

	product := left
	if len(straight) > 0 {
		leftOn := make([]sql.ColumnKey, len(straight))
		rightOn := make([]sql.ColumnKey, len(straight))
		for i, pair := range straight {
			leftOn[i], rightOn[i] = pair[0], pair[1]
		}
		product, err = left.Merge(right, leftOn, rightOn, j.outer)
		if err != nil {
			return nil, err
		}
	}

	if len(remainder) > 0 {
		product, err = j.applyRemainder(ctx, left, product, right, len(straight) > 0, remainder, identity)
		if err != nil {
			return nil, err
		}
	}

	if j.outer {
		product = product.DropColumn(identity)
	}
	return product, nil
}

// splitCondition decomposes the ON condition into straight equalities, as
// (leftKey, rightKey) pairs, and the remainder terms. A term whose operands
// resolve the other way around is recorded reversed but still merged.
func (j *Join) splitCondition(left, right *sql.Frame) (straight [][2]sql.ColumnKey, remainder []sql.Expression) {
	for _, term := range conjunctionTerms(j.cond) {
		if b, ok := term.(*expression.Binary); ok && b.Op == expression.OpEquals {
			lk, lok := keyOf(b.Left)
			rk, rok := keyOf(b.Right)
			if lok && rok {
				if left.HasColumn(lk) && right.HasColumn(rk) {
					straight = append(straight, [2]sql.ColumnKey{lk, rk})
					continue
				}
				if left.HasColumn(rk) && right.HasColumn(lk) {
					straight = append(straight, [2]sql.ColumnKey{rk, lk})
					continue
				}
			}
		}
		remainder = append(remainder, term)
	}
	return straight, remainder
}

func (j *Join) applyRemainder(
	ctx *sql.Context,
	left, product, right *sql.Frame,
	merged bool,
	remainder []sql.Expression,
	identity sql.ColumnKey,
) (*sql.Frame, error) {
	cond := remainder[0]
	if len(remainder) > 1 {
		cond = expression.NewClauseList(expression.OpAnd, remainder...)
	}

	if !merged {
		var err error
		product, err = product.Cross(right)
		if err != nil {
			return nil, err
		}
	}

	v, err := cond.Eval(ctx, product)
	if err != nil {
		return nil, err
	}
	mask, err := sql.BoolMask(v, product.NumRows())
	if err != nil {
		return nil, err
	}
	joined := product.Mask(mask)

	if !j.outer {
		return joined, nil
	}

	// Re-add the left rows that did not survive the filter, with nil right
	// columns.
	kept, err := joined.ColumnValues(identity)
	if err != nil {
		return nil, err
	}
	seen := map[interface{}]bool{}
	for _, id := range kept {
		seen[id] = true
	}
	ids, err := left.ColumnValues(identity)
	if err != nil {
		return nil, err
	}
	var missing []int
	for i, id := range ids {
		if !seen[id] {
			missing = append(missing, i)
		}
	}
	return joined.Concat(left.SelectRows(missing)), nil
}

// conjunctionTerms splits a condition on top-level AND only. A single
// non-AND condition is one term.
func conjunctionTerms(cond sql.Expression) []sql.Expression {
	switch c := cond.(type) {
	case *expression.ClauseList:
		if c.Op == expression.OpAnd {
			var terms []sql.Expression
			for _, e := range c.Exprs {
				terms = append(terms, conjunctionTerms(e)...)
			}
			return terms
		}
	case *expression.Binary:
		if c.Op == expression.OpAnd {
			return append(conjunctionTerms(c.Left), conjunctionTerms(c.Right)...)
		}
	}
	return []sql.Expression{cond}
}

func keyOf(e sql.Expression) (sql.ColumnKey, bool) {
	if k, ok := e.(sql.Keyed); ok {
		key := k.Key()
		return key, key != sql.ColumnKey{}
	}
	return sql.ColumnKey{}, false
}
