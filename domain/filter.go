package domain

// Operator is a comparison used by a [Predicate].
type Operator string

// Supported operators.
const (
	OpEq  Operator = "eq"
	OpNe  Operator = "ne"
	OpGt  Operator = "gt"
	OpGte Operator = "gte"
	OpLt  Operator = "lt"
	OpLte Operator = "lte"
	OpIn  Operator = "in"
)

// Predicate compares the value under Field with Value.
type Predicate struct {
	Field string
	Op    Operator
	Value any
}

// Filter is a conjunction of predicates. An empty Filter matches every
// document. More than one predicate can target the same field, which is how
// ranges are expressed.
type Filter []Predicate

// And returns a new Filter holding the predicates of f followed by p.
func (f Filter) And(p ...Predicate) Filter {
	res := make(Filter, 0, len(f)+len(p))
	res = append(res, f...)
	return append(res, p...)
}

// Where builds a Filter from the given predicates.
func Where(p ...Predicate) Filter {
	return Filter(nil).And(p...)
}

// Eq matches documents whose field equals v.
func Eq(field string, v any) Predicate { return Predicate{Field: field, Op: OpEq, Value: v} }

// Ne matches documents whose field differs from v.
func Ne(field string, v any) Predicate { return Predicate{Field: field, Op: OpNe, Value: v} }

// Gt matches documents whose field is greater than v.
func Gt(field string, v any) Predicate { return Predicate{Field: field, Op: OpGt, Value: v} }

// Gte matches documents whose field is greater than or equal to v.
func Gte(field string, v any) Predicate { return Predicate{Field: field, Op: OpGte, Value: v} }

// Lt matches documents whose field is lower than v.
func Lt(field string, v any) Predicate { return Predicate{Field: field, Op: OpLt, Value: v} }

// Lte matches documents whose field is lower than or equal to v.
func Lte(field string, v any) Predicate { return Predicate{Field: field, Op: OpLte, Value: v} }

// In matches documents whose field equals any of the given values.
func In(field string, v ...any) Predicate { return Predicate{Field: field, Op: OpIn, Value: v} }

// Projection selects the fields returned by a query. A value of 1 keeps the
// field, 0 drops it. Both modes cannot be mixed, except for _id.
type Projection = map[string]uint8

// Include returns a projection keeping only the given fields (and _id).
func Include(fields ...string) Projection {
	p := make(Projection, len(fields))
	for _, f := range fields {
		p[f] = 1
	}
	return p
}

// Exclude returns a projection dropping the given fields.
func Exclude(fields ...string) Projection {
	p := make(Projection, len(fields))
	for _, f := range fields {
		p[f] = 0
	}
	return p
}

// WithoutID returns a copy of p that also drops _id.
func WithoutID(p Projection) Projection {
	res := make(Projection, len(p)+1)
	for k, v := range p {
		res[k] = v
	}
	res[FieldID] = 0
	return res
}
