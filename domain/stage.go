package domain

// Stage is one step of an aggregation [Pipeline]. The set of stages is closed:
// [GroupStage], [SortStage], [ProjectStage], [AddFieldsStage] and
// [LimitStage].
type Stage interface {
	stage()
}

// Pipeline is an ordered sequence of stages. Each stage consumes the output of
// the previous one.
type Pipeline = []Stage

// AccumulatorOp is the function a [GroupStage] computes per group.
type AccumulatorOp string

// Supported accumulators.
const (
	AccSum  AccumulatorOp = "sum"
	AccAvg  AccumulatorOp = "avg"
	AccMin  AccumulatorOp = "min"
	AccMax  AccumulatorOp = "max"
	AccPush AccumulatorOp = "push"
)

// Accumulator computes the output field Name of every group by applying Op to
// Expr over the group's documents.
type Accumulator struct {
	Name string
	Op   AccumulatorOp
	Expr Expr
}

// GroupStage partitions its input by Key and emits one document per group,
// holding the key under _id and one field per accumulator. A nil Key puts
// every document in a single group.
type GroupStage struct {
	Key          Expr
	Accumulators []Accumulator
}

// SortStage orders its input.
type SortStage struct {
	Sort Sort
}

// Field names the result of an expression.
type Field struct {
	Name string
	Expr Expr
}

// ProjectStage replaces each document with the listed fields. _id is kept
// unless ExcludeID is set.
type ProjectStage struct {
	Fields    []Field
	ExcludeID bool
}

// AddFieldsStage adds (or replaces) computed fields on each document.
type AddFieldsStage struct {
	Fields []Field
}

// LimitStage keeps only the first N documents.
type LimitStage struct {
	N int64
}

func (GroupStage) stage()     {}
func (SortStage) stage()      {}
func (ProjectStage) stage()   {}
func (AddFieldsStage) stage() {}
func (LimitStage) stage()     {}

// Expr is an expression evaluated against a single document. The set of
// expressions is closed.
type Expr interface {
	expr()
}

// FieldRef reads a field of the current document.
type FieldRef struct {
	Name string
}

// Literal is a constant.
type Literal struct {
	Value any
}

// Divide is Left / Right. The result is always a float.
type Divide struct {
	Left, Right Expr
}

// Multiply is Left * Right.
type Multiply struct {
	Left, Right Expr
}

// Floor is the largest integer not greater than Value.
type Floor struct {
	Value Expr
}

// Round rounds Value to Places decimal places, half to even.
type Round struct {
	Value  Expr
	Places int
}

// Object builds a subdocument from named expressions.
type Object struct {
	Fields []Field
}

func (FieldRef) expr() {}
func (Literal) expr()  {}
func (Divide) expr()   {}
func (Multiply) expr() {}
func (Floor) expr()    {}
func (Round) expr()    {}
func (Object) expr()   {}

// Ref is shorthand for a [FieldRef].
func Ref(name string) FieldRef { return FieldRef{Name: name} }

// Lit is shorthand for a [Literal].
func Lit(v any) Literal { return Literal{Value: v} }

// Keep is a [ProjectStage] field that passes name through unchanged.
func Keep(name string) Field { return Field{Name: name, Expr: Ref(name)} }

// Count is an accumulator counting the documents of each group.
func Count(name string) Accumulator {
	return Accumulator{Name: name, Op: AccSum, Expr: Lit(1)}
}
