// Package validator contains the default [domain.Validator] implementation.
package validator

import (
	"fmt"
	"math"
	"strings"

	"github.com/vinicius-lino-figueiredo/bookquery/adapter/projector"
	"github.com/vinicius-lino-figueiredo/bookquery/domain"
)

// MaxRoundPlaces is the largest precision accepted by a [domain.Round].
const MaxRoundPlaces = 20

// Validator implements [domain.Validator] for a fixed set of fields.
type Validator struct {
	fields map[string]domain.Kind
}

// NewValidator returns a new implementation of [domain.Validator]. Unless
// [WithFields] is given, it accepts the fields of [domain.BookRecord].
func NewValidator(opts ...Option) domain.Validator {
	v := Validator{fields: domain.BookFields}
	for _, opt := range opts {
		opt(&v)
	}
	return &v
}

// ValidateFilter implements [domain.Validator].
func (v *Validator) ValidateFilter(f domain.Filter) error {
	for n, p := range f {
		if err := v.validatePredicate(p); err != nil {
			return fmt.Errorf("%w: predicate %d: %w", domain.ErrInvalidSpec, n, err)
		}
	}
	return nil
}

func (v *Validator) validatePredicate(p domain.Predicate) error {
	kind, ok := v.fields[p.Field]
	if !ok {
		return fmt.Errorf("unknown field %q", p.Field)
	}
	switch p.Op {
	case domain.OpEq, domain.OpNe:
		if p.Value == nil {
			return nil
		}
		return v.checkValue(p.Field, kind, p.Value, false)
	case domain.OpGt, domain.OpGte, domain.OpLt, domain.OpLte:
		return v.checkValue(p.Field, kind, p.Value, false)
	case domain.OpIn:
		values, ok := p.Value.([]any)
		if !ok {
			return fmt.Errorf("operator in on %q requires a list, got %T", p.Field, p.Value)
		}
		for _, value := range values {
			if err := v.checkValue(p.Field, kind, value, false); err != nil {
				return err
			}
		}
		return nil
	}
	return fmt.Errorf("unknown operator %q", p.Op)
}

// checkValue reports whether value suits kind. Integer fields accept any
// number when compared, but only integral values when set.
func (v *Validator) checkValue(field string, kind domain.Kind, value any, set bool) error {
	ok := false
	switch kind {
	case domain.KindAny:
		ok = true
	case domain.KindString:
		_, ok = value.(string)
	case domain.KindBool:
		_, ok = value.(bool)
	case domain.KindNumber:
		_, ok = toFloat(value)
	case domain.KindInteger:
		var f float64
		f, ok = toFloat(value)
		if ok && set {
			ok = f == math.Trunc(f)
		}
	}
	if !ok {
		return fmt.Errorf("value %v (%T) does not suit field %q", value, value, field)
	}
	return nil
}

// ValidateFindOptions implements [domain.Validator].
func (v *Validator) ValidateFindOptions(opts domain.FindOptions) error {
	for field := range opts.Projection {
		if _, ok := v.fields[field]; !ok {
			return fmt.Errorf("%w: projection: unknown field %q", domain.ErrInvalidSpec, field)
		}
	}
	if _, err := projector.Mode(opts.Projection); err != nil {
		return fmt.Errorf("projection: %w", err)
	}

	if err := v.validateSort(opts.Sort, func(f string) bool { _, ok := v.fields[f]; return ok }); err != nil {
		return fmt.Errorf("%w: sort: %w", domain.ErrInvalidSpec, err)
	}

	if p := opts.Page; p != nil {
		if p.Offset < 0 {
			return fmt.Errorf("%w: page: negative offset %d", domain.ErrInvalidSpec, p.Offset)
		}
		if p.Limit <= 0 {
			return fmt.Errorf("%w: page: non-positive limit %d", domain.ErrInvalidSpec, p.Limit)
		}
	}
	return nil
}

func (v *Validator) validateSort(sort domain.Sort, defined func(string) bool) error {
	seen := make(map[string]bool, len(sort))
	for _, s := range sort {
		if !defined(s.Key) {
			return fmt.Errorf("unknown field %q", s.Key)
		}
		if seen[s.Key] {
			return fmt.Errorf("field %q listed twice", s.Key)
		}
		seen[s.Key] = true
		if s.Order != domain.Ascending && s.Order != domain.Descending {
			return fmt.Errorf("invalid order %d for %q", s.Order, s.Key)
		}
	}
	return nil
}

// ValidateChanges implements [domain.Validator].
func (v *Validator) ValidateChanges(changes domain.Changes) error {
	if len(changes) == 0 {
		return fmt.Errorf("%w: changes: nothing to set", domain.ErrInvalidSpec)
	}
	for field, value := range changes {
		if field == domain.FieldID {
			return fmt.Errorf("%w: changes: %s cannot be modified", domain.ErrInvalidSpec, domain.FieldID)
		}
		kind, ok := v.fields[field]
		if !ok {
			return fmt.Errorf("%w: changes: unknown field %q", domain.ErrInvalidSpec, field)
		}
		if err := v.checkValue(field, kind, value, true); err != nil {
			return fmt.Errorf("%w: changes: %w", domain.ErrInvalidSpec, err)
		}
	}
	return nil
}

// ValidateIndexKeys implements [domain.Validator].
func (v *Validator) ValidateIndexKeys(keys domain.IndexKeys) error {
	if len(keys) == 0 {
		return fmt.Errorf("%w: index: no keys", domain.ErrInvalidSpec)
	}
	sort := make(domain.Sort, len(keys))
	for n, k := range keys {
		sort[n] = domain.SortName{Key: k.Field, Order: k.Direction}
	}
	if err := v.validateSort(sort, func(f string) bool { _, ok := v.fields[f]; return ok }); err != nil {
		return fmt.Errorf("%w: index: %w", domain.ErrInvalidSpec, err)
	}
	return nil
}

// ValidatePipeline implements [domain.Validator]. The set of defined fields
// starts as the validator fields and is carried through every stage, so a
// stage may only reference what its predecessors produce.
func (v *Validator) ValidatePipeline(pipeline domain.Pipeline) error {
	defined := make(map[string]bool, len(v.fields))
	for f := range v.fields {
		defined[f] = true
	}

	var err error
	for n, stage := range pipeline {
		defined, err = v.validateStage(stage, defined)
		if err != nil {
			return fmt.Errorf("%w: stage %d (%s): %w", domain.ErrInvalidPipeline, n, StageName(stage), err)
		}
	}
	return nil
}

// StageName returns the conventional name of a stage.
func StageName(stage domain.Stage) string {
	switch stage.(type) {
	case domain.GroupStage:
		return "group"
	case domain.SortStage:
		return "sort"
	case domain.ProjectStage:
		return "project"
	case domain.AddFieldsStage:
		return "addFields"
	case domain.LimitStage:
		return "limit"
	}
	return fmt.Sprintf("%T", stage)
}

func (v *Validator) validateStage(stage domain.Stage, defined map[string]bool) (map[string]bool, error) {
	switch s := stage.(type) {
	case domain.GroupStage:
		return v.validateGroup(s, defined)
	case domain.SortStage:
		if len(s.Sort) == 0 {
			return nil, fmt.Errorf("no sort keys")
		}
		return defined, v.validateSort(s.Sort, func(f string) bool { return defined[f] })
	case domain.ProjectStage:
		return v.validateProject(s, defined)
	case domain.AddFieldsStage:
		if len(s.Fields) == 0 {
			return nil, fmt.Errorf("no fields")
		}
		out := make(map[string]bool, len(defined)+len(s.Fields))
		for f := range defined {
			out[f] = true
		}
		if err := v.validateFields(s.Fields, defined, out); err != nil {
			return nil, err
		}
		return out, nil
	case domain.LimitStage:
		if s.N <= 0 {
			return nil, fmt.Errorf("non-positive limit %d", s.N)
		}
		return defined, nil
	}
	return nil, fmt.Errorf("unknown stage")
}

func (v *Validator) validateGroup(s domain.GroupStage, defined map[string]bool) (map[string]bool, error) {
	if s.Key != nil {
		if err := v.validateExpr(s.Key, defined); err != nil {
			return nil, fmt.Errorf("key: %w", err)
		}
	}
	out := map[string]bool{domain.FieldID: true}
	for _, acc := range s.Accumulators {
		if err := checkOutputName(acc.Name); err != nil {
			return nil, err
		}
		if out[acc.Name] {
			return nil, fmt.Errorf("field %q defined twice", acc.Name)
		}
		switch acc.Op {
		case domain.AccSum, domain.AccAvg, domain.AccMin, domain.AccMax, domain.AccPush:
		default:
			return nil, fmt.Errorf("unknown accumulator %q", acc.Op)
		}
		if err := v.validateExpr(acc.Expr, defined); err != nil {
			return nil, fmt.Errorf("%s: %w", acc.Name, err)
		}
		out[acc.Name] = true
	}
	return out, nil
}

func (v *Validator) validateProject(s domain.ProjectStage, defined map[string]bool) (map[string]bool, error) {
	if len(s.Fields) == 0 {
		return nil, fmt.Errorf("no fields")
	}
	out := make(map[string]bool, len(s.Fields)+1)
	if err := v.validateFields(s.Fields, defined, out); err != nil {
		return nil, err
	}
	if !s.ExcludeID && defined[domain.FieldID] {
		out[domain.FieldID] = true
	}
	return out, nil
}

// validateFields checks every field expression against defined and adds the
// field names to out.
func (v *Validator) validateFields(fields []domain.Field, defined, out map[string]bool) error {
	names := make(map[string]bool, len(fields))
	for _, f := range fields {
		if err := checkOutputName(f.Name); err != nil {
			return err
		}
		if names[f.Name] {
			return fmt.Errorf("field %q defined twice", f.Name)
		}
		names[f.Name] = true
		if err := v.validateExpr(f.Expr, defined); err != nil {
			return fmt.Errorf("%s: %w", f.Name, err)
		}
		out[f.Name] = true
	}
	return nil
}

func (v *Validator) validateExpr(e domain.Expr, defined map[string]bool) error {
	switch x := e.(type) {
	case domain.FieldRef:
		if !defined[x.Name] {
			return fmt.Errorf("field %q is not defined", x.Name)
		}
		return nil
	case domain.Literal:
		return nil
	case domain.Divide:
		return v.validateExprs(defined, x.Left, x.Right)
	case domain.Multiply:
		return v.validateExprs(defined, x.Left, x.Right)
	case domain.Floor:
		return v.validateExpr(x.Value, defined)
	case domain.Round:
		if x.Places < 0 || x.Places > MaxRoundPlaces {
			return fmt.Errorf("round places %d out of range", x.Places)
		}
		return v.validateExpr(x.Value, defined)
	case domain.Object:
		return v.validateFields(x.Fields, defined, make(map[string]bool, len(x.Fields)))
	case nil:
		return fmt.Errorf("missing expression")
	}
	return fmt.Errorf("unknown expression %T", e)
}

func (v *Validator) validateExprs(defined map[string]bool, exprs ...domain.Expr) error {
	for _, e := range exprs {
		if err := v.validateExpr(e, defined); err != nil {
			return err
		}
	}
	return nil
}

func checkOutputName(name string) error {
	if name == "" {
		return fmt.Errorf("empty field name")
	}
	if name == domain.FieldID {
		return fmt.Errorf("%s cannot be computed", domain.FieldID)
	}
	if strings.HasPrefix(name, "$") || strings.Contains(name, ".") {
		return fmt.Errorf("invalid field name %q", name)
	}
	return nil
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}
