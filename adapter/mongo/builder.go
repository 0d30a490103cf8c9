package mongo

import (
	"fmt"
	"slices"

	"github.com/vinicius-lino-figueiredo/bookquery/domain"
	"go.mongodb.org/mongo-driver/bson"
)

var operators = map[domain.Operator]string{
	domain.OpEq:  "$eq",
	domain.OpNe:  "$ne",
	domain.OpGt:  "$gt",
	domain.OpGte: "$gte",
	domain.OpLt:  "$lt",
	domain.OpLte: "$lte",
	domain.OpIn:  "$in",
}

// BuildFilter translates f into a query document. Predicates on the same
// field are merged into one operator document, in the order they appear.
// An operator repeated on a field cannot share that document, so the repeated
// predicates go to a trailing $and.
func BuildFilter(f domain.Filter) (bson.D, error) {
	res := bson.D{}
	var and bson.A
	for n, p := range f {
		op, ok := operators[p.Op]
		if !ok {
			return nil, fmt.Errorf("%w: predicate %d: unknown operator %q", domain.ErrInvalidSpec, n, p.Op)
		}
		value := p.Value
		if p.Op == domain.OpIn {
			value = inValues(value)
		}

		i := slices.IndexFunc(res, func(e bson.E) bool { return e.Key == p.Field })
		if i < 0 {
			res = append(res, bson.E{Key: p.Field, Value: bson.D{{Key: op, Value: value}}})
			continue
		}
		ops := res[i].Value.(bson.D)
		if slices.ContainsFunc(ops, func(e bson.E) bool { return e.Key == op }) {
			and = append(and, bson.D{{Key: p.Field, Value: bson.D{{Key: op, Value: value}}}})
			continue
		}
		res[i].Value = append(ops, bson.E{Key: op, Value: value})
	}
	if len(and) > 0 {
		res = append(res, bson.E{Key: "$and", Value: and})
	}
	return res, nil
}

func inValues(v any) bson.A {
	switch t := v.(type) {
	case []any:
		return bson.A(t)
	case nil:
		return bson.A{}
	default:
		return bson.A{t}
	}
}

// BuildProjection translates p into a projection document with sorted keys.
// It returns nil for an empty projection.
func BuildProjection(p domain.Projection) bson.D {
	if len(p) == 0 {
		return nil
	}
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	res := make(bson.D, 0, len(keys))
	for _, k := range keys {
		res = append(res, bson.E{Key: k, Value: int32(p[k])})
	}
	return res
}

// BuildSort translates s into a sort document, keeping its order. It
// returns nil for an empty sort.
func BuildSort(s domain.Sort) bson.D {
	if len(s) == 0 {
		return nil
	}
	res := make(bson.D, 0, len(s))
	for _, sn := range s {
		res = append(res, bson.E{Key: sn.Key, Value: int32(sn.Order)})
	}
	return res
}

// BuildIndexKeys translates keys into an index key document.
func BuildIndexKeys(keys domain.IndexKeys) bson.D {
	res := make(bson.D, 0, len(keys))
	for _, k := range keys {
		res = append(res, bson.E{Key: k.Field, Value: int32(k.Direction)})
	}
	return res
}

// BuildChanges translates changes into a $set update document with sorted
// keys.
func BuildChanges(changes domain.Changes) bson.D {
	keys := make([]string, 0, len(changes))
	for k := range changes {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	set := make(bson.D, 0, len(keys))
	for _, k := range keys {
		set = append(set, bson.E{Key: k, Value: changes[k]})
	}
	return bson.D{{Key: "$set", Value: set}}
}

// BuildPipeline translates every stage of p into its aggregation stage
// document.
func BuildPipeline(p domain.Pipeline) (bson.A, error) {
	res := make(bson.A, 0, len(p))
	for n, stage := range p {
		d, err := buildStage(stage)
		if err != nil {
			return nil, fmt.Errorf("%w: stage %d: %w", domain.ErrInvalidPipeline, n, err)
		}
		res = append(res, d)
	}
	return res, nil
}

func buildStage(stage domain.Stage) (bson.D, error) {
	switch s := stage.(type) {
	case domain.GroupStage:
		return buildGroup(s)
	case domain.SortStage:
		return bson.D{{Key: "$sort", Value: BuildSort(s.Sort)}}, nil
	case domain.ProjectStage:
		fields, err := buildFields(s.Fields)
		if err != nil {
			return nil, err
		}
		if s.ExcludeID {
			fields = append(bson.D{{Key: domain.FieldID, Value: int32(0)}}, fields...)
		}
		return bson.D{{Key: "$project", Value: fields}}, nil
	case domain.AddFieldsStage:
		fields, err := buildFields(s.Fields)
		if err != nil {
			return nil, err
		}
		return bson.D{{Key: "$addFields", Value: fields}}, nil
	case domain.LimitStage:
		return bson.D{{Key: "$limit", Value: s.N}}, nil
	default:
		return nil, fmt.Errorf("unknown stage %T", stage)
	}
}

func buildGroup(s domain.GroupStage) (bson.D, error) {
	var key any
	if s.Key != nil {
		var err error
		if key, err = BuildExpr(s.Key); err != nil {
			return nil, err
		}
	}
	group := bson.D{{Key: domain.FieldID, Value: key}}
	for _, acc := range s.Accumulators {
		expr, err := BuildExpr(acc.Expr)
		if err != nil {
			return nil, fmt.Errorf("accumulator %s: %w", acc.Name, err)
		}
		group = append(group, bson.E{Key: acc.Name, Value: bson.D{{Key: "$" + string(acc.Op), Value: expr}}})
	}
	return bson.D{{Key: "$group", Value: group}}, nil
}

func buildFields(fields []domain.Field) (bson.D, error) {
	res := make(bson.D, 0, len(fields))
	for _, f := range fields {
		expr, err := BuildExpr(f.Expr)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", f.Name, err)
		}
		res = append(res, bson.E{Key: f.Name, Value: expr})
	}
	return res, nil
}

// BuildExpr translates e into an aggregation expression. Literals are always
// wrapped in $literal so strings starting with "$" are never read as field
// paths.
func BuildExpr(e domain.Expr) (any, error) {
	switch t := e.(type) {
	case domain.FieldRef:
		return "$" + t.Name, nil
	case domain.Literal:
		return bson.D{{Key: "$literal", Value: t.Value}}, nil
	case domain.Divide:
		return binaryExpr("$divide", t.Left, t.Right)
	case domain.Multiply:
		return binaryExpr("$multiply", t.Left, t.Right)
	case domain.Floor:
		v, err := BuildExpr(t.Value)
		if err != nil {
			return nil, err
		}
		return bson.D{{Key: "$floor", Value: v}}, nil
	case domain.Round:
		v, err := BuildExpr(t.Value)
		if err != nil {
			return nil, err
		}
		return bson.D{{Key: "$round", Value: bson.A{v, int32(t.Places)}}}, nil
	case domain.Object:
		return buildFields(t.Fields)
	default:
		return nil, fmt.Errorf("unknown expression %T", e)
	}
}

func binaryExpr(op string, l, r domain.Expr) (any, error) {
	left, err := BuildExpr(l)
	if err != nil {
		return nil, err
	}
	right, err := BuildExpr(r)
	if err != nil {
		return nil, err
	}
	return bson.D{{Key: op, Value: bson.A{left, right}}}, nil
}
