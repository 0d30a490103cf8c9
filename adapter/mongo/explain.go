package mongo

import (
	"time"

	"github.com/vinicius-lino-figueiredo/bookquery/domain"
	"go.mongodb.org/mongo-driver/bson"
)

// ParseExplain extracts the winning plan and execution statistics from an
// explain reply run with executionStats verbosity. Stage is IXSCAN when the
// plan reads any index, otherwise the name of the innermost stage.
func ParseExplain(raw bson.M) domain.ExecutionStats {
	stats := domain.ExecutionStats{Raw: domain.Document(raw)}

	plan := asM(asM(raw["queryPlanner"])["winningPlan"])
	// slot based execution nests the classic plan one level deeper.
	if qp := asM(plan["queryPlan"]); qp != nil {
		plan = qp
	}
	for plan != nil {
		stage, _ := plan["stage"].(string)
		stats.Stage = stage
		if stage == "IXSCAN" {
			stats.IndexName, _ = plan["indexName"].(string)
			break
		}
		plan = asM(plan["inputStage"])
	}

	exec := asM(raw["executionStats"])
	stats.Returned = toInt64(exec["nReturned"])
	stats.KeysExamined = toInt64(exec["totalKeysExamined"])
	stats.DocsExamined = toInt64(exec["totalDocsExamined"])
	stats.ExecutionTime = time.Duration(toInt64(exec["executionTimeMillis"])) * time.Millisecond
	return stats
}

func asM(v any) bson.M {
	switch t := v.(type) {
	case bson.M:
		return t
	case map[string]any:
		return t
	case bson.D:
		return t.Map()
	default:
		return nil
	}
}

func toInt64(v any) int64 {
	switch t := v.(type) {
	case int32:
		return int64(t)
	case int64:
		return t
	case int:
		return int64(t)
	case float64:
		return int64(t)
	default:
		return 0
	}
}
