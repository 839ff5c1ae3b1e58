package mongodb

import (
	"fmt"
	"time"

	"github.com/YouSangSon/academy-backoffice/internal/domain/entity"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// 저장소 예약 필드
const mongoIDField = "_id"

var ops = map[entity.FilterOp]string{
	entity.OpEq:  "$eq",
	entity.OpNe:  "$ne",
	entity.OpLt:  "$lt",
	entity.OpLte: "$lte",
	entity.OpGt:  "$gt",
	entity.OpGte: "$gte",
}

// buildFilter는 필터 목록을 MongoDB 쿼리로 변환합니다
func buildFilter(filters []entity.Filter) (bson.D, error) {
	if len(filters) == 0 {
		return bson.D{}, nil
	}

	clauses := make(bson.A, 0, len(filters))
	for _, f := range filters {
		if err := f.Validate(); err != nil {
			return nil, err
		}
		field := f.Field
		value := f.Value
		if field == entity.FieldID {
			oid, err := primitive.ObjectIDFromHex(fmt.Sprint(value))
			if err != nil {
				return nil, fmt.Errorf("%w: id must be an object id", entity.ErrInvalidFilter)
			}
			field, value = mongoIDField, oid
		}
		clauses = append(clauses, bson.D{{Key: field, Value: bson.D{{Key: ops[f.Op], Value: value}}}})
	}

	if len(clauses) == 1 {
		return clauses[0].(bson.D), nil
	}
	return bson.D{{Key: "$and", Value: clauses}}, nil
}

// toRecord는 디코딩된 문서를 Record로 변환합니다
func toRecord(collection string, raw bson.M) *entity.Record {
	id := ""
	switch v := raw[mongoIDField].(type) {
	case primitive.ObjectID:
		id = v.Hex()
	case string:
		id = v
	}
	delete(raw, mongoIDField)

	doc := make(entity.Fields, len(raw))
	for k, v := range raw {
		doc[k] = normalize(v)
	}
	return entity.RecordFromDocument(id, collection, doc)
}

// normalize는 BSON 타입을 일반 Go 타입으로 바꿉니다
func normalize(v interface{}) interface{} {
	switch t := v.(type) {
	case primitive.DateTime:
		return t.Time().UTC()
	case primitive.ObjectID:
		return t.Hex()
	case primitive.M:
		out := make(map[string]interface{}, len(t))
		for k, val := range t {
			out[k] = normalize(val)
		}
		return out
	case primitive.D:
		out := make(map[string]interface{}, len(t))
		for _, e := range t {
			out[e.Key] = normalize(e.Value)
		}
		return out
	case primitive.A:
		out := make([]interface{}, len(t))
		for i, val := range t {
			out[i] = normalize(val)
		}
		return out
	case time.Time:
		return t.UTC()
	default:
		return v
	}
}

// toSet은 $set 문서를 만듭니다
func toSet(fields entity.Fields) bson.M {
	set := make(bson.M, len(fields))
	for k, v := range fields {
		set[k] = v
	}
	return set
}
