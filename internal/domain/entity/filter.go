package entity

import (
	"fmt"
	"reflect"
	"strings"
	"time"
)

// FilterOp는 필터 비교 연산자입니다
type FilterOp string

const (
	OpEq  FilterOp = "=="
	OpNe  FilterOp = "!="
	OpLt  FilterOp = "<"
	OpLte FilterOp = "<="
	OpGt  FilterOp = ">"
	OpGte FilterOp = ">="
)

// Filter는 저장소에 그대로 전달되는 동등/범위 조건입니다
type Filter struct {
	Field string
	Op    FilterOp
	Value interface{}
}

// Where는 Filter를 생성합니다
func Where(field string, op FilterOp, value interface{}) Filter {
	return Filter{Field: field, Op: op, Value: value}
}

// Validate는 필터를 검증합니다
func (f Filter) Validate() error {
	if strings.TrimSpace(f.Field) == "" {
		return fmt.Errorf("%w: empty field", ErrInvalidFilter)
	}
	switch f.Op {
	case OpEq, OpNe, OpLt, OpLte, OpGt, OpGte:
		return nil
	default:
		return fmt.Errorf("%w: unsupported operator %q", ErrInvalidFilter, f.Op)
	}
}

// ParseFilterOp는 쿼리 문자열의 연산자 표기를 해석합니다 (eq, ne, lt, lte, gt, gte 또는 기호)
func ParseFilterOp(s string) (FilterOp, bool) {
	switch strings.ToLower(s) {
	case "", "eq", "==":
		return OpEq, true
	case "ne", "!=":
		return OpNe, true
	case "lt", "<":
		return OpLt, true
	case "lte", "<=":
		return OpLte, true
	case "gt", ">":
		return OpGt, true
	case "gte", ">=":
		return OpGte, true
	default:
		return "", false
	}
}

// Matches는 문서가 필터를 만족하는지 확인합니다 (메모리 저장소용)
func (f Filter) Matches(doc Fields) bool {
	v, ok := doc[f.Field]
	if !ok {
		// 없는 필드는 != 조건만 만족합니다
		return f.Op == OpNe
	}

	cmp, comparable := compareValues(v, f.Value)
	switch f.Op {
	case OpEq:
		return comparable && cmp == 0
	case OpNe:
		return !comparable || cmp != 0
	case OpLt:
		return comparable && cmp < 0
	case OpLte:
		return comparable && cmp <= 0
	case OpGt:
		return comparable && cmp > 0
	case OpGte:
		return comparable && cmp >= 0
	}
	return false
}

// MatchesAll은 모든 필터를 만족하는지 확인합니다
func MatchesAll(doc Fields, filters []Filter) bool {
	for _, f := range filters {
		if !f.Matches(doc) {
			return false
		}
	}
	return true
}

func compareValues(a, b interface{}) (int, bool) {
	if at, ok := AsTime(a); ok {
		if bt, ok := AsTime(b); ok {
			return compareTime(at, bt), true
		}
	}
	if af, ok := asFloat(a); ok {
		if bf, ok := asFloat(b); ok {
			switch {
			case af < bf:
				return -1, true
			case af > bf:
				return 1, true
			default:
				return 0, true
			}
		}
	}
	switch av := a.(type) {
	case string:
		bv, ok := b.(string)
		if !ok {
			return 0, false
		}
		return strings.Compare(av, bv), true
	case bool:
		bv, ok := b.(bool)
		if !ok {
			return 0, false
		}
		if av == bv {
			return 0, true
		}
		if !av {
			return -1, true
		}
		return 1, true
	}
	if reflect.DeepEqual(a, b) {
		return 0, true
	}
	return 0, false
}

func compareTime(a, b time.Time) int {
	switch {
	case a.Before(b):
		return -1
	case a.After(b):
		return 1
	default:
		return 0
	}
}

func asFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	case uint:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	default:
		return 0, false
	}
}
