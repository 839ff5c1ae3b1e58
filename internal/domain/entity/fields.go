package entity

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"
)

// 예약 필드. 호출자가 보내는 필드 묶음에 포함될 수 없습니다
const (
	FieldID        = "id"
	FieldCreatedAt = "createdAt"
	FieldUpdatedAt = "updatedAt"
)

var reservedFields = []string{FieldID, FieldCreatedAt, FieldUpdatedAt}

// Fields는 id를 제외한 문서 필드 묶음입니다
type Fields map[string]interface{}

// Clone은 얕은 복사본을 반환합니다
func (f Fields) Clone() Fields {
	if f == nil {
		return nil
	}
	out := make(Fields, len(f))
	for k, v := range f {
		out[k] = v
	}
	return out
}

// Merge는 other의 값을 덮어쓴 새 Fields를 반환합니다
func (f Fields) Merge(other Fields) Fields {
	out := make(Fields, len(f)+len(other))
	for k, v := range f {
		out[k] = v
	}
	for k, v := range other {
		out[k] = v
	}
	return out
}

// Reserved는 예약 필드 중 포함된 키를 정렬해 반환합니다
func (f Fields) Reserved() []string {
	var found []string
	for _, k := range reservedFields {
		if _, ok := f[k]; ok {
			found = append(found, k)
		}
	}
	return found
}

// Keys는 정렬된 키 목록을 반환합니다
func (f Fields) Keys() []string {
	keys := make([]string, 0, len(f))
	for k := range f {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Compact는 nil 값을 가진 키를 제거한 복사본을 반환합니다
func (f Fields) Compact() Fields {
	out := make(Fields, len(f))
	for k, v := range f {
		if v != nil {
			out[k] = v
		}
	}
	return out
}

// BatchEntry는 일괄 업데이트의 한 항목입니다
type BatchEntry struct {
	ID     string
	Fields Fields
}

var collectionNamePattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_-]{0,63}$`)

// ValidateCollectionName은 저장소 이름으로 쓸 수 있는 컬렉션명인지 확인합니다
func ValidateCollectionName(name string) error {
	if !collectionNamePattern.MatchString(name) {
		return fmt.Errorf("%w: %q", ErrInvalidCollection, name)
	}
	return nil
}

// ValidateFieldName은 모든 저장소에서 안전하게 쓸 수 있는 필드명인지 확인합니다
func ValidateFieldName(name string) error {
	switch {
	case name == "":
		return NewValidationError(name, "field name must not be empty")
	case strings.HasPrefix(name, "$"):
		return NewValidationError(name, "field name must not start with $")
	case strings.ContainsAny(name, ".\"'`\\"):
		return NewValidationError(name, "field name contains a forbidden character")
	}
	return nil
}

// ServerTime은 저장소가 쓰기 시점에 자기 시계로 채우는 자리표시 값입니다
type ServerTime struct{}

// ServerTimestamp는 필드 값으로 쓰는 ServerTime입니다
var ServerTimestamp = ServerTime{}

// ServerTimeKeys는 ServerTime 값을 가진 키를 정렬해 반환합니다
func (f Fields) ServerTimeKeys() []string {
	var keys []string
	for k, v := range f {
		if _, ok := v.(ServerTime); ok {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys
}

// ResolveServerTime은 ServerTime 값을 now로 바꾼 복사본을 반환합니다
func (f Fields) ResolveServerTime(now time.Time) Fields {
	out := f.Clone()
	for _, k := range f.ServerTimeKeys() {
		out[k] = now
	}
	return out
}
