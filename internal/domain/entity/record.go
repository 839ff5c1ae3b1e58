package entity

import (
	"time"
)

// Record는 컬렉션에 저장된 하나의 문서입니다
type Record struct {
	id         string
	collection string
	fields     Fields
	createdAt  time.Time
	updatedAt  time.Time
}

// ReconstructRecord는 저장소에서 읽은 값으로 Record를 재구성합니다 (persistence layer용)
func ReconstructRecord(id, collection string, fields Fields, createdAt, updatedAt time.Time) *Record {
	if fields == nil {
		fields = Fields{}
	}
	return &Record{
		id:         id,
		collection: collection,
		fields:     fields,
		createdAt:  createdAt,
		updatedAt:  updatedAt,
	}
}

// RecordFromDocument는 타임스탬프가 필드로 섞여 있는 문서를 Record로 바꿉니다.
// createdAt/updatedAt은 필드에서 꺼내고 나머지는 그대로 둡니다
func RecordFromDocument(id, collection string, doc Fields) *Record {
	fields := make(Fields, len(doc))
	var createdAt, updatedAt time.Time
	for k, v := range doc {
		switch k {
		case FieldID:
		case FieldCreatedAt:
			createdAt, _ = AsTime(v)
		case FieldUpdatedAt:
			updatedAt, _ = AsTime(v)
		default:
			fields[k] = v
		}
	}
	return ReconstructRecord(id, collection, fields, createdAt, updatedAt)
}

// ID는 저장소가 부여한 문서 ID를 반환합니다
func (r *Record) ID() string {
	return r.id
}

// Collection은 컬렉션명을 반환합니다
func (r *Record) Collection() string {
	return r.collection
}

// Fields는 필드 묶음의 복사본을 반환합니다
func (r *Record) Fields() Fields {
	return r.fields.Clone()
}

// Get은 필드 하나를 반환합니다
func (r *Record) Get(key string) (interface{}, bool) {
	v, ok := r.fields[key]
	return v, ok
}

// String은 문자열 필드를 반환합니다
func (r *Record) String(key string) string {
	s, _ := r.fields[key].(string)
	return s
}

// CreatedAt은 생성 시간을 반환합니다
func (r *Record) CreatedAt() time.Time {
	return r.createdAt
}

// UpdatedAt은 수정 시간을 반환합니다
func (r *Record) UpdatedAt() time.Time {
	return r.updatedAt
}

// Document는 id와 타임스탬프를 필드와 함께 펼친 표현을 반환합니다
func (r *Record) Document() map[string]interface{} {
	doc := make(map[string]interface{}, len(r.fields)+3)
	for k, v := range r.fields {
		doc[k] = v
	}
	doc[FieldID] = r.id
	if !r.createdAt.IsZero() {
		doc[FieldCreatedAt] = r.createdAt
	}
	if !r.updatedAt.IsZero() {
		doc[FieldUpdatedAt] = r.updatedAt
	}
	return doc
}

// AsTime은 저장소마다 다른 시간 표현을 time.Time으로 맞춥니다
func AsTime(v interface{}) (time.Time, bool) {
	switch t := v.(type) {
	case time.Time:
		return t, true
	case *time.Time:
		if t == nil {
			return time.Time{}, false
		}
		return *t, true
	case string:
		parsed, err := time.Parse(time.RFC3339Nano, t)
		if err != nil {
			return time.Time{}, false
		}
		return parsed, true
	default:
		return time.Time{}, false
	}
}
