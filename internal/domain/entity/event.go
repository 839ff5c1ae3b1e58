package entity

import "time"

// 이벤트 타입
const (
	EventLeadSubmitted         = "lead.submitted"
	EventRegistrationSubmitted = "registration.submitted"
)

// DomainEvent는 외부 브로커로 발행되는 이벤트입니다
type DomainEvent struct {
	EventID    string                 `json:"event_id"`
	EventType  string                 `json:"event_type"`
	Timestamp  time.Time              `json:"timestamp"`
	Collection string                 `json:"collection"`
	DocumentID string                 `json:"document_id"`
	Data       map[string]interface{} `json:"data,omitempty"`
}

// ChangeEvent는 저장소에서 관찰된 문서 변경입니다
type ChangeEvent struct {
	Collection string
	DocumentID string
	Operation  string
	At         time.Time
}
