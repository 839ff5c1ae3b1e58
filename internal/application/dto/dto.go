// Package dto는 HTTP API의 요청/응답 형식을 정의합니다.
package dto

import (
	"time"

	"github.com/YouSangSon/academy-backoffice/internal/domain/entity"
)

// LoginRequest는 관리자 로그인 요청입니다
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse는 로그인 성공 응답입니다
type LoginResponse struct {
	Token     string          `json:"token"`
	ExpiresAt time.Time       `json:"expiresAt"`
	Session   *entity.Session `json:"session"`
}

// ListResponse는 문서 목록 응답입니다
type ListResponse struct {
	Collection string                   `json:"collection"`
	Items      []map[string]interface{} `json:"items"`
	Count      int                      `json:"count"`
}

// NewListResponse는 Record 목록으로 ListResponse를 만듭니다
func NewListResponse(collection string, records []*entity.Record) ListResponse {
	items := make([]map[string]interface{}, 0, len(records))
	for _, rec := range records {
		items = append(items, rec.Document())
	}
	return ListResponse{Collection: collection, Items: items, Count: len(items)}
}

// LogEntryResponse는 감사 로그 한 건의 응답 표현입니다
type LogEntryResponse struct {
	ID            string                 `json:"id"`
	AdminID       string                 `json:"adminId"`
	AdminEmail    string                 `json:"adminEmail"`
	Action        string                 `json:"action"`
	Collection    string                 `json:"collection"`
	DocumentID    string                 `json:"documentId,omitempty"`
	DocumentTitle string                 `json:"documentTitle,omitempty"`
	ChangesBefore map[string]interface{} `json:"changesBefore,omitempty"`
	ChangesAfter  map[string]interface{} `json:"changesAfter,omitempty"`
	Status        string                 `json:"status"`
	ErrorMessage  string                 `json:"errorMessage,omitempty"`
	Timestamp     time.Time              `json:"timestamp"`
}

// NewLogEntryResponse는 LogEntry를 응답 형식으로 변환합니다
func NewLogEntryResponse(e *entity.LogEntry) LogEntryResponse {
	return LogEntryResponse{
		ID:            e.ID,
		AdminID:       e.AdminID,
		AdminEmail:    e.AdminEmail,
		Action:        string(e.Action),
		Collection:    e.Collection,
		DocumentID:    e.DocumentID,
		DocumentTitle: e.DocumentTitle,
		ChangesBefore: e.ChangesBefore,
		ChangesAfter:  e.ChangesAfter,
		Status:        string(e.Status),
		ErrorMessage:  e.ErrorMessage,
		Timestamp:     e.Timestamp,
	}
}

// LogListResponse는 감사 로그 목록 응답입니다
type LogListResponse struct {
	Items []LogEntryResponse `json:"items"`
	Count int                `json:"count"`
}

// PurgeLogsResponse는 감사 로그 정리 결과입니다
type PurgeLogsResponse struct {
	Deleted int64     `json:"deleted"`
	Before  time.Time `json:"before"`
}

// SubmissionResponse는 공개 폼 제출 결과입니다
type SubmissionResponse struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"createdAt"`
}

// APIResponse는 공통 API 응답 래퍼입니다
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
}
