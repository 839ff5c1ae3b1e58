package entity

import "time"

// Admin은 관리자 계정입니다 (admins 컬렉션)
type Admin struct {
	ID           string
	Email        string
	Name         string
	PasswordHash string
}

// AdminFromRecord는 admins 문서를 Admin으로 변환합니다
func AdminFromRecord(r *Record) *Admin {
	return &Admin{
		ID:           r.ID(),
		Email:        r.String("email"),
		Name:         r.String("name"),
		PasswordHash: r.String("passwordHash"),
	}
}

// Fields는 저장할 필드 묶음을 반환합니다
func (a *Admin) Fields() Fields {
	f := Fields{"email": a.Email, "passwordHash": a.PasswordHash}
	if a.Name != "" {
		f["name"] = a.Name
	}
	return f
}

// Session은 로그인한 관리자 세션입니다
type Session struct {
	ID        string    `json:"id"`
	AdminID   string    `json:"adminId"`
	Email     string    `json:"email"`
	IssuedAt  time.Time `json:"issuedAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Expired는 세션이 만료되었는지 확인합니다
func (s *Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}

// SessionEventType은 세션 변경 이벤트 종류입니다
type SessionEventType string

const (
	SessionSignedIn  SessionEventType = "signed_in"
	SessionSignedOut SessionEventType = "signed_out"
)

// SessionEvent는 "현재 세션 변경" 알림입니다
type SessionEvent struct {
	Type    SessionEventType
	Session Session
	At      time.Time
}
