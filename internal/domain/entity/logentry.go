package entity

import "time"

// LogsCollection은 감사 로그 컬렉션명입니다
const LogsCollection = "logs"

// AuthCollection은 로그인/로그아웃 기록에 쓰는 가상 컬렉션명입니다
const AuthCollection = "auth"

// UnknownActor는 세션이 없을 때 기록되는 행위자입니다
const UnknownActor = "unknown"

// Action은 감사 대상 관리 작업입니다
type Action string

const (
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
	ActionLogin  Action = "login"
	ActionLogout Action = "logout"
)

// Valid는 알려진 액션인지 확인합니다
func (a Action) Valid() bool {
	switch a {
	case ActionCreate, ActionUpdate, ActionDelete, ActionLogin, ActionLogout:
		return true
	}
	return false
}

// LogStatus는 작업 결과입니다
type LogStatus string

const (
	StatusSuccess LogStatus = "success"
	StatusError   LogStatus = "error"
)

// 로그 문서 필드명
const (
	LogFieldAdminID       = "adminId"
	LogFieldAdminEmail    = "adminEmail"
	LogFieldAction        = "action"
	LogFieldCollection    = "collection"
	LogFieldDocumentID    = "documentId"
	LogFieldDocumentTitle = "documentTitle"
	LogFieldChangesBefore = "changesBefore"
	LogFieldChangesAfter  = "changesAfter"
	LogFieldStatus        = "status"
	LogFieldErrorMessage  = "errorMessage"
	LogFieldTimestamp     = "timestamp"
)

// LogEntry는 변경 불가능한 감사 기록입니다
type LogEntry struct {
	ID            string
	AdminID       string
	AdminEmail    string
	Action        Action
	Collection    string
	DocumentID    string
	DocumentTitle string
	ChangesBefore Fields
	ChangesAfter  Fields
	Status        LogStatus
	ErrorMessage  string
	Timestamp     time.Time
}

// ToFields는 저장할 필드 묶음을 만듭니다. 값이 없는 선택 필드는 키 자체를 생략합니다.
// Timestamp가 비어 있으면 저장소가 쓰기 시점에 채웁니다
func (e *LogEntry) ToFields() Fields {
	f := Fields{
		LogFieldAdminID:    e.AdminID,
		LogFieldAdminEmail: e.AdminEmail,
		LogFieldAction:     string(e.Action),
		LogFieldCollection: e.Collection,
		LogFieldStatus:     string(e.Status),
		LogFieldTimestamp:  ServerTimestamp,
	}
	if !e.Timestamp.IsZero() {
		f[LogFieldTimestamp] = e.Timestamp
	}
	if e.DocumentID != "" {
		f[LogFieldDocumentID] = e.DocumentID
	}
	if e.DocumentTitle != "" {
		f[LogFieldDocumentTitle] = e.DocumentTitle
	}
	if e.ChangesBefore != nil {
		f[LogFieldChangesBefore] = map[string]interface{}(e.ChangesBefore.Compact())
	}
	if e.ChangesAfter != nil {
		f[LogFieldChangesAfter] = map[string]interface{}(e.ChangesAfter.Compact())
	}
	if e.Status == StatusError && e.ErrorMessage != "" {
		f[LogFieldErrorMessage] = e.ErrorMessage
	}
	return f
}

// LogEntryFromRecord는 저장된 로그 문서를 LogEntry로 복원합니다
func LogEntryFromRecord(r *Record) *LogEntry {
	e := &LogEntry{
		ID:            r.ID(),
		AdminID:       r.String(LogFieldAdminID),
		AdminEmail:    r.String(LogFieldAdminEmail),
		Action:        Action(r.String(LogFieldAction)),
		Collection:    r.String(LogFieldCollection),
		DocumentID:    r.String(LogFieldDocumentID),
		DocumentTitle: r.String(LogFieldDocumentTitle),
		Status:        LogStatus(r.String(LogFieldStatus)),
		ErrorMessage:  r.String(LogFieldErrorMessage),
	}
	if v, ok := r.Get(LogFieldTimestamp); ok {
		e.Timestamp, _ = AsTime(v)
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = r.CreatedAt()
	}
	e.ChangesBefore = asFields(r.fields[LogFieldChangesBefore])
	e.ChangesAfter = asFields(r.fields[LogFieldChangesAfter])
	return e
}

func asFields(v interface{}) Fields {
	switch m := v.(type) {
	case Fields:
		return m
	case map[string]interface{}:
		return Fields(m)
	default:
		return nil
	}
}
