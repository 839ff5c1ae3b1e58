package entity

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidCollection은 컬렉션명이 유효하지 않을 때 발생합니다
	ErrInvalidCollection = errors.New("invalid collection name")

	// ErrInvalidData는 데이터가 유효하지 않을 때 발생합니다
	ErrInvalidData = errors.New("invalid data")

	// ErrRecordNotFound는 문서를 찾을 수 없을 때 발생합니다
	ErrRecordNotFound = errors.New("record not found")

	// ErrReservedField는 예약 필드가 페이로드에 포함되었을 때 발생합니다
	ErrReservedField = errors.New("reserved field in payload")

	// ErrInvalidFilter는 지원하지 않는 필터일 때 발생합니다
	ErrInvalidFilter = errors.New("invalid filter")

	// ErrUnauthenticated는 세션이 없거나 만료되었을 때 발생합니다
	ErrUnauthenticated = errors.New("unauthenticated")

	// ErrInvalidCredentials는 이메일 또는 비밀번호가 틀렸을 때 발생합니다
	ErrInvalidCredentials = errors.New("invalid email or password")
)

// StoreError는 문서 저장소의 네트워크/권한/일반 오류입니다
type StoreError struct {
	Op         string
	Collection string
	Err        error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store %s %s: %v", e.Op, e.Collection, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

// NewStoreError는 err를 StoreError로 감쌉니다. NotFound/Validation 에러는 그대로 둡니다
func NewStoreError(op, collection string, err error) error {
	if err == nil {
		return nil
	}
	var nf *NotFoundError
	var ve *ValidationError
	var se *StoreError
	if errors.As(err, &nf) || errors.As(err, &ve) || errors.As(err, &se) {
		return err
	}
	return &StoreError{Op: op, Collection: collection, Err: err}
}

// NotFoundError는 조회 대상 문서가 없을 때 발생합니다
type NotFoundError struct {
	Collection string
	ID         string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s/%s: %v", e.Collection, e.ID, ErrRecordNotFound)
}

// Is는 errors.Is(err, ErrRecordNotFound)를 지원합니다
func (e *NotFoundError) Is(target error) bool {
	return target == ErrRecordNotFound
}

// ValidationError는 네트워크 호출 전에 호출자 입력이 거부될 때 발생합니다
type ValidationError struct {
	Field  string
	Reason string
	Err    error
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("validation failed: %s", e.Reason)
	}
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return ErrInvalidData
}

// NewValidationError는 ValidationError를 생성합니다
func NewValidationError(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// LoggingFailure는 감사 로그 기록 실패입니다. 호출자에게 전파되지 않습니다
type LoggingFailure struct {
	Action     Action
	Collection string
	Err        error
}

func (e *LoggingFailure) Error() string {
	return fmt.Sprintf("audit %s on %s not recorded: %v", e.Action, e.Collection, e.Err)
}

func (e *LoggingFailure) Unwrap() error { return e.Err }

// IsNotFound는 err가 NotFoundError인지 확인합니다
func IsNotFound(err error) bool {
	return errors.Is(err, ErrRecordNotFound)
}

// IsValidation은 err가 ValidationError인지 확인합니다
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
