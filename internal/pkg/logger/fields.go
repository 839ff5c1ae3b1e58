package logger

import (
	"time"

	"go.uber.org/zap"
)

// 일관된 로그 필드를 위한 헬퍼 함수들

// RequestID는 요청 ID 필드를 반환합니다
func RequestID(id string) zap.Field {
	return zap.String("request_id", id)
}

// TraceID는 trace ID 필드를 반환합니다
func TraceID(id string) zap.Field {
	return zap.String("trace_id", id)
}

// SpanID는 span ID 필드를 반환합니다
func SpanID(id string) zap.Field {
	return zap.String("span_id", id)
}

// AdminID는 관리자 ID 필드를 반환합니다
func AdminID(id string) zap.Field {
	return zap.String("admin_id", id)
}

// AdminEmail은 관리자 이메일 필드를 반환합니다
func AdminEmail(email string) zap.Field {
	return zap.String("admin_email", email)
}

// Collection은 컬렉션명 필드를 반환합니다
func Collection(name string) zap.Field {
	return zap.String("collection", name)
}

// DocumentID는 문서 ID 필드를 반환합니다
func DocumentID(id string) zap.Field {
	return zap.String("document_id", id)
}

// Operation은 작업명 필드를 반환합니다
func Operation(op string) zap.Field {
	return zap.String("operation", op)
}

// Action은 감사 로그 액션 필드를 반환합니다
func Action(action string) zap.Field {
	return zap.String("action", action)
}

// Duration은 작업 시간 필드를 반환합니다
func Duration(d time.Duration) zap.Field {
	return zap.Duration("duration", d)
}

// DurationMs는 작업 시간을 밀리초로 반환합니다
func DurationMs(d time.Duration) zap.Field {
	return zap.Float64("duration_ms", float64(d.Milliseconds()))
}

// HTTPMethod는 HTTP 메서드 필드를 반환합니다
func HTTPMethod(method string) zap.Field {
	return zap.String("http_method", method)
}

// HTTPPath는 HTTP 경로 필드를 반환합니다
func HTTPPath(path string) zap.Field {
	return zap.String("http_path", path)
}

// HTTPStatus는 HTTP 상태 코드 필드를 반환합니다
func HTTPStatus(status int) zap.Field {
	return zap.Int("http_status", status)
}

// RemoteAddr는 원격 주소 필드를 반환합니다
func RemoteAddr(addr string) zap.Field {
	return zap.String("remote_addr", addr)
}

// ErrorCode는 에러 코드 필드를 반환합니다
func ErrorCode(code string) zap.Field {
	return zap.String("error_code", code)
}

// ErrorMessage는 에러 메시지 필드를 반환합니다
func ErrorMessage(msg string) zap.Field {
	return zap.String("error_message", msg)
}

// Component는 컴포넌트명 필드를 반환합니다
func Component(name string) zap.Field {
	return zap.String("component", name)
}

// Count는 카운트 필드를 반환합니다
func Count(n int) zap.Field {
	return zap.Int("count", n)
}

// CacheKey는 캐시 키 필드를 반환합니다
func CacheKey(key string) zap.Field {
	return zap.String("cache_key", key)
}

// Topic은 Kafka 토픽 필드를 반환합니다
func Topic(topic string) zap.Field {
	return zap.String("topic", topic)
}

// CircuitState는 circuit breaker 상태 필드를 반환합니다
func CircuitState(state string) zap.Field {
	return zap.String("circuit_state", state)
}

// Any는 임의의 값 필드를 반환합니다
func Any(key string, value interface{}) zap.Field {
	return zap.Any(key, value)
}
