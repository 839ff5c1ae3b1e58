package retry

import (
	"context"
	"errors"
	"math"
	"net"
	"syscall"
	"time"
)

var (
	// ErrMaxRetriesExceeded는 최대 재시도 횟수를 초과했을 때 발생합니다
	ErrMaxRetriesExceeded = errors.New("maximum retries exceeded")
)

// Config는 재시도 설정입니다
type Config struct {
	MaxAttempts     int           // 최대 시도 횟수
	InitialInterval time.Duration // 초기 대기 시간
	MaxInterval     time.Duration // 최대 대기 시간
	Multiplier      float64       // 대기 시간 증가 배율
	MaxElapsedTime  time.Duration // 최대 재시도 시간

	// OnRetry는 다음 시도 전에 호출됩니다 (nil 허용)
	OnRetry func(attempt int, err error, wait time.Duration)

	// Retryable은 재시도 여부 판단을 교체합니다. nil이면 isRetryable을 사용합니다
	Retryable func(err error) bool
}

// DefaultConfig는 기본 재시도 설정입니다
func DefaultConfig() Config {
	return Config{
		MaxAttempts:     3,
		InitialInterval: 500 * time.Millisecond,
		MaxInterval:     30 * time.Second,
		Multiplier:      2.0,
		MaxElapsedTime:  2 * time.Minute,
	}
}

// StartupConfig는 기동 시 외부 의존성 연결 확인에 쓰는 설정입니다
func StartupConfig() Config {
	return Config{
		MaxAttempts:     5,
		InitialInterval: time.Second,
		MaxInterval:     10 * time.Second,
		Multiplier:      2.0,
		MaxElapsedTime:  time.Minute,
		Retryable:       func(error) bool { return true },
	}
}

// RetryableFunc는 재시도 가능한 함수입니다
type RetryableFunc func(ctx context.Context) error

// Do는 함수를 재시도합니다
func Do(ctx context.Context, cfg Config, fn RetryableFunc) error {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 1
	}
	retryable := cfg.Retryable
	if retryable == nil {
		retryable = isRetryable
	}

	startTime := time.Now()
	var lastErr error

	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		lastErr = fn(ctx)
		if lastErr == nil {
			return nil
		}

		if !retryable(lastErr) {
			return lastErr
		}

		if attempt >= cfg.MaxAttempts {
			break
		}

		waitTime := calculateBackoff(cfg, attempt)

		if cfg.MaxElapsedTime > 0 {
			elapsed := time.Since(startTime)
			if elapsed+waitTime > cfg.MaxElapsedTime {
				break
			}
		}

		if cfg.OnRetry != nil {
			cfg.OnRetry(attempt, lastErr, waitTime)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(waitTime):
		}
	}

	return errors.Join(ErrMaxRetriesExceeded, lastErr)
}

// calculateBackoff은 exponential backoff를 계산합니다
func calculateBackoff(cfg Config, attempt int) time.Duration {
	backoff := float64(cfg.InitialInterval) * math.Pow(cfg.Multiplier, float64(attempt-1))

	if cfg.MaxInterval > 0 && backoff > float64(cfg.MaxInterval) {
		backoff = float64(cfg.MaxInterval)
	}

	return time.Duration(backoff)
}

// isRetryable은 에러가 일시적인 네트워크 오류인지 확인합니다
func isRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	if errors.Is(err, syscall.ECONNREFUSED) || errors.Is(err, syscall.ECONNRESET) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	return false
}

// DoWithValue는 값을 반환하는 함수를 재시도합니다
func DoWithValue[T any](ctx context.Context, cfg Config, fn func(ctx context.Context) (T, error)) (T, error) {
	var result T

	err := Do(ctx, cfg, func(ctx context.Context) error {
		var err error
		result, err = fn(ctx)
		return err
	})

	return result, err
}
