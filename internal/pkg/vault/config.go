package vault

import (
	"fmt"
	"time"
)

// Config는 Vault 클라이언트 설정입니다
type Config struct {
	// Vault 서버 주소
	Address string

	// 인증 방법 (token, approle)
	AuthMethod string
	Token      string
	RoleID     string
	SecretID   string

	Namespace string

	// 시크릿 경로 설정
	MongoDBPath string // MongoDB 동적 자격증명 경로
	SecretsPath string // 애플리케이션 정적 시크릿 경로 (KV v2)

	// 캐시 설정
	CacheEnabled bool
	CacheTTL     time.Duration
}

// DefaultConfig는 기본 Vault 설정을 반환합니다
func DefaultConfig() *Config {
	return &Config{
		Address:      "http://localhost:8200",
		AuthMethod:   "token",
		MongoDBPath:  "database/creds/academy-backoffice",
		SecretsPath:  "secret/data/academy-backoffice",
		CacheEnabled: true,
		CacheTTL:     5 * time.Minute,
	}
}

// Validate는 설정을 검증합니다
func (c *Config) Validate() error {
	if c.Address == "" {
		return fmt.Errorf("vault address is required")
	}

	switch c.AuthMethod {
	case "token":
		if c.Token == "" {
			return fmt.Errorf("vault token is required for token auth")
		}
	case "approle":
		if c.RoleID == "" || c.SecretID == "" {
			return fmt.Errorf("role_id and secret_id are required for approle auth")
		}
	default:
		return fmt.Errorf("unsupported auth method: %s", c.AuthMethod)
	}

	if c.CacheTTL <= 0 {
		c.CacheTTL = 5 * time.Minute
	}

	return nil
}

// SecretMetadata는 시크릿 메타데이터입니다
type SecretMetadata struct {
	LeaseID       string
	LeaseDuration int
	Renewable     bool
	Data          map[string]interface{}
	CreatedAt     time.Time
}

// IsExpired는 시크릿이 만료되었는지 확인합니다. 리스가 없는 시크릿은 캐시 TTL을 기준으로 합니다
func (s *SecretMetadata) IsExpired(now time.Time, cacheTTL time.Duration) bool {
	ttl := cacheTTL
	if s.LeaseDuration > 0 {
		ttl = time.Duration(s.LeaseDuration) * time.Second
	}
	if ttl <= 0 {
		return false
	}
	return now.After(s.CreatedAt.Add(ttl))
}

// String은 data에서 문자열 값을 꺼냅니다
func (s *SecretMetadata) String(key string) (string, bool) {
	v, ok := s.Data[key].(string)
	return v, ok && v != ""
}
