package vault

import (
	"context"
	"fmt"
	"time"

	"github.com/YouSangSon/academy-backoffice/internal/pkg/logger"
	"go.uber.org/zap"
)

// getSecret은 시크릿을 읽습니다. KV v2 응답이면 data.data를 풀어서 반환합니다
func (c *Client) getSecret(ctx context.Context, path string) (*SecretMetadata, error) {
	if c.config.CacheEnabled {
		if cached := c.getCachedSecret(path); cached != nil {
			return cached, nil
		}
	}

	secret, err := c.client.Logical().ReadWithContext(ctx, path)
	if err != nil {
		logger.Error(ctx, "failed to read secret", zap.String("path", path), zap.Error(err))
		return nil, fmt.Errorf("failed to read secret: %w", err)
	}
	if secret == nil {
		return nil, fmt.Errorf("secret not found at path: %s", path)
	}

	data := secret.Data
	if inner, ok := secret.Data["data"].(map[string]interface{}); ok {
		data = inner
	}

	metadata := &SecretMetadata{
		LeaseID:       secret.LeaseID,
		LeaseDuration: secret.LeaseDuration,
		Renewable:     secret.Renewable,
		Data:          data,
		CreatedAt:     time.Now(),
	}

	if c.config.CacheEnabled {
		c.cacheSecret(path, metadata)
	}

	logger.Debug(ctx, "secret retrieved",
		zap.String("path", path),
		zap.Bool("renewable", secret.Renewable),
	)

	return metadata, nil
}

// GetMongoDBCredentials는 MongoDB 동적 자격증명을 가져옵니다
func (c *Client) GetMongoDBCredentials(ctx context.Context) (username, password string, err error) {
	metadata, err := c.getSecret(ctx, c.config.MongoDBPath)
	if err != nil {
		return "", "", fmt.Errorf("failed to get mongodb credentials: %w", err)
	}

	username, ok := metadata.String("username")
	if !ok {
		return "", "", fmt.Errorf("username not found in mongodb credentials")
	}
	password, ok = metadata.String("password")
	if !ok {
		return "", "", fmt.Errorf("password not found in mongodb credentials")
	}

	logger.Info(ctx, "mongodb credentials retrieved",
		zap.String("username", username),
		zap.Int("lease_duration", metadata.LeaseDuration),
	)

	return username, password, nil
}

// GetJWTSecret는 애플리케이션 시크릿 경로에서 JWT 서명 키를 가져옵니다
func (c *Client) GetJWTSecret(ctx context.Context) (string, error) {
	metadata, err := c.getSecret(ctx, c.config.SecretsPath)
	if err != nil {
		return "", fmt.Errorf("failed to get application secrets: %w", err)
	}

	secret, ok := metadata.String("jwt_secret")
	if !ok {
		return "", fmt.Errorf("jwt_secret not found at %s", c.config.SecretsPath)
	}
	return secret, nil
}

// getCachedSecret는 캐시에서 만료되지 않은 시크릿을 가져옵니다
func (c *Client) getCachedSecret(path string) *SecretMetadata {
	c.cacheMutex.RLock()
	defer c.cacheMutex.RUnlock()

	metadata, exists := c.cache[path]
	if !exists || metadata.IsExpired(time.Now(), c.config.CacheTTL) {
		return nil
	}
	return metadata
}

func (c *Client) cacheSecret(path string, metadata *SecretMetadata) {
	c.cacheMutex.Lock()
	defer c.cacheMutex.Unlock()

	c.cache[path] = metadata
}
