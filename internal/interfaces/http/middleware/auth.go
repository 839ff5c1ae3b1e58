package middleware

import (
	"context"
	stderrors "errors"
	"strings"

	"github.com/YouSangSon/academy-backoffice/internal/domain/entity"
	"github.com/YouSangSon/academy-backoffice/internal/pkg/errors"
	"github.com/YouSangSon/academy-backoffice/internal/pkg/logger"
	"github.com/gin-gonic/gin"
)

const (
	// SessionKey는 gin context에 인증된 세션을 저장하는 키입니다
	SessionKey = "session"
	// TokenKey는 gin context에 원본 bearer 토큰을 저장하는 키입니다
	TokenKey = "token"
)

// Authenticator는 bearer 토큰을 살아 있는 세션으로 바꿉니다
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*entity.Session, error)
}

// RequireAdmin은 유효한 관리자 세션이 없으면 401을 반환합니다
func RequireAdmin(auth Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := BearerToken(c)
		if token == "" {
			AbortWithError(c, errors.New(errors.ErrCodeUnauthorized, "authorization header missing"))
			return
		}

		session, err := auth.Authenticate(c.Request.Context(), token)
		if err != nil {
			if stderrors.Is(err, entity.ErrUnauthenticated) {
				AbortWithError(c, errors.New(errors.ErrCodeUnauthorized, "invalid or expired session"))
				return
			}
			AbortWithError(c, errors.Wrap(err, errors.ErrCodeServiceUnavailable, "failed to verify session"))
			return
		}

		c.Set(SessionKey, session)
		c.Set(TokenKey, token)
		ctx := logger.WithFields(c.Request.Context(),
			logger.AdminID(session.AdminID),
			logger.AdminEmail(session.Email),
		)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

// CurrentSession은 RequireAdmin이 저장한 세션을 반환합니다
func CurrentSession(c *gin.Context) (*entity.Session, bool) {
	v, ok := c.Get(SessionKey)
	if !ok {
		return nil, false
	}
	session, ok := v.(*entity.Session)
	return session, ok
}

// BearerToken은 Authorization 헤더의 bearer 토큰을 반환합니다
func BearerToken(c *gin.Context) string {
	const prefix = "bearer "
	header := c.GetHeader("Authorization")
	if len(header) < len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}
