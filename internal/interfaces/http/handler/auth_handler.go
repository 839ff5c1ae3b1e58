package handler

import (
	"net/http"

	"github.com/YouSangSon/academy-backoffice/internal/application/auth"
	"github.com/YouSangSon/academy-backoffice/internal/application/dto"
	"github.com/YouSangSon/academy-backoffice/internal/domain/entity"
	"github.com/YouSangSon/academy-backoffice/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
)

// AuthHandler는 관리자 로그인 핸들러입니다
type AuthHandler struct {
	auth *auth.Service
}

// NewAuthHandler는 새로운 AuthHandler를 생성합니다
func NewAuthHandler(svc *auth.Service) *AuthHandler {
	return &AuthHandler{auth: svc}
}

// Login은 이메일/비밀번호로 세션을 발급합니다
// POST /api/v1/admin/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "email and password are required", err)
		return
	}

	session, token, err := h.auth.SignIn(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.LoginResponse{
		Token:     token,
		ExpiresAt: session.ExpiresAt,
		Session:   session,
	})
}

// Logout은 현재 세션을 종료합니다
// POST /api/v1/admin/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	if err := h.auth.SignOut(c.Request.Context(), middleware.BearerToken(c)); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Session은 현재 세션 정보를 반환합니다
// GET /api/v1/admin/auth/session
func (h *AuthHandler) Session(c *gin.Context) {
	session, ok := middleware.CurrentSession(c)
	if !ok {
		respondError(c, entity.ErrUnauthenticated)
		return
	}
	c.JSON(http.StatusOK, session)
}
