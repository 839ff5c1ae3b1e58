// Package auth는 관리자 로그인, 로그아웃, 세션 확인을 담당합니다.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/YouSangSon/academy-backoffice/internal/application/audit"
	"github.com/YouSangSon/academy-backoffice/internal/application/collection"
	"github.com/YouSangSon/academy-backoffice/internal/domain/entity"
	"github.com/YouSangSon/academy-backoffice/internal/domain/repository"
	"github.com/YouSangSon/academy-backoffice/internal/pkg/logger"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// Config는 인증 설정입니다
type Config struct {
	JWTSecret  string
	Issuer     string
	SessionTTL time.Duration
	BcryptCost int
}

// Claims는 관리자 토큰의 클레임입니다
type Claims struct {
	SessionID string `json:"sid"`
	Email     string `json:"email"`
	jwt.RegisteredClaims
}

// Service는 관리자 인증 서비스입니다
type Service struct {
	admins   *collection.Accessor
	sessions repository.SessionStore
	audit    *audit.Logger
	cfg      Config
	now      func() time.Time
	hub      *hub
}

// Option은 Service 설정 함수입니다
type Option func(*Service)

// WithClock은 토큰과 세션 시간 계산에 쓸 시계를 바꿉니다
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// NewService는 새로운 인증 서비스를 생성합니다
func NewService(store repository.DocumentStore, sessions repository.SessionStore, auditLog *audit.Logger, cfg Config, opts ...Option) (*Service, error) {
	if cfg.JWTSecret == "" {
		return nil, errors.New("jwt secret is required")
	}
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = 12 * time.Hour
	}
	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = bcrypt.DefaultCost
	}
	if cfg.Issuer == "" {
		cfg.Issuer = "academy-backoffice"
	}

	s := &Service{
		admins:   collection.New(store, entity.AdminsCollection),
		sessions: sessions,
		audit:    auditLog,
		cfg:      cfg,
		now:      time.Now,
		hub:      newHub(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// SignIn은 이메일과 비밀번호를 확인하고 세션과 토큰을 발급합니다
func (s *Service) SignIn(ctx context.Context, email, password string) (*entity.Session, string, error) {
	email = normalizeEmail(email)

	admin, err := s.findAdmin(ctx, email)
	if err != nil {
		if errors.Is(err, entity.ErrInvalidCredentials) {
			s.audit.LogAuthEvent(ctx, "", email, entity.ActionLogin, false, err.Error())
		}
		return nil, "", err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(password)); err != nil {
		s.audit.LogAuthEvent(ctx, admin.ID, admin.Email, entity.ActionLogin, false, entity.ErrInvalidCredentials.Error())
		return nil, "", entity.ErrInvalidCredentials
	}

	now := s.now().UTC()
	session := &entity.Session{
		ID:        uuid.NewString(),
		AdminID:   admin.ID,
		Email:     admin.Email,
		IssuedAt:  now,
		ExpiresAt: now.Add(s.cfg.SessionTTL),
	}

	token, err := s.sign(session)
	if err != nil {
		return nil, "", err
	}
	if err := s.sessions.Save(ctx, session, s.cfg.SessionTTL); err != nil {
		s.audit.LogAuthEvent(ctx, admin.ID, admin.Email, entity.ActionLogin, false, err.Error())
		return nil, "", err
	}

	s.hub.publish(entity.SessionEvent{Type: entity.SessionSignedIn, Session: *session, At: now})
	s.audit.LogAuthEvent(ctx, admin.ID, admin.Email, entity.ActionLogin, true, "")
	logger.Info(ctx, "admin signed in", logger.AdminID(admin.ID), logger.AdminEmail(admin.Email))
	return session, token, nil
}

// SignOut은 토큰의 세션을 폐기합니다
func (s *Service) SignOut(ctx context.Context, token string) error {
	session, err := s.Authenticate(ctx, token)
	if err != nil {
		return err
	}

	if err := s.sessions.Delete(ctx, session.ID); err != nil {
		s.audit.LogAuthEvent(ctx, session.AdminID, session.Email, entity.ActionLogout, false, err.Error())
		return err
	}

	s.hub.publish(entity.SessionEvent{Type: entity.SessionSignedOut, Session: *session, At: s.now().UTC()})
	s.audit.LogAuthEvent(ctx, session.AdminID, session.Email, entity.ActionLogout, true, "")
	logger.Info(ctx, "admin signed out", logger.AdminID(session.AdminID))
	return nil
}

// Authenticate는 토큰 서명과 살아 있는 세션을 모두 확인합니다
func (s *Service) Authenticate(ctx context.Context, token string) (*entity.Session, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(token, claims,
		func(t *jwt.Token) (interface{}, error) {
			return []byte(s.cfg.JWTSecret), nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.cfg.Issuer),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", entity.ErrUnauthenticated, err)
	}

	session, err := s.sessions.Get(ctx, claims.SessionID)
	if err != nil {
		return nil, err
	}
	if session.Expired(s.now()) {
		return nil, entity.ErrUnauthenticated
	}
	return session, nil
}

// Subscribe는 세션 변경 이벤트 채널과 구독 해제 함수를 반환합니다
func (s *Service) Subscribe() (<-chan entity.SessionEvent, func()) {
	return s.hub.subscribe()
}

// EnsureAdmin은 email 관리자가 없으면 만듭니다. 이미 있으면 그대로 둡니다
func (s *Service) EnsureAdmin(ctx context.Context, email, name, password string) (*entity.Admin, bool, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, false, entity.NewValidationError("email", "bootstrap admin needs email and password")
	}

	existing, err := s.findAdmin(ctx, email)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, entity.ErrInvalidCredentials) {
		return nil, false, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cfg.BcryptCost)
	if err != nil {
		return nil, false, fmt.Errorf("failed to hash password: %w", err)
	}

	admin := &entity.Admin{Email: email, Name: name, PasswordHash: string(hash)}
	rec, err := s.admins.Create(ctx, admin.Fields())
	if err != nil {
		return nil, false, err
	}
	admin.ID = rec.ID()

	logger.Info(ctx, "bootstrap admin created", logger.AdminID(admin.ID), logger.AdminEmail(email))
	return admin, true, nil
}

// findAdmin은 이메일로 관리자를 찾습니다. 없으면 ErrInvalidCredentials입니다
func (s *Service) findAdmin(ctx context.Context, email string) (*entity.Admin, error) {
	if email == "" {
		return nil, entity.ErrInvalidCredentials
	}

	records, err := s.admins.GetAll(ctx, entity.Where("email", entity.OpEq, email))
	if err != nil {
		logger.Error(ctx, "failed to look up admin", zap.Error(err))
		return nil, err
	}
	if len(records) == 0 {
		return nil, entity.ErrInvalidCredentials
	}
	return entity.AdminFromRecord(records[0]), nil
}

func (s *Service) sign(session *entity.Session) (string, error) {
	claims := Claims{
		SessionID: session.ID,
		Email:     session.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.cfg.Issuer,
			Subject:   session.AdminID,
			IssuedAt:  jwt.NewNumericDate(session.IssuedAt),
			ExpiresAt: jwt.NewNumericDate(session.ExpiresAt),
			ID:        session.ID,
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return token, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
