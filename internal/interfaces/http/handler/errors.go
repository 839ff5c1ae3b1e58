package handler

import (
	stderrors "errors"

	"github.com/YouSangSon/academy-backoffice/internal/domain/entity"
	"github.com/YouSangSon/academy-backoffice/internal/interfaces/http/middleware"
	"github.com/YouSangSon/academy-backoffice/internal/pkg/errors"
	"github.com/YouSangSon/academy-backoffice/internal/pkg/logger"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// toAppError는 도메인 에러를 HTTP 응답용 AppError로 바꿉니다.
// 저장소 오류는 폼 배너에 보여줄 수 있도록 원래 메시지를 그대로 싣습니다.
func toAppError(err error) *errors.AppError {
	var appErr *errors.AppError
	if stderrors.As(err, &appErr) {
		return appErr
	}

	var ve *entity.ValidationError
	if stderrors.As(err, &ve) {
		e := errors.Wrap(err, errors.ErrCodeValidation, ve.Error())
		if ve.Field != "" {
			e.WithMetadata("field", ve.Field)
		}
		return e
	}

	switch {
	case entity.IsNotFound(err):
		return errors.Wrap(err, errors.ErrCodeNotFound, err.Error())
	case stderrors.Is(err, entity.ErrInvalidCredentials):
		return errors.Wrap(err, errors.ErrCodeUnauthorized, entity.ErrInvalidCredentials.Error())
	case stderrors.Is(err, entity.ErrUnauthenticated):
		return errors.Wrap(err, errors.ErrCodeUnauthorized, "invalid or expired session")
	}

	var se *entity.StoreError
	if stderrors.As(err, &se) {
		if stderrors.Is(err, entity.ErrInvalidCollection) {
			return errors.Wrap(err, errors.ErrCodeInvalidCollection, "invalid collection name")
		}
		return errors.Wrap(err, errors.ErrCodeStore, "request could not be completed: "+se.Err.Error())
	}

	if stderrors.Is(err, entity.ErrInvalidCollection) {
		return errors.Wrap(err, errors.ErrCodeInvalidCollection, err.Error())
	}
	return errors.Wrap(err, errors.ErrCodeInternal, "internal server error")
}

// respondError는 err를 표준 에러 응답으로 씁니다
func respondError(c *gin.Context, err error) {
	appErr := toAppError(err)
	if appErr.HTTPStatus >= 500 {
		logger.Error(c.Request.Context(), "request failed",
			logger.ErrorCode(string(appErr.Code)),
			zap.Error(err),
		)
	}
	middleware.AbortWithError(c, appErr)
}

// badRequest는 요청 형식 오류를 응답합니다
func badRequest(c *gin.Context, message string, err error) {
	e := errors.New(errors.ErrCodeBadRequest, message)
	if err != nil {
		e.WithDetails(err.Error())
	}
	middleware.AbortWithError(c, e)
}
