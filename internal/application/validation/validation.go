// Package validation은 컬렉션 Shape를 저장 전에 검증합니다.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/YouSangSon/academy-backoffice/internal/domain/entity"
	"github.com/go-playground/validator/v10"
)

// New는 에러에 json 필드명을 쓰는 validator를 생성합니다
func New() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Shape는 태그 규칙과 Checker 규칙을 검사해 *entity.ValidationError로 돌려줍니다
func Shape(v *validator.Validate, s entity.Shape) error {
	if s == nil {
		return entity.NewValidationError("", "document is required")
	}

	if err := v.Struct(s); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return &entity.ValidationError{
				Field:  fe.Field(),
				Reason: reason(fe),
				Err:    err,
			}
		}
		return &entity.ValidationError{Reason: err.Error(), Err: err}
	}

	if c, ok := s.(entity.Checker); ok {
		if err := c.Check(); err != nil {
			return err
		}
	}
	return nil
}

func reason(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "len":
		return fmt.Sprintf("must be exactly %s characters", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "min", "gte":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "gt":
		return fmt.Sprintf("must be greater than %s", fe.Param())
	default:
		return fmt.Sprintf("failed %q rule", fe.Tag())
	}
}
