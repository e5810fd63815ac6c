package service

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/go-playground/validator/v10"

	"jobportal/internal/apperr"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.Split(field.Tag.Get("json"), ",")[0]
		if name == "" || name == "-" {
			return field.Name
		}
		return name
	})
	return v
}

var validationMessages = map[string]string{
	"required": "%s is required",
	"email":    "%s must be a valid email address",
	"max":      "%s must be at most %s characters",
	"oneof":    "%s must be one of [%s]",
}

// validateStruct runs struct tags on s and reports the first failure as a ValidationError.
func validateStruct(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return apperr.Wrap(err, apperr.KindValidation, "invalid input")
	}

	fe := fieldErrs[0]
	msg, ok := validationMessages[fe.Tag()]
	if !ok {
		return apperr.Newf(apperr.KindValidation, "%s is invalid", fe.Field())
	}
	if strings.Count(msg, "%s") == 2 {
		return apperr.Validation(fmt.Sprintf(msg, fe.Field(), fe.Param()))
	}
	return apperr.Validation(fmt.Sprintf(msg, fe.Field()))
}
