package dto

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	entrans "github.com/go-playground/validator/v10/translations/en"

	"github.com/electroworld/auth-service/internal/domain"
)

var (
	validate *validator.Validate
	trans    ut.Translator
)

func init() {
	validate = validator.New(validator.WithRequiredStructEnabled())

	// Report fields by their JSON name so meta.field matches the request body.
	validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	enLocale := en.New()
	trans, _ = ut.New(enLocale, enLocale).GetTranslator("en")
	if err := entrans.RegisterDefaultTranslations(validate, trans); err != nil {
		panic(err)
	}
}

// Validate checks req's struct tags and returns the first failure as a
// domain error: missing_field for "required", invalid_field otherwise.
func Validate(req any) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}

	var ves validator.ValidationErrors
	if !errors.As(err, &ves) || len(ves) == 0 {
		return domain.ErrInternal(err)
	}

	fe := ves[0]
	if fe.Tag() == "required" {
		return domain.ErrMissingField(fe.Field())
	}
	return domain.ErrInvalidField(fe.Field(), fe.Translate(trans))
}
