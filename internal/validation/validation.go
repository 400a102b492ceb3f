// Package validation checks decoded request bodies against their `validate`
// struct tags and renders failures as English messages keyed by JSON field.
package validation

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	entranslations "github.com/go-playground/validator/v10/translations/en"
)

// Validator is safe for concurrent use; build one per process.
type Validator struct {
	validate *validator.Validate
	trans    ut.Translator
}

func New() *Validator {
	locale := en.New()
	uni := ut.New(locale, locale)
	trans, _ := uni.GetTranslator("en")

	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	// Only fails on a nil validator or translator.
	_ = entranslations.RegisterDefaultTranslations(v, trans)

	return &Validator{validate: v, trans: trans}
}

// Struct validates s. It returns nil when s is valid, otherwise a map from
// JSON field name to a readable message.
func (v *Validator) Struct(s any) map[string]string {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return map[string]string{"body": err.Error()}
	}

	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[fe.Field()] = fe.Translate(v.trans)
	}
	return fields
}
