// Package validator wraps go-playground/validator with English and Chinese
// messages and installs it behind gin binding.
package validator

import (
	"errors"
	"reflect"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/go-playground/locales"
	"github.com/go-playground/locales/en"
	"github.com/go-playground/locales/zh"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
	zh_translations "github.com/go-playground/validator/v10/translations/zh"
)

// Supported message languages.
const (
	LangEN = "en"
	LangZH = "zh"
)

// MaxTermLength is the longest search term accepted, in runes.
const MaxTermLength = 100

type language struct {
	locale   locales.Translator
	register func(*validator.Validate, ut.Translator) error
}

var languages = map[string]language{
	LangEN: {en.New(), en_translations.RegisterDefaultTranslations},
	LangZH: {zh.New(), zh_translations.RegisterDefaultTranslations},
}

// Validator checks structs tagged with gin's `binding` tag.
type Validator struct {
	validate *validator.Validate
	trans    map[string]ut.Translator
}

var global = sync.OnceValue(New)

// Global returns the process wide Validator.
func Global() *Validator {
	return global()
}

// New builds a Validator with the SBS rules registered.
func New() *Validator {
	v := &Validator{
		validate: validator.New(validator.WithRequiredStructEnabled()),
		trans:    make(map[string]ut.Translator, len(languages)),
	}
	v.validate.SetTagName("binding")
	v.validate.RegisterTagNameFunc(fieldName)

	uni := ut.New(languages[LangEN].locale, languages[LangEN].locale, languages[LangZH].locale)
	for lang, l := range languages {
		tr, _ := uni.GetTranslator(l.locale.Locale())
		_ = l.register(v.validate, tr)
		v.trans[lang] = tr
	}

	_ = v.register("searchterm", isSearchTerm, map[string]string{
		LangEN: "{0} must be a non-empty search term of at most 100 characters",
		LangZH: "{0}必须是不超过100个字符的非空搜索词",
	})
	return v
}

// fieldName reports fields by their uri, json or form name.
func fieldName(f reflect.StructField) string {
	for _, key := range []string{"uri", "json", "form"} {
		name, _, _ := strings.Cut(f.Tag.Get(key), ",")
		switch name {
		case "":
			continue
		case "-":
			return ""
		default:
			return name
		}
	}
	return f.Name
}

func isSearchTerm(fl validator.FieldLevel) bool {
	term := strings.TrimSpace(fl.Field().String())
	return term != "" && utf8.RuneCountInString(term) <= MaxTermLength
}

func (v *Validator) register(tag string, fn validator.Func, messages map[string]string) error {
	if err := v.validate.RegisterValidation(tag, fn); err != nil {
		return err
	}
	for lang, msg := range messages {
		err := v.validate.RegisterTranslation(tag, v.translator(lang),
			func(tr ut.Translator) error { return tr.Add(tag, msg, true) },
			func(tr ut.Translator, fe validator.FieldError) string {
				s, _ := tr.T(tag, fe.Field())
				return s
			},
		)
		if err != nil {
			return err
		}
	}
	return nil
}

func (v *Validator) translator(lang string) ut.Translator {
	if tr, ok := v.trans[lang]; ok {
		return tr
	}
	return v.trans[LangEN]
}

// Validate checks s against its binding tags.
func (v *Validator) Validate(s any) error {
	return v.validate.Struct(s)
}

// Translate renders the rule failures in err in lang. It reports false when
// err did not come from the validator, for example a uri that failed to parse.
func (v *Validator) Translate(err error, lang string) (FieldErrors, bool) {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil, false
	}

	tr := v.translator(lang)
	out := make(FieldErrors, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, FieldError{
			Field:   fe.Field(),
			Rule:    fe.Tag(),
			Param:   fe.Param(),
			Message: fe.Translate(tr),
		})
	}
	return out, true
}

// Engine returns the underlying go-playground validator.
func (v *Validator) Engine() *validator.Validate {
	return v.validate
}
