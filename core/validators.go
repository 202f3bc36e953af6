package core

import (
	"reflect"
	"strings"

	"github.com/go-playground/locales/en"
	"github.com/go-playground/locales/tr"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	tr_translations "github.com/go-playground/validator/v10/translations/tr"
)

var (
	// custom validation tags & texts
	requiredTag     = "required"
	requiredWithTag = "required_with"
	requiredText    = "Bu alan zorunludur."

	emailTag  = "email"
	emailText = "Geçersiz e-posta adresi."

	urlTag  = "url"
	urlText = "Geçerli bir URL girmelisiniz."

	minTag      = "min"
	minFallback = "{0} en az {1} karakter olmalıdır."

	// tag -> json field -> translation key
	fieldTexts = make(map[string]map[string]string)
)

// NewTranslator returns the Turkish translator; English is the fallback locale.
func NewTranslator() ut.Translator {
	_tr := tr.New()
	uni := ut.New(en.New(), _tr)
	translator, _ := uni.GetTranslator("tr")
	return translator
}

// InitValidators instantiates the validator for use.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = tr_translations.RegisterDefaultTranslations(validate, translator)

	// Use JSON tag names for errors instead of Go struct names.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	RegisterFieldTranslation(validate, translator, requiredTag, "", requiredText)
	RegisterCustomTranslation(validate, translator, requiredWithTag, requiredText, true)
	RegisterCustomTranslation(validate, translator, emailTag, emailText, true)
	RegisterCustomTranslation(validate, translator, urlTag, urlText, true)
	RegisterFieldTranslation(validate, translator, minTag, "", minFallback)
}

// RegisterCustomTranslation registers a custom translation for the specified validation tag.
func RegisterCustomTranslation(validate *validator.Validate, translator ut.Translator, tag, text string, override ...bool) {
	var ovrd bool
	if len(override) > 0 {
		ovrd = override[0]
	}
	_ = validate.RegisterTranslation(
		tag, translator,
		func(t ut.Translator) error { return t.Add(tag, text, ovrd) },
		func(t ut.Translator, fe validator.FieldError) string {
			s, _ := t.T(tag, fe.Field())
			return s
		},
	)
}

// RegisterFieldTranslation registers the text used when `tag` fails on the json field `field`.
// An empty field sets the fallback text, which receives the field name and the tag param.
//	RegisterFieldTranslation(v, t, "min", "title", "Başlık en az 3 karakter olmalıdır.")
func RegisterFieldTranslation(validate *validator.Validate, translator ut.Translator, tag, field, text string) {
	if _, ok := fieldTexts[tag]; !ok {
		fieldTexts[tag] = make(map[string]string)
	}
	key := tag
	if field != "" {
		key = tag + "." + field
		fieldTexts[tag][field] = key
	}
	_ = validate.RegisterTranslation(
		tag, translator,
		func(t ut.Translator) error { return t.Add(key, text, true) },
		func(t ut.Translator, fe validator.FieldError) string {
			if key, ok := fieldTexts[tag][fe.Field()]; ok {
				if s, err := t.T(key); err == nil {
					return s
				}
			}
			s, err := t.T(tag, fe.Field(), fe.Param())
			if err != nil {
				return fe.Error()
			}
			return s
		},
	)
}
