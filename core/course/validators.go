package course

import (
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/berkanmatematik/platform/core"
	"github.com/berkanmatematik/platform/core/content"
)

var (
	categoryTag  = "category"
	categoryText = "Geçerli bir sınıf seçmelisiniz."

	contentTypeTag  = "contenttype"
	contentTypeText = "İçerik türü seçmelisiniz."

	uniqueIDsTag  = "uniqueids"
	uniqueIDsText = "bölüm ve ders kimlikleri benzersiz olmalıdır"

	titleMinText = "Başlık en az 3 karakter olmalıdır."
)

// InitValidators registers the course validators & their translations.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(categoryTag, categoryValidation)
	core.RegisterCustomTranslation(validate, translator, categoryTag, categoryText)

	_ = validate.RegisterValidation(contentTypeTag, contentTypeValidation)
	core.RegisterCustomTranslation(validate, translator, contentTypeTag, contentTypeText)

	validate.RegisterStructValidation(courseStructValidation, NewCourse{}, UpdateCourse{})
	core.RegisterCustomTranslation(validate, translator, uniqueIDsTag, uniqueIDsText)

	core.RegisterFieldTranslation(validate, translator, "min", "title", titleMinText)
}

func (nc *NewCourse) Validate(validate *validator.Validate) error {
	nc.Clean()
	return validate.Struct(nc)
}

func (uc *UpdateCourse) Validate(validate *validator.Validate) error {
	uc.Clean()
	return validate.Struct(uc)
}

func (nc *NewContent) Validate(validate *validator.Validate) error {
	nc.Clean()
	return validate.Struct(nc)
}

// Custom Validators

func categoryValidation(fl validator.FieldLevel) bool {
	return Category(fl.Field().String()).Valid()
}

func contentTypeValidation(fl validator.FieldLevel) bool {
	return content.Type(fl.Field().String()).Valid()
}

// courseStructValidation checks that section ids and lesson ids are unique within the course.
func courseStructValidation(sl validator.StructLevel) {
	var sections []Section
	switch c := sl.Current().Interface().(type) {
	case NewCourse:
		sections = c.Sections
	case UpdateCourse:
		if c.Sections == nil {
			return
		}
		sections = *c.Sections
	}
	if !uniqueIDs(sections) {
		sl.ReportError(sections, "sections", "Sections", uniqueIDsTag, "")
	}
}

func uniqueIDs(sections []Section) bool {
	sectionIDs := make(map[string]struct{}, len(sections))
	lessonIDs := make(map[string]struct{})
	for _, s := range sections {
		if _, dup := sectionIDs[s.ID]; dup {
			return false
		}
		sectionIDs[s.ID] = struct{}{}
		for _, l := range s.Lessons {
			if _, dup := lessonIDs[l.ID]; dup {
				return false
			}
			lessonIDs[l.ID] = struct{}{}
		}
	}
	return true
}
