// AngelaMos | 2026
// validate.go

package submission

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"

	"github.com/carterperez-dev/doubtspace/internal/domain"
)

type bounds struct {
	min int
	max int
}

var contentBounds = map[Kind]bounds{
	KindAnswer:    {min: domain.AnswerMinLength, max: domain.ContentMaxLength},
	KindComment:   {min: 1, max: domain.ContentMaxLength},
	KindDoubt:     {min: 1, max: domain.ContentMaxLength},
	KindSpacePost: {min: 1, max: domain.ContentMaxLength},
}

// ValidateContent trims s and checks it against the bounds for kind.
// Length is counted in characters, not bytes.
func ValidateContent(kind Kind, field, s string) (string, error) {
	b, ok := contentBounds[kind]
	if !ok {
		return "", &ValidationError{Field: field, Err: ErrInvalidField, Detail: "unknown form kind"}
	}

	trimmed := strings.TrimSpace(s)
	n := utf8.RuneCountInString(trimmed)

	switch {
	case n == 0:
		return "", &ValidationError{Field: field, Err: ErrEmptyContent}
	case n < b.min:
		return "", &ValidationError{Field: field, Err: ErrTooShort, Length: n, Limit: b.min}
	case n > b.max:
		return "", &ValidationError{Field: field, Err: ErrTooLong, Length: n, Limit: b.max}
	}
	return trimmed, nil
}

type doubtDraft struct {
	Title string   `validate:"required,max=200"`
	Tags  []string `validate:"required,min=1,max=5,dive,required,max=32"`
}

// NormalizeTags applies the same tag rules the server does.
func NormalizeTags(tags []string) []string {
	return domain.NormalizeTags(tags)
}

func validateDoubt(v *validator.Validate, in domain.DoubtInput) (domain.DoubtInput, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return domain.DoubtInput{}, &ValidationError{Field: "title", Err: ErrEmptyContent}
	}
	if n := utf8.RuneCountInString(title); n > domain.TitleMaxLength {
		return domain.DoubtInput{}, &ValidationError{
			Field:  "title",
			Err:    ErrTooLong,
			Length: n,
			Limit:  domain.TitleMaxLength,
		}
	}

	description, err := ValidateContent(KindDoubt, "description", in.Description)
	if err != nil {
		return domain.DoubtInput{}, err
	}

	tags := NormalizeTags(in.Tags)
	if err := v.Struct(doubtDraft{Title: title, Tags: tags}); err != nil {
		return domain.DoubtInput{}, fieldError(err)
	}

	return domain.DoubtInput{Title: title, Description: description, Tags: tags}, nil
}

func fieldError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return &ValidationError{Field: "form", Err: ErrInvalidField, Detail: err.Error()}
	}

	fe := verrs[0]
	field := strings.ToLower(fe.StructField())
	if i := strings.IndexByte(field, '['); i >= 0 {
		field = field[:i]
	}

	var detail string
	switch fe.Tag() {
	case "required":
		detail = "is required"
	case "min":
		detail = fmt.Sprintf("needs at least %s", fe.Param())
	case "max":
		detail = fmt.Sprintf("allows at most %s", fe.Param())
	default:
		detail = fmt.Sprintf("failed %s", fe.Tag())
	}

	return &ValidationError{Field: field, Err: ErrInvalidField, Detail: detail}
}
