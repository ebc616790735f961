package domain

import (
	"errors"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
)

// ValidateEmail checks that email is present and well formed.
func ValidateEmail(email string) error {
	return validation.Validate(email, validation.Required, is.Email)
}

func (r IDRef) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.ID, validation.Required, validation.Min(int64(1))),
	)
}

func (r Registration) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.FirstName, validation.Required, validation.Length(1, 100)),
		validation.Field(&r.LastName, validation.Length(0, 100)),
		validation.Field(&r.Email, validation.Required, validation.Length(3, 100), is.Email),
		validation.Field(&r.Password, validation.Required),
	)
}

func (r NewBookRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title, validation.Required, validation.Length(1, 255)),
		validation.Field(&r.Author, validation.Required, validation.Length(1, 255)),
		validation.Field(&r.Type, validation.Required, validation.In(bookTypeValues()...)),
		validation.Field(&r.Image64, coverDataURL),
	)
}

func (r NewCopyRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Book),
	)
}

func (r NewLoanRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.User),
		validation.Field(&r.Copy),
	)
}

func bookTypeValues() []interface{} {
	out := make([]interface{}, len(BookTypes))
	for i, t := range BookTypes {
		out[i] = t
	}
	return out
}

var coverPrefixes = []string{"data:image/png;base64,", "data:image/jpeg;base64,"}

// coverDataURL accepts an empty cover or a base64 PNG or JPEG data URL.
var coverDataURL = validation.By(func(value interface{}) error {
	s, _ := value.(string)
	if s == "" {
		return nil
	}
	for _, p := range coverPrefixes {
		if rest, ok := strings.CutPrefix(s, p); ok {
			return is.Base64.Validate(rest)
		}
	}
	return errors.New("must be a PNG or JPEG data URL")
})
