// Package validation holds the shared struct validator and the custom rules
// registered on it. Request payloads carry `validate` tags; handlers run
// Struct on them after binding so malformed input never reaches the services.
package validation

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// FieldError describes one failed rule on one field.
type FieldError struct {
	Field string `json:"field"`
	Tag   string `json:"tag"`
}

// FieldErrors is the collection form returned by Struct.
type FieldErrors []FieldError

func (fe FieldErrors) Error() string {
	if len(fe) == 0 {
		return "validation failed"
	}
	return fmt.Sprintf("validation failed: %s fails %q", fe[0].Field, fe[0].Tag)
}

var validate = newValidate()

func newValidate() *validator.Validate {
	v := validator.New()
	v.RegisterValidation("addr", func(fl validator.FieldLevel) bool {
		return isAddr(fl.Field().String())
	})
	return v
}

// isAddr accepts any non-empty identifier without whitespace. Address formats
// differ per deployment, so no chain-specific checksum is enforced here.
func isAddr(s string) bool {
	return s != "" && !strings.ContainsAny(s, " \t\n")
}

// Struct validates s against its `validate` tags, recursing into nested
// structs and non-nil pointers.
func Struct(s interface{}) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}
	out := make(FieldErrors, 0, len(verrs))
	for _, ve := range verrs {
		out = append(out, FieldError{Field: ve.Field(), Tag: ve.Tag()})
	}
	return out
}

// Addr validates a single address value outside of a tagged struct.
func Addr(s string) error {
	if !isAddr(s) {
		return fmt.Errorf("invalid address %q", s)
	}
	return nil
}
