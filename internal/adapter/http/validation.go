package http

import (
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"salary-stream-loan/pkg/id"
)

// Reusable error payload
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}
type ErrorResponse struct {
	Error   string       `json:"error"`
	Details []FieldError `json:"details,omitempty"`
}

var (
	// 78 digits covers every uint256 value.
	reUintStr = regexp.MustCompile(`^[0-9]{1,78}$`)
	reToken   = regexp.MustCompile(`^[a-z0-9]{1,32}$`)
)

type CustomValidator struct{ v *validator.Validate }

func NewValidator() *CustomValidator {
	v := validator.New()
	// report json names so clients see the field they sent
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		for _, key := range []string{"json", "query"} {
			name := strings.SplitN(f.Tag.Get(key), ",", 2)[0]
			if name != "" && name != "-" {
				return name
			}
		}
		return f.Name
	})

	// account ids = 32-char lowercase hex
	_ = v.RegisterValidation("hex32", func(fl validator.FieldLevel) bool {
		return id.Valid(fl.Field().String())
	})
	// token amounts and rates travel as decimal strings
	_ = v.RegisterValidation("uintstr", func(fl validator.FieldLevel) bool {
		return reUintStr.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("token", func(fl validator.FieldLevel) bool {
		return reToken.MatchString(fl.Field().String())
	})

	return &CustomValidator{v: v}
}

func (cv *CustomValidator) Validate(i any) error { return cv.v.Struct(i) }

// Map validator.ValidationErrors → []FieldError with readable messages.
func ToFieldErrors(err error) []FieldError {
	ve, ok := err.(validator.ValidationErrors)
	if !ok {
		return []FieldError{{Field: "_", Message: err.Error()}}
	}
	out := make([]FieldError, 0, len(ve))
	for _, e := range ve {
		field := e.Field()
		switch e.Tag() {
		case "required":
			out = append(out, FieldError{Field: field, Message: "is required"})
		case "hex32":
			out = append(out, FieldError{Field: field, Message: "must be 32-char lowercase hex"})
		case "uintstr":
			out = append(out, FieldError{Field: field, Message: "must be a non-negative integer string"})
		case "token":
			out = append(out, FieldError{Field: field, Message: "must be 1-32 lowercase letters or digits"})
		case "gte":
			out = append(out, FieldError{Field: field, Message: "must be greater than or equal to " + e.Param()})
		case "lte":
			out = append(out, FieldError{Field: field, Message: "must be less than or equal to " + e.Param()})
		case "nefield":
			out = append(out, FieldError{Field: field, Message: "must differ from " + e.Param()})
		default:
			out = append(out, FieldError{Field: field, Message: e.Tag() + " validation failed"})
		}
	}
	return out
}
