package http

import (
	"errors"
	"math"
	"reflect"
	"strings"

	"mortgage-underwriting/internal/domain/document"
	"mortgage-underwriting/internal/domain/loan"
	"mortgage-underwriting/pkg/id"

	"github.com/go-playground/validator/v10"
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

type rule struct {
	check   func(fl validator.FieldLevel) bool
	message string
}

// Engine-specific tags. Catalog enums are checked against the domain so a value added
// there is accepted here without touching the handlers.
var rules = map[string]rule{
	"hex32": {
		check:   func(fl validator.FieldLevel) bool { return id.Valid(fl.Field().String()) },
		message: "must be 32-char lowercase hex",
	},
	"dec2": {
		check: func(fl validator.FieldLevel) bool {
			f := fl.Field().Float()
			return math.Abs(f-(math.Round(f*100)/100)) < 1e-9
		},
		message: "must have at most 2 decimal places",
	},
	"projecttype": {
		check:   func(fl validator.FieldLevel) bool { return document.ProjectType(fl.Field().String()).Valid() },
		message: "must be a known project type",
	},
	"doccategory": {
		check:   func(fl validator.FieldLevel) bool { return document.Category(fl.Field().String()).Valid() },
		message: "must be a known document category",
	},
	"loanstatus": {
		check:   func(fl validator.FieldLevel) bool { return loan.Status(fl.Field().String()).Valid() },
		message: "must be a known loan status",
	},
}

type CustomValidator struct{ v *validator.Validate }

func NewValidator() *CustomValidator {
	v := validator.New()
	// report fields under their JSON names
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		switch name {
		case "-":
			return ""
		case "":
			return f.Name
		}
		return name
	})
	for tag, r := range rules {
		_ = v.RegisterValidation(tag, r.check)
	}
	return &CustomValidator{v: v}
}

func (cv *CustomValidator) Validate(i any) error { return cv.v.Struct(i) }

// ToFieldErrors maps validator.ValidationErrors to readable per-field messages.
func ToFieldErrors(err error) []FieldError {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return []FieldError{{Field: "_", Message: err.Error()}}
	}
	out := make([]FieldError, 0, len(ve))
	for _, e := range ve {
		out = append(out, FieldError{Field: e.Field(), Message: message(e)})
	}
	return out
}

func message(e validator.FieldError) string {
	if r, ok := rules[e.Tag()]; ok {
		return r.message
	}
	switch e.Tag() {
	case "required":
		return "is required"
	case "oneof":
		return "must be one of: " + e.Param()
	case "gt":
		return "must be greater than " + e.Param()
	case "gte":
		return "must be greater than or equal to " + e.Param()
	case "lte":
		return "must be less than or equal to " + e.Param()
	}
	return e.Tag() + " validation failed"
}
