package wizard

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"slices"
	"strings"

	"github.com/go-playground/validator/v10"

	apperrors "github.com/vsconnecto/vsconnecto-api/pkg/errors"
)

var (
	pincodePattern = regexp.MustCompile(`^[0-9]{6}$`)
	phoneCharset   = regexp.MustCompile(`^\+?[0-9 ()-]+$`)
	indexSuffix    = regexp.MustCompile(`\[\d+\]$`)
)

// FieldError is one user-facing validation failure
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError is returned when a step rejects its input. The draft is never touched.
type ValidationError struct {
	Step   Step
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return fmt.Sprintf("%s step: %s", e.Step, strings.Join(parts, "; "))
}

func (e *ValidationError) Unwrap() error {
	return apperrors.ErrInvalidInput
}

// validate is shared by all step inputs; validator.Validate is safe for concurrent use
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	mustRegister(v, "phone", func(fl validator.FieldLevel) bool {
		raw := fl.Field().String()
		if !phoneCharset.MatchString(raw) {
			return false
		}
		digits := 0
		for _, r := range raw {
			if r >= '0' && r <= '9' {
				digits++
			}
		}
		return digits >= 10 && digits <= 15
	})
	mustRegister(v, "pincode", func(fl validator.FieldLevel) bool {
		return pincodePattern.MatchString(fl.Field().String())
	})
	mustRegister(v, "availability", oneOfList(AvailabilityOptions))
	mustRegister(v, "category", oneOfList(ClientCategories))
	mustRegister(v, "budget", oneOfList(BudgetRanges))
	mustRegister(v, "communication", oneOfList(CommunicationPreferences))

	return v
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("register validation %q: %v", tag, err))
	}
}

func oneOfList(options []string) validator.Func {
	return func(fl validator.FieldLevel) bool {
		return slices.Contains(options, fl.Field().String())
	}
}

// validateStruct runs the struct tags of input and converts failures into a ValidationError.
// extra holds checks that depend on more than the struct itself (e.g. the owner's role).
func validateStruct(step Step, input any, messages map[string]string, extra ...FieldError) error {
	fields := append([]FieldError(nil), extra...)

	if err := validate.Struct(input); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return fmt.Errorf("validate %s: %w", step, err)
		}
		for _, fe := range verrs {
			fields = append(fields, FieldError{
				Field:   fe.Field(),
				Message: messageFor(fe, messages),
			})
		}
	}

	if len(fields) == 0 {
		return nil
	}
	return &ValidationError{Step: step, Fields: fields}
}

// messageFor looks up "field.tag" (list elements use "field[].tag") before falling back to a generic text
func messageFor(fe validator.FieldError, messages map[string]string) string {
	field := fe.Field()
	key := field
	if indexSuffix.MatchString(field) {
		key = indexSuffix.ReplaceAllString(field, "[]")
	}
	if msg, ok := messages[key+"."+fe.Tag()]; ok {
		return msg
	}

	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "min":
		return field + " must be at least " + fe.Param()
	case "max":
		return field + " must not exceed " + fe.Param()
	case "unique":
		return field + " must not contain duplicates"
	case "url":
		return field + " must be a valid URL"
	case "oneof":
		return field + " must be one of: " + fe.Param()
	default:
		return field + " is invalid"
	}
}
