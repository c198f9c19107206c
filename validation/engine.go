package validation

import (
	stderrors "errors"
	"fmt"
	"reflect"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"unicode"

	"github.com/go-playground/validator/v10"
)

var (
	phonePattern = regexp.MustCompile(`^\+[1-9]\d{1,14}$`)
	cuitPattern  = regexp.MustCompile(`^\d{2}-\d{8}-\d$`)
)

// PhoneMessage is the reason reported for numbers that are not E.164.
const PhoneMessage = "Must be a valid phone number in E.164 format (e.g., +5491123456789)"

// MessageFunc renders the reason for a failed rule.
type MessageFunc func(fe validator.FieldError) string

// Engine wraps a validator instance together with rule messages.
type Engine struct {
	v        *validator.Validate
	messages map[string]MessageFunc
}

var (
	defaultEngine *Engine
	once          sync.Once
)

// Default returns the process-wide engine with the built-in rules.
func Default() *Engine {
	once.Do(func() {
		defaultEngine = NewEngine()
	})
	return defaultEngine
}

// NewEngine creates an engine with the built-in rules registered:
// phone (E.164, 10-15 chars), strongpassword and cuit (NN-NNNNNNNN-N).
func NewEngine() *Engine {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(fieldName)

	e := &Engine{v: v, messages: map[string]MessageFunc{}}
	_ = e.RegisterRule("phone", isPhone, func(validator.FieldError) string {
		return PhoneMessage
	})
	_ = e.RegisterRule("strongpassword", isStrongPassword, passwordMessage)
	_ = e.RegisterRule("cuit", isCUITFormat, func(validator.FieldError) string {
		return "CUIT must have format XX-XXXXXXXX-X"
	})
	return e
}

// RegisterRule adds a custom validation tag.
func (e *Engine) RegisterRule(tag string, fn validator.Func, msg MessageFunc) error {
	if err := e.v.RegisterValidation(tag, fn); err != nil {
		return fmt.Errorf("validation: register %q: %w", tag, err)
	}
	if msg != nil {
		e.messages[tag] = msg
	}
	return nil
}

// Struct validates s. Violations come back as Errors; anything else (for
// example passing a non-struct) is returned unchanged.
func (e *Engine) Struct(s any) error {
	var out Errors
	if err := e.v.Struct(s); err != nil {
		var verrs validator.ValidationErrors
		if !stderrors.As(err, &verrs) {
			return err
		}
		for _, fe := range verrs {
			out = append(out, FieldError{Path: fieldPath(fe), Reason: e.reason(fe)})
		}
	}
	if r, ok := s.(Refiner); ok {
		out = append(out, r.Refine()...)
	}
	if len(out) > 0 {
		return out
	}
	return nil
}

func (e *Engine) reason(fe validator.FieldError) string {
	if fn, ok := e.messages[fe.Tag()]; ok {
		return fn(fe)
	}
	return formatValidationError(fe)
}

// formatValidationError creates a human-readable reason for built-in tags.
func formatValidationError(fe validator.FieldError) string {
	numeric := isNumericKind(fe.Kind())
	switch fe.Tag() {
	case "required":
		return "Required"
	case "email":
		return "Invalid email format"
	case "min", "gte":
		if numeric {
			return "Must be greater than or equal to " + fe.Param()
		}
		return "Must be at least " + fe.Param() + " characters"
	case "max", "lte":
		if numeric {
			return "Must be less than or equal to " + fe.Param()
		}
		return "Must be at most " + fe.Param() + " characters"
	case "len":
		return "Must be exactly " + fe.Param() + " characters"
	case "uuid", "uuid4":
		return "Invalid UUID"
	case "oneof":
		return "Must be one of: " + strings.Join(strings.Fields(fe.Param()), ", ")
	case "numeric":
		return "Must contain only digits"
	case "url", "http_url":
		return "Must be a valid URL"
	default:
		return "Invalid value"
	}
}

func isNumericKind(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

// fieldName reports fields by their wire name.
func fieldName(fld reflect.StructField) string {
	for _, tag := range []string{"json", "form", "uri", "header"} {
		name, _, _ := strings.Cut(fld.Tag.Get(tag), ",")
		if name == "-" {
			return ""
		}
		if name != "" {
			return name
		}
	}
	r := []rune(fld.Name)
	r[0] = unicode.ToLower(r[0])
	return string(r)
}

// fieldPath turns "SignupRequest.items[0].name" into "items.0.name".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if _, rest, ok := strings.Cut(ns, "."); ok {
		ns = rest
	}
	ns = strings.ReplaceAll(ns, "[", ".")
	return strings.ReplaceAll(ns, "]", "")
}

func isPhone(fl validator.FieldLevel) bool {
	return ValidPhone(fl.Field().String())
}

// ValidPhone reports whether s is an E.164 number of 10 to 15 characters.
func ValidPhone(s string) bool {
	return len(s) >= 10 && len(s) <= 15 && phonePattern.MatchString(s)
}

func isCUITFormat(fl validator.FieldLevel) bool {
	return cuitPattern.MatchString(fl.Field().String())
}

func isStrongPassword(fl validator.FieldLevel) bool {
	return passwordProblem(fl.Field().String()) == ""
}

func passwordMessage(fe validator.FieldError) string {
	s, _ := fe.Value().(string)
	if p := passwordProblem(s); p != "" {
		return p
	}
	return "Invalid password"
}

func passwordProblem(s string) string {
	if len(s) < 8 {
		return "Password must be at least 8 characters"
	}
	var lower, upper, digit bool
	for _, r := range s {
		switch {
		case unicode.IsLower(r):
			lower = true
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	switch {
	case !lower:
		return "Password must contain at least one lowercase letter"
	case !upper:
		return "Password must contain at least one uppercase letter"
	case !digit:
		return "Password must contain at least one number"
	}
	return ""
}

// ValidCUIT reports whether s is an 11-digit CUIT/CUIL (dashes optional)
// with a correct mod-11 check digit.
func ValidCUIT(s string) bool {
	digits := strings.ReplaceAll(s, "-", "")
	if len(digits) != 11 {
		return false
	}
	if _, err := strconv.ParseUint(digits, 10, 64); err != nil {
		return false
	}
	weights := [10]int{5, 4, 3, 2, 7, 6, 5, 4, 3, 2}
	sum := 0
	for i, w := range weights {
		sum += int(digits[i]-'0') * w
	}
	check := 11 - sum%11
	switch check {
	case 11:
		check = 0
	case 10:
		return false
	}
	return int(digits[10]-'0') == check
}
