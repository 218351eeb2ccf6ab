package validate

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/kurtniculi26/RentAll/internal/domain"
)

var (
	passwordLetter  = regexp.MustCompile(`[A-Za-z]`)
	passwordDigit   = regexp.MustCompile(`\d`)
	passwordCharset = regexp.MustCompile(`^[A-Za-z\d]{8,72}$`)
)

// v is the package-level singleton validator. Custom tags are registered in
// init() before the first call to Struct.
var v = validator.New(validator.WithRequiredStructEnabled())

func init() {
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	_ = v.RegisterValidation("password", func(fl validator.FieldLevel) bool {
		return Password(fl.Field().String())
	})
}

// Password reports whether s is 8 to 72 letters and digits with one of each.
// 72 bytes is the most bcrypt will hash.
func Password(s string) bool {
	return passwordCharset.MatchString(s) && passwordLetter.MatchString(s) && passwordDigit.MatchString(s)
}

// Email validates a single address with the same rule the struct tags use.
func Email(s string) bool {
	return v.Var(s, "required,email") == nil
}

// Struct validates the given struct using its validate tags.
// Failures come back as *domain.ValidationError keyed by JSON field name.
func Struct(s interface{}) error {
	err := v.Struct(s)
	if err == nil {
		return nil
	}
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return err
	}
	fields := make(map[string]string, len(ve))
	for _, fe := range ve {
		if _, seen := fields[fe.Field()]; seen {
			continue
		}
		fields[fe.Field()] = message(fe)
	}
	return &domain.ValidationError{Fields: fields}
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "password":
		return "must be 8 to 72 characters with letters and numbers"
	case "len":
		return fmt.Sprintf("must be exactly %s characters", fe.Param())
	case "numeric":
		return "must contain digits only"
	case "datetime":
		return "must be a date in YYYY-MM-DD format"
	case "url":
		return "must be a valid URL"
	case "latitude", "longitude":
		return "is out of range"
	default:
		return fmt.Sprintf("failed '%s'", fe.Tag())
	}
}
