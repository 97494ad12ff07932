package validation

import (
	"reflect"
	"regexp"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/yigit/academy/internal/app/models"
)

// Validation rule patterns
var (
	// ClockPattern matches a 24h HH:MM wall clock time
	ClockPattern = `^([01]\d|2[0-3]):[0-5]\d$`

	// DateLayout is the accepted calendar date format
	DateLayout = "2006-01-02"
)

// CompiledPatterns caches compiled regex patterns for better performance
var CompiledPatterns = struct {
	Clock *regexp.Regexp
}{
	Clock: regexp.MustCompile(ClockPattern),
}

// RegisterRules adds the academy-specific tags to v:
//
//	hhmm    "17:30"
//	isodate "2025-05-01"
//	role    student|coach|staff|admin
func RegisterRules(v *validator.Validate) error {
	rules := map[string]validator.Func{
		"hhmm":    validateClock,
		"isodate": validateDate,
		"role":    validateRole,
	}
	for tag, fn := range rules {
		if err := v.RegisterValidation(tag, fn); err != nil {
			return err
		}
	}
	return nil
}

func stringValue(fl validator.FieldLevel) (string, bool) {
	field := fl.Field()
	if field.Kind() == reflect.Ptr {
		if field.IsNil() {
			return "", false
		}
		field = field.Elem()
	}
	if field.Kind() != reflect.String {
		return "", false
	}
	return field.String(), true
}

func validateClock(fl validator.FieldLevel) bool {
	s, ok := stringValue(fl)
	return ok && CompiledPatterns.Clock.MatchString(s)
}

func validateDate(fl validator.FieldLevel) bool {
	s, ok := stringValue(fl)
	if !ok {
		return false
	}
	_, err := time.Parse(DateLayout, s)
	return err == nil
}

func validateRole(fl validator.FieldLevel) bool {
	s, ok := stringValue(fl)
	return ok && models.Role(s).Valid()
}
