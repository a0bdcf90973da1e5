// Package validation registers the request validation tags shared by the DTOs.
package validation

import (
	"regexp"

	"github.com/go-playground/validator/v10"
)

// Validation rule patterns
var (
	// PhonePattern accepts an optional leading + and 7 to 15 digits
	PhonePattern = `^\+?[0-9]{7,15}$`

	// IdentifierPattern matches student and employee IDs such as STU001 or FAC-12
	IdentifierPattern = `^[A-Za-z0-9][A-Za-z0-9-]{1,31}$`

	// PasswordMinLength is the minimum accepted password length
	PasswordMinLength = 6
)

// CompiledPatterns caches compiled regex patterns
var CompiledPatterns = struct {
	Phone      *regexp.Regexp
	Identifier *regexp.Regexp
}{
	Phone:      regexp.MustCompile(PhonePattern),
	Identifier: regexp.MustCompile(IdentifierPattern),
}

// Custom tag names
const (
	TagPhone      = "phone"
	TagIdentifier = "schoolid"
	TagPassword   = "password"
)

// Register adds the custom tags to v
func Register(v *validator.Validate) error {
	rules := map[string]validator.Func{
		TagPhone: func(fl validator.FieldLevel) bool {
			return CompiledPatterns.Phone.MatchString(fl.Field().String())
		},
		TagIdentifier: func(fl validator.FieldLevel) bool {
			return CompiledPatterns.Identifier.MatchString(fl.Field().String())
		},
		TagPassword: func(fl validator.FieldLevel) bool {
			return len(fl.Field().String()) >= PasswordMinLength
		},
	}
	for tag, fn := range rules {
		if err := v.RegisterValidation(tag, fn); err != nil {
			return err
		}
	}
	return nil
}
