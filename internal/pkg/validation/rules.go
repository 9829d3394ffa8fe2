package validation

import (
	"regexp"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var (
	lrnRegex         = regexp.MustCompile(`^[0-9]{12}$`)
	schoolYearRegex  = regexp.MustCompile(`^[0-9]{4}-[0-9]{4}$`)
	phoneNumberRegex = regexp.MustCompile(`^\+?[0-9]{7,15}$`)
)

// RegisterCustomValidators wires domain validation rules into gin's binding validator.
func RegisterCustomValidators() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("lrn", validateLRN)
		_ = v.RegisterValidation("school_year", validateSchoolYear)
		_ = v.RegisterValidation("phone", validatePhone)
	}
}

// validateLRN checks the 12-digit Learner Reference Number format.
// Empty values pass; pair with required when the field is mandatory.
func validateLRN(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true
	}
	return lrnRegex.MatchString(value)
}

// validateSchoolYear checks the YYYY-YYYY school year format.
func validateSchoolYear(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true
	}
	return schoolYearRegex.MatchString(value)
}

// validatePhone accepts digits with an optional leading plus sign.
func validatePhone(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true
	}
	return phoneNumberRegex.MatchString(value)
}
