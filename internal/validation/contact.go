package validation

import (
	"fmt"
	"regexp"
	"strconv"
	"unicode/utf16"

	"github.com/go-playground/validator/v10"

	"github.com/folio-dev/portfolio-api/internal/models"
	apperrors "github.com/folio-dev/portfolio-api/pkg/errors"
)

// Field limits, in UTF-16 code units: an emoji outside the BMP counts as two.
const (
	MaxNameLength    = 100
	MaxEmailLength   = 100
	MaxMessageLength = 5000
)

// emailPattern accepts local@domain.tld: one '@', a '.' somewhere after it and no
// whitespace. The class also excludes unicode separators and the BOM.
var emailPattern = regexp.MustCompile(`^[^\s\v\p{Z}\x{FEFF}@]+@[^\s\v\p{Z}\x{FEFF}@]+\.[^\s\v\p{Z}\x{FEFF}@]+$`)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := v.RegisterValidation("contact_email", func(fl validator.FieldLevel) bool {
		return emailPattern.MatchString(fl.Field().String())
	}); err != nil {
		panic(fmt.Sprintf("register contact_email validation: %v", err))
	}
	if err := v.RegisterValidation("utf16max", func(fl validator.FieldLevel) bool {
		limit, err := strconv.Atoi(fl.Param())
		if err != nil {
			return false
		}
		return utf16Len(fl.Field().String()) <= limit
	}); err != nil {
		panic(fmt.Sprintf("register utf16max validation: %v", err))
	}
	return v
}

func utf16Len(s string) int {
	n := 0
	for _, r := range s {
		if l := utf16.RuneLen(r); l > 0 {
			n += l
		} else {
			n++
		}
	}
	return n
}

type contactField struct {
	name  string
	value string
	max   int
}

// Contact validates a contact request and returns the submission to relay.
//
// Checks run in three passes over all fields: presence, then length, then email
// format. The first failing pass decides the error, so a request missing a field
// is never reported as too long.
func Contact(req *models.ContactRequest) (models.ContactSubmission, error) {
	if req == nil {
		return models.ContactSubmission{}, apperrors.ErrMissingFields
	}

	fields := []contactField{
		{name: "name", value: req.Name, max: MaxNameLength},
		{name: "email", value: req.Email, max: MaxEmailLength},
		{name: "message", value: req.Message, max: MaxMessageLength},
	}

	for _, f := range fields {
		if err := validate.Var(f.value, "required"); err != nil {
			return models.ContactSubmission{}, fmt.Errorf("%w: %s", apperrors.ErrMissingFields, f.name)
		}
	}

	for _, f := range fields {
		if err := validate.Var(f.value, fmt.Sprintf("utf16max=%d", f.max)); err != nil {
			return models.ContactSubmission{}, fmt.Errorf("%w: %s exceeds %d UTF-16 units", apperrors.ErrInputTooLong, f.name, f.max)
		}
	}

	if err := validate.Var(req.Email, "contact_email"); err != nil {
		return models.ContactSubmission{}, apperrors.ErrInvalidEmail
	}

	return models.ContactSubmission{
		Name:    req.Name,
		Email:   req.Email,
		Message: req.Message,
	}, nil
}
