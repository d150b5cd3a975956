package identity

import (
	"errors"
	"fmt"
	"regexp"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
)

// MinPasswordLength is the shortest password accepted at registration.
const MinPasswordLength = 6

var (
	reUpper = regexp.MustCompile(`[A-Z]`)
	reLower = regexp.MustCompile(`[a-z]`)
)

// Credentials is the email/password pair submitted by the login and
// registration forms.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ValidateRegistration applies the registration policy: a well-formed email
// and a password of at least six characters with one uppercase and one
// lowercase letter. Failures wrap ErrInvalidCredentialsFormat.
func (c Credentials) ValidateRegistration() error {
	err := validation.ValidateStruct(&c,
		validation.Field(&c.Email, validation.Required, is.Email),
		validation.Field(&c.Password,
			validation.Required,
			validation.Length(MinPasswordLength, 0).Error(fmt.Sprintf("must be at least %d characters long", MinPasswordLength)),
			validation.Match(reUpper).Error("must include at least one uppercase letter"),
			validation.Match(reLower).Error("must include at least one lowercase letter"),
		),
	)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidCredentialsFormat, err)
	}
	return nil
}

// ValidateSignIn only checks presence and email shape; the provider decides
// whether the password is right.
func (c Credentials) ValidateSignIn() error {
	err := validation.ValidateStruct(&c,
		validation.Field(&c.Email, validation.Required, is.Email),
		validation.Field(&c.Password, validation.Required),
	)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidCredentialsFormat, err)
	}
	return nil
}

// FieldProblem returns the policy message recorded for field ("email" or
// "password") in err, or "" when that field passed.
func FieldProblem(err error, field string) string {
	var errs validation.Errors
	if !errors.As(err, &errs) {
		return ""
	}
	if e := errs[field]; e != nil {
		return e.Error()
	}
	return ""
}
