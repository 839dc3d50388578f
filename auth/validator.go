package auth

import (
	"chat-garden/errors"
	"regexp"
	"unicode"

	"github.com/go-playground/validator/v10"
)

var (
	validate    = newValidator()
	actorFormat = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)
)

type RegisterRequest struct {
	Actor    string `validate:"required,min=3,max=64,actorid"`
	Password string `validate:"required,min=12,max=72"`
}

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("actorid", func(fl validator.FieldLevel) bool {
		return actorFormat.MatchString(fl.Field().String())
	})
	return v
}

func ValidateRegister(req RegisterRequest) error {
	if err := validate.Struct(req); err != nil {
		return err
	}

	if !isPasswordComplex(req.Password) {
		return errors.ErrInvalidPassword
	}
	return nil
}

func isPasswordComplex(s string) bool {
	var (
		hasUpper   = false
		hasLower   = false
		hasNumber  = false
		hasSpecial = false
	)
	for _, char := range s {
		switch {
		case unicode.IsUpper(char):
			hasUpper = true
		case unicode.IsLower(char):
			hasLower = true
		case unicode.IsNumber(char):
			hasNumber = true
		case unicode.IsPunct(char) || unicode.IsSymbol(char):
			hasSpecial = true
		}
	}
	return hasUpper && hasLower && hasNumber && hasSpecial
}
