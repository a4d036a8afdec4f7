package model

import (
	"errors"

	validation "github.com/go-ozzo/ozzo-validation"
)

var (
	errEmptyUpdate     = errors.New("at least one of email or password is required")
	errPasswordTooLong = errors.New("the length must be no more than 72 bytes")
	passwordFitsBcrypt = validation.By(checkPasswordBytes)
)

// MaxPasswordBytes is the longest password bcrypt accepts.
const MaxPasswordBytes = 72

// CredentialsRequest is the body of register, login and admin create requests
type CredentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate checks that both fields are present.
func (r CredentialsRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required),
		validation.Field(&r.Password, validation.Required, passwordFitsBcrypt),
	)
}

// UpdateUserRequest carries the fields a caller may change on a user record.
// Pointers distinguish "not provided" from "set to empty".
type UpdateUserRequest struct {
	Email    *string `json:"email,omitempty"`
	Password *string `json:"password,omitempty"`
}

// Validate requires at least one field, and rejects fields provided as empty.
func (r UpdateUserRequest) Validate() error {
	if r.Email == nil && r.Password == nil {
		return errEmptyUpdate
	}
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.NilOrNotEmpty),
		validation.Field(&r.Password, validation.NilOrNotEmpty, passwordFitsBcrypt),
	)
}

func checkPasswordBytes(value interface{}) error {
	var p string
	switch v := value.(type) {
	case string:
		p = v
	case *string:
		if v == nil {
			return nil
		}
		p = *v
	}
	if len(p) > MaxPasswordBytes {
		return errPasswordTooLong
	}
	return nil
}
