package service

import (
	"crypto/subtle"
	stderrors "errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/msgboard/msgboard/shared/errors"
)

// PasswordScheme turns a delete password into its stored form and checks it later.
type PasswordScheme interface {
	Hash(plain string) (string, error)
	Verify(supplied, stored string) bool
}

// PlainPassword stores the password as given and compares bytes.
type PlainPassword struct{}

func (PlainPassword) Hash(plain string) (string, error) {
	return plain, nil
}

func (PlainPassword) Verify(supplied, stored string) bool {
	return subtle.ConstantTimeCompare([]byte(supplied), []byte(stored)) == 1
}

// BcryptPassword stores a bcrypt hash. Passwords over 72 bytes are a validation error.
type BcryptPassword struct {
	Cost int
}

func (b BcryptPassword) Hash(plain string) (string, error) {
	cost := b.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), cost)
	if stderrors.Is(err, bcrypt.ErrPasswordTooLong) {
		return "", &errors.ValidationError{Scope: "request_body", Message: "Delete password is too long."}
	}
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func (BcryptPassword) Verify(supplied, stored string) bool {
	return bcrypt.CompareHashAndPassword([]byte(stored), []byte(supplied)) == nil
}

func NewPasswordScheme(name string) (PasswordScheme, error) {
	switch name {
	case "", "plain":
		return PlainPassword{}, nil
	case "bcrypt":
		return BcryptPassword{}, nil
	default:
		return nil, fmt.Errorf("unknown password scheme %q", name)
	}
}
