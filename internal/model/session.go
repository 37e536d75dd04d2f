// Package model defines domain types shared by the SmartExpense client.
package model

import (
	"errors"
	"regexp"
)

// User is the authenticated person as returned by /auth/login and /auth/signup.
// It is held as the session user for the lifetime of a login.
type User struct {
	ID       int    `json:"id"`
	Email    string `json:"email"`
	Username string `json:"username"`
	Phone    string `json:"phone,omitempty"`
	Bio      string `json:"bio,omitempty"`
}

// Credentials is the /auth/login request body.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Signup is the /auth/signup request body.
type Signup struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Phone    string `json:"phone"`
	Password string `json:"password"`
	Bio      string `json:"bio"`
}

var (
	emailPattern    = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	usernamePattern = regexp.MustCompile(`^[A-Za-z0-9_]+$`)
	phonePattern    = regexp.MustCompile(`^[0-9]{10}$`)
	passwordPattern = regexp.MustCompile(`^[0-9]{4,}$`)
)

// Validate checks the form before it is sent. repassword is the
// confirmation field, which is never transmitted.
func (s Signup) Validate(repassword string) error {
	switch {
	case s.Email == "" || s.Username == "" || s.Phone == "" || s.Password == "" || repassword == "":
		return errors.New("all fields are required")
	case !emailPattern.MatchString(s.Email):
		return errors.New("invalid email format")
	case !usernamePattern.MatchString(s.Username):
		return errors.New("username can only contain letters, numbers and underscore (_)")
	case !phonePattern.MatchString(s.Phone):
		return errors.New("phone number must be 10 digits")
	case !passwordPattern.MatchString(s.Password):
		return errors.New("password must be at least 4 digits (numbers only)")
	case s.Password != repassword:
		return errors.New("passwords do not match")
	}
	return nil
}
