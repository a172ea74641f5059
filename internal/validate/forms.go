// Package validate holds the field-level validation applied by the routing
// layer before anything reaches the account guard or reset token manager.
// Each form is a plain function taking the decoded fields and returning a
// map of field name to error message; an empty map means the form is valid.
package validate

import (
	"fmt"
	"net/mail"
	"regexp"
	"strings"
	"unicode"
)

// Errors maps field names to user-correctable error messages.
type Errors map[string]string

const (
	maxEmailLength = 100
	minPasswordLen = 8
	maxPasswordLen = 128
)

var nameRegex = regexp.MustCompile(`^[a-zA-ZáéíóúÁÉÍÓÚñÑ\s\-']+$`)

// contactSubjects are the accepted values for the contact form subject.
var contactSubjects = map[string]bool{
	"consulta":     true,
	"proyecto":     true,
	"colaboracion": true,
	"otro":         true,
}

// Registration validates the registration form.
func Registration(name, email, password, confirm string) Errors {
	errs := Errors{}
	if err := Name(name); err != nil {
		errs["nombre"] = err.Error()
	}
	if err := Email(email); err != nil {
		errs["correo"] = err.Error()
	}
	if err := PasswordStrength(password); err != nil {
		errs["contraseña"] = err.Error()
	}
	if confirm == "" {
		errs["confirmar_contraseña"] = "password confirmation is required"
	} else if password != confirm {
		errs["confirmar_contraseña"] = "passwords do not match"
	}
	return errs
}

// Login validates the login form. Only presence and format are checked here;
// credential verification belongs to the account guard.
func Login(email, password string) Errors {
	errs := Errors{}
	if err := Email(email); err != nil {
		errs["correo"] = err.Error()
	}
	if password == "" {
		errs["contraseña"] = "password is required"
	}
	return errs
}

// ResetRequest validates the forgot-password form.
func ResetRequest(email string) Errors {
	errs := Errors{}
	if err := Email(email); err != nil {
		errs["correo"] = err.Error()
	}
	return errs
}

// NewPassword validates the set-new-password form.
func NewPassword(password, confirm string) Errors {
	errs := Errors{}
	if err := PasswordStrength(password); err != nil {
		errs["nueva_contraseña"] = err.Error()
	}
	if confirm == "" {
		errs["confirmar_contraseña"] = "password confirmation is required"
	} else if password != confirm {
		errs["confirmar_contraseña"] = "passwords do not match"
	}
	return errs
}

// Contact validates the contact form.
func Contact(name, email, subject, message string) Errors {
	errs := Errors{}
	if err := Name(name); err != nil {
		errs["nombre"] = err.Error()
	}
	if err := Email(email); err != nil {
		errs["correo"] = err.Error()
	}
	if subject == "" {
		errs["asunto"] = "a subject is required"
	} else if !contactSubjects[subject] {
		errs["asunto"] = "unknown subject"
	}
	message = strings.TrimSpace(message)
	if len(message) < 10 || len(message) > 1000 {
		errs["mensaje"] = "message must be between 10 and 1000 characters"
	}
	return errs
}

// Email validates an email address for presence, length, and format.
func Email(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return fmt.Errorf("email address is required")
	}
	if len(email) > maxEmailLength {
		return fmt.Errorf("email address is too long (max %d characters)", maxEmailLength)
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return fmt.Errorf("invalid email address format")
	}
	return nil
}

// Name validates a display name: 2-50 characters, letters (including
// accented), spaces, hyphens, and apostrophes.
func Name(name string) error {
	name = strings.TrimSpace(name)
	if len([]rune(name)) < 2 {
		return fmt.Errorf("name must be at least 2 characters long")
	}
	if len([]rune(name)) > 50 {
		return fmt.Errorf("name must be at most 50 characters long")
	}
	if !nameRegex.MatchString(name) {
		return fmt.Errorf("name may only contain letters, spaces, hyphens, and apostrophes")
	}
	return nil
}

// PasswordStrength validates a password against the site policy:
// 8-128 characters with at least one uppercase letter, one lowercase
// letter, one digit, and one special character.
func PasswordStrength(password string) error {
	if len(password) < minPasswordLen {
		return fmt.Errorf("password must be at least %d characters long", minPasswordLen)
	}
	if len(password) > maxPasswordLen {
		return fmt.Errorf("password must be at most %d characters long", maxPasswordLen)
	}
	if !containsFunc(password, unicode.IsUpper) {
		return fmt.Errorf("password must contain at least one uppercase letter")
	}
	if !containsFunc(password, unicode.IsLower) {
		return fmt.Errorf("password must contain at least one lowercase letter")
	}
	if !containsFunc(password, unicode.IsDigit) {
		return fmt.Errorf("password must contain at least one number")
	}
	if !containsFunc(password, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && !unicode.IsSpace(r)
	}) {
		return fmt.Errorf("password must contain at least one special character")
	}
	return nil
}

func containsFunc(s string, fn func(rune) bool) bool {
	for _, r := range s {
		if fn(r) {
			return true
		}
	}
	return false
}
