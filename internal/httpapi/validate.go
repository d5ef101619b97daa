package httpapi

import (
	"net/mail"
	"strings"
)

// Field bounds carried over from the public API contract.
const (
	maxEmailLen    = 100
	maxNameLen     = 100
	minPasswordLen = 6
	maxPasswordLen = 50
)

func validEmail(email string) bool {
	if strings.ContainsAny(email, " \t") {
		return false
	}
	addr, err := mail.ParseAddress(email)
	return err == nil && addr.Address == email
}

func checkEmail(errs map[string]string, email string) {
	email = strings.TrimSpace(email)
	switch {
	case email == "":
		errs["email"] = "Email is required"
	case len(email) > maxEmailLen:
		errs["email"] = "Email must not exceed 100 characters"
	case !validEmail(email):
		errs["email"] = "Email should be valid"
	}
}

func checkPassword(errs map[string]string, password string, required bool) {
	if password == "" {
		if required {
			errs["password"] = "Password is required"
		}
		return
	}
	if len(password) < minPasswordLen || len(password) > maxPasswordLen {
		errs["password"] = "Password must be between 6 and 50 characters"
	}
}

func checkFullName(errs map[string]string, fullName string, required bool) {
	fullName = strings.TrimSpace(fullName)
	if fullName == "" {
		if required {
			errs["fullName"] = "Full name is required"
		}
		return
	}
	if len(fullName) > maxNameLen {
		errs["fullName"] = "Full name must not exceed 100 characters"
	}
}
