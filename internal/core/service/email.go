package service

import (
	"strings"

	"github.com/go-playground/validator/v10"
)

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validEmail(v *validator.Validate, email string) bool {
	return v.Var(email, "required,email") == nil
}
