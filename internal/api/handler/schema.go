package handler

import "github.com/folio-hub/portfolio-api/internal/core/domain"

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error string `json:"error"`
}

// --- Request / Response types ---

type registerRequest struct {
	Name     string `json:"name"     validate:"required,max=100"`
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,max=72"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	Token string       `json:"token,omitempty"`
	User  *domain.User `json:"user,omitempty"`
}

type changePasswordRequest struct {
	Current string `json:"pw"`
	New     string `json:"newPw" validate:"required,max=72"`
}

type profileImageResponse struct {
	URL string `json:"url"`
}

type deleteResponse struct {
	Result string `json:"result"`
}
