package handler

import (
	"log/slog"
	"net/http"
	"time"

	"foodorder/internal/model"
	"foodorder/internal/mw"
	"foodorder/internal/service"
)

type registerRequest struct {
	Name     string `json:"name" validate:"required,min=2,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Phone    string `json:"phone"`
	Password string `json:"password" validate:"required,min=6"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type authResponse struct {
	Token string      `json:"token"`
	User  *model.User `json:"user"`
}

// RegisterHandler always creates customers. Elevated roles are assigned
// out of band.
func RegisterHandler(auth *service.AuthService, secret string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req registerRequest
		if !decode(w, r, &req) {
			return
		}

		user, err := auth.Register(r.Context(), service.RegisterInput{
			Name:     req.Name,
			Email:    req.Email,
			Phone:    req.Phone,
			Password: req.Password,
			Role:     model.RoleCustomer,
		})
		if err != nil {
			writeError(w, err)
			return
		}

		issueToken(w, http.StatusCreated, "User registered successfully", user, secret)
	}
}

func LoginHandler(auth *service.AuthService, secret string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req loginRequest
		if !decode(w, r, &req) {
			return
		}

		user, err := auth.Authenticate(r.Context(), req.Email, req.Password)
		if err != nil {
			writeError(w, err)
			return
		}

		issueToken(w, http.StatusOK, "Login successful", user, secret)
	}
}

func issueToken(w http.ResponseWriter, status int, message string, user *model.User, secret string) {
	token, err := mw.IssueToken(secret, user, time.Now())
	if err != nil {
		slog.Error("token generation failed", "error", err)
		Fail(w, http.StatusInternalServerError, "token generation failed")
		return
	}

	w.Header().Set("Authorization", "Bearer "+token)
	ok(w, status, message, authResponse{Token: token, User: user})
}
