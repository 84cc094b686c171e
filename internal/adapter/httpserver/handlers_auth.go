package httpserver

import (
	"net/http"
)

type registerRequest struct {
	Name     string `json:"name" validate:"required,max=200"`
	Email    string `json:"email" validate:"required,email,max=320"`
	Password string `json:"password" validate:"required,max=72"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RegisterHandler creates a candidate account.
func (s *Server) RegisterHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req registerRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		u, err := s.Auth.Register(r.Context(), req.Name, req.Email, req.Password)
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		writeJSON(w, http.StatusCreated, toUserView(u))
	}
}

// LoginHandler exchanges credentials for a bearer token. With
// require_admin=true only admins may log in.
func (s *Server) LoginHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		requireAdmin, err := queryBool(r, "require_admin")
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		var req loginRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		token, u, err := s.Auth.Login(r.Context(), req.Email, req.Password, requireAdmin)
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"access_token": token,
			"token_type":   "bearer",
			"user":         toUserView(u),
		})
	}
}

// MeHandler returns the authenticated user.
func (s *Server) MeHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, toUserView(currentUser(r)))
	}
}

// ListUsersHandler lists all accounts (admin).
func (s *Server) ListUsersHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		users, err := s.Auth.ListUsers(r.Context(), currentUser(r))
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		out := make([]userView, len(users))
		for i, u := range users {
			out[i] = toUserView(u)
		}
		writeJSON(w, http.StatusOK, out)
	}
}
