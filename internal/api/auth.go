package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jidware/jidcore/internal/auth"
)

// adminLoginRequest is the request body for POST /admin/login.
type adminLoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// userLoginRequest is the request body for POST /location/{location}/user/login.
type userLoginRequest struct {
	Name     string `json:"name"`
	Password string `json:"password"`
}

// loginResponse is the response body for successful logins.
type loginResponse struct {
	Token string `json:"token"`
}

// handleAdminLogin authenticates an admin by email and password.
func (s *Server) handleAdminLogin(w http.ResponseWriter, r *http.Request) {
	var req adminLoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	if req.Email == "" {
		writeBadRequest(w, "email is required")
		return
	}

	token, err := s.auth.LoginAdmin(r.Context(), req.Email, req.Password)
	if err != nil {
		s.writeLoginFailure(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, loginResponse{Token: token})
}

// handleUserLogin authenticates a user within the location named in the
// URL.
func (s *Server) handleUserLogin(w http.ResponseWriter, r *http.Request) {
	location := chi.URLParam(r, "location")

	var req userLoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	if req.Name == "" {
		writeBadRequest(w, "name is required")
		return
	}

	token, err := s.auth.LoginUser(r.Context(), location, req.Name, req.Password)
	if err != nil {
		s.writeLoginFailure(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, loginResponse{Token: token})
}

// writeLoginFailure maps a login error to a response. Credential
// failures are a deliberately uniform 401; everything else is a 500.
func (s *Server) writeLoginFailure(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, auth.ErrIncorrectCredentials) {
		writeUnauthorized(w, "IncorrectCredentials", "incorrect credentials")
		return
	}
	s.logger.Error("login failed",
		"error", err,
		"request_id", r.Context().Value(ctxKeyRequestID),
	)
	writeInternalError(w, "login unavailable")
}

// verifyResponse is the response body for GET /token/verify.
type verifyResponse struct {
	Valid  bool         `json:"valid"`
	Error  string       `json:"error,omitempty"`
	Claims *auth.Claims `json:"claims,omitempty"`
}

// handleVerifyToken reports whether the presented Authorization header
// carries a valid token of either role. Rejections are 401 with the
// verifier's kind string so clients can distinguish an expired token
// from a bad one.
func (s *Server) handleVerifyToken(w http.ResponseWriter, r *http.Request) {
	result, err := s.auth.VerifyHeader(r.Context(), r.Header.Get("Authorization"), "")
	if err != nil {
		s.logger.Error("token verification failed",
			"error", err,
			"request_id", r.Context().Value(ctxKeyRequestID),
		)
		writeInternalError(w, "token verification unavailable")
		return
	}

	if !result.Valid {
		writeJSON(w, http.StatusUnauthorized, verifyResponse{
			Error: string(result.ErrorKind),
		})
		return
	}

	writeJSON(w, http.StatusOK, verifyResponse{Valid: true, Claims: result.Claims})
}

// handleMe returns the authenticated principal's token claims. Shared
// by /admin/me and /user/me; requireRole has already pinned the role.
func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())
	if claims == nil {
		writeInternalError(w, "missing authentication context")
		return
	}
	writeJSON(w, http.StatusOK, claims)
}
