package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/kehila-platform/kehila/pkg/store"
)

type AuthHandler struct {
	backend       store.Backend
	jwtSecret     string
	tokenDuration time.Duration
}

// NewAuthHandler creates a new AuthHandler with required dependencies.
func NewAuthHandler(backend store.Backend, jwtSecret string, tokenDuration time.Duration) *AuthHandler {
	return &AuthHandler{backend: backend, jwtSecret: jwtSecret, tokenDuration: tokenDuration}
}

type signupRequest struct {
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type signinRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	Token string       `json:"token"`
	User  store.Record `json:"user"`
}

// Signup creates credentials on backends that own them (the local backend);
// the hosted platform manages signup out of band.
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	reg, ok := h.backend.(store.Registrar)
	if !ok {
		http.Error(w, "signup is managed by the platform", http.StatusNotImplemented)
		return
	}

	var req signupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}
	if req.FullName == "" || req.Email == "" || req.Password == "" {
		http.Error(w, "Missing fields", http.StatusBadRequest)
		return
	}

	ctx := r.Context()

	if _, err := reg.Register(ctx, req.Email, req.Password, store.Fields{"full_name": req.FullName}); err != nil {
		http.Error(w, "Error creating user", http.StatusInternalServerError)
		return
	}

	sess, err := h.backend.Login(ctx, req.Email, req.Password)
	if err != nil {
		http.Error(w, "Error creating session", http.StatusInternalServerError)
		return
	}

	h.respondWithToken(w, sess)
}

func (h *AuthHandler) Signin(w http.ResponseWriter, r *http.Request) {
	var req signinRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}
	if req.Email == "" || req.Password == "" {
		http.Error(w, "Missing fields", http.StatusBadRequest)
		return
	}

	sess, err := h.backend.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		http.Error(w, "Credentials not found", http.StatusUnauthorized)
		return
	}

	h.respondWithToken(w, sess)
}

func (h *AuthHandler) Signout(w http.ResponseWriter, r *http.Request) {
	// For stateless tokens, signout is client-side (just delete token)
	w.WriteHeader(http.StatusOK)
	fmt.Fprintln(w, `{"message":"signed out"}`)
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	sess, ok := SessionFromContext(r.Context())
	if !ok {
		http.Error(w, "sign in required", http.StatusUnauthorized)
		return
	}

	user, err := h.backend.Me(r.Context(), sess.Token)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, user, http.StatusOK)
}

func (h *AuthHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	sess, ok := SessionFromContext(r.Context())
	if !ok {
		http.Error(w, "sign in required", http.StatusUnauthorized)
		return
	}

	var fields store.Fields
	if err := json.NewDecoder(r.Body).Decode(&fields); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}
	// role flags are mutated only by mentor-approval side effects
	delete(fields, "user_type")
	delete(fields, "is_approved_mentor")
	delete(fields, "mentor_id")

	user, err := h.backend.UpdateMe(r.Context(), sess.Token, fields)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, user, http.StatusOK)
}

// respondWithToken issues the gateway session token wrapping the platform
// session.
func (h *AuthHandler) respondWithToken(w http.ResponseWriter, sess *store.Session) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"email":     sess.User.Str("email"),
		"name":      sess.User.Str("full_name"),
		"user_type": sess.User.Str("user_type"),
		"ptoken":    sess.Token,
		"exp":       time.Now().Add(h.tokenDuration).Unix(),
	})
	tokenStr, err := token.SignedString([]byte(h.jwtSecret))
	if err != nil {
		http.Error(w, "Error signing token", http.StatusInternalServerError)
		return
	}

	writeJSON(w, authResponse{Token: tokenStr, User: sess.User}, http.StatusOK)
}
