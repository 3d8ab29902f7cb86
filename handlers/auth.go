package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"streakpick-go/logging"
	"streakpick-go/models"
	"streakpick-go/services"
)

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	authService   *services.AuthService
	secureCookies bool
	logger        *logging.Logger
}

// NewAuthHandler creates a new authentication handler
func NewAuthHandler(authService *services.AuthService, secureCookies bool) *AuthHandler {
	return &AuthHandler{
		authService:   authService,
		secureCookies: secureCookies,
		logger:        logging.WithPrefix("AuthHandler"),
	}
}

// Register handles JSON account creation requests
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	resp, err := h.authService.Register(r.Context(), req)
	if err != nil {
		h.logger.Warnf("Registration failed for %s: %v", req.Email, err)
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	h.setAuthCookie(w, resp.Token)
	h.logger.Infof("Registered account %s (%s)", resp.User.DisplayName, resp.User.Email)
	writeJSON(w, http.StatusCreated, resp)
}

// Login handles JSON login requests
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "Email and password are required")
		return
	}

	resp, err := h.authService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		h.logger.Warnf("Login failed for %s: %v", req.Email, err)
		writeError(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}

	h.setAuthCookie(w, resp.Token)
	h.logger.Infof("User %s logged in", resp.User.Email)
	writeJSON(w, http.StatusOK, resp)
}

// Logout clears the auth cookie
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     "auth_token",
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})
	writeJSON(w, http.StatusOK, map[string]string{"status": "logged out"})
}

func (h *AuthHandler) setAuthCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     "auth_token",
		Value:    token,
		Path:     "/",
		Expires:  time.Now().Add(30 * 24 * time.Hour),
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}
