package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	"streakpick-go/models"
	"streakpick-go/services"

	"github.com/google/uuid"
)

// identityContextKey is the key used to store the resolved identity in the
// request context
type identityContextKey string

const identityKey identityContextKey = "identity"

const guestCookieName = "guest_id"

// Identity is who a request plays as. Accounts are optional: a guest gets a
// stable cookie-backed key so their streak survives across visits on the
// same device.
type Identity struct {
	UserKey     string
	DisplayName string
	User        *models.User // nil for guests
}

// IsGuest reports whether the identity has no backing account
func (i *Identity) IsGuest() bool {
	return i.User == nil
}

// AuthMiddleware resolves JWT-authenticated accounts and guest cookies
type AuthMiddleware struct {
	authService *services.AuthService
	secureCooky bool
}

// NewAuthMiddleware creates a new authentication middleware
func NewAuthMiddleware(authService *services.AuthService, secureCookies bool) *AuthMiddleware {
	return &AuthMiddleware{
		authService: authService,
		secureCooky: secureCookies,
	}
}

// WithIdentity resolves the request's identity, minting a guest identity
// when no account token is present. Every gameplay route sits behind this.
func (m *AuthMiddleware) WithIdentity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity := m.resolveIdentity(w, r)
		ctx := context.WithValue(r.Context(), identityKey, identity)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireAccount rejects requests without a valid account token
func (m *AuthMiddleware) RequireAccount(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, err := m.userFromRequest(r)
		if err != nil {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		identity := &Identity{
			UserKey:     user.StateKey(),
			DisplayName: user.DisplayName,
			User:        user,
		}
		ctx := context.WithValue(r.Context(), identityKey, identity)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// resolveIdentity prefers an account token, then an existing guest cookie,
// then mints a new guest
func (m *AuthMiddleware) resolveIdentity(w http.ResponseWriter, r *http.Request) *Identity {
	if user, err := m.userFromRequest(r); err == nil {
		return &Identity{
			UserKey:     user.StateKey(),
			DisplayName: user.DisplayName,
			User:        user,
		}
	}

	guestID := ""
	if cookie, err := r.Cookie(guestCookieName); err == nil && cookie.Value != "" {
		guestID = cookie.Value
	}
	if guestID == "" {
		guestID = uuid.NewString()
		http.SetCookie(w, &http.Cookie{
			Name:     guestCookieName,
			Value:    guestID,
			Path:     "/",
			Expires:  time.Now().Add(365 * 24 * time.Hour),
			HttpOnly: true,
			Secure:   m.secureCooky,
			SameSite: http.SameSiteLaxMode,
		})
	}

	return &Identity{
		UserKey:     "guest:" + guestID,
		DisplayName: "Guest",
	}
}

// userFromRequest extracts and validates an account from the request.
// A nil auth service means accounts are disabled and every caller is a guest.
func (m *AuthMiddleware) userFromRequest(r *http.Request) (*models.User, error) {
	if m.authService == nil {
		return nil, http.ErrNoCookie
	}

	authHeader := r.Header.Get("Authorization")
	if authHeader != "" {
		parts := strings.Split(authHeader, " ")
		if len(parts) == 2 && parts[0] == "Bearer" {
			return m.authService.GetUserFromToken(r.Context(), parts[1])
		}
	}

	cookie, err := r.Cookie("auth_token")
	if err == nil && cookie.Value != "" {
		return m.authService.GetUserFromToken(r.Context(), cookie.Value)
	}

	return nil, http.ErrNoCookie
}

// IdentityFromContext retrieves the resolved identity from request context
func IdentityFromContext(r *http.Request) *Identity {
	if identity, ok := r.Context().Value(identityKey).(*Identity); ok {
		return identity
	}
	return nil
}
