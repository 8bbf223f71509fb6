package middleware

import (
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/harborview/clinic-portal/internal/identity"
)

// portalClaims are the claims the external auth provider places in portal tokens.
type portalClaims struct {
	jwt.RegisteredClaims
	Role     string `json:"role"`
	FullName string `json:"name,omitempty"`
	Email    string `json:"email,omitempty"`
}

// Auth enforces an HMAC-signed JWT and stores the resulting profile in context.
func Auth(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if secret == "" {
				http.Error(w, "auth disabled", http.StatusUnauthorized)
				return
			}
			auth := r.Header.Get("Authorization")
			if auth == "" || !strings.HasPrefix(auth, "Bearer ") {
				http.Error(w, "missing authorization header", http.StatusUnauthorized)
				return
			}
			profile, ok := parseBearer(secret, auth)
			if !ok {
				http.Error(w, "invalid token", http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r.WithContext(identity.WithProfile(r.Context(), profile)))
		})
	}
}

// OptionalAuth attaches a profile when a valid token is present and lets the
// request through anonymously otherwise. Routes that serve both signed-in and
// anonymous visitors use it.
func OptionalAuth(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			auth := r.Header.Get("Authorization")
			if secret != "" && strings.HasPrefix(auth, "Bearer ") {
				if profile, ok := parseBearer(secret, auth); ok {
					r = r.WithContext(identity.WithProfile(r.Context(), profile))
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

func parseBearer(secret, header string) (identity.Profile, bool) {
	tokenString := strings.TrimPrefix(header, "Bearer ")
	claims := portalClaims{}
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid || claims.Subject == "" {
		return identity.Profile{}, false
	}
	return identity.Profile{
		ID:       claims.Subject,
		Role:     identity.ParseRole(claims.Role),
		FullName: claims.FullName,
		Email:    claims.Email,
	}, true
}

// RequireRole rejects requests whose profile does not carry one of the roles.
func RequireRole(roles ...identity.Role) func(http.Handler) http.Handler {
	allowed := make(map[identity.Role]struct{}, len(roles))
	for _, role := range roles {
		allowed[role] = struct{}{}
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			profile, ok := identity.ProfileFromContext(r.Context())
			if !ok {
				http.Error(w, "missing profile", http.StatusUnauthorized)
				return
			}
			if _, ok := allowed[profile.Role]; !ok {
				http.Error(w, "forbidden", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
