package middleware

import (
	"net/http"

	"adoptionService/pkg/api"
)

// RequireAdmin allows the request through only when the authenticated
// caller's profile carries the admin role. Must run after Authenticator.
func RequireAdmin(userService api.UserService) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			email, _ := r.Context().Value("email").(string)
			if email == "" {
				http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
				return
			}

			profile, err := userService.GetProfile(r.Context(), email)
			if err != nil || profile.Role != api.RoleAdmin {
				http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
