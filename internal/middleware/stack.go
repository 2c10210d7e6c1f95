package middleware

import "net/http"

// Stack composes multiple middleware functions into a single one.
// Middlewares are applied in order: Stack(a, b, c) produces a(b(c(handler))).
func Stack(middlewares ...func(http.Handler) http.Handler) func(http.Handler) http.Handler {
	return func(final http.Handler) http.Handler {
		for i := len(middlewares) - 1; i >= 0; i-- {
			final = middlewares[i](final)
		}
		return final
	}
}
