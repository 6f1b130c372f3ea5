package middleware

import "net/http"

// Stack composes middlewares into a single wrapper, applied left to right:
//
//	stack := Stack(loggingMw, identityMw.RequireIdentity)
//	mux.Handle("GET /catches", stack(catchHandler))
//
// This is equivalent to:
//
//	mux.Handle("GET /catches", loggingMw(identityMw.RequireIdentity(catchHandler)))
func Stack(middlewares ...func(http.Handler) http.Handler) func(http.Handler) http.Handler {
	return func(final http.Handler) http.Handler {
		for i := len(middlewares) - 1; i >= 0; i-- {
			final = middlewares[i](final)
		}
		return final
	}
}
