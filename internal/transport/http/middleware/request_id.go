package middleware

import (
	"net/http"

	"github.com/google/uuid"

	pkgctx "github.com/electroworld/auth-service/internal/pkg/context"
)

const HeaderXRequestID = "X-Request-Id"

const maxRequestIDLen = 128

func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := r.Header.Get(HeaderXRequestID)
		if reqID == "" || len(reqID) > maxRequestIDLen || !printable(reqID) {
			reqID = uuid.NewString()
		}

		w.Header().Set(HeaderXRequestID, reqID)
		next.ServeHTTP(w, r.WithContext(pkgctx.WithRequestID(r.Context(), reqID)))
	})
}

func printable(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < 0x21 || s[i] > 0x7e {
			return false
		}
	}
	return true
}
