package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/electroworld/auth-service/internal/domain"
	"github.com/electroworld/auth-service/internal/transport/http/response"
)

type writeErrRecorder struct {
	calls int
	last  error
}

func (w *writeErrRecorder) fn(rw http.ResponseWriter, r *http.Request, err error) {
	w.calls++
	w.last = err
	response.WriteError(rw, r, err)
}

func (w *writeErrRecorder) requireCode(t *testing.T, code string) {
	t.Helper()
	if w.calls != 1 {
		t.Fatalf("expected writeErr once, got %d", w.calls)
	}
	if !domain.Is(w.last, code) {
		t.Fatalf("expected %s, got %v", code, w.last)
	}
}

type nextRecorder struct {
	calls   int
	gotUser domain.User
	hasUser bool
}

func (n *nextRecorder) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	n.calls++
	n.gotUser, n.hasUser = UserFromContext(r.Context())
	w.WriteHeader(http.StatusOK)
}

func serve(h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}
