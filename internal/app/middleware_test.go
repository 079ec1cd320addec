package app

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Jacobmwita/FINAL-LEWA--sub002/internal/shared"
)

func newStackRouter(t *testing.T) (chi.Router, *bool) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	sessions := shared.NewSessionManager(client, "workshop_session", time.Hour, false)
	csrf := shared.NewCSRFManager("middleware-test-secret")
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	r := chi.NewRouter()
	r.Use(MiddlewareStack(MiddlewareConfig{
		Logger:         logger,
		SessionManager: sessions,
		CSRFManager:    csrf,
	})...)

	invoked := false
	r.Post("/jobcards", func(w http.ResponseWriter, req *http.Request) {
		invoked = true
		w.WriteHeader(http.StatusCreated)
	})
	r.Get("/csrf", func(w http.ResponseWriter, req *http.Request) {
		sess := shared.SessionFromContext(req.Context())
		token, err := csrf.EnsureToken(sess)
		require.NoError(t, err)
		_, _ = w.Write([]byte(token))
	})
	return r, &invoked
}

func TestCSRFMiddlewareBlocksMutationsWithoutToken(t *testing.T) {
	router, invoked := newStackRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/jobcards", nil))

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.False(t, *invoked, "handler must not run without a token")
}

func TestCSRFMiddlewareBlocksMismatchedToken(t *testing.T) {
	router, invoked := newStackRouter(t)

	bootstrap := httptest.NewRecorder()
	router.ServeHTTP(bootstrap, httptest.NewRequest(http.MethodGet, "/csrf", nil))
	require.Equal(t, http.StatusOK, bootstrap.Code)
	cookies := bootstrap.Result().Cookies()
	require.NotEmpty(t, cookies)

	req := httptest.NewRequest(http.MethodPost, "/jobcards", nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	req.Header.Set(shared.CSRFHeader, "not-the-issued-token")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.False(t, *invoked, "handler must not run with a forged token")
}

func TestCSRFMiddlewareAllowsValidTokenAndReads(t *testing.T) {
	router, invoked := newStackRouter(t)

	bootstrap := httptest.NewRecorder()
	router.ServeHTTP(bootstrap, httptest.NewRequest(http.MethodGet, "/csrf", nil))
	require.Equal(t, http.StatusOK, bootstrap.Code)
	token := bootstrap.Body.String()
	require.NotEmpty(t, token)
	cookies := bootstrap.Result().Cookies()
	require.NotEmpty(t, cookies)

	req := httptest.NewRequest(http.MethodPost, "/jobcards", nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	req.Header.Set(shared.CSRFHeader, token)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.True(t, *invoked)
}
