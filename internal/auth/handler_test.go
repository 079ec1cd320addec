package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/Jacobmwita/FINAL-LEWA--sub002/internal/shared"
)

type fakeRepo struct {
	users    map[string]*User
	sessions map[string]int64
}

func (f *fakeRepo) FindByEmail(_ context.Context, email string) (*User, error) {
	user, ok := f.users[email]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return user, nil
}

func (f *fakeRepo) CreateSession(_ context.Context, id string, userID int64, _ time.Time, _, _ string) error {
	f.sessions[id] = userID
	return nil
}

func (f *fakeRepo) DeleteSession(_ context.Context, id string) error {
	delete(f.sessions, id)
	return nil
}

func newTestHandler(t *testing.T) (*Handler, *shared.SessionManager, *fakeRepo) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	hash, err := bcrypt.GenerateFromPassword([]byte("correct-horse"), bcrypt.MinCost)
	require.NoError(t, err)

	repo := &fakeRepo{
		users: map[string]*User{
			"mechanic@lewa.test": {
				ID:           7,
				Email:        "mechanic@lewa.test",
				FullName:     "Test Mechanic",
				PasswordHash: string(hash),
				IsActive:     true,
			},
		},
		sessions: map[string]int64{},
	}

	sessions := shared.NewSessionManager(client, "workshop_session", time.Hour, false)
	csrf := shared.NewCSRFManager("test-csrf-secret")
	logger := slog.New(slog.NewTextHandler(bytes.NewBuffer(nil), nil))
	return NewHandler(logger, NewService(repo), sessions, csrf), sessions, repo
}

func doLogin(t *testing.T, h *Handler, sessions *shared.SessionManager, email, password string) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(map[string]string{"email": email, "password": password})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/auth/login", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	sess, err := sessions.Load(req.Context(), req)
	require.NoError(t, err)
	req = req.WithContext(shared.ContextWithSession(req.Context(), sess))

	rr := httptest.NewRecorder()
	h.handleLogin(rr, req)
	return rr
}

func TestHandleLoginSuccessIssuesCSRFToken(t *testing.T) {
	h, sessions, repo := newTestHandler(t)

	rr := doLogin(t, h, sessions, "mechanic@lewa.test", "correct-horse")
	require.Equal(t, http.StatusOK, rr.Code)

	var envelope struct {
		Success bool `json:"success"`
		Data    struct {
			CSRFToken string `json:"csrf_token"`
			User      struct {
				ID int64 `json:"id"`
			} `json:"user"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &envelope))
	require.True(t, envelope.Success)
	require.NotEmpty(t, envelope.Data.CSRFToken)
	require.Equal(t, int64(7), envelope.Data.User.ID)
	require.Len(t, repo.sessions, 1)
}

func TestHandleLoginRejectsBadPassword(t *testing.T) {
	h, sessions, repo := newTestHandler(t)

	rr := doLogin(t, h, sessions, "mechanic@lewa.test", "wrong-password")
	require.Equal(t, http.StatusUnauthorized, rr.Code)
	require.Empty(t, repo.sessions)
}

func TestHandleLoginRejectsUnknownUser(t *testing.T) {
	h, sessions, _ := newTestHandler(t)

	rr := doLogin(t, h, sessions, "nobody@lewa.test", "correct-horse")
	require.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestHandleLoginRejectsInactiveAccount(t *testing.T) {
	h, sessions, repo := newTestHandler(t)
	repo.users["mechanic@lewa.test"].IsActive = false

	rr := doLogin(t, h, sessions, "mechanic@lewa.test", "correct-horse")
	require.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestAuthenticateDoesNotLeakAccountExistence(t *testing.T) {
	_, _, repo := newTestHandler(t)
	svc := NewService(repo)

	_, errUnknown := svc.Authenticate(context.Background(), "nobody@lewa.test", "whatever-pass")
	_, errBadPass := svc.Authenticate(context.Background(), "mechanic@lewa.test", "whatever-pass")
	require.ErrorIs(t, errUnknown, shared.ErrInvalidCredentials)
	require.ErrorIs(t, errBadPass, shared.ErrInvalidCredentials)
}
