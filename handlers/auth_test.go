package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	mr "github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/skillbridge/skillbridge/backend/api/internal/apperrors"
	"github.com/skillbridge/skillbridge/backend/api/internal/models"
	"github.com/skillbridge/skillbridge/backend/api/internal/sessions"
	"github.com/skillbridge/skillbridge/backend/api/internal/tokens"
	"github.com/skillbridge/skillbridge/backend/api/internal/users"
	"github.com/skillbridge/skillbridge/backend/api/pkg/middleware"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type fakeAccounts struct {
	byID      map[primitive.ObjectID]*models.User
	passwords map[string]string
	getErr    error
}

func newFakeAccounts() *fakeAccounts {
	return &fakeAccounts{byID: map[primitive.ObjectID]*models.User{}, passwords: map[string]string{}}
}

func (f *fakeAccounts) Signup(ctx context.Context, in users.SignupInput) (*models.User, error) {
	if _, ok := f.passwords[in.Email]; ok {
		return nil, fmt.Errorf("email: %w", apperrors.ErrConflict)
	}
	u := &models.User{ID: primitive.NewObjectID(), Name: in.Name, Email: in.Email, Role: in.Role, Password: "hash"}
	f.byID[u.ID] = u
	f.passwords[in.Email] = in.Password
	return u, nil
}

func (f *fakeAccounts) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	if pw, ok := f.passwords[email]; !ok || pw != password {
		return nil, apperrors.ErrInvalidCredentials
	}
	for _, u := range f.byID {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, apperrors.ErrInvalidCredentials
}

func (f *fakeAccounts) Get(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	u, ok := f.byID[id]
	if !ok {
		return nil, fmt.Errorf("user: %w", apperrors.ErrNotFound)
	}
	return u, nil
}

type recordingProfiles struct{ created []primitive.ObjectID }

func (r *recordingProfiles) CreateEmpty(ctx context.Context, u *models.User) error {
	r.created = append(r.created, u.ID)
	return nil
}

type authFixture struct {
	router   *gin.Engine
	accounts *fakeAccounts
	profiles *recordingProfiles
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()
	m, err := mr.Run()
	require.NoError(t, err)
	t.Cleanup(m.Close)
	client := redis.NewClient(&redis.Options{Addr: m.Addr()})

	issuer := tokens.NewIssuer("test-secret-test-secret-test-secret", 15*time.Minute)
	revocations := sessions.NewRevocationList(client)
	sess := sessions.NewService(sessions.NewRedisRepository(client, ""), time.Hour)
	profiles := &recordingProfiles{}

	accounts := newFakeAccounts()

	r := gin.New()
	h := NewAuthHandler(accounts, profiles, sess, issuer, revocations)
	h.Register(r.Group("/api"), middleware.AuthMiddleware(issuer, revocations))
	return &authFixture{router: r, accounts: accounts, profiles: profiles}
}

func bearer(t *testing.T, r http.Handler, method, path, token string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestSignupLoginMe(t *testing.T) {
	fx := newAuthFixture(t)
	signup := map[string]string{"name": "Ada", "email": "ada@example.com", "password": "supersecret", "role": "mentor"}

	w := do(t, fx.router, nil, http.MethodPost, "/api/Authentication/signup", signup)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	body := decode(t, w)
	require.NotEmpty(t, body["accessToken"])
	require.NotEmpty(t, body["refreshToken"])
	require.Equal(t, float64(900), body["expiresIn"])
	user := body["user"].(map[string]interface{})
	require.Equal(t, "mentor", user["role"])
	require.NotContains(t, user, "password")
	require.Len(t, fx.profiles.created, 1)

	w = do(t, fx.router, nil, http.MethodPost, "/api/Authentication/signup", signup)
	require.Equal(t, http.StatusConflict, w.Code)

	w = do(t, fx.router, nil, http.MethodPost, "/api/Authentication/login", map[string]string{"email": "ada@example.com", "password": "nope-nope"})
	require.Equal(t, http.StatusUnauthorized, w.Code)

	w = do(t, fx.router, nil, http.MethodPost, "/api/Authentication/login", map[string]string{"email": "ada@example.com", "password": "supersecret"})
	require.Equal(t, http.StatusOK, w.Code)
	access := decode(t, w)["accessToken"].(string)

	w = bearer(t, fx.router, http.MethodGet, "/api/Authentication/me", access)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "ada@example.com", decode(t, w)["email"])

	w = do(t, fx.router, nil, http.MethodGet, "/api/Authentication/me", nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestSignupValidation(t *testing.T) {
	fx := newAuthFixture(t)
	w := do(t, fx.router, nil, http.MethodPost, "/api/Authentication/signup", map[string]string{"name": "Bo", "email": "bad", "password": "short", "role": "admin"})
	require.Equal(t, http.StatusBadRequest, w.Code)
	fields := fieldsOf(t, w)
	require.Equal(t, "must be a valid email address", fields["email"])
	require.Equal(t, "must be at least 8 characters", fields["password"])
	require.Equal(t, "must be one of: student, mentor", fields["role"])

	req := httptest.NewRequest(http.MethodPost, "/api/Authentication/login", nil)
	rw := httptest.NewRecorder()
	fx.router.ServeHTTP(rw, req)
	require.Equal(t, http.StatusBadRequest, rw.Code)
}

func TestRefreshRotatesAndLogoutRevokes(t *testing.T) {
	fx := newAuthFixture(t)
	w := do(t, fx.router, nil, http.MethodPost, "/api/Authentication/signup", map[string]string{"name": "Cy", "email": "cy@example.com", "password": "password1", "role": "student"})
	require.Equal(t, http.StatusCreated, w.Code)
	body := decode(t, w)
	refresh := body["refreshToken"].(string)

	w = do(t, fx.router, nil, http.MethodPost, "/api/Authentication/refresh", map[string]string{"refreshToken": refresh})
	require.Equal(t, http.StatusOK, w.Code)
	rotated := decode(t, w)
	next := rotated["refreshToken"].(string)
	access := rotated["accessToken"].(string)
	require.NotEqual(t, refresh, next)

	// the consumed refresh token is rejected
	w = do(t, fx.router, nil, http.MethodPost, "/api/Authentication/refresh", map[string]string{"refreshToken": refresh})
	require.Equal(t, http.StatusUnauthorized, w.Code)

	req := httptest.NewRequest(http.MethodPost, "/api/Authentication/logout", jsonBody(t, map[string]string{"refreshToken": next}))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+access)
	rw := httptest.NewRecorder()
	fx.router.ServeHTTP(rw, req)
	require.Equal(t, http.StatusOK, rw.Code)

	w = bearer(t, fx.router, http.MethodGet, "/api/Authentication/me", access)
	require.Equal(t, http.StatusUnauthorized, w.Code)
	require.Equal(t, "token revoked", decode(t, w)["error"])

	w = do(t, fx.router, nil, http.MethodPost, "/api/Authentication/refresh", map[string]string{"refreshToken": next})
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRefreshUserLookupErrors(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
	}{
		{"deleted account", fmt.Errorf("user: %w", apperrors.ErrNotFound), http.StatusUnauthorized},
		{"database failure", errors.New("server selection timeout"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			fx := newAuthFixture(t)
			w := do(t, fx.router, nil, http.MethodPost, "/api/Authentication/signup", map[string]string{"name": "Di", "email": "di@example.com", "password": "password1", "role": "student"})
			require.Equal(t, http.StatusCreated, w.Code)
			refresh := decode(t, w)["refreshToken"].(string)

			fx.accounts.getErr = tc.err
			w = do(t, fx.router, nil, http.MethodPost, "/api/Authentication/refresh", map[string]string{"refreshToken": refresh})
			require.Equal(t, tc.status, w.Code)
		})
	}
}
