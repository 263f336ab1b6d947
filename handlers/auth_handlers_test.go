package handlers

import (
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"chatdesk/api/middleware"
	"chatdesk/api/models"
	"chatdesk/api/session"
	"chatdesk/api/utils"
)

type authEnv struct {
	router *gin.Engine
	mock   sqlmock.Sqlmock
	tokens *utils.TokenManager
	broker *session.Broker
}

func newAuthEnv(t *testing.T) *authEnv {
	t.Helper()
	stores, mock := newMockStores(t)
	tokens := utils.NewTokenManager("test-secret", time.Hour)
	broker := session.NewBroker(4)
	h := NewAuthHandlers(stores.Profiles, tokens, broker, broker)

	r := gin.New()
	r.POST("/api/auth/signup", h.Signup)
	r.POST("/api/auth/login", h.Login)
	r.POST("/api/auth/logout", h.Logout)
	protected := r.Group("/api/auth", middleware.AuthRequired(tokens))
	protected.POST("/refresh", h.Refresh)
	protected.GET("/me", h.Me)

	return &authEnv{router: r, mock: mock, tokens: tokens, broker: broker}
}

func profileRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "email", "full_name", "hashed_password", "plan", "setup_paid", "trial_ends_at", "created_at", "updated_at",
	})
}

func TestSignup(t *testing.T) {
	env := newAuthEnv(t)
	env.mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO profiles (email, full_name, hashed_password)")).
		WithArgs("owner@acme.test", "Ann Owner", sqlmock.AnyArg()).
		WillReturnRows(profileRows().AddRow(testUserID, "owner@acme.test", "Ann Owner", []byte("x"), nil, false, nil, testNow, testNow))

	w := doJSON(t, env.router, http.MethodPost, "/api/auth/signup", map[string]string{
		"email":    "owner@acme.test",
		"password": "correct-horse",
		"fullName": " Ann Owner ",
	})

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.NotContains(t, w.Body.String(), "hashed")
}

func TestSignupDuplicate(t *testing.T) {
	env := newAuthEnv(t)
	env.mock.ExpectQuery("INSERT INTO profiles").
		WillReturnError(&pq.Error{Code: "23505"})

	w := doJSON(t, env.router, http.MethodPost, "/api/auth/signup", map[string]string{
		"email":    "owner@acme.test",
		"password": "correct-horse",
	})

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "User with this email already exists", decodeMap(t, w)["error"])
}

func TestSignupShortPassword(t *testing.T) {
	env := newAuthEnv(t)

	w := doJSON(t, env.router, http.MethodPost, "/api/auth/signup", map[string]string{
		"email":    "owner@acme.test",
		"password": "short",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func expectProfileByEmail(t *testing.T, mock sqlmock.Sqlmock, password string) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	mock.ExpectQuery(regexp.QuoteMeta("WHERE lower(email) = lower($1)")).
		WithArgs("owner@acme.test").
		WillReturnRows(profileRows().AddRow(testUserID, "owner@acme.test", nil, hash, nil, false, nil, testNow, testNow))
}

func TestLoginIssuesTokenAndPublishesSignedIn(t *testing.T) {
	env := newAuthEnv(t)
	events, unsubscribe := env.broker.Subscribe(testUserID)
	defer unsubscribe()
	expectProfileByEmail(t, env.mock, "correct-horse")

	w := doJSON(t, env.router, http.MethodPost, "/api/auth/login", map[string]string{
		"email":    "owner@acme.test",
		"password": "correct-horse",
	})

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	token, _ := decodeMap(t, w)["token"].(string)
	require.NotEmpty(t, token)

	claims, err := env.tokens.ValidateJWT(token)
	require.NoError(t, err)
	assert.Equal(t, testUserID, claims.UserID)

	cookies := w.Result().Cookies()
	require.NotEmpty(t, cookies)
	assert.Equal(t, middleware.TokenCookie, cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)

	select {
	case e := <-events:
		assert.Equal(t, session.SignedIn, e.Type)
		assert.Equal(t, "owner@acme.test", e.Email)
	default:
		t.Fatal("expected a SIGNED_IN event")
	}
}

func TestLoginWrongPassword(t *testing.T) {
	env := newAuthEnv(t)
	expectProfileByEmail(t, env.mock, "correct-horse")

	w := doJSON(t, env.router, http.MethodPost, "/api/auth/login", map[string]string{
		"email":    "owner@acme.test",
		"password": "wrong-password",
	})

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Invalid credentials", decodeMap(t, w)["error"])
}

func TestLoginUnknownEmail(t *testing.T) {
	env := newAuthEnv(t)
	env.mock.ExpectQuery("FROM profiles").
		WillReturnRows(profileRows())

	w := doJSON(t, env.router, http.MethodPost, "/api/auth/login", map[string]string{
		"email":    "owner@acme.test",
		"password": "correct-horse",
	})

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Invalid credentials", decodeMap(t, w)["error"])
}

func TestLogoutPublishesSignedOut(t *testing.T) {
	env := newAuthEnv(t)
	events, unsubscribe := env.broker.Subscribe(testUserID)
	defer unsubscribe()

	token := issueTestToken(t, env.tokens)
	req := httptest.NewRequest(http.MethodPost, "/api/auth/logout", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Set-Cookie"), "Max-Age=0")

	select {
	case e := <-events:
		assert.Equal(t, session.SignedOut, e.Type)
	default:
		t.Fatal("expected a SIGNED_OUT event")
	}
}

func TestLogoutWithoutTokenSucceeds(t *testing.T) {
	env := newAuthEnv(t)
	w := doJSON(t, env.router, http.MethodPost, "/api/auth/logout", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestMeRequiresToken(t *testing.T) {
	env := newAuthEnv(t)
	w := doJSON(t, env.router, http.MethodGet, "/api/auth/me", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRefreshPublishesTokenRefreshed(t *testing.T) {
	env := newAuthEnv(t)
	events, unsubscribe := env.broker.Subscribe(testUserID)
	defer unsubscribe()

	env.mock.ExpectQuery(regexp.QuoteMeta("FROM profiles WHERE id = $1")).
		WithArgs(testUserID).
		WillReturnRows(profileRows().AddRow(testUserID, "owner@acme.test", nil, []byte("x"), nil, false, nil, testNow, testNow))

	req := httptest.NewRequest(http.MethodPost, "/api/auth/refresh", nil)
	req.AddCookie(&http.Cookie{Name: middleware.TokenCookie, Value: issueTestToken(t, env.tokens)})
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.NotEmpty(t, decodeMap(t, w)["token"])

	select {
	case e := <-events:
		assert.Equal(t, session.TokenRefreshed, e.Type)
	default:
		t.Fatal("expected a TOKEN_REFRESHED event")
	}
}

func issueTestToken(t *testing.T, tokens *utils.TokenManager) string {
	t.Helper()
	token, err := tokens.GenerateJWT(&models.Profile{ID: testUserID, Email: "owner@acme.test"})
	require.NoError(t, err)
	return token
}
