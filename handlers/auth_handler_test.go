package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Benjaminax/camous-taskboard-system/models"
	"github.com/Benjaminax/camous-taskboard-system/services"
	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBody(s string) *strings.Reader {
	return strings.NewReader(s)
}

type fakeAuthService struct {
	registerErr error
	loginErr    error
	user        *models.User
}

func (f *fakeAuthService) Register(_ context.Context, _ services.RegisterInput) (*models.User, error) {
	if f.registerErr != nil {
		return nil, f.registerErr
	}
	return f.user, nil
}

func (f *fakeAuthService) Login(_ context.Context, _ services.LoginInput) (*models.User, error) {
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	return f.user, nil
}

func (f *fakeAuthService) GetUserByID(_ context.Context, _ int) (*models.User, error) {
	return f.user, nil
}

func (f *fakeAuthService) IsAdmin(_ context.Context, _ int) (bool, error) {
	return false, nil
}

func testUser() *models.User {
	return &models.User{
		ID:        42,
		StudentID: "S-1001",
		FullName:  "Ada Mensah",
		Email:     "ada@example.edu",
	}
}

func TestAuthHandlerRegister(t *testing.T) {
	handler := NewAuthHandler(&fakeAuthService{user: testUser()}, "test-secret")

	req := httptest.NewRequest(http.MethodPost, "/api/register",
		newBody(`{"student_id":"S-1001","full_name":"Ada Mensah","email":"ada@example.edu","password":"secret123"}`))
	rec := httptest.NewRecorder()

	handler.Register(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)

	var body struct {
		Token string      `json:"token"`
		User  models.User `json:"user"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 42, body.User.ID)
	require.NotEmpty(t, body.Token)

	// Токен должен нести полный профиль и подписываться нашим секретом.
	claims := jwt.MapClaims{}
	parsed, err := jwt.ParseWithClaims(body.Token, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte("test-secret"), nil
	})
	require.NoError(t, err)
	require.True(t, parsed.Valid)
	assert.Equal(t, float64(42), claims["id"])
	assert.Equal(t, "ada@example.edu", claims["email"])
	assert.Equal(t, "S-1001", claims["student_id"])
	assert.Equal(t, "Ada Mensah", claims["full_name"])
	assert.Equal(t, false, claims["is_admin"])
	assert.NotNil(t, claims["exp"])
}

func TestAuthHandlerRegisterMissingFields(t *testing.T) {
	handler := NewAuthHandler(&fakeAuthService{user: testUser()}, "test-secret")

	req := httptest.NewRequest(http.MethodPost, "/api/register",
		newBody(`{"email":"ada@example.edu","password":"secret123"}`))
	rec := httptest.NewRecorder()

	handler.Register(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "All fields are required")
}

func TestAuthHandlerRegisterConflict(t *testing.T) {
	handler := NewAuthHandler(&fakeAuthService{registerErr: services.ErrUserAlreadyExists}, "test-secret")

	req := httptest.NewRequest(http.MethodPost, "/api/register",
		newBody(`{"student_id":"S-1001","full_name":"Ada Mensah","email":"ada@example.edu","password":"secret123"}`))
	rec := httptest.NewRecorder()

	handler.Register(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "User already exists")
}

func TestAuthHandlerLogin(t *testing.T) {
	handler := NewAuthHandler(&fakeAuthService{user: testUser()}, "test-secret")

	req := httptest.NewRequest(http.MethodPost, "/api/login",
		newBody(`{"email":"ada@example.edu","password":"secret123"}`))
	rec := httptest.NewRecorder()

	handler.Login(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Contains(t, body, "token")
	assert.Contains(t, body, "user")
}

func TestAuthHandlerLoginInvalidCredentials(t *testing.T) {
	handler := NewAuthHandler(&fakeAuthService{loginErr: services.ErrInvalidCredentials}, "test-secret")

	req := httptest.NewRequest(http.MethodPost, "/api/login",
		newBody(`{"email":"ada@example.edu","password":"wrong"}`))
	rec := httptest.NewRecorder()

	handler.Login(rec, req)

	// Неверные учетные данные отдаются как 400, не 401: так отвечает
	// существующий API, и клиент сопоставляет текст ошибки.
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Invalid credentials")
}
