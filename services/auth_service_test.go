package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthServiceRegister(t *testing.T) {
	userRepo := newMockUserRepo()
	svc := NewAuthService(userRepo, nil, nil)

	user, err := svc.Register(context.Background(), RegisterInput{
		StudentID: "S-1001",
		FullName:  "Ada Mensah",
		Email:     "ada@example.edu",
		Password:  "secret123",
	})
	require.NoError(t, err)
	assert.NotZero(t, user.ID)
	assert.Equal(t, "ada@example.edu", user.Email)
	assert.Empty(t, user.PasswordHash, "password hash must not leak")

	stored, err := userRepo.GetByID(context.Background(), user.ID)
	require.NoError(t, err)
	assert.NotEmpty(t, stored.PasswordHash)
	assert.NotEqual(t, "secret123", stored.PasswordHash)
}

func TestAuthServiceRegisterDuplicate(t *testing.T) {
	userRepo := newMockUserRepo()
	svc := NewAuthService(userRepo, nil, nil)

	input := RegisterInput{
		StudentID: "S-1001",
		FullName:  "Ada Mensah",
		Email:     "ada@example.edu",
		Password:  "secret123",
	}
	_, err := svc.Register(context.Background(), input)
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), input)
	assert.ErrorIs(t, err, ErrUserAlreadyExists)

	// Тот же email, другой student_id
	input.StudentID = "S-2002"
	_, err = svc.Register(context.Background(), input)
	assert.ErrorIs(t, err, ErrUserAlreadyExists)
}

func TestAuthServiceRegisterInvalidEmail(t *testing.T) {
	svc := NewAuthService(newMockUserRepo(), nil, nil)

	_, err := svc.Register(context.Background(), RegisterInput{
		StudentID: "S-1001",
		FullName:  "Ada Mensah",
		Email:     "not-an-email",
		Password:  "secret123",
	})
	assert.ErrorIs(t, err, ErrInvalidEmailFormat)
}

func TestAuthServiceLogin(t *testing.T) {
	userRepo := newMockUserRepo()
	svc := NewAuthService(userRepo, nil, nil)

	_, err := svc.Register(context.Background(), RegisterInput{
		StudentID: "S-1001",
		FullName:  "Ada Mensah",
		Email:     "ada@example.edu",
		Password:  "secret123",
	})
	require.NoError(t, err)

	user, err := svc.Login(context.Background(), LoginInput{Email: "ada@example.edu", Password: "secret123"})
	require.NoError(t, err)
	assert.Equal(t, "Ada Mensah", user.FullName)
	assert.Empty(t, user.PasswordHash)

	_, err = svc.Login(context.Background(), LoginInput{Email: "ada@example.edu", Password: "wrong"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	// Неизвестный email дает ту же ошибку, не раскрывая существование
	// учетной записи.
	_, err = svc.Login(context.Background(), LoginInput{Email: "ghost@example.edu", Password: "secret123"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthServiceIsAdmin(t *testing.T) {
	userRepo := newMockUserRepo()
	svc := NewAuthService(userRepo, []int{42}, nil)

	regular, err := svc.Register(context.Background(), RegisterInput{
		StudentID: "S-1001",
		FullName:  "Ada Mensah",
		Email:     "ada@example.edu",
		Password:  "secret123",
	})
	require.NoError(t, err)

	isAdmin, err := svc.IsAdmin(context.Background(), regular.ID)
	require.NoError(t, err)
	assert.False(t, isAdmin)

	// Allowlist действует даже без записи в БД.
	isAdmin, err = svc.IsAdmin(context.Background(), 42)
	require.NoError(t, err)
	assert.True(t, isAdmin)

	// Флаг is_admin в БД тоже дает права.
	stored, err := userRepo.GetByID(context.Background(), regular.ID)
	require.NoError(t, err)
	stored.IsAdmin = true
	require.NoError(t, userRepo.Update(context.Background(), stored))

	isAdmin, err = svc.IsAdmin(context.Background(), regular.ID)
	require.NoError(t, err)
	assert.True(t, isAdmin)
}
