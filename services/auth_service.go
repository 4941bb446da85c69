package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/Benjaminax/camous-taskboard-system/models"
	"github.com/Benjaminax/camous-taskboard-system/repositories"
	"github.com/Benjaminax/camous-taskboard-system/storage"
	"github.com/Benjaminax/camous-taskboard-system/utils"
)

type AuthService interface {
	Register(ctx context.Context, input RegisterInput) (*models.User, error)
	Login(ctx context.Context, input LoginInput) (*models.User, error)
	GetUserByID(ctx context.Context, id int) (*models.User, error)

	// IsAdmin проверяет права по allowlist из конфигурации ИЛИ по флагу
	// is_admin в БД. Всегда читает актуальную запись: токену в этом
	// вопросе не доверяем.
	IsAdmin(ctx context.Context, userID int) (bool, error)
}

type RegisterInput struct {
	StudentID string `json:"student_id"`
	FullName  string `json:"full_name"`
	Email     string `json:"email"`
	Password  string `json:"password"`
}

type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authService struct {
	userRepo     repositories.UserRepository
	adminUserIDs map[int]struct{}
	uploader     storage.FileUploader
}

func NewAuthService(userRepo repositories.UserRepository, adminUserIDs []int, uploader storage.FileUploader) AuthService {
	allowlist := make(map[int]struct{}, len(adminUserIDs))
	for _, id := range adminUserIDs {
		allowlist[id] = struct{}{}
	}
	return &authService{
		userRepo:     userRepo,
		adminUserIDs: allowlist,
		uploader:     uploader,
	}
}

func (s *authService) Register(ctx context.Context, input RegisterInput) (*models.User, error) {
	if !utils.IsValidEmail(input.Email) {
		return nil, ErrInvalidEmailFormat
	}

	hash, err := utils.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		StudentID:    input.StudentID,
		FullName:     input.FullName,
		Email:        input.Email,
		PasswordHash: hash,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrUserEmailConflict) ||
			errors.Is(err, repositories.ErrUserStudentIDConflict) {
			return nil, ErrUserAlreadyExists
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	sanitizeUser(user, s.uploader)
	return user, nil
}

func (s *authService) Login(ctx context.Context, input LoginInput) (*models.User, error) {
	user, err := s.userRepo.GetByEmail(ctx, input.Email)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to find user by email: %w", err)
	}

	if !utils.CheckPasswordHash(input.Password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	sanitizeUser(user, s.uploader)
	return user, nil
}

func (s *authService) GetUserByID(ctx context.Context, id int) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user %d: %w", id, err)
	}
	sanitizeUser(user, s.uploader)
	return user, nil
}

func (s *authService) IsAdmin(ctx context.Context, userID int) (bool, error) {
	if _, ok := s.adminUserIDs[userID]; ok {
		return true, nil
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("failed to check admin flag for user %d: %w", userID, err)
	}
	return user.IsAdmin, nil
}
