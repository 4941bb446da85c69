package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/Benjaminax/camous-taskboard-system/models"
	"github.com/Benjaminax/camous-taskboard-system/repositories"
	"github.com/Benjaminax/camous-taskboard-system/storage"
	"github.com/Benjaminax/camous-taskboard-system/utils"
)

type AdminService interface {
	ListUsers(ctx context.Context) ([]models.User, error)
	UpdateUser(ctx context.Context, userID int, input AdminUpdateUserInput) (*models.User, error)

	// DeleteUser удаляет пользователя и все, что на нем держится:
	// созданные им команды (с их задачами и участниками), его задачи,
	// членства и запросы на вступление. Все в одной транзакции.
	DeleteUser(ctx context.Context, userID, currentAdminID int) error

	ListTeams(ctx context.Context) ([]models.Team, error)
	DeleteTeam(ctx context.Context, teamID int) error
}

// AdminUpdateUserInput — частичное обновление учетной записи администратором.
type AdminUpdateUserInput struct {
	StudentID *string `json:"student_id"`
	FullName  *string `json:"full_name"`
	Email     *string `json:"email"`
	IsAdmin   *bool   `json:"is_admin"`
	Password  *string `json:"password"`
}

type adminService struct {
	db              *sql.DB
	userRepo        repositories.UserRepository
	teamRepo        repositories.TeamRepository
	membershipRepo  repositories.MembershipRepository
	joinRequestRepo repositories.JoinRequestRepository
	taskRepo        repositories.TaskRepository
	uploader        storage.FileUploader
}

func NewAdminService(
	db *sql.DB,
	userRepo repositories.UserRepository,
	teamRepo repositories.TeamRepository,
	membershipRepo repositories.MembershipRepository,
	joinRequestRepo repositories.JoinRequestRepository,
	taskRepo repositories.TaskRepository,
	uploader storage.FileUploader,
) AdminService {
	return &adminService{
		db:              db,
		userRepo:        userRepo,
		teamRepo:        teamRepo,
		membershipRepo:  membershipRepo,
		joinRequestRepo: joinRequestRepo,
		taskRepo:        taskRepo,
		uploader:        uploader,
	}
}

func (s *adminService) ListUsers(ctx context.Context) ([]models.User, error) {
	users, err := s.userRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	for i := range users {
		sanitizeUser(&users[i], s.uploader)
	}
	return users, nil
}

func (s *adminService) UpdateUser(ctx context.Context, userID int, input AdminUpdateUserInput) (*models.User, error) {
	if input.StudentID == nil && input.FullName == nil && input.Email == nil &&
		input.IsAdmin == nil && input.Password == nil {
		return nil, ErrNoUpdates
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user %d: %w", userID, err)
	}

	if input.StudentID != nil {
		user.StudentID = strings.TrimSpace(*input.StudentID)
	}
	if input.FullName != nil {
		user.FullName = strings.TrimSpace(*input.FullName)
	}
	if input.Email != nil {
		email := strings.TrimSpace(*input.Email)
		if !utils.IsValidEmail(email) {
			return nil, ErrInvalidEmailFormat
		}
		user.Email = email
	}
	if input.IsAdmin != nil {
		user.IsAdmin = *input.IsAdmin
	}
	if input.Password != nil && *input.Password != "" {
		hash, err := utils.HashPassword(*input.Password)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		user.PasswordHash = hash
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		switch {
		case errors.Is(err, repositories.ErrUserNotFound):
			return nil, ErrUserNotFound
		case errors.Is(err, repositories.ErrUserEmailConflict),
			errors.Is(err, repositories.ErrUserStudentIDConflict):
			return nil, ErrUserAlreadyExists
		}
		return nil, fmt.Errorf("failed to update user %d: %w", userID, err)
	}

	sanitizeUser(user, s.uploader)
	return user, nil
}

func (s *adminService) DeleteUser(ctx context.Context, userID, currentAdminID int) error {
	if userID == currentAdminID {
		return ErrAdminSelfDelete
	}

	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to get user %d: %w", userID, err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	// Сначала сносим команды, где пользователь — создатель, со всем
	// содержимым. Иначе помешает внешний ключ teams.created_by.
	ownedTeams, err := s.teamRepo.ListIDsByCreator(ctx, tx, userID)
	if err != nil {
		return fmt.Errorf("failed to list owned teams: %w", err)
	}
	for _, teamID := range ownedTeams {
		if err := s.taskRepo.DeleteByTeamID(ctx, tx, teamID); err != nil {
			return fmt.Errorf("failed to delete tasks of team %d: %w", teamID, err)
		}
		if err := s.membershipRepo.DeleteByTeamID(ctx, tx, teamID); err != nil {
			return fmt.Errorf("failed to delete memberships of team %d: %w", teamID, err)
		}
		if err := s.joinRequestRepo.DeleteByTeamID(ctx, tx, teamID); err != nil {
			return fmt.Errorf("failed to delete join requests of team %d: %w", teamID, err)
		}
		if err := s.teamRepo.Delete(ctx, tx, teamID); err != nil {
			return fmt.Errorf("failed to delete team %d: %w", teamID, err)
		}
	}

	if err := s.membershipRepo.DeleteByUserID(ctx, tx, userID); err != nil {
		return fmt.Errorf("failed to delete memberships: %w", err)
	}
	if err := s.joinRequestRepo.DeleteByUserID(ctx, tx, userID); err != nil {
		return fmt.Errorf("failed to delete join requests: %w", err)
	}
	if err := s.taskRepo.DeleteByCreator(ctx, tx, userID); err != nil {
		return fmt.Errorf("failed to delete created tasks: %w", err)
	}
	if err := s.taskRepo.UnassignUser(ctx, tx, userID); err != nil {
		return fmt.Errorf("failed to unassign tasks: %w", err)
	}

	if err := s.userRepo.Delete(ctx, tx, userID); err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to delete user row: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (s *adminService) ListTeams(ctx context.Context) ([]models.Team, error) {
	teams, err := s.teamRepo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list teams: %w", err)
	}
	for i := range teams {
		populateTeamLogoURL(&teams[i], s.uploader)
	}
	return teams, nil
}

func (s *adminService) DeleteTeam(ctx context.Context, teamID int) error {
	if _, err := s.teamRepo.GetByID(ctx, teamID); err != nil {
		if errors.Is(err, repositories.ErrTeamNotFound) {
			return ErrTeamNotFound
		}
		return fmt.Errorf("failed to get team %d: %w", teamID, err)
	}
	return deleteTeamCascade(ctx, s.db, s.taskRepo, s.membershipRepo, s.joinRequestRepo, s.teamRepo, teamID)
}
