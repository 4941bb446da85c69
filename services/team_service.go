package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/Benjaminax/camous-taskboard-system/models"
	"github.com/Benjaminax/camous-taskboard-system/repositories"
	"github.com/Benjaminax/camous-taskboard-system/storage"
	"github.com/Benjaminax/camous-taskboard-system/utils"
)

// teamCodeMaxAttempts ограничивает перегенерацию кода при конфликте
// уникального индекса teams.team_code.
const teamCodeMaxAttempts = 3

type TeamService interface {
	CreateTeam(ctx context.Context, input CreateTeamInput) (*models.Team, error)
	UpdateTeam(ctx context.Context, teamID int, input UpdateTeamInput, currentUserID int) (*models.Team, error)
	JoinByCode(ctx context.Context, code string, userID int) (*models.Team, error)
	RequestJoin(ctx context.Context, teamID, userID int, input JoinRequestInput) error
	Invite(ctx context.Context, teamID, byUserID int, input InviteInput) error
	LeaveTeam(ctx context.Context, teamID, userID int) error
	DeleteTeam(ctx context.Context, teamID, currentUserID int) error

	ListMembers(ctx context.Context, teamID int) ([]models.TeamMember, error)
	ListAllTeams(ctx context.Context) ([]models.Team, error)
	ListUserTeams(ctx context.Context, userID int) ([]models.Team, error)

	UploadLogo(ctx context.Context, teamID, currentUserID int, contentType string, reader io.Reader) (*models.Team, error)
}

type CreateTeamInput struct {
	TeamName    string  `json:"team_name"`
	Description *string `json:"description"`
	MaxMembers  *int    `json:"max_members"`
	CreatorID   int     `json:"-"`
}

type UpdateTeamInput struct {
	TeamName    *string `json:"team_name"`
	Description *string `json:"description"`
	MaxMembers  *int    `json:"max_members"`
}

type JoinRequestInput struct {
	RequestedRole *string `json:"requested_role"`
	Message       *string `json:"message"`
}

type InviteInput struct {
	UserID *int    `json:"user_id"`
	Email  *string `json:"email"`
}

type teamService struct {
	db              *sql.DB
	teamRepo        repositories.TeamRepository
	membershipRepo  repositories.MembershipRepository
	joinRequestRepo repositories.JoinRequestRepository
	taskRepo        repositories.TaskRepository
	userRepo        repositories.UserRepository
	authService     AuthService
	uploader        storage.FileUploader
	emailService    *EmailService
	logger          *slog.Logger
}

func NewTeamService(
	db *sql.DB,
	teamRepo repositories.TeamRepository,
	membershipRepo repositories.MembershipRepository,
	joinRequestRepo repositories.JoinRequestRepository,
	taskRepo repositories.TaskRepository,
	userRepo repositories.UserRepository,
	authService AuthService,
	uploader storage.FileUploader,
	emailService *EmailService,
	logger *slog.Logger,
) TeamService {
	return &teamService{
		db:              db,
		teamRepo:        teamRepo,
		membershipRepo:  membershipRepo,
		joinRequestRepo: joinRequestRepo,
		taskRepo:        taskRepo,
		userRepo:        userRepo,
		authService:     authService,
		uploader:        uploader,
		emailService:    emailService,
		logger:          logger,
	}
}

// CreateTeam создает команду и сразу добавляет создателя в участники —
// одной транзакцией. Код команды при конфликте генерируется заново.
func (s *teamService) CreateTeam(ctx context.Context, input CreateTeamInput) (*models.Team, error) {
	name := strings.TrimSpace(input.TeamName)
	if name == "" {
		return nil, ErrTeamNameRequired
	}

	var team *models.Team
	for attempt := 0; attempt < teamCodeMaxAttempts; attempt++ {
		code, err := utils.GenerateTeamCode()
		if err != nil {
			return nil, fmt.Errorf("failed to generate team code: %w", err)
		}

		team = &models.Team{
			TeamName:    name,
			TeamCode:    code,
			CreatedBy:   input.CreatorID,
			Description: input.Description,
			MaxMembers:  input.MaxMembers,
		}

		err = s.createTeamTx(ctx, team)
		if err == nil {
			return team, nil
		}
		if errors.Is(err, repositories.ErrTeamCodeConflict) {
			continue // коллизия кода, пробуем другой
		}
		return nil, err
	}

	return nil, fmt.Errorf("failed to generate unique team code after %d attempts", teamCodeMaxAttempts)
}

func (s *teamService) createTeamTx(ctx context.Context, team *models.Team) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := s.teamRepo.Create(ctx, tx, team); err != nil {
		return err
	}
	if err := s.membershipRepo.Add(ctx, tx, team.ID, team.CreatedBy); err != nil {
		return fmt.Errorf("failed to add creator membership: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (s *teamService) UpdateTeam(ctx context.Context, teamID int, input UpdateTeamInput, currentUserID int) (*models.Team, error) {
	team, err := s.getTeam(ctx, teamID)
	if err != nil {
		return nil, err
	}

	if team.CreatedBy != currentUserID {
		return nil, ErrTeamEditForbidden
	}

	if input.TeamName != nil {
		name := strings.TrimSpace(*input.TeamName)
		if name == "" {
			return nil, ErrTeamNameRequired
		}
		team.TeamName = name
	}
	if input.Description != nil {
		team.Description = input.Description
	}
	if input.MaxMembers != nil {
		team.MaxMembers = input.MaxMembers
	}

	if err := s.teamRepo.Update(ctx, team); err != nil {
		if errors.Is(err, repositories.ErrTeamNotFound) {
			return nil, ErrTeamNotFound
		}
		return nil, fmt.Errorf("failed to update team %d: %w", teamID, err)
	}

	populateTeamLogoURL(team, s.uploader)
	return team, nil
}

func (s *teamService) JoinByCode(ctx context.Context, code string, userID int) (*models.Team, error) {
	team, err := s.teamRepo.GetByCode(ctx, strings.ToUpper(strings.TrimSpace(code)))
	if err != nil {
		if errors.Is(err, repositories.ErrTeamNotFound) {
			return nil, ErrTeamNotFound
		}
		return nil, fmt.Errorf("failed to find team by code: %w", err)
	}

	// Вставка с уникальным PK — проверка и запись атомарны.
	if err := s.membershipRepo.Add(ctx, nil, team.ID, userID); err != nil {
		if errors.Is(err, repositories.ErrMembershipConflict) {
			return nil, ErrAlreadyMember
		}
		return nil, fmt.Errorf("failed to join team %d: %w", team.ID, err)
	}

	populateTeamLogoURL(team, s.uploader)
	return team, nil
}

func (s *teamService) RequestJoin(ctx context.Context, teamID, userID int, input JoinRequestInput) error {
	if _, err := s.getTeam(ctx, teamID); err != nil {
		return err
	}

	isMember, err := s.membershipRepo.IsMember(ctx, teamID, userID)
	if err != nil {
		return fmt.Errorf("failed to check membership: %w", err)
	}
	if isMember {
		return ErrAlreadyMember
	}

	request := &models.JoinRequest{
		TeamID:        teamID,
		UserID:        userID,
		RequestedRole: input.RequestedRole,
		Message:       input.Message,
	}
	if err := s.joinRequestRepo.Create(ctx, request); err != nil {
		if errors.Is(err, repositories.ErrJoinRequestPending) {
			return ErrJoinRequestPending
		}
		return fmt.Errorf("failed to create join request: %w", err)
	}
	return nil
}

// Invite добавляет пользователя в команду напрямую (auto-accept),
// в отличие от RequestJoin, который требует решения владельца.
func (s *teamService) Invite(ctx context.Context, teamID, byUserID int, input InviteInput) error {
	team, err := s.getTeam(ctx, teamID)
	if err != nil {
		return err
	}

	var invited *models.User
	switch {
	case input.UserID != nil:
		invited, err = s.userRepo.GetByID(ctx, *input.UserID)
	case input.Email != nil && *input.Email != "":
		invited, err = s.userRepo.GetByEmail(ctx, *input.Email)
	default:
		return ErrMissingUserOrEmail
	}
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to resolve invited user: %w", err)
	}

	if err := s.membershipRepo.Add(ctx, nil, teamID, invited.ID); err != nil {
		if errors.Is(err, repositories.ErrMembershipConflict) {
			return ErrUserAlreadyMember
		}
		return fmt.Errorf("failed to add member: %w", err)
	}

	if s.emailService != nil {
		inviter, err := s.userRepo.GetByID(ctx, byUserID)
		inviterName := "A teammate"
		if err == nil {
			inviterName = inviter.FullName
		}
		// Письмо не должно задерживать или ронять запрос.
		go func(to, teamName, from string) {
			if err := s.emailService.SendTeamInviteEmail(to, teamName, from); err != nil {
				s.logger.Warn("failed to send invite email",
					slog.String("to", to), slog.Any("error", err))
			}
		}(invited.Email, team.TeamName, inviterName)
	}

	return nil
}

func (s *teamService) LeaveTeam(ctx context.Context, teamID, userID int) error {
	team, err := s.getTeam(ctx, teamID)
	if err != nil {
		return err
	}

	if team.CreatedBy == userID {
		return ErrCreatorCannotLeave
	}

	if err := s.membershipRepo.Remove(ctx, teamID, userID); err != nil {
		// Повторный выход — не ошибка: запись уже отсутствует.
		if errors.Is(err, repositories.ErrMembershipNotFound) {
			return nil
		}
		return fmt.Errorf("failed to leave team %d: %w", teamID, err)
	}
	return nil
}

// DeleteTeam удаляет команду вместе с задачами, участниками и запросами
// на вступление одной транзакцией. Разрешено создателю или администратору.
func (s *teamService) DeleteTeam(ctx context.Context, teamID, currentUserID int) error {
	team, err := s.getTeam(ctx, teamID)
	if err != nil {
		return err
	}

	if team.CreatedBy != currentUserID {
		isAdmin, err := s.authService.IsAdmin(ctx, currentUserID)
		if err != nil {
			return fmt.Errorf("failed to check admin rights: %w", err)
		}
		if !isAdmin {
			return ErrTeamDeleteForbidden
		}
	}

	return deleteTeamCascade(ctx, s.db, s.taskRepo, s.membershipRepo, s.joinRequestRepo, s.teamRepo, teamID)
}

func (s *teamService) ListMembers(ctx context.Context, teamID int) ([]models.TeamMember, error) {
	members, err := s.membershipRepo.ListMembers(ctx, teamID)
	if err != nil {
		return nil, fmt.Errorf("failed to list members of team %d: %w", teamID, err)
	}
	return members, nil
}

func (s *teamService) ListAllTeams(ctx context.Context) ([]models.Team, error) {
	teams, err := s.teamRepo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list teams: %w", err)
	}
	for i := range teams {
		populateTeamLogoURL(&teams[i], s.uploader)
	}
	return teams, nil
}

func (s *teamService) ListUserTeams(ctx context.Context, userID int) ([]models.Team, error) {
	teams, err := s.teamRepo.ListByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list teams for user %d: %w", userID, err)
	}
	for i := range teams {
		populateTeamLogoURL(&teams[i], s.uploader)
	}
	return teams, nil
}

func (s *teamService) UploadLogo(ctx context.Context, teamID, currentUserID int, contentType string, reader io.Reader) (*models.Team, error) {
	if s.uploader == nil {
		return nil, errors.New("file storage is not configured")
	}

	team, err := s.getTeam(ctx, teamID)
	if err != nil {
		return nil, err
	}
	if team.CreatedBy != currentUserID {
		return nil, ErrTeamEditForbidden
	}

	ext, err := extensionFromContentType(contentType)
	if err != nil {
		return nil, err
	}

	oldKey := team.LogoKey
	key := fmt.Sprintf("teams/%d/logo_%d%s", teamID, time.Now().UnixNano(), ext)

	result, err := s.uploader.Upload(ctx, key, contentType, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to upload team logo: %w", err)
	}

	team.LogoKey = &result.Key
	if err := s.teamRepo.Update(ctx, team); err != nil {
		return nil, fmt.Errorf("failed to persist team logo key: %w", err)
	}

	if oldKey != nil && *oldKey != "" && *oldKey != result.Key {
		if err := s.uploader.Delete(ctx, *oldKey); err != nil {
			s.logger.Warn("failed to delete previous team logo",
				slog.String("key", *oldKey), slog.Any("error", err))
		}
	}

	populateTeamLogoURL(team, s.uploader)
	return team, nil
}

func (s *teamService) getTeam(ctx context.Context, teamID int) (*models.Team, error) {
	team, err := s.teamRepo.GetByID(ctx, teamID)
	if err != nil {
		if errors.Is(err, repositories.ErrTeamNotFound) {
			return nil, ErrTeamNotFound
		}
		return nil, fmt.Errorf("failed to get team %d: %w", teamID, err)
	}
	return team, nil
}

// deleteTeamCascade выполняет каскадное удаление команды. Используется и
// пользовательским, и административным путем удаления.
func deleteTeamCascade(
	ctx context.Context,
	db *sql.DB,
	taskRepo repositories.TaskRepository,
	membershipRepo repositories.MembershipRepository,
	joinRequestRepo repositories.JoinRequestRepository,
	teamRepo repositories.TeamRepository,
	teamID int,
) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := taskRepo.DeleteByTeamID(ctx, tx, teamID); err != nil {
		return fmt.Errorf("failed to delete team tasks: %w", err)
	}
	if err := membershipRepo.DeleteByTeamID(ctx, tx, teamID); err != nil {
		return fmt.Errorf("failed to delete team memberships: %w", err)
	}
	if err := joinRequestRepo.DeleteByTeamID(ctx, tx, teamID); err != nil {
		return fmt.Errorf("failed to delete team join requests: %w", err)
	}
	if err := teamRepo.Delete(ctx, tx, teamID); err != nil {
		if errors.Is(err, repositories.ErrTeamNotFound) {
			return ErrTeamNotFound
		}
		return fmt.Errorf("failed to delete team row: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
