package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Benjaminax/camous-taskboard-system/models"
	"github.com/Benjaminax/camous-taskboard-system/repositories"
	"golang.org/x/sync/errgroup"
)

type DashboardService interface {
	TeamDashboard(ctx context.Context, teamID int) (*models.TeamDashboard, error)
	UserDashboard(ctx context.Context, userID int) (*models.UserDashboard, error)
}

type dashboardService struct {
	taskRepo        repositories.TaskRepository
	membershipRepo  repositories.MembershipRepository
	joinRequestRepo repositories.JoinRequestRepository
	logger          *slog.Logger
}

func NewDashboardService(
	taskRepo repositories.TaskRepository,
	membershipRepo repositories.MembershipRepository,
	joinRequestRepo repositories.JoinRequestRepository,
	logger *slog.Logger,
) DashboardService {
	return &dashboardService{
		taskRepo:        taskRepo,
		membershipRepo:  membershipRepo,
		joinRequestRepo: joinRequestRepo,
		logger:          logger,
	}
}

// TeamDashboard собирает три независимые выборки параллельно.
// Сбой выборки запросов на вступление не роняет дашборд: она
// деградирует до пустого списка.
func (s *dashboardService) TeamDashboard(ctx context.Context, teamID int) (*models.TeamDashboard, error) {
	dashboard := &models.TeamDashboard{
		Members:      make([]models.MemberTaskStats, 0),
		JoinRequests: make([]models.JoinRequestView, 0),
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		members, err := s.membershipRepo.ListMemberStats(gctx, teamID)
		if err != nil {
			return fmt.Errorf("failed to load member stats: %w", err)
		}
		dashboard.Members = members
		return nil
	})

	g.Go(func() error {
		summary, err := s.taskRepo.Summary(gctx, teamID)
		if err != nil {
			return fmt.Errorf("failed to load task summary: %w", err)
		}
		dashboard.Summary = summary
		return nil
	})

	g.Go(func() error {
		requests, err := s.joinRequestRepo.ListPendingByTeam(gctx, teamID)
		if err != nil {
			s.logger.Warn("failed to load join requests for dashboard",
				slog.Int("team_id", teamID), slog.Any("error", err))
			return nil
		}
		dashboard.JoinRequests = requests
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return dashboard, nil
}

func (s *dashboardService) UserDashboard(ctx context.Context, userID int) (*models.UserDashboard, error) {
	dashboard := &models.UserDashboard{}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		count, err := s.membershipRepo.CountByUserID(gctx, userID)
		if err != nil {
			return fmt.Errorf("failed to count teams: %w", err)
		}
		dashboard.TotalTeams = count
		return nil
	})

	g.Go(func() error {
		count, err := s.taskRepo.CountAssignedTo(gctx, userID)
		if err != nil {
			return fmt.Errorf("failed to count assigned tasks: %w", err)
		}
		dashboard.TasksAssigned = count
		return nil
	})

	g.Go(func() error {
		count, err := s.taskRepo.CountAll(gctx)
		if err != nil {
			return fmt.Errorf("failed to count tasks: %w", err)
		}
		dashboard.TotalTasks = count
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return dashboard, nil
}
