package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Benjaminax/camous-taskboard-system/models"
	"github.com/Benjaminax/camous-taskboard-system/repositories"
)

// Notifier рассылает событие всем подписчикам комнаты команды.
// Реализуется хабом WebSocket; nil-уведомитель допустим.
type Notifier interface {
	NotifyTeam(teamID int, event string, payload interface{})
}

// События, рассылаемые по WebSocket при изменении задач.
const (
	EventTaskCreated = "TASK_CREATED"
	EventTaskUpdated = "TASK_UPDATED"
	EventTaskDeleted = "TASK_DELETED"
)

// Границы выборки последних задач пользователя.
const (
	userTasksFallbackLimit = 10
	userTasksMaxLimit      = 100
)

type TaskService interface {
	CreateTask(ctx context.Context, input CreateTaskInput) (*models.Task, error)
	UpdateTask(ctx context.Context, taskID int, input UpdateTaskInput, currentUserID int) (*models.Task, error)
	DeleteTask(ctx context.Context, taskID, currentUserID int) error

	ListTeamTasks(ctx context.Context, teamID int, status *models.TaskStatus) ([]models.Task, error)
	ListUserTasks(ctx context.Context, userID, limit int) ([]models.Task, error)
}

type CreateTaskInput struct {
	Title       string               `json:"title"`
	Description *string              `json:"description"`
	Priority    *models.TaskPriority `json:"priority"`
	Status      *models.TaskStatus   `json:"status"`
	AssignedTo  *int                 `json:"assigned_to"`
	TeamID      int                  `json:"team_id"`
	DueDate     *time.Time           `json:"due_date"`
	CreatorID   int                  `json:"-"`
}

// UpdateTaskInput — частичное обновление: nil-поле означает "не трогать".
type UpdateTaskInput struct {
	Title       *string              `json:"title"`
	Description *string              `json:"description"`
	Priority    *models.TaskPriority `json:"priority"`
	Status      *models.TaskStatus   `json:"status"`
	AssignedTo  *int                 `json:"assigned_to"`
	DueDate     *time.Time           `json:"due_date"`
}

type taskService struct {
	taskRepo       repositories.TaskRepository
	teamRepo       repositories.TeamRepository
	membershipRepo repositories.MembershipRepository
	notifier       Notifier
}

func NewTaskService(
	taskRepo repositories.TaskRepository,
	teamRepo repositories.TeamRepository,
	membershipRepo repositories.MembershipRepository,
	notifier Notifier,
) TaskService {
	return &taskService{
		taskRepo:       taskRepo,
		teamRepo:       teamRepo,
		membershipRepo: membershipRepo,
		notifier:       notifier,
	}
}

func (s *taskService) CreateTask(ctx context.Context, input CreateTaskInput) (*models.Task, error) {
	// Сначала членство: не-участник получает отказ независимо от
	// содержимого задачи.
	isMember, err := s.membershipRepo.IsMember(ctx, input.TeamID, input.CreatorID)
	if err != nil {
		return nil, fmt.Errorf("failed to check membership: %w", err)
	}
	if !isMember {
		return nil, ErrTaskCreateForbidden
	}

	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, ErrTaskTitleRequired
	}

	task := &models.Task{
		Title:       title,
		Description: input.Description,
		Priority:    models.TaskPriorityMedium,
		Status:      models.TaskStatusPending,
		AssignedTo:  input.AssignedTo,
		TeamID:      input.TeamID,
		CreatedBy:   input.CreatorID,
		DueDate:     input.DueDate,
	}
	if input.Priority != nil {
		task.Priority = *input.Priority
	}
	if input.Status != nil {
		task.Status = *input.Status
	}

	if err := s.taskRepo.Create(ctx, task); err != nil {
		switch {
		case errors.Is(err, repositories.ErrTaskTeamInvalid):
			return nil, ErrTeamNotFound
		case errors.Is(err, repositories.ErrTaskAssigneeInvalid):
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	s.notify(task.TeamID, EventTaskCreated, task)
	return task, nil
}

func (s *taskService) UpdateTask(ctx context.Context, taskID int, input UpdateTaskInput, currentUserID int) (*models.Task, error) {
	task, err := s.getTask(ctx, taskID)
	if err != nil {
		return nil, err
	}

	isMember, err := s.membershipRepo.IsMember(ctx, task.TeamID, currentUserID)
	if err != nil {
		return nil, fmt.Errorf("failed to check membership: %w", err)
	}
	if !isMember {
		return nil, ErrTaskUpdateForbidden
	}

	if input.Title == nil && input.Description == nil && input.Priority == nil &&
		input.Status == nil && input.AssignedTo == nil && input.DueDate == nil {
		return nil, ErrNoUpdates
	}

	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		if title == "" {
			return nil, ErrTaskTitleRequired
		}
		task.Title = title
	}
	if input.Description != nil {
		task.Description = input.Description
	}
	if input.Priority != nil {
		task.Priority = *input.Priority
	}
	if input.Status != nil {
		task.Status = *input.Status
	}
	if input.AssignedTo != nil {
		// Нулевой id снимает исполнителя.
		if *input.AssignedTo == 0 {
			task.AssignedTo = nil
		} else {
			task.AssignedTo = input.AssignedTo
		}
	}
	if input.DueDate != nil {
		task.DueDate = input.DueDate
	}

	if err := s.taskRepo.Update(ctx, task); err != nil {
		switch {
		case errors.Is(err, repositories.ErrTaskNotFound):
			return nil, ErrTaskNotFound
		case errors.Is(err, repositories.ErrTaskAssigneeInvalid):
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to update task %d: %w", taskID, err)
	}

	s.notify(task.TeamID, EventTaskUpdated, task)
	return task, nil
}

// DeleteTask разрешен автору задачи и создателю команды.
func (s *taskService) DeleteTask(ctx context.Context, taskID, currentUserID int) error {
	task, err := s.getTask(ctx, taskID)
	if err != nil {
		return err
	}

	if task.CreatedBy != currentUserID {
		team, err := s.teamRepo.GetByID(ctx, task.TeamID)
		if err != nil {
			if errors.Is(err, repositories.ErrTeamNotFound) {
				return ErrTaskDeleteForbidden
			}
			return fmt.Errorf("failed to get team %d: %w", task.TeamID, err)
		}
		if team.CreatedBy != currentUserID {
			return ErrTaskDeleteForbidden
		}
	}

	if err := s.taskRepo.Delete(ctx, taskID); err != nil {
		if errors.Is(err, repositories.ErrTaskNotFound) {
			return ErrTaskNotFound
		}
		return fmt.Errorf("failed to delete task %d: %w", taskID, err)
	}

	s.notify(task.TeamID, EventTaskDeleted, map[string]int{"id": taskID})
	return nil
}

func (s *taskService) ListTeamTasks(ctx context.Context, teamID int, status *models.TaskStatus) ([]models.Task, error) {
	tasks, err := s.taskRepo.ListByTeam(ctx, teamID, status)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks of team %d: %w", teamID, err)
	}
	return tasks, nil
}

func (s *taskService) ListUserTasks(ctx context.Context, userID, limit int) ([]models.Task, error) {
	if limit <= 0 {
		limit = userTasksFallbackLimit
	}
	if limit > userTasksMaxLimit {
		limit = userTasksMaxLimit
	}
	tasks, err := s.taskRepo.ListByUser(ctx, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks for user %d: %w", userID, err)
	}
	return tasks, nil
}

func (s *taskService) getTask(ctx context.Context, taskID int) (*models.Task, error) {
	task, err := s.taskRepo.GetByID(ctx, taskID)
	if err != nil {
		if errors.Is(err, repositories.ErrTaskNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to get task %d: %w", taskID, err)
	}
	return task, nil
}

func (s *taskService) notify(teamID int, event string, payload interface{}) {
	if s.notifier != nil {
		s.notifier.NotifyTeam(teamID, event, payload)
	}
}
