package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/Benjaminax/camous-taskboard-system/models"
	"github.com/lib/pq"
)

var (
	ErrTaskNotFound        = errors.New("task not found")
	ErrTaskTeamInvalid     = errors.New("task team conflict or invalid")
	ErrTaskAssigneeInvalid = errors.New("task assignee conflict or invalid")
)

type TaskRepository interface {
	Create(ctx context.Context, task *models.Task) error
	GetByID(ctx context.Context, id int) (*models.Task, error)
	Update(ctx context.Context, task *models.Task) error
	Delete(ctx context.Context, id int) error

	// ListByTeam возвращает задачи команды, новые первыми, с именами
	// исполнителя и автора. status == nil отключает фильтр.
	ListByTeam(ctx context.Context, teamID int, status *models.TaskStatus) ([]models.Task, error)
	ListByUser(ctx context.Context, userID, limit int) ([]models.Task, error)

	Summary(ctx context.Context, teamID int) (models.TaskSummary, error)
	CountAssignedTo(ctx context.Context, userID int) (int, error)
	CountAll(ctx context.Context) (int, error)

	DeleteByTeamID(ctx context.Context, exec SQLExecutor, teamID int) error
	DeleteByCreator(ctx context.Context, exec SQLExecutor, userID int) error
	UnassignUser(ctx context.Context, exec SQLExecutor, userID int) error
}

type postgresTaskRepository struct {
	db *sql.DB
}

func NewPostgresTaskRepository(db *sql.DB) TaskRepository {
	return &postgresTaskRepository{db: db}
}

func (r *postgresTaskRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresTaskRepository) Create(ctx context.Context, task *models.Task) error {
	query := `
		INSERT INTO tasks (title, description, priority, status, assigned_to, team_id, created_by, due_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query,
		task.Title,
		task.Description,
		task.Priority,
		task.Status,
		task.AssignedTo,
		task.TeamID,
		task.CreatedBy,
		task.DueDate,
	).Scan(&task.ID, &task.CreatedAt, &task.UpdatedAt)

	if err != nil {
		return mapTaskConstraintError(err)
	}
	return nil
}

func (r *postgresTaskRepository) GetByID(ctx context.Context, id int) (*models.Task, error) {
	query := `
		SELECT id, title, description, priority, status, assigned_to, team_id, created_by, due_date, created_at, updated_at
		FROM tasks
		WHERE id = $1`

	task := &models.Task{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&task.ID,
		&task.Title,
		&task.Description,
		&task.Priority,
		&task.Status,
		&task.AssignedTo,
		&task.TeamID,
		&task.CreatedBy,
		&task.DueDate,
		&task.CreatedAt,
		&task.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTaskNotFound
		}
		return nil, err
	}
	return task, nil
}

func (r *postgresTaskRepository) Update(ctx context.Context, task *models.Task) error {
	query := `
		UPDATE tasks SET
			title = $1,
			description = $2,
			status = $3,
			priority = $4,
			assigned_to = $5,
			due_date = $6,
			updated_at = NOW()
		WHERE id = $7
		RETURNING updated_at`

	err := r.db.QueryRowContext(ctx, query,
		task.Title,
		task.Description,
		task.Status,
		task.Priority,
		task.AssignedTo,
		task.DueDate,
		task.ID,
	).Scan(&task.UpdatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrTaskNotFound
		}
		return mapTaskConstraintError(err)
	}
	return nil
}

func (r *postgresTaskRepository) Delete(ctx context.Context, id int) error {
	query := `DELETE FROM tasks WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrTaskNotFound)
}

func (r *postgresTaskRepository) ListByTeam(ctx context.Context, teamID int, status *models.TaskStatus) ([]models.Task, error) {
	query := `
		SELECT t.id, t.title, t.description, t.priority, t.status, t.assigned_to, t.team_id, t.created_by,
		       t.due_date, t.created_at, t.updated_at,
		       u.full_name AS assigned_name,
		       uc.full_name AS created_by_name
		FROM tasks t
		LEFT JOIN users u ON t.assigned_to = u.id
		LEFT JOIN users uc ON t.created_by = uc.id
		WHERE t.team_id = $1`

	args := []interface{}{teamID}
	if status != nil {
		query += ` AND t.status = $2`
		args = append(args, *status)
	}
	query += ` ORDER BY t.created_at DESC`

	return r.queryTasks(ctx, query, args, func(rows *sql.Rows, task *models.Task) error {
		var assignedName, createdByName sql.NullString
		err := rows.Scan(
			&task.ID, &task.Title, &task.Description, &task.Priority, &task.Status,
			&task.AssignedTo, &task.TeamID, &task.CreatedBy,
			&task.DueDate, &task.CreatedAt, &task.UpdatedAt,
			&assignedName, &createdByName,
		)
		if err != nil {
			return err
		}
		if assignedName.Valid {
			task.AssignedName = &assignedName.String
		}
		if createdByName.Valid {
			task.CreatedByName = &createdByName.String
		}
		return nil
	})
}

func (r *postgresTaskRepository) ListByUser(ctx context.Context, userID, limit int) ([]models.Task, error) {
	query := `
		SELECT t.id, t.title, t.description, t.priority, t.status, t.assigned_to, t.team_id, t.created_by,
		       t.due_date, t.created_at, t.updated_at,
		       u.full_name AS assigned_name,
		       teams.team_name AS team_name
		FROM tasks t
		LEFT JOIN users u ON t.assigned_to = u.id
		LEFT JOIN teams ON t.team_id = teams.id
		WHERE t.assigned_to = $1 OR t.created_by = $1
		ORDER BY t.created_at DESC
		LIMIT $2`

	return r.queryTasks(ctx, query, []interface{}{userID, limit}, func(rows *sql.Rows, task *models.Task) error {
		var assignedName, teamName sql.NullString
		err := rows.Scan(
			&task.ID, &task.Title, &task.Description, &task.Priority, &task.Status,
			&task.AssignedTo, &task.TeamID, &task.CreatedBy,
			&task.DueDate, &task.CreatedAt, &task.UpdatedAt,
			&assignedName, &teamName,
		)
		if err != nil {
			return err
		}
		if assignedName.Valid {
			task.AssignedName = &assignedName.String
		}
		if teamName.Valid {
			task.TeamName = &teamName.String
		}
		return nil
	})
}

func (r *postgresTaskRepository) Summary(ctx context.Context, teamID int) (models.TaskSummary, error) {
	query := `
		SELECT
			COUNT(*) AS total_tasks,
			COALESCE(SUM(CASE WHEN status = 'Completed' THEN 1 ELSE 0 END), 0) AS completed_tasks,
			COALESCE(SUM(CASE WHEN status = 'In Progress' THEN 1 ELSE 0 END), 0) AS in_progress_tasks,
			COALESCE(SUM(CASE WHEN status = 'Pending' THEN 1 ELSE 0 END), 0) AS pending_tasks
		FROM tasks
		WHERE team_id = $1`

	var summary models.TaskSummary
	err := r.db.QueryRowContext(ctx, query, teamID).Scan(
		&summary.TotalTasks,
		&summary.CompletedTasks,
		&summary.InProgressTasks,
		&summary.PendingTasks,
	)
	if err != nil {
		return models.TaskSummary{}, err
	}
	return summary, nil
}

func (r *postgresTaskRepository) CountAssignedTo(ctx context.Context, userID int) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM tasks WHERE assigned_to = $1`, userID).Scan(&count)
	return count, err
}

func (r *postgresTaskRepository) CountAll(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM tasks`).Scan(&count)
	return count, err
}

func (r *postgresTaskRepository) DeleteByTeamID(ctx context.Context, exec SQLExecutor, teamID int) error {
	query := `DELETE FROM tasks WHERE team_id = $1`
	_, err := r.getExecutor(exec).ExecContext(ctx, query, teamID)
	return err
}

func (r *postgresTaskRepository) DeleteByCreator(ctx context.Context, exec SQLExecutor, userID int) error {
	query := `DELETE FROM tasks WHERE created_by = $1`
	_, err := r.getExecutor(exec).ExecContext(ctx, query, userID)
	return err
}

func (r *postgresTaskRepository) UnassignUser(ctx context.Context, exec SQLExecutor, userID int) error {
	query := `UPDATE tasks SET assigned_to = NULL WHERE assigned_to = $1`
	_, err := r.getExecutor(exec).ExecContext(ctx, query, userID)
	return err
}

func (r *postgresTaskRepository) queryTasks(
	ctx context.Context,
	query string,
	args []interface{},
	scan func(rows *sql.Rows, task *models.Task) error,
) ([]models.Task, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tasks := make([]models.Task, 0)
	for rows.Next() {
		var task models.Task
		if scanErr := scan(rows, &task); scanErr != nil {
			return nil, scanErr
		}
		tasks = append(tasks, task)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return tasks, nil
}

func mapTaskConstraintError(err error) error {
	if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23503" {
		switch pqErr.Constraint {
		case "tasks_team_id_fkey":
			return ErrTaskTeamInvalid
		case "tasks_assigned_to_fkey":
			return ErrTaskAssigneeInvalid
		}
	}
	return err
}
