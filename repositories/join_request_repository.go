package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/Benjaminax/camous-taskboard-system/models"
	"github.com/lib/pq"
)

var (
	ErrJoinRequestNotFound = errors.New("join request not found")
	ErrJoinRequestPending  = errors.New("join request already pending")
)

type JoinRequestRepository interface {
	// Create вставляет запрос со статусом pending. Частичный уникальный
	// индекс join_requests_pending_uniq гарантирует не более одного
	// pending-запроса на пару (team, user).
	Create(ctx context.Context, request *models.JoinRequest) error
	HasPending(ctx context.Context, teamID, userID int) (bool, error)
	ListPendingByTeam(ctx context.Context, teamID int) ([]models.JoinRequestView, error)
	DeleteByTeamID(ctx context.Context, exec SQLExecutor, teamID int) error
	DeleteByUserID(ctx context.Context, exec SQLExecutor, userID int) error
}

type postgresJoinRequestRepository struct {
	db *sql.DB
}

func NewPostgresJoinRequestRepository(db *sql.DB) JoinRequestRepository {
	return &postgresJoinRequestRepository{db: db}
}

func (r *postgresJoinRequestRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresJoinRequestRepository) Create(ctx context.Context, request *models.JoinRequest) error {
	query := `
		INSERT INTO join_requests (team_id, user_id, requested_role, message, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, requested_at`

	err := r.db.QueryRowContext(ctx, query,
		request.TeamID,
		request.UserID,
		request.RequestedRole,
		request.Message,
		models.JoinRequestPending,
	).Scan(&request.ID, &request.RequestedAt)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return ErrJoinRequestPending
		}
		return err
	}
	request.Status = models.JoinRequestPending
	return nil
}

func (r *postgresJoinRequestRepository) HasPending(ctx context.Context, teamID, userID int) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM join_requests
			WHERE team_id = $1 AND user_id = $2 AND status = $3
		)`
	var exists bool
	if err := r.db.QueryRowContext(ctx, query, teamID, userID, models.JoinRequestPending).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func (r *postgresJoinRequestRepository) ListPendingByTeam(ctx context.Context, teamID int) ([]models.JoinRequestView, error) {
	query := `
		SELECT jr.id, jr.requested_at, u.full_name, u.student_id, u.email
		FROM join_requests jr
		JOIN users u ON jr.user_id = u.id
		WHERE jr.team_id = $1 AND jr.status = $2
		ORDER BY jr.requested_at DESC`

	rows, err := r.db.QueryContext(ctx, query, teamID, models.JoinRequestPending)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	requests := make([]models.JoinRequestView, 0)
	for rows.Next() {
		var v models.JoinRequestView
		if scanErr := rows.Scan(&v.ID, &v.RequestedAt, &v.FullName, &v.StudentID, &v.Email); scanErr != nil {
			return nil, scanErr
		}
		requests = append(requests, v)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return requests, nil
}

func (r *postgresJoinRequestRepository) DeleteByTeamID(ctx context.Context, exec SQLExecutor, teamID int) error {
	query := `DELETE FROM join_requests WHERE team_id = $1`
	_, err := r.getExecutor(exec).ExecContext(ctx, query, teamID)
	return err
}

func (r *postgresJoinRequestRepository) DeleteByUserID(ctx context.Context, exec SQLExecutor, userID int) error {
	query := `DELETE FROM join_requests WHERE user_id = $1`
	_, err := r.getExecutor(exec).ExecContext(ctx, query, userID)
	return err
}
