package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/Benjaminax/camous-taskboard-system/models"
	"github.com/lib/pq"
)

var (
	ErrMembershipNotFound    = errors.New("team membership not found")
	ErrMembershipConflict    = errors.New("user is already a team member")
	ErrMembershipTeamInvalid = errors.New("membership team conflict or invalid")
	ErrMembershipUserInvalid = errors.New("membership user conflict or invalid")
)

type MembershipRepository interface {
	Add(ctx context.Context, exec SQLExecutor, teamID, userID int) error
	Remove(ctx context.Context, teamID, userID int) error
	IsMember(ctx context.Context, teamID, userID int) (bool, error)
	ListMembers(ctx context.Context, teamID int) ([]models.TeamMember, error)

	// ListMemberStats возвращает участников команды с числом назначенных
	// на них задач этой команды (для дашборда).
	ListMemberStats(ctx context.Context, teamID int) ([]models.MemberTaskStats, error)
	CountByUserID(ctx context.Context, userID int) (int, error)

	DeleteByTeamID(ctx context.Context, exec SQLExecutor, teamID int) error
	DeleteByUserID(ctx context.Context, exec SQLExecutor, userID int) error
}

type postgresMembershipRepository struct {
	db *sql.DB
}

func NewPostgresMembershipRepository(db *sql.DB) MembershipRepository {
	return &postgresMembershipRepository{db: db}
}

func (r *postgresMembershipRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresMembershipRepository) Add(ctx context.Context, exec SQLExecutor, teamID, userID int) error {
	query := `INSERT INTO team_members (team_id, user_id) VALUES ($1, $2)`

	_, err := r.getExecutor(exec).ExecContext(ctx, query, teamID, userID)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			switch pqErr.Code {
			case "23505": // unique_violation (составной PK)
				return ErrMembershipConflict
			case "23503": // foreign_key_violation
				if pqErr.Constraint == "team_members_team_id_fkey" {
					return ErrMembershipTeamInvalid
				}
				if pqErr.Constraint == "team_members_user_id_fkey" {
					return ErrMembershipUserInvalid
				}
			}
		}
		return err
	}
	return nil
}

func (r *postgresMembershipRepository) Remove(ctx context.Context, teamID, userID int) error {
	query := `DELETE FROM team_members WHERE team_id = $1 AND user_id = $2`
	result, err := r.db.ExecContext(ctx, query, teamID, userID)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrMembershipNotFound)
}

func (r *postgresMembershipRepository) IsMember(ctx context.Context, teamID, userID int) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM team_members WHERE team_id = $1 AND user_id = $2)`
	var exists bool
	if err := r.db.QueryRowContext(ctx, query, teamID, userID).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func (r *postgresMembershipRepository) ListMembers(ctx context.Context, teamID int) ([]models.TeamMember, error) {
	query := `
		SELECT u.id, u.student_id, u.full_name, u.email,
		       CASE WHEN t.created_by = u.id THEN true ELSE false END AS is_creator
		FROM team_members tm
		JOIN users u ON tm.user_id = u.id
		JOIN teams t ON t.id = tm.team_id
		WHERE tm.team_id = $1
		ORDER BY u.full_name ASC`

	rows, err := r.db.QueryContext(ctx, query, teamID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	members := make([]models.TeamMember, 0)
	for rows.Next() {
		var m models.TeamMember
		if scanErr := rows.Scan(&m.ID, &m.StudentID, &m.FullName, &m.Email, &m.IsCreator); scanErr != nil {
			return nil, scanErr
		}
		members = append(members, m)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return members, nil
}

func (r *postgresMembershipRepository) ListMemberStats(ctx context.Context, teamID int) ([]models.MemberTaskStats, error) {
	query := `
		SELECT u.id, u.student_id, u.full_name, u.email,
		       COUNT(t.id) AS task_count
		FROM team_members tm
		JOIN users u ON tm.user_id = u.id
		LEFT JOIN tasks t ON u.id = t.assigned_to AND t.team_id = $1
		WHERE tm.team_id = $1
		GROUP BY u.id, u.student_id, u.full_name, u.email
		ORDER BY u.full_name ASC`

	rows, err := r.db.QueryContext(ctx, query, teamID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	stats := make([]models.MemberTaskStats, 0)
	for rows.Next() {
		var s models.MemberTaskStats
		if scanErr := rows.Scan(&s.ID, &s.StudentID, &s.FullName, &s.Email, &s.TaskCount); scanErr != nil {
			return nil, scanErr
		}
		stats = append(stats, s)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return stats, nil
}

func (r *postgresMembershipRepository) CountByUserID(ctx context.Context, userID int) (int, error) {
	query := `SELECT COUNT(*) FROM team_members WHERE user_id = $1`
	var count int
	if err := r.db.QueryRowContext(ctx, query, userID).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (r *postgresMembershipRepository) DeleteByTeamID(ctx context.Context, exec SQLExecutor, teamID int) error {
	query := `DELETE FROM team_members WHERE team_id = $1`
	_, err := r.getExecutor(exec).ExecContext(ctx, query, teamID)
	return err
}

func (r *postgresMembershipRepository) DeleteByUserID(ctx context.Context, exec SQLExecutor, userID int) error {
	query := `DELETE FROM team_members WHERE user_id = $1`
	_, err := r.getExecutor(exec).ExecContext(ctx, query, userID)
	return err
}
